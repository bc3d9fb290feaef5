package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL        string
	Port               string
	GoEnv              string
	LogLevel           string
	SiteURL            string
	CORSAllowedOrigins []string

	// Customer authentication
	Auth0Domain   string
	Auth0Audience string

	// Admin sessions
	CookieHashKey  []byte
	CookieBlockKey []byte

	// Object storage
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	UploadDir          string

	// Optional infrastructure
	RedisURL      string
	MongoURI      string
	MongoDatabase string
	KafkaBrokers  []string
	KafkaTopic    string

	// Notifications
	MailFrom           string
	AdminNotifyEmail   string
	ShopWhatsAppNumber string

	// Business rules
	StaleOrderAge         time.Duration
	SweepInterval         time.Duration
	ShippingFee           int64
	FreeShippingThreshold int64
	BookingOpenHour       int
	BookingCloseHour      int
	BookingClosedWeekday  string
	LowStockThreshold     int
}

var appConfig *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Environment-specific file wins, then .env; in production the variables are set directly.
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		DatabaseURL:        v.GetString("DATABASE_URL"),
		Port:               v.GetString("PORT"),
		GoEnv:              v.GetString("GO_ENV"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		SiteURL:            strings.TrimRight(v.GetString("SITE_URL"), "/"),
		CORSAllowedOrigins: splitCSV(v.GetString("CORS_ALLOWED_ORIGINS")),

		Auth0Domain:   v.GetString("AUTH0_DOMAIN"),
		Auth0Audience: v.GetString("AUTH0_AUDIENCE"),

		AWSRegion:          v.GetString("AWS_REGION"),
		AWSS3Bucket:        v.GetString("AWS_S3_BUCKET"),
		AWSAccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
		UploadDir:          v.GetString("UPLOAD_DIR"),

		RedisURL:      v.GetString("REDIS_URL"),
		MongoURI:      v.GetString("MONGODB_URI"),
		MongoDatabase: v.GetString("MONGODB_DATABASE"),
		KafkaBrokers:  splitCSV(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:    v.GetString("KAFKA_TOPIC"),

		MailFrom:           v.GetString("MAIL_FROM"),
		AdminNotifyEmail:   v.GetString("ADMIN_NOTIFY_EMAIL"),
		ShopWhatsAppNumber: v.GetString("SHOP_WHATSAPP_NUMBER"),

		StaleOrderAge:         v.GetDuration("STALE_ORDER_AGE"),
		SweepInterval:         v.GetDuration("SWEEP_INTERVAL"),
		ShippingFee:           v.GetInt64("SHIPPING_FEE"),
		FreeShippingThreshold: v.GetInt64("FREE_SHIPPING_THRESHOLD"),
		BookingOpenHour:       v.GetInt("BOOKING_OPEN_HOUR"),
		BookingCloseHour:      v.GetInt("BOOKING_CLOSE_HOUR"),
		BookingClosedWeekday:  v.GetString("BOOKING_CLOSED_WEEKDAY"),
		LowStockThreshold:     v.GetInt("LOW_STOCK_THRESHOLD"),
	}

	var err error
	if cfg.CookieHashKey, err = decodeKey(v.GetString("COOKIE_HASH_KEY")); err != nil {
		return nil, fmt.Errorf("COOKIE_HASH_KEY: %w", err)
	}
	if cfg.CookieBlockKey, err = decodeKey(v.GetString("COOKIE_BLOCK_KEY")); err != nil {
		return nil, fmt.Errorf("COOKIE_BLOCK_KEY: %w", err)
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	appConfig = cfg
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GO_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SITE_URL", "http://localhost:3000")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("MONGODB_DATABASE", "shahzaib_autos")
	v.SetDefault("KAFKA_TOPIC", "shahzaib-autos.events")
	v.SetDefault("MAIL_FROM", "")
	v.SetDefault("STALE_ORDER_AGE", "24h")
	v.SetDefault("SWEEP_INTERVAL", "1h")
	v.SetDefault("SHIPPING_FEE", 250)
	v.SetDefault("FREE_SHIPPING_THRESHOLD", 10000)
	v.SetDefault("BOOKING_OPEN_HOUR", 9)
	v.SetDefault("BOOKING_CLOSE_HOUR", 18)
	v.SetDefault("BOOKING_CLOSED_WEEKDAY", "Friday")
	v.SetDefault("LOW_STOCK_THRESHOLD", 5)
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.StaleOrderAge <= 0 {
		return fmt.Errorf("STALE_ORDER_AGE must be positive")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive")
	}
	if c.BookingOpenHour < 0 || c.BookingCloseHour > 24 || c.BookingOpenHour >= c.BookingCloseHour {
		return fmt.Errorf("BOOKING_OPEN_HOUR must be before BOOKING_CLOSE_HOUR")
	}
	if c.IsProduction() && (len(c.CookieHashKey) == 0 || len(c.CookieBlockKey) == 0) {
		return fmt.Errorf("COOKIE_HASH_KEY and COOKIE_BLOCK_KEY are required in production")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// GetDatabaseURL returns the database URL
func (c *Config) GetDatabaseURL() string {
	return c.DatabaseURL
}

// UsesS3 reports whether product images go to S3 rather than the local upload dir
func (c *Config) UsesS3() bool {
	return c.AWSS3Bucket != ""
}

// GetConfig returns the configuration loaded by Load (or set by SetConfig)
func GetConfig() *Config {
	return appConfig
}

// SetConfig sets the configuration instance (primarily for testing)
func SetConfig(cfg *Config) {
	appConfig = cfg
}

// decodeKey accepts a base64 string; an empty value yields a nil key.
func decodeKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(s)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
