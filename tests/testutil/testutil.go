package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/middleware"
	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"github.com/shahzaib-autos/shahzaib-autos-api/routes"
	"github.com/shahzaib-autos/shahzaib-autos-api/services"
	"github.com/shahzaib-autos/shahzaib-autos-api/utils"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AdminPassword is the password of every admin created by CreateAdmin
const AdminPassword = "correct-horse-battery"

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	if env := os.Getenv("GO_ENV"); env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q.", env)
	}
}

// App is the full router over an in-memory database with mocked infrastructure
type App struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Router *gin.Engine
	Email  *services.MockEmailService
	Events *services.MockEventPublisher
	Images *services.MockImageService
	Cache  *services.MockCacheService
}

// TestConfig mirrors the production defaults with a fixed WhatsApp number
func TestConfig() *config.Config {
	return &config.Config{
		GoEnv:                 "test",
		SiteURL:               "https://shahzaibautos.pk",
		CORSAllowedOrigins:    []string{"http://localhost:3000"},
		AdminNotifyEmail:      "orders@shahzaibautos.pk",
		ShopWhatsAppNumber:    "0300-1234567",
		StaleOrderAge:         24 * time.Hour,
		SweepInterval:         time.Hour,
		ShippingFee:           250,
		FreeShippingThreshold: 10000,
		BookingOpenHour:       9,
		BookingCloseHour:      18,
		BookingClosedWeekday:  "Friday",
		LowStockThreshold:     5,
	}
}

// NewApp wires routes.SetupRouter the way serve does, with customerAuth standing in
// for Auth0. Singletons are restored when the test ends.
func NewApp(t *testing.T, customerAuth gin.HandlerFunc) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("GO_ENV", "test")
	RequireTestEnvironment(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))

	cfg := TestConfig()
	originalDB, originalCfg := config.GetDB(), config.GetConfig()
	config.SetDB(db)
	config.SetConfig(cfg)

	app := &App{
		DB:     db,
		Cfg:    cfg,
		Email:  services.NewMockEmailService(),
		Events: services.NewMockEventPublisher(),
		Images: services.NewMockImageService(),
		Cache:  services.NewMockCacheService(),
	}
	app.Email.SetAsMockForTesting()
	app.Events.SetAsMockForTesting()
	app.Images.SetAsMockForTesting()
	app.Cache.SetAsMockForTesting()
	services.SetAuditService(nil)

	app.Router = routes.SetupRouter(cfg, zap.NewNop(), middleware.NewAdminSessions(cfg), customerAuth)

	t.Cleanup(func() {
		_ = sqlDB.Close()
		config.SetDB(originalDB)
		config.SetConfig(originalCfg)
		services.SetEmailService(nil)
		services.SetEventPublisher(nil)
		services.SetImageService(nil)
		services.SetCacheService(nil)
	})
	return app
}

// RequestOption decorates an outgoing test request
type RequestOption func(*http.Request)

// WithCookie attaches a session cookie
func WithCookie(cookie *http.Cookie) RequestOption {
	return func(r *http.Request) { r.AddCookie(cookie) }
}

// WithBearer attaches a customer token
func WithBearer(token string) RequestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

// Do sends a JSON request through the router
func (a *App) Do(method, path string, body interface{}, opts ...RequestOption) *httptest.ResponseRecorder {
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

// CreateAdmin inserts an active admin whose password is AdminPassword
func (a *App) CreateAdmin(t *testing.T, email string, role models.Role) *models.Admin {
	t.Helper()
	hash, err := services.HashPassword(AdminPassword)
	require.NoError(t, err)
	admin := models.Admin{Email: email, Name: string(role), PasswordHash: hash, Role: role, Active: true}
	require.NoError(t, a.DB.Create(&admin).Error)
	return &admin
}

// Login signs in through POST /admin/login and returns the session cookie
func (a *App) Login(t *testing.T, email string) *http.Cookie {
	t.Helper()
	w := a.Do(http.MethodPost, "/api/v1/admin/login", map[string]string{"email": email, "password": AdminPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == "sa_admin_session" {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

// CreateCustomer inserts a customer profile for auth0ID
func (a *App) CreateCustomer(t *testing.T, auth0ID, email string) *models.Customer {
	t.Helper()
	c := models.Customer{Auth0ID: auth0ID, Name: "Usman Tariq", Email: email, Phone: "03001112233", City: "Lahore"}
	require.NoError(t, a.DB.Create(&c).Error)
	return &c
}

// CreateProduct inserts a published product
func (a *App) CreateProduct(t *testing.T, name string, price int64, stock int) *models.Product {
	t.Helper()
	p := models.Product{Name: name, Slug: utils.Slugify(name), Category: "parts", Price: price, Stock: stock, Published: true}
	require.NoError(t, a.DB.Create(&p).Error)
	return &p
}

// CreateService inserts an active workshop service
func (a *App) CreateService(t *testing.T, name string, capacity int) *models.Service {
	t.Helper()
	svc := models.Service{Name: name, Slug: utils.Slugify(name), Price: 1500, DurationMinutes: 60, SlotCapacity: capacity, Active: true}
	require.NoError(t, a.DB.Create(&svc).Error)
	return &svc
}

// Decode parses a JSON envelope
func Decode(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &response), string(body))
	return response
}

// Data returns the envelope's data object
func Data(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	data, ok := Decode(t, body)["data"].(map[string]interface{})
	require.True(t, ok, "data is not an object: %s", body)
	return data
}

// ErrorCode returns error.code from a failure envelope
func ErrorCode(t *testing.T, body []byte) string {
	t.Helper()
	errObj, ok := Decode(t, body)["error"].(map[string]interface{})
	require.True(t, ok, "no error object: %s", body)
	return errObj["code"].(string)
}
