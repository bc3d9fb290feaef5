package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/middleware"
	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"github.com/shahzaib-autos/shahzaib-autos-api/services"
	"github.com/shahzaib-autos/shahzaib-autos-api/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDeps is the in-memory database and mock collaborators behind a controller test
type testDeps struct {
	db     *gorm.DB
	cfg    *config.Config
	email  *services.MockEmailService
	events *services.MockEventPublisher
	images *services.MockImageService
}

func setupTestDB(t *testing.T) *testDeps {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))

	cfg := &config.Config{
		GoEnv:                 "test",
		SiteURL:               "https://shahzaibautos.pk",
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

	originalDB, originalCfg := config.GetDB(), config.GetConfig()
	config.SetDB(db)
	config.SetConfig(cfg)

	deps := &testDeps{
		db:     db,
		cfg:    cfg,
		email:  services.NewMockEmailService(),
		events: services.NewMockEventPublisher(),
		images: services.NewMockImageService(),
	}
	deps.email.SetAsMockForTesting()
	deps.events.SetAsMockForTesting()
	deps.images.SetAsMockForTesting()
	services.NewMockCacheService().SetAsMockForTesting()
	// nil falls back to the audit_logs table of config.GetDB()
	services.SetAuditService(nil)

	t.Cleanup(func() {
		config.SetDB(originalDB)
		config.SetConfig(originalCfg)
		services.SetEmailService(nil)
		services.SetCacheService(nil)
		services.SetEventPublisher(nil)
		services.SetImageService(nil)
	})
	return deps
}

func (d *testDeps) customer(t *testing.T, auth0ID, email string) *models.Customer {
	t.Helper()
	c := models.Customer{Auth0ID: auth0ID, Name: "Usman Tariq", Email: email, Phone: "03001112233", City: "Lahore"}
	require.NoError(t, d.db.Create(&c).Error)
	return &c
}

func (d *testDeps) product(t *testing.T, name string, price int64, stock int, published bool) *models.Product {
	t.Helper()
	p := models.Product{Name: name, Slug: utils.Slugify(name), Price: price, Stock: stock, Published: published, Category: "lighting"}
	require.NoError(t, d.db.Create(&p).Error)
	return &p
}

func (d *testDeps) admin(t *testing.T, email string, role models.Role) *models.Admin {
	t.Helper()
	hash, err := services.HashPassword("correct-horse-battery")
	require.NoError(t, err)
	a := models.Admin{Email: email, Name: string(role), PasswordHash: hash, Role: role, Active: true}
	require.NoError(t, d.db.Create(&a).Error)
	return &a
}

// mockAuthMiddleware simulates the Auth0 JWT middleware for testing.
// It sets up the context exactly as the real EnsureValidToken middleware does.
func mockAuthMiddleware(auth0ID, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", accessToken)
		c.Set("validated_claims", &validator.ValidatedClaims{
			CustomClaims: &middleware.CustomClaims{Scope: "openid profile email"},
		})
		c.Next()
	}
}

// mockAdminMiddleware stands in for RequireAdmin
func mockAdminMiddleware(admin *models.Admin) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetAdmin(c, admin)
		c.Next()
	}
}

func newJSONRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func performRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	errBody, ok := decodeResponse(t, w)["error"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	return errBody["code"].(string)
}
