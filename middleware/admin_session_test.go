package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSessionTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Admin{}))
	config.SetDB(db)
	return db
}

// sessionCookie issues a session for admin and returns the Set-Cookie value
func sessionCookie(t *testing.T, sessions *AdminSessions, admin *models.Admin) *http.Cookie {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	require.NoError(t, sessions.Issue(c, admin))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestAdminSessions_IssueAndDecode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sessions := NewAdminSessions(&config.Config{GoEnv: "test"})

	cookie := sessionCookie(t, sessions, &models.Admin{ID: 42})
	assert.Equal(t, adminCookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	id, ok := sessions.AdminID(req)
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)
}

func TestAdminSessions_RejectsForeignCookie(t *testing.T) {
	issuer := NewAdminSessions(&config.Config{GoEnv: "test"})
	verifier := NewAdminSessions(&config.Config{GoEnv: "test"})

	cookie := sessionCookie(t, issuer, &models.Admin{ID: 7})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	_, ok := verifier.AdminID(req)
	assert.False(t, ok, "cookie signed with other keys must not decode")

	_, ok = verifier.AdminID(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}

func TestAdminSessions_Clear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sessions := NewAdminSessions(&config.Config{GoEnv: "test"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	sessions.Clear(c)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupSessionTestDB(t)
	sessions := NewAdminSessions(&config.Config{GoEnv: "test"})

	active := models.Admin{Email: "owner@shahzaibautos.pk", Name: "Owner", PasswordHash: "x", Role: models.RoleOwner, Active: true}
	require.NoError(t, db.Create(&active).Error)
	inactive := models.Admin{Email: "gone@shahzaibautos.pk", Name: "Gone", PasswordHash: "x", Role: models.RoleStaff, Active: true}
	require.NoError(t, db.Create(&inactive).Error)
	require.NoError(t, db.Model(&inactive).Update("active", false).Error)
	rotated := models.Admin{Email: "rotated@shahzaibautos.pk", Name: "Rotated", PasswordHash: "x", Role: models.RoleStaff, Active: true}
	require.NoError(t, db.Create(&rotated).Error)
	staleCookie := sessionCookie(t, sessions, &rotated)
	require.NoError(t, db.Model(&models.Admin{}).Where("id = ?", rotated.ID).Update("session_version", 1).Error)
	rotated.SessionVersion = 1

	router := gin.New()
	router.GET("/admin/me", sessions.RequireAdmin(), func(c *gin.Context) {
		admin, err := GetAdmin(c)
		require.NoError(t, err)
		c.JSON(http.StatusOK, gin.H{"email": admin.Email})
	})

	tests := []struct {
		name       string
		cookie     *http.Cookie
		wantStatus int
	}{
		{"no cookie", nil, http.StatusUnauthorized},
		{"active admin", sessionCookie(t, sessions, &active), http.StatusOK},
		{"inactive admin", sessionCookie(t, sessions, &inactive), http.StatusUnauthorized},
		{"unknown admin", sessionCookie(t, sessions, &models.Admin{ID: 9999}), http.StatusUnauthorized},
		{"issued before password change", staleCookie, http.StatusUnauthorized},
		{"issued after password change", sessionCookie(t, sessions, &rotated), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/me", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRequirePermission(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		admin      *models.Admin
		perm       models.Permission
		wantStatus int
	}{
		{"no admin in context", nil, models.PermDashboardRead, http.StatusUnauthorized},
		{"staff reads dashboard", &models.Admin{Role: models.RoleStaff, Active: true}, models.PermDashboardRead, http.StatusOK},
		{"staff edits products", &models.Admin{Role: models.RoleStaff, Active: true}, models.PermProductsManage, http.StatusForbidden},
		{"manager exports", &models.Admin{Role: models.RoleManager, Active: true}, models.PermExportsRead, http.StatusOK},
		{"manager manages admins", &models.Admin{Role: models.RoleManager, Active: true}, models.PermAdminsManage, http.StatusForbidden},
		{"owner manages admins", &models.Admin{Role: models.RoleOwner, Active: true}, models.PermAdminsManage, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/x", func(c *gin.Context) {
				if tt.admin != nil {
					SetAdmin(c, tt.admin)
				}
				c.Next()
			}, RequirePermission(tt.perm), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
