package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"go.uber.org/zap"
)

const (
	adminCookieName = "sa_admin_session"
	adminSessionTTL = 12 * time.Hour
	adminContextKey = "admin"
)

// AdminSessions issues and verifies signed+encrypted dashboard session cookies
type AdminSessions struct {
	sc     *securecookie.SecureCookie
	secure bool
}

type adminSession struct {
	AdminID uint  `json:"aid"`
	Version int   `json:"ver"`
	Issued  int64 `json:"iat"`
}

// NewAdminSessions builds the cookie codec. Missing keys are replaced with random
// ones, which invalidates sessions on every restart; production config requires keys.
func NewAdminSessions(cfg *config.Config) *AdminSessions {
	hashKey, blockKey := cfg.CookieHashKey, cfg.CookieBlockKey
	if len(hashKey) == 0 || len(blockKey) == 0 {
		zap.L().Warn("COOKIE_HASH_KEY/COOKIE_BLOCK_KEY not set, using ephemeral session keys")
		hashKey = securecookie.GenerateRandomKey(32)
		blockKey = securecookie.GenerateRandomKey(32)
	}

	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(adminSessionTTL.Seconds()))
	sc.SetSerializer(securecookie.JSONEncoder{})

	return &AdminSessions{sc: sc, secure: cfg.IsProduction()}
}

// Issue sets the session cookie for admin, bound to its current session version
func (s *AdminSessions) Issue(c *gin.Context, admin *models.Admin) error {
	encoded, err := s.sc.Encode(adminCookieName, adminSession{
		AdminID: admin.ID,
		Version: admin.SessionVersion,
		Issued:  time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     adminCookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secure,
		MaxAge:   int(adminSessionTTL.Seconds()),
	})
	return nil
}

// Clear expires the session cookie
func (s *AdminSessions) Clear(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     adminCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secure,
		MaxAge:   -1,
	})
}

// AdminID decodes the session cookie on the request
func (s *AdminSessions) AdminID(r *http.Request) (uint, bool) {
	sess, ok := s.decode(r)
	return sess.AdminID, ok
}

func (s *AdminSessions) decode(r *http.Request) (adminSession, bool) {
	var sess adminSession
	cookie, err := r.Cookie(adminCookieName)
	if err != nil {
		return sess, false
	}
	if err := s.sc.Decode(adminCookieName, cookie.Value, &sess); err != nil {
		return adminSession{}, false
	}
	if sess.AdminID == 0 {
		return adminSession{}, false
	}
	return sess, true
}

// RequireAdmin loads the active admin for the session cookie or aborts with 401.
// Cookies issued before the admin's last password change are rejected.
func (s *AdminSessions) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := s.decode(c.Request)
		if !ok {
			abortUnauthorized(c, "Admin session required")
			return
		}

		var admin models.Admin
		err := config.GetDB().First(&admin, sess.AdminID).Error
		if err != nil || !admin.Active || admin.SessionVersion != sess.Version {
			s.Clear(c)
			abortUnauthorized(c, "Admin session is no longer valid")
			return
		}

		c.Set(adminContextKey, &admin)
		c.Next()
	}
}

// RequirePermission aborts with 403 unless the current admin's role grants p.
// Must run after RequireAdmin.
func RequirePermission(p models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, err := GetAdmin(c)
		if err != nil {
			abortUnauthorized(c, "Admin session required")
			return
		}

		if !admin.Can(p) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Your role does not allow this action",
				},
			})
			return
		}

		c.Next()
	}
}

// GetAdmin returns the admin loaded by RequireAdmin
func GetAdmin(c *gin.Context) (*models.Admin, error) {
	v, exists := c.Get(adminContextKey)
	if !exists {
		return nil, &AuthError{Code: "MISSING_ADMIN", Message: "Admin not found in context"}
	}
	admin, ok := v.(*models.Admin)
	if !ok {
		return nil, &AuthError{Code: "INVALID_ADMIN", Message: "Admin is not in the expected format"}
	}
	return admin, nil
}

// SetAdmin stores an admin in the context (primarily for testing)
func SetAdmin(c *gin.Context, admin *models.Admin) {
	c.Set(adminContextKey, admin)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}
