package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/shahzaib-autos/shahzaib-autos-api/middleware"
	"github.com/shahzaib-autos/shahzaib-autos-api/services"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, issuer string, scopes []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: strings.Join(scopes, " "),
		},
	}
}

// BearerAuth stands in for EnsureValidToken: the bearer token is both the
// access token and the Auth0 subject.
func BearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "INVALID_TOKEN", "message": "Failed to validate JWT."},
			})
			return
		}
		c.Set("user_id", token)
		c.Set("access_token", token)
		c.Set("validated_claims", MockValidatedClaims(token, "https://test.auth0.com/", nil))
		c.Next()
	}
}

// Auth0Server serves /userinfo for registered tokens
type Auth0Server struct {
	*httptest.Server

	mu    sync.Mutex
	users map[string]*services.Auth0UserInfo
}

// NewAuth0Server starts a stand-in for the tenant's /userinfo endpoint
func NewAuth0Server() *Auth0Server {
	s := &Auth0Server{users: make(map[string]*services.Auth0UserInfo)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.userInfo))
	return s
}

// AddUser registers the profile returned for token
func (s *Auth0Server) AddUser(token string, info *services.Auth0UserInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[token] = info
}

func (s *Auth0Server) userInfo(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/userinfo" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	s.mu.Lock()
	info, ok := s.users[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
	s.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(info)
}
