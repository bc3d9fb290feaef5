package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth0Service_GetUserInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"auth0|abc","email":"ali@example.pk","name":"Ali Raza","phone_number":"+923001234567"}`))
	}))
	defer server.Close()

	svc := NewAuth0Service(&config.Config{Auth0Domain: server.URL})

	info, err := svc.GetUserInfo(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "auth0|abc", info.Sub)
	assert.Equal(t, "ali@example.pk", info.Email)
	assert.Equal(t, "Ali Raza", info.Name)
	assert.Equal(t, "+923001234567", info.PhoneNumber)

	_, err = svc.GetUserInfo(context.Background(), "bad-token")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestAuth0Service_UserInfoURL(t *testing.T) {
	assert.Equal(t, "https://shahzaib.eu.auth0.com/userinfo",
		NewAuth0Service(&config.Config{Auth0Domain: "shahzaib.eu.auth0.com"}).userInfoURL())
	assert.Equal(t, "http://127.0.0.1:9999/userinfo",
		NewAuth0Service(&config.Config{Auth0Domain: "http://127.0.0.1:9999/"}).userInfoURL())
}
