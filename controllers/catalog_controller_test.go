package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogRouter(admin *models.Admin) *gin.Engine {
	router := gin.New()
	router.GET("/badges", ListBadges)
	router.GET("/services", ListServices)
	router.GET("/services/:slug/availability", GetServiceAvailability)

	admins := router.Group("/admin", mockAdminMiddleware(admin))
	admins.POST("/badges", CreateBadge)
	admins.PUT("/badges/:id", UpdateBadge)
	admins.DELETE("/badges/:id", DeleteBadge)
	admins.GET("/services", AdminListServices)
	admins.POST("/services", CreateService)
	admins.PUT("/services/:id", UpdateService)
	admins.DELETE("/services/:id", DeleteService)
	return router
}

func TestBadgeEndpoints(t *testing.T) {
	deps := setupTestDB(t)
	router := catalogRouter(deps.admin(t, "owner@shahzaibautos.pk", models.RoleOwner))

	w := performRequest(router, http.MethodPost, "/admin/badges", map[string]string{"name": "Best Seller", "color": "#e11d48"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	badge := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "best-seller", badge["slug"])
	base := fmt.Sprintf("/admin/badges/%d", uint(badge["id"].(float64)))

	w = performRequest(router, http.MethodPost, "/admin/badges", map[string]string{"name": "Sale", "color": "red"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodPut, base, map[string]string{"name": "Top Seller"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = performRequest(router, http.MethodGet, "/badges", nil)
	badges := decodeResponse(t, w)["data"].([]interface{})
	require.Len(t, badges, 1)
	assert.Equal(t, "Top Seller", badges[0].(map[string]interface{})["name"])

	w = performRequest(router, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = performRequest(router, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServiceEndpoints(t *testing.T) {
	deps := setupTestDB(t)
	router := catalogRouter(deps.admin(t, "owner@shahzaibautos.pk", models.RoleOwner))

	w := performRequest(router, http.MethodPost, "/admin/services", map[string]interface{}{
		"name":             "Full Car Detailing",
		"price":            12000,
		"duration_minutes": 180,
		"slot_capacity":    2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	svc := decodeResponse(t, w)["data"].(map[string]interface{})
	base := fmt.Sprintf("/admin/services/%d", uint(svc["id"].(float64)))

	w = performRequest(router, http.MethodPost, "/admin/services", map[string]interface{}{"name": "Quick Wash", "duration_minutes": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodGet, "/services/full-car-detailing/availability?date=2099-01-05", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	availability := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "2099-01-05", availability["date"])
	assert.NotEmpty(t, availability["slots"])

	w = performRequest(router, http.MethodGet, "/services/full-car-detailing/availability", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))

	w = performRequest(router, http.MethodGet, "/services/full-car-detailing/availability?date=05-01-2099", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_DATE", errorCode(t, w))

	w = performRequest(router, http.MethodPut, base, map[string]interface{}{"active": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = performRequest(router, http.MethodGet, "/services", nil)
	assert.Len(t, decodeResponse(t, w)["data"], 0, "inactive services are hidden from the storefront")
	w = performRequest(router, http.MethodGet, "/admin/services", nil)
	assert.Len(t, decodeResponse(t, w)["data"], 1)

	w = performRequest(router, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
