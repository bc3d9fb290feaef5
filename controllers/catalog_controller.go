package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/services"
	"github.com/shahzaib-autos/shahzaib-autos-api/utils"
)

func catalogService() *services.CatalogService {
	return services.NewCatalogService(config.GetDB())
}

// ListBadges handles GET /api/v1/badges and GET /api/v1/admin/badges
func ListBadges(c *gin.Context) {
	badges, err := catalogService().ListBadges(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to list badges")
		return
	}
	utils.RespondData(c, http.StatusOK, badges)
}

// CreateBadge handles POST /api/v1/admin/badges
func CreateBadge(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}

	var req services.BadgeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	badge, err := catalogService().CreateBadge(c.Request.Context(), admin, req)
	if err != nil {
		respondServiceError(c, err, "Failed to create badge")
		return
	}
	utils.RespondData(c, http.StatusCreated, badge)
}

// UpdateBadge handles PUT /api/v1/admin/badges/:id
func UpdateBadge(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.BadgeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	badge, err := catalogService().UpdateBadge(c.Request.Context(), admin, id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to update badge")
		return
	}
	utils.RespondData(c, http.StatusOK, badge)
}

// DeleteBadge handles DELETE /api/v1/admin/badges/:id
func DeleteBadge(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := catalogService().DeleteBadge(c.Request.Context(), admin, id); err != nil {
		respondServiceError(c, err, "Failed to delete badge")
		return
	}
	utils.RespondData(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// ListServices handles GET /api/v1/services - active services only
func ListServices(c *gin.Context) {
	list, err := catalogService().ListServices(c.Request.Context(), true)
	if err != nil {
		respondServiceError(c, err, "Failed to list services")
		return
	}
	utils.RespondData(c, http.StatusOK, list)
}

// AdminListServices handles GET /api/v1/admin/services - including inactive ones
func AdminListServices(c *gin.Context) {
	list, err := catalogService().ListServices(c.Request.Context(), false)
	if err != nil {
		respondServiceError(c, err, "Failed to list services")
		return
	}
	utils.RespondData(c, http.StatusOK, list)
}

// CreateService handles POST /api/v1/admin/services
func CreateService(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}

	var req services.ServiceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	svc, err := catalogService().CreateService(c.Request.Context(), admin, req)
	if err != nil {
		respondServiceError(c, err, "Failed to create service")
		return
	}
	utils.RespondData(c, http.StatusCreated, svc)
}

// UpdateService handles PUT /api/v1/admin/services/:id
func UpdateService(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.ServiceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	svc, err := catalogService().UpdateService(c.Request.Context(), admin, id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to update service")
		return
	}
	utils.RespondData(c, http.StatusOK, svc)
}

// DeleteService handles DELETE /api/v1/admin/services/:id
func DeleteService(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := catalogService().DeleteService(c.Request.Context(), admin, id); err != nil {
		respondServiceError(c, err, "Failed to delete service")
		return
	}
	utils.RespondData(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// GetServiceAvailability handles GET /api/v1/services/:slug/availability?date=YYYY-MM-DD
func GetServiceAvailability(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "date is required (YYYY-MM-DD)")
		return
	}

	slots, err := services.NewBookingService(config.GetDB(), config.GetConfig()).
		Availability(c.Request.Context(), c.Param("slug"), date)
	if err != nil {
		respondServiceError(c, err, "Failed to load availability")
		return
	}
	utils.RespondData(c, http.StatusOK, gin.H{"date": date, "slots": slots})
}
