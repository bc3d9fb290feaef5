package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/middleware"
	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"github.com/shahzaib-autos/shahzaib-autos-api/services"
	"github.com/shahzaib-autos/shahzaib-autos-api/utils"
	"go.uber.org/zap"
)

// domainStatus maps service error codes to HTTP statuses
var domainStatus = map[string]int{
	"NOT_FOUND":           http.StatusNotFound,
	"VALIDATION_ERROR":    http.StatusBadRequest,
	"SLUG_TAKEN":          http.StatusConflict,
	"EMAIL_TAKEN":         http.StatusConflict,
	"INVALID_TRANSITION":  http.StatusConflict,
	"INSUFFICIENT_STOCK":  http.StatusConflict,
	"PRODUCT_UNAVAILABLE": http.StatusUnprocessableEntity,
	"EMPTY_CART":          http.StatusBadRequest,
	"SLOT_UNAVAILABLE":    http.StatusConflict,
	"INVALID_SLOT":        http.StatusBadRequest,
	"INVALID_DATE":        http.StatusBadRequest,
	"SERVICE_UNAVAILABLE": http.StatusUnprocessableEntity,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"LAST_OWNER":          http.StatusConflict,
	"SELF_MODIFICATION":   http.StatusForbidden,
	"INVALID_ROLE":        http.StatusBadRequest,
	"WEAK_PASSWORD":       http.StatusBadRequest,
	"UNSUPPORTED_EXPORT":  http.StatusBadRequest,
}

// respondServiceError writes the envelope for an error returned by a service.
// Unknown errors are logged and reported as DATABASE_ERROR with fallback as the message.
func respondServiceError(c *gin.Context, err error, fallback string) {
	if de, ok := services.AsDomainError(err); ok {
		status, known := domainStatus[de.Code]
		if !known {
			status = http.StatusBadRequest
		}
		utils.RespondError(c, status, de.Code, err.Error())
		return
	}

	var uploadErr *utils.FileUploadError
	if errors.As(err, &uploadErr) {
		utils.RespondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
		return
	}

	zap.L().Error(fallback, zap.String("path", c.FullPath()), zap.Error(err))
	utils.RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", fallback)
}

// idParam parses a positive numeric path parameter, writing a 400 when it is not one
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// currentCustomer loads the customer profile for the JWT subject
func currentCustomer(c *gin.Context) (*models.Customer, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return nil, false
	}

	var customer models.Customer
	if err := config.GetDB().Where("auth0_id = ?", auth0ID).First(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer profile not found. Please create a profile first.")
		return nil, false
	}
	return &customer, true
}

// currentAdmin returns the admin loaded by RequireAdmin
func currentAdmin(c *gin.Context) (*models.Admin, bool) {
	admin, err := middleware.GetAdmin(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Admin session required")
		return nil, false
	}
	return admin, true
}

// statusRequest is the body of every PATCH .../status endpoint
type statusRequest struct {
	Status string `json:"status" binding:"required"`
}
