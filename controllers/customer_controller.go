package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/middleware"
	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"github.com/shahzaib-autos/shahzaib-autos-api/services"
	"github.com/shahzaib-autos/shahzaib-autos-api/utils"
	"go.uber.org/zap"
)

// UpdateCustomerRequest represents the request body for updating a customer profile
type UpdateCustomerRequest struct {
	Name    string `json:"name" binding:"omitempty,max=100"`
	Phone   string `json:"phone" binding:"omitempty,max=20"`
	Address string `json:"address" binding:"omitempty,max=300"`
	City    string `json:"city" binding:"omitempty,max=60"`
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

// CreateCustomer handles POST /api/v1/customers - creates the profile from Auth0 /userinfo
func CreateCustomer(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user ID from token")
		return
	}

	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "MISSING_TOKEN", "Access token not found")
		return
	}

	userInfo, err := services.NewAuth0Service(config.GetConfig()).GetUserInfo(c.Request.Context(), accessToken)
	if err != nil {
		zap.L().Warn("auth0 userinfo failed", zap.String("auth0_id", auth0ID), zap.Error(err))
		utils.RespondError(c, http.StatusBadGateway, "AUTH0_ERROR", "Failed to fetch user information from Auth0")
		return
	}

	if userInfo.Email == "" {
		utils.RespondError(c, http.StatusBadRequest, "MISSING_EMAIL", "Email not provided by Auth0")
		return
	}
	name := userInfo.Name
	if name == "" {
		name = strings.Split(userInfo.Email, "@")[0]
	}

	customer := models.Customer{
		Auth0ID: auth0ID,
		Name:    name,
		Email:   strings.ToLower(userInfo.Email),
		Phone:   userInfo.PhoneNumber,
	}

	if err := config.GetDB().Create(&customer).Error; err != nil {
		if isUniqueViolation(err) {
			utils.RespondError(c, http.StatusConflict, "CUSTOMER_EXISTS", "A customer with this Auth0 ID or email already exists")
			return
		}
		zap.L().Error("failed to create customer", zap.Error(err))
		utils.RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create customer")
		return
	}

	utils.RespondData(c, http.StatusCreated, customer)
}

// GetMyProfile handles GET /api/v1/customers/me
func GetMyProfile(c *gin.Context) {
	customer, ok := currentCustomer(c)
	if !ok {
		return
	}
	utils.RespondData(c, http.StatusOK, customer)
}

// UpdateMyProfile handles PUT /api/v1/customers/me - updates contact and default shipping details
func UpdateMyProfile(c *gin.Context) {
	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	customer, ok := currentCustomer(c)
	if !ok {
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.Phone != "" {
		updates["phone"] = strings.TrimSpace(req.Phone)
	}
	if req.Address != "" {
		updates["address"] = strings.TrimSpace(req.Address)
	}
	if req.City != "" {
		updates["city"] = strings.TrimSpace(req.City)
	}

	if len(updates) == 0 {
		utils.RespondData(c, http.StatusOK, customer)
		return
	}

	db := config.GetDB()
	if err := db.Model(customer).Updates(updates).Error; err != nil {
		zap.L().Error("failed to update customer", zap.Uint("customer_id", customer.ID), zap.Error(err))
		utils.RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update customer profile")
		return
	}

	if err := db.First(customer, customer.ID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch updated profile")
		return
	}

	utils.RespondData(c, http.StatusOK, customer)
}
