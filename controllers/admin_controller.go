package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/middleware"
	"github.com/shahzaib-autos/shahzaib-autos-api/services"
	"github.com/shahzaib-autos/shahzaib-autos-api/utils"
	"go.uber.org/zap"
)

// AdminLoginRequest represents the request body for POST /admin/login
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func adminService() *services.AdminService {
	return services.NewAdminService(config.GetDB())
}

// AdminLogin handles POST /api/v1/admin/login and sets the session cookie
func AdminLogin(sessions *middleware.AdminSessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AdminLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondValidationError(c, http.StatusBadRequest, err)
			return
		}

		admin, err := adminService().Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondServiceError(c, err, "Failed to sign in")
			return
		}

		if err := sessions.Issue(c, admin); err != nil {
			zap.L().Error("failed to issue admin session", zap.Uint("admin_id", admin.ID), zap.Error(err))
			utils.RespondError(c, http.StatusInternalServerError, "SESSION_ERROR", "Failed to start session")
			return
		}
		utils.RespondData(c, http.StatusOK, gin.H{
			"admin":       admin,
			"permissions": admin.Role.Permissions(),
		})
	}
}

// AdminLogout handles POST /api/v1/admin/logout
func AdminLogout(sessions *middleware.AdminSessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions.Clear(c)
		utils.RespondData(c, http.StatusOK, gin.H{"logged_out": true})
	}
}

// AdminMe handles GET /api/v1/admin/me
func AdminMe(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}
	utils.RespondData(c, http.StatusOK, gin.H{
		"admin":       admin,
		"permissions": admin.Role.Permissions(),
	})
}

// ListAdmins handles GET /api/v1/admin/admins
func ListAdmins(c *gin.Context) {
	admins, err := adminService().List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to list admins")
		return
	}
	utils.RespondData(c, http.StatusOK, admins)
}

// CreateAdmin handles POST /api/v1/admin/admins
func CreateAdmin(c *gin.Context) {
	actor, ok := currentAdmin(c)
	if !ok {
		return
	}

	var req services.AdminInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	admin, err := adminService().Create(c.Request.Context(), actor, req)
	if err != nil {
		respondServiceError(c, err, "Failed to create admin")
		return
	}
	utils.RespondData(c, http.StatusCreated, admin)
}

// UpdateAdmin handles PUT /api/v1/admin/admins/:id. An admin changing their own
// password gets a fresh session cookie; every other session of that admin ends.
func UpdateAdmin(sessions *middleware.AdminSessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentAdmin(c)
		if !ok {
			return
		}
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		var req services.AdminUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondValidationError(c, http.StatusBadRequest, err)
			return
		}

		admin, err := adminService().Update(c.Request.Context(), actor, id, req)
		if err != nil {
			respondServiceError(c, err, "Failed to update admin")
			return
		}

		if req.Password != nil && admin.ID == actor.ID {
			if err := sessions.Issue(c, admin); err != nil {
				zap.L().Warn("failed to reissue admin session", zap.Uint("admin_id", admin.ID), zap.Error(err))
			}
		}
		utils.RespondData(c, http.StatusOK, admin)
	}
}

// DeleteAdmin handles DELETE /api/v1/admin/admins/:id
func DeleteAdmin(c *gin.Context) {
	actor, ok := currentAdmin(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := adminService().Delete(c.Request.Context(), actor, id); err != nil {
		respondServiceError(c, err, "Failed to delete admin")
		return
	}
	utils.RespondData(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// ListAuditLog handles GET /api/v1/admin/audit?entity=&entity_id=&limit=
func ListAuditLog(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	records, err := services.GetAuditService().List(c.Request.Context(), services.AuditFilter{
		Entity:   c.Query("entity"),
		EntityID: c.Query("entity_id"),
		Limit:    limit,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to load audit log")
		return
	}
	utils.RespondData(c, http.StatusOK, records)
}
