package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"github.com/shahzaib-autos/shahzaib-autos-api/services"
	"github.com/shahzaib-autos/shahzaib-autos-api/utils"
)

func leadService() *services.LeadService {
	return services.NewLeadService(config.GetDB(), config.GetConfig())
}

// CreateLead handles POST /api/v1/leads - the public contact form
func CreateLead(c *gin.Context) {
	var req services.LeadInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	lead, err := leadService().Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to submit enquiry")
		return
	}
	utils.RespondData(c, http.StatusCreated, lead)
}

// AdminListLeads handles GET /api/v1/admin/leads?status=
func AdminListLeads(c *gin.Context) {
	page := utils.ParsePage(c)
	leads, total, err := leadService().List(c.Request.Context(), models.LeadStatus(strings.ToUpper(c.Query("status"))), page)
	if err != nil {
		respondServiceError(c, err, "Failed to list leads")
		return
	}
	utils.RespondPage(c, http.StatusOK, leads, page, total)
}

// UpdateLeadStatus handles PATCH /api/v1/admin/leads/:id/status
func UpdateLeadStatus(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	lead, err := leadService().UpdateStatus(c.Request.Context(), admin, id, models.LeadStatus(strings.ToUpper(req.Status)))
	if err != nil {
		respondServiceError(c, err, "Failed to update lead status")
		return
	}
	utils.RespondData(c, http.StatusOK, lead)
}

// DeleteLead handles DELETE /api/v1/admin/leads/:id
func DeleteLead(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := leadService().Delete(c.Request.Context(), admin, id); err != nil {
		respondServiceError(c, err, "Failed to delete lead")
		return
	}
	utils.RespondData(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}
