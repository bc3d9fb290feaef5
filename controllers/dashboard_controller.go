package controllers

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/services"
	"github.com/shahzaib-autos/shahzaib-autos-api/utils"
)

// GetDashboard handles GET /api/v1/admin/dashboard
func GetDashboard(c *gin.Context) {
	stats, err := services.NewDashboardService(config.GetDB(), config.GetConfig()).Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to load dashboard")
		return
	}
	utils.RespondData(c, http.StatusOK, stats)
}

// ExportResource handles GET /api/v1/admin/exports/:resource?format=csv|xlsx&from=&to=
func ExportResource(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}

	req := services.ExportRequest{
		Resource: c.Param("resource"),
		Format:   strings.ToLower(c.DefaultQuery("format", services.FormatCSV)),
		From:     c.Query("from"),
		To:       c.Query("to"),
	}

	// Buffer the file so a failed query still gets a JSON error instead of a truncated download.
	var buf bytes.Buffer
	if err := services.NewExportService(config.GetDB()).Write(c.Request.Context(), req, &buf); err != nil {
		respondServiceError(c, err, "Failed to export "+req.Resource)
		return
	}

	services.RecordAudit(c.Request.Context(), admin, services.AuditExport, "export", req.Resource, map[string]interface{}{
		"format": req.Format,
		"from":   req.From,
		"to":     req.To,
	})

	c.Header("Content-Disposition", `attachment; filename="`+req.Filename(time.Now())+`"`)
	c.Data(http.StatusOK, req.ContentType(), buf.Bytes())
}
