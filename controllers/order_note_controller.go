package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shahzaib-autos/shahzaib-autos-api/utils"
)

// CreateOrderNoteRequest represents the request body for POST /admin/orders/:id/notes
type CreateOrderNoteRequest struct {
	Text string `json:"text" binding:"required,min=1,max=2000"`
}

// ListOrderNotes handles GET /api/v1/admin/orders/:id/notes - oldest first
func ListOrderNotes(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	notes, err := orderService().ListNotes(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve notes")
		return
	}
	utils.RespondData(c, http.StatusOK, notes)
}

// CreateOrderNote handles POST /api/v1/admin/orders/:id/notes
func CreateOrderNote(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req CreateOrderNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	note, err := orderService().AddNote(c.Request.Context(), admin, id, req.Text)
	if err != nil {
		respondServiceError(c, err, "Failed to create note")
		return
	}
	utils.RespondData(c, http.StatusCreated, note)
}
