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

func bookingService() *services.BookingService {
	return services.NewBookingService(config.GetDB(), config.GetConfig())
}

// CreateBooking handles POST /api/v1/bookings
func CreateBooking(c *gin.Context) {
	customer, ok := currentCustomer(c)
	if !ok {
		return
	}

	var req services.BookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	booking, err := bookingService().Create(c.Request.Context(), customer, req)
	if err != nil {
		respondServiceError(c, err, "Failed to create booking")
		return
	}
	utils.RespondData(c, http.StatusCreated, booking)
}

// ListMyBookings handles GET /api/v1/bookings
func ListMyBookings(c *gin.Context) {
	customer, ok := currentCustomer(c)
	if !ok {
		return
	}

	bookings, err := bookingService().ListForCustomer(c.Request.Context(), customer.ID)
	if err != nil {
		respondServiceError(c, err, "Failed to list bookings")
		return
	}
	utils.RespondData(c, http.StatusOK, bookings)
}

// CancelMyBooking handles POST /api/v1/bookings/:id/cancel
func CancelMyBooking(c *gin.Context) {
	customer, ok := currentCustomer(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	booking, err := bookingService().CancelForCustomer(c.Request.Context(), customer, id)
	if err != nil {
		respondServiceError(c, err, "Failed to cancel booking")
		return
	}
	utils.RespondData(c, http.StatusOK, booking)
}

// AdminListBookings handles GET /api/v1/admin/bookings?status=&date=
func AdminListBookings(c *gin.Context) {
	page := utils.ParsePage(c)
	bookings, total, err := bookingService().List(c.Request.Context(), services.BookingFilter{
		Status: models.BookingStatus(strings.ToUpper(c.Query("status"))),
		Date:   c.Query("date"),
		Page:   page,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to list bookings")
		return
	}
	utils.RespondPage(c, http.StatusOK, bookings, page, total)
}

// UpdateBookingStatus handles PATCH /api/v1/admin/bookings/:id/status
func UpdateBookingStatus(c *gin.Context) {
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

	booking, err := bookingService().UpdateStatus(c.Request.Context(), admin, id, models.BookingStatus(strings.ToUpper(req.Status)))
	if err != nil {
		respondServiceError(c, err, "Failed to update booking status")
		return
	}
	utils.RespondData(c, http.StatusOK, booking)
}

// DeleteBooking handles DELETE /api/v1/admin/bookings/:id
func DeleteBooking(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := bookingService().Delete(c.Request.Context(), admin, id); err != nil {
		respondServiceError(c, err, "Failed to delete booking")
		return
	}
	utils.RespondData(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}
