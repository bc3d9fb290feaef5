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

// PaymentStatusRequest represents the request body for PATCH /admin/orders/:id/payment
type PaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

func orderService() *services.OrderService {
	return services.NewOrderService(config.GetDB(), config.GetConfig())
}

// CreateOrder handles POST /api/v1/orders - checkout for the authenticated customer
func CreateOrder(c *gin.Context) {
	customer, ok := currentCustomer(c)
	if !ok {
		return
	}

	var req services.CheckoutInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	order, err := orderService().Checkout(c.Request.Context(), customer, req)
	if err != nil {
		respondServiceError(c, err, "Failed to place order")
		return
	}
	utils.RespondData(c, http.StatusCreated, order)
}

// ListMyOrders handles GET /api/v1/orders - the customer's own orders, newest first
func ListMyOrders(c *gin.Context) {
	customer, ok := currentCustomer(c)
	if !ok {
		return
	}

	orders, err := orderService().ListForCustomer(c.Request.Context(), customer.ID)
	if err != nil {
		respondServiceError(c, err, "Failed to list orders")
		return
	}
	utils.RespondData(c, http.StatusOK, orders)
}

// GetMyOrder handles GET /api/v1/orders/:id
func GetMyOrder(c *gin.Context) {
	customer, ok := currentCustomer(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, err := orderService().GetForCustomer(c.Request.Context(), customer.ID, id)
	if err != nil {
		respondServiceError(c, err, "Failed to load order")
		return
	}
	utils.RespondData(c, http.StatusOK, order)
}

// CancelMyOrder handles POST /api/v1/orders/:id/cancel
func CancelMyOrder(c *gin.Context) {
	customer, ok := currentCustomer(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, err := orderService().CancelForCustomer(c.Request.Context(), customer, id)
	if err != nil {
		respondServiceError(c, err, "Failed to cancel order")
		return
	}
	utils.RespondData(c, http.StatusOK, order)
}

// AdminListOrders handles GET /api/v1/admin/orders?status=&from=&to=&q=
func AdminListOrders(c *gin.Context) {
	page := utils.ParsePage(c)
	orders, total, err := orderService().List(c.Request.Context(), services.OrderFilter{
		Status: models.OrderStatus(strings.ToUpper(c.Query("status"))),
		From:   c.Query("from"),
		To:     c.Query("to"),
		Query:  c.Query("q"),
		Page:   page,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to list orders")
		return
	}
	utils.RespondPage(c, http.StatusOK, orders, page, total)
}

// AdminGetOrder handles GET /api/v1/admin/orders/:id
func AdminGetOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, err := orderService().Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to load order")
		return
	}
	utils.RespondData(c, http.StatusOK, order)
}

// UpdateOrderStatus handles PATCH /api/v1/admin/orders/:id/status
func UpdateOrderStatus(c *gin.Context) {
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

	order, err := orderService().UpdateStatus(c.Request.Context(), admin, id, models.OrderStatus(strings.ToUpper(req.Status)))
	if err != nil {
		respondServiceError(c, err, "Failed to update order status")
		return
	}
	utils.RespondData(c, http.StatusOK, order)
}

// UpdateOrderPayment handles PATCH /api/v1/admin/orders/:id/payment
func UpdateOrderPayment(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req PaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	order, err := orderService().SetPaymentStatus(c.Request.Context(), admin, id, models.PaymentStatus(strings.ToUpper(req.PaymentStatus)))
	if err != nil {
		respondServiceError(c, err, "Failed to update payment status")
		return
	}
	utils.RespondData(c, http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/v1/admin/orders/:id
func DeleteOrder(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := orderService().Delete(c.Request.Context(), admin, id); err != nil {
		respondServiceError(c, err, "Failed to delete order")
		return
	}
	utils.RespondData(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// SweepStaleOrders handles POST /api/v1/admin/orders/sweep-stale.
// A manual sweep does not take the scheduler's lock.
func SweepStaleOrders(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}

	result, err := orderService().SweepStale(c.Request.Context(), admin, false)
	if err != nil {
		respondServiceError(c, err, "Failed to sweep stale orders")
		return
	}
	utils.RespondData(c, http.StatusOK, result)
}
