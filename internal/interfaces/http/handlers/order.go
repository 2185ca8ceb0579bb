// internal/interfaces/http/handlers/order.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	orderService *order.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: order.NewService(db, cfg, logger),
	}
}

// Checkout handles POST /orders
func (h *OrderHandler) Checkout(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req order.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	resp, err := h.orderService.Checkout(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Order placed successfully"
	if resp.PaymentRequired {
		message = "Order placed, payment initiation required"
	}
	respondCreated(c, message, resp)
}

// GetMyOrders handles GET /orders/myorders
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	orders, err := h.orderService.GetMyOrders(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Orders retrieved successfully", orders)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	isAdmin := middleware.IsAdminFromContext(c)

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid order ID")
		return
	}

	o, err := h.orderService.GetOrder(uint(orderID), userID, isAdmin)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Order retrieved successfully", o)
}

// GetAllOrders handles GET /orders (admin)
func (h *OrderHandler) GetAllOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filters := &order.ListFilters{
		Status: order.OrderStatus(c.Query("status")),
		Page:   page,
		Limit:  limit,
	}
	if paidParam := c.Query("is_paid"); paidParam != "" {
		paid := paidParam == "true"
		filters.IsPaid = &paid
	}

	result, err := h.orderService.GetAllOrders(filters)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Orders retrieved successfully", result)
}

// MarkPaid handles PUT /orders/:id/pay (admin)
func (h *OrderHandler) MarkPaid(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid order ID")
		return
	}

	var details order.PaymentDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	o, err := h.orderService.MarkPaid(uint(orderID), &details)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Order marked as paid", o)
}

// MarkDelivered handles PUT /orders/:id/deliver (admin)
func (h *OrderHandler) MarkDelivered(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid order ID")
		return
	}

	o, err := h.orderService.MarkDelivered(uint(orderID))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Order marked as delivered", o)
}

// Cancel handles PUT /orders/:id/cancel (admin)
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid order ID")
		return
	}

	o, err := h.orderService.Cancel(uint(orderID))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Order cancelled successfully", o)
}
