// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(db *gorm.DB, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		cartService: cart.NewService(db, logger),
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	cartResponse, err := h.cartService.GetCart(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Cart retrieved successfully", cartResponse)
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	cartResponse, err := h.cartService.AddItem(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Item added to cart successfully", cartResponse)
}

// UpdateItem handles PUT /cart/items/:productId/:sizeId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	productID, sizeID, ok := cartLineParams(c)
	if !ok {
		return
	}

	var req cart.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	cartResponse, err := h.cartService.UpdateItemQuantity(userID, productID, sizeID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Cart item updated successfully", cartResponse)
}

// RemoveItem handles DELETE /cart/items/:productId/:sizeId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	productID, sizeID, ok := cartLineParams(c)
	if !ok {
		return
	}

	cartResponse, err := h.cartService.RemoveItem(userID, productID, sizeID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Item removed from cart successfully", cartResponse)
}

func cartLineParams(c *gin.Context) (productID, sizeID uint, ok bool) {
	pid, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid product ID")
		return 0, 0, false
	}
	sid, err := strconv.ParseUint(c.Param("sizeId"), 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid size ID")
		return 0, 0, false
	}
	return uint(pid), uint(sid), true
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	if err := h.cartService.Clear(userID); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Cart cleared successfully", nil)
}
