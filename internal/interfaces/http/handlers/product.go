// internal/interfaces/http/handlers/product.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/infrastructure/storage"
	"gorm.io/gorm"
)

// ProductHandler handles product catalog endpoints
type ProductHandler struct {
	productService *product.Service
}

// NewProductHandler creates a new product handler
func NewProductHandler(db *gorm.DB, cfg *config.Config, imageStore storage.ImageStore, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		productService: product.NewService(db, cfg, imageStore, logger),
	}
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	var req product.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	resp, err := h.productService.List(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Products retrieved successfully", resp)
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid product ID")
		return
	}

	p, err := h.productService.Get(uint(productID))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Product retrieved successfully", p)
}

// Create handles POST /products (admin, multipart form with image)
func (h *ProductHandler) Create(c *gin.Context) {
	var req product.CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondBadRequest(c, "Product image is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondBadRequest(c, "Failed to read product image")
		return
	}
	defer file.Close()

	p, err := h.productService.Create(c.Request.Context(), &req, fileHeader.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, "Product created successfully", p)
}

// Update handles PUT /products/:id (admin)
func (h *ProductHandler) Update(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid product ID")
		return
	}

	var req product.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	p, err := h.productService.Update(uint(productID), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Product updated successfully", p)
}

// Delete handles DELETE /products/:id (admin)
func (h *ProductHandler) Delete(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid product ID")
		return
	}

	if err := h.productService.Delete(c.Request.Context(), uint(productID)); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Product deleted successfully", nil)
}
