// internal/interfaces/http/handlers/size.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/size"
	"gorm.io/gorm"
)

// SizeHandler handles size catalog endpoints
type SizeHandler struct {
	sizeService *size.Service
}

// NewSizeHandler creates a new size handler
func NewSizeHandler(db *gorm.DB, cfg *config.Config) *SizeHandler {
	return &SizeHandler{
		sizeService: size.NewService(db, cfg),
	}
}

// List handles GET /sizes
func (h *SizeHandler) List(c *gin.Context) {
	sizes, err := h.sizeService.List(c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Sizes retrieved successfully", sizes)
}

// Get handles GET /sizes/:id
func (h *SizeHandler) Get(c *gin.Context) {
	sizeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid size ID")
		return
	}

	s, err := h.sizeService.Get(uint(sizeID))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Size retrieved successfully", s)
}

// Create handles POST /sizes (admin)
func (h *SizeHandler) Create(c *gin.Context) {
	var req size.CreateSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	s, err := h.sizeService.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, "Size created successfully", s)
}

// Delete handles DELETE /sizes/:id (admin)
func (h *SizeHandler) Delete(c *gin.Context) {
	sizeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid size ID")
		return
	}

	if err := h.sizeService.Delete(uint(sizeID)); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Size deleted successfully", nil)
}
