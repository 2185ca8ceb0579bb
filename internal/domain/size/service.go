// internal/domain/size/service.go
package size

import (
	"errors"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles size reference data
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new size service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateSizeRequest represents size creation data
type CreateSizeRequest struct {
	Category string `json:"category" binding:"required"`
	System   string `json:"system" binding:"required"`
	Value    string `json:"value" binding:"required"`
}

// Create creates a new size entry
func (s *Service) Create(req *CreateSizeRequest) (*Size, error) {
	category := SizeCategory(req.Category)
	system := SizeSystem(req.System)

	if !ValidCategory(category) {
		return nil, apperrors.Validation("invalid size category: %s", req.Category)
	}
	if !ValidSystem(system) {
		return nil, apperrors.Validation("invalid size system: %s", req.System)
	}

	sz := Size{
		Category: category,
		System:   system,
		Value:    req.Value,
	}

	if err := s.db.Create(&sz).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	return &sz, nil
}

// List returns all sizes, optionally filtered by category
func (s *Service) List(category string) ([]Size, error) {
	query := s.db.Order("category, system, value")
	if category != "" {
		if !ValidCategory(SizeCategory(category)) {
			return nil, apperrors.Validation("invalid size category: %s", category)
		}
		query = query.Where("category = ?", category)
	}

	var sizes []Size
	if err := query.Find(&sizes).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return sizes, nil
}

// Get retrieves a single size by ID
func (s *Service) Get(id uint) (*Size, error) {
	var sz Size
	if err := s.db.First(&sz, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("size not found")
		}
		return nil, apperrors.Internal(err)
	}
	return &sz, nil
}

// Delete removes a size; sizes referenced by products cannot be removed
func (s *Service) Delete(id uint) error {
	var count int64
	if err := s.db.Table("product_sizes").Where("size_id = ?", id).Count(&count).Error; err != nil {
		return apperrors.Internal(err)
	}
	if count > 0 {
		return apperrors.Conflict("size is in use by %d product(s)", count)
	}

	result := s.db.Delete(&Size{}, id)
	if result.Error != nil {
		return apperrors.Internal(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("size not found")
	}
	return nil
}
