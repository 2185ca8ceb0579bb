// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/size"
	"github.com/your-org/storefront-backend/internal/infrastructure/storage"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles catalog business logic
type Service struct {
	db         *gorm.DB
	config     *config.Config
	imageStore storage.ImageStore
	logger     *logrus.Logger
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config, imageStore storage.ImageStore, logger *logrus.Logger) *Service {
	return &Service{
		db:         db,
		config:     cfg,
		imageStore: imageStore,
		logger:     logger,
	}
}

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	Name        string `form:"name" binding:"required"`
	Description string `form:"description"`
	Price       int64  `form:"price" binding:"min=0"`
	Stock       int    `form:"stock" binding:"min=0"`
	IsOnSale    bool   `form:"is_on_sale"`
	Discount    int    `form:"discount" binding:"min=0,max=100"`
	Brand       string `form:"brand"`
	Color       string `form:"color"`
	Material    string `form:"material"`
	SizeIDs     []uint `form:"size_ids"`
}

// UpdateProductRequest represents product update data; nil fields are left unchanged
type UpdateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
	Stock       *int    `json:"stock"`
	IsOnSale    *bool   `json:"is_on_sale"`
	Discount    *int    `json:"discount"`
	Brand       *string `json:"brand"`
	Color       *string `json:"color"`
	Material    *string `json:"material"`
	SizeIDs     []uint  `json:"size_ids"`
}

// ProductListRequest represents catalog list query parameters
type ProductListRequest struct {
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=20"`
	Brand    string `form:"brand"`
	OnSale   *bool  `form:"on_sale"`
	InStock  *bool  `form:"in_stock"`
	SortBy   string `form:"sort_by,default=created_at"`
	SortDesc bool   `form:"sort_desc,default=true"`
}

// ProductListResponse represents a paginated catalog page
type ProductListResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// Create creates a product, uploading its image first. If the database write
// fails the uploaded image is deleted again; that rollback is best effort and
// a failure to delete is logged, not returned.
func (s *Service) Create(ctx context.Context, req *CreateProductRequest, imageName string, image io.Reader) (*Product, error) {
	if req.Price < 0 {
		return nil, apperrors.Validation("price cannot be negative")
	}
	if req.Discount < 0 || req.Discount > 100 {
		return nil, apperrors.Validation("discount must be between 0 and 100")
	}

	sizes, err := s.resolveSizes(req.SizeIDs)
	if err != nil {
		return nil, err
	}

	ref, err := s.imageStore.Upload(ctx, imageName, image)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	prod := Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Stock:         req.Stock,
		IsOnSale:      req.IsOnSale,
		Discount:      req.Discount,
		Image:         ref.URL,
		ImagePublicID: ref.PublicID,
		Brand:         req.Brand,
		Color:         req.Color,
		Material:      req.Material,
		Sizes:         sizes,
	}

	if err := s.db.Create(&prod).Error; err != nil {
		// Compensate for the already-uploaded image
		if delErr := s.imageStore.Delete(ctx, ref.PublicID); delErr != nil {
			s.logger.WithError(delErr).WithField("public_id", ref.PublicID).
				Warn("Failed to delete orphaned image after product create failure")
		}
		return nil, apperrors.Internal(err)
	}

	return &prod, nil
}

// Get retrieves a product with its size set
func (s *Service) Get(id uint) (*Product, error) {
	var prod Product
	err := s.db.Preload("Sizes").First(&prod, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product not found")
		}
		return nil, apperrors.Internal(err)
	}
	return &prod, nil
}

// List returns a catalog page
func (s *Service) List(req *ProductListRequest) (*ProductListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Product{}).Preload("Sizes")
	if req.Brand != "" {
		query = query.Where("brand = ?", req.Brand)
	}
	if req.OnSale != nil {
		query = query.Where("is_on_sale = ?", *req.OnSale)
	}
	if req.InStock != nil && *req.InStock {
		query = query.Where("stock > 0")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	sortBy := req.SortBy
	switch sortBy {
	case "name", "price", "created_at":
	default:
		sortBy = "created_at"
	}
	dir := "asc"
	if req.SortDesc {
		dir = "desc"
	}

	var products []Product
	offset := (req.Page - 1) * req.Limit
	if err := query.Order(sortBy + " " + dir).Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ProductListResponse{
		Products: products,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// Update applies a partial update to a product
func (s *Service) Update(id uint, req *UpdateProductRequest) (*Product, error) {
	prod, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		prod.Name = *req.Name
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, apperrors.Validation("price cannot be negative")
		}
		prod.Price = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, apperrors.Validation("stock cannot be negative")
		}
		prod.Stock = *req.Stock
	}
	if req.IsOnSale != nil {
		prod.IsOnSale = *req.IsOnSale
	}
	if req.Discount != nil {
		if *req.Discount < 0 || *req.Discount > 100 {
			return nil, apperrors.Validation("discount must be between 0 and 100")
		}
		prod.Discount = *req.Discount
	}
	if req.Brand != nil {
		prod.Brand = *req.Brand
	}
	if req.Color != nil {
		prod.Color = *req.Color
	}
	if req.Material != nil {
		prod.Material = *req.Material
	}

	if req.SizeIDs != nil {
		sizes, err := s.resolveSizes(req.SizeIDs)
		if err != nil {
			return nil, err
		}
		if err := s.db.Model(prod).Association("Sizes").Replace(sizes); err != nil {
			return nil, apperrors.Internal(err)
		}
		prod.Sizes = sizes
	}

	if err := s.db.Save(prod).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return prod, nil
}

// Delete removes a product and its stored image (best effort)
func (s *Service) Delete(ctx context.Context, id uint) error {
	prod, err := s.Get(id)
	if err != nil {
		return err
	}

	if err := s.db.Delete(prod).Error; err != nil {
		return apperrors.Internal(err)
	}

	if err := s.imageStore.Delete(ctx, prod.ImagePublicID); err != nil {
		s.logger.WithError(err).WithField("public_id", prod.ImagePublicID).
			Warn("Failed to delete image for removed product")
	}
	return nil
}

func (s *Service) resolveSizes(sizeIDs []uint) ([]size.Size, error) {
	if len(sizeIDs) == 0 {
		return nil, nil
	}
	var sizes []size.Size
	if err := s.db.Where("id IN ?", sizeIDs).Find(&sizes).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	if len(sizes) != len(sizeIDs) {
		return nil, apperrors.Validation("one or more size IDs do not exist")
	}
	return sizes, nil
}
