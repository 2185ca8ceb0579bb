// internal/domain/cart/service.go
package cart

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles cart business logic
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewService creates a new cart service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// AddItemRequest represents an add-to-cart request
type AddItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	SizeID    uint `json:"size_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateItemRequest represents a cart line quantity update
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// GetCart returns the user's cart enriched with current product data.
// Lines whose product has since been deleted are dropped from the
// response and removed from the cart.
func (s *Service) GetCart(userID uint) (*CartResponse, error) {
	c, err := s.getOrCreateCart(s.db, userID)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(c)
}

// AddItem adds a product/size line to the user's cart. Adding a
// combination already in the cart merges quantities into one line.
// The merged quantity must not exceed the product's current stock.
func (s *Service) AddItem(userID uint, req *AddItemRequest) (*CartResponse, error) {
	if req.Quantity < 1 {
		return nil, apperrors.Validation("quantity must be at least 1")
	}

	var c *Cart
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		c, txErr = s.getOrCreateCart(tx, userID)
		if txErr != nil {
			return txErr
		}

		var p product.Product
		if txErr = tx.Preload("Sizes").First(&p, req.ProductID).Error; txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("product not found")
			}
			return apperrors.Internal(txErr)
		}

		if !p.HasSize(req.SizeID) {
			return apperrors.Validation("product is not available in the requested size")
		}

		var item CartItem
		txErr = tx.Where("cart_id = ? AND product_id = ? AND size_id = ?",
			c.ID, req.ProductID, req.SizeID).First(&item).Error

		newQuantity := req.Quantity
		if txErr == nil {
			newQuantity = item.Quantity + req.Quantity
		} else if !errors.Is(txErr, gorm.ErrRecordNotFound) {
			return apperrors.Internal(txErr)
		}

		if newQuantity > p.Stock {
			return apperrors.Conflict("insufficient stock: %d available, %d requested", p.Stock, newQuantity)
		}

		if item.ID != 0 {
			if txErr = tx.Model(&item).Update("quantity", newQuantity).Error; txErr != nil {
				return apperrors.Internal(txErr)
			}
		} else {
			item = CartItem{
				CartID:    c.ID,
				ProductID: req.ProductID,
				SizeID:    req.SizeID,
				Quantity:  newQuantity,
			}
			if txErr = tx.Create(&item).Error; txErr != nil {
				return apperrors.Internal(txErr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.reload(userID)
}

// UpdateItemQuantity sets the absolute quantity of the cart line
// identified by product and size, re-validating size membership and
// the product's current stock.
func (s *Service) UpdateItemQuantity(userID, productID, sizeID uint, req *UpdateItemRequest) (*CartResponse, error) {
	if req.Quantity < 1 {
		return nil, apperrors.Validation("quantity must be at least 1; use remove to delete the line")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, txErr := s.findOwnedLine(tx, userID, productID, sizeID)
		if txErr != nil {
			return txErr
		}

		var p product.Product
		if txErr = tx.Preload("Sizes").First(&p, item.ProductID).Error; txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("product not found")
			}
			return apperrors.Internal(txErr)
		}

		if !p.HasSize(sizeID) {
			return apperrors.Validation("product is not available in the requested size")
		}

		if req.Quantity > p.Stock {
			return apperrors.Conflict("insufficient stock: %d available, %d requested", p.Stock, req.Quantity)
		}

		if txErr = tx.Model(item).Update("quantity", req.Quantity).Error; txErr != nil {
			return apperrors.Internal(txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.reload(userID)
}

// RemoveItem removes the cart line matching product and size. Removing
// a line that is not in the cart returns not-found so callers can tell
// a no-op from a deletion.
func (s *Service) RemoveItem(userID, productID, sizeID uint) (*CartResponse, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, txErr := s.findOwnedLine(tx, userID, productID, sizeID)
		if txErr != nil {
			return txErr
		}
		if txErr = tx.Delete(item).Error; txErr != nil {
			return apperrors.Internal(txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.reload(userID)
}

// Clear removes every line from the user's cart
func (s *Service) Clear(userID uint) error {
	c, err := s.getOrCreateCart(s.db, userID)
	if err != nil {
		return err
	}
	if err := s.db.Where("cart_id = ?", c.ID).Delete(&CartItem{}).Error; err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) reload(userID uint) (*CartResponse, error) {
	c, err := s.getOrCreateCart(s.db, userID)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(c)
}

func (s *Service) getOrCreateCart(tx *gorm.DB, userID uint) (*Cart, error) {
	var c Cart
	err := tx.Preload("Items").Where("user_id = ?", userID).First(&c).Error
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal(err)
	}

	c = Cart{UserID: userID}
	if err := tx.Create(&c).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return &c, nil
}

func (s *Service) findOwnedLine(tx *gorm.DB, userID, productID, sizeID uint) (*CartItem, error) {
	var item CartItem
	err := tx.Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.user_id = ? AND cart_items.product_id = ? AND cart_items.size_id = ?",
			userID, productID, sizeID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("cart item not found")
		}
		return nil, apperrors.Internal(err)
	}
	return &item, nil
}

func (s *Service) buildResponse(c *Cart) (*CartResponse, error) {
	resp := &CartResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		Items:     make([]CartItemResponse, 0, len(c.Items)),
		UpdatedAt: c.UpdatedAt,
	}

	for _, item := range c.Items {
		var p product.Product
		err := s.db.Preload("Sizes").First(&p, item.ProductID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Product was removed from the catalog; drop the line
				if delErr := s.db.Delete(&CartItem{}, item.ID).Error; delErr != nil {
					s.logger.WithError(delErr).WithField("cart_item_id", item.ID).
						Warn("Failed to prune orphaned cart item")
				}
				continue
			}
			return nil, apperrors.Internal(err)
		}

		sizeLabel := ""
		if sz := p.SizeByID(item.SizeID); sz != nil {
			sizeLabel = sz.Label()
		}

		unitPrice := p.DiscountedPrice()
		resp.Items = append(resp.Items, CartItemResponse{
			ID:           item.ID,
			ProductID:    p.ID,
			ProductName:  p.Name,
			ProductImage: p.Image,
			SizeID:       item.SizeID,
			SizeLabel:    sizeLabel,
			Quantity:     item.Quantity,
			UnitPrice:    unitPrice,
			LineTotal:    unitPrice * int64(item.Quantity),
			InStock:      p.Stock >= item.Quantity,
		})
		resp.TotalItems += item.Quantity
		resp.Subtotal += unitPrice * int64(item.Quantity)
	}

	return resp, nil
}
