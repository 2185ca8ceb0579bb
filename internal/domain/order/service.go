// internal/domain/order/service.go
package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles order business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		logger: logger,
	}
}

// CheckoutRequest represents a checkout request
type CheckoutRequest struct {
	ShippingAddress ShippingAddress `json:"shipping_address" binding:"required"`
	PaymentMethod   PaymentMethod   `json:"payment_method" binding:"required"`
}

// CheckoutResponse wraps a freshly created order plus payment guidance
type CheckoutResponse struct {
	Order           *Order `json:"order"`
	PaymentRequired bool   `json:"payment_required"`
	PaymentHint     string `json:"payment_hint,omitempty"`
}

// PaymentDetails carries gateway confirmation data for MarkPaid
type PaymentDetails struct {
	TransactionID string `json:"transaction_id" binding:"required"`
	Status        string `json:"status"`
	UpdateTime    string `json:"update_time"`
	EmailAddress  string `json:"email_address"`
}

// ListFilters narrows the admin order listing
type ListFilters struct {
	Status OrderStatus
	IsPaid *bool
	Page   int
	Limit  int
}

// ListResult is a paginated order listing
type ListResult struct {
	Orders     []Order `json:"orders"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"total_pages"`
}

// Checkout converts the user's cart into an order. The whole operation
// runs in one transaction: every line's stock is decremented with a
// conditional update, so two concurrent checkouts can never oversell,
// and any shortfall rolls the entire order back.
func (s *Service) Checkout(userID uint, req *CheckoutRequest) (*CheckoutResponse, error) {
	if !ValidPaymentMethod(req.PaymentMethod) {
		return nil, apperrors.Validation("unsupported payment method: %s", req.PaymentMethod)
	}
	if err := validateShippingAddress(&req.ShippingAddress); err != nil {
		return nil, err
	}

	var created Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var c cart.Cart
		if err := tx.Preload("Items").Where("user_id = ?", userID).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.Validation("cart is empty")
			}
			return apperrors.Internal(err)
		}
		if len(c.Items) == 0 {
			return apperrors.Validation("cart is empty")
		}

		var itemsPrice int64
		snapshots := make([]OrderItem, 0, len(c.Items))

		for _, line := range c.Items {
			var p product.Product
			if err := tx.Preload("Sizes").First(&p, line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.Conflict("product %d is no longer available", line.ProductID)
				}
				return apperrors.Internal(err)
			}

			sz := p.SizeByID(line.SizeID)
			if sz == nil {
				return apperrors.Conflict("product %q is no longer available in the selected size", p.Name)
			}

			res := tx.Model(&product.Product{}).
				Where("id = ? AND stock >= ?", p.ID, line.Quantity).
				Update("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return apperrors.Internal(res.Error)
			}
			if res.RowsAffected == 0 {
				return apperrors.Conflict("insufficient stock for %q", p.Name)
			}

			unitPrice := p.DiscountedPrice()
			itemsPrice += unitPrice * int64(line.Quantity)
			snapshots = append(snapshots, OrderItem{
				ProductID: p.ID,
				Name:      p.Name,
				Image:     p.Image,
				Price:     unitPrice,
				Quantity:  line.Quantity,
				Size:      sz.Label(),
			})
		}

		shippingPrice := s.config.Checkout.FlatShippingFee
		if itemsPrice > s.config.Checkout.FreeShippingThreshold {
			shippingPrice = 0
		}
		var taxPrice int64 // tax handling not yet enabled

		created = Order{
			UserID:          userID,
			Items:           snapshots,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			ItemsPrice:      itemsPrice,
			ShippingPrice:   shippingPrice,
			TaxPrice:        taxPrice,
			TotalPrice:      itemsPrice + shippingPrice + taxPrice,
			Status:          StatusPending,
		}
		if err := tx.Create(&created).Error; err != nil {
			return apperrors.Internal(err)
		}

		if err := tx.Where("cart_id = ?", c.ID).Delete(&cart.CartItem{}).Error; err != nil {
			return apperrors.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": created.ID,
		"user_id":  userID,
		"total":    created.TotalPrice,
	}).Info("Order created")

	resp := &CheckoutResponse{Order: &created}
	if created.PaymentMethod == PaymentZaloPay {
		resp.PaymentRequired = true
		resp.PaymentHint = fmt.Sprintf("initiate ZaloPay payment for order %d", created.ID)
	}
	return resp, nil
}

// MarkPaid records gateway confirmation and moves a pending order to
// processing. Paid, cancelled and failed orders are rejected.
func (s *Service) MarkPaid(orderID uint, details *PaymentDetails) (*Order, error) {
	var o Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := tx.Preload("Items").First(&o, orderID).Error; txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("order not found")
			}
			return apperrors.Internal(txErr)
		}

		if o.IsPaid {
			return apperrors.Conflict("order is already paid")
		}
		if o.Status.Terminal() {
			return apperrors.Conflict("order is %s and cannot be paid", o.Status)
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"is_paid":                true,
			"paid_at":                now,
			"payment_transaction_id": details.TransactionID,
			"payment_status":         details.Status,
			"payment_update_time":    details.UpdateTime,
			"payment_email":          details.EmailAddress,
		}
		// Only a pending order advances; later statuses are kept
		if o.Status == StatusPending {
			updates["status"] = StatusProcessing
			o.Status = StatusProcessing
		}
		if txErr := tx.Model(&o).Updates(updates).Error; txErr != nil {
			return apperrors.Internal(txErr)
		}

		o.IsPaid = true
		o.PaidAt = &now
		o.PaymentResult = PaymentResult{
			TransactionID: details.TransactionID,
			Status:        details.Status,
			UpdateTime:    details.UpdateTime,
			EmailAddress:  details.EmailAddress,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// MarkDelivered marks an order delivered. Cancelled, failed and already
// delivered orders are rejected.
func (s *Service) MarkDelivered(orderID uint) (*Order, error) {
	var o Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := tx.Preload("Items").First(&o, orderID).Error; txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("order not found")
			}
			return apperrors.Internal(txErr)
		}

		if o.IsDelivered {
			return apperrors.Conflict("order is already delivered")
		}
		if o.Status.Terminal() {
			return apperrors.Conflict("order is %s and cannot be delivered", o.Status)
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"is_delivered": true,
			"delivered_at": now,
			"status":       StatusDelivered,
		}
		if txErr := tx.Model(&o).Updates(updates).Error; txErr != nil {
			return apperrors.Internal(txErr)
		}

		o.IsDelivered = true
		o.DeliveredAt = &now
		o.Status = StatusDelivered
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Cancel cancels a pending or processing order and puts its stock back
func (s *Service) Cancel(orderID uint) (*Order, error) {
	var o Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := tx.Preload("Items").First(&o, orderID).Error; txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("order not found")
			}
			return apperrors.Internal(txErr)
		}

		if o.Status != StatusPending && o.Status != StatusProcessing {
			return apperrors.Conflict("order is %s and cannot be cancelled", o.Status)
		}

		for _, item := range o.Items {
			res := tx.Model(&product.Product{}).
				Where("id = ?", item.ProductID).
				Update("stock", gorm.Expr("stock + ?", item.Quantity))
			if res.Error != nil {
				return apperrors.Internal(res.Error)
			}
			// The product may be gone; its stock restore is a no-op then
		}

		if txErr := tx.Model(&o).Update("status", StatusCancelled).Error; txErr != nil {
			return apperrors.Internal(txErr)
		}
		o.Status = StatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("order_id", o.ID).Info("Order cancelled, stock restored")
	return &o, nil
}

// GetMyOrders lists the caller's orders, newest first
func (s *Service) GetMyOrders(userID uint) ([]Order, error) {
	var orders []Order
	err := s.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return orders, nil
}

// GetOrder retrieves one order; non-admin callers may only read their own
func (s *Service) GetOrder(orderID, callerID uint, callerIsAdmin bool) (*Order, error) {
	var o Order
	if err := s.db.Preload("Items").First(&o, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order not found")
		}
		return nil, apperrors.Internal(err)
	}
	if !callerIsAdmin && o.UserID != callerID {
		return nil, apperrors.Forbidden("you do not have access to this order")
	}
	return &o, nil
}

// GetAllOrders lists orders for admins with pagination and filters
func (s *Service) GetAllOrders(filters *ListFilters) (*ListResult, error) {
	page := filters.Page
	if page < 1 {
		page = 1
	}
	limit := filters.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&Order{})
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.IsPaid != nil {
		query = query.Where("is_paid = ?", *filters.IsPaid)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	var orders []Order
	err := query.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ListResult{
		Orders:     orders,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

func validateShippingAddress(addr *ShippingAddress) error {
	switch {
	case addr.FullName == "":
		return apperrors.Validation("shipping address full name is required")
	case addr.Address == "":
		return apperrors.Validation("shipping address is required")
	case addr.City == "":
		return apperrors.Validation("shipping address city is required")
	case addr.PostalCode == "":
		return apperrors.Validation("shipping address postal code is required")
	case addr.Country == "":
		return apperrors.Validation("shipping address country is required")
	case addr.Phone == "":
		return apperrors.Validation("shipping address phone is required")
	}
	return nil
}
