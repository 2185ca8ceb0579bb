// internal/domain/cart/entity.go
package cart

import (
	"time"
)

// Cart represents a user's shopping cart. Each user has at most one cart.
type Cart struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"user_id" gorm:"uniqueIndex;not null"`
	Items     []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem represents a single product/size line in a cart.
// A (cart, product, size) combination appears at most once; adding the
// same combination again merges into the existing line.
type CartItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CartID    uint      `json:"cart_id" gorm:"not null;uniqueIndex:idx_cart_product_size"`
	ProductID uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_cart_product_size"`
	SizeID    uint      `json:"size_id" gorm:"not null;uniqueIndex:idx_cart_product_size"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the Cart model
func (Cart) TableName() string {
	return "carts"
}

// TableName returns the table name for the CartItem model
func (CartItem) TableName() string {
	return "cart_items"
}

// CartItemResponse is a cart line enriched with current product data.
type CartItemResponse struct {
	ID           uint   `json:"id"`
	ProductID    uint   `json:"product_id"`
	ProductName  string `json:"product_name"`
	ProductImage string `json:"product_image"`
	SizeID       uint   `json:"size_id"`
	SizeLabel    string `json:"size_label"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int64  `json:"unit_price"`
	LineTotal    int64  `json:"line_total"`
	InStock      bool   `json:"in_stock"`
}

// CartResponse is the cart read projection returned by the API. Prices
// reflect the products' current values, discounts included.
type CartResponse struct {
	ID         uint               `json:"id"`
	UserID     uint               `json:"user_id"`
	Items      []CartItemResponse `json:"items"`
	TotalItems int                `json:"total_items"`
	Subtotal   int64              `json:"subtotal"`
	UpdatedAt  time.Time          `json:"updated_at"`
}
