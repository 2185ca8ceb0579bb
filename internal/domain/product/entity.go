// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/your-org/storefront-backend/internal/domain/size"
	"gorm.io/gorm"
)

// Product represents the product entity
type Product struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"not null;size:255;index" json:"name"`
	Description   string         `gorm:"type:text" json:"description"`
	Price         int64          `gorm:"not null" json:"price"` // Minor currency units
	Stock         int            `gorm:"not null;default:0" json:"stock"`
	IsOnSale      bool           `gorm:"default:false" json:"is_on_sale"`
	Discount      int            `gorm:"default:0" json:"discount"` // Percent, 0-100
	Image         string         `gorm:"not null;size:500" json:"image"`
	ImagePublicID string         `gorm:"not null;size:255" json:"-"` // Opaque image-store handle
	Brand         string         `gorm:"size:100;index" json:"brand"`
	Color         string         `gorm:"size:50" json:"color"`
	Material      string         `gorm:"size:100" json:"material"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Sizes []size.Size `gorm:"many2many:product_sizes;" json:"sizes,omitempty"`
}

// TableName overrides the table name
func (Product) TableName() string {
	return "products"
}

// DiscountedPrice returns the effective unit price: the sale discount applied
// when active, the list price otherwise. This is the only price ever captured
// into an order.
func (p *Product) DiscountedPrice() int64 {
	if p.IsOnSale && p.Discount > 0 {
		return p.Price * int64(100-p.Discount) / 100
	}
	return p.Price
}

// HasSize reports whether sizeID belongs to the product's valid size set
func (p *Product) HasSize(sizeID uint) bool {
	for _, s := range p.Sizes {
		if s.ID == sizeID {
			return true
		}
	}
	return false
}

// SizeByID returns the size with the given ID from the product's size set
func (p *Product) SizeByID(sizeID uint) *size.Size {
	for i := range p.Sizes {
		if p.Sizes[i].ID == sizeID {
			return &p.Sizes[i]
		}
	}
	return nil
}
