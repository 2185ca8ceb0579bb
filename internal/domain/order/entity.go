// internal/domain/order/entity.go
package order

import (
	"time"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusFailed     OrderStatus = "failed"
)

// PaymentMethod represents how an order will be paid
type PaymentMethod string

const (
	PaymentCOD     PaymentMethod = "cod"
	PaymentCard    PaymentMethod = "card"
	PaymentPayPal  PaymentMethod = "paypal"
	PaymentMomo    PaymentMethod = "momo"
	PaymentVNPay   PaymentMethod = "vnpay"
	PaymentZaloPay PaymentMethod = "zalopay"
)

// ValidPaymentMethod reports whether m is a supported payment method
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCOD, PaymentCard, PaymentPayPal, PaymentMomo, PaymentVNPay, PaymentZaloPay:
		return true
	}
	return false
}

// ShippingAddress is embedded into an order at checkout
type ShippingAddress struct {
	FullName   string `json:"full_name" gorm:"column:ship_full_name;not null"`
	Address    string `json:"address" gorm:"column:ship_address;not null"`
	City       string `json:"city" gorm:"column:ship_city;not null"`
	PostalCode string `json:"postal_code" gorm:"column:ship_postal_code;not null"`
	Country    string `json:"country" gorm:"column:ship_country;not null"`
	Phone      string `json:"phone" gorm:"column:ship_phone;not null"`
}

// PaymentResult holds gateway confirmation details once an order is paid
type PaymentResult struct {
	TransactionID string `json:"transaction_id,omitempty" gorm:"column:payment_transaction_id"`
	Status        string `json:"status,omitempty" gorm:"column:payment_status"`
	UpdateTime    string `json:"update_time,omitempty" gorm:"column:payment_update_time"`
	EmailAddress  string `json:"email_address,omitempty" gorm:"column:payment_email"`
}

// Order represents a placed order. Item lines and prices are snapshots
// taken at checkout and never change afterwards.
type Order struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	UserID          uint            `json:"user_id" gorm:"index;not null"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress ShippingAddress `json:"shipping_address" gorm:"embedded"`
	PaymentMethod   PaymentMethod   `json:"payment_method" gorm:"not null"`
	PaymentResult   PaymentResult   `json:"payment_result" gorm:"embedded"`
	ItemsPrice      int64           `json:"items_price" gorm:"not null"`
	ShippingPrice   int64           `json:"shipping_price" gorm:"not null"`
	TaxPrice        int64           `json:"tax_price" gorm:"not null"`
	TotalPrice      int64           `json:"total_price" gorm:"not null"`
	Status          OrderStatus     `json:"status" gorm:"not null;default:pending;index"`
	IsPaid          bool            `json:"is_paid" gorm:"not null;default:false"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	IsDelivered     bool            `json:"is_delivered" gorm:"not null;default:false"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem is a frozen snapshot of a product line at checkout time
type OrderItem struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	OrderID   uint   `json:"order_id" gorm:"index;not null"`
	ProductID uint   `json:"product_id" gorm:"not null"`
	Name      string `json:"name" gorm:"not null"`
	Image     string `json:"image"`
	Price     int64  `json:"price" gorm:"not null"`
	Quantity  int    `json:"quantity" gorm:"not null"`
	Size      string `json:"size" gorm:"not null"`
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// TableName returns the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// Terminal reports whether the status allows no further transitions
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusFailed
}
