package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feirahub/feira-api/internal/domain/enum"
)

// Order represents a customer purchase from one merchant. Orders are
// historical records: there is no delete path, and the money columns are
// snapshots taken at checkout time.
type Order struct {
	ID              uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	OrderNumber     string              `gorm:"size:100;unique;not null" json:"order_number"`
	MerchantID      uuid.UUID           `gorm:"type:uuid;not null;index" json:"merchant_id"`
	CustomerID      uuid.UUID           `gorm:"type:uuid;not null;index" json:"customer_id"`
	Status          enum.OrderStatus    `gorm:"size:32;not null;default:'pending';index" json:"status"`
	PaymentMethod   enum.PaymentMethod  `gorm:"size:16;not null" json:"payment_method"`
	PaymentStatus   *enum.PaymentStatus `gorm:"size:32" json:"payment_status,omitempty"` // pix only
	SubTotal        int64               `gorm:"not null" json:"-"`                       // Stored in cents, excluded from JSON
	DeliveryFee     int64               `gorm:"not null;default:0" json:"-"`             // Stored in cents, excluded from JSON
	Total           int64               `gorm:"not null" json:"-"`                       // Stored in cents, excluded from JSON
	IsDelivery      bool                `gorm:"not null;default:false" json:"is_delivery"`
	DeliveryAddress *string             `gorm:"type:text" json:"delivery_address,omitempty"`
	CreatedAt       time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`

	// Relationships
	Merchant Merchant    `gorm:"foreignKey:MerchantID" json:"-"`
	Customer User        `gorm:"foreignKey:CustomerID" json:"-"`
	Items    []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (o Order) MarshalJSON() ([]byte, error) {
	type Alias Order
	return json.Marshal(&struct {
		Alias
		SubTotal    float64 `json:"sub_total"`
		DeliveryFee float64 `json:"delivery_fee"`
		Total       float64 `json:"total"`
	}{
		Alias:       Alias(o),
		SubTotal:    float64(o.SubTotal) / 100,
		DeliveryFee: float64(o.DeliveryFee) / 100,
		Total:       float64(o.Total) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps the total derived: it is always subtotal plus delivery
// fee and never an independently edited column
func (o *Order) BeforeSave(tx *gorm.DB) error {
	o.Total = o.SubTotal + o.DeliveryFee
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsPix reports whether the order is paid via pix and therefore carries the
// payment sub-state
func (o *Order) IsPix() bool {
	return o.PaymentMethod == enum.PaymentMethodPix
}

// Period returns the commission period ("YYYY-MM") this order falls into,
// keyed on its creation time
func (o *Order) Period() string {
	return o.CreatedAt.UTC().Format("2006-01")
}

// OrderItem is a line item snapshot captured at checkout. It stays immutable
// even if the merchant later edits or removes the product.
type OrderItem struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	OrderID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID *uuid.UUID `gorm:"type:uuid;index" json:"product_id,omitempty"`
	Name      string     `gorm:"size:255;not null" json:"name"`
	UnitPrice int64      `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Quantity  int        `gorm:"not null" json:"quantity"`
	SubTotal  int64      `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt time.Time  `json:"created_at"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (i OrderItem) MarshalJSON() ([]byte, error) {
	type Alias OrderItem
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		SubTotal  float64 `json:"sub_total"`
	}{
		Alias:     Alias(i),
		UnitPrice: float64(i.UnitPrice) / 100,
		SubTotal:  float64(i.SubTotal) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new order item
func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}
