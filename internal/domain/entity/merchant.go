package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feirahub/feira-api/pkg/pix"
)

// Merchant represents a community member's storefront. Deactivating a
// merchant hides the storefront but never touches its order history.
type Merchant struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Slug        string         `gorm:"size:255;unique;not null" json:"slug"`
	Description *string        `gorm:"type:text" json:"description,omitempty"`
	City        string         `gorm:"size:100" json:"city"`
	Phone       *string        `gorm:"size:50" json:"phone,omitempty"`
	Logo        *string        `gorm:"size:255" json:"logo,omitempty"`
	PixKey      string         `gorm:"size:255" json:"pix_key"`
	PixKeyType  pix.KeyType    `gorm:"size:16" json:"pix_key_type"`
	DeliveryFee int64          `gorm:"not null;default:0" json:"-"` // Stored in cents, excluded from JSON
	Active      bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User     User      `gorm:"foreignKey:UserID" json:"-"`
	Products []Product `gorm:"foreignKey:MerchantID" json:"-"`
	Orders   []Order   `gorm:"foreignKey:MerchantID" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (m Merchant) MarshalJSON() ([]byte, error) {
	type Alias Merchant
	return json.Marshal(&struct {
		Alias
		DeliveryFee float64 `json:"delivery_fee"`
	}{
		Alias:       Alias(m),
		DeliveryFee: float64(m.DeliveryFee) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new merchant
func (m *Merchant) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Merchant model
func (Merchant) TableName() string {
	return "merchants"
}
