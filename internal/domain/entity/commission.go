package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feirahub/feira-api/internal/domain/enum"
)

// PeriodOf returns the commission period key ("YYYY-MM") for a point in time.
func PeriodOf(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// ParsePeriod validates a "YYYY-MM" period key and returns its month bounds.
func ParsePeriod(period string) (start, end time.Time, err error) {
	start, err = time.Parse("2006-01", period)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 1, 0), nil
}

// CommissionPeriod is one merchant's accrued platform fee for one calendar
// month. It is a pure re-derivation from delivered orders: the accrual
// recomputes TotalSales and CommissionAmount from scratch and never reads
// its own previous output. Status is display-only; read paths recompute it
// from the balance engine.
type CommissionPeriod struct {
	ID               uuid.UUID             `gorm:"type:uuid;primary_key" json:"id"`
	MerchantID       uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_merchant_period" json:"merchant_id"`
	Period           string                `gorm:"size:7;not null;uniqueIndex:idx_merchant_period" json:"period"`
	TotalSales       int64                 `gorm:"not null;default:0" json:"-"` // Stored in cents, excluded from JSON
	CommissionAmount int64                 `gorm:"not null;default:0" json:"-"` // Stored in cents, excluded from JSON
	Status           enum.CommissionStatus `gorm:"size:32;not null;default:'pending'" json:"status"`
	DeliveredOrders  int64                 `gorm:"not null;default:0" json:"delivered_orders"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`

	// Relationships
	Merchant Merchant `gorm:"foreignKey:MerchantID" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (p CommissionPeriod) MarshalJSON() ([]byte, error) {
	type Alias CommissionPeriod
	return json.Marshal(&struct {
		Alias
		TotalSales       float64 `json:"total_sales"`
		CommissionAmount float64 `json:"commission_amount"`
	}{
		Alias:            Alias(p),
		TotalSales:       float64(p.TotalSales) / 100,
		CommissionAmount: float64(p.CommissionAmount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new commission period
func (p *CommissionPeriod) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CommissionPeriod model
func (CommissionPeriod) TableName() string {
	return "commission_periods"
}

// Payment is an append-only ledger entry for an admin-confirmed settlement.
// Rows are immutable once created; no update or delete path exists, and the
// ledger is the sole determinant of amounts paid.
type Payment struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	MerchantID  uuid.UUID `gorm:"type:uuid;not null;index" json:"merchant_id"`
	Amount      int64     `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Note        *string   `gorm:"type:text" json:"note,omitempty"`
	ReceiptURL  *string   `gorm:"size:512" json:"receipt_url,omitempty"`
	ConfirmedBy uuid.UUID `gorm:"type:uuid;not null" json:"confirmed_by"`
	ConfirmedAt time.Time `gorm:"not null" json:"confirmed_at"`
	CreatedAt   time.Time `json:"created_at"`

	// Relationships
	Merchant Merchant `gorm:"foreignKey:MerchantID" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (p Payment) MarshalJSON() ([]byte, error) {
	type Alias Payment
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(p),
		Amount: float64(p.Amount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new payment
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}

// ReceiptClaim is a merchant's assertion of having paid, awaiting an
// administrator decision. Claims are append-only history: they are never
// overwritten, and confirming one does not move money by itself - the
// confirmation additionally appends a Payment inside the same transaction.
type ReceiptClaim struct {
	ID            uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	MerchantID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"merchant_id"`
	ReceiptURL    string           `gorm:"size:512;not null" json:"receipt_url"`
	ClaimedAmount int64            `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Period        string           `gorm:"size:7" json:"period"`
	Status        enum.ClaimStatus `gorm:"size:16;not null;default:'pending';index" json:"status"`
	Reason        *string          `gorm:"type:text" json:"reason,omitempty"`
	ResolvedBy    *uuid.UUID       `gorm:"type:uuid" json:"resolved_by,omitempty"`
	ResolvedAt    *time.Time       `json:"resolved_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`

	// Relationships
	Merchant Merchant `gorm:"foreignKey:MerchantID" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (c ReceiptClaim) MarshalJSON() ([]byte, error) {
	type Alias ReceiptClaim
	return json.Marshal(&struct {
		Alias
		ClaimedAmount float64 `json:"claimed_amount"`
	}{
		Alias:         Alias(c),
		ClaimedAmount: float64(c.ClaimedAmount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new receipt claim
func (c *ReceiptClaim) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ReceiptClaim model
func (ReceiptClaim) TableName() string {
	return "receipt_claims"
}

// Balance is the derived commission position of a merchant. It is never
// persisted: every read recomputes it from commission periods and the
// payment ledger. CurrentBalance is clamped at zero; an over-payment shows
// up as Credit, never as a negative balance.
type Balance struct {
	MerchantID      uuid.UUID `json:"merchant_id"`
	TotalCommission int64     `json:"-"`
	TotalPaid       int64     `json:"-"`
	CurrentBalance  int64     `json:"-"`
	Credit          int64     `json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (b Balance) MarshalJSON() ([]byte, error) {
	type Alias Balance
	return json.Marshal(&struct {
		Alias
		TotalCommission float64 `json:"total_commission"`
		TotalPaid       float64 `json:"total_paid"`
		CurrentBalance  float64 `json:"current_balance"`
		Credit          float64 `json:"credit"`
	}{
		Alias:           Alias(b),
		TotalCommission: float64(b.TotalCommission) / 100,
		TotalPaid:       float64(b.TotalPaid) / 100,
		CurrentBalance:  float64(b.CurrentBalance) / 100,
		Credit:          float64(b.Credit) / 100,
	})
}
