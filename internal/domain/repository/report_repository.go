package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MerchantMonthlyRow is one merchant's order/commission figures for one
// calendar month, aggregated straight from the orders table.
type MerchantMonthlyRow struct {
	MerchantID     uuid.UUID `json:"merchant_id"`
	MerchantName   string    `json:"merchant_name"`
	OrderCount     int64     `json:"order_count"`
	DeliveredCount int64     `json:"delivered_count"`
	SalesCents     int64     `json:"-"`
	PaidCents      int64     `json:"-"`
}

// TopMerchantRow ranks merchants by delivered sales inside a window.
type TopMerchantRow struct {
	MerchantID   uuid.UUID `json:"merchant_id"`
	MerchantName string    `json:"merchant_name"`
	OrderCount   int64     `json:"order_count"`
	SalesCents   int64     `json:"-"`
}

// ReportRepository provides read-only aggregates for reconciliation
// reporting. Implementations must never write.
type ReportRepository interface {
	// MonthlyBreakdown returns per-merchant order counts, delivered sales
	// and ledger payments for orders created inside [start, end).
	MonthlyBreakdown(ctx context.Context, start, end time.Time) ([]MerchantMonthlyRow, error)
	// TopMerchants ranks merchants by delivered sales inside [start, end).
	TopMerchants(ctx context.Context, start, end time.Time, limit int) ([]TopMerchantRow, error)
}
