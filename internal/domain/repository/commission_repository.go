package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/feirahub/feira-api/internal/domain/entity"
	"github.com/feirahub/feira-api/internal/domain/enum"
	"github.com/feirahub/feira-api/pkg/pagination"
)

// CommissionPeriodRepository stores the per-merchant, per-month accrual
// aggregates. Upsert is the only write: accrual always replaces the whole
// row from recomputed figures.
type CommissionPeriodRepository interface {
	// Upsert creates or replaces the period row keyed on (merchant, period).
	Upsert(ctx context.Context, period *entity.CommissionPeriod) error
	GetByMerchantPeriod(ctx context.Context, merchantID uuid.UUID, period string) (*entity.CommissionPeriod, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, params *pagination.PaginationParams) ([]entity.CommissionPeriod, int64, error)
	ListByPeriod(ctx context.Context, period string) ([]entity.CommissionPeriod, error)
	// SumCommission totals commission_amount across all periods of a merchant.
	SumCommission(ctx context.Context, merchantID uuid.UUID) (int64, error)
	// UpdateDisplayStatus refreshes the cosmetic status column. The stored
	// value is never treated as authoritative.
	UpdateDisplayStatus(ctx context.Context, merchantID uuid.UUID, status enum.CommissionStatus) error
}

// PaymentRepository is the append-only settlement ledger. There is no update
// or delete: a payment row, once written, never changes.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, params *pagination.PaginationParams) ([]entity.Payment, int64, error)
	// ListWithCursor pages the ledger by (created_at, id) keyset. Fetches
	// limit+1 rows so the caller can detect a further page.
	ListWithCursor(ctx context.Context, merchantID uuid.UUID, params *pagination.CursorParams) ([]entity.Payment, error)
	// SumPayments totals the ledger for a merchant.
	SumPayments(ctx context.Context, merchantID uuid.UUID) (int64, error)
	// SumPaymentsBetween totals the ledger for a merchant inside [start, end).
	SumPaymentsBetween(ctx context.Context, merchantID uuid.UUID, start, end time.Time) (int64, error)
}

// ReceiptClaimRepository stores merchant proof-of-payment claims. Claims are
// append-only history; resolution flips the status exactly once.
type ReceiptClaimRepository interface {
	Create(ctx context.Context, claim *entity.ReceiptClaim) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ReceiptClaim, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, params *pagination.PaginationParams) ([]entity.ReceiptClaim, int64, error)
	ListByStatus(ctx context.Context, status enum.ClaimStatus, params *pagination.PaginationParams) ([]entity.ReceiptClaim, int64, error)
	CountByMerchantStatus(ctx context.Context, merchantID uuid.UUID, status enum.ClaimStatus) (int64, error)
	// Reject marks a pending claim rejected with a reason. Returns false if
	// the claim was not pending anymore.
	Reject(ctx context.Context, claimID, adminID uuid.UUID, reason string) (bool, error)
	// ConfirmWithPayment marks a pending claim confirmed and appends the
	// corresponding Payment in one database transaction. Returns false (and
	// writes nothing) if the claim was not pending anymore. A confirmed
	// claim with no payment, or the reverse, cannot come out of this method.
	ConfirmWithPayment(ctx context.Context, claimID uuid.UUID, payment *entity.Payment) (bool, error)
}
