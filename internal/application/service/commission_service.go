package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/feirahub/feira-api/internal/domain/entity"
	"github.com/feirahub/feira-api/internal/domain/enum"
	"github.com/feirahub/feira-api/internal/domain/repository"
	"github.com/feirahub/feira-api/pkg/apperror"
	"github.com/feirahub/feira-api/pkg/events"
	"github.com/feirahub/feira-api/pkg/money"
	"github.com/feirahub/feira-api/pkg/pagination"
)

// CommissionService owns the platform fee lifecycle: monthly accrual from
// delivered orders, the append-only payment ledger, receipt claims and the
// derived balance.
type CommissionService struct {
	orderRepo    repository.OrderRepository
	periodRepo   repository.CommissionPeriodRepository
	paymentRepo  repository.PaymentRepository
	claimRepo    repository.ReceiptClaimRepository
	merchantRepo repository.MerchantRepository
	publisher    events.Publisher
	rate         decimal.Decimal
}

// NewCommissionService creates a new commission service. rate is the
// platform fee fraction applied to delivered sales.
func NewCommissionService(
	orderRepo repository.OrderRepository,
	periodRepo repository.CommissionPeriodRepository,
	paymentRepo repository.PaymentRepository,
	claimRepo repository.ReceiptClaimRepository,
	merchantRepo repository.MerchantRepository,
	publisher events.Publisher,
	rate decimal.Decimal,
) *CommissionService {
	return &CommissionService{
		orderRepo:    orderRepo,
		periodRepo:   periodRepo,
		paymentRepo:  paymentRepo,
		claimRepo:    claimRepo,
		merchantRepo: merchantRepo,
		publisher:    publisher,
		rate:         rate,
	}
}

// AccrueMerchantPeriod recomputes one merchant's commission for one period
// from scratch. The figures come straight from delivered orders, never from
// the previous period row, so re-running after a late delivery or a re-run
// in any order converges on the same result.
func (s *CommissionService) AccrueMerchantPeriod(ctx context.Context, merchantID uuid.UUID, period string) (*entity.CommissionPeriod, error) {
	start, end, err := entity.ParsePeriod(period)
	if err != nil {
		return nil, apperror.NewBadRequestError("Invalid period, expected YYYY-MM")
	}

	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, apperror.NewNotFoundError("Merchant")
	}

	totalSales, deliveredCount, err := s.orderRepo.SumDeliveredTotals(ctx, merchantID, start, end)
	if err != nil {
		return nil, err
	}

	cp := &entity.CommissionPeriod{
		MerchantID:       merchantID,
		Period:           period,
		TotalSales:       totalSales,
		CommissionAmount: money.Commission(totalSales, s.rate),
		DeliveredOrders:  deliveredCount,
		Status:           enum.CommissionStatusPending,
	}
	if err := s.periodRepo.Upsert(ctx, cp); err != nil {
		return nil, err
	}

	s.refreshDisplayStatus(ctx, merchantID)

	return cp, nil
}

// AccrueAll runs the accrual for every merchant that had a delivery inside
// the period. Used by the monthly close.
func (s *CommissionService) AccrueAll(ctx context.Context, period string) (int, error) {
	start, end, err := entity.ParsePeriod(period)
	if err != nil {
		return 0, apperror.NewBadRequestError("Invalid period, expected YYYY-MM")
	}

	merchantIDs, err := s.orderRepo.MerchantsWithDeliveries(ctx, start, end)
	if err != nil {
		return 0, err
	}

	accrued := 0
	for _, id := range merchantIDs {
		if _, err := s.AccrueMerchantPeriod(ctx, id, period); err != nil {
			return accrued, err
		}
		accrued++
	}
	return accrued, nil
}

// AccrueOrder folds a single delivered order into its merchant's period row
// by recomputing the whole period. Called from the order workflow right
// after the delivered transition wins.
func (s *CommissionService) AccrueOrder(ctx context.Context, order *entity.Order) (*entity.CommissionPeriod, error) {
	return s.AccrueMerchantPeriod(ctx, order.MerchantID, order.Period())
}

// GetBalance derives the merchant's current position from the accrued
// periods and the payment ledger. Nothing here is stored: the balance is
// max(0, commission - paid), and anything paid beyond the commission shows
// up as credit.
func (s *CommissionService) GetBalance(ctx context.Context, merchantID uuid.UUID) (*entity.Balance, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, apperror.NewNotFoundError("Merchant")
	}

	totalCommission, err := s.periodRepo.SumCommission(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	totalPaid, err := s.paymentRepo.SumPayments(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	balance := &entity.Balance{
		MerchantID:      merchantID,
		TotalCommission: totalCommission,
		TotalPaid:       totalPaid,
	}
	if diff := totalCommission - totalPaid; diff > 0 {
		balance.CurrentBalance = diff
	} else {
		balance.Credit = -diff
	}
	return balance, nil
}

// RegisterPaymentInput represents a direct admin settlement entry
type RegisterPaymentInput struct {
	MerchantID uuid.UUID
	Amount     string
	Note       *string
	ReceiptURL *string
	AdminID    uuid.UUID
}

// RegisterPayment appends a settlement to the ledger. The amount must be a
// positive value with at most two decimal places; the entry is immutable
// once written.
func (s *CommissionService) RegisterPayment(ctx context.Context, input *RegisterPaymentInput) (*entity.Payment, error) {
	amountCents, err := money.ParseAmount(input.Amount)
	if err != nil {
		return nil, err
	}

	merchant, err := s.merchantRepo.GetByID(ctx, input.MerchantID)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, apperror.NewNotFoundError("Merchant")
	}

	payment := &entity.Payment{
		MerchantID:  input.MerchantID,
		Amount:      amountCents,
		Note:        input.Note,
		ReceiptURL:  input.ReceiptURL,
		ConfirmedBy: input.AdminID,
		ConfirmedAt: time.Now(),
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.refreshDisplayStatus(ctx, input.MerchantID)

	s.publisher.Publish(events.PaymentRegistered, map[string]any{
		"payment_id":  payment.ID.String(),
		"merchant_id": payment.MerchantID.String(),
	})

	return payment, nil
}

// SubmitClaimInput represents a merchant's proof-of-payment submission
type SubmitClaimInput struct {
	MerchantID    uuid.UUID
	ReceiptURL    string
	ClaimedAmount string
	Period        string
}

// SubmitClaim files a pending receipt claim for admin review. Submitting
// does not touch the ledger; only resolution can. When no amount is given
// the claim defaults to the merchant's balance at submission time.
func (s *CommissionService) SubmitClaim(ctx context.Context, input *SubmitClaimInput) (*entity.ReceiptClaim, error) {
	if input.ReceiptURL == "" {
		return nil, apperror.NewBadRequestError("Receipt is required")
	}

	var amountCents int64
	if input.ClaimedAmount == "" {
		balance, err := s.GetBalance(ctx, input.MerchantID)
		if err != nil {
			return nil, err
		}
		if balance.CurrentBalance <= 0 {
			return nil, apperror.NewInvalidAmountError("Nothing to pay: current balance is zero")
		}
		amountCents = balance.CurrentBalance
	} else {
		var err error
		amountCents, err = money.ParseAmount(input.ClaimedAmount)
		if err != nil {
			return nil, err
		}
	}
	if input.Period != "" {
		if _, _, err := entity.ParsePeriod(input.Period); err != nil {
			return nil, apperror.NewBadRequestError("Invalid period, expected YYYY-MM")
		}
	}

	claim := &entity.ReceiptClaim{
		MerchantID:    input.MerchantID,
		ReceiptURL:    input.ReceiptURL,
		ClaimedAmount: amountCents,
		Period:        input.Period,
		Status:        enum.ClaimStatusPending,
	}
	if err := s.claimRepo.Create(ctx, claim); err != nil {
		return nil, err
	}

	s.publisher.Publish(events.ClaimSubmitted, map[string]any{
		"claim_id":    claim.ID.String(),
		"merchant_id": claim.MerchantID.String(),
	})

	return claim, nil
}

// ResolveClaimInput represents an admin decision on a receipt claim
type ResolveClaimInput struct {
	ClaimID uuid.UUID
	AdminID uuid.UUID
	Approve bool
	Reason  string
}

// ResolveClaim decides a pending claim exactly once. Approval appends the
// matching ledger payment in the same transaction as the status flip, so a
// confirmed claim without its payment cannot exist. Rejection requires a
// reason. A claim that is already decided stays untouched.
func (s *CommissionService) ResolveClaim(ctx context.Context, input *ResolveClaimInput) (*entity.ReceiptClaim, error) {
	claim, err := s.claimRepo.GetByID(ctx, input.ClaimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, apperror.NewNotFoundError("Receipt claim")
	}
	if claim.Status.IsResolved() {
		return nil, apperror.NewAlreadyResolvedError("Claim has already been resolved")
	}

	if input.Approve {
		now := time.Now()
		payment := &entity.Payment{
			MerchantID:  claim.MerchantID,
			Amount:      claim.ClaimedAmount,
			ReceiptURL:  &claim.ReceiptURL,
			ConfirmedBy: input.AdminID,
			ConfirmedAt: now,
		}
		confirmed, err := s.claimRepo.ConfirmWithPayment(ctx, claim.ID, payment)
		if err != nil {
			return nil, err
		}
		if !confirmed {
			// Another admin resolved it between our read and the update.
			return nil, apperror.NewAlreadyResolvedError("Claim has already been resolved")
		}
		s.refreshDisplayStatus(ctx, claim.MerchantID)
	} else {
		if input.Reason == "" {
			return nil, apperror.NewMissingReasonError("A reason is required to reject a claim")
		}
		rejected, err := s.claimRepo.Reject(ctx, claim.ID, input.AdminID, input.Reason)
		if err != nil {
			return nil, err
		}
		if !rejected {
			return nil, apperror.NewAlreadyResolvedError("Claim has already been resolved")
		}
	}

	resolved, err := s.claimRepo.GetByID(ctx, claim.ID)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(events.ClaimResolved, map[string]any{
		"claim_id":    claim.ID.String(),
		"merchant_id": claim.MerchantID.String(),
	})

	return resolved, nil
}

// ListMerchantClaims lists a merchant's claims, newest first.
func (s *CommissionService) ListMerchantClaims(ctx context.Context, merchantID uuid.UUID, params *pagination.PaginationParams) ([]entity.ReceiptClaim, int64, error) {
	return s.claimRepo.ListByMerchant(ctx, merchantID, params)
}

// ListPendingClaims lists the admin review queue, oldest first.
func (s *CommissionService) ListPendingClaims(ctx context.Context, params *pagination.PaginationParams) ([]entity.ReceiptClaim, int64, error) {
	return s.claimRepo.ListByStatus(ctx, enum.ClaimStatusPending, params)
}

// ListMerchantPayments lists a merchant's ledger entries, newest first.
func (s *CommissionService) ListMerchantPayments(ctx context.Context, merchantID uuid.UUID, params *pagination.PaginationParams) ([]entity.Payment, int64, error) {
	return s.paymentRepo.ListByMerchant(ctx, merchantID, params)
}

// LedgerPayments walks a merchant's ledger with keyset pagination. The
// ledger only grows, so a cursor stays valid no matter how many payments
// land while the client pages.
func (s *CommissionService) LedgerPayments(ctx context.Context, merchantID uuid.UUID, params *pagination.CursorParams) ([]entity.Payment, *pagination.CursorPagination, error) {
	payments, err := s.paymentRepo.ListWithCursor(ctx, merchantID, params)
	if err != nil {
		return nil, nil, err
	}

	pag, items := pagination.NewCursorPagination(payments, params.Limit,
		func(p entity.Payment) string { return p.ID.String() },
		func(p entity.Payment) time.Time { return p.CreatedAt },
	)
	pag.HasPrev = params.Cursor != ""
	return items, pag, nil
}

// ListMerchantPeriods lists a merchant's accrued periods, newest first.
func (s *CommissionService) ListMerchantPeriods(ctx context.Context, merchantID uuid.UUID, params *pagination.PaginationParams) ([]entity.CommissionPeriod, int64, error) {
	return s.periodRepo.ListByMerchant(ctx, merchantID, params)
}

// refreshDisplayStatus recomputes the cosmetic period status from the
// balance engine. Failures are ignored: the column is display-only and the
// next read path recomputes it anyway.
func (s *CommissionService) refreshDisplayStatus(ctx context.Context, merchantID uuid.UUID) {
	balance, err := s.GetBalance(ctx, merchantID)
	if err != nil || balance == nil {
		return
	}

	status := enum.CommissionStatusPending
	switch {
	case balance.CurrentBalance == 0:
		status = enum.CommissionStatusPaid
	default:
		pending, err := s.claimRepo.CountByMerchantStatus(ctx, merchantID, enum.ClaimStatusPending)
		if err == nil && pending > 0 {
			status = enum.CommissionStatusAwaitingConfirmation
		}
	}

	_ = s.periodRepo.UpdateDisplayStatus(ctx, merchantID, status)
}
