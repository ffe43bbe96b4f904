package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feirahub/feira-api/internal/domain/entity"
	"github.com/feirahub/feira-api/internal/domain/enum"
	"github.com/feirahub/feira-api/pkg/apperror"
	"github.com/feirahub/feira-api/pkg/events"
)

type commissionFixture struct {
	svc       *CommissionService
	orders    *fakeOrderRepo
	periods   *fakePeriodRepo
	payments  *fakePaymentRepo
	claims    *fakeClaimRepo
	merchants *fakeMerchantRepo
	merchant  *entity.Merchant
}

func newCommissionFixture(t *testing.T) *commissionFixture {
	t.Helper()

	orders := newFakeOrderRepo()
	periods := newFakePeriodRepo()
	payments := newFakePaymentRepo()
	claims := newFakeClaimRepo(payments)
	merchants := newFakeMerchantRepo()

	merchant := merchants.add(&entity.Merchant{
		UserID: uuid.New(),
		Name:   "Barraca da Ana",
		Slug:   "barraca-da-ana",
		Active: true,
	})

	svc := NewCommissionService(orders, periods, payments, claims, merchants,
		events.NopPublisher{}, decimal.RequireFromString("0.07"))

	return &commissionFixture{
		svc:       svc,
		orders:    orders,
		periods:   periods,
		payments:  payments,
		claims:    claims,
		merchants: merchants,
		merchant:  merchant,
	}
}

// deliveredOrder seeds a delivered order inside the given period.
func (f *commissionFixture) deliveredOrder(t *testing.T, totalCents int64, period string) {
	t.Helper()
	start, _, err := entity.ParsePeriod(period)
	require.NoError(t, err)

	order := &entity.Order{
		OrderNumber:   "FE-TEST-" + uuid.New().String()[:8],
		MerchantID:    f.merchant.ID,
		CustomerID:    uuid.New(),
		Status:        enum.OrderStatusDelivered,
		PaymentMethod: enum.PaymentMethodCash,
		SubTotal:      totalCents,
		CreatedAt:     start.Add(24 * time.Hour),
	}
	require.NoError(t, f.orders.Create(context.Background(), order))
}

func TestAccrueMerchantPeriod(t *testing.T) {
	f := newCommissionFixture(t)
	ctx := context.Background()

	f.deliveredOrder(t, 6000, "2026-07")
	f.deliveredOrder(t, 4000, "2026-07")

	cp, err := f.svc.AccrueMerchantPeriod(ctx, f.merchant.ID, "2026-07")
	require.NoError(t, err)

	assert.Equal(t, int64(10000), cp.TotalSales)
	assert.Equal(t, int64(700), cp.CommissionAmount)
	assert.Equal(t, int64(2), cp.DeliveredOrders)
}

func TestAccrueIsIdempotent(t *testing.T) {
	f := newCommissionFixture(t)
	ctx := context.Background()

	f.deliveredOrder(t, 10000, "2026-07")

	first, err := f.svc.AccrueMerchantPeriod(ctx, f.merchant.ID, "2026-07")
	require.NoError(t, err)

	// A late delivery lands, then the accrual re-runs.
	f.deliveredOrder(t, 5000, "2026-07")
	second, err := f.svc.AccrueMerchantPeriod(ctx, f.merchant.ID, "2026-07")
	require.NoError(t, err)

	// Same row, fully recomputed, not incremented twice.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(15000), second.TotalSales)
	assert.Equal(t, int64(1050), second.CommissionAmount)

	stored, err := f.periods.GetByMerchantPeriod(ctx, f.merchant.ID, "2026-07")
	require.NoError(t, err)
	assert.Equal(t, int64(1050), stored.CommissionAmount)
}

func TestAccrueRejectsMalformedPeriod(t *testing.T) {
	f := newCommissionFixture(t)

	_, err := f.svc.AccrueMerchantPeriod(context.Background(), f.merchant.ID, "July 2026")
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}

func TestAccrueUnknownMerchant(t *testing.T) {
	f := newCommissionFixture(t)

	_, err := f.svc.AccrueMerchantPeriod(context.Background(), uuid.New(), "2026-07")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestAccrueAllCoversEveryMerchantWithDeliveries(t *testing.T) {
	f := newCommissionFixture(t)
	ctx := context.Background()

	other := f.merchants.add(&entity.Merchant{
		UserID: uuid.New(),
		Name:   "Pastel do Zé",
		Slug:   "pastel-do-ze",
		Active: true,
	})

	f.deliveredOrder(t, 10000, "2026-07")
	start, _, _ := entity.ParsePeriod("2026-07")
	require.NoError(t, f.orders.Create(ctx, &entity.Order{
		OrderNumber:   "FE-TEST-OTHER",
		MerchantID:    other.ID,
		CustomerID:    uuid.New(),
		Status:        enum.OrderStatusDelivered,
		PaymentMethod: enum.PaymentMethodCash,
		SubTotal:      2000,
		CreatedAt:     start.Add(48 * time.Hour),
	}))

	count, err := f.svc.AccrueAll(ctx, "2026-07")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	cp, err := f.periods.GetByMerchantPeriod(ctx, other.ID, "2026-07")
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, int64(140), cp.CommissionAmount)
}

func TestBalanceLifecycle(t *testing.T) {
	f := newCommissionFixture(t)
	ctx := context.Background()

	// R$100.00 delivered -> R$7.00 owed.
	f.deliveredOrder(t, 10000, "2026-07")
	_, err := f.svc.AccrueMerchantPeriod(ctx, f.merchant.ID, "2026-07")
	require.NoError(t, err)

	balance, err := f.svc.GetBalance(ctx, f.merchant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(700), balance.CurrentBalance)
	assert.Equal(t, int64(0), balance.Credit)

	// Settle in full.
	_, err = f.svc.RegisterPayment(ctx, &RegisterPaymentInput{
		MerchantID: f.merchant.ID,
		Amount:     "7.00",
		AdminID:    uuid.New(),
	})
	require.NoError(t, err)

	balance, err = f.svc.GetBalance(ctx, f.merchant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.CurrentBalance)
	assert.Equal(t, int64(0), balance.Credit)

	// Over-pay: balance stays clamped at zero, surplus shows as credit.
	_, err = f.svc.RegisterPayment(ctx, &RegisterPaymentInput{
		MerchantID: f.merchant.ID,
		Amount:     "3.00",
		AdminID:    uuid.New(),
	})
	require.NoError(t, err)

	balance, err = f.svc.GetBalance(ctx, f.merchant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.CurrentBalance)
	assert.Equal(t, int64(300), balance.Credit)
	assert.Equal(t, int64(1000), balance.TotalPaid)
}

func TestRegisterPaymentRejectsBadAmounts(t *testing.T) {
	f := newCommissionFixture(t)
	ctx := context.Background()

	for _, amount := range []string{"0", "-5.00", "1.234", "abc", ""} {
		_, err := f.svc.RegisterPayment(ctx, &RegisterPaymentInput{
			MerchantID: f.merchant.ID,
			Amount:     amount,
			AdminID:    uuid.New(),
		})
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidAmount), "amount %q", amount)
	}

	payments, _, err := f.payments.ListByMerchant(ctx, f.merchant.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestSubmitClaimDefaultsToCurrentBalance(t *testing.T) {
	f := newCommissionFixture(t)
	ctx := context.Background()

	f.deliveredOrder(t, 10000, "2026-07")
	_, err := f.svc.AccrueMerchantPeriod(ctx, f.merchant.ID, "2026-07")
	require.NoError(t, err)

	claim, err := f.svc.SubmitClaim(ctx, &SubmitClaimInput{
		MerchantID: f.merchant.ID,
		ReceiptURL: "/uploads/receipts/comprovante.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(700), claim.ClaimedAmount)
	assert.Equal(t, enum.ClaimStatusPending, claim.Status)

	// Submitting never touches the ledger.
	paid, err := f.payments.SumPayments(ctx, f.merchant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), paid)
}

func TestSubmitClaimWithZeroBalance(t *testing.T) {
	f := newCommissionFixture(t)

	_, err := f.svc.SubmitClaim(context.Background(), &SubmitClaimInput{
		MerchantID: f.merchant.ID,
		ReceiptURL: "/uploads/receipts/comprovante.jpg",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidAmount))
}

func TestSubmitClaimRequiresReceipt(t *testing.T) {
	f := newCommissionFixture(t)

	_, err := f.svc.SubmitClaim(context.Background(), &SubmitClaimInput{
		MerchantID:    f.merchant.ID,
		ClaimedAmount: "7.00",
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}

func TestResolveClaimConfirmAppendsExactlyOnePayment(t *testing.T) {
	f := newCommissionFixture(t)
	ctx := context.Background()

	f.deliveredOrder(t, 10000, "2026-07")
	_, err := f.svc.AccrueMerchantPeriod(ctx, f.merchant.ID, "2026-07")
	require.NoError(t, err)

	claim, err := f.svc.SubmitClaim(ctx, &SubmitClaimInput{
		MerchantID: f.merchant.ID,
		ReceiptURL: "/uploads/receipts/comprovante.jpg",
	})
	require.NoError(t, err)

	adminID := uuid.New()
	resolved, err := f.svc.ResolveClaim(ctx, &ResolveClaimInput{
		ClaimID: claim.ID,
		AdminID: adminID,
		Approve: true,
	})
	require.NoError(t, err)
	assert.Equal(t, enum.ClaimStatusConfirmed, resolved.Status)
	assert.Equal(t, adminID, *resolved.ResolvedBy)

	payments, _, err := f.payments.ListByMerchant(ctx, f.merchant.ID, nil)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, int64(700), payments[0].Amount)

	balance, err := f.svc.GetBalance(ctx, f.merchant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.CurrentBalance)

	// Second resolution attempt bounces and must not double-pay.
	_, err = f.svc.ResolveClaim(ctx, &ResolveClaimInput{
		ClaimID: claim.ID,
		AdminID: uuid.New(),
		Approve: true,
	})
	assert.True(t, apperror.IsKind(err, apperror.KindAlreadyResolved))

	payments, _, err = f.payments.ListByMerchant(ctx, f.merchant.ID, nil)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestRejectClaimRequiresReason(t *testing.T) {
	f := newCommissionFixture(t)
	ctx := context.Background()

	claim, err := f.svc.SubmitClaim(ctx, &SubmitClaimInput{
		MerchantID:    f.merchant.ID,
		ReceiptURL:    "/uploads/receipts/comprovante.jpg",
		ClaimedAmount: "7.00",
	})
	require.NoError(t, err)

	_, err = f.svc.ResolveClaim(ctx, &ResolveClaimInput{
		ClaimID: claim.ID,
		AdminID: uuid.New(),
		Approve: false,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindMissingReason))

	// The claim stays pending and resolvable.
	stored, err := f.claims.GetByID(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.ClaimStatusPending, stored.Status)
}

func TestRejectClaimLeavesLedgerUntouched(t *testing.T) {
	f := newCommissionFixture(t)
	ctx := context.Background()

	claim, err := f.svc.SubmitClaim(ctx, &SubmitClaimInput{
		MerchantID:    f.merchant.ID,
		ReceiptURL:    "/uploads/receipts/comprovante.jpg",
		ClaimedAmount: "7.00",
	})
	require.NoError(t, err)

	resolved, err := f.svc.ResolveClaim(ctx, &ResolveClaimInput{
		ClaimID: claim.ID,
		AdminID: uuid.New(),
		Approve: false,
		Reason:  "Receipt is unreadable",
	})
	require.NoError(t, err)
	assert.Equal(t, enum.ClaimStatusRejected, resolved.Status)
	require.NotNil(t, resolved.Reason)
	assert.Equal(t, "Receipt is unreadable", *resolved.Reason)

	paid, err := f.payments.SumPayments(ctx, f.merchant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), paid)
}

func TestSubmitClaimValidatesOptionalPeriod(t *testing.T) {
	f := newCommissionFixture(t)

	_, err := f.svc.SubmitClaim(context.Background(), &SubmitClaimInput{
		MerchantID:    f.merchant.ID,
		ReceiptURL:    "/uploads/receipts/comprovante.jpg",
		ClaimedAmount: "7.00",
		Period:        "07/2026",
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}
