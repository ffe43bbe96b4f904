package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feirahub/feira-api/internal/domain/entity"
	"github.com/feirahub/feira-api/internal/domain/enum"
	"github.com/feirahub/feira-api/pkg/apperror"
	"github.com/feirahub/feira-api/pkg/events"
	"github.com/feirahub/feira-api/pkg/pix"
)

type orderFixture struct {
	svc       *OrderService
	orders    *fakeOrderRepo
	products  *fakeProductRepo
	merchants *fakeMerchantRepo
	periods   *fakePeriodRepo
	merchant  *entity.Merchant
	product   *entity.Product
	customer  uuid.UUID
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	orders := newFakeOrderRepo()
	orderItems := newFakeOrderItemRepo()
	products := newFakeProductRepo()
	merchants := newFakeMerchantRepo()
	periods := newFakePeriodRepo()
	payments := newFakePaymentRepo()
	claims := newFakeClaimRepo(payments)

	commissionSvc := NewCommissionService(orders, periods, payments, claims, merchants,
		events.NopPublisher{}, decimal.RequireFromString("0.07"))

	merchant := merchants.add(&entity.Merchant{
		UserID:      uuid.New(),
		Name:        "Barraca da Ana",
		Slug:        "barraca-da-ana",
		City:        "São Paulo",
		PixKey:      "ana@example.com",
		PixKeyType:  pix.KeyTypeEmail,
		DeliveryFee: 500,
		Active:      true,
	})

	product := products.add(&entity.Product{
		MerchantID: merchant.ID,
		Name:       "Pão de queijo",
		Slug:       "pao-de-queijo",
		Code:       "PRD-001",
		Price:      1250,
		Available:  true,
	})

	svc := NewOrderService(orders, orderItems, products, merchants,
		commissionSvc, pix.NewPassthroughGenerator(), events.NopPublisher{})

	return &orderFixture{
		svc:       svc,
		orders:    orders,
		products:  products,
		merchants: merchants,
		periods:   periods,
		merchant:  merchant,
		product:   product,
		customer:  uuid.New(),
	}
}

func (f *orderFixture) checkout(t *testing.T, method enum.PaymentMethod, quantity int) *entity.Order {
	t.Helper()
	order, err := f.svc.Checkout(context.Background(), &CheckoutInput{
		CustomerID:    f.customer,
		MerchantID:    f.merchant.ID,
		PaymentMethod: method,
		Items:         []OrderItemInput{{ProductID: f.product.ID, Quantity: quantity}},
	})
	require.NoError(t, err)
	return order
}

// walk drives the order along the given path as its merchant.
func (f *orderFixture) walk(t *testing.T, orderID uuid.UUID, path ...enum.OrderStatus) *entity.Order {
	t.Helper()
	var order *entity.Order
	var err error
	for _, target := range path {
		order, err = f.svc.Transition(context.Background(), &TransitionInput{
			OrderID: orderID,
			Target:  target,
			ActorID: f.merchant.ID,
			Role:    enum.ActorRoleMerchant,
		})
		require.NoError(t, err, "transition to %s", target)
	}
	return order
}

var fulfillmentPath = []enum.OrderStatus{
	enum.OrderStatusAwaitingPayment,
	enum.OrderStatusPendingConfirmation,
	enum.OrderStatusConfirmed,
	enum.OrderStatusPreparing,
	enum.OrderStatusReady,
	enum.OrderStatusDelivered,
}

func TestCheckoutSnapshotsCatalogPrices(t *testing.T) {
	f := newOrderFixture(t)

	order := f.checkout(t, enum.PaymentMethodCash, 2)

	assert.Equal(t, enum.OrderStatusPending, order.Status)
	assert.Equal(t, int64(2500), order.SubTotal)
	assert.Equal(t, int64(2500), order.Total)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(1250), order.Items[0].UnitPrice)
	assert.Equal(t, "Pão de queijo", order.Items[0].Name)

	// A later catalog edit must not reach the snapshot.
	f.product.Price = 9999
	f.product.Name = "Outro nome"
	stored, err := f.svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), stored.SubTotal)
}

func TestCheckoutAppliesDeliveryFee(t *testing.T) {
	f := newOrderFixture(t)
	addr := "Rua das Flores, 123"

	order, err := f.svc.Checkout(context.Background(), &CheckoutInput{
		CustomerID:      f.customer,
		MerchantID:      f.merchant.ID,
		PaymentMethod:   enum.PaymentMethodCash,
		IsDelivery:      true,
		DeliveryAddress: &addr,
		Items:           []OrderItemInput{{ProductID: f.product.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500), order.DeliveryFee)
	assert.Equal(t, int64(1750), order.Total)
}

func TestCheckoutPixStartsAwaitingPayment(t *testing.T) {
	f := newOrderFixture(t)

	order := f.checkout(t, enum.PaymentMethodPix, 1)
	require.NotNil(t, order.PaymentStatus)
	assert.Equal(t, enum.PaymentStatusAwaitingPayment, *order.PaymentStatus)

	cash := f.checkout(t, enum.PaymentMethodCash, 1)
	assert.Nil(t, cash.PaymentStatus)
}

func TestCheckoutValidations(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	unavailable := f.products.add(&entity.Product{
		MerchantID: f.merchant.ID,
		Name:       "Esgotado",
		Slug:       "esgotado",
		Code:       "PRD-002",
		Price:      500,
		Available:  false,
	})
	foreign := f.products.add(&entity.Product{
		MerchantID: uuid.New(),
		Name:       "De outra barraca",
		Slug:       "de-outra-barraca",
		Code:       "PRD-003",
		Price:      500,
		Available:  true,
	})

	tests := []struct {
		name  string
		input CheckoutInput
		kind  string
	}{
		{
			name: "no items",
			input: CheckoutInput{
				CustomerID:    f.customer,
				MerchantID:    f.merchant.ID,
				PaymentMethod: enum.PaymentMethodCash,
			},
		},
		{
			name: "unknown payment method",
			input: CheckoutInput{
				CustomerID:    f.customer,
				MerchantID:    f.merchant.ID,
				PaymentMethod: enum.PaymentMethod("cheque"),
				Items:         []OrderItemInput{{ProductID: f.product.ID, Quantity: 1}},
			},
		},
		{
			name: "delivery without address",
			input: CheckoutInput{
				CustomerID:    f.customer,
				MerchantID:    f.merchant.ID,
				PaymentMethod: enum.PaymentMethodCash,
				IsDelivery:    true,
				Items:         []OrderItemInput{{ProductID: f.product.ID, Quantity: 1}},
			},
		},
		{
			name: "unavailable product",
			input: CheckoutInput{
				CustomerID:    f.customer,
				MerchantID:    f.merchant.ID,
				PaymentMethod: enum.PaymentMethodCash,
				Items:         []OrderItemInput{{ProductID: unavailable.ID, Quantity: 1}},
			},
		},
		{
			name: "product from another storefront",
			input: CheckoutInput{
				CustomerID:    f.customer,
				MerchantID:    f.merchant.ID,
				PaymentMethod: enum.PaymentMethodCash,
				Items:         []OrderItemInput{{ProductID: foreign.ID, Quantity: 1}},
			},
			kind: apperror.KindNotFound,
		},
		{
			name: "zero quantity",
			input: CheckoutInput{
				CustomerID:    f.customer,
				MerchantID:    f.merchant.ID,
				PaymentMethod: enum.PaymentMethodCash,
				Items:         []OrderItemInput{{ProductID: f.product.ID, Quantity: 0}},
			},
			kind: apperror.KindInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Checkout(ctx, &tt.input)
			require.Error(t, err)
			if tt.kind != "" {
				assert.True(t, apperror.IsKind(err, tt.kind))
			}
		})
	}
}

func TestCheckoutInactiveMerchant(t *testing.T) {
	f := newOrderFixture(t)
	f.merchant.Active = false

	_, err := f.svc.Checkout(context.Background(), &CheckoutInput{
		CustomerID:    f.customer,
		MerchantID:    f.merchant.ID,
		PaymentMethod: enum.PaymentMethodCash,
		Items:         []OrderItemInput{{ProductID: f.product.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestTransitionFullFulfillment(t *testing.T) {
	f := newOrderFixture(t)

	order := f.checkout(t, enum.PaymentMethodPix, 2)
	final := f.walk(t, order.ID, fulfillmentPath...)
	assert.Equal(t, enum.OrderStatusDelivered, final.Status)
}

func TestTransitionRejectsSkippedStates(t *testing.T) {
	f := newOrderFixture(t)

	order := f.checkout(t, enum.PaymentMethodCash, 1)
	_, err := f.svc.Transition(context.Background(), &TransitionInput{
		OrderID: order.ID,
		Target:  enum.OrderStatusDelivered,
		ActorID: f.merchant.ID,
		Role:    enum.ActorRoleMerchant,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
}

func TestDeliveryAccruesCommission(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	order := f.checkout(t, enum.PaymentMethodPix, 2) // R$25.00
	f.walk(t, order.ID, fulfillmentPath...)

	cp, err := f.periods.GetByMerchantPeriod(ctx, f.merchant.ID, order.Period())
	require.NoError(t, err)
	require.NotNil(t, cp, "delivery must accrue the merchant's period")
	assert.Equal(t, int64(2500), cp.TotalSales)
	assert.Equal(t, int64(175), cp.CommissionAmount)
	assert.Equal(t, int64(1), cp.DeliveredOrders)
}

func TestConcurrentTransitionSingleWinner(t *testing.T) {
	f := newOrderFixture(t)

	order := f.checkout(t, enum.PaymentMethodCash, 1)
	f.walk(t, order.ID,
		enum.OrderStatusAwaitingPayment,
		enum.OrderStatusPendingConfirmation,
		enum.OrderStatusConfirmed,
		enum.OrderStatusPreparing,
		enum.OrderStatusReady,
	)

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Transition(context.Background(), &TransitionInput{
				OrderID: order.ID,
				Target:  enum.OrderStatusDelivered,
				ActorID: f.merchant.ID,
				Role:    enum.ActorRoleMerchant,
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
		}
	}
	assert.Equal(t, 1, winners, "exactly one racer may take the delivered edge")

	// The single winner accrued exactly once.
	cp, err := f.periods.GetByMerchantPeriod(context.Background(), f.merchant.ID, order.Period())
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, int64(1), cp.DeliveredOrders)
}

func TestCustomerMayOnlyCancelOwnPendingOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	order := f.checkout(t, enum.PaymentMethodCash, 1)

	// A stranger cannot cancel.
	_, err := f.svc.Cancel(ctx, order.ID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	// The owner cannot drive fulfillment edges.
	_, err = f.svc.Transition(ctx, &TransitionInput{
		OrderID: order.ID,
		Target:  enum.OrderStatusAwaitingPayment,
		ActorID: f.customer,
		Role:    enum.ActorRoleCustomer,
	})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	// The owner can cancel while the order is still pending.
	cancelled, err := f.svc.Cancel(ctx, order.ID, f.customer)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusCancelled, cancelled.Status)
}

func TestCustomerCannotCancelAfterFulfillmentStarts(t *testing.T) {
	f := newOrderFixture(t)

	order := f.checkout(t, enum.PaymentMethodCash, 1)
	f.walk(t, order.ID,
		enum.OrderStatusAwaitingPayment,
		enum.OrderStatusPendingConfirmation,
		enum.OrderStatusConfirmed,
	)

	_, err := f.svc.Cancel(context.Background(), order.ID, f.customer)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
}

func TestMerchantCannotTouchForeignOrders(t *testing.T) {
	f := newOrderFixture(t)

	order := f.checkout(t, enum.PaymentMethodCash, 1)

	_, err := f.svc.Transition(context.Background(), &TransitionInput{
		OrderID: order.ID,
		Target:  enum.OrderStatusAwaitingPayment,
		ActorID: uuid.New(), // some other storefront
		Role:    enum.ActorRoleMerchant,
	})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestPixInstruction(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	order := f.checkout(t, enum.PaymentMethodPix, 2)
	code, err := f.svc.PixInstruction(ctx, order.ID)
	require.NoError(t, err)
	assert.Contains(t, code, "ana@example.com")
	assert.Contains(t, code, order.OrderNumber)

	cash := f.checkout(t, enum.PaymentMethodCash, 1)
	_, err = f.svc.PixInstruction(ctx, cash.ID)
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}

func TestAdvancePaymentStatus(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	order := f.checkout(t, enum.PaymentMethodPix, 1)

	updated, err := f.svc.AdvancePaymentStatus(ctx, order.ID, enum.PaymentStatusPendingConfirmation)
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusPendingConfirmation, *updated.PaymentStatus)

	// Cannot jump straight back to awaiting.
	_, err = f.svc.AdvancePaymentStatus(ctx, order.ID, enum.PaymentStatusAwaitingPayment)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))

	// Cash orders have no payment sub-state at all.
	cash := f.checkout(t, enum.PaymentMethodCash, 1)
	_, err = f.svc.AdvancePaymentStatus(ctx, cash.ID, enum.PaymentStatusConfirmed)
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}
