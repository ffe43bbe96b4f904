package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/feirahub/feira-api/internal/domain/entity"
	"github.com/feirahub/feira-api/internal/domain/enum"
	"github.com/feirahub/feira-api/internal/domain/repository"
	"github.com/feirahub/feira-api/pkg/pagination"
)

// In-memory repository fakes. The compare-and-set methods take a mutex so
// the concurrency tests exercise the same single-winner guarantee the SQL
// implementations give.

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*entity.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*entity.Order)}
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.Total = order.SubTotal + order.DeliveryFee
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *order
	return &cp, nil
}

func (r *fakeOrderRepo) GetByOrderNumber(ctx context.Context, orderNumber string) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.OrderNumber == orderNumber {
			cp := *order
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeOrderRepo) List(ctx context.Context, params *repository.OrderFilterParams) ([]entity.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Order
	for _, order := range r.orders {
		if params.MerchantID != nil && order.MerchantID != *params.MerchantID {
			continue
		}
		if params.CustomerID != nil && order.CustomerID != *params.CustomerID {
			continue
		}
		if params.Status != nil && order.Status != *params.Status {
			continue
		}
		out = append(out, *order)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to enum.OrderStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok || order.Status != from {
		return false, nil
	}
	order.Status = to
	return true, nil
}

func (r *fakeOrderRepo) UpdatePaymentStatusFrom(ctx context.Context, id uuid.UUID, from, to enum.PaymentStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok || order.PaymentStatus == nil || *order.PaymentStatus != from {
		return false, nil
	}
	ps := to
	order.PaymentStatus = &ps
	return true, nil
}

func (r *fakeOrderRepo) SumDeliveredTotals(ctx context.Context, merchantID uuid.UUID, start, end time.Time) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total, count int64
	for _, order := range r.orders {
		if order.MerchantID != merchantID || order.Status != enum.OrderStatusDelivered {
			continue
		}
		if order.CreatedAt.Before(start) || !order.CreatedAt.Before(end) {
			continue
		}
		total += order.Total
		count++
	}
	return total, count, nil
}

func (r *fakeOrderRepo) MerchantsWithDeliveries(ctx context.Context, start, end time.Time) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, order := range r.orders {
		if order.Status != enum.OrderStatusDelivered {
			continue
		}
		if order.CreatedAt.Before(start) || !order.CreatedAt.Before(end) {
			continue
		}
		if !seen[order.MerchantID] {
			seen[order.MerchantID] = true
			ids = append(ids, order.MerchantID)
		}
	}
	return ids, nil
}

type fakeOrderItemRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID][]entity.OrderItem
}

func newFakeOrderItemRepo() *fakeOrderItemRepo {
	return &fakeOrderItemRepo{items: make(map[uuid.UUID][]entity.OrderItem)}
}

func (r *fakeOrderItemRepo) CreateBatch(ctx context.Context, items []entity.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		r.items[items[i].OrderID] = append(r.items[items[i].OrderID], items[i])
	}
	return nil
}

func (r *fakeOrderItemRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]entity.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[orderID], nil
}

type fakeProductRepo struct {
	products map[uuid.UUID]*entity.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*entity.Product)}
}

func (r *fakeProductRepo) add(p *entity.Product) *entity.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return p
}

func (r *fakeProductRepo) Create(ctx context.Context, product *entity.Product) error {
	r.add(product)
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return product, nil
}

func (r *fakeProductRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	var out []entity.Product
	for _, id := range ids {
		if product, ok := r.products[id]; ok {
			out = append(out, *product)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) GetBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	for _, product := range r.products {
		if product.Slug == slug {
			return product, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, product *entity.Product) error {
	r.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) List(ctx context.Context, params *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	var out []entity.Product
	for _, product := range r.products {
		out = append(out, *product)
	}
	return out, int64(len(out)), nil
}

type fakeMerchantRepo struct {
	merchants map[uuid.UUID]*entity.Merchant
}

func newFakeMerchantRepo() *fakeMerchantRepo {
	return &fakeMerchantRepo{merchants: make(map[uuid.UUID]*entity.Merchant)}
}

func (r *fakeMerchantRepo) add(m *entity.Merchant) *entity.Merchant {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.merchants[m.ID] = m
	return m
}

func (r *fakeMerchantRepo) Create(ctx context.Context, merchant *entity.Merchant) error {
	r.add(merchant)
	return nil
}

func (r *fakeMerchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Merchant, error) {
	merchant, ok := r.merchants[id]
	if !ok {
		return nil, nil
	}
	return merchant, nil
}

func (r *fakeMerchantRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Merchant, error) {
	for _, merchant := range r.merchants {
		if merchant.UserID == userID {
			return merchant, nil
		}
	}
	return nil, nil
}

func (r *fakeMerchantRepo) GetBySlug(ctx context.Context, slug string) (*entity.Merchant, error) {
	for _, merchant := range r.merchants {
		if merchant.Slug == slug {
			return merchant, nil
		}
	}
	return nil, nil
}

func (r *fakeMerchantRepo) Update(ctx context.Context, merchant *entity.Merchant) error {
	r.merchants[merchant.ID] = merchant
	return nil
}

func (r *fakeMerchantRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	if merchant, ok := r.merchants[id]; ok {
		merchant.Active = false
	}
	return nil
}

func (r *fakeMerchantRepo) List(ctx context.Context, params *repository.MerchantFilterParams) ([]entity.Merchant, int64, error) {
	var out []entity.Merchant
	for _, merchant := range r.merchants {
		if params.OnlyActive && !merchant.Active {
			continue
		}
		out = append(out, *merchant)
	}
	return out, int64(len(out)), nil
}

func (r *fakeMerchantRepo) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, merchant := range r.merchants {
		if merchant.Active {
			ids = append(ids, merchant.ID)
		}
	}
	return ids, nil
}

type periodKey struct {
	merchantID uuid.UUID
	period     string
}

type fakePeriodRepo struct {
	mu      sync.Mutex
	periods map[periodKey]*entity.CommissionPeriod
}

func newFakePeriodRepo() *fakePeriodRepo {
	return &fakePeriodRepo{periods: make(map[periodKey]*entity.CommissionPeriod)}
}

func (r *fakePeriodRepo) Upsert(ctx context.Context, period *entity.CommissionPeriod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := periodKey{period.MerchantID, period.Period}
	if existing, ok := r.periods[key]; ok {
		period.ID = existing.ID
	} else if period.ID == uuid.Nil {
		period.ID = uuid.New()
	}
	cp := *period
	r.periods[key] = &cp
	return nil
}

func (r *fakePeriodRepo) GetByMerchantPeriod(ctx context.Context, merchantID uuid.UUID, period string) (*entity.CommissionPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp, ok := r.periods[periodKey{merchantID, period}]
	if !ok {
		return nil, nil
	}
	out := *cp
	return &out, nil
}

func (r *fakePeriodRepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID, params *pagination.PaginationParams) ([]entity.CommissionPeriod, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.CommissionPeriod
	for _, cp := range r.periods {
		if cp.MerchantID == merchantID {
			out = append(out, *cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakePeriodRepo) ListByPeriod(ctx context.Context, period string) ([]entity.CommissionPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.CommissionPeriod
	for _, cp := range r.periods {
		if cp.Period == period {
			out = append(out, *cp)
		}
	}
	return out, nil
}

func (r *fakePeriodRepo) SumCommission(ctx context.Context, merchantID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, cp := range r.periods {
		if cp.MerchantID == merchantID {
			sum += cp.CommissionAmount
		}
	}
	return sum, nil
}

func (r *fakePeriodRepo) UpdateDisplayStatus(ctx context.Context, merchantID uuid.UUID, status enum.CommissionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cp := range r.periods {
		if cp.MerchantID == merchantID {
			cp.Status = status
		}
	}
	return nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments []entity.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{}
}

func (r *fakePaymentRepo) Create(ctx context.Context, payment *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.append(payment)
	return nil
}

// append adds a payment without locking; callers hold the mutex.
func (r *fakePaymentRepo) append(payment *entity.Payment) {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}
	r.payments = append(r.payments, *payment)
}

func (r *fakePaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.payments {
		if r.payments[i].ID == id {
			cp := r.payments[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID, params *pagination.PaginationParams) ([]entity.Payment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Payment
	for _, p := range r.payments {
		if p.MerchantID == merchantID {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakePaymentRepo) ListWithCursor(ctx context.Context, merchantID uuid.UUID, params *pagination.CursorParams) ([]entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	params.Validate()
	var out []entity.Payment
	for _, p := range r.payments {
		if p.MerchantID == merchantID {
			out = append(out, p)
		}
		if len(out) == params.Limit+1 {
			break
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) SumPayments(ctx context.Context, merchantID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, p := range r.payments {
		if p.MerchantID == merchantID {
			sum += p.Amount
		}
	}
	return sum, nil
}

func (r *fakePaymentRepo) SumPaymentsBetween(ctx context.Context, merchantID uuid.UUID, start, end time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, p := range r.payments {
		if p.MerchantID == merchantID && !p.CreatedAt.Before(start) && p.CreatedAt.Before(end) {
			sum += p.Amount
		}
	}
	return sum, nil
}

type fakeClaimRepo struct {
	mu       sync.Mutex
	claims   map[uuid.UUID]*entity.ReceiptClaim
	payments *fakePaymentRepo
}

func newFakeClaimRepo(payments *fakePaymentRepo) *fakeClaimRepo {
	return &fakeClaimRepo{
		claims:   make(map[uuid.UUID]*entity.ReceiptClaim),
		payments: payments,
	}
}

func (r *fakeClaimRepo) Create(ctx context.Context, claim *entity.ReceiptClaim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if claim.ID == uuid.Nil {
		claim.ID = uuid.New()
	}
	claim.CreatedAt = time.Now()
	cp := *claim
	r.claims[claim.ID] = &cp
	return nil
}

func (r *fakeClaimRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.ReceiptClaim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	claim, ok := r.claims[id]
	if !ok {
		return nil, nil
	}
	cp := *claim
	return &cp, nil
}

func (r *fakeClaimRepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID, params *pagination.PaginationParams) ([]entity.ReceiptClaim, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.ReceiptClaim
	for _, claim := range r.claims {
		if claim.MerchantID == merchantID {
			out = append(out, *claim)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeClaimRepo) ListByStatus(ctx context.Context, status enum.ClaimStatus, params *pagination.PaginationParams) ([]entity.ReceiptClaim, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.ReceiptClaim
	for _, claim := range r.claims {
		if claim.Status == status {
			out = append(out, *claim)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeClaimRepo) CountByMerchantStatus(ctx context.Context, merchantID uuid.UUID, status enum.ClaimStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, claim := range r.claims {
		if claim.MerchantID == merchantID && claim.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *fakeClaimRepo) Reject(ctx context.Context, claimID, adminID uuid.UUID, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	claim, ok := r.claims[claimID]
	if !ok || claim.Status != enum.ClaimStatusPending {
		return false, nil
	}
	now := time.Now()
	claim.Status = enum.ClaimStatusRejected
	claim.Reason = &reason
	claim.ResolvedBy = &adminID
	claim.ResolvedAt = &now
	return true, nil
}

func (r *fakeClaimRepo) ConfirmWithPayment(ctx context.Context, claimID uuid.UUID, payment *entity.Payment) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	claim, ok := r.claims[claimID]
	if !ok || claim.Status != enum.ClaimStatusPending {
		return false, nil
	}
	now := time.Now()
	claim.Status = enum.ClaimStatusConfirmed
	claim.ResolvedBy = &payment.ConfirmedBy
	claim.ResolvedAt = &now

	r.payments.mu.Lock()
	r.payments.append(payment)
	r.payments.mu.Unlock()
	return true, nil
}
