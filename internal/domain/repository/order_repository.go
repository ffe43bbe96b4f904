package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/feirahub/feira-api/internal/domain/entity"
	"github.com/feirahub/feira-api/internal/domain/enum"
	"github.com/feirahub/feira-api/pkg/pagination"
)

// OrderRepository defines the interface for order data operations. Orders
// are never deleted; status changes go through the compare-and-set methods
// so concurrent transitions cannot both succeed from the same source state.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*entity.Order, error)
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	List(ctx context.Context, params *OrderFilterParams) ([]entity.Order, int64, error)
	// UpdateStatusFrom sets the status to target only if the row still holds
	// from. Returns false when another writer got there first.
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to enum.OrderStatus) (bool, error)
	// UpdatePaymentStatusFrom is the same compare-and-set for the pix
	// payment sub-state.
	UpdatePaymentStatusFrom(ctx context.Context, id uuid.UUID, from, to enum.PaymentStatus) (bool, error)
	// SumDeliveredTotals aggregates total and count of delivered orders for
	// one merchant created inside [start, end).
	SumDeliveredTotals(ctx context.Context, merchantID uuid.UUID, start, end time.Time) (totalCents int64, count int64, err error)
	// MerchantsWithDeliveries lists merchants that have at least one
	// delivered order created inside [start, end), for batch accrual.
	MerchantsWithDeliveries(ctx context.Context, start, end time.Time) ([]uuid.UUID, error)
}

// OrderItemRepository defines the interface for order line item snapshots
type OrderItemRepository interface {
	CreateBatch(ctx context.Context, items []entity.OrderItem) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]entity.OrderItem, error)
}

// OrderFilterParams contains filtering parameters for order queries
type OrderFilterParams struct {
	Pagination    *pagination.PaginationParams
	MerchantID    *uuid.UUID
	CustomerID    *uuid.UUID
	Status        *enum.OrderStatus
	PaymentMethod *enum.PaymentMethod
	Search        string
	StartDate     *time.Time
	EndDate       *time.Time
	SortBy        string
	SortOrder     string
}
