package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/feirahub/feira-api/internal/domain/entity"
	"github.com/feirahub/feira-api/internal/domain/enum"
	"github.com/feirahub/feira-api/internal/domain/repository"
	"github.com/feirahub/feira-api/pkg/apperror"
	"github.com/feirahub/feira-api/pkg/events"
	"github.com/feirahub/feira-api/pkg/pix"
	"github.com/feirahub/feira-api/pkg/utils"
)

// OrderService handles checkout and the order fulfillment workflow
type OrderService struct {
	orderRepo     repository.OrderRepository
	orderItemRepo repository.OrderItemRepository
	productRepo   repository.ProductRepository
	merchantRepo  repository.MerchantRepository
	commissionSvc *CommissionService
	pixGen        pix.Generator
	publisher     events.Publisher
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo repository.OrderRepository,
	orderItemRepo repository.OrderItemRepository,
	productRepo repository.ProductRepository,
	merchantRepo repository.MerchantRepository,
	commissionSvc *CommissionService,
	pixGen pix.Generator,
	publisher events.Publisher,
) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		productRepo:   productRepo,
		merchantRepo:  merchantRepo,
		commissionSvc: commissionSvc,
		pixGen:        pixGen,
		publisher:     publisher,
	}
}

// OrderItemInput represents one requested line at checkout
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CheckoutInput represents the create order input
type CheckoutInput struct {
	CustomerID      uuid.UUID
	MerchantID      uuid.UUID
	PaymentMethod   enum.PaymentMethod
	IsDelivery      bool
	DeliveryAddress *string
	Items           []OrderItemInput
}

// Checkout creates an order with immutable line item snapshots. Prices and
// names are copied from the catalog at this moment; later product edits do
// not reach past orders.
func (s *OrderService) Checkout(ctx context.Context, input *CheckoutInput) (*entity.Order, error) {
	if !input.PaymentMethod.Valid() {
		return nil, apperror.NewBadRequestError("Invalid payment method")
	}
	if len(input.Items) == 0 {
		return nil, apperror.NewBadRequestError("Order must contain at least one item")
	}

	merchant, err := s.merchantRepo.GetByID(ctx, input.MerchantID)
	if err != nil {
		return nil, err
	}
	if merchant == nil || !merchant.Active {
		return nil, apperror.NewNotFoundError("Merchant")
	}
	if input.IsDelivery && (input.DeliveryAddress == nil || *input.DeliveryAddress == "") {
		return nil, apperror.NewBadRequestError("Delivery address is required for delivery orders")
	}

	// Batch fetch all products in one query (prevents N+1)
	productIDs := make([]uuid.UUID, len(input.Items))
	for i, item := range input.Items {
		productIDs[i] = item.ProductID
	}
	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	var subTotal int64
	items := make([]entity.OrderItem, 0, len(input.Items))
	for _, line := range input.Items {
		product, exists := productMap[line.ProductID]
		if !exists || product.MerchantID != merchant.ID {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Product %s", line.ProductID))
		}
		if !product.Available {
			return nil, apperror.NewBadRequestError(fmt.Sprintf("Product %s is not available", product.Name))
		}
		if line.Quantity <= 0 {
			return nil, apperror.NewInvalidAmountError("Item quantity must be positive")
		}

		itemTotal := product.Price * int64(line.Quantity)
		subTotal += itemTotal

		productID := product.ID
		items = append(items, entity.OrderItem{
			ProductID: &productID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  line.Quantity,
			SubTotal:  itemTotal,
		})
	}

	order := &entity.Order{
		OrderNumber:     utils.GenerateOrderNumber(time.Now()),
		MerchantID:      merchant.ID,
		CustomerID:      input.CustomerID,
		Status:          enum.OrderStatusPending,
		PaymentMethod:   input.PaymentMethod,
		SubTotal:        subTotal,
		IsDelivery:      input.IsDelivery,
		DeliveryAddress: input.DeliveryAddress,
	}
	if input.IsDelivery {
		order.DeliveryFee = merchant.DeliveryFee
	}
	if order.IsPix() {
		ps := enum.PaymentStatusAwaitingPayment
		order.PaymentStatus = &ps
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	for i := range items {
		items[i].OrderID = order.ID
	}
	if err := s.orderItemRepo.CreateBatch(ctx, items); err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// GetOrder returns an order with its items.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// ListOrders lists orders with the caller's filters already applied.
func (s *OrderService) ListOrders(ctx context.Context, params *repository.OrderFilterParams) ([]entity.Order, int64, error) {
	return s.orderRepo.List(ctx, params)
}

// TransitionInput represents a requested status change
type TransitionInput struct {
	OrderID uuid.UUID
	Target  enum.OrderStatus
	ActorID uuid.UUID
	Role    enum.ActorRole
}

// Transition moves an order along the fulfillment state machine. The write
// is guarded on the current status, so when two actors race the same edge
// exactly one wins and the other gets an invalid transition error. Reaching
// delivered accrues the merchant's commission for the order's month before
// the change is announced.
func (s *OrderService) Transition(ctx context.Context, input *TransitionInput) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}

	if !input.Target.Valid() {
		return nil, apperror.NewBadRequestError("Unknown order status")
	}
	if !order.Status.CanTransitionTo(input.Target) {
		return nil, apperror.NewInvalidTransitionError(
			fmt.Sprintf("Cannot move order from %s to %s", order.Status, input.Target))
	}
	if err := s.authorizeTransition(order, input); err != nil {
		return nil, err
	}

	won, err := s.orderRepo.UpdateStatusFrom(ctx, order.ID, order.Status, input.Target)
	if err != nil {
		return nil, err
	}
	if !won {
		// Lost the race: someone else moved the order first.
		return nil, apperror.NewInvalidTransitionError(
			fmt.Sprintf("Order is no longer in %s", order.Status))
	}

	previous := order.Status
	order.Status = input.Target

	if input.Target == enum.OrderStatusDelivered {
		// Accrual is part of delivery, not an eventual follow-up.
		if _, err := s.commissionSvc.AccrueOrder(ctx, order); err != nil {
			return nil, err
		}
		s.publisher.Publish(events.OrderDelivered, map[string]any{
			"order_id":    order.ID.String(),
			"merchant_id": order.MerchantID.String(),
			"period":      order.Period(),
		})
	}

	s.publisher.Publish(events.OrderStatusChanged, map[string]any{
		"order_id": order.ID.String(),
		"from":     previous.String(),
		"to":       input.Target.String(),
	})

	return order, nil
}

// Cancel is the customer-facing shortcut for the cancelled edge.
func (s *OrderService) Cancel(ctx context.Context, orderID, customerID uuid.UUID) (*entity.Order, error) {
	return s.Transition(ctx, &TransitionInput{
		OrderID: orderID,
		Target:  enum.OrderStatusCancelled,
		ActorID: customerID,
		Role:    enum.ActorRoleCustomer,
	})
}

// authorizeTransition applies the role gate: customers may only cancel, and
// only while the merchant has not started fulfilling; merchants drive every
// other edge; admins are unrestricted.
func (s *OrderService) authorizeTransition(order *entity.Order, input *TransitionInput) error {
	switch input.Role {
	case enum.ActorRoleAdmin:
		return nil
	case enum.ActorRoleMerchant:
		// ActorID carries the merchant ID for merchant callers.
		if order.MerchantID != input.ActorID {
			return apperror.ErrForbidden
		}
		return nil
	case enum.ActorRoleCustomer:
		if order.CustomerID != input.ActorID {
			return apperror.ErrForbidden
		}
		if input.Target != enum.OrderStatusCancelled {
			return apperror.ErrForbidden
		}
		return nil
	default:
		return apperror.ErrForbidden
	}
}

// PixInstruction renders the copy-paste payment string for a pix order.
func (s *OrderService) PixInstruction(ctx context.Context, orderID uuid.UUID) (string, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order == nil {
		return "", apperror.NewNotFoundError("Order")
	}
	if !order.IsPix() {
		return "", apperror.NewBadRequestError("Order is not a pix order")
	}

	merchant, err := s.merchantRepo.GetByID(ctx, order.MerchantID)
	if err != nil {
		return "", err
	}
	if merchant == nil {
		return "", apperror.NewNotFoundError("Merchant")
	}

	return s.pixGen.Generate(pix.Instruction{
		PayeeKey:     merchant.PixKey,
		PayeeKeyType: merchant.PixKeyType,
		PayeeName:    merchant.Name,
		PayeeCity:    merchant.City,
		AmountCents:  order.Total,
		Description:  order.OrderNumber,
	})
}

// AdvancePaymentStatus moves the pix payment sub-state with the same
// guarded-write discipline as the main status. The sub-state is advisory
// and never gates fulfillment.
func (s *OrderService) AdvancePaymentStatus(ctx context.Context, orderID uuid.UUID, target enum.PaymentStatus) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	if !order.IsPix() || order.PaymentStatus == nil {
		return nil, apperror.NewBadRequestError("Order has no payment status")
	}
	if !order.PaymentStatus.CanTransitionTo(target) {
		return nil, apperror.NewInvalidTransitionError(
			fmt.Sprintf("Cannot move payment from %s to %s", *order.PaymentStatus, target))
	}

	won, err := s.orderRepo.UpdatePaymentStatusFrom(ctx, order.ID, *order.PaymentStatus, target)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, apperror.NewInvalidTransitionError(
			fmt.Sprintf("Payment is no longer in %s", *order.PaymentStatus))
	}

	order.PaymentStatus = &target
	s.publisher.Publish(events.PaymentStatusChanged, map[string]any{
		"order_id": order.ID.String(),
		"to":       target.String(),
	})

	return order, nil
}
