package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/feirahub/feira-api/internal/application/service"
	"github.com/feirahub/feira-api/internal/domain/entity"
	"github.com/feirahub/feira-api/internal/domain/enum"
	"github.com/feirahub/feira-api/internal/domain/repository"
	"github.com/feirahub/feira-api/internal/presentation/http/dto/request"
	"github.com/feirahub/feira-api/internal/presentation/http/dto/response"
	"github.com/feirahub/feira-api/pkg/pagination"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService    *service.OrderService
	merchantService *service.MerchantService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService, merchantService *service.MerchantService) *OrderHandler {
	return &OrderHandler{
		orderService:    orderService,
		merchantService: merchantService,
	}
}

// Checkout handles order creation
func (h *OrderHandler) Checkout(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	items := make([]service.OrderItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.OrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	order, err := h.orderService.Checkout(c.Request.Context(), &service.CheckoutInput{
		CustomerID:      *userID,
		MerchantID:      req.MerchantID,
		PaymentMethod:   enum.PaymentMethod(req.PaymentMethod),
		IsDelivery:      req.IsDelivery,
		DeliveryAddress: req.DeliveryAddress,
		Items:           items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Order created successfully", order)
}

// List handles listing orders, scoped to what the caller may see
func (h *OrderHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.OrderFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := enum.OrderStatus(statusStr)
		if !status.Valid() {
			response.BadRequest(c, "Unknown order status")
			return
		}
		params.Status = &status
	}

	if methodStr := c.Query("payment_method"); methodStr != "" {
		method := enum.PaymentMethod(methodStr)
		if !method.Valid() {
			response.BadRequest(c, "Unknown payment method")
			return
		}
		params.PaymentMethod = &method
	}

	if startDateStr := c.Query("start_date"); startDateStr != "" {
		if startDate, err := time.Parse("2006-01-02", startDateStr); err == nil {
			params.StartDate = &startDate
		}
	}
	if endDateStr := c.Query("end_date"); endDateStr != "" {
		if endDate, err := time.Parse("2006-01-02", endDateStr); err == nil {
			params.EndDate = &endDate
		}
	}

	// Scope: admins see everything, merchants their storefront, customers
	// their own purchases.
	switch {
	case IsAdmin(c):
		if merchantIDStr := c.Query("merchant_id"); merchantIDStr != "" {
			if merchantID, err := uuid.Parse(merchantIDStr); err == nil {
				params.MerchantID = &merchantID
			}
		}
	case IsMerchant(c):
		merchant, err := h.merchantService.GetMerchantByUserID(c.Request.Context(), *userID)
		if err != nil {
			response.Error(c, err)
			return
		}
		params.MerchantID = &merchant.ID
	default:
		params.CustomerID = userID
	}

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	response.SuccessWithPagination(c, 200, "Orders retrieved successfully", pagination.NewPaginatedResult(orders, pag))
}

// Get handles retrieving a single order
func (h *OrderHandler) Get(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if !h.canAccess(c, *userID, order) {
		response.Forbidden(c, "You do not have access to this order")
		return
	}

	response.OK(c, "Order retrieved successfully", order)
}

// UpdateStatus handles fulfillment status transitions
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	var req request.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	input := &service.TransitionInput{
		OrderID: orderID,
		Target:  enum.OrderStatus(req.Status),
		ActorID: *userID,
		Role:    enum.ActorRoleCustomer,
	}
	switch {
	case IsAdmin(c):
		input.Role = enum.ActorRoleAdmin
	case IsMerchant(c):
		merchant, err := h.merchantService.GetMerchantByUserID(c.Request.Context(), *userID)
		if err != nil {
			response.Error(c, err)
			return
		}
		input.Role = enum.ActorRoleMerchant
		input.ActorID = merchant.ID
	}

	order, err := h.orderService.Transition(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order status updated successfully", order)
}

// Cancel handles customer-initiated cancellation
func (h *OrderHandler) Cancel(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), orderID, *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order cancelled successfully", order)
}

// Pix handles rendering the payment instruction for a pix order
func (h *OrderHandler) Pix(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !h.canAccess(c, *userID, order) {
		response.Forbidden(c, "You do not have access to this order")
		return
	}

	instruction, err := h.orderService.PixInstruction(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Pix instruction generated successfully", gin.H{
		"order_id":    order.ID,
		"instruction": instruction,
	})
}

// ConfirmPayment handles the merchant acknowledging a pix payment
func (h *OrderHandler) ConfirmPayment(c *gin.Context) {
	h.advancePayment(c, enum.PaymentStatusConfirmed)
}

// RejectPayment handles the merchant rejecting a pix payment
func (h *OrderHandler) RejectPayment(c *gin.Context) {
	h.advancePayment(c, enum.PaymentStatusRejected)
}

// MarkPaid handles the customer reporting their pix transfer
func (h *OrderHandler) MarkPaid(c *gin.Context) {
	h.advancePayment(c, enum.PaymentStatusPendingConfirmation)
}

func (h *OrderHandler) advancePayment(c *gin.Context, target enum.PaymentStatus) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !h.canAccess(c, *userID, order) {
		response.Forbidden(c, "You do not have access to this order")
		return
	}

	order, err = h.orderService.AdvancePaymentStatus(c.Request.Context(), orderID, target)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment status updated successfully", order)
}

// canAccess reports whether the caller may see the order: its customer, the
// storefront owner, or an admin.
func (h *OrderHandler) canAccess(c *gin.Context, userID uuid.UUID, order *entity.Order) bool {
	if IsAdmin(c) || order.CustomerID == userID {
		return true
	}
	if IsMerchant(c) {
		merchant, err := h.merchantService.GetMerchantByUserID(c.Request.Context(), userID)
		if err == nil && merchant.ID == order.MerchantID {
			return true
		}
	}
	return false
}
