package request

import "github.com/google/uuid"

// CheckoutItemRequest represents one requested line at checkout
type CheckoutItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// CheckoutRequest represents an order creation request
type CheckoutRequest struct {
	MerchantID      uuid.UUID             `json:"merchant_id" binding:"required"`
	PaymentMethod   string                `json:"payment_method" binding:"required,oneof=pix cash debit credit"`
	IsDelivery      bool                  `json:"is_delivery"`
	DeliveryAddress *string               `json:"delivery_address"`
	Items           []CheckoutItemRequest `json:"items" binding:"required,min=1,dive"`
}

// TransitionRequest represents an order status change request
type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderFilterRequest represents order filter parameters
type OrderFilterRequest struct {
	Status        string `form:"status"`
	PaymentMethod string `form:"payment_method"`
	MerchantID    string `form:"merchant_id"`
	Search        string `form:"search"`
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
	SortBy        string `form:"sort_by"`
	SortOrder     string `form:"sort_order"`
	Page          int    `form:"page"`
	PerPage       int    `form:"per_page"`
}
