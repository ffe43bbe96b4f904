package request

import "github.com/google/uuid"

// RegisterPaymentRequest represents a direct admin settlement entry. Amount
// is a decimal string, validated server-side to two fraction digits.
type RegisterPaymentRequest struct {
	MerchantID uuid.UUID `json:"merchant_id" binding:"required"`
	Amount     string    `json:"amount" binding:"required"`
	Note       *string   `json:"note"`
	ReceiptURL *string   `json:"receipt_url"`
}

// SubmitClaimRequest represents a merchant proof-of-payment submission.
// Sent as a multipart form together with the receipt file; the amount is
// optional and defaults to the current balance.
type SubmitClaimRequest struct {
	Amount string `form:"amount"`
	Period string `form:"period" binding:"omitempty,len=7"`
}

// ResolveClaimRequest represents an admin decision on a receipt claim
type ResolveClaimRequest struct {
	Decision string `json:"decision" binding:"required,oneof=confirm reject"`
	Reason   string `json:"reason"`
}

// AccrueRequest represents a manual accrual trigger
type AccrueRequest struct {
	Period     string     `json:"period" binding:"required,len=7"`
	MerchantID *uuid.UUID `json:"merchant_id"`
}
