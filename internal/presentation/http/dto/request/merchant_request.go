package request

// CreateMerchantRequest represents a storefront creation request
type CreateMerchantRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=255"`
	Description *string `json:"description"`
	City        string  `json:"city" binding:"required,max=100"`
	Phone       *string `json:"phone" binding:"omitempty,max=50"`
	PixKey      string  `json:"pix_key" binding:"omitempty,max=255"`
	PixKeyType  string  `json:"pix_key_type" binding:"omitempty,oneof=cpf cnpj email phone random"`
	DeliveryFee string  `json:"delivery_fee"`
}

// UpdateMerchantRequest represents a storefront update request
type UpdateMerchantRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=255"`
	Description *string `json:"description"`
	City        *string `json:"city" binding:"omitempty,max=100"`
	Phone       *string `json:"phone" binding:"omitempty,max=50"`
	PixKey      *string `json:"pix_key" binding:"omitempty,max=255"`
	PixKeyType  *string `json:"pix_key_type" binding:"omitempty,oneof=cpf cnpj email phone random"`
	DeliveryFee *string `json:"delivery_fee"`
	Active      *bool   `json:"active"`
}

// MerchantFilterRequest represents merchant filter parameters
type MerchantFilterRequest struct {
	Search  string `form:"search"`
	City    string `form:"city"`
	Active  bool   `form:"active"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
