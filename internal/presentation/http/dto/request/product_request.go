package request

import "github.com/google/uuid"

// CreateProductRequest represents a product creation request. Price is a
// decimal string to keep client-side float rounding out of the money path.
type CreateProductRequest struct {
	CategoryID  *uuid.UUID `json:"category_id"`
	Name        string     `json:"name" binding:"required,min=2,max=255"`
	Description *string    `json:"description"`
	Price       string     `json:"price" binding:"required"`
	Available   *bool      `json:"available"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	CategoryID  *uuid.UUID `json:"category_id"`
	Name        *string    `json:"name" binding:"omitempty,min=2,max=255"`
	Description *string    `json:"description"`
	Price       *string    `json:"price"`
	Available   *bool      `json:"available"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search     string `form:"search"`
	MerchantID string `form:"merchant_id"`
	CategoryID string `form:"category_id"`
	Available  bool   `form:"available"`
	SortBy     string `form:"sort_by"`
	SortOrder  string `form:"sort_order"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}

// CreateCategoryRequest represents a category creation request
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=2,max=255"`
}
