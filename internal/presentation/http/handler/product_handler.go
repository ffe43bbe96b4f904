package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/feirahub/feira-api/internal/application/service"
	"github.com/feirahub/feira-api/internal/domain/repository"
	"github.com/feirahub/feira-api/internal/presentation/http/dto/request"
	"github.com/feirahub/feira-api/internal/presentation/http/dto/response"
	"github.com/feirahub/feira-api/pkg/pagination"
)

// ProductHandler handles catalog HTTP requests
type ProductHandler struct {
	productService  *service.ProductService
	merchantService *service.MerchantService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService, merchantService *service.MerchantService) *ProductHandler {
	return &ProductHandler{
		productService:  productService,
		merchantService: merchantService,
	}
}

// Create handles product creation on the caller's storefront
func (h *ProductHandler) Create(c *gin.Context) {
	merchantID, ok := h.callerMerchantID(c)
	if !ok {
		return
	}

	var req request.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &service.CreateProductInput{
		MerchantID:  merchantID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Available:   available,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Product created successfully", product)
}

// List handles the public catalog listing
func (h *ProductHandler) List(c *gin.Context) {
	var req request.ProductFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PerPage == 0 {
		req.PerPage = 15
	}

	params := &repository.ProductFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    req.Page,
			PerPage: req.PerPage,
		},
		Search:        req.Search,
		OnlyAvailable: req.Available,
		SortBy:        req.SortBy,
		SortOrder:     req.SortOrder,
	}
	if req.MerchantID != "" {
		if merchantID, err := uuid.Parse(req.MerchantID); err == nil {
			params.MerchantID = &merchantID
		}
	}
	if req.CategoryID != "" {
		if categoryID, err := uuid.Parse(req.CategoryID); err == nil {
			params.CategoryID = &categoryID
		}
	}

	result, err := h.productService.ListProducts(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Products retrieved successfully", result)
}

// Get handles retrieving one product by slug
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", product)
}

// Update handles product edits
func (h *ProductHandler) Update(c *gin.Context) {
	merchantID, ok := h.callerMerchantID(c)
	if !ok {
		return
	}

	var req request.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), &service.UpdateProductInput{
		MerchantID:  merchantID,
		ProductSlug: c.Param("slug"),
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Available:   req.Available,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product updated successfully", product)
}

// Delete handles removing a product from the storefront
func (h *ProductHandler) Delete(c *gin.Context) {
	merchantID, ok := h.callerMerchantID(c)
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), merchantID, c.Param("slug")); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product deleted successfully", nil)
}

// UploadImage handles the product image upload
func (h *ProductHandler) UploadImage(c *gin.Context) {
	merchantID, ok := h.callerMerchantID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "Image file is required")
		return
	}

	product, err := h.productService.UploadImage(c.Request.Context(), merchantID, c.Param("slug"), file)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Image uploaded successfully", product)
}

func (h *ProductHandler) callerMerchantID(c *gin.Context) (uuid.UUID, bool) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return uuid.Nil, false
	}

	merchant, err := h.merchantService.GetMerchantByUserID(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return uuid.Nil, false
	}
	return merchant.ID, true
}

// CategoryHandler handles category HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// Create handles category creation (admin only)
func (h *CategoryHandler) Create(c *gin.Context) {
	var req request.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Category created successfully", category)
}

// List handles listing all categories
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categoryService.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Categories retrieved successfully", categories)
}

// Update handles renaming a category (admin only)
func (h *CategoryHandler) Update(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid category ID")
		return
	}

	var req request.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), categoryID, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Category updated successfully", category)
}

// Delete handles removing a category (admin only)
func (h *CategoryHandler) Delete(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid category ID")
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), categoryID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Category deleted successfully", nil)
}
