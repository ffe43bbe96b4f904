package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/feirahub/feira-api/internal/application/service"
	"github.com/feirahub/feira-api/internal/domain/entity"
	"github.com/feirahub/feira-api/internal/domain/repository"
	"github.com/feirahub/feira-api/internal/presentation/http/dto/request"
	"github.com/feirahub/feira-api/internal/presentation/http/dto/response"
	"github.com/feirahub/feira-api/pkg/pagination"
	"github.com/feirahub/feira-api/pkg/pix"
)

// MerchantHandler handles merchant storefront HTTP requests
type MerchantHandler struct {
	merchantService *service.MerchantService
	authService     *service.AuthService
}

// NewMerchantHandler creates a new merchant handler
func NewMerchantHandler(merchantService *service.MerchantService, authService *service.AuthService) *MerchantHandler {
	return &MerchantHandler{
		merchantService: merchantService,
		authService:     authService,
	}
}

// Create handles opening a storefront for the authenticated user
func (h *MerchantHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	merchant, err := h.merchantService.CreateMerchant(c.Request.Context(), &service.CreateMerchantInput{
		UserID:      *userID,
		Name:        req.Name,
		Description: req.Description,
		City:        req.City,
		Phone:       req.Phone,
		PixKey:      req.PixKey,
		PixKeyType:  pix.KeyType(req.PixKeyType),
		DeliveryFee: req.DeliveryFee,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// Opening a storefront grants the merchant role.
	if err := h.authService.BecomeMerchant(c.Request.Context(), *userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Storefront created successfully", merchant)
}

// List handles the public storefront directory
func (h *MerchantHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.MerchantFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
		Search:     c.Query("search"),
		City:       c.Query("city"),
		OnlyActive: !IsAdmin(c),
	}

	merchants, total, err := h.merchantService.ListMerchants(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	response.SuccessWithPagination(c, 200, "Merchants retrieved successfully",
		pagination.NewPaginatedResult(merchants, pag))
}

// Get handles retrieving one storefront by slug
func (h *MerchantHandler) Get(c *gin.Context) {
	merchant, err := h.merchantService.GetMerchantBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Merchant retrieved successfully", merchant)
}

// Me handles retrieving the caller's own storefront
func (h *MerchantHandler) Me(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	merchant, err := h.merchantService.GetMerchantByUserID(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Merchant retrieved successfully", merchant)
}

// Update handles editing the caller's storefront
func (h *MerchantHandler) Update(c *gin.Context) {
	merchant, ok := h.ownedMerchant(c)
	if !ok {
		return
	}

	var req request.UpdateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	input := &service.UpdateMerchantInput{
		Name:        req.Name,
		Description: req.Description,
		City:        req.City,
		Phone:       req.Phone,
		PixKey:      req.PixKey,
		DeliveryFee: req.DeliveryFee,
		Active:      req.Active,
	}
	if req.PixKeyType != nil {
		keyType := pix.KeyType(*req.PixKeyType)
		input.PixKeyType = &keyType
	}

	updated, err := h.merchantService.UpdateMerchant(c.Request.Context(), merchant.ID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Merchant updated successfully", updated)
}

// UploadLogo handles the storefront logo upload
func (h *MerchantHandler) UploadLogo(c *gin.Context) {
	merchant, ok := h.ownedMerchant(c)
	if !ok {
		return
	}

	file, err := c.FormFile("logo")
	if err != nil {
		response.BadRequest(c, "Logo file is required")
		return
	}

	updated, err := h.merchantService.UploadLogo(c.Request.Context(), merchant.ID, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Logo uploaded successfully", updated)
}

// Deactivate handles hiding a storefront (admin only)
func (h *MerchantHandler) Deactivate(c *gin.Context) {
	merchantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid merchant ID")
		return
	}

	if err := h.merchantService.DeactivateMerchant(c.Request.Context(), merchantID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Merchant deactivated successfully", nil)
}

func (h *MerchantHandler) ownedMerchant(c *gin.Context) (*entity.Merchant, bool) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return nil, false
	}

	merchant, err := h.merchantService.GetMerchantByUserID(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return merchant, true
}
