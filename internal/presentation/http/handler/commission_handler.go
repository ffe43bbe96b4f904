package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/feirahub/feira-api/internal/application/service"
	"github.com/feirahub/feira-api/internal/domain/entity"
	"github.com/feirahub/feira-api/internal/presentation/http/dto/request"
	"github.com/feirahub/feira-api/internal/presentation/http/dto/response"
	"github.com/feirahub/feira-api/pkg/pagination"
	"github.com/feirahub/feira-api/pkg/storage"
)

// CommissionHandler handles the merchant-facing commission endpoints
type CommissionHandler struct {
	commissionService *service.CommissionService
	merchantService   *service.MerchantService
	uploader          storage.Uploader
}

// NewCommissionHandler creates a new commission handler
func NewCommissionHandler(
	commissionService *service.CommissionService,
	merchantService *service.MerchantService,
	uploader storage.Uploader,
) *CommissionHandler {
	return &CommissionHandler{
		commissionService: commissionService,
		merchantService:   merchantService,
		uploader:          uploader,
	}
}

// Balance handles retrieving the caller's derived balance
func (h *CommissionHandler) Balance(c *gin.Context) {
	merchant, ok := h.callerMerchant(c)
	if !ok {
		return
	}

	balance, err := h.commissionService.GetBalance(c.Request.Context(), merchant.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Balance retrieved successfully", balance)
}

// Periods handles listing the caller's accrued commission periods
func (h *CommissionHandler) Periods(c *gin.Context) {
	merchant, ok := h.callerMerchant(c)
	if !ok {
		return
	}

	params := paginationFromQuery(c)
	periods, total, err := h.commissionService.ListMerchantPeriods(c.Request.Context(), merchant.ID, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	response.SuccessWithPagination(c, 200, "Commission periods retrieved successfully",
		pagination.NewPaginatedResult(periods, pag))
}

// Payments handles listing the caller's settlement ledger
func (h *CommissionHandler) Payments(c *gin.Context) {
	merchant, ok := h.callerMerchant(c)
	if !ok {
		return
	}

	params := pagination.DefaultCursorParams()
	if err := c.ShouldBindQuery(params); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	payments, pag, err := h.commissionService.LedgerPayments(c.Request.Context(), merchant.ID, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, 200, "Payments retrieved successfully",
		pagination.NewCursorPaginatedResult(payments, pag))
}

// SubmitClaim handles filing a proof-of-payment claim with its receipt file
func (h *CommissionHandler) SubmitClaim(c *gin.Context) {
	merchant, ok := h.callerMerchant(c)
	if !ok {
		return
	}

	var req request.SubmitClaimRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	file, err := c.FormFile("receipt")
	if err != nil {
		response.BadRequest(c, "Receipt file is required")
		return
	}

	receiptURL, err := h.uploader.Upload("receipts", file)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	claim, err := h.commissionService.SubmitClaim(c.Request.Context(), &service.SubmitClaimInput{
		MerchantID:    merchant.ID,
		ReceiptURL:    receiptURL,
		ClaimedAmount: req.Amount,
		Period:        req.Period,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Claim submitted successfully", claim)
}

// Claims handles listing the caller's claims
func (h *CommissionHandler) Claims(c *gin.Context) {
	merchant, ok := h.callerMerchant(c)
	if !ok {
		return
	}

	params := paginationFromQuery(c)
	claims, total, err := h.commissionService.ListMerchantClaims(c.Request.Context(), merchant.ID, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	response.SuccessWithPagination(c, 200, "Claims retrieved successfully",
		pagination.NewPaginatedResult(claims, pag))
}

func (h *CommissionHandler) callerMerchant(c *gin.Context) (*entity.Merchant, bool) {
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

func paginationFromQuery(c *gin.Context) *pagination.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	return &pagination.PaginationParams{Page: page, PerPage: perPage}
}
