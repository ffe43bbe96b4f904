package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/feirahub/feira-api/internal/application/service"
	"github.com/feirahub/feira-api/internal/presentation/http/dto/request"
	"github.com/feirahub/feira-api/internal/presentation/http/dto/response"
	"github.com/feirahub/feira-api/pkg/pagination"
)

// AdminCommissionHandler handles the admin-facing commission endpoints
type AdminCommissionHandler struct {
	commissionService *service.CommissionService
	reportService     *service.ReportService
}

// NewAdminCommissionHandler creates a new admin commission handler
func NewAdminCommissionHandler(
	commissionService *service.CommissionService,
	reportService *service.ReportService,
) *AdminCommissionHandler {
	return &AdminCommissionHandler{
		commissionService: commissionService,
		reportService:     reportService,
	}
}

// PendingClaims handles listing the review queue, oldest first
func (h *AdminCommissionHandler) PendingClaims(c *gin.Context) {
	params := paginationFromQuery(c)
	claims, total, err := h.commissionService.ListPendingClaims(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	response.SuccessWithPagination(c, 200, "Pending claims retrieved successfully",
		pagination.NewPaginatedResult(claims, pag))
}

// ResolveClaim handles the admin decision on a claim
func (h *AdminCommissionHandler) ResolveClaim(c *gin.Context) {
	adminID := GetUserID(c)
	if adminID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	claimID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid claim ID")
		return
	}

	var req request.ResolveClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	claim, err := h.commissionService.ResolveClaim(c.Request.Context(), &service.ResolveClaimInput{
		ClaimID: claimID,
		AdminID: *adminID,
		Approve: req.Decision == "confirm",
		Reason:  req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Claim resolved successfully", claim)
}

// RegisterPayment handles a direct settlement entry
func (h *AdminCommissionHandler) RegisterPayment(c *gin.Context) {
	adminID := GetUserID(c)
	if adminID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.RegisterPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	payment, err := h.commissionService.RegisterPayment(c.Request.Context(), &service.RegisterPaymentInput{
		MerchantID: req.MerchantID,
		Amount:     req.Amount,
		Note:       req.Note,
		ReceiptURL: req.ReceiptURL,
		AdminID:    *adminID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Payment registered successfully", payment)
}

// Accrue handles a manual accrual trigger for a period
func (h *AdminCommissionHandler) Accrue(c *gin.Context) {
	var req request.AccrueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if req.MerchantID != nil {
		period, err := h.commissionService.AccrueMerchantPeriod(c.Request.Context(), *req.MerchantID, req.Period)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, "Commission accrued successfully", period)
		return
	}

	count, err := h.commissionService.AccrueAll(c.Request.Context(), req.Period)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Commission accrued successfully", gin.H{"merchants_accrued": count})
}

// MerchantBalance handles retrieving any merchant's balance
func (h *AdminCommissionHandler) MerchantBalance(c *gin.Context) {
	merchantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid merchant ID")
		return
	}

	balance, err := h.commissionService.GetBalance(c.Request.Context(), merchantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Balance retrieved successfully", balance)
}

// MerchantPayments handles listing any merchant's settlement ledger
func (h *AdminCommissionHandler) MerchantPayments(c *gin.Context) {
	merchantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid merchant ID")
		return
	}

	params := paginationFromQuery(c)
	payments, total, err := h.commissionService.ListMerchantPayments(c.Request.Context(), merchantID, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	response.SuccessWithPagination(c, 200, "Payments retrieved successfully",
		pagination.NewPaginatedResult(payments, pag))
}

// MerchantStatement handles the per-merchant monthly statement
func (h *AdminCommissionHandler) MerchantStatement(c *gin.Context) {
	merchantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid merchant ID")
		return
	}

	period := c.Query("period")
	statement, err := h.reportService.MerchantStatement(c.Request.Context(), merchantID, period)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Statement retrieved successfully", statement)
}

// Overview handles the cross-merchant rollup for a period
func (h *AdminCommissionHandler) Overview(c *gin.Context) {
	overview, err := h.reportService.Overview(c.Request.Context(), c.Query("period"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Overview retrieved successfully", overview)
}

// TopMerchants handles the delivered-sales ranking for a period
func (h *AdminCommissionHandler) TopMerchants(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	rows, err := h.reportService.TopMerchants(c.Request.Context(), c.Query("period"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Top merchants retrieved successfully", rows)
}

// Export handles downloading the reconciliation workbook
func (h *AdminCommissionHandler) Export(c *gin.Context) {
	period := c.Query("period")
	data, err := h.reportService.ExportReconciliation(c.Request.Context(), period)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("reconciliation-%s.xlsx", period)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
