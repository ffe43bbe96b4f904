package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/feirahub/feira-api/internal/domain/entity"
	"github.com/feirahub/feira-api/internal/domain/enum"
	"github.com/feirahub/feira-api/internal/domain/repository"
	"github.com/feirahub/feira-api/pkg/apperror"
	"github.com/feirahub/feira-api/pkg/money"
)

// ReportService produces reconciliation views. Everything here is read-only
// and derived on demand; the report layer echoes the balance engine's
// figures and never computes money rules of its own.
type ReportService struct {
	reportRepo    repository.ReportRepository
	merchantRepo  repository.MerchantRepository
	periodRepo    repository.CommissionPeriodRepository
	paymentRepo   repository.PaymentRepository
	claimRepo     repository.ReceiptClaimRepository
	commissionSvc *CommissionService
}

// NewReportService creates a new report service
func NewReportService(
	reportRepo repository.ReportRepository,
	merchantRepo repository.MerchantRepository,
	periodRepo repository.CommissionPeriodRepository,
	paymentRepo repository.PaymentRepository,
	claimRepo repository.ReceiptClaimRepository,
	commissionSvc *CommissionService,
) *ReportService {
	return &ReportService{
		reportRepo:    reportRepo,
		merchantRepo:  merchantRepo,
		periodRepo:    periodRepo,
		paymentRepo:   paymentRepo,
		claimRepo:     claimRepo,
		commissionSvc: commissionSvc,
	}
}

// MerchantStatement is one merchant's month at a glance
type MerchantStatement struct {
	MerchantID     uuid.UUID       `json:"merchant_id"`
	MerchantName   string          `json:"merchant_name"`
	Period         string          `json:"period"`
	OrderCount     int64           `json:"order_count"`
	DeliveredCount int64           `json:"delivered_count"`
	TotalSales     float64         `json:"total_sales"`
	Commission     float64         `json:"commission"`
	PaidInPeriod   float64         `json:"paid_in_period"`
	PendingClaims  int64           `json:"pending_claims"`
	Balance        *entity.Balance `json:"balance"`
}

// MerchantStatement builds the per-merchant monthly statement.
func (s *ReportService) MerchantStatement(ctx context.Context, merchantID uuid.UUID, period string) (*MerchantStatement, error) {
	start, end, err := entity.ParsePeriod(period)
	if err != nil {
		return nil, apperror.NewBadRequestError("Invalid period, expected YYYY-MM")
	}

	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, apperror.NewNotFoundError("Merchant")
	}

	rows, err := s.reportRepo.MonthlyBreakdown(ctx, start, end)
	if err != nil {
		return nil, err
	}

	statement := &MerchantStatement{
		MerchantID:   merchant.ID,
		MerchantName: merchant.Name,
		Period:       period,
	}
	for _, row := range rows {
		if row.MerchantID == merchantID {
			statement.OrderCount = row.OrderCount
			statement.DeliveredCount = row.DeliveredCount
			statement.TotalSales = money.Float(row.SalesCents)
			statement.PaidInPeriod = money.Float(row.PaidCents)
			break
		}
	}

	cp, err := s.periodRepo.GetByMerchantPeriod(ctx, merchantID, period)
	if err != nil {
		return nil, err
	}
	if cp != nil {
		statement.Commission = money.Float(cp.CommissionAmount)
	}

	statement.PendingClaims, err = s.claimRepo.CountByMerchantStatus(ctx, merchantID, enum.ClaimStatusPending)
	if err != nil {
		return nil, err
	}

	statement.Balance, err = s.commissionSvc.GetBalance(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	return statement, nil
}

// Overview is the admin rollup across all merchants for one period
type Overview struct {
	Period               string  `json:"period"`
	Merchants            int     `json:"merchants"`
	TotalSales           float64 `json:"total_sales"`
	TotalCommission      float64 `json:"total_commission"`
	PendingCount         int     `json:"pending_count"`
	AwaitingConfirmation int     `json:"awaiting_confirmation_count"`
	PaidCount            int     `json:"paid_count"`
	OutstandingBalance   float64 `json:"outstanding_balance"`
}

// Overview buckets every accrued merchant of the period by its live
// position: paid when the balance is settled, awaiting confirmation when a
// claim is in the queue, pending otherwise. The buckets are recomputed on
// each call, never stored.
func (s *ReportService) Overview(ctx context.Context, period string) (*Overview, error) {
	if _, _, err := entity.ParsePeriod(period); err != nil {
		return nil, apperror.NewBadRequestError("Invalid period, expected YYYY-MM")
	}

	periods, err := s.periodRepo.ListByPeriod(ctx, period)
	if err != nil {
		return nil, err
	}

	overview := &Overview{Period: period, Merchants: len(periods)}
	var sales, commission, outstanding int64
	for _, cp := range periods {
		sales += cp.TotalSales
		commission += cp.CommissionAmount

		balance, err := s.commissionSvc.GetBalance(ctx, cp.MerchantID)
		if err != nil {
			return nil, err
		}
		outstanding += balance.CurrentBalance

		switch {
		case balance.CurrentBalance == 0:
			overview.PaidCount++
		default:
			pending, err := s.claimRepo.CountByMerchantStatus(ctx, cp.MerchantID, enum.ClaimStatusPending)
			if err != nil {
				return nil, err
			}
			if pending > 0 {
				overview.AwaitingConfirmation++
			} else {
				overview.PendingCount++
			}
		}
	}

	overview.TotalSales = money.Float(sales)
	overview.TotalCommission = money.Float(commission)
	overview.OutstandingBalance = money.Float(outstanding)
	return overview, nil
}

// TopMerchants ranks merchants by delivered sales for a period.
func (s *ReportService) TopMerchants(ctx context.Context, period string, limit int) ([]repository.TopMerchantRow, error) {
	start, end, err := entity.ParsePeriod(period)
	if err != nil {
		return nil, apperror.NewBadRequestError("Invalid period, expected YYYY-MM")
	}
	return s.reportRepo.TopMerchants(ctx, start, end, limit)
}

// ExportReconciliation writes the period's reconciliation sheet as an xlsx
// workbook. The export echoes stored and derived figures verbatim.
func (s *ReportService) ExportReconciliation(ctx context.Context, period string) ([]byte, error) {
	start, end, err := entity.ParsePeriod(period)
	if err != nil {
		return nil, apperror.NewBadRequestError("Invalid period, expected YYYY-MM")
	}

	rows, err := s.reportRepo.MonthlyBreakdown(ctx, start, end)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Reconciliation"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Merchant", "Orders", "Delivered", "Sales", "Commission", "Paid", "Balance", "Credit"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		cp, err := s.periodRepo.GetByMerchantPeriod(ctx, row.MerchantID, period)
		if err != nil {
			return nil, err
		}
		var commissionCents int64
		if cp != nil {
			commissionCents = cp.CommissionAmount
		}

		balance, err := s.commissionSvc.GetBalance(ctx, row.MerchantID)
		if err != nil {
			return nil, err
		}

		r := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", r), row.MerchantName)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", r), row.OrderCount)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", r), row.DeliveredCount)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", r), money.Float(row.SalesCents))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", r), money.Float(commissionCents))
		f.SetCellValue(sheet, fmt.Sprintf("F%d", r), money.Float(row.PaidCents))
		f.SetCellValue(sheet, fmt.Sprintf("G%d", r), money.Float(balance.CurrentBalance))
		f.SetCellValue(sheet, fmt.Sprintf("H%d", r), money.Float(balance.Credit))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
