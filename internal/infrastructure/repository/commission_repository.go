package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feirahub/feira-api/internal/domain/entity"
	"github.com/feirahub/feira-api/internal/domain/enum"
	domainRepo "github.com/feirahub/feira-api/internal/domain/repository"
	"github.com/feirahub/feira-api/pkg/pagination"
)

type commissionPeriodRepository struct {
	db *gorm.DB
}

// NewCommissionPeriodRepository creates a new commission period repository
func NewCommissionPeriodRepository(db *gorm.DB) domainRepo.CommissionPeriodRepository {
	return &commissionPeriodRepository{db: db}
}

func (r *commissionPeriodRepository) Upsert(ctx context.Context, period *entity.CommissionPeriod) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "merchant_id"}, {Name: "period"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_sales", "commission_amount", "delivered_orders", "status", "updated_at",
		}),
	}).Create(period).Error
}

func (r *commissionPeriodRepository) GetByMerchantPeriod(ctx context.Context, merchantID uuid.UUID, period string) (*entity.CommissionPeriod, error) {
	var cp entity.CommissionPeriod
	err := r.db.WithContext(ctx).
		First(&cp, "merchant_id = ? AND period = ?", merchantID, period).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &cp, err
}

func (r *commissionPeriodRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, params *pagination.PaginationParams) ([]entity.CommissionPeriod, int64, error) {
	var periods []entity.CommissionPeriod
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.CommissionPeriod{}).
		Where("merchant_id = ?", merchantID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("period DESC").
		Find(&periods).Error

	return periods, total, err
}

func (r *commissionPeriodRepository) ListByPeriod(ctx context.Context, period string) ([]entity.CommissionPeriod, error) {
	var periods []entity.CommissionPeriod
	err := r.db.WithContext(ctx).
		Where("period = ?", period).
		Order("total_sales DESC").
		Find(&periods).Error
	return periods, err
}

func (r *commissionPeriodRepository) SumCommission(ctx context.Context, merchantID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&entity.CommissionPeriod{}).
		Where("merchant_id = ?", merchantID).
		Select("COALESCE(SUM(commission_amount), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *commissionPeriodRepository) UpdateDisplayStatus(ctx context.Context, merchantID uuid.UUID, status enum.CommissionStatus) error {
	return r.db.WithContext(ctx).Model(&entity.CommissionPeriod{}).
		Where("merchant_id = ?", merchantID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) domainRepo.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	var payment entity.Payment
	err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &payment, err
}

func (r *paymentRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, params *pagination.PaginationParams) ([]entity.Payment, int64, error) {
	var payments []entity.Payment
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Payment{}).
		Where("merchant_id = ?", merchantID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("created_at DESC").
		Find(&payments).Error

	return payments, total, err
}

// ListWithCursor pages the ledger by (created_at, id) keyset.
// Fetches limit+1 items to detect if there are more results.
func (r *paymentRepository) ListWithCursor(ctx context.Context, merchantID uuid.UUID, params *pagination.CursorParams) ([]entity.Payment, error) {
	var payments []entity.Payment

	params.Validate()
	query := r.db.WithContext(ctx).Model(&entity.Payment{}).
		Where("merchant_id = ?", merchantID)

	cursor, err := params.DecodeCursor()
	if err != nil {
		return nil, err
	}

	if cursor != nil {
		if params.Direction == pagination.CursorDirectionNext {
			query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
		} else {
			query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
		}
	}

	err = query.Limit(params.Limit + 1).
		Order("created_at ASC, id ASC").
		Find(&payments).Error

	return payments, err
}

func (r *paymentRepository) SumPayments(ctx context.Context, merchantID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&entity.Payment{}).
		Where("merchant_id = ?", merchantID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *paymentRepository) SumPaymentsBetween(ctx context.Context, merchantID uuid.UUID, start, end time.Time) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&entity.Payment{}).
		Where("merchant_id = ? AND created_at >= ? AND created_at < ?", merchantID, start, end).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}

type receiptClaimRepository struct {
	db *gorm.DB
}

// NewReceiptClaimRepository creates a new receipt claim repository
func NewReceiptClaimRepository(db *gorm.DB) domainRepo.ReceiptClaimRepository {
	return &receiptClaimRepository{db: db}
}

func (r *receiptClaimRepository) Create(ctx context.Context, claim *entity.ReceiptClaim) error {
	return r.db.WithContext(ctx).Create(claim).Error
}

func (r *receiptClaimRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ReceiptClaim, error) {
	var claim entity.ReceiptClaim
	err := r.db.WithContext(ctx).First(&claim, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &claim, err
}

func (r *receiptClaimRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, params *pagination.PaginationParams) ([]entity.ReceiptClaim, int64, error) {
	var claims []entity.ReceiptClaim
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ReceiptClaim{}).
		Where("merchant_id = ?", merchantID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("created_at DESC").
		Find(&claims).Error

	return claims, total, err
}

func (r *receiptClaimRepository) ListByStatus(ctx context.Context, status enum.ClaimStatus, params *pagination.PaginationParams) ([]entity.ReceiptClaim, int64, error) {
	var claims []entity.ReceiptClaim
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ReceiptClaim{}).
		Where("status = ?", status)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("created_at ASC").
		Find(&claims).Error

	return claims, total, err
}

func (r *receiptClaimRepository) CountByMerchantStatus(ctx context.Context, merchantID uuid.UUID, status enum.ClaimStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.ReceiptClaim{}).
		Where("merchant_id = ? AND status = ?", merchantID, status).
		Count(&count).Error
	return count, err
}

func (r *receiptClaimRepository) Reject(ctx context.Context, claimID, adminID uuid.UUID, reason string) (bool, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&entity.ReceiptClaim{}).
		Where("id = ? AND status = ?", claimID, enum.ClaimStatusPending).
		Updates(map[string]interface{}{
			"status":      enum.ClaimStatusRejected,
			"reason":      reason,
			"resolved_by": adminID,
			"resolved_at": now,
			"updated_at":  now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ConfirmWithPayment flips the claim and appends the payment inside one
// transaction. The status guard on the UPDATE makes double resolution a
// no-op that rolls back before the payment insert.
func (r *receiptClaimRepository) ConfirmWithPayment(ctx context.Context, claimID uuid.UUID, payment *entity.Payment) (bool, error) {
	confirmed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&entity.ReceiptClaim{}).
			Where("id = ? AND status = ?", claimID, enum.ClaimStatusPending).
			Updates(map[string]interface{}{
				"status":      enum.ClaimStatusConfirmed,
				"resolved_by": payment.ConfirmedBy,
				"resolved_at": now,
				"updated_at":  now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		confirmed = true
		return nil
	})
	return confirmed, err
}
