package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/feirahub/feira-api/internal/domain/enum"
	domainRepo "github.com/feirahub/feira-api/internal/domain/repository"
)

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) domainRepo.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) MonthlyBreakdown(ctx context.Context, start, end time.Time) ([]domainRepo.MerchantMonthlyRow, error) {
	var rows []domainRepo.MerchantMonthlyRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			m.id AS merchant_id,
			m.name AS merchant_name,
			COUNT(o.id) AS order_count,
			COUNT(o.id) FILTER (WHERE o.status = ?) AS delivered_count,
			COALESCE(SUM(o.total) FILTER (WHERE o.status = ?), 0) AS sales_cents,
			COALESCE((
				SELECT SUM(p.amount)
				FROM payments p
				WHERE p.merchant_id = m.id
				  AND p.created_at >= ? AND p.created_at < ?
			), 0) AS paid_cents
		FROM merchants m
		LEFT JOIN orders o
			ON o.merchant_id = m.id
			AND o.created_at >= ? AND o.created_at < ?
		WHERE m.deleted_at IS NULL
		GROUP BY m.id, m.name
		ORDER BY sales_cents DESC
	`, enum.OrderStatusDelivered, enum.OrderStatusDelivered, start, end, start, end).
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepository) TopMerchants(ctx context.Context, start, end time.Time, limit int) ([]domainRepo.TopMerchantRow, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []domainRepo.TopMerchantRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			m.id AS merchant_id,
			m.name AS merchant_name,
			COUNT(o.id) AS order_count,
			COALESCE(SUM(o.total), 0) AS sales_cents
		FROM orders o
		JOIN merchants m ON m.id = o.merchant_id
		WHERE o.status = ?
		  AND o.created_at >= ? AND o.created_at < ?
		GROUP BY m.id, m.name
		ORDER BY sales_cents DESC
		LIMIT ?
	`, enum.OrderStatusDelivered, start, end, limit).
		Scan(&rows).Error
	return rows, err
}
