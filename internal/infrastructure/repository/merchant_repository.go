package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feirahub/feira-api/internal/domain/entity"
	domainRepo "github.com/feirahub/feira-api/internal/domain/repository"
)

type merchantRepository struct {
	db *gorm.DB
}

// NewMerchantRepository creates a new merchant repository
func NewMerchantRepository(db *gorm.DB) domainRepo.MerchantRepository {
	return &merchantRepository{db: db}
}

func (r *merchantRepository) Create(ctx context.Context, merchant *entity.Merchant) error {
	return r.db.WithContext(ctx).Create(merchant).Error
}

func (r *merchantRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Merchant, error) {
	var merchant entity.Merchant
	err := r.db.WithContext(ctx).First(&merchant, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &merchant, err
}

func (r *merchantRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Merchant, error) {
	var merchant entity.Merchant
	err := r.db.WithContext(ctx).First(&merchant, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &merchant, err
}

func (r *merchantRepository) GetBySlug(ctx context.Context, slug string) (*entity.Merchant, error) {
	var merchant entity.Merchant
	err := r.db.WithContext(ctx).First(&merchant, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &merchant, err
}

func (r *merchantRepository) Update(ctx context.Context, merchant *entity.Merchant) error {
	return r.db.WithContext(ctx).Save(merchant).Error
}

func (r *merchantRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&entity.Merchant{}).
		Where("id = ?", id).
		Update("active", false).Error
}

func (r *merchantRepository) List(ctx context.Context, params *domainRepo.MerchantFilterParams) ([]entity.Merchant, int64, error) {
	var merchants []entity.Merchant
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Merchant{})

	if params.Search != "" {
		query = query.Where("name ILIKE ? OR slug ILIKE ?", "%"+params.Search+"%", "%"+params.Search+"%")
	}

	if params.City != "" {
		query = query.Where("city ILIKE ?", params.City)
	}

	if params.OnlyActive {
		query = query.Where("active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.IncludeUser {
		query = query.Preload("User")
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("name ASC").
		Find(&merchants).Error

	return merchants, total, err
}

func (r *merchantRepository) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&entity.Merchant{}).
		Where("active = ?", true).
		Pluck("id", &ids).Error
	return ids, err
}
