package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/feirahub/feira-api/internal/domain/entity"
	"github.com/feirahub/feira-api/pkg/pagination"
)

// MerchantRepository defines the interface for merchant storefront data
type MerchantRepository interface {
	Create(ctx context.Context, merchant *entity.Merchant) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Merchant, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Merchant, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Merchant, error)
	Update(ctx context.Context, merchant *entity.Merchant) error
	// Deactivate hides the storefront. Orders and ledger rows stay.
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *MerchantFilterParams) ([]entity.Merchant, int64, error)
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

// MerchantFilterParams contains filtering parameters for merchant queries
type MerchantFilterParams struct {
	Pagination  *pagination.PaginationParams
	Search      string
	City        string
	OnlyActive  bool
	IncludeUser bool
}
