package service

import (
	"context"
	"mime/multipart"

	"github.com/google/uuid"

	"github.com/feirahub/feira-api/internal/domain/entity"
	"github.com/feirahub/feira-api/internal/domain/repository"
	"github.com/feirahub/feira-api/pkg/apperror"
	"github.com/feirahub/feira-api/pkg/money"
	"github.com/feirahub/feira-api/pkg/pix"
	"github.com/feirahub/feira-api/pkg/storage"
	"github.com/feirahub/feira-api/pkg/utils"
)

// MerchantService handles merchant storefront operations
type MerchantService struct {
	merchantRepo repository.MerchantRepository
	uploader     storage.Uploader
}

// NewMerchantService creates a new merchant service
func NewMerchantService(merchantRepo repository.MerchantRepository, uploader storage.Uploader) *MerchantService {
	return &MerchantService{
		merchantRepo: merchantRepo,
		uploader:     uploader,
	}
}

// CreateMerchantInput represents the create merchant input
type CreateMerchantInput struct {
	UserID      uuid.UUID
	Name        string
	Description *string
	City        string
	Phone       *string
	PixKey      string
	PixKeyType  pix.KeyType
	DeliveryFee string
}

// CreateMerchant opens a storefront for a user. One storefront per user.
func (s *MerchantService) CreateMerchant(ctx context.Context, input *CreateMerchantInput) (*entity.Merchant, error) {
	existing, err := s.merchantRepo.GetByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("User already has a storefront")
	}

	if input.PixKey != "" && !input.PixKeyType.Valid() {
		return nil, apperror.NewBadRequestError("Invalid pix key type")
	}

	var deliveryFee int64
	if input.DeliveryFee != "" {
		deliveryFee, err = money.ParseAmount(input.DeliveryFee)
		if err != nil {
			return nil, err
		}
	}

	merchant := &entity.Merchant{
		UserID:      input.UserID,
		Name:        input.Name,
		Slug:        utils.Slugify(input.Name),
		Description: input.Description,
		City:        input.City,
		Phone:       input.Phone,
		PixKey:      input.PixKey,
		PixKeyType:  input.PixKeyType,
		DeliveryFee: deliveryFee,
		Active:      true,
	}
	if err := s.merchantRepo.Create(ctx, merchant); err != nil {
		return nil, err
	}
	return merchant, nil
}

// UpdateMerchantInput represents the update merchant input
type UpdateMerchantInput struct {
	Name        *string
	Description *string
	City        *string
	Phone       *string
	PixKey      *string
	PixKeyType  *pix.KeyType
	DeliveryFee *string
	Active      *bool
}

// UpdateMerchant applies a partial update to the caller's storefront.
func (s *MerchantService) UpdateMerchant(ctx context.Context, merchantID uuid.UUID, input *UpdateMerchantInput) (*entity.Merchant, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, apperror.NewNotFoundError("Merchant")
	}

	if input.Name != nil {
		merchant.Name = *input.Name
		merchant.Slug = utils.Slugify(*input.Name)
	}
	if input.Description != nil {
		merchant.Description = input.Description
	}
	if input.City != nil {
		merchant.City = *input.City
	}
	if input.Phone != nil {
		merchant.Phone = input.Phone
	}
	if input.PixKey != nil {
		merchant.PixKey = *input.PixKey
	}
	if input.PixKeyType != nil {
		if !input.PixKeyType.Valid() {
			return nil, apperror.NewBadRequestError("Invalid pix key type")
		}
		merchant.PixKeyType = *input.PixKeyType
	}
	if input.DeliveryFee != nil {
		fee, err := money.ParseAmount(*input.DeliveryFee)
		if err != nil {
			return nil, err
		}
		merchant.DeliveryFee = fee
	}
	if input.Active != nil {
		merchant.Active = *input.Active
	}

	if err := s.merchantRepo.Update(ctx, merchant); err != nil {
		return nil, err
	}
	return merchant, nil
}

// GetMerchantBySlug returns a merchant by its public slug.
func (s *MerchantService) GetMerchantBySlug(ctx context.Context, slug string) (*entity.Merchant, error) {
	merchant, err := s.merchantRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, apperror.NewNotFoundError("Merchant")
	}
	return merchant, nil
}

// GetMerchantByUserID returns the storefront owned by a user.
func (s *MerchantService) GetMerchantByUserID(ctx context.Context, userID uuid.UUID) (*entity.Merchant, error) {
	merchant, err := s.merchantRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, apperror.NewNotFoundError("Merchant")
	}
	return merchant, nil
}

// ListMerchants lists storefronts with filters applied.
func (s *MerchantService) ListMerchants(ctx context.Context, params *repository.MerchantFilterParams) ([]entity.Merchant, int64, error) {
	return s.merchantRepo.List(ctx, params)
}

// DeactivateMerchant hides the storefront without touching its history.
func (s *MerchantService) DeactivateMerchant(ctx context.Context, id uuid.UUID) error {
	merchant, err := s.merchantRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if merchant == nil {
		return apperror.NewNotFoundError("Merchant")
	}
	return s.merchantRepo.Deactivate(ctx, id)
}

// UploadLogo stores the merchant's logo and saves its URL.
func (s *MerchantService) UploadLogo(ctx context.Context, merchantID uuid.UUID, file *multipart.FileHeader) (*entity.Merchant, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, apperror.NewNotFoundError("Merchant")
	}

	url, err := s.uploader.Upload("logos", file)
	if err != nil {
		return nil, apperror.NewBadRequestError(err.Error())
	}
	merchant.Logo = &url

	if err := s.merchantRepo.Update(ctx, merchant); err != nil {
		return nil, err
	}
	return merchant, nil
}
