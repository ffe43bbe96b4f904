package service

import (
	"context"
	"mime/multipart"

	"github.com/google/uuid"

	"github.com/feirahub/feira-api/internal/domain/entity"
	"github.com/feirahub/feira-api/internal/domain/repository"
	"github.com/feirahub/feira-api/pkg/apperror"
	"github.com/feirahub/feira-api/pkg/money"
	"github.com/feirahub/feira-api/pkg/pagination"
	"github.com/feirahub/feira-api/pkg/storage"
	"github.com/feirahub/feira-api/pkg/utils"
)

// ProductService handles catalog operations
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	uploader     storage.Uploader
}

// NewProductService creates a new product service
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	uploader storage.Uploader,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		uploader:     uploader,
	}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	MerchantID  uuid.UUID
	CategoryID  *uuid.UUID
	Name        string
	Description *string
	Price       string
	Available   bool
}

// CreateProduct adds a product to the merchant's storefront.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	priceCents, err := money.ParseAmount(input.Price)
	if err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, apperror.NewNotFoundError("Category")
		}
	}

	product := &entity.Product{
		MerchantID:  input.MerchantID,
		CategoryID:  input.CategoryID,
		Name:        input.Name,
		Slug:        utils.Slugify(input.Name) + "-" + utils.ShortID(),
		Code:        utils.GenerateProductCode(),
		Description: input.Description,
		Price:       priceCents,
		Available:   input.Available,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return s.productRepo.GetByID(ctx, product.ID)
}

// GetProduct retrieves a product by slug
func (s *ProductService) GetProduct(ctx context.Context, slug string) (*entity.Product, error) {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// UpdateProductInput represents the update product input
type UpdateProductInput struct {
	MerchantID  uuid.UUID
	ProductSlug string
	CategoryID  *uuid.UUID
	Name        *string
	Description *string
	Price       *string
	Available   *bool
}

// UpdateProduct applies a partial update. Past order items keep their
// snapshot regardless of what changes here.
func (s *ProductService) UpdateProduct(ctx context.Context, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.productRepo.GetBySlug(ctx, input.ProductSlug)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	if product.MerchantID != input.MerchantID {
		return nil, apperror.ErrForbidden
	}

	if input.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, apperror.NewNotFoundError("Category")
		}
		product.CategoryID = input.CategoryID
	}
	if input.Name != nil {
		product.Name = *input.Name
		product.Slug = utils.Slugify(*input.Name) + "-" + utils.ShortID()
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Price != nil {
		priceCents, err := money.ParseAmount(*input.Price)
		if err != nil {
			return nil, err
		}
		product.Price = priceCents
	}
	if input.Available != nil {
		product.Available = *input.Available
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return s.productRepo.GetByID(ctx, product.ID)
}

// DeleteProduct removes a product from the storefront. Existing order items
// are snapshots and survive the delete.
func (s *ProductService) DeleteProduct(ctx context.Context, merchantID uuid.UUID, slug string) error {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if product == nil {
		return apperror.NewNotFoundError("Product")
	}
	if product.MerchantID != merchantID {
		return apperror.ErrForbidden
	}

	return s.productRepo.Delete(ctx, product.ID)
}

// UploadImage stores a product image and saves its URL.
func (s *ProductService) UploadImage(ctx context.Context, merchantID uuid.UUID, slug string, file *multipart.FileHeader) (*entity.Product, error) {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	if product.MerchantID != merchantID {
		return nil, apperror.ErrForbidden
	}

	url, err := s.uploader.Upload("products", file)
	if err != nil {
		return nil, apperror.NewBadRequestError(err.Error())
	}
	product.Image = &url

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}
