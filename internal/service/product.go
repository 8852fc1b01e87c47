package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mresitgokce1/inventory-multi-brand-api/internal/domain"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/imageproc"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/repository"
	apperrors "github.com/mresitgokce1/inventory-multi-brand-api/pkg/errors"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/slug"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/validator"
)

// ImagePipeline is the post-commit image hook the product service drives.
// Implementations never fail the surrounding request.
type ImagePipeline interface {
	Process(ctx context.Context, productID string, data []byte)
	BackfillSmall(ctx context.Context, productID, imageKey string)
	Remove(ctx context.Context, productID string)
}

// ProductEvents is the event surface the product service publishes to.
type ProductEvents interface {
	PublishProductCreated(ctx context.Context, product *domain.Product) error
	PublishProductUpdated(ctx context.Context, product *domain.Product) error
	PublishProductDeleted(ctx context.Context, id, brandID string) error
}

// ProductService implements the business logic for product operations,
// including the image pipeline hand-off and the public read surface.
type ProductService struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	brands     repository.BrandRepository
	images     ImagePipeline
	events     ProductEvents
	logger     *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	repo repository.ProductRepository,
	categories repository.CategoryRepository,
	brands repository.BrandRepository,
	images ImagePipeline,
	events ProductEvents,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
		brands:     brands,
		images:     images,
		events:     events,
		logger:     logger,
	}
}

// CreateProduct creates a new product. Admins must name the owning brand;
// brand managers always create under their own brand. Image bytes are
// validated up front but processed only after the row is committed.
func (s *ProductService) CreateProduct(ctx context.Context, actor domain.Actor, input *domain.CreateProductInput) (*domain.Product, error) {
	if !actor.Capability().CanWrite {
		return nil, apperrors.Forbidden("not allowed to manage products")
	}
	if err := validator.Validate(input); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	if err := domain.ValidatePrice(input.Price); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	brandID, err := resolveOwnerBrand(ctx, s.brands, actor, input.BrandID)
	if err != nil {
		return nil, err
	}

	categoryID, err := s.checkCategory(ctx, brandID, input.CategoryID)
	if err != nil {
		return nil, err
	}

	if len(input.ImageData) > 0 {
		if _, err := imageproc.Sniff(input.ImageData); err != nil {
			return nil, apperrors.InvalidInput(err.Error())
		}
	}

	base, err := slugBase(input.Name, input.Slug)
	if err != nil {
		return nil, err
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		resolved, err := s.resolveSlug(ctx, brandID, base, nil)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		product := &domain.Product{
			ID:          uuid.New().String(),
			BrandID:     brandID,
			CategoryID:  categoryID,
			Name:        input.Name,
			Slug:        resolved,
			SKU:         input.SKU,
			Description: input.Description,
			Price:       input.Price,
			Stock:       input.Stock,
			IsActive:    isActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		err = s.repo.Create(ctx, product)
		if errors.Is(err, repository.ErrSlugConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create product: %w", err)
		}

		if len(input.ImageData) > 0 {
			s.images.Process(ctx, product.ID, input.ImageData)
			product = s.reloadAfterImage(ctx, product)
		}

		s.publishCreated(ctx, product)
		s.logger.InfoContext(ctx, "product created",
			slog.String("product_id", product.ID),
			slog.String("brand_id", product.BrandID),
			slog.String("slug", product.Slug),
		)
		return product, nil
	}

	return nil, apperrors.Conflict("could not allocate a unique product slug, try again")
}

// GetProduct retrieves a product by ID. Out-of-scope products read as not
// found.
func (s *ProductService) GetProduct(ctx context.Context, actor domain.Actor, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	if !visibleBrand(actor, product.BrandID) {
		return nil, apperrors.NotFound("product", id)
	}
	return product, nil
}

// ListProducts returns a filtered, paginated list of products visible to
// the actor.
func (s *ProductService) ListProducts(ctx context.Context, actor domain.Actor, filter repository.ProductFilter) ([]domain.Product, int, error) {
	scoped, ok := scopeBrandFilter(actor, filter.BrandID)
	if !ok {
		return []domain.Product{}, 0, nil
	}
	filter.BrandID = scoped
	filter.Page, filter.PageSize = clampPage(filter.Page, filter.PageSize)

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// UpdateProduct applies partial updates to a product within the actor's
// scope. The owning brand cannot be changed; an empty category id clears
// the category. New image bytes replace the stored variants after commit.
func (s *ProductService) UpdateProduct(ctx context.Context, actor domain.Actor, id string, input *domain.UpdateProductInput) (*domain.Product, error) {
	if !actor.Capability().CanWrite {
		return nil, apperrors.Forbidden("not allowed to manage products")
	}
	if err := validator.Validate(input); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	if !visibleBrand(actor, product.BrandID) {
		return nil, apperrors.NotFound("product", id)
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.SKU != nil {
		product.SKU = *input.SKU
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if err := domain.ValidatePrice(*input.Price); err != nil {
			return nil, apperrors.InvalidInput(err.Error())
		}
		product.Price = *input.Price
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.CategoryID != nil {
		if *input.CategoryID == "" {
			product.CategoryID = nil
		} else {
			categoryID, err := s.checkCategory(ctx, product.BrandID, input.CategoryID)
			if err != nil {
				return nil, err
			}
			product.CategoryID = categoryID
		}
	}

	if len(input.ImageData) > 0 {
		if _, err := imageproc.Sniff(input.ImageData); err != nil {
			return nil, apperrors.InvalidInput(err.Error())
		}
	}

	var base string
	if input.Slug != nil {
		base, err = slugBase(*input.Slug, nil)
		if err != nil {
			return nil, err
		}
	}

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		if base != "" {
			resolved, err := s.resolveSlug(ctx, product.BrandID, base, &id)
			if err != nil {
				return nil, err
			}
			product.Slug = resolved
		}

		err = s.repo.Update(ctx, product)
		if errors.Is(err, repository.ErrSlugConflict) && base != "" {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update product: %w", err)
		}

		switch {
		case len(input.ImageData) > 0:
			s.images.Process(ctx, product.ID, input.ImageData)
			product = s.reloadAfterImage(ctx, product)
		case product.Image != nil && product.ImageSmall == nil:
			s.images.BackfillSmall(ctx, product.ID, *product.Image)
			product = s.reloadAfterImage(ctx, product)
		}

		s.publishUpdated(ctx, product)
		s.logger.InfoContext(ctx, "product updated",
			slog.String("product_id", product.ID),
			slog.String("slug", product.Slug),
		)
		return product, nil
	}

	return nil, apperrors.Conflict("could not allocate a unique product slug, try again")
}

// DeleteProduct removes a product within the actor's scope along with its
// stored image variants.
func (s *ProductService) DeleteProduct(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.Capability().CanWrite {
		return apperrors.Forbidden("not allowed to manage products")
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get product for delete: %w", err)
	}
	if !visibleBrand(actor, product.BrandID) {
		return apperrors.NotFound("product", id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.images.Remove(ctx, id)

	if err := s.events.PublishProductDeleted(ctx, id, product.BrandID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}
	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
		slog.String("brand_id", product.BrandID),
	)
	return nil
}

// PublicListProducts returns the unauthenticated product listing: active
// products only, optionally narrowed to a brand slug. An unknown brand slug
// yields an empty page rather than an error.
func (s *ProductService) PublicListProducts(ctx context.Context, filter repository.ProductFilter, brandSlug *string) ([]domain.Product, int, error) {
	active := true
	filter.IsActive = &active
	filter.BrandID = nil

	if brandSlug != nil && *brandSlug != "" {
		brand, err := s.brands.GetBySlug(ctx, *brandSlug)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return []domain.Product{}, 0, nil
			}
			return nil, 0, fmt.Errorf("get brand by slug: %w", err)
		}
		filter.BrandID = &brand.ID
	}

	filter.Page, filter.PageSize = clampPage(filter.Page, filter.PageSize)

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list public products: %w", err)
	}
	return products, total, nil
}

// PublicListProductDetails returns the public listing with each row
// enriched by its brand and category. Lookups are cached across the page
// so a page of same-brand products costs one brand read.
func (s *ProductService) PublicListProductDetails(ctx context.Context, filter repository.ProductFilter, brandSlug *string) ([]domain.ProductDetail, int, error) {
	products, total, err := s.PublicListProducts(ctx, filter, brandSlug)
	if err != nil {
		return nil, 0, err
	}

	brandCache := make(map[string]*domain.Brand)
	categoryCache := make(map[string]*domain.Category)

	details := make([]domain.ProductDetail, len(products))
	for i := range products {
		product := &products[i]
		detail := domain.ProductDetail{Product: *product}

		brand, ok := brandCache[product.BrandID]
		if !ok {
			brand, err = s.brands.GetByID(ctx, product.BrandID)
			if err != nil {
				s.logger.ErrorContext(ctx, "failed to load product brand",
					slog.String("product_id", product.ID),
					slog.String("brand_id", product.BrandID),
					slog.String("error", err.Error()),
				)
				brand = nil
			}
			brandCache[product.BrandID] = brand
		}
		detail.Brand = brand

		if product.CategoryID != nil {
			category, ok := categoryCache[*product.CategoryID]
			if !ok {
				category, err = s.categories.GetByID(ctx, *product.CategoryID)
				if err != nil {
					s.logger.ErrorContext(ctx, "failed to load product category",
						slog.String("product_id", product.ID),
						slog.String("category_id", *product.CategoryID),
						slog.String("error", err.Error()),
					)
					category = nil
				}
				categoryCache[*product.CategoryID] = category
			}
			detail.Category = category
		}

		details[i] = detail
	}

	return details, total, nil
}

// PublicGetProduct retrieves one active product with its brand and category
// for the unauthenticated detail endpoint. Inactive products read as not
// found.
func (s *ProductService) PublicGetProduct(ctx context.Context, id string) (*domain.ProductDetail, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	if !product.IsActive {
		return nil, apperrors.NotFound("product", id)
	}
	return enrichProductDetail(ctx, s.logger, s.brands, s.categories, product), nil
}

// checkCategory verifies that a referenced category exists and belongs to
// the product's brand. A nil or empty reference passes through as nil.
func (s *ProductService) checkCategory(ctx context.Context, brandID string, categoryID *string) (*string, error) {
	if categoryID == nil || *categoryID == "" {
		return nil, nil
	}

	category, err := s.categories.GetByID(ctx, *categoryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidInput("invalid category specified")
		}
		return nil, fmt.Errorf("get category %s: %w", *categoryID, err)
	}
	if category.BrandID != brandID {
		return nil, apperrors.InvalidInput("category must belong to the same brand as the product")
	}
	return categoryID, nil
}

// enrichProductDetail loads the owning brand and category for a product.
// Enrichment failures degrade to a bare product rather than failing the
// read. QR resolution shares it with the public detail endpoint.
func enrichProductDetail(
	ctx context.Context,
	logger *slog.Logger,
	brands repository.BrandRepository,
	categories repository.CategoryRepository,
	product *domain.Product,
) *domain.ProductDetail {
	detail := &domain.ProductDetail{Product: *product}

	brand, err := brands.GetByID(ctx, product.BrandID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load product brand",
			slog.String("product_id", product.ID),
			slog.String("brand_id", product.BrandID),
			slog.String("error", err.Error()),
		)
	} else {
		detail.Brand = brand
	}

	if product.CategoryID != nil {
		category, err := categories.GetByID(ctx, *product.CategoryID)
		if err != nil {
			logger.ErrorContext(ctx, "failed to load product category",
				slog.String("product_id", product.ID),
				slog.String("category_id", *product.CategoryID),
				slog.String("error", err.Error()),
			)
		} else {
			detail.Category = category
		}
	}

	return detail
}

// reloadAfterImage re-reads a product after the image pipeline may have
// updated its paths. The stale copy is returned when the read fails.
func (s *ProductService) reloadAfterImage(ctx context.Context, product *domain.Product) *domain.Product {
	fresh, err := s.repo.GetByID(ctx, product.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to reload product after image processing",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
		return product
	}
	return fresh
}

// resolveSlug probes candidate slugs (base, base-2, base-3, ...) until one
// is free within the brand.
func (s *ProductService) resolveSlug(ctx context.Context, brandID, base string, excludeID *string) (string, error) {
	candidate := base
	for n := 2; ; n++ {
		exists, err := s.repo.SlugExists(ctx, brandID, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check product slug %q: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = slug.WithSuffix(base, n)
	}
}

func (s *ProductService) publishCreated(ctx context.Context, product *domain.Product) {
	if err := s.events.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *ProductService) publishUpdated(ctx context.Context, product *domain.Product) {
	if err := s.events.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}
}
