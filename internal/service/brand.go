package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mresitgokce1/inventory-multi-brand-api/internal/domain"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/repository"
	apperrors "github.com/mresitgokce1/inventory-multi-brand-api/pkg/errors"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/slug"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/validator"
)

// BrandEvents is the event surface the brand service publishes to.
type BrandEvents interface {
	PublishBrandCreated(ctx context.Context, brand *domain.Brand) error
	PublishBrandUpdated(ctx context.Context, brand *domain.Brand) error
	PublishBrandDeleted(ctx context.Context, id string) error
}

// BrandService implements the business logic for brand operations. Brand
// writes are admin-only; reads are scoped to the actor's visible brands.
type BrandService struct {
	repo   repository.BrandRepository
	events BrandEvents
	logger *slog.Logger
}

// NewBrandService creates a new brand service.
func NewBrandService(repo repository.BrandRepository, events BrandEvents, logger *slog.Logger) *BrandService {
	return &BrandService{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

// CreateBrand creates a new brand. Only admins may call it; the slug is
// derived from the name unless explicitly provided, and collisions are
// resolved with numeric suffixes.
func (s *BrandService) CreateBrand(ctx context.Context, actor domain.Actor, input *domain.CreateBrandInput) (*domain.Brand, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.Forbidden("only admins may manage brands")
	}
	if err := validator.Validate(input); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	base, err := slugBase(input.Name, input.Slug)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		resolved, err := s.resolveSlug(ctx, base, nil)
		if err != nil {
			return nil, err
		}

		brand := &domain.Brand{
			ID:        uuid.New().String(),
			Name:      input.Name,
			Slug:      resolved,
			CreatedAt: time.Now().UTC(),
		}

		err = s.repo.Create(ctx, brand)
		if errors.Is(err, repository.ErrSlugConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create brand: %w", err)
		}

		s.publishCreated(ctx, brand)
		s.logger.InfoContext(ctx, "brand created",
			slog.String("brand_id", brand.ID),
			slog.String("slug", brand.Slug),
		)
		return brand, nil
	}

	return nil, apperrors.Conflict("could not allocate a unique brand slug, try again")
}

// GetBrand retrieves a brand by ID. Out-of-scope brands read as not found.
func (s *BrandService) GetBrand(ctx context.Context, actor domain.Actor, id string) (*domain.Brand, error) {
	brand, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get brand by id: %w", err)
	}
	if !visibleBrand(actor, brand.ID) {
		return nil, apperrors.NotFound("brand", id)
	}
	return brand, nil
}

// ListBrands returns a paginated list of brands visible to the actor.
func (s *BrandService) ListBrands(ctx context.Context, actor domain.Actor, filter repository.BrandFilter) ([]domain.Brand, int, error) {
	scoped, ok := scopeBrandFilter(actor, filter.ID)
	if !ok {
		return []domain.Brand{}, 0, nil
	}
	filter.ID = scoped
	filter.Page, filter.PageSize = clampPage(filter.Page, filter.PageSize)

	brands, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list brands: %w", err)
	}
	return brands, total, nil
}

// UpdateBrand applies partial updates to a brand. Admin-only; a provided
// slug is normalized and collision-resolved, renames alone never touch it.
func (s *BrandService) UpdateBrand(ctx context.Context, actor domain.Actor, id string, input *domain.UpdateBrandInput) (*domain.Brand, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.Forbidden("only admins may manage brands")
	}
	if err := validator.Validate(input); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	brand, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get brand for update: %w", err)
	}

	if input.Name != nil {
		brand.Name = *input.Name
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
			resolved, err := s.resolveSlug(ctx, base, &id)
			if err != nil {
				return nil, err
			}
			brand.Slug = resolved
		}

		err = s.repo.Update(ctx, brand)
		if errors.Is(err, repository.ErrSlugConflict) && base != "" {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update brand: %w", err)
		}

		s.publishUpdated(ctx, brand)
		s.logger.InfoContext(ctx, "brand updated",
			slog.String("brand_id", brand.ID),
			slog.String("slug", brand.Slug),
		)
		return brand, nil
	}

	return nil, apperrors.Conflict("could not allocate a unique brand slug, try again")
}

// DeleteBrand removes a brand. Admin-only; categories and products cascade,
// managers of the brand are detached, not deleted.
func (s *BrandService) DeleteBrand(ctx context.Context, actor domain.Actor, id string) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.Forbidden("only admins may manage brands")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete brand: %w", err)
	}

	if err := s.events.PublishBrandDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish brand.deleted event",
			slog.String("brand_id", id),
			slog.String("error", err.Error()),
		)
	}
	s.logger.InfoContext(ctx, "brand deleted",
		slog.String("brand_id", id),
	)
	return nil
}

// resolveSlug probes candidate slugs (base, base-2, base-3, ...) until one
// is free in the global brand namespace.
func (s *BrandService) resolveSlug(ctx context.Context, base string, excludeID *string) (string, error) {
	candidate := base
	for n := 2; ; n++ {
		exists, err := s.repo.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check brand slug %q: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = slug.WithSuffix(base, n)
	}
}

func (s *BrandService) publishCreated(ctx context.Context, brand *domain.Brand) {
	if err := s.events.PublishBrandCreated(ctx, brand); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish brand.created event",
			slog.String("brand_id", brand.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *BrandService) publishUpdated(ctx context.Context, brand *domain.Brand) {
	if err := s.events.PublishBrandUpdated(ctx, brand); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish brand.updated event",
			slog.String("brand_id", brand.ID),
			slog.String("error", err.Error()),
		)
	}
}

// slugBase returns the normalized slug base: the override when provided,
// the name otherwise. Inputs that normalize to nothing are rejected.
func slugBase(name string, override *string) (string, error) {
	source := name
	if override != nil && *override != "" {
		source = *override
	}
	base := slug.Generate(source)
	if base == "" {
		return "", apperrors.InvalidInput("name must contain at least one alphanumeric character")
	}
	return base, nil
}
