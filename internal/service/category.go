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

// CategoryEvents is the event surface the category service publishes to.
type CategoryEvents interface {
	PublishCategoryCreated(ctx context.Context, category *domain.Category) error
	PublishCategoryUpdated(ctx context.Context, category *domain.Category) error
	PublishCategoryDeleted(ctx context.Context, id, brandID string) error
}

// CategoryService implements the business logic for category operations.
// All reads and writes are confined to the actor's visible brands.
type CategoryService struct {
	repo   repository.CategoryRepository
	brands repository.BrandRepository
	events CategoryEvents
	logger *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(repo repository.CategoryRepository, brands repository.BrandRepository, events CategoryEvents, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		repo:   repo,
		brands: brands,
		events: events,
		logger: logger,
	}
}

// CreateCategory creates a new category. Admins must name the owning brand;
// brand managers always create under their own brand, whatever the request
// says.
func (s *CategoryService) CreateCategory(ctx context.Context, actor domain.Actor, input *domain.CreateCategoryInput) (*domain.Category, error) {
	if !actor.Capability().CanWrite {
		return nil, apperrors.Forbidden("not allowed to manage categories")
	}
	if err := validator.Validate(input); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	brandID, err := s.ownerBrand(ctx, actor, input.BrandID)
	if err != nil {
		return nil, err
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
		category := &domain.Category{
			ID:        uuid.New().String(),
			BrandID:   brandID,
			Name:      input.Name,
			Slug:      resolved,
			IsActive:  isActive,
			CreatedAt: now,
			UpdatedAt: now,
		}

		err = s.repo.Create(ctx, category)
		if errors.Is(err, repository.ErrSlugConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create category: %w", err)
		}

		s.publishCreated(ctx, category)
		s.logger.InfoContext(ctx, "category created",
			slog.String("category_id", category.ID),
			slog.String("brand_id", category.BrandID),
			slog.String("slug", category.Slug),
		)
		return category, nil
	}

	return nil, apperrors.Conflict("could not allocate a unique category slug, try again")
}

// GetCategory retrieves a category by ID. Out-of-scope categories read as
// not found.
func (s *CategoryService) GetCategory(ctx context.Context, actor domain.Actor, id string) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category by id: %w", err)
	}
	if !visibleBrand(actor, category.BrandID) {
		return nil, apperrors.NotFound("category", id)
	}
	return category, nil
}

// ListCategories returns a filtered, paginated list of categories visible
// to the actor.
func (s *CategoryService) ListCategories(ctx context.Context, actor domain.Actor, filter repository.CategoryFilter) ([]domain.Category, int, error) {
	scoped, ok := scopeBrandFilter(actor, filter.BrandID)
	if !ok {
		return []domain.Category{}, 0, nil
	}
	filter.BrandID = scoped
	filter.Page, filter.PageSize = clampPage(filter.Page, filter.PageSize)

	categories, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	return categories, total, nil
}

// UpdateCategory applies partial updates to a category within the actor's
// scope. The owning brand cannot be changed.
func (s *CategoryService) UpdateCategory(ctx context.Context, actor domain.Actor, id string, input *domain.UpdateCategoryInput) (*domain.Category, error) {
	if !actor.Capability().CanWrite {
		return nil, apperrors.Forbidden("not allowed to manage categories")
	}
	if err := validator.Validate(input); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category for update: %w", err)
	}
	if !visibleBrand(actor, category.BrandID) {
		return nil, apperrors.NotFound("category", id)
	}

	if input.Name != nil {
		category.Name = *input.Name
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
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
			resolved, err := s.resolveSlug(ctx, category.BrandID, base, &id)
			if err != nil {
				return nil, err
			}
			category.Slug = resolved
		}

		err = s.repo.Update(ctx, category)
		if errors.Is(err, repository.ErrSlugConflict) && base != "" {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update category: %w", err)
		}

		s.publishUpdated(ctx, category)
		s.logger.InfoContext(ctx, "category updated",
			slog.String("category_id", category.ID),
			slog.String("slug", category.Slug),
		)
		return category, nil
	}

	return nil, apperrors.Conflict("could not allocate a unique category slug, try again")
}

// DeleteCategory removes a category within the actor's scope. Products in
// the category lose their category reference, they are not deleted.
func (s *CategoryService) DeleteCategory(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.Capability().CanWrite {
		return apperrors.Forbidden("not allowed to manage categories")
	}

	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get category for delete: %w", err)
	}
	if !visibleBrand(actor, category.BrandID) {
		return apperrors.NotFound("category", id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if err := s.events.PublishCategoryDeleted(ctx, id, category.BrandID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.deleted event",
			slog.String("category_id", id),
			slog.String("error", err.Error()),
		)
	}
	s.logger.InfoContext(ctx, "category deleted",
		slog.String("category_id", id),
		slog.String("brand_id", category.BrandID),
	)
	return nil
}

// ownerBrand resolves which brand a new category or product belongs to.
// Admins must name one explicitly and it has to exist; managers always get
// their own.
func (s *CategoryService) ownerBrand(ctx context.Context, actor domain.Actor, requested *string) (string, error) {
	return resolveOwnerBrand(ctx, s.brands, actor, requested)
}

// resolveSlug probes candidate slugs (base, base-2, base-3, ...) until one
// is free within the brand.
func (s *CategoryService) resolveSlug(ctx context.Context, brandID, base string, excludeID *string) (string, error) {
	candidate := base
	for n := 2; ; n++ {
		exists, err := s.repo.SlugExists(ctx, brandID, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check category slug %q: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = slug.WithSuffix(base, n)
	}
}

func (s *CategoryService) publishCreated(ctx context.Context, category *domain.Category) {
	if err := s.events.PublishCategoryCreated(ctx, category); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.created event",
			slog.String("category_id", category.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *CategoryService) publishUpdated(ctx context.Context, category *domain.Category) {
	if err := s.events.PublishCategoryUpdated(ctx, category); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.updated event",
			slog.String("category_id", category.ID),
			slog.String("error", err.Error()),
		)
	}
}

// resolveOwnerBrand applies the brand assignment rules shared by category
// and product creation.
func resolveOwnerBrand(ctx context.Context, brands repository.BrandRepository, actor domain.Actor, requested *string) (string, error) {
	switch actor.Capability().VisibleScope {
	case domain.ScopeAll:
		if requested == nil || *requested == "" {
			return "", apperrors.InvalidInput("brand must be specified")
		}
		if _, err := brands.GetByID(ctx, *requested); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return "", apperrors.InvalidInput("invalid brand specified")
			}
			return "", fmt.Errorf("get brand %s: %w", *requested, err)
		}
		return *requested, nil
	case domain.ScopeOwnBrand:
		if actor.BrandID == nil {
			return "", apperrors.InvalidInput("brand manager must be associated with a brand")
		}
		return *actor.BrandID, nil
	default:
		return "", apperrors.Forbidden("not allowed to create in any brand")
	}
}
