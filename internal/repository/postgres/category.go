package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mresitgokce1/inventory-multi-brand-api/internal/domain"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/repository"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/database"
	apperrors "github.com/mresitgokce1/inventory-multi-brand-api/pkg/errors"
)

// categoryColumns is the standard SELECT column list for categories.
const categoryColumns = `id, brand_id, name, slug, is_active, created_at, updated_at`

// categoryOrderColumns is the set of columns List accepts for ordering.
var categoryOrderColumns = map[string]bool{
	"name":       true,
	"created_at": true,
}

// CategoryRepository implements category persistence operations using PostgreSQL.
type CategoryRepository struct {
	pool database.DBTX
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool database.DBTX) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create inserts a new category into the database.
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) (err error) {
	query := `
		INSERT INTO categories (id, brand_id, name, slug, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	ctx, end := database.TraceQuery(ctx, "CreateCategory", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query,
		c.ID,
		c.BrandID,
		c.Name,
		c.Slug,
		c.IsActive,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if isSlugViolation(err) {
			return repository.ErrSlugConflict
		}
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("category", "name", c.Name)
		}
		return fmt.Errorf("insert category: %w", err)
	}

	return nil
}

// GetByID retrieves a category by its unique identifier.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (category *domain.Category, err error) {
	query := fmt.Sprintf(`SELECT %s FROM categories WHERE id = $1`, categoryColumns)

	ctx, end := database.TraceQuery(ctx, "GetCategory", query)
	defer func() { end(err) }()

	var c domain.Category
	err = r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.BrandID,
		&c.Name,
		&c.Slug,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}

	return &c, nil
}

// List returns categories matching the given filter with the total count.
func (r *CategoryRepository) List(ctx context.Context, filter repository.CategoryFilter) (categories []domain.Category, totalCount int, err error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.BrandID != nil {
		conditions = append(conditions, fmt.Sprintf("brand_id = $%d", argIndex))
		args = append(args, *filter.BrandID)
		argIndex++
	}

	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argIndex))
		args = append(args, *filter.IsActive)
		argIndex++
	}

	if filter.Name != nil {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argIndex))
		args = append(args, "%"+*filter.Name+"%")
		argIndex++
	}

	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argIndex))
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	orderBy := filter.OrderBy
	if !categoryOrderColumns[orderBy] {
		orderBy = "name"
	}
	direction := "ASC"
	if filter.OrderDesc {
		direction = "DESC"
	}

	// Use count(*) OVER() for the total count in a single query.
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM categories
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d`,
		categoryColumns, whereClause, orderBy, direction, argIndex, argIndex+1,
	)

	limit := filter.PageSize
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	ctx, end := database.TraceQuery(ctx, "ListCategories", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(
			&c.ID,
			&c.BrandID,
			&c.Name,
			&c.Slug,
			&c.IsActive,
			&c.CreatedAt,
			&c.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate category rows: %w", err)
	}

	if categories == nil {
		categories = []domain.Category{}
	}

	return categories, totalCount, nil
}

// Update modifies an existing category in the database.
func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) (err error) {
	c.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE categories
		SET name = $1, slug = $2, is_active = $3, updated_at = $4
		WHERE id = $5`

	ctx, end := database.TraceQuery(ctx, "UpdateCategory", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query,
		c.Name,
		c.Slug,
		c.IsActive,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		if isSlugViolation(err) {
			return repository.ErrSlugConflict
		}
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("category", "name", c.Name)
		}
		return fmt.Errorf("update category: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("category", c.ID)
	}

	return nil
}

// Delete removes a category from the database by its ID. Products keep
// existing with category_id nulled.
func (r *CategoryRepository) Delete(ctx context.Context, id string) (err error) {
	query := `DELETE FROM categories WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteCategory", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("category", id)
	}

	return nil
}

// SlugExists reports whether the brand already has a category with the slug,
// optionally excluding one category id.
func (r *CategoryRepository) SlugExists(ctx context.Context, brandID, slug string, excludeID *string) (exists bool, err error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM categories
			WHERE brand_id = $1 AND slug = $2 AND ($3::uuid IS NULL OR id != $3)
		)`

	ctx, end := database.TraceQuery(ctx, "CategorySlugExists", query)
	defer func() { end(err) }()

	if err := r.pool.QueryRow(ctx, query, brandID, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check category slug: %w", err)
	}

	return exists, nil
}
