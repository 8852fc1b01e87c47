package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/mresitgokce1/inventory-multi-brand-api/internal/domain"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/repository"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/database"
	apperrors "github.com/mresitgokce1/inventory-multi-brand-api/pkg/errors"
)

// brandColumns is the standard SELECT column list for brands.
const brandColumns = `id, name, slug, created_at`

// BrandRepository implements brand persistence operations using PostgreSQL.
type BrandRepository struct {
	pool database.DBTX
}

// NewBrandRepository creates a new PostgreSQL-backed brand repository.
func NewBrandRepository(pool database.DBTX) *BrandRepository {
	return &BrandRepository{pool: pool}
}

// Create inserts a new brand into the database.
func (r *BrandRepository) Create(ctx context.Context, b *domain.Brand) (err error) {
	query := `
		INSERT INTO brands (id, name, slug, created_at)
		VALUES ($1, $2, $3, $4)`

	ctx, end := database.TraceQuery(ctx, "CreateBrand", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query, b.ID, b.Name, b.Slug, b.CreatedAt)
	if err != nil {
		if isSlugViolation(err) {
			return repository.ErrSlugConflict
		}
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("brand", "name", b.Name)
		}
		return fmt.Errorf("insert brand: %w", err)
	}

	return nil
}

// GetByID retrieves a brand by its unique identifier.
func (r *BrandRepository) GetByID(ctx context.Context, id string) (*domain.Brand, error) {
	query := fmt.Sprintf(`SELECT %s FROM brands WHERE id = $1`, brandColumns)

	ctx, end := database.TraceQuery(ctx, "GetBrand", query)
	b, err := r.scanBrand(ctx, query, id)
	end(err)
	return b, err
}

// GetBySlug retrieves a brand by its URL-friendly slug.
func (r *BrandRepository) GetBySlug(ctx context.Context, slug string) (*domain.Brand, error) {
	query := fmt.Sprintf(`SELECT %s FROM brands WHERE slug = $1`, brandColumns)

	ctx, end := database.TraceQuery(ctx, "GetBrandBySlug", query)
	b, err := r.scanBrand(ctx, query, slug)
	end(err)
	return b, err
}

// List returns brands matching the filter along with the total count.
func (r *BrandRepository) List(ctx context.Context, filter repository.BrandFilter) (brands []domain.Brand, totalCount int, err error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.ID != nil {
		conditions = append(conditions, fmt.Sprintf("id = $%d", argIndex))
		args = append(args, *filter.ID)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM brands
		%s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d`,
		brandColumns, whereClause, argIndex, argIndex+1,
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

	ctx, end := database.TraceQuery(ctx, "ListBrands", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b domain.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.CreatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("scan brand row: %w", err)
		}
		brands = append(brands, b)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate brand rows: %w", err)
	}

	if brands == nil {
		brands = []domain.Brand{}
	}

	return brands, totalCount, nil
}

// Update modifies an existing brand in the database.
func (r *BrandRepository) Update(ctx context.Context, b *domain.Brand) (err error) {
	query := `
		UPDATE brands
		SET name = $1, slug = $2
		WHERE id = $3`

	ctx, end := database.TraceQuery(ctx, "UpdateBrand", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, b.Name, b.Slug, b.ID)
	if err != nil {
		if isSlugViolation(err) {
			return repository.ErrSlugConflict
		}
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("brand", "name", b.Name)
		}
		return fmt.Errorf("update brand: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("brand", b.ID)
	}

	return nil
}

// Delete removes a brand from the database by its ID. Categories and
// products cascade; users referencing the brand have brand_id nulled.
func (r *BrandRepository) Delete(ctx context.Context, id string) (err error) {
	query := `DELETE FROM brands WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteBrand", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete brand: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("brand", id)
	}

	return nil
}

// SlugExists reports whether a brand with the slug exists, optionally
// excluding one brand id.
func (r *BrandRepository) SlugExists(ctx context.Context, slug string, excludeID *string) (exists bool, err error) {
	query := `SELECT EXISTS(SELECT 1 FROM brands WHERE slug = $1 AND ($2::uuid IS NULL OR id != $2))`

	ctx, end := database.TraceQuery(ctx, "BrandSlugExists", query)
	defer func() { end(err) }()

	if err := r.pool.QueryRow(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check brand slug: %w", err)
	}

	return exists, nil
}

// scanBrand executes a query expected to return a single brand row.
func (r *BrandRepository) scanBrand(ctx context.Context, query string, args ...any) (*domain.Brand, error) {
	var b domain.Brand

	err := r.pool.QueryRow(ctx, query, args...).Scan(&b.ID, &b.Name, &b.Slug, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan brand: %w", err)
	}

	return &b, nil
}
