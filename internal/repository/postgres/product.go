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

// productColumns is the standard SELECT column list for products. Columns are
// qualified with the "p" alias because the list query may join categories,
// which shares several column names.
const productColumns = `p.id, p.brand_id, p.category_id, p.name, p.slug, p.sku,
	p.description, p.price, p.stock, p.is_active, p.image, p.image_small,
	p.created_at, p.updated_at`

// productOrderColumns is the set of columns List accepts for ordering.
var productOrderColumns = map[string]bool{
	"name":       true,
	"price":      true,
	"created_at": true,
	"stock":      true,
}

// ProductRepository implements product persistence operations using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a new product into the database.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	query := `
		INSERT INTO products (id, brand_id, category_id, name, slug, sku, description,
			price, stock, is_active, image, image_small, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	ctx, end := database.TraceQuery(ctx, "CreateProduct", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query,
		p.ID,
		p.BrandID,
		p.CategoryID,
		p.Name,
		p.Slug,
		p.SKU,
		p.Description,
		p.Price,
		p.Stock,
		p.IsActive,
		p.Image,
		p.ImageSmall,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isSlugViolation(err) {
			return repository.ErrSlugConflict
		}
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "sku", p.SKU)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its unique identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (product *domain.Product, err error) {
	query := fmt.Sprintf(`SELECT %s FROM products p WHERE p.id = $1`, productColumns)

	ctx, end := database.TraceQuery(ctx, "GetProduct", query)
	defer func() { end(err) }()

	var p domain.Product
	err = r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.BrandID,
		&p.CategoryID,
		&p.Name,
		&p.Slug,
		&p.SKU,
		&p.Description,
		&p.Price,
		&p.Stock,
		&p.IsActive,
		&p.Image,
		&p.ImageSmall,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	return &p, nil
}

// List returns products matching the given filter with the total count.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) (products []domain.Product, totalCount int, err error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
		joinClause string
	)

	if filter.BrandID != nil {
		conditions = append(conditions, fmt.Sprintf("p.brand_id = $%d", argIndex))
		args = append(args, *filter.BrandID)
		argIndex++
	}

	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", argIndex))
		args = append(args, *filter.CategoryID)
		argIndex++
	}

	if filter.CategorySlug != nil {
		joinClause = "JOIN categories c ON c.id = p.category_id"
		conditions = append(conditions, fmt.Sprintf("c.slug = $%d", argIndex))
		args = append(args, *filter.CategorySlug)
		argIndex++
	}

	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("p.is_active = $%d", argIndex))
		args = append(args, *filter.IsActive)
		argIndex++
	}

	if filter.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("p.price >= $%d", argIndex))
		args = append(args, *filter.MinPrice)
		argIndex++
	}

	if filter.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("p.price <= $%d", argIndex))
		args = append(args, *filter.MaxPrice)
		argIndex++
	}

	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE $%d OR p.sku ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	orderBy := filter.OrderBy
	if !productOrderColumns[orderBy] {
		orderBy = "created_at"
	}
	direction := "ASC"
	if filter.OrderDesc {
		direction = "DESC"
	}

	// Use count(*) OVER() for the total count in a single query.
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM products p
		%s
		%s
		ORDER BY p.%s %s
		LIMIT $%d OFFSET $%d`,
		productColumns, joinClause, whereClause, orderBy, direction, argIndex, argIndex+1,
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

	ctx, end := database.TraceQuery(ctx, "ListProducts", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.BrandID,
			&p.CategoryID,
			&p.Name,
			&p.Slug,
			&p.SKU,
			&p.Description,
			&p.Price,
			&p.Stock,
			&p.IsActive,
			&p.Image,
			&p.ImageSmall,
			&p.CreatedAt,
			&p.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
	}

	return products, totalCount, nil
}

// Update modifies an existing product in the database.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (err error) {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET category_id = $1, name = $2, slug = $3, sku = $4, description = $5,
		    price = $6, stock = $7, is_active = $8, updated_at = $9
		WHERE id = $10`

	ctx, end := database.TraceQuery(ctx, "UpdateProduct", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query,
		p.CategoryID,
		p.Name,
		p.Slug,
		p.SKU,
		p.Description,
		p.Price,
		p.Stock,
		p.IsActive,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if isSlugViolation(err) {
			return repository.ErrSlugConflict
		}
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "sku", p.SKU)
		}
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	return nil
}

// Delete removes a product from the database by its ID.
func (r *ProductRepository) Delete(ctx context.Context, id string) (err error) {
	query := `DELETE FROM products WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteProduct", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}

// SlugExists reports whether the brand already has a product with the slug,
// optionally excluding one product id.
func (r *ProductRepository) SlugExists(ctx context.Context, brandID, slug string, excludeID *string) (exists bool, err error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM products
			WHERE brand_id = $1 AND slug = $2 AND ($3::uuid IS NULL OR id != $3)
		)`

	ctx, end := database.TraceQuery(ctx, "ProductSlugExists", query)
	defer func() { end(err) }()

	if err := r.pool.QueryRow(ctx, query, brandID, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check product slug: %w", err)
	}

	return exists, nil
}

// SetImagePaths stores the processed image paths for a product.
func (r *ProductRepository) SetImagePaths(ctx context.Context, id string, image, imageSmall *string) (err error) {
	query := `UPDATE products SET image = $1, image_small = $2, updated_at = $3 WHERE id = $4`

	ctx, end := database.TraceQuery(ctx, "SetProductImagePaths", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, image, imageSmall, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set product image paths: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}
