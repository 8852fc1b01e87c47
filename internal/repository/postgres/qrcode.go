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

// qrCodeColumns is the standard SELECT column list for product QR codes.
const qrCodeColumns = `id, product_id, code, active, regenerated_at, created_at`

// QRCodeRepository implements QR code persistence operations using PostgreSQL.
type QRCodeRepository struct {
	pool database.DBTX
}

// NewQRCodeRepository creates a new PostgreSQL-backed QR code repository.
func NewQRCodeRepository(pool database.DBTX) *QRCodeRepository {
	return &QRCodeRepository{pool: pool}
}

// Create inserts a new QR code record into the database.
func (r *QRCodeRepository) Create(ctx context.Context, qr *domain.ProductQRCode) (err error) {
	query := `
		INSERT INTO product_qr_codes (id, product_id, code, active, regenerated_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	ctx, end := database.TraceQuery(ctx, "CreateQRCode", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query,
		qr.ID,
		qr.ProductID,
		qr.Code,
		qr.Active,
		qr.RegeneratedAt,
		qr.CreatedAt,
	)
	if err != nil {
		if isCodeViolation(err) {
			return repository.ErrCodeConflict
		}
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("qr code", "product_id", qr.ProductID)
		}
		return fmt.Errorf("insert qr code: %w", err)
	}

	return nil
}

// GetByProductID retrieves the QR code belonging to a product.
func (r *QRCodeRepository) GetByProductID(ctx context.Context, productID string) (*domain.ProductQRCode, error) {
	query := fmt.Sprintf(`SELECT %s FROM product_qr_codes WHERE product_id = $1`, qrCodeColumns)

	ctx, end := database.TraceQuery(ctx, "GetQRCodeByProduct", query)
	qr, err := r.scanQRCode(r.pool.QueryRow(ctx, query, productID))
	end(err)
	return qr, err
}

// GetByCode retrieves a QR code record by its short code.
func (r *QRCodeRepository) GetByCode(ctx context.Context, code string) (*domain.ProductQRCode, error) {
	query := fmt.Sprintf(`SELECT %s FROM product_qr_codes WHERE code = $1`, qrCodeColumns)

	ctx, end := database.TraceQuery(ctx, "GetQRCodeByCode", query)
	qr, err := r.scanQRCode(r.pool.QueryRow(ctx, query, code))
	end(err)
	return qr, err
}

// Update modifies an existing QR code record in the database.
func (r *QRCodeRepository) Update(ctx context.Context, qr *domain.ProductQRCode) (err error) {
	query := `
		UPDATE product_qr_codes
		SET code = $1, active = $2, regenerated_at = $3
		WHERE id = $4`

	ctx, end := database.TraceQuery(ctx, "UpdateQRCode", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, qr.Code, qr.Active, qr.RegeneratedAt, qr.ID)
	if err != nil {
		if isCodeViolation(err) {
			return repository.ErrCodeConflict
		}
		return fmt.Errorf("update qr code: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("qr code", qr.ID)
	}

	return nil
}

// CodeExists reports whether the short code is already taken.
func (r *QRCodeRepository) CodeExists(ctx context.Context, code string) (exists bool, err error) {
	query := `SELECT EXISTS(SELECT 1 FROM product_qr_codes WHERE code = $1)`

	ctx, end := database.TraceQuery(ctx, "QRCodeExists", query)
	defer func() { end(err) }()

	if err := r.pool.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("check qr code: %w", err)
	}

	return exists, nil
}

func (r *QRCodeRepository) scanQRCode(row pgx.Row) (*domain.ProductQRCode, error) {
	var qr domain.ProductQRCode
	err := row.Scan(
		&qr.ID,
		&qr.ProductID,
		&qr.Code,
		&qr.Active,
		&qr.RegeneratedAt,
		&qr.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan qr code: %w", err)
	}

	return &qr, nil
}

// isCodeViolation reports whether err is a unique violation on the QR short
// code column.
func isCodeViolation(err error) bool {
	return strings.HasSuffix(uniqueConstraint(err), "_code_key")
}
