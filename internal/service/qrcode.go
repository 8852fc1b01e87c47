package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/mresitgokce1/inventory-multi-brand-api/internal/domain"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/repository"
	apperrors "github.com/mresitgokce1/inventory-multi-brand-api/pkg/errors"
)

const (
	qrCodeLength    = 8
	maxCodeAttempts = 100

	qrMinSize     = 64
	qrMaxSize     = 1024
	qrDefaultSize = 256
)

// codeAlphabet is the character set for short codes. Alphanumeric only, so
// codes stay URL-safe without escaping.
const codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// QRRenderOptions control the rendered image. Zero values pick the
// defaults. Only PNG rendering is implemented; other formats fall back to
// PNG.
type QRRenderOptions struct {
	Size   int
	Format string
}

// QRPrivate carries the product fields revealed only to admins and
// same-brand managers when resolving a code.
type QRPrivate struct {
	SKU      string
	Stock    int
	IsActive bool
}

// QRResolution is the outcome of resolving a short code: the product
// rendered at the caller's visibility level. Private is nil for public
// callers.
type QRResolution struct {
	Visibility string
	Product    *domain.ProductDetail
	Private    *QRPrivate
}

// QRCodeService implements the business logic for product QR codes:
// allocating short codes, rendering images and resolving scans.
type QRCodeService struct {
	codes      repository.QRCodeRepository
	products   repository.ProductRepository
	brands     repository.BrandRepository
	categories repository.CategoryRepository
	baseURL    string
	logger     *slog.Logger
}

// NewQRCodeService creates a new QR code service. baseURL is the public
// origin that short links are minted under.
func NewQRCodeService(
	codes repository.QRCodeRepository,
	products repository.ProductRepository,
	brands repository.BrandRepository,
	categories repository.CategoryRepository,
	baseURL string,
	logger *slog.Logger,
) *QRCodeService {
	return &QRCodeService{
		codes:      codes,
		products:   products,
		brands:     brands,
		categories: categories,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// Generate returns the product's QR code image, allocating a short code on
// first call. Products outside the actor's scope read as not found.
func (s *QRCodeService) Generate(ctx context.Context, actor domain.Actor, productID string, opts QRRenderOptions) (*domain.QRCodeImage, error) {
	product, err := s.visibleProduct(ctx, actor, productID)
	if err != nil {
		return nil, err
	}

	qr, err := s.codes.GetByProductID(ctx, product.ID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		qr, err = s.createCode(ctx, product.ID)
		if err != nil {
			return nil, err
		}
		s.logger.InfoContext(ctx, "qr code created",
			slog.String("product_id", product.ID),
			slog.String("code", qr.Code),
		)
	case err != nil:
		return nil, fmt.Errorf("get qr code for product: %w", err)
	}

	return s.render(qr, opts)
}

// Regenerate rotates the product's short code, invalidating the previous
// one, and returns the new image. A product without a code gets its first
// one instead.
func (s *QRCodeService) Regenerate(ctx context.Context, actor domain.Actor, productID string, opts QRRenderOptions) (*domain.QRCodeImage, error) {
	product, err := s.visibleProduct(ctx, actor, productID)
	if err != nil {
		return nil, err
	}

	qr, err := s.codes.GetByProductID(ctx, product.ID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		qr, err = s.createCode(ctx, product.ID)
		if err != nil {
			return nil, err
		}
		s.logger.InfoContext(ctx, "qr code created",
			slog.String("product_id", product.ID),
			slog.String("code", qr.Code),
		)
		return s.render(qr, opts)
	case err != nil:
		return nil, fmt.Errorf("get qr code for product: %w", err)
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := randomCode(qrCodeLength)
		if err != nil {
			return nil, fmt.Errorf("generate qr code: %w", err)
		}

		exists, err := s.codes.CodeExists(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("check qr code %q: %w", code, err)
		}
		if exists {
			continue
		}

		now := time.Now().UTC()
		qr.Code = code
		qr.Active = true
		qr.RegeneratedAt = &now

		err = s.codes.Update(ctx, qr)
		if errors.Is(err, repository.ErrCodeConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update qr code: %w", err)
		}

		s.logger.InfoContext(ctx, "qr code regenerated",
			slog.String("product_id", product.ID),
			slog.String("code", qr.Code),
		)
		return s.render(qr, opts)
	}

	return nil, apperrors.Conflict("could not allocate a unique qr code, try again")
}

// Resolve looks up a short code and renders its product at the caller's
// visibility level. actor is nil for unauthenticated callers. Unknown and
// deactivated codes both read as not found.
func (s *QRCodeService) Resolve(ctx context.Context, actor *domain.Actor, code string) (*QRResolution, error) {
	qr, err := s.codes.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFoundMessage("qr code not found")
		}
		return nil, fmt.Errorf("get qr code: %w", err)
	}
	if !qr.Active {
		return nil, apperrors.NotFoundMessage("qr code not found")
	}

	product, err := s.products.GetByID(ctx, qr.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product for qr code: %w", err)
	}

	resolution := &QRResolution{
		Visibility: resolveVisibility(actor, product.BrandID),
		Product:    enrichProductDetail(ctx, s.logger, s.brands, s.categories, product),
	}
	if resolution.Visibility != domain.QRVisibilityPublic {
		resolution.Private = &QRPrivate{
			SKU:      product.SKU,
			Stock:    product.Stock,
			IsActive: product.IsActive,
		}
	}
	return resolution, nil
}

// visibleProduct loads a product for a QR write, enforcing write permission
// and brand scope.
func (s *QRCodeService) visibleProduct(ctx context.Context, actor domain.Actor, productID string) (*domain.Product, error) {
	if !actor.Capability().CanWrite {
		return nil, apperrors.Forbidden("not allowed to manage qr codes")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	if !visibleBrand(actor, product.BrandID) {
		return nil, apperrors.NotFound("product", productID)
	}
	return product, nil
}

// createCode allocates a fresh short code for the product.
func (s *QRCodeService) createCode(ctx context.Context, productID string) (*domain.ProductQRCode, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := randomCode(qrCodeLength)
		if err != nil {
			return nil, fmt.Errorf("generate qr code: %w", err)
		}

		exists, err := s.codes.CodeExists(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("check qr code %q: %w", code, err)
		}
		if exists {
			continue
		}

		qr := &domain.ProductQRCode{
			ID:        uuid.New().String(),
			ProductID: productID,
			Code:      code,
			Active:    true,
			CreatedAt: time.Now().UTC(),
		}

		err = s.codes.Create(ctx, qr)
		if errors.Is(err, repository.ErrCodeConflict) {
			continue
		}
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			// Another request created this product's code first.
			existing, getErr := s.codes.GetByProductID(ctx, productID)
			if getErr != nil {
				return nil, fmt.Errorf("get qr code after create race: %w", getErr)
			}
			return existing, nil
		}
		if err != nil {
			return nil, fmt.Errorf("create qr code: %w", err)
		}
		return qr, nil
	}

	return nil, apperrors.Conflict("could not allocate a unique qr code, try again")
}

// render encodes the short link as a PNG QR image.
func (s *QRCodeService) render(qr *domain.ProductQRCode, opts QRRenderOptions) (*domain.QRCodeImage, error) {
	size := opts.Size
	if size == 0 {
		size = qrDefaultSize
	}
	if size < qrMinSize {
		size = qrMinSize
	}
	if size > qrMaxSize {
		size = qrMaxSize
	}

	url := s.baseURL + "/p/" + qr.Code
	png, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("encode qr image: %w", err))
	}

	return &domain.QRCodeImage{
		Code:          qr.Code,
		URL:           url,
		ImageBase64:   base64.StdEncoding.EncodeToString(png),
		MIMEType:      "image/png",
		RegeneratedAt: qr.RegeneratedAt,
	}, nil
}

// resolveVisibility maps the caller to a QR visibility level for the
// product's brand.
func resolveVisibility(actor *domain.Actor, brandID string) string {
	if actor == nil {
		return domain.QRVisibilityPublic
	}
	switch actor.Capability().VisibleScope {
	case domain.ScopeAll:
		return domain.QRVisibilityAdmin
	case domain.ScopeOwnBrand:
		if actor.BrandID != nil && *actor.BrandID == brandID {
			return domain.QRVisibilityManager
		}
	}
	return domain.QRVisibilityPublic
}

// randomCode returns a cryptographically random short code of n characters.
func randomCode(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
