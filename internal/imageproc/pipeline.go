package imageproc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mresitgokce1/inventory-multi-brand-api/internal/storage"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/tracing"
)

const tracerName = "github.com/mresitgokce1/inventory-multi-brand-api/internal/imageproc"

// ImageKey returns the storage key of the full-size product image.
func ImageKey(productID string) string {
	return fmt.Sprintf("products/%s.jpg", productID)
}

// SmallImageKey returns the storage key of the small product image variant.
func SmallImageKey(productID string) string {
	return fmt.Sprintf("products/small/%s_small.jpg", productID)
}

// ImagePathSetter records the stored image paths on a product row.
type ImagePathSetter interface {
	SetImagePaths(ctx context.Context, id string, image, imageSmall *string) error
}

// Pipeline turns raw uploads into stored image variants. It runs after the
// product write has committed; a failing image never fails the request, it
// is logged and the product keeps its previous image paths.
type Pipeline struct {
	normalizer *Normalizer
	store      storage.Storage
	products   ImagePathSetter
	logger     *slog.Logger
}

// NewPipeline creates a new image pipeline.
func NewPipeline(normalizer *Normalizer, store storage.Storage, products ImagePathSetter, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		normalizer: normalizer,
		store:      store,
		products:   products,
		logger:     logger,
	}
}

// Process normalizes the upload, stores both variants under the product's
// deterministic keys (overwriting any previous image), and records the
// paths. Normalization is the heaviest in-process work the API does, so it
// runs under its own span.
func (p *Pipeline) Process(ctx context.Context, productID string, data []byte) {
	ctx, span := tracing.Tracer(tracerName).Start(ctx, "image.Process",
		trace.WithAttributes(
			attribute.String("product.id", productID),
			attribute.Int("upload.bytes", len(data)),
		),
	)
	defer span.End()

	if err := p.process(ctx, productID, data); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.ErrorContext(ctx, "product image pipeline failed",
			"product_id", productID, "error", err)
	}
}

func (p *Pipeline) process(ctx context.Context, productID string, data []byte) error {
	variants, err := p.normalizer.Normalize(data)
	if err != nil {
		return fmt.Errorf("normalize image: %w", err)
	}

	imageKey := ImageKey(productID)
	if err := p.save(ctx, imageKey, variants.Full); err != nil {
		return err
	}

	smallKey := SmallImageKey(productID)
	if err := p.save(ctx, smallKey, variants.Small); err != nil {
		return err
	}

	if err := p.products.SetImagePaths(ctx, productID, &imageKey, &smallKey); err != nil {
		return fmt.Errorf("record image paths: %w", err)
	}
	return nil
}

// BackfillSmall regenerates only the small variant from the stored original.
// Used when a product carries a full image path without a small one.
func (p *Pipeline) BackfillSmall(ctx context.Context, productID, imageKey string) {
	ctx, span := tracing.Tracer(tracerName).Start(ctx, "image.BackfillSmall",
		trace.WithAttributes(attribute.String("product.id", productID)),
	)
	defer span.End()

	if err := p.backfillSmall(ctx, productID, imageKey); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.ErrorContext(ctx, "product image backfill failed",
			"product_id", productID, "key", imageKey, "error", err)
	}
}

func (p *Pipeline) backfillSmall(ctx context.Context, productID, imageKey string) error {
	rc, err := p.store.Open(ctx, imageKey)
	if err != nil {
		return fmt.Errorf("open stored image %s: %w", imageKey, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read stored image %s: %w", imageKey, err)
	}

	variants, err := p.normalizer.Normalize(data)
	if err != nil {
		return fmt.Errorf("normalize image: %w", err)
	}

	smallKey := SmallImageKey(productID)
	if err := p.save(ctx, smallKey, variants.Small); err != nil {
		return err
	}

	if err := p.products.SetImagePaths(ctx, productID, &imageKey, &smallKey); err != nil {
		return fmt.Errorf("record image paths: %w", err)
	}
	return nil
}

func (p *Pipeline) save(ctx context.Context, key string, data []byte) error {
	if _, err := p.store.Save(ctx, &storage.SaveInput{
		Key:         key,
		ContentType: "image/jpeg",
		Data:        bytes.NewReader(data),
	}); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

// Remove deletes both stored variants for a product. Missing files are
// ignored; storage errors are logged.
func (p *Pipeline) Remove(ctx context.Context, productID string) {
	for _, key := range []string{ImageKey(productID), SmallImageKey(productID)} {
		if err := p.store.Delete(ctx, key); err != nil {
			p.logger.Error("delete product image", "product_id", productID, "key", key, "error", err)
		}
	}
}
