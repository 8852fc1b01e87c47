package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mresitgokce1/inventory-multi-brand-api/internal/domain"
	pkgkafka "github.com/mresitgokce1/inventory-multi-brand-api/pkg/kafka"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/logger"
)

// Aggregate type constants.
const (
	AggregateTypeBrand    = "brand"
	AggregateTypeCategory = "category"
	AggregateTypeProduct  = "product"
)

// Topics for catalog domain events, e.g. "catalog.brand.created".
var (
	TopicBrandCreated = pkgkafka.Topic(AggregateTypeBrand, "created")
	TopicBrandUpdated = pkgkafka.Topic(AggregateTypeBrand, "updated")
	TopicBrandDeleted = pkgkafka.Topic(AggregateTypeBrand, "deleted")

	TopicCategoryCreated = pkgkafka.Topic(AggregateTypeCategory, "created")
	TopicCategoryUpdated = pkgkafka.Topic(AggregateTypeCategory, "updated")
	TopicCategoryDeleted = pkgkafka.Topic(AggregateTypeCategory, "deleted")

	TopicProductCreated = pkgkafka.Topic(AggregateTypeProduct, "created")
	TopicProductUpdated = pkgkafka.Topic(AggregateTypeProduct, "updated")
	TopicProductDeleted = pkgkafka.Topic(AggregateTypeProduct, "deleted")
)

// Source identifier for events originating from this API.
const Source = "inventory-api"

// BrandData is the payload for brand.created and brand.updated events.
type BrandData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CategoryData is the payload for category.created and category.updated
// events.
type CategoryData struct {
	ID       string `json:"id"`
	BrandID  string `json:"brand_id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	IsActive bool   `json:"is_active"`
}

// ProductData is the payload for product.created and product.updated
// events. Price is rendered with two decimal places, matching the API.
type ProductData struct {
	ID         string  `json:"id"`
	BrandID    string  `json:"brand_id"`
	CategoryID *string `json:"category_id,omitempty"`
	Name       string  `json:"name"`
	Slug       string  `json:"slug"`
	SKU        string  `json:"sku"`
	Price      string  `json:"price"`
	Stock      int     `json:"stock"`
	IsActive   bool    `json:"is_active"`
}

// DeletedData is the payload for all *.deleted events.
type DeletedData struct {
	ID      string `json:"id"`
	BrandID string `json:"brand_id,omitempty"`
}

func newBrandData(b *domain.Brand) BrandData {
	return BrandData{
		ID:   b.ID,
		Name: b.Name,
		Slug: b.Slug,
	}
}

func newCategoryData(c *domain.Category) CategoryData {
	return CategoryData{
		ID:       c.ID,
		BrandID:  c.BrandID,
		Name:     c.Name,
		Slug:     c.Slug,
		IsActive: c.IsActive,
	}
}

func newProductData(p *domain.Product) ProductData {
	return ProductData{
		ID:         p.ID,
		BrandID:    p.BrandID,
		CategoryID: p.CategoryID,
		Name:       p.Name,
		Slug:       p.Slug,
		SKU:        p.SKU,
		Price:      p.Price.StringFixed(domain.PriceDecimalPlaces),
		Stock:      p.Stock,
		IsActive:   p.IsActive,
	}
}

// Producer publishes catalog domain events to Kafka. A Producer constructed
// with a nil Kafka producer drops all events, which is how the API runs when
// no brokers are configured.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the catalog API.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	if p.kafka == nil {
		return nil
	}

	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	// Carry the request correlation ID so consumers can tie events back to
	// the originating API call.
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	return nil
}

// PublishBrandCreated publishes a brand.created event.
func (p *Producer) PublishBrandCreated(ctx context.Context, brand *domain.Brand) error {
	if err := p.publish(ctx, TopicBrandCreated, brand.ID, AggregateTypeBrand, newBrandData(brand)); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published brand.created event",
		slog.String("brand_id", brand.ID),
		slog.String("slug", brand.Slug),
	)

	return nil
}

// PublishBrandUpdated publishes a brand.updated event.
func (p *Producer) PublishBrandUpdated(ctx context.Context, brand *domain.Brand) error {
	if err := p.publish(ctx, TopicBrandUpdated, brand.ID, AggregateTypeBrand, newBrandData(brand)); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published brand.updated event",
		slog.String("brand_id", brand.ID),
		slog.String("slug", brand.Slug),
	)

	return nil
}

// PublishBrandDeleted publishes a brand.deleted event.
func (p *Producer) PublishBrandDeleted(ctx context.Context, id string) error {
	if err := p.publish(ctx, TopicBrandDeleted, id, AggregateTypeBrand, DeletedData{ID: id}); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published brand.deleted event",
		slog.String("brand_id", id),
	)

	return nil
}

// PublishCategoryCreated publishes a category.created event.
func (p *Producer) PublishCategoryCreated(ctx context.Context, category *domain.Category) error {
	if err := p.publish(ctx, TopicCategoryCreated, category.ID, AggregateTypeCategory, newCategoryData(category)); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published category.created event",
		slog.String("category_id", category.ID),
		slog.String("brand_id", category.BrandID),
		slog.String("slug", category.Slug),
	)

	return nil
}

// PublishCategoryUpdated publishes a category.updated event.
func (p *Producer) PublishCategoryUpdated(ctx context.Context, category *domain.Category) error {
	if err := p.publish(ctx, TopicCategoryUpdated, category.ID, AggregateTypeCategory, newCategoryData(category)); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published category.updated event",
		slog.String("category_id", category.ID),
		slog.String("brand_id", category.BrandID),
		slog.String("slug", category.Slug),
	)

	return nil
}

// PublishCategoryDeleted publishes a category.deleted event.
func (p *Producer) PublishCategoryDeleted(ctx context.Context, id, brandID string) error {
	if err := p.publish(ctx, TopicCategoryDeleted, id, AggregateTypeCategory, DeletedData{ID: id, BrandID: brandID}); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published category.deleted event",
		slog.String("category_id", id),
		slog.String("brand_id", brandID),
	)

	return nil
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	if err := p.publish(ctx, TopicProductCreated, product.ID, AggregateTypeProduct, newProductData(product)); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published product.created event",
		slog.String("product_id", product.ID),
		slog.String("brand_id", product.BrandID),
		slog.String("slug", product.Slug),
	)

	return nil
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	if err := p.publish(ctx, TopicProductUpdated, product.ID, AggregateTypeProduct, newProductData(product)); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published product.updated event",
		slog.String("product_id", product.ID),
		slog.String("brand_id", product.BrandID),
		slog.String("slug", product.Slug),
	)

	return nil
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, id, brandID string) error {
	if err := p.publish(ctx, TopicProductDeleted, id, AggregateTypeProduct, DeletedData{ID: id, BrandID: brandID}); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published product.deleted event",
		slog.String("product_id", id),
		slog.String("brand_id", brandID),
	)

	return nil
}
