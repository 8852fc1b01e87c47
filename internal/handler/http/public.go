package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mresitgokce1/inventory-multi-brand-api/internal/domain"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/repository"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/service"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/httputil"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/pagination"
)

// ImageURLResolver maps stored image keys to their public URLs.
type ImageURLResolver interface {
	URL(key string) string
}

// PublicHandler handles the unauthenticated storefront endpoints. Only
// active products are visible and responses carry the public projection.
type PublicHandler struct {
	service *service.ProductService
	urls    ImageURLResolver
	logger  *slog.Logger
}

// NewPublicHandler creates a new public catalog HTTP handler.
func NewPublicHandler(svc *service.ProductService, urls ImageURLResolver, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{service: svc, urls: urls, logger: logger}
}

// --- Response shapes ---

type brandRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type categoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// publicProductPayload is the storefront projection of a product. Price is
// serialized with two decimal places.
type publicProductPayload struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Slug       string       `json:"slug"`
	Price      string       `json:"price"`
	ImageSmall *string      `json:"image_small"`
	Brand      *brandRef    `json:"brand"`
	Category   *categoryRef `json:"category"`
}

// ListProducts handles GET /api/public/products. Supports brand (slug),
// category (id or slug), min_price, max_price, search and ordering query
// parameters.
func (h *PublicHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := repository.ProductFilter{
		Page:     params.Page,
		PageSize: params.PageSize,
	}

	q := r.URL.Query()
	var brandSlug *string
	if v := q.Get("brand"); v != "" {
		brandSlug = &v
	}
	if v := q.Get("category"); v != "" {
		if _, err := uuid.Parse(v); err == nil {
			filter.CategoryID = &v
		} else {
			filter.CategorySlug = &v
		}
	}
	if !parsePriceRange(w, q.Get("min_price"), q.Get("max_price"), &filter) {
		return
	}
	if v := q.Get("search"); v != "" {
		filter.Search = &v
	}
	filter.OrderBy, filter.OrderDesc = parseOrdering(q.Get("ordering"), publicProductOrderFields, "created_at", true)

	details, total, err := h.service.PublicListProductDetails(r.Context(), filter, brandSlug)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	results := make([]publicProductPayload, len(details))
	for i := range details {
		results[i] = h.publicPayload(&details[i])
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewPage(r, results, total, params))
}

// GetProduct handles GET /api/public/products/{id}. Inactive products read
// as not found.
func (h *PublicHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	detail, err := h.service.PublicGetProduct(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, h.publicPayload(detail))
}

func (h *PublicHandler) publicPayload(detail *domain.ProductDetail) publicProductPayload {
	payload := publicProductPayload{
		ID:    detail.ID,
		Name:  detail.Name,
		Slug:  detail.Slug,
		Price: detail.Price.StringFixed(2),
	}
	if detail.ImageSmall != nil {
		url := h.urls.URL(*detail.ImageSmall)
		payload.ImageSmall = &url
	}
	if detail.Brand != nil {
		payload.Brand = &brandRef{ID: detail.Brand.ID, Name: detail.Brand.Name, Slug: detail.Brand.Slug}
	}
	if detail.Category != nil {
		payload.Category = &categoryRef{ID: detail.Category.ID, Name: detail.Category.Name, Slug: detail.Category.Slug}
	}
	return payload
}
