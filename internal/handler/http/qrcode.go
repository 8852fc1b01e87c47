package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mresitgokce1/inventory-multi-brand-api/internal/domain"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/service"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/httputil"
)

// QRCodeHandler handles QR code generation for products and the public
// short link resolution endpoint.
type QRCodeHandler struct {
	service *service.QRCodeService
	urls    ImageURLResolver
	logger  *slog.Logger
}

// NewQRCodeHandler creates a new QR code HTTP handler.
func NewQRCodeHandler(svc *service.QRCodeService, urls ImageURLResolver, logger *slog.Logger) *QRCodeHandler {
	return &QRCodeHandler{service: svc, urls: urls, logger: logger}
}

// --- Request DTOs ---

// QRCodeRequest is the optional JSON body for the QR code endpoint. An
// empty body renders the existing code with defaults.
type QRCodeRequest struct {
	Regenerate bool   `json:"regenerate"`
	Size       int    `json:"size"`
	Format     string `json:"format"`
}

// --- Response shapes ---

type qrProductPayload struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Description string       `json:"description"`
	Price       string       `json:"price"`
	ImageSmall  *string      `json:"image_small"`
	Brand       *brandRef    `json:"brand"`
	Category    *categoryRef `json:"category"`
}

type qrPrivatePayload struct {
	SKU      string `json:"sku"`
	Stock    int    `json:"stock"`
	IsActive bool   `json:"is_active"`
}

type qrResolveResponse struct {
	Visibility string            `json:"visibility"`
	Product    qrProductPayload  `json:"product_public"`
	Private    *qrPrivatePayload `json:"product_private,omitempty"`
}

// Generate handles POST /api/products/{id}/qr-code. The first call
// allocates the product's short code; regenerate swaps it for a new one.
func (h *QRCodeHandler) Generate(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req QRCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeInvalidBody(w, err)
		return
	}

	actor := actorFromContext(r.Context())
	opts := service.QRRenderOptions{Size: req.Size, Format: req.Format}

	var image *domain.QRCodeImage
	var err error
	if req.Regenerate {
		image, err = h.service.Regenerate(r.Context(), actor, id.String(), opts)
	} else {
		image, err = h.service.Generate(r.Context(), actor, id.String(), opts)
	}
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, image)
}

// Resolve handles GET /api/public/qr/{code}. Anonymous callers get the
// public projection; admins and same-brand managers also get the private
// section.
func (h *QRCodeHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	resolution, err := h.service.Resolve(r.Context(), actorPtrFromContext(r.Context()), code)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	response := qrResolveResponse{
		Visibility: resolution.Visibility,
		Product:    h.qrProduct(resolution.Product),
	}
	if resolution.Private != nil {
		response.Private = &qrPrivatePayload{
			SKU:      resolution.Private.SKU,
			Stock:    resolution.Private.Stock,
			IsActive: resolution.Private.IsActive,
		}
	}

	httputil.WriteJSON(w, http.StatusOK, response)
}

func (h *QRCodeHandler) qrProduct(detail *domain.ProductDetail) qrProductPayload {
	payload := qrProductPayload{
		ID:          detail.ID,
		Name:        detail.Name,
		Slug:        detail.Slug,
		Description: detail.Description,
		Price:       detail.Price.StringFixed(2),
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
