package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mresitgokce1/inventory-multi-brand-api/internal/domain"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/repository"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/service"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/httputil"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/pagination"
)

// BrandHandler handles HTTP requests for brand management.
type BrandHandler struct {
	service *service.BrandService
	logger  *slog.Logger
}

// NewBrandHandler creates a new brand HTTP handler.
func NewBrandHandler(svc *service.BrandService, logger *slog.Logger) *BrandHandler {
	return &BrandHandler{service: svc, logger: logger}
}

// Create handles POST /api/brands.
func (h *BrandHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var input domain.CreateBrandInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeInvalidBody(w, err)
		return
	}

	brand, err := h.service.CreateBrand(r.Context(), actorFromContext(r.Context()), &input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, brand)
}

// List handles GET /api/brands. Brand managers only ever see their own
// brand regardless of filters.
func (h *BrandHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := repository.BrandFilter{
		Page:     params.Page,
		PageSize: params.PageSize,
	}

	brands, total, err := h.service.ListBrands(r.Context(), actorFromContext(r.Context()), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewPage(r, brands, total, params))
}

// Get handles GET /api/brands/{id}.
func (h *BrandHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	brand, err := h.service.GetBrand(r.Context(), actorFromContext(r.Context()), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, brand)
}

// Update handles PUT and PATCH /api/brands/{id}.
func (h *BrandHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var input domain.UpdateBrandInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeInvalidBody(w, err)
		return
	}

	brand, err := h.service.UpdateBrand(r.Context(), actorFromContext(r.Context()), id.String(), &input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, brand)
}

// Delete handles DELETE /api/brands/{id}.
func (h *BrandHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteBrand(r.Context(), actorFromContext(r.Context()), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteNoContent(w)
}
