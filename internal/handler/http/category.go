package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mresitgokce1/inventory-multi-brand-api/internal/domain"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/repository"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/service"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/httputil"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/pagination"
)

// CategoryHandler handles HTTP requests for category management.
type CategoryHandler struct {
	service *service.CategoryService
	logger  *slog.Logger
}

// NewCategoryHandler creates a new category HTTP handler.
func NewCategoryHandler(svc *service.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{service: svc, logger: logger}
}

// Create handles POST /api/categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var input domain.CreateCategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeInvalidBody(w, err)
		return
	}

	category, err := h.service.CreateCategory(r.Context(), actorFromContext(r.Context()), &input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, category)
}

// List handles GET /api/categories. Supports brand, is_active, name,
// search and ordering query parameters; brand managers are always scoped
// to their own brand.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := repository.CategoryFilter{
		Page:     params.Page,
		PageSize: params.PageSize,
	}

	q := r.URL.Query()
	if v := q.Get("brand"); v != "" {
		filter.BrandID = &v
	}
	if v := q.Get("is_active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			writeBadRequest(w, "INVALID_PARAMETER", "invalid is_active: must be a boolean")
			return
		}
		filter.IsActive = &active
	}
	if v := q.Get("name"); v != "" {
		filter.Name = &v
	}
	if v := q.Get("search"); v != "" {
		filter.Search = &v
	}
	filter.OrderBy, filter.OrderDesc = parseOrdering(q.Get("ordering"), categoryOrderFields, "name", false)

	categories, total, err := h.service.ListCategories(r.Context(), actorFromContext(r.Context()), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewPage(r, categories, total, params))
}

// Get handles GET /api/categories/{id}.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	category, err := h.service.GetCategory(r.Context(), actorFromContext(r.Context()), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, category)
}

// Update handles PUT and PATCH /api/categories/{id}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var input domain.UpdateCategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeInvalidBody(w, err)
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), actorFromContext(r.Context()), id.String(), &input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, category)
}

// Delete handles DELETE /api/categories/{id}.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(r.Context(), actorFromContext(r.Context()), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteNoContent(w)
}
