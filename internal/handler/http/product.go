package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mresitgokce1/inventory-multi-brand-api/internal/domain"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/repository"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/service"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/httputil"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/pagination"
)

// multipartMemory bounds how much of a multipart body is held in memory
// before spilling to temp files.
const multipartMemory = 32 << 20

// ProductHandler handles HTTP requests for product management. Create and
// Update accept either JSON or multipart/form-data; the multipart form may
// carry the product image under the "image" field.
type ProductHandler struct {
	service        *service.ProductService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, maxUploadBytes int64, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service:        svc,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Create handles POST /api/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input *domain.CreateProductInput
	if isMultipart(r) {
		// Allow 1MB of form overhead on top of the image size limit.
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)
		parsed, ok := h.createInputFromForm(w, r)
		if !ok {
			return
		}
		input = parsed
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		var body domain.CreateProductInput
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeInvalidBody(w, err)
			return
		}
		input = &body
	}

	product, err := h.service.CreateProduct(r.Context(), actorFromContext(r.Context()), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, product)
}

// List handles GET /api/products. Supports category, is_active, min_price,
// max_price, brand, search and ordering query parameters; brand managers
// are always scoped to their own brand.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := repository.ProductFilter{
		Page:     params.Page,
		PageSize: params.PageSize,
	}

	q := r.URL.Query()
	if v := q.Get("brand"); v != "" {
		filter.BrandID = &v
	}
	if v := q.Get("category"); v != "" {
		filter.CategoryID = &v
	}
	if v := q.Get("is_active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			writeBadRequest(w, "INVALID_PARAMETER", "invalid is_active: must be a boolean")
			return
		}
		filter.IsActive = &active
	}
	if !parsePriceRange(w, q.Get("min_price"), q.Get("max_price"), &filter) {
		return
	}
	if v := q.Get("search"); v != "" {
		filter.Search = &v
	}
	filter.OrderBy, filter.OrderDesc = parseOrdering(q.Get("ordering"), productOrderFields, "created_at", true)

	products, total, err := h.service.ListProducts(r.Context(), actorFromContext(r.Context()), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewPage(r, products, total, params))
}

// Get handles GET /api/products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), actorFromContext(r.Context()), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, product)
}

// Update handles PUT and PATCH /api/products/{id}. In multipart form, a
// present but empty category_id clears the category while an absent field
// leaves it unchanged.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var input *domain.UpdateProductInput
	if isMultipart(r) {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)
		parsed, ok := h.updateInputFromForm(w, r)
		if !ok {
			return
		}
		input = parsed
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		var body domain.UpdateProductInput
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeInvalidBody(w, err)
			return
		}
		input = &body
	}

	product, err := h.service.UpdateProduct(r.Context(), actorFromContext(r.Context()), id.String(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), actorFromContext(r.Context()), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteNoContent(w)
}

// --- Form parsing ---

func (h *ProductHandler) createInputFromForm(w http.ResponseWriter, r *http.Request) (*domain.CreateProductInput, bool) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeBadRequest(w, "INVALID_INPUT", "invalid multipart form: "+err.Error())
		return nil, false
	}

	input := &domain.CreateProductInput{
		Name:        r.FormValue("name"),
		SKU:         r.FormValue("sku"),
		Description: r.FormValue("description"),
	}
	if v := r.FormValue("slug"); v != "" {
		input.Slug = &v
	}
	if v := r.FormValue("brand_id"); v != "" {
		input.BrandID = &v
	}
	if v := r.FormValue("category_id"); v != "" {
		input.CategoryID = &v
	}
	if v := r.FormValue("price"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil {
			writeBadRequest(w, "INVALID_PARAMETER", "invalid price: must be a decimal number")
			return nil, false
		}
		input.Price = price
	}
	if v := r.FormValue("stock"); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil {
			writeBadRequest(w, "INVALID_PARAMETER", "invalid stock: must be an integer")
			return nil, false
		}
		input.Stock = stock
	}
	if v := r.FormValue("is_active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			writeBadRequest(w, "INVALID_PARAMETER", "invalid is_active: must be a boolean")
			return nil, false
		}
		input.IsActive = &active
	}

	image, ok := readUploadedImage(w, r)
	if !ok {
		return nil, false
	}
	if image != nil {
		input.ImageData = image.data
		input.ImageName = image.name
	}
	return input, true
}

func (h *ProductHandler) updateInputFromForm(w http.ResponseWriter, r *http.Request) (*domain.UpdateProductInput, bool) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeBadRequest(w, "INVALID_INPUT", "invalid multipart form: "+err.Error())
		return nil, false
	}

	input := &domain.UpdateProductInput{}
	form := r.MultipartForm.Value
	if v, ok := formValue(form, "name"); ok {
		input.Name = &v
	}
	if v, ok := formValue(form, "slug"); ok {
		input.Slug = &v
	}
	if v, ok := formValue(form, "sku"); ok {
		input.SKU = &v
	}
	if v, ok := formValue(form, "description"); ok {
		input.Description = &v
	}
	if v, ok := formValue(form, "category_id"); ok {
		input.CategoryID = &v
	}
	if v, ok := formValue(form, "price"); ok {
		price, err := decimal.NewFromString(v)
		if err != nil {
			writeBadRequest(w, "INVALID_PARAMETER", "invalid price: must be a decimal number")
			return nil, false
		}
		input.Price = &price
	}
	if v, ok := formValue(form, "stock"); ok {
		stock, err := strconv.Atoi(v)
		if err != nil {
			writeBadRequest(w, "INVALID_PARAMETER", "invalid stock: must be an integer")
			return nil, false
		}
		input.Stock = &stock
	}
	if v, ok := formValue(form, "is_active"); ok {
		active, err := strconv.ParseBool(v)
		if err != nil {
			writeBadRequest(w, "INVALID_PARAMETER", "invalid is_active: must be a boolean")
			return nil, false
		}
		input.IsActive = &active
	}

	image, ok := readUploadedImage(w, r)
	if !ok {
		return nil, false
	}
	if image != nil {
		input.ImageData = image.data
		input.ImageName = image.name
	}
	return input, true
}

// parsePriceRange fills MinPrice and MaxPrice on the filter. Returns false
// after writing a 400 when a bound does not parse or the range is inverted.
func parsePriceRange(w http.ResponseWriter, minRaw, maxRaw string, filter *repository.ProductFilter) bool {
	if minRaw != "" {
		price, err := decimal.NewFromString(minRaw)
		if err != nil {
			writeBadRequest(w, "INVALID_PARAMETER", "invalid min_price: must be a decimal number")
			return false
		}
		filter.MinPrice = &price
	}
	if maxRaw != "" {
		price, err := decimal.NewFromString(maxRaw)
		if err != nil {
			writeBadRequest(w, "INVALID_PARAMETER", "invalid max_price: must be a decimal number")
			return false
		}
		filter.MaxPrice = &price
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		writeBadRequest(w, "INVALID_PARAMETER", "min_price must not exceed max_price")
		return false
	}
	return true
}

type uploadedImage struct {
	data []byte
	name string
}

// readUploadedImage pulls the optional "image" file out of a parsed
// multipart form. Returns (nil, true) when no file was sent; false means a
// response has already been written.
func readUploadedImage(w http.ResponseWriter, r *http.Request) (*uploadedImage, bool) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, true
		}
		writeBadRequest(w, "INVALID_PARAMETER", "invalid image upload: "+err.Error())
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeBadRequest(w, "INVALID_PARAMETER", "failed to read image upload: "+err.Error())
		return nil, false
	}
	return &uploadedImage{data: data, name: header.Filename}, true
}

func formValue(form map[string][]string, key string) (string, bool) {
	values, ok := form[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}
