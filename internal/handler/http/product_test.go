package http

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mresitgokce1/inventory-multi-brand-api/internal/domain"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/repository"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/pagination"
)

func sampleProduct() *domain.Product {
	catID := categoryUUID
	return &domain.Product{
		ID:          productUUID,
		BrandID:     brandUUID,
		CategoryID:  &catID,
		Name:        "Cordless Drill",
		Slug:        "cordless-drill",
		SKU:         "DRL-100",
		Description: "18V cordless drill",
		Price:       decimal.RequireFromString("149.90"),
		Stock:       25,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
}

// pngBytes returns a minimal valid PNG so uploads survive image sniffing.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartBody(t *testing.T, fields map[string]string, fileName string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileData != nil {
		part, err := w.CreateFormFile("image", fileName)
		require.NoError(t, err)
		_, err = part.Write(fileData)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

// ============================================================================
// Create
// ============================================================================

func TestCreateProduct_JSONSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("SlugExists", mock.Anything, brandUUID, "cordless-drill", (*string)(nil)).Return(false, nil)
	env.products.On("Create", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)

	body := `{"name": "Cordless Drill", "sku": "DRL-100", "price": "149.90", "stock": 25}`
	req := authorize(jsonRequest(http.MethodPost, "/api/products", body), env.managerToken(t, brandUUID))
	rec := env.do(t, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var got domain.Product
	decodeBody(t, rec, &got)
	assert.Equal(t, brandUUID, got.BrandID)
	assert.Equal(t, "cordless-drill", got.Slug)
	assert.Equal(t, "DRL-100", got.SKU)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("149.90")))
	env.images.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateProduct_MultipartWithImage(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("SlugExists", mock.Anything, brandUUID, "cordless-drill", (*string)(nil)).Return(false, nil)
	env.products.On("Create", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)
	env.images.On("Process", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("[]uint8"))
	withImage := sampleProduct()
	imagePath := "products/" + productUUID + ".jpg"
	withImage.Image = &imagePath
	env.products.On("GetByID", mock.Anything, mock.AnythingOfType("string")).Return(withImage, nil)

	body, contentType := multipartBody(t, map[string]string{
		"name":  "Cordless Drill",
		"sku":   "DRL-100",
		"price": "149.90",
		"stock": "25",
	}, "drill.png", pngBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/api/products", body)
	req.Header.Set("Content-Type", contentType)
	rec := env.do(t, authorize(req, env.managerToken(t, brandUUID)))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var got domain.Product
	decodeBody(t, rec, &got)
	require.NotNil(t, got.Image)
	assert.Equal(t, imagePath, *got.Image)
	env.images.AssertExpectations(t)
}

func TestCreateProduct_NegativePrice(t *testing.T) {
	env := newTestEnv(t)

	body := `{"name": "Cordless Drill", "sku": "DRL-100", "price": "-5.00", "stock": 25}`
	req := authorize(jsonRequest(http.MethodPost, "/api/products", body), env.managerToken(t, brandUUID))
	rec := env.do(t, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "price must not be negative")
	env.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProduct_UndecodableImageRejected(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartBody(t, map[string]string{
		"name":  "Cordless Drill",
		"sku":   "DRL-100",
		"price": "149.90",
		"stock": "25",
	}, "drill.png", []byte("not-an-image"))
	req := httptest.NewRequest(http.MethodPost, "/api/products", body)
	req.Header.Set("Content-Type", contentType)
	rec := env.do(t, authorize(req, env.managerToken(t, brandUUID)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "unrecognized image data")
	env.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	env.images.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateProduct_CategoryFromOtherBrandRejected(t *testing.T) {
	env := newTestEnv(t)
	foreign := sampleCategory()
	foreign.BrandID = otherBrandUUID
	env.categories.On("GetByID", mock.Anything, categoryUUID).Return(foreign, nil)

	body := `{"name": "Cordless Drill", "sku": "DRL-100", "price": "149.90", "stock": 25, "category_id": "` + categoryUUID + `"}`
	req := authorize(jsonRequest(http.MethodPost, "/api/products", body), env.managerToken(t, brandUUID))
	rec := env.do(t, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "category must belong to the same brand")
}

// ============================================================================
// List
// ============================================================================

func TestListProducts_FilterParsing(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("List", mock.Anything, mock.MatchedBy(func(f repository.ProductFilter) bool {
		return f.CategoryID != nil && *f.CategoryID == categoryUUID &&
			f.IsActive != nil && *f.IsActive &&
			f.MinPrice != nil && f.MinPrice.Equal(decimal.NewFromInt(10)) &&
			f.MaxPrice != nil && f.MaxPrice.Equal(decimal.NewFromInt(500)) &&
			f.OrderBy == "price" && !f.OrderDesc
	})).Return([]domain.Product{*sampleProduct()}, 1, nil)

	target := "/api/products?category=" + categoryUUID + "&is_active=true&min_price=10&max_price=500&ordering=price"
	req := authorize(httptest.NewRequest(http.MethodGet, target, nil), env.adminToken(t))
	rec := env.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page pagination.Page[domain.Product]
	decodeBody(t, rec, &page)
	assert.Equal(t, 1, page.Count)
	env.products.AssertExpectations(t)
}

func TestListProducts_InvertedPriceRange(t *testing.T) {
	env := newTestEnv(t)

	req := authorize(httptest.NewRequest(http.MethodGet, "/api/products?min_price=500&max_price=10", nil), env.adminToken(t))
	rec := env.do(t, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "min_price must not exceed max_price")
	env.products.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestListProducts_BadMinPrice(t *testing.T) {
	env := newTestEnv(t)

	req := authorize(httptest.NewRequest(http.MethodGet, "/api/products?min_price=cheap", nil), env.adminToken(t))
	rec := env.do(t, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}

func TestListProducts_DefaultOrderingNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("List", mock.Anything, mock.MatchedBy(func(f repository.ProductFilter) bool {
		return f.OrderBy == "created_at" && f.OrderDesc
	})).Return([]domain.Product{}, 0, nil)

	req := authorize(httptest.NewRequest(http.MethodGet, "/api/products", nil), env.adminToken(t))
	rec := env.do(t, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env.products.AssertExpectations(t)
}

// ============================================================================
// Update / Delete
// ============================================================================

func TestUpdateProduct_ClearsCategory(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("GetByID", mock.Anything, productUUID).Return(sampleProduct(), nil)
	env.products.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.CategoryID == nil
	})).Return(nil)

	req := authorize(jsonRequest(http.MethodPatch, "/api/products/"+productUUID, `{"category_id": ""}`), env.managerToken(t, brandUUID))
	rec := env.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got domain.Product
	decodeBody(t, rec, &got)
	assert.Nil(t, got.CategoryID)
	env.categories.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestUpdateProduct_MultipartStockOnly(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("GetByID", mock.Anything, productUUID).Return(sampleProduct(), nil)
	env.products.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Stock == 40 && p.Name == "Cordless Drill"
	})).Return(nil)

	body, contentType := multipartBody(t, map[string]string{"stock": "40"}, "", nil)
	req := httptest.NewRequest(http.MethodPatch, "/api/products/"+productUUID, body)
	req.Header.Set("Content-Type", contentType)
	rec := env.do(t, authorize(req, env.managerToken(t, brandUUID)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got domain.Product
	decodeBody(t, rec, &got)
	assert.Equal(t, 40, got.Stock)
	env.images.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteProduct_RemovesStoredImages(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("GetByID", mock.Anything, productUUID).Return(sampleProduct(), nil)
	env.products.On("Delete", mock.Anything, productUUID).Return(nil)
	env.images.On("Remove", mock.Anything, productUUID)

	req := authorize(httptest.NewRequest(http.MethodDelete, "/api/products/"+productUUID, nil), env.managerToken(t, brandUUID))
	rec := env.do(t, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	env.images.AssertExpectations(t)
	env.products.AssertExpectations(t)
}
