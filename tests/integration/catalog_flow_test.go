package integration

import (
	"net/http"
	"testing"
)

// TestCatalogCRUDFlow walks the full catalog lifecycle as an admin: brand,
// category, product, storefront visibility, deactivation, and cleanup.
func TestCatalogCRUDFlow(t *testing.T) {
	token := loginSeedAdmin(t)

	// 1. Create a brand.
	brandName := uniqueName("flow-brand")
	status, brand := httpPostWithAuth(t, apiBase()+"/api/brands", map[string]interface{}{
		"name": brandName,
	}, token)
	requireStatus(t, status, http.StatusCreated)
	brandID := extractString(t, brand, "id")
	brandSlug := extractString(t, brand, "slug")
	t.Logf("created brand %s (id=%s slug=%s)", brandName, brandID, brandSlug)

	// 2. Create a category under the brand.
	status, category := httpPostWithAuth(t, apiBase()+"/api/categories", map[string]interface{}{
		"name":     uniqueName("flow-cat"),
		"brand_id": brandID,
	}, token)
	requireStatus(t, status, http.StatusCreated)
	categoryID := extractString(t, category, "id")

	// 3. Create a product.
	sku := uniqueSKU("FLW")
	status, product := httpPostWithAuth(t, apiBase()+"/api/products", map[string]interface{}{
		"name":        uniqueName("flow-product"),
		"sku":         sku,
		"description": "integration flow product",
		"brand_id":    brandID,
		"category_id": categoryID,
		"price":       "149.90",
		"stock":       25,
	}, token)
	requireStatus(t, status, http.StatusCreated)
	productID := extractString(t, product, "id")
	if extractString(t, product, "slug") == "" {
		t.Fatal("expected a generated product slug")
	}

	// 4. Read it back.
	status, got := httpGetWithAuth(t, apiBase()+"/api/products/"+productID, token)
	requireStatus(t, status, http.StatusOK)
	if extractString(t, got, "sku") != sku {
		t.Fatalf("expected sku %s, got %v", sku, got["sku"])
	}

	// 5. Find it via search.
	status, page := httpGetWithAuth(t, apiBase()+"/api/products?search="+sku, token)
	requireStatus(t, status, http.StatusOK)
	if n := extractFloat(t, page, "count"); n < 1 {
		t.Fatalf("expected search to find the product, count=%v", n)
	}

	// 6. Partial update: price and stock.
	status, updated := httpPatchWithAuth(t, apiBase()+"/api/products/"+productID, map[string]interface{}{
		"price": "159.90",
		"stock": 40,
	}, token)
	requireStatus(t, status, http.StatusOK)
	if s := extractFloat(t, updated, "stock"); s != 40 {
		t.Fatalf("expected stock 40 after update, got %v", s)
	}

	// 7. The storefront lists the product with the public projection.
	status, publicPage := httpGet(t, apiBase()+"/api/public/products?brand="+brandSlug)
	requireStatus(t, status, http.StatusOK)
	var listed map[string]interface{}
	for _, item := range resultsOf(t, publicPage) {
		m, _ := item.(map[string]interface{})
		if m != nil && m["id"] == productID {
			listed = m
			break
		}
	}
	if listed == nil {
		t.Fatalf("expected product %s in the public listing", productID)
	}
	if price := extractString(t, listed, "price"); price != "159.90" {
		t.Errorf("expected public price 159.90, got %q", price)
	}
	if _, leaked := listed["sku"]; leaked {
		t.Error("public projection must not expose the SKU")
	}
	if _, leaked := listed["stock"]; leaked {
		t.Error("public projection must not expose the stock")
	}

	// 8. Public detail works while active.
	status, _ = httpGet(t, apiBase()+"/api/public/products/"+productID)
	requireStatus(t, status, http.StatusOK)

	// 9. Deactivating hides it from the storefront.
	status, _ = httpPatchWithAuth(t, apiBase()+"/api/products/"+productID, map[string]interface{}{
		"is_active": false,
	}, token)
	requireStatus(t, status, http.StatusOK)

	status, _ = httpGet(t, apiBase()+"/api/public/products/"+productID)
	requireStatus(t, status, http.StatusNotFound)

	// 10. Cleanup bottom-up.
	status, _ = httpDeleteWithAuth(t, apiBase()+"/api/products/"+productID, token)
	requireStatus(t, status, http.StatusNoContent)
	status, _ = httpGetWithAuth(t, apiBase()+"/api/products/"+productID, token)
	requireStatus(t, status, http.StatusNotFound)

	status, _ = httpDeleteWithAuth(t, apiBase()+"/api/categories/"+categoryID, token)
	requireStatus(t, status, http.StatusNoContent)
	status, _ = httpDeleteWithAuth(t, apiBase()+"/api/brands/"+brandID, token)
	requireStatus(t, status, http.StatusNoContent)
}

// TestManagerScope verifies that a brand manager stays inside their brand:
// no brand writes, implicit ownership on create, no reads across brands.
func TestManagerScope(t *testing.T) {
	adminToken := loginSeedAdmin(t)
	managerToken, manager := loginAs(t, seedManagerEmail, seedManagerPassword)

	managerBrand, _ := extractField(manager, "brand_id").(string)
	if managerBrand == "" {
		t.Skip("seed manager has no brand attached")
	}

	// Managers cannot create brands.
	status, data := httpPostWithAuth(t, apiBase()+"/api/brands", map[string]interface{}{
		"name": uniqueName("scope-brand"),
	}, managerToken)
	requireStatus(t, status, http.StatusForbidden)
	if code := extractString(t, data, "error.code"); code != "FORBIDDEN" {
		t.Errorf("expected FORBIDDEN, got %q", code)
	}

	// An admin-created brand is invisible to the manager.
	status, other := httpPostWithAuth(t, apiBase()+"/api/brands", map[string]interface{}{
		"name": uniqueName("scope-other"),
	}, adminToken)
	requireStatus(t, status, http.StatusCreated)
	otherID := extractString(t, other, "id")

	status, _ = httpGetWithAuth(t, apiBase()+"/api/brands/"+otherID, managerToken)
	requireStatus(t, status, http.StatusNotFound)

	// Creating without brand_id lands in the manager's own brand.
	status, category := httpPostWithAuth(t, apiBase()+"/api/categories", map[string]interface{}{
		"name": uniqueName("scope-cat"),
	}, managerToken)
	requireStatus(t, status, http.StatusCreated)
	if owner := extractString(t, category, "brand_id"); owner != managerBrand {
		t.Fatalf("expected category under manager brand %s, got %s", managerBrand, owner)
	}
	categoryID := extractString(t, category, "id")

	status, product := httpPostWithAuth(t, apiBase()+"/api/products", map[string]interface{}{
		"name":        uniqueName("scope-product"),
		"sku":         uniqueSKU("SCP"),
		"category_id": categoryID,
		"price":       "10.00",
		"stock":       1,
	}, managerToken)
	requireStatus(t, status, http.StatusCreated)
	if owner := extractString(t, product, "brand_id"); owner != managerBrand {
		t.Fatalf("expected product under manager brand %s, got %s", managerBrand, owner)
	}
	productID := extractString(t, product, "id")

	// Cleanup: the manager removes their rows, the admin removes the brand.
	status, _ = httpDeleteWithAuth(t, apiBase()+"/api/products/"+productID, managerToken)
	requireStatus(t, status, http.StatusNoContent)
	status, _ = httpDeleteWithAuth(t, apiBase()+"/api/categories/"+categoryID, managerToken)
	requireStatus(t, status, http.StatusNoContent)
	status, _ = httpDeleteWithAuth(t, apiBase()+"/api/brands/"+otherID, adminToken)
	requireStatus(t, status, http.StatusNoContent)
}

// TestCatalogValidation verifies the error envelope for common bad requests.
func TestCatalogValidation(t *testing.T) {
	token := loginSeedAdmin(t)

	// Unauthenticated access is rejected.
	status, _ := httpGet(t, apiBase()+"/api/products")
	requireStatus(t, status, http.StatusUnauthorized)

	// Malformed UUID in the path.
	status, data := httpGetWithAuth(t, apiBase()+"/api/products/not-a-uuid", token)
	requireStatus(t, status, http.StatusBadRequest)
	if code := extractString(t, data, "error.code"); code != "INVALID_PARAMETER" {
		t.Errorf("expected INVALID_PARAMETER, got %q", code)
	}

	// Negative price is rejected by input validation.
	status, data = httpPostWithAuth(t, apiBase()+"/api/products", map[string]interface{}{
		"name":  uniqueName("bad-product"),
		"sku":   uniqueSKU("BAD"),
		"price": "-1.00",
	}, token)
	requireStatus(t, status, http.StatusBadRequest)
	if code := extractString(t, data, "error.code"); code != "INVALID_INPUT" {
		t.Errorf("expected INVALID_INPUT, got %q", code)
	}
}
