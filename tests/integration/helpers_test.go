package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

// seedAdminEmail and seedAdminPassword match the credentials created by
// cmd/seed. The flow tests skip when the seed admin cannot log in.
const (
	seedAdminEmail      = "admin@inventory.test"
	seedAdminPassword   = "SecurePass123"
	seedManagerEmail    = "acme@inventory.test"
	seedManagerPassword = "SecurePass123"
)

// apiBase returns the base URL of the API under test. Defaults to the local
// dev server; override with API_BASE_URL.
func apiBase() string {
	if v := os.Getenv("API_BASE_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://localhost:8080"
}

// uniqueName generates a unique resource name to avoid collisions between
// test runs against the same database.
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), rand.Intn(100000))
}

// uniqueSKU generates a unique SKU for product creation.
func uniqueSKU(prefix string) string {
	return fmt.Sprintf("%s-%d", strings.ToUpper(prefix), time.Now().UnixNano()%1_000_000_000)
}

// skipIfNotRunning performs a quick liveness check against the API.
// If it is unreachable, the test is skipped (not failed).
func skipIfNotRunning(t *testing.T) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(apiBase() + "/healthz")
	if err != nil {
		t.Skipf("API at %s not reachable (server not running?): %v", apiBase(), err)
	}
	resp.Body.Close()
}

// loginAs logs in with the given credentials and returns the access token
// and the user object from the response. Skips the test when the login
// fails, which usually means cmd/seed has not been run.
func loginAs(t *testing.T, email, password string) (string, map[string]interface{}) {
	t.Helper()
	skipIfNotRunning(t)

	status, data := httpPost(t, apiBase()+"/api/auth/login", map[string]interface{}{
		"email":    email,
		"password": password,
	})
	if status != http.StatusOK {
		t.Skipf("login as %s returned %d (run cmd/seed first?): %v", email, status, data)
	}

	token := extractString(t, data, "access")
	user, _ := extractField(data, "user").(map[string]interface{})
	if user == nil {
		t.Fatalf("expected user object in login response, got: %v", data)
	}
	return token, user
}

// loginSeedAdmin logs in as the seeded admin user.
func loginSeedAdmin(t *testing.T) string {
	t.Helper()
	token, _ := loginAs(t, seedAdminEmail, seedAdminPassword)
	return token
}

// httpGet performs an HTTP GET request and returns the status code and decoded JSON body.
func httpGet(t *testing.T, url string) (int, map[string]interface{}) {
	t.Helper()
	return doJSONRequest(t, http.MethodGet, url, nil, "")
}

// httpGetWithAuth performs an HTTP GET request with a Bearer token.
func httpGetWithAuth(t *testing.T, url, token string) (int, map[string]interface{}) {
	t.Helper()
	return doJSONRequest(t, http.MethodGet, url, nil, token)
}

// httpPost performs an HTTP POST request with a JSON body.
func httpPost(t *testing.T, url string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	return doJSONRequest(t, http.MethodPost, url, body, "")
}

// httpPostWithAuth performs an HTTP POST request with a JSON body and Bearer token.
func httpPostWithAuth(t *testing.T, url string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()
	return doJSONRequest(t, http.MethodPost, url, body, token)
}

// httpPatchWithAuth performs an HTTP PATCH request with a JSON body and Bearer token.
func httpPatchWithAuth(t *testing.T, url string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()
	return doJSONRequest(t, http.MethodPatch, url, body, token)
}

// httpDeleteWithAuth performs an HTTP DELETE request with a Bearer token.
func httpDeleteWithAuth(t *testing.T, url, token string) (int, map[string]interface{}) {
	t.Helper()
	return doJSONRequest(t, http.MethodDelete, url, nil, token)
}

// doJSONRequest is the internal helper for JSON HTTP requests.
func doJSONRequest(t *testing.T, method, url string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshalling request body failed: %v", err)
		}
		bodyReader = bytes.NewReader(jsonBytes)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		t.Fatalf("creating %s request for %s failed: %v", method, url, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, decodeBody(t, resp.Body)
}

// decodeBody reads the response body and attempts to decode it as JSON.
// If the body is empty or not JSON, it returns an empty or raw-keyed map.
func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("reading response body failed: %v", err)
	}
	if len(raw) == 0 {
		return map[string]interface{}{}
	}
	var result map[string]interface{}
	if err := json.Unmarshal(raw, &result); err != nil {
		// Not a JSON object; keep the raw text for debugging.
		return map[string]interface{}{"raw": string(raw)}
	}
	return result
}

// requireStatus asserts that the HTTP status code matches the expected value.
func requireStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Fatalf("expected status %d, got %d", want, got)
	}
}

// extractField extracts a value from a nested map using a dot-separated path.
// For example, extractField(data, "user.id") navigates data["user"]["id"].
func extractField(data map[string]interface{}, path string) interface{} {
	parts := strings.Split(path, ".")
	var current interface{} = data
	for _, part := range parts {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current, ok = m[part]
		if !ok {
			return nil
		}
	}
	return current
}

// extractString is a convenience wrapper around extractField that returns a string.
func extractString(t *testing.T, data map[string]interface{}, path string) string {
	t.Helper()
	val := extractField(data, path)
	if val == nil {
		t.Fatalf("expected string at path %q, got nil; body: %v", path, data)
	}
	s, ok := val.(string)
	if !ok {
		t.Fatalf("expected string at path %q, got %T: %v", path, val, val)
	}
	return s
}

// extractFloat is a convenience wrapper that returns a float64.
func extractFloat(t *testing.T, data map[string]interface{}, path string) float64 {
	t.Helper()
	val := extractField(data, path)
	if val == nil {
		t.Fatalf("expected number at path %q, got nil; body: %v", path, data)
	}
	f, ok := val.(float64)
	if !ok {
		t.Fatalf("expected float64 at path %q, got %T: %v", path, val, val)
	}
	return f
}

// resultsOf returns the results array of a paginated response.
func resultsOf(t *testing.T, data map[string]interface{}) []interface{} {
	t.Helper()
	results, ok := data["results"].([]interface{})
	if !ok {
		t.Fatalf("expected results array in response, got: %v", data)
	}
	return results
}
