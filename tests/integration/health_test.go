package integration

import (
	"net/http"
	"testing"
	"time"
)

// TestLiveness checks that the liveness endpoint answers 200 while the
// process is up, regardless of dependency state.
func TestLiveness(t *testing.T) {
	skipIfNotRunning(t)

	status, data := httpGet(t, apiBase()+"/healthz")
	requireStatus(t, status, http.StatusOK)

	if s := extractString(t, data, "status"); s != "up" {
		t.Errorf("expected liveness status %q, got %q", "up", s)
	}
}

// TestReadiness checks the readiness endpoint. 200 covers both fully up and
// degraded (non-critical dependency down); only a critical failure is 503.
func TestReadiness(t *testing.T) {
	skipIfNotRunning(t)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(apiBase() + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 200 or 503 from /readyz, got %d", resp.StatusCode)
	}
	if resp.StatusCode == http.StatusServiceUnavailable {
		t.Log("readiness reports a critical dependency down")
	}
}

// TestMetricsExposed checks that the Prometheus endpoint serves text metrics.
func TestMetricsExposed(t *testing.T) {
	skipIfNotRunning(t)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(apiBase() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()

	requireStatus(t, resp.StatusCode, http.StatusOK)
}

// TestOpenAPISchemaServed checks that the schema endpoint returns an OpenAPI
// document.
func TestOpenAPISchemaServed(t *testing.T) {
	skipIfNotRunning(t)

	status, data := httpGet(t, apiBase()+"/api/schema")
	requireStatus(t, status, http.StatusOK)

	if extractField(data, "openapi") == nil {
		t.Error("expected an openapi version field in the schema document")
	}
}
