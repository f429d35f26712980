package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shuvo-2525/duedateuk/internal/registry"
)

func newRegistryRouter(client *registry.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/company/:number", NewRegistryHandler(client).Lookup)
	return r
}

func TestProxyMissingAPIKey(t *testing.T) {
	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer upstream.Close()

	r := newRegistryRouter(registry.NewClient(upstream.URL, "", time.Second))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/company/08445345", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Server configuration error: Missing API Key" {
		t.Errorf("error: %q", body["error"])
	}
	if calls.Load() != 0 {
		t.Errorf("upstream was called %d times", calls.Load())
	}
}

func TestProxyNotFound(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer upstream.Close()

	r := newRegistryRouter(registry.NewClient(upstream.URL, "key", time.Second))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/company/99999999", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Company not found" {
		t.Errorf("error: %q", body["error"])
	}
}

func TestProxyUpstreamFailurePassesStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()

	r := newRegistryRouter(registry.NewClient(upstream.URL, "key", time.Second))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/company/1", nil))

	if w.Code != http.StatusBadGateway {
		t.Fatalf("got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Failed to fetch data from Companies House" {
		t.Errorf("error: %q", body["error"])
	}
}

func TestProxySuccessMergesPayload(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"company_name": "TECH SOLUTIONS LTD",
			"company_number": "08445345",
			"company_status": "active",
			"accounts": {"next_due": "2025-12-01"},
			"confirmation_statement": {"next_made_up_to": "2025-06-01"},
			"registered_office_address": {"locality": "London"},
			"type": "ltd"
		}`))
	}))
	defer upstream.Close()

	r := newRegistryRouter(registry.NewClient(upstream.URL, "key", time.Second))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/company/08445345", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got %d body %s", w.Code, w.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["companyName"] != "TECH SOLUTIONS LTD" || body["companyNumber"] != "08445345" || body["status"] != "active" {
		t.Errorf("mapped fields: %v", body)
	}
	if body["accountsNextDue"] != "2025-12-01" {
		t.Errorf("accountsNextDue: %v", body["accountsNextDue"])
	}
	if body["confirmationStatementNextDue"] != "2025-06-01" {
		t.Errorf("confirmationStatementNextDue: %v", body["confirmationStatementNextDue"])
	}
	// Full-detail variant: raw upstream fields ride along.
	if _, ok := body["registered_office_address"]; !ok {
		t.Errorf("raw field missing: %v", body)
	}
	if body["type"] != "ltd" {
		t.Errorf("raw field: %v", body["type"])
	}
}
