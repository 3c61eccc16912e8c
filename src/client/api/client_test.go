package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func envelope(data any) map[string]any {
	return map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": "2026-01-01T00:00:00Z",
	}
}

func newEnvelopeServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "", 5)
}

func TestHealth(t *testing.T) {
	client := newEnvelopeServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/healthz" {
			t.Errorf("Expected /api/v1/healthz, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(envelope(map[string]any{
			"status":  "healthy",
			"version": "2.4.1",
			"checks":  map[string]string{"cores": "ok"},
		}))
	})

	health, err := client.Health()
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("Expected healthy, got %s", health.Status)
	}
	if health.Checks["cores"] != "ok" {
		t.Errorf("Expected cores check ok, got %v", health.Checks)
	}
}

func TestReadSendsOperationAndParams(t *testing.T) {
	client := newEnvelopeServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/phantom-cores/cve" {
			t.Errorf("Expected core path, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("operation") != "lookup" {
			t.Errorf("Expected operation=lookup, got %s", q.Get("operation"))
		}
		if q.Get("cve_id") != "CVE-2024-3094" {
			t.Errorf("Expected cve_id param, got %s", q.Get("cve_id"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(envelope(map[string]any{"found": true}))
	})

	env, err := client.Read("cve", "lookup", map[string]string{"cve_id": "CVE-2024-3094"})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !env.Success {
		t.Error("Expected success envelope")
	}
}

func TestWriteSendsBearerToken(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	client := newEnvelopeServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(envelope(map[string]any{"ok": true}))
	})
	client.Token = "secret"

	_, err := client.Write("hunting", "create-hunt", map[string]any{"name": "sweep"})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Expected bearer token, got %q", gotAuth)
	}
	if gotBody["operation"] != "create-hunt" {
		t.Errorf("Expected operation in body, got %v", gotBody)
	}
	if gotBody["name"] != "sweep" {
		t.Errorf("Expected name in body, got %v", gotBody)
	}
}

func TestErrorEnvelopeBecomesAPIError(t *testing.T) {
	client := newEnvelopeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"success":              false,
			"error":                "Unknown operation: frobnicate",
			"error_code":           "UNKNOWN_OPERATION",
			"available_operations": []string{"status", "lookup"},
			"timestamp":            "2026-01-01T00:00:00Z",
		})
	})

	_, err := client.Read("cve", "frobnicate", nil)
	if err == nil {
		t.Fatal("Expected error for failed envelope")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T", err)
	}
	if apiErr.Code != "UNKNOWN_OPERATION" {
		t.Errorf("Expected UNKNOWN_OPERATION, got %s", apiErr.Code)
	}
	if len(apiErr.AvailableOperations) != 2 {
		t.Errorf("Expected available operations, got %v", apiErr.AvailableOperations)
	}
}

func TestListProjectsPagination(t *testing.T) {
	client := newEnvelopeServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("limit") != "5" || q.Get("status") != "active" {
			t.Errorf("Unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(envelope(map[string]any{
			"items": []map[string]any{{"id": "p1", "name": "Alpha", "status": "active"}},
			"pagination": map[string]any{
				"page": 2, "limit": 5, "total": 6, "total_pages": 2, "has_more": false,
			},
		}))
	})

	list, err := client.ListProjects(2, 5, "active")
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(list.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(list.Items))
	}
	if list.Pagination.Total != 6 {
		t.Errorf("Expected total 6, got %d", list.Pagination.Total)
	}
}

func TestNonJSONErrorIsTransportError(t *testing.T) {
	client := newEnvelopeServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := client.Read("cve", "", nil)
	if err == nil {
		t.Fatal("Expected error for non-JSON failure")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Error("Expected plain transport error, got APIError")
	}
}
