package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"cve_id=CVE-2024-3094", "depth=full"})
	if err != nil {
		t.Fatalf("parseParams: %v", err)
	}
	if params["cve_id"] != "CVE-2024-3094" {
		t.Errorf("Expected cve_id value, got %v", params)
	}
	if params["depth"] != "full" {
		t.Errorf("Expected depth value, got %v", params)
	}

	if _, err := parseParams([]string{"noequals"}); err == nil {
		t.Error("Expected error for argument without =")
	}
	if _, err := parseParams([]string{"=value"}); err == nil {
		t.Error("Expected error for empty key")
	}
}

func TestSplitTags(t *testing.T) {
	tags := splitTags("apt, triage ,,ransomware")
	if len(tags) != 3 {
		t.Fatalf("Expected 3 tags, got %v", tags)
	}
	if tags[0] != "apt" || tags[1] != "triage" || tags[2] != "ransomware" {
		t.Errorf("Unexpected tags: %v", tags)
	}
	if splitTags("") != nil {
		t.Error("Expected nil for empty input")
	}
}

func TestCoresCommandAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/phantom-cores" {
			t.Errorf("Expected module list path, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"modules": []string{"cve", "mitre"},
				"count":   2,
			},
			"timestamp": "2026-01-01T00:00:00Z",
		})
	}))
	defer srv.Close()

	rootCmd.SetArgs([]string{"cores", "--server", srv.URL, "-o", "json"})
	defer rootCmd.SetArgs(nil)
	defer func() { server = "" }()

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}

func TestQueryCommandSendsOperation(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success":   true,
			"data":      map[string]any{"status": "operational"},
			"timestamp": "2026-01-01T00:00:00Z",
		})
	}))
	defer srv.Close()

	rootCmd.SetArgs([]string{"query", "cve", "lookup", "cve_id=CVE-2024-3094", "--server", srv.URL})
	defer rootCmd.SetArgs(nil)
	defer func() { server = "" }()

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if gotQuery == "" {
		t.Fatal("Expected request to reach test server")
	}
	if want := "operation=lookup"; !strings.Contains(gotQuery, want) {
		t.Errorf("Expected %s in query, got %s", want, gotQuery)
	}
}
