package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/phantom-spire/core-studio/src/cache"
	"github.com/phantom-spire/core-studio/src/config"
	"github.com/phantom-spire/core-studio/src/cores"
	"github.com/phantom-spire/core-studio/src/database"
	"github.com/phantom-spire/core-studio/src/logging"
	"github.com/phantom-spire/core-studio/src/model"
	"github.com/phantom-spire/core-studio/src/projects"
	"github.com/phantom-spire/core-studio/src/synth"
)

func newTestMux(t *testing.T, cfg *config.Config) *http.ServeMux {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.NewMigrator(db).Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	handler := NewHandler(cfg,
		cores.DefaultRegistry(synth.New(42)),
		projects.NewStore(db),
		nil,
		logging.NewDiscard())

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body interface{}) (*httptest.ResponseRecorder, model.APIResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var resp model.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal response: %v (body %s)", err, rec.Body.String())
	}
	return rec, resp
}

func dataMap(t *testing.T, resp model.APIResponse) map[string]interface{} {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected object data, got %T", resp.Data)
	}
	return data
}

func TestProjectMutationWritesAuditRow(t *testing.T) {
	cfg := config.Default()

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.NewMigrator(db).Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	store := projects.NewStore(db)

	handler := NewHandler(cfg,
		cores.DefaultRegistry(synth.New(42)),
		store,
		nil,
		logging.NewDiscard())
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	rec, resp := doJSON(t, mux, "POST", "/api/v1/platform/projects",
		map[string]string{"name": "Audit Trail Check"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d (%s)", rec.Code, resp.Error)
	}
	created := dataMap(t, resp)

	entries, err := store.RecentAudit(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentAudit: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 audit entry, got %d", len(entries))
	}
	if entries[0].Action != "create-project" {
		t.Errorf("Expected create-project action, got %q", entries[0].Action)
	}
	if entries[0].Subject != created["id"] {
		t.Errorf("Expected subject %v, got %q", created["id"], entries[0].Subject)
	}
}

func TestCVEStatus(t *testing.T) {
	mux := newTestMux(t, nil)

	rec, resp := doJSON(t, mux, "GET", "/api/phantom-cores/cve", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !resp.Success {
		t.Fatalf("Expected success, got error %s", resp.Error)
	}
	if resp.Source != "phantom-cve-core" {
		t.Errorf("Expected source phantom-cve-core, got %q", resp.Source)
	}
	if resp.Operation != "status" {
		t.Errorf("Expected operation status, got %q", resp.Operation)
	}

	data := dataMap(t, resp)
	if data["status"] != "operational" {
		t.Errorf("Expected operational status, got %v", data["status"])
	}
	metrics, ok := data["metrics"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected metrics object, got %T", data["metrics"])
	}
	samples, ok := metrics["samples_analyzed"].(float64)
	if !ok || samples < 0 {
		t.Errorf("Expected non-negative samples_analyzed, got %v", metrics["samples_analyzed"])
	}
}

func TestTrendingLimitFromQuery(t *testing.T) {
	mux := newTestMux(t, nil)

	rec, resp := doJSON(t, mux, "GET",
		"/api/phantom-cores/cve?operation=trending&limit=3", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (%s)", rec.Code, resp.Error)
	}

	data := dataMap(t, resp)
	records, ok := data["trending"].([]interface{})
	if !ok {
		t.Fatalf("Expected trending records, got %T", data["trending"])
	}
	if len(records) != 3 {
		t.Errorf("Expected 3 trending records for limit=3, got %d", len(records))
	}
}

func TestCVELookupFromQuery(t *testing.T) {
	mux := newTestMux(t, nil)

	rec, resp := doJSON(t, mux, "GET",
		"/api/phantom-cores/cve?operation=lookup&cve_id=CVE-2024-3094", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (%s)", rec.Code, resp.Error)
	}
	data := dataMap(t, resp)
	record, ok := data["record"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected record object, got %T", data["record"])
	}
	if record["cve_id"] != "CVE-2024-3094" {
		t.Errorf("Expected echoed cve_id, got %v", record["cve_id"])
	}
}

func TestCVELookupValidation(t *testing.T) {
	mux := newTestMux(t, nil)

	rec, resp := doJSON(t, mux, "GET",
		"/api/phantom-cores/cve?operation=lookup&cve_id=notacve", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
	if resp.ErrorCode != model.ErrCodeValidation {
		t.Errorf("Expected %s, got %s", model.ErrCodeValidation, resp.ErrorCode)
	}
}

func TestMITREAnalyzeTTP(t *testing.T) {
	mux := newTestMux(t, nil)

	rec, resp := doJSON(t, mux, "POST", "/api/phantom-cores/mitre", map[string]interface{}{
		"operation": "analyze-ttp",
		"ttpData": map[string]interface{}{
			"technique_id": "T1055",
			"tactic":       "Defense Evasion",
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (%s)", rec.Code, resp.Error)
	}
	if resp.Source != "phantom-mitre-core" {
		t.Errorf("Expected source phantom-mitre-core, got %q", resp.Source)
	}

	data := dataMap(t, resp)
	profile, ok := data["ttp_profile"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected ttp_profile object, got %T", data["ttp_profile"])
	}
	if profile["technique_id"] != "T1055" {
		t.Errorf("Expected echoed technique_id, got %v", profile["technique_id"])
	}
	if profile["tactic"] != "Defense Evasion" {
		t.Errorf("Expected echoed tactic, got %v", profile["tactic"])
	}
	score, ok := profile["coverage_score"].(float64)
	if !ok || score < 0 || score >= 1 {
		t.Errorf("Expected coverage_score in [0,1), got %v", profile["coverage_score"])
	}
}

func TestUnknownOperation(t *testing.T) {
	mux := newTestMux(t, nil)

	rec, resp := doJSON(t, mux, "GET",
		"/api/phantom-cores/cve?operation=frobnicate", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
	if resp.ErrorCode != model.ErrCodeUnknownOp {
		t.Errorf("Expected %s, got %s", model.ErrCodeUnknownOp, resp.ErrorCode)
	}
	if !strings.Contains(resp.Error, "frobnicate") {
		t.Errorf("Expected error to name the operation, got %q", resp.Error)
	}
	if len(resp.AvailableOperations) == 0 {
		t.Error("Expected available_operations listing")
	}
	found := false
	for _, op := range resp.AvailableOperations {
		if op == "lookup" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected lookup in available operations, got %v", resp.AvailableOperations)
	}
}

func TestWriteOperationNotOnReadPath(t *testing.T) {
	mux := newTestMux(t, nil)

	// analyze is registered as a write; GET must not find it.
	rec, resp := doJSON(t, mux, "GET", "/api/phantom-cores/cve?operation=analyze", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
	if resp.ErrorCode != model.ErrCodeUnknownOp {
		t.Errorf("Expected %s, got %s", model.ErrCodeUnknownOp, resp.ErrorCode)
	}
}

func TestUnknownModule(t *testing.T) {
	mux := newTestMux(t, nil)

	rec, resp := doJSON(t, mux, "GET", "/api/phantom-cores/nonexistent", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
	if resp.ErrorCode != model.ErrCodeNotFound {
		t.Errorf("Expected %s, got %s", model.ErrCodeNotFound, resp.ErrorCode)
	}
}

func TestMalformedBody(t *testing.T) {
	mux := newTestMux(t, nil)

	req := httptest.NewRequest("POST", "/api/phantom-cores/cve",
		strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestVerify(t *testing.T) {
	mux := newTestMux(t, nil)

	rec, resp := doJSON(t, mux, "GET", "/api/phantom-cores/verify", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	data := dataMap(t, resp)
	if data["total"].(float64) != 11 {
		t.Errorf("Expected 11 cores, got %v", data["total"])
	}
	if data["accessible"].(float64) != 11 {
		t.Errorf("Expected all cores accessible, got %v", data["accessible"])
	}
}

func TestListModules(t *testing.T) {
	mux := newTestMux(t, nil)

	rec, resp := doJSON(t, mux, "GET", "/api/phantom-cores", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	data := dataMap(t, resp)
	modules, ok := data["modules"].([]interface{})
	if !ok || len(modules) != 11 {
		t.Errorf("Expected 11 modules, got %v", data["modules"])
	}
}

func TestHealthz(t *testing.T) {
	mux := newTestMux(t, nil)

	rec, resp := doJSON(t, mux, "GET", "/api/v1/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	data := dataMap(t, resp)
	if data["status"] != "healthy" {
		t.Errorf("Expected healthy, got %v", data["status"])
	}
}

func TestHealthzDuringShutdown(t *testing.T) {
	mux := newTestMux(t, nil)

	orig := shuttingDown
	shuttingDown = func() bool { return true }
	defer func() { shuttingDown = orig }()

	rec, resp := doJSON(t, mux, "GET", "/api/v1/healthz", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503 while draining, got %d", rec.Code)
	}
	data := dataMap(t, resp)
	if data["status"] != "shutting_down" {
		t.Errorf("Expected shutting_down, got %v", data["status"])
	}
}

func TestInfo(t *testing.T) {
	mux := newTestMux(t, nil)

	rec, resp := doJSON(t, mux, "GET", "/api/v1/info", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	data := dataMap(t, resp)
	if data["name"] != "Phantom Core Studio" {
		t.Errorf("Unexpected name: %v", data["name"])
	}
}

func TestProjectLifecycle(t *testing.T) {
	mux := newTestMux(t, nil)

	rec, resp := doJSON(t, mux, "POST", "/api/v1/platform/projects", map[string]interface{}{
		"name":        "Purple Team Q4",
		"description": "Quarterly purple team exercise",
		"status":      "active",
		"tags":        []string{"exercise"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d (%s)", rec.Code, resp.Error)
	}
	created := dataMap(t, resp)
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatal("Expected generated project id")
	}

	rec, resp = doJSON(t, mux, "GET", "/api/v1/platform/projects/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Get: expected 200, got %d", rec.Code)
	}
	if dataMap(t, resp)["name"] != "Purple Team Q4" {
		t.Errorf("Unexpected name after get")
	}

	rec, resp = doJSON(t, mux, "PUT", "/api/v1/platform/projects/"+id, map[string]interface{}{
		"name":   "Purple Team Q4 (extended)",
		"status": "archived",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Update: expected 200, got %d (%s)", rec.Code, resp.Error)
	}
	if dataMap(t, resp)["status"] != "archived" {
		t.Errorf("Expected archived after update")
	}

	rec, resp = doJSON(t, mux, "GET", "/api/v1/platform/projects?status=archived", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("List: expected 200, got %d", rec.Code)
	}
	items, ok := dataMap(t, resp)["items"].([]interface{})
	if !ok || len(items) != 1 {
		t.Errorf("Expected 1 archived project, got %v", dataMap(t, resp)["items"])
	}

	rec, _ = doJSON(t, mux, "DELETE", "/api/v1/platform/projects/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Delete: expected 200, got %d", rec.Code)
	}
	rec, resp = doJSON(t, mux, "GET", "/api/v1/platform/projects/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", rec.Code)
	}
	if resp.ErrorCode != model.ErrCodeNotFound {
		t.Errorf("Expected %s, got %s", model.ErrCodeNotFound, resp.ErrorCode)
	}
}

func TestProjectMutationsRequireToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("studio-admin-token"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword: %v", err)
	}
	cfg := config.Default()
	cfg.Server.AdminTokenHash = string(hash)
	mux := newTestMux(t, cfg)

	body, _ := json.Marshal(map[string]string{"name": "locked"})

	req := httptest.NewRequest("POST", "/api/v1/platform/projects", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest("POST", "/api/v1/platform/projects", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer wrong-token")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with bad token, got %d", rec.Code)
	}

	req = httptest.NewRequest("POST", "/api/v1/platform/projects", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer studio-admin-token")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Errorf("Expected 201 with valid token, got %d (%s)", rec.Code, rec.Body.String())
	}

	// Reads stay open.
	req = httptest.NewRequest("GET", "/api/v1/platform/projects", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for unauthenticated list, got %d", rec.Code)
	}
}

func TestStatusCaching(t *testing.T) {
	cfg := config.Default()
	cfg.Cores.StatusCacheTTL = 60

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	handler := NewHandler(cfg,
		cores.DefaultRegistry(synth.New(1)),
		projects.NewStore(db),
		cache.NewMemory(100, 0),
		logging.NewDiscard())
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	req := httptest.NewRequest("GET", "/api/phantom-cores/xdr", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Header().Get("X-Cache") != "" {
		t.Error("First request must not be a cache hit")
	}
	first := rec.Body.String()

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/phantom-cores/xdr", nil))
	if rec.Header().Get("X-Cache") != "HIT" {
		t.Error("Second request should hit the status cache")
	}
	if rec.Body.String() != first {
		t.Error("Cached body should match the first response")
	}
}

func TestGraphQLCores(t *testing.T) {
	mux := newTestMux(t, nil)

	body, _ := json.Marshal(map[string]string{
		"query": `{ cores { module source accessible } }`,
	})
	req := httptest.NewRequest("POST", "/api/graphql", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var result struct {
		Data struct {
			Cores []struct {
				Module     string `json:"module"`
				Source     string `json:"source"`
				Accessible bool   `json:"accessible"`
			} `json:"cores"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("GraphQL errors: %v", result.Errors)
	}
	if len(result.Data.Cores) != 11 {
		t.Errorf("Expected 11 cores, got %d", len(result.Data.Cores))
	}
}

func TestEnvelopeShape(t *testing.T) {
	mux := newTestMux(t, nil)

	rec, _ := doJSON(t, mux, "GET", "/api/phantom-cores/risk", nil)
	var raw map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if raw["success"] != true {
		t.Error("Expected success true")
	}
	if _, ok := raw["timestamp"].(string); !ok {
		t.Error("Expected timestamp string")
	}
	if _, ok := raw["error"]; ok {
		t.Error("Success envelope must omit error")
	}
}
