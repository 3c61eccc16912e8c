package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phantom-spire/core-studio/src/api"
	"github.com/phantom-spire/core-studio/src/config"
	"github.com/phantom-spire/core-studio/src/cores"
	"github.com/phantom-spire/core-studio/src/database"
	"github.com/phantom-spire/core-studio/src/logging"
	"github.com/phantom-spire/core-studio/src/projects"
	"github.com/phantom-spire/core-studio/src/synth"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Server.RateLimit.Enabled = false

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.NewMigrator(db).Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	handler := api.NewHandler(cfg,
		cores.DefaultRegistry(synth.New(7)),
		projects.NewStore(db),
		nil,
		logging.NewDiscard())

	srv := New(cfg, handler, logging.NewDiscard())
	t.Cleanup(func() { srv.rateLimiter.Close() })
	return srv
}

func TestServerServesCoreThroughMiddleware(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/phantom-cores/hunting", nil)
	req.RemoteAddr = "192.0.2.1:4000"
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("Expected request ID header from middleware")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("Expected security headers from middleware")
	}
}

func TestServerMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	// Generate requests so counters exist.
	req := httptest.NewRequest("GET", "/api/v1/healthz", nil)
	req.RemoteAddr = "192.0.2.1:4000"
	srv.Handler().ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest("GET", "/api/phantom-cores/cve", nil)
	req.RemoteAddr = "192.0.2.1:4000"
	srv.Handler().ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest("GET", "/metrics", nil)
	req.RemoteAddr = "192.0.2.1:4000"
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "studio_requests_total") {
		t.Error("Expected studio_requests_total in exposition")
	}
	if !strings.Contains(rec.Body.String(), `studio_core_dispatch_total{module="cve",outcome="ok"}`) {
		t.Error("Expected core dispatch counter in exposition")
	}
}

func TestServerRootBanner(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.1:4000"
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Phantom Core Studio") {
		t.Errorf("Expected banner, got %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/nope", nil)
	req.RemoteAddr = "192.0.2.1:4000"
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", rec.Code)
	}
}
