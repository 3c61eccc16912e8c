// Package api implements the HTTP surface: phantom-core dispatch,
// platform project CRUD and the service endpoints.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/phantom-spire/core-studio/src/cache"
	"github.com/phantom-spire/core-studio/src/config"
	"github.com/phantom-spire/core-studio/src/cores"
	"github.com/phantom-spire/core-studio/src/logging"
	"github.com/phantom-spire/core-studio/src/model"
	"github.com/phantom-spire/core-studio/src/projects"
	sigsvc "github.com/phantom-spire/core-studio/src/signal"
)

// shuttingDown reports whether graceful shutdown is draining requests.
// Swappable in tests.
var shuttingDown = sigsvc.IsShuttingDown

// API version
const (
	APIVersion = "v1"
	APIPrefix  = "/api/v1"
)

// Handler handles API requests.
type Handler struct {
	config    *config.Config
	registry  *cores.Registry
	store     *projects.Store
	cache     cache.Cache
	logs      *logging.Manager
	startTime time.Time

	// onDispatch observes core dispatch outcomes ("ok" or "error").
	onDispatch func(module, outcome string)

	gqlOnce sync.Once
	gql     *GraphQLHandler
	gqlErr  error
}

// SetDispatchHook installs an observer for core dispatch outcomes.
func (h *Handler) SetDispatchHook(fn func(module, outcome string)) {
	h.onDispatch = fn
}

func (h *Handler) recordDispatch(module string, err error) {
	if h.onDispatch == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	h.onDispatch(module, outcome)
}

// NewHandler creates a new API handler.
func NewHandler(cfg *config.Config, registry *cores.Registry, store *projects.Store, c cache.Cache, logs *logging.Manager) *Handler {
	if logs == nil {
		logs = logging.NewDiscard()
	}
	return &Handler{
		config:    cfg,
		registry:  registry,
		store:     store,
		cache:     c,
		logs:      logs,
		startTime: time.Now(),
	}
}

// RegisterRoutes registers API routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Health and info
	mux.HandleFunc("/api/v1/healthz", h.handleHealthz)
	mux.HandleFunc("/api/v1/info", h.handleInfo)

	// Phantom cores
	mux.HandleFunc("/api/phantom-cores", h.handleModules)
	mux.HandleFunc("/api/phantom-cores/verify", h.handleVerify)
	mux.HandleFunc("/api/phantom-cores/", h.handleCore)

	// Platform projects
	mux.HandleFunc("/api/v1/platform/projects", h.handleProjects)
	mux.HandleFunc("/api/v1/platform/projects/", h.handleProjectByID)

	// GraphQL
	mux.HandleFunc("/api/graphql", h.handleGraphQL)
}

// writeJSON writes a response envelope with the given status.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, resp *model.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// writeError classifies err into the taxonomy and writes the error
// envelope. Unknown-operation errors carry their available_operations
// listing through unchanged.
func (h *Handler) writeError(w http.ResponseWriter, err error, operation string) {
	code, status := model.Classify(err)

	var unknown *model.UnknownOperationError
	if errors.As(err, &unknown) {
		h.writeJSON(w, status, unknown.Response())
		return
	}

	h.writeJSON(w, status, model.NewError(code, err.Error(), operation))
}

// methodNotAllowed writes the uniform envelope for an unsupported verb.
func (h *Handler) methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	h.writeJSON(w, http.StatusMethodNotAllowed,
		model.NewError(model.ErrCodeValidation, "method not allowed", ""))
}

// HealthResponse represents the health check payload.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Mode      string            `json:"mode"`
	Uptime    string            `json:"uptime"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, "GET")
		return
	}

	checks := map[string]string{
		"cores": "ok",
	}
	if h.registry == nil || h.registry.Count() == 0 {
		checks["cores"] = "empty"
	}
	if h.cache != nil {
		checks["cache"] = "ok"
		if err := h.cache.Ping(r.Context()); err != nil {
			checks["cache"] = "unreachable"
		}
	}

	status := "healthy"
	for _, v := range checks {
		if v != "ok" {
			status = "degraded"
		}
	}

	// A draining server answers 503 so load balancers stop routing
	// new work to it.
	httpStatus := http.StatusOK
	if shuttingDown() {
		status = "shutting_down"
		httpStatus = http.StatusServiceUnavailable
	}

	h.writeJSON(w, httpStatus, model.NewSuccess(HealthResponse{
		Status:    status,
		Version:   config.Version,
		Mode:      h.config.Server.Mode,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}, "healthz", "core-studio"))
}

// InfoResponse represents the server info payload.
type InfoResponse struct {
	Name        string      `json:"name"`
	Version     string      `json:"version"`
	Description string      `json:"description"`
	Uptime      string      `json:"uptime"`
	Mode        string      `json:"mode"`
	Modules     []string    `json:"modules"`
	System      SystemInfo  `json:"system"`
	Cache       cache.Stats `json:"cache"`
}

// SystemInfo represents runtime information.
type SystemInfo struct {
	GoVersion  string `json:"go_version"`
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	NumCPU     int    `json:"num_cpu"`
	Goroutines int    `json:"goroutines"`
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, "GET")
		return
	}

	info := InfoResponse{
		Name:        h.config.Server.Title,
		Version:     config.Version,
		Description: h.config.Server.Description,
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Mode:        h.config.Server.Mode,
		Modules:     h.registry.Names(),
		System: SystemInfo{
			GoVersion:  runtime.Version(),
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NumCPU:     runtime.NumCPU(),
			Goroutines: runtime.NumGoroutine(),
		},
	}
	if h.cache != nil {
		info.Cache = h.cache.Stats()
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccess(info, "info", "core-studio"))
}

// decodeBody decodes a JSON request body into a map. A non-object body
// is a validation error.
func decodeBody(r *http.Request) (map[string]interface{}, error) {
	defer r.Body.Close()
	body := map[string]interface{}{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("malformed JSON body: %w", model.ErrValidation)
	}
	return body, nil
}

// decodeInto decodes a JSON request body into a typed value.
func decodeInto(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("malformed JSON body: %w", model.ErrValidation)
	}
	return nil
}
