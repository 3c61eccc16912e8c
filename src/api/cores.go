package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/phantom-spire/core-studio/src/cache"
	"github.com/phantom-spire/core-studio/src/cores"
	"github.com/phantom-spire/core-studio/src/model"
)

const coresPrefix = "/api/phantom-cores/"

// handleModules lists the registered core modules.
func (h *Handler) handleModules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, "GET")
		return
	}
	h.writeJSON(w, http.StatusOK, model.NewSuccess(map[string]interface{}{
		"modules": h.registry.Names(),
		"count":   h.registry.Count(),
	}, "list-modules", "core-studio"))
}

// handleVerify probes every core and reports its operation surface.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, "GET")
		return
	}

	reports := h.registry.Verify()
	accessible := 0
	for _, rep := range reports {
		if rep.Accessible {
			accessible++
		}
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccess(map[string]interface{}{
		"total":      len(reports),
		"accessible": accessible,
		"cores":      reports,
	}, "verify", "core-studio"))
}

// handleCore dispatches one operation against a core module. GET maps
// to the read table with parameters from the query string; POST maps
// to the write table with parameters from the JSON body.
func (h *Handler) handleCore(w http.ResponseWriter, r *http.Request) {
	module := strings.Trim(strings.TrimPrefix(r.URL.Path, coresPrefix), "/")
	if module == "" || strings.Contains(module, "/") {
		h.writeError(w, fmt.Errorf("module %q: %w", module, model.ErrNotFound), "")
		return
	}

	core, err := h.registry.Get(module)
	if err != nil {
		h.writeError(w, err, "")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.dispatchRead(w, r, core)
	case http.MethodPost:
		h.dispatchWrite(w, r, core)
	default:
		h.methodNotAllowed(w, "GET, POST")
	}
}

func (h *Handler) dispatchRead(w http.ResponseWriter, r *http.Request, core *cores.Core) {
	query := r.URL.Query()
	op := query.Get("operation")
	if op == "" {
		op = string(cores.OpStatus)
	}

	params := cores.Params{}
	for key, values := range query {
		if key == "operation" || len(values) == 0 {
			continue
		}
		params[key] = values[0]
	}

	// Status payloads are cacheable: same envelope for every caller.
	if cores.Operation(op) == cores.OpStatus && len(params) == 0 {
		if h.serveCachedStatus(w, r, core.Name()) {
			return
		}
	}

	data, err := core.Dispatch(r.Context(), cores.VerbRead, cores.Operation(op), params)
	h.recordDispatch(core.Name(), err)
	if err != nil {
		h.writeError(w, err, op)
		return
	}

	resp := model.NewSuccess(data, op, core.Source())
	if cores.Operation(op) == cores.OpStatus && len(params) == 0 {
		h.storeCachedStatus(r, core.Name(), resp)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) dispatchWrite(w http.ResponseWriter, r *http.Request, core *cores.Core) {
	body, err := decodeBody(r)
	if err != nil {
		h.writeError(w, err, "")
		return
	}

	op, _ := body["operation"].(string)
	if op == "" {
		h.writeError(w, fmt.Errorf("operation is a required field: %w", model.ErrValidation), "")
		return
	}
	delete(body, "operation")

	data, err := core.Dispatch(r.Context(), cores.VerbWrite, cores.Operation(op), cores.Params(body))
	h.recordDispatch(core.Name(), err)
	if err != nil {
		h.writeError(w, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccess(data, op, core.Source()))
}

func (h *Handler) statusTTL() time.Duration {
	return time.Duration(h.config.Cores.StatusCacheTTL) * time.Second
}

// serveCachedStatus writes a cached status envelope if one is fresh.
func (h *Handler) serveCachedStatus(w http.ResponseWriter, r *http.Request, module string) bool {
	if h.cache == nil || h.statusTTL() <= 0 {
		return false
	}
	raw, err := h.cache.Get(r.Context(), "status:"+module)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			h.logs.Server().Warn("status cache read failed", "module", module, "error", err)
		}
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "HIT")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
	return true
}

func (h *Handler) storeCachedStatus(r *http.Request, module string, resp *model.APIResponse) {
	if h.cache == nil || h.statusTTL() <= 0 {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := h.cache.Set(r.Context(), "status:"+module, raw, h.statusTTL()); err != nil {
		h.logs.Server().Warn("status cache write failed", "module", module, "error", err)
	}
}
