package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/phantom-spire/core-studio/src/model"
	"github.com/phantom-spire/core-studio/src/projects"
)

const projectsPrefix = "/api/v1/platform/projects/"
const projectsSource = "platform-projects"

// audit writes the mutation to the audit_log table and mirrors it to
// the audit log channel. A failed table write never fails the request.
func (h *Handler) audit(r *http.Request, action, subject string) {
	h.logs.Audit().Info(action, "subject", subject)
	if err := h.store.RecordAudit(r.Context(), "admin", action, subject); err != nil {
		h.logs.Server().Warn("audit record failed", "action", action, "error", err)
	}
}

// handleProjects serves the project collection: GET lists, POST creates.
func (h *Handler) handleProjects(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listProjects(w, r)
	case http.MethodPost:
		h.createProject(w, r)
	default:
		h.methodNotAllowed(w, "GET, POST")
	}
}

// handleProjectByID serves one project: GET, PUT, DELETE.
func (h *Handler) handleProjectByID(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, projectsPrefix), "/")
	if id == "" || strings.Contains(id, "/") {
		h.writeError(w, fmt.Errorf("project id: %w", model.ErrNotFound), "")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getProject(w, r, id)
	case http.MethodPut:
		h.updateProject(w, r, id)
	case http.MethodDelete:
		h.deleteProject(w, r, id)
	default:
		h.methodNotAllowed(w, "GET, PUT, DELETE")
	}
}

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	list, pageInfo, err := h.store.List(r.Context(), projects.ListFilter{
		Page:   page,
		Limit:  limit,
		Status: query.Get("status"),
		Search: query.Get("q"),
	})
	if err != nil {
		h.writeError(w, err, "list-projects")
		return
	}

	h.writeJSON(w, http.StatusOK,
		model.NewPaginated(list, pageInfo, "list-projects", projectsSource))
}

func (h *Handler) getProject(w http.ResponseWriter, r *http.Request, id string) {
	project, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "get-project")
		return
	}
	h.writeJSON(w, http.StatusOK, model.NewSuccess(project, "get-project", projectsSource))
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	if err := h.requireAdmin(r); err != nil {
		h.writeError(w, err, "create-project")
		return
	}

	var project projects.Project
	if err := decodeInto(r, &project); err != nil {
		h.writeError(w, err, "create-project")
		return
	}

	created, err := h.store.Create(r.Context(), &project)
	if err != nil {
		h.writeError(w, err, "create-project")
		return
	}

	h.audit(r, "create-project", created.ID)
	h.writeJSON(w, http.StatusCreated,
		model.NewSuccess(created, "create-project", projectsSource))
}

func (h *Handler) updateProject(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.requireAdmin(r); err != nil {
		h.writeError(w, err, "update-project")
		return
	}

	var project projects.Project
	if err := decodeInto(r, &project); err != nil {
		h.writeError(w, err, "update-project")
		return
	}

	updated, err := h.store.Update(r.Context(), id, &project)
	if err != nil {
		h.writeError(w, err, "update-project")
		return
	}

	h.audit(r, "update-project", id)
	h.writeJSON(w, http.StatusOK,
		model.NewSuccess(updated, "update-project", projectsSource))
}

func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.requireAdmin(r); err != nil {
		h.writeError(w, err, "delete-project")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.writeError(w, err, "delete-project")
		return
	}

	h.audit(r, "delete-project", id)
	h.writeJSON(w, http.StatusOK,
		model.NewSuccess(map[string]string{"id": id, "deleted": "true"},
			"delete-project", projectsSource))
}
