package api

import (
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/phantom-spire/core-studio/src/model"
)

// requireAdmin checks the bearer token against the configured admin
// token hash. An empty hash disables auth entirely, which is the
// development default.
func (h *Handler) requireAdmin(r *http.Request) error {
	hash := h.config.Server.AdminTokenHash
	if hash == "" {
		return nil
	}

	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		h.logs.LogAuthFailure(r.RemoteAddr, r.URL.Path)
		return fmt.Errorf("bearer token required: %w", model.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)); err != nil {
		h.logs.LogAuthFailure(r.RemoteAddr, r.URL.Path)
		return fmt.Errorf("invalid token: %w", model.ErrUnauthorized)
	}
	return nil
}
