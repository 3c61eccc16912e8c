package model

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Error taxonomy codes with their HTTP status mapping.
const (
	ErrCodeValidation      = "VALIDATION_ERROR"        // 400
	ErrCodeUnknownOp       = "UNKNOWN_OPERATION"       // 400
	ErrCodeAuthentication  = "AUTHENTICATION_ERROR"    // 401
	ErrCodeAuthorization   = "AUTHORIZATION_ERROR"     // 403
	ErrCodeNotFound        = "RESOURCE_NOT_FOUND"      // 404
	ErrCodeTimeout         = "TIMEOUT_ERROR"           // 408
	ErrCodeRateLimit       = "RATE_LIMIT_EXCEEDED"     // 429
	ErrCodeInternal        = "INTERNAL_ERROR"          // 500
	ErrCodeDatabase        = "DATABASE_ERROR"          // 503
	ErrCodeExternalService = "EXTERNAL_SERVICE_ERROR"  // 503
)

// errorCodeToHTTP maps taxonomy codes to HTTP status codes.
var errorCodeToHTTP = map[string]int{
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeUnknownOp:       http.StatusBadRequest,
	ErrCodeAuthentication:  http.StatusUnauthorized,
	ErrCodeAuthorization:   http.StatusForbidden,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeTimeout:         http.StatusRequestTimeout,
	ErrCodeRateLimit:       http.StatusTooManyRequests,
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeDatabase:        http.StatusServiceUnavailable,
	ErrCodeExternalService: http.StatusServiceUnavailable,
}

// HTTPStatus returns the HTTP status code for a taxonomy code.
func HTTPStatus(code string) int {
	if status, ok := errorCodeToHTTP[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Sentinel errors for typed classification. Handlers return these
// (wrapped) so the boundary never has to parse message text.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrValidation      = errors.New("validation failed")
	ErrTimeout         = errors.New("operation timed out")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrUnauthorized    = errors.New("authentication required")
	ErrForbidden       = errors.New("permission denied")
	ErrDatabase        = errors.New("database unavailable")
	ErrExternalService = errors.New("external service failure")
)

// UnknownOperationError reports a dispatch miss together with the
// operations the caller could have used.
type UnknownOperationError struct {
	Module    string
	Operation string
	Available []string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation %q for module %q", e.Operation, e.Module)
}

// Response builds the uniform unknown-operation envelope. Available
// operations are sorted so the listing is stable across calls.
func (e *UnknownOperationError) Response() *APIResponse {
	available := append([]string(nil), e.Available...)
	sort.Strings(available)
	resp := NewError(ErrCodeUnknownOp, e.Error(), e.Operation)
	resp.Source = e.Module
	resp.AvailableOperations = available
	return resp
}

// classificationRule pairs a predicate with the taxonomy code it
// selects. Rules are evaluated in order; the first match wins.
type classificationRule struct {
	code  string
	match func(msg string) bool
}

func keyword(words ...string) func(string) bool {
	return func(msg string) bool {
		for _, w := range words {
			if strings.Contains(msg, w) {
				return true
			}
		}
		return false
	}
}

// classificationRules is the explicit precedence order for message
// classification. More specific categories come before broader ones
// so that a message mentioning both, e.g. "validation" and "timeout",
// classifies the same way on every call.
var classificationRules = []classificationRule{
	{ErrCodeNotFound, keyword("not found", "no such", "does not exist")},
	{ErrCodeValidation, keyword("validation", "invalid", "malformed", "required field")},
	{ErrCodeTimeout, keyword("timeout", "timed out", "deadline exceeded")},
	{ErrCodeRateLimit, keyword("rate limit", "too many requests")},
	{ErrCodeAuthorization, keyword("forbidden", "permission denied", "not authorized")},
	{ErrCodeAuthentication, keyword("unauthenticated", "authentication", "credentials")},
	{ErrCodeDatabase, keyword("database", "sql", "connection refused")},
	{ErrCodeExternalService, keyword("external service", "upstream", "bad gateway")},
}

// Classify maps an error to a taxonomy code and HTTP status. Typed
// sentinels take precedence over keyword matching; anything else
// falls through to INTERNAL_ERROR. Classify is total and stable: the
// same error always yields the same code.
func Classify(err error) (code string, status int) {
	if err == nil {
		return ErrCodeInternal, http.StatusInternalServerError
	}

	switch {
	case errors.Is(err, ErrNotFound):
		code = ErrCodeNotFound
	case errors.Is(err, ErrValidation):
		code = ErrCodeValidation
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		code = ErrCodeTimeout
	case errors.Is(err, ErrRateLimited):
		code = ErrCodeRateLimit
	case errors.Is(err, ErrForbidden):
		code = ErrCodeAuthorization
	case errors.Is(err, ErrUnauthorized):
		code = ErrCodeAuthentication
	case errors.Is(err, ErrDatabase):
		code = ErrCodeDatabase
	case errors.Is(err, ErrExternalService):
		code = ErrCodeExternalService
	}
	if code != "" {
		return code, HTTPStatus(code)
	}

	var unknown *UnknownOperationError
	if errors.As(err, &unknown) {
		return ErrCodeUnknownOp, HTTPStatus(ErrCodeUnknownOp)
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range classificationRules {
		if rule.match(msg) {
			return rule.code, HTTPStatus(rule.code)
		}
	}
	return ErrCodeInternal, http.StatusInternalServerError
}
