package model

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestClassifyKeywords(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"not found", errors.New("hunt profile not found"), ErrCodeNotFound, 404},
		{"validation", errors.New("invalid technique id"), ErrCodeValidation, 400},
		{"timeout", errors.New("scan timed out after 30s"), ErrCodeTimeout, 408},
		{"rate limit", errors.New("rate limit exceeded for tenant"), ErrCodeRateLimit, 429},
		{"authorization", errors.New("permission denied on project"), ErrCodeAuthorization, 403},
		{"authentication", errors.New("bad credentials"), ErrCodeAuthentication, 401},
		{"database", errors.New("database connection lost"), ErrCodeDatabase, 503},
		{"external", errors.New("upstream returned 502"), ErrCodeExternalService, 503},
		{"fallback", errors.New("something unexpected happened"), ErrCodeInternal, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, status := Classify(tt.err)
			if code != tt.wantCode {
				t.Errorf("Expected code %s, got %s", tt.wantCode, code)
			}
			if status != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, status)
			}
		})
	}
}

// A message matching multiple categories must classify by rule order,
// not by keyword position inside the message.
func TestClassifyPrecedence(t *testing.T) {
	code, _ := Classify(errors.New("timeout while running validation"))
	if code != ErrCodeValidation {
		t.Errorf("Expected %s to win over timeout, got %s", ErrCodeValidation, code)
	}

	code, _ = Classify(errors.New("validation target not found"))
	if code != ErrCodeNotFound {
		t.Errorf("Expected %s to win over validation, got %s", ErrCodeNotFound, code)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	err := errors.New("database timeout during validation")
	first, firstStatus := Classify(err)
	for i := 0; i < 100; i++ {
		code, status := Classify(err)
		if code != first || status != firstStatus {
			t.Fatalf("Classification changed on call %d: %s/%d vs %s/%d",
				i, code, status, first, firstStatus)
		}
	}
}

func TestClassifySentinels(t *testing.T) {
	tests := []struct {
		err      error
		wantCode string
	}{
		{fmt.Errorf("loading project: %w", ErrNotFound), ErrCodeNotFound},
		{fmt.Errorf("parsing body: %w", ErrValidation), ErrCodeValidation},
		{context.DeadlineExceeded, ErrCodeTimeout},
		{fmt.Errorf("querying: %w", ErrDatabase), ErrCodeDatabase},
	}

	for _, tt := range tests {
		code, _ := Classify(tt.err)
		if code != tt.wantCode {
			t.Errorf("Classify(%v): expected %s, got %s", tt.err, tt.wantCode, code)
		}
	}
}

func TestClassifySentinelBeatsKeyword(t *testing.T) {
	// The wrapped sentinel must win even though the message text
	// would keyword-match a different category.
	err := fmt.Errorf("timeout reading row: %w", ErrDatabase)
	code, _ := Classify(err)
	if code != ErrCodeDatabase {
		t.Errorf("Expected sentinel %s, got %s", ErrCodeDatabase, code)
	}
}

func TestUnknownOperationError(t *testing.T) {
	err := &UnknownOperationError{
		Module:    "cve",
		Operation: "unknown-op",
		Available: []string{"status", "analyze", "lookup"},
	}

	resp := err.Response()
	if resp.Success {
		t.Error("Expected success to be false")
	}
	if resp.ErrorCode != ErrCodeUnknownOp {
		t.Errorf("Expected error code %s, got %s", ErrCodeUnknownOp, resp.ErrorCode)
	}
	if len(resp.AvailableOperations) != 3 {
		t.Fatalf("Expected 3 available operations, got %d", len(resp.AvailableOperations))
	}
	// Listing must be sorted for stable output.
	if resp.AvailableOperations[0] != "analyze" {
		t.Errorf("Expected sorted operations, got %v", resp.AvailableOperations)
	}

	code, status := Classify(err)
	if code != ErrCodeUnknownOp || status != http.StatusBadRequest {
		t.Errorf("Expected %s/400, got %s/%d", ErrCodeUnknownOp, code, status)
	}
}

func TestHTTPStatusUnknownCode(t *testing.T) {
	if status := HTTPStatus("NO_SUCH_CODE"); status != http.StatusInternalServerError {
		t.Errorf("Expected 500 for unknown code, got %d", status)
	}
}
