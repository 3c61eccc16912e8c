package cores

import (
	"context"
	"errors"
	"testing"

	"github.com/phantom-spire/core-studio/src/model"
	"github.com/phantom-spire/core-studio/src/synth"
)

func TestDispatchUnknownOperation(t *testing.T) {
	c := NewCVE(synth.New(1))

	_, err := c.Dispatch(context.Background(), VerbRead, "no-such-op", nil)
	if err == nil {
		t.Fatal("Expected error for unknown operation")
	}

	var unknown *model.UnknownOperationError
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected UnknownOperationError, got %T: %v", err, err)
	}
	if unknown.Operation != "no-such-op" {
		t.Errorf("Expected operation 'no-such-op', got %q", unknown.Operation)
	}
	if unknown.Module != "cve" {
		t.Errorf("Expected module 'cve', got %q", unknown.Module)
	}
	if len(unknown.Available) == 0 {
		t.Error("Expected non-empty available operations")
	}
}

// A read operation must not resolve through the write table and vice
// versa; the dispatch tables are separate per verb.
func TestDispatchVerbSeparation(t *testing.T) {
	c := NewCVE(synth.New(1))

	if _, err := c.Dispatch(context.Background(), VerbWrite, OpStatus, nil); err == nil {
		t.Error("Expected status to be rejected on the write table")
	}
	if _, err := c.Dispatch(context.Background(), VerbRead, opCVEAnalyze, nil); err == nil {
		t.Error("Expected analyze to be rejected on the read table")
	}
}

// Query-string dispatch delivers every parameter as a string; numeric
// parameters like limit must still take effect.
func TestDispatchStringLimit(t *testing.T) {
	c := NewCVE(synth.New(1))

	data, err := c.Dispatch(context.Background(), VerbRead, opCVETrending, Params{"limit": "3"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	payload, ok := data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected map payload, got %T", data)
	}
	records, ok := payload["trending"].([]map[string]interface{})
	if !ok {
		t.Fatalf("Expected trending records, got %T", payload["trending"])
	}
	if len(records) != 3 {
		t.Errorf("Expected 3 trending records for limit=3, got %d", len(records))
	}
}

func TestDispatchNilParams(t *testing.T) {
	c := NewCVE(synth.New(1))
	if _, err := c.Dispatch(context.Background(), VerbRead, OpStatus, nil); err != nil {
		t.Errorf("Expected nil params to be tolerated, got %v", err)
	}
}

func TestParamsAccessors(t *testing.T) {
	p := Params{
		"name":  "alpha",
		"count": float64(7), // JSON numbers decode as float64
		"exact": 3,
		"nested": map[string]interface{}{
			"inner": "value",
		},
	}

	if got := p.String("name"); got != "alpha" {
		t.Errorf("Expected 'alpha', got %q", got)
	}
	if got := p.String("missing"); got != "" {
		t.Errorf("Expected empty string for missing key, got %q", got)
	}
	if got := p.Int("count", 0); got != 7 {
		t.Errorf("Expected 7 from float64, got %d", got)
	}
	if got := p.Int("exact", 0); got != 3 {
		t.Errorf("Expected 3 from int, got %d", got)
	}
	if got := p.Int("missing", 42); got != 42 {
		t.Errorf("Expected default 42, got %d", got)
	}
	if got := (Params{"limit": "3"}).Int("limit", 10); got != 3 {
		t.Errorf("Expected 3 from string, got %d", got)
	}
	if got := (Params{"limit": "abc"}).Int("limit", 10); got != 10 {
		t.Errorf("Expected default for unparsable string, got %d", got)
	}
	nested := p.Map("nested")
	if nested == nil || nested.String("inner") != "value" {
		t.Errorf("Expected nested map access, got %v", nested)
	}
	if p.Map("name") != nil {
		t.Error("Expected nil for non-map value")
	}
}
