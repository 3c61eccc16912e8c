package cores

import (
	"context"
	"errors"
	"testing"

	"github.com/phantom-spire/core-studio/src/model"
	"github.com/phantom-spire/core-studio/src/synth"
)

func TestCVELookupValidation(t *testing.T) {
	c := NewCVE(synth.New(1))
	ctx := context.Background()

	_, err := c.Dispatch(ctx, VerbRead, opCVELookup, Params{})
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("Expected validation error for missing cve_id, got %v", err)
	}

	_, err = c.Dispatch(ctx, VerbRead, opCVELookup, Params{"cve_id": "notacve"})
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("Expected validation error for malformed cve_id, got %v", err)
	}
}

func TestCVELookupEchoesID(t *testing.T) {
	c := NewCVE(synth.New(2))

	data, err := c.Dispatch(context.Background(), VerbRead, opCVELookup,
		Params{"cve_id": "CVE-2021-44228"})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	payload := data.(map[string]interface{})
	record := payload["record"].(map[string]interface{})
	if record["cve_id"] != "CVE-2021-44228" {
		t.Errorf("Expected requested id echoed back, got %v", record["cve_id"])
	}
	score := record["cvss_score"].(float64)
	if score < 1.0 || score > 10.0 {
		t.Errorf("Expected cvss_score in [1, 10], got %f", score)
	}
}

func TestCVETrendingLimit(t *testing.T) {
	c := NewCVE(synth.New(3))

	data, err := c.Dispatch(context.Background(), VerbRead, opCVETrending, Params{"limit": float64(3)})
	if err != nil {
		t.Fatalf("trending: %v", err)
	}
	payload := data.(map[string]interface{})
	records := payload["trending"].([]map[string]interface{})
	if len(records) != 3 {
		t.Errorf("Expected 3 trending records, got %d", len(records))
	}

	// Out-of-range limits fall back to the default.
	data, _ = c.Dispatch(context.Background(), VerbRead, opCVETrending, Params{"limit": float64(9999)})
	payload = data.(map[string]interface{})
	records = payload["trending"].([]map[string]interface{})
	if len(records) != 10 {
		t.Errorf("Expected default 10 records for oversized limit, got %d", len(records))
	}
}

func TestCVEAnalyzeRequiresData(t *testing.T) {
	c := NewCVE(synth.New(4))
	_, err := c.Dispatch(context.Background(), VerbWrite, opCVEAnalyze, Params{})
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("Expected validation error for missing cveData, got %v", err)
	}
}
