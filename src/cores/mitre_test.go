package cores

import (
	"context"
	"errors"
	"testing"

	"github.com/phantom-spire/core-studio/src/model"
	"github.com/phantom-spire/core-studio/src/synth"
)

func TestAnalyzeTTPEchoesTechnique(t *testing.T) {
	c := NewMITRE(synth.New(1))

	data, err := c.Dispatch(context.Background(), VerbWrite, opMITREAnalyzeTTP, Params{
		"ttpData": map[string]interface{}{
			"technique_id": "T1566.001",
			"tactic":       "Initial Access",
		},
	})
	if err != nil {
		t.Fatalf("analyze-ttp: %v", err)
	}

	payload := data.(map[string]interface{})
	profile := payload["ttp_profile"].(map[string]interface{})
	if profile["technique_id"] != "T1566.001" {
		t.Errorf("Expected technique_id 'T1566.001', got %v", profile["technique_id"])
	}
	if profile["tactic"] != "Initial Access" {
		t.Errorf("Expected tactic 'Initial Access', got %v", profile["tactic"])
	}
	score := profile["coverage_score"].(float64)
	if score < 0 || score >= 1 {
		t.Errorf("Expected coverage_score in [0, 1), got %f", score)
	}
}

func TestAnalyzeTTPValidation(t *testing.T) {
	c := NewMITRE(synth.New(2))
	ctx := context.Background()

	_, err := c.Dispatch(ctx, VerbWrite, opMITREAnalyzeTTP, Params{})
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("Expected validation error for missing ttpData, got %v", err)
	}

	_, err = c.Dispatch(ctx, VerbWrite, opMITREAnalyzeTTP, Params{
		"ttpData": map[string]interface{}{"tactic": "Execution"},
	})
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("Expected validation error for missing technique_id, got %v", err)
	}
}

func TestAnalyzeTTPDefaultsTactic(t *testing.T) {
	c := NewMITRE(synth.New(3))

	data, err := c.Dispatch(context.Background(), VerbWrite, opMITREAnalyzeTTP, Params{
		"ttpData": map[string]interface{}{"technique_id": "T1055"},
	})
	if err != nil {
		t.Fatalf("analyze-ttp: %v", err)
	}
	profile := data.(map[string]interface{})["ttp_profile"].(map[string]interface{})
	if profile["tactic"] == "" {
		t.Error("Expected a tactic to be filled in when omitted")
	}
}

func TestMITRETactics(t *testing.T) {
	c := NewMITRE(synth.New(4))

	data, err := c.Dispatch(context.Background(), VerbRead, opMITRETactics, nil)
	if err != nil {
		t.Fatalf("tactics: %v", err)
	}
	tactics := data.(map[string]interface{})["tactics"].([]map[string]interface{})
	if len(tactics) != 14 {
		t.Errorf("Expected the 14 enterprise tactics, got %d", len(tactics))
	}
}
