package cores

import (
	"context"
	"fmt"

	"github.com/phantom-spire/core-studio/src/model"
	"github.com/phantom-spire/core-studio/src/synth"
)

// Risk scoring operations.
const (
	opRiskPosture  Operation = "posture"
	opRiskTopRisks Operation = "top-risks"
	opRiskAssess   Operation = "assess"
)

var (
	riskCategories = []string{
		"vulnerability", "identity", "configuration", "third-party",
		"data-exposure", "endpoint", "cloud",
	}
	riskLevels = []string{"low", "moderate", "elevated", "severe"}
)

// NewRisk builds the risk assessment core.
func NewRisk(g *synth.Generator) *Core {
	c := newCore("risk", "phantom-risk-core", g)

	c.registerRead(OpStatus, riskStatus)
	c.registerRead(opRiskPosture, riskPosture)
	c.registerRead(opRiskTopRisks, riskTop)
	c.registerWrite(opRiskAssess, riskAssess)

	return c
}

func riskStatus(_ context.Context, g *synth.Generator, _ Params) (interface{}, error) {
	return statusPayload(g, map[string]interface{}{
		"models_loaded":  g.IntBetween(3, 9),
		"entities_rated": g.IntBetween(1000, 90000),
	}), nil
}

func riskPosture(_ context.Context, g *synth.Generator, _ Params) (interface{}, error) {
	byCategory := make(map[string]interface{}, len(riskCategories))
	for _, cat := range riskCategories {
		byCategory[cat] = map[string]interface{}{
			"score": g.Score(0, 100),
			"level": g.Pick(riskLevels),
			"trend": g.Pick([]string{"improving", "stable", "worsening"}),
		}
	}
	return map[string]interface{}{
		"overall_score": g.Score(20, 95),
		"by_category":   byCategory,
	}, nil
}

func riskTop(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	limit := p.Int("limit", 5)
	if limit < 1 || limit > 25 {
		limit = 5
	}
	risks := make([]map[string]interface{}, 0, limit)
	for i := 0; i < limit; i++ {
		risks = append(risks, map[string]interface{}{
			"risk_id":   g.ID("risk"),
			"category":  g.Pick(riskCategories),
			"level":     g.Pick(riskLevels),
			"score":     g.Score(40, 100),
			"age_days":  g.IntBetween(1, 365),
			"owner_set": g.Bool(0.6),
		})
	}
	return map[string]interface{}{"risks": risks}, nil
}

func riskAssess(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	target := p.Map("targetData")
	if target == nil {
		return nil, fmt.Errorf("targetData is a required field: %w", model.ErrValidation)
	}
	return map[string]interface{}{
		"risk_assessment": map[string]interface{}{
			"assessment_id": g.ID("assessment"),
			"target":        target.String("name"),
			"score":         g.Score(0, 100),
			"level":         g.Pick(riskLevels),
			"drivers":       g.PickN(riskCategories, g.IntBetween(1, 3)),
			"confidence":    g.HighConfidence(),
		},
	}, nil
}
