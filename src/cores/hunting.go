package cores

import (
	"context"
	"fmt"

	"github.com/phantom-spire/core-studio/src/model"
	"github.com/phantom-spire/core-studio/src/synth"
)

// Threat hunting operations.
const (
	opHuntList    Operation = "hunts"
	opHuntAnalyze Operation = "analyze"
	opHuntCreate  Operation = "create-hunt"
)

var (
	huntTypes    = []string{"ioc-sweep", "behavioral", "hypothesis", "anomaly", "stack-counting"}
	huntStates   = []string{"queued", "running", "review", "closed"}
	huntFindings = []string{
		"beaconing to rare domain", "anomalous parent-child process",
		"credential dumping artifacts", "suspicious scheduled task",
		"lateral movement via SMB", "dns tunneling pattern",
	}
)

// NewHunting builds the threat hunting core.
func NewHunting(g *synth.Generator) *Core {
	c := newCore("hunting", "phantom-hunting-core", g)

	c.registerRead(OpStatus, huntStatus)
	c.registerRead(opHuntList, huntList)
	c.registerWrite(opHuntAnalyze, huntAnalyze)
	c.registerWrite(opHuntCreate, huntCreate)

	return c
}

func huntStatus(_ context.Context, g *synth.Generator, _ Params) (interface{}, error) {
	return statusPayload(g, map[string]interface{}{
		"active_hunts":  g.IntBetween(0, 30),
		"hosts_swept":   g.IntBetween(100, 50000),
		"hit_rate":      g.Score(0.01, 0.2),
	}), nil
}

func huntList(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	limit := p.Int("limit", 10)
	if limit < 1 || limit > 50 {
		limit = 10
	}
	hunts := make([]map[string]interface{}, 0, limit)
	for i := 0; i < limit; i++ {
		hunts = append(hunts, map[string]interface{}{
			"hunt_id":  g.ID("hunt"),
			"type":     g.Pick(huntTypes),
			"state":    g.Pick(huntStates),
			"findings": g.IntBetween(0, 12),
			"coverage": g.Score(0.2, 1.0),
		})
	}
	return map[string]interface{}{"hunts": hunts}, nil
}

func huntAnalyze(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	hunt := p.Map("huntData")
	if hunt == nil {
		return nil, fmt.Errorf("huntData is a required field: %w", model.ErrValidation)
	}
	n := g.IntBetween(0, 4)
	return map[string]interface{}{
		"hunt_analysis": map[string]interface{}{
			"hunt_id":        hunt.String("hunt_id"),
			"verdict":        g.Pick([]string{"benign", "suspicious", "malicious", "inconclusive"}),
			"findings":       g.PickN(huntFindings, n),
			"hosts_affected": g.IntBetween(0, 200),
			"confidence":     g.HighConfidence(),
		},
	}, nil
}

func huntCreate(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	huntType := p.String("type")
	if huntType == "" {
		huntType = g.Pick(huntTypes)
	}
	return map[string]interface{}{
		"hunt_id":       g.ID("hunt"),
		"type":          huntType,
		"state":         "queued",
		"estimated_min": g.IntBetween(5, 240),
	}, nil
}
