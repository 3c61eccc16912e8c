package cores

import (
	"context"
	"fmt"

	"github.com/phantom-spire/core-studio/src/model"
	"github.com/phantom-spire/core-studio/src/synth"
)

// Reputation scoring operations.
const (
	opRepLookup Operation = "lookup"
	opRepBulk   Operation = "bulk-score"
)

var (
	repIndicatorTypes = []string{"ip", "domain", "url", "file-hash", "email"}
	repTiers          = []string{"trusted", "neutral", "suspicious", "malicious"}
	repSources        = []string{
		"passive-dns", "sinkhole-telemetry", "spam-traps", "crawler",
		"partner-feed", "sandbox-detonations",
	}
)

// NewReputation builds the indicator reputation core.
func NewReputation(g *synth.Generator) *Core {
	c := newCore("reputation", "phantom-reputation-core", g)

	c.registerRead(OpStatus, repStatus)
	c.registerRead(opRepLookup, repLookup)
	c.registerWrite(opRepBulk, repBulk)

	return c
}

func repStatus(_ context.Context, g *synth.Generator, _ Params) (interface{}, error) {
	return statusPayload(g, map[string]interface{}{
		"indicators_tracked": g.IntBetween(1000000, 80000000),
		"feeds_active":       g.IntBetween(5, 40),
	}), nil
}

func repScore(g *synth.Generator, indicator, kind string) map[string]interface{} {
	return map[string]interface{}{
		"indicator":   indicator,
		"type":        kind,
		"tier":        g.Pick(repTiers),
		"score":       g.IntBetween(0, 100),
		"first_seen":  fmt.Sprintf("%d days ago", g.IntBetween(1, 900)),
		"sources":     g.PickN(repSources, g.IntBetween(1, 4)),
		"confidence":  g.HighConfidence(),
	}
}

func repLookup(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	indicator := p.String("indicator")
	if indicator == "" {
		return nil, fmt.Errorf("indicator is a required field: %w", model.ErrValidation)
	}
	kind := p.String("type")
	if kind == "" {
		kind = g.Pick(repIndicatorTypes)
	}
	return map[string]interface{}{
		"reputation": repScore(g, indicator, kind),
	}, nil
}

func repBulk(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	raw, ok := p["indicators"].([]interface{})
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("indicators is a required field: %w", model.ErrValidation)
	}
	if len(raw) > 500 {
		return nil, fmt.Errorf("indicators exceeds batch size 500: %w", model.ErrValidation)
	}
	scores := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		indicator, _ := item.(string)
		if indicator == "" {
			continue
		}
		scores = append(scores, repScore(g, indicator, g.Pick(repIndicatorTypes)))
	}
	return map[string]interface{}{
		"scores": scores,
		"total":  len(scores),
	}, nil
}
