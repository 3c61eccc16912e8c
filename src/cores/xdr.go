package cores

import (
	"context"
	"fmt"

	"github.com/phantom-spire/core-studio/src/model"
	"github.com/phantom-spire/core-studio/src/synth"
)

// Extended detection and response operations.
const (
	opXDRDetections Operation = "detections"
	opXDRCorrelate  Operation = "correlate"
	opXDRRespond    Operation = "respond"
)

var (
	xdrSurfaces = []string{"endpoint", "network", "identity", "email", "cloud-workload"}
	xdrVerdicts = []string{"informational", "low", "medium", "high", "critical"}
)

// NewXDR builds the extended detection and response core.
func NewXDR(g *synth.Generator) *Core {
	c := newCore("xdr", "phantom-xdr-core", g)

	c.registerRead(OpStatus, xdrStatus)
	c.registerRead(opXDRDetections, xdrDetections)
	c.registerWrite(opXDRCorrelate, xdrCorrelate)
	c.registerWrite(opXDRRespond, xdrRespond)

	return c
}

func xdrStatus(_ context.Context, g *synth.Generator, _ Params) (interface{}, error) {
	return statusPayload(g, map[string]interface{}{
		"sensors_online":  g.IntBetween(50, 20000),
		"events_per_sec":  g.IntBetween(100, 90000),
		"detection_rules": g.IntBetween(200, 3000),
	}), nil
}

func xdrDetections(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	limit := p.Int("limit", 15)
	if limit < 1 || limit > 100 {
		limit = 15
	}
	detections := make([]map[string]interface{}, 0, limit)
	for i := 0; i < limit; i++ {
		detections = append(detections, map[string]interface{}{
			"detection_id": g.ID("det"),
			"surface":      g.Pick(xdrSurfaces),
			"verdict":      g.Pick(xdrVerdicts),
			"entities":     g.IntBetween(1, 12),
		})
	}
	return map[string]interface{}{"detections": detections}, nil
}

func xdrCorrelate(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	raw, ok := p["detection_ids"].([]interface{})
	if !ok || len(raw) < 2 {
		return nil, fmt.Errorf("detection_ids requires at least two entries: %w", model.ErrValidation)
	}
	return map[string]interface{}{
		"correlation": map[string]interface{}{
			"cluster_id":    g.ID("cluster"),
			"detections":    len(raw),
			"surfaces":      g.PickN(xdrSurfaces, g.IntBetween(2, 4)),
			"kill_chain":    g.Pick([]string{"delivery", "exploitation", "installation", "c2", "actions"}),
			"campaign_link": g.Bool(0.3),
			"confidence":    g.HighConfidence(),
		},
	}, nil
}

func xdrRespond(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	detectionID := p.String("detection_id")
	if detectionID == "" {
		return nil, fmt.Errorf("detection_id is a required field: %w", model.ErrValidation)
	}
	return map[string]interface{}{
		"response_id":  g.ID("resp"),
		"detection_id": detectionID,
		"action":       g.Pick([]string{"isolate", "kill-process", "quarantine-file", "revoke-session"}),
		"state":        "submitted",
	}, nil
}
