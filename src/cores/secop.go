package cores

import (
	"context"
	"fmt"

	"github.com/phantom-spire/core-studio/src/model"
	"github.com/phantom-spire/core-studio/src/synth"
)

// Security operations center operations.
const (
	opSecOpAlerts    Operation = "alerts"
	opSecOpShifts    Operation = "shift-summary"
	opSecOpTriage    Operation = "triage"
	opSecOpEscalate  Operation = "escalate"
)

var (
	secopAlertSources = []string{"edr", "siem", "ndr", "email-gateway", "waf", "dlp"}
	secopPriorities   = []string{"p1", "p2", "p3", "p4"}
)

// NewSecOp builds the security operations core.
func NewSecOp(g *synth.Generator) *Core {
	c := newCore("secop", "phantom-secop-core", g)

	c.registerRead(OpStatus, secopStatus)
	c.registerRead(opSecOpAlerts, secopAlerts)
	c.registerRead(opSecOpShifts, secopShift)
	c.registerWrite(opSecOpTriage, secopTriage)
	c.registerWrite(opSecOpEscalate, secopEscalate)

	return c
}

func secopStatus(_ context.Context, g *synth.Generator, _ Params) (interface{}, error) {
	return statusPayload(g, map[string]interface{}{
		"open_alerts":      g.IntBetween(0, 400),
		"mean_triage_min":  g.IntBetween(2, 45),
		"automation_rate":  g.Score(0.2, 0.9),
	}), nil
}

func secopAlerts(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	limit := p.Int("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	alerts := make([]map[string]interface{}, 0, limit)
	for i := 0; i < limit; i++ {
		alerts = append(alerts, map[string]interface{}{
			"alert_id": g.ID("alert"),
			"source":   g.Pick(secopAlertSources),
			"priority": g.Pick(secopPriorities),
			"age_min":  g.IntBetween(0, 720),
			"assigned": g.Bool(0.5),
		})
	}
	return map[string]interface{}{"alerts": alerts}, nil
}

func secopShift(_ context.Context, g *synth.Generator, _ Params) (interface{}, error) {
	return map[string]interface{}{
		"handled":        g.IntBetween(20, 300),
		"escalated":      g.IntBetween(0, 25),
		"false_positive": g.IntBetween(5, 150),
		"backlog_delta":  g.IntBetween(-40, 40),
	}, nil
}

func secopTriage(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	alert := p.Map("alertData")
	if alert == nil {
		return nil, fmt.Errorf("alertData is a required field: %w", model.ErrValidation)
	}
	return map[string]interface{}{
		"triage": map[string]interface{}{
			"alert_id":   alert.String("alert_id"),
			"disposition": g.Pick([]string{"benign", "true-positive", "needs-review"}),
			"priority":   g.Pick(secopPriorities),
			"playbook":   g.Pick([]string{"isolate-host", "reset-credentials", "block-indicator", "monitor"}),
			"confidence": g.HighConfidence(),
		},
	}, nil
}

func secopEscalate(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	alertID := p.String("alert_id")
	if alertID == "" {
		return nil, fmt.Errorf("alert_id is a required field: %w", model.ErrValidation)
	}
	return map[string]interface{}{
		"escalation_id": g.ID("esc"),
		"alert_id":      alertID,
		"tier":          g.Pick([]string{"tier2", "tier3", "incident-response"}),
		"sla_minutes":   g.IntBetween(15, 240),
	}, nil
}
