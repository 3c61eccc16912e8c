package cores

import (
	"context"
	"fmt"

	"github.com/phantom-spire/core-studio/src/model"
	"github.com/phantom-spire/core-studio/src/synth"
)

// Incident response operations.
const (
	opIRIncidents Operation = "incidents"
	opIRTimeline  Operation = "timeline"
	opIROpen      Operation = "open-incident"
	opIRContain   Operation = "contain"
)

var (
	irSeverities = []string{"sev1", "sev2", "sev3", "sev4"}
	irPhases     = []string{"identification", "containment", "eradication", "recovery", "lessons-learned"}
	irActions    = []string{
		"host isolated", "account disabled", "indicator blocked",
		"memory captured", "ticket opened", "stakeholders notified",
	}
)

// NewIncidentResponse builds the incident response core.
func NewIncidentResponse(g *synth.Generator) *Core {
	c := newCore("incident-response", "phantom-ir-core", g)

	c.registerRead(OpStatus, irStatus)
	c.registerRead(opIRIncidents, irIncidents)
	c.registerRead(opIRTimeline, irTimeline)
	c.registerWrite(opIROpen, irOpen)
	c.registerWrite(opIRContain, irContain)

	return c
}

func irStatus(_ context.Context, g *synth.Generator, _ Params) (interface{}, error) {
	return statusPayload(g, map[string]interface{}{
		"open_incidents":   g.IntBetween(0, 20),
		"mttr_hours":       g.IntBetween(2, 96),
		"playbooks_loaded": g.IntBetween(10, 60),
	}), nil
}

func irIncidents(_ context.Context, g *synth.Generator, _ Params) (interface{}, error) {
	n := g.IntBetween(1, 10)
	incidents := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		incidents = append(incidents, map[string]interface{}{
			"incident_id": g.ID("inc"),
			"severity":    g.Pick(irSeverities),
			"phase":       g.Pick(irPhases),
			"age_hours":   g.IntBetween(0, 240),
		})
	}
	return map[string]interface{}{"incidents": incidents}, nil
}

func irTimeline(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	incidentID := p.String("incident_id")
	if incidentID == "" {
		return nil, fmt.Errorf("incident_id is a required field: %w", model.ErrValidation)
	}
	n := g.IntBetween(3, 8)
	events := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, map[string]interface{}{
			"sequence": i + 1,
			"action":   g.Pick(irActions),
			"phase":    g.Pick(irPhases),
			"actor":    g.Pick([]string{"automation", "analyst", "responder"}),
		})
	}
	return map[string]interface{}{
		"incident_id": incidentID,
		"events":      events,
	}, nil
}

func irOpen(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	data := p.Map("incidentData")
	if data == nil {
		return nil, fmt.Errorf("incidentData is a required field: %w", model.ErrValidation)
	}
	severity := data.String("severity")
	if severity == "" {
		severity = g.Pick(irSeverities)
	}
	return map[string]interface{}{
		"incident_id": g.ID("inc"),
		"severity":    severity,
		"phase":       "identification",
		"commander":   g.Pick([]string{"on-call-primary", "on-call-secondary"}),
	}, nil
}

func irContain(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	incidentID := p.String("incident_id")
	if incidentID == "" {
		return nil, fmt.Errorf("incident_id is a required field: %w", model.ErrValidation)
	}
	return map[string]interface{}{
		"incident_id":  incidentID,
		"actions":      g.PickN(irActions, g.IntBetween(1, 3)),
		"phase":        "containment",
		"success_rate": g.HighConfidence(),
	}, nil
}
