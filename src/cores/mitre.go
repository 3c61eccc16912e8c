package cores

import (
	"context"
	"fmt"

	"github.com/phantom-spire/core-studio/src/model"
	"github.com/phantom-spire/core-studio/src/synth"
)

// MITRE ATT&CK mapping operations.
const (
	opMITRETactics    Operation = "tactics"
	opMITRECoverage   Operation = "coverage"
	opMITREAnalyzeTTP Operation = "analyze-ttp"
	opMITREMapAlert   Operation = "map-alert"
)

var (
	mitreTactics = []string{
		"Reconnaissance", "Resource Development", "Initial Access", "Execution",
		"Persistence", "Privilege Escalation", "Defense Evasion", "Credential Access",
		"Discovery", "Lateral Movement", "Collection", "Command and Control",
		"Exfiltration", "Impact",
	}
	mitreTechniques = []string{
		"T1059.001", "T1566.001", "T1021.002", "T1547.001", "T1055",
		"T1003.001", "T1486", "T1071.001", "T1105", "T1018",
	}
	mitreDataSources = []string{
		"process creation", "network traffic", "authentication logs",
		"file monitoring", "registry", "dns", "cloud audit logs",
	}
)

// NewMITRE builds the ATT&CK mapping core.
func NewMITRE(g *synth.Generator) *Core {
	c := newCore("mitre", "phantom-mitre-core", g)

	c.registerRead(OpStatus, mitreStatus)
	c.registerRead(opMITRETactics, mitreListTactics)
	c.registerRead(opMITRECoverage, mitreCoverage)
	c.registerWrite(opMITREAnalyzeTTP, mitreAnalyzeTTP)
	c.registerWrite(opMITREMapAlert, mitreMapAlert)

	return c
}

func mitreStatus(_ context.Context, g *synth.Generator, _ Params) (interface{}, error) {
	return statusPayload(g, map[string]interface{}{
		"framework_version": "v15.1",
		"techniques_mapped": g.IntBetween(400, 650),
		"mapping_accuracy":  g.HighAccuracy(),
	}), nil
}

func mitreListTactics(_ context.Context, g *synth.Generator, _ Params) (interface{}, error) {
	tactics := make([]map[string]interface{}, 0, len(mitreTactics))
	for _, name := range mitreTactics {
		tactics = append(tactics, map[string]interface{}{
			"name":            name,
			"techniques_seen": g.IntBetween(0, 40),
			"detection_rate":  g.Score(0.3, 1.0),
		})
	}
	return map[string]interface{}{"tactics": tactics}, nil
}

func mitreCoverage(_ context.Context, g *synth.Generator, _ Params) (interface{}, error) {
	return map[string]interface{}{
		"overall_coverage": g.Score(0.4, 0.95),
		"covered":          g.IntBetween(200, 500),
		"total":            625,
		"gaps":             g.PickN(mitreTechniques, g.IntBetween(2, 5)),
		"data_sources":     g.PickN(mitreDataSources, g.IntBetween(3, 6)),
	}, nil
}

// mitreAnalyzeTTP profiles a technique submitted by the caller. The
// technique_id and tactic are echoed back so the profile stays tied
// to the request.
func mitreAnalyzeTTP(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	ttp := p.Map("ttpData")
	if ttp == nil {
		return nil, fmt.Errorf("ttpData is a required field: %w", model.ErrValidation)
	}
	techniqueID := ttp.String("technique_id")
	if techniqueID == "" {
		return nil, fmt.Errorf("ttpData.technique_id is a required field: %w", model.ErrValidation)
	}
	tactic := ttp.String("tactic")
	if tactic == "" {
		tactic = g.Pick(mitreTactics)
	}

	return map[string]interface{}{
		"ttp_profile": map[string]interface{}{
			"technique_id":    techniqueID,
			"tactic":          tactic,
			"coverage_score":  g.Float01(),
			"prevalence":      g.Pick([]string{"rare", "occasional", "common", "pervasive"}),
			"detection_rules": g.IntBetween(0, 25),
			"related":         g.PickN(mitreTechniques, g.IntBetween(1, 4)),
		},
		"confidence": g.HighConfidence(),
	}, nil
}

func mitreMapAlert(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	alert := p.Map("alertData")
	if alert == nil {
		return nil, fmt.Errorf("alertData is a required field: %w", model.ErrValidation)
	}
	n := g.IntBetween(1, 4)
	mappings := make([]map[string]interface{}, 0, n)
	for _, technique := range g.PickN(mitreTechniques, n) {
		mappings = append(mappings, map[string]interface{}{
			"technique_id": technique,
			"tactic":       g.Pick(mitreTactics),
			"score":        g.Score(0.5, 1.0),
		})
	}
	return map[string]interface{}{
		"alert_id": alert.String("id"),
		"mappings": mappings,
	}, nil
}
