package cores

import (
	"context"
	"fmt"

	"github.com/phantom-spire/core-studio/src/model"
	"github.com/phantom-spire/core-studio/src/synth"
)

// Digital forensics operations.
const (
	opForCases    Operation = "cases"
	opForAcquire  Operation = "acquire"
	opForExamine  Operation = "examine-artifact"
)

var (
	forensicArtifacts = []string{
		"memory-image", "disk-image", "mft", "event-logs", "browser-history",
		"prefetch", "registry-hive", "pcap",
	}
	forensicTools = []string{"carver", "timeline-builder", "string-extractor", "hash-matcher"}
)

// NewForensics builds the forensics core.
func NewForensics(g *synth.Generator) *Core {
	c := newCore("forensics", "phantom-forensics-core", g)

	c.registerRead(OpStatus, forStatus)
	c.registerRead(opForCases, forCases)
	c.registerWrite(opForAcquire, forAcquire)
	c.registerWrite(opForExamine, forExamine)

	return c
}

func forStatus(_ context.Context, g *synth.Generator, _ Params) (interface{}, error) {
	return statusPayload(g, map[string]interface{}{
		"open_cases":       g.IntBetween(0, 15),
		"evidence_items":   g.IntBetween(10, 4000),
		"storage_used_gb":  g.IntBetween(100, 90000),
	}), nil
}

func forCases(_ context.Context, g *synth.Generator, _ Params) (interface{}, error) {
	n := g.IntBetween(1, 8)
	cases := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		cases = append(cases, map[string]interface{}{
			"case_id":   g.ID("case"),
			"artifacts": g.IntBetween(1, 50),
			"state":     g.Pick([]string{"intake", "processing", "analysis", "reporting"}),
			"chain_of_custody": g.Bool(0.95),
		})
	}
	return map[string]interface{}{"cases": cases}, nil
}

func forAcquire(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	host := p.String("host")
	if host == "" {
		return nil, fmt.Errorf("host is a required field: %w", model.ErrValidation)
	}
	return map[string]interface{}{
		"acquisition_id": g.ID("acq"),
		"host":           host,
		"artifacts":      g.PickN(forensicArtifacts, g.IntBetween(2, 5)),
		"estimated_min":  g.IntBetween(10, 180),
		"integrity":      "sha256-verified",
	}, nil
}

func forExamine(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	artifact := p.Map("artifactData")
	if artifact == nil {
		return nil, fmt.Errorf("artifactData is a required field: %w", model.ErrValidation)
	}
	return map[string]interface{}{
		"examination": map[string]interface{}{
			"artifact_id": artifact.String("artifact_id"),
			"type":        g.Pick(forensicArtifacts),
			"tools_run":   g.PickN(forensicTools, g.IntBetween(1, 3)),
			"iocs_found":  g.IntBetween(0, 30),
			"notable":     g.Bool(0.35),
			"confidence":  g.HighConfidence(),
		},
	}, nil
}
