package cores

import (
	"context"
	"fmt"

	"github.com/phantom-spire/core-studio/src/model"
	"github.com/phantom-spire/core-studio/src/synth"
)

// Sandbox detonation operations.
const (
	opSandboxQueue  Operation = "queue"
	opSandboxReport Operation = "report"
	opSandboxSubmit Operation = "submit"
)

var (
	sandboxEnvironments = []string{"win10-x64", "win11-x64", "ubuntu-22.04", "macos-14", "android-13"}
	sandboxBehaviors    = []string{
		"registry persistence", "process hollowing", "keylogging hooks",
		"c2 beacon", "ransom note dropped", "credential store access",
		"anti-vm checks", "scheduled task creation",
	}
)

// NewSandbox builds the detonation sandbox core.
func NewSandbox(g *synth.Generator) *Core {
	c := newCore("sandbox", "phantom-sandbox-core", g)

	c.registerRead(OpStatus, sandboxStatus)
	c.registerRead(opSandboxQueue, sandboxQueue)
	c.registerRead(opSandboxReport, sandboxReport)
	c.registerWrite(opSandboxSubmit, sandboxSubmit)

	return c
}

func sandboxStatus(_ context.Context, g *synth.Generator, _ Params) (interface{}, error) {
	return statusPayload(g, map[string]interface{}{
		"environments":     len(sandboxEnvironments),
		"detonations_24h":  g.IntBetween(0, 5000),
		"avg_runtime_sec":  g.IntBetween(60, 600),
	}), nil
}

func sandboxQueue(_ context.Context, g *synth.Generator, _ Params) (interface{}, error) {
	return map[string]interface{}{
		"pending":   g.IntBetween(0, 80),
		"running":   g.IntBetween(0, 16),
		"wait_min":  g.IntBetween(0, 45),
	}, nil
}

func sandboxReport(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	sampleID := p.String("sample_id")
	if sampleID == "" {
		return nil, fmt.Errorf("sample_id is a required field: %w", model.ErrValidation)
	}
	malicious := g.Bool(0.4)
	behaviors := []string{}
	if malicious {
		behaviors = g.PickN(sandboxBehaviors, g.IntBetween(2, 5))
	}
	return map[string]interface{}{
		"report": map[string]interface{}{
			"sample_id":   sampleID,
			"environment": g.Pick(sandboxEnvironments),
			"verdict":     map[bool]string{true: "malicious", false: "benign"}[malicious],
			"score":       g.IntBetween(0, 100),
			"behaviors":   behaviors,
			"runtime_sec": g.IntBetween(60, 600),
		},
	}, nil
}

func sandboxSubmit(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	sample := p.Map("sampleData")
	if sample == nil {
		return nil, fmt.Errorf("sampleData is a required field: %w", model.ErrValidation)
	}
	env := sample.String("environment")
	if env == "" {
		env = g.Pick(sandboxEnvironments)
	}
	return map[string]interface{}{
		"sample_id":   g.ID("sample"),
		"environment": env,
		"state":       "queued",
		"eta_min":     g.IntBetween(1, 30),
	}, nil
}
