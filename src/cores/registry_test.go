package cores

import (
	"context"
	"testing"

	"github.com/phantom-spire/core-studio/src/synth"
)

// sweepParams supplies the minimal valid parameters for operations
// that require input. Operations not listed dispatch with empty
// params.
var sweepParams = map[string]Params{
	"cve/lookup":          {"cve_id": "CVE-2024-12345"},
	"cve/analyze":         {"cveData": map[string]interface{}{"cve_id": "CVE-2024-12345"}},
	"mitre/analyze-ttp":   {"ttpData": map[string]interface{}{"technique_id": "T1566.001", "tactic": "Initial Access"}},
	"mitre/map-alert":     {"alertData": map[string]interface{}{"id": "alert-1"}},
	"hunting/analyze":     {"huntData": map[string]interface{}{"hunt_id": "hunt-1"}},
	"risk/assess":         {"targetData": map[string]interface{}{"name": "payments-cluster"}},
	"reputation/lookup":   {"indicator": "198.51.100.7"},
	"reputation/bulk-score": {"indicators": []interface{}{"198.51.100.7", "evil.example"}},
	"secop/triage":        {"alertData": map[string]interface{}{"alert_id": "alert-2"}},
	"secop/escalate":      {"alert_id": "alert-2"},
	"incident-response/timeline":      {"incident_id": "inc-9"},
	"incident-response/open-incident": {"incidentData": map[string]interface{}{"severity": "sev2"}},
	"incident-response/contain":       {"incident_id": "inc-9"},
	"forensics/acquire":          {"host": "ws-0113"},
	"forensics/examine-artifact": {"artifactData": map[string]interface{}{"artifact_id": "art-4"}},
	"xdr/correlate":  {"detection_ids": []interface{}{"det-1", "det-2"}},
	"xdr/respond":    {"detection_id": "det-1"},
	"sandbox/report": {"sample_id": "sample-77"},
	"sandbox/submit": {"sampleData": map[string]interface{}{"environment": "win10-x64"}},
	"intel/enrich":   {"indicator": "evil.example"},
}

func TestDefaultRegistryModules(t *testing.T) {
	r := DefaultRegistry(synth.New(1))

	want := []string{
		"cve", "forensics", "hunting", "incident-response", "intel",
		"mitre", "reputation", "risk", "sandbox", "secop", "xdr",
	}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("Expected %d modules, got %d: %v", len(want), len(got), got)
	}
	for i, name := range want {
		if got[i] != name {
			t.Errorf("Expected module %q at index %d, got %q", name, i, got[i])
		}
	}
}

// Every valid operation of every core must dispatch to a success,
// never an error, when given valid parameters.
func TestAllOperationsDispatch(t *testing.T) {
	r := DefaultRegistry(synth.New(7))
	ctx := context.Background()

	for _, name := range r.Names() {
		core, err := r.Get(name)
		if err != nil {
			t.Fatalf("Get(%q): %v", name, err)
		}
		for _, verb := range []Verb{VerbRead, VerbWrite} {
			for _, op := range core.Operations(verb) {
				params := sweepParams[name+"/"+op]
				data, err := core.Dispatch(ctx, verb, Operation(op), params)
				if err != nil {
					t.Errorf("%s %s/%s: unexpected error %v", verb, name, op, err)
					continue
				}
				if data == nil {
					t.Errorf("%s %s/%s: expected non-nil data", verb, name, op)
				}
			}
		}
	}
}

// Every core must expose a read status operation reporting an
// operational state with non-negative sample counts.
func TestEveryCoreHasStatus(t *testing.T) {
	r := DefaultRegistry(synth.New(3))
	ctx := context.Background()

	for _, name := range r.Names() {
		core, _ := r.Get(name)
		if !core.Supports(VerbRead, OpStatus) {
			t.Errorf("Core %q does not support status", name)
			continue
		}
		data, err := core.Dispatch(ctx, VerbRead, OpStatus, nil)
		if err != nil {
			t.Errorf("%s/status: %v", name, err)
			continue
		}
		payload, ok := data.(map[string]interface{})
		if !ok {
			t.Errorf("%s/status: expected map payload", name)
			continue
		}
		if payload["status"] != "operational" {
			t.Errorf("%s/status: expected 'operational', got %v", name, payload["status"])
		}
		metrics, ok := payload["metrics"].(map[string]interface{})
		if !ok {
			t.Errorf("%s/status: expected metrics map", name)
			continue
		}
		samples, ok := metrics["samples_analyzed"].(int)
		if !ok || samples < 0 {
			t.Errorf("%s/status: expected non-negative samples_analyzed, got %v",
				name, metrics["samples_analyzed"])
		}
	}
}

func TestVerify(t *testing.T) {
	r := DefaultRegistry(synth.New(5))

	reports := r.Verify()
	if len(reports) != r.Count() {
		t.Fatalf("Expected %d reports, got %d", r.Count(), len(reports))
	}
	for _, rep := range reports {
		if !rep.Accessible {
			t.Errorf("Core %q reported inaccessible: %s", rep.Module, rep.Error)
		}
		if len(rep.ReadOperations) == 0 {
			t.Errorf("Core %q reported no read operations", rep.Module)
		}
		if rep.Source == "" {
			t.Errorf("Core %q reported empty source", rep.Module)
		}
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	r := DefaultRegistry(synth.New(1))
	if _, err := r.Get("nonexistent"); err == nil {
		t.Error("Expected error for unknown module")
	}
}
