package cores

import (
	"context"
	"fmt"
	"strings"

	"github.com/phantom-spire/core-studio/src/model"
	"github.com/phantom-spire/core-studio/src/synth"
)

// CVE analysis operations.
const (
	opCVELookup   Operation = "lookup"
	opCVETrending Operation = "trending"
	opCVEStats    Operation = "stats"
	opCVEAnalyze  Operation = "analyze"
	opCVEImpact   Operation = "assess-impact"
)

var (
	cveSeverities = []string{"CRITICAL", "HIGH", "MEDIUM", "LOW"}
	cveVectors    = []string{"NETWORK", "ADJACENT", "LOCAL", "PHYSICAL"}
	cveProducts   = []string{
		"apache-httpd", "openssl", "nginx", "log4j", "exchange-server",
		"vmware-vcenter", "citrix-adc", "fortios", "confluence", "gitlab",
	}
	cveWeaknesses = []string{
		"CWE-79", "CWE-89", "CWE-22", "CWE-287", "CWE-502", "CWE-787", "CWE-416",
	}
)

// NewCVE builds the CVE intelligence core.
func NewCVE(g *synth.Generator) *Core {
	c := newCore("cve", "phantom-cve-core", g)

	c.registerRead(OpStatus, cveStatus)
	c.registerRead(opCVELookup, cveLookup)
	c.registerRead(opCVETrending, cveTrending)
	c.registerRead(opCVEStats, cveStats)
	c.registerWrite(opCVEAnalyze, cveAnalyze)
	c.registerWrite(opCVEImpact, cveImpact)

	return c
}

func cveStatus(_ context.Context, g *synth.Generator, _ Params) (interface{}, error) {
	return statusPayload(g, map[string]interface{}{
		"feeds_synced":    g.IntBetween(3, 12),
		"known_cves":      g.IntBetween(180000, 260000),
		"enrichment_rate": g.HighAccuracy(),
	}), nil
}

func cveRecord(g *synth.Generator, id string) map[string]interface{} {
	severity := g.Pick(cveSeverities)
	return map[string]interface{}{
		"cve_id":           id,
		"severity":         severity,
		"cvss_score":       g.Score(1.0, 10.0),
		"attack_vector":    g.Pick(cveVectors),
		"affected_product": g.Pick(cveProducts),
		"weaknesses":       g.PickN(cveWeaknesses, g.IntBetween(1, 3)),
		"exploited":        g.Bool(0.2),
		"patch_available":  g.Bool(0.7),
	}
}

func cveLookup(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	id := p.String("cve_id")
	if id == "" {
		return nil, fmt.Errorf("cve_id is a required field: %w", model.ErrValidation)
	}
	if !strings.HasPrefix(id, "CVE-") {
		return nil, fmt.Errorf("cve_id %q is malformed: %w", id, model.ErrValidation)
	}
	return map[string]interface{}{
		"record":     cveRecord(g, id),
		"references": g.IntBetween(1, 40),
		"confidence": g.HighConfidence(),
	}, nil
}

func cveTrending(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	limit := p.Int("limit", 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}
	records := make([]map[string]interface{}, 0, limit)
	for i := 0; i < limit; i++ {
		id := fmt.Sprintf("CVE-%d-%d", g.IntBetween(2019, 2026), g.IntBetween(1000, 49999))
		rec := cveRecord(g, id)
		rec["mention_velocity"] = g.Score(0, 100)
		records = append(records, rec)
	}
	return map[string]interface{}{
		"trending": records,
		"window":   "24h",
	}, nil
}

func cveStats(_ context.Context, g *synth.Generator, _ Params) (interface{}, error) {
	bySeverity := make(map[string]int, len(cveSeverities))
	for _, s := range cveSeverities {
		bySeverity[s] = g.IntBetween(100, 20000)
	}
	return map[string]interface{}{
		"by_severity":     bySeverity,
		"published_today": g.IntBetween(0, 120),
		"exploited_known": g.IntBetween(50, 1200),
	}, nil
}

func cveAnalyze(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	data := p.Map("cveData")
	if data == nil {
		return nil, fmt.Errorf("cveData is a required field: %w", model.ErrValidation)
	}
	id := data.String("cve_id")
	if id == "" {
		id = fmt.Sprintf("CVE-%d-%d", g.IntBetween(2023, 2026), g.IntBetween(1000, 49999))
	}
	return map[string]interface{}{
		"analysis_id":      g.ID("cve-analysis"),
		"record":           cveRecord(g, id),
		"exploit_maturity": g.Pick([]string{"unproven", "poc", "functional", "weaponized"}),
		"confidence":       g.HighConfidence(),
	}, nil
}

func cveImpact(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	assets := p.Int("asset_count", g.IntBetween(50, 5000))
	exposed := g.IntBetween(0, assets)
	return map[string]interface{}{
		"assessment_id":    g.ID("impact"),
		"assets_in_scope":  assets,
		"assets_exposed":   exposed,
		"blast_radius":     g.Pick([]string{"contained", "segment", "site", "enterprise"}),
		"remediation_days": g.IntBetween(1, 90),
		"confidence":       g.HighConfidence(),
	}, nil
}
