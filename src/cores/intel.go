package cores

import (
	"context"
	"fmt"

	"github.com/phantom-spire/core-studio/src/model"
	"github.com/phantom-spire/core-studio/src/synth"
)

// Threat intelligence operations.
const (
	opIntelActors  Operation = "actors"
	opIntelFeeds   Operation = "feeds"
	opIntelEnrich  Operation = "enrich"
)

var (
	intelActorNames = []string{
		"VELVET CICADA", "CRIMSON MANTIS", "IRON WOLF", "GLASS VIPER",
		"SABLE HERON", "QUARTZ SPIDER",
	}
	intelMotivations = []string{"espionage", "financial", "hacktivism", "destruction"}
	intelRegions     = []string{"global", "emea", "apac", "amer"}
)

// NewIntel builds the threat intelligence core.
func NewIntel(g *synth.Generator) *Core {
	c := newCore("intel", "phantom-intel-core", g)

	c.registerRead(OpStatus, intelStatus)
	c.registerRead(opIntelActors, intelActors)
	c.registerRead(opIntelFeeds, intelFeeds)
	c.registerWrite(opIntelEnrich, intelEnrich)

	return c
}

func intelStatus(_ context.Context, g *synth.Generator, _ Params) (interface{}, error) {
	return statusPayload(g, map[string]interface{}{
		"actors_tracked": g.IntBetween(50, 600),
		"reports_month":  g.IntBetween(5, 200),
	}), nil
}

func intelActors(_ context.Context, g *synth.Generator, _ Params) (interface{}, error) {
	n := g.IntBetween(2, len(intelActorNames))
	actors := make([]map[string]interface{}, 0, n)
	for _, name := range g.PickN(intelActorNames, n) {
		actors = append(actors, map[string]interface{}{
			"name":        name,
			"motivation":  g.Pick(intelMotivations),
			"region":      g.Pick(intelRegions),
			"active":      g.Bool(0.7),
			"ttps_known":  g.IntBetween(5, 80),
		})
	}
	return map[string]interface{}{"actors": actors}, nil
}

func intelFeeds(_ context.Context, g *synth.Generator, _ Params) (interface{}, error) {
	n := g.IntBetween(3, 10)
	feeds := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		feeds = append(feeds, map[string]interface{}{
			"feed_id":        g.ID("feed"),
			"indicators_24h": g.IntBetween(0, 50000),
			"freshness_min":  g.IntBetween(1, 360),
			"healthy":        g.Bool(0.9),
		})
	}
	return map[string]interface{}{"feeds": feeds}, nil
}

func intelEnrich(_ context.Context, g *synth.Generator, p Params) (interface{}, error) {
	indicator := p.String("indicator")
	if indicator == "" {
		return nil, fmt.Errorf("indicator is a required field: %w", model.ErrValidation)
	}
	related := g.Bool(0.5)
	enrichment := map[string]interface{}{
		"indicator":  indicator,
		"sightings":  g.IntBetween(0, 2000),
		"campaigns":  g.IntBetween(0, 5),
		"confidence": g.HighConfidence(),
	}
	if related {
		enrichment["attributed_actor"] = g.Pick(intelActorNames)
	}
	return map[string]interface{}{"enrichment": enrichment}, nil
}
