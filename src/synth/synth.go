// Package synth generates bounded pseudo-random domain values for the
// phantom cores. The random source is injected and seedable so tests
// can pin a seed and get reproducible output; it is not cryptographic
// and must never feed production telemetry.
package synth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Generator produces pseudo-random values from a seedable source.
// Safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *mathrand.Rand
}

// New returns a generator seeded deterministically.
func New(seed int64) *Generator {
	return &Generator{rng: mathrand.New(mathrand.NewSource(seed))}
}

// NewRandom returns a generator seeded from the current time.
func NewRandom() *Generator {
	return New(time.Now().UnixNano())
}

// IntBetween returns an integer in [min, max] inclusive.
// Swapped bounds are tolerated.
func (g *Generator) IntBetween(min, max int) int {
	if min > max {
		min, max = max, min
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return min + g.rng.Intn(max-min+1)
}

// Float01 returns a float in [0, 1).
func (g *Generator) Float01() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

// Score returns a float in [lo, hi).
func (g *Generator) Score(lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return lo + g.rng.Float64()*(hi-lo)
}

// HighConfidence returns a float in [0.75, 1), biased toward the
// upper portion of the unit interval.
func (g *Generator) HighConfidence() float64 {
	return g.Score(0.75, 1.0)
}

// HighAccuracy returns a float in [0.85, 1).
func (g *Generator) HighAccuracy() float64 {
	return g.Score(0.85, 1.0)
}

// Pick samples one item from a non-empty enumeration.
func (g *Generator) Pick(items []string) string {
	if len(items) == 0 {
		return ""
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return items[g.rng.Intn(len(items))]
}

// PickN samples up to n distinct items without replacement. The
// input slice is not modified.
func (g *Generator) PickN(items []string, n int) []string {
	if n <= 0 || len(items) == 0 {
		return []string{}
	}
	if n > len(items) {
		n = len(items)
	}
	g.mu.Lock()
	perm := g.rng.Perm(len(items))
	g.mu.Unlock()

	out := make([]string, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, items[idx])
	}
	return out
}

// Bool returns true with the given probability in [0, 1].
func (g *Generator) Bool(probability float64) bool {
	return g.Float01() < probability
}

// ID returns a prefixed hex identifier, e.g. "hunt-3fa92c01".
func (g *Generator) ID(prefix string) string {
	g.mu.Lock()
	v := g.rng.Uint32()
	g.mu.Unlock()
	return fmt.Sprintf("%s-%08x", prefix, v)
}

// UUID returns a random UUID string. Uses the crypto source from the
// uuid package, not the seeded generator: identifiers need uniqueness,
// not reproducibility.
func UUID() string {
	return uuid.NewString()
}

// ULID returns a lexicographically sortable identifier.
func ULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// Token returns n random bytes hex-encoded, from the crypto source.
func Token(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	return hex.EncodeToString(b)
}
