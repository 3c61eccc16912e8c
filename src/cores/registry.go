package cores

import (
	"fmt"
	"sort"
	"sync"

	"github.com/phantom-spire/core-studio/src/model"
	"github.com/phantom-spire/core-studio/src/synth"
)

// Registry holds all available cores keyed by module name.
type Registry struct {
	mu    sync.RWMutex
	cores map[string]*Core
}

// NewRegistry creates an empty core registry.
func NewRegistry() *Registry {
	return &Registry{cores: make(map[string]*Core)}
}

// Register adds a core to the registry.
func (r *Registry) Register(c *Core) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cores[c.Name()] = c
}

// Get returns a core by module name.
func (r *Registry) Get(name string) (*Core, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cores[name]
	if !ok {
		return nil, fmt.Errorf("module %q: %w", name, model.ErrNotFound)
	}
	return c, nil
}

// Names returns the registered module names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.cores))
	for name := range r.cores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered cores.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cores)
}

// CoreReport describes one core for the verification endpoint.
type CoreReport struct {
	Module          string   `json:"module"`
	Source          string   `json:"source"`
	Accessible      bool     `json:"accessible"`
	ReadOperations  []string `json:"read_operations"`
	WriteOperations []string `json:"write_operations"`
	Error           string   `json:"error,omitempty"`
}

// Verify probes every registered core and reports its discovered
// operation surface. Probe failures are recorded per core, never
// propagated: a missing or broken core still produces a report row.
func (r *Registry) Verify() []CoreReport {
	reports := make([]CoreReport, 0, r.Count())
	for _, name := range r.Names() {
		c, err := r.Get(name)
		if err != nil {
			reports = append(reports, CoreReport{
				Module:     name,
				Accessible: false,
				Error:      err.Error(),
			})
			continue
		}
		readOps := c.Operations(VerbRead)
		writeOps := c.Operations(VerbWrite)
		sort.Strings(readOps)
		sort.Strings(writeOps)
		reports = append(reports, CoreReport{
			Module:          name,
			Source:          c.Source(),
			Accessible:      true,
			ReadOperations:  readOps,
			WriteOperations: writeOps,
		})
	}
	return reports
}

// DefaultRegistry creates a registry with every phantom core wired to
// the given generator.
func DefaultRegistry(g *synth.Generator) *Registry {
	r := NewRegistry()
	r.Register(NewCVE(g))
	r.Register(NewMITRE(g))
	r.Register(NewHunting(g))
	r.Register(NewRisk(g))
	r.Register(NewReputation(g))
	r.Register(NewSecOp(g))
	r.Register(NewIncidentResponse(g))
	r.Register(NewForensics(g))
	r.Register(NewXDR(g))
	r.Register(NewSandbox(g))
	r.Register(NewIntel(g))
	return r
}
