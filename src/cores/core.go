// Package cores implements the phantom-cores analysis modules. Each
// core owns a closed set of operations dispatched by name at the wire
// boundary; handlers are pure functions of their parameters plus an
// injected generator, with no I/O and no shared mutable state.
package cores

import (
	"context"
	"fmt"
	"strconv"

	"github.com/phantom-spire/core-studio/src/model"
	"github.com/phantom-spire/core-studio/src/synth"
)

// Operation identifies a single handler within a core. The free-form
// request string is converted to an Operation only at dispatch.
type Operation string

// Verb selects which dispatch table an operation resolves against.
type Verb int

const (
	VerbRead Verb = iota
	VerbWrite
)

func (v Verb) String() string {
	if v == VerbWrite {
		return "write"
	}
	return "read"
}

// OpStatus is supported by every core as a read operation.
const OpStatus Operation = "status"

// Params is the decoded parameter bag for one request.
type Params map[string]interface{}

// String returns the string value for key, or "" when absent or not
// a string.
func (p Params) String(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// Int returns the integer value for key, tolerating JSON's float64
// decoding and query-string values, or def when absent or unparsable.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Map returns the nested object for key, or nil when absent.
func (p Params) Map(key string) Params {
	if v, ok := p[key].(map[string]interface{}); ok {
		return Params(v)
	}
	return nil
}

// Handler produces the data payload for one operation.
type Handler func(ctx context.Context, g *synth.Generator, p Params) (interface{}, error)

// Core bundles a module's dispatch tables with its identity.
type Core struct {
	name   string
	source string
	gen    *synth.Generator
	read   map[Operation]Handler
	write  map[Operation]Handler
}

func newCore(name, source string, g *synth.Generator) *Core {
	return &Core{
		name:   name,
		source: source,
		gen:    g,
		read:   make(map[Operation]Handler),
		write:  make(map[Operation]Handler),
	}
}

// Name returns the module name used in request paths.
func (c *Core) Name() string { return c.name }

// Source returns the identifier reported in response envelopes.
func (c *Core) Source() string { return c.source }

func (c *Core) table(v Verb) map[Operation]Handler {
	if v == VerbWrite {
		return c.write
	}
	return c.read
}

func (c *Core) registerRead(op Operation, h Handler)  { c.read[op] = h }
func (c *Core) registerWrite(op Operation, h Handler) { c.write[op] = h }

// Operations lists the operation names a verb supports.
func (c *Core) Operations(v Verb) []string {
	tbl := c.table(v)
	ops := make([]string, 0, len(tbl))
	for op := range tbl {
		ops = append(ops, string(op))
	}
	return ops
}

// Supports reports whether the verb's table contains the operation.
func (c *Core) Supports(v Verb, op Operation) bool {
	_, ok := c.table(v)[op]
	return ok
}

// Dispatch resolves and runs an operation. An unresolvable name
// yields an UnknownOperationError listing the verb's valid
// operations; handler errors are returned wrapped, never panicked.
func (c *Core) Dispatch(ctx context.Context, v Verb, op Operation, p Params) (interface{}, error) {
	handler, ok := c.table(v)[op]
	if !ok {
		return nil, &model.UnknownOperationError{
			Module:    c.name,
			Operation: string(op),
			Available: c.Operations(v),
		}
	}
	if p == nil {
		p = Params{}
	}
	data, err := handler(ctx, c.gen, p)
	if err != nil {
		return nil, fmt.Errorf("%s %s/%s: %w", v, c.name, op, err)
	}
	return data, nil
}

// statusPayload is the common shape of every core's status operation.
func statusPayload(g *synth.Generator, metrics map[string]interface{}) map[string]interface{} {
	metrics["samples_analyzed"] = g.IntBetween(0, 500000)
	metrics["uptime_hours"] = g.IntBetween(1, 8760)
	metrics["queue_depth"] = g.IntBetween(0, 64)
	return map[string]interface{}{
		"status":  "operational",
		"version": "2.4.1",
		"metrics": metrics,
	}
}
