// File: api/context.go
// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Strongly typed, extensible context contract carried through a pipeline
// call: the Go analogue of the source's DCTX(ctx) parameter threaded into
// every pipeline function. Deliberately not compatible with the standard
// library's context.Context — there is no deadline/cancellation semantics
// here (spec §5: cancellation is not supported mid-pipeline), only
// key-scoped propagation of run-level data (accelerator handle, verbosity,
// NUMA hints) down to pipeline functions.

package api

// Context provides a lightweight key-value store with explicit propagation
// semantics for one Execute* call.
type Context interface {
	// Set assigns a value for a key.
	Set(key string, value any)
	// Get fetches a value, returning (value, exists).
	Get(key string) (any, bool)
	// Clone returns a shallow copy of the context suitable for a worker's
	// private view (so pipeline functions cannot race on the shared map).
	Clone() Context
	// Verbose reports whether diagnostic output is enabled for this run.
	Verbose() bool
}

// mapContext is the default Context implementation.
type mapContext struct {
	values  map[string]any
	verbose bool
}

// NewContext creates an empty Context.
func NewContext(verbose bool) Context {
	return &mapContext{values: make(map[string]any), verbose: verbose}
}

func (c *mapContext) Set(key string, value any) { c.values[key] = value }

func (c *mapContext) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c *mapContext) Clone() Context {
	cp := make(map[string]any, len(c.values))
	for k, v := range c.values {
		cp[k] = v
	}
	return &mapContext{values: cp, verbose: c.verbose}
}

func (c *mapContext) Verbose() bool { return c.verbose }
