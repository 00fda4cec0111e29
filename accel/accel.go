// File: accel/accel.go
// Package accel is the Accelerator Context external collaborator (spec
// §6/§4.4/§4.6): memory budget and row-range prefetch for accelerator
// workers, with a CPU-only fallback when no device is present (spec §7
// AcceleratorUnavailable).
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package accel

import (
	"math"

	"github.com/momentics/vecpipe/api"
)

// Context is the device-memory budget and prefetch surface an accelerator
// Worker stages inputs through before invoking a pipeline function.
type Context interface {
	// MemBudget returns the device's usable memory in bytes.
	MemBudget() int64
	// PrefetchRowRange stages rows [r.Start, r.End) of an input into device
	// memory ahead of a pipeline invocation.
	PrefetchRowRange(r api.Interval) error
	// Available reports whether a physical device backs this Context.
	Available() bool
}

// Unavailable is the CPU-only fallback used when useAccelerator is set but
// no device was found, or when accelerators are not configured at all
// (spec §7 AcceleratorUnavailable: fall back to CPU-only workers).
type Unavailable struct{}

func (Unavailable) MemBudget() int64                       { return 0 }
func (Unavailable) PrefetchRowRange(api.Interval) error    { return api.ErrAcceleratorUnavailable }
func (Unavailable) Available() bool                        { return false }

var _ Context = Unavailable{}

// BufferUsageRatio is memRequired/budget. A budget <= 0 (no device, or a
// device that reports no usable memory) yields +Inf so ShouldPrefetch
// always declines.
func BufferUsageRatio(memRequired, budget int64) float64 {
	if budget <= 0 {
		return math.Inf(1)
	}
	return float64(memRequired) / float64(budget)
}

// ShouldPrefetch gates a prefetch on the accelerator being present and the
// total in/out buffer usage ratio staying under 1.0, porting the source's
// cudaPrefetchInputs guard (SPEC_FULL.md supplemented feature).
func ShouldPrefetch(ctx Context, memRequired int64) bool {
	if ctx == nil || !ctx.Available() {
		return false
	}
	return BufferUsageRatio(memRequired, ctx.MemBudget()) < 1.0
}
