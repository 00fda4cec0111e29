// File: accel/mock.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Device is a fixed-budget in-process stand-in for a real accelerator
// context, used by scheduler tests that exercise the prefetch path
// without a physical device.

package accel

import (
	"sync"

	"github.com/momentics/vecpipe/api"
	"github.com/momentics/vecpipe/pool"
)

// stagingBufBytes is the fixed size of the scratch buffer each
// PrefetchRowRange call stages through; real device transfers would size
// this per row-range, but a fixed pool buffer is enough to exercise the
// staging path without a real device.
const stagingBufBytes = 4096

// Device records every PrefetchRowRange call against a fixed memory
// budget. It stages each call's bytes through a pool.BytePool rather than
// allocating fresh, the way a real accelerator's pinned staging buffer
// would be reused across prefetches.
type Device struct {
	budget int64
	staged *pool.BytePool

	mu         sync.Mutex
	prefetched []api.Interval
}

// NewDevice returns a Device advertising budget bytes of memory.
func NewDevice(budget int64) *Device {
	return &Device{budget: budget, staged: pool.NewBytePool(stagingBufBytes, -1, false)}
}

func (d *Device) MemBudget() int64 { return d.budget }
func (d *Device) Available() bool  { return true }

func (d *Device) PrefetchRowRange(r api.Interval) error {
	buf := d.staged.GetBuffer()
	defer d.staged.PutBuffer(buf)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.prefetched = append(d.prefetched, r)
	return nil
}

// Prefetched returns the ranges staged so far, in call order.
func (d *Device) Prefetched() []api.Interval {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]api.Interval(nil), d.prefetched...)
}

var _ Context = (*Device)(nil)
