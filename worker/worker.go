// File: worker/worker.go
// Package worker implements the Worker component (spec §4.4, C5): the
// loop shared by every CPU/accelerator worker variant -- pop a Task from
// its home queue, steal from peers when idle, invoke the pipeline
// function, repeat until EOF.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package worker

import (
	"math/rand"
	"runtime"
	"sync/atomic"

	"github.com/momentics/vecpipe/api"
	"github.com/momentics/vecpipe/queue"
)

// State is a worker's position in the INIT->RUNNING->STEALING->BLOCKED->
// EXITING state machine (spec §4.8).
type State int32

const (
	StateInit State = iota
	StateRunning
	StateStealing
	StateBlocked
	StateExiting
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	case StateStealing:
		return "STEALING"
	case StateBlocked:
		return "BLOCKED"
	case StateExiting:
		return "EXITING"
	default:
		return "INIT"
	}
}

// Fn invokes the pipeline function at t.FuncIndex against the views t
// describes. Errors are treated as api.ErrPipelineFunctionFailure by the
// caller that constructs Fn (scheduler materializes the closure).
type Fn func(t api.Task) error

// Config wires one Worker. Peers is nil for the single-queue layout, in
// which case the worker only ever blocks on Home. Affinity and PinCPU are
// both zero-value for a worker that should not be pinned; PinCPU < 0
// disables pinning even when Affinity is set.
type Config struct {
	ID          int
	Role        api.DeviceRole
	Home        *queue.TaskQueue
	Peers       *queue.PeerSet
	StealPolicy api.StealPolicy
	Affinity    api.Affinity
	PinCPU      int
	Fn          Fn
	// Prefetch runs before Fn when set (accelerator workers stage input
	// row ranges into device memory per spec §4.4/§4.6).
	Prefetch Fn
}

// Worker runs Config's loop once per Run call.
type Worker struct {
	cfg   Config
	state atomic.Int32
	rng   *rand.Rand
}

// New constructs a Worker from cfg, leaving cfg.PinCPU as given; with a nil
// cfg.Affinity the worker is never pinned, whatever PinCPU holds.
func New(cfg Config) *Worker {
	return &Worker{cfg: cfg, rng: rand.New(rand.NewSource(int64(cfg.ID) + 1))}
}

// State returns the worker's current lifecycle state.
func (w *Worker) State() State { return State(w.state.Load()) }

func (w *Worker) setState(s State) { w.state.Store(int32(s)) }

// Run drives the worker to completion: EOF on its effective queue set, or
// the first pipeline error, whichever comes first. Once an error is
// recorded the worker keeps draining (popping and discarding, per spec
// §7's PipelineFunctionFailure contract) rather than executing further
// Tasks, and returns that first error to the caller for join-time
// propagation.
func (w *Worker) Run() error {
	w.setState(StateInit)
	if w.cfg.Affinity != nil && w.cfg.PinCPU >= 0 {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		_ = w.cfg.Affinity.Pin(w.cfg.PinCPU)
	}

	var firstErr error
	w.setState(StateRunning)
	for {
		t, ok := w.nextTask()
		if !ok {
			w.setState(StateExiting)
			return firstErr
		}
		w.setState(StateRunning)
		if firstErr != nil {
			continue // drain without executing
		}
		if w.cfg.Prefetch != nil {
			if err := w.cfg.Prefetch(t); err != nil {
				firstErr = err
				continue
			}
		}
		if err := w.cfg.Fn(t); err != nil {
			firstErr = err
		}
	}
}

// nextTask tries the home queue's non-blocking path, then peers, then
// falls back to a blocking pop on the home queue.
func (w *Worker) nextTask() (api.Task, bool) {
	if w.cfg.Peers == nil {
		w.setState(StateBlocked)
		return w.cfg.Home.Pop()
	}
	if t, ok := w.cfg.Home.Steal(); ok {
		return t, true
	}
	w.setState(StateStealing)
	if t, ok := w.cfg.Peers.TryStealAround(w.cfg.ID, w.cfg.StealPolicy, w.rng); ok {
		return t, true
	}
	w.setState(StateBlocked)
	return w.cfg.Home.Pop()
}
