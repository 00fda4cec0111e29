// File: facade/facade.go
// Package facade aggregates topology probing, the accelerator context, and
// the Dense/CSR schedulers behind a single entry point, the way the
// teacher's HioloadWS aggregates transport, pool, and executor behind one
// facade.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package facade

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/momentics/vecpipe/accel"
	"github.com/momentics/vecpipe/control"
	"github.com/momentics/vecpipe/topology"
)

// Config holds parameters immutable per Executor lifetime. Per-call knobs
// (thread count, queue layout, partition strategy, ...) live in ExecConfig
// rather than here, since those vary by execute* call, not by process.
type Config struct {
	Exec control.ExecConfig
	// AccelBudgetBytes, when > 0, attaches an in-process accel.Device
	// advertising this many bytes of device memory; 0 means no accelerator
	// is attached and accel.Unavailable{} is used.
	AccelBudgetBytes int64
}

// DefaultConfig returns a SINGLE-queue, auto-thread-count, no-accelerator
// configuration.
func DefaultConfig() *Config {
	return &Config{Exec: control.DefaultExecConfig()}
}

// Executor is the facade over one probed topology, one accelerator
// context, and the config needed to construct Dense/CSR schedulers.
type Executor struct {
	cfg   Config
	topo  topology.Topology
	accel accel.Context

	metrics *control.MetricsRegistry
	debug   *control.DebugProbes
	confSt  *control.ConfigStore

	mu          sync.RWMutex
	started     bool
	reloadCount int
}

// New constructs an Executor: probes topology from cfg.Exec.CPUInfoPath
// (falling back to a single-socket/NumCPU topology if the probe fails, per
// topology.Probe's own contract), attaches an accelerator context per
// cfg.AccelBudgetBytes, and seeds the metrics/debug/config registries.
func New(cfg *Config) (*Executor, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Exec.Validate(); err != nil {
		return nil, fmt.Errorf("facade: invalid config: %w", err)
	}

	path := cfg.Exec.CPUInfoPath
	if path == "" {
		path = topology.DefaultCPUInfoPath
	}
	topo, err := topology.Probe(path)
	if err != nil && cfg.Exec.Verbose {
		log.Printf("[facade] topology probe fell back to default: %v", err)
	}

	var acc accel.Context = accel.Unavailable{}
	if cfg.Exec.UseAccelerator && cfg.AccelBudgetBytes > 0 {
		acc = accel.NewDevice(cfg.AccelBudgetBytes)
	}

	e := &Executor{
		cfg:     *cfg,
		topo:    topo,
		accel:   acc,
		metrics: control.NewMetricsRegistry(),
		debug:   control.NewDebugProbes(),
		confSt:  control.NewConfigStore(),
	}
	control.RegisterPlatformProbes(e.debug)
	e.debug.RegisterProbe("topology.hwThreads", func() any { return len(e.topo.UniqueHwThreads) })
	e.debug.RegisterProbe("topology.sockets", func() any { return e.topo }) // cheap; fixed per-run
	e.debug.RegisterProbe("config.reloadCount", func() any {
		e.mu.RLock()
		defer e.mu.RUnlock()
		return e.reloadCount
	})
	e.confSt.SetConfig(execConfigSnapshot(cfg.Exec))

	control.RegisterReloadHook(e.onConfigReload)
	return e, nil
}

// Start marks the Executor ready to serve execute* calls and records a
// start-time debug probe. Subsequent calls are no-ops.
func (e *Executor) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return nil
	}
	startedAt := time.Now()
	e.debug.RegisterProbe("facade.startedAt", func() any { return startedAt })
	e.started = true
	return nil
}

// Stop marks the Executor stopped. Calling Stop on a non-started Executor
// is a no-op.
func (e *Executor) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.started = false
	return nil
}

// UpdateExecConfig replaces the per-call config used by future
// DenseScheduler/CSRScheduler constructions, publishes the new snapshot to
// the config store, and synchronously fires any registered reload hooks
// (control.TriggerHotReloadSync), matching the teacher's hot-reload path.
func (e *Executor) UpdateExecConfig(cfg control.ExecConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.cfg.Exec = cfg
	e.mu.Unlock()
	e.confSt.SetConfig(execConfigSnapshot(cfg))
	control.TriggerHotReloadSync()
	return nil
}

// ExecConfig returns the Executor's current per-call configuration.
func (e *Executor) ExecConfig() control.ExecConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg.Exec
}

// Topology returns the probed (or fallback) hardware topology.
func (e *Executor) Topology() topology.Topology { return e.topo }

// Accel returns the accelerator context (accel.Unavailable{} if none was
// configured).
func (e *Executor) Accel() accel.Context { return e.accel }

// Metrics returns the registry execute* calls record timing/count samples
// into.
func (e *Executor) Metrics() *control.MetricsRegistry { return e.metrics }

// Debug returns the registered debug probes (topology size, platform CPU
// count, facade start time).
func (e *Executor) Debug() *control.DebugProbes { return e.debug }

// onConfigReload is registered with control.RegisterReloadHook so that
// control.TriggerHotReloadSync (fired from UpdateExecConfig) refreshes the
// debug-visible reload count and timestamp for this Executor.
func (e *Executor) onConfigReload() {
	e.mu.Lock()
	e.reloadCount++
	e.mu.Unlock()
	e.metrics.Set("config.reloadCount", e.reloadCount)
	e.metrics.Set("config.lastReloadAt", time.Now())
}

func execConfigSnapshot(cfg control.ExecConfig) map[string]any {
	return map[string]any{
		"numberOfThreads": cfg.NumberOfThreads,
		"useAccelerator":  cfg.UseAccelerator,
		"queueLayout":     cfg.QueueLayout,
		"stealPolicy":     cfg.StealPolicy,
		"pinWorkers":      cfg.PinWorkers,
		"partitionStrat":  cfg.PartitionStrat,
		"minChunk":        cfg.MinChunk,
		"batchSize":       cfg.BatchSize,
	}
}
