// File: control/execconfig.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ExecConfig carries the process-level knobs spec §6 lists for one
// execute* call: thread count, accelerator use, queue layout, steal
// policy, pinning, partition strategy, chunk/batch sizing, and verbosity.

package control

import "github.com/momentics/vecpipe/api"

// ExecConfig configures one MTWrapper execute* invocation.
type ExecConfig struct {
	// NumberOfThreads is the CPU worker count; 0 selects runtime.NumCPU().
	NumberOfThreads int
	UseAccelerator  bool
	QueueLayout     api.QueueLayout
	StealPolicy     api.StealPolicy
	PinWorkers      bool
	PartitionStrat  api.PartitionStrategy
	MinChunk        int64
	BatchSize       int64
	Verbose         bool
	// CPUInfoPath overrides the topology probe's source, default
	// /proc/cpuinfo; used by tests to inject fixtures (spec §6).
	CPUInfoPath string
}

// DefaultExecConfig returns the zero-thread-count (auto), SINGLE-queue,
// SEQ-steal, STATIC-partition configuration.
func DefaultExecConfig() ExecConfig {
	return ExecConfig{
		NumberOfThreads: 0,
		QueueLayout:     api.LayoutSingle,
		StealPolicy:     api.StealSeq,
		PartitionStrat:  api.Static,
		MinChunk:        1,
		BatchSize:       1,
		CPUInfoPath:     "/proc/cpuinfo",
	}
}

// Validate reports a *api.Error wrapping ErrConfigError for knob
// combinations execute* cannot act on.
func (c ExecConfig) Validate() error {
	if c.NumberOfThreads < 0 {
		return api.NewError(api.ErrCodeConfig, api.ErrConfigError, "NumberOfThreads must be >= 0")
	}
	if c.MinChunk < 0 {
		return api.NewError(api.ErrCodeConfig, api.ErrConfigError, "MinChunk must be >= 0")
	}
	switch c.QueueLayout {
	case api.LayoutSingle, api.LayoutPerCPU, api.LayoutPerGroup, api.LayoutPerDeviceType:
	default:
		return api.NewError(api.ErrCodeConfig, api.ErrConfigError, "unknown QueueLayout")
	}
	switch c.PartitionStrat {
	case api.Static, api.GSS, api.FAC2, api.TSS:
	default:
		return api.NewError(api.ErrCodeConfig, api.ErrConfigError, "unknown PartitionStrategy")
	}
	return nil
}
