// Package api
// Author: momentics@gmail.com
//
// CPU/NUMA affinity and thread-pinning contract used by worker to honor
// the PinWorkers configuration knob (spec §4.4).

package api

// Affinity controls execution on particular CPUs/NUMA nodes.
type Affinity interface {
	// Pin locks the current OS thread to a CPU.
	Pin(cpuID int) error
}
