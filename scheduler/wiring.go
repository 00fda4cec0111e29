// File: scheduler/wiring.go
// Package scheduler implements the MTWrapper scheduler facade (spec §4.7,
// C7): the orchestration that ties topology, queues, the partitioner,
// workers, and combiners together into one execute* call.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package scheduler

import (
	"runtime"

	"github.com/momentics/vecpipe/affinity"
	"github.com/momentics/vecpipe/api"
	"github.com/momentics/vecpipe/control"
	"github.com/momentics/vecpipe/queue"
	"github.com/momentics/vecpipe/topology"
)

// effectiveThreads resolves the "0 = auto" NumberOfThreads knob.
func effectiveThreads(cfg control.ExecConfig) int {
	if cfg.NumberOfThreads > 0 {
		return cfg.NumberOfThreads
	}
	return runtime.NumCPU()
}

// wiring is the concrete queue/worker wiring for one execute* call: one
// TaskQueue per worker's home (shared across workers for LayoutSingle and
// LayoutPerGroup), a PeerSet for stealing (nil under LayoutSingle, which
// never steals), and the per-worker CPU pin target.
type wiring struct {
	homes   []*queue.TaskQueue // one entry per worker
	queues  []*queue.TaskQueue // the distinct queues to Close() once seeding ends
	peers   *queue.PeerSet     // nil under LayoutSingle
	pins    []int              // per-worker CPU id, or -1 if cfg.PinWorkers is false
	peerIdx []int              // per-worker PeerSet self-index; nil when it equals workerID
}

// buildWiring constructs queues for numWorkers workers under layoutKind,
// honoring topo for LayoutPerGroup's socket grouping and cfg.PinWorkers
// for CPU pin targets.
func buildWiring(layoutKind api.QueueLayout, numWorkers int, topo topology.Topology, cfg control.ExecConfig) wiring {
	w := wiring{pins: make([]int, numWorkers)}
	for i := range w.pins {
		w.pins[i] = -1
	}
	if cfg.PinWorkers && len(topo.UniqueHwThreads) > 0 {
		for i := range w.pins {
			w.pins[i] = topo.UniqueHwThreads[i%len(topo.UniqueHwThreads)]
		}
	}

	switch layoutKind {
	case api.LayoutPerCPU:
		qs := make([]*queue.TaskQueue, numWorkers)
		for i := range qs {
			qs[i] = queue.New()
		}
		w.homes = qs
		w.queues = qs
		w.peers = queue.NewPeerSet(qs, nil)
	case api.LayoutPerGroup, api.LayoutPerDeviceType:
		sockets := uniqueSockets(topo)
		qs := make([]*queue.TaskQueue, len(sockets))
		for i := range qs {
			qs[i] = queue.New()
		}
		homes := make([]*queue.TaskQueue, numWorkers)
		homeIdx := make([]int, numWorkers)
		for i := range homes {
			idx := i % len(sockets)
			homes[i] = qs[idx]
			homeIdx[i] = idx
		}
		w.homes = homes
		w.queues = qs
		w.peers = queue.NewPeerSet(qs, sockets)
		// homeIdx[i] is the index into qs that worker i must pass as its
		// PeerSet self index; callers read it back via peerIndex().
		w.peerIdx = homeIdx
	default: // api.LayoutSingle
		q := queue.New()
		homes := make([]*queue.TaskQueue, numWorkers)
		for i := range homes {
			homes[i] = q
		}
		w.homes = homes
		w.queues = []*queue.TaskQueue{q}
	}
	return w
}

// peerIdx holds, for layouts where multiple workers share a queue
// (LayoutPerGroup/PerDeviceType), the PeerSet index each worker must steal
// relative to; nil under LayoutPerCPU where worker index == peer index.
func (w *wiring) peerIndex(workerID int) int {
	if w.peerIdx != nil {
		return w.peerIdx[workerID]
	}
	return workerID
}

func uniqueSockets(topo topology.Topology) []int {
	seen := make(map[int]bool)
	var out []int
	for _, id := range topo.PhysicalIDs {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		out = []int{0}
	}
	return out
}

// closeAll closes every distinct queue once seeding has finished
// (STATIC_SEED mode, spec §4.4).
func (w *wiring) closeAll() {
	for _, q := range w.queues {
		q.Close()
	}
}

// workerAffinity returns the api.Affinity to attach to a worker given
// cfg.PinWorkers, or nil when pinning is disabled.
func workerAffinity(cfg control.ExecConfig) api.Affinity {
	if !cfg.PinWorkers {
		return nil
	}
	return affinity.OSThread{}
}
