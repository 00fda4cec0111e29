// File: queue/peerset.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// PeerSet orders the queues a worker may steal from once its home queue
// runs dry (spec §4.4's SEQ/LOCAL_FIRST/RANDOM steal policies), and caps a
// steal attempt at one full round over peers before the caller blocks.

package queue

import (
	"math/rand"

	"github.com/momentics/vecpipe/api"
)

// PeerSet is the fixed set of queues workers of one layout share, plus the
// physical-socket id each queue's owner is pinned to (used by LOCAL_FIRST;
// left at zero for layouts with a single socket group).
type PeerSet struct {
	queues  []*TaskQueue
	sockets []int
}

// NewPeerSet builds a PeerSet. sockets may be nil, meaning every queue is
// treated as socket 0 (LOCAL_FIRST degenerates to SEQ in that case).
func NewPeerSet(queues []*TaskQueue, sockets []int) *PeerSet {
	if sockets == nil {
		sockets = make([]int, len(queues))
	}
	return &PeerSet{queues: queues, sockets: sockets}
}

// Queue returns the home queue for worker index i.
func (p *PeerSet) Queue(i int) *TaskQueue { return p.queues[i] }

// Len returns the number of queues in the set.
func (p *PeerSet) Len() int { return len(p.queues) }

// order returns peer indices (excluding self) in the sequence StealPolicy
// dictates for a steal attempt starting at self.
func (p *PeerSet) order(self int, policy api.StealPolicy, rng *rand.Rand) []int {
	n := len(p.queues)
	peers := make([]int, 0, n-1)
	switch policy {
	case api.StealLocalFirst:
		home := p.sockets[self]
		for i := 0; i < n; i++ {
			if i != self && p.sockets[i] == home {
				peers = append(peers, i)
			}
		}
		for i := 0; i < n; i++ {
			if i != self && p.sockets[i] != home {
				peers = append(peers, i)
			}
		}
	case api.StealRandom:
		for i := 0; i < n; i++ {
			if i != self {
				peers = append(peers, i)
			}
		}
		rng.Shuffle(len(peers), func(a, b int) { peers[a], peers[b] = peers[b], peers[a] })
	default: // api.StealSeq
		for i := self + 1; i < n; i++ {
			peers = append(peers, i)
		}
		for i := 0; i < self; i++ {
			peers = append(peers, i)
		}
	}
	return peers
}

// TryStealAround attempts one full round over self's peers (order per
// policy) and returns the first Task found, or ok==false if every peer was
// empty. rng is only consulted for StealRandom; pass nil otherwise.
func (p *PeerSet) TryStealAround(self int, policy api.StealPolicy, rng *rand.Rand) (api.Task, bool) {
	if rng == nil {
		rng = rand.New(rand.NewSource(int64(self) + 1))
	}
	for _, peer := range p.order(self, policy, rng) {
		if t, ok := p.queues[peer].Steal(); ok {
			return t, true
		}
	}
	return api.Task{}, false
}
