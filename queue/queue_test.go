package queue_test

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/momentics/vecpipe/api"
	"github.com/momentics/vecpipe/queue"
)

func task(i int) api.Task { return api.Task{FuncIndex: i} }

func TestFIFOOrdering(t *testing.T) {
	q := queue.New()
	for i := 0; i < 5; i++ {
		if err := q.Push(task(i)); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	for i := 0; i < 5; i++ {
		got, ok := q.Pop()
		if !ok || got.FuncIndex != i {
			t.Fatalf("pop %d: got %+v ok=%v", i, got, ok)
		}
	}
}

func TestPushAfterCloseFails(t *testing.T) {
	q := queue.New()
	q.Close()
	if err := q.Push(task(0)); err != queue.ErrClosed {
		t.Fatalf("push after close: err = %v, want ErrClosed", err)
	}
}

func TestPopReturnsEOFAfterDrain(t *testing.T) {
	q := queue.New()
	_ = q.Push(task(0))
	_ = q.Push(task(1))
	q.Close()
	for i := 0; i < 2; i++ {
		if _, ok := q.Pop(); !ok {
			t.Fatalf("expected task %d before EOF", i)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("expected EOF after drain")
	}
	if !q.Closed() {
		t.Fatal("expected queue to be Closed after drain")
	}
}

func TestPopBlocksUntilPush(t *testing.T) {
	q := queue.New()
	var wg sync.WaitGroup
	wg.Add(1)
	done := make(chan api.Task, 1)
	go func() {
		defer wg.Done()
		got, ok := q.Pop()
		if !ok {
			t.Error("expected a task, got EOF")
		}
		done <- got
	}()
	_ = q.Push(task(7))
	wg.Wait()
	if got := <-done; got.FuncIndex != 7 {
		t.Fatalf("got %+v, want FuncIndex 7", got)
	}
}

// TestPopsPlusEOFEqualsPushedPlusOne checks the §8 invariant for a single
// reader: after Close, it pops every pushed Task and then exactly one EOF.
func TestPopsPlusEOFEqualsPushedPlusOne(t *testing.T) {
	q := queue.New()
	const n = 20
	for i := 0; i < n; i++ {
		_ = q.Push(task(i))
	}
	q.Close()
	reads := 0
	eofs := 0
	for {
		_, ok := q.Pop()
		reads++
		if !ok {
			eofs++
			break
		}
	}
	if reads != n+1 || eofs != 1 {
		t.Fatalf("reads=%d eofs=%d, want reads=%d eofs=1", reads, eofs, n+1)
	}
}

func TestStealNeverReturnsEOF(t *testing.T) {
	q := queue.New()
	if _, ok := q.Steal(); ok {
		t.Fatal("steal on empty open queue should report nothing pending")
	}
	q.Close()
	if _, ok := q.Steal(); ok {
		t.Fatal("steal on empty closed queue should report nothing pending, not EOF")
	}
	q2 := queue.New()
	_ = q2.Push(task(1))
	got, ok := q2.Steal()
	if !ok || got.FuncIndex != 1 {
		t.Fatalf("steal should take the pending task: got %+v ok=%v", got, ok)
	}
}

func TestPeerSetStealSeqFindsWork(t *testing.T) {
	qs := []*queue.TaskQueue{queue.New(), queue.New(), queue.New()}
	_ = qs[2].Push(task(42))
	ps := queue.NewPeerSet(qs, nil)
	got, ok := ps.TryStealAround(0, api.StealSeq, nil)
	if !ok || got.FuncIndex != 42 {
		t.Fatalf("expected to steal task 42 from peer 2, got %+v ok=%v", got, ok)
	}
}

func TestPeerSetStealLocalFirstPrefersSameSocket(t *testing.T) {
	qs := []*queue.TaskQueue{queue.New(), queue.New(), queue.New(), queue.New()}
	sockets := []int{0, 0, 1, 1}
	_ = qs[1].Push(task(1)) // same socket as worker 0
	_ = qs[3].Push(task(3)) // remote socket
	ps := queue.NewPeerSet(qs, sockets)
	got, ok := ps.TryStealAround(0, api.StealLocalFirst, nil)
	if !ok || got.FuncIndex != 1 {
		t.Fatalf("expected local-socket steal to win, got %+v ok=%v", got, ok)
	}
}

func TestPeerSetStealRandomExhaustsAllPeers(t *testing.T) {
	qs := []*queue.TaskQueue{queue.New(), queue.New(), queue.New()}
	ps := queue.NewPeerSet(qs, nil)
	rng := rand.New(rand.NewSource(1))
	if _, ok := ps.TryStealAround(0, api.StealRandom, rng); ok {
		t.Fatal("all peers empty: expected no steal")
	}
}
