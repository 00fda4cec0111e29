package worker_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/momentics/vecpipe/api"
	"github.com/momentics/vecpipe/queue"
	"github.com/momentics/vecpipe/worker"
)

func TestSingleQueueWorkerDrainsToEOF(t *testing.T) {
	q := queue.New()
	var executed []int
	var mu sync.Mutex
	w := worker.New(worker.Config{
		ID:   0,
		Home: q,
		Fn: func(t api.Task) error {
			mu.Lock()
			executed = append(executed, t.FuncIndex)
			mu.Unlock()
			return nil
		},
	})
	for i := 0; i < 3; i++ {
		_ = q.Push(api.Task{FuncIndex: i})
	}
	q.Close()
	if err := w.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(executed) != 3 {
		t.Fatalf("executed %v, want 3 tasks", executed)
	}
	if w.State() != worker.StateExiting {
		t.Fatalf("final state = %v, want EXITING", w.State())
	}
}

func TestWorkerStopsExecutingAfterFirstError(t *testing.T) {
	q := queue.New()
	wantErr := errors.New("boom")
	var runs int32
	w := worker.New(worker.Config{
		ID:   0,
		Home: q,
		Fn: func(t api.Task) error {
			atomic.AddInt32(&runs, 1)
			if t.FuncIndex == 1 {
				return wantErr
			}
			return nil
		},
	})
	for i := 0; i < 5; i++ {
		_ = q.Push(api.Task{FuncIndex: i})
	}
	q.Close()
	err := w.Run()
	if !errors.Is(err, wantErr) {
		t.Fatalf("Run() err = %v, want %v", err, wantErr)
	}
	if atomic.LoadInt32(&runs) != 2 {
		t.Fatalf("ran %d tasks, want exactly 2 (stop executing after the failure)", runs)
	}
}

// TestStealingProgress mirrors spec §8 scenario 5: all tasks seeded on
// worker 0's queue; every worker in a 4-worker PER_CPU layout should
// execute at least one task via stealing.
func TestStealingProgress(t *testing.T) {
	const n = 4
	qs := make([]*queue.TaskQueue, n)
	for i := range qs {
		qs[i] = queue.New()
	}
	for i := 0; i < 16; i++ {
		_ = qs[0].Push(api.Task{FuncIndex: i})
	}
	for _, q := range qs {
		q.Close()
	}
	peers := queue.NewPeerSet(qs, nil)

	var mu sync.Mutex
	byWorker := make(map[int]int)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		w := worker.New(worker.Config{
			ID:          i,
			Home:        peers.Queue(i),
			Peers:       peers,
			StealPolicy: api.StealSeq,
			Fn: func(t api.Task) error {
				mu.Lock()
				byWorker[i]++
				mu.Unlock()
				return nil
			},
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Run(); err != nil {
				t.Errorf("worker %d: %v", i, err)
			}
		}()
	}
	wg.Wait()

	total := 0
	for i := 0; i < n; i++ {
		if byWorker[i] == 0 {
			t.Errorf("worker %d executed no tasks", i)
		}
		total += byWorker[i]
	}
	if total != 16 {
		t.Fatalf("total executed = %d, want 16", total)
	}
}
