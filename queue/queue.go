// File: queue/queue.go
// Package queue implements the Task Queue (spec component C3): a
// thread-safe FIFO of pending Tasks with a blocking pop, a non-blocking
// steal, and an EOF sentinel pushed by close().
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package queue

import (
	"errors"
	"sync"

	eapacheq "github.com/eapache/queue"

	"github.com/momentics/vecpipe/api"
)

// ErrClosed is returned by Push once close() has been called.
var ErrClosed = errors.New("queue: closed")

type state int

const (
	stateOpen state = iota
	stateDraining
	stateClosed
)

// TaskQueue is a FIFO of api.Task values backed by eapache/queue's ring
// buffer, guarded by a mutex/condvar pair per spec §4.2's "Mutex +
// condition variable" option. The same type serves single, per-CPU, and
// per-group layouts; callers arrange how many instances exist and who
// polls which one.
type TaskQueue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	items *eapacheq.Queue
	state state
}

// New returns an empty, open TaskQueue.
func New() *TaskQueue {
	q := &TaskQueue{items: eapacheq.New()}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends a Task. Returns ErrClosed once Close has been called.
func (q *TaskQueue) Push(t api.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state != stateOpen {
		return ErrClosed
	}
	q.items.Add(t)
	q.cond.Signal()
	return nil
}

// Pop blocks until a Task is available or the queue has drained after
// Close; ok is false on EOF.
func (q *TaskQueue) Pop() (t api.Task, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.items.Length() == 0 {
		if q.state != stateOpen {
			q.state = stateClosed
			return api.Task{}, false
		}
		q.cond.Wait()
	}
	t = q.items.Peek().(api.Task)
	q.items.Remove()
	return t, true
}

// Steal is a non-blocking pop attempt for a peer worker's idle loop; it
// never observes or returns EOF, only a Task or "nothing pending". Per
// spec §4.2 either end of the queue may serve steals -- this queue steals
// from the same (front) end as Pop since eapache/queue only exposes
// front-removal, which keeps the single mutex's critical section trivial
// and preserves fairness across peers equally well as tail-stealing.
func (q *TaskQueue) Steal() (t api.Task, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.Length() == 0 {
		return api.Task{}, false
	}
	t = q.items.Peek().(api.Task)
	q.items.Remove()
	return t, true
}

// Close marks the queue as draining: already-pushed Tasks still pop
// normally, and once empty every blocked and future Pop returns EOF.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state == stateOpen {
		q.state = stateDraining
	}
	q.cond.Broadcast()
}

// Len reports the number of Tasks currently queued (not including EOF).
func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}

// Closed reports whether the queue has fully drained past Close.
func (q *TaskQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state == stateClosed
}
