// Package pool
// Author: momentics <momentics@gmail.com>
//
// NUMA-aware memory layer for the vectorized pipeline executor: backs
// Dense matrix value-array allocation, per-task buffer batching, and the
// accelerator mock's staging buffers. The lock-free ring (ring.go) and
// object pool (objpool.go) are not used by the task queues or scheduler.
// All primitives are cross-platform (Linux/Windows) and avoid GC churn on
// the per-chunk allocation hot path.
// See bufferpool.go, numapool.go, batch.go, ring.go for implementation details.
package pool
