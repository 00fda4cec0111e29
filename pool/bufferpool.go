// File: pool/bufferpool.go
// Author: momentics <momentics@gmail.com>
//
// Cross-platform NUMA-aware BufferPool built directly on NUMAPool, so
// matrix.NewDense can request a value-array buffer on a given NUMA node
// without round-tripping through the garbage collector on every chunk.
// matrix.NewCSR does not allocate through this pool.

package pool

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/vecpipe/api"
)

// buffer implements api.Buffer over a NUMAPool-backed []byte.
type buffer struct {
	data []byte
	pool *BufferPoolManager
	node int
}

func (b *buffer) Bytes() []byte { return b.data }

func (b *buffer) Slice(from, to int) api.Buffer {
	return &buffer{data: b.data[from:to], pool: b.pool, node: b.node}
}

func (b *buffer) Release() {
	if b.pool != nil {
		b.pool.put(b)
	}
}

func (b *buffer) Copy() []byte {
	dst := make([]byte, len(b.data))
	copy(dst, b.data)
	return dst
}

func (b *buffer) NUMANode() int { return b.node }

// poolKey identifies a NUMA node + size-class pair; NUMAPool is fixed-size,
// so distinct size classes need distinct underlying pools.
type poolKey struct {
	node int
	size int
}

// BufferPoolManager provides NUMA-segmented pools for each (node, size
// class) pair. Node -1 is the system-default, NUMA-agnostic pool.
type BufferPoolManager struct {
	mu    sync.RWMutex
	pools map[poolKey]*NUMAPool

	totalAlloc atomic.Int64
	totalFree  atomic.Int64
}

// NewBufferPoolManager creates an empty manager; pools are created lazily
// per (node, size class) pair on first Get.
func NewBufferPoolManager() *BufferPoolManager {
	return &BufferPoolManager{pools: make(map[poolKey]*NUMAPool)}
}

const defaultChunkSize = 64 * 1024

// sizeClass rounds size up to the next power-of-two bucket (minimum 4KiB)
// so a bounded number of NUMAPools service arbitrarily many requested sizes.
func sizeClass(size int) int {
	if size <= 4096 {
		return 4096
	}
	c := 4096
	for c < size {
		c <<= 1
	}
	return c
}

// Get obtains a buffer of at least size bytes, preferring numaPreferred.
func (m *BufferPoolManager) Get(size int, numaPreferred int) api.Buffer {
	class := sizeClass(size)
	p := m.poolFor(numaPreferred, class)
	data := p.Get()
	if len(data) < size {
		data = make([]byte, class)
	}
	data = data[:size]
	m.totalAlloc.Add(1)
	return &buffer{data: data, pool: m, node: numaPreferred}
}

// Put returns a buffer to the manager; equivalent to calling Release on it.
func (m *BufferPoolManager) Put(b api.Buffer) {
	if nb, ok := b.(*buffer); ok {
		m.put(nb)
	}
}

func (m *BufferPoolManager) put(b *buffer) {
	p := m.poolFor(b.node, sizeClass(cap(b.data)))
	p.Put(b.data[:cap(b.data)])
	m.totalFree.Add(1)
}

func (m *BufferPoolManager) poolFor(node int, class int) *NUMAPool {
	key := poolKey{node: node, size: class}
	m.mu.RLock()
	p, ok := m.pools[key]
	m.mu.RUnlock()
	if ok {
		return p
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.pools[key]; ok {
		return p
	}
	p = NewNUMAPool(node, class, node >= 0)
	m.pools[key] = p
	return p
}

// Stats reports allocation/reuse counters across all NUMA segments.
func (m *BufferPoolManager) Stats() api.BufferPoolStats {
	alloc := m.totalAlloc.Load()
	free := m.totalFree.Load()
	return api.BufferPoolStats{
		TotalAlloc: alloc,
		TotalFree:  free,
		InUse:      alloc - free,
	}
}

var (
	defaultMgrOnce sync.Once
	defaultMgr     *BufferPoolManager
)

// DefaultManager returns a process-wide BufferPoolManager so matrix
// allocation reuses the same NUMA-aware pools instead of fragmenting.
func DefaultManager() *BufferPoolManager {
	defaultMgrOnce.Do(func() { defaultMgr = NewBufferPoolManager() })
	return defaultMgr
}

var _ api.BufferPool = (*BufferPoolManager)(nil)
