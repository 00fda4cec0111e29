// File: matrix/dense.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Dense is a row-major, contiguous matrix. Its value array is backed by a
// pool.BufferPoolManager buffer rather than a bare make([]T, ...): row
// chunks are allocated and released at a high rate by the scheduler and
// combiner, so the same NUMA-aware pool that serves the rest of this module
// serves matrix storage too.

package matrix

import (
	"unsafe"

	"github.com/momentics/vecpipe/api"
	"github.com/momentics/vecpipe/pool"
)

// Dense is a row-major dense matrix of element type T.
type Dense[T ElemType] struct {
	rows, cols int64
	buf        api.Buffer
	values     []T
}

// NewDense allocates a rows x cols dense matrix. If zeroInit is true the
// backing storage is guaranteed zeroed (required for CombineAdd outputs,
// spec §3/§4.5).
func NewDense[T ElemType](rows, cols int64, zeroInit bool, numaNode int) *Dense[T] {
	var zero T
	elemSize := int64(unsafe.Sizeof(zero))
	n := rows * cols
	buf := pool.DefaultManager().Get(int(n*elemSize), numaNode)
	data := buf.Bytes()
	if zeroInit {
		clear(data)
	}
	var values []T
	if n > 0 {
		values = unsafe.Slice((*T)(unsafe.Pointer(&data[0])), n)
	}
	return &Dense[T]{rows: rows, cols: cols, buf: buf, values: values}
}

// NewDenseFromValues wraps an existing value slice without copying; used by
// test fixtures and by pipeline functions that allocate their own output.
func NewDenseFromValues[T ElemType](rows, cols int64, values []T) *Dense[T] {
	return &Dense[T]{rows: rows, cols: cols, values: values}
}

func (d *Dense[T]) NumRows() int64  { return d.rows }
func (d *Dense[T]) NumCols() int64  { return d.cols }
func (d *Dense[T]) NumItems() int64 { return d.rows * d.cols }

func (d *Dense[T]) BufferSize() int64 {
	var zero T
	return d.NumItems() * int64(unsafe.Sizeof(zero))
}

// Values returns the row-major backing slice; index [r*cols+c] is element
// (r,c).
func (d *Dense[T]) Values() []T { return d.values }

// At returns element (r, c).
func (d *Dense[T]) At(r, c int64) T { return d.values[r*d.cols+c] }

// Set assigns element (r, c).
func (d *Dense[T]) Set(r, c int64, v T) { d.values[r*d.cols+c] = v }

// Buffer returns the api.Buffer backing this matrix's values, or nil for a
// matrix built with NewDenseFromValues (a view or caller-owned slice with
// no pool-managed buffer of its own).
func (d *Dense[T]) Buffer() api.Buffer { return d.buf }

// Release returns the backing buffer to its pool, if it owns one. Safe to
// call on matrices built with NewDenseFromValues (no-op).
func (d *Dense[T]) Release() {
	if d.buf != nil {
		d.buf.Release()
		d.buf = nil
	}
}

// RowSlice returns a view over rows [start, end) sharing storage with d;
// used by the combiner for zero-copy ROWS combine when the pipeline writes
// directly into the final buffer.
func (d *Dense[T]) RowSlice(start, end int64) []T {
	return d.values[start*d.cols : end*d.cols]
}
