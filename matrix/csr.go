// File: matrix/csr.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// CSR is a compressed-sparse-row matrix: a value array, a column-index
// array, and a row-offset array of length NumRows()+1. nnz may be unknown
// a priori when a pipeline function produces it directly (spec §3).

package matrix

import (
	"unsafe"

	"github.com/momentics/vecpipe/pool"
)

// CSR is a compressed-sparse-row matrix of element type T.
type CSR[T ElemType] struct {
	rows, cols int64
	values     []T
	colIdxs    []int64
	rowOffsets []int64 // length rows+1
}

// NewCSR allocates a rows x cols CSR matrix with room for nnz nonzeros. If
// zeroInit is true, values are zeroed (ADD combine is not supported for
// CSR per spec §4.4/§4.6, but zeroInit is honored for parity with Dense).
func NewCSR[T ElemType](rows, cols, nnz int64, zeroInit bool, numaNode int) *CSR[T] {
	var zero T
	_ = zero
	values := make([]T, nnz)
	colIdxs := make([]int64, nnz)
	rowOffsets := make([]int64, rows+1)
	if zeroInit {
		clear(values)
	}
	// NUMA-node hint is accepted for symmetry with NewDense/pool wiring,
	// even though index/offset arrays are int64 and not routed through the
	// byte-oriented NUMAPool; reserved for a future typed NUMA allocator.
	_ = pool.DefaultManager()
	_ = numaNode
	return &CSR[T]{rows: rows, cols: cols, values: values, colIdxs: colIdxs, rowOffsets: rowOffsets}
}

// NewCSRFromArrays wraps existing arrays without copying.
func NewCSRFromArrays[T ElemType](rows, cols int64, values []T, colIdxs, rowOffsets []int64) *CSR[T] {
	return &CSR[T]{rows: rows, cols: cols, values: values, colIdxs: colIdxs, rowOffsets: rowOffsets}
}

func (c *CSR[T]) NumRows() int64  { return c.rows }
func (c *CSR[T]) NumCols() int64  { return c.cols }
func (c *CSR[T]) NumItems() int64 { return int64(len(c.values)) }

func (c *CSR[T]) BufferSize() int64 {
	var zero T
	elemSize := int64(unsafe.Sizeof(zero))
	return c.NumItems()*elemSize + int64(len(c.colIdxs))*8 + int64(len(c.rowOffsets))*8
}

func (c *CSR[T]) Values() []T         { return c.values }
func (c *CSR[T]) ColIdxs() []int64    { return c.colIdxs }
func (c *CSR[T]) RowOffsets() []int64 { return c.rowOffsets }

// NNZ returns the number of stored nonzeros.
func (c *CSR[T]) NNZ() int64 { return int64(len(c.values)) }

// RowSlice extracts rows [start, end) as a new CSR matrix, copying just
// the nonzeros in that row range; used to materialize a Task's ROWS-split
// CSR input view (spec §4.4).
func (c *CSR[T]) RowSlice(start, end int64) *CSR[T] {
	nnzStart := c.rowOffsets[start]
	nnzEnd := c.rowOffsets[end]
	values := append([]T(nil), c.values[nnzStart:nnzEnd]...)
	colIdxs := append([]int64(nil), c.colIdxs[nnzStart:nnzEnd]...)
	rowOffsets := make([]int64, end-start+1)
	for i := range rowOffsets {
		rowOffsets[i] = c.rowOffsets[start+int64(i)] - nnzStart
	}
	return &CSR[T]{rows: end - start, cols: c.cols, values: values, colIdxs: colIdxs, rowOffsets: rowOffsets}
}
