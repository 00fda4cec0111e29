// File: combine/csr.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// CSR supports only ROWS and NONE combines (spec §4.6): ADD is undefined
// for sparse outputs. ROWS concatenates disjoint row-range fragments by
// summing nnz to size the final arrays and rebuilding rowOffsets as a
// prefix sum across fragments in row order.

package combine

import (
	"fmt"
	"sort"

	"github.com/momentics/vecpipe/api"
	"github.com/momentics/vecpipe/matrix"
)

// CSRFragment is one Task's contribution to a ROWS-combined CSR output.
type CSRFragment[T matrix.ElemType] struct {
	Range api.Interval
	Frag  *matrix.CSR[T]
}

// CSRRows concatenates CSRFragments covering [0, rows) into one CSR.
type CSRRows[T matrix.ElemType] struct{}

// Combine assembles rows x cols worth of fragments into a final CSR. frags
// need not arrive in row order; Combine sorts them first.
func (CSRRows[T]) Combine(rows, cols int64, frags []CSRFragment[T]) (*matrix.CSR[T], error) {
	sorted := append([]CSRFragment[T](nil), frags...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Range.Start < sorted[j].Range.Start })

	var cursor int64
	for _, f := range sorted {
		if f.Range.Start != cursor {
			return nil, fmt.Errorf("combine: CSR fragments do not cover [0,%d) contiguously: gap/overlap at row %d", rows, cursor)
		}
		cursor = f.Range.End
	}
	if cursor != rows {
		return nil, fmt.Errorf("combine: CSR fragments cover [0,%d), want [0,%d)", cursor, rows)
	}

	var totalNNZ int64
	for _, f := range sorted {
		totalNNZ += f.Frag.NNZ()
	}
	values := make([]T, totalNNZ)
	colIdxs := make([]int64, totalNNZ)
	rowOffsets := make([]int64, rows+1)

	var nnzCursor int64
	for _, f := range sorted {
		localRows := f.Frag.NumRows()
		localOffsets := f.Frag.RowOffsets()
		for r := int64(0); r < localRows; r++ {
			rowOffsets[f.Range.Start+r] = nnzCursor + localOffsets[r]
		}
		n := f.Frag.NNZ()
		copy(values[nnzCursor:nnzCursor+n], f.Frag.Values())
		copy(colIdxs[nnzCursor:nnzCursor+n], f.Frag.ColIdxs())
		nnzCursor += n
	}
	rowOffsets[rows] = nnzCursor

	return matrix.NewCSRFromArrays(rows, cols, values, colIdxs, rowOffsets), nil
}

// NoopCSR implements CombineNone for CSR outputs: with exactly one Task its
// fragment becomes the final output directly, so this exists only for
// design-note completeness (spec §9's "dead specialization" callout) and
// is never invoked by the scheduler.
type NoopCSR[T matrix.ElemType] struct{}

func (NoopCSR[T]) Combine(frag *matrix.CSR[T]) *matrix.CSR[T] { return frag }
