// File: scheduler/alloc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Output allocation (spec §4.5) and input-property scanning (spec §4.7
// step 1, MTWrapperBase::getInputProperties).

package scheduler

import (
	"github.com/momentics/vecpipe/api"
	"github.com/momentics/vecpipe/matrix"
)

// denseInputProperties returns (len, memRequired) across splits: len is
// the largest numRows among ROWS-split inputs, memRequired sums their
// buffer sizes (used for the accelerator budget check, spec §4.7 step 3).
func denseInputProperties[T matrix.ElemType](inputs []*matrix.Dense[T], splits []api.Split) (length, memRequired int64) {
	for i, in := range inputs {
		if i < len(splits) && splits[i] == api.SplitRows {
			if r := in.NumRows(); r > length {
				length = r
			}
			memRequired += in.BufferSize()
		}
	}
	return
}

func csrInputProperties[T matrix.ElemType](inputs []*matrix.CSR[T], splits []api.Split) (length, memRequired int64) {
	for i, in := range inputs {
		if i < len(splits) && splits[i] == api.SplitRows {
			if r := in.NumRows(); r > length {
				length = r
			}
			memRequired += in.BufferSize()
		}
	}
	return
}

// effectiveCombine applies the isScalar Open Question decision (SPEC_FULL
// §"Open Question decisions"): a true isScalar flag forces CombineNone
// regardless of the combine descriptor supplied, since a scalar output has
// no row/col range for ROWS/COLS/ADD to operate on.
func effectiveCombine(combine api.Combine, isScalar []bool, i int) api.Combine {
	if i < len(isScalar) && isScalar[i] {
		return api.CombineNone
	}
	return combine
}

// allocateDenseOutputs allocates a final Dense[T] for every output whose
// dimensions are known, zero-initializing iff its effective combine is
// ADD. Outputs with unknown dims (outRows or outCols < 0) are left nil,
// to be filled directly by the sole producing Task (spec §4.5).
func allocateDenseOutputs[T matrix.ElemType](outRows, outCols []int64, combines []api.Combine, isScalar []bool) (outs []*matrix.Dense[T], memRequired int64) {
	outs = make([]*matrix.Dense[T], len(outRows))
	for i := range outs {
		if outRows[i] < 0 || outCols[i] < 0 {
			continue
		}
		c := effectiveCombine(combines[i], isScalar, i)
		d := matrix.CreateDense[T](outRows[i], outCols[i], c == api.CombineAdd, -1)
		outs[i] = d
		memRequired += d.BufferSize()
	}
	return outs, memRequired
}
