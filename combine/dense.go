// File: combine/dense.go
// Package combine implements the Output Sink / Combiner component (spec
// §4.6, C6): merging per-Task output fragments into the final output
// matrix according to a Combine rule.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package combine

import (
	"fmt"

	"github.com/momentics/vecpipe/api"
	"github.com/momentics/vecpipe/matrix"
)

// Dense folds a Task-local fragment into final at the row/column range the
// Task was assigned. final must already exist (allocated per spec §4.5);
// for CombineAdd it must be zero-initialized before the first call.
type Dense[T matrix.ElemType] interface {
	Combine(final *matrix.Dense[T], frag *matrix.Dense[T], out api.Interval) error
}

// NewDense selects the Dense combiner implementation for c.
func NewDense[T matrix.ElemType](c api.Combine) Dense[T] {
	switch c {
	case api.CombineRows:
		return denseRows[T]{}
	case api.CombineCols:
		return denseCols[T]{}
	case api.CombineAdd:
		return denseAdd[T]{}
	default:
		return denseNone[T]{}
	}
}

type denseRows[T matrix.ElemType] struct{}

// Combine copies frag's values into final's row range [out.Start,out.End).
// If the pipeline already wrote in place (frag shares final's backing
// slice, the zero-copy path of spec §4.6), this is a no-op self-copy.
func (denseRows[T]) Combine(final, frag *matrix.Dense[T], out api.Interval) error {
	want := out.Len() * final.NumCols()
	if int64(len(frag.Values())) != want {
		return fmt.Errorf("combine: ROWS fragment has %d values, want %d for range %+v", len(frag.Values()), want, out)
	}
	dst := final.RowSlice(out.Start, out.End)
	copy(dst, frag.Values())
	return nil
}

type denseCols[T matrix.ElemType] struct{}

// Combine copies frag's columns [out.Start,out.End) into final, row by row
// (columns are not contiguous in row-major storage, so this cannot be a
// single copy).
func (denseCols[T]) Combine(final, frag *matrix.Dense[T], out api.Interval) error {
	width := out.Len()
	if frag.NumCols() != width {
		return fmt.Errorf("combine: COLS fragment has %d columns, want %d", frag.NumCols(), width)
	}
	for r := int64(0); r < final.NumRows(); r++ {
		for c := int64(0); c < width; c++ {
			final.Set(r, out.Start+c, frag.At(r, c))
		}
	}
	return nil
}

type denseAdd[T matrix.ElemType] struct{}

// Combine element-wise adds frag into final over frag's assigned row range.
// Callers invoking this from multiple goroutines concurrently must
// serialize per output (spec §4.4/§5): this method itself performs no
// locking.
func (denseAdd[T]) Combine(final, frag *matrix.Dense[T], out api.Interval) error {
	if frag.NumCols() != final.NumCols() {
		return fmt.Errorf("combine: ADD fragment has %d columns, want %d", frag.NumCols(), final.NumCols())
	}
	fragIsFullWidth := int64(len(frag.Values())) == out.Len()*final.NumCols()
	if !fragIsFullWidth {
		return fmt.Errorf("combine: ADD fragment has %d values, want %d for range %+v", len(frag.Values()), out.Len()*final.NumCols(), out)
	}
	dst := final.RowSlice(out.Start, out.End)
	src := frag.Values()
	for i := range dst {
		dst[i] += src[i]
	}
	return nil
}

type denseNone[T matrix.ElemType] struct{}

// Combine overwrites final with frag's values in full. The scheduler calls
// it for a CombineNone output whose dimensions were known up front (final
// is pre-allocated); an output with unknown dimensions takes the fragment
// directly instead.
func (denseNone[T]) Combine(final, frag *matrix.Dense[T], _ api.Interval) error {
	copy(final.Values(), frag.Values())
	return nil
}
