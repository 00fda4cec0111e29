package combine_test

import (
	"testing"

	"github.com/momentics/vecpipe/api"
	"github.com/momentics/vecpipe/combine"
	"github.com/momentics/vecpipe/matrix"
)

// TestDenseRowsIdentity mirrors spec §8 scenario 1: 4x2 int matrix split
// into 2 row chunks, identity pipeline, ROWS combine.
func TestDenseRowsIdentity(t *testing.T) {
	final := matrix.CreateDense[int64](4, 2, false, -1)
	defer final.Release()
	c := combine.NewDense[int64](api.CombineRows)

	frag0 := matrix.NewDenseFromValues[int64](2, 2, []int64{1, 2, 3, 4})
	frag1 := matrix.NewDenseFromValues[int64](2, 2, []int64{5, 6, 7, 8})
	if err := c.Combine(final, frag0, api.Interval{Start: 0, End: 2}); err != nil {
		t.Fatalf("combine frag0: %v", err)
	}
	if err := c.Combine(final, frag1, api.Interval{Start: 2, End: 4}); err != nil {
		t.Fatalf("combine frag1: %v", err)
	}
	want := []int64{1, 2, 3, 4, 5, 6, 7, 8}
	for i, v := range final.Values() {
		if v != want[i] {
			t.Fatalf("value[%d] = %d, want %d", i, v, want[i])
		}
	}
}

// TestDenseAddSum mirrors spec §8 scenario 2: elementwise sum of two 6x3
// inputs folded in over 3 row ranges of unequal size (1, 3 and 2 rows).
func TestDenseAddSum(t *testing.T) {
	const rows, cols = 6, 3
	final := matrix.CreateDense[float64](rows, cols, true, -1)
	defer final.Release()
	c := combine.NewDense[float64](api.CombineAdd)

	a := matrix.CreateDense[float64](rows, cols, false, -1)
	b := matrix.CreateDense[float64](rows, cols, false, -1)
	for r := int64(0); r < rows; r++ {
		for col := int64(0); col < cols; col++ {
			a.Set(r, col, float64(r+col))
			b.Set(r, col, float64(2*r-col))
		}
	}

	ranges := []api.Interval{{Start: 0, End: 1}, {Start: 1, End: 4}, {Start: 4, End: 6}}
	for _, rg := range ranges {
		sum := matrix.CreateDense[float64](rg.Len(), cols, false, -1)
		for r := int64(0); r < rg.Len(); r++ {
			for col := int64(0); col < cols; col++ {
				sum.Set(r, col, a.At(rg.Start+r, col)+b.At(rg.Start+r, col))
			}
		}
		if err := c.Combine(final, sum, rg); err != nil {
			t.Fatalf("combine range %+v: %v", rg, err)
		}
	}

	for r := int64(0); r < rows; r++ {
		for col := int64(0); col < cols; col++ {
			want := a.At(r, col) + b.At(r, col)
			if got := final.At(r, col); got != want {
				t.Fatalf("final[%d,%d] = %v, want %v", r, col, got, want)
			}
		}
	}
}

// TestCSRRowsConcat mirrors spec §8 scenario 3 exactly.
func TestCSRRowsConcat(t *testing.T) {
	frags := []combine.CSRFragment[float64]{
		{
			Range: api.Interval{Start: 0, End: 2},
			Frag:  matrix.NewCSRFromArrays[float64](2, 4, []float64{1, 2, 3}, []int64{1, 0, 3}, []int64{0, 1, 3}),
		},
		{
			Range: api.Interval{Start: 2, End: 4},
			Frag:  matrix.NewCSRFromArrays[float64](2, 4, []float64{4}, []int64{2}, []int64{0, 0, 1}),
		},
		{
			Range: api.Interval{Start: 4, End: 5},
			Frag:  matrix.NewCSRFromArrays[float64](1, 4, []float64{5, 6}, []int64{0, 1}, []int64{0, 2}),
		},
	}

	out, err := (combine.CSRRows[float64]{}).Combine(5, 4, frags)
	if err != nil {
		t.Fatalf("combine: %v", err)
	}
	wantValues := []float64{1, 2, 3, 4, 5, 6}
	wantCols := []int64{1, 0, 3, 2, 0, 1}
	wantOffsets := []int64{0, 1, 3, 3, 4, 6}
	for i, v := range out.Values() {
		if v != wantValues[i] {
			t.Fatalf("values[%d] = %v, want %v", i, v, wantValues[i])
		}
	}
	for i, v := range out.ColIdxs() {
		if v != wantCols[i] {
			t.Fatalf("colIdxs[%d] = %v, want %v", i, v, wantCols[i])
		}
	}
	for i, v := range out.RowOffsets() {
		if v != wantOffsets[i] {
			t.Fatalf("rowOffsets[%d] = %v, want %v", i, v, wantOffsets[i])
		}
	}
}

func TestCSRRowsRejectsGap(t *testing.T) {
	frags := []combine.CSRFragment[float64]{
		{Range: api.Interval{Start: 0, End: 2}, Frag: matrix.NewCSRFromArrays[float64](2, 1, nil, nil, []int64{0, 0, 0})},
		{Range: api.Interval{Start: 3, End: 5}, Frag: matrix.NewCSRFromArrays[float64](2, 1, nil, nil, []int64{0, 0, 0})},
	}
	if _, err := (combine.CSRRows[float64]{}).Combine(5, 1, frags); err == nil {
		t.Fatal("expected an error for a row-range gap")
	}
}
