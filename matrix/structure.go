// File: matrix/structure.go
// Package matrix implements the two storage layouts pipeline functions
// operate on: row-major Dense and compressed-sparse-row (CSR). These are
// the "external collaborator" matrix allocators named in spec §6 — a
// standalone module needs a concrete implementation to compile and test
// the scheduler against, so this package gives the §6 contracts a body.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package matrix

// Structure is the common supertype of all matrix shapes a pipeline
// function accepts as an input handle.
type Structure interface {
	NumRows() int64
	NumCols() int64
	NumItems() int64
	BufferSize() int64
}

// ElemType constrains the numeric element types matrices hold.
type ElemType interface {
	~float32 | ~float64 | ~int32 | ~int64
}
