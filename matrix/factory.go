// File: matrix/factory.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Thin factory functions mirroring the source's
// DataObjectFactory::create<DenseMatrix<T>>/create<CSRMatrix<T>> (spec §6),
// so scheduler/alloc.go has a single call site per shape instead of
// reaching into matrix internals.

package matrix

// CreateDense allocates a zero-value-capable dense matrix, honoring
// zeroInit for CombineAdd outputs.
func CreateDense[T ElemType](rows, cols int64, zeroInit bool, numaNode int) *Dense[T] {
	return NewDense[T](rows, cols, zeroInit, numaNode)
}

// CreateCSR allocates a CSR matrix with room for nnz nonzeros.
func CreateCSR[T ElemType](rows, cols, nnz int64, zeroInit bool, numaNode int) *CSR[T] {
	return NewCSR[T](rows, cols, nnz, zeroInit, numaNode)
}
