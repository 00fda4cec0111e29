//go:build linux && !cgo
// +build linux,!cgo

// File: pool/numapool_linux_nocgo.go
// Author: momentics <momentics@gmail.com>
//
// Fallback for Linux builds without cgo (numapool_linux.go requires cgo).

package pool

// createNUMAAllocator returns nil when cgo is disabled on Linux.
func createNUMAAllocator() NUMAAllocator {
	return nil
}
