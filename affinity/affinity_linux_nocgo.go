//go:build linux && !cgo
// +build linux,!cgo

// File: affinity/affinity_linux_nocgo.go
// Author: momentics <momentics@gmail.com>
//
// Fallback for Linux builds without cgo (affinity_linux.go requires cgo).

package affinity

import "errors"

// setAffinityPlatform is a stub used when cgo is disabled on Linux.
func setAffinityPlatform(cpuID int) error {
	return errors.New("affinity: not supported on this platform")
}
