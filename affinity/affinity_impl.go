// File: affinity/affinity_impl.go
// Author: momentics <momentics@gmail.com>
//
// OSThread adapts the package-level SetAffinity to api.Affinity so worker
// can depend on the interface rather than this package directly.

package affinity

import "github.com/momentics/vecpipe/api"

// OSThread pins the calling OS thread via SetAffinity.
type OSThread struct{}

// Pin implements api.Affinity.
func (OSThread) Pin(cpuID int) error { return SetAffinity(cpuID) }

var _ api.Affinity = OSThread{}
