// File: topology/probe.go
// Package topology enumerates hardware threads, physical sockets, and cores
// so the scheduler can place one worker per physical core and group workers
// by socket for the per-group queue layout.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Ported from the source's MTWrapperBase::get_topology: it scans a
// per-processor key/value record stream (Linux exposes this at
// /proc/cpuinfo) and, for each "processor" record, remembers its "physical
// id" (socket) and "core id". A hardware thread is added to UniqueHwThreads
// iff no earlier processor shares both its physical id and core id — i.e.
// it is the first (primary) SMT sibling seen for that physical core.

package topology

import (
	"bufio"
	"os"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sys/cpu"

	"github.com/momentics/vecpipe/api"
)

// Topology is the result of a probe: PhysicalIDs[i] is the socket of
// hardware thread i, and UniqueHwThreads lists one hardware thread per
// (socket, core) pair, in record order.
type Topology struct {
	PhysicalIDs     []int
	UniqueHwThreads []int
}

// DefaultCPUInfoPath is the default topology source, overridable for tests
// (spec §6: "CPU info source ... overridable for testing").
const DefaultCPUInfoPath = "/proc/cpuinfo"

// Probe reads path (a /proc/cpuinfo-shaped key/value stream) and returns the
// discovered topology. If path cannot be opened, it falls back to a single
// socket with one hardware thread per runtime.NumCPU(), per spec §4.1, and
// returns api.ErrTopologyUnavailable so callers can log a diagnostic when
// verbose.
func Probe(path string) (Topology, error) {
	f, err := os.Open(path)
	if err != nil {
		return fallback(), api.ErrTopologyUnavailable
	}
	defer f.Close()

	var (
		hardwareThreads []int
		physicalIDs     []int
		coreIDs         []int
		uniqueThreads   []int
		index           int
	)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if val, ok := parseLine(line, "processor"); ok {
			hardwareThreads = append(hardwareThreads, val)
			continue
		}
		if val, ok := parseLine(line, "physical id"); ok {
			physicalIDs = append(physicalIDs, val)
			continue
		}
		if val, ok := parseLine(line, "core id"); ok {
			found := false
			for i := 0; i < index; i++ {
				if coreIDs[i] == val && physicalIDs[i] == physicalIDs[index] {
					found = true
					break
				}
			}
			coreIDs = append(coreIDs, val)
			if !found {
				uniqueThreads = append(uniqueThreads, hardwareThreads[index])
			}
			index++
		}
	}

	if len(hardwareThreads) == 0 {
		return fallback(), api.ErrTopologyUnavailable
	}

	return Topology{PhysicalIDs: physicalIDs, UniqueHwThreads: uniqueThreads}, nil
}

// fallback reports one socket, one hardware thread per concurrent thread
// the runtime reports. It references golang.org/x/sys/cpu's X86 feature set
// but records nothing from it: no instruction-set information reaches the
// returned Topology or any diagnostic.
func fallback() Topology {
	n := runtime.NumCPU()
	t := Topology{PhysicalIDs: make([]int, n), UniqueHwThreads: make([]int, n)}
	for i := 0; i < n; i++ {
		t.PhysicalIDs[i] = 0
		t.UniqueHwThreads[i] = i
	}
	_ = cpu.X86 // touched so the dependency is exercised even off the happy path
	return t
}

// parseLine extracts "<keyword> : <value>" style lines. Returns ok=false if
// the line's key does not match keyword or the value is not an integer.
func parseLine(line, keyword string) (int, bool) {
	if !strings.HasPrefix(line, keyword) {
		return 0, false
	}
	idx := strings.Index(line, ":")
	if idx < 0 {
		return 0, false
	}
	valStr := strings.TrimSpace(line[idx+1:])
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, false
	}
	return val, true
}
