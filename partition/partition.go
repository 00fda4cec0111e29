// File: partition/partition.go
// Package partition turns a total row count into a stream of half-open
// chunk intervals for the scheduler to hand out as Tasks (spec §4.3).
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package partition

import "github.com/momentics/vecpipe/api"

// Params configures a partitioning run.
type Params struct {
	TotalLen   int64
	NumWorkers int
	MinChunk   int64
	Strategy   api.PartitionStrategy
}

// Split returns the full stream of [start, end) intervals for Params,
// covering [0, TotalLen) exactly once, in ascending order.
func Split(p Params) []api.Interval {
	if p.TotalLen <= 0 || p.NumWorkers <= 0 {
		return nil
	}
	if p.MinChunk < 1 {
		p.MinChunk = 1
	}
	switch p.Strategy {
	case api.GSS:
		return splitGSS(p)
	case api.FAC2:
		return splitFAC2(p)
	case api.TSS:
		return splitTSS(p)
	default:
		return splitStatic(p)
	}
}

func splitStatic(p Params) []api.Interval {
	n := int64(p.NumWorkers)
	base := p.TotalLen / n
	rem := p.TotalLen % n
	out := make([]api.Interval, 0, n)
	var start int64
	for i := int64(0); i < n; i++ {
		size := base
		if i == n-1 {
			size = p.TotalLen - start // last chunk absorbs remainder
		}
		if size <= 0 {
			continue
		}
		out = append(out, api.Interval{Start: start, End: start + size})
		start += size
	}
	_ = rem
	return out
}

// splitGSS implements guided self-scheduling: each chunk size is
// ceil(remaining / numWorkers); once remaining < MinChunk the tail becomes
// one final chunk (spec §4.3 tie-break).
func splitGSS(p Params) []api.Interval {
	n := int64(p.NumWorkers)
	remaining := p.TotalLen
	var out []api.Interval
	var start int64
	for remaining > 0 {
		if remaining < p.MinChunk {
			out = append(out, api.Interval{Start: start, End: start + remaining})
			break
		}
		size := ceilDiv(remaining, n)
		if size < p.MinChunk {
			size = p.MinChunk
		}
		if size > remaining {
			size = remaining
		}
		out = append(out, api.Interval{Start: start, End: start + size})
		start += size
		remaining -= size
	}
	return out
}

// splitFAC2 implements factoring: rounds of numWorkers chunks, each chunk
// in a round sized ceil(remaining/(2*numWorkers)), halving the per-round
// size every round.
func splitFAC2(p Params) []api.Interval {
	n := int64(p.NumWorkers)
	remaining := p.TotalLen
	var out []api.Interval
	var start int64
	for remaining > 0 {
		if remaining < p.MinChunk {
			out = append(out, api.Interval{Start: start, End: start + remaining})
			break
		}
		roundSize := ceilDiv(remaining, 2*n)
		if roundSize < p.MinChunk {
			roundSize = p.MinChunk
		}
		for i := int64(0); i < n && remaining > 0; i++ {
			size := roundSize
			if size > remaining {
				size = remaining
			}
			out = append(out, api.Interval{Start: start, End: start + size})
			start += size
			remaining -= size
		}
	}
	return out
}

// splitTSS implements trapezoid self-scheduling: chunk sizes decrease
// linearly from an initial size (totalLen / (2*numWorkers)) to a final size
// of MinChunk.
func splitTSS(p Params) []api.Interval {
	n := int64(p.NumWorkers)
	initial := ceilDiv(p.TotalLen, 2*n)
	if initial < p.MinChunk {
		initial = p.MinChunk
	}
	final := p.MinChunk
	numChunks := int64(2 * p.TotalLen / (initial + final))
	if numChunks < 1 {
		numChunks = 1
	}
	step := int64(0)
	if numChunks > 1 {
		step = (initial - final) / (numChunks - 1)
	}

	remaining := p.TotalLen
	size := initial
	var out []api.Interval
	var start int64
	for remaining > 0 {
		if remaining < p.MinChunk {
			out = append(out, api.Interval{Start: start, End: start + remaining})
			break
		}
		cur := size
		if cur < final {
			cur = final
		}
		if cur > remaining {
			cur = remaining
		}
		out = append(out, api.Interval{Start: start, End: start + cur})
		start += cur
		remaining -= cur
		size -= step
	}
	return out
}

func ceilDiv(a, b int64) int64 {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}
