// File: facade/facade_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package facade

import (
	"testing"

	"github.com/momentics/vecpipe/api"
	"github.com/momentics/vecpipe/matrix"
	"github.com/momentics/vecpipe/scheduler"
)

func TestNewUsesDefaultConfigWhenNil(t *testing.T) {
	e, err := New(nil)
	if err != nil {
		t.Fatalf("New(nil): %v", err)
	}
	if e.ExecConfig().QueueLayout != api.LayoutSingle {
		t.Fatalf("want default LayoutSingle, got %v", e.ExecConfig().QueueLayout)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exec.MinChunk = -1
	if _, err := New(cfg); err == nil {
		t.Fatal("expected validation error for negative MinChunk")
	}
}

func TestStartStopIdempotent(t *testing.T) {
	e, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if err := e.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := e.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestUpdateExecConfigRejectsInvalid(t *testing.T) {
	e, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	bad := e.ExecConfig()
	bad.NumberOfThreads = -5
	if err := e.UpdateExecConfig(bad); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestExecuteDenseRoundTrip(t *testing.T) {
	e, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cfg := e.ExecConfig()
	cfg.NumberOfThreads = 2
	if err := e.UpdateExecConfig(cfg); err != nil {
		t.Fatalf("UpdateExecConfig: %v", err)
	}

	in := matrix.NewDenseFromValues[int64](4, 1, []int64{1, 2, 3, 4})
	job := scheduler.DenseJob[int64]{
		Fn: func(inputs []*matrix.Dense[int64], tk api.Task, ctx api.Context) ([]*matrix.Dense[int64], error) {
			v := inputs[0]
			return []*matrix.Dense[int64]{matrix.NewDenseFromValues[int64](v.NumRows(), v.NumCols(), append([]int64(nil), v.Values()...))}, nil
		},
		Inputs:      []*matrix.Dense[int64]{in},
		Splits:      []api.Split{api.SplitRows},
		OutRows:     []int64{4},
		OutCols:     []int64{1},
		OutCombines: []api.Combine{api.CombineRows},
	}
	outs, err := ExecuteDense[int64](e, api.LayoutSingle, job)
	if err != nil {
		t.Fatalf("ExecuteDense: %v", err)
	}
	if len(outs) != 1 || outs[0].NumRows() != 4 {
		t.Fatalf("unexpected outs: %+v", outs)
	}
	snap := e.Metrics().GetSnapshot()
	if snap["dense.lastOutputs"] != 1 {
		t.Fatalf("expected metrics to record lastOutputs=1, got %v", snap["dense.lastOutputs"])
	}
}

func TestUpdateExecConfigFiresReloadHook(t *testing.T) {
	e, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cfg := e.ExecConfig()
	cfg.NumberOfThreads = 4
	if err := e.UpdateExecConfig(cfg); err != nil {
		t.Fatalf("UpdateExecConfig: %v", err)
	}
	snap := e.Metrics().GetSnapshot()
	if _, ok := snap["config.lastReloadAt"]; !ok {
		t.Fatal("expected config.lastReloadAt to be set after a reload")
	}
	state := e.Debug().DumpState()
	count, ok := state["config.reloadCount"].(int)
	if !ok || count < 1 {
		t.Fatalf("expected config.reloadCount >= 1, got %v", state["config.reloadCount"])
	}
}

func TestDebugProbesExposeTopology(t *testing.T) {
	e, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	state := e.Debug().DumpState()
	if _, ok := state["topology.hwThreads"]; !ok {
		t.Fatal("expected topology.hwThreads debug probe")
	}
	if _, ok := state["platform.cpus"]; !ok {
		t.Fatal("expected platform.cpus debug probe")
	}
}
