// File: facade/execute.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Generic scheduler construction and one-shot execute helpers. These are
// free functions, not Executor methods, because Go methods cannot carry
// their own type parameters.

package facade

import (
	"time"

	"github.com/momentics/vecpipe/api"
	"github.com/momentics/vecpipe/matrix"
	"github.com/momentics/vecpipe/scheduler"
)

// DenseScheduler builds a scheduler.DenseScheduler[T] bound to e's current
// config, topology, and accelerator context.
func DenseScheduler[T matrix.ElemType](e *Executor) *scheduler.DenseScheduler[T] {
	return scheduler.NewDenseScheduler[T](e.ExecConfig(), e.Topology(), e.Accel())
}

// CSRScheduler builds a scheduler.CSRScheduler[T] bound to e's current
// config and topology (CSR pipelines have no accelerator path, spec §4.6).
func CSRScheduler[T matrix.ElemType](e *Executor) *scheduler.CSRScheduler[T] {
	return scheduler.NewCSRScheduler[T](e.ExecConfig(), e.Topology())
}

// ExecuteDense builds a DenseScheduler for T, dispatches job under layout,
// and records the call's wall time and output count into e.Metrics().
func ExecuteDense[T matrix.ElemType](e *Executor, layout api.QueueLayout, job scheduler.DenseJob[T]) ([]*matrix.Dense[T], error) {
	s := DenseScheduler[T](e)
	start := time.Now()
	outs, err := dispatchDense(s, layout, job)
	e.metrics.Set("dense.lastLayout", int(layout))
	e.metrics.Set("dense.lastDuration", time.Since(start))
	e.metrics.Set("dense.lastOutputs", len(outs))
	if err != nil {
		e.metrics.Set("dense.lastError", err.Error())
	}
	return outs, err
}

// ExecuteCSR builds a CSRScheduler for T, dispatches job under layout, and
// records the call's wall time and output count into e.Metrics().
func ExecuteCSR[T matrix.ElemType](e *Executor, layout api.QueueLayout, job scheduler.CSRJob[T]) ([]*matrix.CSR[T], error) {
	s := CSRScheduler[T](e)
	start := time.Now()
	outs, err := dispatchCSR(s, layout, job)
	e.metrics.Set("csr.lastLayout", int(layout))
	e.metrics.Set("csr.lastDuration", time.Since(start))
	e.metrics.Set("csr.lastOutputs", len(outs))
	if err != nil {
		e.metrics.Set("csr.lastError", err.Error())
	}
	return outs, err
}

func dispatchDense[T matrix.ElemType](s *scheduler.DenseScheduler[T], layout api.QueueLayout, job scheduler.DenseJob[T]) ([]*matrix.Dense[T], error) {
	switch layout {
	case api.LayoutSingle:
		return s.ExecuteSingleQueue(job)
	case api.LayoutPerCPU:
		return s.ExecuteQueuePerCPU(job)
	case api.LayoutPerGroup:
		return s.ExecuteQueuePerGroup(job)
	default:
		return s.ExecuteQueuePerDeviceType(job)
	}
}

func dispatchCSR[T matrix.ElemType](s *scheduler.CSRScheduler[T], layout api.QueueLayout, job scheduler.CSRJob[T]) ([]*matrix.CSR[T], error) {
	switch layout {
	case api.LayoutSingle:
		return s.ExecuteSingleQueue(job)
	case api.LayoutPerCPU:
		return s.ExecuteQueuePerCPU(job)
	default:
		return s.ExecuteQueuePerGroup(job)
	}
}
