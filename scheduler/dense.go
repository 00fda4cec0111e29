// File: scheduler/dense.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// DenseScheduler is the MTWrapper<DenseMatrix<VT>> equivalent (spec §4.7):
// it is built once for a fixed element type T and drives any of the three
// execute* variants over Dense inputs/outputs.

package scheduler

import (
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/momentics/vecpipe/accel"
	"github.com/momentics/vecpipe/api"
	"github.com/momentics/vecpipe/combine"
	"github.com/momentics/vecpipe/control"
	"github.com/momentics/vecpipe/matrix"
	"github.com/momentics/vecpipe/partition"
	"github.com/momentics/vecpipe/pool"
	"github.com/momentics/vecpipe/queue"
	"github.com/momentics/vecpipe/topology"
	"github.com/momentics/vecpipe/worker"
)

// DenseFn is a pipeline function over Dense matrices: given the per-Task
// input views and a private ctx (spec §6's "(outputs[], inputs[], ctx)"
// signature), it returns one fragment per output (nil for an output it
// does not produce, which does not occur under the single-function
// pipelines this scheduler drives, but is accepted for forward
// compatibility with the funcs-vector shape of the original source).
type DenseFn[T matrix.ElemType] func(inputs []*matrix.Dense[T], t api.Task, ctx api.Context) ([]*matrix.Dense[T], error)

// DenseJob describes one execute* call's Dense workload.
type DenseJob[T matrix.ElemType] struct {
	Fn          DenseFn[T]
	Inputs      []*matrix.Dense[T]
	Splits      []api.Split
	OutRows     []int64 // -1 for unknown-until-runtime dims
	OutCols     []int64
	OutCombines []api.Combine
	// IsScalar forces CombineNone on an output regardless of OutCombines
	// (Open Question decision, see SPEC_FULL.md).
	IsScalar []bool
}

// DenseScheduler drives Dense pipelines; construct one per element type.
type DenseScheduler[T matrix.ElemType] struct {
	cfg   control.ExecConfig
	topo  topology.Topology
	accel accel.Context
}

// NewDenseScheduler builds a scheduler bound to cfg, topo, and an
// accelerator context (accel.Unavailable{} when none is configured).
func NewDenseScheduler[T matrix.ElemType](cfg control.ExecConfig, topo topology.Topology, acc accel.Context) *DenseScheduler[T] {
	if acc == nil {
		acc = accel.Unavailable{}
	}
	return &DenseScheduler[T]{cfg: cfg, topo: topo, accel: acc}
}

// ExecuteSingleQueue runs job with every worker sharing one queue.
func (s *DenseScheduler[T]) ExecuteSingleQueue(job DenseJob[T]) ([]*matrix.Dense[T], error) {
	return s.execute(api.LayoutSingle, job)
}

// ExecuteQueuePerCPU runs job with one queue per worker and stealing.
func (s *DenseScheduler[T]) ExecuteQueuePerCPU(job DenseJob[T]) ([]*matrix.Dense[T], error) {
	return s.execute(api.LayoutPerCPU, job)
}

// ExecuteQueuePerGroup runs job with one queue per physical socket.
func (s *DenseScheduler[T]) ExecuteQueuePerGroup(job DenseJob[T]) ([]*matrix.Dense[T], error) {
	return s.execute(api.LayoutPerGroup, job)
}

// ExecuteQueuePerDeviceType runs job with one queue for CPU workers and, if
// an accelerator is configured and present, a second queue feeding a
// single accelerator worker (spec §4.7's third variant). Without an
// accelerator, CPU workers are wired as in ExecuteQueuePerGroup (one queue
// per socket).
func (s *DenseScheduler[T]) ExecuteQueuePerDeviceType(job DenseJob[T]) ([]*matrix.Dense[T], error) {
	return s.execute(api.LayoutPerDeviceType, job)
}

func (s *DenseScheduler[T]) execute(layoutKind api.QueueLayout, job DenseJob[T]) ([]*matrix.Dense[T], error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	numCPUWorkers := effectiveThreads(s.cfg)
	if numCPUWorkers <= 0 {
		return nil, api.NewError(api.ErrCodeConfig, api.ErrConfigError, "numQueues is 0, this should not happen")
	}

	totalLen, inMem := denseInputProperties(job.Inputs, job.Splits)
	outs, outMem := allocateDenseOutputs[T](job.OutRows, job.OutCols, job.OutCombines, job.IsScalar)
	memRequired := inMem + outMem

	useAccel := layoutKind == api.LayoutPerDeviceType && s.cfg.UseAccelerator && s.accel.Available()
	if s.cfg.Verbose {
		accelWorkers := 0
		if useAccel {
			accelWorkers = 1
		}
		log.Printf("scheduler: spawning %d CPU and %d accelerator worker threads", numCPUWorkers, accelWorkers)
	}
	if accel.ShouldPrefetch(s.accel, memRequired) {
		for i, in := range job.Inputs {
			if i < len(job.Splits) && job.Splits[i] == api.SplitRows {
				_ = s.accel.PrefetchRowRange(api.Interval{Start: 0, End: in.NumRows()})
			}
		}
	}

	partitionWorkers := numCPUWorkers
	if useAccel {
		partitionWorkers++
	}
	chunks := partition.Split(partition.Params{TotalLen: totalLen, NumWorkers: partitionWorkers, MinChunk: s.cfg.MinChunk, Strategy: s.cfg.PartitionStrat})
	if len(chunks) == 0 {
		chunks = []api.Interval{{}}
	}
	tasks := buildDenseTasks(chunks, job.Splits, job.OutCombines, job.IsScalar)

	// baseCtx carries this run's accelerator handle and NUMA hint; each
	// Task clones it (api.Context.Clone) so concurrent workers never share
	// a mutable map (spec §6's ctx parameter).
	baseCtx := api.NewContext(s.cfg.Verbose)
	baseCtx.Set("accel", s.accel)
	baseCtx.Set("numaNode", -1) // output buffers are not NUMA-hinted today, see DESIGN.md

	var mu sync.Mutex
	runTask := func(t api.Task) error {
		views := viewDenseInputs(job.Inputs, job.Splits, t)
		taskCtx := baseCtx.Clone()

		// Stage this Task's input/output-view buffers in a worker-owned,
		// non-thread-safe batch for the call's lifetime (pool.BufferBatch's
		// intended use, spec §4.4); views produced by NewDenseFromValues
		// carry no pool buffer and are simply skipped.
		batch := pool.NewBufferBatch(len(views) + len(job.OutCombines))
		for _, v := range views {
			if buf := v.Buffer(); buf != nil {
				batch.Append(buf)
			}
		}

		fragments, err := job.Fn(views, t, taskCtx)
		if err != nil {
			batch.Reset()
			return fmt.Errorf("%w: %v", api.ErrPipelineFunctionFailure, err)
		}
		for _, frag := range fragments {
			if frag != nil {
				if buf := frag.Buffer(); buf != nil {
					batch.Append(buf)
				}
			}
		}
		defer batch.Reset()

		for i, frag := range fragments {
			if frag == nil {
				continue
			}
			c := effectiveCombine(job.OutCombines[i], job.IsScalar, i)
			mu.Lock()
			if outs[i] == nil {
				outs[i] = frag
				mu.Unlock()
				continue
			}
			cmb := combine.NewDense[T](c)
			cerr := cmb.Combine(outs[i], frag, t.Outputs[i])
			mu.Unlock()
			if cerr != nil {
				return cerr
			}
		}
		return nil
	}

	if useAccel {
		return outs, s.runPerDeviceType(numCPUWorkers, tasks, runTask)
	}
	return outs, s.runCommon(layoutKind, numCPUWorkers, tasks, runTask)
}

// runCommon wires LayoutSingle/PerCPU/PerGroup: all workers are
// homogeneous CPU workers distinguished only by queue topology.
func (s *DenseScheduler[T]) runCommon(layoutKind api.QueueLayout, numWorkers int, tasks []api.Task, runTask worker.Fn) error {
	w := buildWiring(layoutKind, numWorkers, s.topo, s.cfg)
	if err := seedRoundRobin(w.queues, tasks); err != nil {
		return err
	}
	w.closeAll()

	var g errgroup.Group
	for i := 0; i < numWorkers; i++ {
		cfg := worker.Config{
			ID:          w.peerIndex(i),
			Role:        api.DeviceCPU,
			Home:        w.homes[i],
			Peers:       w.peers,
			StealPolicy: s.cfg.StealPolicy,
			Affinity:    workerAffinity(s.cfg),
			PinCPU:      w.pins[i],
			Fn:          runTask,
		}
		wk := worker.New(cfg)
		g.Go(wk.Run)
	}
	return g.Wait()
}

// runPerDeviceType additionally routes the accelerator's share of tasks
// (the last chunk seeded, by convention) onto a dedicated accelerator
// worker that prefetches before invoking runTask.
func (s *DenseScheduler[T]) runPerDeviceType(numCPUWorkers int, tasks []api.Task, runTask worker.Fn) error {
	if len(tasks) == 0 {
		return s.runCommon(api.LayoutPerDeviceType, numCPUWorkers, tasks, runTask)
	}
	cpuTasks := tasks[:len(tasks)-1]
	accelTask := tasks[len(tasks)-1]

	cpuQueue := queue.New()
	accelQueue := queue.New()
	if err := seedRoundRobin([]*queue.TaskQueue{cpuQueue}, cpuTasks); err != nil {
		return err
	}
	_ = accelQueue.Push(accelTask)
	cpuQueue.Close()
	accelQueue.Close()

	var g errgroup.Group
	for i := 0; i < numCPUWorkers; i++ {
		cfg := worker.Config{ID: i, Role: api.DeviceCPU, Home: cpuQueue, Fn: runTask}
		wk := worker.New(cfg)
		g.Go(wk.Run)
	}
	accelCfg := worker.Config{
		ID:   numCPUWorkers,
		Role: api.DeviceAccelerator,
		Home: accelQueue,
		Fn:   runTask,
		Prefetch: func(t api.Task) error {
			for _, rg := range t.Inputs {
				if rg.Len() == 0 {
					continue
				}
				if err := s.accel.PrefetchRowRange(rg); err != nil {
					return err
				}
			}
			return nil
		},
	}
	g.Go(worker.New(accelCfg).Run)
	return g.Wait()
}

func buildDenseTasks(chunks []api.Interval, splits []api.Split, combines []api.Combine, isScalar []bool) []api.Task {
	tasks := make([]api.Task, len(chunks))
	for ci, c := range chunks {
		inputs := make([]api.Interval, len(splits))
		for j, sp := range splits {
			if sp == api.SplitRows {
				inputs[j] = c
			}
		}
		outputs := make([]api.Interval, len(combines))
		for j := range combines {
			ec := effectiveCombine(combines[j], isScalar, j)
			if ec == api.CombineRows || ec == api.CombineAdd || ec == api.CombineCols {
				outputs[j] = c
			}
		}
		tasks[ci] = api.Task{FuncIndex: 0, Inputs: inputs, Outputs: outputs}
	}
	return tasks
}

func viewDenseInputs[T matrix.ElemType](inputs []*matrix.Dense[T], splits []api.Split, t api.Task) []*matrix.Dense[T] {
	views := make([]*matrix.Dense[T], len(inputs))
	for i, in := range inputs {
		if i < len(splits) && splits[i] == api.SplitRows && i < len(t.Inputs) {
			rg := t.Inputs[i]
			views[i] = matrix.NewDenseFromValues[T](rg.Len(), in.NumCols(), in.RowSlice(rg.Start, rg.End))
		} else {
			views[i] = in
		}
	}
	return views
}

func seedRoundRobin(qs []*queue.TaskQueue, tasks []api.Task) error {
	if len(qs) == 0 {
		return nil
	}
	for i, t := range tasks {
		if err := qs[i%len(qs)].Push(t); err != nil {
			return err
		}
	}
	return nil
}
