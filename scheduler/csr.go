// File: scheduler/csr.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// CSRScheduler is the MTWrapper<CSRMatrix<VT>> equivalent. Per spec §4.6,
// CSR outputs only ever combine via ROWS or NONE; accelerator offload is
// not defined for CSR in the source, so ExecuteQueuePerDeviceType here is
// just ExecuteQueuePerGroup under another name (see DESIGN.md).

package scheduler

import (
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/momentics/vecpipe/api"
	"github.com/momentics/vecpipe/combine"
	"github.com/momentics/vecpipe/control"
	"github.com/momentics/vecpipe/matrix"
	"github.com/momentics/vecpipe/partition"
	"github.com/momentics/vecpipe/topology"
	"github.com/momentics/vecpipe/worker"
)

// CSRFn is a pipeline function over CSR matrices producing one fragment
// per output for its Task's row range, given a private ctx per spec §6's
// "(outputs[], inputs[], ctx)" pipeline-function signature.
type CSRFn[T matrix.ElemType] func(inputs []*matrix.CSR[T], t api.Task, ctx api.Context) ([]*matrix.CSR[T], error)

// CSRJob describes one execute* call's CSR workload. OutCombines entries
// must be CombineRows or CombineNone (spec §4.6); CombineAdd/CombineCols
// are rejected by validate.
type CSRJob[T matrix.ElemType] struct {
	Fn          CSRFn[T]
	Inputs      []*matrix.CSR[T]
	Splits      []api.Split
	OutRows     []int64 // final row count per output; -1 if unknown
	OutCols     []int64
	OutCombines []api.Combine
}

func (j CSRJob[T]) validate() error {
	for i, c := range j.OutCombines {
		if c != api.CombineRows && c != api.CombineNone {
			return api.NewError(api.ErrCodeConfig, api.ErrConfigError, fmt.Sprintf("CSR output %d: combine %s is not supported, only ROWS/NONE", i, c))
		}
	}
	return nil
}

// CSRScheduler drives CSR pipelines; construct one per element type.
type CSRScheduler[T matrix.ElemType] struct {
	cfg  control.ExecConfig
	topo topology.Topology
}

// NewCSRScheduler builds a scheduler bound to cfg and topo.
func NewCSRScheduler[T matrix.ElemType](cfg control.ExecConfig, topo topology.Topology) *CSRScheduler[T] {
	return &CSRScheduler[T]{cfg: cfg, topo: topo}
}

func (s *CSRScheduler[T]) ExecuteSingleQueue(job CSRJob[T]) ([]*matrix.CSR[T], error) {
	return s.execute(api.LayoutSingle, job)
}

func (s *CSRScheduler[T]) ExecuteQueuePerCPU(job CSRJob[T]) ([]*matrix.CSR[T], error) {
	return s.execute(api.LayoutPerCPU, job)
}

func (s *CSRScheduler[T]) ExecuteQueuePerGroup(job CSRJob[T]) ([]*matrix.CSR[T], error) {
	return s.execute(api.LayoutPerGroup, job)
}

// ExecuteQueuePerDeviceType has no accelerator-specific behavior for CSR
// outputs (spec §4.6 defines no CSR accelerator merge); it is
// ExecuteQueuePerGroup under the name the facade contract requires.
func (s *CSRScheduler[T]) ExecuteQueuePerDeviceType(job CSRJob[T]) ([]*matrix.CSR[T], error) {
	return s.execute(api.LayoutPerGroup, job)
}

func (s *CSRScheduler[T]) execute(layoutKind api.QueueLayout, job CSRJob[T]) ([]*matrix.CSR[T], error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := job.validate(); err != nil {
		return nil, err
	}
	numWorkers := effectiveThreads(s.cfg)
	if numWorkers <= 0 {
		return nil, api.NewError(api.ErrCodeConfig, api.ErrConfigError, "numQueues is 0, this should not happen")
	}

	if s.cfg.Verbose {
		log.Printf("scheduler: spawning %d CPU worker threads", numWorkers)
	}
	totalLen, _ := csrInputProperties(job.Inputs, job.Splits)
	chunks := partition.Split(partition.Params{TotalLen: totalLen, NumWorkers: numWorkers, MinChunk: s.cfg.MinChunk, Strategy: s.cfg.PartitionStrat})
	if len(chunks) == 0 {
		chunks = []api.Interval{{}}
	}
	tasks := buildCSRTasks(chunks, job.Splits, job.OutCombines)

	// baseCtx carries this run's NUMA hint (CSR has no accelerator path,
	// spec §4.6); each Task clones it so concurrent workers never share a
	// mutable map (spec §6's ctx parameter).
	baseCtx := api.NewContext(s.cfg.Verbose)
	baseCtx.Set("numaNode", -1)

	var mu sync.Mutex
	fragsByOutput := make([][]combine.CSRFragment[T], len(job.OutCombines))
	singleOutput := make([]*matrix.CSR[T], len(job.OutCombines))

	runTask := func(t api.Task) error {
		views := viewCSRInputs(job.Inputs, job.Splits, t)
		taskCtx := baseCtx.Clone()
		fragments, err := job.Fn(views, t, taskCtx)
		if err != nil {
			return fmt.Errorf("%w: %v", api.ErrPipelineFunctionFailure, err)
		}
		mu.Lock()
		defer mu.Unlock()
		for i, frag := range fragments {
			if frag == nil {
				continue
			}
			if job.OutCombines[i] == api.CombineNone {
				singleOutput[i] = frag
				continue
			}
			fragsByOutput[i] = append(fragsByOutput[i], combine.CSRFragment[T]{Range: t.Outputs[i], Frag: frag})
		}
		return nil
	}

	w := buildWiring(layoutKind, numWorkers, s.topo, s.cfg)
	if err := seedRoundRobin(w.queues, tasks); err != nil {
		return nil, err
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
		g.Go(worker.New(cfg).Run)
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	outs := make([]*matrix.CSR[T], len(job.OutCombines))
	rowsCombiner := combine.CSRRows[T]{}
	for i, c := range job.OutCombines {
		if c == api.CombineNone {
			outs[i] = singleOutput[i]
			continue
		}
		if job.OutRows[i] < 0 || job.OutCols[i] < 0 {
			return nil, api.NewError(api.ErrCodeConfig, api.ErrConfigError, "CSR ROWS combine requires known output dimensions")
		}
		assembled, err := rowsCombiner.Combine(job.OutRows[i], job.OutCols[i], fragsByOutput[i])
		if err != nil {
			return nil, err
		}
		outs[i] = assembled
	}
	return outs, nil
}

func buildCSRTasks(chunks []api.Interval, splits []api.Split, combines []api.Combine) []api.Task {
	tasks := make([]api.Task, len(chunks))
	for ci, c := range chunks {
		inputs := make([]api.Interval, len(splits))
		for j, sp := range splits {
			if sp == api.SplitRows {
				inputs[j] = c
			}
		}
		outputs := make([]api.Interval, len(combines))
		for j, cb := range combines {
			if cb == api.CombineRows {
				outputs[j] = c
			}
		}
		tasks[ci] = api.Task{FuncIndex: 0, Inputs: inputs, Outputs: outputs}
	}
	return tasks
}

func viewCSRInputs[T matrix.ElemType](inputs []*matrix.CSR[T], splits []api.Split, t api.Task) []*matrix.CSR[T] {
	views := make([]*matrix.CSR[T], len(inputs))
	for i, in := range inputs {
		if i < len(splits) && splits[i] == api.SplitRows && i < len(t.Inputs) {
			rg := t.Inputs[i]
			views[i] = in.RowSlice(rg.Start, rg.End)
		} else {
			views[i] = in
		}
	}
	return views
}
