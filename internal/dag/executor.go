package dag

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/texgraph/internal/ctxlog"
)

// Func processes one node. It is called only after every dependency of the
// node returned nil.
type Func func(ctx context.Context, id string) error

// errSkipped marks nodes that never ran because a dependency failed.
var errSkipped = errors.New("skipped")

// Executor runs a Func for every node of a Graph on a pool of workers.
type Executor struct {
	graph      *Graph
	numWorkers int
}

// NewExecutor creates an executor for g. A non-positive worker count uses
// one worker per CPU.
func NewExecutor(g *Graph, numWorkers int) *Executor {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Executor{graph: g, numWorkers: numWorkers}
}

type runState struct {
	node     *node
	depCount atomic.Int32
	skipOnce sync.Once
	err      error
}

// Run executes fn for every node concurrently, respecting dependencies, and
// returns an error if any node fails. After the first failure the run
// context is canceled and the failed node's dependents are skipped.
func (e *Executor) Run(ctx context.Context, fn Func) error {
	logger := ctxlog.FromContext(ctx)

	if err := e.graph.DetectCycles(); err != nil {
		return err
	}

	e.graph.mutex.RLock()
	states := make(map[string]*runState, len(e.graph.nodes))
	order := append([]string(nil), e.graph.order...)
	for _, id := range order {
		n := e.graph.nodes[id]
		st := &runState{node: n}
		st.depCount.Store(int32(len(n.deps)))
		states[id] = st
	}
	e.graph.mutex.RUnlock()

	if len(states) == 0 {
		return nil
	}

	readyChan := make(chan *runState, len(states))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(len(states))

	rootNodeCount := 0
	for _, id := range order {
		if st := states[id]; st.depCount.Load() == 0 {
			readyChan <- st
			rootNodeCount++
		}
	}
	logger.Debug("Starting worker pool.", "workers", e.numWorkers, "roots", rootNodeCount)

	var skipDependents func(st *runState)
	skipDependents = func(st *runState) {
		for _, dependent := range sorted(st.node.dependents) {
			d := states[dependent.id]
			d.skipOnce.Do(func() {
				logger.Debug("Skipping dependent node due to upstream failure.", "nodeID", dependent.id, "dependency", st.node.id)
				d.err = fmt.Errorf("%w due to upstream failure of '%s'", errSkipped, st.node.id)
				wg.Done()
				skipDependents(d)
			})
		}
	}

	for i := 0; i < e.numWorkers; i++ {
		go func(workerID int) {
			for st := range readyChan {
				workerLogger := logger.With("workerID", workerID, "nodeID", st.node.id)
				st.skipOnce.Do(func() {
					if runCtx.Err() != nil {
						st.err = runCtx.Err()
						skipDependents(st)
						wg.Done()
						return
					}
					if err := fn(runCtx, st.node.id); err != nil {
						workerLogger.Debug("Node execution failed.", "error", err)
						st.err = err
						cancel()
						skipDependents(st)
						wg.Done()
						return
					}
					for _, dependent := range sorted(st.node.dependents) {
						if states[dependent.id].depCount.Add(-1) == 0 {
							readyChan <- states[dependent.id]
						}
					}
					wg.Done()
				})
			}
		}(i)
	}

	wg.Wait()
	close(readyChan)

	var failedNodes []string
	var rootCauseError error
	for _, id := range order {
		st := states[id]
		if st.err == nil || errors.Is(st.err, errSkipped) || errors.Is(st.err, context.Canceled) {
			continue
		}
		failedNodes = append(failedNodes, id)
		if rootCauseError == nil {
			rootCauseError = st.err
		}
	}
	if rootCauseError != nil {
		return fmt.Errorf("execution failed for %s: %w", strings.Join(failedNodes, ", "), rootCauseError)
	}
	return ctx.Err()
}
