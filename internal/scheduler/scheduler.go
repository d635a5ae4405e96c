package scheduler

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/specialistvlad/texgraph/internal/ctxlog"
	"github.com/specialistvlad/texgraph/internal/graph"
	"github.com/specialistvlad/texgraph/internal/metrics"
	"github.com/specialistvlad/texgraph/internal/node"
)

// maxVisits bounds how often one node is evaluated in a single drain, so an
// evaluation that keeps re-dirtying its own node cannot spin forever.
const maxVisits = 64

// Scheduler keeps the dirty queue of an arena.
type Scheduler struct {
	arena   *graph.Arena
	eval    Evaluator
	logger  *slog.Logger
	metrics *metrics.Metrics

	queue []string
	dirty map[string]struct{}

	failures int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used by change notifications, which carry no
// context.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithMetrics records enqueues, evaluations and drain durations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// New creates a scheduler for arena and installs it as the arena's change
// hook.
func New(arena *graph.Arena, ev Evaluator, opts ...Option) *Scheduler {
	s := &Scheduler{
		arena:  arena,
		eval:   ev,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		dirty:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	arena.SetChangeHook(func(n *node.Node) { s.notify(s.logger, n) })
	return s
}

// NotifyChanged schedules re-evaluation for a change of node nodeID. It
// reports whether a node was enqueued.
func (s *Scheduler) NotifyChanged(ctx context.Context, nodeID string) bool {
	logger := ctxlog.FromContext(ctx)
	n, ok := s.arena.Node(nodeID)
	if !ok {
		logger.Debug("Change notification for unknown node.", "nodeID", nodeID)
		return false
	}
	return s.notify(logger, n)
}

func (s *Scheduler) notify(logger *slog.Logger, n *node.Node) bool {
	for range len(s.arena.Graphs()) + 1 {
		g, ok := s.arena.GraphOf(n.ID)
		if !ok {
			return false
		}

		host := s.escalation(g)
		if host == nil {
			if g.State != graph.Ready {
				logger.Debug("Graph not ready, change not scheduled.", "graph", g.Name, "nodeID", n.ID)
				return false
			}
			return s.enqueue(logger, n)
		}

		hg, ok := s.arena.GraphOf(host.ID)
		if !ok || hg.State != graph.Ready {
			return false
		}
		logger.Debug("Escalating change to host node.", "nodeID", n.ID, "host", host.ID)
		host.ValueUpdated.Emit(host)
		n = host
	}
	return false
}

// escalation returns the node a change inside g must be scheduled on
// instead, or nil when g schedules its own nodes. Top-level graphs and
// self-scheduling function scopes schedule themselves; hosted graphs and
// the custom functions nested in them escalate to the outermost host.
func (s *Scheduler) escalation(g *graph.Graph) *node.Node {
	if g.Flavor == graph.Function && g.SelfScheduling {
		return nil
	}
	cur := g
	for range len(s.arena.Graphs()) + 1 {
		if cur.HostNode != "" {
			return cur.TopNode()
		}
		if cur.ParentGraph == "" {
			return nil
		}
		parent, ok := s.arena.Graph(cur.ParentGraph)
		if !ok {
			return nil
		}
		cur = parent
	}
	return nil
}

func (s *Scheduler) enqueue(logger *slog.Logger, n *node.Node) bool {
	if _, ok := s.dirty[n.ID]; ok {
		return false
	}
	s.dirty[n.ID] = struct{}{}
	s.queue = append(s.queue, n.ID)
	s.metrics.Enqueued(len(s.queue))
	logger.Debug("Node scheduled.", "nodeID", n.ID, "queue", len(s.queue))
	return true
}

// Pending returns the ids of queued nodes in evaluation order.
func (s *Scheduler) Pending() []string {
	return append([]string(nil), s.queue...)
}

// Len returns the number of queued nodes.
func (s *Scheduler) Len() int { return len(s.queue) }

// HasDirty reports whether anything is queued.
func (s *Scheduler) HasDirty() bool { return len(s.queue) > 0 }

// Failures returns the number of failed evaluations since creation.
func (s *Scheduler) Failures() int { return s.failures }

// Clear drops every queued node.
func (s *Scheduler) Clear() {
	s.queue = nil
	s.dirty = make(map[string]struct{})
}

// Drain evaluates queued nodes in FIFO order until the queue is empty,
// including nodes scheduled while it runs. Evaluation errors are logged and
// counted; they never stop the drain. Only context cancellation does.
func (s *Scheduler) Drain(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()
	defer func() { s.metrics.Drained(time.Since(start).Seconds()) }()

	visits := make(map[string]int)
	for len(s.queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		id := s.queue[0]
		s.queue = s.queue[1:]
		delete(s.dirty, id)

		n, ok := s.arena.Node(id)
		if !ok {
			logger.Debug("Scheduled node no longer exists.", "nodeID", id)
			continue
		}
		visits[id]++
		if visits[id] > maxVisits {
			logger.Warn("Node keeps rescheduling itself, dropping it for this drain.", "nodeID", id, "visits", visits[id])
			continue
		}

		err := s.eval.Evaluate(ctx, n)
		s.metrics.Evaluated(err == nil, len(s.queue))
		if err != nil {
			s.failures++
			logger.Error("Node evaluation failed.", "nodeID", id, "type", n.Type, "error", err)
		}
	}
	return nil
}

// Run is the watch-mode driver loop. It executes tasks in arrival order on
// the calling goroutine, draining the queue after each one, until ctx is
// done or tasks is closed. Task errors are logged, not returned.
func (s *Scheduler) Run(ctx context.Context, tasks <-chan Task) error {
	logger := ctxlog.FromContext(ctx)
	if err := s.Drain(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case task, ok := <-tasks:
			if !ok {
				return nil
			}
			if err := task(ctx); err != nil {
				logger.Error("Scheduler task failed.", "error", err)
			}
			if err := s.Drain(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}
