// Package scheduler decides which node must be re-evaluated after a change
// and drives those evaluations.
//
// # Why Scheduler Exists
//
// A change deep inside a nested function graph cannot be evaluated where it
// happens: a function hosted by a pixel processor only produces output when
// the processor re-renders. The scheduler turns every change notification
// into one work item for the outermost node that can actually be evaluated,
// and keeps those items in a deduplicated FIFO until a driver drains them.
//
// # How It Works
//
//  1. The node fires ValueUpdated and calls the arena change hook.
//  2. The hook lands in NotifyChanged. If the node's graph is top level, or
//     a self-scheduling function scope, the node itself is enqueued.
//  3. Otherwise the host-node links are walked up to the outermost host and
//     that node is treated as changed instead.
//  4. Nothing is enqueued while the relevant graph is still Loading.
//  5. Drain pops nodes in order and hands each to the Evaluator.
//
// # Thread-Safety
//
// The scheduler, like the graphs it watches, is single-threaded. Run owns
// the driver goroutine in watch mode; every mutation is submitted to it as
// a Task so that graphs are only touched from that goroutine.
package scheduler

import (
	"context"

	"github.com/specialistvlad/texgraph/internal/node"
)

// Evaluator re-evaluates one scheduled node.
type Evaluator interface {
	Evaluate(ctx context.Context, n *node.Node) error
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, n *node.Node) error

// Evaluate calls f(ctx, n).
func (f EvaluatorFunc) Evaluate(ctx context.Context, n *node.Node) error {
	return f(ctx, n)
}

// Task is a unit of work Run executes on the driver goroutine before
// draining, typically a document reload.
type Task func(ctx context.Context) error
