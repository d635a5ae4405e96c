// Package linearize orders the nodes of a function graph for sequential
// source emission and CPU evaluation.
//
// The order follows Execute edges from the start of the control-flow chain
// and hoists pure data nodes (constants, variable reads) immediately before
// each consumer. Data nodes are never marked seen, so one that feeds several
// consumers appears once per consumer.
package linearize

import (
	"github.com/specialistvlad/texgraph/internal/graph"
	"github.com/specialistvlad/texgraph/internal/node"
	"github.com/specialistvlad/texgraph/internal/port"
)

// Order returns the evaluation order of g, or nil when g has no output node.
// The walk starts at the Execute node when there is one, else at the root
// of the Execute chain leading to the output node. The Execute node itself
// is not part of the result.
func Order(a *graph.Arena, g *graph.Graph) []*node.Node {
	if g.OutputNode == "" {
		return nil
	}
	out, ok := g.Node(g.OutputNode)
	if !ok {
		return nil
	}

	start := out
	if g.Execute != "" {
		if exec, ok := g.Node(g.Execute); ok {
			start = exec
		}
	}
	if start == out {
		start = chainRoot(a, g, out)
	}

	order := TravelBranch(a, g, start, make(map[string]bool))
	if g.Execute == "" {
		return order
	}
	filtered := order[:0]
	for _, n := range order {
		if n.ID != g.Execute {
			filtered = append(filtered, n)
		}
	}
	return filtered
}

// chainRoot follows connected Execute inputs backward from n and returns the
// first node without one.
func chainRoot(a *graph.Arena, g *graph.Graph, n *node.Node) *node.Node {
	cur := n
	for range g.Len() + 1 {
		in := cur.ExecuteInput()
		if in == nil || in.Reference() == nil {
			return cur
		}
		up, ok := a.Node(in.Reference().Node)
		if !ok {
			return cur
		}
		cur = up
	}
	return cur
}

// TravelBranch walks the control flow forward from start. For every node
// not yet in seen it appends the pure data nodes feeding it and then the
// node. Execute outputs with several destinations are walked depth first,
// each as its own branch; single destinations join the breadth-first queue.
// The walk does not continue past the graph's output node, and a ForLoop's
// body output is left to LoopBody.
func TravelBranch(a *graph.Arena, g *graph.Graph, start *node.Node, seen map[string]bool) []*node.Node {
	var forward []*node.Node
	queue := []*node.Node{start}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true

		for _, in := range n.Inputs {
			ref := in.Reference()
			if ref == nil {
				continue
			}
			up, ok := a.Node(ref.Node)
			if ok && !up.HasExecuteOutput() {
				forward = append(forward, up)
			}
		}
		forward = append(forward, n)

		if n.ID == g.OutputNode {
			continue
		}

		_, isLoop := n.Kind.(*node.ForLoop)
		for i, out := range n.Outputs {
			if isLoop && i == 0 {
				continue
			}
			if out.Type != port.Execute {
				continue
			}
			to := out.To()
			switch {
			case len(to) > 1:
				for _, dst := range to {
					if next, ok := a.Node(dst.Node); ok {
						forward = append(forward, TravelBranch(a, g, next, seen)...)
					}
				}
			case len(to) == 1:
				if next, ok := a.Node(to[0].Node); ok {
					queue = append(queue, next)
				}
			}
		}
	}
	return forward
}

// LoopBody returns the ordered body of a ForLoop: the branches hanging off
// its loop output.
func LoopBody(a *graph.Arena, g *graph.Graph, loop *node.Node) []*node.Node {
	body := loop.Output(0)
	if body == nil {
		return nil
	}
	seen := make(map[string]bool)
	var forward []*node.Node
	for _, dst := range body.To() {
		if next, ok := a.Node(dst.Node); ok {
			forward = append(forward, TravelBranch(a, g, next, seen)...)
		}
	}
	return forward
}
