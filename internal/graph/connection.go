package graph

import (
	"github.com/specialistvlad/texgraph/internal/node"
	"github.com/specialistvlad/texgraph/internal/port"
)

// Connection is a persisted link: output OutIndex of node Parent feeds
// input Index of node Node, at position Order of the output's destination
// list.
type Connection struct {
	Parent   string `json:"parent"`
	Node     string `json:"node"`
	Index    int    `json:"index"`
	OutIndex int    `json:"outIndex"`
	Order    int    `json:"order"`
}

// Connections captures every link whose source is a member of the graph,
// in node then output then destination order.
func (g *Graph) Connections() []Connection {
	var out []Connection
	for _, n := range g.nodes {
		for _, o := range n.Outputs {
			for order, in := range o.To() {
				out = append(out, Connection{
					Parent:   n.ID,
					Node:     in.Node,
					Index:    in.Index,
					OutIndex: o.Index,
					Order:    order,
				})
			}
		}
	}
	return out
}

// SetConnections replays records against lookup (the graph's own index when
// nil). A record naming a missing node, an out-of-range port or
// incompatible tags is logged and skipped; the rest still apply. It returns
// the number of links made.
func (g *Graph) SetConnections(lookup map[string]*node.Node, records []Connection, silent bool) int {
	if lookup == nil {
		lookup = g.lookup
	}
	logger := g.arena.logger
	applied := 0
	for _, rec := range records {
		parent, ok := lookup[rec.Parent]
		if !ok {
			logger.Warn("Could not restore a node connection: source missing.", "graph", g.Name, "parent", rec.Parent, "node", rec.Node)
			continue
		}
		dst, ok := lookup[rec.Node]
		if !ok {
			logger.Warn("Could not restore a node connection: destination missing.", "graph", g.Name, "parent", rec.Parent, "node", rec.Node)
			continue
		}
		in := dst.Input(rec.Index)
		out := parent.Output(rec.OutIndex)
		if in == nil || out == nil {
			logger.Warn("Could not restore a node connection: port index out of range.",
				"graph", g.Name, "parent", parent.Name, "node", dst.Name, "index", rec.Index, "outIndex", rec.OutIndex)
			continue
		}
		if !port.InsertAt(out, rec.Order, in, silent) {
			logger.Warn("Could not restore a node connection: incompatible types.",
				"graph", g.Name, "from", out.Type, "to", in.Type)
			continue
		}
		applied++
	}
	if silent {
		g.RefreshOutputTypes()
	}
	return applied
}

// RefreshOutputTypes recomputes polymorphic output types until they settle.
// Silent replay skips the per-connection recomputation, so loaders call
// this once all links are in place.
func (g *Graph) RefreshOutputTypes() {
	for range len(g.nodes) + 1 {
		changed := false
		for _, n := range g.nodes {
			before := make([]port.Tag, len(n.Outputs))
			for i, o := range n.Outputs {
				before[i] = o.Type
			}
			n.UpdateOutputType()
			for i, o := range n.Outputs {
				if o.Type != before[i] {
					changed = true
				}
			}
		}
		if !changed {
			return
		}
	}
}
