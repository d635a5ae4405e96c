package graph

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/texgraph/internal/node"
	"github.com/specialistvlad/texgraph/internal/nodeid"
	"github.com/specialistvlad/texgraph/internal/port"
	"github.com/specialistvlad/texgraph/internal/registry"
)

var (
	// ErrDuplicateNode is returned when a node id is already owned by a graph.
	ErrDuplicateNode = errors.New("duplicate node id")
	// ErrNodeNotFound is returned when a node id is not owned by any graph.
	ErrNodeNotFound = errors.New("node not found")
	// ErrGraphNotFound is returned when a graph id is not registered.
	ErrGraphNotFound = errors.New("graph not found")
)

// Arena owns every graph and, through them, every node. Graphs and nodes
// refer upward (host node, parent graph, owning graph) by id and resolve the
// reference here.
type Arena struct {
	registry *registry.Registry
	logger   *slog.Logger

	graphs []*Graph
	byID   map[string]*Graph
	owner  map[string]string

	hook func(*node.Node)
}

// ArenaOption configures an Arena.
type ArenaOption func(*Arena)

// WithLogger sets the logger used for the log-and-skip paths of node
// creation and connection replay.
func WithLogger(l *slog.Logger) ArenaOption {
	return func(a *Arena) { a.logger = l }
}

// NewArena creates an empty arena building nodes from reg.
func NewArena(reg *registry.Registry, opts ...ArenaOption) *Arena {
	a := &Arena{
		registry: reg,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		byID:     make(map[string]*Graph),
		owner:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Registry returns the node registry.
func (a *Arena) Registry() *registry.Registry { return a.registry }

// Logger returns the arena logger.
func (a *Arena) Logger() *slog.Logger { return a.logger }

// SetChangeHook installs the function every node's TriggerValueChange ends
// in. The scheduler installs itself here.
func (a *Arena) SetChangeHook(fn func(*node.Node)) {
	a.hook = fn
}

func (a *Arena) changed(n *node.Node) {
	if a.hook != nil {
		a.hook(n)
	}
}

// NewGraph creates and registers a graph. Function graphs start with the
// builtin variables every shader scope declares.
func (a *Arena) NewGraph(name string, flavor Flavor, w, h int) *Graph {
	g := &Graph{
		ID:         nodeid.New(),
		Name:       name,
		Flavor:     flavor,
		Width:      w,
		Height:     h,
		State:      Ready,
		Zoom:       1,
		arena:      a,
		lookup:     make(map[string]*node.Node),
		params:     make(map[string]*Parameter),
		vars:       make(map[string]*Var),
		originSize: make(map[string][2]int),
		unsub:      make(map[string]func()),
	}
	if flavor == Function {
		g.ExpectedOutput = port.Float4
		g.initBuiltinVars()
	}
	a.graphs = append(a.graphs, g)
	a.byID[g.ID] = g
	return g
}

// rekey replaces a freshly created graph's id, as loaders do to keep the
// ids call nodes refer to.
func (a *Arena) rekey(g *Graph, id string) error {
	if id == g.ID {
		return nil
	}
	if _, exists := a.byID[id]; exists {
		return fmt.Errorf("graph id %s already registered", id)
	}
	delete(a.byID, g.ID)
	g.ID = id
	a.byID[id] = g
	return nil
}

// Graph resolves a graph id.
func (a *Arena) Graph(id string) (*Graph, bool) {
	g, ok := a.byID[id]
	return g, ok
}

// Graphs returns every graph in creation order.
func (a *Arena) Graphs() []*Graph {
	return a.graphs
}

// Node resolves a node id through its owning graph.
func (a *Arena) Node(id string) (*node.Node, bool) {
	g, ok := a.GraphOf(id)
	if !ok {
		return nil, false
	}
	return g.Node(id)
}

// GraphOf returns the graph owning node id.
func (a *Arena) GraphOf(id string) (*Graph, bool) {
	gid, ok := a.owner[id]
	if !ok {
		return nil, false
	}
	return a.Graph(gid)
}

// FindByName returns the first graph with the given name.
func (a *Arena) FindByName(name string) (*Graph, bool) {
	for _, g := range a.graphs {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}

// RemoveGraph disposes every node of graph id and unregisters it.
func (a *Arena) RemoveGraph(id string) {
	g, ok := a.byID[id]
	if !ok {
		return
	}
	for _, n := range append([]*node.Node(nil), g.nodes...) {
		g.Remove(n)
	}
	delete(a.byID, id)
	for i, other := range a.graphs {
		if other == g {
			a.graphs = append(a.graphs[:i], a.graphs[i+1:]...)
			break
		}
	}
}

// RemoveTree removes graph id together with every function graph it owns,
// directly or through nested hosts and custom functions.
func (a *Arena) RemoveTree(id string) {
	g, ok := a.byID[id]
	if !ok {
		return
	}
	var owned []string
	for _, other := range a.graphs {
		if other == g {
			continue
		}
		if other.ParentGraph == id {
			owned = append(owned, other.ID)
			continue
		}
		if other.HostNode != "" {
			if _, hosted := g.lookup[other.HostNode]; hosted {
				owned = append(owned, other.ID)
			}
		}
	}
	a.RemoveGraph(id)
	for _, child := range owned {
		a.RemoveTree(child)
	}
}
