package graph

import (
	"strings"

	"github.com/specialistvlad/texgraph/internal/node"
	"github.com/specialistvlad/texgraph/internal/port"
	"github.com/specialistvlad/texgraph/internal/registry"
)

// Flavor distinguishes texture-producing value graphs from function graphs
// that compile to shader code.
type Flavor int

const (
	Value Flavor = iota
	Function
)

func (f Flavor) String() string {
	if f == Function {
		return "function"
	}
	return "value"
}

// State gates scheduling: nodes of a Loading graph are never enqueued.
type State int

const (
	Loading State = iota
	Ready
)

// Size limits applied by ResizeWith.
const (
	MinSize     = 8
	MaxSize     = 4096
	DefaultSize = 256
)

// Graph is an ordered collection of nodes plus the scope they evaluate in.
// Graphs are created by an Arena and must not be copied.
type Graph struct {
	ID     string
	Name   string
	Flavor Flavor
	Width  int
	Height int
	Format node.PixelFormat
	State  State
	// AbsoluteSize pins node sizes: ResizeWith leaves them untouched.
	AbsoluteSize bool

	RandomSeed float32
	Version    int

	ShiftX, ShiftY, Zoom float32

	OutputNodes []string
	InputNodes  []string

	// HostNode is the id of the node that runs this graph, if any.
	HostNode string
	// ParentGraph is the id of the graph this one is a custom function of.
	ParentGraph string
	// CustomFunctions lists the ids of function graphs owned by this graph.
	CustomFunctions []string

	// Function-flavor fields.
	OutputNode     string
	ExpectedOutput port.Tag
	Execute        string
	Args           []string
	Calls          []string
	// SelfScheduling marks a function scope that schedules its own nodes
	// even though it has a host.
	SelfScheduling bool
	// Result is the output node's value after the last CPU run.
	Result any

	// Updated re-emits ValueUpdated of every member node.
	Updated node.Signal[*node.Node]

	arena      *Arena
	nodes      []*node.Node
	lookup     map[string]*node.Node
	params     map[string]*Parameter
	paramOrder []string
	custom     []*Parameter
	vars       map[string]*Var
	originSize map[string][2]int
	unsub      map[string]func()
}

// Arena returns the owning arena.
func (g *Graph) Arena() *Arena { return g.arena }

// Nodes returns the nodes in insertion order. The slice must not be
// modified by callers.
func (g *Graph) Nodes() []*node.Node { return g.nodes }

// Lookup returns the id index of the graph's nodes.
func (g *Graph) Lookup() map[string]*node.Node { return g.lookup }

// Node returns the member node with the given id.
func (g *Graph) Node(id string) (*node.Node, bool) {
	n, ok := g.lookup[id]
	return n, ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Add makes n a member of the graph. It fails on a duplicate id, and
// function graphs reject a second Execute node.
func (g *Graph) Add(n *node.Node) bool {
	if n == nil {
		return false
	}
	if _, exists := g.lookup[n.ID]; exists {
		g.arena.logger.Warn("Node id already present in graph.", "graph", g.Name, "node", n.ID, "error", ErrDuplicateNode)
		return false
	}
	if other, ok := g.arena.GraphOf(n.ID); ok {
		if existing, _ := other.Node(n.ID); existing != n {
			g.arena.logger.Warn("Node id already owned by another graph.", "graph", g.Name, "owner", other.Name, "node", n.ID, "error", ErrDuplicateNode)
			return false
		}
		other.Remove(n)
	}

	switch k := n.Kind.(type) {
	case *node.Execute:
		if g.Flavor == Function {
			if g.Execute != "" {
				g.arena.logger.Warn("Function graph already has an execute node.", "graph", g.Name, "node", n.ID)
				return false
			}
			g.Execute = n.ID
		}
	case *node.Arg:
		g.Args = append(g.Args, n.ID)
		if k.Name != "" {
			g.SetVar(k.Name, node.Zero(k.Type), k.Type)
		}
	case *node.Call:
		g.Calls = append(g.Calls, n.ID)
	case *node.Boundary:
		if k.Output {
			g.OutputNodes = append(g.OutputNodes, n.ID)
		} else {
			g.InputNodes = append(g.InputNodes, n.ID)
		}
	}

	n.Graph = g.ID
	g.nodes = append(g.nodes, n)
	g.lookup[n.ID] = n
	g.arena.owner[n.ID] = g.ID
	g.originSize[n.ID] = [2]int{n.Width, n.Height}
	g.unsub[n.ID] = n.ValueUpdated.Subscribe(func(changed *node.Node) {
		g.Updated.Emit(changed)
	})
	n.Bind(g.arena.changed)
	return true
}

// Remove unindexes n, unsubscribes it and disposes its connections.
func (g *Graph) Remove(n *node.Node) {
	if _, ok := g.lookup[n.ID]; !ok {
		return
	}
	g.OutputNodes = removeID(g.OutputNodes, n.ID)
	g.InputNodes = removeID(g.InputNodes, n.ID)
	g.Args = removeID(g.Args, n.ID)
	g.Calls = removeID(g.Calls, n.ID)
	if g.Execute == n.ID {
		g.Execute = ""
	}
	if g.OutputNode == n.ID {
		g.OutputNode = ""
	}
	if off, ok := g.unsub[n.ID]; ok {
		off()
		delete(g.unsub, n.ID)
	}
	for i, m := range g.nodes {
		if m == n {
			g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
			break
		}
	}
	delete(g.lookup, n.ID)
	delete(g.originSize, n.ID)
	delete(g.arena.owner, n.ID)
	n.Graph = ""
	n.Dispose()
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// CreateNode builds a node of the registered type without adding it.
// Boundary and item kinds take no size; everything else is sized to the
// graph. Unknown types, and non-math types in a function graph, are logged
// and yield nil.
func (g *Graph) CreateNode(typeID string) *node.Node {
	logger := g.arena.logger
	entry, ok := g.arena.registry.Lookup(typeID)
	if !ok {
		logger.Warn("Unknown node type.", "graph", g.Name, "type", typeID)
		return nil
	}
	if g.Flavor == Function && entry.Category != registry.CategoryMath && entry.Category != registry.CategoryItem {
		logger.Warn("Node type not allowed in a function graph.", "graph", g.Name, "type", typeID, "category", entry.Category)
		return nil
	}
	w, h := g.Width, g.Height
	if entry.Category == registry.CategoryBoundary || entry.Category == registry.CategoryItem {
		w, h = 0, 0
	}
	n, err := entry.New(w, h, g.Format)
	if err != nil {
		logger.Error("Failed to create node.", "graph", g.Name, "type", typeID, "error", err)
		return nil
	}
	return n
}

// Roots returns the nodes with no connected input, in insertion order.
func (g *Graph) Roots() []*node.Node {
	var roots []*node.Node
	for _, n := range g.nodes {
		if node.IsRoot(n) {
			roots = append(roots, n)
		}
	}
	return roots
}

// ResizeWith scales every sizable node proportionally to a new graph size,
// measured against the size each node had when it was added. Results are
// clamped to MinSize..MaxSize. Absolute-size nodes, boundaries and items
// keep their size, and function graphs ignore the call. No notification is
// fired.
func (g *Graph) ResizeWith(w, h int) {
	if g.AbsoluteSize || g.Flavor == Function || g.Width <= 0 || g.Height <= 0 {
		return
	}
	wp := float64(w) / float64(g.Width)
	hp := float64(h) / float64(g.Height)
	for _, n := range g.nodes {
		switch n.Kind.(type) {
		case *node.Item, *node.Boundary:
			continue
		}
		if n.AbsoluteSize {
			continue
		}
		origin, ok := g.originSize[n.ID]
		if !ok {
			continue
		}
		n.Width = clampSize(float64(origin[0]) * wp)
		n.Height = clampSize(float64(origin[1]) * hp)
	}
}

func clampSize(v float64) int {
	s := int(v + 0.5)
	return min(max(s, MinSize), MaxSize)
}

// TopGraph follows host-node and parent-graph links to the outermost graph.
func (g *Graph) TopGraph() *Graph {
	cur := g
	for range len(g.arena.graphs) + 1 {
		next := cur.up()
		if next == nil {
			return cur
		}
		cur = next
	}
	return cur
}

// up returns the graph enclosing g: the host node's graph, else the parent
// graph, else nil.
func (g *Graph) up() *Graph {
	if g.HostNode != "" {
		if hg, ok := g.arena.GraphOf(g.HostNode); ok {
			return hg
		}
	}
	if g.ParentGraph != "" {
		if pg, ok := g.arena.Graph(g.ParentGraph); ok {
			return pg
		}
	}
	return nil
}

// TopNode returns the outermost host node reached through nested host
// links, or nil when the graph is not hosted.
func (g *Graph) TopNode() *node.Node {
	var top *node.Node
	cur := g
	for range len(g.arena.graphs) + 1 {
		if cur.HostNode == "" {
			return top
		}
		host, ok := g.arena.Node(cur.HostNode)
		if !ok {
			return top
		}
		top = host
		hg, ok := g.arena.GraphOf(host.ID)
		if !ok {
			return top
		}
		cur = hg
	}
	return top
}

// AttachTo makes the graph the function hosted by node hostID, detaching it
// from any previous host or parent graph.
func (g *Graph) AttachTo(hostID string) error {
	host, ok := g.arena.Node(hostID)
	if !ok {
		return ErrNodeNotFound
	}
	g.detach()
	g.HostNode = hostID
	if op, ok := host.Kind.(*node.Operator); ok {
		op.Function = g.ID
	}
	return nil
}

// AttachToGraph makes the graph a custom function of graph parentID.
func (g *Graph) AttachToGraph(parentID string) error {
	parent, ok := g.arena.Graph(parentID)
	if !ok {
		return ErrGraphNotFound
	}
	g.detach()
	g.ParentGraph = parentID
	parent.CustomFunctions = append(parent.CustomFunctions, g.ID)
	return nil
}

func (g *Graph) detach() {
	if g.HostNode != "" {
		if host, ok := g.arena.Node(g.HostNode); ok {
			if op, ok := host.Kind.(*node.Operator); ok && op.Function == g.ID {
				op.Function = ""
			}
		}
		g.HostNode = ""
	}
	if g.ParentGraph != "" {
		if parent, ok := g.arena.Graph(g.ParentGraph); ok {
			parent.CustomFunctions = removeID(parent.CustomFunctions, g.ID)
		}
		g.ParentGraph = ""
	}
}

// SetOutputNode selects the node whose result the function returns.
func (g *Graph) SetOutputNode(id string) error {
	if id == "" {
		g.OutputNode = ""
		return nil
	}
	if _, ok := g.lookup[id]; !ok {
		return ErrNodeNotFound
	}
	g.OutputNode = id
	return nil
}

// OutputType returns the resolved type of the output node's first data
// output, or 0 when there is none.
func (g *Graph) OutputType() port.Tag {
	return port.Resolve(g.outputTag())
}

// outputTag returns the unresolved tag of the output node's first data
// output. Variable reads report the variable's type.
func (g *Graph) outputTag() port.Tag {
	if g.OutputNode == "" {
		return 0
	}
	n, ok := g.lookup[g.OutputNode]
	if !ok {
		return 0
	}
	if gv, ok := n.Kind.(*node.GetVar); ok {
		if t, ok := g.VarType(gv.Var); ok {
			return t
		}
	}
	out := n.DataOutput()
	if out == nil {
		return 0
	}
	return out.Type
}

// HasExpectedOutput reports whether the output node's type intersects the
// graph's ExpectedOutput.
func (g *Graph) HasExpectedOutput() bool {
	return g.ExpectedOutput.Intersects(g.outputTag())
}

// FunctionName is the identifier the graph compiles to: the name with
// spaces removed and dashes replaced by underscores.
func (g *Graph) FunctionName() string {
	return strings.ReplaceAll(strings.ReplaceAll(g.Name, " ", ""), "-", "_")
}

// BindCall points a call node at function graph targetID and rebuilds its
// argument inputs, one per Arg of the target. Existing upstream links are
// restored by index where the types still intersect.
func (g *Graph) BindCall(callID, targetID string) error {
	n, ok := g.lookup[callID]
	if !ok {
		return ErrNodeNotFound
	}
	call, ok := n.Kind.(*node.Call)
	if !ok {
		return ErrNodeNotFound
	}
	target, ok := g.arena.Graph(targetID)
	if !ok {
		return ErrGraphNotFound
	}

	prior := make([]*port.Output, len(n.Inputs))
	for i, in := range n.Inputs {
		prior[i] = in.Reference()
	}
	n.ResetInputs(1)

	for _, argID := range target.Args {
		argNode, ok := target.lookup[argID]
		if !ok {
			continue
		}
		arg := argNode.Kind.(*node.Arg)
		in := n.AddInput(port.NewInput(arg.Type, arg.Name))
		if in.Index < len(prior) && prior[in.Index] != nil {
			port.ConnectSilent(prior[in.Index], in)
		}
	}

	call.Function = targetID
	if t := target.OutputType(); t != 0 {
		n.Output(1).Type = t
	}
	return nil
}

// CallTarget resolves the function graph a call node invokes.
func (g *Graph) CallTarget(n *node.Node) (*Graph, bool) {
	call, ok := n.Kind.(*node.Call)
	if !ok || call.Function == "" {
		return nil, false
	}
	return g.arena.Graph(call.Function)
}

// refreshCallTypes narrows each call's result to its target's output type.
func (g *Graph) refreshCallTypes() {
	changed := false
	for _, id := range g.Calls {
		n, ok := g.lookup[id]
		if !ok {
			continue
		}
		target, ok := g.CallTarget(n)
		if !ok {
			continue
		}
		if t := target.OutputType(); t != 0 && n.Output(1).Type != t {
			n.Output(1).Type = t
			changed = true
		}
	}
	if changed {
		g.RefreshOutputTypes()
	}
}
