package node

import (
	"github.com/specialistvlad/texgraph/internal/nodeid"
	"github.com/specialistvlad/texgraph/internal/port"
)

// PixelFormat is the texture format a value-graph node renders into.
type PixelFormat int

const (
	RGBA PixelFormat = iota
	RGBA16F
	RGBA32F
	Gray8
	Gray16F
	Gray32F
)

// Node is a single unit of computation in a graph: an ordered set of input
// and output ports, a kind that carries its parameters, and the signals
// consumers subscribe to.
type Node struct {
	// ID is the unique identifier, normally a UUID.
	ID string
	// Name is the display name.
	Name string
	// Type is the registered type identifier, e.g. "MathNodes.AddNode".
	Type string
	// Graph is the id of the owning graph. It is set by graph.Add.
	Graph string

	Inputs  []*port.Input
	Outputs []*port.Output

	Width        int
	Height       int
	Format       PixelFormat
	AbsoluteSize bool

	// Kind holds the kind-specific parameters and selects behavior.
	Kind Kind

	ValueUpdated   Signal[*Node]
	NameChanged    Signal[*Node]
	TextureChanged Signal[*Node]

	props    []Property
	onChange func(*Node)
}

// New creates a node with a fresh identifier. Ports are attached by the
// kind constructors.
func New(typeID, name string, kind Kind, props []Property) *Node {
	return &Node{
		ID:    nodeid.New(),
		Name:  name,
		Type:  typeID,
		Kind:  kind,
		props: props,
	}
}

// ShaderID is the symbol prefix used for the node's results in generated
// source.
func (n *Node) ShaderID() string {
	return nodeid.ShaderID(n.ID)
}

// AddInput appends an input port and wires its change hook.
func (n *Node) AddInput(in *port.Input) *port.Input {
	in.Node = n.ID
	in.Index = len(n.Inputs)
	in.OnChange(n.inputChanged)
	n.Inputs = append(n.Inputs, in)
	return in
}

// AddOutput appends an output port.
func (n *Node) AddOutput(out *port.Output) *port.Output {
	out.Node = n.ID
	out.Index = len(n.Outputs)
	n.Outputs = append(n.Outputs, out)
	return out
}

// SetID replaces the identifier, re-stamping every port. It is only valid
// before the node is added to a graph.
func (n *Node) SetID(id string) {
	n.ID = id
	for _, in := range n.Inputs {
		in.Node = id
	}
	for _, out := range n.Outputs {
		out.Node = id
	}
}

// ResetInputs disconnects and drops every input from index keep onward.
func (n *Node) ResetInputs(keep int) {
	if keep > len(n.Inputs) {
		return
	}
	for _, in := range n.Inputs[keep:] {
		if ref := in.Reference(); ref != nil {
			port.Disconnect(ref, in)
		}
	}
	n.Inputs = n.Inputs[:keep]
}

// Input returns the input at index i, or nil when out of range.
func (n *Node) Input(i int) *port.Input {
	if i < 0 || i >= len(n.Inputs) {
		return nil
	}
	return n.Inputs[i]
}

// Output returns the output at index i, or nil when out of range.
func (n *Node) Output(i int) *port.Output {
	if i < 0 || i >= len(n.Outputs) {
		return nil
	}
	return n.Outputs[i]
}

// HasExecuteOutput reports whether the node takes part in control flow as a
// source. Nodes without one (constants, variable reads) are pure data.
func (n *Node) HasExecuteOutput() bool {
	for _, out := range n.Outputs {
		if out.Type == port.Execute {
			return true
		}
	}
	return false
}

// ExecuteInput returns the node's control-flow input, or nil.
func (n *Node) ExecuteInput() *port.Input {
	for _, in := range n.Inputs {
		if in.Type == port.Execute {
			return in
		}
	}
	return nil
}

// DataOutput returns the first non-Execute output, or nil.
func (n *Node) DataOutput() *port.Output {
	for _, out := range n.Outputs {
		if out.Type != port.Execute {
			return out
		}
	}
	return nil
}

// IsRoot reports whether n has no inputs or none of its inputs is connected.
func IsRoot(n *Node) bool {
	for _, in := range n.Inputs {
		if in.HasInput() {
			return false
		}
	}
	return true
}

// Bind installs the change hook called after ValueUpdated fires. Graphs use
// it to hand the node to the scheduler.
func (n *Node) Bind(fn func(*Node)) {
	n.onChange = fn
}

// TriggerValueChange fires ValueUpdated and then requests re-evaluation
// through the installed change hook.
func (n *Node) TriggerValueChange() {
	n.ValueUpdated.Emit(n)
	if n.onChange != nil {
		n.onChange(n)
	}
}

// SetName renames the node and fires NameChanged.
func (n *Node) SetName(name string) {
	n.Name = name
	n.NameChanged.Emit(n)
}

// SetSize resizes the node and triggers a value change.
func (n *Node) SetSize(w, h int) {
	n.Width = w
	n.Height = h
	n.TriggerValueChange()
}

// Dispose severs every connection of every port and drops the change hook.
func (n *Node) Dispose() {
	n.onChange = nil
	for _, in := range n.Inputs {
		in.DisconnectAll()
	}
	for _, out := range n.Outputs {
		out.DisconnectAll()
	}
}

func (n *Node) inputChanged(*port.Input) {
	n.UpdateOutputType()
	n.TriggerValueChange()
}
