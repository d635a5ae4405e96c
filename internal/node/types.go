package node

import "github.com/specialistvlad/texgraph/internal/port"

// ResolveBinary returns the result type of a binary arithmetic node whose
// operands carry a and b. Float with Float yields Float, Float mixed with a
// vector yields the vector, and two equal vectors yield that vector. Any
// other combination is unsupported.
func ResolveBinary(a, b port.Tag) (port.Tag, bool) {
	a, b = port.Resolve(a), port.Resolve(b)
	if a == 0 || b == 0 || a == port.Bool || b == port.Bool {
		return 0, false
	}
	if a.Intersects(port.Execute|port.Matrix) || b.Intersects(port.Execute|port.Matrix) {
		return 0, false
	}
	switch {
	case a == b:
		return a, true
	case a == port.Float:
		return b, true
	case b == port.Float:
		return a, true
	}
	return 0, false
}

// refType returns the resolved type feeding input i, or 0 when unconnected.
func (n *Node) refType(i int) port.Tag {
	in := n.Input(i)
	if in == nil || in.Reference() == nil {
		return 0
	}
	return port.Resolve(in.Reference().Type)
}

// UpdateOutputType narrows a polymorphic node's result output to the type
// implied by its connected inputs, or widens it back when they disconnect.
// Variable reads and calls are typed by their graph, not here.
func (n *Node) UpdateOutputType() {
	switch n.Kind.(type) {
	case *Arithmetic:
		out := n.Output(1)
		if t, ok := ResolveBinary(n.refType(1), n.refType(2)); ok {
			out.Type = t
		} else {
			out.Type = port.AnyFloat
		}
	case *Unary:
		if t := n.refType(1); t != 0 && t != port.Bool {
			n.Output(1).Type = t
		} else {
			n.Output(1).Type = port.AnyFloat
		}
	case *SetVar:
		if t := n.refType(1); t != 0 {
			n.Output(1).Type = t
		} else {
			n.Output(1).Type = port.AnyValue
		}
	case *IfElse:
		a, b := n.refType(2), n.refType(3)
		switch {
		case a != 0 && (a == b || b == 0):
			n.Output(1).Type = a
		case a == 0 && b != 0:
			n.Output(1).Type = b
		default:
			n.Output(1).Type = port.AnyValue
		}
	}
}

// ResultType returns the concrete type of the node's value result: the
// first non-Execute output, resolved.
func (n *Node) ResultType() port.Tag {
	out := n.DataOutput()
	if out == nil {
		return 0
	}
	return port.Resolve(out.Type)
}
