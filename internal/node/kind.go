package node

import "github.com/specialistvlad/texgraph/internal/port"

// Kind is the closed set of node kinds. Behavior is selected by type switch
// over the concrete kinds declared in this file; no other package can add
// one.
type Kind interface {
	isKind()
}

// FloatConstant emits a float literal.
type FloatConstant struct {
	Value float32
}

// VectorConstant emits a vec2, vec3 or vec4 literal.
type VectorConstant struct {
	Size  int
	Value Vec
}

// BoolConstant emits a boolean, encoded as 1.0 or 0.0 in shader source.
type BoolConstant struct {
	Value bool
}

// ArithOp selects the binary operation of an Arithmetic node.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpMin
	OpMax
)

// Symbol returns the infix operator, or "" for operations emitted as
// function calls.
func (op ArithOp) Symbol() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	}
	return ""
}

// Func returns the GLSL builtin for operations emitted as calls.
func (op ArithOp) Func() string {
	switch op {
	case OpMin:
		return "min"
	case OpMax:
		return "max"
	}
	return ""
}

// Arithmetic combines two "any float" inputs.
type Arithmetic struct {
	Op ArithOp
}

// UnaryOp selects the function of a Unary node.
type UnaryOp int

const (
	OpNegate UnaryOp = iota
	OpAbsolute
	OpFloor
	OpCeil
	OpFract
	OpSine
	OpCosine
	OpNormalize
)

// Func returns the GLSL builtin name; negation is emitted as a prefix.
func (op UnaryOp) Func() string {
	switch op {
	case OpAbsolute:
		return "abs"
	case OpFloor:
		return "floor"
	case OpCeil:
		return "ceil"
	case OpFract:
		return "fract"
	case OpSine:
		return "sin"
	case OpCosine:
		return "cos"
	case OpNormalize:
		return "normalize"
	}
	return ""
}

// Unary applies a builtin to one "any float" input.
type Unary struct {
	Op UnaryOp
}

// Random hashes its input with the graph's random seed.
type Random struct{}

// GetVar reads a scope variable.
type GetVar struct {
	Var string
}

// SetVar writes a scope variable and passes the value through.
type SetVar struct {
	Var string
}

// Arg declares a parameter of the function graph that owns it.
type Arg struct {
	Name string
	Type port.Tag
}

// Call invokes another function graph, addressed by graph id.
type Call struct {
	Function string
}

// ForLoop repeats the chain hanging off its body output.
type ForLoop struct{}

// IfElse selects between two values by a boolean input.
type IfElse struct{}

// Execute is the explicit entry point of a function graph's control flow.
type Execute struct{}

// Boundary marks a graph's external input or output.
type Boundary struct {
	Output bool
}

// Item is a structural editor node (comment or pin) with no ports.
type Item struct {
	Pin  bool
	Text string
}

// Operator is an image operator evaluated by an external processor. An
// operator with a non-empty Function hosts that function graph.
type Operator struct {
	Op       string
	Params   map[string]any
	Function string
}

func (*FloatConstant) isKind()  {}
func (*VectorConstant) isKind() {}
func (*BoolConstant) isKind()   {}
func (*Arithmetic) isKind()     {}
func (*Unary) isKind()          {}
func (*Random) isKind()         {}
func (*GetVar) isKind()         {}
func (*SetVar) isKind()         {}
func (*Arg) isKind()            {}
func (*Call) isKind()           {}
func (*ForLoop) isKind()        {}
func (*IfElse) isKind()         {}
func (*Execute) isKind()        {}
func (*Boundary) isKind()       {}
func (*Item) isKind()           {}
func (*Operator) isKind()       {}

// IsValueOnly reports whether the node kind produces its result on output 0
// because it has no leading Execute output.
func IsValueOnly(n *Node) bool {
	switch n.Kind.(type) {
	case *FloatConstant, *VectorConstant, *BoolConstant, *GetVar:
		return true
	}
	return false
}
