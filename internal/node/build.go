package node

import (
	"fmt"

	"github.com/specialistvlad/texgraph/internal/port"
)

// Registered type identifiers. Documents refer to nodes by these names.
const (
	TypeFloatConstant  = "MathNodes.FloatConstantNode"
	TypeFloat2Constant = "MathNodes.Float2ConstantNode"
	TypeFloat3Constant = "MathNodes.Float3ConstantNode"
	TypeFloat4Constant = "MathNodes.Float4ConstantNode"
	TypeBoolConstant   = "MathNodes.BooleanConstantNode"

	TypeAdd      = "MathNodes.AddNode"
	TypeSubtract = "MathNodes.SubtractNode"
	TypeMultiply = "MathNodes.MultiplyNode"
	TypeDivide   = "MathNodes.DivideNode"
	TypeMin      = "MathNodes.MinNode"
	TypeMax      = "MathNodes.MaxNode"

	TypeNegate    = "MathNodes.NegateNode"
	TypeAbsolute  = "MathNodes.AbsoluteNode"
	TypeFloor     = "MathNodes.FloorNode"
	TypeCeil      = "MathNodes.CeilNode"
	TypeFract     = "MathNodes.FractNode"
	TypeSine      = "MathNodes.SineNode"
	TypeCosine    = "MathNodes.CosineNode"
	TypeNormalize = "MathNodes.NormalizeNode"

	TypeRandom  = "MathNodes.RandomNode"
	TypeGetVar  = "MathNodes.GetVarNode"
	TypeSetVar  = "MathNodes.SetVarNode"
	TypeArg     = "MathNodes.ArgNode"
	TypeCall    = "MathNodes.CallNode"
	TypeForLoop = "MathNodes.ForLoopNode"
	TypeIfElse  = "MathNodes.IfElseNode"
	TypeExecute = "MathNodes.ExecuteNode"

	TypeInput   = "Boundary.InputNode"
	TypeOutput  = "Boundary.OutputNode"
	TypeComment = "Items.CommentNode"
	TypePin     = "Items.PinNode"

	TypePixelProcessor = "Imaging.PixelProcessor"
)

// OpPixelProcessor is the operator whose output is produced by a hosted
// function graph rather than a registered processor.
const OpPixelProcessor = "pixelprocessor"

// ArithmeticTypes maps each arithmetic operation to its type identifier.
var ArithmeticTypes = map[ArithOp]string{
	OpAdd:      TypeAdd,
	OpSubtract: TypeSubtract,
	OpMultiply: TypeMultiply,
	OpDivide:   TypeDivide,
	OpMin:      TypeMin,
	OpMax:      TypeMax,
}

// UnaryTypes maps each unary operation to its type identifier.
var UnaryTypes = map[UnaryOp]string{
	OpNegate:    TypeNegate,
	OpAbsolute:  TypeAbsolute,
	OpFloor:     TypeFloor,
	OpCeil:      TypeCeil,
	OpFract:     TypeFract,
	OpSine:      TypeSine,
	OpCosine:    TypeCosine,
	OpNormalize: TypeNormalize,
}

// mathNode creates a node with the control-flow pair every executable math
// node carries: input 0 and output 0 are Execute.
func mathNode(typeID, name string, kind Kind, props []Property) *Node {
	n := New(typeID, name, kind, props)
	n.AddInput(port.NewInput(port.Execute, "Execute"))
	n.AddOutput(port.NewOutput(port.Execute, "Execute"))
	return n
}

// NewFloatConstant builds a float literal node.
func NewFloatConstant(v float32) *Node {
	k := &FloatConstant{Value: v}
	props := []Property{
		floatProp("Value", true, func(n *Node) *float32 { return &n.Kind.(*FloatConstant).Value }),
	}
	n := New(TypeFloatConstant, "Float Constant", k, props)
	n.AddOutput(port.NewOutput(port.Float, "Float"))
	return n
}

// NewVectorConstant builds a vec2, vec3 or vec4 literal node.
func NewVectorConstant(size int, v Vec) (*Node, error) {
	var typeID string
	var tag port.Tag
	switch size {
	case 2:
		typeID, tag = TypeFloat2Constant, port.Float2
	case 3:
		typeID, tag = TypeFloat3Constant, port.Float3
	case 4:
		typeID, tag = TypeFloat4Constant, port.Float4
	default:
		return nil, fmt.Errorf("vector constant size must be 2, 3 or 4, got %d", size)
	}
	k := &VectorConstant{Size: size, Value: v}
	props := []Property{{
		Name:          "Vector",
		Type:          tag,
		ShaderVisible: true,
		Get:           func(n *Node) any { return n.Kind.(*VectorConstant).Value },
		Set: func(n *Node, v any) error {
			vec, ok := ToVec(v)
			if !ok {
				return fmt.Errorf("expected a vector, got %T", v)
			}
			n.Kind.(*VectorConstant).Value = vec
			return nil
		},
	}}
	n := New(typeID, fmt.Sprintf("Float%d Constant", size), k, props)
	n.AddOutput(port.NewOutput(tag, fmt.Sprintf("Float%d", size)))
	return n, nil
}

// NewBoolConstant builds a boolean literal node.
func NewBoolConstant(v bool) *Node {
	k := &BoolConstant{Value: v}
	props := []Property{{
		Name:          "Value",
		Type:          port.Bool,
		ShaderVisible: true,
		Get:           func(n *Node) any { return n.Kind.(*BoolConstant).Value },
		Set: func(n *Node, v any) error {
			b, ok := ToBool(v)
			if !ok {
				return fmt.Errorf("expected a bool, got %T", v)
			}
			n.Kind.(*BoolConstant).Value = b
			return nil
		},
	}}
	n := New(TypeBoolConstant, "Boolean Constant", k, props)
	n.AddOutput(port.NewOutput(port.Bool, "Bool"))
	return n
}

// NewArithmetic builds a binary math node over "any float" operands.
func NewArithmetic(op ArithOp) *Node {
	typeID, ok := ArithmeticTypes[op]
	if !ok {
		typeID = TypeAdd
		op = OpAdd
	}
	n := mathNode(typeID, typeID[len("MathNodes."):len(typeID)-len("Node")], &Arithmetic{Op: op}, nil)
	n.AddInput(port.NewInput(port.AnyFloat, "A"))
	n.AddInput(port.NewInput(port.AnyFloat, "B"))
	n.AddOutput(port.NewOutput(port.AnyFloat, "Result"))
	return n
}

// NewUnary builds a single-operand math node.
func NewUnary(op UnaryOp) *Node {
	typeID, ok := UnaryTypes[op]
	if !ok {
		typeID = TypeNegate
		op = OpNegate
	}
	n := mathNode(typeID, typeID[len("MathNodes."):len(typeID)-len("Node")], &Unary{Op: op}, nil)
	n.AddInput(port.NewInput(port.AnyFloat, "X"))
	n.AddOutput(port.NewOutput(port.AnyFloat, "Result"))
	return n
}

// NewRandom builds a hash-noise node taking a float or vec2 seed input.
func NewRandom() *Node {
	n := mathNode(TypeRandom, "Random", &Random{}, nil)
	n.AddInput(port.NewInput(port.Float|port.Float2, "Seed"))
	n.AddOutput(port.NewOutput(port.Float, "Float"))
	return n
}

// NewGetVar builds a variable read. Its output type follows the variable.
func NewGetVar(name string) *Node {
	k := &GetVar{Var: name}
	props := []Property{
		textProp("VarName", "Var", func(n *Node) *string { return &n.Kind.(*GetVar).Var }),
	}
	n := New(TypeGetVar, "Get Var", k, props)
	n.AddOutput(port.NewOutput(port.AnyValue, "Value"))
	return n
}

// NewSetVar builds a variable write that passes its value through.
func NewSetVar(name string) *Node {
	k := &SetVar{Var: name}
	props := []Property{
		textProp("VarName", "Var", func(n *Node) *string { return &n.Kind.(*SetVar).Var }),
	}
	n := mathNode(TypeSetVar, "Set Var", k, props)
	n.AddInput(port.NewInput(port.AnyValue, "Value"))
	n.AddOutput(port.NewOutput(port.AnyValue, "Value"))
	return n
}

// NewArg builds a function parameter declaration. It has no ports.
func NewArg(name string, t port.Tag) *Node {
	k := &Arg{Name: name, Type: t}
	props := []Property{
		textProp("InputName", "Name", func(n *Node) *string { return &n.Kind.(*Arg).Name }),
		{
			Name:    "InputType",
			Display: "Type",
			Get:     func(n *Node) any { return n.Kind.(*Arg).Type.String() },
			Set: func(n *Node, v any) error {
				var tag port.Tag
				switch x := v.(type) {
				case port.Tag:
					tag = x
				case string:
					parsed, err := port.ParseTag(x)
					if err != nil {
						return err
					}
					tag = parsed
				default:
					return fmt.Errorf("expected a type tag, got %T", v)
				}
				if _, ok := port.GLSLType(tag); !ok {
					return fmt.Errorf("argument type %s has no shader representation", tag)
				}
				n.Kind.(*Arg).Type = tag
				return nil
			},
		},
	}
	return New(TypeArg, "Arg", k, props)
}

// NewCall builds a function invocation. Argument inputs are added when the
// call is bound to its target graph.
func NewCall(function string) *Node {
	k := &Call{Function: function}
	props := []Property{
		textProp("Function", "", func(n *Node) *string { return &n.Kind.(*Call).Function }),
	}
	n := mathNode(TypeCall, "Call", k, props)
	n.AddOutput(port.NewOutput(port.AnyFloat|port.Bool, "Result"))
	return n
}

// NewForLoop builds a counted loop. Output 0 starts the body, output 1 is
// the current counter and output 2 continues after the loop.
func NewForLoop() *Node {
	n := New(TypeForLoop, "For Loop", &ForLoop{}, nil)
	n.AddInput(port.NewInput(port.Execute, "Execute"))
	n.AddInput(port.NewInput(port.Float, "Start"))
	n.AddInput(port.NewInput(port.Float, "End"))
	n.AddInput(port.NewInput(port.Float, "Increment"))
	n.AddOutput(port.NewOutput(port.Execute, "Loop"))
	n.AddOutput(port.NewOutput(port.Float, "Current"))
	n.AddOutput(port.NewOutput(port.Execute, "Done"))
	return n
}

// NewIfElse builds a conditional select.
func NewIfElse() *Node {
	n := mathNode(TypeIfElse, "If Else", &IfElse{}, nil)
	n.AddInput(port.NewInput(port.Bool, "Condition"))
	n.AddInput(port.NewInput(port.AnyValue, "If"))
	n.AddInput(port.NewInput(port.AnyValue, "Else"))
	n.AddOutput(port.NewOutput(port.AnyValue, "Result"))
	return n
}

// NewExecute builds the explicit control-flow entry.
func NewExecute() *Node {
	n := New(TypeExecute, "Execute", &Execute{}, nil)
	n.AddOutput(port.NewOutput(port.Execute, "Execute"))
	return n
}

// NewBoundary builds a graph input or output marker carrying tag t.
func NewBoundary(output bool, t port.Tag) *Node {
	if output {
		n := New(TypeOutput, "Output", &Boundary{Output: true}, nil)
		n.AddInput(port.NewInput(t, "Input"))
		return n
	}
	n := New(TypeInput, "Input", &Boundary{}, nil)
	n.AddOutput(port.NewOutput(t, "Output"))
	return n
}

// NewItem builds a comment or pin.
func NewItem(pin bool) *Node {
	k := &Item{Pin: pin}
	props := []Property{
		textProp("Text", "", func(n *Node) *string { return &n.Kind.(*Item).Text }),
	}
	if pin {
		return New(TypePin, "Pin", k, props)
	}
	return New(TypeComment, "Comment", k, props)
}

// OperatorSpec describes an image operator's ports and parameters.
type OperatorSpec struct {
	Type    string
	Name    string
	Op      string
	Inputs  []string
	Outputs []string
	Params  []OperatorParam
}

// NewOperator builds an image operator sized w by h.
func NewOperator(spec OperatorSpec, w, h int, f PixelFormat) *Node {
	k := &Operator{Op: spec.Op, Params: make(map[string]any, len(spec.Params))}
	for _, p := range spec.Params {
		if p.Default != nil {
			k.Params[p.Name] = p.Default
		}
	}
	n := New(spec.Type, spec.Name, k, OperatorProperties(spec.Params))
	n.Width, n.Height, n.Format = w, h, f
	for _, name := range spec.Inputs {
		n.AddInput(port.NewInput(port.Color|port.Gray, name))
	}
	for _, name := range spec.Outputs {
		n.AddOutput(port.NewOutput(port.Color|port.Gray, name))
	}
	return n
}

// IsFunctionHost reports whether n is an operator that runs a function graph.
func IsFunctionHost(n *Node) bool {
	op, ok := n.Kind.(*Operator)
	return ok && op.Function != ""
}
