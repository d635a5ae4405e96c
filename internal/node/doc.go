// Package node defines the unit of computation shared by value graphs and
// function graphs.
//
// # Why Node Package Exists
//
// Every other layer (graph containers, the scheduler, the linearizer, the
// shader synthesizer and the CPU evaluator) operates on the same node
// shape: ordered input and output ports, a display name, a size and pixel
// format, and a kind. Keeping that shape in one package lets those layers
// depend on it without depending on each other.
//
// # Kinds
//
// A node's behavior is selected by its Kind, a closed sum type:
//
//	FloatConstant, VectorConstant, BoolConstant   literals
//	Arithmetic, Unary, Random                     math
//	GetVar, SetVar, Arg, Call                     scope and functions
//	ForLoop, IfElse, Execute                      control flow
//	Boundary, Item                                structure
//	Operator                                      image operators
//
// Consumers dispatch with a type switch. Constructors (NewArithmetic,
// NewForLoop, ...) attach the port layout each kind expects; executable math
// nodes always carry an Execute input and output at index 0.
//
// # Change Notification
//
// Nodes do not know their graph. A graph binds a change hook with Bind; a
// non-silent connection change on any input recomputes polymorphic output
// types and then calls TriggerValueChange, which emits ValueUpdated and
// invokes the hook.
package node
