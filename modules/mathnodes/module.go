// Package mathnodes registers the node types that make up function graphs:
// literals, arithmetic, variables, calls and control flow.
package mathnodes

import (
	"github.com/specialistvlad/texgraph/internal/node"
	"github.com/specialistvlad/texgraph/internal/port"
	"github.com/specialistvlad/texgraph/internal/registry"
)

// Category is the registry category of every type in this module.
const Category = registry.CategoryMath

// Module implements the registry.Module interface for this package.
type Module struct{}

// sizeless wraps a constructor that ignores graph size and format.
func sizeless(fn func() *node.Node) registry.Factory {
	return func(int, int, node.PixelFormat) (*node.Node, error) {
		return fn(), nil
	}
}

func vector(size int) registry.Factory {
	return func(int, int, node.PixelFormat) (*node.Node, error) {
		return node.NewVectorConstant(size, node.Vec{})
	}
}

// Register registers every math node type with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Category, node.TypeFloatConstant, sizeless(func() *node.Node { return node.NewFloatConstant(0) }))
	r.Register(Category, node.TypeFloat2Constant, vector(2))
	r.Register(Category, node.TypeFloat3Constant, vector(3))
	r.Register(Category, node.TypeFloat4Constant, vector(4))
	r.Register(Category, node.TypeBoolConstant, sizeless(func() *node.Node { return node.NewBoolConstant(false) }))

	for op, typeID := range node.ArithmeticTypes {
		op := op
		r.Register(Category, typeID, sizeless(func() *node.Node { return node.NewArithmetic(op) }))
	}
	for op, typeID := range node.UnaryTypes {
		op := op
		r.Register(Category, typeID, sizeless(func() *node.Node { return node.NewUnary(op) }))
	}

	r.Register(Category, node.TypeRandom, sizeless(node.NewRandom))
	r.Register(Category, node.TypeGetVar, sizeless(func() *node.Node { return node.NewGetVar("") }))
	r.Register(Category, node.TypeSetVar, sizeless(func() *node.Node { return node.NewSetVar("") }))
	r.Register(Category, node.TypeArg, sizeless(func() *node.Node { return node.NewArg("", port.Float) }))
	r.Register(Category, node.TypeCall, sizeless(func() *node.Node { return node.NewCall("") }))
	r.Register(Category, node.TypeForLoop, sizeless(node.NewForLoop))
	r.Register(Category, node.TypeIfElse, sizeless(node.NewIfElse))
	r.Register(Category, node.TypeExecute, sizeless(node.NewExecute))
}
