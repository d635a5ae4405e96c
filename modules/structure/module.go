// Package structure registers graph boundary markers and editor items.
package structure

import (
	"github.com/specialistvlad/texgraph/internal/node"
	"github.com/specialistvlad/texgraph/internal/port"
	"github.com/specialistvlad/texgraph/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers boundary and item node types.
func (m *Module) Register(r *registry.Registry) {
	image := port.Color | port.Gray
	r.Register(registry.CategoryBoundary, node.TypeInput, func(int, int, node.PixelFormat) (*node.Node, error) {
		return node.NewBoundary(false, image), nil
	})
	r.Register(registry.CategoryBoundary, node.TypeOutput, func(int, int, node.PixelFormat) (*node.Node, error) {
		return node.NewBoundary(true, image), nil
	})
	r.Register(registry.CategoryItem, node.TypeComment, func(int, int, node.PixelFormat) (*node.Node, error) {
		return node.NewItem(false), nil
	})
	r.Register(registry.CategoryItem, node.TypePin, func(int, int, node.PixelFormat) (*node.Node, error) {
		return node.NewItem(true), nil
	})
}
