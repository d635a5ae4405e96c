package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/specialistvlad/texgraph/internal/node"
)

// Categories group node types. Function graphs accept only Math and Item
// nodes.
const (
	CategoryMath     = "Math"
	CategoryItem     = "Item"
	CategoryBoundary = "Boundary"
	CategoryImage    = "Image"
)

// Module is the interface that all node modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Factory builds a fresh node sized for a graph of w by h pixels in format f.
type Factory func(w, h int, f node.PixelFormat) (*node.Node, error)

// Entry is a registered node type.
type Entry struct {
	Type     string
	Category string
	New      Factory
}

// Processor evaluates an image operator on the CPU. inputs holds the data of
// each input port in order (nil when unconnected); the result holds one value
// per output port.
type Processor interface {
	Process(ctx context.Context, n *node.Node, inputs []any) ([]any, error)
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, n *node.Node, inputs []any) ([]any, error)

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, n *node.Node, inputs []any) ([]any, error) {
	return f(ctx, n, inputs)
}

// Registry maps document type identifiers to node factories and operator
// names to processors for a single application instance.
type Registry struct {
	entries    map[string]*Entry
	processors map[string]Processor
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		entries:    make(map[string]*Entry),
		processors: make(map[string]Processor),
	}
}

// Load registers every module in order.
func (r *Registry) Load(modules ...Module) *Registry {
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// Register adds a node type. Registering the same type twice is a
// programming error and panics.
func (r *Registry) Register(category, typeID string, f Factory) {
	if _, exists := r.entries[typeID]; exists {
		panic(fmt.Sprintf("node type '%s' already registered", typeID))
	}
	slog.Debug("Registering node type.", "type", typeID, "category", category)
	r.entries[typeID] = &Entry{Type: typeID, Category: category, New: f}
}

// RegisterProcessor adds the CPU implementation of an image operator.
func (r *Registry) RegisterProcessor(op string, p Processor) {
	if _, exists := r.processors[op]; exists {
		panic(fmt.Sprintf("processor for operator '%s' already registered", op))
	}
	slog.Debug("Registering operator processor.", "op", op)
	r.processors[op] = p
}

// Lookup returns the entry for typeID.
func (r *Registry) Lookup(typeID string) (*Entry, bool) {
	e, ok := r.entries[typeID]
	return e, ok
}

// Processor returns the processor registered for op.
func (r *Registry) Processor(op string) (Processor, bool) {
	p, ok := r.processors[op]
	return p, ok
}

// Create builds a node of the given type.
func (r *Registry) Create(typeID string, w, h int, f node.PixelFormat) (*node.Node, error) {
	e, ok := r.entries[typeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typeID)
	}
	n, err := e.New(w, h, f)
	if err != nil {
		return nil, fmt.Errorf("creating node of type %s: %w", typeID, err)
	}
	return n, nil
}

// Types returns the registered type identifiers, sorted.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.entries))
	for t := range r.entries {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
