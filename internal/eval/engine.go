package eval

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/specialistvlad/texgraph/internal/ctxlog"
	"github.com/specialistvlad/texgraph/internal/dag"
	"github.com/specialistvlad/texgraph/internal/graph"
	"github.com/specialistvlad/texgraph/internal/node"
	"github.com/specialistvlad/texgraph/internal/shadergen"
)

// VertexShader is the vertex stage every generated fragment shader is paired
// with.
const VertexShader = "image.glsl"

// ErrCompile is returned when a pixel processor's function fails to compile.
var ErrCompile = errors.New("shader compilation failed")

// Shader is the outcome of compiling the function hosted by a pixel
// processor. When OK is false, Fragment holds the last source that compiled,
// which stays live.
type Shader struct {
	NodeID   string
	Graph    string
	Function string
	Vertex   string
	Fragment string
	OK       bool
}

// ShaderSink receives compiled shader sources.
type ShaderSink interface {
	Submit(ctx context.Context, s Shader) error
}

// SinkFunc adapts a function to ShaderSink.
type SinkFunc func(ctx context.Context, s Shader) error

// Submit calls f.
func (f SinkFunc) Submit(ctx context.Context, s Shader) error { return f(ctx, s) }

// Engine evaluates nodes of the graphs owned by one arena.
type Engine struct {
	arena    *graph.Arena
	compiler *shadergen.Compiler
	sink     ShaderSink
	workers  int

	mu       sync.Mutex
	lastGood map[string]string
	// scope serializes math nodes of value graphs, which share their
	// graph's variable table.
	scope sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithCompiler sets the shader compiler used for pixel processors.
func WithCompiler(c *shadergen.Compiler) Option {
	return func(e *Engine) { e.compiler = c }
}

// WithSink sets where compiled shaders are sent.
func WithSink(s ShaderSink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithWorkers sets the worker count for value-graph evaluation. Zero or
// less means one per CPU.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// New creates an engine for arena.
func New(arena *graph.Arena, opts ...Option) *Engine {
	e := &Engine{
		arena:    arena,
		lastGood: make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.compiler == nil {
		e.compiler = shadergen.New(arena)
	}
	return e
}

// LastShader returns the last source that compiled for pixel processor
// nodeID.
func (e *Engine) LastShader(nodeID string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	src, ok := e.lastGood[nodeID]
	return src, ok
}

// Evaluate re-evaluates n. In a value graph that is n and everything
// downstream of it; in a function graph it is the whole function.
func (e *Engine) Evaluate(ctx context.Context, n *node.Node) error {
	g, ok := e.arena.GraphOf(n.ID)
	if !ok {
		return fmt.Errorf("node %s: %w", n.ID, graph.ErrNodeNotFound)
	}
	if g.Flavor == graph.Function {
		return e.RunFunction(ctx, g)
	}
	return e.runValue(ctx, g, []*node.Node{n})
}

// EvaluateGraph evaluates a whole graph starting from its root nodes.
func (e *Engine) EvaluateGraph(ctx context.Context, g *graph.Graph) error {
	if g.Flavor == graph.Function {
		return e.RunFunction(ctx, g)
	}
	roots := g.Roots()
	if len(roots) == 0 {
		return nil
	}
	return e.runValue(ctx, g, roots)
}

// runValue processes starts and their downstream closure in dependency
// order.
func (e *Engine) runValue(ctx context.Context, g *graph.Graph, starts []*node.Node) error {
	logger := ctxlog.FromContext(ctx).With("graph", g.Name)
	e.refreshParameterFunctions(ctx, g.TopGraph())

	closure := downstream(g, starts)
	logger.Debug("Evaluating value graph.", "nodes", closure.Len(), "starts", len(starts))

	var doneMu sync.Mutex
	done := make(map[string]bool)
	err := dag.NewExecutor(closure, e.workers).Run(ctx, func(ctx context.Context, id string) error {
		n, ok := g.Node(id)
		if !ok {
			return nil
		}
		if err := e.process(ctx, g, n); err != nil {
			return err
		}
		doneMu.Lock()
		done[id] = true
		doneMu.Unlock()
		return nil
	})

	order, sortErr := closure.TopologicalSort()
	if sortErr == nil {
		for _, id := range order {
			if n, ok := g.Node(id); ok && done[id] {
				if _, isOp := n.Kind.(*node.Operator); isOp {
					n.TextureChanged.Emit(n)
				}
			}
		}
	}
	return err
}

// downstream builds the dependency graph of starts and every node they
// feed, directly or not, within g.
func downstream(g *graph.Graph, starts []*node.Node) *dag.Graph {
	d := dag.New()
	queue := make([]*node.Node, 0, len(starts))
	for _, n := range starts {
		if !d.Has(n.ID) {
			d.AddNode(n.ID)
			queue = append(queue, n)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, out := range n.Outputs {
			for _, in := range out.To() {
				dst, ok := g.Node(in.Node)
				if !ok {
					continue
				}
				if !d.Has(dst.ID) {
					d.AddNode(dst.ID)
					queue = append(queue, dst)
				}
				// Edges are only rejected for self-loops, which a closure
				// walk never adds.
				_ = d.AddEdge(n.ID, dst.ID)
			}
		}
	}
	return d
}

// process computes one value-graph node.
func (e *Engine) process(ctx context.Context, g *graph.Graph, n *node.Node) error {
	switch k := n.Kind.(type) {
	case *node.Operator:
		if k.Op == node.OpPixelProcessor {
			return e.compileHosted(ctx, g, n, k)
		}
		p, ok := e.arena.Registry().Processor(k.Op)
		if !ok {
			return fmt.Errorf("no processor registered for operator %q", k.Op)
		}
		inputs := make([]any, len(n.Inputs))
		for i, in := range n.Inputs {
			inputs[i] = in.Data()
		}
		outs, err := p.Process(ctx, n, inputs)
		if err != nil {
			return fmt.Errorf("operator %s (%s): %w", n.ID, k.Op, err)
		}
		for i, out := range n.Outputs {
			if i < len(outs) {
				out.Data = outs[i]
			}
		}
		return nil
	case *node.Boundary, *node.Item:
		return nil
	}
	e.scope.Lock()
	defer e.scope.Unlock()
	r := &runner{e: e, g: g}
	return r.run(ctx, n)
}

// compileHosted builds the shader of a pixel processor's function and hands
// it to the sink. A failed build keeps the previous source.
func (e *Engine) compileHosted(ctx context.Context, g *graph.Graph, n *node.Node, op *node.Operator) error {
	logger := ctxlog.FromContext(ctx).With("nodeID", n.ID)
	fn, ok := e.arena.Graph(op.Function)
	if !ok {
		return fmt.Errorf("pixel processor %s: %w", n.ID, graph.ErrGraphNotFound)
	}

	s := Shader{NodeID: n.ID, Graph: g.Name, Function: fn.Name, Vertex: VertexShader}
	src, ok := e.compiler.BuildShader(ctx, fn)

	e.mu.Lock()
	if ok {
		e.lastGood[n.ID] = src
		s.Fragment, s.OK = src, true
	} else {
		s.Fragment = e.lastGood[n.ID]
	}
	e.mu.Unlock()

	if e.sink != nil {
		if err := e.sink.Submit(ctx, s); err != nil {
			logger.Warn("Shader sink rejected source.", "error", err)
		}
	}
	if !ok {
		return fmt.Errorf("pixel processor %s, function %q: %w", n.ID, fn.Name, ErrCompile)
	}
	for _, out := range n.Outputs {
		out.Data = s
	}
	return nil
}

// refreshParameterFunctions runs the function graphs backing top's
// function-valued parameters so their Result is current.
func (e *Engine) refreshParameterFunctions(ctx context.Context, top *graph.Graph) {
	logger := ctxlog.FromContext(ctx)
	for _, p := range top.Parameters() {
		if !p.IsFunction() {
			continue
		}
		fn, ok := e.arena.Graph(p.Function)
		if !ok {
			continue
		}
		if err := e.RunFunction(ctx, fn); err != nil {
			logger.Warn("Parameter function failed.", "parameter", p.Name, "error", err)
		}
	}
}
