package eval

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/texgraph/internal/graph"
	"github.com/specialistvlad/texgraph/internal/linearize"
	"github.com/specialistvlad/texgraph/internal/node"
	"github.com/specialistvlad/texgraph/internal/port"
)

const (
	// maxCallDepth bounds nested calls, including a function calling itself.
	maxCallDepth = 32
	// maxLoopIterations bounds a single ForLoop run.
	maxLoopIterations = 1 << 20
)

// ErrNoOutput is returned for function graphs without an output node.
var ErrNoOutput = errors.New("function graph has no output node")

// RunFunction evaluates function graph g on the CPU and stores the output
// node's value in g.Result.
func (e *Engine) RunFunction(ctx context.Context, g *graph.Graph) error {
	return e.runFunction(ctx, g, 0)
}

func (e *Engine) runFunction(ctx context.Context, g *graph.Graph, depth int) error {
	if g.Flavor != graph.Function {
		return fmt.Errorf("graph %q is not a function graph", g.Name)
	}
	if depth > maxCallDepth {
		return fmt.Errorf("function %q: call depth exceeds %d", g.Name, maxCallDepth)
	}
	out, ok := g.Node(g.OutputNode)
	if !ok {
		return fmt.Errorf("function %q: %w", g.Name, ErrNoOutput)
	}

	e.refreshVars(g)
	r := &runner{e: e, g: g, depth: depth}
	if err := r.runAll(ctx, linearize.Order(e.arena, g)); err != nil {
		return fmt.Errorf("function %q: %w", g.Name, err)
	}
	g.Result = resultValue(out)
	return nil
}

// refreshVars publishes the enclosing scope into g's variables: the size of
// the host, the random seed, the top graph's constant parameters and the
// shader-visible properties of the host node.
func (e *Engine) refreshVars(g *graph.Graph) {
	var size node.Vec
	if top := g.TopNode(); top != nil {
		size = node.Vec{X: float32(top.Width), Y: float32(top.Height)}
	} else if parent, ok := e.arena.Graph(g.ParentGraph); ok && g.ParentGraph != "" {
		size = node.Vec{X: float32(parent.Width), Y: float32(parent.Height)}
	}
	g.SetVar(graph.VarSize, size, port.Float2)

	top := g.TopGraph()
	g.SetVar(graph.VarRandomSeed, top.RandomSeed, port.Float)

	for _, p := range append(top.Parameters(), top.CustomParameters()...) {
		if p.IsFunction() {
			continue
		}
		t := port.Resolve(p.Type)
		v, err := node.Coerce(t, p.Value)
		if err != nil {
			continue
		}
		g.SetVar(p.ShaderName(), v, t)
	}

	if g.HostNode == "" {
		return
	}
	host, ok := e.arena.Node(g.HostNode)
	if !ok {
		return
	}
	for _, prop := range host.Properties() {
		if !prop.ShaderVisible || prop.Type == 0 || prop.Get == nil {
			continue
		}
		t := port.Resolve(prop.Type)
		v, err := node.Coerce(t, prop.Get(host))
		if err != nil {
			continue
		}
		g.SetVar(prop.Name, v, t)
	}
}

// resultValue reads the value a node produced.
func resultValue(n *node.Node) any {
	idx := 1
	if node.IsValueOnly(n) {
		idx = 0
	}
	if out := n.Output(idx); out != nil {
		return out.Data
	}
	return nil
}

// runner computes nodes of one graph in place.
type runner struct {
	e     *Engine
	g     *graph.Graph
	depth int
}

func (r *runner) runAll(ctx context.Context, order []*node.Node) error {
	for _, n := range order {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.run(ctx, n); err != nil {
			return fmt.Errorf("node %s (%s): %w", n.ID, n.Type, err)
		}
	}
	return nil
}

func (r *runner) run(ctx context.Context, n *node.Node) error {
	switch k := n.Kind.(type) {
	case *node.FloatConstant:
		v := k.Value
		if o, ok := r.g.ParameterOverride(n.ID, "Value"); ok {
			if f, ok := node.ToFloat(o); ok {
				v = f
			}
		}
		n.Output(0).Data = v

	case *node.VectorConstant:
		v := k.Value
		if o, ok := r.g.ParameterOverride(n.ID, "Vector"); ok {
			if vec, ok := node.ToVec(o); ok {
				v = vec
			}
		}
		n.Output(0).Data = trim(v, k.Size)

	case *node.BoolConstant:
		v := k.Value
		if o, ok := r.g.ParameterOverride(n.ID, "Value"); ok {
			if b, ok := node.ToBool(o); ok {
				v = b
			}
		}
		n.Output(0).Data = v

	case *node.GetVar:
		v, ok := r.g.Var(k.Var)
		if !ok {
			return fmt.Errorf("unknown variable %q", k.Var)
		}
		n.Output(0).Data = v

	case *node.SetVar:
		v, err := required(n, 1)
		if err != nil {
			return err
		}
		r.g.SetVar(k.Var, v, n.ResultType())
		n.Output(1).Data = v

	case *node.Arithmetic:
		a, err := required(n, 1)
		if err != nil {
			return err
		}
		b, err := required(n, 2)
		if err != nil {
			return err
		}
		v, err := binary(k.Op, a, b, port.Components(n.ResultType()))
		if err != nil {
			return err
		}
		n.Output(1).Data = v

	case *node.Unary:
		a, err := required(n, 1)
		if err != nil {
			return err
		}
		v, err := unary(k.Op, a, port.Components(n.ResultType()))
		if err != nil {
			return err
		}
		n.Output(1).Data = v

	case *node.Random:
		a, err := required(n, 1)
		if err != nil {
			return err
		}
		seed := r.g.TopGraph().RandomSeed
		var co node.Vec
		if f, ok := a.(float32); ok {
			co = node.Vec{X: f + seed, Y: 1 - f + seed}
		} else if v, ok := node.ToVec(a); ok {
			co = node.Vec{X: v.X + seed, Y: v.Y + seed}
		} else {
			return fmt.Errorf("cannot use %T as a seed", a)
		}
		n.Output(1).Data = Hash(co)

	case *node.IfElse:
		c, err := required(n, 1)
		if err != nil {
			return err
		}
		cond, ok := node.ToBool(c)
		if !ok {
			return fmt.Errorf("cannot use %T as a condition", c)
		}
		idx := 3
		if cond {
			idx = 2
		}
		v, err := required(n, idx)
		if err != nil {
			return err
		}
		n.Output(1).Data = v

	case *node.ForLoop:
		return r.forLoop(ctx, n)

	case *node.Call:
		return r.call(ctx, n)

	case *node.Execute, *node.Arg, *node.Item, *node.Boundary:
		return nil

	default:
		return fmt.Errorf("node kind %T cannot be evaluated here", n.Kind)
	}
	return nil
}

func (r *runner) forLoop(ctx context.Context, n *node.Node) error {
	var bounds [3]float32
	for i := range bounds {
		v, err := required(n, i+1)
		if err != nil {
			return err
		}
		f, ok := node.ToFloat(v)
		if !ok {
			return fmt.Errorf("cannot use %T as a loop bound", v)
		}
		bounds[i] = f
	}
	start, end, inc := bounds[0], bounds[1], bounds[2]
	if inc <= 0 {
		return fmt.Errorf("loop increment must be positive, got %v", inc)
	}

	body := linearize.LoopBody(r.e.arena, r.g, n)
	current := n.Output(1)
	iterations := 0
	step := func(i float32) error {
		iterations++
		if iterations > maxLoopIterations {
			return fmt.Errorf("loop exceeds %d iterations", maxLoopIterations)
		}
		current.Data = i
		return r.runAll(ctx, body)
	}

	if start <= end {
		for i := start; i < end; i += inc {
			if err := step(i); err != nil {
				return err
			}
		}
		return nil
	}
	for i := start; i >= end; i -= inc {
		if err := step(i); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) call(ctx context.Context, n *node.Node) error {
	target, ok := r.g.CallTarget(n)
	if !ok {
		return fmt.Errorf("call has no target function")
	}

	arg := 0
	for i, in := range n.Inputs {
		if in.Type == port.Execute {
			continue
		}
		v, err := required(n, i)
		if err != nil {
			return err
		}
		if arg < len(target.Args) {
			if an, ok := target.Node(target.Args[arg]); ok {
				k := an.Kind.(*node.Arg)
				cv, err := node.Coerce(port.Resolve(k.Type), v)
				if err != nil {
					return fmt.Errorf("argument %q: %w", k.Name, err)
				}
				target.SetVar(k.Name, cv, k.Type)
			}
		}
		arg++
	}

	if err := r.e.runFunction(ctx, target, r.depth+1); err != nil {
		return err
	}
	n.Output(1).Data = target.Result
	return nil
}

// required returns the data on input i, failing when it is unconnected or
// has not been computed.
func required(n *node.Node, i int) (any, error) {
	in := n.Input(i)
	if in == nil {
		return nil, fmt.Errorf("input %d does not exist", i)
	}
	if !in.HasInput() {
		return nil, fmt.Errorf("input %d (%s) is not connected", i, in.Name)
	}
	v := in.Data()
	if v == nil {
		return nil, fmt.Errorf("input %d (%s) has no value", i, in.Name)
	}
	return v, nil
}
