package eval

import (
	"context"
	"testing"

	"github.com/specialistvlad/texgraph/internal/ctxlog"
	"github.com/specialistvlad/texgraph/internal/graph"
	"github.com/specialistvlad/texgraph/internal/node"
	"github.com/specialistvlad/texgraph/internal/port"
	"github.com/specialistvlad/texgraph/internal/registry"
	"github.com/specialistvlad/texgraph/modules/imaging"
	"github.com/specialistvlad/texgraph/modules/mathnodes"
	"github.com/specialistvlad/texgraph/modules/structure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCtx() context.Context {
	return ctxlog.Discard(context.Background())
}

func newArena() *graph.Arena {
	return graph.NewArena(registry.New().Load(&mathnodes.Module{}, &structure.Module{}, &imaging.Module{}))
}

func add(t *testing.T, g *graph.Graph, nodes ...*node.Node) {
	t.Helper()
	for _, n := range nodes {
		require.True(t, g.Add(n))
	}
}

func link(t *testing.T, from *node.Node, out int, to *node.Node, in int) {
	t.Helper()
	require.True(t, port.Connect(from.Output(out), to.Input(in)))
}

// newScale builds float Scale(float x) returning x * 2.
func newScale(t *testing.T, a *graph.Arena) *graph.Graph {
	t.Helper()
	g := a.NewGraph("Scale", graph.Function, 0, 0)
	arg := node.NewArg("x", port.Float)
	get := node.NewGetVar("x")
	two := node.NewFloatConstant(2)
	mul := node.NewArithmetic(node.OpMultiply)
	add(t, g, arg, get, two, mul)
	link(t, get, 0, mul, 1)
	link(t, two, 0, mul, 2)
	require.NoError(t, g.SetOutputNode(mul.ID))
	return g
}

func TestRunFunction(t *testing.T) {
	testCases := []struct {
		name    string
		arrange func(t *testing.T, a *graph.Arena, g *graph.Graph)
		want    any
	}{
		{
			name: "simple add",
			arrange: func(t *testing.T, _ *graph.Arena, g *graph.Graph) {
				x, y := node.NewFloatConstant(2), node.NewFloatConstant(3)
				sum := node.NewArithmetic(node.OpAdd)
				add(t, g, x, y, sum)
				link(t, x, 0, sum, 1)
				link(t, y, 0, sum, 2)
				require.NoError(t, g.SetOutputNode(sum.ID))
			},
			want: float32(5),
		},
		{
			name: "constant override from parameter",
			arrange: func(t *testing.T, _ *graph.Arena, g *graph.Graph) {
				x := node.NewFloatConstant(2)
				add(t, g, x)
				g.SetParameter(x.ID, "Value", "Scale", float32(9), port.Float)
				require.NoError(t, g.SetOutputNode(x.ID))
			},
			want: float32(9),
		},
		{
			name: "set then get var",
			arrange: func(t *testing.T, _ *graph.Arena, g *graph.Graph) {
				exec := node.NewExecute()
				seven, two := node.NewFloatConstant(7), node.NewFloatConstant(2)
				set := node.NewSetVar("v")
				get := node.NewGetVar("v")
				mul := node.NewArithmetic(node.OpMultiply)
				add(t, g, exec, seven, two, set, get, mul)
				link(t, exec, 0, set, 0)
				link(t, seven, 0, set, 1)
				link(t, set, 0, mul, 0)
				link(t, get, 0, mul, 1)
				link(t, two, 0, mul, 2)
				require.NoError(t, g.SetOutputNode(mul.ID))
			},
			want: float32(14),
		},
		{
			name: "if else picks branch",
			arrange: func(t *testing.T, _ *graph.Arena, g *graph.Graph) {
				cond := node.NewBoolConstant(false)
				yes, no := node.NewFloatConstant(1), node.NewFloatConstant(2)
				sel := node.NewIfElse()
				add(t, g, cond, yes, no, sel)
				link(t, cond, 0, sel, 1)
				link(t, yes, 0, sel, 2)
				link(t, no, 0, sel, 3)
				require.NoError(t, g.SetOutputNode(sel.ID))
			},
			want: float32(2),
		},
		{
			name: "for loop accumulates counter",
			arrange: func(t *testing.T, _ *graph.Arena, g *graph.Graph) {
				exec := node.NewExecute()
				zero := node.NewFloatConstant(0)
				init := node.NewSetVar("acc")
				start, end, step := node.NewFloatConstant(0), node.NewFloatConstant(4), node.NewFloatConstant(1)
				loop := node.NewForLoop()
				acc := node.NewGetVar("acc")
				sum := node.NewArithmetic(node.OpAdd)
				store := node.NewSetVar("acc")
				final := node.NewGetVar("acc")
				done := node.NewUnary(node.OpAbsolute)
				add(t, g, exec, zero, init, start, end, step, loop, acc, sum, store, final, done)

				link(t, exec, 0, init, 0)
				link(t, zero, 0, init, 1)
				link(t, init, 0, loop, 0)
				link(t, start, 0, loop, 1)
				link(t, end, 0, loop, 2)
				link(t, step, 0, loop, 3)

				link(t, loop, 0, sum, 0)
				link(t, acc, 0, sum, 1)
				link(t, loop, 1, sum, 2)
				link(t, sum, 0, store, 0)
				link(t, sum, 1, store, 1)

				link(t, loop, 2, done, 0)
				link(t, final, 0, done, 1)
				require.NoError(t, g.SetOutputNode(done.ID))
			},
			want: float32(6),
		},
		{
			name: "call binds arguments",
			arrange: func(t *testing.T, a *graph.Arena, g *graph.Graph) {
				scale := newScale(t, a)
				k := node.NewFloatConstant(3)
				call := node.NewCall("")
				add(t, g, k, call)
				require.NoError(t, g.BindCall(call.ID, scale.ID))
				link(t, k, 0, call, 1)
				require.NoError(t, g.SetOutputNode(call.ID))
			},
			want: float32(6),
		},
		{
			name: "random matches hash",
			arrange: func(t *testing.T, _ *graph.Arena, g *graph.Graph) {
				g.RandomSeed = 1
				k := node.NewFloatConstant(0.25)
				rnd := node.NewRandom()
				add(t, g, k, rnd)
				link(t, k, 0, rnd, 1)
				require.NoError(t, g.SetOutputNode(rnd.ID))
			},
			want: Hash(node.Vec{X: 1.25, Y: 1.75}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			a := newArena()
			g := a.NewGraph("Fn", graph.Function, 0, 0)
			tc.arrange(t, a, g)
			e := New(a)

			// --- Act ---
			err := e.RunFunction(testCtx(), g)

			// --- Assert ---
			require.NoError(t, err)
			assert.Equal(t, tc.want, g.Result)
		})
	}
}

func TestRunFunction_ScopeVars(t *testing.T) {
	// --- Arrange ---
	a := newArena()
	vg := a.NewGraph("Texture", graph.Value, 512, 256)
	host := vg.CreateNode(node.TypePixelProcessor)
	require.NotNil(t, host)
	add(t, vg, host)
	vg.AddCustomParameter("Tint", float32(0.5), 0)

	fn := a.NewGraph("Pixels", graph.Function, 0, 0)
	require.NoError(t, fn.AttachTo(host.ID))
	size, tint := node.NewGetVar(graph.VarSize), node.NewGetVar("p_Tint")
	add(t, fn, size, tint)
	e := New(a)

	// --- Act & Assert ---
	require.NoError(t, fn.SetOutputNode(size.ID))
	require.NoError(t, e.RunFunction(testCtx(), fn))
	assert.Equal(t, node.Vec{X: 512, Y: 256}, fn.Result)

	require.NoError(t, fn.SetOutputNode(tint.ID))
	require.NoError(t, e.RunFunction(testCtx(), fn))
	assert.Equal(t, float32(0.5), fn.Result)

	width, ok := fn.Var("Width")
	require.True(t, ok)
	assert.Equal(t, float32(512), width)
}

func TestRunFunction_Failures(t *testing.T) {
	testCases := []struct {
		name    string
		arrange func(t *testing.T, a *graph.Arena) *graph.Graph
		errIs   error
		errMsg  string
	}{
		{
			name: "missing output",
			arrange: func(t *testing.T, a *graph.Arena) *graph.Graph {
				g := a.NewGraph("Fn", graph.Function, 0, 0)
				add(t, g, node.NewFloatConstant(1))
				return g
			},
			errIs: ErrNoOutput,
		},
		{
			name: "value graph",
			arrange: func(t *testing.T, a *graph.Arena) *graph.Graph {
				return a.NewGraph("Texture", graph.Value, 64, 64)
			},
			errMsg: "not a function graph",
		},
		{
			name: "self recursion",
			arrange: func(t *testing.T, a *graph.Arena) *graph.Graph {
				g := a.NewGraph("Fn", graph.Function, 0, 0)
				call := node.NewCall("")
				add(t, g, call)
				require.NoError(t, g.BindCall(call.ID, g.ID))
				require.NoError(t, g.SetOutputNode(call.ID))
				return g
			},
			errMsg: "call depth exceeds",
		},
		{
			name: "unknown variable",
			arrange: func(t *testing.T, a *graph.Arena) *graph.Graph {
				g := a.NewGraph("Fn", graph.Function, 0, 0)
				get := node.NewGetVar("missing")
				add(t, g, get)
				require.NoError(t, g.SetOutputNode(get.ID))
				return g
			},
			errMsg: `unknown variable "missing"`,
		},
		{
			name: "unconnected operand",
			arrange: func(t *testing.T, a *graph.Arena) *graph.Graph {
				g := a.NewGraph("Fn", graph.Function, 0, 0)
				sum := node.NewArithmetic(node.OpAdd)
				add(t, g, sum)
				require.NoError(t, g.SetOutputNode(sum.ID))
				return g
			},
			errMsg: "is not connected",
		},
		{
			name: "non-positive loop increment",
			arrange: func(t *testing.T, a *graph.Arena) *graph.Graph {
				g := a.NewGraph("Fn", graph.Function, 0, 0)
				start, end, step := node.NewFloatConstant(0), node.NewFloatConstant(4), node.NewFloatConstant(0)
				loop := node.NewForLoop()
				add(t, g, start, end, step, loop)
				link(t, start, 0, loop, 1)
				link(t, end, 0, loop, 2)
				link(t, step, 0, loop, 3)
				require.NoError(t, g.SetOutputNode(loop.ID))
				return g
			},
			errMsg: "loop increment must be positive",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := newArena()
			g := tc.arrange(t, a)

			err := New(a).RunFunction(testCtx(), g)

			require.Error(t, err)
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
			}
			if tc.errMsg != "" {
				assert.Contains(t, err.Error(), tc.errMsg)
			}
			assert.Nil(t, g.Result)
		})
	}
}
