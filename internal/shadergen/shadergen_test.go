package shadergen

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/specialistvlad/texgraph/internal/ctxlog"
	"github.com/specialistvlad/texgraph/internal/graph"
	"github.com/specialistvlad/texgraph/internal/metrics"
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

func sym(n *node.Node, idx int) string {
	return n.ShaderID() + strconv.Itoa(idx)
}

// simpleAdd is a function graph computing 2.0 + 3.0.
type simpleAdd struct {
	g         *graph.Graph
	x, y, sum *node.Node
}

func newSimpleAdd(t *testing.T, a *graph.Arena, name string) simpleAdd {
	t.Helper()
	g := a.NewGraph(name, graph.Function, 0, 0)
	x, y := node.NewFloatConstant(2), node.NewFloatConstant(3)
	sum := node.NewArithmetic(node.OpAdd)
	add(t, g, x, y, sum)
	link(t, x, 0, sum, 1)
	link(t, y, 0, sum, 2)
	require.NoError(t, g.SetOutputNode(sum.ID))
	g.ExpectedOutput = port.Float
	return simpleAdd{g: g, x: x, y: y, sum: sum}
}

func TestBuildShader_SimpleAdd(t *testing.T) {
	// --- Arrange ---
	a := newArena()
	sa := newSimpleAdd(t, a, "Add")
	sa.g.RandomSeed = 42
	m := metrics.New(prometheus.NewRegistry())
	c := New(a, WithMetrics(m))

	// --- Act ---
	src, ok := c.BuildShader(testCtx(), sa.g)

	// --- Assert ---
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(src, "#version 330 core\nout vec4 FragColor;\nin vec2 UV;\n"))
	assert.Contains(t, src, "const float PI = 3.14159265359;\n")
	assert.Contains(t, src, "const float RandomSeed = 42.0;\n")
	assert.Contains(t, src, "uniform sampler2D Input0;\nuniform sampler2D Input1;\n")
	assert.NotContains(t, src, "Input2")
	assert.Contains(t, src, "float rand(vec2 co) {\n")

	body := src[strings.Index(src, "void main() {\n"):]
	want := "void main() {\n" +
		"vec2 size = vec2(0);\n" +
		"vec2 pos = UV;\n" +
		"float " + sym(sa.x, 0) + " = 2.0;\n" +
		"float " + sym(sa.y, 0) + " = 3.0;\n" +
		"float " + sym(sa.sum, 1) + " = " + sym(sa.x, 0) + " + " + sym(sa.y, 0) + ";\n" +
		"FragColor = vec4(" + sym(sa.sum, 1) + ");\n" +
		"}\n"
	assert.Equal(t, want, body)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Compilations.WithLabelValues(ModeShader, metrics.ResultOK)))
}

func TestFunctionSource_SimpleAdd(t *testing.T) {
	a := newArena()
	sa := newSimpleAdd(t, a, "Add Two-Values")

	src, ok := New(a).FunctionSource(testCtx(), sa.g)

	require.True(t, ok)
	assert.True(t, strings.HasPrefix(src, "float AddTwo_Values() {\n"), src)
	assert.True(t, strings.HasSuffix(src, "return "+sym(sa.sum, 1)+";\n}\n\n"), src)
	assert.NotContains(t, src, "#version")
}

func TestBuildShader_Idempotent(t *testing.T) {
	a := newArena()
	sa := newSimpleAdd(t, a, "Add")
	c := New(a)

	first, ok := c.BuildShader(testCtx(), sa.g)
	require.True(t, ok)
	second, ok := c.BuildShader(testCtx(), sa.g)
	require.True(t, ok)

	assert.Equal(t, first, second)
}

func TestBuildShader_MissingOutput(t *testing.T) {
	// --- Arrange ---
	a := newArena()
	sa := newSimpleAdd(t, a, "Add")
	require.NoError(t, sa.g.SetOutputNode(""))
	m := metrics.New(prometheus.NewRegistry())
	c := New(a, WithMetrics(m))

	// --- Act ---
	src, ok := c.BuildShader(testCtx(), sa.g)
	fn, fnOK := c.FunctionSource(testCtx(), sa.g)

	// --- Assert ---
	assert.False(t, ok)
	assert.Empty(t, src)
	assert.False(t, fnOK)
	assert.Empty(t, fn)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Compilations.WithLabelValues(ModeShader, metrics.ResultFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Compilations.WithLabelValues(ModeFunction, metrics.ResultFailed)))
}

func TestBuildShader_ExpectedOutputMismatch(t *testing.T) {
	a := newArena()
	sa := newSimpleAdd(t, a, "Add")
	sa.g.ExpectedOutput = port.Float4 | port.Color

	src, ok := New(a).BuildShader(testCtx(), sa.g)

	assert.False(t, ok)
	assert.Empty(t, src)
}

func TestBuildShader_DeduplicatesIdenticalFragments(t *testing.T) {
	// --- Arrange ---
	a := newArena()
	g := a.NewGraph("Square", graph.Function, 0, 0)
	g.ExpectedOutput = port.Float
	k := node.NewFloatConstant(0.5)
	mul := node.NewArithmetic(node.OpMultiply)
	add(t, g, k, mul)
	link(t, k, 0, mul, 1)
	link(t, k, 0, mul, 2)
	require.NoError(t, g.SetOutputNode(mul.ID))

	// --- Act ---
	src, ok := New(a).BuildShader(testCtx(), g)

	// --- Assert ---
	require.True(t, ok)
	assert.Equal(t, 1, strings.Count(src, "float "+sym(k, 0)+" = 0.5;\n"))
	assert.Contains(t, src, "float "+sym(mul, 1)+" = "+sym(k, 0)+" * "+sym(k, 0)+";\n")
}

// newScale builds "Scale": float Scale(float x) { return x * 2.0; }.
func newScale(t *testing.T, a *graph.Arena) (*graph.Graph, *node.Node) {
	t.Helper()
	g := a.NewGraph("Scale", graph.Function, 0, 0)
	g.ExpectedOutput = port.Float
	arg := node.NewArg("x", port.Float)
	get := node.NewGetVar("x")
	two := node.NewFloatConstant(2)
	mul := node.NewArithmetic(node.OpMultiply)
	add(t, g, arg, get, two, mul)
	link(t, get, 0, mul, 1)
	link(t, two, 0, mul, 2)
	require.NoError(t, g.SetOutputNode(mul.ID))
	return g, mul
}

func TestBuildShader_EmitsCalleesOnce(t *testing.T) {
	// --- Arrange ---
	a := newArena()
	scale, _ := newScale(t, a)
	g := a.NewGraph("Main", graph.Function, 0, 0)
	g.ExpectedOutput = port.Float
	k := node.NewFloatConstant(3)
	first, second := node.NewCall(""), node.NewCall("")
	add(t, g, k, first, second)
	require.NoError(t, g.BindCall(first.ID, scale.ID))
	require.NoError(t, g.BindCall(second.ID, scale.ID))
	link(t, k, 0, first, 1)
	link(t, first, 0, second, 0)
	link(t, first, 1, second, 1)
	require.NoError(t, g.SetOutputNode(second.ID))

	// --- Act ---
	src, ok := New(a).BuildShader(testCtx(), g)

	// --- Assert ---
	require.True(t, ok)
	assert.Equal(t, 1, strings.Count(src, "float Scale(float x) {\n"))
	assert.Less(t, strings.Index(src, "float Scale(float x) {\n"), strings.Index(src, "void main() {\n"))
	assert.Contains(t, src, "float "+sym(first, 1)+" = Scale("+sym(k, 0)+");\n")
	assert.Contains(t, src, "float "+sym(second, 1)+" = Scale("+sym(first, 1)+");\n")
	assert.Contains(t, src, "FragColor = vec4("+sym(second, 1)+");\n")
}

func TestBuildShader_MainScopeIgnoresCalleeNames(t *testing.T) {
	// --- Arrange ---
	a := newArena()
	scale, _ := newScale(t, a)
	g := a.NewGraph("Main", graph.Function, 0, 0)
	g.ExpectedOutput = port.Float
	k := node.NewFloatConstant(3)
	call := node.NewCall("")
	set := node.NewSetVar("x")
	add(t, g, k, call, set)
	require.NoError(t, g.BindCall(call.ID, scale.ID))
	link(t, k, 0, call, 1)
	link(t, call, 0, set, 0)
	link(t, k, 0, set, 1)
	require.NoError(t, g.SetOutputNode(set.ID))

	// --- Act ---
	src, ok := New(a).BuildShader(testCtx(), g)

	// --- Assert ---
	require.True(t, ok)
	require.Contains(t, src, "float Scale(float x) {\n")
	body := src[strings.Index(src, "void main() {\n"):]
	assert.Contains(t, body, "float x = "+sym(k, 0)+";\n", "x is declared in main")
	assert.Contains(t, body, "float "+sym(k, 0)+" = 3.0;\n")
	assert.Contains(t, body, "FragColor = vec4("+sym(set, 1)+");\n")
}

func TestFunctionSource_BoolSignatures(t *testing.T) {
	// --- Arrange ---
	a := newArena()
	flag := a.NewGraph("Flag", graph.Function, 0, 0)
	flag.ExpectedOutput = port.Bool
	on := node.NewBoolConstant(true)
	add(t, flag, on)
	require.NoError(t, flag.SetOutputNode(on.ID))

	pick := a.NewGraph("Pick", graph.Function, 0, 0)
	pick.ExpectedOutput = port.Bool
	get := node.NewGetVar("flag")
	add(t, pick, node.NewArg("flag", port.Bool), get)
	require.NoError(t, pick.SetOutputNode(get.ID))

	g := a.NewGraph("Main", graph.Function, 0, 0)
	callFlag, callPick := node.NewCall(""), node.NewCall("")
	add(t, g, callFlag, callPick)
	require.NoError(t, g.BindCall(callFlag.ID, flag.ID))
	require.NoError(t, g.BindCall(callPick.ID, pick.ID))
	link(t, callFlag, 0, callPick, 0)
	link(t, callFlag, 1, callPick, 1)
	require.NoError(t, g.SetOutputNode(callPick.ID))

	// --- Act ---
	src, ok := New(a).FunctionSource(testCtx(), g)

	// --- Assert ---
	require.True(t, ok)
	assert.Contains(t, src, "bool Flag() {\nvec2 size = vec2(0);\n")
	assert.Contains(t, src, "return bool("+sym(on, 0)+");\n}\n\n")
	assert.Contains(t, src, "bool Pick(bool flag) {\n")
	assert.Contains(t, src, "float "+sym(callFlag, 1)+" = float(Flag());\n")
	assert.Contains(t, src, "float "+sym(callPick, 1)+" = float(Pick(bool("+sym(callFlag, 1)+")));\n")
	assert.Contains(t, src, "bool Main() {\n")
	assert.Contains(t, src, "return bool("+sym(callPick, 1)+");\n")
}

func TestBuildShader_UnsupportedOutputType(t *testing.T) {
	// --- Arrange ---
	a := newArena()
	g := a.NewGraph("Transform", graph.Function, 0, 0)
	g.SetVar("m", nil, port.Matrix)
	g.ExpectedOutput = port.Matrix | port.Float
	get := node.NewGetVar("m")
	add(t, g, get)
	require.NoError(t, g.SetOutputNode(get.ID))
	m := metrics.New(prometheus.NewRegistry())

	// --- Act ---
	src, ok := New(a, WithMetrics(m)).BuildShader(testCtx(), g)

	// --- Assert ---
	assert.False(t, ok)
	assert.Empty(t, src)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Compilations.WithLabelValues(ModeShader, metrics.ResultFailed)))
}

func TestFunctionSource_SelfRecursiveCall(t *testing.T) {
	// --- Arrange ---
	a := newArena()
	g := a.NewGraph("F", graph.Function, 0, 0)
	g.ExpectedOutput = port.Float
	call := node.NewCall("")
	add(t, g, call)
	require.NoError(t, g.SetOutputNode(call.ID))
	require.NoError(t, g.BindCall(call.ID, g.ID))

	// --- Act ---
	src, ok := New(a).FunctionSource(testCtx(), g)

	// --- Assert ---
	require.True(t, ok)
	assert.Equal(t, 1, strings.Count(src, "float F() {\n"))
	assert.Contains(t, src, "float "+sym(call, 1)+" = F();\n")
}

func TestCompile_IndirectRecursionFails(t *testing.T) {
	// --- Arrange ---
	a := newArena()
	ga := a.NewGraph("A", graph.Function, 0, 0)
	gb := a.NewGraph("B", graph.Function, 0, 0)
	ca, cb := node.NewCall(""), node.NewCall("")
	add(t, ga, ca)
	add(t, gb, cb)
	require.NoError(t, ga.SetOutputNode(ca.ID))
	require.NoError(t, gb.SetOutputNode(cb.ID))
	require.NoError(t, ga.BindCall(ca.ID, gb.ID))
	require.NoError(t, gb.BindCall(cb.ID, ga.ID))
	ga.ExpectedOutput = port.Float
	c := New(a)

	// --- Act ---
	fn, fnOK := c.FunctionSource(testCtx(), ga)
	src, ok := c.BuildShader(testCtx(), ga)

	// --- Assert ---
	assert.False(t, fnOK)
	assert.Empty(t, fn)
	assert.False(t, ok)
	assert.Empty(t, src)
}

func TestBuildShader_Parameters(t *testing.T) {
	// --- Arrange ---
	a := newArena()
	top := a.NewGraph("Wood", graph.Value, 512, 256)
	host := top.CreateNode(node.TypePixelProcessor)
	require.NotNil(t, host)
	add(t, top, host)

	fn := a.NewGraph("Rings", graph.Function, 0, 0)
	require.NoError(t, fn.AttachTo(host.ID))
	fn.ExpectedOutput = port.Float
	k := node.NewFloatConstant(1)
	neg := node.NewUnary(node.OpNegate)
	add(t, fn, k, neg)
	link(t, k, 0, neg, 1)
	require.NoError(t, fn.SetOutputNode(neg.ID))

	top.SetParameter(k.ID, "Value", "Ring Scale", float32(4), 0)
	top.AddCustomParameter("Tint", node.Vec{X: 1, Y: 0.5, Z: 0, W: 1}, 0)
	top.AddCustomParameter("Mirror-X", true, 0)
	source := a.NewGraph("Source", graph.Function, 0, 0)
	_, err := top.SetParameterFunction(host.ID, "Width", "Dynamic Width", source.ID)
	require.NoError(t, err)

	// --- Act ---
	src, ok := New(a).BuildShader(testCtx(), fn)

	// --- Assert ---
	require.True(t, ok)
	assert.Contains(t, src, "vec2 size = vec2(512,256);\n")
	assert.Contains(t, src, "float p_RingScale = 4.0;\n")
	assert.Contains(t, src, "vec4 p_Tint = vec4(1.0,0.5,0.0,1.0);\n")
	assert.Contains(t, src, "bool p_MirrorX = true;\n")
	assert.NotContains(t, src, "p_DynamicWidth")
	assert.Contains(t, src, "float "+sym(k, 0)+" = 4.0;\n", "constant takes the promoted value")
	assert.Contains(t, src, "float "+sym(neg, 1)+" = -"+sym(k, 0)+";\n")
}

func TestBuildShader_Options(t *testing.T) {
	a := newArena()
	sa := newSimpleAdd(t, a, "Add")
	sa.g.RandomSeed = 3

	src, ok := New(a, WithRandomSeed(0.25), WithSamplers(4)).BuildShader(testCtx(), sa.g)

	require.True(t, ok)
	assert.Contains(t, src, "const float RandomSeed = 0.25;\n")
	assert.Contains(t, src, "uniform sampler2D Input3;\n")
}

func TestFragments(t *testing.T) {
	testCases := []struct {
		name    string
		arrange func(t *testing.T, g *graph.Graph) (want []string)
	}{
		{
			name: "min over vector and float",
			arrange: func(t *testing.T, g *graph.Graph) []string {
				v, err := node.NewVectorConstant(2, node.Vec{X: 1, Y: 2})
				require.NoError(t, err)
				k := node.NewFloatConstant(1.5)
				m := node.NewArithmetic(node.OpMin)
				add(t, g, v, k, m)
				link(t, v, 0, m, 1)
				link(t, k, 0, m, 2)
				require.NoError(t, g.SetOutputNode(m.ID))
				return []string{
					"vec2 Fn() {\n",
					"vec2 " + sym(v, 0) + " = vec2(1.0,2.0);\n",
					"vec2 " + sym(m, 1) + " = min(" + sym(v, 0) + ", " + sym(k, 0) + ");\n",
				}
			},
		},
		{
			name: "random over a float seed",
			arrange: func(t *testing.T, g *graph.Graph) []string {
				g.RandomSeed = 7
				k := node.NewFloatConstant(0.5)
				r := node.NewRandom()
				add(t, g, k, r)
				link(t, k, 0, r, 1)
				require.NoError(t, g.SetOutputNode(r.ID))
				return []string{"float " + sym(r, 1) + " = rand(vec2(" + sym(k, 0) + ", 1.0 - " + sym(k, 0) + ") + 7.0);\n"}
			},
		},
		{
			name: "random over the position",
			arrange: func(t *testing.T, g *graph.Graph) []string {
				pos := node.NewGetVar(graph.VarPos)
				r := node.NewRandom()
				add(t, g, pos, r)
				link(t, pos, 0, r, 1)
				require.NoError(t, g.SetOutputNode(r.ID))
				return []string{
					"vec2 " + sym(pos, 0) + " = pos;\n",
					"float " + sym(r, 1) + " = rand(" + sym(pos, 0) + " + 0.0);\n",
				}
			},
		},
		{
			name: "if else over a boolean constant",
			arrange: func(t *testing.T, g *graph.Graph) []string {
				cond := node.NewBoolConstant(true)
				x, y := node.NewFloatConstant(1), node.NewFloatConstant(2)
				sel := node.NewIfElse()
				add(t, g, cond, x, y, sel)
				link(t, cond, 0, sel, 1)
				link(t, x, 0, sel, 2)
				link(t, y, 0, sel, 3)
				require.NoError(t, g.SetOutputNode(sel.ID))
				s := sym(sel, 1)
				return []string{
					"float " + sym(cond, 0) + " = 1.0;\n",
					"float " + s + ";\nif (" + sym(cond, 0) + " > 0.0) {\n" + s + " = " + sym(x, 0) + ";\n} else {\n" + s + " = " + sym(y, 0) + ";\n}\n",
				}
			},
		},
		{
			name: "set var then get var",
			arrange: func(t *testing.T, g *graph.Graph) []string {
				exec := node.NewExecute()
				k := node.NewFloatConstant(3)
				set := node.NewSetVar("scale")
				get := node.NewGetVar("scale")
				neg := node.NewUnary(node.OpNegate)
				add(t, g, exec, k, set, get, neg)
				link(t, exec, 0, set, 0)
				link(t, k, 0, set, 1)
				link(t, set, 0, neg, 0)
				link(t, get, 0, neg, 1)
				require.NoError(t, g.SetOutputNode(neg.ID))
				return []string{
					"float scale = " + sym(k, 0) + ";\nfloat " + sym(set, 1) + " = " + sym(k, 0) + ";\n",
					"float " + sym(get, 0) + " = scale;\n",
				}
			},
		},
		{
			name: "set var assigns a function argument",
			arrange: func(t *testing.T, g *graph.Graph) []string {
				add(t, g, node.NewArg("x", port.Float))
				k := node.NewFloatConstant(1)
				set := node.NewSetVar("x")
				add(t, g, k, set)
				link(t, k, 0, set, 1)
				require.NoError(t, g.SetOutputNode(set.ID))
				return []string{
					"float Fn(float x) {\n",
					"x = " + sym(k, 0) + ";\n",
				}
			},
		},
		{
			name: "set var assigns a boolean argument",
			arrange: func(t *testing.T, g *graph.Graph) []string {
				add(t, g, node.NewArg("flag", port.Bool))
				k := node.NewBoolConstant(false)
				set := node.NewSetVar("flag")
				add(t, g, k, set)
				link(t, k, 0, set, 1)
				require.NoError(t, g.SetOutputNode(set.ID))
				return []string{
					" Fn(bool flag) {\n",
					"flag = bool(" + sym(k, 0) + ");\n",
				}
			},
		},
		{
			name: "get var of a boolean argument",
			arrange: func(t *testing.T, g *graph.Graph) []string {
				add(t, g, node.NewArg("flag", port.Bool))
				get := node.NewGetVar("flag")
				add(t, g, get)
				require.NoError(t, g.SetOutputNode(get.ID))
				return []string{
					"bool Fn(bool flag) {\n",
					"float " + sym(get, 0) + " = float(flag);\n",
					"return bool(" + sym(get, 0) + ");\n",
				}
			},
		},
		{
			name: "for loop",
			arrange: func(t *testing.T, g *graph.Graph) []string {
				exec := node.NewExecute()
				start, end, step := node.NewFloatConstant(0), node.NewFloatConstant(4), node.NewFloatConstant(1)
				loop := node.NewForLoop()
				body := node.NewSetVar("acc")
				done := node.NewUnary(node.OpAbsolute)
				add(t, g, exec, start, end, step, loop, body, done)
				link(t, exec, 0, loop, 0)
				link(t, start, 0, loop, 1)
				link(t, end, 0, loop, 2)
				link(t, step, 0, loop, 3)
				link(t, loop, 0, body, 0)
				link(t, loop, 1, body, 1)
				link(t, loop, 2, done, 0)
				link(t, end, 0, done, 1)
				require.NoError(t, g.SetOutputNode(done.ID))
				i, s, e, inc := sym(loop, 1), sym(start, 0), sym(end, 0), sym(step, 0)
				bodySrc := "float acc = " + i + ";\nfloat " + sym(body, 1) + " = " + i + ";\n"
				return []string{
					"\nif (" + s + " <= " + e + ") {\nfor (float " + i + " = " + s + "; " + i + " < " + e + "; " + i + " += " + inc + ") {\n" + bodySrc + "}\n}\n",
					"else {\nfor (float " + i + " = " + s + "; " + i + " >= " + e + "; " + i + " -= " + inc + ") {\n" + bodySrc + "}\n}\n\n",
					"float " + sym(done, 1) + " = abs(" + e + ");\n",
				}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			a := newArena()
			g := a.NewGraph("Fn", graph.Function, 0, 0)
			want := tc.arrange(t, g)

			// --- Act ---
			src, ok := New(a).FunctionSource(testCtx(), g)

			// --- Assert ---
			require.True(t, ok)
			for _, w := range want {
				assert.Contains(t, src, w)
			}
		})
	}
}

func TestFragments_Failures(t *testing.T) {
	testCases := []struct {
		name    string
		arrange func(t *testing.T, g *graph.Graph)
	}{
		{
			name: "unconnected operand",
			arrange: func(t *testing.T, g *graph.Graph) {
				k := node.NewFloatConstant(1)
				sum := node.NewArithmetic(node.OpAdd)
				add(t, g, k, sum)
				link(t, k, 0, sum, 1)
				require.NoError(t, g.SetOutputNode(sum.ID))
			},
		},
		{
			name: "loop without a body",
			arrange: func(t *testing.T, g *graph.Graph) {
				start, end, step := node.NewFloatConstant(0), node.NewFloatConstant(4), node.NewFloatConstant(1)
				loop := node.NewForLoop()
				done := node.NewUnary(node.OpAbsolute)
				add(t, g, start, end, step, loop, done)
				link(t, start, 0, loop, 1)
				link(t, end, 0, loop, 2)
				link(t, step, 0, loop, 3)
				link(t, loop, 2, done, 0)
				link(t, end, 0, done, 1)
				require.NoError(t, g.SetOutputNode(done.ID))
			},
		},
		{
			name: "if else branches of different types",
			arrange: func(t *testing.T, g *graph.Graph) {
				cond := node.NewBoolConstant(false)
				x := node.NewFloatConstant(1)
				v, err := node.NewVectorConstant(3, node.Vec{})
				require.NoError(t, err)
				sel := node.NewIfElse()
				add(t, g, cond, x, v, sel)
				link(t, cond, 0, sel, 1)
				link(t, x, 0, sel, 2)
				link(t, v, 0, sel, 3)
				require.NoError(t, g.SetOutputNode(sel.ID))
			},
		},
		{
			name: "unknown variable",
			arrange: func(t *testing.T, g *graph.Graph) {
				get := node.NewGetVar("nowhere")
				add(t, g, get)
				require.NoError(t, g.SetOutputNode(get.ID))
			},
		},
		{
			name: "unbound call",
			arrange: func(t *testing.T, g *graph.Graph) {
				call := node.NewCall("")
				add(t, g, call)
				require.NoError(t, g.SetOutputNode(call.ID))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := newArena()
			g := a.NewGraph("Fn", graph.Function, 0, 0)
			tc.arrange(t, g)

			src, ok := New(a).FunctionSource(testCtx(), g)

			assert.False(t, ok)
			assert.Empty(t, src)
		})
	}
}

func TestFloatLit(t *testing.T) {
	testCases := []struct {
		in   float32
		want string
	}{
		{2, "2.0"},
		{0.5, "0.5"},
		{-3, "-3.0"},
		{0, "0.0"},
		{1024.25, "1024.25"},
	}
	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, floatLit(tc.in))
		})
	}
}
