package shadergen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/specialistvlad/texgraph/internal/ctxlog"
	"github.com/specialistvlad/texgraph/internal/dag"
	"github.com/specialistvlad/texgraph/internal/graph"
	"github.com/specialistvlad/texgraph/internal/linearize"
	"github.com/specialistvlad/texgraph/internal/metrics"
	"github.com/specialistvlad/texgraph/internal/node"
	"github.com/specialistvlad/texgraph/internal/port"
)

// Compilation modes, used as the metrics label.
const (
	ModeShader   = "shader"
	ModeFunction = "function"
)

// DefaultSamplers is the number of sampler uniforms declared by BuildShader.
const DefaultSamplers = 2

// hashFunc is the GLSL helper behind Random nodes; eval.Hash computes the
// same value on the CPU.
const hashFunc = "float rand(vec2 co) {\n" +
	"return fract(sin(dot(co, vec2(12.9898,78.233))) * 43758.5453) * 2.0 - 1.0;\n" +
	"}\n\n"

var errNoOutput = errors.New("graph has no output node")

// Compiler builds shader source for the graphs of one arena.
type Compiler struct {
	arena    *graph.Arena
	metrics  *metrics.Metrics
	seed     *float32
	samplers int
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithMetrics counts compilations by mode and result.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Compiler) { c.metrics = m }
}

// WithRandomSeed pins the RandomSeed constant instead of taking it from the
// compiled graph.
func WithRandomSeed(seed float32) Option {
	return func(c *Compiler) { c.seed = &seed }
}

// WithSamplers sets how many sampler2D uniforms (Input0, Input1, ...) the
// preamble declares.
func WithSamplers(n int) Option {
	return func(c *Compiler) {
		if n >= 0 {
			c.samplers = n
		}
	}
}

// New creates a compiler for graphs owned by arena.
func New(arena *graph.Arena, opts ...Option) *Compiler {
	c := &Compiler{arena: arena, samplers: DefaultSamplers}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildShader compiles g into a standalone fragment shader. It reports false
// when the graph cannot be compiled or its output does not match the
// expected output type.
func (c *Compiler) BuildShader(ctx context.Context, g *graph.Graph) (string, bool) {
	logger := ctxlog.FromContext(ctx).With("graph", g.Name, "mode", ModeShader)
	src, err := c.buildShader(logger, g)
	c.metrics.Compiled(ModeShader, err == nil)
	if err != nil {
		logger.Warn("Shader build failed.", "error", err)
		return "", false
	}
	logger.Debug("Shader built.", "bytes", len(src))
	return src, true
}

// FunctionSource compiles g into a GLSL function named g.FunctionName(),
// preceded by the source of every function it calls.
func (c *Compiler) FunctionSource(ctx context.Context, g *graph.Graph) (string, bool) {
	logger := ctxlog.FromContext(ctx).With("graph", g.Name, "mode", ModeFunction)
	src, err := c.checkedFunctionSource(logger, g)
	c.metrics.Compiled(ModeFunction, err == nil)
	if err != nil {
		logger.Warn("Function source build failed.", "error", err)
		return "", false
	}
	return src, true
}

func (c *Compiler) buildShader(logger *slog.Logger, g *graph.Graph) (string, error) {
	if err := c.checkCalls(g); err != nil {
		return "", err
	}
	order := linearize.Order(c.arena, g)
	if len(order) == 0 {
		return "", errNoOutput
	}
	if _, ok := valueType(g.OutputType()); !ok {
		return "", fmt.Errorf("unsupported output type %s", g.OutputType())
	}

	var b strings.Builder
	b.WriteString(c.preamble(g))
	frag := b.String()

	calls, err := c.calleeSources(logger, g, frag)
	if err != nil {
		return "", err
	}
	frag += calls + "void main() {\n"

	// main is its own scope: callee sources take no part in lookups.
	body, err := c.assemble(logger, g, order, "", false)
	if err != nil {
		return "", err
	}
	frag += body + "}\n"

	if !g.HasExpectedOutput() {
		return "", fmt.Errorf("output type %s does not match expected %s", g.OutputType(), g.ExpectedOutput)
	}
	return frag, nil
}

func (c *Compiler) checkedFunctionSource(logger *slog.Logger, g *graph.Graph) (string, error) {
	if err := c.checkCalls(g); err != nil {
		return "", err
	}
	return c.functionSource(logger, g)
}

// functionSource assumes the call graph below g is acyclic apart from
// direct self-calls.
func (c *Compiler) functionSource(logger *slog.Logger, g *graph.Graph) (string, error) {
	calls, err := c.calleeSources(logger, g, "")
	if err != nil {
		return "", err
	}

	order := linearize.Order(c.arena, g)
	if len(order) == 0 {
		return "", errNoOutput
	}
	ret, ok := port.GLSLType(g.OutputType())
	if !ok {
		return "", fmt.Errorf("unsupported return type %s", g.OutputType())
	}

	var sig strings.Builder
	sig.WriteString(ret + " " + g.FunctionName() + "(")
	var params []string
	for _, id := range g.Args {
		n, ok := g.Node(id)
		if !ok {
			continue
		}
		arg := n.Kind.(*node.Arg)
		t, ok := port.GLSLType(port.Resolve(arg.Type))
		if !ok || arg.Name == "" {
			continue
		}
		params = append(params, t+" "+arg.Name)
	}
	sig.WriteString(strings.Join(params, ", "))
	sig.WriteString(") {\n")
	frag := sig.String()

	body, err := c.assemble(logger, g, order, frag, true)
	if err != nil {
		return "", err
	}
	return calls + frag + body + "}\n\n", nil
}

// calleeSources emits the function source of every graph g calls, skipping
// direct self-calls and sources already present in prior or emitted here.
func (c *Compiler) calleeSources(logger *slog.Logger, g *graph.Graph, prior string) (string, error) {
	var out strings.Builder
	for _, id := range g.Calls {
		n, ok := g.Node(id)
		if !ok {
			continue
		}
		target, ok := g.CallTarget(n)
		if !ok {
			return "", fmt.Errorf("call %s has no target function", n.ID)
		}
		if target.ID == g.ID {
			continue
		}
		src, err := c.functionSource(logger, target)
		if err != nil {
			return "", fmt.Errorf("function %q: %w", target.Name, err)
		}
		if src == "" {
			return "", fmt.Errorf("function %q produced no source", target.Name)
		}
		if strings.Contains(prior, src) || strings.Contains(out.String(), src) {
			continue
		}
		out.WriteString(src)
	}
	return out.String(), nil
}

// checkCalls rejects graphs whose custom functions call each other in a
// cycle. Direct self-calls are left to calleeSources.
func (c *Compiler) checkCalls(g *graph.Graph) error {
	calls := dag.New()
	calls.AddNode(g.ID)
	queue := []*graph.Graph{g}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, id := range cur.Calls {
			n, ok := cur.Node(id)
			if !ok {
				continue
			}
			target, ok := cur.CallTarget(n)
			if !ok || target.ID == cur.ID {
				continue
			}
			if !calls.Has(target.ID) {
				calls.AddNode(target.ID)
				queue = append(queue, target)
			}
			if err := calls.AddEdge(cur.ID, target.ID); err != nil {
				return err
			}
		}
	}
	if err := calls.DetectCycles(); err != nil {
		return fmt.Errorf("recursive custom functions: %w", err)
	}
	return nil
}

func (c *Compiler) preamble(g *graph.Graph) string {
	var b strings.Builder
	b.WriteString("#version 330 core\n")
	b.WriteString("out vec4 FragColor;\n")
	b.WriteString("in vec2 UV;\n")
	b.WriteString("const float PI = 3.14159265359;\n")
	b.WriteString("const float Rad2Deg = (180.0 / PI);\n")
	b.WriteString("const float Deg2Rad = (PI / 180.0);\n")
	b.WriteString("const float RandomSeed = " + floatLit(c.seedFor(g)) + ";\n")
	for i := range c.samplers {
		b.WriteString("uniform sampler2D Input" + strconv.Itoa(i) + ";\n")
	}
	b.WriteString(hashFunc)
	return b.String()
}

// assemble builds the body shared by both modes. prior is the source of the
// enclosing scope that precedes the body (a function signature) and takes
// part in deduplication and variable lookups.
func (c *Compiler) assemble(logger *slog.Logger, g *graph.Graph, order []*node.Node, prior string, asFunction bool) (string, error) {
	out, ok := g.Node(g.OutputNode)
	if !ok {
		return "", errNoOutput
	}

	var b strings.Builder
	b.WriteString(c.sizeDecl(g))
	b.WriteString("vec2 pos = UV;\n")
	b.WriteString(c.paramDecls(logger, g))

	e := &emitter{c: c, g: g}
	for _, n := range order {
		buf := prior + b.String()
		frag, err := e.fragment(n, buf)
		if err != nil {
			return "", fmt.Errorf("node %s (%s): %w", n.ID, n.Type, err)
		}
		if frag == "" {
			return "", fmt.Errorf("node %s (%s) emitted nothing", n.ID, n.Type)
		}
		if !strings.Contains(buf, frag) {
			b.WriteString(frag)
		}
	}

	result := resultRef(out)
	if asFunction {
		if g.OutputType() == port.Bool {
			result = "bool(" + result + ")"
		}
		b.WriteString("return " + result + ";\n")
	} else {
		b.WriteString("FragColor = vec4(" + result + ");\n")
	}
	return b.String(), nil
}

// resultRef names the value a node produces: output 0 for value-only kinds,
// output 1 for everything led by an Execute output.
func resultRef(n *node.Node) string {
	if node.IsValueOnly(n) {
		return n.ShaderID() + "0"
	}
	return n.ShaderID() + "1"
}

func (c *Compiler) sizeDecl(g *graph.Graph) string {
	if top := g.TopNode(); top != nil {
		return fmt.Sprintf("vec2 size = vec2(%d,%d);\n", top.Width, top.Height)
	}
	if g.ParentGraph != "" {
		if parent, ok := c.arena.Graph(g.ParentGraph); ok {
			return fmt.Sprintf("vec2 size = vec2(%d,%d);\n", parent.Width, parent.Height)
		}
	}
	return "vec2 size = vec2(0);\n"
}

// paramDecls const-folds the top graph's constant-valued parameters.
// Function-valued parameters are evaluated elsewhere and never declared.
func (c *Compiler) paramDecls(logger *slog.Logger, g *graph.Graph) string {
	top := g.TopGraph()
	var b strings.Builder
	declared := make(map[string]bool)
	params := append(append([]*graph.Parameter(nil), top.Parameters()...), top.CustomParameters()...)
	for _, p := range params {
		if p.IsFunction() || declared[p.ShaderName()] {
			continue
		}
		decl, ok := paramDecl(p)
		if !ok {
			logger.Debug("Parameter has no shader representation.", "parameter", p.Name, "type", p.Type)
			continue
		}
		declared[p.ShaderName()] = true
		b.WriteString(decl)
	}
	return b.String()
}

func paramDecl(p *graph.Parameter) (string, bool) {
	name := p.ShaderName()
	switch t := port.Resolve(p.Type); t {
	case port.Bool:
		v, ok := node.ToBool(p.Value)
		if !ok {
			return "", false
		}
		return "bool " + name + " = " + strconv.FormatBool(v) + ";\n", true
	case port.Float:
		v, ok := node.ToFloat(p.Value)
		if !ok {
			return "", false
		}
		return "float " + name + " = " + floatLit(v) + ";\n", true
	case port.Float2, port.Float3, port.Float4:
		v, ok := node.ToVec(p.Value)
		if !ok {
			return "", false
		}
		glsl, _ := port.GLSLType(t)
		return glsl + " " + name + " = " + vecLit(t, v) + ";\n", true
	}
	return "", false
}
