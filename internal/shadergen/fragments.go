package shadergen

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/specialistvlad/texgraph/internal/graph"
	"github.com/specialistvlad/texgraph/internal/linearize"
	"github.com/specialistvlad/texgraph/internal/node"
	"github.com/specialistvlad/texgraph/internal/port"
)

// emitter renders the fragments of one graph.
type emitter struct {
	c *Compiler
	g *graph.Graph
}

// fragment returns the source n contributes given the buffer emitted so far.
func (e *emitter) fragment(n *node.Node, buf string) (string, error) {
	s := n.ShaderID()
	switch k := n.Kind.(type) {
	case *node.FloatConstant:
		v := k.Value
		if o, ok := e.g.ParameterOverride(n.ID, "Value"); ok {
			if f, ok := node.ToFloat(o); ok {
				v = f
			}
		}
		return "float " + s + "0 = " + floatLit(v) + ";\n", nil

	case *node.VectorConstant:
		v := k.Value
		if o, ok := e.g.ParameterOverride(n.ID, "Vector"); ok {
			if vec, ok := node.ToVec(o); ok {
				v = vec
			}
		}
		t := vecTag(k.Size)
		glsl, ok := port.GLSLType(t)
		if !ok {
			return "", fmt.Errorf("vector constant of size %d", k.Size)
		}
		return glsl + " " + s + "0 = " + vecLit(t, v) + ";\n", nil

	case *node.BoolConstant:
		v := k.Value
		if o, ok := e.g.ParameterOverride(n.ID, "Value"); ok {
			if b, ok := node.ToBool(o); ok {
				v = b
			}
		}
		return "float " + s + "0 = " + boolLit(v) + ";\n", nil

	case *node.GetVar:
		return e.getVar(s, k.Var, buf)

	case *node.SetVar:
		return e.setVar(n, k.Var, buf)

	case *node.Arithmetic:
		a, ta, err := e.input(n, 1)
		if err != nil {
			return "", err
		}
		b, tb, err := e.input(n, 2)
		if err != nil {
			return "", err
		}
		t, ok := node.ResolveBinary(ta, tb)
		if !ok {
			return "", fmt.Errorf("cannot combine %s and %s", ta, tb)
		}
		glsl, _ := valueType(t)
		if sym := k.Op.Symbol(); sym != "" {
			return glsl + " " + s + "1 = " + a + " " + sym + " " + b + ";\n", nil
		}
		return glsl + " " + s + "1 = " + k.Op.Func() + "(" + a + ", " + b + ");\n", nil

	case *node.Unary:
		a, ta, err := e.input(n, 1)
		if err != nil {
			return "", err
		}
		if ta == port.Bool {
			return "", fmt.Errorf("unary operation on bool input")
		}
		glsl, ok := valueType(ta)
		if !ok {
			return "", fmt.Errorf("unsupported input type %s", ta)
		}
		if k.Op == node.OpNegate {
			return glsl + " " + s + "1 = -" + a + ";\n", nil
		}
		return glsl + " " + s + "1 = " + k.Op.Func() + "(" + a + ");\n", nil

	case *node.Random:
		a, ta, err := e.input(n, 1)
		if err != nil {
			return "", err
		}
		seed := floatLit(e.c.seedFor(e.g))
		if ta == port.Float2 {
			return "float " + s + "1 = rand(" + a + " + " + seed + ");\n", nil
		}
		return "float " + s + "1 = rand(vec2(" + a + ", 1.0 - " + a + ") + " + seed + ");\n", nil

	case *node.IfElse:
		return e.ifElse(n)

	case *node.ForLoop:
		return e.forLoop(n, buf)

	case *node.Call:
		return e.call(n)
	}
	return "", fmt.Errorf("node kind %T has no shader form", n.Kind)
}

func (e *emitter) getVar(s, name, buf string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("variable name is empty")
	}
	t, err := e.varType(name)
	if err != nil {
		return "", err
	}
	glsl, ok := valueType(t)
	if !ok {
		return "", fmt.Errorf("variable %q has unsupported type %s", name, t)
	}
	expr := name
	if t == port.Bool {
		expr = "float(" + name + ")"
	}
	decl := glsl + " " + s + "0 = "
	if strings.Contains(buf, decl) {
		return s + "0 = " + expr + ";\n", nil
	}
	return decl + expr + ";\n", nil
}

func (e *emitter) setVar(n *node.Node, name, buf string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("variable name is empty")
	}
	a, t, err := e.input(n, 1)
	if err != nil {
		return "", err
	}
	glsl, ok := valueType(t)
	if !ok {
		return "", fmt.Errorf("variable %q has unsupported type %s", name, t)
	}
	decl := glsl + " " + name + " = "
	var b strings.Builder
	switch {
	case strings.Contains(buf, decl) || isFunctionArg(buf, glsl, name):
		b.WriteString(name + " = " + a + ";\n")
	case t == port.Bool && isFunctionArg(buf, "bool", name):
		b.WriteString(name + " = bool(" + a + ");\n")
	default:
		b.WriteString(decl + a + ";\n")
	}
	b.WriteString(glsl + " " + n.ShaderID() + "1 = " + a + ";\n")
	return b.String(), nil
}

// isFunctionArg reports whether name is declared as a parameter of a
// function signature in buf.
func isFunctionArg(buf, glsl, name string) bool {
	re, err := regexp.Compile(`[A-Za-z0-9_]+\(.*` + regexp.QuoteMeta(glsl+" "+name) + `.*\)`)
	if err != nil {
		return false
	}
	return re.MatchString(buf)
}

func (e *emitter) ifElse(n *node.Node) (string, error) {
	cond, _, err := e.input(n, 1)
	if err != nil {
		return "", err
	}
	a, ta, err := e.input(n, 2)
	if err != nil {
		return "", err
	}
	b, tb, err := e.input(n, 3)
	if err != nil {
		return "", err
	}
	if ta != tb {
		return "", fmt.Errorf("branches differ in type: %s and %s", ta, tb)
	}
	glsl, ok := valueType(ta)
	if !ok {
		return "", fmt.Errorf("unsupported branch type %s", ta)
	}
	s := n.ShaderID() + "1"
	return glsl + " " + s + ";\n" +
		"if (" + cond + " > 0.0) {\n" +
		s + " = " + a + ";\n" +
		"} else {\n" +
		s + " = " + b + ";\n" +
		"}\n", nil
}

func (e *emitter) forLoop(n *node.Node, buf string) (string, error) {
	start, _, err := e.input(n, 1)
	if err != nil {
		return "", err
	}
	end, _, err := e.input(n, 2)
	if err != nil {
		return "", err
	}
	inc, _, err := e.input(n, 3)
	if err != nil {
		return "", err
	}

	var body strings.Builder
	for _, b := range linearize.LoopBody(e.c.arena, e.g, n) {
		scope := buf + body.String()
		frag, err := e.fragment(b, scope)
		if err != nil {
			return "", fmt.Errorf("loop body node %s: %w", b.ID, err)
		}
		if frag == "" {
			return "", fmt.Errorf("loop body node %s emitted nothing", b.ID)
		}
		if !strings.Contains(scope, frag) {
			body.WriteString(frag)
		}
	}
	if body.Len() == 0 {
		return "", fmt.Errorf("loop body is empty")
	}

	s := n.ShaderID() + "1"
	var b strings.Builder
	b.WriteString("\nif (" + start + " <= " + end + ") {\n")
	b.WriteString("for (float " + s + " = " + start + "; " + s + " < " + end + "; " + s + " += " + inc + ") {\n")
	b.WriteString(body.String())
	b.WriteString("}\n}\n")
	b.WriteString("else {\n")
	b.WriteString("for (float " + s + " = " + start + "; " + s + " >= " + end + "; " + s + " -= " + inc + ") {\n")
	b.WriteString(body.String())
	b.WriteString("}\n}\n\n")
	return b.String(), nil
}

func (e *emitter) call(n *node.Node) (string, error) {
	target, ok := e.g.CallTarget(n)
	if !ok {
		return "", fmt.Errorf("call has no target function")
	}
	glsl, ok := valueType(target.OutputType())
	if !ok {
		return "", fmt.Errorf("function %q returns unsupported type %s", target.Name, target.OutputType())
	}
	var args []string
	for i, in := range n.Inputs {
		if in.Type == port.Execute {
			continue
		}
		a, _, err := e.input(n, i)
		if err != nil {
			return "", err
		}
		if port.Resolve(in.Type) == port.Bool {
			a = "bool(" + a + ")"
		}
		args = append(args, a)
	}
	expr := target.FunctionName() + "(" + strings.Join(args, ", ") + ")"
	if target.OutputType() == port.Bool {
		expr = "float(" + expr + ")"
	}
	return glsl + " " + n.ShaderID() + "1 = " + expr + ";\n", nil
}

// input returns the symbol feeding input i of n and its resolved type.
func (e *emitter) input(n *node.Node, i int) (string, port.Tag, error) {
	in := n.Input(i)
	if in == nil {
		return "", 0, fmt.Errorf("input %d does not exist", i)
	}
	ref := in.Reference()
	if ref == nil {
		return "", 0, fmt.Errorf("input %d (%s) is not connected", i, in.Name)
	}
	up, ok := e.c.arena.Node(ref.Node)
	if !ok {
		return "", 0, fmt.Errorf("input %d (%s) references a missing node", i, in.Name)
	}
	t := port.Resolve(ref.Type)
	if gv, ok := up.Kind.(*node.GetVar); ok {
		vt, err := e.varType(gv.Var)
		if err != nil {
			return "", 0, err
		}
		t = vt
	}
	return up.ShaderID() + strconv.Itoa(ref.Index), t, nil
}

// varType resolves the type of a variable from the scope table, then from
// the SetVar nodes writing it, then from the top graph's parameters.
func (e *emitter) varType(name string) (port.Tag, error) {
	if t, ok := e.g.VarType(name); ok {
		return port.Resolve(t), nil
	}
	for _, n := range e.g.Nodes() {
		if sv, ok := n.Kind.(*node.SetVar); ok && sv.Var == name {
			if t := n.ResultType(); t != 0 {
				return t, nil
			}
		}
	}
	top := e.g.TopGraph()
	for _, p := range append(top.Parameters(), top.CustomParameters()...) {
		if p.ShaderName() == name {
			return port.Resolve(p.Type), nil
		}
	}
	return 0, fmt.Errorf("unknown variable %q", name)
}

// seedFor returns the random seed baked into g's source.
func (c *Compiler) seedFor(g *graph.Graph) float32 {
	if c.seed != nil {
		return *c.seed
	}
	return g.TopGraph().RandomSeed
}

// valueType maps a resolved tag to the GLSL type its values are carried in
// inside a body. Booleans are carried as floats; function signatures use
// bool and convert at the boundary.
func valueType(t port.Tag) (string, bool) {
	if t == port.Bool {
		return "float", true
	}
	return port.GLSLType(t)
}

func vecTag(size int) port.Tag {
	switch size {
	case 2:
		return port.Float2
	case 3:
		return port.Float3
	case 4:
		return port.Float4
	}
	return 0
}

// floatLit formats f as a GLSL float literal, always with a decimal point.
func floatLit(f float32) string {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return "0.0"
	}
	s := strconv.FormatFloat(float64(f), 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func boolLit(b bool) string {
	if b {
		return "1.0"
	}
	return "0.0"
}

// vecLit formats the first components of v as a constructor of type t.
func vecLit(t port.Tag, v node.Vec) string {
	glsl, _ := port.GLSLType(t)
	comps := v.Components(port.Components(t))
	parts := make([]string, len(comps))
	for i, c := range comps {
		parts[i] = floatLit(c)
	}
	return glsl + "(" + strings.Join(parts, ",") + ")"
}
