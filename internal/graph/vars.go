package graph

import (
	"math"
	"sort"

	"github.com/specialistvlad/texgraph/internal/node"
	"github.com/specialistvlad/texgraph/internal/port"
)

// Var is a scope variable: a typed value readable by GetVar nodes and
// written by SetVar nodes, args and the scope preamble.
type Var struct {
	Name  string
	Type  port.Tag
	Value any
}

// Builtin variable names declared in every function scope.
const (
	VarPI         = "PI"
	VarRad2Deg    = "Rad2Deg"
	VarDeg2Rad    = "Deg2Rad"
	VarRandomSeed = "RandomSeed"
	VarPos        = "pos"
	VarSize       = "size"
)

func (g *Graph) initBuiltinVars() {
	g.SetVar(VarPI, float32(math.Pi), port.Float)
	g.SetVar(VarRad2Deg, float32(180/math.Pi), port.Float)
	g.SetVar(VarDeg2Rad, float32(math.Pi/180), port.Float)
	g.SetVar(VarRandomSeed, g.RandomSeed, port.Float)
	g.SetVar(VarPos, node.Vec{}, port.Float2)
	g.SetVar(VarSize, node.Vec{}, port.Float2)
}

// SetVar declares or overwrites a variable.
func (g *Graph) SetVar(name string, v any, t port.Tag) {
	if name == "" {
		return
	}
	g.vars[name] = &Var{Name: name, Type: t, Value: v}
}

// Var returns the value of a variable.
func (g *Graph) Var(name string) (any, bool) {
	v, ok := g.vars[name]
	if !ok {
		return nil, false
	}
	return v.Value, true
}

// VarType returns the declared type of a variable.
func (g *Graph) VarType(name string) (port.Tag, bool) {
	v, ok := g.vars[name]
	if !ok {
		return 0, false
	}
	return v.Type, true
}

// HasVar reports whether a variable is declared.
func (g *Graph) HasVar(name string) bool {
	_, ok := g.vars[name]
	return ok
}

// RemoveVar deletes a variable.
func (g *Graph) RemoveVar(name string) {
	delete(g.vars, name)
}

// AvailableVars returns the sorted names of variables whose type
// intersects t.
func (g *Graph) AvailableVars(t port.Tag) []string {
	var out []string
	for name, v := range g.vars {
		if v.Type.Intersects(t) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
