package graph

import (
	"strings"

	"github.com/specialistvlad/texgraph/internal/node"
	"github.com/specialistvlad/texgraph/internal/nodeid"
	"github.com/specialistvlad/texgraph/internal/port"
)

// Parameter is a promoted value. Node parameters override a node property
// (keyed "nodeID.property"); custom parameters stand alone. A parameter
// whose Function is set takes its value from that function graph's Result.
type Parameter struct {
	Name     string
	Key      string
	Type     port.Tag
	Value    any
	Function string
	Section  string
}

// IsFunction reports whether the parameter is function-valued.
func (p *Parameter) IsFunction() bool {
	return p.Function != ""
}

// ShaderName is the identifier the parameter is declared under in
// generated source and in function scopes.
func (p *Parameter) ShaderName() string {
	return "p_" + strings.ReplaceAll(strings.ReplaceAll(p.Name, " ", ""), "-", "")
}

// SetParameter promotes property prop of node nodeID with a constant value.
// The type is inferred from the value unless t is non-zero.
func (g *Graph) SetParameter(nodeID, prop, name string, v any, t port.Tag) *Parameter {
	key := nodeid.NewAddress(nodeID, prop).String()
	p, exists := g.params[key]
	if !exists {
		p = &Parameter{Key: key}
		g.params[key] = p
		g.paramOrder = append(g.paramOrder, key)
	}
	if name == "" {
		name = prop
	}
	p.Name = name
	p.Function = ""
	p.Value = v
	p.Type = t
	if t == 0 {
		p.Type = inferTag(v)
	}
	return p
}

// SetParameterFunction promotes a property with a function-valued
// parameter backed by function graph fnID.
func (g *Graph) SetParameterFunction(nodeID, prop, name, fnID string) (*Parameter, error) {
	fn, ok := g.arena.Graph(fnID)
	if !ok {
		return nil, ErrGraphNotFound
	}
	p := g.SetParameter(nodeID, prop, name, nil, fn.ExpectedOutput)
	p.Function = fnID
	fn.detach()
	fn.ParentGraph = g.ID
	return p, nil
}

// Parameter returns the parameter promoted for nodeID.prop.
func (g *Graph) Parameter(nodeID, prop string) (*Parameter, bool) {
	p, ok := g.params[nodeid.NewAddress(nodeID, prop).String()]
	return p, ok
}

// RemoveParameter drops the parameter for nodeID.prop.
func (g *Graph) RemoveParameter(nodeID, prop string) {
	key := nodeid.NewAddress(nodeID, prop).String()
	if _, ok := g.params[key]; !ok {
		return
	}
	delete(g.params, key)
	g.paramOrder = removeID(g.paramOrder, key)
}

// Parameters returns the node parameters in promotion order.
func (g *Graph) Parameters() []*Parameter {
	out := make([]*Parameter, 0, len(g.paramOrder))
	for _, key := range g.paramOrder {
		out = append(out, g.params[key])
	}
	return out
}

// ParameterOverride returns the value the top graph promotes for
// nodeID.prop. Function-valued parameters yield their function's last
// Result.
func (g *Graph) ParameterOverride(nodeID, prop string) (any, bool) {
	top := g.TopGraph()
	p, ok := top.Parameter(nodeID, prop)
	if !ok {
		return nil, false
	}
	return top.ParameterValue(p)
}

// ParameterValue resolves a parameter's current value.
func (g *Graph) ParameterValue(p *Parameter) (any, bool) {
	if !p.IsFunction() {
		return p.Value, p.Value != nil
	}
	fn, ok := g.arena.Graph(p.Function)
	if !ok || fn.Result == nil {
		return nil, false
	}
	return fn.Result, true
}

// AddCustomParameter appends a standalone parameter.
func (g *Graph) AddCustomParameter(name string, v any, t port.Tag) *Parameter {
	if t == 0 {
		t = inferTag(v)
	}
	p := &Parameter{Name: name, Value: v, Type: t}
	g.custom = append(g.custom, p)
	return p
}

// RemoveCustomParameter drops a standalone parameter.
func (g *Graph) RemoveCustomParameter(p *Parameter) bool {
	for i, c := range g.custom {
		if c == p {
			g.custom = append(g.custom[:i], g.custom[i+1:]...)
			return true
		}
	}
	return false
}

// CustomParameters returns the standalone parameters.
func (g *Graph) CustomParameters() []*Parameter {
	return g.custom
}

func inferTag(v any) port.Tag {
	switch v.(type) {
	case bool:
		return port.Bool
	case node.Vec, []any, []float32, []float64:
		return port.Float4
	}
	return port.Float
}
