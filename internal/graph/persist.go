package graph

import (
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/texgraph/internal/node"
	"github.com/specialistvlad/texgraph/internal/nodeid"
	"github.com/specialistvlad/texgraph/internal/port"
)

// GraphData is the persisted form of a graph and every function graph it
// owns.
type GraphData struct {
	ID                 string           `json:"id,omitempty"`
	Name               string           `json:"name"`
	Flavor             string           `json:"flavor,omitempty"`
	Nodes              []NodeData       `json:"nodes"`
	Connections        []Connection     `json:"connections"`
	Outputs            []string         `json:"outputs"`
	Inputs             []string         `json:"inputs"`
	DefaultTextureType node.PixelFormat `json:"defaultTextureType"`
	ShiftX             float32          `json:"shiftX"`
	ShiftY             float32          `json:"shiftY"`
	Zoom               float32          `json:"zoom"`
	Width              int              `json:"width"`
	Height             int              `json:"height"`
	AbsoluteSize       bool             `json:"absoluteSize,omitempty"`
	RandomSeed         float32          `json:"randomSeed"`
	Version            int              `json:"version"`
	Parameters         []ParameterData  `json:"parameters,omitempty"`
	CustomParameters   []ParameterData  `json:"customParameters,omitempty"`
	CustomFunctions    []GraphData      `json:"customFunctions,omitempty"`
	Functions          []HostedFunction `json:"functions,omitempty"`

	OutputNode     string   `json:"outputNode,omitempty"`
	ExpectedOutput port.Tag `json:"expectedOutput,omitempty"`
	SelfScheduling bool     `json:"selfScheduling,omitempty"`
}

// NodeData is the persisted form of one node. Type selects the factory.
type NodeData struct {
	ID           string           `json:"id"`
	Type         string           `json:"type"`
	Name         string           `json:"name"`
	Width        int              `json:"width"`
	Height       int              `json:"height"`
	AbsoluteSize bool             `json:"absoluteSize,omitempty"`
	Format       node.PixelFormat `json:"format"`
	Props        map[string]any   `json:"props,omitempty"`
}

// ParameterData is the persisted form of a parameter.
type ParameterData struct {
	Key      string     `json:"key,omitempty"`
	Name     string     `json:"name"`
	Type     port.Tag   `json:"type"`
	Value    any        `json:"value,omitempty"`
	Section  string     `json:"section,omitempty"`
	Function *GraphData `json:"function,omitempty"`
}

// HostedFunction pairs a function graph with the node that runs it.
type HostedFunction struct {
	Host  string    `json:"host"`
	Graph GraphData `json:"graph"`
}

// Marshal serializes g and the function graphs it owns.
func Marshal(a *Arena, g *Graph) ([]byte, error) {
	d, err := Snapshot(a, g)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(d, "", "  ")
}

// Snapshot captures g as GraphData.
func Snapshot(a *Arena, g *Graph) (*GraphData, error) {
	return snapshot(a, g, 0)
}

func snapshot(a *Arena, g *Graph, depth int) (*GraphData, error) {
	if depth > len(a.graphs) {
		return nil, fmt.Errorf("graph %s: function ownership cycle", g.Name)
	}
	d := &GraphData{
		ID:                 g.ID,
		Name:               g.Name,
		Connections:        g.Connections(),
		Outputs:            append([]string(nil), g.OutputNodes...),
		Inputs:             append([]string(nil), g.InputNodes...),
		DefaultTextureType: g.Format,
		ShiftX:             g.ShiftX,
		ShiftY:             g.ShiftY,
		Zoom:               g.Zoom,
		Width:              g.Width,
		Height:             g.Height,
		AbsoluteSize:       g.AbsoluteSize,
		RandomSeed:         g.RandomSeed,
		Version:            g.Version,
	}
	if g.Flavor == Function {
		d.Flavor = Function.String()
		d.OutputNode = g.OutputNode
		d.ExpectedOutput = g.ExpectedOutput
		d.SelfScheduling = g.SelfScheduling
	}
	for _, n := range g.nodes {
		d.Nodes = append(d.Nodes, NodeData{
			ID:           n.ID,
			Type:         n.Type,
			Name:         n.Name,
			Width:        n.Width,
			Height:       n.Height,
			AbsoluteSize: n.AbsoluteSize,
			Format:       n.Format,
			Props:        n.Values(),
		})
	}
	for _, p := range g.Parameters() {
		pd := ParameterData{Key: p.Key, Name: p.Name, Type: p.Type, Value: p.Value, Section: p.Section}
		if p.IsFunction() {
			fn, ok := a.Graph(p.Function)
			if !ok {
				return nil, fmt.Errorf("parameter %s: %w", p.Key, ErrGraphNotFound)
			}
			fd, err := snapshot(a, fn, depth+1)
			if err != nil {
				return nil, err
			}
			pd.Value = nil
			pd.Function = fd
		}
		d.Parameters = append(d.Parameters, pd)
	}
	for _, p := range g.custom {
		d.CustomParameters = append(d.CustomParameters, ParameterData{Name: p.Name, Type: p.Type, Value: p.Value, Section: p.Section})
	}
	for _, id := range g.CustomFunctions {
		fn, ok := a.Graph(id)
		if !ok {
			continue
		}
		fd, err := snapshot(a, fn, depth+1)
		if err != nil {
			return nil, err
		}
		d.CustomFunctions = append(d.CustomFunctions, *fd)
	}
	for _, other := range a.graphs {
		if other.HostNode == "" {
			continue
		}
		if _, hosted := g.lookup[other.HostNode]; !hosted {
			continue
		}
		fd, err := snapshot(a, other, depth+1)
		if err != nil {
			return nil, err
		}
		d.Functions = append(d.Functions, HostedFunction{Host: other.HostNode, Graph: *fd})
	}
	return d, nil
}

// Unmarshal rebuilds a graph and its function graphs from Marshal output.
func Unmarshal(a *Arena, data []byte) (*Graph, error) {
	var d GraphData
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decoding graph document: %w", err)
	}
	return Restore(a, &d)
}

// Restore rebuilds a graph from GraphData in two phases: every graph's
// nodes are instantiated and rehydrated first, then calls are bound and
// connections replayed silently, and finally every graph is marked Ready.
// Bad nodes and bad connection records are logged and skipped.
func Restore(a *Arena, d *GraphData) (*Graph, error) {
	r := &restorer{arena: a}
	g, err := r.build(d, 0)
	if err != nil {
		for _, built := range r.built {
			a.RemoveGraph(built.g.ID)
		}
		return nil, err
	}
	r.link()
	return g, nil
}

type pendingGraph struct {
	g    *Graph
	data *GraphData
}

type restorer struct {
	arena *Arena
	built []pendingGraph
}

func (r *restorer) build(d *GraphData, depth int) (*Graph, error) {
	a := r.arena
	if depth > 64 {
		return nil, fmt.Errorf("graph %s: functions nested too deeply", d.Name)
	}
	flavor := Value
	if d.Flavor == Function.String() {
		flavor = Function
	}
	w, h := d.Width, d.Height
	if w <= 0 {
		w = DefaultSize
	}
	if h <= 0 {
		h = DefaultSize
	}

	g := a.NewGraph(d.Name, flavor, w, h)
	if d.ID != "" {
		if err := a.rekey(g, d.ID); err != nil {
			a.RemoveGraph(g.ID)
			return nil, err
		}
	}
	g.State = Loading
	g.Format = d.DefaultTextureType
	g.ShiftX, g.ShiftY = d.ShiftX, d.ShiftY
	if d.Zoom != 0 {
		g.Zoom = d.Zoom
	}
	g.AbsoluteSize = d.AbsoluteSize
	g.RandomSeed = d.RandomSeed
	g.Version = d.Version
	if flavor == Function {
		g.SetVar(VarRandomSeed, g.RandomSeed, port.Float)
		g.SelfScheduling = d.SelfScheduling
		if d.ExpectedOutput != 0 {
			g.ExpectedOutput = d.ExpectedOutput
		}
	}
	r.built = append(r.built, pendingGraph{g: g, data: d})

	for i := range d.CustomFunctions {
		fn, err := r.build(&d.CustomFunctions[i], depth+1)
		if err != nil {
			return nil, err
		}
		if err := fn.AttachToGraph(g.ID); err != nil {
			return nil, err
		}
	}

	for _, nd := range d.Nodes {
		r.restoreNode(g, nd)
	}
	if flavor == Function && d.OutputNode != "" {
		if err := g.SetOutputNode(d.OutputNode); err != nil {
			a.logger.Warn("Output node missing from function graph.", "graph", g.Name, "node", d.OutputNode)
		}
	}

	for _, pd := range d.Parameters {
		addr, err := nodeid.Parse(pd.Key)
		if err != nil {
			a.logger.Warn("Skipping parameter with a bad key.", "graph", g.Name, "key", pd.Key, "error", err)
			continue
		}
		if pd.Function != nil {
			fn, err := r.build(pd.Function, depth+1)
			if err != nil {
				return nil, err
			}
			if _, err := g.SetParameterFunction(addr.Node, addr.Property, pd.Name, fn.ID); err != nil {
				return nil, err
			}
			continue
		}
		v, err := node.Coerce(pd.Type, pd.Value)
		if err != nil {
			a.logger.Warn("Skipping parameter with a bad value.", "graph", g.Name, "key", pd.Key, "error", err)
			continue
		}
		p := g.SetParameter(addr.Node, addr.Property, pd.Name, v, pd.Type)
		p.Section = pd.Section
	}
	for _, pd := range d.CustomParameters {
		v, err := node.Coerce(pd.Type, pd.Value)
		if err != nil {
			a.logger.Warn("Skipping custom parameter with a bad value.", "graph", g.Name, "name", pd.Name, "error", err)
			continue
		}
		p := g.AddCustomParameter(pd.Name, v, pd.Type)
		p.Section = pd.Section
	}

	for i := range d.Functions {
		hf := &d.Functions[i]
		fn, err := r.build(&hf.Graph, depth+1)
		if err != nil {
			return nil, err
		}
		if err := fn.AttachTo(hf.Host); err != nil {
			a.logger.Warn("Hosted function lost its host node.", "graph", g.Name, "host", hf.Host)
		}
	}
	return g, nil
}

func (r *restorer) restoreNode(g *Graph, nd NodeData) {
	logger := r.arena.logger
	n := g.CreateNode(nd.Type)
	if n == nil {
		return
	}
	if nd.ID != "" {
		n.SetID(nd.ID)
	}
	if nd.Name != "" {
		n.Name = nd.Name
	}
	if nd.Width > 0 && nd.Height > 0 {
		n.Width, n.Height = nd.Width, nd.Height
	}
	n.AbsoluteSize = nd.AbsoluteSize
	n.Format = nd.Format
	for _, p := range n.Properties() {
		v, ok := nd.Props[p.Name]
		if !ok {
			continue
		}
		if err := n.SetPropertySilent(p.Name, v); err != nil {
			logger.Warn("Skipping node property.", "graph", g.Name, "node", n.ID, "property", p.Name, "error", err)
		}
	}
	if !g.Add(n) {
		logger.Warn("Skipping node that could not be added.", "graph", g.Name, "node", n.ID, "type", nd.Type)
	}
}

// link binds calls, replays connections and readies every built graph.
func (r *restorer) link() {
	for _, pg := range r.built {
		for _, id := range pg.g.Calls {
			n, ok := pg.g.Node(id)
			if !ok {
				continue
			}
			target := n.Kind.(*node.Call).Function
			if target == "" {
				continue
			}
			if err := pg.g.BindCall(id, target); err != nil {
				r.arena.logger.Warn("Call target missing.", "graph", pg.g.Name, "node", id, "target", target, "error", err)
			}
		}
	}
	for _, pg := range r.built {
		pg.g.SetConnections(nil, pg.data.Connections, true)
	}
	for _, pg := range r.built {
		pg.g.refreshCallTypes()
	}
	for _, pg := range r.built {
		pg.g.State = Ready
	}
}
