// This file contains the logic for translating decoded document blocks into
// graph.GraphData, the form graph.Restore rebuilds graphs from.

package hcl_adapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/texgraph/internal/ctxlog"
	"github.com/specialistvlad/texgraph/internal/graph"
	"github.com/specialistvlad/texgraph/internal/nodeid"
	"github.com/specialistvlad/texgraph/internal/registry"
)

// scope resolves custom function names to the graph ids assigned to them.
// Inner scopes shadow outer ones.
type scope struct {
	functions map[string]string
	parent    *scope
}

func (s *scope) lookup(name string) (string, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if id, ok := cur.functions[name]; ok {
			return id, true
		}
	}
	return "", false
}

// translator turns the blocks of one file into GraphData.
type translator struct {
	ctx      context.Context
	logger   *slog.Logger
	registry *registry.Registry
	strict   bool
}

// translateGraph converts a graph block and everything nested in it.
func (t *translator) translateGraph(b *GraphBlock) (*graph.GraphData, error) {
	logger := t.logger.With("graph", b.Name)
	logger.Debug("Translating graph block.", "nodes", len(b.Nodes), "functions", len(b.Functions), "custom_functions", len(b.CustomFunctions))

	d := &graph.GraphData{
		ID:           nodeid.New(),
		Name:         b.Name,
		Width:        b.Width,
		Height:       b.Height,
		AbsoluteSize: b.AbsoluteSize,
		RandomSeed:   float32(b.RandomSeed),
		Version:      b.Version,
	}

	sc, err := declare(nil, b.CustomFunctions)
	if err != nil {
		return nil, fmt.Errorf("graph %q: %w", b.Name, err)
	}

	hosted := make(map[string]*FunctionBlock, len(b.Functions))
	for _, fb := range b.Functions {
		if _, dup := hosted[fb.Name]; dup {
			return nil, fmt.Errorf("graph %q: function %q declared twice", b.Name, fb.Name)
		}
		hosted[fb.Name] = fb
	}

	labels, hosts, err := t.translateBody(logger, d, b.Nodes, b.Connections, sc, hosted)
	if err != nil {
		return nil, fmt.Errorf("graph %q: %w", b.Name, err)
	}

	for _, fb := range b.Functions {
		hostID, ok := hosts[fb.Name]
		if !ok {
			logger.Warn("Function is not hosted by any node, skipping it.", "function", fb.Name)
			continue
		}
		fd, inner, err := t.translateFunction(fb, nodeid.New(), sc)
		if err != nil {
			return nil, fmt.Errorf("graph %q: %w", b.Name, err)
		}
		d.Functions = append(d.Functions, graph.HostedFunction{Host: hostID, Graph: *fd})
		for label, id := range inner {
			labels[fb.Name+"."+label] = id
		}
	}

	if d.CustomFunctions, err = t.translateCustom(b.CustomFunctions, sc); err != nil {
		return nil, fmt.Errorf("graph %q: %w", b.Name, err)
	}

	for _, pb := range b.Parameters {
		pd, custom, err := t.translateParameter(logger, pb, labels, sc)
		if err != nil {
			return nil, fmt.Errorf("graph %q: %w", b.Name, err)
		}
		switch {
		case pd == nil:
		case custom:
			d.CustomParameters = append(d.CustomParameters, *pd)
		default:
			d.Parameters = append(d.Parameters, *pd)
		}
	}
	return d, nil
}

// declare opens a scope holding fresh ids for blocks.
func declare(parent *scope, blocks []*FunctionBlock) (*scope, error) {
	sc := &scope{functions: make(map[string]string, len(blocks)), parent: parent}
	for _, fb := range blocks {
		if _, dup := sc.functions[fb.Name]; dup {
			return nil, fmt.Errorf("custom function %q declared twice", fb.Name)
		}
		sc.functions[fb.Name] = nodeid.New()
	}
	return sc, nil
}

// translateCustom converts the custom functions declared in sc.
func (t *translator) translateCustom(blocks []*FunctionBlock, sc *scope) ([]graph.GraphData, error) {
	var out []graph.GraphData
	for _, fb := range blocks {
		fd, _, err := t.translateFunction(fb, sc.functions[fb.Name], sc)
		if err != nil {
			return nil, err
		}
		out = append(out, *fd)
	}
	return out, nil
}

// translateFunction converts a function block. outer is the scope the
// function is declared in, so it can call itself and its siblings. The
// returned map holds the ids of the function's node labels.
func (t *translator) translateFunction(b *FunctionBlock, id string, outer *scope) (*graph.GraphData, map[string]string, error) {
	logger := t.logger.With("function", b.Name)
	d := &graph.GraphData{
		ID:             id,
		Name:           b.Name,
		Flavor:         graph.Function.String(),
		RandomSeed:     float32(b.RandomSeed),
		SelfScheduling: b.SelfScheduling,
	}
	if isExprDefined(t.ctx, b.ExpectedOutput, "expected_output") {
		tag, err := typeExprToTag(t.ctx, b.ExpectedOutput)
		if err != nil {
			return nil, nil, fmt.Errorf("function %q, expected_output: %w", b.Name, err)
		}
		d.ExpectedOutput = tag
	}

	sc, err := declare(outer, b.CustomFunctions)
	if err != nil {
		return nil, nil, fmt.Errorf("function %q: %w", b.Name, err)
	}
	labels, _, err := t.translateBody(logger, d, b.Nodes, b.Connections, sc, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("function %q: %w", b.Name, err)
	}
	if b.OutputNode != "" {
		if id, ok := labels[b.OutputNode]; ok {
			d.OutputNode = id
		} else {
			logger.Warn("Output node is not declared, function has no output.", "node", b.OutputNode)
		}
	}
	if d.CustomFunctions, err = t.translateCustom(b.CustomFunctions, sc); err != nil {
		return nil, nil, fmt.Errorf("function %q: %w", b.Name, err)
	}
	return d, labels, nil
}

// translateBody converts node and connection blocks into d. It returns the
// label-to-id map and, for hosted functions, the id of the node hosting each.
func (t *translator) translateBody(
	logger *slog.Logger,
	d *graph.GraphData,
	nodes []*NodeBlock,
	conns []*ConnectionBlock,
	sc *scope,
	hosted map[string]*FunctionBlock,
) (map[string]string, map[string]string, error) {
	labels := make(map[string]string, len(nodes))
	hosts := make(map[string]string)

	for _, nb := range nodes {
		if _, dup := labels[nb.Label]; dup {
			return nil, nil, fmt.Errorf("node %q declared twice", nb.Label)
		}
		if _, known := t.registry.Lookup(nb.Type); !known && t.strict {
			return nil, nil, fmt.Errorf("node %q: %w: %s", nb.Label, ErrUnknownNodeType, nb.Type)
		}

		nd := graph.NodeData{
			ID:           nodeid.New(),
			Type:         nb.Type,
			Name:         nb.Name,
			Width:        nb.Width,
			Height:       nb.Height,
			AbsoluteSize: nb.AbsoluteSize,
		}
		if nd.Name == "" {
			nd.Name = nb.Label
		}
		if isExprDefined(t.ctx, nb.Props, "props") {
			native, err := evalNative(nb.Props)
			if err != nil {
				return nil, nil, fmt.Errorf("node %q, props: %w", nb.Label, err)
			}
			props, ok := native.(map[string]any)
			if !ok {
				return nil, nil, fmt.Errorf("node %q: props must be an object, got %T", nb.Label, native)
			}
			nd.Props = props
		}

		if nb.Function != "" {
			if _, ok := hosted[nb.Function]; ok {
				if _, taken := hosts[nb.Function]; taken {
					logger.Warn("Function is already hosted by another node.", "node", nb.Label, "function", nb.Function)
				} else {
					hosts[nb.Function] = nd.ID
				}
			} else if id, ok := sc.lookup(nb.Function); ok {
				if nd.Props == nil {
					nd.Props = make(map[string]any)
				}
				nd.Props["Function"] = id
			} else {
				logger.Warn("Unknown function referenced by node.", "node", nb.Label, "function", nb.Function)
			}
		}

		labels[nb.Label] = nd.ID
		d.Nodes = append(d.Nodes, nd)
	}

	type outlet struct {
		node  string
		index int
	}
	fanout := make(map[outlet]int)
	for _, cb := range conns {
		from, ok := labels[cb.From]
		if !ok {
			logger.Warn("Skipping connection from an undeclared node.", "from", cb.From, "to", cb.To)
			continue
		}
		to, ok := labels[cb.To]
		if !ok {
			logger.Warn("Skipping connection to an undeclared node.", "from", cb.From, "to", cb.To)
			continue
		}
		key := outlet{from, cb.Output}
		d.Connections = append(d.Connections, graph.Connection{
			Parent:   from,
			Node:     to,
			Index:    cb.Input,
			OutIndex: cb.Output,
			Order:    fanout[key],
		})
		fanout[key]++
	}
	return labels, hosts, nil
}

// translateParameter converts a parameter block. A nil result means the
// block was skipped; custom reports a standalone parameter. Nodes of hosted
// functions are addressed as "function.label".
func (t *translator) translateParameter(logger *slog.Logger, b *ParameterBlock, labels map[string]string, sc *scope) (*graph.ParameterData, bool, error) {
	pd := &graph.ParameterData{Name: b.Name, Section: b.Section}

	if b.Node != "" {
		id, ok := labels[b.Node]
		if !ok {
			logger.Warn("Skipping parameter of an undeclared node.", "parameter", b.Name, "node", b.Node)
			return nil, false, nil
		}
		if b.Property == "" {
			return nil, false, fmt.Errorf("parameter %q: property is required with node", b.Name)
		}
		pd.Key = nodeid.NewAddress(id, b.Property).String()
	}

	if b.Function != nil {
		if pd.Key == "" {
			return nil, false, fmt.Errorf("parameter %q: a function-valued parameter must name a node and property", b.Name)
		}
		fd, _, err := t.translateFunction(b.Function, nodeid.New(), sc)
		if err != nil {
			return nil, false, fmt.Errorf("parameter %q: %w", b.Name, err)
		}
		pd.Function = fd
		pd.Type = fd.ExpectedOutput
		return pd, false, nil
	}

	if isExprDefined(t.ctx, b.Value, "value") {
		v, err := evalNative(b.Value)
		if err != nil {
			return nil, false, fmt.Errorf("parameter %q, value: %w", b.Name, err)
		}
		pd.Value = v
	}
	if isExprDefined(t.ctx, b.Type, "type") {
		tag, err := typeExprToTag(t.ctx, b.Type)
		if err != nil {
			return nil, false, fmt.Errorf("parameter %q, type: %w", b.Name, err)
		}
		pd.Type = tag
	} else {
		pd.Type = inferTag(pd.Value)
	}
	return pd, pd.Key == "", nil
}

// ctxLogger is the logger translation runs with.
func ctxLogger(ctx context.Context, path string) *slog.Logger {
	return ctxlog.FromContext(ctx).With("file", path)
}
