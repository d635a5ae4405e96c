package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all top-level blocks of a document.
type fileRoot struct {
	Graphs []*GraphBlock `hcl:"graph,block"`
	Remain hcl.Body      `hcl:",remain"`
}

// GraphBlock is a value graph: image operators, their promoted parameters,
// the functions hosted by pixel processors and the custom functions calls
// can reach.
type GraphBlock struct {
	Name            string             `hcl:"name,label"`
	Width           int                `hcl:"width,optional"`
	Height          int                `hcl:"height,optional"`
	AbsoluteSize    bool               `hcl:"absolute_size,optional"`
	RandomSeed      float64            `hcl:"random_seed,optional"`
	Version         int                `hcl:"version,optional"`
	Parameters      []*ParameterBlock  `hcl:"parameter,block"`
	Nodes           []*NodeBlock       `hcl:"node,block"`
	Connections     []*ConnectionBlock `hcl:"connection,block"`
	Functions       []*FunctionBlock   `hcl:"function,block"`
	CustomFunctions []*FunctionBlock   `hcl:"custom_function,block"`
}

// FunctionBlock is a function graph, either hosted by a node or declared as
// a custom function.
type FunctionBlock struct {
	Name            string             `hcl:"name,label"`
	ExpectedOutput  hcl.Expression     `hcl:"expected_output,optional"`
	OutputNode      string             `hcl:"output_node,optional"`
	RandomSeed      float64            `hcl:"random_seed,optional"`
	SelfScheduling  bool               `hcl:"self_scheduling,optional"`
	Nodes           []*NodeBlock       `hcl:"node,block"`
	Connections     []*ConnectionBlock `hcl:"connection,block"`
	CustomFunctions []*FunctionBlock   `hcl:"custom_function,block"`
}

// NodeBlock declares one node. The label is the document-local handle
// connections and parameters use; it also names the node unless Name is
// set. Function names the hosted function of a pixel processor or the
// custom function of a call.
type NodeBlock struct {
	Label        string         `hcl:"label,label"`
	Type         string         `hcl:"type"`
	Name         string         `hcl:"name,optional"`
	Width        int            `hcl:"width,optional"`
	Height       int            `hcl:"height,optional"`
	AbsoluteSize bool           `hcl:"absolute_size,optional"`
	Function     string         `hcl:"function,optional"`
	Props        hcl.Expression `hcl:"props,optional"`
}

// ConnectionBlock links output Output of node From to input Input of node To.
type ConnectionBlock struct {
	From   string `hcl:"from"`
	Output int    `hcl:"output,optional"`
	To     string `hcl:"to"`
	Input  int    `hcl:"input"`
}

// ParameterBlock declares a graph parameter. With Node and Property set it
// promotes that node property; otherwise it is a custom parameter. A nested
// function block makes it function-valued.
type ParameterBlock struct {
	Name     string         `hcl:"name,label"`
	Node     string         `hcl:"node,optional"`
	Property string         `hcl:"property,optional"`
	Type     hcl.Expression `hcl:"type,optional"`
	Value    hcl.Expression `hcl:"value,optional"`
	Section  string         `hcl:"section,optional"`
	Function *FunctionBlock `hcl:"function,block"`
}
