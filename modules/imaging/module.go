// Package imaging registers the image operators of value graphs and their
// CPU processors.
package imaging

import (
	"github.com/specialistvlad/texgraph/internal/node"
	"github.com/specialistvlad/texgraph/internal/port"
	"github.com/specialistvlad/texgraph/internal/registry"
)

// Category is the registry category of every type in this module.
const Category = registry.CategoryImage

const (
	TypeBlend   = "Imaging.Blend"
	TypeBlur    = "Imaging.Blur"
	TypeLevels  = "Imaging.Levels"
	TypeUniform = "Imaging.Uniform"
)

// Specs lists the operator layouts registered by this module.
var Specs = []node.OperatorSpec{
	{
		Type: TypeBlend, Name: "Blend", Op: "blend",
		Inputs:  []string{"Foreground", "Background"},
		Outputs: []string{"Output"},
		Params: []node.OperatorParam{
			{Name: "Alpha", Type: port.Float, ShaderVisible: true, Default: float32(1)},
			{Name: "Mode", Default: "normal"},
		},
	},
	{
		Type: TypeBlur, Name: "Blur", Op: "blur",
		Inputs:  []string{"Input"},
		Outputs: []string{"Output"},
		Params: []node.OperatorParam{
			{Name: "Intensity", Type: port.Float, ShaderVisible: true, Default: float32(1)},
		},
	},
	{
		Type: TypeLevels, Name: "Levels", Op: "levels",
		Inputs:  []string{"Input"},
		Outputs: []string{"Output"},
		Params: []node.OperatorParam{
			{Name: "Min", Type: port.Float, ShaderVisible: true, Default: float32(0)},
			{Name: "Max", Type: port.Float, ShaderVisible: true, Default: float32(1)},
			{Name: "Gamma", Type: port.Float, ShaderVisible: true, Default: float32(1)},
		},
	},
	{
		Type: TypeUniform, Name: "Uniform Color", Op: "uniform",
		Outputs: []string{"Output"},
		Params: []node.OperatorParam{
			{Name: "Color", Type: port.Float4, Display: "Color", ShaderVisible: true, Default: node.Vec{X: 0, Y: 0, Z: 0, W: 1}},
		},
	},
	{
		Type: node.TypePixelProcessor, Name: "Pixel Processor", Op: node.OpPixelProcessor,
		Inputs:  []string{"Input0", "Input1"},
		Outputs: []string{"Output"},
	},
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers every operator type and processor.
func (m *Module) Register(r *registry.Registry) {
	for _, spec := range Specs {
		spec := spec
		r.Register(Category, spec.Type, func(w, h int, f node.PixelFormat) (*node.Node, error) {
			return node.NewOperator(spec, w, h, f), nil
		})
	}
	r.RegisterProcessor("blend", registry.ProcessorFunc(blend))
	r.RegisterProcessor("blur", registry.ProcessorFunc(blur))
	r.RegisterProcessor("levels", registry.ProcessorFunc(levels))
	r.RegisterProcessor("uniform", registry.ProcessorFunc(uniform))
}
