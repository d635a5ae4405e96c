package app

import (
	"github.com/specialistvlad/texgraph/internal/registry"
	"github.com/specialistvlad/texgraph/modules/imaging"
	"github.com/specialistvlad/texgraph/modules/mathnodes"
	"github.com/specialistvlad/texgraph/modules/structure"
)

// coreModules is the definitive list of all node modules that are compiled
// into the texgraph binary.
var coreModules = []registry.Module{
	&mathnodes.Module{},
	&structure.Module{},
	&imaging.Module{},
}

// NewRegistry returns a registry populated with every core module.
func NewRegistry() *registry.Registry {
	return registry.New().Load(coreModules...)
}
