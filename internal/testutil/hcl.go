package testutil

import (
	"testing"

	"github.com/specialistvlad/texgraph/internal/graph"
	"github.com/specialistvlad/texgraph/internal/hcl_adapter"
	"github.com/specialistvlad/texgraph/internal/node"
	"github.com/stretchr/testify/require"
)

// LoadHCL loads a single graph document into a fresh arena and returns the
// arena and the document's graphs.
func LoadHCL(t *testing.T, doc string) (*graph.Arena, []*graph.Graph) {
	t.Helper()
	dir := WriteFiles(t, map[string]string{"main.hcl": doc})
	a := NewArena()
	graphs, err := hcl_adapter.NewLoader(hcl_adapter.WithStrict(true)).Load(Ctx(), a, dir)
	require.NoError(t, err)
	return a, graphs
}

// NodeByName returns the node of g called name and fails the test if there
// is none.
func NodeByName(t *testing.T, g *graph.Graph, name string) *node.Node {
	t.Helper()
	for _, n := range g.Nodes() {
		if n.Name == name {
			return n
		}
	}
	require.Failf(t, "node not found", "graph %s has no node %q", g.Name, name)
	return nil
}
