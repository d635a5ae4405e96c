package notify

import (
	"context"

	"github.com/specialistvlad/texgraph/internal/eval"
	"github.com/specialistvlad/texgraph/internal/graph"
)

// Sink forwards compiled shaders to a publisher. It implements
// eval.ShaderSink.
type Sink struct {
	pub Publisher
}

// NewSink creates a shader sink publishing to pub.
func NewSink(pub Publisher) *Sink {
	return &Sink{pub: pub}
}

// Submit publishes shader.compiled or shader.failed.
func (s *Sink) Submit(ctx context.Context, sh eval.Shader) error {
	event := EventShaderCompiled
	if !sh.OK {
		event = EventShaderFailed
	}
	return s.pub.Publish(ctx, event, ShaderPayload{
		NodeID:   sh.NodeID,
		Graph:    sh.Graph,
		Function: sh.Function,
		Vertex:   sh.Vertex,
		Fragment: sh.Fragment,
	})
}

// GraphUpdated publishes graph.updated for g loaded from file.
func (s *Sink) GraphUpdated(ctx context.Context, g *graph.Graph, file string) error {
	return s.pub.Publish(ctx, EventGraphUpdated, GraphPayload{
		ID:    g.ID,
		Name:  g.Name,
		File:  file,
		Nodes: g.Len(),
	})
}
