package notify

import (
	"context"
	"log/slog"
)

// Event names.
const (
	EventShaderCompiled = "shader.compiled"
	EventShaderFailed   = "shader.failed"
	EventGraphUpdated   = "graph.updated"
)

// Publisher sends named events to whoever is listening.
type Publisher interface {
	Publish(ctx context.Context, event string, payload any) error
	Close() error
}

// ShaderPayload is sent with shader.compiled and shader.failed. On failure
// Fragment is the last source that compiled, possibly empty.
type ShaderPayload struct {
	NodeID   string `json:"nodeId"`
	Graph    string `json:"graph"`
	Function string `json:"function"`
	Vertex   string `json:"vertex"`
	Fragment string `json:"fragment"`
}

// GraphPayload is sent with graph.updated after a document (re)load.
type GraphPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	File  string `json:"file"`
	Nodes int    `json:"nodes"`
}

// Log writes events to a logger.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a publisher logging to logger at info level.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

// Publish logs event. Shader sources are left out.
func (l *Log) Publish(_ context.Context, event string, payload any) error {
	switch p := payload.(type) {
	case ShaderPayload:
		l.logger.Info("Event published.", "event", event, "graph", p.Graph, "function", p.Function, "nodeID", p.NodeID, "bytes", len(p.Fragment))
	case GraphPayload:
		l.logger.Info("Event published.", "event", event, "graph", p.Name, "graphID", p.ID, "file", p.File, "nodes", p.Nodes)
	default:
		l.logger.Info("Event published.", "event", event, "payload", payload)
	}
	return nil
}

// Close does nothing.
func (l *Log) Close() error { return nil }
