package hcl_adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/texgraph/internal/ctxlog"
	"github.com/specialistvlad/texgraph/internal/fsutil"
	"github.com/specialistvlad/texgraph/internal/graph"
)

// Document extensions the loader understands.
const (
	ExtHCL  = ".hcl"
	ExtJSON = ".json"
)

var (
	// ErrUnknownNodeType is returned in strict mode for a node whose type
	// is not registered.
	ErrUnknownNodeType = errors.New("unknown node type")
	// ErrDuplicateGraph is returned when a document declares a graph name
	// that is already loaded.
	ErrDuplicateGraph = errors.New("graph already loaded")
)

// Loader reads graph documents into an arena.
type Loader struct {
	strict bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithStrict makes unknown node types fail the load instead of being logged
// and skipped.
func WithStrict(strict bool) Option {
	return func(l *Loader) { l.strict = strict }
}

// NewLoader creates a new document loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads every document found under paths into arena and returns the
// top-level graphs in file order. A path may be a file or a directory,
// which is walked recursively; missing paths are ignored. When any file
// fails, graphs loaded by this call are removed again.
func (l *Loader) Load(ctx context.Context, arena *graph.Arena, paths ...string) ([]*graph.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Document loader started.", "path_count", len(paths))

	files, err := l.Files(paths...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered documents.", "count", len(files))

	var loaded []*graph.Graph
	for _, file := range files {
		graphs, err := l.LoadFile(ctx, arena, file)
		if err != nil {
			for _, g := range loaded {
				arena.RemoveTree(g.ID)
			}
			return nil, err
		}
		loaded = append(loaded, graphs...)
	}

	logger.Debug("Document loading complete.", "files", len(files), "graphs", len(loaded))
	return loaded, nil
}

// LoadFile reads one document. The extension selects the format.
func (l *Loader) LoadFile(ctx context.Context, arena *graph.Arena, path string) ([]*graph.Graph, error) {
	switch filepath.Ext(path) {
	case ExtJSON:
		return l.loadJSON(ctx, arena, path)
	case ExtHCL:
		return l.loadHCL(ctx, arena, path)
	}
	return nil, fmt.Errorf("unsupported document %s: expected %s or %s", path, ExtHCL, ExtJSON)
}

func (l *Loader) loadJSON(ctx context.Context, arena *graph.Arena, path string) ([]*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}
	g, err := graph.Unmarshal(arena, data)
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", path, err)
	}
	ctxLogger(ctx, path).Debug("Loaded JSON document.", "graph", g.Name, "nodes", g.Len())
	return []*graph.Graph{g}, nil
}

func (l *Loader) loadHCL(ctx context.Context, arena *graph.Arena, path string) ([]*graph.Graph, error) {
	logger := ctxLogger(ctx, path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, nil, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	t := &translator{
		ctx:      ctxlog.WithLogger(ctx, logger),
		logger:   logger,
		registry: arena.Registry(),
		strict:   l.strict,
	}

	var loaded []*graph.Graph
	fail := func(err error) ([]*graph.Graph, error) {
		for _, g := range loaded {
			arena.RemoveTree(g.ID)
		}
		return nil, fmt.Errorf("in %s: %w", path, err)
	}
	for _, block := range root.Graphs {
		if topLevelExists(arena, block.Name) {
			return fail(fmt.Errorf("graph %q: %w", block.Name, ErrDuplicateGraph))
		}
		d, err := t.translateGraph(block)
		if err != nil {
			return fail(err)
		}
		g, err := graph.Restore(arena, d)
		if err != nil {
			return fail(err)
		}
		logger.Debug("Loaded graph.", "graph", g.Name, "nodes", g.Len())
		loaded = append(loaded, g)
	}
	return loaded, nil
}

// Files walks all given paths and returns a flat, de-duplicated list of
// documents. Missing paths are ignored.
func (l *Loader) Files(paths ...string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			all = append(all, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			if fsutil.HasExtension(path, ExtHCL, ExtJSON) {
				add(path)
			}
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, ExtHCL, ExtJSON)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}
	return all, nil
}

// topLevelExists reports whether arena already holds a graph called name
// that is neither hosted nor a custom function.
func topLevelExists(arena *graph.Arena, name string) bool {
	for _, g := range arena.Graphs() {
		if g.Name == name && g.HostNode == "" && g.ParentGraph == "" {
			return true
		}
	}
	return false
}
