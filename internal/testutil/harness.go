// Package testutil holds helpers shared by package tests: graph arenas with
// the core modules, discard-logger contexts, thread-safe log capture and
// on-disk document fixtures.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/texgraph/internal/ctxlog"
	"github.com/specialistvlad/texgraph/internal/graph"
	"github.com/specialistvlad/texgraph/internal/registry"
	"github.com/specialistvlad/texgraph/modules/imaging"
	"github.com/specialistvlad/texgraph/modules/mathnodes"
	"github.com/specialistvlad/texgraph/modules/structure"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Ctx returns a background context carrying a discard logger.
func Ctx() context.Context {
	return ctxlog.Discard(context.Background())
}

// NewArena returns an empty arena building nodes from the core modules.
func NewArena() *graph.Arena {
	return graph.NewArena(registry.New().Load(&mathnodes.Module{}, &structure.Module{}, &imaging.Module{}))
}

// WriteFiles writes files, keyed by slash-separated relative path, under a
// fresh temporary directory and returns that directory.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}
