package dag

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/specialistvlad/texgraph/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diamond builds a -> (b, c) -> d.
func diamond(t *testing.T) *Graph {
	t.Helper()
	g := New()
	for _, id := range []string{"a", "b", "c", "d"} {
		g.AddNode(id)
	}
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("a", "c"))
	require.NoError(t, g.AddEdge("b", "d"))
	require.NoError(t, g.AddEdge("c", "d"))
	return g
}

func TestExecutor_RunsDependenciesFirst(t *testing.T) {
	// --- Arrange ---
	ctx := ctxlog.Discard(context.Background())
	g := diamond(t)
	var mu sync.Mutex
	done := make(map[string]bool)

	// --- Act ---
	err := NewExecutor(g, 4).Run(ctx, func(_ context.Context, id string) error {
		deps, err := g.Dependencies(id)
		if err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		for _, dep := range deps {
			if !done[dep] {
				return errors.New(id + " ran before " + dep)
			}
		}
		done[id] = true
		return nil
	})

	// --- Assert ---
	require.NoError(t, err)
	assert.Len(t, done, 4)
}

func TestExecutor_FailureSkipsDependents(t *testing.T) {
	// --- Arrange ---
	ctx := ctxlog.Discard(context.Background())
	g := diamond(t)
	boom := errors.New("boom")
	var mu sync.Mutex
	var ran []string

	// --- Act ---
	err := NewExecutor(g, 1).Run(ctx, func(_ context.Context, id string) error {
		mu.Lock()
		ran = append(ran, id)
		mu.Unlock()
		if id == "b" {
			return boom
		}
		return nil
	})

	// --- Assert ---
	require.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "execution failed for b")
	assert.NotContains(t, ran, "d")
}

func TestExecutor_RejectsCycles(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	g := New()
	g.AddNode("a")
	g.AddNode("b")
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "a"))

	err := NewExecutor(g, 2).Run(ctx, func(context.Context, string) error { return nil })

	assert.ErrorIs(t, err, ErrCycle)
}

func TestExecutor_EmptyGraph(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	called := false

	err := NewExecutor(New(), 0).Run(ctx, func(context.Context, string) error {
		called = true
		return nil
	})

	assert.NoError(t, err)
	assert.False(t, called)
}
