package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_LoadError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A document with a syntax error fails while loading.
	invalidHCL := `
		graph "Broken" {
			node "a" {
		// Missing closing braces here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	err := os.WriteFile(filePath, []byte(invalidHCL), 0600)
	require.NoError(t, err, "failed to set up test file")

	args := []string{"-log-format", "text", filePath}
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), out, args)

	// --- Assert ---
	require.Error(t, runErr, "run() should have returned the load error")
	require.True(t, strings.Contains(runErr.Error(), "failed to parse"), "The error message should contain the underlying reason.")
}

func TestRun_WritesShaders(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	doc := `
graph "Flat" {
  node "proc" {
    type     = "Imaging.PixelProcessor"
    function = "Gray"
  }
  function "Gray" {
    expected_output = float
    output_node     = "k"
    node "k" {
      type  = "MathNodes.FloatConstantNode"
      props = { Value = 0.5 }
    }
  }
}
`
	tempDir := t.TempDir()
	docPath := filepath.Join(tempDir, "flat.hcl")
	require.NoError(t, os.WriteFile(docPath, []byte(doc), 0600))
	outDir := filepath.Join(tempDir, "out")
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"-o", outDir, "-log-format", "text", docPath})

	// --- Assert ---
	require.NoError(t, err, out.String())
	src, err := os.ReadFile(filepath.Join(outDir, "Flat_Gray.frag"))
	require.NoError(t, err)
	require.Contains(t, string(src), "#version 330 core")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	// The run function should see `shouldExit=true` and return a nil error.
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Providing an unknown flag will cause cli.Parse to return an error.
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	// The run function should propagate the error from cli.Parse.
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}
