// Package shadergen turns function graphs into GLSL fragment shader source.
//
// # Modes
//
// BuildShader produces a standalone unit: a fixed preamble, the source of
// every custom function the graph calls, and a main entry point that writes
// the output node's value to FragColor. FunctionSource produces an inlinable
// function named after the graph, preceded by the functions it calls in turn.
//
// # Assembly
//
// Both modes share one assembly routine. The buffer is seeded with the size
// and pos declarations and one p_ constant per constant-valued parameter of
// the top graph. Nodes are then taken in linearize.Order and each emits its
// fragment given the buffer so far. A fragment whose exact text is already
// in the buffer is dropped. The deduplication is textual, not semantic.
//
// # Failure
//
// Every failure (no output node, a node that cannot emit, an unsupported
// type, a cycle between custom functions) yields ("", false). Nothing here
// panics on a malformed graph.
package shadergen
