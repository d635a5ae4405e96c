// Package eval evaluates scheduled nodes.
//
// The Engine implements scheduler.Evaluator. A node of a value graph is
// evaluated together with everything downstream of it: the closure is laid
// out as an internal/dag graph and processed on a worker pool, so that
// independent image operators run concurrently. Image operators are
// delegated to the processors registered for them. Pixel processors instead
// compile their hosted function graph to GLSL and hand the source to a
// ShaderSink.
//
// Function graphs are evaluated on the CPU by RunFunction, which walks the
// linearized order and computes every node's output in place. The random
// hash used there matches the GLSL helper emitted by shadergen.
package eval
