// Package dag provides a small concurrency-safe dependency graph keyed by
// string ids: cycle detection, deterministic topological ordering and a
// worker-pool executor that runs a function per node once its
// dependencies have completed.
//
// The shader compiler uses it to reject indirect call cycles between
// function graphs; the evaluation engine uses the executor to process
// independent image operators of a value graph concurrently.
package dag
