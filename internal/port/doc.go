// Package port models the typed sockets owned by graph nodes and the
// connect/disconnect protocol between them.
//
// # Connection Model
//
// An Output fans out to an ordered list of destination Inputs. An Input
// references at most one upstream Output. The two sides are always updated
// together, so for every output O and input I:
//
//	I.Reference() == O  <=>  I is in O.To()
//
// Connecting an input that already has an upstream first disconnects it.
// Two ports connect only when their Tags intersect; the typed API rules out
// same-polarity links at compile time, and ConnectPorts rejects them at run
// time for callers that handle ports generically.
//
// # Change Hooks
//
// Every Input can carry a change hook, fired after a non-silent connect and
// after a disconnect. Nodes install it to start change propagation. Silent
// connects exist for bulk reconstruction of a graph from a document, where a
// cascade of premature re-evaluation is unwanted.
package port
