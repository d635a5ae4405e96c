// Package graph holds node graphs and the arena that owns them.
//
// # Why Graph Package Exists
//
// Texture documents nest: an image operator can host a function graph, a
// function graph can call custom functions owned by an ancestor graph, and a
// promoted parameter can itself be a function. Rather than letting graphs
// and nodes point at each other, a single Arena owns every graph (and every
// graph owns its nodes); upward relations such as "host node" and "parent
// graph" are plain ids resolved through the arena. Walks like TopGraph are
// iterative lookups bounded by the number of graphs.
//
// # Flavors
//
//   - Value graphs produce textures. Their nodes are image operators,
//     boundaries and items.
//   - Function graphs produce a scalar or vector and compile to shader code.
//     They track an output node, an expected result type, an optional
//     Execute entry, their Arg and Call nodes, and a variable scope seeded
//     with PI, Rad2Deg, Deg2Rad, RandomSeed, pos and size.
//
// # Loading
//
// Restore and Unmarshal rebuild documents in two phases so that a
// connection may name a node that appears later in the document: all nodes
// of all nested graphs are instantiated first, then call nodes are bound to
// their targets and connections replayed silently. Records that name
// missing nodes or ports are logged and skipped; the rest still apply.
package graph
