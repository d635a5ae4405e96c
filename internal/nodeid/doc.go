/*
Package nodeid generates node identifiers and derives the names that other
parts of the system build from them.

A node identifier is a UUID string. Two names are derived from it:

  - the shader symbol prefix, "S" followed by the first dash-separated
    segment of the identifier (e.g. `S1f2e3d4c`), which the source
    synthesizer suffixes with an output index to name a node's results;
  - parameter addresses of the form `node.property`, used to key graph
    parameters that override a node property.

This package centralizes that formatting and parsing logic.
*/
package nodeid
