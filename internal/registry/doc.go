// Package registry provides the central "glue" for the node module system.
//
// The Registry maps the type identifiers used in graph documents (e.g.,
// "MathNodes.AddNode") to the Go factories that build those nodes, and image
// operator names to the processors that evaluate them on the CPU.
//
// During application startup, the registry is populated by modules and then
// validated so that every document type constructs and every operator can be
// evaluated, preventing a class of runtime errors.
package registry
