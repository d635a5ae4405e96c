// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle, decoupled
// from any specific entrypoint like a CLI or server.
//
// A run loads graph documents, schedules every root node, drains the
// scheduler and writes the generated fragment shaders. In watch mode the
// documents are watched for changes, reloads are queued as scheduler tasks
// and a health server exposes /health and /metrics until the context ends.
package app
