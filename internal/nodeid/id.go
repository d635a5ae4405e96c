package nodeid

import (
	"strings"

	"github.com/google/uuid"
)

// New returns a fresh random node identifier.
func New() string {
	return uuid.NewString()
}

// Valid reports whether id can be used as a node identifier. Identifiers
// loaded from documents are not required to be UUIDs, but they must be
// non-empty and must not contain the address separator.
func Valid(id string) bool {
	return id != "" && !strings.ContainsAny(id, ". \t\r\n")
}

// ShaderID derives the shader symbol prefix for a node identifier.
func ShaderID(id string) string {
	head, _, _ := strings.Cut(id, "-")
	return "S" + head
}
