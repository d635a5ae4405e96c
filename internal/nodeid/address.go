package nodeid

import (
	"fmt"
	"regexp"
	"strings"
)

// propertyRegex validates the property half of an address.
var propertyRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Address identifies one property of one node, e.g. a graph parameter that
// overrides a constant node's value.
type Address struct {
	Node     string
	Property string
}

// NewAddress builds an address without validating it.
func NewAddress(nodeID, property string) Address {
	return Address{Node: nodeID, Property: property}
}

// String serializes the address into its canonical `node.property` form.
func (a Address) String() string {
	return a.Node + "." + a.Property
}

// Parse creates an Address from its canonical string representation.
func Parse(raw string) (Address, error) {
	if raw == "" {
		return Address{}, fmt.Errorf("address cannot be empty")
	}
	node, property, found := strings.Cut(raw, ".")
	if !found {
		return Address{}, fmt.Errorf("address %q is missing the property segment", raw)
	}
	if !Valid(node) {
		return Address{}, fmt.Errorf("invalid node identifier in address: %q", node)
	}
	if !propertyRegex.MatchString(property) {
		return Address{}, fmt.Errorf("invalid property name in address: %q", property)
	}
	return Address{Node: node, Property: property}, nil
}
