package node

import (
	"fmt"

	"github.com/specialistvlad/texgraph/internal/port"
)

// Property describes one editable parameter of a node kind. Descriptor lists
// are declared statically per kind and attached when the node is built.
//
// Type is the value tag for numeric, vector and boolean properties and 0 for
// text. Only tagged properties with ShaderVisible set are marshaled into
// function-graph scopes as variables.
type Property struct {
	Name          string
	Type          port.Tag
	Display       string
	ShaderVisible bool

	Get func(n *Node) any
	Set func(n *Node, v any) error
}

// Label returns the display override, falling back to the name.
func (p Property) Label() string {
	if p.Display != "" {
		return p.Display
	}
	return p.Name
}

// Properties returns the node's property descriptors.
func (n *Node) Properties() []Property {
	return n.props
}

// Property looks up a descriptor by name.
func (n *Node) Property(name string) (Property, bool) {
	for _, p := range n.props {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Get returns the current value of the named property.
func (n *Node) Get(name string) (any, bool) {
	p, ok := n.Property(name)
	if !ok || p.Get == nil {
		return nil, false
	}
	return p.Get(n), true
}

// SetProperty assigns a property and triggers a value change.
func (n *Node) SetProperty(name string, v any) error {
	if err := n.SetPropertySilent(name, v); err != nil {
		return err
	}
	n.TriggerValueChange()
	return nil
}

// SetPropertySilent assigns a property without notification. Loaders use it
// while a graph is being rebuilt.
func (n *Node) SetPropertySilent(name string, v any) error {
	p, ok := n.Property(name)
	if !ok {
		return fmt.Errorf("node %s (%s) has no property %q", n.ID, n.Type, name)
	}
	if p.Set == nil {
		return fmt.Errorf("property %q of node %s is read-only", name, n.ID)
	}
	if err := p.Set(n, v); err != nil {
		return fmt.Errorf("property %q of node %s: %w", name, n.ID, err)
	}
	return nil
}

// Values snapshots every property value by name.
func (n *Node) Values() map[string]any {
	out := make(map[string]any, len(n.props))
	for _, p := range n.props {
		if p.Get != nil {
			out[p.Name] = p.Get(n)
		}
	}
	return out
}

// floatProp builds a float descriptor over a field reached through get.
func floatProp(name string, visible bool, field func(n *Node) *float32) Property {
	return Property{
		Name:          name,
		Type:          port.Float,
		ShaderVisible: visible,
		Get:           func(n *Node) any { return *field(n) },
		Set: func(n *Node, v any) error {
			f, ok := ToFloat(v)
			if !ok {
				return fmt.Errorf("expected a number, got %T", v)
			}
			*field(n) = f
			return nil
		},
	}
}

func textProp(name, display string, field func(n *Node) *string) Property {
	return Property{
		Name:    name,
		Display: display,
		Get:     func(n *Node) any { return *field(n) },
		Set: func(n *Node, v any) error {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("expected a string, got %T", v)
			}
			*field(n) = s
			return nil
		},
	}
}

// SizeProperties are shared by image operators: the host dimensions a hosted
// function graph sees.
func SizeProperties() []Property {
	return []Property{
		{
			Name: "Width", Type: port.Float, ShaderVisible: true,
			Get: func(n *Node) any { return float32(n.Width) },
			Set: func(n *Node, v any) error {
				f, ok := ToFloat(v)
				if !ok {
					return fmt.Errorf("expected a number, got %T", v)
				}
				n.Width = int(f)
				return nil
			},
		},
		{
			Name: "Height", Type: port.Float, ShaderVisible: true,
			Get: func(n *Node) any { return float32(n.Height) },
			Set: func(n *Node, v any) error {
				f, ok := ToFloat(v)
				if !ok {
					return fmt.Errorf("expected a number, got %T", v)
				}
				n.Height = int(f)
				return nil
			},
		},
		{
			Name: "AbsoluteSize", Type: port.Bool, Display: "Absolute Size",
			Get: func(n *Node) any { return n.AbsoluteSize },
			Set: func(n *Node, v any) error {
				b, ok := ToBool(v)
				if !ok {
					return fmt.Errorf("expected a bool, got %T", v)
				}
				n.AbsoluteSize = b
				return nil
			},
		},
	}
}

// OperatorParam declares one parameter of an image operator.
type OperatorParam struct {
	Name          string
	Type          port.Tag
	Display       string
	ShaderVisible bool
	Default       any
}

// OperatorProperties builds descriptors backed by Operator.Params.
func OperatorProperties(params []OperatorParam) []Property {
	props := SizeProperties()
	for _, p := range params {
		p := p
		props = append(props, Property{
			Name:          p.Name,
			Type:          p.Type,
			Display:       p.Display,
			ShaderVisible: p.ShaderVisible,
			Get: func(n *Node) any {
				op := n.Kind.(*Operator)
				if v, ok := op.Params[p.Name]; ok {
					return v
				}
				return p.Default
			},
			Set: func(n *Node, v any) error {
				cv, err := Coerce(p.Type, v)
				if err != nil {
					return err
				}
				n.Kind.(*Operator).Params[p.Name] = cv
				return nil
			},
		})
	}
	return props
}
