package port

import (
	"fmt"
	"strings"
)

// Tag describes what a port carries. A port may claim several tags at once
// (a polymorphic socket), so Tag is a bitmask.
type Tag uint32

const (
	Execute Tag = 1 << iota
	Bool
	Float
	Float2
	Float3
	Float4
	Color
	Gray
	Matrix
)

// AnyFloat is the "any float width" socket used by arithmetic nodes.
const AnyFloat = Float | Float2 | Float3 | Float4

// AnyValue is every non-control-flow scalar and vector tag a variable can hold.
const AnyValue = Bool | AnyFloat

var tagNames = []struct {
	tag  Tag
	name string
}{
	{Execute, "execute"},
	{Bool, "bool"},
	{Float, "float"},
	{Float2, "float2"},
	{Float3, "float3"},
	{Float4, "float4"},
	{Color, "color"},
	{Gray, "gray"},
	{Matrix, "matrix"},
}

// Intersects reports whether t and other share at least one tag.
func (t Tag) Intersects(other Tag) bool {
	return t&other != 0
}

// Has reports whether every bit of other is set in t.
func (t Tag) Has(other Tag) bool {
	return other != 0 && t&other == other
}

// String renders the tag as "|"-joined lower-case names.
func (t Tag) String() string {
	if t == 0 {
		return "none"
	}
	var parts []string
	for _, tn := range tagNames {
		if t&tn.tag != 0 {
			parts = append(parts, tn.name)
		}
	}
	return strings.Join(parts, "|")
}

// MarshalText encodes the tag by name so documents stay readable.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a name written by MarshalText.
func (t *Tag) UnmarshalText(b []byte) error {
	if string(b) == "none" || len(b) == 0 {
		*t = 0
		return nil
	}
	v, err := ParseTag(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseTag parses a tag name, or a "|"-joined union of names, as written in
// graph documents. Matching is case-insensitive.
func ParseTag(s string) (Tag, error) {
	var t Tag
	for _, part := range strings.Split(s, "|") {
		name := strings.ToLower(strings.TrimSpace(part))
		found := false
		for _, tn := range tagNames {
			if tn.name == name {
				t |= tn.tag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown type tag %q", part)
		}
	}
	return t, nil
}

// GLSLType maps a concrete tag to its GLSL type name. Unions, Execute and
// Matrix are not representable and report false.
func GLSLType(t Tag) (string, bool) {
	switch t {
	case Bool:
		return "bool", true
	case Float:
		return "float", true
	case Float2:
		return "vec2", true
	case Float3:
		return "vec3", true
	case Float4, Color, Gray:
		return "vec4", true
	}
	return "", false
}

// Components returns the vector width of a concrete numeric tag: 1 for Float
// and Bool, 2..4 for vectors. Unsupported tags return 0.
func Components(t Tag) int {
	switch t {
	case Bool, Float:
		return 1
	case Float2:
		return 2
	case Float3:
		return 3
	case Float4, Color, Gray:
		return 4
	}
	return 0
}

// Resolve picks the concrete tag used for code generation from a possibly
// polymorphic tag. Precedence is Float, Float2, Float3, Float4, then Bool;
// Color and Gray resolve to Float4. Execute and Matrix resolve to themselves
// when they are the only bit set, otherwise 0.
func Resolve(t Tag) Tag {
	for _, c := range []Tag{Float, Float2, Float3, Float4, Bool} {
		if t&c != 0 {
			return c
		}
	}
	if t&(Color|Gray) != 0 {
		return Float4
	}
	if t == Execute || t == Matrix {
		return t
	}
	return 0
}
