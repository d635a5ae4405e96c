package node

import (
	"fmt"
	"strconv"

	"github.com/specialistvlad/texgraph/internal/port"
)

// Vec is a vector value of up to four float components. Unused components
// are zero.
type Vec struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
	W float32 `json:"w"`
}

// Add returns the component-wise sum.
func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y, v.Z + o.Z, v.W + o.W} }

// Sub returns the component-wise difference.
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y, v.Z - o.Z, v.W - o.W} }

// Mul returns the component-wise product.
func (v Vec) Mul(o Vec) Vec { return Vec{v.X * o.X, v.Y * o.Y, v.Z * o.Z, v.W * o.W} }

// Map applies fn to every component.
func (v Vec) Map(fn func(float32) float32) Vec {
	return Vec{fn(v.X), fn(v.Y), fn(v.Z), fn(v.W)}
}

// Splat fills every component with f.
func Splat(f float32) Vec { return Vec{f, f, f, f} }

// Components returns the first n components.
func (v Vec) Components(n int) []float32 {
	all := []float32{v.X, v.Y, v.Z, v.W}
	if n < 0 || n > 4 {
		n = 4
	}
	return all[:n]
}

// ToFloat coerces a numeric value produced by documents or evaluation.
func ToFloat(v any) (float32, bool) {
	switch x := v.(type) {
	case float32:
		return x, true
	case float64:
		return float32(x), true
	case int:
		return float32(x), true
	case int32:
		return float32(x), true
	case int64:
		return float32(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(x, 32)
		if err != nil {
			return 0, false
		}
		return float32(f), true
	}
	return 0, false
}

// ToBool coerces booleans and numbers; non-zero numbers are true.
func ToBool(v any) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	f, ok := ToFloat(v)
	if !ok {
		return false, false
	}
	return f != 0, true
}

// ToVec coerces vectors, numeric slices and scalars (which are splatted).
func ToVec(v any) (Vec, bool) {
	switch x := v.(type) {
	case Vec:
		return x, true
	case []float32:
		return vecFrom(len(x), func(i int) (float32, bool) { return x[i], true })
	case []float64:
		return vecFrom(len(x), func(i int) (float32, bool) { return float32(x[i]), true })
	case []any:
		return vecFrom(len(x), func(i int) (float32, bool) { return ToFloat(x[i]) })
	case map[string]any:
		var out Vec
		for key, dst := range map[string]*float32{"x": &out.X, "y": &out.Y, "z": &out.Z, "w": &out.W} {
			if raw, ok := x[key]; ok {
				f, ok := ToFloat(raw)
				if !ok {
					return Vec{}, false
				}
				*dst = f
			}
		}
		return out, true
	}
	if f, ok := ToFloat(v); ok {
		return Splat(f), true
	}
	return Vec{}, false
}

func vecFrom(n int, at func(int) (float32, bool)) (Vec, bool) {
	if n > 4 {
		return Vec{}, false
	}
	var comps [4]float32
	for i := 0; i < n; i++ {
		f, ok := at(i)
		if !ok {
			return Vec{}, false
		}
		comps[i] = f
	}
	return Vec{comps[0], comps[1], comps[2], comps[3]}, true
}

// Coerce converts v into the Go representation used for values of tag t:
// bool for Bool, float32 for Float, Vec for vectors and colors.
func Coerce(t port.Tag, v any) (any, error) {
	switch t {
	case port.Bool:
		if b, ok := ToBool(v); ok {
			return b, nil
		}
	case port.Float:
		if f, ok := ToFloat(v); ok {
			return f, nil
		}
	case port.Float2, port.Float3, port.Float4, port.Color, port.Gray:
		if vec, ok := ToVec(v); ok {
			return vec, nil
		}
	default:
		return v, nil
	}
	return nil, fmt.Errorf("cannot use %T as %s", v, t)
}

// Zero returns the zero value for tag t.
func Zero(t port.Tag) any {
	switch t {
	case port.Bool:
		return false
	case port.Float:
		return float32(0)
	case port.Float2, port.Float3, port.Float4, port.Color, port.Gray:
		return Vec{}
	}
	return nil
}
