package eval

import (
	"fmt"
	"math"

	"github.com/specialistvlad/texgraph/internal/node"
)

// Hash is the pseudo-random function behind Random nodes, in [-1, 1). It is
// the CPU form of the rand helper in generated shaders.
func Hash(co node.Vec) float32 {
	d := float64(co.X)*12.9898 + float64(co.Y)*78.233
	s := math.Sin(d) * 43758.5453
	return float32((s-math.Floor(s))*2 - 1)
}

// binary applies op to two operands. Two floats give a float; anything
// else is computed component-wise with floats splatted, keeping the first
// comps components.
func binary(op node.ArithOp, a, b any, comps int) (any, error) {
	fa, aScalar := a.(float32)
	fb, bScalar := b.(float32)
	if aScalar && bScalar {
		return scalarOp(op, fa, fb), nil
	}
	va, ok := node.ToVec(a)
	if !ok {
		return nil, fmt.Errorf("cannot use %T as an operand", a)
	}
	vb, ok := node.ToVec(b)
	if !ok {
		return nil, fmt.Errorf("cannot use %T as an operand", b)
	}
	return trim(zip(va, vb, func(x, y float32) float32 { return scalarOp(op, x, y) }), comps), nil
}

func scalarOp(op node.ArithOp, a, b float32) float32 {
	switch op {
	case node.OpSubtract:
		return a - b
	case node.OpMultiply:
		return a * b
	case node.OpDivide:
		return a / b
	case node.OpMin:
		return min(a, b)
	case node.OpMax:
		return max(a, b)
	}
	return a + b
}

// unary applies op to a float or to the first comps components of a vector.
func unary(op node.UnaryOp, a any, comps int) (any, error) {
	if f, ok := a.(float32); ok {
		if op == node.OpNormalize {
			return sign(f), nil
		}
		return unaryOp(op, f), nil
	}
	v, ok := node.ToVec(a)
	if !ok {
		return nil, fmt.Errorf("cannot use %T as an operand", a)
	}
	v = trim(v, comps)
	if op == node.OpNormalize {
		return normalize(v), nil
	}
	return trim(v.Map(func(x float32) float32 { return unaryOp(op, x) }), comps), nil
}

func unaryOp(op node.UnaryOp, x float32) float32 {
	f := float64(x)
	switch op {
	case node.OpNegate:
		return -x
	case node.OpAbsolute:
		return float32(math.Abs(f))
	case node.OpFloor:
		return float32(math.Floor(f))
	case node.OpCeil:
		return float32(math.Ceil(f))
	case node.OpFract:
		return float32(f - math.Floor(f))
	case node.OpSine:
		return float32(math.Sin(f))
	case node.OpCosine:
		return float32(math.Cos(f))
	}
	return x
}

func sign(x float32) float32 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func normalize(v node.Vec) node.Vec {
	l := math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z + v.W*v.W))
	if l == 0 {
		return v
	}
	return v.Map(func(x float32) float32 { return float32(float64(x) / l) })
}

func zip(a, b node.Vec, fn func(x, y float32) float32) node.Vec {
	return node.Vec{X: fn(a.X, b.X), Y: fn(a.Y, b.Y), Z: fn(a.Z, b.Z), W: fn(a.W, b.W)}
}

// trim zeroes the components past the first n.
func trim(v node.Vec, n int) node.Vec {
	if n < 4 {
		v.W = 0
	}
	if n < 3 {
		v.Z = 0
	}
	if n < 2 {
		v.Y = 0
	}
	return v
}
