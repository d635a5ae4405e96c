package eval

import (
	"testing"

	"github.com/specialistvlad/texgraph/internal/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	assert.Equal(t, float32(-1), Hash(node.Vec{}))

	for _, co := range []node.Vec{{X: 0.25, Y: 0.75}, {X: 12, Y: -3}, {X: 1e3, Y: 1e-3}} {
		h := Hash(co)
		assert.GreaterOrEqual(t, h, float32(-1), "co=%v", co)
		assert.Less(t, h, float32(1), "co=%v", co)
		assert.Equal(t, h, Hash(co), "co=%v", co)
	}
}

func TestBinary(t *testing.T) {
	testCases := []struct {
		name  string
		op    node.ArithOp
		a, b  any
		comps int
		want  any
	}{
		{name: "float add", op: node.OpAdd, a: float32(2), b: float32(3), comps: 1, want: float32(5)},
		{name: "float divide", op: node.OpDivide, a: float32(1), b: float32(4), comps: 1, want: float32(0.25)},
		{name: "float min", op: node.OpMin, a: float32(1), b: float32(-4), comps: 1, want: float32(-4)},
		{
			name: "vector times splatted float", op: node.OpMultiply,
			a: node.Vec{X: 1, Y: 2, Z: 3, W: 4}, b: float32(2), comps: 3,
			want: node.Vec{X: 2, Y: 4, Z: 6},
		},
		{
			name: "vector max", op: node.OpMax,
			a: node.Vec{X: 1, Y: 5}, b: node.Vec{X: 3, Y: 2}, comps: 2,
			want: node.Vec{X: 3, Y: 5},
		},
		{
			name: "vector subtract", op: node.OpSubtract,
			a: node.Vec{X: 1, Y: 1, Z: 1, W: 1}, b: node.Vec{X: 0.5, Y: 1, Z: 2, W: 0}, comps: 4,
			want: node.Vec{X: 0.5, Y: 0, Z: -1, W: 1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := binary(tc.op, tc.a, tc.b, tc.comps)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("rejects non-numeric operands", func(t *testing.T) {
		_, err := binary(node.OpAdd, "x", float32(1), 1)
		assert.Error(t, err)
	})
}

func TestUnary(t *testing.T) {
	testCases := []struct {
		name  string
		op    node.UnaryOp
		a     any
		comps int
		want  any
	}{
		{name: "negate", op: node.OpNegate, a: float32(2), comps: 1, want: float32(-2)},
		{name: "absolute", op: node.OpAbsolute, a: float32(-1.5), comps: 1, want: float32(1.5)},
		{name: "floor", op: node.OpFloor, a: float32(1.75), comps: 1, want: float32(1)},
		{name: "ceil", op: node.OpCeil, a: float32(1.25), comps: 1, want: float32(2)},
		{name: "fract", op: node.OpFract, a: float32(-0.25), comps: 1, want: float32(0.75)},
		{name: "sine of zero", op: node.OpSine, a: float32(0), comps: 1, want: float32(0)},
		{name: "cosine of zero", op: node.OpCosine, a: float32(0), comps: 1, want: float32(1)},
		{name: "normalize float is sign", op: node.OpNormalize, a: float32(-7), comps: 1, want: float32(-1)},
		{
			name: "normalize vector", op: node.OpNormalize,
			a: node.Vec{X: 3, Y: 4, Z: 9}, comps: 2,
			want: node.Vec{X: 0.6, Y: 0.8},
		},
		{
			name: "negate vector", op: node.OpNegate,
			a: node.Vec{X: 1, Y: -2, Z: 3, W: 4}, comps: 3,
			want: node.Vec{X: -1, Y: 2, Z: -3},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := unary(tc.op, tc.a, tc.comps)
			require.NoError(t, err)
			if want, ok := tc.want.(node.Vec); ok {
				v, ok := got.(node.Vec)
				require.True(t, ok)
				assert.InDelta(t, want.X, v.X, 1e-6)
				assert.InDelta(t, want.Y, v.Y, 1e-6)
				assert.InDelta(t, want.Z, v.Z, 1e-6)
				assert.InDelta(t, want.W, v.W, 1e-6)
				return
			}
			assert.InDelta(t, tc.want, got, 1e-6)
		})
	}
}
