package imaging

import (
	"context"
	"fmt"
	"math"

	"github.com/specialistvlad/texgraph/internal/node"
)

func param(n *node.Node, name string) float32 {
	v, _ := n.Get(name)
	f, _ := node.ToFloat(v)
	return f
}

func uniform(_ context.Context, n *node.Node, _ []any) ([]any, error) {
	v, _ := n.Get("Color")
	c, ok := node.ToVec(v)
	if !ok {
		return nil, fmt.Errorf("uniform color: cannot use %T as a color", v)
	}
	img := NewImage(n.Width, n.Height)
	for i := range img.Pix {
		img.Pix[i] = c
	}
	return []any{img}, nil
}

func blend(_ context.Context, n *node.Node, inputs []any) ([]any, error) {
	fg := imageOr(inputs[0], n.Width, n.Height)
	bg := imageOr(inputs[1], n.Width, n.Height)
	alpha := param(n, "Alpha")
	mode, _ := n.Get("Mode")

	var mix func(a, b node.Vec) node.Vec
	switch mode {
	case "add":
		mix = func(a, b node.Vec) node.Vec { return a.Add(b) }
	case "multiply":
		mix = func(a, b node.Vec) node.Vec { return a.Mul(b) }
	case "normal", nil:
		mix = func(a, _ node.Vec) node.Vec { return a }
	default:
		return nil, fmt.Errorf("blend: unknown mode %v", mode)
	}

	out := NewImage(n.Width, n.Height)
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			u := (float32(x) + 0.5) / float32(out.Width)
			v := (float32(y) + 0.5) / float32(out.Height)
			a, b := fg.Sample(u, v), bg.Sample(u, v)
			m := mix(a, b)
			w := alpha * a.W
			out.Set(x, y, node.Vec{
				X: b.X + (m.X-b.X)*w,
				Y: b.Y + (m.Y-b.Y)*w,
				Z: b.Z + (m.Z-b.Z)*w,
				W: b.W + (1-b.W)*w,
			})
		}
	}
	return []any{out}, nil
}

func blur(_ context.Context, n *node.Node, inputs []any) ([]any, error) {
	src := imageOr(inputs[0], n.Width, n.Height)
	radius := int(param(n, "Intensity"))
	if radius <= 0 {
		return []any{src}, nil
	}
	out := NewImage(src.Width, src.Height)
	count := float32((2*radius + 1) * (2*radius + 1))
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			var sum node.Vec
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					sum = sum.Add(src.At(x+dx, y+dy))
				}
			}
			out.Set(x, y, sum.Map(func(c float32) float32 { return c / count }))
		}
	}
	return []any{out}, nil
}

func levels(_ context.Context, n *node.Node, inputs []any) ([]any, error) {
	src := imageOr(inputs[0], n.Width, n.Height)
	lo, hi, gamma := param(n, "Min"), param(n, "Max"), param(n, "Gamma")
	if hi <= lo {
		return nil, fmt.Errorf("levels: max %v must exceed min %v", hi, lo)
	}
	if gamma <= 0 {
		gamma = 1
	}
	adjust := func(c float32) float32 {
		t := (c - lo) / (hi - lo)
		t = min(max(t, 0), 1)
		return float32(math.Pow(float64(t), 1/float64(gamma)))
	}
	out := NewImage(src.Width, src.Height)
	for i, p := range src.Pix {
		out.Pix[i] = node.Vec{X: adjust(p.X), Y: adjust(p.Y), Z: adjust(p.Z), W: p.W}
	}
	return []any{out}, nil
}
