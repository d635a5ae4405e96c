package imaging

import "github.com/specialistvlad/texgraph/internal/node"

// Image is an RGBA float raster stored row-major.
type Image struct {
	Width, Height int
	Pix           []node.Vec
}

// NewImage allocates a transparent w by h image.
func NewImage(w, h int) *Image {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Image{Width: w, Height: h, Pix: make([]node.Vec, w*h)}
}

// At returns the pixel at (x, y), clamping coordinates to the edges.
func (m *Image) At(x, y int) node.Vec {
	if m.Width == 0 || m.Height == 0 {
		return node.Vec{}
	}
	x = min(max(x, 0), m.Width-1)
	y = min(max(y, 0), m.Height-1)
	return m.Pix[y*m.Width+x]
}

// Set writes the pixel at (x, y); out-of-range writes are dropped.
func (m *Image) Set(x, y int, v node.Vec) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = v
}

// Sample returns the pixel under normalized coordinates u, v in [0, 1].
func (m *Image) Sample(u, v float32) node.Vec {
	return m.At(int(u*float32(m.Width)), int(v*float32(m.Height)))
}

// imageOr returns in as an image, or a blank w by h image when in carries
// something else.
func imageOr(in any, w, h int) *Image {
	if img, ok := in.(*Image); ok && img != nil {
		return img
	}
	return NewImage(w, h)
}
