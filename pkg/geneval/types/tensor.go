package types

import (
	"image"
)

// Tensor is one decoded image in channel-first (CHW) layout with values
// scaled to [0,1]. Row-major within each channel plane.
type Tensor struct {
	C    int
	H    int
	W    int
	Data []float64
}

// NewTensor allocates a zero tensor of the given shape.
func NewTensor(c, h, w int) *Tensor {
	return &Tensor{C: c, H: h, W: w, Data: make([]float64, c*h*w)}
}

// FromImage converts img to a three channel RGB tensor, dropping alpha.
func FromImage(img image.Image) *Tensor {
	var bounds = img.Bounds()
	var w, h = bounds.Dx(), bounds.Dy()
	var t = NewTensor(3, h, w)

	var i int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			var r, g, b, _ = img.At(x, y).RGBA()
			t.Data[i] = float64(r) / 65535
			t.Data[h*w+i] = float64(g) / 65535
			t.Data[2*h*w+i] = float64(b) / 65535
			i++
		}
	}

	return t
}

// At returns the value at channel c, row y, column x.
func (t *Tensor) At(c, y, x int) float64 {
	return t.Data[c*t.H*t.W+y*t.W+x]
}

// Set writes the value at channel c, row y, column x.
func (t *Tensor) Set(c, y, x int, v float64) {
	t.Data[c*t.H*t.W+y*t.W+x] = v
}

// Plane returns the data of channel c, a view not a copy.
func (t *Tensor) Plane(c int) []float64 {
	return t.Data[c*t.H*t.W : (c+1)*t.H*t.W]
}

// SameShape reports whether both tensors have identical dimensions.
func (t *Tensor) SameShape(o *Tensor) bool {
	return t.C == o.C && t.H == o.H && t.W == o.W
}

// Signed returns a copy rescaled from [0,1] to [-1,1].
func (t *Tensor) Signed() *Tensor {
	var s = &Tensor{C: t.C, H: t.H, W: t.W, Data: make([]float64, len(t.Data))}
	for i, v := range t.Data {
		s.Data[i] = v*2 - 1
	}
	return s
}
