package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"geneval/pkg/geneval/types"
)

// perceptualScales is how many octaves the feature pyramid descends.
const perceptualScales = 3

// Perceptual fills the learned perceptual similarity slot in the report.
// Inputs arrive as [0,1] tensors and are rescaled to [-1,1] first, matching
// that metric family's input contract. The distance itself needs no weights:
// at full, half and quarter resolution every pixel gets a feature vector of
// its channel values and their Sobel gradients, the vectors are unit
// normalized and the mean squared difference is averaged over the scales.
// 0 means identical, lower is better.
type Perceptual struct{}

// NewPerceptual returns the perceptual metric.
func NewPerceptual() *Perceptual {
	return &Perceptual{}
}

// Name returns the report column name.
func (l *Perceptual) Name() string {
	return "LPIPS"
}

// Compute returns the mean perceptual distance over the batch.
func (l *Perceptual) Compute(pred, gt []*types.Tensor) (float64, error) {
	if len(pred) != len(gt) {
		return 0, fmt.Errorf("LPIPS batch sides differ: %d vs %d", len(pred), len(gt))
	}
	if len(pred) == 0 {
		return 0, fmt.Errorf("LPIPS got an empty batch")
	}

	var sum float64
	for i := range pred {
		var v, err = l.pair(pred[i], gt[i])
		if err != nil {
			return 0, fmt.Errorf("LPIPS pair %d: %w", i, err)
		}
		sum += v
	}
	return sum / float64(len(pred)), nil
}

func (l *Perceptual) pair(a, b *types.Tensor) (float64, error) {
	if !a.SameShape(b) {
		return 0, fmt.Errorf("tensor shapes differ: %dx%dx%d vs %dx%dx%d", a.C, a.H, a.W, b.C, b.H, b.W)
	}

	var x, y = a.Signed(), b.Signed()

	var total float64
	var scales int
	for s := 0; s < perceptualScales; s++ {
		if x.H < 3 || x.W < 3 {
			break
		}
		total += featureDistance(x, y)
		scales++
		x, y = downsample(x), downsample(y)
	}
	if scales == 0 {
		return 0, fmt.Errorf("image %dx%d is too small for the feature pyramid", a.W, a.H)
	}

	return total / float64(scales), nil
}

// featureDistance compares two same shape tensors pixel by pixel in a
// 3*C dimensional feature space of channel values and Sobel gradients.
func featureDistance(a, b *types.Tensor) float64 {
	var dim = 3 * a.C
	var featsA = make([][]float64, 0, dim)
	var featsB = make([][]float64, 0, dim)
	for c := 0; c < a.C; c++ {
		var gxA, gyA = sobel(a.Plane(c), a.H, a.W)
		var gxB, gyB = sobel(b.Plane(c), b.H, b.W)
		featsA = append(featsA, a.Plane(c), gxA, gyA)
		featsB = append(featsB, b.Plane(c), gxB, gyB)
	}

	var va = make([]float64, dim)
	var vb = make([]float64, dim)
	var sum float64
	for i := 0; i < a.H*a.W; i++ {
		for f := 0; f < dim; f++ {
			va[f] = featsA[f][i]
			vb[f] = featsB[f][i]
		}
		unitNorm(va)
		unitNorm(vb)

		var d = floats.Distance(va, vb, 2)
		sum += d * d
	}

	return sum / float64(a.H*a.W)
}

// unitNorm scales v to unit length in place, the epsilon keeps zero vectors finite.
func unitNorm(v []float64) {
	floats.Scale(1/(floats.Norm(v, 2)+1e-10), v)
}

// sobel returns the horizontal and vertical gradient planes, borders clamped.
func sobel(plane []float64, h, w int) ([]float64, []float64) {
	var gx = make([]float64, h*w)
	var gy = make([]float64, h*w)

	var at = func(y, x int) float64 {
		if y < 0 {
			y = 0
		} else if y >= h {
			y = h - 1
		}
		if x < 0 {
			x = 0
		} else if x >= w {
			x = w - 1
		}
		return plane[y*w+x]
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx[y*w+x] = at(y-1, x+1) + 2*at(y, x+1) + at(y+1, x+1) - at(y-1, x-1) - 2*at(y, x-1) - at(y+1, x-1)
			gy[y*w+x] = at(y+1, x-1) + 2*at(y+1, x) + at(y+1, x+1) - at(y-1, x-1) - 2*at(y-1, x) - at(y-1, x+1)
		}
	}

	return gx, gy
}

// downsample halves both dimensions with 2x2 mean pooling, odd edges dropped.
func downsample(t *types.Tensor) *types.Tensor {
	var oh, ow = t.H / 2, t.W / 2
	var out = types.NewTensor(t.C, oh, ow)
	for c := 0; c < t.C; c++ {
		for y := 0; y < oh; y++ {
			for x := 0; x < ow; x++ {
				var v = t.At(c, 2*y, 2*x) + t.At(c, 2*y, 2*x+1) + t.At(c, 2*y+1, 2*x) + t.At(c, 2*y+1, 2*x+1)
				out.Set(c, y, x, v/4)
			}
		}
	}
	return out
}
