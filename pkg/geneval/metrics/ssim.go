package metrics

import (
	"fmt"
	"math"

	"geneval/pkg/geneval/types"
)

const (
	ssimWindow = 11
	ssimSigma  = 1.5
	ssimK1     = 0.01
	ssimK2     = 0.03
)

// SSIM is mean structural similarity over [0,1] tensors: a gaussian 11x11
// window slides over both sides and local luminance, contrast and structure
// are compared. 1 means identical, higher is better.
type SSIM struct {
	kernel []float64
}

// NewSSIM returns the SSIM metric with its gaussian window precomputed.
func NewSSIM() *SSIM {
	var kernel = make([]float64, ssimWindow)
	var center = ssimWindow / 2
	var sum float64
	for i := range kernel {
		var d = float64(i - center)
		kernel[i] = math.Exp(-d * d / (2 * ssimSigma * ssimSigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return &SSIM{kernel: kernel}
}

// Name returns the report column name.
func (s *SSIM) Name() string {
	return "SSIM"
}

// Compute returns the mean SSIM over the batch.
func (s *SSIM) Compute(pred, gt []*types.Tensor) (float64, error) {
	if len(pred) != len(gt) {
		return 0, fmt.Errorf("SSIM batch sides differ: %d vs %d", len(pred), len(gt))
	}
	if len(pred) == 0 {
		return 0, fmt.Errorf("SSIM got an empty batch")
	}

	var sum float64
	for i := range pred {
		var v, err = s.pair(pred[i], gt[i])
		if err != nil {
			return 0, fmt.Errorf("SSIM pair %d: %w", i, err)
		}
		sum += v
	}
	return sum / float64(len(pred)), nil
}

func (s *SSIM) pair(a, b *types.Tensor) (float64, error) {
	if !a.SameShape(b) {
		return 0, fmt.Errorf("tensor shapes differ: %dx%dx%d vs %dx%dx%d", a.C, a.H, a.W, b.C, b.H, b.W)
	}
	if a.H < ssimWindow || a.W < ssimWindow {
		return 0, fmt.Errorf("image %dx%d is smaller than the %d pixel ssim window", a.W, a.H, ssimWindow)
	}

	var c1 = ssimK1 * ssimK1
	var c2 = ssimK2 * ssimK2

	var sum float64
	for c := 0; c < a.C; c++ {
		var x, y = a.Plane(c), b.Plane(c)

		var xx = make([]float64, len(x))
		var yy = make([]float64, len(x))
		var xy = make([]float64, len(x))
		for i := range x {
			xx[i] = x[i] * x[i]
			yy[i] = y[i] * y[i]
			xy[i] = x[i] * y[i]
		}

		var mux, oh, ow = s.filter(x, a.H, a.W)
		var muy, _, _ = s.filter(y, a.H, a.W)
		var fxx, _, _ = s.filter(xx, a.H, a.W)
		var fyy, _, _ = s.filter(yy, a.H, a.W)
		var fxy, _, _ = s.filter(xy, a.H, a.W)

		var total float64
		for i := 0; i < oh*ow; i++ {
			var sxx = fxx[i] - mux[i]*mux[i]
			var syy = fyy[i] - muy[i]*muy[i]
			var sxy = fxy[i] - mux[i]*muy[i]

			var num = (2*mux[i]*muy[i] + c1) * (2*sxy + c2)
			var den = (mux[i]*mux[i] + muy[i]*muy[i] + c1) * (sxx + syy + c2)
			total += num / den
		}
		sum += total / float64(oh*ow)
	}

	return sum / float64(a.C), nil
}

// filter runs the separable gaussian over plane, valid mode so the output
// shrinks by the window size in both dimensions.
func (s *SSIM) filter(plane []float64, h, w int) ([]float64, int, int) {
	var ow = w - ssimWindow + 1
	var oh = h - ssimWindow + 1

	var horiz = make([]float64, h*ow)
	for y := 0; y < h; y++ {
		for x := 0; x < ow; x++ {
			var acc float64
			for j, k := range s.kernel {
				acc += k * plane[y*w+x+j]
			}
			horiz[y*ow+x] = acc
		}
	}

	var out = make([]float64, oh*ow)
	for y := 0; y < oh; y++ {
		for x := 0; x < ow; x++ {
			var acc float64
			for j, k := range s.kernel {
				acc += k * horiz[(y+j)*ow+x]
			}
			out[y*ow+x] = acc
		}
	}

	return out, oh, ow
}
