package metrics

import (
	"fmt"
	"math"

	"geneval/pkg/geneval/types"
)

// PSNR is peak signal to noise ratio over [0,1] tensors, in dB. Higher is
// better, identical pairs are +Inf.
type PSNR struct{}

// NewPSNR returns the PSNR metric.
func NewPSNR() *PSNR {
	return &PSNR{}
}

// Name returns the report column name.
func (p *PSNR) Name() string {
	return "PSNR"
}

// Compute returns the mean PSNR over the batch.
func (p *PSNR) Compute(pred, gt []*types.Tensor) (float64, error) {
	if len(pred) != len(gt) {
		return 0, fmt.Errorf("PSNR batch sides differ: %d vs %d", len(pred), len(gt))
	}
	if len(pred) == 0 {
		return 0, fmt.Errorf("PSNR got an empty batch")
	}

	var sum float64
	for i := range pred {
		var mse, err = meanSquaredError(pred[i], gt[i])
		if err != nil {
			return 0, fmt.Errorf("PSNR pair %d: %w", i, err)
		}

		var psnr = math.Inf(1)
		if mse > 0 {
			psnr = 10 * math.Log10(1/mse)
		}
		sum += psnr
	}

	return sum / float64(len(pred)), nil
}

// meanSquaredError is the pixelwise MSE of two tensors of the same shape.
// Pairs can end up with different widths when the sides were rendered at
// different aspect ratios, that is surfaced here as an error rather than
// silently stretching one side.
func meanSquaredError(a, b *types.Tensor) (float64, error) {
	if !a.SameShape(b) {
		return 0, fmt.Errorf("tensor shapes differ: %dx%dx%d vs %dx%dx%d", a.C, a.H, a.W, b.C, b.H, b.W)
	}

	var sum float64
	for i := range a.Data {
		var diff = a.Data[i] - b.Data[i]
		sum += diff * diff
	}
	return sum / float64(len(a.Data)), nil
}
