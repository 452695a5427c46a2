package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"geneval/pkg/geneval/types"
)

func TestPSNR(t *testing.T) {
	t.Parallel()

	var psnr = NewPSNR()
	assert.Equal(t, "PSNR", psnr.Name())

	var gt = []*types.Tensor{uniformTensor(3, 16, 16, 1)}
	var pred = []*types.Tensor{uniformTensor(3, 16, 16, 0.5)}

	// mse 0.25 -> 10·log10(4)
	var v, err = psnr.Compute(pred, gt)
	assert.NoError(t, err)
	assert.InDelta(t, 6.0206, v, 1e-4)

	// identical pairs have no noise at all
	v, err = psnr.Compute(gt, gt)
	assert.NoError(t, err)
	assert.True(t, math.IsInf(v, 1))
}

func TestPSNRBatchMean(t *testing.T) {
	t.Parallel()

	var gt = []*types.Tensor{uniformTensor(1, 8, 8, 1), uniformTensor(1, 8, 8, 1)}
	var pred = []*types.Tensor{uniformTensor(1, 8, 8, 0.5), uniformTensor(1, 8, 8, 0.9)}

	// (10·log10(4) + 10·log10(100)) / 2
	var v, err = NewPSNR().Compute(pred, gt)
	assert.NoError(t, err)
	assert.InDelta(t, 13.0103, v, 1e-4)
}

func TestPSNRErrors(t *testing.T) {
	t.Parallel()

	var psnr = NewPSNR()

	var _, err = psnr.Compute(nil, nil)
	assert.Error(t, err)

	_, err = psnr.Compute([]*types.Tensor{uniformTensor(1, 8, 8, 0)}, nil)
	assert.Error(t, err)

	// pairs with mismatched widths are an error, never silently stretched
	_, err = psnr.Compute([]*types.Tensor{uniformTensor(3, 16, 17, 0)}, []*types.Tensor{uniformTensor(3, 16, 16, 0)})
	assert.ErrorContains(t, err, "tensor shapes differ")
}
