package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"geneval/pkg/geneval/types"
)

func TestPerceptual(t *testing.T) {
	t.Parallel()

	var lpips = NewPerceptual()
	assert.Equal(t, "LPIPS", lpips.Name())

	var img = gradientTensor(3, 32, 32)

	var v, err = lpips.Compute([]*types.Tensor{img}, []*types.Tensor{img})
	assert.NoError(t, err)
	assert.InDelta(t, 0, v, 1e-12)

	v, err = lpips.Compute([]*types.Tensor{uniformTensor(3, 32, 32, 0.5)}, []*types.Tensor{img})
	assert.NoError(t, err)
	assert.Greater(t, v, 0.0)
}

func TestPerceptualRankOrder(t *testing.T) {
	t.Parallel()

	var lpips = NewPerceptual()
	var img = gradientTensor(3, 32, 32)

	// a lightly shifted copy should score closer than a flat one
	var shifted = gradientTensor(3, 32, 32)
	for i, v := range shifted.Data {
		shifted.Data[i] = v * 0.95
	}

	var near, err = lpips.Compute([]*types.Tensor{shifted}, []*types.Tensor{img})
	assert.NoError(t, err)
	far, err := lpips.Compute([]*types.Tensor{uniformTensor(3, 32, 32, 0.5)}, []*types.Tensor{img})
	assert.NoError(t, err)
	assert.Less(t, near, far)
}

func TestPerceptualErrors(t *testing.T) {
	t.Parallel()

	var lpips = NewPerceptual()

	var _, err = lpips.Compute(nil, nil)
	assert.Error(t, err)

	_, err = lpips.Compute([]*types.Tensor{gradientTensor(3, 2, 2)}, []*types.Tensor{gradientTensor(3, 2, 2)})
	assert.ErrorContains(t, err, "too small")

	_, err = lpips.Compute([]*types.Tensor{gradientTensor(3, 32, 31)}, []*types.Tensor{gradientTensor(3, 32, 32)})
	assert.ErrorContains(t, err, "tensor shapes differ")
}
