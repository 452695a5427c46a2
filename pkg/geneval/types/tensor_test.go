package types

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromImage(t *testing.T) {
	t.Parallel()

	var img = image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	var tensor = FromImage(img)
	assert.Equal(t, 3, tensor.C)
	assert.Equal(t, 2, tensor.H)
	assert.Equal(t, 2, tensor.W)
	assert.Len(t, tensor.Data, 12)

	assert.InDelta(t, 1, tensor.At(0, 0, 0), 1e-9)
	assert.InDelta(t, 0, tensor.At(1, 0, 0), 1e-9)
	assert.InDelta(t, 1, tensor.At(1, 0, 1), 1e-9)
	assert.InDelta(t, 1, tensor.At(2, 1, 0), 1e-9)
	assert.InDelta(t, 1, tensor.At(0, 1, 1), 1e-9)

	for _, v := range tensor.Data {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestSetAt(t *testing.T) {
	t.Parallel()

	var tensor = NewTensor(3, 4, 5)
	assert.Len(t, tensor.Data, 60)

	tensor.Set(2, 3, 4, 0.25)
	assert.Equal(t, 0.25, tensor.At(2, 3, 4))
	assert.Equal(t, 0.25, tensor.Data[59])

	tensor.Set(1, 0, 2, 0.5)
	assert.Equal(t, 0.5, tensor.Plane(1)[2])
}

func TestSameShape(t *testing.T) {
	t.Parallel()

	assert.True(t, NewTensor(3, 4, 5).SameShape(NewTensor(3, 4, 5)))
	assert.False(t, NewTensor(3, 4, 5).SameShape(NewTensor(3, 4, 6)))
	assert.False(t, NewTensor(1, 4, 5).SameShape(NewTensor(3, 4, 5)))
}

func TestSigned(t *testing.T) {
	t.Parallel()

	var tensor = NewTensor(1, 1, 3)
	tensor.Data[0] = 0
	tensor.Data[1] = 0.5
	tensor.Data[2] = 1

	var signed = tensor.Signed()
	assert.InDelta(t, -1, signed.Data[0], 1e-9)
	assert.InDelta(t, 0, signed.Data[1], 1e-9)
	assert.InDelta(t, 1, signed.Data[2], 1e-9)

	// the original is untouched
	assert.Equal(t, 0.5, tensor.Data[1])
}
