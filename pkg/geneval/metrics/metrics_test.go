package metrics

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"geneval/pkg/geneval/imaging"
	"geneval/pkg/geneval/types"
)

// uniformTensor is filled with a single value.
func uniformTensor(c, h, w int, v float64) *types.Tensor {
	var t = types.NewTensor(c, h, w)
	for i := range t.Data {
		t.Data[i] = v
	}
	return t
}

// gradientTensor is a deterministic non constant tensor with values in [0,1].
func gradientTensor(c, h, w int) *types.Tensor {
	var t = types.NewTensor(c, h, w)
	for ch := 0; ch < c; ch++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				t.Set(ch, y, x, float64((x*7+y*13+ch*29)%97)/96)
			}
		}
	}
	return t
}

// writeImageDir fills dir with n gradient images around the given brightness.
func writeImageDir(t *testing.T, dir string, n int, base uint8) {
	for i := 0; i < n; i++ {
		var img = image.NewNRGBA(image.Rect(0, 0, 48, 48))
		for y := 0; y < 48; y++ {
			for x := 0; x < 48; x++ {
				img.SetNRGBA(x, y, color.NRGBA{R: uint8(int(base) + (x+i)%16), G: uint8(int(base) + (y+2*i)%16), B: base, A: 255})
			}
		}
		assert.NoError(t, imaging.Encode(filepath.Join(dir, fmt.Sprintf("img_%02d.png", i)), img))
	}
}
