package imaging

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// writeTestImage writes a small gradient image so tests do not need binary fixtures.
func writeTestImage(t *testing.T, file string, width, height int) {
	var img = image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 7 % 256), G: uint8(y * 13 % 256), B: uint8((x + y) * 3 % 256), A: 255})
		}
	}
	assert.NoError(t, Encode(file, img))
}

func TestDecode(t *testing.T) {
	t.Parallel()

	var dir = t.TempDir()
	var file = filepath.Join(dir, "img.png")
	writeTestImage(t, file, 33, 17)

	var img, err = Decode(file)
	assert.NoError(t, err)
	assert.Equal(t, 33, img.Bounds().Dx())
	assert.Equal(t, 17, img.Bounds().Dy())

	_, err = Decode(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	var garbage = filepath.Join(dir, "garbage.png")
	assert.NoError(t, os.WriteFile(garbage, []byte("not an image"), os.ModePerm))
	_, err = Decode(garbage)
	assert.Error(t, err)
}

func TestConfig(t *testing.T) {
	t.Parallel()

	var dir = t.TempDir()
	var file = filepath.Join(dir, "img.jpg")
	writeTestImage(t, file, 48, 32)

	var config, err = Config(file)
	assert.NoError(t, err)
	assert.Equal(t, 48, config.Width)
	assert.Equal(t, 32, config.Height)

	_, err = Config(filepath.Join(dir, "missing.jpg"))
	assert.Error(t, err)
}

func TestResizeToHeight(t *testing.T) {
	t.Parallel()

	var img = image.NewNRGBA(image.Rect(0, 0, 200, 100))

	var resized = ResizeToHeight(img, 50)
	assert.Equal(t, 100, resized.Bounds().Dx())
	assert.Equal(t, 50, resized.Bounds().Dy())

	// width is rounded, not truncated: 3 * 3 / 2 = 4.5 -> 5
	resized = ResizeToHeight(image.NewNRGBA(image.Rect(0, 0, 3, 2)), 3)
	assert.Equal(t, 5, resized.Bounds().Dx())
	assert.Equal(t, 3, resized.Bounds().Dy())

	// already at the target height, nothing to do
	resized = ResizeToHeight(img, 100)
	assert.Equal(t, 200, resized.Bounds().Dx())
	assert.Equal(t, 100, resized.Bounds().Dy())
}

func TestResize(t *testing.T) {
	t.Parallel()

	var img = image.NewNRGBA(image.Rect(0, 0, 10, 20))

	var resized = Resize(img, 7, 9)
	assert.Equal(t, 7, resized.Bounds().Dx())
	assert.Equal(t, 9, resized.Bounds().Dy())
}

func TestEncode(t *testing.T) {
	t.Parallel()

	var dir = t.TempDir()
	var img = image.NewNRGBA(image.Rect(0, 0, 12, 8))

	for _, name := range []string{"out.png", "out.jpg"} {
		var file = filepath.Join(dir, name)
		assert.NoError(t, Encode(file, img))

		var decoded, err = Decode(file)
		assert.NoError(t, err)
		assert.Equal(t, 12, decoded.Bounds().Dx())
		assert.Equal(t, 8, decoded.Bounds().Dy())
	}
}
