package imaging

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
)

// Decode reads and decodes a jpg or png image.
func Decode(file string) (image.Image, error) {
	var fileHandle, err = os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("Decode error opening file: %s, err: %w", file, err)
	}

	img, _, err := image.Decode(fileHandle)
	if err != nil {
		return nil, fmt.Errorf("Decode error decoding file: %s, err: %w", file, err)
	}

	if err = fileHandle.Close(); err != nil {
		return nil, fmt.Errorf("Decode error closing file: %s, err: %w", file, err)
	}

	return img, nil
}

// Config reads just the image dimensions without decoding the pixel data.
func Config(file string) (image.Config, error) {
	var fileHandle, err = os.Open(file)
	if err != nil {
		return image.Config{}, fmt.Errorf("Config error opening file: %s, err: %w", file, err)
	}

	config, _, err := image.DecodeConfig(fileHandle)
	if err != nil {
		return image.Config{}, fmt.Errorf("Config error decoding file: %s, err: %w", file, err)
	}

	if err = fileHandle.Close(); err != nil {
		return image.Config{}, fmt.Errorf("Config error closing file: %s, err: %w", file, err)
	}

	return config, nil
}

// ResizeToHeight scales img to the given height keeping its aspect ratio,
// the width is rounded to the nearest pixel. Lanczos resampling.
func ResizeToHeight(img image.Image, height int) image.Image {
	var bounds = img.Bounds()
	if bounds.Dy() == height {
		return img
	}
	var width = int(math.Round(float64(bounds.Dx()) * float64(height) / float64(bounds.Dy())))
	return resize.Resize(uint(width), uint(height), img, resize.Lanczos3)
}

// Resize forces img to exactly width x height, the aspect ratio is not kept.
func Resize(img image.Image, width, height int) image.Image {
	var bounds = img.Bounds()
	if bounds.Dx() == width && bounds.Dy() == height {
		return img
	}
	return resize.Resize(uint(width), uint(height), img, resize.Lanczos3)
}

// Encode writes img to dest, the format is chosen by the file extension,
// anything that is not png is written as jpg.
func Encode(dest string, img image.Image) error {
	var fileHandle, err = os.Create(dest)
	if err != nil {
		return fmt.Errorf("Encode error creating file: %s, err: %w", dest, err)
	}

	if strings.ToLower(filepath.Ext(dest)) == ".png" {
		err = png.Encode(fileHandle, img)
	} else {
		err = jpeg.Encode(fileHandle, img, nil)
	}
	if err != nil {
		return fmt.Errorf("Encode error encoding file: %s, err: %w", dest, err)
	}

	if err = fileHandle.Close(); err != nil {
		return fmt.Errorf("Encode error closing file: %s, err: %w", dest, err)
	}

	return nil
}
