package pairing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKey(t *testing.T) {
	t.Parallel()

	var key, err = ExtractKey("photo_00012345.png")
	assert.NoError(t, err)
	assert.Equal(t, "00012345", key)

	key, err = ExtractKey("render_00012345_out.png")
	assert.NoError(t, err)
	assert.Equal(t, "00012345", key)

	// the window starts at the first digit anywhere in the name
	key, err = ExtractKey("v2_model_output_9.png")
	assert.NoError(t, err)
	assert.Equal(t, "2_model_", key)

	// short names yield short keys, the window may run into the extension
	key, err = ExtractKey("abc123.png")
	assert.NoError(t, err)
	assert.Equal(t, "123.png", key)

	// anything past 8 characters is dropped
	key, err = ExtractKey("img_12345678901.jpg")
	assert.NoError(t, err)
	assert.Equal(t, "12345678", key)
}

func TestExtractKeyInshop(t *testing.T) {
	t.Parallel()

	var key, err = ExtractKey("fashionWOMENBlousesinshopid0000123401.jpg")
	assert.NoError(t, err)
	assert.Equal(t, "fashionWOMENBlousesinshopid0000123401", key)

	// only the first dot ends the stem
	key, err = ExtractKey("inshopid01.crop.png")
	assert.NoError(t, err)
	assert.Equal(t, "inshopid01", key)
}

func TestExtractKeyUnrecognized(t *testing.T) {
	t.Parallel()

	var _, err = ExtractKey("nodigitshere.png")
	assert.Error(t, err)

	var nameErr *UnrecognizedNameError
	assert.ErrorAs(t, err, &nameErr)
	assert.Equal(t, "nodigitshere.png", nameErr.Filename)
}
