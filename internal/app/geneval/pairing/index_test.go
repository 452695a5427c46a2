package pairing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildIndex(t *testing.T) {
	t.Parallel()

	var gtFiles = []File{
		{Path: "/gt/photo_00012345.png", Name: "photo_00012345.png"},
		{Path: "/gt/photo_00067890.png", Name: "photo_00067890.png"},
	}
	var predFiles = []File{
		{Path: "/pred/render_00012345_out.png", Name: "render_00012345_out.png"},
		{Path: "/pred/render_00099999_out.png", Name: "render_00099999_out.png"},
		{Path: "/pred/render_00067890_out.png", Name: "render_00067890_out.png"},
	}

	var pairs, unmatched, err = BuildIndex(gtFiles, predFiles)
	assert.NoError(t, err)
	assert.Len(t, pairs, 2)

	// pairs keep prediction enumeration order
	assert.Equal(t, "/gt/photo_00012345.png", pairs[0].GT)
	assert.Equal(t, "/pred/render_00012345_out.png", pairs[0].Pred)
	assert.Equal(t, "/gt/photo_00067890.png", pairs[1].GT)
	assert.Equal(t, "/pred/render_00067890_out.png", pairs[1].Pred)

	assert.EqualValues(t, 1, unmatched.GetCardinality())
	assert.True(t, unmatched.Contains(1))
}

func TestBuildIndexDuplicateKeys(t *testing.T) {
	t.Parallel()

	// two ground truth files share a key, the later one wins
	var gtFiles = []File{
		{Path: "/gt/a_00012345.png", Name: "a_00012345.png"},
		{Path: "/gt/b_00012345.png", Name: "b_00012345.png"},
	}
	var predFiles = []File{
		{Path: "/pred/c_00012345.png", Name: "c_00012345.png"},
	}

	var pairs, unmatched, err = BuildIndex(gtFiles, predFiles)
	assert.NoError(t, err)
	assert.Len(t, pairs, 1)
	assert.Equal(t, "/gt/b_00012345.png", pairs[0].GT)
	assert.True(t, unmatched.IsEmpty())
}

func TestBuildIndexUnrecognizedName(t *testing.T) {
	t.Parallel()

	var good = []File{{Path: "/x/a_00012345.png", Name: "a_00012345.png"}}
	var bad = []File{{Path: "/x/nodigits.png", Name: "nodigits.png"}}

	var _, _, err = BuildIndex(bad, good)
	assert.Error(t, err)

	_, _, err = BuildIndex(good, bad)
	assert.Error(t, err)

	var nameErr *UnrecognizedNameError
	assert.ErrorAs(t, err, &nameErr)
}
