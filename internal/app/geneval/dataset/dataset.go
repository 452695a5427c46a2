package dataset

import (
	"fmt"

	"geneval/pkg/geneval/imaging"
	"geneval/pkg/geneval/types"
)

// Dataset is a randomly indexable sequence of (ground truth, prediction)
// tensor pairs, decoded and height normalized on every access. Nothing is
// cached, trading repeat decodes for bounded memory on large corpora.
type Dataset struct {
	pairs  []types.Pair
	height int
}

// New returns a Dataset over pairs, every image is normalized to height.
func New(pairs []types.Pair, height int) *Dataset {
	return &Dataset{pairs: pairs, height: height}
}

// Len is the number of pairs.
func (d *Dataset) Len() int {
	return len(d.pairs)
}

// At decodes pair i and returns ground truth then prediction, both resized
// to the configured height and converted to [0,1] CHW tensors. The sides
// always share a height, widths can differ by aspect ratio.
func (d *Dataset) At(i int) (*types.Tensor, *types.Tensor, error) {
	if i < 0 || i >= len(d.pairs) {
		return nil, nil, fmt.Errorf("Dataset index %d out of range [0,%d)", i, len(d.pairs))
	}

	var gt, err = d.load(d.pairs[i].GT)
	if err != nil {
		return nil, nil, err
	}
	pred, err := d.load(d.pairs[i].Pred)
	if err != nil {
		return nil, nil, err
	}
	return gt, pred, nil
}

func (d *Dataset) load(file string) (*types.Tensor, error) {
	var img, err = imaging.Decode(file)
	if err != nil {
		return nil, err
	}

	img = imaging.ResizeToHeight(img, d.height)
	if img.Bounds().Dy() != d.height {
		// degenerate aspect ratios can land off target, resize again
		img = imaging.ResizeToHeight(img, d.height)
	}

	return types.FromImage(img), nil
}
