package features

import (
	"context"
	"fmt"
	"sort"

	"github.com/corona10/goimagehash/transforms"
	"github.com/kmulvey/path"
	"golang.org/x/sync/errgroup"

	"geneval/pkg/geneval/imaging"
)

// canvasEdge is the square edge every image is reduced to before the DCT.
const canvasEdge = 64

// blockEdge is the low frequency block kept from the DCT plane.
const blockEdge = 8

// Dim is the length of the vectors an Extractor produces.
const Dim = blockEdge * blockEdge

// featureScale divides the raw DCT coefficients, it folds out the canvas
// area and the 8 bit value range so the DC term lands in [0,1].
const featureScale = canvasEdge * canvasEdge * 255

// Extractor reduces images to fixed length frequency domain embeddings:
// grayscale, 64x64 Lanczos, 2D DCT, flattened 8x8 low frequency block,
// scaled so the DC coefficient lands in [0,1]. The distributional metrics
// compare corpora in this space, it stands in for the pretrained network
// activations the torch tooling uses.
type Extractor struct {
	cache *Cache
}

// NewExtractor returns an Extractor, cache may be nil in which case every
// call recomputes.
func NewExtractor(cache *Cache) *Extractor {
	return &Extractor{cache: cache}
}

// File computes the Dim length embedding of one image.
func (ex *Extractor) File(file string) ([]float64, error) {
	if ex.cache != nil {
		if vec, ok := ex.cache.Get(file); ok {
			return vec, nil
		}
	}

	var img, err = imaging.Decode(file)
	if err != nil {
		return nil, err
	}

	var gray = transforms.Rgb2Gray(imaging.Resize(img, canvasEdge, canvasEdge))
	var freq = transforms.DCT2D(gray, canvasEdge, canvasEdge)

	var vec = make([]float64, 0, Dim)
	for y := 0; y < blockEdge; y++ {
		for x := 0; x < blockEdge; x++ {
			vec = append(vec, freq[y][x]/featureScale)
		}
	}

	if ex.cache != nil {
		ex.cache.Put(file, vec)
	}
	return vec, nil
}

// Folder embeds every image file in dir, one row per image in sorted name
// order so row order is stable across runs. workers bounds the parallel
// decodes.
func (ex *Extractor) Folder(ctx context.Context, dir string, workers int) ([][]float64, error) {
	var entries, err = path.ListFiles(dir, path.NewRegexFilesFilter(imaging.ImageFilesRegex))
	if err != nil {
		return nil, fmt.Errorf("Extractor error listing dir: %s, err: %w", dir, err)
	}
	var fileNames = path.OnlyNames(entries)
	sort.Strings(fileNames)

	if len(fileNames) == 0 {
		return nil, fmt.Errorf("Extractor found no images in dir: %s", dir)
	}
	if workers <= 0 {
		workers = 1
	}

	var vecs = make([][]float64, len(fileNames))
	var group, gctx = errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, file := range fileNames {
		var i, file = i, file
		group.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			var vec, err = ex.File(file)
			if err != nil {
				return err
			}
			vecs[i] = vec
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return vecs, nil
}
