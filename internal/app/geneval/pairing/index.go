package pairing

import (
	"github.com/RoaringBitmap/roaring"

	"geneval/pkg/geneval/types"
)

// BuildIndex resolves every prediction file to its ground truth counterpart
// by key. The ground truth side is keyed first and when two files share a
// key the later one wins, silently; upstream pipelines are expected to emit
// unique ids. Pairs come back in prediction enumeration order. Predictions
// with no match are not an error, their indices into predFiles are returned
// as a bitmap for the caller to report. A filename no convention recognizes
// aborts the build.
func BuildIndex(gtFiles, predFiles []File) ([]types.Pair, *roaring.Bitmap, error) {

	var gtByKey = make(map[string]File, len(gtFiles))
	for _, file := range gtFiles {
		var key, err = ExtractKey(file.Name)
		if err != nil {
			return nil, nil, err
		}
		gtByKey[key] = file
	}

	var pairs = make([]types.Pair, 0, len(predFiles))
	var unmatched = roaring.New()
	for i, file := range predFiles {
		var key, err = ExtractKey(file.Name)
		if err != nil {
			return nil, nil, err
		}
		if gt, ok := gtByKey[key]; ok {
			pairs = append(pairs, types.Pair{GT: gt.Path, Pred: file.Path})
		} else {
			unmatched.Add(uint32(i))
		}
	}

	return pairs, unmatched, nil
}
