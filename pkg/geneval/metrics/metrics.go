// Package metrics holds the scoring half of the evaluator: paired metrics
// that consume batches of aligned tensors and distributional metrics that
// compare two folders as populations.
package metrics

import (
	"context"

	"geneval/pkg/geneval/types"
)

// BatchMetric scores one batch of paired tensors and returns a scalar.
// Callers multiply by the batch size and divide by the dataset length at the
// end, so a short final batch carries exactly its weight.
type BatchMetric interface {
	Name() string
	Compute(pred, gt []*types.Tensor) (float64, error)
}

// FolderMetric scores two image folders as distributions, no pairing involved.
type FolderMetric interface {
	Name() string
	Compute(ctx context.Context, gtDir, predDir string) (float64, error)
}
