package dataset

import (
	"context"
	"fmt"
	"runtime"

	"github.com/kmulvey/goutils"

	"geneval/pkg/geneval/types"
)

// Batch is one ordered slice of decoded pairs, GT and Pred aligned by index.
type Batch struct {
	Index int
	GT    []*types.Tensor
	Pred  []*types.Tensor
}

// Size is the number of pairs in the batch.
func (b *Batch) Size() int {
	return len(b.GT)
}

// Loader streams a Dataset as fixed size batches. Items are decoded by a
// worker pool but batches are always delivered in index order so runs are
// reproducible, and the batch channel is buffered by the worker count which
// bounds how far decoding runs ahead of the consumer.
type Loader struct {
	ds         *Dataset
	batchSize  int
	numWorkers int
}

type item struct {
	index int
	gt    *types.Tensor
	pred  *types.Tensor
}

// NewLoader returns a Loader over ds.
func NewLoader(ds *Dataset, batchSize, numWorkers int) *Loader {
	if batchSize <= 0 {
		batchSize = 1
	}
	if numWorkers <= 0 || numWorkers > runtime.GOMAXPROCS(0) {
		numWorkers = 1
	}
	return &Loader{ds: ds, batchSize: batchSize, numWorkers: numWorkers}
}

// Run starts the decode workers and returns the batch and error channels,
// both close once the dataset is exhausted or ctx is cancelled. A decode
// error is sent on the error channel and its batch is abandoned, the caller
// is expected to cancel ctx, a partial score is useless.
func (l *Loader) Run(ctx context.Context) (chan Batch, chan error) {
	var jobs = make(chan int, l.numWorkers)
	var itemChans = make([]chan item, l.numWorkers)
	var errorChans = make([]chan error, l.numWorkers)
	for i := 0; i < l.numWorkers; i++ {
		itemChans[i] = make(chan item)
		errorChans[i] = make(chan error)
		go l.decodeWorker(ctx, jobs, itemChans[i], errorChans[i])
	}

	go func() {
		defer close(jobs)
		for i := 0; i < l.ds.Len(); i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	var batches = make(chan Batch, l.numWorkers)
	go l.collect(ctx, goutils.MergeChannels(itemChans...), batches)

	return batches, goutils.MergeChannels(errorChans...)
}

func (l *Loader) decodeWorker(ctx context.Context, jobs chan int, items chan item, errors chan error) {
	defer close(items)
	defer close(errors)

	for {
		select {
		case <-ctx.Done():
			return
		case i, open := <-jobs:
			if !open {
				return
			}

			var gt, pred, err = l.ds.At(i)
			if err != nil {
				errors <- fmt.Errorf("Loader failed on pair %d, err: %w", i, err)
				continue
			}

			select {
			case <-ctx.Done():
				return
			case items <- item{index: i, gt: gt, pred: pred}:
			}
		}
	}
}

// collect reorders decoded items back into index order and cuts them into
// batches. The holding pen never grows past the number of in flight items.
func (l *Loader) collect(ctx context.Context, items chan item, batches chan Batch) {
	defer close(batches)

	var pending = make(map[int]item, l.numWorkers)
	var next int
	var current = Batch{}

	for it := range items {
		pending[it.index] = it
		for {
			var ready, ok = pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++

			current.GT = append(current.GT, ready.gt)
			current.Pred = append(current.Pred, ready.pred)
			if len(current.GT) == l.batchSize {
				select {
				case <-ctx.Done():
					return
				case batches <- current:
				}
				current = Batch{Index: current.Index + 1}
			}
		}
	}

	if len(current.GT) > 0 {
		select {
		case <-ctx.Done():
		case batches <- current:
		}
	}
}
