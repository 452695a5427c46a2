package geneval

import (
	"context"
	"fmt"
	"image"
	"sort"
	"time"

	"github.com/RoaringBitmap/roaring"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"geneval/internal/app/geneval/dataset"
	"geneval/internal/app/geneval/pairing"
	"geneval/pkg/geneval/features"
	"geneval/pkg/geneval/imaging"
	"geneval/pkg/geneval/logger"
	"geneval/pkg/geneval/metrics"
)

// Config are the run options for an Evaluator.
type Config struct {
	Paired           bool
	BatchSize        int
	NumWorkers       int
	FeatureCacheFile string
	UnmatchedLogFile string
}

// Evaluator wires the whole pipeline: scan both folders, join them by key,
// normalize heights and hand the corpus to the metrics one at a time.
type Evaluator struct {
	*stats
	gtDir         string
	predDir       string
	config        Config
	device        *metrics.Device
	featureCache  *features.Cache
	extractor     *features.Extractor
	unmatchedLog  *logger.UnmatchedLogger
	folderMetrics []metrics.FolderMetric
	batchMetrics  []metrics.BatchMetric
	crossCheck    metrics.FolderMetric
}

// NewEvaluator is the constructor which sets everything up but does not
// process anything, Run() must be called for that.
func NewEvaluator(promNamespace, gtDir, predDir string, config Config) (*Evaluator, error) {

	if config.BatchSize <= 0 {
		config.BatchSize = 16
	}

	var e = new(Evaluator)
	var err error

	e.gtDir = gtDir
	e.predDir = predDir
	e.config = config
	e.stats = newStats(promNamespace)
	e.device = metrics.NewDevice(config.NumWorkers)

	if config.FeatureCacheFile != "" {
		e.featureCache, err = features.NewCache(config.FeatureCacheFile, promNamespace)
		if err != nil {
			return nil, err
		}
	}
	e.extractor = features.NewExtractor(e.featureCache)

	if config.UnmatchedLogFile != "" {
		e.unmatchedLog, err = logger.NewUnmatchedLogger(config.UnmatchedLogFile)
		if err != nil {
			return nil, err
		}
	}

	e.folderMetrics = []metrics.FolderMetric{
		metrics.NewFrechet(e.extractor, e.device),
		metrics.NewKernel(e.extractor, e.device),
	}
	e.batchMetrics = []metrics.BatchMetric{
		metrics.NewPSNR(),
		metrics.NewSSIM(),
		metrics.NewPerceptual(),
	}
	e.crossCheck = metrics.NewFrechetReference(e.extractor, e.device)

	go e.stats.publishStats(e.featureCache)

	return e, nil
}

// Run executes the whole evaluation and returns the report. Distribution
// metrics always run, the paired metrics only when configured, and the
// alternate frechet solver goes last as a cross check on the first score.
func (e *Evaluator) Run(ctx context.Context) (*Report, error) {

	var height, err = e.normalizeHeights()
	if err != nil {
		return nil, err
	}

	gtFiles, err := e.scanDir(e.gtDir, e.stats.GTFiles)
	if err != nil {
		return nil, err
	}
	predFiles, err := e.scanDir(e.predDir, e.stats.PredFiles)
	if err != nil {
		return nil, err
	}

	pairs, unmatched, err := pairing.BuildIndex(gtFiles, predFiles)
	if err != nil {
		return nil, err
	}
	e.stats.PairTotal.Set(float64(len(pairs)))
	log.Infof("joined %d pairs, %d predictions unmatched", len(pairs), unmatched.GetCardinality())
	e.reportUnmatched(predFiles, unmatched)

	var report = &Report{GTDir: e.gtDir, PredDir: e.predDir}

	var release = e.device.Acquire()
	defer release()

	for _, metric := range e.folderMetrics {
		if err := e.runFolderMetric(ctx, metric, report); err != nil {
			return nil, err
		}
	}

	if e.config.Paired {
		var ds = dataset.New(pairs, height)
		for _, metric := range e.batchMetrics {
			var start = time.Now()
			score, err := e.runPaired(ctx, metric, ds)
			if err != nil {
				return nil, fmt.Errorf("%s failed: %w", metric.Name(), err)
			}
			e.stats.MetricTime.Set(float64(time.Since(start)))
			report.add(metric.Name(), score)
		}
	}

	if err := e.runFolderMetric(ctx, e.crossCheck, report); err != nil {
		return nil, err
	}

	return report, nil
}

func (e *Evaluator) runFolderMetric(ctx context.Context, metric metrics.FolderMetric, report *Report) error {
	var start = time.Now()
	var score, err = metric.Compute(ctx, e.gtDir, e.predDir)
	if err != nil {
		return fmt.Errorf("%s failed: %w", metric.Name(), err)
	}
	e.stats.MetricTime.Set(float64(time.Since(start)))
	report.add(metric.Name(), score)
	return nil
}

// normalizeHeights probes one image per side and bulk resizes the ground
// truth corpus when the heights disagree, the rest of the run then reads
// the resized sibling dir. Returns the common height.
func (e *Evaluator) normalizeHeights() (int, error) {
	var predConfig, err = probeFirst(e.predDir)
	if err != nil {
		return 0, err
	}
	gtConfig, err := probeFirst(e.gtDir)
	if err != nil {
		return 0, err
	}

	if gtConfig.Height != predConfig.Height {
		log.Infof("resizing ground truth to %dx%d", predConfig.Width, predConfig.Height)
		resizedDir, err := imaging.ResizeDir(e.gtDir, predConfig.Width, predConfig.Height)
		if err != nil {
			return 0, err
		}
		e.gtDir = resizedDir
	}

	return predConfig.Height, nil
}

// probeFirst reads the dimensions of the alphabetically first image in dir.
func probeFirst(dir string) (image.Config, error) {
	var files, err = pairing.Scan(dir, pairing.ImageExtensions, nil)
	if err != nil {
		return image.Config{}, err
	}
	if len(files) == 0 {
		return image.Config{}, fmt.Errorf("no images found in dir: %s", dir)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return imaging.Config(files[0].Path)
}

func (e *Evaluator) scanDir(dir string, gauge prometheus.Gauge) ([]pairing.File, error) {
	var files, err = pairing.Scan(dir, pairing.ImageExtensions, func(found int) {
		gauge.Set(float64(found))
	})
	if err != nil {
		return nil, err
	}
	log.Infof("found %d images in %s", len(files), dir)
	return files, nil
}

// reportUnmatched warns about every prediction that had no ground truth
// counterpart. They are dropped from the paired metrics, not errors.
func (e *Evaluator) reportUnmatched(predFiles []pairing.File, unmatched *roaring.Bitmap) {
	for it := unmatched.Iterator(); it.HasNext(); {
		var file = predFiles[it.Next()]
		log.WithFields(log.Fields{"pred": file.Path}).Warn("no ground truth match")
		if e.unmatchedLog != nil {
			var key, _ = pairing.ExtractKey(file.Name) // already extracted once by BuildIndex
			e.unmatchedLog.LogUnmatched(file.Path, key)
		}
	}
	e.stats.UnmatchedTotal.Add(float64(unmatched.GetCardinality()))
}

// runPaired streams the dataset through the metric and folds the batch
// scores into a corpus wide mean, each batch weighted by its size.
func (e *Evaluator) runPaired(ctx context.Context, metric metrics.BatchMetric, ds *dataset.Dataset) (float64, error) {
	if ds.Len() == 0 {
		return 0, fmt.Errorf("no pairs to score")
	}

	var runCtx, cancel = context.WithCancel(ctx)
	defer cancel()

	var loader = dataset.NewLoader(ds, e.config.BatchSize, e.config.NumWorkers)
	var batches, errors = loader.Run(runCtx)

	var sum float64
	var firstErr error
	for batches != nil || errors != nil {
		select {
		case batch, open := <-batches:
			if !open {
				batches = nil
				continue
			}
			if firstErr != nil {
				continue
			}
			var start = time.Now()
			score, err := metric.Compute(batch.Pred, batch.GT)
			if err != nil {
				firstErr = err
				cancel()
				continue
			}
			sum += score * float64(batch.Size())
			e.stats.BatchTime.Set(float64(time.Since(start)))
			e.stats.BatchesCompleted.Inc()
		case err, open := <-errors:
			if !open {
				errors = nil
				continue
			}
			if firstErr == nil {
				firstErr = err
				cancel()
			}
		}
	}
	if firstErr != nil {
		return 0, firstErr
	}

	return sum / float64(ds.Len()), nil
}

// Shutdown unregisters prom stats, closes the unmatched log and persists
// the feature cache.
func (e *Evaluator) Shutdown() error {
	e.stats.unregister()
	if e.unmatchedLog != nil {
		if err := e.unmatchedLog.Close(); err != nil {
			return err
		}
	}
	if e.featureCache != nil {
		return e.featureCache.Persist(e.config.FeatureCacheFile)
	}
	return nil
}
