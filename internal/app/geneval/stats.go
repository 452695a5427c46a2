package geneval

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"geneval/pkg/geneval/features"
)

// stats are prometheus stats for the evaluator
type stats struct {
	GTFiles          prometheus.Gauge
	PredFiles        prometheus.Gauge
	PairTotal        prometheus.Gauge
	UnmatchedTotal   prometheus.Counter
	BatchesCompleted prometheus.Counter
	BatchTime        prometheus.Gauge
	MetricTime       prometheus.Gauge
	CachedFeatures   prometheus.Gauge
	GCTime           prometheus.Gauge
	PromNamespace    string
}

// newStats inits all the stats
func newStats(promNamespace string) *stats {
	var s = new(stats)
	s.PromNamespace = promNamespace

	s.GTFiles = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: promNamespace,
			Name:      "gt_files",
			Help:      "how many ground truth files were found",
		},
	)
	s.PredFiles = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: promNamespace,
			Name:      "pred_files",
			Help:      "how many prediction files were found",
		},
	)
	s.PairTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: promNamespace,
			Name:      "pair_total",
			Help:      "how many pairs survived the key join",
		},
	)
	s.UnmatchedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "unmatched_total",
			Help:      "predictions with no ground truth match",
		},
	)
	s.BatchesCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "batches_completed",
			Help:      "how many batches have been scored",
		},
	)
	s.BatchTime = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: promNamespace,
			Name:      "batch_time_nano",
			Help:      "how long it takes to score one batch, in nanoseconds",
		},
	)
	s.MetricTime = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: promNamespace,
			Name:      "metric_time_nano",
			Help:      "how long the last metric took end to end, in nanoseconds",
		},
	)
	s.CachedFeatures = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: promNamespace,
			Name:      "cached_features",
			Help:      "how many feature vectors are in the cache",
		},
	)
	s.GCTime = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: promNamespace,
			Name:      "gc_time_nano",
			Help:      "how long a gc sweep took",
		},
	)
	prometheus.MustRegister(s.GTFiles)
	prometheus.MustRegister(s.PredFiles)
	prometheus.MustRegister(s.PairTotal)
	prometheus.MustRegister(s.UnmatchedTotal)
	prometheus.MustRegister(s.BatchesCompleted)
	prometheus.MustRegister(s.BatchTime)
	prometheus.MustRegister(s.MetricTime)
	prometheus.MustRegister(s.CachedFeatures)
	prometheus.MustRegister(s.GCTime)

	return s
}

// publishStats publishes go GC stats + cache size to prom every 10 seconds
func (s *stats) publishStats(featureCache *features.Cache) {
	for {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)
		s.GCTime.Set(float64(memStats.PauseTotalNs))

		if featureCache != nil {
			s.CachedFeatures.Set(float64(featureCache.NumFeatures()))
		}

		time.Sleep(10 * time.Second)
	}
}

// unregister removes all the stats
func (s *stats) unregister() {
	prometheus.Unregister(s.GTFiles)
	prometheus.Unregister(s.PredFiles)
	prometheus.Unregister(s.PairTotal)
	prometheus.Unregister(s.UnmatchedTotal)
	prometheus.Unregister(s.BatchesCompleted)
	prometheus.Unregister(s.BatchTime)
	prometheus.Unregister(s.MetricTime)
	prometheus.Unregister(s.CachedFeatures)
	prometheus.Unregister(s.GCTime)
}
