package features

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus"
)

// Cache stores a map of file -> feature vector so repeat evaluations of
// large corpora skip the decode and transform work. Keyed by path as given.
type Cache struct {
	store              map[string][]float64
	lock               sync.RWMutex
	featureCacheHits   prometheus.Counter
	featureCacheMisses prometheus.Counter
}

// NewCache reads the given file to rebuild its map from the last run.
// A missing file starts an empty cache that Persist will create.
func NewCache(file, promNamespace string) (*Cache, error) {
	var fc = new(Cache)
	fc.store = make(map[string][]float64)
	fc.featureCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "feature_cache_hits",
		},
	)
	fc.featureCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "feature_cache_misses",
		},
	)
	prometheus.MustRegister(fc.featureCacheHits)
	prometheus.MustRegister(fc.featureCacheMisses)

	var f, err = os.Open(file)
	if err != nil {
		if os.IsNotExist(err) {
			return fc, nil
		}
		return nil, fmt.Errorf("FeatureCache error opening file: %s, err: %w", file, err)
	}
	if info, err := f.Stat(); err != nil {
		return nil, fmt.Errorf("FeatureCache error stating file: %s, err: %w", file, err)
	} else if info.Size() == 0 {
		return fc, nil
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("FeatureCache error reading gzip file: %s, err: %w", file, err)
	}
	if err = json.NewDecoder(gz).Decode(&fc.store); err != nil {
		return nil, fmt.Errorf("FeatureCache error decoding json file: %s, err: %w", file, err)
	}
	if err = gz.Close(); err != nil {
		return nil, fmt.Errorf("FeatureCache error closing gzip reader: %s, err: %w", file, err)
	}

	if err = f.Close(); err != nil {
		return nil, fmt.Errorf("FeatureCache error closing file: %s, err: %w", file, err)
	}

	return fc, nil
}

// NumFeatures returns the number of vectors in the cache.
func (fc *Cache) NumFeatures() int {
	fc.lock.RLock()
	defer fc.lock.RUnlock()

	return len(fc.store)
}

// Get returns the cached vector for file if there is one.
func (fc *Cache) Get(file string) ([]float64, bool) {
	fc.lock.RLock()
	var vec, ok = fc.store[file]
	fc.lock.RUnlock()

	if ok {
		fc.featureCacheHits.Inc()
	} else {
		fc.featureCacheMisses.Inc()
	}
	return vec, ok
}

// Put stores the vector for file.
func (fc *Cache) Put(file string, vec []float64) {
	fc.lock.Lock()
	fc.store[file] = vec
	fc.lock.Unlock()
}

// Persist writes the cache to disk, gzip compressed json.
func (fc *Cache) Persist(file string) error {

	var f, err = os.Create(file)
	if err != nil {
		return fmt.Errorf("FeatureCache error creating file: %s, err: %w", file, err)
	}

	var gz = gzip.NewWriter(f)

	fc.lock.RLock()
	err = json.NewEncoder(gz).Encode(fc.store)
	fc.lock.RUnlock()
	if err != nil {
		return fmt.Errorf("FeatureCache error json encoding file: %s, err: %w", file, err)
	}

	if err = gz.Close(); err != nil {
		return fmt.Errorf("FeatureCache error closing gzip writer: %s, err: %w", file, err)
	}

	if err = f.Close(); err != nil {
		return fmt.Errorf("FeatureCache error closing file: %s, err: %w", file, err)
	}

	return nil
}
