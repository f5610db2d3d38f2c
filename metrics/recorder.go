package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Config bounds the histogram. Values are recorded in microseconds.
type Config struct {
	// HistogramMin is the minimum recordable value in microseconds (default: 1)
	HistogramMin int64

	// HistogramMax is the maximum recordable value in microseconds (default: 3600000000 = 1 hour)
	HistogramMax int64

	// HistogramSigFigs is the number of significant figures (default: 3)
	HistogramSigFigs int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		HistogramMin:     1,
		HistogramMax:     3600000000,
		HistogramSigFigs: 3,
	}
}

// Snapshot is a point-in-time view of a Recorder.
type Snapshot struct {
	Count   int64
	Failed  int64
	Bytes   int64
	Min     time.Duration
	Max     time.Duration
	Mean    time.Duration
	StdDev  time.Duration
	P50     time.Duration
	P90     time.Duration
	P95     time.Duration
	P99     time.Duration
	ByRoute map[string]time.Duration // p95 per method and path
}

// ErrorRate returns Failed/Count, or 0 with no requests.
func (s Snapshot) ErrorRate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Failed) / float64(s.Count)
}

// Recorder aggregates request latencies.
type Recorder struct {
	mu     sync.Mutex
	config Config
	hist   *hdrhistogram.Histogram
	routes map[string]*hdrhistogram.Histogram
	failed int64
	bytes  int64
}

// NewRecorder returns a recorder with DefaultConfig.
func NewRecorder() *Recorder {
	return NewRecorderWithConfig(DefaultConfig())
}

// NewRecorderWithConfig returns a recorder with config.
func NewRecorderWithConfig(config Config) *Recorder {
	return &Recorder{
		config: config,
		hist:   hdrhistogram.New(config.HistogramMin, config.HistogramMax, config.HistogramSigFigs),
		routes: make(map[string]*hdrhistogram.Histogram),
	}
}

func (r *Recorder) clamp(d time.Duration) int64 {
	us := d.Microseconds()
	if us < r.config.HistogramMin {
		us = r.config.HistogramMin
	}
	if us > r.config.HistogramMax {
		us = r.config.HistogramMax
	}
	return us
}

// Record adds one request. route is usually "METHOD /path"; an empty route
// skips the per-route breakdown. A failed request is a transport error or a
// status of 400 or above.
func (r *Recorder) Record(route string, d time.Duration, failed bool, bytes int64) {
	value := r.clamp(d)

	r.mu.Lock()
	defer r.mu.Unlock()

	_ = r.hist.RecordValue(value)
	if failed {
		r.failed++
	}
	if bytes > 0 {
		r.bytes += bytes
	}

	if route == "" {
		return
	}
	hist, ok := r.routes[route]
	if !ok {
		hist = hdrhistogram.New(r.config.HistogramMin, r.config.HistogramMax, r.config.HistogramSigFigs)
		r.routes[route] = hist
	}
	_ = hist.RecordValue(value)
}

// Snapshot returns the current aggregates.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		Count:   r.hist.TotalCount(),
		Failed:  r.failed,
		Bytes:   r.bytes,
		ByRoute: make(map[string]time.Duration, len(r.routes)),
	}
	if snap.Count == 0 {
		return snap
	}

	snap.Min = micros(r.hist.Min())
	snap.Max = micros(r.hist.Max())
	snap.Mean = time.Duration(r.hist.Mean() * float64(time.Microsecond))
	snap.StdDev = time.Duration(r.hist.StdDev() * float64(time.Microsecond))
	snap.P50 = micros(r.hist.ValueAtQuantile(50))
	snap.P90 = micros(r.hist.ValueAtQuantile(90))
	snap.P95 = micros(r.hist.ValueAtQuantile(95))
	snap.P99 = micros(r.hist.ValueAtQuantile(99))
	for route, hist := range r.routes {
		snap.ByRoute[route] = micros(hist.ValueAtQuantile(95))
	}
	return snap
}

// Reset clears every recorded value.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hist.Reset()
	r.routes = make(map[string]*hdrhistogram.Histogram)
	r.failed = 0
	r.bytes = 0
}

func micros(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}
