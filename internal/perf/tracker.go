// Package perf tracks rolling-window performance samples for the dashboard:
// render durations, API response times, and memory readings.
//
// The tracker is a pure sliding-window aggregator. Alerting decisions (such
// as the memory-high banner) belong to the dashboard, which compares the
// latest reading against its threshold.
package perf

import "time"

// DefaultWindowSize is the default number of samples retained per series.
const DefaultWindowSize = 100

// Sample is a single timestamped measurement.
type Sample struct {
	Value float64
	At    time.Time
}

// series is a bounded FIFO sample sequence, oldest trimmed past the cap.
type series struct {
	samples []Sample
	cap     int
}

func (s *series) add(value float64, at time.Time) {
	s.samples = append(s.samples, Sample{Value: value, At: at})
	if len(s.samples) > s.cap {
		s.samples = s.samples[len(s.samples)-s.cap:]
	}
}

func (s *series) mean() float64 {
	if len(s.samples) == 0 {
		return 0
	}
	var sum float64
	for _, sample := range s.samples {
		sum += sample.Value
	}
	return sum / float64(len(s.samples))
}

func (s *series) last() (Sample, bool) {
	if len(s.samples) == 0 {
		return Sample{}, false
	}
	return s.samples[len(s.samples)-1], true
}

// Tracker holds the three sample series used by the dashboard.
type Tracker struct {
	renders   series
	apiTimes  series
	memory    series
	now       func() time.Time
}

// NewTracker creates a tracker with the given window size per series.
// Non-positive sizes fall back to DefaultWindowSize.
func NewTracker(windowSize int) *Tracker {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &Tracker{
		renders:  series{cap: windowSize},
		apiTimes: series{cap: windowSize},
		memory:   series{cap: windowSize},
		now:      time.Now,
	}
}

// AddRenderTime records how long one dashboard render took.
func (t *Tracker) AddRenderTime(d time.Duration) {
	t.renders.add(float64(d.Milliseconds()), t.now())
}

// AddAPIResponseTime records the latency of one backend request.
func (t *Tracker) AddAPIResponseTime(d time.Duration) {
	t.apiTimes.add(float64(d.Milliseconds()), t.now())
}

// AddMemoryReading records a memory usage percentage from a snapshot.
func (t *Tracker) AddMemoryReading(percent float64) {
	t.memory.add(percent, t.now())
}

// AverageRenderTime returns the mean render time in milliseconds over the
// current window, or 0 for an empty window.
func (t *Tracker) AverageRenderTime() float64 {
	return t.renders.mean()
}

// AverageAPIResponseTime returns the mean API latency in milliseconds over
// the current window, or 0 for an empty window.
func (t *Tracker) AverageAPIResponseTime() float64 {
	return t.apiTimes.mean()
}

// LastMemoryReading returns the most recent memory percentage and whether
// any reading has been recorded.
func (t *Tracker) LastMemoryReading() (float64, bool) {
	s, ok := t.memory.last()
	return s.Value, ok
}

// MemoryHistory returns up to count of the most recent memory readings,
// oldest first, for sparkline rendering.
func (t *Tracker) MemoryHistory(count int) []float64 {
	samples := t.memory.samples
	if count > 0 && len(samples) > count {
		samples = samples[len(samples)-count:]
	}
	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s.Value
	}
	return values
}

// RenderSampleCount returns how many render samples are in the window.
func (t *Tracker) RenderSampleCount() int {
	return len(t.renders.samples)
}
