package metrics

import (
	"sync"

	gometrics "github.com/rcrowley/go-metrics"

	"github.com/peter-kozarec/ringstat/pkg/utility/stats"
)

// WindowSample is a go-metrics Sample over the most recent values. Mean and
// variance come from the incremental window statistics, percentiles sort a
// copy of the window.
type WindowSample struct {
	mu     sync.Mutex
	count  int64
	window *stats.Window[int64]
}

func NewWindowSample(capacity int) *WindowSample {
	return &WindowSample{
		window: stats.NewWindow[int64](capacity),
	}
}

// NewHistogram returns a go-metrics histogram backed by a WindowSample.
func NewHistogram(capacity int) gometrics.Histogram {
	return gometrics.NewHistogram(NewWindowSample(capacity))
}

func (s *WindowSample) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count = 0
	s.window.Clear()
}

// Count returns the number of updates since the last Clear, including the
// ones already pushed out of the window.
func (s *WindowSample) Count() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *WindowSample) Max() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, _ := s.window.Max()
	return v
}

func (s *WindowSample) Min() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, _ := s.window.Min()
	return v
}

func (s *WindowSample) Mean() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.Mean()
}

func (s *WindowSample) Percentile(p float64) float64 {
	return s.Percentiles([]float64{p})[0]
}

func (s *WindowSample) Percentiles(ps []float64) []float64 {
	return gometrics.SamplePercentiles(s.Values(), ps)
}

func (s *WindowSample) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.Size()
}

func (s *WindowSample) Snapshot() gometrics.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gometrics.NewSampleSnapshot(s.count, s.window.Slice())
}

// StdDev is zero for fewer than two values, as go-metrics expects.
func (s *WindowSample) StdDev() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.window.Size() < 2 {
		return 0
	}
	return s.window.StdDev()
}

func (s *WindowSample) Sum() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	s.window.ForEach(func(v int64) { sum += v })
	return sum
}

func (s *WindowSample) Update(v int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	s.window.PushBack(v)
}

// Values returns a copy of the window, oldest first.
func (s *WindowSample) Values() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := make([]int64, s.window.Size())
	s.window.CopyTo(values)
	return values
}

func (s *WindowSample) Variance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.Variance()
}
