package sensor

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/peter-kozarec/ringstat/pkg/common"
)

const namespace = "ringstat"

var (
	readingsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "sensor", "readings_total"),
		"Number of readings recorded by the sensor.",
		[]string{"sensor"}, nil)
	windowSizeDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "sensor", "window_size"),
		"Number of readings currently held in the rolling window.",
		[]string{"sensor"}, nil)
	windowMeanDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "sensor", "window_mean"),
		"Mean of the rolling window.",
		[]string{"sensor"}, nil)
	windowStdDevDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "sensor", "window_stddev"),
		"Sample standard deviation of the rolling window.",
		[]string{"sensor"}, nil)
	windowMinDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "sensor", "window_min"),
		"Minimum of the rolling window.",
		[]string{"sensor"}, nil)
	windowMaxDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "sensor", "window_max"),
		"Maximum of the rolling window.",
		[]string{"sensor"}, nil)
	numericErrorDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "sensor", "numeric_error"),
		"1 when the rolling statistics hit a numeric instability.",
		[]string{"sensor"}, nil)
)

// Registry is a concurrency safe set of named sensors. It implements
// prometheus.Collector.
type Registry struct {
	logger          *zap.Logger
	defaultCapacity int

	mu      sync.RWMutex
	sensors map[string]*Sensor
}

func NewRegistry(logger *zap.Logger, defaultCapacity int) *Registry {
	if defaultCapacity <= 0 {
		panic("default capacity must be positive")
	}
	return &Registry{
		logger:          logger,
		defaultCapacity: defaultCapacity,
		sensors:         make(map[string]*Sensor),
	}
}

// Register creates a sensor with its own window capacity. A capacity of zero
// selects the registry default.
func (r *Registry) Register(name string, capacity int) (*Sensor, error) {
	if name == "" {
		return nil, errors.New("sensor name is empty")
	}
	if capacity < 0 {
		return nil, errors.Errorf("sensor %s: negative capacity %d", name, capacity)
	}
	if capacity == 0 {
		capacity = r.defaultCapacity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sensors[name]; ok {
		return nil, errors.Errorf("sensor %s already registered", name)
	}
	s := NewSensor(r.logger, name, capacity)
	r.sensors[name] = s
	r.logger.Info("sensor registered", zap.String("sensor", name), zap.Int("capacity", capacity))
	return s, nil
}

// Get returns the named sensor. The sensor itself is not locked, callers that
// read it while samples are flowing through Update race with the registry.
func (r *Registry) Get(name string) (*Sensor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sensors[name]
	return s, ok
}

// Update routes a sample to its sensor, registering unknown sensors with the
// default capacity.
func (r *Registry) Update(sample common.Sample) error {
	if sample.Sensor == "" {
		return errors.New("sample without sensor")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sensors[sample.Sensor]
	if !ok {
		s = NewSensor(r.logger, sample.Sensor, r.defaultCapacity)
		r.sensors[sample.Sensor] = s
		r.logger.Debug("sensor registered on first sample", zap.Object("sample", sample))
	}
	return s.Update(sample.Value)
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sensors))
	for name := range r.sensors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshots returns one snapshot per sensor ordered by name.
func (r *Registry) Snapshots() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshots := make([]Snapshot, 0, len(r.sensors))
	for _, s := range r.sensors {
		snapshots = append(snapshots, s.Snapshot())
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Name < snapshots[j].Name })
	return snapshots
}

func (r *Registry) Describe(ch chan<- *prometheus.Desc) {
	ch <- readingsDesc
	ch <- windowSizeDesc
	ch <- windowMeanDesc
	ch <- windowStdDevDesc
	ch <- windowMinDesc
	ch <- windowMaxDesc
	ch <- numericErrorDesc
}

func (r *Registry) Collect(ch chan<- prometheus.Metric) {
	for _, snap := range r.Snapshots() {
		numericError := 0.0
		if snap.NumericError {
			numericError = 1
		}
		ch <- prometheus.MustNewConstMetric(readingsDesc, prometheus.CounterValue, float64(snap.Count), snap.Name)
		ch <- prometheus.MustNewConstMetric(windowSizeDesc, prometheus.GaugeValue, float64(snap.WindowSize), snap.Name)
		ch <- prometheus.MustNewConstMetric(windowMeanDesc, prometheus.GaugeValue, snap.WindowMean, snap.Name)
		ch <- prometheus.MustNewConstMetric(windowStdDevDesc, prometheus.GaugeValue, snap.WindowStdDev, snap.Name)
		ch <- prometheus.MustNewConstMetric(windowMinDesc, prometheus.GaugeValue, snap.WindowMin, snap.Name)
		ch <- prometheus.MustNewConstMetric(windowMaxDesc, prometheus.GaugeValue, snap.WindowMax, snap.Name)
		ch <- prometheus.MustNewConstMetric(numericErrorDesc, prometheus.GaugeValue, numericError, snap.Name)
	}
}
