package sensor

import (
	"math"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/peter-kozarec/ringstat/pkg/utility/stats"
)

var ErrInvalidReading = errors.New("invalid reading")

// Sensor aggregates readings of a single source. Rolling statistics cover the
// last capacity readings, lifetime aggregates cover everything seen since
// creation and keep the sum as an exact decimal.
//
// Sensor is not safe for concurrent use, see Registry.
type Sensor struct {
	id     uuid.UUID
	name   string
	logger *zap.Logger
	window *stats.Window[float64]

	count    uint64
	last     float64
	min      float64
	max      float64
	sum      decimal.Decimal
	degraded bool
}

func NewSensor(logger *zap.Logger, name string, capacity int) *Sensor {
	id := uuid.Must(uuid.NewV7())
	return &Sensor{
		id:     id,
		name:   name,
		logger: logger.With(zap.String("sensor", name), zap.Stringer("sensor_id", id)),
		window: stats.NewWindow[float64](capacity),
	}
}

func (s *Sensor) ID() uuid.UUID                  { return s.id }
func (s *Sensor) Name() string                   { return s.name }
func (s *Sensor) Count() uint64                  { return s.count }
func (s *Sensor) Last() float64                  { return s.last }
func (s *Sensor) Min() float64                   { return s.min }
func (s *Sensor) Max() float64                   { return s.max }
func (s *Sensor) Sum() decimal.Decimal           { return s.sum }
func (s *Sensor) Window() *stats.Window[float64] { return s.window }

// Update records a reading. Non-finite values and values outside the decimal
// range are rejected and leave the sensor untouched.
func (s *Sensor) Update(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return errors.Wrapf(ErrInvalidReading, "sensor %s: %v", s.name, value)
	}
	d, err := decimal.NewFromFloat64(value)
	if err != nil {
		return errors.Wrapf(ErrInvalidReading, "sensor %s: %v: %v", s.name, value, err)
	}
	sum, err := s.sum.Add(d)
	if err != nil {
		return errors.Wrapf(err, "sensor %s: lifetime sum", s.name)
	}

	if !s.window.PushBack(value) {
		s.logger.Debug("window overwrite", zap.Float64("value", value))
	}

	if s.count == 0 || value < s.min {
		s.min = value
	}
	if s.count == 0 || value > s.max {
		s.max = value
	}
	s.count++
	s.last = value
	s.sum = sum

	if err := s.window.Err(); err != nil && !s.degraded {
		s.degraded = true
		mean, variance := s.window.Recompute()
		s.logger.Warn("window statistics degraded",
			zap.Error(err),
			zap.Float64("recomputed_mean", mean),
			zap.Float64("recomputed_variance", variance))
		s.window.Dump(s.logger, nil)
	}
	return nil
}

// Average is the lifetime mean, zero before the first reading.
func (s *Sensor) Average() (decimal.Decimal, error) {
	if s.count == 0 {
		return decimal.Zero, nil
	}
	n, err := decimal.New(int64(s.count), 0)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "reading count")
	}
	avg, err := s.sum.Quo(n)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "sensor %s: average", s.name)
	}
	return avg, nil
}

// Reset drops the window and all lifetime aggregates.
func (s *Sensor) Reset() {
	s.window.Clear()
	s.count, s.last, s.min, s.max = 0, 0, 0, 0
	s.sum = decimal.Zero
	s.degraded = false
}

type Snapshot struct {
	ID      uuid.UUID       `json:"id"`
	Name    string          `json:"name"`
	Count   uint64          `json:"count"`
	Last    float64         `json:"last"`
	Min     float64         `json:"min"`
	Max     float64         `json:"max"`
	Average decimal.Decimal `json:"average"`

	WindowSize   int     `json:"window_size"`
	WindowMean   float64 `json:"window_mean"`
	WindowStdDev float64 `json:"window_stddev"`
	WindowMin    float64 `json:"window_min"`
	WindowMax    float64 `json:"window_max"`
	NumericError bool    `json:"numeric_error"`
}

func (s *Sensor) Snapshot() Snapshot {
	avg, err := s.Average()
	if err != nil {
		s.logger.Warn("unable to compute average", zap.Error(err))
	}
	snap := Snapshot{
		ID:           s.id,
		Name:         s.name,
		Count:        s.count,
		Last:         s.last,
		Min:          s.min,
		Max:          s.max,
		Average:      avg,
		WindowSize:   s.window.Size(),
		WindowMean:   s.window.Mean(),
		WindowStdDev: s.window.StdDev(),
		NumericError: s.window.Err() != nil,
	}
	snap.WindowMin, _ = s.window.Min()
	snap.WindowMax, _ = s.window.Max()
	return snap
}

func (s Snapshot) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("id", s.ID.String())
	enc.AddString("name", s.Name)
	enc.AddUint64("count", s.Count)
	enc.AddFloat64("last", s.Last)
	enc.AddFloat64("min", s.Min)
	enc.AddFloat64("max", s.Max)
	enc.AddString("average", s.Average.String())
	enc.AddInt("window_size", s.WindowSize)
	enc.AddFloat64("window_mean", s.WindowMean)
	enc.AddFloat64("window_stddev", s.WindowStdDev)
	enc.AddFloat64("window_min", s.WindowMin)
	enc.AddFloat64("window_max", s.WindowMax)
	enc.AddBool("numeric_error", s.NumericError)
	return nil
}
