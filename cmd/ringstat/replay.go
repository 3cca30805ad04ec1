package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	gometrics "github.com/rcrowley/go-metrics"
	"go.uber.org/zap"

	"github.com/peter-kozarec/ringstat/pkg/common"
	"github.com/peter-kozarec/ringstat/pkg/data/db"
	"github.com/peter-kozarec/ringstat/pkg/data/mapper"
	"github.com/peter-kozarec/ringstat/pkg/metrics"
	"github.com/peter-kozarec/ringstat/pkg/sensor"
)

// Replayer feeds every configured source into a sensor registry and tracks the
// gap between consecutive readings of the same sensor.
type Replayer struct {
	logger   *zap.Logger
	cfg      Config
	registry *sensor.Registry
	gaps     gometrics.Histogram
	last     map[string]time.Time
	skipped  uint64
}

func NewReplayer(logger *zap.Logger, cfg Config) (*Replayer, error) {
	r := &Replayer{
		logger:   logger,
		cfg:      cfg,
		registry: sensor.NewRegistry(logger, cfg.Capacity),
		gaps:     metrics.NewHistogram(cfg.GapWindow),
		last:     make(map[string]time.Time),
	}

	for _, src := range cfg.Sources {
		if src.Sensor == "" {
			continue
		}
		if _, ok := r.registry.Get(src.Sensor); ok {
			continue
		}
		if _, err := r.registry.Register(src.Sensor, src.Capacity); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Replayer) Registry() *sensor.Registry { return r.registry }
func (r *Replayer) Gaps() gometrics.Histogram  { return r.gaps }
func (r *Replayer) Skipped() uint64            { return r.skipped }

func (r *Replayer) Run(ctx context.Context) error {
	for i, src := range r.cfg.Sources {
		start := time.Now()
		if err := r.feed(ctx, src); err != nil {
			return errors.Wrapf(err, "source %d (%s %s)", i, src.Kind, src.Path)
		}
		r.logger.Info("source replayed",
			zap.String("kind", src.Kind),
			zap.String("path", src.Path),
			zap.Duration("elapsed", time.Since(start)))
	}
	return nil
}

func (r *Replayer) Report() {
	for _, snap := range r.registry.Snapshots() {
		r.logger.Info("sensor", zap.Object("snapshot", snap))
	}

	gaps := r.gaps.Snapshot()
	ps := gaps.Percentiles([]float64{0.5, 0.9, 0.99})
	r.logger.Info("reading gaps",
		zap.Int64("count", gaps.Count()),
		zap.Int64("min_ms", gaps.Min()),
		zap.Int64("max_ms", gaps.Max()),
		zap.Float64("mean_ms", gaps.Mean()),
		zap.Float64("p50_ms", ps[0]),
		zap.Float64("p90_ms", ps[1]),
		zap.Float64("p99_ms", ps[2]),
		zap.Uint64("skipped", r.skipped))
}

func (r *Replayer) feed(ctx context.Context, src SourceConfig) error {
	switch src.Kind {
	case SourceBinary:
		reader := mapper.NewReader[mapper.BinarySample](src.Path)
		if err := reader.Open(); err != nil {
			return err
		}
		defer reader.Close()

		return mapper.ForEach(ctx, reader, func(b mapper.BinarySample) error {
			sample := b.ToSample(src.Sensor)
			if sample.TimeStamp.Before(r.cfg.From) || sample.TimeStamp.After(r.cfg.To) {
				return nil
			}
			return r.handle(sample)
		})

	case SourceDuckDB, SourcePostgres:
		reader := db.NewReader(src.Kind, src.Path)
		if err := reader.Connect(ctx); err != nil {
			return err
		}
		defer reader.Close()

		return reader.LoadSamples(ctx, src.Table, r.cfg.From, r.cfg.To, func(sample common.Sample) error {
			if src.Sensor != "" {
				sample.Sensor = src.Sensor
			}
			return r.handle(sample)
		})
	}
	return errors.Errorf("unknown source kind %q", src.Kind)
}

func (r *Replayer) handle(sample common.Sample) error {
	if prev, ok := r.last[sample.Sensor]; ok {
		r.gaps.Update(sample.TimeStamp.Sub(prev).Milliseconds())
	}
	r.last[sample.Sensor] = sample.TimeStamp

	if err := r.registry.Update(sample); err != nil {
		if errors.Is(err, sensor.ErrInvalidReading) {
			r.skipped++
			r.logger.Warn("skipping reading", zap.Object("sample", sample), zap.Error(err))
			return nil
		}
		return err
	}
	return nil
}
