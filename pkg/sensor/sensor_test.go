package sensor

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestSensor_Update(t *testing.T) {
	s := NewSensor(zaptest.NewLogger(t), "temperature", 3)

	for _, v := range []float64{21.5, 19.25, 22.75, 20.5} {
		require.NoError(t, s.Update(v))
	}

	assert.Equal(t, "temperature", s.Name())
	assert.Equal(t, uint64(4), s.Count())
	assert.Equal(t, 20.5, s.Last())
	assert.Equal(t, 19.25, s.Min())
	assert.Equal(t, 22.75, s.Max())
	assert.Equal(t, "84", s.Sum().Trim(0).String())

	avg, err := s.Average()
	require.NoError(t, err)
	assert.Equal(t, "21", avg.Trim(0).String())

	w := s.Window()
	assert.Equal(t, []float64{19.25, 22.75, 20.5}, w.Slice())
	assert.InDelta(t, 62.5/3, w.Mean(), 1e-12)
}

func TestSensor_UpdateRejectsNonFinite(t *testing.T) {
	s := NewSensor(zap.NewNop(), "pressure", 2)
	require.NoError(t, s.Update(1))

	tests := []struct {
		name  string
		value float64
	}{
		{"nan", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Update(tt.value)
			assert.True(t, errors.Is(err, ErrInvalidReading), "got %v", err)
			assert.Equal(t, uint64(1), s.Count())
			assert.Equal(t, 1, s.Window().Size())
		})
	}
}

func TestSensor_AverageEmpty(t *testing.T) {
	s := NewSensor(zap.NewNop(), "empty", 2)

	avg, err := s.Average()
	require.NoError(t, err)
	assert.True(t, avg.IsZero())
}

func TestSensor_LogsOverwrite(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewSensor(zap.New(core), "humidity", 1)

	require.NoError(t, s.Update(40))
	require.NoError(t, s.Update(41))

	entries := logs.FilterMessage("window overwrite").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "humidity", entries[0].ContextMap()["sensor"])
}

func TestSensor_SnapshotAndReset(t *testing.T) {
	s := NewSensor(zap.NewNop(), "voltage", 4)
	for _, v := range []float64{5, 3, 8, 1} {
		require.NoError(t, s.Update(v))
	}

	snap := s.Snapshot()
	assert.Equal(t, s.ID(), snap.ID)
	assert.Equal(t, uint64(4), snap.Count)
	assert.Equal(t, 4, snap.WindowSize)
	assert.Equal(t, 1.0, snap.WindowMin)
	assert.Equal(t, 8.0, snap.WindowMax)
	assert.InDelta(t, 4.25, snap.WindowMean, 1e-12)
	assert.False(t, snap.NumericError)

	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, snap.MarshalLogObject(enc))
	assert.Equal(t, "voltage", enc.Fields["name"])
	assert.Equal(t, snap.Average.String(), enc.Fields["average"])
	assert.Equal(t, "4.25", snap.Average.Trim(0).String())

	s.Reset()
	assert.Equal(t, uint64(0), s.Count())
	assert.True(t, s.Window().IsEmpty())
	assert.True(t, s.Sum().IsZero())
}

func TestSensor_UniqueIDs(t *testing.T) {
	a := NewSensor(zap.NewNop(), "a", 1)
	b := NewSensor(zap.NewNop(), "a", 1)
	assert.NotEqual(t, a.ID(), b.ID())
}
