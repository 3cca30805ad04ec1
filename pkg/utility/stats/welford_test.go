package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWelford_Empty(t *testing.T) {
	var w Welford

	assert.Equal(t, 0, w.Count())
	assert.Equal(t, 0.0, w.Mean())
	assert.Equal(t, 0.0, w.Variance())
	assert.True(t, math.IsNaN(w.StdDev()))
	assert.Equal(t, 0.0, w.StdErr())
	assert.NoError(t, w.Err())
}

func TestWelford_Add(t *testing.T) {
	tests := []struct {
		name     string
		data     []float64
		mean     float64
		variance float64
		stdErr   float64
	}{
		{"single", []float64{4}, 4, 0, 0},
		{"pair", []float64{1, 3}, 2, 2, 1},
		{"sequence", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 5, 32.0 / 7, math.Sqrt(32.0/7) / math.Sqrt(8)},
		{"negative", []float64{-3, -2, -1}, -2, 1, 1 / math.Sqrt(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w Welford
			for _, v := range tt.data {
				w.Add(v)
			}

			assert.Equal(t, len(tt.data), w.Count())
			assert.InDelta(t, tt.mean, w.Mean(), 1e-12)
			assert.InDelta(t, tt.variance, w.Variance(), 1e-12)
			assert.InDelta(t, tt.stdErr, w.StdErr(), 1e-12)
			assert.NoError(t, w.Err())
		})
	}
}

func TestWelford_Remove(t *testing.T) {
	var w Welford
	for _, v := range []float64{1, 2, 3, 10} {
		w.Add(v)
	}

	w.Remove(10)
	assert.Equal(t, 3, w.Count())
	assert.InDelta(t, 2.0, w.Mean(), 1e-12)
	assert.InDelta(t, 1.0, w.Variance(), 1e-12)
	assert.InDelta(t, 6.0, w.Sum(), 1e-12)

	w.Remove(1)
	w.Remove(2)
	assert.Equal(t, 1, w.Count())
	assert.InDelta(t, 3.0, w.Mean(), 1e-12)

	w.Remove(3)
	assert.Equal(t, 0, w.Count())
	assert.Equal(t, 0.0, w.Mean())
	assert.Equal(t, 0.0, w.Sum())
	assert.Equal(t, 0.0, w.Variance())
}

func TestWelford_RemoveFromEmpty(t *testing.T) {
	var w Welford
	w.Remove(5)

	assert.Equal(t, 0, w.Count())
	assert.Equal(t, 0.0, w.Mean())
	assert.NoError(t, w.Err())
}

func TestWelford_NaNIsSticky(t *testing.T) {
	var w Welford
	w.Add(1)
	w.Add(math.NaN())

	require.Error(t, w.Err())
	assert.True(t, errors.Is(w.Err(), ErrNumericInstability))

	w.Remove(1)
	w.Remove(1)
	assert.Equal(t, 0, w.Count())
	assert.Error(t, w.Err(), "boundary reset must keep the sticky error")

	w.Reset()
	assert.NoError(t, w.Err())
}

func TestWelford_NegativeM2(t *testing.T) {
	var w Welford
	w.Add(1)
	w.Add(1)
	w.Add(1)

	// Removing a value that was never added drives m2 below zero.
	w.Remove(100)

	assert.True(t, errors.Is(w.Err(), ErrNumericInstability))
	assert.GreaterOrEqual(t, w.Variance(), 0.0)
}
