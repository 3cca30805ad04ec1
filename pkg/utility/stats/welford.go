package stats

import (
	"math"

	"github.com/pkg/errors"
)

var ErrNumericInstability = errors.New("numeric instability")

// Welford keeps a running mean and sum of squared deviations that supports
// removing values as well as adding them.
//
// Removing the last value resets the accumulator to zero instead of inverting
// the update. This drops the error accumulated over the lifetime of a long
// running window only when it drains completely, the drift is not corrected
// otherwise.
//
// Invalid states (NaN input, NaN or negative m2) set a sticky error that is
// only cleared by Reset.
type Welford struct {
	n    int
	sum  float64
	mean float64
	m2   float64
	err  error
}

func (w *Welford) Add(v float64) {
	w.n++
	delta := v - w.mean
	mean := w.mean + delta/float64(w.n)
	w.m2 += delta * (v - mean)
	w.mean = mean
	w.sum += v

	if math.IsNaN(v) {
		w.fail("NaN value added")
	}
	w.guard()
}

func (w *Welford) Remove(v float64) {
	if w.n <= 1 {
		w.n, w.sum, w.mean, w.m2 = 0, 0, 0, 0
		return
	}

	n := float64(w.n)
	mean := (n*w.mean - v) / (n - 1)
	w.m2 -= (v - w.mean) * (v - mean)
	w.mean = mean
	w.sum -= v
	w.n--

	if math.IsNaN(v) {
		w.fail("NaN value removed")
	}
	w.guard()
}

func (w *Welford) Reset() {
	*w = Welford{}
}

func (w *Welford) Count() int {
	return w.n
}

func (w *Welford) Sum() float64 {
	return w.sum
}

func (w *Welford) Mean() float64 {
	return w.mean
}

// Variance is the sample variance, zero for fewer than two values.
func (w *Welford) Variance() float64 {
	if w.n > 1 {
		return w.m2 / float64(w.n-1)
	}
	return 0
}

// StdDev is NaN for fewer than two values.
func (w *Welford) StdDev() float64 {
	if w.n >= 2 {
		return math.Sqrt(w.Variance())
	}
	return math.NaN()
}

func (w *Welford) StdErr() float64 {
	if w.n > 1 {
		return w.StdDev() / math.Sqrt(float64(w.n))
	}
	return 0
}

func (w *Welford) Err() error {
	return w.err
}

func (w *Welford) guard() {
	switch {
	case math.IsNaN(w.m2):
		w.fail("sum of squared deviations is NaN")
	case w.m2 < 0:
		w.fail("sum of squared deviations is negative")
		w.m2 = 0
	}
}

func (w *Welford) fail(reason string) {
	if w.err == nil {
		w.err = errors.Wrap(ErrNumericInstability, reason)
	}
}
