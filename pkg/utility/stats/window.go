package stats

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"

	"github.com/peter-kozarec/ringstat/pkg/utility/circular"
)

type Number interface {
	constraints.Integer | constraints.Float
}

// Window is a circular buffer of numbers that keeps running statistics of the
// elements currently held. Mean and variance are maintained incrementally,
// min, max and rank queries scan the window.
type Window[T Number] struct {
	buf *circular.Buffer[T]
	w   Welford
}

func NewWindow[T Number](capacity int, opts ...circular.Option[T]) *Window[T] {
	return &Window[T]{
		buf: circular.NewBuffer[T](capacity, opts...),
	}
}

func (w *Window[T]) Capacity() int  { return w.buf.Capacity() }
func (w *Window[T]) Size() int      { return w.buf.Size() }
func (w *Window[T]) Available() int { return w.buf.Available() }
func (w *Window[T]) IsEmpty() bool  { return w.buf.IsEmpty() }
func (w *Window[T]) IsFull() bool   { return w.buf.IsFull() }

func (w *Window[T]) Front() (T, error)     { return w.buf.Front() }
func (w *Window[T]) Back() (T, error)      { return w.buf.Back() }
func (w *Window[T]) At(idx int) (T, error) { return w.buf.At(idx) }
func (w *Window[T]) Slice() []T            { return w.buf.Slice() }
func (w *Window[T]) CopyTo(dst []T) int    { return w.buf.CopyTo(dst) }
func (w *Window[T]) ForEach(f func(T))     { w.buf.ForEach(f) }

func (w *Window[T]) Dump(logger *zap.Logger, format func(T) string) {
	w.buf.Dump(logger, format)
}

// PushBack appends v, returning false if the front element was overwritten.
func (w *Window[T]) PushBack(v T) bool {
	if w.buf.IsFull() {
		if evicted, err := w.buf.Front(); err == nil {
			w.w.Remove(float64(evicted))
		}
	}
	ok := w.buf.PushBack(v)
	w.w.Add(float64(v))
	return ok
}

// PushFront prepends v, returning false if the back element was overwritten.
func (w *Window[T]) PushFront(v T) bool {
	if w.buf.IsFull() {
		if evicted, err := w.buf.Back(); err == nil {
			w.w.Remove(float64(evicted))
		}
	}
	ok := w.buf.PushFront(v)
	w.w.Add(float64(v))
	return ok
}

func (w *Window[T]) PopFront() (T, error) {
	v, err := w.buf.PopFront()
	if err != nil {
		return v, err
	}
	w.w.Remove(float64(v))
	return v, nil
}

func (w *Window[T]) PopBack() (T, error) {
	v, err := w.buf.PopBack()
	if err != nil {
		return v, err
	}
	w.w.Remove(float64(v))
	return v, nil
}

func (w *Window[T]) Clear() {
	w.buf.Clear()
	w.w.Reset()
}

func (w *Window[T]) Sum() float64      { return w.w.Sum() }
func (w *Window[T]) Mean() float64     { return w.w.Mean() }
func (w *Window[T]) Variance() float64 { return w.w.Variance() }
func (w *Window[T]) StdDev() float64   { return w.w.StdDev() }
func (w *Window[T]) StdErr() float64   { return w.w.StdErr() }
func (w *Window[T]) Err() error        { return w.w.Err() }

func (w *Window[T]) Min() (T, error) {
	return w.scan(func(candidate, current T) bool { return candidate < current })
}

func (w *Window[T]) Max() (T, error) {
	return w.scan(func(candidate, current T) bool { return candidate > current })
}

// MinimumAbove returns the smallest element strictly greater than threshold.
// When no element qualifies the maximum of the window is returned.
func (w *Window[T]) MinimumAbove(threshold T) (T, error) {
	if w.buf.IsEmpty() {
		var zero T
		return zero, circular.ErrEmptyBuffer
	}

	found := false
	var result T
	w.buf.ForEach(func(v T) {
		if v > threshold && (!found || v < result) {
			result = v
			found = true
		}
	})
	if !found {
		return w.Max()
	}
	return result, nil
}

// Rank returns the r-th smallest element, 0 being the minimum. Duplicates are
// counted individually.
func (w *Window[T]) Rank(r int) (T, error) {
	if w.buf.IsEmpty() {
		var zero T
		return zero, circular.ErrEmptyBuffer
	}
	if size := w.buf.Size(); r < 0 || r >= size {
		var zero T
		return zero, errors.Wrapf(circular.ErrIndexOutOfRange, "rank %d, size %d", r, size)
	}

	snapshot := w.buf.Slice()
	slices.Sort(snapshot)
	return snapshot[r], nil
}

// Recompute derives mean and sample variance by scanning the whole window.
func (w *Window[T]) Recompute() (mean, variance float64) {
	size := w.buf.Size()
	if size == 0 {
		return 0, 0
	}

	w.buf.ForEach(func(v T) { mean += float64(v) })
	mean /= float64(size)
	if size == 1 {
		return mean, 0
	}

	w.buf.ForEach(func(v T) {
		diff := float64(v) - mean
		variance += diff * diff
	})
	return mean, variance / float64(size-1)
}

func (w *Window[T]) scan(better func(candidate, current T) bool) (T, error) {
	result, err := w.buf.Front()
	if err != nil {
		return result, err
	}
	w.buf.ForEach(func(v T) {
		if better(v, result) {
			result = v
		}
	})
	return result, nil
}
