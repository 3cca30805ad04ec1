package circular

import (
	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

var (
	ErrEmptyBuffer     = errors.New("buffer is empty")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Buffer is a fixed capacity double-ended ring. Pushing into a full buffer
// overwrites the element at the opposite end.
//
// Buffer is not safe for concurrent use. The element count is kept in an
// atomic so Size, Available, IsEmpty and IsFull may be observed from another
// goroutine, compound operations are still not atomic.
type Buffer[T any] struct {
	capacity int

	head  int
	tail  int
	count atomic.Int64
	data  []T

	evict func(T)
}

func NewBuffer[T any](capacity int, opts ...Option[T]) *Buffer[T] {
	if capacity <= 0 {
		panic("capacity must be positive")
	}
	b := &Buffer[T]{
		capacity: capacity,
		data:     make([]T, capacity),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Buffer[T]) Capacity() int {
	return b.capacity
}

func (b *Buffer[T]) Size() int {
	return int(b.count.Load())
}

func (b *Buffer[T]) Available() int {
	return b.capacity - b.Size()
}

func (b *Buffer[T]) IsEmpty() bool {
	return b.Size() == 0
}

func (b *Buffer[T]) IsFull() bool {
	return b.Size() == b.capacity
}

// PushBack appends value at the back. It returns false when the buffer was
// full and the front element got overwritten.
func (b *Buffer[T]) PushBack(value T) bool {
	size := b.Size()
	if size == 0 {
		b.head, b.tail = 0, 0
		b.data[0] = value
		b.count.Store(1)
		return true
	}

	b.tail = b.next(b.tail)
	if size == b.capacity {
		b.discard(b.head)
		b.head = b.next(b.head)
		b.data[b.tail] = value
		return false
	}

	b.data[b.tail] = value
	b.count.Inc()
	return true
}

// PushFront prepends value at the front. It returns false when the buffer was
// full and the back element got overwritten.
func (b *Buffer[T]) PushFront(value T) bool {
	size := b.Size()
	if size == 0 {
		b.head, b.tail = 0, 0
		b.data[0] = value
		b.count.Store(1)
		return true
	}

	b.head = b.prev(b.head)
	if size == b.capacity {
		b.discard(b.tail)
		b.tail = b.prev(b.tail)
		b.data[b.head] = value
		return false
	}

	b.data[b.head] = value
	b.count.Inc()
	return true
}

func (b *Buffer[T]) PopFront() (T, error) {
	var zero T
	if b.IsEmpty() {
		return zero, ErrEmptyBuffer
	}

	value := b.data[b.head]
	b.data[b.head] = zero
	if b.count.Dec() == 0 {
		b.head, b.tail = 0, 0
	} else {
		b.head = b.next(b.head)
	}
	return value, nil
}

func (b *Buffer[T]) PopBack() (T, error) {
	var zero T
	if b.IsEmpty() {
		return zero, ErrEmptyBuffer
	}

	value := b.data[b.tail]
	b.data[b.tail] = zero
	if b.count.Dec() == 0 {
		b.head, b.tail = 0, 0
	} else {
		b.tail = b.prev(b.tail)
	}
	return value, nil
}

func (b *Buffer[T]) Front() (T, error) {
	if b.IsEmpty() {
		var zero T
		return zero, ErrEmptyBuffer
	}
	return b.data[b.head], nil
}

func (b *Buffer[T]) Back() (T, error) {
	if b.IsEmpty() {
		var zero T
		return zero, ErrEmptyBuffer
	}
	return b.data[b.tail], nil
}

// At returns the element at the logical index, 0 being the front.
func (b *Buffer[T]) At(idx int) (T, error) {
	if size := b.Size(); idx < 0 || idx >= size {
		var zero T
		return zero, errors.Wrapf(ErrIndexOutOfRange, "index %d, size %d", idx, size)
	}
	return b.data[b.slot(idx)], nil
}

// Clear releases every element through the evict handler and resets the
// buffer to its initial state.
func (b *Buffer[T]) Clear() {
	for i, size := 0, b.Size(); i < size; i++ {
		b.discard(b.slot(i))
	}
	b.head, b.tail = 0, 0
	b.count.Store(0)
}

// CopyTo copies the elements front to back into dst and returns how many were
// copied. A dst shorter than Size receives only its first len(dst) elements.
func (b *Buffer[T]) CopyTo(dst []T) int {
	size := b.Size()
	if size == 0 {
		return 0
	}
	end := b.head + size
	if end <= b.capacity {
		return copy(dst, b.data[b.head:end])
	}
	n := copy(dst, b.data[b.head:])
	n += copy(dst[n:], b.data[:end-b.capacity])
	return n
}

// CopyToFunc copies the elements front to back into dst converting each one
// with convert. Same length contract as Buffer.CopyTo.
func CopyToFunc[T, R any](b *Buffer[T], dst []R, convert func(T) R) int {
	n := min(len(dst), b.Size())
	for i := 0; i < n; i++ {
		dst[i] = convert(b.data[b.slot(i)])
	}
	return n
}

// Slice returns the elements in FIFO order, nil when empty.
func (b *Buffer[T]) Slice() []T {
	size := b.Size()
	if size == 0 {
		return nil
	}
	result := make([]T, size)
	b.CopyTo(result)
	return result
}

func (b *Buffer[T]) ForEach(f func(T)) {
	for i, size := 0, b.Size(); i < size; i++ {
		f(b.data[b.slot(i)])
	}
}

// Clone duplicates the live elements into a new buffer of the same capacity.
// The receiver is left untouched and the evict handler is shared.
func (b *Buffer[T]) Clone() *Buffer[T] {
	c := &Buffer[T]{
		capacity: b.capacity,
		data:     make([]T, b.capacity),
		evict:    b.evict,
	}
	size := b.CopyTo(c.data)
	if size > 0 {
		c.tail = size - 1
	}
	c.count.Store(int64(size))
	return c
}

func (b *Buffer[T]) slot(idx int) int {
	s := b.head + idx
	if s >= b.capacity {
		s -= b.capacity
	}
	return s
}

func (b *Buffer[T]) next(idx int) int {
	if idx == b.capacity-1 {
		return 0
	}
	return idx + 1
}

func (b *Buffer[T]) prev(idx int) int {
	if idx == 0 {
		return b.capacity - 1
	}
	return idx - 1
}

func (b *Buffer[T]) discard(idx int) {
	if b.evict != nil {
		b.evict(b.data[idx])
	}
	var zero T
	b.data[idx] = zero
}
