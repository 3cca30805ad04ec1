package circular

type Option[T any] func(*Buffer[T])

// WithEvictHandler registers a finalizer for elements the buffer drops on its
// own, an element overwritten by a push into a full buffer or any element
// still held on Clear. Popped elements belong to the caller and are not passed
// to the handler.
func WithEvictHandler[T any](handler func(T)) Option[T] {
	return func(b *Buffer[T]) {
		b.evict = handler
	}
}
