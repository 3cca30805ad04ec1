package circular

import (
	"fmt"

	"go.uber.org/zap"
)

// Dump logs the raw slot layout of the buffer at debug level. Free slots are
// reported with an empty value.
func (b *Buffer[T]) Dump(logger *zap.Logger, format func(T) string) {
	if format == nil {
		format = func(v T) string { return fmt.Sprint(v) }
	}

	size := b.Size()
	logger.Debug("circular buffer",
		zap.Int("capacity", b.capacity),
		zap.Int("size", size),
		zap.Int("head", b.head),
		zap.Int("tail", b.tail))

	for i := 0; i < b.capacity; i++ {
		occupied := b.occupied(i, size)
		value := ""
		if occupied {
			value = format(b.data[i])
		}
		logger.Debug("slot",
			zap.Int("index", i),
			zap.Bool("occupied", occupied),
			zap.String("value", value))
	}
}

func (b *Buffer[T]) occupied(idx, size int) bool {
	if size == 0 {
		return false
	}
	offset := idx - b.head
	if offset < 0 {
		offset += b.capacity
	}
	return offset < size
}
