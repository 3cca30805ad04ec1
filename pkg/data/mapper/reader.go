package mapper

import (
	"context"
	"io"
	"os"
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/exp/mmap"
)

var ErrEOF = errors.New("EOF")

// Reader maps a file of fixed size records of type T. T must be a plain value
// type without padding, the records are reinterpreted in place.
type Reader[T any] struct {
	dataSourceName string
	reader         *mmap.ReaderAt
	bufferPool     *sync.Pool
}

func NewReader[T any](dataSourceName string) *Reader[T] {
	return &Reader[T]{
		dataSourceName: dataSourceName,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buffer := make([]byte, int(unsafe.Sizeof(*new(T))))
				return &buffer
			},
		},
	}
}

func (r *Reader[T]) Open() error {
	var err error
	r.reader, err = mmap.Open(r.dataSourceName)
	if err != nil {
		return errors.Wrapf(err, "unable to open data source %q", r.dataSourceName)
	}
	return nil
}

func (r *Reader[T]) Close() {
	if r.reader != nil {
		_ = r.reader.Close()
	}
}

func (r *Reader[T]) Read(index int64, data *T) error {
	buffer := r.bufferPool.Get().(*[]byte)
	defer r.bufferPool.Put(buffer)

	offset := index * int64(len(*buffer))
	if offset >= int64(r.reader.Len()) {
		return ErrEOF
	}

	n, err := r.reader.ReadAt(*buffer, offset)
	if err != nil && err != io.EOF {
		return errors.Wrap(err, "unable to read")
	}
	if n < len(*buffer) {
		return ErrEOF
	}

	*data = *(*T)(unsafe.Pointer(&(*buffer)[0]))
	return nil
}

func (r *Reader[T]) EntryCount() (int64, error) {
	entrySize := int64(unsafe.Sizeof(*new(T)))
	if entrySize == 0 {
		return 0, errors.New("size of record is zero")
	}

	fileInfo, err := os.Stat(r.dataSourceName)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to get data source %q stats", r.dataSourceName)
	}

	totalSize := fileInfo.Size()
	if totalSize%entrySize != 0 {
		return 0, errors.Errorf("data source %q size %d is not a multiple of %d", r.dataSourceName, totalSize, entrySize)
	}
	return totalSize / entrySize, nil
}

// ForEach reads every record in order until the end of the file, the handler
// fails or ctx is done.
func ForEach[T any](ctx context.Context, r *Reader[T], handler func(T) error) error {
	var record T
	for i := int64(0); ; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Read(i, &record); err != nil {
			if errors.Is(err, ErrEOF) {
				return nil
			}
			return err
		}
		if err := handler(record); err != nil {
			return errors.Wrapf(err, "record %d", i)
		}
	}
}
