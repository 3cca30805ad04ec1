package mapper

import (
	"bufio"
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
)

// Writer appends fixed size records in the layout Reader expects.
type Writer[T any] struct {
	file *os.File
	w    *bufio.Writer
}

func Create[T any](path string) (*Writer[T], error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create %q", path)
	}
	return &Writer[T]{file: file, w: bufio.NewWriter(file)}, nil
}

func (w *Writer[T]) Write(record T) error {
	return binary.Write(w.w, binary.NativeEndian, record)
}

func (w *Writer[T]) Close() error {
	if err := w.w.Flush(); err != nil {
		_ = w.file.Close()
		return errors.Wrap(err, "flush")
	}
	return w.file.Close()
}
