// internal/jsonlutil/jsonlutil.go
package jsonlutil

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"
)

// Pooled 64 KiB buffered writers shared by every JSONL stream.
var bwPool = sync.Pool{
	New: func() any {
		return bufio.NewWriterSize(io.Discard, 64<<10)
	},
}

func acquire(out io.Writer) *bufio.Writer {
	bw := bwPool.Get().(*bufio.Writer)
	bw.Reset(out)
	return bw
}

func release(bw *bufio.Writer) {
	bw.Reset(io.Discard)
	bwPool.Put(bw)
}

// Start runs a JSONL encoder goroutine for values of type T. The returned
// channel must be closed by the caller; the error channel yields exactly one
// value once the stream is drained. Errors matching isBroken are dropped.
func Start[T any](out io.Writer, bufSize int, encode func(*json.Encoder, T) error, isBroken func(error) bool) (chan<- T, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan T, bufSize)
	done := make(chan error, 1)

	go func() {
		bw := acquire(out)
		defer release(bw)
		enc := json.NewEncoder(bw)

		for v := range in {
			if err := encode(enc, v); err != nil {
				for range in {
				}
				if isBroken(err) {
					err = nil
				}
				done <- err
				return
			}
		}
		if err := bw.Flush(); err != nil && !isBroken(err) {
			done <- err
			return
		}
		done <- nil
	}()

	return in, done
}

// Writer encodes one value per line and flushes after every line, so a
// record is either fully on disk or reported as failed.
type Writer[T any] struct {
	bw  *bufio.Writer
	enc *json.Encoder
}

func NewWriter[T any](out io.Writer) *Writer[T] {
	bw := acquire(out)
	return &Writer[T]{bw: bw, enc: json.NewEncoder(bw)}
}

func (w *Writer[T]) Write(v T) error {
	if err := w.enc.Encode(v); err != nil {
		return err
	}
	return w.bw.Flush()
}

// Close flushes and returns the buffer to the pool. It does not close the
// underlying writer.
func (w *Writer[T]) Close() error {
	if w.bw == nil {
		return nil
	}
	err := w.bw.Flush()
	release(w.bw)
	w.bw, w.enc = nil, nil
	return err
}
