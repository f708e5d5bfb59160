// Package progress provides the progress-notifying stream decorators used by
// squish compressors: a counting Writer that broadcasts milestone events to
// observers, and a counting Reader that reports bytes consumed.
package progress

import (
	"io"
	"sync/atomic"
)

// Callback is called to report progress during I/O operations.
type Callback func(bytesTransferred, totalBytes int64)

// Reader wraps an io.Reader to track bytes read and report progress.
type Reader struct {
	reader   io.Reader
	callback Callback
	total    int64
	read     atomic.Int64
}

// NewReader creates a progress-tracking reader.
// The total parameter should be the expected size (-1 if unknown).
// The callback is called after each Read with cumulative bytes and total.
func NewReader(r io.Reader, total int64, callback Callback) *Reader {
	return &Reader{
		reader:   r,
		callback: callback,
		total:    total,
	}
}

// Read implements io.Reader and reports progress after each read.
func (r *Reader) Read(p []byte) (n int, err error) {
	n, err = r.reader.Read(p)
	if n > 0 {
		read := r.read.Add(int64(n))
		if r.callback != nil {
			r.callback(read, r.total)
		}
	}
	return n, err
}

// BytesRead returns the cumulative number of bytes read.
func (r *Reader) BytesRead() int64 {
	return r.read.Load()
}

// Close closes the underlying reader if it implements io.Closer.
func (r *Reader) Close() error {
	if closer, ok := r.reader.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
