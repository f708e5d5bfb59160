// Package codec provides the gzip and zstd compressors used by squish.
//
// Both codecs split their input into fixed-size blocks and emit each block as
// an independently decodable unit (a gzip member or a zstd frame), raising a
// progress event as each unit starts.
package codec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/meigma/squish/core"
	"github.com/meigma/squish/internal/progress"
)

const copyBufferSize = 128 * 1024

// notifier raises events on a progress.Writer and keeps observer failures
// so they can be reported when the operation ends.
type notifier struct {
	out    *progress.Writer
	logger *slog.Logger
	errs   []error
}

func newNotifier(dst io.Writer, source any, logger *slog.Logger, observers []core.Observer) notifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return notifier{
		out: progress.NewWriter(dst,
			progress.WithSource(source),
			progress.WithLogger(logger),
			progress.WithObservers(observers...),
		),
		logger: logger,
	}
}

// RegisterObserver appends o to the stream's observers.
func (n *notifier) RegisterObserver(o core.Observer) { n.out.RegisterObserver(o) }

// UnregisterObserver removes every registration of o.
func (n *notifier) UnregisterObserver(o core.Observer) { n.out.UnregisterObserver(o) }

// BytesWritten returns the bytes written to the destination so far.
func (n *notifier) BytesWritten() int64 { return n.out.BytesWritten() }

// ID returns the unique ID of the underlying stream.
func (n *notifier) ID() uuid.UUID { return n.out.ID() }

// notify raises an event. Observer failures never interrupt the data path.
func (n *notifier) notify(kind core.EventKind, counter int64) {
	if err := n.out.Raise(kind, counter); err != nil {
		n.logger.Warn("progress observer failed",
			"stream", n.out.ID(),
			"kind", kind.String(),
			"counter", counter,
			"error", err,
		)
		n.errs = append(n.errs, err)
	}
}

// observerErr returns the observer failures collected so far.
func (n *notifier) observerErr() error {
	return errors.Join(n.errs...)
}

// blockWriter buffers input into blocks and hands each full block to encode.
type blockWriter struct {
	notifier
	kind      core.EventKind
	blockSize int
	buf       []byte
	blocks    int64
	started   bool
	closed    bool
	err       error
	encode    func(block []byte) error
}

func newBlockWriter(n notifier, kind core.EventKind, blockSize int, encode func([]byte) error) blockWriter {
	if blockSize <= 0 {
		blockSize = core.DefaultBlockSize
	}
	return blockWriter{
		notifier:  n,
		kind:      kind,
		blockSize: blockSize,
		encode:    encode,
	}
}

// Write buffers p, encoding every block that fills up.
// Returns the bytes accepted; bytes in a block that failed to encode are not counted.
func (b *blockWriter) Write(p []byte) (int, error) {
	if b.closed {
		return 0, core.ErrClosed
	}
	if b.err != nil {
		return 0, b.err
	}
	if b.buf == nil {
		b.buf = make([]byte, 0, b.blockSize)
	}
	written := 0
	for len(p) > 0 {
		take := min(b.blockSize-len(b.buf), len(p))
		b.buf = append(b.buf, p[:take]...)
		p = p[take:]
		written += take
		if len(b.buf) == b.blockSize {
			if err := b.flushBlock(); err != nil {
				return written - take, err
			}
		}
	}
	return written, nil
}

// Flush ends the current block early. It is a no-op when nothing is buffered.
func (b *blockWriter) Flush() error {
	if b.closed {
		return core.ErrClosed
	}
	if b.err != nil {
		return b.err
	}
	if len(b.buf) == 0 {
		return nil
	}
	return b.flushBlock()
}

func (b *blockWriter) flushBlock() error {
	if !b.started {
		b.started = true
		b.notify(core.EventNewStream, 0)
	}
	b.notify(b.kind, b.blocks)
	if err := b.encode(b.buf); err != nil {
		b.err = fmt.Errorf("write block %d: %w", b.blocks, err)
		return b.err
	}
	b.blocks++
	b.buf = b.buf[:0]
	return nil
}

// Close encodes any buffered data and releases the observers. A stream that
// never received data still produces one empty block so the output is valid.
// Observer failures collected during the stream are returned here.
func (b *blockWriter) Close() error {
	if b.closed {
		return nil
	}
	if b.err == nil && (len(b.buf) > 0 || !b.started) {
		_ = b.flushBlock()
	}
	b.closed = true
	return errors.Join(b.err, b.observerErr(), b.out.Close())
}

// readError marks a failure reading decompressed data, as opposed to writing it.
type readError struct {
	err error
}

func (e *readError) Error() string { return e.err.Error() }
func (e *readError) Unwrap() error { return e.err }

// CopyWithContext copies from src to dst while honoring context cancellation.
// Returns the number of bytes written to dst.
func CopyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	counter := &countingWriter{w: dst}
	err := copyWithContext(ctx, counter, src, nil)
	var re *readError
	if errors.As(err, &re) {
		err = re.err
	}
	return counter.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// copyWithContext copies from src to dst while honoring context cancellation.
// It checks context every 128KB to balance responsiveness with performance.
// Read failures are returned as *readError.
func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader, buf []byte) error {
	if len(buf) < copyBufferSize {
		buf = make([]byte, copyBufferSize)
	}
	buf = buf[:copyBufferSize]
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return writeErr
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return &readError{err: readErr}
		}
	}
}

// decodeErr maps copy failures to squish errors. Read failures mean the
// compressed input could not be decoded.
func decodeErr(err error) error {
	var re *readError
	if errors.As(err, &re) {
		return fmt.Errorf("%w: %w", core.ErrCorrupt, re.err)
	}
	return err
}
