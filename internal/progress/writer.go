package progress

import (
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/meigma/squish/core"
)

// Compile-time interface implementation check.
var _ core.Notifier = (*Writer)(nil)

// Option configures a Writer.
type Option func(*Writer)

// WithSource sets the value reported as ProgressEvent.Source.
// Compressors that embed a Writer pass themselves so observers see the public stream.
func WithSource(source any) Option {
	return func(w *Writer) {
		w.source = source
	}
}

// WithLogger sets a logger for the writer. By default, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithObservers registers observers at construction time.
func WithObservers(observers ...core.Observer) Option {
	return func(w *Writer) {
		for _, o := range observers {
			w.observers.add(o)
		}
	}
}

// Writer wraps an io.Writer to count bytes written and broadcast progress
// events to registered observers.
//
// The wrapped writer is owned by the caller and is not closed by Close.
// Write is not safe for concurrent use; BytesWritten and the observer
// registry are.
type Writer struct {
	writer    io.Writer
	id        uuid.UUID
	source    any
	logger    *slog.Logger
	written   atomic.Int64
	closed    atomic.Bool
	observers registry
}

// NewWriter creates a progress-notifying writer around w.
func NewWriter(w io.Writer, opts ...Option) *Writer {
	pw := &Writer{
		writer: w,
		id:     uuid.New(),
		logger: slog.New(slog.DiscardHandler),
	}
	pw.source = pw
	for _, opt := range opts {
		opt(pw)
	}
	return pw
}

// ID returns the unique identifier assigned to this writer.
func (w *Writer) ID() uuid.UUID {
	return w.id
}

// Write implements io.Writer. The count advances by the bytes the underlying
// writer reports, including a short count returned alongside an error.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed.Load() {
		return 0, core.ErrClosed
	}
	n, err := w.writer.Write(p)
	if n > 0 {
		w.written.Add(int64(n))
	}
	return n, err
}

// BytesWritten returns the number of bytes successfully written so far.
func (w *Writer) BytesWritten() int64 {
	return w.written.Load()
}

// RegisterObserver appends o to the registry. Registering the same observer
// twice delivers each event to it twice. Ignored once the writer is closed.
func (w *Writer) RegisterObserver(o core.Observer) {
	if !w.observers.add(o) {
		w.logger.Debug("observer not registered", "stream", w.id, "closed", w.closed.Load())
	}
}

// UnregisterObserver removes every registration of o.
func (w *Writer) UnregisterObserver(o core.Observer) {
	w.observers.remove(o)
}

// Observers returns the number of registered observers.
func (w *Writer) Observers() int {
	return w.observers.len()
}

// Raise broadcasts an event of the given kind to the observers registered when
// the call starts. The event position is the current BytesWritten.
//
// Every observer is notified even if an earlier one fails. Failures are
// returned joined, each as a *core.ObserverError.
func (w *Writer) Raise(kind core.EventKind, counter int64) error {
	if w.closed.Load() {
		return core.ErrClosed
	}
	if !kind.Valid() {
		return core.ErrInvalidKind
	}
	event := core.NewProgressEvent(w.source, kind, counter, w.BytesWritten())
	observers := w.observers.snapshot()
	w.logger.Debug("raising progress event",
		"stream", w.id,
		"kind", kind.String(),
		"counter", counter,
		"position", event.Position(),
		"observers", len(observers),
	)
	return broadcast(observers, event)
}

// Closed reports whether Close has been called.
func (w *Writer) Closed() bool {
	return w.closed.Load()
}

// Close marks the writer closed and releases its observers.
// It is safe to call multiple times.
func (w *Writer) Close() error {
	if w.closed.Swap(true) {
		return nil
	}
	w.observers.release()
	return nil
}
