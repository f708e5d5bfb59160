// Package observers implements stock progress observers: structured logging,
// Prometheus metrics, in-memory recording, and kind filtering.
package observers

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/meigma/squish/core"
)

// identified is implemented by streams that carry a unique ID.
type identified interface {
	ID() uuid.UUID
}

// Logger logs every event it receives.
type Logger struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogger creates an observer that logs events at the given level.
func NewLogger(logger *slog.Logger, level slog.Level) *Logger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Logger{logger: logger, level: level}
}

// OnProgress logs the event. It never fails.
func (l *Logger) OnProgress(event core.ProgressEvent) error {
	attrs := []slog.Attr{
		slog.String("kind", event.Kind().String()),
		slog.Int64("counter", event.Counter()),
		slog.Int64("position", event.Position()),
	}
	if src, ok := event.Source().(identified); ok {
		attrs = append(attrs, slog.String("stream", src.ID().String()))
	}
	l.logger.LogAttrs(context.Background(), l.level, "progress event", attrs...)
	return nil
}

// Recorder keeps every event it receives. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []core.ProgressEvent
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// OnProgress appends the event.
func (r *Recorder) OnProgress(event core.ProgressEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of the recorded events in delivery order.
func (r *Recorder) Events() []core.ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Count returns the number of recorded events of the given kind.
func (r *Recorder) Count(kind core.EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for _, e := range r.events {
		if e.Kind() == kind {
			n++
		}
	}
	return n
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Filter forwards only events of selected kinds.
type Filter struct {
	kinds []core.EventKind
	next  core.Observer
}

// NewFilter creates an observer that forwards events of the given kinds to next.
// With no kinds, every event is forwarded.
func NewFilter(next core.Observer, kinds ...core.EventKind) *Filter {
	return &Filter{kinds: slices.Clone(kinds), next: next}
}

// OnProgress forwards the event if its kind is selected.
func (f *Filter) OnProgress(event core.ProgressEvent) error {
	if len(f.kinds) > 0 && !slices.Contains(f.kinds, event.Kind()) {
		return nil
	}
	return f.next.OnProgress(event)
}
