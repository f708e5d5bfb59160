package squish

import "github.com/meigma/squish/core"

// ProgressEvent describes one milestone reached by a stream.
// Re-exported from core package.
type ProgressEvent = core.ProgressEvent

// EventKind identifies the milestone a ProgressEvent reports.
type EventKind = core.EventKind

// Event kinds.
const (
	EventNewBlock  = core.EventNewBlock
	EventNewStream = core.EventNewStream
	EventNewMember = core.EventNewMember
)

// Observer receives progress events from a stream.
type Observer = core.Observer

// ObserverFunc adapts a function to the Observer interface.
// Prefer OnProgress, whose result can be unregistered.
type ObserverFunc = core.ObserverFunc

// Notifier is implemented by streams that broadcast progress events.
type Notifier = core.Notifier

// NewProgressEvent creates an event. Values are carried as given.
func NewProgressEvent(source any, kind EventKind, counter, position int64) ProgressEvent {
	return core.NewProgressEvent(source, kind, counter, position)
}

// ParseEventKind parses "block", "stream", or "member" (optionally prefixed with "new-").
func ParseEventKind(s string) (EventKind, error) {
	return core.ParseEventKind(s)
}

// OnProgress wraps fn as an Observer. Each call returns a distinct observer
// that can later be passed to UnregisterObserver.
func OnProgress(fn func(event ProgressEvent) error) Observer {
	f := ObserverFunc(fn)
	return &f
}
