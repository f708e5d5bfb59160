package core

import (
	"fmt"
	"strings"
)

// EventKind identifies the milestone a ProgressEvent reports.
type EventKind uint8

// Event kinds. The set is closed.
const (
	// EventNewBlock marks the start of a new compressed block.
	EventNewBlock EventKind = iota

	// EventNewStream marks the start of a new compressed stream.
	EventNewStream

	// EventNewMember marks the start of a new container member (e.g. a gzip member).
	EventNewMember
)

// String returns the string representation of the kind.
func (k EventKind) String() string {
	switch k {
	case EventNewBlock:
		return "new-block"
	case EventNewStream:
		return "new-stream"
	case EventNewMember:
		return "new-member"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the defined kinds.
func (k EventKind) Valid() bool {
	return k <= EventNewMember
}

// ParseEventKind parses the string form of a kind, ignoring case.
// Underscores and the "new" prefix are optional ("block", "new_block", "new-block").
func ParseEventKind(s string) (EventKind, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	name = strings.TrimPrefix(name, "new-")
	switch name {
	case "block":
		return EventNewBlock, nil
	case "stream":
		return EventNewStream, nil
	case "member":
		return EventNewMember, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// ProgressEvent describes one milestone reached by a stream.
// Events are values; their fields cannot change after construction.
type ProgressEvent struct {
	source   any
	kind     EventKind
	counter  int64
	position int64
}

// NewProgressEvent creates an event. Values are carried as given; counter and
// position are not range-checked.
func NewProgressEvent(source any, kind EventKind, counter, position int64) ProgressEvent {
	return ProgressEvent{
		source:   source,
		kind:     kind,
		counter:  counter,
		position: position,
	}
}

// Source returns the stream that raised the event. It is for identification only.
func (e ProgressEvent) Source() any { return e.source }

// Kind returns the milestone kind.
func (e ProgressEvent) Kind() EventKind { return e.kind }

// Counter returns the per-kind counter assigned by the raising stream.
func (e ProgressEvent) Counter() int64 { return e.counter }

// Position returns the bytes processed by the stream when the event was raised.
func (e ProgressEvent) Position() int64 { return e.position }

func (e ProgressEvent) String() string {
	return fmt.Sprintf("%s #%d @%d", e.kind, e.counter, e.position)
}

// Observer receives progress events from a stream.
type Observer interface {
	// OnProgress is called synchronously on the goroutine that raised the event.
	// A non-nil error is reported to the raising stream; it does not stop
	// delivery to the remaining observers.
	OnProgress(event ProgressEvent) error
}

// ObserverFunc adapts a function to the Observer interface.
//
// Func values are not comparable, so an ObserverFunc registered by value
// cannot be unregistered. Register a pointer to it instead, or use
// squish.OnProgress which does that for you.
type ObserverFunc func(event ProgressEvent) error

// OnProgress calls f(event).
func (f ObserverFunc) OnProgress(event ProgressEvent) error {
	return f(event)
}
