// Package core provides the shared types and interfaces for squish.
//
// This package exists to break import cycles between the root squish package
// and internal implementation packages. The squish package re-exports all
// public types from this package, so external users should import squish
// directly, not squish/core.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Sentinel errors for common failure conditions.
var (
	// ErrClosed indicates an operation was attempted on a closed stream.
	ErrClosed = errors.New("squish: stream closed")

	// ErrObserver indicates one or more observers failed to handle a progress event.
	ErrObserver = errors.New("squish: observer notification failed")

	// ErrInvalidKind indicates an event kind outside the closed set of kinds.
	ErrInvalidKind = errors.New("squish: invalid event kind")

	// ErrUnknownCompression indicates the requested compression is not registered.
	ErrUnknownCompression = errors.New("squish: unknown compression")

	// ErrCorrupt indicates the compressed input is malformed.
	ErrCorrupt = errors.New("squish: corrupt input")
)

// DefaultBlockSize is the uncompressed size of each block when none is configured.
const DefaultBlockSize = 1 << 20

// ObserverError records the failure of a single observer during a broadcast.
type ObserverError struct {
	// Kind is the kind of the event being delivered.
	Kind EventKind
	// Index is the observer's position in the registry snapshot.
	Index int
	// Err is the error returned by the observer.
	Err error
}

func (e *ObserverError) Error() string {
	return fmt.Sprintf("%v: observer %d on %s: %v", ErrObserver, e.Index, e.Kind, e.Err)
}

// Unwrap exposes both ErrObserver and the observer's own error to errors.Is.
func (e *ObserverError) Unwrap() []error {
	return []error{ErrObserver, e.Err}
}

// Notifier is implemented by streams that broadcast progress events.
type Notifier interface {
	// RegisterObserver appends o to the registry. Duplicates are delivered twice.
	RegisterObserver(o Observer)

	// UnregisterObserver removes every registration of o. Unknown observers are ignored.
	UnregisterObserver(o Observer)

	// BytesWritten returns the number of bytes the stream has written so far.
	BytesWritten() int64
}

// CompressWriter compresses everything written to it and reports milestones
// to its observers.
type CompressWriter interface {
	io.WriteCloser
	Notifier

	// Flush ends the current block early so everything written so far is
	// decodable from the destination.
	Flush() error
}

// Decoder decompresses a source into its destination and reports milestones
// to its observers.
type Decoder interface {
	Notifier

	// Decode reads compressed data from src until EOF.
	// Returns the number of decompressed bytes written.
	Decode(ctx context.Context, src io.Reader) (int64, error)

	// Close releases the decoder and its observer registry.
	Close() error
}

// WriterConfig configures a CompressWriter.
type WriterConfig struct {
	// BlockSize is the uncompressed size of each block (0 = DefaultBlockSize).
	BlockSize int
	// Level is the codec-specific compression level (0 = codec default).
	Level int
	// Observers are registered before any event is raised.
	Observers []Observer
	// Logger receives warnings about observer failures. Nil disables logging.
	Logger *slog.Logger
}

// DecoderConfig configures a Decoder.
type DecoderConfig struct {
	// Observers are registered before any event is raised.
	Observers []Observer
	// Logger receives warnings about observer failures. Nil disables logging.
	Logger *slog.Logger
}

// Compression creates compressors and decompressors for one codec.
// This interface is implemented by internal/codec.
type Compression interface {
	// Name returns the codec name ("gzip", "zstd").
	Name() string

	// Extension returns the file extension without dot.
	Extension() string

	// NewWriter returns a CompressWriter that writes compressed data to dst.
	// dst is not closed by the writer.
	NewWriter(dst io.Writer, cfg WriterConfig) (CompressWriter, error)

	// NewDecoder returns a Decoder that writes decompressed data to dst.
	NewDecoder(dst io.Writer, cfg DecoderConfig) (Decoder, error)
}
