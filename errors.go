package squish

import "github.com/meigma/squish/core"

// Sentinel errors for common failure conditions.
// Re-exported from core package.
var (
	// ErrClosed indicates an operation was attempted on a closed stream.
	ErrClosed = core.ErrClosed

	// ErrObserver indicates one or more observers failed to handle an event.
	ErrObserver = core.ErrObserver

	// ErrInvalidKind indicates an event kind outside the defined set.
	ErrInvalidKind = core.ErrInvalidKind

	// ErrUnknownCompression indicates the requested compression is not available.
	ErrUnknownCompression = core.ErrUnknownCompression

	// ErrCorrupt indicates the compressed input is malformed.
	ErrCorrupt = core.ErrCorrupt
)

// ObserverError records the failure of a single observer.
// Re-exported from core package.
type ObserverError = core.ObserverError
