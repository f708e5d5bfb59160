package cli

import (
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/meigma/squish/internal/progress"
)

// progressMode returns the configured progress mode: "auto", "tty", or "plain".
func progressMode(mode string) string {
	switch mode {
	case "auto", "tty", "plain":
		return mode
	default:
		return "auto"
	}
}

// shouldShowProgress returns true if progress bars should be displayed.
func shouldShowProgress(mode string) bool {
	switch progressMode(mode) {
	case "plain":
		return false
	case "tty":
		return true
	default:
		// Auto mode: show progress only if connected to a TTY
		return term.IsTerminal(int(os.Stderr.Fd()))
	}
}

// newProgressBar creates a new progress bar for byte-based operations.
// A negative total renders a spinner.
func newProgressBar(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionUseANSICodes(true),
	)
}

// newInputProgress creates a progress callback that tracks input bytes consumed.
// Returns a nil callback if progress should not be shown.
func newInputProgress(mode string, total int64, description string) (callback progress.Callback, finish func()) {
	if !shouldShowProgress(mode) {
		return nil, func() {}
	}

	bar := newProgressBar(total, description)
	callback = func(transferred, _ int64) {
		//nolint:errcheck // progress bar errors are not critical
		bar.Set64(transferred)
	}
	finish = func() {
		//nolint:errcheck // progress bar errors are not critical
		bar.Finish()
	}
	return callback, finish
}
