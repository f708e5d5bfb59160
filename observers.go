package squish

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/meigma/squish/internal/observers"
)

// Recorder keeps every event it receives.
type Recorder = observers.Recorder

// NewRecorder returns an observer that records events in memory.
func NewRecorder() *Recorder {
	return observers.NewRecorder()
}

// LogObserver returns an observer that logs each event at the given level.
func LogObserver(logger *slog.Logger, level slog.Level) Observer {
	return observers.NewLogger(logger, level)
}

// NewPrometheusObserver returns an observer that exports events as metrics
// registered on reg (prometheus.DefaultRegisterer when nil).
func NewPrometheusObserver(reg prometheus.Registerer) (Observer, error) {
	p, err := observers.NewPrometheus(reg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FilterObserver returns an observer that forwards only the given kinds to next.
func FilterObserver(next Observer, kinds ...EventKind) Observer {
	return observers.NewFilter(next, kinds...)
}
