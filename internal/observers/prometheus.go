package observers

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/meigma/squish/core"
)

// Prometheus exports progress events as metrics. It owns a counter of events
// per kind and a gauge holding the latest position per kind.
type Prometheus struct {
	events   *prometheus.CounterVec
	position *prometheus.GaugeVec
}

// NewPrometheus registers the collectors against the provided registry.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &Prometheus{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "squish_progress_events_total",
			Help: "Progress events raised, partitioned by kind.",
		}, []string{"kind"}),
		position: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "squish_progress_position_bytes",
			Help: "Stream position of the most recent event, partitioned by kind.",
		}, []string{"kind"}),
	}
	for _, collector := range []prometheus.Collector{p.events, p.position} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return p, nil
}

// OnProgress updates the collectors. It is safe for concurrent use.
func (p *Prometheus) OnProgress(event core.ProgressEvent) error {
	kind := event.Kind().String()
	p.events.WithLabelValues(kind).Inc()
	p.position.WithLabelValues(kind).Set(float64(event.Position()))
	return nil
}
