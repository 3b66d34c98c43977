package company

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// EventMetrics counts published company events by type.
type EventMetrics struct {
	events *prometheus.CounterVec
}

// NewEventMetrics registers the company event counter with registerer.
func NewEventMetrics(registerer prometheus.Registerer) *EventMetrics {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jumph_company_events_total",
		Help: "Company lifecycle events published, by type.",
	}, []string{"type"})
	registerer.MustRegister(events)
	return &EventMetrics{events: events}
}

// HandleCompanyEvent implements Subscriber.
func (m *EventMetrics) HandleCompanyEvent(_ context.Context, evt Event) error {
	m.events.WithLabelValues(string(evt.Type)).Inc()
	return nil
}
