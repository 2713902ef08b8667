package reminder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus collectors of a Scheduler.
type Metrics struct {
	armedTimers    prometheus.Gauge
	inFlightAlarms prometheus.Gauge
	fired          *prometheus.CounterVec
	cleared        prometheus.Counter
	revalidated    prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		armedTimers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "medreminder",
			Name:      "armed_timers",
			Help:      "Number of reminder timers currently armed.",
		}),
		inFlightAlarms: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "medreminder",
			Name:      "inflight_alarms",
			Help:      "Number of fired alarms still inside their grace window.",
		}),
		fired: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medreminder",
			Name:      "alarms_fired_total",
			Help:      "Alarms fired, by mode and delivery.",
		}, []string{"mode", "delivered"}),
		cleared: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "medreminder",
			Name:      "entries_cleared_total",
			Help:      "Timers and alarms removed by Clear.",
		}),
		revalidated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "medreminder",
			Name:      "timers_revalidated_total",
			Help:      "Timers re-armed after wall-clock drift.",
		}),
	}
}

func (m *Metrics) observeFired(testMode, delivered bool) {
	mode := "daily"
	if testMode {
		mode = "test"
	}

	status := "false"
	if delivered {
		status = "true"
	}

	m.fired.WithLabelValues(mode, status).Inc()
}
