package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/gray-timer/internal/timer"
)

const (
	promNamespace  = "graytimer"
	promSubsystem  = "timer"
	labelEvent     = "event"
	labelSource    = "source"
	labelOperation = "operation"
)

// promMetrics holds the Prometheus collectors for one server. Each server
// owns its registry so tests can build several side by side.
type promMetrics struct {
	registry *prometheus.Registry
	events   *prometheus.CounterVec
	rejected *prometheus.CounterVec
}

// newPromMetrics registers timer and process collectors. Gauges are read
// from the store at scrape time.
func newPromMetrics(store *timer.Store, hub *Hub) *promMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &promMetrics{
		registry: reg,
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Subsystem: promSubsystem,
			Name:      "operations_total",
			Help:      "Number of successful timer operations.",
		}, []string{labelEvent, labelSource}),
		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Subsystem: promSubsystem,
			Name:      "operations_rejected_total",
			Help:      "Number of timer operations rejected because of the timer state.",
		}, []string{labelOperation}),
	}

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: promNamespace,
		Subsystem: promSubsystem,
		Name:      "running",
		Help:      "1 while the timer is counting down, 0 otherwise.",
	}, func() float64 {
		if store.Status().IsRunning {
			return 1
		}
		return 0
	})

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: promNamespace,
		Subsystem: promSubsystem,
		Name:      "remaining_seconds",
		Help:      "Remaining time in seconds. Negative once a running timer is overdue.",
	}, func() float64 {
		return store.Status().RemainingTime
	})

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: promNamespace,
		Name:      "websocket_clients",
		Help:      "Number of connected WebSocket clients.",
	}, func() float64 {
		return float64(hub.ClientCount())
	})

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveTimerEvent implements timer.Observer.
func (m *promMetrics) ObserveTimerEvent(ev timer.Event) {
	m.events.WithLabelValues(string(ev.Type), string(ev.Source)).Inc()
}

func (m *promMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
