package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// -----------------------------------------------------------------------------

// Metrics groups the dashboard collectors on a private registry.
// All methods are safe on a nil receiver.
type Metrics struct {
	Registry *prometheus.Registry

	polls         *prometheus.CounterVec
	pollDuration  prometheus.Histogram
	staleDropped  prometheus.Counter
	redraws       *prometheus.CounterVec
	readings      *prometheus.CounterVec
	bucketsClosed *prometheus.CounterVec
	wsClients     prometheus.Gauge
	httpRequests  *prometheus.CounterVec
}

// -----------------------------------------------------------------------------

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		polls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sensorboard_polls_total",
				Help: "Stats polls by result.",
			},
			[]string{"result"},
		),
		pollDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sensorboard_poll_duration_seconds",
				Help:    "Duration of stats requests.",
				Buckets: prometheus.DefBuckets,
			},
		),
		staleDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sensorboard_stale_responses_total",
				Help: "Responses discarded because a newer one was already applied.",
			},
		),
		redraws: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sensorboard_chart_redraws_total",
				Help: "Chart redraws per channel.",
			},
			[]string{"channel"},
		),
		readings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sensorboard_readings_ingested_total",
				Help: "Raw readings accepted per channel.",
			},
			[]string{"channel"},
		),
		bucketsClosed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sensorboard_buckets_closed_total",
				Help: "Minute buckets closed per channel.",
			},
			[]string{"channel"},
		),
		wsClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sensorboard_websocket_clients",
				Help: "Connected dashboard clients.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sensorboard_http_requests_total",
				Help: "HTTP requests by route and status.",
			},
			[]string{"route", "code"},
		),
	}

	m.Registry.MustRegister(
		m.polls, m.pollDuration, m.staleDropped, m.redraws,
		m.readings, m.bucketsClosed, m.wsClients, m.httpRequests,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// -----------------------------------------------------------------------------

func (m *Metrics) PollDone(start time.Time, err error) {
	if m == nil {
		return
	}
	m.pollDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.polls.WithLabelValues("error").Inc()
		return
	}
	m.polls.WithLabelValues("ok").Inc()
}

func (m *Metrics) StaleDropped() {
	if m == nil {
		return
	}
	m.staleDropped.Inc()
}

func (m *Metrics) Redraw(channel string) {
	if m == nil {
		return
	}
	m.redraws.WithLabelValues(channel).Inc()
}

func (m *Metrics) ReadingIngested(channel string) {
	if m == nil {
		return
	}
	m.readings.WithLabelValues(channel).Inc()
}

func (m *Metrics) BucketClosed(channel string) {
	if m == nil {
		return
	}
	m.bucketsClosed.WithLabelValues(channel).Inc()
}

func (m *Metrics) ClientsConnected(n int) {
	if m == nil {
		return
	}
	m.wsClients.Set(float64(n))
}

func (m *Metrics) Request(route string, code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, http.StatusText(code)).Inc()
}
