// Package metrics exposes Prometheus metrics for taps, fares, event
// publishing and HTTP requests on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkordes/clamcard/internal/domain"
)

// Collector owns every metric the service exports.
type Collector struct {
	reg *prometheus.Registry

	JourneysCompleted prometheus.Counter
	JourneysCancelled prometheus.Counter
	JourneysCapped    prometheus.Counter
	FaresCharged      prometheus.Counter
	TapsRejected      *prometheus.CounterVec // reason label

	EventsPublished    prometheus.Counter
	EventPublishErrors prometheus.Counter
	NATSConnected      prometheus.Gauge

	RequestDuration *prometheus.HistogramVec // method, route, status labels
}

// NewCollector creates and registers all metrics.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		JourneysCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clamcard_journeys_completed_total",
			Help: "Journeys closed at a different station and charged.",
		}),
		JourneysCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clamcard_journeys_cancelled_total",
			Help: "Journeys cancelled by tapping out at the start station.",
		}),
		JourneysCapped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clamcard_journeys_capped_total",
			Help: "Completed journeys charged less than the single fare because a day or week cap applied.",
		}),
		FaresCharged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clamcard_fares_charged_total",
			Help: "Sum of all fares charged, in currency units.",
		}),
		TapsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clamcard_taps_rejected_total",
			Help: "Taps refused, by reason.",
		}, []string{"reason"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clamcard_events_published_total",
			Help: "Journey events published to NATS.",
		}),
		EventPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clamcard_event_publish_errors_total",
			Help: "Journey events that failed to publish.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clamcard_nats_connected",
			Help: "1 if the NATS connection is established, 0 otherwise.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clamcard_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		c.JourneysCompleted, c.JourneysCancelled, c.JourneysCapped,
		c.FaresCharged, c.TapsRejected,
		c.EventsPublished, c.EventPublishErrors, c.NATSConnected,
		c.RequestDuration,
	)
	return c
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// JourneyCompleted counts a charged journey and adds its fare.
func (c *Collector) JourneyCompleted(j domain.Journey, capped bool) {
	c.JourneysCompleted.Inc()
	c.FaresCharged.Add(j.Cost.InexactFloat64())
	if capped {
		c.JourneysCapped.Inc()
	}
}

// JourneyCancelled counts a same-station tap out.
func (c *Collector) JourneyCancelled() { c.JourneysCancelled.Inc() }

// TapRejected counts a refused tap.
func (c *Collector) TapRejected(reason string) { c.TapsRejected.WithLabelValues(reason).Inc() }

// EventPublished counts a published event.
func (c *Collector) EventPublished() { c.EventsPublished.Inc() }

// EventPublishFailed counts a failed publish.
func (c *Collector) EventPublishFailed() { c.EventPublishErrors.Inc() }

// SetNATSConnected records the NATS connection state.
func (c *Collector) SetNATSConnected(connected bool) {
	if connected {
		c.NATSConnected.Set(1)
		return
	}
	c.NATSConnected.Set(0)
}

// Instrument returns middleware that observes request latency labelled by
// chi's route pattern, so /cards/{id} is one series rather than one per card.
func (c *Collector) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.RequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
