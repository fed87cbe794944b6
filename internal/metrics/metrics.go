// Package metrics exposes engine counters over a Prometheus /metrics endpoint.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the engine's Prometheus instruments. All methods are safe
// to call on a nil receiver so metrics can be left unconfigured.
type Collector struct {
	offersDispatched prometheus.Counter
	offersAccepted   prometheus.Counter
	offersDeclined   prometheus.Counter
	offersExpired    prometheus.Counter
	shiftsUnfilled   prometheus.Counter
	sweepDuration    prometheus.Histogram

	registry *prometheus.Registry
}

// NewCollector creates and registers the engine's instruments
func NewCollector() *Collector {
	c := &Collector{
		offersDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "offers_dispatched_total",
			Help: "Total cascade offers dispatched to caregivers",
		}),
		offersAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "offers_accepted_total",
			Help: "Total offers accepted by caregivers",
		}),
		offersDeclined: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "offers_declined_total",
			Help: "Total offers explicitly declined by caregivers",
		}),
		offersExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "offers_expired_total",
			Help: "Total offers expired by the sweeper",
		}),
		shiftsUnfilled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shifts_unfilled_total",
			Help: "Total cascade shifts that exhausted every candidate",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sweep_duration_seconds",
			Help:    "Duration of expired-offer sweep passes",
			Buckets: prometheus.DefBuckets,
		}),
		registry: prometheus.NewRegistry(),
	}

	c.registry.MustRegister(
		c.offersDispatched,
		c.offersAccepted,
		c.offersDeclined,
		c.offersExpired,
		c.shiftsUnfilled,
		c.sweepDuration,
	)

	return c
}

// Handler returns the /metrics HTTP handler for this collector's registry
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) OfferDispatched() {
	if c != nil {
		c.offersDispatched.Inc()
	}
}

func (c *Collector) OfferAccepted() {
	if c != nil {
		c.offersAccepted.Inc()
	}
}

func (c *Collector) OfferDeclined() {
	if c != nil {
		c.offersDeclined.Inc()
	}
}

func (c *Collector) OfferExpired() {
	if c != nil {
		c.offersExpired.Inc()
	}
}

func (c *Collector) ShiftUnfilled() {
	if c != nil {
		c.shiftsUnfilled.Inc()
	}
}

// ObserveSweep records the duration of one sweep pass
func (c *Collector) ObserveSweep(d time.Duration) {
	if c != nil {
		c.sweepDuration.Observe(d.Seconds())
	}
}
