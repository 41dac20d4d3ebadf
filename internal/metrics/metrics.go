package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector wraps the Prometheus metrics used by the engine. A nil Collector
// is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	eventsIngested    *prometheus.CounterVec
	duplicatesSkipped prometheus.Counter
	invalidDropped    prometheus.Counter
	pollErrors        prometheus.Counter
	pollCycles        prometheus.Counter
	cycleDuration     prometheus.Histogram
	publishDrops      prometheus.Counter
	watchedMarkets    prometheus.Gauge
	subscribers       prometheus.Gauge
	venueConnected    prometheus.Gauge
}

// NewCollector initialises and registers all metrics.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		eventsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderflow",
			Name:      "events_ingested_total",
			Help:      "Total order-flow events persisted, by action.",
		}, []string{"action"}),
		duplicatesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orderflow",
			Name:      "duplicate_trades_total",
			Help:      "Total trade events skipped as duplicates.",
		}),
		invalidDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orderflow",
			Name:      "invalid_events_total",
			Help:      "Total events rejected by store validation and dropped.",
		}),
		pollErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orderflow",
			Name:      "poll_errors_total",
			Help:      "Total per-market poll failures.",
		}),
		pollCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orderflow",
			Name:      "poll_cycles_total",
			Help:      "Total completed poll cycles.",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "orderflow",
			Name:      "poll_cycle_duration_seconds",
			Help:      "Wall time per poll cycle.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		publishDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orderflow",
			Name:      "publish_drops_total",
			Help:      "Total events dropped on full subscriber buffers.",
		}),
		watchedMarkets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "orderflow",
			Name:      "watched_markets",
			Help:      "Markets currently in the watched set.",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "orderflow",
			Name:      "subscribers",
			Help:      "Live broadcast subscribers.",
		}),
		venueConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "orderflow",
			Name:      "venue_connected",
			Help:      "1 when the authenticated venue handshake succeeded, 0 in degraded mode.",
		}),
	}

	reg.MustRegister(
		c.eventsIngested,
		c.duplicatesSkipped,
		c.invalidDropped,
		c.pollErrors,
		c.pollCycles,
		c.cycleDuration,
		c.publishDrops,
		c.watchedMarkets,
		c.subscribers,
		c.venueConnected,
	)

	return c
}

// Handler returns the scrape endpoint handler.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) EventIngested(action string) {
	if c == nil {
		return
	}
	c.eventsIngested.WithLabelValues(action).Inc()
}

func (c *Collector) DuplicateSkipped() {
	if c == nil {
		return
	}
	c.duplicatesSkipped.Inc()
}

func (c *Collector) InvalidDropped() {
	if c == nil {
		return
	}
	c.invalidDropped.Inc()
}

func (c *Collector) PollError() {
	if c == nil {
		return
	}
	c.pollErrors.Inc()
}

func (c *Collector) PollCycle(d time.Duration) {
	if c == nil {
		return
	}
	c.pollCycles.Inc()
	c.cycleDuration.Observe(d.Seconds())
}

func (c *Collector) PublishDrop() {
	if c == nil {
		return
	}
	c.publishDrops.Inc()
}

func (c *Collector) SetWatchedMarkets(n int) {
	if c == nil {
		return
	}
	c.watchedMarkets.Set(float64(n))
}

func (c *Collector) SetSubscribers(n int) {
	if c == nil {
		return
	}
	c.subscribers.Set(float64(n))
}

func (c *Collector) SetVenueConnected(connected bool) {
	if c == nil {
		return
	}
	if connected {
		c.venueConnected.Set(1)
	} else {
		c.venueConnected.Set(0)
	}
}
