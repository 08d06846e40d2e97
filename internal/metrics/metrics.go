package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Collector struct {
	reg *prometheus.Registry

	CatalogDepartures prometheus.Gauge
	CatalogRoutes     prometheus.Gauge

	Ticks        prometheus.Counter
	TickDuration prometheus.Histogram
	TickInterval prometheus.Gauge // seconds

	SelectionChanges *prometheus.CounterVec // level label: route|departure|stop|reset
	UpcomingLookups  *prometheus.CounterVec // outcome label: upcoming|none

	FeedMessages   *prometheus.CounterVec // result label: applied|rejected
	FeedConnected  prometheus.Gauge
	OverrideRoutes prometheus.Gauge

	HTTPRequests *prometheus.CounterVec // code label
}

func NewCollector(tickInterval time.Duration) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		CatalogDepartures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "schedule_catalog_departures",
			Help: "Number of departures in the loaded catalog.",
		}),
		CatalogRoutes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "schedule_catalog_routes",
			Help: "Number of distinct route names in the loaded catalog.",
		}),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "schedule_ticks_total",
			Help: "Total current-time refreshes.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "schedule_tick_duration_seconds",
			Help:    "Duration of a refresh including view recomputation.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 15),
		}),
		TickInterval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "schedule_tick_interval_seconds",
			Help: "Configured refresh interval in seconds.",
		}),
		SelectionChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_selection_changes_total",
			Help: "Selection events by level.",
		}, []string{"level"}),
		UpcomingLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_upcoming_lookups_total",
			Help: "Next-stop lookups by outcome.",
		}, []string{"outcome"}),
		FeedMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_overrides_feed_messages_total",
			Help: "Overrides feed messages by result.",
		}, []string{"result"}),
		FeedConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "schedule_overrides_feed_connected",
			Help: "1 if the NATS overrides feed is connected, 0 otherwise.",
		}),
		OverrideRoutes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "schedule_override_routes",
			Help: "Routes with day-of-week exceptions loaded at startup.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_http_requests_total",
			Help: "HTTP requests by status code.",
		}, []string{"code"}),
	}

	reg.MustRegister(
		c.CatalogDepartures, c.CatalogRoutes,
		c.Ticks, c.TickDuration, c.TickInterval,
		c.SelectionChanges, c.UpcomingLookups,
		c.FeedMessages, c.FeedConnected, c.OverrideRoutes,
		c.HTTPRequests,
	)

	c.TickInterval.Set(tickInterval.Seconds())

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server error")
		}
	}()
	log.Info().Str("addr", addr).Msg("metrics listening")
	return srv
}

// Adapters so other packages depend on small interfaces, not on prometheus.

func (c *Collector) TickObserve(d time.Duration) {
	c.Ticks.Inc()
	c.TickDuration.Observe(d.Seconds())
}

func (c *Collector) SelectionInc(level string) { c.SelectionChanges.WithLabelValues(level).Inc() }

func (c *Collector) UpcomingInc(found bool) {
	if found {
		c.UpcomingLookups.WithLabelValues("upcoming").Inc()
	} else {
		c.UpcomingLookups.WithLabelValues("none").Inc()
	}
}

func (c *Collector) FeedMessageInc(applied bool) {
	if applied {
		c.FeedMessages.WithLabelValues("applied").Inc()
	} else {
		c.FeedMessages.WithLabelValues("rejected").Inc()
	}
}

func (c *Collector) FeedSetConnected(connected bool) {
	if connected {
		c.FeedConnected.Set(1)
	} else {
		c.FeedConnected.Set(0)
	}
}

func (c *Collector) RequestInc(code int) {
	c.HTTPRequests.WithLabelValues(strconv.Itoa(code)).Inc()
}
