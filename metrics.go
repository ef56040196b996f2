package blogcore

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const metricsSubsystem = "blogcore"

// Metrics owns an app-local prometheus registry and the content counters.
type Metrics struct {
	reg           *prometheus.Registry
	totalCache    *prometheus.CounterVec
	logins        *prometheus.CounterVec
	registrations *prometheus.CounterVec
}

// NewMetrics returns a registry with Go runtime collectors and the content
// counters registered.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := &Metrics{
		reg: reg,
		totalCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: metricsSubsystem,
			Name:      "total_cache_lookups_total",
			Help:      "Lookups of the cached published post count by result",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: metricsSubsystem,
			Name:      "logins_total",
			Help:      "Login attempts by outcome",
		}, []string{"outcome"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: metricsSubsystem,
			Name:      "registrations_total",
			Help:      "Registration attempts by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.totalCache, m.logins, m.registrations)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Middleware records per-route HTTP request metrics.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  metricsSubsystem,
		Registerer: m.reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	})
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: m.reg})
}

func (m *Metrics) cacheResult(result string) {
	if m != nil {
		m.totalCache.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) login(outcome string) {
	if m != nil {
		m.logins.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) registration(outcome string) {
	if m != nil {
		m.registrations.WithLabelValues(outcome).Inc()
	}
}
