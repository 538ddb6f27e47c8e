package dashboard

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type promMetrics struct {
	registry *prometheus.Registry

	temperature  prometheus.Gauge
	humidity     prometheus.Gauge
	samples      prometheus.Counter
	sourceErrors prometheus.Counter
}

func newPromMetrics() *promMetrics {
	m := &promMetrics{
		registry: prometheus.NewRegistry(),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "iotsim_temperature_celsius",
			Help: "Latest simulated temperature.",
		}),
		humidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "iotsim_humidity_percent",
			Help: "Latest simulated relative humidity.",
		}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "iotsim_samples_total",
			Help: "Samples ingested by the dashboard.",
		}),
		sourceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "iotsim_source_errors_total",
			Help: "Failures reading from the sample source.",
		}),
	}

	m.registry.MustRegister(m.temperature, m.humidity, m.samples, m.sourceErrors)

	return m
}

func (m *promMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
