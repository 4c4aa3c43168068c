// Package exporters exposes the registered metrics over HTTP.
package exporters

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smazurov/soundnode/internal/logging"
)

type config struct {
	gatherer   prometheus.Gatherer
	registerer prometheus.Registerer
}

// Option configures HTTPHandler.
type Option func(*config)

// WithRegistry serves reg instead of the default registry. Scrape metrics of
// the handler itself are registered on reg too.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(c *config) {
		c.gatherer = reg
		c.registerer = reg
	}
}

// HTTPHandler serves the metrics in the Prometheus text or OpenMetrics
// format. A failing collector is logged and the remaining metrics are
// still served.
func HTTPHandler(opts ...Option) http.Handler {
	c := config{
		gatherer:   prometheus.DefaultGatherer,
		registerer: prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&c)
	}

	h := promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{
		ErrorLog:          errorLog{logging.GetLogger("metrics")},
		ErrorHandling:     promhttp.ContinueOnError,
		EnableOpenMetrics: true,
	})
	return promhttp.InstrumentMetricHandler(c.registerer, h)
}

// errorLog adapts slog to promhttp.Logger.
type errorLog struct {
	logger *slog.Logger
}

func (l errorLog) Println(v ...any) {
	l.logger.Warn("Metrics gathering failed", "error", fmt.Sprint(v...))
}
