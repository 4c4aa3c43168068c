// Package metrics provides Prometheus metrics for library loading, backend
// initialization and device usage.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "soundnode"

var (
	libraryFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dynload",
		Name:      "library_failures_total",
		Help:      "Optional libraries that could not be loaded",
	}, []string{"library"})

	symbolFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dynload",
		Name:      "symbol_failures_total",
		Help:      "Required functions missing from a loaded library",
	}, []string{"library", "symbol"})
)

// IncLibraryFailure records a failed library load.
func IncLibraryFailure(library string) {
	libraryFailures.WithLabelValues(library).Inc()
}

// IncSymbolFailure records a function that did not resolve.
func IncSymbolFailure(library, symbol string) {
	symbolFailures.WithLabelValues(library, symbol).Inc()
}

// LibraryFailures returns the failure counter of one library.
func LibraryFailures(library string) prometheus.Counter {
	return libraryFailures.WithLabelValues(library)
}

// SymbolFailures returns the failure counter of one function.
func SymbolFailures(library, symbol string) prometheus.Counter {
	return symbolFailures.WithLabelValues(library, symbol)
}
