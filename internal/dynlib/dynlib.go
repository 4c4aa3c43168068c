// Package dynlib builds dynload libraries that report through the process
// logger and metrics.
package dynlib

import (
	"github.com/smazurov/soundnode/internal/logging"
	"github.com/smazurov/soundnode/internal/metrics"
	"github.com/smazurov/soundnode/pkg/dynload"
)

// Loader returns a loader that logs as the dynload module and counts failed
// loads.
func Loader(opts ...dynload.Option) *dynload.Loader {
	base := []dynload.Option{
		dynload.WithLogger(logging.GetLogger("dynload")),
		dynload.WithLoadFailureHook(func(library string, _ error) {
			metrics.IncLibraryFailure(library)
		}),
	}
	return dynload.NewLoader(append(base, opts...)...)
}

// New describes an optional library. Later options override the defaults,
// so tests can pass dynload.WithLoader and dynload.WithBinder.
func New(name string, symbols []dynload.Symbol, opts ...dynload.LibraryOption) *dynload.Library {
	base := []dynload.LibraryOption{
		dynload.WithLoader(Loader()),
		dynload.WithLibraryLogger(logging.GetLogger("dynload")),
		dynload.WithSymbolFailureHook(metrics.IncSymbolFailure),
	}
	return dynload.NewLibrary(name, symbols, append(base, opts...)...)
}
