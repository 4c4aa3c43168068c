package dynload

import (
	"errors"
	"log/slog"
)

// Handle is an opened shared library. The zero value means absent.
type Handle uintptr

// Valid reports whether h refers to an opened library.
func (h Handle) Valid() bool {
	return h != 0
}

// Opener is the platform loader used by a Loader.
type Opener interface {
	Open(name string) (uintptr, error)
	Symbol(handle uintptr, name string) (uintptr, error)
	Close(handle uintptr) error
}

var errNullHandle = errors.New("loader returned a null handle")

// Loader opens libraries and resolves symbols. Failures never propagate as
// panics; they come back as absent handles or zero addresses.
type Loader struct {
	opener        Opener
	logger        *slog.Logger
	onLoadFailure func(library string, err error)
}

// Option configures a Loader.
type Option func(*Loader)

// WithOpener replaces the platform loader.
func WithOpener(o Opener) Option {
	return func(l *Loader) {
		l.opener = o
	}
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithLoadFailureHook registers a callback invoked once per failed Load.
func WithLoadFailureHook(fn func(library string, err error)) Option {
	return func(l *Loader) {
		l.onLoadFailure = fn
	}
}

// NewLoader creates a Loader backed by the system dynamic loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		opener: systemOpener{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load opens the named library. On failure it logs one warning and returns
// an absent handle.
func (l *Loader) Load(name string) Handle {
	h, err := l.opener.Open(name)
	if err == nil && h == 0 {
		err = errNullHandle
	}
	if err != nil {
		l.logger.Warn("Failed to load library", "library", name, "error", err)
		if l.onLoadFailure != nil {
			l.onLoadFailure(name, err)
		}
		return 0
	}
	l.logger.Debug("Loaded library", "library", name)
	return Handle(h)
}

// Resolve looks up one exported symbol. A missing symbol returns zero and is
// not logged here; the caller decides whether the absence is fatal for its
// subsystem.
func (l *Loader) Resolve(h Handle, symbol string) uintptr {
	if !h.Valid() {
		return 0
	}
	addr, err := l.opener.Symbol(uintptr(h), symbol)
	if err != nil {
		return 0
	}
	return addr
}

// Unload releases the library. Absent handles are ignored. Callers must not
// unload the same handle twice.
func (l *Loader) Unload(h Handle) {
	if !h.Valid() {
		return
	}
	if err := l.opener.Close(uintptr(h)); err != nil {
		l.logger.Warn("Failed to unload library", "error", err)
	}
}
