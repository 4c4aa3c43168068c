package dynload

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
)

// Symbol names one exported function and the Go func variable it binds to.
// Fn must be a non-nil pointer to a func variable.
type Symbol struct {
	Name string
	Fn   any
}

// Binder points the func variable behind fptr at addr.
type Binder func(fptr any, addr uintptr)

// Library is the deferred symbol table of one optional subsystem.
type Library struct {
	name    string
	symbols []Symbol
	loader  *Loader
	bind    Binder
	logger  *slog.Logger

	onSymbolFailure func(library, symbol string)

	invalid error // a slot that can never be bound

	once   sync.Once
	mu     sync.Mutex
	handle Handle
	ready  atomic.Bool
}

// LibraryOption configures a Library.
type LibraryOption func(*Library)

// WithLoader sets the loader used to open the library.
func WithLoader(loader *Loader) LibraryOption {
	return func(l *Library) {
		l.loader = loader
	}
}

// WithBinder replaces the function binder. Tests use it to observe slots.
func WithBinder(bind Binder) LibraryOption {
	return func(l *Library) {
		l.bind = bind
	}
}

// WithLibraryLogger sets the logger used for symbol diagnostics.
func WithLibraryLogger(logger *slog.Logger) LibraryOption {
	return func(l *Library) {
		l.logger = logger
	}
}

// WithSymbolFailureHook registers a callback invoked when a symbol is missing.
func WithSymbolFailureHook(fn func(library, symbol string)) LibraryOption {
	return func(l *Library) {
		l.onSymbolFailure = fn
	}
}

// NewLibrary describes a library and the symbols that must all resolve
// before the subsystem counts as available. Nothing is loaded until Prepare.
func NewLibrary(name string, symbols []Symbol, opts ...LibraryOption) *Library {
	l := &Library{
		name:    name,
		symbols: symbols,
		bind:    bindFunc,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.loader == nil {
		l.loader = NewLoader(WithLogger(l.logger))
	}
	for _, sym := range symbols {
		if err := checkSlot(sym.Fn); err != nil {
			l.invalid = fmt.Errorf("symbol %s: %w", sym.Name, err)
			break
		}
	}
	return l
}

func checkSlot(fptr any) error {
	v := reflect.ValueOf(fptr)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return fmt.Errorf("slot is %T, want pointer to func", fptr)
	}
	if v.Elem().Kind() != reflect.Func {
		return fmt.Errorf("slot is %T, want pointer to func", fptr)
	}
	return nil
}

// Name returns the platform library name.
func (l *Library) Name() string {
	return l.name
}

// Prepare loads the library and binds every symbol. It runs at most once per
// Library; later calls return the first outcome without retrying.
func (l *Library) Prepare() bool {
	l.once.Do(l.prepare)
	return l.ready.Load()
}

// Available reports whether Prepare succeeded and Close has not run.
func (l *Library) Available() bool {
	return l.ready.Load()
}

// Handle returns the library handle, absent when unavailable.
func (l *Library) Handle() Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.handle
}

func (l *Library) prepare() {
	if l.invalid != nil {
		l.logger.Error("Invalid function table", "library", l.name, "error", l.invalid)
		return
	}
	handle := l.loader.Load(l.name)
	if !handle.Valid() {
		return
	}

	addrs := make([]uintptr, len(l.symbols))
	for i, sym := range l.symbols {
		addr := l.loader.Resolve(handle, sym.Name)
		if addr == 0 {
			l.logger.Warn("Failed to load function", "function", sym.Name, "library", l.name)
			if l.onSymbolFailure != nil {
				l.onSymbolFailure(l.name, sym.Name)
			}
			l.loader.Unload(handle)
			return
		}
		addrs[i] = addr
	}

	if err := l.bindAll(addrs); err != nil {
		l.logger.Warn("Failed to bind functions", "library", l.name, "error", err)
		l.loader.Unload(handle)
		return
	}

	l.mu.Lock()
	l.handle = handle
	l.mu.Unlock()
	l.ready.Store(true)
	l.logger.Debug("Bound library", "library", l.name, "functions", len(l.symbols))
}

// bindAll binds every slot or none. A binder panic, such as purego
// rejecting a signature, clears the slots bound before it.
func (l *Library) bindAll(addrs []uintptr) (err error) {
	bound := 0
	defer func() {
		if r := recover(); r != nil {
			for _, sym := range l.symbols[:bound] {
				clearSlot(sym.Fn)
			}
			err = fmt.Errorf("bind %s: %v", l.symbols[bound].Name, r)
		}
	}()
	for i, sym := range l.symbols {
		l.bind(sym.Fn, addrs[i])
		bound++
	}
	return nil
}

// Close unloads the library and clears every slot. It is meant for process
// teardown; no slot may be called concurrently with or after Close.
func (l *Library) Close() {
	// Consume the once so a later Prepare cannot reload a closed library.
	l.once.Do(func() {})

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.handle.Valid() {
		return
	}
	l.ready.Store(false)
	for _, sym := range l.symbols {
		clearSlot(sym.Fn)
	}
	l.loader.Unload(l.handle)
	l.handle = 0
}

func clearSlot(fptr any) {
	v := reflect.ValueOf(fptr)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return
	}
	elem := v.Elem()
	elem.Set(reflect.Zero(elem.Type()))
}
