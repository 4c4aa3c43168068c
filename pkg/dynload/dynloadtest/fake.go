// Package dynloadtest provides an in-memory library for tests of code built
// on dynload.
package dynloadtest

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/smazurov/soundnode/pkg/dynload"
)

// ErrNotFound is returned for missing libraries and symbols.
var ErrNotFound = errors.New("not found")

// Library is a fake shared library. Funcs maps exported symbol names to Go
// implementations with exactly the type of the slot they are bound to.
type Library struct {
	Funcs   map[string]any
	Missing bool // Open fails

	mu     sync.Mutex
	names  []string
	opens  int
	closes int
}

const handle = 0x5eed

// Open implements dynload.Opener.
func (l *Library) Open(name string) (uintptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Missing {
		return 0, fmt.Errorf("%s: cannot open shared object file: %w", name, ErrNotFound)
	}
	l.opens++
	return handle, nil
}

// Symbol implements dynload.Opener. Addresses index an internal table.
func (l *Library) Symbol(_ uintptr, name string) (uintptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.Funcs[name]; !ok {
		return 0, fmt.Errorf("undefined symbol %s: %w", name, ErrNotFound)
	}
	l.names = append(l.names, name)
	return uintptr(len(l.names)), nil
}

// Close implements dynload.Opener.
func (l *Library) Close(uintptr) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closes++
	return nil
}

// Bind is a dynload.Binder that installs the fake behind addr.
func (l *Library) Bind(fptr any, addr uintptr) {
	l.mu.Lock()
	name := l.names[addr-1]
	l.mu.Unlock()
	reflect.ValueOf(fptr).Elem().Set(reflect.ValueOf(l.Funcs[name]))
}

// Options returns the library options that route a dynload.Library to l.
func (l *Library) Options() []dynload.LibraryOption {
	return []dynload.LibraryOption{
		dynload.WithLoader(dynload.NewLoader(dynload.WithOpener(l))),
		dynload.WithBinder(l.Bind),
	}
}

// Opens returns how many times the library was opened.
func (l *Library) Opens() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.opens
}

// Closes returns how many times the library was closed.
func (l *Library) Closes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closes
}
