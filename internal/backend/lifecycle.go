package backend

import (
	"sync"
	"sync/atomic"
)

// State is the position of a factory in its init state machine.
type State int32

const (
	StateUninitialized State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// Lifecycle tracks Uninitialized -> Ready | Failed for one factory. Failed is
// terminal.
type Lifecycle struct {
	once  sync.Once
	state atomic.Int32
}

// Init runs setup once and records its outcome. Every call returns whether
// the factory is ready.
func (l *Lifecycle) Init(setup func() bool) bool {
	l.once.Do(func() {
		if setup() {
			l.state.Store(int32(StateReady))
		} else {
			l.state.Store(int32(StateFailed))
		}
	})
	return l.Ready()
}

// State returns the current state.
func (l *Lifecycle) State() State {
	return State(l.state.Load())
}

// Ready reports whether Init succeeded.
func (l *Lifecycle) Ready() bool {
	return l.State() == StateReady
}

// Require returns ErrNotInitialized unless Init succeeded.
func (l *Lifecycle) Require() error {
	if !l.Ready() {
		return ErrNotInitialized
	}
	return nil
}

// StateOf reports the lifecycle state of f when it exposes one.
func StateOf(f Factory) State {
	if s, ok := f.(interface{ State() State }); ok {
		return s.State()
	}
	return StateUninitialized
}
