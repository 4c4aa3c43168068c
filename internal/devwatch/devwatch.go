// Package devwatch reports sound device nodes appearing and disappearing
// under /dev so that device lists can be refreshed on hotplug.
package devwatch

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/smazurov/soundnode/internal/events"
	"github.com/smazurov/soundnode/internal/logging"
	"github.com/smazurov/soundnode/internal/metrics"
)

// Actions carried by events.DevicesChangedEvent.
const (
	ActionAdded   = "added"
	ActionRemoved = "removed"
)

// DefaultRoot is the device directory watched by default.
const DefaultRoot = "/dev"

// sndDir is the ALSA subdirectory of the device root.
const sndDir = "snd"

var (
	alsaNode = regexp.MustCompile(`^(pcmC\d+D\d+[pc]|controlC\d+)$`)
	ossNode  = regexp.MustCompile(`^(dsp|mixer|audio)\d*$`)
)

// ErrNoRoot is returned by Start when the device root cannot be watched.
var ErrNoRoot = errors.New("device root not watchable")

// IsSoundNode reports whether name is a node a backend can open. ALSA PCM
// and control nodes live in the snd subdirectory; OSS nodes sit at the top.
func IsSoundNode(dir, name string) bool {
	if filepath.Base(dir) == sndDir {
		return alsaNode.MatchString(name)
	}
	return ossNode.MatchString(name)
}

// Watcher publishes events.DevicesChangedEvent for sound device nodes.
type Watcher struct {
	root     string
	debounce time.Duration
	bus      *events.Bus
	onFlush  func()
	logger   *slog.Logger

	watcher *fsnotify.Watcher
	pending map[string]string
	done    chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithRoot replaces /dev. Tests point it at a temporary directory.
func WithRoot(root string) Option {
	return func(w *Watcher) {
		w.root = root
	}
}

// WithDebounce sets how long node activity must settle before events are
// published. Default is 500ms.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithFlushHandler registers fn to run once after each published batch.
func WithFlushHandler(fn func()) Option {
	return func(w *Watcher) {
		w.onFlush = fn
	}
}

// New creates a watcher publishing to bus.
func New(bus *events.Bus, opts ...Option) *Watcher {
	w := &Watcher{
		root:     DefaultRoot,
		debounce: 500 * time.Millisecond,
		bus:      bus,
		logger:   logging.GetLogger("devwatch"),
		pending:  make(map[string]string),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start watches the root and its snd subdirectory, which may appear later
// when the first card is plugged in.
func (w *Watcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(w.root); err != nil {
		watcher.Close()
		return errors.Join(ErrNoRoot, err)
	}
	snd := filepath.Join(w.root, sndDir)
	if err := watcher.Add(snd); err != nil && !errors.Is(err, os.ErrNotExist) {
		w.logger.Warn("Cannot watch ALSA device directory", "path", snd, "error", err)
	}
	w.watcher = watcher

	w.logger.Info("Device watcher started", "root", w.root, "debounce", w.debounce)
	go w.watch()
	return nil
}

// Stop ends watching. Pending changes are dropped.
func (w *Watcher) Stop() error {
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) watch() {
	defer close(w.done)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.handle(ev) {
				timer.Reset(w.debounce)
			}

		case <-timer.C:
			w.flush()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Device watcher error", "error", err)
		}
	}
}

// handle records ev and reports whether anything became pending.
func (w *Watcher) handle(ev fsnotify.Event) bool {
	dir, name := filepath.Split(filepath.Clean(ev.Name))
	dir = filepath.Clean(dir)

	if dir == filepath.Clean(w.root) && name == sndDir && ev.Has(fsnotify.Create) {
		return w.addSndDir(ev.Name)
	}
	if !IsSoundNode(dir, name) {
		return false
	}

	switch {
	case ev.Has(fsnotify.Create):
		w.record(ev.Name, ActionAdded)
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.record(ev.Name, ActionRemoved)
	default:
		return false
	}
	return true
}

// addSndDir starts watching a freshly created snd directory and records the
// nodes udev already populated before the watch was in place.
func (w *Watcher) addSndDir(path string) bool {
	if err := w.watcher.Add(path); err != nil {
		w.logger.Warn("Cannot watch ALSA device directory", "path", path, "error", err)
		return false
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return false
	}
	found := false
	for _, e := range entries {
		if alsaNode.MatchString(e.Name()) {
			w.record(filepath.Join(path, e.Name()), ActionAdded)
			found = true
		}
	}
	return found
}

// record merges action into the pending set. A node added and removed
// within one window never existed as far as subscribers are concerned.
func (w *Watcher) record(path, action string) {
	if prev, ok := w.pending[path]; ok && prev == ActionAdded && action == ActionRemoved {
		delete(w.pending, path)
		return
	}
	w.pending[path] = action
}

func (w *Watcher) flush() {
	if len(w.pending) == 0 {
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	now := time.Now().UTC().Format(time.RFC3339)
	for _, p := range paths {
		action := w.pending[p]
		w.logger.Info("Sound device node changed", "path", p, "action", action)
		metrics.RecordDeviceNodeChange(action)
		if w.bus != nil {
			w.bus.Publish(events.DevicesChangedEvent{Path: p, Action: action, Timestamp: now})
		}
	}
	clear(w.pending)

	if w.onFlush != nil {
		w.onFlush()
	}
}
