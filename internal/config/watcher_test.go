package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type reloadConfig struct {
	Name  string `toml:"name"`
	Value int    `toml:"value"`
}

func loadReloadConfig(path string) (reloadConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return reloadConfig{}, err
	}
	var cfg reloadConfig
	err = toml.Unmarshal(data, &cfg)
	return cfg, err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func startWatcher(t *testing.T, path string, opts ...WatcherOption[reloadConfig]) *Watcher[reloadConfig] {
	t.Helper()
	opts = append([]WatcherOption[reloadConfig]{WithDebounce[reloadConfig](50 * time.Millisecond)}, opts...)
	w := NewConfigWatcher(path, loadReloadConfig, quietLogger(), opts...)
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := w.Stop(); err != nil {
			t.Errorf("Stop: %v", err)
		}
	})
	return w
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soundnode.toml")
	write(t, path, "name = \"initial\"\nvalue = 1\n")

	received := make(chan reloadConfig, 4)
	w := startWatcher(t, path)
	w.OnReload(func(cfg reloadConfig) { received <- cfg })

	write(t, path, "name = \"updated\"\nvalue = 42\n")

	select {
	case cfg := <-received:
		if cfg.Name != "updated" || cfg.Value != 42 {
			t.Errorf("got %+v", cfg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload")
	}
}

func TestWatcherAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "soundnode.toml")
	write(t, path, "value = 1\n")

	received := make(chan reloadConfig, 4)
	w := startWatcher(t, path)
	w.OnReload(func(cfg reloadConfig) { received <- cfg })

	tmp := filepath.Join(dir, ".soundnode.toml.swp")
	write(t, tmp, "value = 7\n")
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-received:
		if cfg.Value != 7 {
			t.Errorf("value = %d, want 7", cfg.Value)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("rename over the file was not seen")
	}
}

func TestWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "soundnode.toml")
	write(t, path, "value = 1\n")

	var reloads atomic.Int32
	w := startWatcher(t, path)
	w.OnReload(func(reloadConfig) { reloads.Add(1) })

	write(t, filepath.Join(dir, "other.toml"), "value = 2\n")
	time.Sleep(200 * time.Millisecond)
	if n := reloads.Load(); n != 0 {
		t.Errorf("reloaded %d times for an unrelated file", n)
	}
}

func TestWatcherDebounce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soundnode.toml")
	write(t, path, "value = 0\n")

	var reloads atomic.Int32
	var last atomic.Int64
	w := startWatcher(t, path, WithDebounce[reloadConfig](150*time.Millisecond))
	w.OnReload(func(cfg reloadConfig) {
		reloads.Add(1)
		last.Store(int64(cfg.Value))
	})

	for i := 1; i <= 5; i++ {
		write(t, path, "value = "+string(rune('0'+i))+"\n")
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(500 * time.Millisecond)

	if n := reloads.Load(); n != 1 {
		t.Errorf("reloads = %d, want 1", n)
	}
	if last.Load() != 5 {
		t.Errorf("last value = %d, want 5", last.Load())
	}
}

func TestWatcherUnsubscribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soundnode.toml")
	write(t, path, "value = 1\n")

	var kept, removed atomic.Int32
	w := startWatcher(t, path)
	w.OnReload(func(reloadConfig) { kept.Add(1) })
	unsub := w.OnReload(func(reloadConfig) { removed.Add(1) })
	unsub()
	unsub()

	write(t, path, "value = 2\n")
	deadline := time.Now().Add(2 * time.Second)
	for kept.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if kept.Load() != 1 {
		t.Fatalf("kept handler ran %d times", kept.Load())
	}
	if removed.Load() != 0 {
		t.Error("unsubscribed handler ran")
	}
}

func TestWatcherErrorHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soundnode.toml")
	write(t, path, "value = 1\n")

	errs := make(chan error, 1)
	var reloads atomic.Int32
	w := startWatcher(t, path, WithErrorHandler[reloadConfig](func(err error) { errs <- err }))
	w.OnReload(func(reloadConfig) { reloads.Add(1) })

	write(t, path, "value = [broken\n")

	select {
	case err := <-errs:
		if err == nil {
			t.Error("nil error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error handler not called")
	}
	if reloads.Load() != 0 {
		t.Error("handler received a config that failed to load")
	}
}

func TestWatcherStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soundnode.toml")
	write(t, path, "value = 1\n")

	w := NewConfigWatcher(path, loadReloadConfig, quietLogger(), WithDebounce[reloadConfig](20*time.Millisecond))
	if err := w.Stop(); err != nil {
		t.Errorf("Stop before Start: %v", err)
	}

	w = NewConfigWatcher(path, loadReloadConfig, quietLogger(), WithDebounce[reloadConfig](20*time.Millisecond))
	var reloads atomic.Int32
	w.OnReload(func(reloadConfig) { reloads.Add(1) })
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if err := w.Stop(); err != nil {
		t.Fatal(err)
	}

	write(t, path, "value = 2\n")
	time.Sleep(100 * time.Millisecond)
	if reloads.Load() != 0 {
		t.Error("handler ran after Stop")
	}
}

func TestWatcherStartMissingDir(t *testing.T) {
	w := NewConfigWatcher(filepath.Join(t.TempDir(), "nope", "soundnode.toml"), loadReloadConfig, quietLogger())
	if err := w.Start(); err == nil {
		t.Error("Start succeeded for a missing directory")
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
}

func TestWatcherSkipsUnchangedContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soundnode.toml")
	write(t, path, "value = 1\n")

	received := make(chan reloadConfig, 4)
	w := startWatcher(t, path)
	w.OnReload(func(cfg reloadConfig) { received <- cfg })

	// Saving the same bytes again is not a change.
	write(t, path, "value = 1\n")
	select {
	case cfg := <-received:
		t.Fatalf("reloaded unchanged content: %+v", cfg)
	case <-time.After(300 * time.Millisecond):
	}

	write(t, path, "value = 2\n")
	select {
	case cfg := <-received:
		if cfg.Value != 2 {
			t.Errorf("got %+v", cfg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload")
	}
}
