package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

type testOptions struct {
	Config string

	Order    []string      `toml:"backends.order" env:"BACKENDS_ORDER"`
	Library  string        `toml:"pulse.library" env:"PULSE_LIBRARY"`
	Port     int           `toml:"server.port" env:"PORT"`
	RTKit    bool          `toml:"rtkit.enabled" env:"RTKIT_ENABLED"`
	Volume   float64       `toml:"tone.volume" env:"TONE_VOLUME"`
	Duration time.Duration `toml:"tone.duration" env:"TONE_DURATION"`
	Untagged string
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "soundnode.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sampleConfig = `
[backends]
order = ["alsa", "-pulse", ""]

[pulse]
library = "libpulse-simple.so.1"

[server]
port = 9000

[rtkit]
enabled = true

[tone]
volume = 0.25
duration = "1500ms"
`

func TestLoadConfigFromTOML(t *testing.T) {
	opts := &testOptions{Config: writeConfig(t, sampleConfig), Untagged: "kept"}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	want := testOptions{
		Config:   opts.Config,
		Order:    []string{"alsa", "-pulse", ""},
		Library:  "libpulse-simple.so.1",
		Port:     9000,
		RTKit:    true,
		Volume:   0.25,
		Duration: 1500 * time.Millisecond,
		Untagged: "kept",
	}
	if !reflect.DeepEqual(*opts, want) {
		t.Errorf("got %+v\nwant %+v", *opts, want)
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	t.Setenv("SOUNDNODE_PORT", "9100")
	t.Setenv("SOUNDNODE_BACKENDS_ORDER", "oss, null")
	t.Setenv("SOUNDNODE_PULSE_LIBRARY", "")

	opts := &testOptions{Config: path}
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().IntVar(&opts.Port, "port", 8090, "")
	cmd.Flags().StringSliceVar(&opts.Order, "order", nil, "")
	if err := cmd.Flags().Set("port", "9200"); err != nil {
		t.Fatal(err)
	}

	if err := LoadConfig(opts, cmd); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if opts.Port != 9200 {
		t.Errorf("Port = %d, want flag value 9200", opts.Port)
	}
	if !reflect.DeepEqual(opts.Order, []string{"oss", "null"}) {
		t.Errorf("Order = %q, want env value", opts.Order)
	}
	if opts.Library != "libpulse-simple.so.1" {
		t.Errorf("Library = %q, empty env must not override the file", opts.Library)
	}
}

func TestLoadConfigEnvTrailingComma(t *testing.T) {
	t.Setenv("SOUNDNODE_BACKENDS_ORDER", "pulse,")
	opts := &testOptions{}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(opts.Order, []string{"pulse", ""}) {
		t.Errorf("Order = %q", opts.Order)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{"invalid toml", "[server\nport = ", nil},
		{"wrong type in file", "[server]\nport = \"high\"\n", nil},
		{"bad env int", "", map[string]string{"SOUNDNODE_PORT": "eighty"}},
		{"bad env duration", "", map[string]string{"SOUNDNODE_TONE_DURATION": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			opts := &testOptions{}
			if tt.file != "" {
				opts.Config = writeConfig(t, tt.file)
			}
			if err := LoadConfig(opts, nil); err == nil {
				t.Error("expected an error")
			}
		})
	}

	if err := LoadConfig(testOptions{}, nil); err == nil {
		t.Error("non-pointer accepted")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	opts := &testOptions{Config: filepath.Join(t.TempDir(), "absent.toml"), Port: 8090}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if opts.Port != 8090 {
		t.Errorf("default overwritten: %d", opts.Port)
	}
}

func TestGetNestedValue(t *testing.T) {
	doc := map[string]any{
		"alsa": map[string]any{"dev_root": "/dev/snd"},
		"flat": "value",
	}
	tests := []struct {
		path string
		want any
	}{
		{"alsa.dev_root", "/dev/snd"},
		{"flat", "value"},
		{"alsa.missing", nil},
		{"flat.deeper", nil},
		{"missing.key", nil},
	}
	for _, tt := range tests {
		if got := getNestedValue(doc, tt.path); got != tt.want {
			t.Errorf("getNestedValue(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFieldNameToFlag(t *testing.T) {
	tests := map[string]string{
		"Port":         "port",
		"LoggingLevel": "logging-level",
		"PulseServer":  "pulse-server",
	}
	for in, want := range tests {
		if got := fieldNameToFlag(in); got != want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReadLoggingConfig(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "warn"
format = "json"
dynload = "debug"
backend.alsa = "debug"
"backend.pulse" = "error"
`)
	cfg, err := ReadLoggingConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Level != "warn" || cfg.Format != "json" {
		t.Errorf("level/format = %s/%s", cfg.Level, cfg.Format)
	}
	want := map[string]string{
		"dynload":       "debug",
		"backend.alsa":  "debug",
		"backend.pulse": "error",
	}
	if !reflect.DeepEqual(cfg.Modules, want) {
		t.Errorf("modules = %v, want %v", cfg.Modules, want)
	}
}

func TestLoadLoggingConfigDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "absent.toml"), writeConfig(t, "[logging")} {
		cfg := LoadLoggingConfig(path)
		if cfg.Level != "info" || cfg.Format != "text" || cfg.Modules == nil {
			t.Errorf("LoadLoggingConfig(%q) = %+v", path, cfg)
		}
	}
}

func TestLoadConfigListIntoString(t *testing.T) {
	var opts struct {
		Config string
		Order  string `toml:"backends.order"`
	}
	opts.Config = writeConfig(t, "[backends]\norder = [\"alsa\", \"-pulse\", \"\"]\n")
	if err := LoadConfig(&opts, nil); err != nil {
		t.Fatal(err)
	}
	if opts.Order != "alsa,-pulse," {
		t.Errorf("Order = %q", opts.Order)
	}
}
