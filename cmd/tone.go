package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"

	"github.com/smazurov/soundnode/internal/backend"
	"github.com/smazurov/soundnode/internal/dbuswrap"
	"github.com/smazurov/soundnode/internal/logging"
	"github.com/smazurov/soundnode/internal/rtkit"
	"github.com/smazurov/soundnode/internal/selector"
)

// CreateToneCmd creates the tone command.
func CreateToneCmd() *cobra.Command {
	var (
		backendName string
		deviceName  string
		formatName  string
		freq        float64
		volume      float64
		duration    time.Duration
		rate        int
		channels    int
	)

	cmd := &cobra.Command{
		Use:   "tone",
		Short: "Play a sine tone through the selected backend",
		Long: `Selects a backend the way the server does, or uses --backend, opens a playback ` +
			`device and writes a sine tone for the given duration.`,
		Args: cobra.NoArgs,
		Run: humacli.WithOptions(func(cmd *cobra.Command, _ []string, opts *Options) {
			logger := logging.GetLogger("tone")

			format, err := backend.ParseSampleFormat(formatName)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}

			sel := selector.New(selector.DefaultRegistry(), opts.Order())
			selection, err := sel.Select(backendName)
			if err != nil {
				logger.Error("No backend", "error", err)
				os.Exit(1)
			}

			cfg := backend.DefaultDeviceConfig()
			cfg.Name = deviceName
			cfg.SampleRate = rate
			cfg.Channels = channels
			cfg.Format = format
			cfg.UpdateSize = rate / 50
			cfg.BufferSize = cfg.UpdateSize * 3

			dev, err := selection.OpenDevice(cfg, backend.Playback)
			if err != nil {
				logger.Error("Failed to open device", "backend", selection.Name(), "error", err)
				os.Exit(1)
			}
			defer dev.Close()

			// The device may have adjusted the requested format.
			got := dev.Config()
			logger.Info("Playing tone",
				"backend", selection.Name(),
				"device", dev.Name(),
				"rate", got.SampleRate,
				"channels", got.Channels,
				"format", got.Format.String(),
				"frequency", freq,
				"duration", duration)

			var raise raiseFunc
			if opts.RTKitEnabled {
				raise = func(priority int) (int, error) {
					return rtkit.Acquire(dbuswrap.Default(), priority)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			wave := newSineWave(freq, volume, got)
			frames := int(duration.Seconds() * float64(got.SampleRate))
			if err := playTone(ctx, dev, wave, frames, raise, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Playback failed", "error", err)
				return
			}

			if lr, ok := dev.(backend.LatencyReporter); ok {
				if latency, err := lr.Latency(); err == nil {
					logger.Info("Output latency", "latency", latency)
				}
			}
		}),
	}

	cmd.Flags().StringVarP(&backendName, "backend", "b", "", "Backend to use instead of the configured order")
	cmd.Flags().StringVarP(&deviceName, "device", "d", "", "Device name from probe, empty for the default")
	cmd.Flags().StringVar(&formatName, "format", "s16", "Sample format (u8, s16, s32, f32)")
	cmd.Flags().Float64VarP(&freq, "frequency", "f", 440, "Tone frequency in Hz")
	cmd.Flags().Float64Var(&volume, "volume", 0.2, "Amplitude between 0 and 1")
	cmd.Flags().DurationVarP(&duration, "duration", "t", 2*time.Second, "How long to play")
	cmd.Flags().IntVar(&rate, "rate", 48000, "Sample rate")
	cmd.Flags().IntVar(&channels, "channels", 2, "Channel count")
	return cmd
}
