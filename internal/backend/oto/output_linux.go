//go:build oto && linux

package oto

import (
	"log/slog"

	"github.com/smazurov/soundnode/internal/dynlib"
	"github.com/smazurov/soundnode/pkg/dynload"
)

// oto plays through ALSA's default PCM on Linux.
const alsaLibrary = "libasound.so.2"

const (
	pcmStreamPlayback = 0
	pcmNonblock       = 1
	errBusy           = -16 // -EBUSY
)

// outputAvailable opens and closes the default playback PCM without blocking.
// A PCM held by another client still counts as available.
func outputAvailable(logger *slog.Logger, opts ...dynload.LibraryOption) bool {
	var (
		pcmOpen  func(pcm *uintptr, name *byte, stream, mode int32) int32
		pcmClose func(pcm uintptr) int32
		strerror func(errnum int32) string
	)
	lib := dynlib.New(alsaLibrary, []dynload.Symbol{
		{Name: "snd_pcm_open", Fn: &pcmOpen},
		{Name: "snd_pcm_close", Fn: &pcmClose},
		{Name: "snd_strerror", Fn: &strerror},
	}, opts...)
	if !lib.Prepare() {
		return false
	}
	defer lib.Close()

	name := append([]byte("default"), 0)
	var pcm uintptr
	switch code := pcmOpen(&pcm, &name[0], pcmStreamPlayback, pcmNonblock); {
	case code == 0:
		pcmClose(pcm)
		return true
	case code == errBusy:
		logger.Debug("Default PCM busy", "library", alsaLibrary)
		return true
	default:
		logger.Warn("No default playback PCM", "library", alsaLibrary, "error", strerror(code), "code", code)
		return false
	}
}

func systemOutput(logger *slog.Logger) func() bool {
	return func() bool { return outputAvailable(logger) }
}
