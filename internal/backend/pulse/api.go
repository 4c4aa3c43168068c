package pulse

import (
	"fmt"
	"unsafe"

	"github.com/smazurov/soundnode/internal/backend"
	"github.com/smazurov/soundnode/internal/dynlib"
	"github.com/smazurov/soundnode/pkg/dynload"
)

// pa_stream_direction_t
const (
	streamPlayback int32 = 1
	streamRecord   int32 = 2
)

// pa_sample_format_t
const (
	sampleU8        int32 = 0
	sampleS16LE     int32 = 3
	sampleFloat32LE int32 = 5
	sampleS32LE     int32 = 7
)

// sampleSpec is pa_sample_spec.
type sampleSpec struct {
	format   int32
	rate     uint32
	channels uint8
}

// bufferAttr is pa_buffer_attr. All-ones fields request the server default.
type bufferAttr struct {
	maxlength uint32
	tlength   uint32
	prebuf    uint32
	minreq    uint32
	fragsize  uint32
}

const attrDefault = ^uint32(0)

// api is the subset of libpulse-simple this backend calls.
type api struct {
	lib *dynload.Library

	simpleNew        func(server *byte, name string, dir int32, dev *byte, streamName string, ss *sampleSpec, channelMap unsafe.Pointer, attr *bufferAttr, errCode *int32) uintptr
	simpleFree       func(s uintptr)
	simpleWrite      func(s uintptr, data unsafe.Pointer, n uintptr, errCode *int32) int32
	simpleRead       func(s uintptr, data unsafe.Pointer, n uintptr, errCode *int32) int32
	simpleDrain      func(s uintptr, errCode *int32) int32
	simpleFlush      func(s uintptr, errCode *int32) int32
	simpleGetLatency func(s uintptr, errCode *int32) uint64
	strerror         func(errCode int32) string
}

func newAPI(library string, opts ...dynload.LibraryOption) *api {
	a := &api{}
	a.lib = dynlib.New(library, []dynload.Symbol{
		{Name: "pa_simple_new", Fn: &a.simpleNew},
		{Name: "pa_simple_free", Fn: &a.simpleFree},
		{Name: "pa_simple_write", Fn: &a.simpleWrite},
		{Name: "pa_simple_read", Fn: &a.simpleRead},
		{Name: "pa_simple_drain", Fn: &a.simpleDrain},
		{Name: "pa_simple_flush", Fn: &a.simpleFlush},
		{Name: "pa_simple_get_latency", Fn: &a.simpleGetLatency},
		{Name: "pa_strerror", Fn: &a.strerror},
	}, opts...)
	return a
}

// Error is a PulseAudio error code with its pa_strerror text.
type Error struct {
	Op   string
	Code int32
	Text string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (code %d)", e.Op, e.Text, e.Code)
}

func (a *api) error(op string, code int32) error {
	return &Error{Op: op, Code: code, Text: a.strerror(code)}
}

func sampleFormat(f backend.SampleFormat) int32 {
	switch f {
	case backend.FormatU8:
		return sampleU8
	case backend.FormatS32:
		return sampleS32LE
	case backend.FormatFloat32:
		return sampleFloat32LE
	default:
		return sampleS16LE
	}
}

// cString returns a NUL terminated copy of s, nil for the empty string so
// that libpulse picks its default.
func cString(s string) *byte {
	if s == "" {
		return nil
	}
	b := append([]byte(s), 0)
	return &b[0]
}

// connect opens a simple stream. dev is a sink or source name, empty for the
// server default.
func (a *api) connect(server, appName, dev string, cfg backend.DeviceConfig, dir backend.Direction) (uintptr, error) {
	spec := sampleSpec{
		format:   sampleFormat(cfg.Format),
		rate:     uint32(cfg.SampleRate),
		channels: uint8(cfg.Channels),
	}
	attr := bufferAttr{
		maxlength: attrDefault,
		tlength:   attrDefault,
		prebuf:    attrDefault,
		minreq:    attrDefault,
		fragsize:  attrDefault,
	}
	frame := uint32(cfg.FrameSize())
	if cfg.BufferSize > 0 {
		attr.tlength = uint32(cfg.BufferSize) * frame
	}
	if cfg.UpdateSize > 0 {
		attr.minreq = uint32(cfg.UpdateSize) * frame
		attr.fragsize = attr.minreq
	}

	direction, streamName := streamPlayback, "Playback Stream"
	if dir == backend.Capture {
		direction, streamName = streamRecord, "Capture Stream"
	}

	var code int32
	s := a.simpleNew(cString(server), appName, direction, cString(dev), streamName, &spec, nil, &attr, &code)
	if s == 0 {
		return 0, a.error("pa_simple_new", code)
	}
	return s, nil
}
