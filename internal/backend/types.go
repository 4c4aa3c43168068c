package backend

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind tags a backend technology.
type Kind string

const (
	KindPulse Kind = "pulse"
	KindALSA  Kind = "alsa"
	KindOSS   Kind = "oss"
	KindOto   Kind = "oto"
	KindNull  Kind = "null"
)

// Direction is a playback or capture capability.
type Direction int

const (
	Playback Direction = iota
	Capture
)

func (d Direction) String() string {
	if d == Capture {
		return "capture"
	}
	return "playback"
}

// ProbeKind selects which device list Probe enumerates.
type ProbeKind int

const (
	OutputDevices ProbeKind = iota
	CaptureDevices
)

func (k ProbeKind) String() string {
	if k == CaptureDevices {
		return "capture"
	}
	return "output"
}

// Direction returns the capability a probe kind lists devices for.
func (k ProbeKind) Direction() Direction {
	if k == CaptureDevices {
		return Capture
	}
	return Playback
}

// ParseProbeKind accepts "output", "playback", "capture" and "input".
func ParseProbeKind(s string) (ProbeKind, error) {
	switch strings.ToLower(s) {
	case "", "output", "playback":
		return OutputDevices, nil
	case "capture", "input":
		return CaptureDevices, nil
	default:
		return 0, fmt.Errorf("unknown probe kind %q", s)
	}
}

// SampleFormat is an interleaved PCM sample encoding in host byte order.
type SampleFormat int

const (
	FormatS16 SampleFormat = iota
	FormatU8
	FormatS32
	FormatFloat32
)

// BytesPerSample returns the size of one sample.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case FormatU8:
		return 1
	case FormatS32, FormatFloat32:
		return 4
	default:
		return 2
	}
}

func (f SampleFormat) String() string {
	switch f {
	case FormatU8:
		return "u8"
	case FormatS32:
		return "s32"
	case FormatFloat32:
		return "f32"
	default:
		return "s16"
	}
}

// ParseSampleFormat converts a name such as "s16" to a SampleFormat.
func ParseSampleFormat(s string) (SampleFormat, error) {
	switch strings.ToLower(s) {
	case "", "s16":
		return FormatS16, nil
	case "u8":
		return FormatU8, nil
	case "s32":
		return FormatS32, nil
	case "f32", "float32":
		return FormatFloat32, nil
	default:
		return 0, fmt.Errorf("unknown sample format %q", s)
	}
}

// DeviceConfig is the abstract device context handed to CreateDevice.
// Backends may adjust the values; the negotiated result is available from
// Device.Config.
type DeviceConfig struct {
	Name       string // probe entry, empty for the backend default
	SampleRate int
	Channels   int
	Format     SampleFormat
	UpdateSize int // frames per period
	BufferSize int // frames
}

// DefaultDeviceConfig returns 48kHz stereo s16 with 20ms periods.
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		SampleRate: 48000,
		Channels:   2,
		Format:     FormatS16,
		UpdateSize: 960,
		BufferSize: 2880,
	}
}

// FrameSize returns the number of bytes in one interleaved frame.
func (c DeviceConfig) FrameSize() int {
	return c.Channels * c.Format.BytesPerSample()
}

// Validate checks the fields every backend relies on.
func (c DeviceConfig) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("invalid channel count %d", c.Channels)
	}
	if c.UpdateSize < 0 || c.BufferSize < 0 {
		return fmt.Errorf("invalid period/buffer size %d/%d", c.UpdateSize, c.BufferSize)
	}
	return nil
}

// Device is an open playback or capture stream. It is owned by the caller
// and outlives nothing but itself; closing it does not affect the factory.
type Device interface {
	ID() string
	Name() string
	Direction() Direction
	Config() DeviceConfig
	// Write queues interleaved frames for playback. Capture devices return
	// ErrUnsupported.
	Write(p []byte) (int, error)
	// Read fills p with captured interleaved frames. Playback devices return
	// ErrUnsupported.
	Read(p []byte) (int, error)
	Close() error
}

// LatencyReporter is implemented by devices that can report the delay
// between a Write and the samples reaching the speaker.
type LatencyReporter interface {
	Latency() (time.Duration, error)
}

// NewDeviceID returns a unique identifier for a device handle.
func NewDeviceID() string {
	return uuid.NewString()
}
