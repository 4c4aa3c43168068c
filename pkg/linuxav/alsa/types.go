package alsa

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
)

// ErrUnsupported is returned on platforms without the ALSA kernel interface.
var ErrUnsupported = errors.New("alsa: not supported on this platform")

// ErrClosed is returned by Read and Write after Close.
var ErrClosed = errors.New("alsa: pcm closed")

// Stream is the PCM stream direction.
type Stream int32

// Stream types
const (
	StreamPlayback Stream = 0
	StreamCapture  Stream = 1
)

func (s Stream) String() string {
	if s == StreamCapture {
		return "capture"
	}
	return "playback"
}

// suffix is the letter the kernel appends to PCM device nodes.
func (s Stream) suffix() string {
	if s == StreamCapture {
		return "c"
	}
	return "p"
}

// Device represents one PCM device of a sound card for one stream direction.
type Device struct {
	CardNumber       int
	CardID           string
	CardName         string
	CardLongName     string
	DeviceNumber     int
	DeviceName       string
	Stream           Stream
	ALSADevice       string // ALSA device string (e.g., "hw:0,0")
	SupportedRates   []int
	MinChannels      int
	MaxChannels      int
	SupportedFormats []string
	MinBufferSize    int
	MaxBufferSize    int
	MinPeriodSize    int
	MaxPeriodSize    int
}

// Description is the human readable probe entry for the device.
func (d Device) Description() string {
	return fmt.Sprintf("%s, %s (%s)", d.CardName, d.DeviceName, d.ALSADevice)
}

// FormatALSADevice creates an ALSA device string from card and device numbers.
func FormatALSADevice(cardNum, deviceNum int) string {
	return "hw:" + strconv.Itoa(cardNum) + "," + strconv.Itoa(deviceNum)
}

// ParseALSADevice parses "hw:X,Y" into card and device numbers.
func ParseALSADevice(s string) (cardNum, deviceNum int, err error) {
	if _, err = fmt.Sscanf(s, "hw:%d,%d", &cardNum, &deviceNum); err != nil {
		return 0, 0, fmt.Errorf("invalid ALSA device %q: %w", s, err)
	}
	if cardNum < 0 || deviceNum < 0 {
		return 0, 0, fmt.Errorf("invalid ALSA device %q", s)
	}
	return cardNum, deviceNum, nil
}

// PCMPath returns the device node of a PCM, e.g. /dev/snd/pcmC0D0p.
func PCMPath(root string, cardNum, deviceNum int, stream Stream) string {
	return filepath.Join(root, fmt.Sprintf("pcmC%dD%d%s", cardNum, deviceNum, stream.suffix()))
}

// ControlPath returns the control node of a card, e.g. /dev/snd/controlC0.
func ControlPath(root string, cardNum int) string {
	return filepath.Join(root, "controlC"+strconv.Itoa(cardNum))
}

// HwConfig is the requested hardware configuration of a PCM. Zero period and
// buffer sizes let the driver choose.
type HwConfig struct {
	Format     int
	Channels   int
	Rate       int
	PeriodSize int // frames
	BufferSize int // frames
}

// PCM format constants
const (
	FormatS8        = 0
	FormatU8        = 1
	FormatS16LE     = 2
	FormatS16BE     = 3
	FormatU16LE     = 4
	FormatU16BE     = 5
	FormatS24LE     = 6
	FormatS24BE     = 7
	FormatU24LE     = 8
	FormatU24BE     = 9
	FormatS32LE     = 10
	FormatS32BE     = 11
	FormatU32LE     = 12
	FormatU32BE     = 13
	FormatFloatLE   = 14
	FormatFloatBE   = 15
	FormatFloat64LE = 16
	FormatFloat64BE = 17
	FormatMuLaw     = 20
	FormatALaw      = 21
)

var formatNames = map[int]string{
	FormatS8:        "S8",
	FormatU8:        "U8",
	FormatS16LE:     "S16_LE",
	FormatS16BE:     "S16_BE",
	FormatU16LE:     "U16_LE",
	FormatU16BE:     "U16_BE",
	FormatS24LE:     "S24_LE",
	FormatS24BE:     "S24_BE",
	FormatU24LE:     "U24_LE",
	FormatU24BE:     "U24_BE",
	FormatS32LE:     "S32_LE",
	FormatS32BE:     "S32_BE",
	FormatU32LE:     "U32_LE",
	FormatU32BE:     "U32_BE",
	FormatFloatLE:   "FLOAT_LE",
	FormatFloatBE:   "FLOAT_BE",
	FormatFloat64LE: "FLOAT64_LE",
	FormatFloat64BE: "FLOAT64_BE",
	FormatMuLaw:     "MU_LAW",
	FormatALaw:      "A_LAW",
}

// FormatName returns a human-readable name for a PCM format.
func FormatName(format int) string {
	if name, ok := formatNames[format]; ok {
		return name
	}
	return "UNKNOWN"
}

// Common sample rates to test
var CommonSampleRates = []int{
	8000, 11025, 16000, 22050, 32000, 44100, 48000, 88200, 96000, 176400, 192000,
}

// Common formats to test
var CommonFormats = []int{
	FormatU8, FormatS16LE, FormatS16BE, FormatS24LE, FormatS24BE,
	FormatS32LE, FormatS32BE, FormatFloatLE, FormatFloatBE,
	FormatFloat64LE, FormatFloat64BE,
}
