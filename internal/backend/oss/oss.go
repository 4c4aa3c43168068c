// Package oss plays and captures through Open Sound System device nodes.
package oss

import (
	"fmt"
	"log/slog"
	"math/bits"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"unsafe"

	"github.com/smazurov/soundnode/internal/backend"
	"github.com/smazurov/soundnode/internal/logging"
)

// DefaultDeviceName opens the configured playback or capture node.
const DefaultDeviceName = "OSS Default"

// DefaultNode is the traditional OSS device.
const DefaultNode = "/dev/dsp"

// Settings configure the backend. They are read when the factory is built.
type Settings struct {
	Playback string // node opened for "OSS Default" playback
	Capture  string // node opened for "OSS Default" capture
}

var settings atomic.Pointer[Settings]

// Configure stores settings for the factory. Call it before GetFactory.
func Configure(s Settings) {
	settings.Store(&s)
}

func currentSettings() Settings {
	s := Settings{}
	if p := settings.Load(); p != nil {
		s = *p
	}
	if s.Playback == "" {
		s.Playback = DefaultNode
	}
	if s.Capture == "" {
		s.Capture = DefaultNode
	}
	return s
}

var descriptor = backend.NewDescriptor(backend.KindOSS, func() backend.Factory {
	return newFactory(currentSettings())
})

// Descriptor returns the OSS backend descriptor.
func Descriptor() *backend.Descriptor {
	return descriptor
}

// GetFactory returns the process-wide OSS factory.
func GetFactory() backend.Factory {
	return descriptor.Factory()
}

type factory struct {
	backend.Lifecycle

	settings Settings
	logger   *slog.Logger

	playback bool
	capture  bool
}

func newFactory(s Settings) *factory {
	return &factory{
		settings: s,
		logger:   logging.GetLogger("backend.oss"),
	}
}

func (f *factory) Init() bool {
	return f.Lifecycle.Init(f.setup)
}

func (f *factory) setup() bool {
	f.playback = nodeExists(f.settings.Playback)
	f.capture = nodeExists(f.settings.Capture)
	if !f.playback && !f.capture {
		f.logger.Warn("No OSS device nodes", "playback", f.settings.Playback, "capture", f.settings.Capture)
		return false
	}
	return true
}

func nodeExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (f *factory) QuerySupport(dir backend.Direction) bool {
	if !f.Ready() {
		return false
	}
	if dir == backend.Capture {
		return f.capture
	}
	return f.playback
}

func (f *factory) defaultNode(dir backend.Direction) string {
	if dir == backend.Capture {
		return f.settings.Capture
	}
	return f.settings.Playback
}

// Probe lists "OSS Default" followed by every dsp node next to the
// configured one, with unnumbered nodes first and the rest in numeric order.
func (f *factory) Probe(kind backend.ProbeKind) []string {
	names := []string{}
	if !f.QuerySupport(kind.Direction()) {
		return names
	}
	names = append(names, DefaultDeviceName)
	return append(names, listNodes(filepath.Dir(f.defaultNode(kind.Direction())))...)
}

func listNodes(dir string) []string {
	matches, _ := filepath.Glob(filepath.Join(dir, "dsp*"))
	type node struct {
		path string
		num  int
	}
	var nodes []node
	for _, m := range matches {
		suffix := strings.TrimPrefix(filepath.Base(m), "dsp")
		if suffix == "" {
			nodes = append(nodes, node{m, -1})
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 0 {
			continue
		}
		nodes = append(nodes, node{m, n})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].num < nodes[j].num })

	paths := make([]string, len(nodes))
	for i, n := range nodes {
		paths[i] = n.path
	}
	return paths
}

func ossFormat(f backend.SampleFormat) int32 {
	switch f {
	case backend.FormatU8:
		return afmtU8
	case backend.FormatS32:
		return afmtS32LE
	case backend.FormatFloat32:
		return afmtFloat
	default:
		return afmtS16LE
	}
}

func sampleFormat(afmt int32) (backend.SampleFormat, bool) {
	switch afmt {
	case afmtU8:
		return backend.FormatU8, true
	case afmtS16LE:
		return backend.FormatS16, true
	case afmtS32LE:
		return backend.FormatS32, true
	case afmtFloat:
		return backend.FormatFloat32, true
	default:
		return 0, false
	}
}

// fragmentArg encodes SNDCTL_DSP_SETFRAGMENT: fragment count in the high
// half, log2 of the fragment size in bytes in the low half.
func fragmentArg(cfg backend.DeviceConfig) int32 {
	fragBytes := cfg.UpdateSize * cfg.FrameSize()
	if fragBytes < 16 {
		fragBytes = 16
	}
	shift := bits.Len(uint(fragBytes - 1))
	count := 2
	if cfg.UpdateSize > 0 && cfg.BufferSize/cfg.UpdateSize > count {
		count = cfg.BufferSize / cfg.UpdateSize
	}
	return int32(count<<16 | shift)
}

func (f *factory) CreateDevice(cfg backend.DeviceConfig, dir backend.Direction) (backend.Device, error) {
	if err := f.Require(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !f.QuerySupport(dir) {
		return nil, fmt.Errorf("oss %s: %w", dir, backend.ErrUnsupported)
	}

	path := cfg.Name
	if path == "" || path == DefaultDeviceName {
		path = f.defaultNode(dir)
	}

	mode := openWrite
	if dir == backend.Capture {
		mode = openRead
	}
	fd, err := openNode(path, mode)
	if err != nil {
		return nil, backend.NewDeviceError(backend.KindOSS, path, "open", err)
	}

	negotiated, nerr := f.negotiate(fd, cfg, dir)
	if nerr != nil {
		closeFD(fd)
		return nil, backend.NewDeviceError(backend.KindOSS, path, nerr.op, nerr.err)
	}
	negotiated.Name = path

	f.logger.Debug("Opened OSS device", "device", path, "direction", dir,
		"rate", negotiated.SampleRate, "channels", negotiated.Channels, "format", negotiated.Format)

	return &device{
		id:  backend.NewDeviceID(),
		fd:  fd,
		dir: dir,
		cfg: negotiated,
	}, nil
}

// negotiateError names the request the driver rejected.
type negotiateError struct {
	op  string
	err error
}

// negotiate applies cfg to an open node. The driver may substitute values;
// the returned config holds what it settled on.
func (f *factory) negotiate(fd int, cfg backend.DeviceConfig, dir backend.Direction) (backend.DeviceConfig, *negotiateError) {
	if _, err := ioctlInt(fd, sndctlDSPSetFragment, fragmentArg(cfg)); err != nil {
		f.logger.Debug("SNDCTL_DSP_SETFRAGMENT rejected", "error", err)
	}

	afmt, err := ioctlInt(fd, sndctlDSPSetFmt, ossFormat(cfg.Format))
	if err != nil {
		return cfg, &negotiateError{"SNDCTL_DSP_SETFMT", err}
	}
	format, ok := sampleFormat(afmt)
	if !ok {
		return cfg, &negotiateError{"SNDCTL_DSP_SETFMT", fmt.Errorf("driver chose format %#x: %w", afmt, backend.ErrUnsupported)}
	}
	cfg.Format = format

	channels, err := ioctlInt(fd, sndctlDSPChannels, int32(cfg.Channels))
	if err != nil {
		return cfg, &negotiateError{"SNDCTL_DSP_CHANNELS", err}
	}
	cfg.Channels = int(channels)

	rate, err := ioctlInt(fd, sndctlDSPSpeed, int32(cfg.SampleRate))
	if err != nil {
		return cfg, &negotiateError{"SNDCTL_DSP_SPEED", err}
	}
	cfg.SampleRate = int(rate)

	req := uintptr(sndctlDSPGetOSpace)
	if dir == backend.Capture {
		req = sndctlDSPGetISpace
	}
	var info audioBufInfo
	if err := ioctl(fd, req, unsafe.Pointer(&info)); err == nil && info.fragsize > 0 {
		cfg.UpdateSize = int(info.fragsize) / cfg.FrameSize()
		cfg.BufferSize = int(info.fragstotal) * cfg.UpdateSize
	}
	return cfg, nil
}
