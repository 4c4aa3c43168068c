//go:build linux && (amd64 || arm64 || riscv64 || loong64 || arm || 386)

package alsa

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"syscall"
	"unsafe"
)

// PCM is an open hardware PCM in interleaved read/write access mode.
type PCM struct {
	mu         sync.Mutex
	fd         int
	path       string
	stream     Stream
	config     HwConfig
	frameBytes int
	closed     bool
}

// OpenPCM opens hw:card,device and applies cfg. Channels, rate and format are
// required to match exactly; period and buffer sizes are hints and the
// negotiated values are reported by Config.
func OpenPCM(root string, cardNum, deviceNum int, stream Stream, cfg HwConfig) (*PCM, error) {
	width := sampleBytes(cfg.Format)
	if width == 0 {
		return nil, fmt.Errorf("unsupported format %s", FormatName(cfg.Format))
	}
	if cfg.Channels <= 0 || cfg.Rate <= 0 {
		return nil, fmt.Errorf("invalid channels/rate %d/%d", cfg.Channels, cfg.Rate)
	}

	path := PCMPath(root, cardNum, deviceNum, stream)
	// A blocking open waits for a busy device; fail fast instead.
	fd, err := syscall.Open(path, syscall.O_RDWR|syscall.O_NONBLOCK|syscall.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	if err := syscall.SetNonblock(fd, false); err != nil {
		syscall.Close(fd)
		return nil, err
	}

	hw, err := applyHwParams(fd, cfg, true)
	if err != nil {
		// Some drivers reject any period/buffer hint; let the kernel pick.
		hw, err = applyHwParams(fd, cfg, false)
	}
	if err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("hw params: %w", err)
	}

	if err := ioctl(uintptr(fd), sndrvPCMIoctlPrepare, nil); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("prepare: %w", err)
	}

	negotiated := cfg
	channels, _ := hw.getInterval(sndrvPCMHwParamChannels)
	rate, _ := hw.getInterval(sndrvPCMHwParamRate)
	period, _ := hw.getInterval(sndrvPCMHwParamPeriodSize)
	buffer, _ := hw.getInterval(sndrvPCMHwParamBufferSize)
	negotiated.Channels = int(channels)
	negotiated.Rate = int(rate)
	negotiated.PeriodSize = int(period)
	negotiated.BufferSize = int(buffer)

	return &PCM{
		fd:         fd,
		path:       path,
		stream:     stream,
		config:     negotiated,
		frameBytes: width * negotiated.Channels,
	}, nil
}

func applyHwParams(fd int, cfg HwConfig, withSizes bool) (*sndPCMHwParams, error) {
	hw := &sndPCMHwParams{}
	hw.init()
	hw.setMask(sndrvPCMHwParamAccess, sndrvPCMAccessRwInterleaved)
	hw.setMask(sndrvPCMHwParamFormat, uint32(cfg.Format))
	hw.setInterval(sndrvPCMHwParamChannels, uint32(cfg.Channels))
	hw.setInterval(sndrvPCMHwParamRate, uint32(cfg.Rate))
	if withSizes {
		if cfg.PeriodSize > 0 {
			hw.setIntervalMin(sndrvPCMHwParamPeriodSize, uint32(cfg.PeriodSize))
		}
		if cfg.BufferSize > 0 {
			hw.setIntervalMax(sndrvPCMHwParamBufferSize, uint32(cfg.BufferSize))
		}
	}
	if err := ioctl(uintptr(fd), sndrvPCMIoctlHwParams, unsafe.Pointer(hw)); err != nil {
		return nil, err
	}
	return hw, nil
}

// Config returns the negotiated hardware configuration.
func (p *PCM) Config() HwConfig {
	return p.config
}

// Path returns the device node backing the PCM.
func (p *PCM) Path() string {
	return p.path
}

// FrameBytes returns the size of one interleaved frame.
func (p *PCM) FrameBytes() int {
	return p.frameBytes
}

// Write plays interleaved frames, blocking until all whole frames in b are
// queued. An underrun re-prepares the stream and continues.
func (p *PCM) Write(b []byte) (int, error) {
	return p.transfer(b, sndrvPCMIoctlWriteIFrames)
}

// Read captures interleaved frames into b. An overrun re-prepares the stream
// and continues.
func (p *PCM) Read(b []byte) (int, error) {
	return p.transfer(b, sndrvPCMIoctlReadIFrames)
}

func (p *PCM) transfer(b []byte, req uintptr) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, ErrClosed
	}

	frames := len(b) / p.frameBytes
	done := 0
	for done < frames {
		chunk := b[done*p.frameBytes:]
		xfer := sndXferI{
			buf:    uintptr(unsafe.Pointer(&chunk[0])),
			frames: uframes(frames - done),
		}
		err := ioctl(uintptr(p.fd), req, unsafe.Pointer(&xfer))
		runtime.KeepAlive(chunk)
		switch {
		case err == nil:
			done += int(xfer.result)
		case errors.Is(err, syscall.EINTR):
		case errors.Is(err, syscall.EPIPE):
			if perr := ioctl(uintptr(p.fd), sndrvPCMIoctlPrepare, nil); perr != nil {
				return done * p.frameBytes, fmt.Errorf("recover xrun: %w", perr)
			}
		default:
			return done * p.frameBytes, err
		}
	}
	return done * p.frameBytes, nil
}

// Close drains queued playback (or drops pending capture) and closes the
// device. It is safe to call more than once.
func (p *PCM) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	if p.stream == StreamPlayback {
		_ = ioctl(uintptr(p.fd), sndrvPCMIoctlDrain, nil)
	} else {
		_ = ioctl(uintptr(p.fd), sndrvPCMIoctlDrop, nil)
	}
	return syscall.Close(p.fd)
}

// sampleBytes is the storage width of one sample, zero for formats the PCM
// transfer path does not handle.
func sampleBytes(format int) int {
	switch format {
	case FormatS8, FormatU8:
		return 1
	case FormatS16LE, FormatS16BE, FormatU16LE, FormatU16BE:
		return 2
	case FormatS24LE, FormatS24BE, FormatU24LE, FormatU24BE,
		FormatS32LE, FormatS32BE, FormatU32LE, FormatU32BE,
		FormatFloatLE, FormatFloatBE:
		return 4
	case FormatFloat64LE, FormatFloat64BE:
		return 8
	default:
		return 0
	}
}
