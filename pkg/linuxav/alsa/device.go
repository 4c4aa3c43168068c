//go:build linux && (amd64 || arm64 || riscv64 || loong64 || arm || 386)

package alsa

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"unsafe"
)

// ListDevices returns the PCM devices under root (normally /dev/snd) that
// support the given stream direction. A missing or empty root yields no
// devices and no error; cards that cannot be queried are skipped.
func ListDevices(root string, stream Stream) ([]Device, error) {
	cards, err := listCards(root)
	if err != nil {
		return nil, err
	}

	devices := []Device{}
	for _, cardNum := range cards {
		devices = append(devices, listCardDevices(root, cardNum, stream)...)
	}
	return devices, nil
}

// listCards returns the card numbers with a control node, in ascending order.
func listCards(root string) ([]int, error) {
	matches, err := filepath.Glob(filepath.Join(root, "controlC*"))
	if err != nil {
		return nil, err
	}
	cards := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(m), "controlC"))
		if err != nil || n < 0 {
			continue
		}
		cards = append(cards, n)
	}
	sort.Ints(cards)
	return cards, nil
}

func listCardDevices(root string, cardNum int, stream Stream) []Device {
	ctlFd, err := syscall.Open(ControlPath(root, cardNum), syscall.O_RDONLY|syscall.O_CLOEXEC, 0)
	if err != nil {
		return nil
	}
	defer syscall.Close(ctlFd)

	cardInfo := sndCtlCardInfo{}
	if err := ioctl(uintptr(ctlFd), sndrvCtlIoctlCardInfo, unsafe.Pointer(&cardInfo)); err != nil {
		return nil
	}

	var devices []Device
	deviceNum := int32(-1)
	for {
		if err := ioctl(uintptr(ctlFd), sndrvCtlIoctlPCMNextDevice, unsafe.Pointer(&deviceNum)); err != nil {
			break
		}
		if deviceNum < 0 {
			break
		}

		pcmInfo := sndPCMInfo{
			device: uint32(deviceNum),
			stream: int32(stream),
		}
		if err := ioctl(uintptr(ctlFd), sndrvCtlIoctlPCMInfo, unsafe.Pointer(&pcmInfo)); err != nil {
			continue // no substream in this direction
		}

		device := Device{
			CardNumber:   cardNum,
			CardID:       cstr(cardInfo.id[:]),
			CardName:     cstr(cardInfo.name[:]),
			CardLongName: cstr(cardInfo.longname[:]),
			DeviceNumber: int(deviceNum),
			DeviceName:   cstr(pcmInfo.name[:]),
			Stream:       stream,
			ALSADevice:   FormatALSADevice(cardNum, int(deviceNum)),
		}

		if caps, err := queryCapabilities(PCMPath(root, cardNum, int(deviceNum), stream)); err == nil {
			device.SupportedRates = caps.rates
			device.MinChannels = caps.minChannels
			device.MaxChannels = caps.maxChannels
			device.SupportedFormats = caps.formats
			device.MinBufferSize = caps.minBufferSize
			device.MaxBufferSize = caps.maxBufferSize
			device.MinPeriodSize = caps.minPeriodSize
			device.MaxPeriodSize = caps.maxPeriodSize
		}

		devices = append(devices, device)
	}
	return devices
}

type capabilities struct {
	rates         []int
	minChannels   int
	maxChannels   int
	formats       []string
	minBufferSize int
	maxBufferSize int
	minPeriodSize int
	maxPeriodSize int
}

// queryCapabilities refines an open configuration space. A busy device
// fails with EBUSY, which callers treat as "capabilities unknown".
func queryCapabilities(pcmPath string) (*capabilities, error) {
	fd, err := syscall.Open(pcmPath, syscall.O_RDWR|syscall.O_NONBLOCK|syscall.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	defer syscall.Close(fd)

	hw := sndPCMHwParams{}
	hw.init()
	hw.setMask(sndrvPCMHwParamAccess, sndrvPCMAccessRwInterleaved)

	if err := ioctl(uintptr(fd), sndrvPCMIoctlHwRefine, unsafe.Pointer(&hw)); err != nil {
		return nil, err
	}

	caps := &capabilities{}

	minCh, maxCh := hw.getInterval(sndrvPCMHwParamChannels)
	caps.minChannels = int(minCh)
	caps.maxChannels = int(maxCh)

	minRate, maxRate := hw.getInterval(sndrvPCMHwParamRate)
	for _, rate := range CommonSampleRates {
		if uint32(rate) >= minRate && uint32(rate) <= maxRate {
			caps.rates = append(caps.rates, rate)
		}
	}

	for _, format := range CommonFormats {
		if hw.checkMask(sndrvPCMHwParamFormat, uint32(format)) {
			caps.formats = append(caps.formats, FormatName(format))
		}
	}

	minBuf, maxBuf := hw.getInterval(sndrvPCMHwParamBufferSize)
	caps.minBufferSize = int(minBuf)
	caps.maxBufferSize = int(maxBuf)

	minPer, maxPer := hw.getInterval(sndrvPCMHwParamPeriodSize)
	caps.minPeriodSize = int(minPer)
	caps.maxPeriodSize = int(maxPer)

	return caps, nil
}
