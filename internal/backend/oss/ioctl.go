//go:build linux || freebsd

package oss

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// soundcard.h requests
const (
	sndctlDSPReset       = 0x00005000
	sndctlDSPSync        = 0x00005001
	sndctlDSPSpeed       = 0xC0045002
	sndctlDSPSetFmt      = 0xC0045005
	sndctlDSPChannels    = 0xC0045006
	sndctlDSPSetFragment = 0xC004500A
	sndctlDSPGetOSpace   = 0x8010500C
	sndctlDSPGetISpace   = 0x8010500D
)

// soundcard.h formats
const (
	afmtU8    = 0x00000008
	afmtS16LE = 0x00000010
	afmtS32LE = 0x00001000
	afmtFloat = 0x00004000
)

// audioBufInfo is audio_buf_info.
type audioBufInfo struct {
	fragments  int32
	fragstotal int32
	fragsize   int32
	bytes      int32
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// ioctlInt runs a read/write request on an int argument and returns the
// value the driver settled on.
func ioctlInt(fd int, req uintptr, val int32) (int32, error) {
	err := ioctl(fd, req, unsafe.Pointer(&val))
	return val, err
}

// openNode opens without blocking so that a busy node fails with EBUSY
// instead of waiting for its owner, then switches to blocking I/O.
func openNode(path string, dir int) (int, error) {
	fd, err := unix.Open(path, dir|unix.O_CLOEXEC|unix.O_NONBLOCK, 0)
	if err != nil {
		return -1, err
	}
	if err := unix.SetNonblock(fd, false); err != nil {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

func readFD(fd int, p []byte) (int, error)  { return unix.Read(fd, p) }
func writeFD(fd int, p []byte) (int, error) { return unix.Write(fd, p) }
func closeFD(fd int) error                  { return unix.Close(fd) }

const (
	openWrite = unix.O_WRONLY
	openRead  = unix.O_RDONLY
)

var errInterrupted = unix.EINTR
