//go:build linux && (amd64 || arm64 || riscv64 || loong64 || arm || 386)

package alsa

import (
	"errors"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl issues req on fd, restarting when a signal interrupts the call.
// The kernel error is returned as a unix.Errno so callers can match EPIPE
// and ESTRPIPE.
func ioctl(fd, req uintptr, arg unsafe.Pointer) error {
	for {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(arg))
		switch {
		case errno == 0:
			return nil
		case errors.Is(errno, unix.EINTR):
			continue
		default:
			return errno
		}
	}
}

// cstr converts a NUL terminated name from a kernel struct.
func cstr(b []byte) string {
	return unix.ByteSliceToString(b)
}
