//go:build !linux && !freebsd

package oss

import (
	"errors"
	"unsafe"
)

var errNoOSS = errors.New("oss: not supported on this platform")

const (
	sndctlDSPReset       = 0
	sndctlDSPSync        = 0
	sndctlDSPSpeed       = 0
	sndctlDSPSetFmt      = 0
	sndctlDSPChannels    = 0
	sndctlDSPSetFragment = 0
	sndctlDSPGetOSpace   = 0
	sndctlDSPGetISpace   = 0
)

const (
	afmtU8    = 0x00000008
	afmtS16LE = 0x00000010
	afmtS32LE = 0x00001000
	afmtFloat = 0x00004000
)

type audioBufInfo struct {
	fragments  int32
	fragstotal int32
	fragsize   int32
	bytes      int32
}

func ioctl(int, uintptr, unsafe.Pointer) error    { return errNoOSS }
func ioctlInt(int, uintptr, int32) (int32, error) { return 0, errNoOSS }
func openNode(string, int) (int, error)           { return -1, errNoOSS }
func readFD(int, []byte) (int, error)             { return 0, errNoOSS }
func writeFD(int, []byte) (int, error)            { return 0, errNoOSS }
func closeFD(int) error                           { return nil }

const (
	openWrite = 1
	openRead  = 0
)

var errInterrupted = errors.New("interrupted")
