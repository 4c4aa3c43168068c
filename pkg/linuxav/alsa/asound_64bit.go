//go:build linux && (amd64 || arm64 || riscv64 || loong64)

package alsa

import "unsafe"

// Struct sizes must match the kernel ABI; a mismatch fails the build.
var (
	_ [376]byte = [unsafe.Sizeof(sndCtlCardInfo{})]byte{}
	_ [288]byte = [unsafe.Sizeof(sndPCMInfo{})]byte{}
	_ [608]byte = [unsafe.Sizeof(sndPCMHwParams{})]byte{}
	_ [24]byte  = [unsafe.Sizeof(sndXferI{})]byte{}
)

const (
	sndrvPCMIoctlHwRefine     = 0xc2604110
	sndrvPCMIoctlHwParams     = 0xc2604111
	sndrvPCMIoctlWriteIFrames = 0x40184150
	sndrvPCMIoctlReadIFrames  = 0x80184151
)

// uframes is snd_pcm_uframes_t.
type uframes = uint64

// sframes is snd_pcm_sframes_t.
type sframes = int64
