//go:build linux && (arm || 386)

package alsa

// hw_params is 604 bytes and snd_xferi 12 bytes on 32-bit targets because
// snd_pcm_uframes_t and pointers are 4 bytes wide.
const (
	sndrvPCMIoctlHwRefine     = 0xc25c4110
	sndrvPCMIoctlHwParams     = 0xc25c4111
	sndrvPCMIoctlWriteIFrames = 0x400c4150
	sndrvPCMIoctlReadIFrames  = 0x800c4151
)

type uframes = uint32

type sframes = int32
