// Package alsa talks to the ALSA kernel interface (/dev/snd) directly for
// device enumeration, capability queries and interleaved PCM I/O.
//
// This package does not use cgo or libasound, so it works on systems where
// only the kernel drivers are present.
//
// # Device Enumeration
//
//	devices, err := alsa.ListDevices("/dev/snd", alsa.StreamPlayback)
//	for _, dev := range devices {
//	    fmt.Printf("%s: %s (%s)\n", dev.ALSADevice, dev.DeviceName, dev.CardName)
//	    fmt.Printf("  Rates: %v\n", dev.SupportedRates)
//	}
//
// # Playback
//
//	pcm, err := alsa.OpenPCM("/dev/snd", 0, 0, alsa.StreamPlayback, alsa.HwConfig{
//	    Format: alsa.FormatS16LE, Channels: 2, Rate: 48000,
//	})
//	n, err := pcm.Write(frames)
package alsa
