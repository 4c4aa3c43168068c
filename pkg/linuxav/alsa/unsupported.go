//go:build !linux || !(amd64 || arm64 || riscv64 || loong64 || arm || 386)

package alsa

// PCM is unavailable on this platform.
type PCM struct{}

// ListDevices reports ErrUnsupported.
func ListDevices(string, Stream) ([]Device, error) {
	return nil, ErrUnsupported
}

// OpenPCM reports ErrUnsupported.
func OpenPCM(string, int, int, Stream, HwConfig) (*PCM, error) {
	return nil, ErrUnsupported
}

func (p *PCM) Config() HwConfig          { return HwConfig{} }
func (p *PCM) Path() string              { return "" }
func (p *PCM) FrameBytes() int           { return 0 }
func (p *PCM) Write([]byte) (int, error) { return 0, ErrUnsupported }
func (p *PCM) Read([]byte) (int, error)  { return 0, ErrUnsupported }
func (p *PCM) Close() error              { return nil }
