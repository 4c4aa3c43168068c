//go:build linux && (amd64 || arm64 || riscv64 || loong64 || arm || 386)

package alsa

// Size-independent IOCTLs.
const (
	sndrvCtlIoctlCardInfo      = 0x81785501
	sndrvCtlIoctlPCMNextDevice = 0x80045530
	sndrvCtlIoctlPCMInfo       = 0xc1205531

	sndrvPCMIoctlPrepare = 0x00004140
	sndrvPCMIoctlDrop    = 0x00004143
	sndrvPCMIoctlDrain   = 0x00004144
)

// Hardware parameter indexes.
const (
	sndrvPCMHwParamAccess        = 0
	sndrvPCMHwParamFormat        = 1
	sndrvPCMHwParamSubformat     = 2
	sndrvPCMHwParamFirstMask     = 0
	sndrvPCMHwParamLastMask      = 2
	sndrvPCMHwParamSampleBits    = 8
	sndrvPCMHwParamFrameBits     = 9
	sndrvPCMHwParamChannels      = 10
	sndrvPCMHwParamRate          = 11
	sndrvPCMHwParamPeriodTime    = 12
	sndrvPCMHwParamPeriodSize    = 13
	sndrvPCMHwParamPeriodBytes   = 14
	sndrvPCMHwParamPeriods       = 15
	sndrvPCMHwParamBufferTime    = 16
	sndrvPCMHwParamBufferSize    = 17
	sndrvPCMHwParamBufferBytes   = 18
	sndrvPCMHwParamTickTime      = 19
	sndrvPCMHwParamFirstInterval = 8
	sndrvPCMHwParamLastInterval  = 19

	sndrvMaskMax = 256

	sndrvPCMAccessRwInterleaved = 3

	intervalInteger = 1 << 2
)

type sndCtlCardInfo struct {
	card       int32
	_          [4]byte
	id         [16]byte
	driver     [16]byte
	name       [32]byte
	longname   [80]byte
	reserved   [16]byte
	mixername  [80]byte
	components [128]byte
}

type sndPCMInfo struct {
	device          uint32
	subdevice       uint32
	stream          int32
	card            int32
	id              [64]byte
	name            [80]byte
	subname         [32]byte
	devClass        int32
	devSubclass     int32
	subdevicesCount uint32
	subdevicesAvail uint32
	_               [16]byte
	reserved        [64]byte
}

type sndMask struct {
	bits [(sndrvMaskMax + 31) / 32]uint32
}

type sndInterval struct {
	minVal uint32
	maxVal uint32
	flags  uint32 // openmin:1 openmax:1 integer:1 empty:1
}

type sndPCMHwParams struct {
	flags     uint32
	masks     [sndrvPCMHwParamLastMask - sndrvPCMHwParamFirstMask + 1]sndMask
	mres      [5]sndMask
	intervals [sndrvPCMHwParamLastInterval - sndrvPCMHwParamFirstInterval + 1]sndInterval
	ires      [9]sndInterval
	rmask     uint32
	cmask     uint32
	info      uint32
	msbits    uint32
	rateNum   uint32
	rateDen   uint32
	fifoSize  uframes
	reserved  [64]byte
}

// sndXferI is struct snd_xferi used by the interleaved read/write IOCTLs.
type sndXferI struct {
	result sframes
	buf    uintptr
	frames uframes
}

// init opens the full configuration space.
func (p *sndPCMHwParams) init() {
	for i := range p.masks {
		for j := range p.masks[i].bits {
			p.masks[i].bits[j] = 0xFFFFFFFF
		}
	}
	for i := range p.intervals {
		p.intervals[i] = sndInterval{maxVal: 0xFFFFFFFF}
	}
	p.rmask = 0xFFFFFFFF
	p.cmask = 0
	p.info = 0xFFFFFFFF
}

func (p *sndPCMHwParams) setMask(param, val uint32) {
	m := &p.masks[param-sndrvPCMHwParamFirstMask]
	for i := range m.bits {
		m.bits[i] = 0
	}
	m.bits[val>>5] = 1 << (val & 0x1F)
}

func (p *sndPCMHwParams) checkMask(param, val uint32) bool {
	return p.masks[param-sndrvPCMHwParamFirstMask].bits[val>>5]&(1<<(val&0x1F)) != 0
}

func (p *sndPCMHwParams) setInterval(param, val uint32) {
	iv := &p.intervals[param-sndrvPCMHwParamFirstInterval]
	iv.minVal = val
	iv.maxVal = val
	iv.flags = intervalInteger
}

// setIntervalMin constrains a parameter to at least val.
func (p *sndPCMHwParams) setIntervalMin(param, val uint32) {
	iv := &p.intervals[param-sndrvPCMHwParamFirstInterval]
	iv.minVal = val
	iv.flags |= intervalInteger
}

func (p *sndPCMHwParams) getInterval(param uint32) (minVal, maxVal uint32) {
	iv := p.intervals[param-sndrvPCMHwParamFirstInterval]
	return iv.minVal, iv.maxVal
}

// setIntervalMax constrains a parameter to at most val.
func (p *sndPCMHwParams) setIntervalMax(param, val uint32) {
	iv := &p.intervals[param-sndrvPCMHwParamFirstInterval]
	iv.maxVal = val
	iv.flags |= intervalInteger
}
