package gxregs

import "github.com/gogpu/gxcodec/internal/bitfield"

// GenMode packs the material-wide counts and flags spec §3.1 keeps outside
// any one TEV/pixel-engine register: cull mode, stage/texgen/indirect-
// stage counts, early-Z, and the translucent-pass bit.
type GenMode struct {
	CullMode      uint8 // 2 bits
	NumTevStages  uint8 // stored as count-1, 4 bits (1..16)
	NumTexGens    uint8 // 4 bits (0..8)
	NumIndStages  uint8 // 3 bits (0..4)
	EarlyZCompare bool
	XLU           bool
}

func (s *State) SetGenMode(g GenMode) {
	var v uint32
	v = bitfield.Pack(v, 0, 2, uint32(g.CullMode))
	v = bitfield.Pack(v, 2, 6, uint32(g.NumTevStages))
	v = bitfield.Pack(v, 6, 10, uint32(g.NumTexGens))
	v = bitfield.Pack(v, 10, 13, uint32(g.NumIndStages))
	v = bitfield.Pack(v, 13, 14, boolBit(g.EarlyZCompare))
	v = bitfield.Pack(v, 14, 15, boolBit(g.XLU))
	s.WriteBP(BPGenMode, v)
}

func (s *State) GetGenMode() GenMode {
	v := s.BP(BPGenMode)
	return GenMode{
		CullMode:      uint8(bitfield.Extract(v, 0, 2)),
		NumTevStages:  uint8(bitfield.Extract(v, 2, 6)),
		NumTexGens:    uint8(bitfield.Extract(v, 6, 10)),
		NumIndStages:  uint8(bitfield.Extract(v, 10, 13)),
		EarlyZCompare: bitfield.Extract(v, 13, 14) != 0,
		XLU:           bitfield.Extract(v, 14, 15) != 0,
	}
}

// CP registers for per-channel material/ambient color (spec §3.1 chanData;
// real hardware addresses these via CP_MATAMBCOLOR, modeled here as four
// simple 32-bit RGBA CP registers).
const (
	CPMatColor0 uint8 = 0x00
	CPAmbColor0 uint8 = 0x01
	CPMatColor1 uint8 = 0x02
	CPAmbColor1 uint8 = 0x03
)

func (s *State) SetColor(reg uint8, c [4]uint8) {
	v := uint32(c[0])<<24 | uint32(c[1])<<16 | uint32(c[2])<<8 | uint32(c[3])
	s.WriteCP(reg, v)
}

func (s *State) GetColor(reg uint8) [4]uint8 {
	v := s.CP(reg)
	return [4]uint8{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}
}

// XF registers for channel control (spec §3.1 colorChanControls).
const XFChanControl0 uint16 = 0x0100 // +i, i in [0,4): color0,alpha0,color1,alpha1

// ChanControlRaw is the raw field layout of one channel-control register.
type ChanControlRaw struct {
	Enabled       bool
	MatSource     uint8
	AmbSource     uint8
	LightMask     uint8
	DiffuseFn     uint8
	AttenuationFn uint8
}

func (s *State) SetChanControl(i int, c ChanControlRaw) {
	var v uint32
	v = bitfield.Pack(v, 0, 1, boolBit(c.Enabled))
	v = bitfield.Pack(v, 1, 2, uint32(c.MatSource))
	v = bitfield.Pack(v, 2, 3, uint32(c.AmbSource))
	v = bitfield.Pack(v, 3, 11, uint32(c.LightMask))
	v = bitfield.Pack(v, 11, 13, uint32(c.DiffuseFn))
	v = bitfield.Pack(v, 13, 15, uint32(c.AttenuationFn))
	s.WriteXF(XFChanControl0+uint16(i), []uint32{v})
}

func (s *State) GetChanControl(i int) ChanControlRaw {
	v := s.XF(XFChanControl0 + uint16(i))
	return ChanControlRaw{
		Enabled:       bitfield.Extract(v, 0, 1) != 0,
		MatSource:     uint8(bitfield.Extract(v, 1, 2)),
		AmbSource:     uint8(bitfield.Extract(v, 2, 3)),
		LightMask:     uint8(bitfield.Extract(v, 3, 11)),
		DiffuseFn:     uint8(bitfield.Extract(v, 11, 13)),
		AttenuationFn: uint8(bitfield.Extract(v, 13, 15)),
	}
}
