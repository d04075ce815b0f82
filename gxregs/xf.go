package gxregs

import "github.com/gogpu/gxcodec/internal/bitfield"

// XF register base addresses (spec §4.3 "Texgens", §6.2 item 6).
const (
	XFTex0ID     uint16 = 0x1000 // + i, i in [0,8)
	XFDualTex0ID uint16 = 0x1010 // + i, i in [0,8)
)

// TexGenType selects REGULAR vs EMBOSS_MAP source decoding (spec §4.3).
type TexGenType uint8

const (
	TexGenTypeRegular TexGenType = iota
	TexGenTypeEmbossMap
	TexGenTypeColorStrgbc0
	TexGenTypeColorStrgbc1
)

// XFTexGen is the raw XF_TEX0_ID field layout for one texgen.
type XFTexGen struct {
	Type        TexGenType
	SourceRow   uint8 // 5 bits: position/normal/binormal/tangent/UVn/colorn
	Projection  uint8 // 0=ST, 1=STQ
	EmbossSource uint8 // 3 bits, EMBOSS_MAP "UV0+source_shift"
	EmbossLight  uint8 // 3 bits, EMBOSS_MAP "light_shift"
}

// SetTexGen packs XF_TEX0_ID+i.
func (s *State) SetTexGen(i int, g XFTexGen) {
	var v uint32
	v = bitfield.Pack(v, 0, 2, uint32(g.Type))
	v = bitfield.Pack(v, 2, 7, uint32(g.SourceRow))
	v = bitfield.Pack(v, 7, 8, uint32(g.Projection))
	v = bitfield.Pack(v, 8, 11, uint32(g.EmbossSource))
	v = bitfield.Pack(v, 11, 14, uint32(g.EmbossLight))
	s.WriteXF(XFTex0ID+uint16(i), []uint32{v})
}

// GetTexGen unpacks XF_TEX0_ID+i.
func (s *State) GetTexGen(i int) XFTexGen {
	v := s.XF(XFTex0ID + uint16(i))
	return XFTexGen{
		Type:         TexGenType(bitfield.Extract(v, 0, 2)),
		SourceRow:    uint8(bitfield.Extract(v, 2, 7)),
		Projection:   uint8(bitfield.Extract(v, 7, 8)),
		EmbossSource: uint8(bitfield.Extract(v, 8, 11)),
		EmbossLight:  uint8(bitfield.Extract(v, 11, 14)),
	}
}

// XFDualTexGen is the raw XF_DUALTEX0_ID field layout: the texture-matrix
// and post-matrix selection that accompanies each texgen.
type XFDualTexGen struct {
	TexMtxIdx     uint8 // 0 = identity, else TexMtx(idx-1)
	PostMtxIdx    uint8 // 0 = identity, else PostTexMtx(idx-1)
	Normalize     bool
}

// SetDualTexGen packs XF_DUALTEX0_ID+i.
func (s *State) SetDualTexGen(i int, g XFDualTexGen) {
	var v uint32
	v = bitfield.Pack(v, 0, 4, uint32(g.TexMtxIdx))
	v = bitfield.Pack(v, 4, 5, boolBit(g.Normalize))
	v = bitfield.Pack(v, 5, 10, uint32(g.PostMtxIdx))
	s.WriteXF(XFDualTex0ID+uint16(i), []uint32{v})
}

// GetDualTexGen unpacks XF_DUALTEX0_ID+i.
func (s *State) GetDualTexGen(i int) XFDualTexGen {
	v := s.XF(XFDualTex0ID + uint16(i))
	return XFDualTexGen{
		TexMtxIdx:  uint8(bitfield.Extract(v, 0, 4)),
		Normalize:  bitfield.Extract(v, 4, 5) != 0,
		PostMtxIdx: uint8(bitfield.Extract(v, 5, 10)),
	}
}
