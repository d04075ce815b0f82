package gxregs

import "github.com/gogpu/gxcodec/internal/bitfield"

// BP register addresses this module models. Named after the hardware
// registers they shadow (spec §4.3/§6.2); values are this module's own
// consistent address assignment; only internal round-trip consistency
// (spec §8) is required of them, not bit-for-bit parity with real
// hardware.
const (
	BPGenMode      uint8 = 0x00
	BPZMode        uint8 = 0x01
	BPBlendMode    uint8 = 0x02
	BPConstAlpha   uint8 = 0x03
	BPAlphaCompare uint8 = 0x04
	BPIref         uint8 = 0x05
	BPIndTexScale0 uint8 = 0x06 // stages 0,1
	BPIndTexScale1 uint8 = 0x07 // stages 2,3

	// BPIndMtxA/B/C + k*3, k in [0,3): rows A,B,C of indirect matrix k.
	// Occupies 9 consecutive addresses, 0x08..0x10 inclusive.
	BPIndMtxA0 uint8 = 0x08
	BPIndMtxB0 uint8 = 0x09
	BPIndMtxC0 uint8 = 0x0A

	// BPKSel + i, i in [0,8): TEV_KSEL registers (swap tables + konst sel).
	BPKSel0 uint8 = 0x20

	// BPTref + i, i in [0,8): TREF registers, each covering stage 2i/2i+1.
	BPTref0 uint8 = 0x28

	// BPIndCmd + i, i in [0,16): one per TEV stage.
	BPIndCmd0 uint8 = 0x30

	// BPTevColorEnv/BPTevAlphaEnv + i, i in [0,16): one per TEV stage.
	BPTevColorEnv0 uint8 = 0x40
	BPTevAlphaEnv0 uint8 = 0x50

	// BPTevColorRA/BG + i, i in [0,4): the fused color/konst register file.
	BPTevColorRA0 uint8 = 0x60
	BPTevColorBG0 uint8 = 0x64

	// BPStageSwap + i, i in [0,8): per-stage-pair rasterizer/texture swap
	// table selectors, covering stages 2i/2i+1 (spec §3.2 "rasSwap,
	// texMapSwap (indices into mSwapTable)").
	BPStageSwap0 uint8 = 0x70
)

// --- TEV KSEL (swap tables + konst selection) ---

// KSel is one decoded TEV_KSEL register (spec §4.3 "swap tables"). For an
// even register index i, SwapChan0/SwapChan1 are swap table (i/2)'s R and G
// channel selections; for an odd i, they are that table's B and A channel
// selections (spec §4.3).
type KSel struct {
	SwapChan0 uint8 // 2 bits
	SwapChan1 uint8 // 2 bits
	// KonstColorSel/KonstAlphaSel select the per-stage constant color
	// source for stages 2i and 2i+1 respectively.
	KonstColorSel [2]uint8
	KonstAlphaSel [2]uint8
}

// SetKSel packs KSel into BP register BPKSel0+i (spec §6.2 "TEV KSEL, 8
// words").
func (s *State) SetKSel(i int, k KSel) {
	var v uint32
	v = bitfield.Pack(v, 0, 2, uint32(k.SwapChan0))
	v = bitfield.Pack(v, 2, 4, uint32(k.SwapChan1))
	v = bitfield.Pack(v, 4, 9, uint32(k.KonstColorSel[0]))
	v = bitfield.Pack(v, 9, 14, uint32(k.KonstColorSel[1]))
	v = bitfield.Pack(v, 14, 19, uint32(k.KonstAlphaSel[0]))
	v = bitfield.Pack(v, 19, 24, uint32(k.KonstAlphaSel[1]))
	s.WriteBP(BPKSel0+uint8(i), v)
}

// GetKSel unpacks BP register BPKSel0+i.
func (s *State) GetKSel(i int) KSel {
	v := s.BP(BPKSel0 + uint8(i))
	return KSel{
		SwapChan0:     uint8(bitfield.Extract(v, 0, 2)),
		SwapChan1:     uint8(bitfield.Extract(v, 2, 4)),
		KonstColorSel: [2]uint8{uint8(bitfield.Extract(v, 4, 9)), uint8(bitfield.Extract(v, 9, 14))},
		KonstAlphaSel: [2]uint8{uint8(bitfield.Extract(v, 14, 19)), uint8(bitfield.Extract(v, 19, 24))},
	}
}

// --- IREF (indirect order) ---

// SetIref packs four (refMap, refCoord) pairs into the single IREF
// register (spec §4.3 "Indirect order").
func (s *State) SetIref(refMap, refCoord [4]uint8) {
	var v uint32
	for k := 0; k < 4; k++ {
		v = bitfield.Pack(v, uint(k*6), uint(k*6+3), uint32(refMap[k]))
		v = bitfield.Pack(v, uint(k*6+3), uint(k*6+6), uint32(refCoord[k]))
	}
	s.WriteBP(BPIref, v)
}

// GetIref unpacks the IREF register.
func (s *State) GetIref() (refMap, refCoord [4]uint8) {
	v := s.BP(BPIref)
	for k := 0; k < 4; k++ {
		refMap[k] = uint8(bitfield.Extract(v, uint(k*6), uint(k*6+3)))
		refCoord[k] = uint8(bitfield.Extract(v, uint(k*6+3), uint(k*6+6)))
	}
	return
}

// --- TREF (per-stage-pair: texCoord, texMap, rasOrder, enable) ---

// TrefHalf is the TREF fields for one TEV stage (half of a TREF register).
type TrefHalf struct {
	TexCoord uint8
	TexMap   uint8
	RasOrder uint8
	Enable   bool
}

// SetTref packs the TREF register covering stages 2i and 2i+1.
func (s *State) SetTref(i int, even, odd TrefHalf) {
	var v uint32
	v = packTrefHalf(v, 0, even)
	v = packTrefHalf(v, 12, odd)
	s.WriteBP(BPTref0+uint8(i), v)
}

func packTrefHalf(v uint32, lo uint, h TrefHalf) uint32 {
	v = bitfield.Pack(v, lo, lo+3, uint32(h.TexCoord&0x7))
	if h.TexCoord == 0xff {
		v = bitfield.Pack(v, lo, lo+3, 0x7)
	}
	v = bitfield.Pack(v, lo+3, lo+6, uint32(h.TexMap&0x7))
	noTex := h.TexCoord == 0xff
	v = bitfield.Pack(v, lo+6, lo+7, boolBit(noTex))
	v = bitfield.Pack(v, lo+7, lo+10, uint32(h.RasOrder))
	v = bitfield.Pack(v, lo+10, lo+11, boolBit(h.RasOrder == 0xff))
	v = bitfield.Pack(v, lo+11, lo+12, boolBit(h.Enable))
	return v
}

// GetTref unpacks the TREF register covering stages 2i and 2i+1.
func (s *State) GetTref(i int) (even, odd TrefHalf) {
	v := s.BP(BPTref0 + uint8(i))
	even = unpackTrefHalf(v, 0)
	odd = unpackTrefHalf(v, 12)
	return
}

func unpackTrefHalf(v uint32, lo uint) TrefHalf {
	noTex := bitfield.Extract(v, lo+6, lo+7) != 0
	noRas := bitfield.Extract(v, lo+10, lo+11) != 0
	h := TrefHalf{
		TexCoord: uint8(bitfield.Extract(v, lo, lo+3)),
		TexMap:   uint8(bitfield.Extract(v, lo+3, lo+6)),
		RasOrder: uint8(bitfield.Extract(v, lo+7, lo+10)),
		Enable:   bitfield.Extract(v, lo+11, lo+12) != 0,
	}
	if noTex {
		h.TexCoord, h.TexMap = 0xff, 0xff
	}
	if noRas {
		h.RasOrder = 0xff
	}
	return h
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// --- TEV_COLOR_ENV / TEV_ALPHA_ENV ---

// TevEnvColor is the raw field layout of a TEV_COLOR_ENV register
// (spec §4.3: a/b/c/d operand ids, clamp, dest, fused op/bias/scale).
type TevEnvColor struct {
	A, B, C, D uint8 // 4 bits each
	Bias       uint8 // 2 bits; 3 is the "comparison formula" escape
	Op         uint8 // 1 bit: add/sub when Bias != 3; high bit of the comparison id (op<<2|scale) when Bias==3
	Scale      uint8 // 2 bits
	Clamp      bool
	Dest       uint8 // 2 bits
}

// SetTevColorEnv packs TEV_COLOR_ENV[i].
func (s *State) SetTevColorEnv(i int, e TevEnvColor) {
	var v uint32
	v = bitfield.Pack(v, 0, 4, uint32(e.D))
	v = bitfield.Pack(v, 4, 8, uint32(e.C))
	v = bitfield.Pack(v, 8, 12, uint32(e.B))
	v = bitfield.Pack(v, 12, 16, uint32(e.A))
	v = bitfield.Pack(v, 16, 17, uint32(e.Op))
	v = bitfield.Pack(v, 17, 19, uint32(e.Bias))
	v = bitfield.Pack(v, 19, 21, uint32(e.Scale))
	v = bitfield.Pack(v, 21, 22, boolBit(e.Clamp))
	v = bitfield.Pack(v, 22, 24, uint32(e.Dest))
	s.WriteBP(BPTevColorEnv0+uint8(i), v)
}

// GetTevColorEnv unpacks TEV_COLOR_ENV[i].
func (s *State) GetTevColorEnv(i int) TevEnvColor {
	v := s.BP(BPTevColorEnv0 + uint8(i))
	return TevEnvColor{
		D:     uint8(bitfield.Extract(v, 0, 4)),
		C:     uint8(bitfield.Extract(v, 4, 8)),
		B:     uint8(bitfield.Extract(v, 8, 12)),
		A:     uint8(bitfield.Extract(v, 12, 16)),
		Op:    uint8(bitfield.Extract(v, 16, 17)),
		Bias:  uint8(bitfield.Extract(v, 17, 19)),
		Scale: uint8(bitfield.Extract(v, 19, 21)),
		Clamp: bitfield.Extract(v, 21, 22) != 0,
		Dest:  uint8(bitfield.Extract(v, 22, 24)),
	}
}

// TevEnvAlpha is an alias of TevEnvColor and carries no further fields:
// this module keeps the ras/tex swap selectors in the stage-swap registers
// (GetStageSwap) and the konst-alpha selectors in KSEL (GetKSel), so the
// alpha env is a pure mirror of TevEnvColor's operand/bias/scale/dest shape.
type TevEnvAlpha = TevEnvColor

// SetTevAlphaEnv packs TEV_ALPHA_ENV[i].
func (s *State) SetTevAlphaEnv(i int, e TevEnvAlpha) {
	var v uint32
	v = bitfield.Pack(v, 0, 4, uint32(e.D))
	v = bitfield.Pack(v, 4, 8, uint32(e.C))
	v = bitfield.Pack(v, 8, 12, uint32(e.B))
	v = bitfield.Pack(v, 12, 16, uint32(e.A))
	v = bitfield.Pack(v, 16, 17, uint32(e.Op))
	v = bitfield.Pack(v, 17, 19, uint32(e.Bias))
	v = bitfield.Pack(v, 19, 21, uint32(e.Scale))
	v = bitfield.Pack(v, 21, 22, boolBit(e.Clamp))
	v = bitfield.Pack(v, 22, 24, uint32(e.Dest))
	s.WriteBP(BPTevAlphaEnv0+uint8(i), v)
}

// GetTevAlphaEnv unpacks TEV_ALPHA_ENV[i].
func (s *State) GetTevAlphaEnv(i int) TevEnvAlpha {
	v := s.BP(BPTevAlphaEnv0 + uint8(i))
	return TevEnvAlpha{
		D:     uint8(bitfield.Extract(v, 0, 4)),
		C:     uint8(bitfield.Extract(v, 4, 8)),
		B:     uint8(bitfield.Extract(v, 8, 12)),
		A:     uint8(bitfield.Extract(v, 12, 16)),
		Op:    uint8(bitfield.Extract(v, 16, 17)),
		Bias:  uint8(bitfield.Extract(v, 17, 19)),
		Scale: uint8(bitfield.Extract(v, 19, 21)),
		Clamp: bitfield.Extract(v, 21, 22) != 0,
		Dest:  uint8(bitfield.Extract(v, 22, 24)),
	}
}

// --- IND_CMD ---

// IndCmd is the raw IND_CMD field layout for one TEV stage (spec §3.2).
type IndCmd struct {
	IndStageSel uint8
	Format      uint8
	Bias        uint8
	Matrix      uint8
	WrapU       uint8
	WrapV       uint8
	AddPrev     bool
	UTCLod      bool
	Alpha       uint8
}

// SetIndCmd packs IND_CMD[i].
func (s *State) SetIndCmd(i int, c IndCmd) {
	var v uint32
	v = bitfield.Pack(v, 0, 2, uint32(c.IndStageSel))
	v = bitfield.Pack(v, 2, 4, uint32(c.Format))
	v = bitfield.Pack(v, 4, 7, uint32(c.Bias))
	v = bitfield.Pack(v, 7, 11, uint32(c.Matrix))
	v = bitfield.Pack(v, 11, 14, uint32(c.WrapU))
	v = bitfield.Pack(v, 14, 17, uint32(c.WrapV))
	v = bitfield.Pack(v, 17, 18, boolBit(c.AddPrev))
	v = bitfield.Pack(v, 18, 19, boolBit(c.UTCLod))
	v = bitfield.Pack(v, 19, 21, uint32(c.Alpha))
	s.WriteBP(BPIndCmd0+uint8(i), v)
}

// GetIndCmd unpacks IND_CMD[i].
func (s *State) GetIndCmd(i int) IndCmd {
	v := s.BP(BPIndCmd0 + uint8(i))
	return IndCmd{
		IndStageSel: uint8(bitfield.Extract(v, 0, 2)),
		Format:      uint8(bitfield.Extract(v, 2, 4)),
		Bias:        uint8(bitfield.Extract(v, 4, 7)),
		Matrix:      uint8(bitfield.Extract(v, 7, 11)),
		WrapU:       uint8(bitfield.Extract(v, 11, 14)),
		WrapV:       uint8(bitfield.Extract(v, 14, 17)),
		AddPrev:     bitfield.Extract(v, 17, 18) != 0,
		UTCLod:      bitfield.Extract(v, 18, 19) != 0,
		Alpha:       uint8(bitfield.Extract(v, 19, 21)),
	}
}

// --- Indirect matrices (3 rows x 3 registers per matrix) ---

// SetIndMtxRow packs one row (A, B, or C; row in [0,3)) of indirect matrix
// k into its BP register. Each row holds two signed 11-bit mantissas plus
// a 2-bit exponent fragment; the full exponent is assembled from all three
// rows' fragments (spec §4.5).
func (s *State) SetIndMtxRow(k, row int, m0, m1 int16, expFrag uint8) {
	v := uint32(uint16(m0)&0x7ff) | (uint32(uint16(m1)&0x7ff) << 11) | (uint32(expFrag&0x3) << 22)
	reg := indMtxReg(k, row)
	s.WriteBP(reg, v)
}

// GetIndMtxRow unpacks one row of indirect matrix k.
func (s *State) GetIndMtxRow(k, row int) (m0, m1 int16, expFrag uint8) {
	v := s.BP(indMtxReg(k, row))
	m0 = int16(bitfield.SignExtend(bitfield.Extract(v, 0, 11), 11))
	m1 = int16(bitfield.SignExtend(bitfield.Extract(v, 11, 22), 11))
	expFrag = uint8(bitfield.Extract(v, 22, 24))
	return
}

func indMtxReg(k, row int) uint8 {
	return BPIndMtxA0 + uint8(row) + uint8(k)*3
}

// --- Indirect texcoord scales ---

// SetIndTexScale packs the U/V scale nibbles for stage i (spec §3.1
// IndirectStage.Scale).
func (s *State) SetIndTexScale(i int, u, v uint8) {
	reg := BPIndTexScale0 + uint8(i/2)
	lo := uint((i % 2) * 8)
	old := s.BP(reg)
	packed := bitfield.Pack(old, lo, lo+4, uint32(u))
	packed = bitfield.Pack(packed, lo+4, lo+8, uint32(v))
	s.WriteBP(reg, packed)
}

// GetIndTexScale unpacks the U/V scale nibbles for stage i.
func (s *State) GetIndTexScale(i int) (u, v uint8) {
	reg := BPIndTexScale0 + uint8(i/2)
	lo := uint((i % 2) * 8)
	word := s.BP(reg)
	return uint8(bitfield.Extract(word, lo, lo+4)), uint8(bitfield.Extract(word, lo+4, lo+8))
}

// --- Pixel engine ---

// AlphaCompareRaw is the raw ALPHACOMPARE register layout.
type AlphaCompareRaw struct {
	CompLeft, CompRight uint8
	RefLeft, RefRight   uint8
	Op                  uint8
}

func (s *State) SetAlphaCompare(a AlphaCompareRaw) {
	var v uint32
	v = bitfield.Pack(v, 0, 8, uint32(a.RefLeft))
	v = bitfield.Pack(v, 8, 16, uint32(a.RefRight))
	v = bitfield.Pack(v, 16, 19, uint32(a.CompLeft))
	v = bitfield.Pack(v, 19, 22, uint32(a.CompRight))
	v = bitfield.Pack(v, 22, 24, uint32(a.Op))
	s.WriteBP(BPAlphaCompare, v)
}

func (s *State) GetAlphaCompare() AlphaCompareRaw {
	v := s.BP(BPAlphaCompare)
	return AlphaCompareRaw{
		RefLeft:   uint8(bitfield.Extract(v, 0, 8)),
		RefRight:  uint8(bitfield.Extract(v, 8, 16)),
		CompLeft:  uint8(bitfield.Extract(v, 16, 19)),
		CompRight: uint8(bitfield.Extract(v, 19, 22)),
		Op:        uint8(bitfield.Extract(v, 22, 24)),
	}
}

type ZModeRaw struct {
	Compare  bool
	Function uint8
	Update   bool
}

func (s *State) SetZMode(z ZModeRaw) {
	var v uint32
	v = bitfield.Pack(v, 0, 1, boolBit(z.Compare))
	v = bitfield.Pack(v, 1, 4, uint32(z.Function))
	v = bitfield.Pack(v, 4, 5, boolBit(z.Update))
	s.WriteBP(BPZMode, v)
}

func (s *State) GetZMode() ZModeRaw {
	v := s.BP(BPZMode)
	return ZModeRaw{
		Compare:  bitfield.Extract(v, 0, 1) != 0,
		Function: uint8(bitfield.Extract(v, 1, 4)),
		Update:   bitfield.Extract(v, 4, 5) != 0,
	}
}

type BlendModeRaw struct {
	Type          uint8
	Source, Dest  uint8
	Logic         uint8
}

func (s *State) SetBlendMode(b BlendModeRaw) {
	var v uint32
	v = bitfield.Pack(v, 0, 2, uint32(b.Type))
	v = bitfield.Pack(v, 2, 6, uint32(b.Source))
	v = bitfield.Pack(v, 6, 10, uint32(b.Dest))
	v = bitfield.Pack(v, 10, 14, uint32(b.Logic))
	s.WriteBP(BPBlendMode, v)
}

func (s *State) GetBlendMode() BlendModeRaw {
	v := s.BP(BPBlendMode)
	return BlendModeRaw{
		Type:   uint8(bitfield.Extract(v, 0, 2)),
		Source: uint8(bitfield.Extract(v, 2, 6)),
		Dest:   uint8(bitfield.Extract(v, 6, 10)),
		Logic:  uint8(bitfield.Extract(v, 10, 14)),
	}
}

func (s *State) SetConstAlpha(enabled bool, alpha uint8) {
	var v uint32
	v = bitfield.Pack(v, 0, 8, uint32(alpha))
	v = bitfield.Pack(v, 8, 9, boolBit(enabled))
	s.WriteBP(BPConstAlpha, v)
}

func (s *State) GetConstAlpha() (enabled bool, alpha uint8) {
	v := s.BP(BPConstAlpha)
	return bitfield.Extract(v, 8, 9) != 0, uint8(bitfield.Extract(v, 0, 8))
}

// --- TEV color/konst register file ---

// TevRegValue is the decoded form of a fused TEV_COLOR_RA/BG register pair:
// either a signed color (11-bit channels) or an unsigned konst (8-bit
// channels), discriminated by Type (spec §4.3).
type TevRegValue struct {
	IsKonst bool
	// Color holds R,G,B,A when !IsKonst, each in [-1024,1023].
	Color [4]int16
	// Konst holds R,G,B,A when IsKonst, each in [0,255].
	Konst [4]uint8
}

// SetTevRegRA packs the RA half (R, A channels + type bit) of TEV register
// i. BG must be written to fully determine Color/Konst; see SetTevRegBG.
func (s *State) SetTevRegRA(i int, r, a int32, isKonst bool) {
	var v uint32
	v = bitfield.Pack(v, 0, 11, uint32(uint16(r)&0x7ff))
	v = bitfield.Pack(v, 12, 23, uint32(uint16(a)&0x7ff))
	v = bitfield.Pack(v, 23, 24, boolBit(isKonst))
	s.WriteBP(BPTevColorRA0+uint8(i), v)
}

// SetTevRegBG packs the BG half (B, G channels + type bit) of TEV register
// i. Real hardware write this word three times when isKonst to work around
// a timing bug (spec §4.4); this shadow only needs the final value, so
// lower.Lower is responsible for emitting the triplicated display-list
// writes — this accessor just stores state.
func (s *State) SetTevRegBG(i int, b, g int32, isKonst bool) {
	var v uint32
	v = bitfield.Pack(v, 0, 11, uint32(uint16(b)&0x7ff))
	v = bitfield.Pack(v, 12, 23, uint32(uint16(g)&0x7ff))
	v = bitfield.Pack(v, 23, 24, boolBit(isKonst))
	s.WriteBP(BPTevColorBG0+uint8(i), v)
}

// GetTevReg decodes TEV register i's fused RA/BG pair.
func (s *State) GetTevReg(i int) TevRegValue {
	ra := s.BP(BPTevColorRA0 + uint8(i))
	bg := s.BP(BPTevColorBG0 + uint8(i))
	isKonst := bitfield.Extract(bg, 23, 24) != 0

	r := bitfield.SignExtend(bitfield.Extract(ra, 0, 11), 11)
	a := bitfield.SignExtend(bitfield.Extract(ra, 12, 23), 11)
	b := bitfield.SignExtend(bitfield.Extract(bg, 0, 11), 11)
	g := bitfield.SignExtend(bitfield.Extract(bg, 12, 23), 11)

	val := TevRegValue{IsKonst: isKonst}
	if isKonst {
		val.Konst = [4]uint8{
			bitfield.ClampU8(r), bitfield.ClampU8(g), bitfield.ClampU8(b), bitfield.ClampU8(a),
		}
	} else {
		val.Color = [4]int16{int16(r), int16(g), int16(b), int16(a)}
	}
	return val
}

// --- Per-stage rasterizer/texture swap-table selectors ---

// StageSwap is one stage's pair of swap-table indices into
// Material.SwapTable.
type StageSwap struct {
	RasSwap    uint8 // 2 bits
	TexMapSwap uint8 // 2 bits
}

// SetStageSwap packs the swap selectors for stages 2i and 2i+1.
func (s *State) SetStageSwap(i int, even, odd StageSwap) {
	var v uint32
	v = bitfield.Pack(v, 0, 2, uint32(even.RasSwap))
	v = bitfield.Pack(v, 2, 4, uint32(even.TexMapSwap))
	v = bitfield.Pack(v, 4, 6, uint32(odd.RasSwap))
	v = bitfield.Pack(v, 6, 8, uint32(odd.TexMapSwap))
	s.WriteBP(BPStageSwap0+uint8(i), v)
}

// GetStageSwap unpacks the swap selectors for stages 2i and 2i+1.
func (s *State) GetStageSwap(i int) (even, odd StageSwap) {
	v := s.BP(BPStageSwap0 + uint8(i))
	even = StageSwap{
		RasSwap:    uint8(bitfield.Extract(v, 0, 2)),
		TexMapSwap: uint8(bitfield.Extract(v, 2, 4)),
	}
	odd = StageSwap{
		RasSwap:    uint8(bitfield.Extract(v, 4, 6)),
		TexMapSwap: uint8(bitfield.Extract(v, 6, 8)),
	}
	return
}
