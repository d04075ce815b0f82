// Package lower implements the state-to-register lowerer (spec §4.4,
// component D): the inverse of lift — encoding a semantic material record
// into a canonical display-list byte stream. Lower never recovers from an
// invalid input; an invariant violation or an unencodable field is fatal
// (spec §7 "the lowerer never recovers").
package lower

import (
	"github.com/gogpu/gxcodec/dlist"
	"github.com/gogpu/gxcodec/gxerr"
	"github.com/gogpu/gxcodec/gxlog"
	"github.com/gogpu/gxcodec/gxmat"
	"github.com/gogpu/gxcodec/gxregs"
	"github.com/gogpu/gxcodec/indmtx"
)

// builder accumulates dlist commands while mirroring them into a scratch
// register shadow, so every Set* accessor in gxregs can be reused verbatim
// instead of re-deriving its bit layout here (spec §9 "bitfield structs").
type builder struct {
	s   *gxregs.State
	w   *dlist.Writer
	err error
}

func newBuilder() *builder {
	return &builder{s: gxregs.New(), w: dlist.NewWriter()}
}

func (b *builder) bp(reg uint8) {
	b.w.Emit(dlist.BPCommand{Register: reg, Value: b.s.BP(reg)})
}

func (b *builder) bpRepeat(reg uint8, n int) {
	for i := 0; i < n; i++ {
		b.bp(reg)
	}
}

func (b *builder) xf(reg uint16) {
	b.w.Emit(dlist.XFCommand{Register: reg, Values: []uint32{b.s.XF(reg)}})
}

func (b *builder) cp(reg uint8) {
	b.w.Emit(dlist.CPCommand{Register: reg, Value: b.s.CP(reg)})
}

func (b *builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Lower encodes m into a canonical display-list byte stream (spec §4.4,
// §6.2). Lowering a material produced by lift.Lift and re-lowering the
// result must reproduce the same bytes (spec §8 property 1).
func Lower(m gxmat.Material) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	b := newBuilder()

	lowerHeader(b, m)
	b.w.AlignBlock()

	lowerKSelAndTref(b, m)
	lowerIref(b, m)
	lowerStageSwaps(b, m)
	b.w.AlignBlock()

	for i, st := range m.Stages {
		if err := lowerStage(b, st, i); err != nil {
			return nil, err
		}
	}
	b.w.AlignBlock()

	lowerIndTexScales(b, m)
	lowerIndMatrices(b, m)
	b.w.AlignBlock()

	lowerTevRegisters(b, m)
	b.w.AlignBlock()

	lowerPixelEngine(b, m)
	b.w.AlignBlock()

	for i, tg := range m.TexGens {
		if err := lowerTexGen(b, tg, i); err != nil {
			return nil, err
		}
	}
	b.w.AlignBlock()

	if b.err != nil {
		return nil, b.err
	}
	gxlog.Logger().Debug("lower.Lower", "stages", len(m.Stages), "bytes", len(b.w.Bytes()))
	return b.w.Bytes(), nil
}

// lowerHeader emits the stage-0 material header: BP writes (gen mode)
// before XF writes (channel controls) before CP writes (material/ambient
// colors), per §4.4 "Command ordering".
func lowerHeader(b *builder, m gxmat.Material) {
	b.s.SetGenMode(gxregs.GenMode{
		CullMode:      uint8(m.CullMode),
		NumTevStages:  uint8(len(m.Stages) - 1),
		NumTexGens:    uint8(len(m.TexGens)),
		NumIndStages:  uint8(len(m.IndirectStages)),
		EarlyZCompare: m.EarlyZCompare,
		XLU:           m.XLU,
	})
	b.bp(gxregs.BPGenMode)

	for i, cc := range m.ColorChanControls {
		b.s.SetChanControl(i, gxregs.ChanControlRaw{
			Enabled:       cc.Enabled,
			MatSource:     uint8(cc.MatSource),
			AmbSource:     uint8(cc.AmbSource),
			LightMask:     cc.LightMask,
			DiffuseFn:     uint8(cc.DiffuseFn),
			AttenuationFn: uint8(cc.AttenuationFn),
		})
		b.xf(gxregs.XFChanControl0 + uint16(i))
	}

	for i := 0; i < 2; i++ {
		matReg := gxregs.CPMatColor0 + uint8(i)*2
		ambReg := gxregs.CPAmbColor0 + uint8(i)*2
		cd := m.ChanData[i]
		b.s.SetColor(matReg, toRaw(cd.MatColor))
		b.cp(matReg)
		b.s.SetColor(ambReg, toRaw(cd.AmbColor))
		b.cp(ambReg)
	}
}

func toRaw(c gxmat.Color8) [4]uint8 { return [4]uint8{c.R, c.G, c.B, c.A} }

// usedKonstSlots collects, per §6.2 item 1, which of TevKonstColors[0..3]
// each TEV stage selects as its color/alpha constant source, so
// lowerTevRegisters below can decide whether register i holds a color or
// a konst: the original hardware's 4 TEV color registers are dual-purpose,
// chosen by which way a material's stages actually reference them (the
// lifter recovers the same distinction the opposite way, via the
// register's stored type bit — see gxregs.TevRegValue).
func usedKonstSlots(m gxmat.Material) [4]bool {
	var used [4]bool
	for _, st := range m.Stages {
		for _, sel := range []gxmat.ColorCombineSel{st.ColorStage.A, st.ColorStage.B, st.ColorStage.C, st.ColorStage.D} {
			if sel == gxmat.CCKonst && st.ColorKonstSel < 4 {
				used[st.ColorKonstSel] = true
			}
		}
		for _, sel := range []gxmat.AlphaCombineSel{st.AlphaStage.A, st.AlphaStage.B, st.AlphaStage.C, st.AlphaStage.D} {
			if sel == gxmat.CAKonst && st.AlphaKonstSel < 4 {
				used[st.AlphaKonstSel] = true
			}
		}
	}
	return used
}

func lowerKSelAndTref(b *builder, m gxmat.Material) {
	for i := 0; i < 8; i++ {
		j := i / 2
		var k gxregs.KSel
		if i%2 == 0 {
			k.SwapChan0 = uint8(m.SwapTable[j].R)
			k.SwapChan1 = uint8(m.SwapTable[j].G)
		} else {
			k.SwapChan0 = uint8(m.SwapTable[j].B)
			k.SwapChan1 = uint8(m.SwapTable[j].A)
		}
		k.KonstColorSel[0] = stageColorKonstSel(m, 2*i)
		k.KonstColorSel[1] = stageColorKonstSel(m, 2*i+1)
		k.KonstAlphaSel[0] = stageAlphaKonstSel(m, 2*i)
		k.KonstAlphaSel[1] = stageAlphaKonstSel(m, 2*i+1)
		b.s.SetKSel(i, k)
		b.bp(gxregs.BPKSel0 + uint8(i))
	}

	for i := 0; i < 8; i++ {
		even := trefHalfFor(m, 2*i)
		odd := trefHalfFor(m, 2*i+1)
		b.s.SetTref(i, even, odd)
		b.bp(gxregs.BPTref0 + uint8(i))
	}
}

func stageColorKonstSel(m gxmat.Material, i int) uint8 {
	if i >= len(m.Stages) {
		return 0
	}
	return m.Stages[i].ColorKonstSel
}

func stageAlphaKonstSel(m gxmat.Material, i int) uint8 {
	if i >= len(m.Stages) {
		return 0
	}
	return m.Stages[i].AlphaKonstSel
}

func trefHalfFor(m gxmat.Material, i int) gxregs.TrefHalf {
	if i >= len(m.Stages) {
		return gxregs.TrefHalf{TexCoord: 0xff, TexMap: 0xff, RasOrder: 0xff}
	}
	st := m.Stages[i]
	return gxregs.TrefHalf{
		TexCoord: st.TexCoord,
		TexMap:   st.TexMap,
		RasOrder: uint8(st.RasOrder),
		Enable:   true,
	}
}

// lowerStageSwaps emits the per-stage-pair rasterizer/texture swap-table
// selectors (spec §3.2 "rasSwap, texMapSwap (indices into mSwapTable)"),
// mirroring lowerKSelAndTref's pairing of stages 2i/2i+1 into one register.
func lowerStageSwaps(b *builder, m gxmat.Material) {
	for i := 0; i < 8; i++ {
		b.s.SetStageSwap(i, stageSwapFor(m, 2*i), stageSwapFor(m, 2*i+1))
		b.bp(gxregs.BPStageSwap0 + uint8(i))
	}
}

func stageSwapFor(m gxmat.Material, i int) gxregs.StageSwap {
	if i >= len(m.Stages) {
		return gxregs.StageSwap{}
	}
	st := m.Stages[i]
	return gxregs.StageSwap{RasSwap: st.RasSwap, TexMapSwap: st.TexMapSwap}
}

func lowerIref(b *builder, m gxmat.Material) {
	var refMap, refCoord [4]uint8
	for k := 0; k < 4; k++ {
		if k < len(m.IndirectStages) {
			refMap[k] = m.IndirectStages[k].RefMap
			refCoord[k] = m.IndirectStages[k].RefCoord
		}
	}
	b.s.SetIref(refMap, refCoord)
	b.bp(gxregs.BPIref)
}

func lowerStage(b *builder, st gxmat.TevStage, i int) error {
	colorEnv, err := encodeColorStage(st.ColorStage)
	if err != nil {
		return err
	}
	alphaEnv, err := encodeAlphaStage(st.AlphaStage)
	if err != nil {
		return err
	}
	b.s.SetTevColorEnv(i, colorEnv)
	b.bp(gxregs.BPTevColorEnv0 + uint8(i))
	b.s.SetTevAlphaEnv(i, alphaEnv)
	b.bp(gxregs.BPTevAlphaEnv0 + uint8(i))

	if st.Indirect.Matrix.Unsupported() {
		return gxerr.New(gxerr.ErrUnsupportedIndMatrixSelection, "tevStage.indirect.matrix", st.Indirect.Matrix, "")
	}
	b.s.SetIndCmd(i, gxregs.IndCmd{
		IndStageSel: st.Indirect.IndStageSel,
		Format:      0,
		Bias:        uint8(st.Indirect.Bias),
		Matrix:      uint8(st.Indirect.Matrix),
		WrapU:       uint8(st.Indirect.WrapU),
		WrapV:       uint8(st.Indirect.WrapV),
		AddPrev:     st.Indirect.AddPrev,
		UTCLod:      st.Indirect.UTCLod,
		Alpha:       uint8(st.Indirect.Alpha),
	})
	b.bp(gxregs.BPIndCmd0 + uint8(i))
	return nil
}

// encodeFormula is the inverse of lift's decodeFormula: it fuses a
// TevFormula/TevBias/TevScale triple back into the raw op/bias/scale
// field, using bias==3 as the comparison escape. A comparison formula
// combined with a nonzero bias/scale cannot be represented by the register
// encoding; this is the Open Question of spec §9, resolved as an error.
func encodeFormula(formula gxmat.TevFormula, op gxmat.TevOp, bias gxmat.TevBias, scale gxmat.TevScale) (rawOp, rawBias, rawScale uint8, err error) {
	if formula.IsComparison() {
		if bias != gxmat.TevBiasZero || scale != gxmat.TevScale1 {
			return 0, 0, 0, gxerr.New(gxerr.ErrInvalidComparisonEncoding, "tevStage.formula", formula, "comparison formula requires bias=zero, scale=x1")
		}
		compID := uint8(formula) - uint8(gxmat.FormulaCompR8GT)
		return (compID >> 2) & 1, 3, compID & 3, nil
	}
	return uint8(op), uint8(bias), uint8(scale), nil
}

func encodeColorStage(st gxmat.TevStageColor) (gxregs.TevEnvColor, error) {
	op, bias, scale, err := encodeFormula(st.Formula, st.Op, st.Bias, st.Scale)
	if err != nil {
		return gxregs.TevEnvColor{}, err
	}
	return gxregs.TevEnvColor{
		A: uint8(st.A), B: uint8(st.B), C: uint8(st.C), D: uint8(st.D),
		Op: op, Bias: bias, Scale: scale, Clamp: st.Clamp, Dest: uint8(st.Dest),
	}, nil
}

func encodeAlphaStage(st gxmat.TevStageAlpha) (gxregs.TevEnvAlpha, error) {
	op, bias, scale, err := encodeFormula(st.Formula, st.Op, st.Bias, st.Scale)
	if err != nil {
		return gxregs.TevEnvAlpha{}, err
	}
	return gxregs.TevEnvAlpha{
		A: uint8(st.A), B: uint8(st.B), C: uint8(st.C), D: uint8(st.D),
		Op: op, Bias: bias, Scale: scale, Clamp: st.Clamp, Dest: uint8(st.Dest),
	}, nil
}

// lowerIndTexScales packs both stages of each IndTexScale register before
// emitting, so exactly 2 words are written regardless of how many of the
// up-to-4 indirect stages are populated (spec §6.2 item 3).
func lowerIndTexScales(b *builder, m gxmat.Material) {
	for i := 0; i < 4; i++ {
		var u, v gxmat.IndTexScale
		if i < len(m.IndirectStages) {
			u, v = m.IndirectStages[i].ScaleU, m.IndirectStages[i].ScaleV
		}
		b.s.SetIndTexScale(i, uint8(u), uint8(v))
	}
	b.bp(gxregs.BPIndTexScale0)
	b.bp(gxregs.BPIndTexScale1)
}

func lowerIndMatrices(b *builder, m gxmat.Material) {
	for k := 0; k < 3; k++ {
		var im gxmat.IndMatrix
		if k < len(m.IndMatrices) {
			im = m.IndMatrices[k]
		}
		rows, frags := indmtx.RawRows(im)
		for row := 0; row < 3; row++ {
			b.s.SetIndMtxRow(k, row, rows[row][0], rows[row][1], frags[row])
			b.bp(gxregs.BPIndMtxA0 + uint8(row) + uint8(k)*3)
		}
	}
}

// lowerTevRegisters writes the fused TEV color/konst register file
// (spec §6.2 item 4). Register i is written as a konst (triplicated BG
// write, spec §4.4 "Konst register write triplication") iff some stage
// actually selects TevKonstColors[i] as an operand; otherwise it is
// written once as a signed color (spec §3.3's dual-purpose register,
// see usedKonstSlots above).
func lowerTevRegisters(b *builder, m gxmat.Material) {
	used := usedKonstSlots(m)
	for i := 0; i < 4; i++ {
		isKonst := used[i]
		if isKonst {
			k := m.TevKonstColors[i]
			b.s.SetTevRegRA(i, int32(k.R), int32(k.A), true)
			b.bp(gxregs.BPTevColorRA0 + uint8(i))
			b.s.SetTevRegBG(i, int32(k.B), int32(k.G), true)
			b.bpRepeat(gxregs.BPTevColorBG0+uint8(i), 3)
		} else {
			c := m.TevColors[i]
			b.s.SetTevRegRA(i, int32(c[0]), int32(c[3]), false)
			b.bp(gxregs.BPTevColorRA0 + uint8(i))
			b.s.SetTevRegBG(i, int32(c[2]), int32(c[1]), false)
			b.bp(gxregs.BPTevColorBG0 + uint8(i))
		}
	}
}

func lowerPixelEngine(b *builder, m gxmat.Material) {
	b.s.SetAlphaCompare(gxregs.AlphaCompareRaw{
		CompLeft: uint8(m.AlphaCompare.CompLeft), RefLeft: m.AlphaCompare.RefLeft,
		CompRight: uint8(m.AlphaCompare.CompRight), RefRight: m.AlphaCompare.RefRight,
		Op: uint8(m.AlphaCompare.Op),
	})
	b.bp(gxregs.BPAlphaCompare)

	b.s.SetZMode(gxregs.ZModeRaw{
		Compare: m.ZMode.Compare, Function: uint8(m.ZMode.Function), Update: m.ZMode.Update,
	})
	b.bp(gxregs.BPZMode)

	b.s.SetBlendMode(gxregs.BlendModeRaw{
		Type: uint8(m.BlendMode.Type), Source: uint8(m.BlendMode.Source),
		Dest: uint8(m.BlendMode.Dest), Logic: uint8(m.BlendMode.Logic),
	})
	b.bp(gxregs.BPBlendMode)

	b.s.SetConstAlpha(m.DstAlpha.Enabled, m.DstAlpha.Alpha)
	b.bp(gxregs.BPConstAlpha)
}

// encodeTexGen is the inverse of lift's decodeTexGen.
func encodeTexGen(tg gxmat.TexGen) (gxregs.XFTexGen, gxregs.XFDualTexGen, error) {
	dtg := gxregs.XFDualTexGen{
		TexMtxIdx:  uint8(tg.Matrix),
		PostMtxIdx: uint8(tg.PostMatrix),
		Normalize:  tg.Normalize,
	}
	switch {
	case tg.Func == gxmat.TexGenMatrix2x4 || tg.Func == gxmat.TexGenMatrix3x4:
		proj := uint8(0)
		if tg.Func == gxmat.TexGenMatrix3x4 {
			proj = 1
		}
		return gxregs.XFTexGen{
			Type: gxregs.TexGenTypeRegular, Projection: proj, SourceRow: uint8(tg.SourceParam),
		}, dtg, nil
	case tg.Func == gxmat.TexGenSRTG && tg.SourceParam == gxmat.SrcColor0:
		return gxregs.XFTexGen{Type: gxregs.TexGenTypeColorStrgbc0}, dtg, nil
	case tg.Func == gxmat.TexGenSRTG && tg.SourceParam == gxmat.SrcColor1:
		return gxregs.XFTexGen{Type: gxregs.TexGenTypeColorStrgbc1}, dtg, nil
	case tg.Func >= gxmat.TexGenBump0 && tg.Func <= gxmat.TexGenBump7:
		if tg.SourceParam < gxmat.SrcTex0 {
			return gxregs.XFTexGen{}, gxregs.XFDualTexGen{}, gxerr.InvalidEnum("texgen.sourceParam", tg.SourceParam)
		}
		return gxregs.XFTexGen{
			Type:         gxregs.TexGenTypeEmbossMap,
			EmbossLight:  uint8(tg.Func) - uint8(gxmat.TexGenBump0),
			EmbossSource: uint8(tg.SourceParam) - uint8(gxmat.SrcTex0),
		}, dtg, nil
	default:
		return gxregs.XFTexGen{}, gxregs.XFDualTexGen{}, gxerr.InvalidEnum("texgen.func", tg.Func)
	}
}

func lowerTexGen(b *builder, tg gxmat.TexGen, i int) error {
	raw, dual, err := encodeTexGen(tg)
	if err != nil {
		return err
	}
	b.s.SetTexGen(i, raw)
	b.xf(gxregs.XFTex0ID + uint16(i))
	b.s.SetDualTexGen(i, dual)
	b.xf(gxregs.XFDualTex0ID + uint16(i))
	return nil
}
