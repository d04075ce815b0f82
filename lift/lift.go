package lift

import (
	"fmt"

	"github.com/gogpu/gxcodec/gxerr"
	"github.com/gogpu/gxcodec/gxmat"
	"github.com/gogpu/gxcodec/gxregs"
	"github.com/gogpu/gxcodec/indmtx"
)

// Lift decomposes a populated register shadow into a semantic material
// record (spec §4.3, component C). Every field the hardware register file
// actually carries is reconstructed here; Material.TexMatrices and each
// Sampler's Texture/Palette name are left zero-valued, since the register
// file only stores a texture matrix's baked 4x4 result (not the authoring
// scale/rotate/translate parameters that produced it) and texture/palette
// bindings are an asset-container concern this module does not parse
// (spec §1 Non-goals) — the caller merges those in from the surrounding
// asset data. mIndMatrices are always lifted at their full hardware slot
// count (3): the register file has no separate "count in use" field for
// them, only the stages that reference a given slot say whether it
// matters. indirectStages are lifted up to GenMode's indirect stage count.
func Lift(s *gxregs.State) (gxmat.Material, []gxerr.Warning, error) {
	var warnings []gxerr.Warning
	gm := s.GetGenMode()

	m := gxmat.Material{
		CullMode:      gxmat.CullMode(gm.CullMode),
		EarlyZCompare: gm.EarlyZCompare,
		XLU:           gm.XLU,
	}

	for i := 0; i < 2; i++ {
		mat := s.GetColor(gxregs.CPMatColor0 + uint8(i)*2)
		amb := s.GetColor(gxregs.CPAmbColor0 + uint8(i)*2)
		m.ChanData[i] = gxmat.ChanData{MatColor: toColor8(mat), AmbColor: toColor8(amb)}
	}

	for i := 0; i < 4; i++ {
		cc := s.GetChanControl(i)
		m.ColorChanControls[i] = gxmat.ChannelControl{
			Enabled:       cc.Enabled,
			MatSource:     gxmat.ColorSrc(cc.MatSource),
			AmbSource:     gxmat.ColorSrc(cc.AmbSource),
			LightMask:     cc.LightMask,
			DiffuseFn:     gxmat.DiffuseFn(cc.DiffuseFn),
			AttenuationFn: gxmat.AttenuationFn(cc.AttenuationFn),
		}
	}

	nTexGens := int(gm.NumTexGens)
	m.TexGens = make([]gxmat.TexGen, nTexGens)
	m.Samplers = make([]gxmat.Sampler, nTexGens)
	for i := 0; i < nTexGens; i++ {
		tg, err := decodeTexGen(s.GetTexGen(i), s.GetDualTexGen(i))
		if err != nil {
			return gxmat.Material{}, warnings, err
		}
		m.TexGens[i] = tg
	}

	for j := 0; j < 4; j++ {
		even := s.GetKSel(2 * j)
		odd := s.GetKSel(2*j + 1)
		m.SwapTable[j] = gxmat.SwapTable{
			R: gxmat.SwapChannel(even.SwapChan0),
			G: gxmat.SwapChannel(even.SwapChan1),
			B: gxmat.SwapChannel(odd.SwapChan0),
			A: gxmat.SwapChannel(odd.SwapChan1),
		}
	}

	refMap, refCoord := s.GetIref()
	if gm.NumIndStages > 4 {
		return gxmat.Material{}, warnings, gxerr.InvalidEnum("genMode.numIndStages", gm.NumIndStages)
	}
	for k := 0; k < int(gm.NumIndStages); k++ {
		u, v := s.GetIndTexScale(k)
		m.IndirectStages = append(m.IndirectStages, gxmat.IndirectStage{
			ScaleU: gxmat.IndTexScale(u), ScaleV: gxmat.IndTexScale(v),
			RefMap: refMap[k], RefCoord: refCoord[k],
		})
	}

	m.IndMatrices = make([]gxmat.IndMatrix, 3)
	for k := 0; k < 3; k++ {
		m.IndMatrices[k] = decodeIndMatrix(s, k)
	}

	nStages := int(gm.NumTevStages) + 1
	m.Stages = make([]gxmat.TevStage, nStages)
	for i := 0; i < nStages; i++ {
		st, w, err := decodeStage(s, i)
		warnings = append(warnings, w...)
		if err != nil {
			return gxmat.Material{}, warnings, err
		}
		m.Stages[i] = st
	}

	m.TevColors, m.TevKonstColors = decodeTevRegisters(s)

	ac := s.GetAlphaCompare()
	m.AlphaCompare = gxmat.AlphaCompare{
		CompLeft: gxmat.CompareOp(ac.CompLeft), RefLeft: ac.RefLeft,
		Op:        gxmat.AlphaOp(ac.Op),
		CompRight: gxmat.CompareOp(ac.CompRight), RefRight: ac.RefRight,
	}

	zm := s.GetZMode()
	m.ZMode = gxmat.ZMode{Compare: zm.Compare, Function: gxmat.CompareOp(zm.Function), Update: zm.Update}

	bm := s.GetBlendMode()
	m.BlendMode = gxmat.BlendMode{
		Type: gxmat.BlendType(bm.Type), Source: gxmat.BlendFactor(bm.Source),
		Dest: gxmat.BlendFactor(bm.Dest), Logic: gxmat.LogicOp(bm.Logic),
	}

	enabled, alpha := s.GetConstAlpha()
	m.DstAlpha = gxmat.DstAlpha{Enabled: enabled, Alpha: alpha}

	return m, warnings, nil
}

func toColor8(c [4]uint8) gxmat.Color8 {
	return gxmat.Color8{R: c[0], G: c[1], B: c[2], A: c[3]}
}

func decodeTexGen(tg gxregs.XFTexGen, dtg gxregs.XFDualTexGen) (gxmat.TexGen, error) {
	g := gxmat.TexGen{
		Matrix:     gxmat.TexMatrixID(dtg.TexMtxIdx),
		Normalize:  dtg.Normalize,
		PostMatrix: gxmat.PostTexMatrixID(dtg.PostMtxIdx),
	}
	switch tg.Type {
	case gxregs.TexGenTypeRegular:
		if tg.Projection == 1 {
			g.Func = gxmat.TexGenMatrix3x4
		} else {
			g.Func = gxmat.TexGenMatrix2x4
		}
		if tg.SourceRow > uint8(gxmat.SrcTex7) {
			return gxmat.TexGen{}, gxerr.InvalidEnum("texgen.sourceRow", tg.SourceRow)
		}
		g.SourceParam = gxmat.TexGenSrc(tg.SourceRow)
	case gxregs.TexGenTypeColorStrgbc0:
		g.Func = gxmat.TexGenSRTG
		g.SourceParam = gxmat.SrcColor0
	case gxregs.TexGenTypeColorStrgbc1:
		g.Func = gxmat.TexGenSRTG
		g.SourceParam = gxmat.SrcColor1
	case gxregs.TexGenTypeEmbossMap:
		if tg.EmbossLight > 7 || tg.EmbossSource > 7 {
			return gxmat.TexGen{}, gxerr.InvalidEnum("texgen.embossShift", [2]uint8{tg.EmbossSource, tg.EmbossLight})
		}
		g.Func = gxmat.TexGenFunc(int(gxmat.TexGenBump0) + int(tg.EmbossLight))
		g.SourceParam = gxmat.TexGenSrc(int(gxmat.SrcTex0) + int(tg.EmbossSource))
	default:
		return gxmat.TexGen{}, gxerr.InvalidEnum("texgen.type", tg.Type)
	}
	return g, nil
}

// decodeIndMatrix reassembles indirect matrix k from its three BP rows and
// dequantizes it (spec §4.5). The 2x3 matrix is flattened row-major across
// the 3 rows' mantissa pairs; the exponent is assembled from each row's
// 2-bit fragment, row 0 contributing the high bits.
func decodeIndMatrix(s *gxregs.State, k int) gxmat.IndMatrix {
	var flat [6]float32
	var biased uint8
	for row := 0; row < 3; row++ {
		m0, m1, frag := s.GetIndMtxRow(k, row)
		flat[row*2] = float32(m0) / 1024
		flat[row*2+1] = float32(m1) / 1024
		biased |= frag << uint(4-2*row)
	}
	raw := gxmat.IndMatrix{
		Matrix: [2][3]float32{
			{flat[0], flat[1], flat[2]},
			{flat[3], flat[4], flat[5]},
		},
		Scale: int8(biased),
	}
	return gxmat.IndMatrix{Matrix: indmtx.Dequantize(raw), Scale: int8(biased)}
}

func decodeStage(s *gxregs.State, i int) (gxmat.TevStage, []gxerr.Warning, error) {
	var warnings []gxerr.Warning
	pair := i / 2

	even, odd := s.GetTref(pair)
	half := even
	if i%2 == 1 {
		half = odd
	}

	kreg := s.GetKSel(pair)
	konstColorSel := kreg.KonstColorSel[i%2]
	konstAlphaSel := kreg.KonstAlphaSel[i%2]

	swapEven, swapOdd := s.GetStageSwap(pair)
	swap := swapEven
	if i%2 == 1 {
		swap = swapOdd
	}

	colorStage, err := decodeColorStage(s.GetTevColorEnv(i))
	if err != nil {
		return gxmat.TevStage{}, warnings, err
	}
	alphaStage, err := decodeAlphaStage(s.GetTevAlphaEnv(i))
	if err != nil {
		return gxmat.TevStage{}, warnings, err
	}

	indCmdReg := gxregs.BPIndCmd0 + uint8(i)
	if !s.Written(indCmdReg) {
		fallback := gxregs.BPIndCmd0 + uint8(i/2)
		warnings = append(warnings, gxerr.Warning{
			Where: fmt.Sprintf("IND_CMD[%d]", i),
			Msg:   fmt.Sprintf("undefined, falling back to IND_CMD[%d]", i/2),
		})
		indCmdReg = fallback
	}
	ind, err := decodeIndirect(s.GetIndCmd(int(indCmdReg - gxregs.BPIndCmd0)))
	if err != nil {
		return gxmat.TevStage{}, warnings, err
	}

	return gxmat.TevStage{
		ColorStage:    colorStage,
		AlphaStage:    alphaStage,
		TexCoord:      half.TexCoord,
		TexMap:        half.TexMap,
		RasOrder:      gxmat.RasColorChannel(half.RasOrder),
		RasSwap:       swap.RasSwap,
		TexMapSwap:    swap.TexMapSwap,
		ColorKonstSel: konstColorSel,
		AlphaKonstSel: konstAlphaSel,
		Indirect:      ind,
	}, warnings, nil
}

// decodeFormula splits the fused op/bias/scale field back into a formula,
// bias and scale, undoing the lowerer's bias==3 comparison escape (spec
// §4.3). When bias==3 the op(1 bit) and scale(2 bit) fields together name
// one of the eight comparison formulas.
func decodeFormula(op, bias, scale uint8) (gxmat.TevFormula, gxmat.TevBias, gxmat.TevScale, error) {
	if bias == 3 {
		compID := op<<2 | scale
		if int(compID) > int(gxmat.FormulaCompRGB8EQ)-int(gxmat.FormulaCompR8GT) {
			return 0, 0, 0, gxerr.InvalidEnum("tevEnv.comparisonId", compID)
		}
		formula := gxmat.TevFormula(int(gxmat.FormulaCompR8GT) + int(compID))
		return formula, gxmat.TevBiasZero, gxmat.TevScale1, nil
	}
	if bias > 2 || scale > 3 || op > 1 {
		return 0, 0, 0, gxerr.InvalidEnum("tevEnv.op/bias/scale", [3]uint8{op, bias, scale})
	}
	return gxmat.TevFormula(op), gxmat.TevBias(bias), gxmat.TevScale(scale), nil
}

func decodeColorStage(e gxregs.TevEnvColor) (gxmat.TevStageColor, error) {
	if e.A > 15 || e.B > 15 || e.C > 15 || e.D > 15 {
		return gxmat.TevStageColor{}, gxerr.InvalidEnum("tevColorEnv.operand", e)
	}
	formula, bias, scale, err := decodeFormula(e.Op, e.Bias, e.Scale)
	if err != nil {
		return gxmat.TevStageColor{}, err
	}
	op := gxmat.TevOp(e.Op & 1)
	if formula.IsComparison() {
		// The raw op bit is part of the comparison id, not an add/sub
		// selector; normalize so round-tripped materials are canonical.
		op = gxmat.TevOpAdd
	}
	return gxmat.TevStageColor{
		A: gxmat.ColorCombineSel(e.A), B: gxmat.ColorCombineSel(e.B),
		C: gxmat.ColorCombineSel(e.C), D: gxmat.ColorCombineSel(e.D),
		Formula: formula,
		Op:      op,
		Bias:    bias, Scale: scale, Clamp: e.Clamp,
		Dest: gxmat.TevRegister(e.Dest),
	}, nil
}

func decodeAlphaStage(e gxregs.TevEnvAlpha) (gxmat.TevStageAlpha, error) {
	if e.A > 7 || e.B > 7 || e.C > 7 || e.D > 7 {
		return gxmat.TevStageAlpha{}, gxerr.InvalidEnum("tevAlphaEnv.operand", e)
	}
	formula, bias, scale, err := decodeFormula(e.Op, e.Bias, e.Scale)
	if err != nil {
		return gxmat.TevStageAlpha{}, err
	}
	op := gxmat.TevOp(e.Op & 1)
	if formula.IsComparison() {
		op = gxmat.TevOpAdd
	}
	return gxmat.TevStageAlpha{
		A: gxmat.AlphaCombineSel(e.A), B: gxmat.AlphaCombineSel(e.B),
		C: gxmat.AlphaCombineSel(e.C), D: gxmat.AlphaCombineSel(e.D),
		Formula: formula,
		Op:      op,
		Bias:    bias, Scale: scale, Clamp: e.Clamp,
		Dest: gxmat.TevRegister(e.Dest),
	}, nil
}

func decodeIndirect(c gxregs.IndCmd) (gxmat.TevIndirect, error) {
	if c.Format != 0 {
		return gxmat.TevIndirect{}, gxerr.InvalidEnum("indCmd.format", c.Format)
	}
	if c.Matrix > uint8(gxmat.IndMtxT2) {
		return gxmat.TevIndirect{}, gxerr.InvalidEnum("indCmd.matrix", c.Matrix)
	}
	if c.WrapU > uint8(gxmat.IndWrap256) || c.WrapV > uint8(gxmat.IndWrap256) {
		return gxmat.TevIndirect{}, gxerr.InvalidEnum("indCmd.wrap", [2]uint8{c.WrapU, c.WrapV})
	}
	return gxmat.TevIndirect{
		IndStageSel: c.IndStageSel,
		Format:      8,
		Bias:        gxmat.IndBias(c.Bias),
		Matrix:      gxmat.IndMatrixSel(c.Matrix),
		WrapU:       gxmat.IndWrap(c.WrapU),
		WrapV:       gxmat.IndWrap(c.WrapV),
		AddPrev:     c.AddPrev,
		UTCLod:      c.UTCLod,
		Alpha:       gxmat.IndAlphaSel(c.Alpha),
	}, nil
}

func decodeTevRegisters(s *gxregs.State) ([4][4]int16, [4]gxmat.Color8) {
	var colors [4][4]int16
	var konsts [4]gxmat.Color8
	for i := 0; i < 4; i++ {
		v := s.GetTevReg(i)
		if v.IsKonst {
			konsts[i] = gxmat.Color8{R: v.Konst[0], G: v.Konst[1], B: v.Konst[2], A: v.Konst[3]}
		} else {
			colors[i] = v.Color
		}
	}
	return colors, konsts
}
