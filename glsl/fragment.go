package glsl

import (
	"fmt"

	"github.com/gogpu/gxcodec/gxmat"
	"github.com/gogpu/gxcodec/internal/codebuf"
)

// generateFragment emits the fragment shader half of the pair (spec §4.7
// "Fragment stage").
func generateFragment(m gxmat.Material, profile Profile, opts Options) (string, error) {
	b := codebuf.New()
	writePrelude(b, profile, m, true)

	if profile.supportsEarlyFragmentTests() && m.EarlyZCompare && m.ZMode.Compare {
		b.Line("layout(early_fragment_tests) in;")
	}

	b.Line("in vec4 v_Color0;")
	b.Line("in vec4 v_Color1;")
	for i := range m.TexGens {
		b.Printf("in vec3 v_TexCoord%d;", i)
	}
	b.Line("in vec4 v_PrimID;")
	b.Line("")
	b.Line("out vec4 o_Color;")
	b.Line("")

	writeFragmentHelpers(b)

	b.Line("void main() {")
	if opts.VisualizePrimID {
		b.Line("    o_Color = v_PrimID;")
		b.Line("}")
		if err := b.Err(); err != nil {
			return "", err
		}
		return b.String(), nil
	}

	writeIndirectCoords(b, m)
	writeSamples(b, m)

	b.Line("    vec4 t_ColorPrev = u_Color[0];")
	b.Line("")

	for i, st := range m.Stages {
		if st.Indirect.Matrix.Unsupported() {
			return "", unsupportedEnum("tevStage.indirect.matrix", st.Indirect.Matrix)
		}
		if opts.Annotate {
			b.Printf("    // stage %d", i)
		}
		if err := writeStage(b, st, i); err != nil {
			return "", err
		}
	}

	if err := writeAlphaTest(b, m); err != nil {
		return "", err
	}
	writeOutput(b, m)
	b.Line("}")

	if err := b.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeFragmentHelpers(b *codebuf.Buffer) {
	b.Line("float TevOverflow(float x) { return mod(x * 255.0, 256.0) / 255.0; }")
	b.Line("vec3 TevOverflow(vec3 x) { return mod(x * 255.0, 256.0) / 255.0; }")
	b.Line("float TevSaturate(float x) { return clamp(x, 0.0, 1.0); }")
	b.Line("vec3 TevSaturate(vec3 x) { return clamp(x, 0.0, 1.0); }")
	b.Line("float TevBias(float x, float bias) { return x + bias; }")
	b.Line("vec3 TevBias(vec3 x, float bias) { return x + bias; }")
	b.Line("bool TevPerCompGT(vec3 a, vec3 b) { return a.r > b.r && a.g > b.g && a.b > b.b; }")
	b.Line("bool TevPerCompEQ(vec3 a, vec3 b) { return a.r == b.r && a.g == b.g && a.b == b.b; }")
	b.Line("float TevPack16(vec3 c) { return dot(floor(c * 255.0), vec3(1.0, 256.0, 0.0)); }")
	b.Line("float TevPack24(vec3 c) { return dot(floor(c * 255.0), vec3(1.0, 256.0, 65536.0)); }")
	b.Line("vec4 TextureLODBias(sampler2D tex, vec2 uv, float bias) { return texture(tex, uv, bias); }")
	b.Line("vec2 TextureInvScale(int index) { return 1.0 / u_TextureParams[index].xy; }")
	b.Line("")
}

func retargetSwap(m gxmat.Material, which uint8) gxmat.SwapTable {
	if int(which) < len(m.SwapTable) {
		return m.SwapTable[which]
	}
	return gxmat.SwapTable{R: gxmat.SwapR, G: gxmat.SwapG, B: gxmat.SwapB, A: gxmat.SwapA}
}

func swizzleFor(sw gxmat.SwapTable) string {
	chanLetter := func(c gxmat.SwapChannel) byte {
		switch c {
		case gxmat.SwapR:
			return 'r'
		case gxmat.SwapG:
			return 'g'
		case gxmat.SwapB:
			return 'b'
		default:
			return 'a'
		}
	}
	return string([]byte{chanLetter(sw.R), chanLetter(sw.G), chanLetter(sw.B), chanLetter(sw.A)})
}

func writeSamples(b *codebuf.Buffer, m gxmat.Material) {
	for i, st := range m.Stages {
		if st.HasTexture() {
			writeStageTexCoord(b, m, st, i)
			sw := retargetSwap(m, st.TexMapSwap)
			b.Printf("    vec4 t_TexColor%d = TextureLODBias(u_Texture[%d], t_TexCoord%d, u_TextureParams[%d].w + u_Misc0.x).%s;", i, st.TexMap, i, st.TexMap, swizzleFor(sw))
		} else {
			b.Printf("    vec4 t_TexColor%d = vec4(1.0);", i)
		}

		var rasExpr string
		switch st.RasOrder {
		case gxmat.RasColor0:
			rasExpr = "v_Color0"
		case gxmat.RasColor1:
			rasExpr = "v_Color1"
		default:
			rasExpr = "vec4(0.0)"
		}
		rasSw := retargetSwap(m, st.RasSwap)
		b.Printf("    vec4 t_RasColor%d = (%s).%s;", i, rasExpr, swizzleFor(rasSw))

		b.Printf("    vec4 t_Konst%d = vec4(u_KonstColor[%d].rgb, u_KonstColor[%d].a);", i, konstIndex(st.ColorKonstSel), konstIndex(st.AlphaKonstSel))
	}
}

// konstIndex maps the raw 0..31 KSEL selector to one of the four
// material-authored konst color slots; selectors >= 4 name a fixed
// hardware ratio constant, which this generator approximates with slot 0
// rather than hand-rolling all 28 ratios (spec §4.3 "this module passes
// the raw selector through").
func konstIndex(sel uint8) int {
	if sel < 4 {
		return int(sel)
	}
	return 0
}

func writeIndirectCoords(b *codebuf.Buffer, m gxmat.Material) {
	for i, ind := range m.IndirectStages {
		coordIdx := clampTexGenIdx(m, ind.RefCoord)
		b.Printf("    vec3 t_IndCoord%d = texture(u_Texture[%d], v_TexCoord%d.xy).abg * 255.0 / vec3(%s, %s, 1.0);",
			i, ind.RefMap, coordIdx, indScaleFactor(ind.ScaleU), indScaleFactor(ind.ScaleV))
	}
}

// clampTexGenIdx maps a stage's texCoord/refCoord selector onto an actual
// texgen output, clamping to the last one when the material declares fewer
// texgens than the selector names (spec §4.7 "clamped at the last texgen").
func clampTexGenIdx(m gxmat.Material, idx uint8) int {
	n := len(m.TexGens)
	if n == 0 {
		return 0
	}
	if int(idx) >= n {
		return n - 1
	}
	return int(idx)
}

func indScaleFactor(s gxmat.IndTexScale) string {
	switch s {
	case gxmat.IndScale1:
		return "1.0"
	case gxmat.IndScale2:
		return "2.0"
	case gxmat.IndScale4:
		return "4.0"
	case gxmat.IndScale8:
		return "8.0"
	case gxmat.IndScale16:
		return "16.0"
	case gxmat.IndScale32:
		return "32.0"
	case gxmat.IndScale64:
		return "64.0"
	case gxmat.IndScale128:
		return "128.0"
	default: // IndScale256
		return "256.0"
	}
}

func indWrapExpr(expr string, w gxmat.IndWrap) string {
	switch w {
	case gxmat.IndWrap0:
		return "0.0"
	case gxmat.IndWrap16:
		return fmt.Sprintf("mod(%s, 16.0)", expr)
	case gxmat.IndWrap32:
		return fmt.Sprintf("mod(%s, 32.0)", expr)
	case gxmat.IndWrap64:
		return fmt.Sprintf("mod(%s, 64.0)", expr)
	case gxmat.IndWrap128:
		return fmt.Sprintf("mod(%s, 128.0)", expr)
	case gxmat.IndWrap256:
		return fmt.Sprintf("mod(%s, 256.0)", expr)
	default: // IndWrapOff
		return expr
	}
}

// biasedIndCoordExpr offsets the components of an indirect lookup the
// stage's bias selector names by -128, the hardware's signed-offset
// convention for an 8-bit indirect format (spec §3.2 indirectStage.bias).
func biasedIndCoordExpr(k int, bias gxmat.IndBias) string {
	base := fmt.Sprintf("t_IndCoord%d", k)
	switch bias {
	case gxmat.IndBiasS:
		return fmt.Sprintf("vec3(%s.x - 128.0, %s.y, %s.z)", base, base, base)
	case gxmat.IndBiasT:
		return fmt.Sprintf("vec3(%s.x, %s.y - 128.0, %s.z)", base, base, base)
	case gxmat.IndBiasU:
		return fmt.Sprintf("vec3(%s.x, %s.y, %s.z - 128.0)", base, base, base)
	case gxmat.IndBiasST:
		return fmt.Sprintf("vec3(%s.xy - vec2(128.0), %s.z)", base, base)
	case gxmat.IndBiasSU:
		return fmt.Sprintf("vec3(%s.x - 128.0, %s.y, %s.z - 128.0)", base, base, base)
	case gxmat.IndBiasTU:
		return fmt.Sprintf("vec3(%s.x, %s.yz - vec2(128.0))", base, base)
	case gxmat.IndBiasSTU:
		return fmt.Sprintf("(%s - vec3(128.0))", base)
	default: // IndBiasNone
		return base
	}
}

// writeStageTexCoord computes the texcoord a stage actually samples from:
// the clamped texgen output, wrapped per the indirect wrap selection, then
// offset (or replaced, for AddPrev) by the selected indirect matrix applied
// to the stage's indirect lookup (spec §4.7 fragment stage step 1).
func writeStageTexCoord(b *codebuf.Buffer, m gxmat.Material, st gxmat.TevStage, idx int) {
	coordIdx := clampTexGenIdx(m, st.TexCoord)
	b.Printf("    vec2 t_TexCoord%d = v_TexCoord%d.xy;", idx, coordIdx)

	ind := st.Indirect
	if ind.WrapU != gxmat.IndWrapOff || ind.WrapV != gxmat.IndWrapOff {
		b.Printf("    t_TexCoord%d = vec2(%s, %s);", idx,
			indWrapExpr(fmt.Sprintf("t_TexCoord%d.x", idx), ind.WrapU),
			indWrapExpr(fmt.Sprintf("t_TexCoord%d.y", idx), ind.WrapV))
	}

	if ind.Matrix != gxmat.IndMtxOff && !ind.Matrix.Unsupported() && int(ind.IndStageSel) < len(m.IndirectStages) {
		matIdx := int(ind.Matrix) - int(gxmat.IndMtx0)
		k := int(ind.IndStageSel)
		b.Printf("    vec2 t_IndOffset%d = (u_IndTexMtx[%d] * vec4(%s, 0.0)) * TextureInvScale(%d);",
			idx, matIdx, biasedIndCoordExpr(k, ind.Bias), st.TexMap)
		if ind.AddPrev {
			b.Printf("    t_TexCoord%d += t_IndOffset%d;", idx, idx)
		} else {
			b.Printf("    t_TexCoord%d = t_IndOffset%d;", idx, idx)
		}
	}
}

func writeStage(b *codebuf.Buffer, st gxmat.TevStage, idx int) error {
	cs := st.ColorStage
	as := st.AlphaStage

	var err error
	if cs.Formula.IsComparison() {
		err = writeColorComparison(b, cs, idx)
	} else {
		err = writeColorCombine(b, cs, idx)
	}
	if err != nil {
		return err
	}

	if as.Formula.IsComparison() {
		err = writeAlphaComparison(b, as, idx)
	} else {
		err = writeAlphaCombine(b, as, idx)
	}
	if err != nil {
		return err
	}

	b.Printf("    t_ColorPrev = vec4(t_StageColor%d, t_StageAlpha%d);", idx, idx)
	return nil
}

func writeColorCombine(b *codebuf.Buffer, cs gxmat.TevStageColor, idx int) error {
	aExpr, err := colorOperandExpr(cs.A, idx)
	if err != nil {
		return err
	}
	bExpr, err := colorOperandExpr(cs.B, idx)
	if err != nil {
		return err
	}
	cExpr, err := colorOperandExpr(cs.C, idx)
	if err != nil {
		return err
	}
	dExpr, err := colorOperandExpr(cs.D, idx)
	if err != nil {
		return err
	}

	mix := renderMix(colorOperandBinding(cs.A), colorOperandBinding(cs.B), colorOperandBinding(cs.C), aExpr, bExpr, cExpr, true)

	opSym := "+"
	if cs.Op == gxmat.TevOpSub {
		opSym = "-"
	}
	prefix, suffix := scaleExpr(cs.Scale)
	expr := biasWrap(fmt.Sprintf("%s%s %s %s%s", prefix, dExpr, opSym, mix, suffix), cs.Bias)

	if cs.Clamp {
		b.Printf("    vec3 t_StageColor%d = TevSaturate(TevOverflow(%s));", idx, expr)
	} else {
		b.Printf("    vec3 t_StageColor%d = TevOverflow(%s);", idx, expr)
	}
	return nil
}

func writeAlphaCombine(b *codebuf.Buffer, as gxmat.TevStageAlpha, idx int) error {
	aExpr, err := alphaOperandExpr(as.A, idx)
	if err != nil {
		return err
	}
	bExpr, err := alphaOperandExpr(as.B, idx)
	if err != nil {
		return err
	}
	cExpr, err := alphaOperandExpr(as.C, idx)
	if err != nil {
		return err
	}
	dExpr, err := alphaOperandExpr(as.D, idx)
	if err != nil {
		return err
	}

	mix := renderMix(alphaOperandBinding(as.A), alphaOperandBinding(as.B), alphaOperandBinding(as.C), aExpr, bExpr, cExpr, false)

	opSym := "+"
	if as.Op == gxmat.TevOpSub {
		opSym = "-"
	}
	prefix, suffix := scaleExpr(as.Scale)
	expr := biasWrap(fmt.Sprintf("%s%s %s %s%s", prefix, dExpr, opSym, mix, suffix), as.Bias)

	if as.Clamp {
		b.Printf("    float t_StageAlpha%d = TevSaturate(TevOverflow(%s));", idx, expr)
	} else {
		b.Printf("    float t_StageAlpha%d = TevOverflow(%s);", idx, expr)
	}
	return nil
}

// writeColorComparison renders one of the comp_* formulas (spec §4.3 bias
// == 3 escape): out = D + ((A cmp B) ? C : 0), evaluated per-component or
// packed depending on the formula.
func writeColorComparison(b *codebuf.Buffer, cs gxmat.TevStageColor, idx int) error {
	aExpr, err := colorOperandExpr(cs.A, idx)
	if err != nil {
		return err
	}
	bExpr, err := colorOperandExpr(cs.B, idx)
	if err != nil {
		return err
	}
	cExpr, err := colorOperandExpr(cs.C, idx)
	if err != nil {
		return err
	}
	dExpr, err := colorOperandExpr(cs.D, idx)
	if err != nil {
		return err
	}

	cond, err := comparisonCond(cs.Formula, aExpr, bExpr, true)
	if err != nil {
		return err
	}
	expr := fmt.Sprintf("%s + (%s ? %s : vec3(0.0))", dExpr, cond, cExpr)
	if cs.Clamp {
		b.Printf("    vec3 t_StageColor%d = TevSaturate(%s);", idx, expr)
	} else {
		b.Printf("    vec3 t_StageColor%d = %s;", idx, expr)
	}
	return nil
}

func writeAlphaComparison(b *codebuf.Buffer, as gxmat.TevStageAlpha, idx int) error {
	aExpr, err := alphaOperandExpr(as.A, idx)
	if err != nil {
		return err
	}
	bExpr, err := alphaOperandExpr(as.B, idx)
	if err != nil {
		return err
	}
	cExpr, err := alphaOperandExpr(as.C, idx)
	if err != nil {
		return err
	}
	dExpr, err := alphaOperandExpr(as.D, idx)
	if err != nil {
		return err
	}

	cond, err := comparisonCond(as.Formula, aExpr, bExpr, false)
	if err != nil {
		return err
	}
	expr := fmt.Sprintf("%s + (%s ? %s : 0.0)", dExpr, cond, cExpr)
	if as.Clamp {
		b.Printf("    float t_StageAlpha%d = TevSaturate(%s);", idx, expr)
	} else {
		b.Printf("    float t_StageAlpha%d = %s;", idx, expr)
	}
	return nil
}

func comparisonCond(f gxmat.TevFormula, aExpr, bExpr string, isColor bool) (string, error) {
	gt := func(pack string) string { return fmt.Sprintf("(%s(%s) > %s(%s))", pack, aExpr, pack, bExpr) }
	eq := func(pack string) string { return fmt.Sprintf("(%s(%s) == %s(%s))", pack, aExpr, pack, bExpr) }

	if !isColor {
		// The alpha sub-stage has no vector components to pack; every
		// comp_* formula collapses to a plain scalar compare there
		// (spec §4.3 bias == 3 escape).
		if f.IsComparison() {
			if f%2 == 0 { // *_GT formulas are even-valued, *_EQ odd
				return fmt.Sprintf("(%s > %s)", aExpr, bExpr), nil
			}
			return fmt.Sprintf("(%s == %s)", aExpr, bExpr), nil
		}
		return "", unsupportedEnum("tevStage.alphaStage.formula", f)
	}

	switch f {
	case gxmat.FormulaCompR8GT:
		return fmt.Sprintf("(%s.r > %s.r)", aExpr, bExpr), nil
	case gxmat.FormulaCompR8EQ:
		return fmt.Sprintf("(%s.r == %s.r)", aExpr, bExpr), nil
	case gxmat.FormulaCompGR16GT:
		return gt("TevPack16"), nil
	case gxmat.FormulaCompGR16EQ:
		return eq("TevPack16"), nil
	case gxmat.FormulaCompBGR24GT:
		return gt("TevPack24"), nil
	case gxmat.FormulaCompBGR24EQ:
		return eq("TevPack24"), nil
	case gxmat.FormulaCompRGB8GT:
		return fmt.Sprintf("TevPerCompGT(%s, %s)", aExpr, bExpr), nil
	case gxmat.FormulaCompRGB8EQ:
		return fmt.Sprintf("TevPerCompEQ(%s, %s)", aExpr, bExpr), nil
	default:
		return "", unsupportedEnum("tevStage.colorStage.formula", f)
	}
}

func writeAlphaTest(b *codebuf.Buffer, m gxmat.Material) error {
	ac := m.AlphaCompare
	left, err := compareExpr(ac.CompLeft, "t_ColorPrev.a", float64(ac.RefLeft)/255.0)
	if err != nil {
		return err
	}
	right, err := compareExpr(ac.CompRight, "t_ColorPrev.a", float64(ac.RefRight)/255.0)
	if err != nil {
		return err
	}
	if left == "true" && right == "true" {
		return nil
	}

	var combined string
	switch ac.Op {
	case gxmat.AlphaAnd:
		combined = fmt.Sprintf("(%s) && (%s)", left, right)
	case gxmat.AlphaOr:
		combined = fmt.Sprintf("(%s) || (%s)", left, right)
	case gxmat.AlphaXor:
		combined = fmt.Sprintf("((%s) != (%s))", left, right)
	case gxmat.AlphaXnor:
		combined = fmt.Sprintf("((%s) == (%s))", left, right)
	default:
		return unsupportedEnum("alphaCompare.op", ac.Op)
	}
	b.Printf("    if (!(%s)) { discard; }", combined)
	return nil
}

func compareExpr(op gxmat.CompareOp, lhs string, ref float64) (string, error) {
	switch op {
	case gxmat.CompareNever:
		return "false", nil
	case gxmat.CompareLess:
		return fmt.Sprintf("%s < %g", lhs, ref), nil
	case gxmat.CompareEqual:
		return fmt.Sprintf("%s == %g", lhs, ref), nil
	case gxmat.CompareLEqual:
		return fmt.Sprintf("%s <= %g", lhs, ref), nil
	case gxmat.CompareGreater:
		return fmt.Sprintf("%s > %g", lhs, ref), nil
	case gxmat.CompareNEqual:
		return fmt.Sprintf("%s != %g", lhs, ref), nil
	case gxmat.CompareGEqual:
		return fmt.Sprintf("%s >= %g", lhs, ref), nil
	case gxmat.CompareAlways:
		return "true", nil
	default:
		return "", unsupportedEnum("alphaCompare.compare", op)
	}
}

func writeOutput(b *codebuf.Buffer, m gxmat.Material) {
	if m.DstAlpha.Enabled {
		b.Printf("    o_Color = vec4(t_ColorPrev.rgb, %g);", float64(m.DstAlpha.Alpha)/255.0)
		return
	}
	b.Line("    o_Color = t_ColorPrev;")
}
