package glsl

import (
	"fmt"

	"github.com/gogpu/gxcodec/gxerr"
	"github.com/gogpu/gxcodec/gxmat"
	"github.com/gogpu/gxcodec/tevsimplify"
)

// unsupportedEnum builds the typed error the generator returns for any
// operand or formula it does not know how to render (spec §4.7 "The
// generator is total: every unsupported operand or formula produces a
// typed error").
func unsupportedEnum(field string, value any) error {
	return gxerr.InvalidEnum(field, value)
}

// colorOperandBinding classifies a color combiner selector into the
// algebraic binding tevsimplify.BuildStageFor needs to fold literal 0/1
// operands (spec §4.6, §4.7).
func colorOperandBinding(sel gxmat.ColorCombineSel) tevsimplify.Binding {
	switch sel {
	case gxmat.CCOne:
		return tevsimplify.BindOne
	case gxmat.CCZero:
		return tevsimplify.BindZero
	default:
		return tevsimplify.BindVariable
	}
}

func alphaOperandBinding(sel gxmat.AlphaCombineSel) tevsimplify.Binding {
	if sel == gxmat.CAZero {
		return tevsimplify.BindZero
	}
	return tevsimplify.BindVariable
}

// colorOperandExpr renders a color combiner selector into a GLSL rgb
// expression (spec §4.7 "Fragment stage").
func colorOperandExpr(sel gxmat.ColorCombineSel, stageIdx int) (string, error) {
	switch sel {
	case gxmat.CCTexColor:
		return fmt.Sprintf("t_TexColor%d.rgb", stageIdx), nil
	case gxmat.CCTexAlpha:
		return fmt.Sprintf("vec3(t_TexColor%d.a)", stageIdx), nil
	case gxmat.CCRasColor:
		return fmt.Sprintf("t_RasColor%d.rgb", stageIdx), nil
	case gxmat.CCRasAlpha:
		return fmt.Sprintf("vec3(t_RasColor%d.a)", stageIdx), nil
	case gxmat.CCOne:
		return "vec3(1.0)", nil
	case gxmat.CCHalf:
		return "vec3(0.5)", nil
	case gxmat.CCKonst:
		return fmt.Sprintf("t_Konst%d.rgb", stageIdx), nil
	case gxmat.CCZero:
		return "vec3(0.0)", nil
	case gxmat.CCPrevColor:
		return "t_ColorPrev.rgb", nil
	case gxmat.CCPrevAlphaAll:
		return "vec3(t_ColorPrev.a)", nil
	case gxmat.CCC0Color:
		return "u_Color[0].rgb", nil
	case gxmat.CCC0AlphaAll:
		return "vec3(u_Color[0].a)", nil
	case gxmat.CCC1Color:
		return "u_Color[1].rgb", nil
	case gxmat.CCC1AlphaAll:
		return "vec3(u_Color[1].a)", nil
	case gxmat.CCC2Color:
		return "u_Color[2].rgb", nil
	case gxmat.CCC2AlphaAll:
		return "vec3(u_Color[2].a)", nil
	default:
		return "", unsupportedEnum("tevStage.colorStage.sel", sel)
	}
}

func alphaOperandExpr(sel gxmat.AlphaCombineSel, stageIdx int) (string, error) {
	switch sel {
	case gxmat.CATexAlpha:
		return fmt.Sprintf("t_TexColor%d.a", stageIdx), nil
	case gxmat.CARasAlpha:
		return fmt.Sprintf("t_RasColor%d.a", stageIdx), nil
	case gxmat.CAKonst:
		return fmt.Sprintf("t_Konst%d.a", stageIdx), nil
	case gxmat.CAZero:
		return "0.0", nil
	case gxmat.CAPrevAlpha:
		return "t_ColorPrev.a", nil
	case gxmat.CAC0Alpha:
		return "u_Color[0].a", nil
	case gxmat.CAC1Alpha:
		return "u_Color[1].a", nil
	case gxmat.CAC2Alpha:
		return "u_Color[2].a", nil
	default:
		return "", unsupportedEnum("tevStage.alphaStage.sel", sel)
	}
}

// renderTree walks a simplified tevsimplify tree, substituting the A/B/C
// leaves with precomputed GLSL text and One/Zero with the literal for the
// given component width (spec §4.6's arena is evaluated here instead of
// numerically, per the generator's own contract rather than modifying the
// simplifier package).
func renderTree(a *tevsimplify.Arena, idx int, aExpr, bExpr, cExpr string, isColor bool) string {
	n := a.Node(idx)
	if n.Kind == tevsimplify.KindUnary {
		switch n.Operand {
		case tevsimplify.OperandA:
			return aExpr
		case tevsimplify.OperandB:
			return bExpr
		case tevsimplify.OperandC:
			return cExpr
		case tevsimplify.OperandOne:
			if isColor {
				return "vec3(1.0)"
			}
			return "1.0"
		default: // OperandZero, OperandD (D is never reachable; bound out)
			if isColor {
				return "vec3(0.0)"
			}
			return "0.0"
		}
	}
	l := renderTree(a, n.Left, aExpr, bExpr, cExpr, isColor)
	r := renderTree(a, n.Right, aExpr, bExpr, cExpr, isColor)
	switch n.Op {
	case tevsimplify.OpAdd:
		return fmt.Sprintf("(%s + %s)", l, r)
	case tevsimplify.OpSub:
		return fmt.Sprintf("(%s - %s)", l, r)
	default:
		return fmt.Sprintf("(%s * %s)", l, r)
	}
}

// renderMix builds and simplifies the D-less mix expression "(1-C)*A + C*B"
// and renders it to GLSL text (spec §4.6 BuildStageFor/Simplify, §4.7).
func renderMix(aBind, bBind, cBind tevsimplify.Binding, aExpr, bExpr, cExpr string, isColor bool) string {
	ar, root := tevsimplify.BuildStageFor(aBind, bBind, cBind, tevsimplify.BindZero)
	simplified, sroot := tevsimplify.Simplify(ar, root)
	return renderTree(simplified, sroot, aExpr, bExpr, cExpr, isColor)
}

// biasWrap routes a combined stage expression through the TevBias helper
// (spec §4.7 fragment helpers) rather than splicing the offset in as bare
// text, so the post-combine bias stays a single named operation.
func biasWrap(expr string, b gxmat.TevBias) string {
	switch b {
	case gxmat.TevBiasAddHalf:
		return fmt.Sprintf("TevBias(%s, 0.5)", expr)
	case gxmat.TevBiasSubHalf:
		return fmt.Sprintf("TevBias(%s, -0.5)", expr)
	default:
		return expr
	}
}

func scaleExpr(s gxmat.TevScale) (prefix, suffix string) {
	switch s {
	case gxmat.TevScale2:
		return "(", ") * 2.0"
	case gxmat.TevScale4:
		return "(", ") * 4.0"
	case gxmat.TevScaleHalf:
		return "(", ") * 0.5"
	default:
		return "", ""
	}
}
