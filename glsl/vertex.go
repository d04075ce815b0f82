package glsl

import (
	"fmt"

	"github.com/gogpu/gxcodec/gxmat"
	"github.com/gogpu/gxcodec/internal/codebuf"
)

// generateVertex emits the vertex shader half of the pair (spec §4.7
// "Vertex stage").
func generateVertex(m gxmat.Material, profile Profile) (string, error) {
	b := codebuf.New()
	writePrelude(b, profile, m, false)

	b.Line("layout(location = 0) in vec3 a_Position;")
	b.Line("layout(location = 1) in float a_PosMtxIdx;")
	b.Line("layout(location = 2) in vec4 a_TexMtxIdx0;")
	b.Line("layout(location = 3) in vec4 a_TexMtxIdx1;")
	b.Line("layout(location = 4) in vec3 a_Normal;")
	b.Line("layout(location = 5) in vec4 a_Color0;")
	b.Line("layout(location = 6) in vec4 a_Color1;")
	for i := 0; i < 8; i++ {
		b.Printf("layout(location = %d) in vec2 a_Tex%d;", 7+i, i)
	}
	b.Line("layout(location = 15) in vec4 a_PrimID;")
	b.Line("")

	b.Line("out vec4 v_Color0;")
	b.Line("out vec4 v_Color1;")
	for i := range m.TexGens {
		b.Printf("out vec3 v_TexCoord%d;", i)
	}
	b.Line("out vec4 v_PrimID;")
	b.Line("")

	// GetPosTexMatrix selects between identity, the ten position
	// matrices, and the ten texture matrices by numeric range
	// (spec §4.7 "a helper GetPosTexMatrix(uint) ...").
	b.Line("mat4x3 GetPosTexMatrix(uint index) {")
	b.Line("    if (index == 0u) {")
	b.Line("        return mat4x3(1.0);")
	b.Line("    } else if (index >= 1u && index <= 10u) {")
	b.Line("        return u_PosMtx[index - 1u];")
	b.Line("    } else {")
	b.Line("        return u_TexMtx[index - 11u];")
	b.Line("    }")
	b.Line("}")
	b.Line("")

	if needsApplyCubic(m) {
		// ApplyCubic evaluates a spotlight's quadratic cosine-attenuation
		// polynomial (CosAtten.xyz = A0,A1,A2) at t (spec §4.7 "spotlight
		// (ApplyCubic(...))").
		b.Line("float ApplyCubic(vec4 k, float t) { return dot(k.xyz, vec3(1.0, t, t * t)); }")
		b.Line("")
	}

	b.Line("void main() {")
	b.Line("    mat4x3 t_PosMtx = GetPosTexMatrix(uint(a_PosMtxIdx));")
	b.Line("    vec3 t_Position = t_PosMtx * vec4(a_Position, 1.0);")
	b.Line("    vec3 t_Normal = normalize(mat3(t_PosMtx) * a_Normal);")
	b.Line("    gl_Position = u_Projection * vec4(t_Position, 1.0);")
	b.Line("")

	writeChannelLighting(b, m, 0)
	writeChannelLighting(b, m, 1)
	b.Line("")

	for i, tg := range m.TexGens {
		if err := writeTexGen(b, tg, i); err != nil {
			return "", err
		}
	}

	b.Line("    v_PrimID = a_PrimID;")
	b.Line("}")

	if err := b.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}

// writeChannelLighting emits the per-vertex channel color computation:
// matColor * clamp(ambient + sum of enabled lights' diffuse*attenuation,
// 0, 1) (spec §4.7).
func writeChannelLighting(b *codebuf.Buffer, m gxmat.Material, channel int) {
	cc := m.ColorChanControls[channel*2] // color{channel} control
	dst := fmt.Sprintf("v_Color%d", channel)

	if !cc.Enabled {
		b.Printf("    %s = a_Color%d;", dst, channel)
		return
	}

	matExpr := fmt.Sprintf("u_ColorMatReg[%d]", channel)
	if cc.MatSource == gxmat.SrcVertex {
		matExpr = fmt.Sprintf("a_Color%d", channel)
	}
	ambExpr := fmt.Sprintf("u_ColorAmbReg[%d]", channel)
	if cc.AmbSource == gxmat.SrcVertex {
		ambExpr = fmt.Sprintf("a_Color%d", channel)
	}

	b.Printf("    vec4 t_LightAccum%d = %s;", channel, ambExpr)
	for li := 0; li < 8; li++ {
		if cc.LightMask&(1<<uint(li)) == 0 {
			continue
		}
		b.Printf("    {")
		b.Printf("        vec3 t_LightDelta = u_LightParams[%d].Position.xyz - t_Position;", li)
		b.Printf("        vec3 t_LightDir = normalize(t_LightDelta);")
		b.Printf("        float t_NdotL = dot(t_Normal, t_LightDir);")
		switch cc.DiffuseFn {
		case gxmat.DiffuseSign:
			b.Printf("        float t_Diffuse = t_NdotL;")
		case gxmat.DiffuseClamp:
			b.Printf("        float t_Diffuse = max(t_NdotL, 0.0);")
		default:
			b.Printf("        float t_Diffuse = 1.0;")
		}
		switch cc.AttenuationFn {
		case gxmat.AttenuationSpec:
			b.Printf("        float t_Atten = dot(t_LightDelta, t_LightDelta) > 0.0 ? max(t_NdotL, 0.0) : 1.0;")
		case gxmat.AttenuationSpot:
			b.Printf("        float t_CosAtten = ApplyCubic(u_LightParams[%d].CosAtten, dot(t_LightDir, u_LightParams[%d].Direction.xyz));", li, li)
			b.Printf("        float t_DistAtten = 1.0 / dot(u_LightParams[%d].DistAtten.xyz, vec3(1.0, length(t_LightDelta), dot(t_LightDelta, t_LightDelta)));", li)
			b.Printf("        float t_Atten = max(t_CosAtten, 0.0) * t_DistAtten;")
		default:
			b.Printf("        float t_Atten = 1.0;")
		}
		b.Printf("        t_LightAccum%d += t_Atten * t_Diffuse * u_LightParams[%d].Color;", channel, li)
		b.Printf("    }")
	}
	b.Printf("    %s = %s * clamp(t_LightAccum%d, 0.0, 1.0);", dst, matExpr, channel)
}

func writeTexGen(b *codebuf.Buffer, tg gxmat.TexGen, i int) error {
	src, err := texGenSourceExpr(tg.SourceParam)
	if err != nil {
		return err
	}

	b.Printf("    {")
	switch tg.Func {
	case gxmat.TexGenMatrix2x4, gxmat.TexGenMatrix3x4:
		b.Printf("        vec4 t_Src = vec4(%s, 1.0);", src)
	case gxmat.TexGenSRTG:
		b.Printf("        vec4 t_Src = vec4(%s, 1.0);", src)
	default: // Bump0..7
		b.Printf("        vec4 t_Src = vec4(%s, 1.0);", src)
	}

	if tg.Matrix == gxmat.TexMtxIdentity {
		b.Printf("        vec3 t_GenOut = t_Src.xyz;")
	} else {
		idx := int(tg.Matrix) - int(gxmat.TexMtx0)
		b.Printf("        vec3 t_GenOut = u_TexMtx[%d] * t_Src;", idx)
	}
	if tg.Normalize {
		b.Printf("        t_GenOut = normalize(t_GenOut);")
	}
	if tg.PostMatrix != gxmat.PostTexMtxIdentity {
		pidx := int(tg.PostMatrix) - 1
		b.Printf("        t_GenOut = u_PostTexMtx[%d] * vec4(t_GenOut, 1.0);", pidx)
	}
	b.Printf("        v_TexCoord%d = t_GenOut;", i)
	b.Printf("    }")
	return nil
}

func needsApplyCubic(m gxmat.Material) bool {
	for _, cc := range m.ColorChanControls {
		if cc.Enabled && cc.LightMask != 0 && cc.AttenuationFn == gxmat.AttenuationSpot {
			return true
		}
	}
	return false
}

func texGenSourceExpr(src gxmat.TexGenSrc) (string, error) {
	switch src {
	case gxmat.SrcPosition:
		return "t_Position", nil
	case gxmat.SrcNormal:
		return "t_Normal", nil
	case gxmat.SrcBinormal, gxmat.SrcTangent:
		return "t_Normal", nil
	case gxmat.SrcColor0:
		return "a_Color0.rgb", nil
	case gxmat.SrcColor1:
		return "a_Color1.rgb", nil
	case gxmat.SrcTex0, gxmat.SrcTex1, gxmat.SrcTex2, gxmat.SrcTex3,
		gxmat.SrcTex4, gxmat.SrcTex5, gxmat.SrcTex6, gxmat.SrcTex7:
		n := int(src) - int(gxmat.SrcTex0)
		return fmt.Sprintf("vec3(a_Tex%d, 1.0)", n), nil
	default:
		return "", unsupportedEnum("texgen.sourceParam", src)
	}
}
