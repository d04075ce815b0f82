package glsl

import (
	"github.com/gogpu/gxcodec/gxmat"
	"github.com/gogpu/gxcodec/internal/codebuf"
)

// writePrelude emits the version directive and the three uniform blocks
// shared by both shader stages (spec §4.7 "Prelude"). GLSL ES leaves the
// fragment stage with no default float precision, so one is declared
// before any float-typed uniform.
func writePrelude(b *codebuf.Buffer, profile Profile, m gxmat.Material, fragment bool) {
	b.Line(profile.versionDirective())
	if fragment && profile == ProfileGLES300 {
		b.Line("precision highp float;")
		b.Line("precision highp sampler2D;")
	}
	b.Line("")

	b.Line("layout(std140) uniform ub_SceneParams {")
	b.Line("    mat4 u_Projection;")
	b.Line("    vec4 u_Misc0;") // .x = LOD bias
	b.Line("};")
	b.Line("")

	if needsLights(m) {
		b.Line("struct Light {")
		b.Line("    vec4 Position;")
		b.Line("    vec4 Direction;")
		b.Line("    vec4 Color;")
		b.Line("    vec4 CosAtten;")
		b.Line("    vec4 DistAtten;")
		b.Line("};")
		b.Line("")
	}

	b.Line("layout(std140) uniform ub_MaterialParams {")
	b.Line("    vec4 u_ColorMatReg[2];")
	b.Line("    vec4 u_ColorAmbReg[2];")
	b.Line("    vec4 u_KonstColor[4];")
	b.Line("    vec4 u_Color[4];")
	b.Line("    mat4x3 u_TexMtx[10];")
	b.Line("    vec4 u_TextureParams[8];") // .xy size, .w LOD bias
	b.Line("    mat4x2 u_IndTexMtx[3];")
	if needsPostMtx(m) {
		b.Line("    mat4x3 u_PostTexMtx[20];")
	}
	if needsLights(m) {
		b.Line("    Light u_LightParams[8];")
	}
	b.Line("};")
	b.Line("")

	b.Line("layout(std140) uniform ub_PacketParams {")
	b.Line("    mat4x3 u_PosMtx[10];")
	b.Line("};")
	b.Line("")

	b.Line("uniform sampler2D u_Texture[8];")
	b.Line("")
}

func needsPostMtx(m gxmat.Material) bool {
	for _, tg := range m.TexGens {
		if tg.PostMatrix != gxmat.PostTexMtxIdentity {
			return true
		}
	}
	return false
}

func needsLights(m gxmat.Material) bool {
	for _, cc := range m.ColorChanControls {
		if cc.Enabled && cc.LightMask != 0 {
			return true
		}
	}
	return false
}
