package glsl

import (
	"strings"
	"testing"

	"github.com/gogpu/gxcodec/gxmat"
)

// TestGenerateTotality is spec §8 testable property 6: every material that
// passes lift must generate shaders successfully, across every profile.
func TestGenerateTotality(t *testing.T) {
	m := gxmat.Default()
	for _, p := range []Profile{ProfileGLES300, ProfileGL400, ProfileGL420} {
		shaders, err := Generate(m, p, Options{})
		if err != nil {
			t.Fatalf("profile %d: Generate: %v", p, err)
		}
		if shaders.Vertex == "" || shaders.Fragment == "" {
			t.Fatalf("profile %d: Generate returned empty shader text", p)
		}
	}
}

// TestScenarioAIdentityStage is spec §8 Scenario A: a single passthrough
// stage that samples a texture directly must read the texture and swizzle
// it by swap table 0, without blending in any other operand.
func TestScenarioAIdentityStage(t *testing.T) {
	m := gxmat.Default()
	m.TexGens = []gxmat.TexGen{{Func: gxmat.TexGenMatrix2x4, Matrix: gxmat.TexMtxIdentity}}
	m.Samplers = []gxmat.Sampler{{Texture: "tex0"}}
	m.Stages[0] = gxmat.TevStage{
		ColorStage: gxmat.TevStageColor{
			A: gxmat.CCTexColor, B: gxmat.CCZero, C: gxmat.CCZero, D: gxmat.CCZero,
			Op: gxmat.TevOpAdd, Formula: gxmat.FormulaAdd, Bias: gxmat.TevBiasZero, Scale: gxmat.TevScale1,
			Clamp: true, Dest: gxmat.TevRegPrev,
		},
		AlphaStage: gxmat.TevStageAlpha{
			A: gxmat.CATexAlpha, B: gxmat.CAZero, C: gxmat.CAZero, D: gxmat.CAZero,
			Op: gxmat.TevOpAdd, Formula: gxmat.FormulaAdd, Bias: gxmat.TevBiasZero, Scale: gxmat.TevScale1,
			Clamp: true, Dest: gxmat.TevRegPrev,
		},
		TexCoord: 0, TexMap: 0,
	}

	shaders, err := Generate(m, ProfileGL420, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(shaders.Fragment, "u_Texture[0]") {
		t.Errorf("fragment shader does not sample u_Texture[0]:\n%s", shaders.Fragment)
	}
	if !strings.Contains(shaders.Fragment, "t_ColorPrev") {
		t.Errorf("fragment shader does not write t_ColorPrev:\n%s", shaders.Fragment)
	}
}

// TestScenarioDAlwaysDiscard is spec §8 Scenario D: an always-failing alpha
// compare must emit an unconditional discard.
func TestScenarioDAlwaysDiscard(t *testing.T) {
	m := gxmat.Default()
	m.AlphaCompare = gxmat.AlphaCompare{
		CompLeft: gxmat.CompareNever, RefLeft: 0, Op: gxmat.AlphaOr,
		CompRight: gxmat.CompareNever, RefRight: 0,
	}

	shaders, err := Generate(m, ProfileGL420, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(shaders.Fragment, "if (!((false) || (false))) { discard; }") {
		t.Errorf("fragment shader missing unconditional discard:\n%s", shaders.Fragment)
	}
}

// TestGenerateRejectsInvalidMaterial checks Generate surfaces Validate
// failures rather than emitting shader text for malformed input.
func TestGenerateRejectsInvalidMaterial(t *testing.T) {
	m := gxmat.Default()
	m.Stages = nil
	if _, err := Generate(m, ProfileGL420, Options{}); err == nil {
		t.Fatal("Generate: want error for empty stage list, got nil")
	}
}

// TestGLESFragmentDeclaresPrecision checks the ES profile's fragment
// prelude carries a default float precision, which GLSL ES requires before
// any float-typed declaration.
func TestGLESFragmentDeclaresPrecision(t *testing.T) {
	shaders, err := Generate(gxmat.Default(), ProfileGLES300, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(shaders.Fragment, "precision highp float;") {
		t.Errorf("GLES300 fragment shader missing precision declaration:\n%s", shaders.Fragment)
	}
	if strings.Contains(shaders.Vertex, "precision highp float;") {
		t.Errorf("vertex shader should rely on the stage's default precision:\n%s", shaders.Vertex)
	}
}

// TestEarlyFragmentTestsPerProfile checks layout(early_fragment_tests) is
// emitted only where the language supports it (GL 4.2).
func TestEarlyFragmentTestsPerProfile(t *testing.T) {
	m := gxmat.Default()
	m.EarlyZCompare = true

	for _, tc := range []struct {
		profile Profile
		want    bool
	}{
		{ProfileGLES300, false},
		{ProfileGL400, false},
		{ProfileGL420, true},
	} {
		shaders, err := Generate(m, tc.profile, Options{})
		if err != nil {
			t.Fatalf("profile %d: Generate: %v", tc.profile, err)
		}
		got := strings.Contains(shaders.Fragment, "layout(early_fragment_tests) in;")
		if got != tc.want {
			t.Errorf("profile %d: early_fragment_tests emitted = %v, want %v", tc.profile, got, tc.want)
		}
	}
}

// TestLightStructDeclaredOutsideUniformBlock checks the Light struct is a
// standalone declaration preceding ub_MaterialParams (struct definitions
// inside an interface block are not valid GLSL).
func TestLightStructDeclaredOutsideUniformBlock(t *testing.T) {
	m := gxmat.Default()
	m.ColorChanControls[0].Enabled = true
	m.ColorChanControls[0].LightMask = 0x01

	shaders, err := Generate(m, ProfileGL420, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	structIdx := strings.Index(shaders.Vertex, "struct Light {")
	blockIdx := strings.Index(shaders.Vertex, "uniform ub_MaterialParams {")
	if structIdx < 0 || blockIdx < 0 {
		t.Fatalf("vertex shader missing Light struct or material block:\n%s", shaders.Vertex)
	}
	if structIdx > blockIdx {
		t.Errorf("Light struct declared inside/after the uniform block (struct at %d, block at %d)", structIdx, blockIdx)
	}
	if !strings.Contains(shaders.Vertex, "u_LightParams[8];") {
		t.Errorf("vertex shader missing u_LightParams array:\n%s", shaders.Vertex)
	}
}

// TestComparisonStageRespectsClamp checks a comparison-formula stage still
// routes its result through TevSaturate when the stage sets clamp.
func TestComparisonStageRespectsClamp(t *testing.T) {
	m := gxmat.Default()
	m.Stages[0].ColorStage = gxmat.TevStageColor{
		A: gxmat.CCRasColor, B: gxmat.CCC0Color, C: gxmat.CCC1Color, D: gxmat.CCZero,
		Formula: gxmat.FormulaCompRGB8GT, Bias: gxmat.TevBiasZero, Scale: gxmat.TevScale1,
		Clamp: true, Dest: gxmat.TevRegPrev,
	}

	shaders, err := Generate(m, ProfileGL420, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(shaders.Fragment, "TevPerCompGT") {
		t.Errorf("fragment shader missing per-component comparison:\n%s", shaders.Fragment)
	}
	if !strings.Contains(shaders.Fragment, "t_StageColor0 = TevSaturate(") {
		t.Errorf("clamped comparison stage not routed through TevSaturate:\n%s", shaders.Fragment)
	}
}

// TestVisualizePrimIDReplacesOutput exercises the debug "visualize
// primitive-id" mode described in spec §4.7's fragment-stage summary.
func TestVisualizePrimIDReplacesOutput(t *testing.T) {
	m := gxmat.Default()
	shaders, err := Generate(m, ProfileGL420, Options{VisualizePrimID: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(shaders.Fragment, "v_PrimID") {
		t.Errorf("fragment shader does not reference v_PrimID when VisualizePrimID is set:\n%s", shaders.Fragment)
	}
}
