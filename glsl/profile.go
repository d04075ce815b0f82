// Package glsl implements the GLSL shader generator (spec §4.7,
// component G): a pure function from a [gxmat.Material] to a vertex/
// fragment GLSL source pair implementing the fixed-function GX pipeline
// (spec §1, §4.7). Every unsupported operand or formula produces a typed
// error; the generator never emits silently-wrong shader text (spec §4.7
// "The generator is total").
package glsl

// Profile selects the GLSL version the prelude targets (spec §4.7
// "Prelude"). This module never inspects a live GL context (spec §1
// Non-goals); callers supply the profile explicitly.
type Profile uint8

const (
	ProfileGLES300 Profile = iota
	ProfileGL400
	ProfileGL420
)

func (p Profile) versionDirective() string {
	switch p {
	case ProfileGLES300:
		return "#version 300 es"
	case ProfileGL400:
		return "#version 400"
	default:
		return "#version 420"
	}
}

// supportsEarlyFragmentTests reports whether the profile can express
// layout(early_fragment_tests) (spec §4.7 "earlyZComparison", "where
// supported"): core since GL 4.2, absent from GL 4.0 and ES 3.0.
func (p Profile) supportsEarlyFragmentTests() bool {
	return p == ProfileGL420
}

// Options adjusts generator output without changing the fixed-function
// semantics (spec SPEC_FULL.md supplemented feature 5).
type Options struct {
	// Annotate emits a `// stage N` comment above each TEV stage's
	// GLSL, mirroring the original's debug-build behavior
	// (DLPixShader.cpp; SPEC_FULL.md supplemented feature 5).
	Annotate bool
	// VisualizePrimID replaces the fragment color with v_PrimID, a
	// debugging aid described in spec §4.7's fragment-stage summary.
	VisualizePrimID bool
}

// Shaders is the generator's output: a matching vertex/fragment pair
// sharing the common prelude (spec §4.7).
type Shaders struct {
	Vertex   string
	Fragment string
}
