package glsl

import "github.com/gogpu/gxcodec/gxmat"

// Generate compiles m into a vertex/fragment GLSL pair for profile (spec
// §4.7, component G). Generate validates m first; every subsequent
// unsupported operand or formula surfaces as a typed error rather than
// silently-wrong shader text (spec §4.7 "The generator is total", §8
// property 6).
func Generate(m gxmat.Material, profile Profile, opts Options) (Shaders, error) {
	if err := m.Validate(); err != nil {
		return Shaders{}, err
	}

	vert, err := generateVertex(m, profile)
	if err != nil {
		return Shaders{}, err
	}
	frag, err := generateFragment(m, profile, opts)
	if err != nil {
		return Shaders{}, err
	}
	return Shaders{Vertex: vert, Fragment: frag}, nil
}
