// Package indmtx implements the indirect-matrix quantizer (spec §4.5,
// component E): the bidirectional mapping between a 2x3 affine transform
// and its packed mantissa/exponent hardware representation.
package indmtx

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/gxcodec/gxerr"
	"github.com/gogpu/gxcodec/gxmat"
)

// ExpBias is added to the computed exponent before storage (spec §4.5).
const ExpBias = 0x11

// ExpMin, ExpMax bound the storable exponent range before ExpBias is added.
const (
	ExpMin = -17
	ExpMax = 46
)

// Quantize encodes a 2x3 affine matrix m into its packed mantissa/exponent
// form (spec §4.5 "Encoding").
func Quantize(m [2][3]float32) gxmat.IndMatrix {
	maxAbs := float32(0)
	for _, row := range m {
		for _, v := range row {
			if a := abs32(v); a > maxAbs {
				maxAbs = a
			}
		}
	}

	e := 0
	scaled := m
	if maxAbs >= 1 {
		for maxElement(scaled) >= 1 {
			scaled = halve(scaled)
			e++
		}
	} else if maxAbs > 0 {
		for maxElement(scaled) < 0.5 && e > ExpMin {
			scaled = double(scaled)
			e--
		}
	}

	biased := int8(e + ExpBias)

	return gxmat.IndMatrix{Matrix: quantizedMantissas(scaled), Scale: biased}
}

// quantizedMantissas rounds each already-scaled element to its signed
// 11-bit mantissa, then immediately decodes it back to float32 as
// mantissa/1024: the Matrix that Quantize returns holds these rounded,
// still-scaled values, and Dequantize multiplies them by 2^(Scale-ExpBias)
// to recover the effective matrix.
func quantizedMantissas(scaled [2][3]float32) [2][3]float32 {
	var out [2][3]float32
	for i := range scaled {
		for j := range scaled[i] {
			m := int32(scaled[i][j] * 1024)
			m &= 0x7FF
			out[i][j] = float32(signExtend11(m)) / 1024
		}
	}
	return out
}

func signExtend11(v int32) int32 {
	v &= 0x7FF
	if v&0x400 != 0 {
		return v - 0x800
	}
	return v
}

// Dequantize recovers the effective 2x3 matrix from an encoded IndMatrix
// (spec §4.5 "Decoding").
func Dequantize(im gxmat.IndMatrix) [2][3]float32 {
	scale := float32(math.Pow(2, float64(im.Scale)-ExpBias))
	var out [2][3]float32
	for i := range im.Matrix {
		for j := range im.Matrix[i] {
			mantissa := int32(im.Matrix[i][j] * 1024)
			out[i][j] = scale * float32(mantissa) / 1024
		}
	}
	return out
}

// RawRows recovers the packed hardware representation of an IndMatrix whose
// Matrix holds the effective matrix (as lift returns it), dividing each
// element by 2^(Scale-ExpBias): three rows of two signed 11-bit mantissas plus a
// 2-bit exponent fragment each (spec §4.3 "IND_MTXA/B/C", §4.5). It is the
// inverse of the row assembly performed during lift (lift.decodeIndMatrix):
// row 0 contributes the exponent's high bits, row 2 the low bits.
func RawRows(im gxmat.IndMatrix) (rows [3][2]int16, frags [3]uint8) {
	scale := float32(math.Pow(2, float64(im.Scale)-ExpBias))
	flat := [6]float32{im.Matrix[0][0], im.Matrix[0][1], im.Matrix[0][2], im.Matrix[1][0], im.Matrix[1][1], im.Matrix[1][2]}
	for row := 0; row < 3; row++ {
		var m [2]int16
		for j := 0; j < 2; j++ {
			v := flat[row*2+j]
			mant := int32(0)
			if scale != 0 {
				mant = int32(roundHalfAway(v / scale * 1024))
			}
			m[j] = int16(signExtend11(mant))
		}
		rows[row] = m
	}
	biased := uint8(im.Scale)
	frags[0] = (biased >> 4) & 0x3
	frags[1] = (biased >> 2) & 0x3
	frags[2] = biased & 0x3
	return rows, frags
}

func roundHalfAway(v float32) float32 {
	if v >= 0 {
		return float32(math.Floor(float64(v) + 0.5))
	}
	return float32(math.Ceil(float64(v) - 0.5))
}

// Decomposition is the best-effort {scale, rotate, translate} breakdown of
// a 2x3 affine matrix, used by UI layers (spec §4.5).
type Decomposition struct {
	Scale     mgl32.Vec2
	Rotate    float32 // radians
	Translate mgl32.Vec2
}

// Decompose recovers {scale.xy, rotate, translate.xy} from m, assuming the
// scale-then-rotate-then-translate composition
//
//	[a b tx]   [sx*cos  -sy*sin  tx]
//	[c d ty] = [sx*sin   sy*cos  ty]
func Decompose(m [2][3]float32) Decomposition {
	a, b, tx := m[0][0], m[0][1], m[0][2]
	c, d, ty := m[1][0], m[1][1], m[1][2]

	sx := float32(math.Hypot(float64(a), float64(c)))
	rotate := float32(math.Atan2(float64(c), float64(a)))

	// sy recovered from (b,d) after removing the rotation: [-sy*sin, sy*cos].
	sy := float32(math.Hypot(float64(b), float64(d)))

	return Decomposition{
		Scale:     mgl32.Vec2{sx, sy},
		Rotate:    rotate,
		Translate: mgl32.Vec2{tx, ty},
	}
}

// Recompose is the inverse of Decompose.
func Recompose(d Decomposition) [2][3]float32 {
	sx, sy := d.Scale[0], d.Scale[1]
	cs, sn := float32(math.Cos(float64(d.Rotate))), float32(math.Sin(float64(d.Rotate)))
	return [2][3]float32{
		{sx * cs, -sy * sn, d.Translate[0]},
		{sx * sn, sy * cs, d.Translate[1]},
	}
}

// CheckRoundTrip compares a decomposed-then-recomposed matrix against the
// original within the spec's two-decimal tolerance. On mismatch it returns
// a *gxerr.Error wrapping gxerr.ErrQuantizerMismatch carrying the
// Jensen-Shannon divergence of the two matrices (spec §4.5, §7); the
// caller is expected to keep the original matrix unchanged and surface the
// warning, not fail the overall lift/lower pass.
func CheckRoundTrip(original [2][3]float32) (Decomposition, error) {
	d := Decompose(original)
	recomposed := Recompose(d)

	div := jsDivergence(original, recomposed)
	const tolerance = 0.01
	if !closeWithin(original, recomposed, tolerance) {
		return d, gxerr.QuantizerMismatch(div)
	}
	return d, nil
}

func closeWithin(a, b [2][3]float32, tol float32) bool {
	for i := range a {
		for j := range a[i] {
			if abs32(round2(a[i][j])-round2(b[i][j])) > tol {
				return false
			}
		}
	}
	return true
}

func round2(v float32) float32 {
	return float32(math.Round(float64(v)*100) / 100)
}

// jsDivergence computes the Jensen-Shannon divergence between the two
// matrices' elements treated as (shifted, normalized) probability
// distributions, per spec §7's QuantizerMismatch error.
func jsDivergence(a, b [2][3]float32) float64 {
	pa := toDistribution(a)
	pb := toDistribution(b)

	m := make([]float64, len(pa))
	for i := range m {
		m[i] = (pa[i] + pb[i]) / 2
	}
	return (klDivergence(pa, m) + klDivergence(pb, m)) / 2
}

func toDistribution(m [2][3]float32) []float64 {
	vals := make([]float64, 0, 6)
	minV := float32(math.MaxFloat32)
	for _, row := range m {
		for _, v := range row {
			if v < minV {
				minV = v
			}
		}
	}
	shift := float64(-minV) + 1e-6
	sum := 0.0
	for _, row := range m {
		for _, v := range row {
			x := float64(v) + shift
			vals = append(vals, x)
			sum += x
		}
	}
	if sum == 0 {
		sum = 1
	}
	for i := range vals {
		vals[i] /= sum
	}
	return vals
}

func klDivergence(p, q []float64) float64 {
	sum := 0.0
	for i := range p {
		if p[i] == 0 {
			continue
		}
		qi := q[i]
		if qi == 0 {
			qi = 1e-12
		}
		sum += p[i] * math.Log(p[i]/qi)
	}
	return sum
}

func maxElement(m [2][3]float32) float32 {
	max := float32(0)
	for _, row := range m {
		for _, v := range row {
			if a := abs32(v); a > max {
				max = a
			}
		}
	}
	return max
}

func halve(m [2][3]float32) [2][3]float32 {
	var out [2][3]float32
	for i := range m {
		for j := range m[i] {
			out[i][j] = m[i][j] / 2
		}
	}
	return out
}

func double(m [2][3]float32) [2][3]float32 {
	var out [2][3]float32
	for i := range m {
		for j := range m[i] {
			out[i][j] = m[i][j] * 2
		}
	}
	return out
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
