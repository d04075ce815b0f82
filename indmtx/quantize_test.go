package indmtx

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/gxcodec/gxerr"
)

func approxEqualMatrix(t *testing.T, got, want [2][3]float32, tol float32, msg string) {
	t.Helper()
	for i := range got {
		for j := range got[i] {
			if abs32(got[i][j]-want[i][j]) > tol {
				t.Errorf("%s: [%d][%d] = %v, want %v (tol %v)", msg, i, j, got[i][j], want[i][j], tol)
			}
		}
	}
}

func TestQuantizeDequantizeRoundTrip(t *testing.T) {
	cases := [][2][3]float32{
		{{0.5, 0, 0}, {0, 0.5, 0}},
		{{1.41421356, -0.35355339, 0.125}, {1.41421356, 0.35355339, -0.25}},
		{{0.01, 0.02, -0.03}, {0.04, -0.05, 0.06}},
		{{0, 0, 0}, {0, 0, 0}},
	}
	for i, m := range cases {
		q := Quantize(m)
		back := Dequantize(q)
		approxEqualMatrix(t, back, m, 0.01, "case")
		_ = i
	}
}

func TestQuantizeScaleRotateTranslate(t *testing.T) {
	// Scenario: scale=(2.0,0.5), rotate=pi/4, translate=(0.125,-0.25).
	d := Decomposition{Scale: mgl32.Vec2{2.0, 0.5}, Rotate: float32(math.Pi / 4), Translate: mgl32.Vec2{0.125, -0.25}}
	m := Recompose(d)

	q := Quantize(m)
	if q.Scale != 0x12 {
		t.Fatalf("biased exponent = %#x, want 0x12", uint8(q.Scale))
	}

	back := Dequantize(q)
	approxEqualMatrix(t, back, m, 0.01, "dequantize")
}

func TestRawRowsPacksThreeRowsAndExponentFragments(t *testing.T) {
	m := [2][3]float32{{0.5, 0.25, -0.125}, {0.1, -0.2, 0.3}}
	q := Quantize(m)

	rows, frags := RawRows(q)
	if len(rows) != 3 || len(frags) != 3 {
		t.Fatalf("RawRows returned %d rows, %d frags, want 3/3", len(rows), len(frags))
	}

	biased := uint8(q.Scale)
	wantFrags := [3]uint8{(biased >> 4) & 0x3, (biased >> 2) & 0x3, biased & 0x3}
	if frags != wantFrags {
		t.Errorf("frags = %v, want %v", frags, wantFrags)
	}

	// Mantissas must fit in 11 signed bits.
	for r, row := range rows {
		for j, v := range row {
			if v < -1024 || v > 1023 {
				t.Errorf("row %d[%d] mantissa %d out of signed-11-bit range", r, j, v)
			}
		}
	}
}

func TestDecomposeRecomposeRoundTrip(t *testing.T) {
	d := Decomposition{Scale: mgl32.Vec2{1.5, 0.75}, Rotate: 0.3, Translate: mgl32.Vec2{1, -2}}
	m := Recompose(d)
	got, err := CheckRoundTrip(m)
	if err != nil {
		t.Fatalf("CheckRoundTrip: %v", err)
	}
	if abs32(got.Scale[0]-d.Scale[0]) > 0.01 || abs32(got.Scale[1]-d.Scale[1]) > 0.01 {
		t.Errorf("Scale = %v, want %v", got.Scale, d.Scale)
	}
	if abs32(got.Rotate-d.Rotate) > 0.01 {
		t.Errorf("Rotate = %v, want %v", got.Rotate, d.Rotate)
	}
	if abs32(got.Translate[0]-d.Translate[0]) > 0.01 || abs32(got.Translate[1]-d.Translate[1]) > 0.01 {
		t.Errorf("Translate = %v, want %v", got.Translate, d.Translate)
	}
}

func TestCheckRoundTripReportsMismatchForShear(t *testing.T) {
	// A pure shear cannot be represented by scale/rotate/translate alone.
	shear := [2][3]float32{{1, 1, 0}, {0, 1, 0}}
	_, err := CheckRoundTrip(shear)
	if err == nil {
		t.Fatal("expected a mismatch error for a shear matrix, got nil")
	}
	if !errors.Is(err, gxerr.ErrQuantizerMismatch) {
		t.Errorf("err = %v, want wrapping ErrQuantizerMismatch", err)
	}
}
