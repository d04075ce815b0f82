package gxmat

import (
	"errors"
	"testing"

	"github.com/gogpu/gxcodec/gxerr"
)

func TestDefaultMaterialValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate(): %v", err)
	}
}

func TestValidateRejectsTexGenSamplerMismatch(t *testing.T) {
	m := Default()
	m.TexGens = []TexGen{{}}
	if err := m.Validate(); !errors.Is(err, gxerr.ErrInvariantViolation) {
		t.Fatalf("Validate() = %v, want ErrInvariantViolation", err)
	}
}

func TestValidateRejectsEmptyStages(t *testing.T) {
	m := Default()
	m.Stages = nil
	if err := m.Validate(); !errors.Is(err, gxerr.ErrInvariantViolation) {
		t.Fatalf("Validate() = %v, want ErrInvariantViolation", err)
	}
}

func TestValidateRejectsTooManyStages(t *testing.T) {
	m := Default()
	stages := make([]TevStage, 17)
	for i := range stages {
		stages[i] = m.Stages[0]
	}
	m.Stages = stages
	if err := m.Validate(); !errors.Is(err, gxerr.ErrInvariantViolation) {
		t.Fatalf("Validate() = %v, want ErrInvariantViolation", err)
	}
}

func TestValidateRejectsTexCoordWithoutTexMap(t *testing.T) {
	m := Default()
	m.Stages[0].TexCoord = 0
	m.Stages[0].TexMap = 0xff
	if err := m.Validate(); !errors.Is(err, gxerr.ErrInvariantViolation) {
		t.Fatalf("Validate() = %v, want ErrInvariantViolation", err)
	}
}

func TestValidateRejectsSwapIndexOutOfRange(t *testing.T) {
	m := Default()
	m.Stages[0].RasSwap = 4
	if err := m.Validate(); !errors.Is(err, gxerr.ErrInvariantViolation) {
		t.Fatalf("Validate() = %v, want ErrInvariantViolation", err)
	}
}

func TestValidateRejectsTevColorOutOfRange(t *testing.T) {
	m := Default()
	m.TevColors[0][0] = 1024
	if err := m.Validate(); !errors.Is(err, gxerr.ErrInvariantViolation) {
		t.Fatalf("Validate() = %v, want ErrInvariantViolation", err)
	}

	m2 := Default()
	m2.TevColors[0][0] = -1025
	if err := m2.Validate(); !errors.Is(err, gxerr.ErrInvariantViolation) {
		t.Fatalf("Validate() = %v, want ErrInvariantViolation", err)
	}
}

func TestValidateRejectsOutOfRangeIndirectMatrixReference(t *testing.T) {
	m := Default()
	m.Stages[0].Indirect.Matrix = IndMtx0 // references IndMatrices[0], but none present
	if err := m.Validate(); !errors.Is(err, gxerr.ErrInvariantViolation) {
		t.Fatalf("Validate() = %v, want ErrInvariantViolation", err)
	}
}

func TestUnsupportedIndMatrixSelection(t *testing.T) {
	for _, sel := range []IndMatrixSel{IndMtxS0, IndMtxS1, IndMtxS2, IndMtxT0, IndMtxT1, IndMtxT2} {
		if !sel.Unsupported() {
			t.Errorf("IndMatrixSel(%d).Unsupported() = false, want true", sel)
		}
	}
	for _, sel := range []IndMatrixSel{IndMtxOff, IndMtx0, IndMtx1, IndMtx2} {
		if sel.Unsupported() {
			t.Errorf("IndMatrixSel(%d).Unsupported() = true, want false", sel)
		}
	}
}

func TestHasTexture(t *testing.T) {
	st := TevStage{TexCoord: 0xff, TexMap: 0xff}
	if st.HasTexture() {
		t.Error("HasTexture() = true for 0xff/0xff, want false")
	}
	st.TexCoord, st.TexMap = 0, 0
	if !st.HasTexture() {
		t.Error("HasTexture() = false for 0/0, want true")
	}
}
