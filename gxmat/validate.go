package gxmat

import (
	"strconv"

	"github.com/gogpu/gxcodec/gxerr"
)

// Validate checks the structural invariants of spec §3.3. It is called by
// lower.Lower before encoding (fatal on write, spec §7) and may be called
// by any caller that wants to check a hand-built Material before use.
func (m Material) Validate() error {
	if len(m.TexGens) != len(m.Samplers) {
		return gxerr.InvariantViolation("texGens.size() != samplers.size()")
	}
	if len(m.TexGens) > 8 {
		return gxerr.InvariantViolation("texGens.size() > 8")
	}
	if len(m.Stages) == 0 || len(m.Stages) > 16 {
		return gxerr.InvariantViolation("stage count out of [1,16]")
	}
	if len(m.IndMatrices) > 3 {
		return gxerr.InvariantViolation("indMatrices.size() > 3")
	}
	if len(m.IndirectStages) > 4 {
		return gxerr.InvariantViolation("indirectStages.size() > 4")
	}

	for i, st := range m.Stages {
		if (st.TexCoord == 0xff) != (st.TexMap == 0xff) {
			return gxerr.InvariantViolation(stageField(i, "texCoord/texMap must both be 0xff or both < 8"))
		}
		if st.TexCoord != 0xff && st.TexCoord >= 8 {
			return gxerr.InvariantViolation(stageField(i, "texCoord >= 8"))
		}
		if st.RasSwap >= 4 || st.TexMapSwap >= 4 {
			return gxerr.InvariantViolation(stageField(i, "rasSwap/texMapSwap >= 4"))
		}
		if sel := st.Indirect.Matrix; sel != IndMtxOff && !sel.Unsupported() {
			idx := int(sel) - int(IndMtx0)
			if idx >= len(m.IndMatrices) {
				return gxerr.InvariantViolation(stageField(i, "indirect matrix index out of range"))
			}
		}
	}

	for _, c := range m.TevColors {
		for _, v := range c {
			if v < -1024 || v > 1023 {
				return gxerr.InvariantViolation("tevColors component out of [-1024,1023]")
			}
		}
	}

	if len(m.IndirectStages) == 0 && hasIndirectReference(m) {
		return gxerr.InvariantViolation("stage references an indirect stage but indirectStages is empty")
	}

	return nil
}

func hasIndirectReference(m Material) bool {
	for _, st := range m.Stages {
		if st.Indirect.IndStageSel != 0 || st.Indirect.Matrix != IndMtxOff {
			return int(st.Indirect.IndStageSel) >= len(m.IndirectStages)
		}
	}
	return false
}

func stageField(i int, what string) string {
	return "stage[" + strconv.Itoa(i) + "]: " + what
}
