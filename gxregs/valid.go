package gxregs

// IsKnownBP reports whether reg is one of the BP addresses this module's
// typed accessors model. Used by the lifter's replay step to distinguish a
// write this module understands from one it must record as a warning and
// skip (spec §7 InvalidRegister, "non-fatal on read").
func IsKnownBP(reg uint8) bool {
	switch {
	case reg == BPGenMode, reg == BPZMode, reg == BPBlendMode,
		reg == BPConstAlpha, reg == BPAlphaCompare, reg == BPIref,
		reg == BPIndTexScale0, reg == BPIndTexScale1:
		return true
	case reg >= BPIndMtxA0 && reg <= indMtxReg(2, 2):
		return true
	case reg >= BPKSel0 && reg < BPKSel0+8:
		return true
	case reg >= BPTref0 && reg < BPTref0+8:
		return true
	case reg >= BPIndCmd0 && reg < BPIndCmd0+16:
		return true
	case reg >= BPTevColorEnv0 && reg < BPTevColorEnv0+16:
		return true
	case reg >= BPTevAlphaEnv0 && reg < BPTevAlphaEnv0+16:
		return true
	case reg >= BPTevColorRA0 && reg < BPTevColorRA0+4:
		return true
	case reg >= BPTevColorBG0 && reg < BPTevColorBG0+4:
		return true
	case reg >= BPStageSwap0 && reg < BPStageSwap0+8:
		return true
	case reg == regBPMask:
		return true
	default:
		return false
	}
}

// IsKnownCP reports whether reg is one of the CP addresses this module
// models (spec §3.1 chanData material/ambient colors).
func IsKnownCP(reg uint8) bool {
	return reg == CPMatColor0 || reg == CPAmbColor0 || reg == CPMatColor1 || reg == CPAmbColor1
}

// IsKnownXF reports whether reg is one of the XF addresses this module
// models (texgens, dual-texgens, channel control).
func IsKnownXF(reg uint16) bool {
	switch {
	case reg >= XFTex0ID && reg < XFTex0ID+8:
		return true
	case reg >= XFDualTex0ID && reg < XFDualTex0ID+8:
		return true
	case reg >= XFChanControl0 && reg < XFChanControl0+4:
		return true
	default:
		return false
	}
}
