package gxmat

// ColorCombineSel selects a TEV color sub-stage operand (A, B, C, or D).
// Named ColorSelChanApi in the original lifter (spec §4.3). Alpha
// sub-stage operands use the separate AlphaCombineSel enum below.
type ColorCombineSel uint8

const (
	CCTexColor ColorCombineSel = iota
	CCTexAlpha
	CCRasColor
	CCRasAlpha
	CCOne
	CCHalf
	CCKonst
	CCZero
	CCPrevColor
	CCPrevAlphaAll
	CCC0Color
	CCC0AlphaAll
	CCC1Color
	CCC1AlphaAll
	CCC2Color
	CCC2AlphaAll
)

// AlphaCombineSel selects a TEV alpha sub-stage operand.
type AlphaCombineSel uint8

const (
	CATexAlpha AlphaCombineSel = iota
	CARasAlpha
	CAKonst
	CAZero
	CAPrevAlpha
	CAC0Alpha
	CAC1Alpha
	CAC2Alpha
)

// TevOp selects the base combine formula (mix(A,B,C)+D, add or subtract).
type TevOp uint8

const (
	TevOpAdd TevOp = iota
	TevOpSub
)

// TevFormula generalizes TevOp with the comparison formulas that share the
// same register field via the bias==3 escape (spec §4.3).
type TevFormula uint8

const (
	FormulaAdd TevFormula = iota
	FormulaSub
	FormulaCompR8GT
	FormulaCompR8EQ
	FormulaCompGR16GT
	FormulaCompGR16EQ
	FormulaCompBGR24GT
	FormulaCompBGR24EQ
	FormulaCompRGB8GT
	FormulaCompRGB8EQ
)

// IsComparison reports whether f is one of the comp_* formulas.
func (f TevFormula) IsComparison() bool { return f >= FormulaCompR8GT }

// TevBias is the post-combine bias.
type TevBias uint8

const (
	TevBiasZero TevBias = iota
	TevBiasAddHalf
	TevBiasSubHalf
)

// TevScale is the post-combine/bias scale.
type TevScale uint8

const (
	TevScale1 TevScale = iota
	TevScale2
	TevScale4
	TevScaleHalf
)

// TevRegister names one of the four TEV destination/operand registers
// (previous + 3 general-purpose color regs).
type TevRegister uint8

const (
	TevRegPrev TevRegister = iota
	TevReg0
	TevReg1
	TevReg2
)

// TevStageColor is the color sub-stage of one TEV stage.
type TevStageColor struct {
	A, B, C, D ColorCombineSel
	Formula    TevFormula // FormulaAdd/FormulaSub or a comp_* formula
	Op         TevOp      // meaningful only when Formula is Add/Sub
	Bias       TevBias
	Scale      TevScale
	Clamp      bool
	Dest       TevRegister
}

// TevStageAlpha is the alpha sub-stage of one TEV stage.
type TevStageAlpha struct {
	A, B, C, D AlphaCombineSel
	Formula    TevFormula
	Op         TevOp
	Bias       TevBias
	Scale      TevScale
	Clamp      bool
	Dest       TevRegister
}

// RasColorChannel names which rasterized channel a stage reads.
type RasColorChannel uint8

const (
	RasColor0 RasColorChannel = iota
	RasColor1
	RasAlphaBump
	RasAlphaBumpN
	RasColorZero
	RasColorNull RasColorChannel = 0xff
)

// IndBias selects which of S/T/U get the indirect bias added.
type IndBias uint8

const (
	IndBiasNone IndBias = iota
	IndBiasS
	IndBiasT
	IndBiasU
	IndBiasST
	IndBiasSU
	IndBiasTU
	IndBiasSTU
)

// IndMatrixSel selects which indirect matrix (or none) a stage applies,
// including the texcoord-scale variants the spec declares Unsupported
// (spec §9 Open Questions).
type IndMatrixSel uint8

const (
	IndMtxOff IndMatrixSel = iota
	IndMtx0
	IndMtx1
	IndMtx2
	IndMtxS0
	IndMtxS1
	IndMtxS2
	IndMtxT0
	IndMtxT1
	IndMtxT2
)

// Unsupported reports whether sel is one of the texcoord-scale variants
// this module declares Unsupported.
func (sel IndMatrixSel) Unsupported() bool {
	return sel >= IndMtxS0
}

// IndWrap selects the wrap period applied to an indirect texcoord
// component, or "off" (no wrap).
type IndWrap uint8

const (
	IndWrapOff IndWrap = iota
	IndWrap0
	IndWrap16
	IndWrap32
	IndWrap64
	IndWrap128
	IndWrap256
)

// IndAlphaSel selects which indirect coordinate component feeds alpha.
type IndAlphaSel uint8

const (
	IndAlphaOff IndAlphaSel = iota
	IndAlphaS
	IndAlphaT
	IndAlphaU
)

// TevIndirect is the indirect sub-stage referenced by a TEV stage
// (spec §3.2).
type TevIndirect struct {
	IndStageSel uint8
	Format      uint8 // always 8-bit per spec §7 InvalidEnum note
	Bias        IndBias
	Matrix      IndMatrixSel
	WrapU       IndWrap
	WrapV       IndWrap
	AddPrev     bool
	UTCLod      bool
	Alpha       IndAlphaSel
}

// TevStage is one instruction of the TEV combiner (spec §3.2).
type TevStage struct {
	ColorStage TevStageColor
	AlphaStage TevStageAlpha

	TexCoord uint8 // 0xff means "no texture"
	TexMap   uint8 // 0xff means "no texture"

	RasOrder   RasColorChannel
	RasSwap    uint8 // index into Material.SwapTable, < 4
	TexMapSwap uint8 // index into Material.SwapTable, < 4

	// ColorKonstSel/AlphaKonstSel select which constant feeds a CCKonst/
	// CAKonst operand: 0..3 index Material.TevKonstColors, 4..31 name one
	// of hardware's fixed ratio constants (1, 7/8, 3/4, ... 1/8); this
	// module passes the raw selector through rather than naming all of
	// them (spec §4.3 KSEL "constantSelection").
	ColorKonstSel uint8
	AlphaKonstSel uint8

	Indirect TevIndirect
}

// HasTexture reports whether the stage samples a texture (spec §3.3:
// TexCoord and TexMap are either both 0xff or both < 8).
func (s TevStage) HasTexture() bool {
	return s.TexCoord != 0xff && s.TexMap != 0xff
}
