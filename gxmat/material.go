// Package gxmat defines the high-level, editable GX material/mesh state
// record (spec §3.1, component H) shared by the lifter, lowerer, TEV
// simplifier, and GLSL generator. It is pure data: no package in this
// repository mutates a Material except through the caller's own code, and
// no record here outlives its owning scene (spec §3.4).
package gxmat

// CullMode selects which primitive winding is culled.
type CullMode uint8

const (
	CullAll CullMode = iota
	CullFront
	CullBack
	CullNone
)

// Color8 is an 8-bit-per-channel RGBA color.
type Color8 struct {
	R, G, B, A uint8
}

// ChanData holds the material/ambient color pair for one color channel.
type ChanData struct {
	MatColor Color8
	AmbColor Color8
}

// ColorSrc selects where a channel's material or ambient color comes from.
type ColorSrc uint8

const (
	SrcVertex ColorSrc = iota
	SrcRegister
)

// DiffuseFn selects the diffuse lighting attenuation curve.
type DiffuseFn uint8

const (
	DiffuseNone DiffuseFn = iota
	DiffuseSign
	DiffuseClamp
)

// AttenuationFn selects the lighting attenuation model.
type AttenuationFn uint8

const (
	AttenuationNone AttenuationFn = iota
	AttenuationSpec
	AttenuationSpot
)

// ChannelControl configures one of the four color channels
// (color0, alpha0, color1, alpha1).
type ChannelControl struct {
	Enabled       bool
	MatSource     ColorSrc
	AmbSource     ColorSrc
	LightMask     uint8
	DiffuseFn     DiffuseFn
	AttenuationFn AttenuationFn
}

// TexGenFunc selects the texture coordinate generation function.
type TexGenFunc uint8

const (
	TexGenMatrix2x4 TexGenFunc = iota
	TexGenMatrix3x4
	TexGenSRTG
	TexGenBump0
	TexGenBump1
	TexGenBump2
	TexGenBump3
	TexGenBump4
	TexGenBump5
	TexGenBump6
	TexGenBump7
)

// TexGenSrc selects the texgen's source parameter (position, normal,
// binormal/tangent, UVn, colorn).
type TexGenSrc uint8

const (
	SrcPosition TexGenSrc = iota
	SrcNormal
	SrcBinormal
	SrcTangent
	SrcColor0
	SrcColor1
	SrcTex0
	SrcTex1
	SrcTex2
	SrcTex3
	SrcTex4
	SrcTex5
	SrcTex6
	SrcTex7
)

// TexMatrixID names one of the ten hardware texture matrix slots, or the
// identity.
type TexMatrixID uint8

const (
	TexMtxIdentity TexMatrixID = iota
	TexMtx0
	TexMtx1
	TexMtx2
	TexMtx3
	TexMtx4
	TexMtx5
	TexMtx6
	TexMtx7
	TexMtx8
	TexMtx9
)

// PostTexMatrixID names one of the twenty post-transform matrix slots, or
// the identity.
type PostTexMatrixID uint8

const (
	PostTexMtxIdentity PostTexMatrixID = iota
	// PostTexMtx1..PostTexMtx20 follow by numeric value; represented
	// directly as PostTexMatrixID(1)..PostTexMatrixID(20) since there are
	// twenty of them (spec §3.1).
)

// TexGen is a single texture-coordinate generator (spec §3.1).
type TexGen struct {
	Func        TexGenFunc
	SourceParam TexGenSrc
	Matrix      TexMatrixID
	Normalize   bool
	PostMatrix  PostTexMatrixID
}

// TexMatrixProjection selects 2x4 vs 3x4 texture matrix shape.
type TexMatrixProjection uint8

const (
	ProjectionST TexMatrixProjection = iota
	ProjectionSTQ
)

// TexMatrixTransformModel selects the authoring tool's matrix-build
// convention.
type TexMatrixTransformModel uint8

const (
	TransformDefault TexMatrixTransformModel = iota
	TransformMaya
	TransformMax
	TransformXSI
)

// TexMatrixMethod selects how a texture matrix is constructed from camera/
// light/projection inputs.
type TexMatrixMethod uint8

const (
	MethodStandard TexMatrixMethod = iota
	MethodEnv
	MethodViewProj
	MethodProj
	MethodEnvLight
	MethodEnvSpec
	MethodManualEnv
)

// TexMatrixOption adjusts remap/translation behavior of a texture matrix.
type TexMatrixOption uint8

const (
	OptionStandard TexMatrixOption = iota
	OptionDontRemap
	OptionKeepTranslation
)

// TexMatrix is a single hardware texture-matrix slot (spec §3.1).
type TexMatrix struct {
	Projection      TexMatrixProjection
	Scale           [2]float32
	Rotate          float32 // radians
	Translate       [2]float32
	EffectMatrix    [16]float32 // row-major 4x4
	TransformModel  TexMatrixTransformModel
	Method          TexMatrixMethod
	Option          TexMatrixOption
	CamIdx, LightIdx int8 // -1 means "none"
}

// WrapMode selects texture coordinate wrapping.
type WrapMode uint8

const (
	WrapClamp WrapMode = iota
	WrapRepeat
	WrapMirror
)

// FilterMode selects a texture minification/magnification filter.
type FilterMode uint8

const (
	FilterNear FilterMode = iota
	FilterLinear
	FilterNearMipNear
	FilterLinMipNear
	FilterNearMipLin
	FilterLinMipLin
)

// MaxAniso selects the maximum anisotropic filtering level.
type MaxAniso uint8

const (
	Aniso1 MaxAniso = iota
	Aniso2
	Aniso4
)

// Sampler is a single texture-sampling unit (spec §3.1). Textures and
// palettes are referenced by name only, never by pointer (spec §3.4).
type Sampler struct {
	Texture   string
	Palette   string
	WrapU     WrapMode
	WrapV     WrapMode
	MinFilter FilterMode
	MagFilter FilterMode
	MaxAniso  MaxAniso
	LODBias   float32
	BiasClamp bool
	EdgeLOD   bool
}

// SwapChannel names one of the four RGBA channels, used by a swap table
// entry to remap a channel.
type SwapChannel uint8

const (
	SwapR SwapChannel = iota
	SwapG
	SwapB
	SwapA
)

// SwapTable is a 4-to-4 channel permutation (spec §3.1, GLOSSARY).
type SwapTable struct {
	R, G, B, A SwapChannel
}

// CompareOp is a generic comparison function used by alpha compare and
// z-mode.
type CompareOp uint8

const (
	CompareNever CompareOp = iota
	CompareLess
	CompareEqual
	CompareLEqual
	CompareGreater
	CompareNEqual
	CompareGEqual
	CompareAlways
)

// AlphaOp combines the two alpha-compare results.
type AlphaOp uint8

const (
	AlphaAnd AlphaOp = iota
	AlphaOr
	AlphaXor
	AlphaXnor
)

// AlphaCompare is the pixel-engine alpha test (spec §3.1).
type AlphaCompare struct {
	CompLeft  CompareOp
	RefLeft   uint8
	Op        AlphaOp
	CompRight CompareOp
	RefRight  uint8
}

// ZMode is the pixel-engine depth test/write configuration.
type ZMode struct {
	Compare  bool
	Function CompareOp
	Update   bool
}

// BlendType selects the pixel-engine blend mode.
type BlendType uint8

const (
	BlendNone BlendType = iota
	BlendBlend
	BlendLogic
	BlendSubtract
)

// BlendFactor is a source/destination blend factor.
type BlendFactor uint8

const (
	BlendFactorZero BlendFactor = iota
	BlendFactorOne
	BlendFactorSrcColor
	BlendFactorInvSrcColor
	BlendFactorSrcAlpha
	BlendFactorInvSrcAlpha
	BlendFactorDstAlpha
	BlendFactorInvDstAlpha
	BlendFactorDstColor
	BlendFactorInvDstColor
)

// LogicOp is a pixel-engine logic-blend operator.
type LogicOp uint8

const (
	LogicClear LogicOp = iota
	LogicAnd
	LogicAndRev
	LogicCopy
	LogicAndInv
	LogicNoop
	LogicXor
	LogicOr
	LogicNor
	LogicEquiv
	LogicInv
	LogicOrRev
	LogicCopyInv
	LogicOrInv
	LogicNand
	LogicSet
)

// BlendMode is the pixel-engine blend configuration.
type BlendMode struct {
	Type   BlendType
	Source BlendFactor
	Dest   BlendFactor
	Logic  LogicOp
}

// DstAlpha is the constant-destination-alpha override.
type DstAlpha struct {
	Enabled bool
	Alpha   uint8
}

// IndTexScale is a power-of-two indirect texcoord scale, one of x1..x256.
type IndTexScale uint8

const (
	IndScale1 IndTexScale = iota
	IndScale2
	IndScale4
	IndScale8
	IndScale16
	IndScale32
	IndScale64
	IndScale128
	IndScale256
)

// IndirectStage configures one indirect-texture lookup (spec §3.1).
type IndirectStage struct {
	ScaleU, ScaleV   IndTexScale
	RefMap, RefCoord uint8
}

// IndMatrix is one 2x3 (stored row-major as 2 rows of 3) affine indirect
// texture matrix plus its quantization exponent (spec §3.1, §4.5).
type IndMatrix struct {
	Matrix [2][3]float32
	Scale  int8 // biased quantization exponent e+0x11 for e in [-17, 46], so 0..63
}

// Material is the complete high-level GX material record (spec §3.1).
type Material struct {
	CullMode CullMode

	ChanData          [2]ChanData
	ColorChanControls [4]ChannelControl // color0, alpha0, color1, alpha1

	TexGens     []TexGen    // up to 8
	TexMatrices [10]TexMatrix
	Samplers    []Sampler // up to 8; len(Samplers) == len(TexGens)

	TevColors      [4][4]int16 // signed 11-bit range, s10.0 (-1024..1023)
	TevKonstColors [4]Color8

	Stages []TevStage // 1..16

	IndMatrices    []IndMatrix // 0..3
	IndirectStages []IndirectStage // 0..4
	SwapTable      [4]SwapTable

	AlphaCompare AlphaCompare
	ZMode        ZMode
	EarlyZCompare bool
	BlendMode    BlendMode
	DstAlpha     DstAlpha

	XLU bool
}

// Default returns the canonical default-constructed material: a single
// passthrough stage, no indirect texturing, back-face culling, and an
// opaque blend mode (original_source's GXMaterial.hpp default; see
// SPEC_FULL.md "Supplemented features" item 6).
func Default() Material {
	m := Material{
		CullMode: CullBack,
		ColorChanControls: [4]ChannelControl{
			{Enabled: false, MatSource: SrcRegister, AmbSource: SrcRegister},
			{Enabled: false, MatSource: SrcRegister, AmbSource: SrcRegister},
			{Enabled: false, MatSource: SrcRegister, AmbSource: SrcRegister},
			{Enabled: false, MatSource: SrcRegister, AmbSource: SrcRegister},
		},
		TexGens:  nil,
		Samplers: nil,
		Stages: []TevStage{
			{
				ColorStage: TevStageColor{A: CCZero, B: CCZero, C: CCZero, D: CCZero, Op: TevOpAdd, Bias: TevBiasZero, Scale: TevScale1, Clamp: true, Dest: TevRegPrev},
				AlphaStage: TevStageAlpha{A: CAZero, B: CAZero, C: CAZero, D: CAZero, Op: TevOpAdd, Bias: TevBiasZero, Scale: TevScale1, Clamp: true, Dest: TevRegPrev},
				TexCoord: 0xff, TexMap: 0xff,
			},
		},
		SwapTable: [4]SwapTable{
			{R: SwapR, G: SwapG, B: SwapB, A: SwapA},
			{R: SwapR, G: SwapG, B: SwapB, A: SwapA},
			{R: SwapR, G: SwapG, B: SwapB, A: SwapA},
			{R: SwapR, G: SwapG, B: SwapB, A: SwapA},
		},
		AlphaCompare: AlphaCompare{CompLeft: CompareAlways, CompRight: CompareAlways, Op: AlphaOr},
		ZMode:        ZMode{Compare: true, Function: CompareLEqual, Update: true},
		BlendMode:    BlendMode{Type: BlendNone, Source: BlendFactorSrcAlpha, Dest: BlendFactorInvSrcAlpha},
	}
	return m
}
