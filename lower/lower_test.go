package lower

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/gogpu/gxcodec/dlist"
	"github.com/gogpu/gxcodec/gxmat"
	"github.com/gogpu/gxcodec/gxregs"
	"github.com/gogpu/gxcodec/lift"
)

func noVertexLen(uint8, uint16) (int, error) { return 0, nil }

// roundTrip lowers m, reads the resulting stream back, and lifts it again,
// mirroring the data flow of spec §2 ("read path" / "write path").
func roundTrip(t *testing.T, m gxmat.Material) (gxmat.Material, []byte) {
	t.Helper()
	data, err := Lower(m)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	cmds, err := dlist.Read(data, len(data), noVertexLen)
	if err != nil {
		t.Fatalf("dlist.Read: %v", err)
	}
	s, warnings := lift.Replay(cmds)
	for _, w := range warnings {
		t.Errorf("unexpected warning from a canonical stream: %s", w)
	}
	got, _, err := lift.Lift(s)
	if err != nil {
		t.Fatalf("lift.Lift: %v", err)
	}
	return got, data
}

// TestStreamRoundTrip is spec §8 testable property 1: lower(lift(lower(m)))
// must reproduce lower(m) byte-for-byte.
func TestStreamRoundTrip(t *testing.T) {
	m := gxmat.Default()
	lifted, data := roundTrip(t, m)

	again, err := Lower(lifted)
	if err != nil {
		t.Fatalf("second Lower: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Fatalf("stream round trip not byte-identical:\nfirst:  % x\nsecond: % x", data, again)
	}
}

// TestStateRoundTrip is spec §8 testable property 2: lift(lower(m)) must
// equal m structurally, for fields the register file actually carries
// (TexMatrices/Sampler names are an asset-container concern, spec §1, and
// are intentionally left zero by Lift).
func TestStateRoundTrip(t *testing.T) {
	m := gxmat.Default()
	lifted, _ := roundTrip(t, m)

	want := m

	if !reflect.DeepEqual(want.CullMode, lifted.CullMode) {
		t.Errorf("CullMode = %v, want %v", lifted.CullMode, want.CullMode)
	}
	if !reflect.DeepEqual(want.ChanData, lifted.ChanData) {
		t.Errorf("ChanData = %+v, want %+v", lifted.ChanData, want.ChanData)
	}
	if !reflect.DeepEqual(want.ColorChanControls, lifted.ColorChanControls) {
		t.Errorf("ColorChanControls = %+v, want %+v", lifted.ColorChanControls, want.ColorChanControls)
	}
	if !reflect.DeepEqual(want.SwapTable, lifted.SwapTable) {
		t.Errorf("SwapTable = %+v, want %+v", lifted.SwapTable, want.SwapTable)
	}
	if len(lifted.Stages) != len(want.Stages) {
		t.Fatalf("Stages count = %d, want %d", len(lifted.Stages), len(want.Stages))
	}
	for i := range want.Stages {
		if !reflect.DeepEqual(want.Stages[i].ColorStage, lifted.Stages[i].ColorStage) {
			t.Errorf("Stages[%d].ColorStage = %+v, want %+v", i, lifted.Stages[i].ColorStage, want.Stages[i].ColorStage)
		}
		if !reflect.DeepEqual(want.Stages[i].AlphaStage, lifted.Stages[i].AlphaStage) {
			t.Errorf("Stages[%d].AlphaStage = %+v, want %+v", i, lifted.Stages[i].AlphaStage, want.Stages[i].AlphaStage)
		}
		if want.Stages[i].TexCoord != lifted.Stages[i].TexCoord || want.Stages[i].TexMap != lifted.Stages[i].TexMap {
			t.Errorf("Stages[%d] TexCoord/TexMap = %d/%d, want %d/%d", i,
				lifted.Stages[i].TexCoord, lifted.Stages[i].TexMap, want.Stages[i].TexCoord, want.Stages[i].TexMap)
		}
	}
	if !reflect.DeepEqual(want.IndirectStages, lifted.IndirectStages) {
		t.Errorf("IndirectStages = %+v, want %+v", lifted.IndirectStages, want.IndirectStages)
	}
	if !reflect.DeepEqual(want.AlphaCompare, lifted.AlphaCompare) {
		t.Errorf("AlphaCompare = %+v, want %+v", lifted.AlphaCompare, want.AlphaCompare)
	}
	if !reflect.DeepEqual(want.ZMode, lifted.ZMode) {
		t.Errorf("ZMode = %+v, want %+v", lifted.ZMode, want.ZMode)
	}
	if !reflect.DeepEqual(want.BlendMode, lifted.BlendMode) {
		t.Errorf("BlendMode = %+v, want %+v", lifted.BlendMode, want.BlendMode)
	}
	if !reflect.DeepEqual(want.DstAlpha, lifted.DstAlpha) {
		t.Errorf("DstAlpha = %+v, want %+v", lifted.DstAlpha, want.DstAlpha)
	}
	if want.XLU != lifted.XLU || want.EarlyZCompare != lifted.EarlyZCompare {
		t.Errorf("XLU/EarlyZCompare = %v/%v, want %v/%v", lifted.XLU, lifted.EarlyZCompare, want.XLU, want.EarlyZCompare)
	}
}

// TestScenarioBAlphaBlendOverOpaque is spec §8 Scenario B: a translucent
// material's blend/z/dst-alpha state round trips through the codec.
func TestScenarioBAlphaBlendOverOpaque(t *testing.T) {
	m := gxmat.Default()
	m.XLU = true
	m.BlendMode = gxmat.BlendMode{
		Type: gxmat.BlendBlend, Source: gxmat.BlendFactorSrcAlpha, Dest: gxmat.BlendFactorInvSrcAlpha, Logic: gxmat.LogicCopy,
	}
	m.ZMode = gxmat.ZMode{Compare: true, Function: gxmat.CompareLEqual, Update: false}

	lifted, _ := roundTrip(t, m)
	if lifted.BlendMode != m.BlendMode {
		t.Errorf("BlendMode = %+v, want %+v", lifted.BlendMode, m.BlendMode)
	}
	if lifted.ZMode != m.ZMode {
		t.Errorf("ZMode = %+v, want %+v", lifted.ZMode, m.ZMode)
	}
	if lifted.XLU != m.XLU {
		t.Errorf("XLU = %v, want %v", lifted.XLU, m.XLU)
	}
}

// TestKonstTriplication is spec §8 testable property 4: a konst register
// write is emitted exactly three times, one per color register.
func TestKonstTriplication(t *testing.T) {
	m := gxmat.Default()
	m.Stages[0].ColorStage.A = gxmat.CCKonst
	m.Stages[0].ColorKonstSel = 2 // selects TevKonstColors[2]
	m.TevKonstColors[2] = gxmat.Color8{R: 10, G: 20, B: 30, A: 40}

	data, err := Lower(m)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	cmds, err := dlist.Read(data, len(data), noVertexLen)
	if err != nil {
		t.Fatalf("dlist.Read: %v", err)
	}

	bgReg := gxregs.BPTevColorBG0 + 2
	raReg := gxregs.BPTevColorRA0 + 2
	var bgWrites, raWrites int
	for _, c := range cmds {
		bp, ok := c.(dlist.BPCommand)
		if !ok {
			continue
		}
		switch bp.Register {
		case bgReg:
			bgWrites++
		case raReg:
			raWrites++
		}
	}
	if bgWrites != 3 {
		t.Errorf("BG writes for konst register 2 = %d, want 3", bgWrites)
	}
	if raWrites != 1 {
		t.Errorf("RA writes for konst register 2 = %d, want 1", raWrites)
	}
}

// TestLowerRejectsInvalidMaterial checks that Lower surfaces a Validate
// failure instead of emitting a corrupt stream (spec §7 "the lowerer
// never recovers").
func TestLowerRejectsInvalidMaterial(t *testing.T) {
	m := gxmat.Default()
	m.Samplers = []gxmat.Sampler{{}} // len(TexGens)==0 != len(Samplers)==1
	if _, err := Lower(m); err == nil {
		t.Fatal("Lower: want error for texGens/samplers mismatch, got nil")
	}
}
