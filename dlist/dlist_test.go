package dlist

import (
	"errors"
	"reflect"
	"testing"

	"github.com/gogpu/gxcodec/gxerr"
)

func noVertexLen(uint8, uint16) (int, error) { return 0, nil }

func TestWriteReadRoundTrip(t *testing.T) {
	cmds := []Command{
		NOPCommand{},
		CPCommand{Register: 0x50, Value: 0x00ABCDEF},
		XFCommand{Register: 0x0104, Values: []uint32{1, 2, 3}},
		IndexedLoadCommand{Slot: SlotB, Index: 7, Len: 3, Addr: 0x123},
		BPCommand{Register: 0xFE, Value: 0x00FFFF00},
		BPCommand{Register: 0x00, Value: 0x00001234},
	}

	data := Write(cmds)
	if len(data)%Alignment != 0 {
		t.Fatalf("Write output length %d is not %d-byte aligned", len(data), Alignment)
	}

	got, err := Read(data, len(data), noVertexLen)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	// Trailing NOP padding is expected; compare the non-padding prefix.
	if len(got) < len(cmds) {
		t.Fatalf("got %d commands, want at least %d", len(got), len(cmds))
	}
	for i, want := range cmds {
		if !reflect.DeepEqual(got[i], want) {
			t.Errorf("command %d: got %#v, want %#v", i, got[i], want)
		}
	}
	for i := len(cmds); i < len(got); i++ {
		if got[i] != Command(NOPCommand{}) {
			t.Errorf("command %d: expected padding NOP, got %#v", i, got[i])
		}
	}
}

func TestBPCommandPacksRegisterInTopByte(t *testing.T) {
	w := NewWriter()
	w.Emit(BPCommand{Register: 0x61, Value: 0x00112233})
	data := w.Bytes()
	if data[0] != TagBP {
		t.Fatalf("tag byte = %#x, want %#x", data[0], TagBP)
	}
	packed := be32(data[1:5])
	if reg := uint8(packed >> 24); reg != 0x61 {
		t.Errorf("register = %#x, want 0x61", reg)
	}
	if val := packed & 0x00FFFFFF; val != 0x00112233 {
		t.Errorf("value = %#x, want 0x00112233", val)
	}
}

func TestAlignBlockPadsToBoundary(t *testing.T) {
	w := NewWriter()
	w.Emit(CPCommand{Register: 1, Value: 2})
	before := len(w.Bytes())
	w.AlignBlock()
	after := len(w.Bytes())
	if after%Alignment != 0 {
		t.Fatalf("aligned length %d is not a multiple of %d", after, Alignment)
	}
	if after-before != (Alignment-before%Alignment)%Alignment {
		t.Errorf("padding added = %d, want exact remainder to next boundary", after-before)
	}
}

func TestAlignBlockNoOpWhenAlreadyAligned(t *testing.T) {
	w := NewWriter()
	for i := 0; i < Alignment; i++ {
		w.Emit(NOPCommand{})
	}
	w.AlignBlock()
	if len(w.Bytes()) != Alignment {
		t.Fatalf("len = %d, want %d (AlignBlock should be a no-op)", len(w.Bytes()), Alignment)
	}
}

func TestReadTruncatedStream(t *testing.T) {
	// A CP tag with only 2 of its required 5 trailing bytes present.
	data := []byte{TagCP, 0x01, 0x02}
	_, err := Read(data, len(data), noVertexLen)
	if !errors.Is(err, gxerr.ErrTruncatedStream) {
		t.Fatalf("err = %v, want ErrTruncatedStream", err)
	}
}

func TestReadUnknownCommand(t *testing.T) {
	data := []byte{0xC5} // above the draw tag range (0x80..0xBF) and not any known command tag
	_, err := Read(data, len(data), noVertexLen)
	if !errors.Is(err, gxerr.ErrUnknownCommand) {
		t.Fatalf("err = %v, want ErrUnknownCommand", err)
	}
}

func TestReadDrawRequiresVertexLenFunc(t *testing.T) {
	data := []byte{TagDrawLo, 0x00, 0x01}
	_, err := Read(data, len(data), nil)
	if !errors.Is(err, gxerr.ErrUnknownCommand) {
		t.Fatalf("err = %v, want ErrUnknownCommand when vlen is nil", err)
	}
}

func TestReadDrawUsesVertexLenFunc(t *testing.T) {
	w := NewWriter()
	w.Emit(DrawCommand{Primitive: 2, VatFmt: 1, VertexCount: 2, VertexData: []byte{1, 2, 3, 4}})
	data := w.Bytes()

	vlen := func(vatFmt uint8, vertexCount uint16) (int, error) {
		if vatFmt != 1 || vertexCount != 2 {
			t.Fatalf("vlen called with vatFmt=%d vertexCount=%d", vatFmt, vertexCount)
		}
		return 4, nil
	}

	cmds, err := Read(data, len(data), vlen)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(cmds) != 1 {
		t.Fatalf("got %d commands, want 1", len(cmds))
	}
	dc, ok := cmds[0].(DrawCommand)
	if !ok {
		t.Fatalf("command type = %T, want DrawCommand", cmds[0])
	}
	if dc.Primitive != 2 || dc.VatFmt != 1 || dc.VertexCount != 2 {
		t.Errorf("got %#v", dc)
	}
	if string(dc.VertexData) != "\x01\x02\x03\x04" {
		t.Errorf("VertexData = %v, want [1 2 3 4]", dc.VertexData)
	}
}

func TestReadRespectsLimit(t *testing.T) {
	w := NewWriter()
	w.Emit(CPCommand{Register: 1, Value: 2})
	w.Emit(CPCommand{Register: 3, Value: 4})
	data := w.Bytes()

	// Limit to just the first command's 6 bytes (tag + reg + 4-byte value).
	cmds, err := Read(data, 6, noVertexLen)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(cmds) != 1 {
		t.Fatalf("got %d commands, want 1", len(cmds))
	}
}

func TestIndexedLoadSlotRoundTrip(t *testing.T) {
	for _, slot := range []IndexedSlot{SlotA, SlotB, SlotC, SlotD} {
		cmd := IndexedLoadCommand{Slot: slot, Index: 42, Len: 4, Addr: 0xFFF}
		data := Write([]Command{cmd})
		got, err := Read(data, len(data), noVertexLen)
		if err != nil {
			t.Fatalf("slot %d: Read: %v", slot, err)
		}
		if got[0] != Command(cmd) {
			t.Errorf("slot %d: got %#v, want %#v", slot, got[0], cmd)
		}
	}
}
