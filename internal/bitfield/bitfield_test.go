package bitfield

import "testing"

func TestExtractAndPack(t *testing.T) {
	w := uint32(0xABCD1234)
	got := Extract(w, 8, 16)
	if want := uint32(0x12); got != want {
		t.Errorf("Extract(%#x, 8, 16) = %#x, want %#x", w, got, want)
	}

	packed := Pack(w, 8, 16, 0xFF)
	if got := Extract(packed, 8, 16); got != 0xFF {
		t.Errorf("Extract after Pack = %#x, want 0xff", got)
	}
	if got := Extract(packed, 16, 32); got != Extract(w, 16, 32) {
		t.Errorf("Pack disturbed bits outside [8,16): got %#x, want %#x", got, Extract(w, 16, 32))
	}
}

func TestExtract64AndPack64(t *testing.T) {
	w := uint64(0x1122334455667788)
	got := Extract64(w, 32, 40)
	if want := uint64(0x44); got != want {
		t.Errorf("Extract64(%#x, 32, 40) = %#x, want %#x", w, got, want)
	}
	packed := Pack64(w, 32, 40, 0xAA)
	if got := Extract64(packed, 32, 40); got != 0xAA {
		t.Errorf("Extract64 after Pack64 = %#x, want 0xaa", got)
	}
}

func TestBit(t *testing.T) {
	w := uint32(0b1010)
	if Bit(w, 0) {
		t.Error("Bit(0b1010, 0) = true, want false")
	}
	if !Bit(w, 1) {
		t.Error("Bit(0b1010, 1) = false, want true")
	}
}

func TestSignExtend(t *testing.T) {
	cases := []struct {
		v    uint32
		n    uint
		want int32
	}{
		{0x3FF, 11, 1023},
		{0x400, 11, -1024}, // sign bit set in 11-bit field
		{0x7FF, 11, -1},
		{0x000, 11, 0},
	}
	for _, c := range cases {
		if got := SignExtend(c.v, c.n); got != c.want {
			t.Errorf("SignExtend(%#x, %d) = %d, want %d", c.v, c.n, got, c.want)
		}
	}
}

func TestClampAndClampU8(t *testing.T) {
	if got := Clamp(5, 0, 10); got != 5 {
		t.Errorf("Clamp(5,0,10) = %d, want 5", got)
	}
	if got := Clamp(-5, 0, 10); got != 0 {
		t.Errorf("Clamp(-5,0,10) = %d, want 0", got)
	}
	if got := Clamp(15, 0, 10); got != 10 {
		t.Errorf("Clamp(15,0,10) = %d, want 10", got)
	}
	if got := ClampU8(-1); got != 0 {
		t.Errorf("ClampU8(-1) = %d, want 0", got)
	}
	if got := ClampU8(300); got != 255 {
		t.Errorf("ClampU8(300) = %d, want 255", got)
	}
}
