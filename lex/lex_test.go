package lex

import (
	"bytes"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	parts := &Parts{Sections: []Section{
		{Magic: IdentFeat, Data: []byte{0x01, 0x02, 0x03, 0x04}},
		{Magic: IdentSet1, Data: []byte{}},
		{Magic: IdentCann, Data: []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x00, 0x11}},
	}}

	data, err := Write(parts)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Sections) != len(parts.Sections) {
		t.Fatalf("got %d sections, want %d", len(got.Sections), len(parts.Sections))
	}
	for i, want := range parts.Sections {
		if got.Sections[i].Magic != want.Magic {
			t.Errorf("section %d: magic = %#x, want %#x", i, got.Sections[i].Magic, want.Magic)
		}
		if !bytes.Equal(got.Sections[i].Data, want.Data) {
			t.Errorf("section %d: data = % x, want % x", i, got.Sections[i].Data, want.Data)
		}
	}

	again, err := Write(got)
	if err != nil {
		t.Fatalf("second Write: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Fatalf("re-written file not byte-identical:\nfirst:  % x\nsecond: % x", data, again)
	}
}

func TestWriteRejectsUnalignedSection(t *testing.T) {
	parts := &Parts{Sections: []Section{{Magic: IdentFeat, Data: []byte{0x01, 0x02, 0x03}}}}
	if _, err := Write(parts); err == nil {
		t.Fatal("Write: want error for unaligned section data, got nil")
	}
}

func TestEmptyChainRoundTrip(t *testing.T) {
	data, err := Write(&Parts{})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Sections) != 0 {
		t.Fatalf("got %d sections, want 0", len(got.Sections))
	}
}

func TestReaderMatchesRead(t *testing.T) {
	parts := &Parts{Sections: []Section{
		{Magic: IdentFeat, Data: []byte{1, 2, 3, 4}},
		{Magic: IdentHipt, Data: []byte{5, 6, 7, 8}},
	}}
	data, err := Write(parts)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	r, err := NewReader(data)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	var got []Section
	for {
		s, ok, err := r.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, Section{Magic: s.Magic, Data: append([]byte(nil), s.Data...)})
	}
	if len(got) != len(parts.Sections) {
		t.Fatalf("got %d sections, want %d", len(got), len(parts.Sections))
	}
	for i, want := range parts.Sections {
		if got[i].Magic != want.Magic || !bytes.Equal(got[i].Data, want.Data) {
			t.Errorf("section %d = %+v, want %+v", i, got[i], want)
		}
	}

	// Next keeps returning the same terminal result after it ends.
	_, ok, err := r.Next()
	if ok || err != nil {
		t.Fatalf("Next after end: ok=%v err=%v, want false/nil", ok, err)
	}
}
