package dlist

import "github.com/gogpu/gxcodec/gxlog"

// Alignment is the byte boundary every emitted block is padded to with NOP
// bytes (spec §4.2, §4.4 "Final alignment").
const Alignment = 32

// Writer emits a canonical display-list byte stream (spec §4.2, §6.1).
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the bytes written so far, without alignment padding.
func (w *Writer) Bytes() []byte { return w.buf }

// Emit appends one command's encoding to the stream.
func (w *Writer) Emit(cmd Command) {
	switch c := cmd.(type) {
	case NOPCommand:
		w.buf = append(w.buf, TagNOP)
	case CPCommand:
		w.buf = append(w.buf, TagCP, c.Register)
		w.buf = appendBE32(w.buf, c.Value)
	case XFCommand:
		w.buf = append(w.buf, TagXF)
		w.buf = appendBE16(w.buf, uint16(len(c.Values)-1))
		w.buf = appendBE16(w.buf, c.Register)
		for _, v := range c.Values {
			w.buf = appendBE32(w.buf, v)
		}
	case IndexedLoadCommand:
		w.buf = append(w.buf, c.Slot.tag())
		packed := uint32(c.Index)<<16 | uint32(c.Len-1)<<12 | uint32(c.Addr&0xFFF)
		w.buf = appendBE32(w.buf, packed)
	case BPCommand:
		w.buf = append(w.buf, TagBP)
		packed := uint32(c.Register)<<24 | (c.Value & 0x00FFFFFF)
		w.buf = appendBE32(w.buf, packed)
	case DrawCommand:
		tag := TagDrawLo | (c.Primitive&0x7)<<3 | (c.VatFmt & 0x7)
		w.buf = append(w.buf, tag)
		w.buf = appendBE16(w.buf, c.VertexCount)
		w.buf = append(w.buf, c.VertexData...)
	}
}

// EmitAll is a convenience wrapper around Emit for a whole command slice.
func (w *Writer) EmitAll(cmds []Command) {
	for _, c := range cmds {
		w.Emit(c)
	}
}

// AlignBlock pads the stream up to the next Alignment-byte boundary with
// NOP bytes (spec §4.2, §4.4). It is a no-op if already aligned.
func (w *Writer) AlignBlock() {
	pad := (Alignment - len(w.buf)%Alignment) % Alignment
	if pad == 0 {
		return
	}
	for i := 0; i < pad; i++ {
		w.buf = append(w.buf, TagNOP)
	}
	gxlog.Logger().Debug("dlist.AlignBlock", "padding", pad)
}

func appendBE16(b []byte, v uint16) []byte {
	return append(b, byte(v>>8), byte(v))
}

func appendBE32(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// Write is a one-shot convenience: emit every command, then align.
func Write(cmds []Command) []byte {
	w := NewWriter()
	w.EmitAll(cmds)
	w.AlignBlock()
	return w.Bytes()
}
