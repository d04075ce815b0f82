// Package lex implements the LEX container format (spec §6.4): a
// 'LE-X' magic header followed by a chain of tagged, 4-byte-aligned
// sections. Read and Reader stop at a zero magic or at the end of the
// chain; Write emits no zero-magic terminator. Grounded on
// librii/lettuce/LettuceLEX.hpp's LEXParts model.
package lex

import (
	"encoding/binary"

	"github.com/gogpu/gxcodec/gxerr"
)

const (
	magic    = 0x4C452D58 // 'LE-X'
	revMajor = 1
	revMinor = 0
)

// Identifier names the well-known section tags librii/lettuce reserves.
type Identifier uint32

const (
	IdentInvalidated Identifier = 0x2d2d2d2d // '----'
	IdentFeat        Identifier = 0x46454154 // 'FEAT'
	IdentSet1        Identifier = 0x53455431 // 'SET1'
	IdentCann        Identifier = 0x43414e4e // 'CANN'
	IdentHipt        Identifier = 0x48495054 // 'HIPT'
	IdentTest        Identifier = 0x54455354 // 'TEST'
)

// Section is one tagged chunk of the chain.
type Section struct {
	Magic Identifier
	Data  []byte
}

// Parts is the full decoded partitioning of a LEX file.
type Parts struct {
	Sections []Section
}

// header mirrors LettuceLEX.cpp's LEXHeader (16 bytes: magic, rev_major,
// rev_minor, filesize, first_section).
type header struct {
	magic        uint32
	revMajor     uint16
	revMinor     uint16
	filesize     uint32
	firstSection uint32
}

const headerSize = 16

func readHeader(data []byte) (header, error) {
	if len(data) < headerSize {
		return header{}, gxerr.Truncated(len(data))
	}
	h := header{
		magic:        binary.BigEndian.Uint32(data[0:4]),
		revMajor:     binary.BigEndian.Uint16(data[4:6]),
		revMinor:     binary.BigEndian.Uint16(data[6:8]),
		filesize:     binary.BigEndian.Uint32(data[8:12]),
		firstSection: binary.BigEndian.Uint32(data[12:16]),
	}
	if h.magic != magic {
		return header{}, gxerr.New(gxerr.ErrInvalidEnum, "lex.magic", h.magic, "")
	}
	if h.revMajor != revMajor {
		return header{}, gxerr.New(gxerr.ErrInvalidEnum, "lex.revMajor", h.revMajor, "")
	}
	if h.filesize&3 != 0 || h.firstSection&3 != 0 {
		return header{}, gxerr.New(gxerr.ErrInvariantViolation, "lex.alignment", nil, "filesize/first_section must be 4-byte aligned")
	}
	if int(h.filesize) > len(data) || h.firstSection < headerSize || int(h.firstSection) > int(h.filesize) {
		return header{}, gxerr.Truncated(int(h.filesize))
	}
	return h, nil
}

// Read decodes data into its section chain (spec §6.4).
func Read(data []byte) (*Parts, error) {
	h, err := readHeader(data)
	if err != nil {
		return nil, err
	}
	chain := data[headerSize:h.filesize]

	var parts Parts
	it := 0
	for it < len(chain) {
		if len(chain)-it < 8 {
			return nil, gxerr.Truncated(it)
		}
		m := binary.BigEndian.Uint32(chain[it : it+4])
		if m == 0 {
			break
		}
		size := binary.BigEndian.Uint32(chain[it+4 : it+8])
		if size&3 != 0 || it+8+int(size) > len(chain) {
			return nil, gxerr.New(gxerr.ErrInvariantViolation, "lex.section.size", size, "")
		}
		parts.Sections = append(parts.Sections, Section{
			Magic: Identifier(m),
			Data:  append([]byte(nil), chain[it+8:it+8+int(size)]...),
		})
		it += 8 + int(size)
	}
	return &parts, nil
}

// Write serializes parts back into a LEX file (spec §6.4). Every section's
// Data length must already be a multiple of 4; Write does not pad it.
func Write(parts *Parts) ([]byte, error) {
	out := make([]byte, headerSize)
	for _, s := range parts.Sections {
		if len(s.Data)&3 != 0 {
			return nil, gxerr.New(gxerr.ErrInvariantViolation, "lex.section.size", len(s.Data), "section data must be 4-byte aligned")
		}
		var head [8]byte
		binary.BigEndian.PutUint32(head[0:4], uint32(s.Magic))
		binary.BigEndian.PutUint32(head[4:8], uint32(len(s.Data)))
		out = append(out, head[:]...)
		out = append(out, s.Data...)
	}

	binary.BigEndian.PutUint32(out[0:4], magic)
	binary.BigEndian.PutUint16(out[4:6], revMajor)
	binary.BigEndian.PutUint16(out[6:8], revMinor)
	binary.BigEndian.PutUint32(out[8:12], uint32(len(out)))
	binary.BigEndian.PutUint32(out[12:16], headerSize)
	return out, nil
}

// Reader is a resumable, zero-copy iterator over a LEX section chain
// (SPEC_FULL.md supplemented feature: resumable iteration), for callers
// that want to stop scanning once they find the section they need instead
// of decoding the whole chain via Read.
type Reader struct {
	chain []byte
	pos   int
	err   error
	done  bool
}

// NewReader validates the header and returns an iterator positioned at the
// first section.
func NewReader(data []byte) (*Reader, error) {
	h, err := readHeader(data)
	if err != nil {
		return nil, err
	}
	return &Reader{chain: data[headerSize:h.filesize]}, nil
}

// Next advances to the next section, returning (section, true, nil) on
// success, (zero, false, nil) at a zero magic or at the end of the chain,
// or a non-nil error on malformed input. Once it returns false or an
// error, every subsequent call repeats that same result.
func (r *Reader) Next() (Section, bool, error) {
	if r.done || r.err != nil {
		return Section{}, false, r.err
	}
	if r.pos == len(r.chain) {
		r.done = true
		return Section{}, false, nil
	}
	if len(r.chain)-r.pos < 8 {
		r.err = gxerr.Truncated(r.pos)
		return Section{}, false, r.err
	}
	m := binary.BigEndian.Uint32(r.chain[r.pos : r.pos+4])
	if m == 0 {
		r.done = true
		return Section{}, false, nil
	}
	size := binary.BigEndian.Uint32(r.chain[r.pos+4 : r.pos+8])
	if size&3 != 0 || r.pos+8+int(size) > len(r.chain) {
		r.err = gxerr.New(gxerr.ErrInvariantViolation, "lex.section.size", size, "")
		return Section{}, false, r.err
	}
	s := Section{Magic: Identifier(m), Data: r.chain[r.pos+8 : r.pos+8+int(size)]}
	r.pos += 8 + int(size)
	return s, true, nil
}
