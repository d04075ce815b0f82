package dlist

import (
	"github.com/gogpu/gxcodec/gxerr"
	"github.com/gogpu/gxcodec/gxlog"
)

// VertexLenFunc returns the inline vertex payload length, in bytes, for a
// draw command whose vertex attribute table format is vatFmt. Draw payload
// length depends on the currently installed vertex attribute descriptor,
// which lives outside this package (spec §4.2); callers supply it.
type VertexLenFunc func(vatFmt uint8, vertexCount uint16) (int, error)

// Read tokenizes data[:limit] into a sequence of commands. It is not
// self-synchronizing (spec §4.2): reading stops exactly at limit, and a
// command that would cross the limit fails with gxerr.ErrTruncatedStream.
// An unrecognized tag fails with gxerr.ErrUnknownCommand.
func Read(data []byte, limit int, vlen VertexLenFunc) ([]Command, error) {
	if limit > len(data) {
		limit = len(data)
	}
	var cmds []Command
	off := 0
	for off < limit {
		tag := data[off]
		start := off
		off++

		switch {
		case tag == TagNOP:
			cmds = append(cmds, NOPCommand{})

		case tag == TagCP:
			v, n, err := need(data, off, limit, 5)
			if err != nil {
				return cmds, err
			}
			reg := v[0]
			val := be32(v[1:5])
			cmds = append(cmds, CPCommand{Register: reg, Value: val})
			off += n

		case tag == TagXF:
			hdr, n, err := need(data, off, limit, 4)
			if err != nil {
				return cmds, err
			}
			extra := be16(hdr[0:2])
			reg := be16(hdr[2:4])
			off += n
			count := int(extra) + 1
			need := count * 4
			if off+need > limit {
				return cmds, gxerr.Truncated(start)
			}
			values := make([]uint32, count)
			for i := 0; i < count; i++ {
				values[i] = be32(data[off+i*4 : off+i*4+4])
			}
			off += need
			cmds = append(cmds, XFCommand{Register: reg, Values: values})

		case tag >= TagIndexedLoadA && tag <= TagIndexedLoadD && (tag-TagIndexedLoadA)%8 == 0:
			v, n, err := need(data, off, limit, 4)
			if err != nil {
				return cmds, err
			}
			packed := be32(v)
			index := uint16(packed >> 16)
			length := uint8((packed>>12)&0xF) + 1
			addr := uint16(packed & 0xFFF)
			cmds = append(cmds, IndexedLoadCommand{
				Slot: slotFromTag(tag), Index: index, Len: length, Addr: addr,
			})
			off += n

		case tag == TagBP:
			v, n, err := need(data, off, limit, 4)
			if err != nil {
				return cmds, err
			}
			packed := be32(v)
			reg := uint8(packed >> 24)
			val := packed & 0x00FFFFFF
			cmds = append(cmds, BPCommand{Register: reg, Value: val})
			off += n

		case tag >= TagDrawLo && tag <= TagDrawHi:
			hdr, n, err := need(data, off, limit, 2)
			if err != nil {
				return cmds, err
			}
			primitive := (tag >> 3) & 0x7
			vatFmt := tag & 0x7
			vertexCount := be16(hdr)
			off += n
			if vlen == nil {
				return cmds, gxerr.New(gxerr.ErrUnknownCommand, "draw", tag, "no VertexLenFunc supplied")
			}
			payloadLen, err := vlen(vatFmt, vertexCount)
			if err != nil {
				return cmds, err
			}
			if off+payloadLen > limit {
				return cmds, gxerr.Truncated(start)
			}
			vtx := make([]byte, payloadLen)
			copy(vtx, data[off:off+payloadLen])
			off += payloadLen
			cmds = append(cmds, DrawCommand{
				Primitive: primitive, VatFmt: vatFmt, VertexCount: vertexCount, VertexData: vtx,
			})

		default:
			return cmds, gxerr.UnknownCommand(tag, start)
		}
	}
	gxlog.Logger().Debug("dlist.Read", "commands", len(cmds), "bytes", limit)
	return cmds, nil
}

// need returns data[off:off+n] or a TruncatedStream error, plus n itself
// for the caller's convenience.
func need(data []byte, off, limit, n int) ([]byte, int, error) {
	if off+n > limit {
		return nil, 0, gxerr.Truncated(off)
	}
	return data[off : off+n], n, nil
}

func be16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
