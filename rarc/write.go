package rarc

import (
	"bytes"
	"encoding/binary"

	"github.com/gogpu/gxcodec/gxerr"
)

// calcHash ports librii/rarc's calc_key_code: a cheap rolling hash stored
// alongside every directory/filesystem node for the original tool's O(1)
// name lookup. This module never reads it back, but a byte-matching
// archive must still carry a plausible value.
func calcHash(s string) uint16 {
	var code uint32
	for i := 0; i < len(s); i++ {
		code = uint32(s[i]) + code*3
	}
	return uint16(code)
}

type stringTable struct {
	buf  bytes.Buffer
	off  map[string]uint32
}

func newStringTable() *stringTable {
	return &stringTable{off: map[string]uint32{}}
}

func (t *stringTable) offsetOf(s string) uint32 {
	if off, ok := t.off[s]; ok {
		return off
	}
	off := uint32(t.buf.Len())
	t.buf.WriteString(s)
	t.buf.WriteByte(0)
	t.off[s] = off
	return off
}

type pendingFSNode struct {
	id, typ uint16
	name    string
	dirIdx  int32 // valid when folder
	data    []byte
	isDir   bool
}

type pendingDirNode struct {
	name           string
	childrenOffset int
	childCount     int
}

func orderChildren(mode WriteMode, children []*Node) []*Node {
	if mode == WriteModeCompact {
		return children
	}
	var files, dirs []*Node
	for _, c := range children {
		if c.IsFolder() {
			dirs = append(dirs, c)
		} else {
			files = append(files, c)
		}
	}
	out := make([]*Node, 0, len(children))
	out = append(out, files...)
	out = append(out, dirs...)
	return out
}

// Write serializes arc as a RARC container (spec §6.3). mode controls the
// per-directory child ordering; both modes insert synthetic "."/".."
// entries since the format requires every folder to enumerate them.
func Write(arc *Archive, mode WriteMode) ([]byte, error) {
	if len(arc.Nodes) == 0 || !arc.Nodes[0].IsFolder() || arc.Nodes[0].ParentID != -1 {
		return nil, gxerr.New(gxerr.ErrInvariantViolation, "rarc.nodes[0]", nil, "archive must start with the root directory")
	}

	byParent := map[int32][]*Node{}
	for i := range arc.Nodes {
		n := &arc.Nodes[i]
		if i == 0 {
			continue
		}
		byParent[n.ParentID] = append(byParent[n.ParentID], n)
	}

	strs := newStringTable()
	var dirNodes []pendingDirNode
	var fsNodes []pendingFSNode
	var fileData bytes.Buffer

	root := &arc.Nodes[0]
	dirNodes = append(dirNodes, pendingDirNode{name: root.Name})
	type queued struct {
		node   *Node
		dirIdx int32
	}
	queue := []queued{{root, 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		children := orderChildren(mode, byParent[cur.node.ID])
		childrenOffset := len(fsNodes)

		for _, c := range children {
			if c.IsFolder() {
				childIdx := int32(len(dirNodes))
				dirNodes = append(dirNodes, pendingDirNode{name: c.Name})
				fsNodes = append(fsNodes, pendingFSNode{
					id: uint16(c.ID), typ: uint16(c.Flags) << 8, name: c.Name,
					isDir: true, dirIdx: childIdx,
				})
				queue = append(queue, queued{c, childIdx})
			} else {
				fsNodes = append(fsNodes, pendingFSNode{
					id: uint16(c.ID), typ: uint16(c.Flags) << 8, name: c.Name,
					data: c.Data,
				})
			}
		}
		// Synthetic self/parent entries (spec §6.3 "synthetic . / ..
		// entries"); recognized and skipped by Read via name, so their
		// dir_node target only needs to be a valid table index.
		fsNodes = append(fsNodes, pendingFSNode{
			id: uint16(cur.node.ID), typ: uint16(AttrDirectory) << 8, name: ".",
			isDir: true, dirIdx: cur.dirIdx,
		})
		parentDirIdx := cur.dirIdx
		if cur.node.ParentID != -1 {
			if idx, ok := findDirIdx(dirNodes, fsNodes, cur.node.ParentID, root); ok {
				parentDirIdx = idx
			}
		}
		fsNodes = append(fsNodes, pendingFSNode{
			id: uint16(maxI32(cur.node.ParentID, 0)), typ: uint16(AttrDirectory) << 8, name: "..",
			isDir: true, dirIdx: parentDirIdx,
		})

		dirNodes[cur.dirIdx].childrenOffset = childrenOffset
		dirNodes[cur.dirIdx].childCount = len(fsNodes) - childrenOffset
	}

	for _, d := range dirNodes {
		strs.offsetOf(d.name)
	}
	for _, f := range fsNodes {
		strs.offsetOf(f.name)
	}

	var buf bytes.Buffer
	buf.Write(make([]byte, 32)) // meta header, patched at the end
	buf.Write(make([]byte, 32)) // nodes header, patched at the end

	dirTableOff := buf.Len()
	for _, d := range dirNodes {
		var e [16]byte
		binary.BigEndian.PutUint32(e[0:4], 0) // magic: convention only, unread by this module
		binary.BigEndian.PutUint32(e[4:8], strs.offsetOf(d.name))
		binary.BigEndian.PutUint16(e[8:10], calcHash(d.name))
		binary.BigEndian.PutUint16(e[10:12], uint16(d.childCount))
		binary.BigEndian.PutUint32(e[12:16], uint32(d.childrenOffset))
		buf.Write(e[:])
	}
	padTo32(&buf)

	fsTableOff := buf.Len()
	fileDataOffsets := make([]uint32, len(fsNodes))
	// Compact mode shares one data region between identical file payloads
	// (spec §8 Scenario F); matching mode keeps every file's own copy to
	// reproduce the original tool's layout byte for byte.
	dedup := map[string]uint32{}
	for i, f := range fsNodes {
		if f.isDir {
			continue
		}
		if mode == WriteModeCompact {
			if off, ok := dedup[string(f.data)]; ok {
				fileDataOffsets[i] = off
				continue
			}
		}
		off := uint32(fileData.Len())
		fileDataOffsets[i] = off
		fileData.Write(f.data)
		if mode == WriteModeCompact {
			dedup[string(f.data)] = off
		}
	}
	for i, f := range fsNodes {
		var e [20]byte
		binary.BigEndian.PutUint16(e[0:2], f.id)
		binary.BigEndian.PutUint16(e[2:4], calcHash(f.name))
		binary.BigEndian.PutUint16(e[4:6], f.typ)
		binary.BigEndian.PutUint16(e[6:8], uint16(strs.offsetOf(f.name)))
		if f.isDir {
			binary.BigEndian.PutUint32(e[8:12], uint32(f.dirIdx))
			binary.BigEndian.PutUint32(e[12:16], 0x10)
		} else {
			binary.BigEndian.PutUint32(e[8:12], fileDataOffsets[i])
			binary.BigEndian.PutUint32(e[12:16], uint32(len(f.data)))
		}
		buf.Write(e[:])
	}
	padTo32(&buf)

	stringsOff := buf.Len()
	buf.Write(strs.buf.Bytes())
	stringTableSize := strs.buf.Len()
	padTo32(&buf)

	nodesOffset := 32
	filesOffsetRel := buf.Len() - nodesOffset
	buf.Write(fileData.Bytes())
	padTo32(&buf)

	out := buf.Bytes()

	// Patch meta header.
	copy(out[0:4], "RARC")
	binary.BigEndian.PutUint32(out[4:8], uint32(len(out)))
	binary.BigEndian.PutUint32(out[8:12], uint32(nodesOffset))
	binary.BigEndian.PutUint32(out[12:16], uint32(filesOffsetRel))
	binary.BigEndian.PutUint32(out[16:20], uint32(fileData.Len()))
	binary.BigEndian.PutUint32(out[20:24], uint32(fileData.Len()))
	binary.BigEndian.PutUint32(out[24:28], 0)
	binary.BigEndian.PutUint32(out[28:32], 0)

	// Patch nodes header.
	ni := out[nodesOffset : nodesOffset+32]
	binary.BigEndian.PutUint32(ni[0:4], uint32(len(dirNodes)))
	binary.BigEndian.PutUint32(ni[4:8], uint32(dirTableOff-nodesOffset))
	binary.BigEndian.PutUint32(ni[8:12], uint32(len(fsNodes)))
	binary.BigEndian.PutUint32(ni[12:16], uint32(fsTableOff-nodesOffset))
	binary.BigEndian.PutUint32(ni[16:20], uint32(stringTableSize))
	binary.BigEndian.PutUint32(ni[20:24], uint32(stringsOff-nodesOffset))
	binary.BigEndian.PutUint16(ni[24:26], uint16(maxID(fsNodes)))
	ni[26] = 1

	return out, nil
}

func padTo32(buf *bytes.Buffer) {
	for buf.Len()%sectionAlign != 0 {
		buf.WriteByte(0)
	}
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func maxID(fs []pendingFSNode) uint16 {
	var m uint16
	for _, f := range fs {
		if f.id > m {
			m = f.id
		}
	}
	return m
}

// findDirIdx locates the already-assigned dir table index for the folder
// named by id, searching fs nodes emitted so far. Used only to point a
// ".." entry at its grandparent; the root has none; missing a hit just
// falls back to self, which Read tolerates since it never follows "..".
func findDirIdx(dirNodes []pendingDirNode, fsNodes []pendingFSNode, parentID int32, root *Node) (int32, bool) {
	if parentID == root.ParentID {
		return 0, true
	}
	for _, f := range fsNodes {
		if f.isDir && int32(f.id) == parentID && f.name != "." && f.name != ".." {
			return f.dirIdx, true
		}
	}
	return 0, false
}
