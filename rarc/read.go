package rarc

import (
	"encoding/binary"

	"github.com/gogpu/gxcodec/gxerr"
)

const sectionAlign = 32

func roundUp32(n int) int { return (n + sectionAlign - 1) &^ (sectionAlign - 1) }

func be32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }
func be16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }

// lowFSNode mirrors rarcFSNode (librii/rarc/RARC.cpp): a/b are the
// type-punned folder{dir_node,size} or file{offset,size} union members.
type lowFSNode struct {
	id, hash, typ, name uint16
	a, b                uint32
}

// lowDirNode mirrors rarcDirectoryNode.
type lowDirNode struct {
	nameOff        uint32
	hash           uint16
	childCount     uint16
	childrenOffset uint32
}

type lowArchive struct {
	nodesOffset int
	filesOffset int
	dirNodes    []lowDirNode
	fsNodes     []lowFSNode
	strings     []byte
	fileData    []byte
}

func parseLow(data []byte) (*lowArchive, error) {
	if len(data) < 32 {
		return nil, gxerr.Truncated(len(data))
	}
	if string(data[0:4]) != "RARC" {
		return nil, gxerr.New(gxerr.ErrInvalidEnum, "rarc.magic", string(data[0:4]), "")
	}
	nodesOffset := int(be32(data[8:12]))
	filesOffset := int(be32(data[12:16]))
	if nodesOffset+32 > len(data) {
		return nil, gxerr.Truncated(nodesOffset)
	}
	ni := data[nodesOffset:]
	dirCount := int(be32(ni[0:4]))
	dirOffset := int(be32(ni[4:8]))
	fsCount := int(be32(ni[8:12]))
	fsOffset := int(be32(ni[12:16]))
	stringTableSize := int(be32(ni[16:20]))
	stringsOffset := int(be32(ni[20:24]))

	dirBase := nodesOffset + dirOffset
	if dirBase+dirCount*16 > len(data) {
		return nil, gxerr.Truncated(dirBase)
	}
	dirNodes := make([]lowDirNode, dirCount)
	for i := 0; i < dirCount; i++ {
		e := data[dirBase+i*16:]
		dirNodes[i] = lowDirNode{
			nameOff:        be32(e[4:8]),
			hash:           be16(e[8:10]),
			childCount:     be16(e[10:12]),
			childrenOffset: be32(e[12:16]),
		}
	}

	fsBase := nodesOffset + fsOffset
	if fsBase+fsCount*20 > len(data) {
		return nil, gxerr.Truncated(fsBase)
	}
	fsNodes := make([]lowFSNode, fsCount)
	for i := 0; i < fsCount; i++ {
		e := data[fsBase+i*20:]
		fsNodes[i] = lowFSNode{
			id:   be16(e[0:2]),
			hash: be16(e[2:4]),
			typ:  be16(e[4:6]),
			name: be16(e[6:8]),
			a:    be32(e[8:12]),
			b:    be32(e[12:16]),
		}
	}

	stringsBase := nodesOffset + stringsOffset
	if stringsBase+stringTableSize > len(data) {
		return nil, gxerr.Truncated(stringsBase)
	}
	strTable := data[stringsBase : stringsBase+stringTableSize]

	fileDataBase := roundUp32(nodesOffset + filesOffset)
	var fileData []byte
	if fileDataBase < len(data) {
		fileData = data[fileDataBase:]
	}

	return &lowArchive{
		nodesOffset: nodesOffset,
		filesOffset: filesOffset,
		dirNodes:    dirNodes,
		fsNodes:     fsNodes,
		strings:     strTable,
		fileData:    fileData,
	}, nil
}

func nameAt(strTable []byte, off uint32) string {
	if int(off) >= len(strTable) {
		return ""
	}
	end := int(off)
	for end < len(strTable) && strTable[end] != 0 {
		end++
	}
	return string(strTable[off:end])
}

// Read parses a RARC container into its flat node model (spec §6.3,
// librii/rarc/RARC.cpp LoadResourceArchive). Synthetic "."/".." directory
// entries are dropped on load; Write reinserts them.
func Read(data []byte) (*Archive, error) {
	low, err := parseLow(data)
	if err != nil {
		return nil, err
	}
	if len(low.dirNodes) == 0 {
		return nil, gxerr.New(gxerr.ErrInvariantViolation, "rarc.dirNodes", 0, "archive has no root directory")
	}

	var out []Node
	if err := recurseLoad(low, 0, nil, -1, &out, 0); err != nil {
		return nil, err
	}
	return &Archive{Nodes: out}, nil
}

func recurseLoad(low *lowArchive, dirIdx int, node *lowFSNode, parentID int32, out *[]Node, depth int) error {
	if dirIdx < 0 || dirIdx >= len(low.dirNodes) {
		return gxerr.InvalidRegister(uint32(dirIdx))
	}
	startNodes := len(*out)
	d := low.dirNodes[dirIdx]

	var dirNode Node
	if node != nil {
		dirNode = Node{
			ID:    int32(node.a),
			Flags: Attribute(node.typ >> 8),
			Name:  nameAt(low.strings, d.nameOff),
		}
	} else {
		dirNode = Node{ID: 0, Flags: AttrDirectory, Name: nameAt(low.strings, d.nameOff)}
	}
	dirNode.ParentID = parentID

	begin := int(d.childrenOffset)
	end := begin + int(d.childCount)
	if end > len(low.fsNodes) {
		return gxerr.Truncated(end)
	}
	for i := begin; i < end; i++ {
		fs := low.fsNodes[i]
		isFolder := fs.typ&(uint16(AttrDirectory)<<8) != 0
		name := nameAt(low.strings, uint32(fs.name))
		if isFolder {
			if name == "." || name == ".." {
				continue
			}
			if err := recurseLoad(low, int(fs.a), &fs, dirNode.ID, out, depth+1); err != nil {
				return err
			}
		} else {
			dataBegin := int(fs.a)
			dataEnd := dataBegin + int(fs.b)
			if dataEnd > len(low.fileData) {
				return gxerr.Truncated(dataEnd)
			}
			*out = append(*out, Node{
				ID:       int32(fs.id),
				Flags:    Attribute(fs.typ >> 8),
				Name:     name,
				ParentID: dirNode.ID,
				Data:     append([]byte(nil), low.fileData[dataBegin:dataEnd]...),
			})
		}
	}

	dirNode.SiblingNext = int32(len(*out) + depth + 1)

	tail := append([]Node(nil), (*out)[startNodes:]...)
	*out = append((*out)[:startNodes], dirNode)
	*out = append(*out, tail...)
	return nil
}
