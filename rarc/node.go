// Package rarc implements the archive container format used to bundle GX
// display lists with their textures and tables (spec §6.3): a flat
// directory+filesystem node array serialized as 32-byte-aligned sections,
// grounded on librii/rarc's ResourceArchive model.
package rarc

// Attribute is a bitmask of resource flags stored in a node's Flags field.
type Attribute uint16

const (
	AttrFile           Attribute = 1 << 0
	AttrDirectory      Attribute = 1 << 1
	AttrCompressed     Attribute = 1 << 2
	AttrPreloadToMRAM  Attribute = 1 << 4
	AttrPreloadToARAM  Attribute = 1 << 5
	AttrLoadFromDVD    Attribute = 1 << 6
	AttrYaz0Compressed Attribute = 1 << 7
)

// Node is one flat archive entry: either a file (Data populated) or a
// directory (SiblingNext populated); every node names its containing
// folder in ParentID (spec §6.3). Synthetic "."
// and ".." directory entries are never present in a parsed Archive; the
// writer inserts them as it serializes (spec §6.3 "synthetic . / ..
// entries").
type Node struct {
	ID          int32
	Flags       Attribute
	Name        string
	ParentID    int32 // ID of the containing folder; -1 for the root
	SiblingNext int32 // folders only: flat index one past this folder's subtree
	Data        []byte
}

// IsFolder reports whether n is a directory node.
func (n Node) IsFolder() bool { return n.Flags&AttrDirectory != 0 }

// IsSpecialPath reports whether n is a synthetic "." or ".." entry.
func (n Node) IsSpecialPath() bool { return n.Name == "." || n.Name == ".." }

// Archive is the in-memory model of one RARC container: a flat node list
// in depth-first pre-order, the root directory always at index 0 (spec
// §6.3).
type Archive struct {
	Nodes []Node
}

// WriteMode selects how Write lays out nodes in the serialized form.
type WriteMode uint8

const (
	// WriteModeCompact serializes nodes in their given slice order with
	// no attempt to reproduce a particular authoring tool's traversal,
	// minimizing output size.
	WriteModeCompact WriteMode = iota
	// WriteModeMatching reorders nodes per directory into files, then
	// subdirectories, then synthetic special dirs, then recurses — the
	// order Nintendo's archiver used (spec §6.3 "two write modes").
	WriteModeMatching
)
