package glsl

import (
	"fmt"
	"hash/fnv"

	"github.com/gogpu/gxcodec/gxmat"
)

// CacheKey returns a stable FNV-1a digest of every field of m, so callers
// can memoize Generate results per unique material. Two materials that are
// field-for-field equal always produce the same key; the whole record is
// hashed, so a change to a field that does not affect generated shader
// text (a texture name, a chan color) also changes the key.
func CacheKey(m gxmat.Material) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%+v", m)
	return h.Sum64()
}
