// Package tile defines fixed-length genomic tiles (k-mers) and their compact
// 2-bit integer keys.
package tile

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"gtile/core/errs"
)

const (
	// DefaultLength is the tile length used by the index unless configured.
	DefaultLength = 13
	// MaxLength is the longest tile that fits a Key (2 bits per base).
	MaxLength = 32
)

// Key is a tile packed 2 bits per base, first base most significant, so the
// ordering of keys of equal length matches the lexicographic order of tiles.
type Key uint64

var code [256]int8

func init() {
	for i := range code {
		code[i] = -1
	}
	code['A'], code['C'], code['G'], code['T'] = 0, 1, 2, 3
	code['a'], code['c'], code['g'], code['t'] = 0, 1, 2, 3
}

// IsACGT reports whether b is an unambiguous base (either case).
func IsACGT(b byte) bool { return code[b] >= 0 }

// CheckLength returns a configuration error for tile lengths that cannot be keyed.
func CheckLength(k int) error {
	if k < 1 || k > MaxLength {
		return errs.Configf("tile length must be in 1..%d, got %d", MaxLength, k)
	}
	return nil
}

// Encode packs t into a Key. ok is false when t is empty, longer than
// MaxLength, or contains a base outside {A,C,G,T}.
func Encode(t []byte) (Key, bool) {
	if len(t) == 0 || len(t) > MaxLength {
		return 0, false
	}
	var k Key
	for _, b := range t {
		c := code[b]
		if c < 0 {
			return 0, false
		}
		k = k<<2 | Key(c)
	}
	return k, true
}

// EncodeString is Encode for strings.
func EncodeString(s string) (Key, bool) {
	if len(s) == 0 || len(s) > MaxLength {
		return 0, false
	}
	var k Key
	for i := 0; i < len(s); i++ {
		c := code[s[i]]
		if c < 0 {
			return 0, false
		}
		k = k<<2 | Key(c)
	}
	return k, true
}

// Decode expands a key back to an upper-case tile of the given length.
func Decode(k Key, length int) string {
	const alphabet = "ACGT"
	out := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		out[i] = alphabet[k&3]
		k >>= 2
	}
	return string(out)
}

// Each calls fn for every full window of length k in seq, in order.
// off is the 0-based window start.
func Each(seq []byte, k int, fn func(off int, t []byte)) {
	for i := 0; i+k <= len(seq); i++ {
		fn(i, seq[i:i+k])
	}
}

// Set is a set of tile keys backed by a 64-bit roaring bitmap.
type Set struct {
	bm *roaring64.Bitmap
}

// NewSet returns an empty set.
func NewSet() *Set { return &Set{bm: roaring64.New()} }

// Add inserts k.
func (s *Set) Add(k Key) { s.bm.Add(uint64(k)) }

// Contains reports whether k is present.
func (s *Set) Contains(k Key) bool { return s.bm.Contains(uint64(k)) }

// Len returns the number of keys.
func (s *Set) Len() int { return int(s.bm.GetCardinality()) }

// Keys returns the keys in ascending order.
func (s *Set) Keys() []Key {
	out := make([]Key, 0, s.Len())
	it := s.bm.Iterator()
	for it.HasNext() {
		out = append(out, Key(it.Next()))
	}
	return out
}
