// Package packed encodes a tile hit as a single uint64.
//
// Layout, low to high bits:
//
//	bits  0..39  genome-wide coordinate (1-based, up to 2^40-1)
//	bit   40     reverse-complement flag
//	bits 41..63  offset of the tile within the query (up to 2^23-1)
//
// The index stores only the coordinate field; the flag and offset are filled
// in on the query side.
package packed

import (
	"gtile/core/errs"
)

const (
	CoordBits   = 40
	ReverseBit  = CoordBits
	OffsetBits  = 64 - CoordBits - 1
	OffsetShift = ReverseBit + 1

	MaxCoord  = 1<<CoordBits - 1
	MaxOffset = 1<<OffsetBits - 1

	coordMask   = uint64(MaxCoord)
	reverseMask = uint64(1) << ReverseBit
	offsetMask  = uint64(MaxOffset) << OffsetShift
)

// Position is a packed tile hit.
type Position uint64

// Hit is the unpacked form of a Position.
type Hit struct {
	Coord   uint64
	Reverse bool
	Offset  uint32
}

// Encode packs h, failing when a field does not fit its width.
func Encode(h Hit) (Position, error) {
	if h.Coord > MaxCoord {
		return 0, errs.Configf("coordinate %d exceeds %d-bit field", h.Coord, CoordBits)
	}
	if uint64(h.Offset) > MaxOffset {
		return 0, errs.Configf("query offset %d exceeds %d-bit field", h.Offset, OffsetBits)
	}
	return pack(h), nil
}

// MustEncode is Encode for values already known to fit.
func MustEncode(h Hit) Position {
	p, err := Encode(h)
	if err != nil {
		panic(err)
	}
	return p
}

func pack(h Hit) Position {
	v := h.Coord & coordMask
	if h.Reverse {
		v |= reverseMask
	}
	v |= (uint64(h.Offset) << OffsetShift) & offsetMask
	return Position(v)
}

// Coord returns a Position carrying only a forward-strand coordinate.
func Coord(c uint64) Position { return Position(c & coordMask) }

// Decode unpacks p.
func (p Position) Decode() Hit {
	v := uint64(p)
	return Hit{
		Coord:   v & coordMask,
		Reverse: v&reverseMask != 0,
		Offset:  uint32((v & offsetMask) >> OffsetShift),
	}
}

// Coord returns the coordinate field.
func (p Position) Coord() uint64 { return uint64(p) & coordMask }

// Reverse reports the strand flag.
func (p Position) Reverse() bool { return uint64(p)&reverseMask != 0 }

// Offset returns the query-offset field.
func (p Position) Offset() uint32 { return uint32((uint64(p) & offsetMask) >> OffsetShift) }
