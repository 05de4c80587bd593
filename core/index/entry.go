package index

import (
	"strconv"
	"strings"

	"gtile/core/errs"
)

// Entry is the value stored for one tile: either Positions or CountOnly.
type Entry interface {
	// Occurrences is the number of times the tile was seen.
	Occurrences() uint64
	appendPayload(dst []byte) []byte
}

// Positions lists every genome-wide coordinate of a tile, ascending.
type Positions []uint64

// CountOnly records a tile whose occurrences passed the positions cutoff.
// Its exact positions are not available.
type CountOnly uint64

func (p Positions) Occurrences() uint64 { return uint64(len(p)) }
func (c CountOnly) Occurrences() uint64 { return uint64(c) }

func (p Positions) appendPayload(dst []byte) []byte {
	for i, v := range p {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = strconv.AppendUint(dst, v, 10)
	}
	return dst
}

func (c CountOnly) appendPayload(dst []byte) []byte {
	dst = append(dst, CountPrefix)
	return strconv.AppendUint(dst, uint64(c), 10)
}

// IsCountOnly reports whether e carries no positions.
func IsCountOnly(e Entry) bool {
	_, ok := e.(CountOnly)
	return ok
}

// ParsePayload decodes the second column of a data line.
func ParsePayload(s string) (Entry, error) {
	if s == "" {
		return nil, errs.Dataf("empty payload")
	}
	if s[0] == CountPrefix {
		n, err := strconv.ParseUint(s[1:], 10, 64)
		if err != nil {
			return nil, errs.Dataf("bad count %q", s)
		}
		return CountOnly(n), nil
	}
	out := make(Positions, 0, strings.Count(s, ",")+1)
	for len(s) > 0 {
		field := s
		if i := strings.IndexByte(s, ','); i >= 0 {
			field, s = s[:i], s[i+1:]
		} else {
			s = ""
		}
		v, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return nil, errs.Dataf("bad position %q", field)
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseLine splits a data line into tile and payload.
func ParseLine(line string) (tile, payload string, err error) {
	i := strings.IndexByte(line, '\t')
	if i <= 0 || i == len(line)-1 {
		return "", "", errs.Dataf("malformed index line %q", truncate(line))
	}
	return line[:i], line[i+1:], nil
}

// AppendLine appends "tile\tpayload\n" to dst.
func AppendLine(dst []byte, tile string, e Entry) []byte {
	dst = append(dst, tile...)
	dst = append(dst, '\t')
	dst = e.appendPayload(dst)
	return append(dst, '\n')
}

func truncate(s string) string {
	if len(s) > 64 {
		return s[:64] + "..."
	}
	return s
}
