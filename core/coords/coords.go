// Package coords translates between genome-wide coordinates and
// (contig, local position) pairs.
//
// Contigs are laid end to end in reference order starting at genome-wide
// coordinate 1. Contig i occupies the half-open range [Start, Start+Length).
// Local positions are 1-based.
package coords

import (
	"bufio"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"gtile/core/errs"
	"gtile/core/packed"
)

// Strand of a translated locus.
type Strand byte

const (
	Forward Strand = '+'
	Reverse Strand = '-'
)

func (s Strand) String() string { return string(s) }

// ContigLength is the input to Build.
type ContigLength struct {
	Name   string
	Length uint64
}

// Range is one contig's slot in the genome-wide coordinate space.
type Range struct {
	Name   string
	Length uint64
	Start  uint64
}

// End is the exclusive end of the range.
func (r Range) End() uint64 { return r.Start + r.Length }

// Contains reports whether coord falls inside r.
func (r Range) Contains(coord uint64) bool { return coord >= r.Start && coord < r.End() }

// Locus is a contig-local interval. Start and End are 1-based, inclusive.
type Locus struct {
	Contig string
	Start  uint64
	End    uint64
	Strand Strand
}

// Buffer widens a translated locus on either side.
type Buffer struct {
	Left  uint64
	Right uint64
}

// Map is an immutable coordinate map. It is safe for concurrent use.
type Map struct {
	ranges []Range
	byName map[string]int
	// byStart holds range indices in ascending Start order.
	byStart []int
	log     *slog.Logger
}

// Build lays the contigs out in order from coordinate 1.
func Build(contigs []ContigLength) (*Map, error) {
	ranges := make([]Range, 0, len(contigs))
	next := uint64(1)
	for _, c := range contigs {
		ranges = append(ranges, Range{Name: c.Name, Length: c.Length, Start: next})
		next += c.Length
	}
	return FromRanges(ranges)
}

// FromRanges validates explicit ranges, e.g. those recorded in an index
// header. Ranges must have unique names, non-zero length, and must not
// overlap.
func FromRanges(ranges []Range) (*Map, error) {
	m := &Map{
		ranges: append([]Range(nil), ranges...),
		byName: make(map[string]int, len(ranges)),
	}
	for i, r := range m.ranges {
		if r.Name == "" {
			return nil, errs.Configf("contig %d has an empty name", i)
		}
		if r.Length == 0 {
			return nil, errs.Configf("contig %q has zero length", r.Name)
		}
		if r.Start == 0 {
			return nil, errs.Configf("contig %q starts at 0; coordinates are 1-based", r.Name)
		}
		if r.End()-1 > packed.MaxCoord {
			return nil, errs.Configf("contig %q ends past the largest packable coordinate %d", r.Name, uint64(packed.MaxCoord))
		}
		if _, dup := m.byName[r.Name]; dup {
			return nil, errs.Configf("duplicate contig name %q", r.Name)
		}
		m.byName[r.Name] = i
	}
	m.byStart = make([]int, len(m.ranges))
	for i := range m.byStart {
		m.byStart[i] = i
	}
	sort.Slice(m.byStart, func(i, j int) bool {
		return m.ranges[m.byStart[i]].Start < m.ranges[m.byStart[j]].Start
	})
	for k := 1; k < len(m.byStart); k++ {
		a, b := m.ranges[m.byStart[k-1]], m.ranges[m.byStart[k]]
		if a.End() > b.Start {
			return nil, errs.Configf("contig ranges overlap: %s [%d,%d) and %s [%d,%d)",
				a.Name, a.Start, a.End(), b.Name, b.Start, b.End())
		}
	}
	return m, nil
}

// BuildFromFai builds a map from a samtools faidx index
// (name, length, offset, linebases, linewidth per line).
func BuildFromFai(r io.Reader) (*Map, error) {
	var contigs []ContigLength
	sc := bufio.NewScanner(r)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		f := strings.Split(line, "\t")
		if len(f) < 2 {
			return nil, errs.Configf("fai line %d: want at least 2 columns, got %d", ln, len(f))
		}
		n, err := strconv.ParseUint(f[1], 10, 64)
		if err != nil {
			return nil, errs.Configf("fai line %d: bad length %q", ln, f[1])
		}
		contigs = append(contigs, ContigLength{Name: f[0], Length: n})
	}
	if err := sc.Err(); err != nil {
		return nil, errs.IO(err, "read", "fai")
	}
	return Build(contigs)
}

// WithLogger returns a copy of m that logs failed lookups to l.
func (m *Map) WithLogger(l *slog.Logger) *Map {
	c := *m
	c.log = l
	return &c
}

// Len returns the number of contigs.
func (m *Map) Len() int { return len(m.ranges) }

// Contig returns the i-th range.
func (m *Map) Contig(i int) Range { return m.ranges[i] }

// Contigs returns a copy of all ranges in order.
func (m *Map) Contigs() []Range { return append([]Range(nil), m.ranges...) }

// Index returns the position of the named contig in reference order.
func (m *Map) Index(name string) (int, bool) {
	i, ok := m.byName[name]
	return i, ok
}

// Total is the number of bases covered by the map.
func (m *Map) Total() uint64 {
	if len(m.ranges) == 0 {
		return 0
	}
	first := m.ranges[m.byStart[0]]
	last := m.ranges[m.byStart[len(m.byStart)-1]]
	return last.End() - first.Start
}

// ToGenome converts a 1-based local position to a genome-wide coordinate.
// ok is false for an unknown contig or a position outside 1..Length.
func (m *Map) ToGenome(contig string, local uint64) (coord uint64, ok bool) {
	i, found := m.byName[contig]
	if !found {
		return 0, false
	}
	r := m.ranges[i]
	if local < 1 || local > r.Length {
		return 0, false
	}
	return r.Start + local - 1, true
}

// Find returns the index of the range containing coord.
func (m *Map) Find(coord uint64) (int, bool) {
	// first range starting past coord; its predecessor is the only candidate
	k := sort.Search(len(m.byStart), func(k int) bool {
		return m.ranges[m.byStart[k]].Start > coord
	})
	if k == 0 {
		return -1, false
	}
	i := m.byStart[k-1]
	if !m.ranges[i].Contains(coord) {
		return -1, false
	}
	return i, true
}

// FromGenome translates a packed hit into a contig-local locus spanning
// length bases (a zero length is treated as one base). The query offset in
// p shifts the start left so the locus is anchored at the query start.
// The buffer widens the locus; the left edge never drops below 1 and the
// right edge never passes the contig end.
func (m *Map) FromGenome(p packed.Position, length uint64, buf Buffer) (Locus, error) {
	h := p.Decode()
	i, ok := m.Find(h.Coord)
	if !ok {
		if m.log != nil {
			m.log.Debug("coordinate outside all contigs", "coord", h.Coord)
		}
		return Locus{}, errs.NotFoundf("coordinate %d is outside all contigs", h.Coord)
	}
	r := m.ranges[i]
	anchor := int64(h.Coord-r.Start+1) - int64(h.Offset)

	span := int64(length)
	if span == 0 {
		span = 1
	}
	start := anchor - int64(buf.Left)
	if start < 1 {
		start = 1
	}
	end := anchor + span - 1 + int64(buf.Right)
	if end > int64(r.Length) {
		end = int64(r.Length)
	}
	if end < start {
		end = start
	}

	strand := Forward
	if h.Reverse {
		strand = Reverse
	}
	return Locus{Contig: r.Name, Start: uint64(start), End: uint64(end), Strand: strand}, nil
}
