// Package builder produces the tile index from a reference genome.
//
// The builder is single-threaded. It walks each contig once, appending the
// genome-wide coordinate of every window to that window's tile until the
// tile has been seen PositionsCutoff times; from then on only a count is
// kept.
package builder

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/dustin/go-humanize"

	"gtile/core/coords"
	"gtile/core/errs"
	"gtile/core/index"
	"gtile/core/packed"
	"gtile/core/tile"
)

// acc accumulates one tile. Once capped, pos is nil and n is authoritative.
type acc struct {
	pos    []uint64
	n      uint64
	capped bool
}

func (a *acc) add(coord uint64, cutoff int) {
	a.n++
	if a.capped {
		return
	}
	if len(a.pos) < cutoff {
		a.pos = append(a.pos, coord)
		return
	}
	a.pos = nil
	a.capped = true
}

func (a *acc) entry() index.Entry {
	if a.capped {
		return index.CountOnly(a.n)
	}
	return index.Positions(a.pos)
}

// Builder accumulates tiles across contigs. The zero value is not usable;
// call New.
type Builder struct {
	cfg     Config
	log     *slog.Logger
	contigs []coords.ContigLength
	names   map[string]struct{}
	next    uint64 // genome-wide coordinate of the next base

	keyed map[tile.Key]*acc
	// raw holds tiles with bases outside {A,C,G,T}; they are indexed as text
	// but have no key.
	raw map[string]*acc

	bases     uint64
	lastTick  uint64
	ambiguous uint64
}

// New returns a Builder for cfg.
func New(cfg Config) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Builder{
		cfg:   cfg,
		log:   cfg.Logger,
		names: make(map[string]struct{}),
		next:  1,
		keyed: make(map[tile.Key]*acc, 1<<16),
		raw:   make(map[string]*acc),
	}, nil
}

// AddContig indexes one contig. seq is expected upper-case. Contig names
// must be unique. Every base advances the genome-wide coordinate, including
// the trailing bases that cannot start a full tile.
func (b *Builder) AddContig(ctx context.Context, name string, seq []byte) error {
	if name == "" {
		return errs.Configf("contig with empty name")
	}
	if _, dup := b.names[name]; dup {
		return errs.Configf("duplicate contig name %q", name)
	}
	if len(seq) == 0 {
		b.log.Warn("skipping empty contig", "contig", name)
		return nil
	}
	if end := b.next + uint64(len(seq)) - 1; end > packed.MaxCoord {
		return errs.Configf("genome exceeds %d bases at contig %q", uint64(packed.MaxCoord), name)
	}
	b.names[name] = struct{}{}
	b.contigs = append(b.contigs, coords.ContigLength{Name: name, Length: uint64(len(seq))})

	k := b.cfg.TileLength
	cutoff := b.cfg.PositionsCutoff
	start := b.next
	for i := 0; i+k <= len(seq); i++ {
		w := seq[i : i+k]
		coord := start + uint64(i)
		if key, ok := tile.Encode(w); ok {
			a := b.keyed[key]
			if a == nil {
				a = &acc{}
				b.keyed[key] = a
			}
			a.add(coord, cutoff)
		} else {
			b.ambiguous++
			a := b.raw[string(w)]
			if a == nil {
				a = &acc{}
				b.raw[string(w)] = a
			}
			a.add(coord, cutoff)
		}
		if b.bases+uint64(i)-b.lastTick >= b.cfg.ProgressEvery {
			b.lastTick = b.bases + uint64(i)
			if err := ctx.Err(); err != nil {
				return err
			}
			b.log.Info("indexing",
				"contig", name,
				"bases", humanize.Comma(int64(b.lastTick)),
				"tiles", humanize.Comma(int64(b.Tiles())))
		}
	}
	b.bases += uint64(len(seq))
	b.next += uint64(len(seq))
	b.log.Debug("contig indexed", "contig", name, "length", len(seq), "start", start)
	return nil
}

// Tiles returns the number of distinct tiles seen so far.
func (b *Builder) Tiles() int { return len(b.keyed) + len(b.raw) }

// Bases returns the number of reference bases consumed so far.
func (b *Builder) Bases() uint64 { return b.bases }

// Contigs returns the contigs added so far, in order.
func (b *Builder) Contigs() []coords.ContigLength {
	return append([]coords.ContigLength(nil), b.contigs...)
}

// CoordinateMap returns the map of the contigs added so far.
func (b *Builder) CoordinateMap() (*coords.Map, error) {
	return coords.Build(b.contigs)
}

// Get returns the accumulated entry for a tile, for inspection.
func (b *Builder) Get(t string) (index.Entry, bool) {
	var a *acc
	if key, ok := tile.EncodeString(t); ok && len(t) == b.cfg.TileLength {
		a = b.keyed[key]
	} else {
		a = b.raw[t]
	}
	if a == nil {
		return nil, false
	}
	return a.entry(), true
}

// WriteTo writes the header described by meta, then every tile in
// lexicographic order. Cutoff, tile length, count and contigs in meta are
// filled from the builder.
func (b *Builder) WriteTo(w io.Writer, meta index.Header) error {
	cm, err := b.CoordinateMap()
	if err != nil {
		return err
	}
	meta.PositionsCutoff = b.cfg.PositionsCutoff
	meta.TileLength = b.cfg.TileLength
	meta.TileCount = uint64(b.Tiles())
	meta.Contigs = cm.Contigs()
	if err := index.WriteHeader(w, meta); err != nil {
		return err
	}

	keys := make([]tile.Key, 0, len(b.keyed))
	for k := range b.keyed {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	raws := make([]string, 0, len(b.raw))
	for s := range b.raw {
		raws = append(raws, s)
	}
	sort.Strings(raws)

	bw := bufio.NewWriterSize(w, 1<<20)
	line := make([]byte, 0, 256)
	emit := func(t string, a *acc) error {
		line = index.AppendLine(line[:0], t, a.entry())
		_, err := bw.Write(line)
		return err
	}
	// Merge keyed and raw tiles; key order is lexicographic for equal lengths.
	i, j := 0, 0
	for i < len(keys) || j < len(raws) {
		var err error
		switch {
		case j == len(raws):
			t := tile.Decode(keys[i], b.cfg.TileLength)
			err = emit(t, b.keyed[keys[i]])
			i++
		case i == len(keys):
			err = emit(raws[j], b.raw[raws[j]])
			j++
		default:
			t := tile.Decode(keys[i], b.cfg.TileLength)
			if t < raws[j] {
				err = emit(t, b.keyed[keys[i]])
				i++
			} else {
				err = emit(raws[j], b.raw[raws[j]])
				j++
			}
		}
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Summary describes a finished build.
type Summary struct {
	Contigs        int
	Bases          uint64
	Tiles          int
	CountOnly      int
	AmbiguousTiles uint64
}

// Summary reports the build totals so far.
func (b *Builder) Summary() Summary {
	s := Summary{
		Contigs:        len(b.contigs),
		Bases:          b.bases,
		Tiles:          b.Tiles(),
		AmbiguousTiles: b.ambiguous,
	}
	for _, a := range b.keyed {
		if a.capped {
			s.CountOnly++
		}
	}
	for _, a := range b.raw {
		if a.capped {
			s.CountOnly++
		}
	}
	return s
}
