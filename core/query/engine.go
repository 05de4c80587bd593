// Package query turns query sequences into candidate genomic loci using a
// loaded tile index.
//
// Every tile of the query and of its reverse complement is looked up. Each
// position found is anchored back to where the query would start, and
// anchors that fall within a small diagonal slack of one another on the
// same contig and strand are clustered into one candidate. Tiles whose index
// entry is count-only carry no positions and are skipped.
package query

import (
	"bytes"
	"log/slog"
	"sort"

	"gtile/core/coords"
	"gtile/core/errs"
	"gtile/core/index"
	"gtile/core/loader"
	"gtile/core/packed"
	"gtile/core/tile"
)

// Defaults.
const (
	DefaultDiagonalSlack = 8
	DefaultMinSupport    = 1
)

// Config controls candidate generation.
type Config struct {
	TileLength    int           // must match the index
	DiagonalSlack uint64        // max distance between anchors in one cluster
	MinSupport    int           // min distinct supporting tiles per candidate
	Buffer        coords.Buffer // widens every candidate
	Logger        *slog.Logger
}

// DefaultConfig returns the standard query settings.
func DefaultConfig() Config {
	return Config{
		TileLength:    tile.DefaultLength,
		DiagonalSlack: DefaultDiagonalSlack,
		MinSupport:    DefaultMinSupport,
	}
}

// Validate checks the parameters and fills zero-valued optional fields.
func (c *Config) Validate() error {
	if err := tile.CheckLength(c.TileLength); err != nil {
		return err
	}
	if c.MinSupport < 1 {
		c.MinSupport = DefaultMinSupport
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return nil
}

// Sequence is a named query.
type Sequence struct {
	Name string
	Seq  []byte
}

// Candidate is one proposed locus for a query. Start and End are 1-based
// contig-local positions, inclusive.
type Candidate struct {
	Query      string
	Contig     string
	Start      uint64
	End        uint64
	Strand     coords.Strand
	Support    int // distinct query tiles supporting the locus
	Repetitive int // query tiles skipped because their entry is count-only

	contig int
}

// Engine aligns queries against a loaded table. It is safe for concurrent
// use once the table is no longer written.
type Engine struct {
	cm    *coords.Map
	table *loader.Table
	cfg   Config
	log   *slog.Logger
}

// New returns an Engine over cm and table.
func New(cm *coords.Map, table *loader.Table, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cm == nil || table == nil {
		return nil, errs.Configf("query engine needs a coordinate map and a table")
	}
	return &Engine{cm: cm, table: table, cfg: cfg, log: cfg.Logger}, nil
}

// Align returns the candidates of every query, keyed by query name. A query
// without candidates maps to an empty slice. Later queries with a repeated
// name replace earlier ones.
func (e *Engine) Align(queries []Sequence) map[string][]Candidate {
	out := make(map[string][]Candidate, len(queries))
	for _, q := range queries {
		out[q.Name] = e.AlignOne(q)
	}
	return out
}

type anchor struct {
	start, end uint64
	offset     uint32
}

type groupKey struct {
	contig int
	strand coords.Strand
}

// AlignOne returns the candidates of a single query, best first.
func (e *Engine) AlignOne(q Sequence) []Candidate {
	k := e.cfg.TileLength
	seq := bytes.ToUpper(q.Seq)
	qlen := uint64(len(seq))
	if len(seq) < k {
		return []Candidate{}
	}
	if qlen-uint64(k) > packed.MaxOffset {
		e.log.Warn("query too long, skipped", "query", q.Name, "length", qlen)
		return []Candidate{}
	}

	groups := make(map[groupKey][]anchor)
	repetitive, unknown := 0, 0
	collect := func(s []byte, reverse bool) {
		tile.Each(s, k, func(off int, t []byte) {
			key, ok := tile.Encode(t)
			if !ok {
				return
			}
			entry, ok := e.table.Lookup(key)
			if !ok {
				unknown++
				return
			}
			positions, ok := entry.(index.Positions)
			if !ok {
				repetitive++
				return
			}
			for _, pos := range positions {
				p, err := packed.Encode(packed.Hit{Coord: pos, Reverse: reverse, Offset: uint32(off)})
				if err != nil {
					continue
				}
				loc, err := e.cm.FromGenome(p, qlen, coords.Buffer{})
				if err != nil {
					continue
				}
				ci, _ := e.cm.Index(loc.Contig)
				g := groupKey{contig: ci, strand: loc.Strand}
				groups[g] = append(groups[g], anchor{start: loc.Start, end: loc.End, offset: uint32(off)})
			}
		})
	}
	collect(seq, false)
	collect(tile.RevComp(seq), true)

	var cands []Candidate
	for g, as := range groups {
		cands = append(cands, e.cluster(q.Name, g, as)...)
	}
	for i := range cands {
		cands[i].Repetitive = repetitive
	}
	sortCandidates(cands)
	e.log.Debug("query aligned",
		"query", q.Name,
		"candidates", len(cands),
		"repetitive_tiles", repetitive,
		"unmatched_tiles", unknown)
	if cands == nil {
		cands = []Candidate{}
	}
	return cands
}

// cluster splits anchors sorted by start into runs whose consecutive starts
// differ by at most the diagonal slack.
func (e *Engine) cluster(name string, g groupKey, as []anchor) []Candidate {
	sort.Slice(as, func(i, j int) bool {
		if as[i].start != as[j].start {
			return as[i].start < as[j].start
		}
		return as[i].offset < as[j].offset
	})
	r := e.cm.Contig(g.contig)
	var out []Candidate
	flush := func(run []anchor) {
		offsets := make(map[uint32]struct{}, len(run))
		start, end := run[0].start, run[0].end
		for _, a := range run {
			offsets[a.offset] = struct{}{}
			start = min(start, a.start)
			end = max(end, a.end)
		}
		if len(offsets) < e.cfg.MinSupport {
			return
		}
		start = widenLeft(start, e.cfg.Buffer.Left)
		end = min(end+e.cfg.Buffer.Right, r.Length)
		out = append(out, Candidate{
			Query:   name,
			Contig:  r.Name,
			Start:   start,
			End:     end,
			Strand:  g.strand,
			Support: len(offsets),
			contig:  g.contig,
		})
	}
	begin := 0
	for i := 1; i <= len(as); i++ {
		if i == len(as) || as[i].start-as[i-1].start > e.cfg.DiagonalSlack {
			flush(as[begin:i])
			begin = i
		}
	}
	return out
}

func widenLeft(start, by uint64) uint64 {
	if by >= start {
		return 1
	}
	return start - by
}

// sortCandidates orders by support descending, then contig order, start
// and strand.
func sortCandidates(c []Candidate) {
	sort.Slice(c, func(i, j int) bool {
		a, b := c[i], c[j]
		if a.Support != b.Support {
			return a.Support > b.Support
		}
		if a.contig != b.contig {
			return a.contig < b.contig
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.Strand < b.Strand
	})
}
