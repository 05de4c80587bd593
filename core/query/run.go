package query

import (
	"context"

	"gtile/core/errs"
	"gtile/core/index"
	"gtile/core/loader"
)

// Report is the outcome of Run.
type Report struct {
	// Candidates holds every query's candidates, queries in input order and
	// each query's candidates best first.
	Candidates []Candidate
	// Unmatched lists queries without any candidate.
	Unmatched []string
	Load      loader.Stats
}

// Run tiles every query, loads the matching part of indexPath and aligns
// the queries. cfg.TileLength is taken from the index header when zero.
func Run(ctx context.Context, indexPath string, queries []Sequence, cfg Config, opts loader.Options) (*Report, error) {
	if len(queries) == 0 {
		return nil, errs.Configf("no query sequences")
	}
	if opts.Logger != nil && cfg.Logger == nil {
		cfg.Logger = opts.Logger
	}

	if cfg.TileLength == 0 {
		r, err := index.Open(indexPath)
		if err != nil {
			return nil, err
		}
		cfg.TileLength = r.Header.TileLength
		_ = r.Close()
	}
	res, err := BuildInterestIndex(ctx, indexPath, QueryInterest(queries, cfg.TileLength), opts)
	if err != nil {
		return nil, err
	}
	if cfg.TileLength != res.Header.TileLength {
		return nil, errs.Configf("tile length %d does not match index tile length %d", cfg.TileLength, res.Header.TileLength)
	}

	eng, err := New(res.Coords, res.Table, cfg)
	if err != nil {
		return nil, err
	}
	rep := &Report{Load: res.Stats}
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := eng.AlignOne(q)
		if len(c) == 0 {
			rep.Unmatched = append(rep.Unmatched, q.Name)
		}
		rep.Candidates = append(rep.Candidates, c...)
	}
	return rep, nil
}
