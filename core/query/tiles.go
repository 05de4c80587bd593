package query

import (
	"bytes"
	"context"

	"gtile/core/loader"
	"gtile/core/tile"
)

// TileSequence returns every tile of seq and of its reverse complement.
// Tiles are upper-cased; ambiguous tiles are included as text.
func TileSequence(seq []byte, k int) map[string]struct{} {
	out := make(map[string]struct{})
	if k < 1 || len(seq) < k {
		return out
	}
	up := bytes.ToUpper(seq)
	add := func(_ int, t []byte) { out[string(t)] = struct{}{} }
	tile.Each(up, k, add)
	tile.Each(tile.RevComp(up), k, add)
	return out
}

// InterestSet encodes tiles of length k into a key set, skipping tiles that
// have no key.
func InterestSet(tiles map[string]struct{}, k int) *tile.Set {
	s := tile.NewSet()
	for t := range tiles {
		if len(t) != k {
			continue
		}
		if key, ok := tile.EncodeString(t); ok {
			s.Add(key)
		}
	}
	return s
}

// QueryInterest is the interest set covering every query, both strands.
func QueryInterest(queries []Sequence, k int) *tile.Set {
	s := tile.NewSet()
	for _, q := range queries {
		for t := range TileSequence(q.Seq, k) {
			if key, ok := tile.EncodeString(t); ok {
				s.Add(key)
			}
		}
	}
	return s
}

// BuildInterestIndex loads only the entries of indexPath whose tiles are in
// set.
func BuildInterestIndex(ctx context.Context, indexPath string, set *tile.Set, opts loader.Options) (*loader.Result, error) {
	if set == nil {
		set = tile.NewSet()
	}
	opts.Interest = set
	return loader.Load(ctx, indexPath, opts)
}
