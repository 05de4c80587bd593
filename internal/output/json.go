// internal/output/json.go
package output

import (
	"encoding/json"
	"io"

	"gtile/core/coords"
	"gtile/core/query"
	"gtile/pkg/api"
)

// ToAPICandidate converts a domain candidate to the stable wire schema (v1).
func ToAPICandidate(c query.Candidate) api.CandidateV1 {
	return api.CandidateV1{
		Query:      c.Query,
		Contig:     c.Contig,
		Start:      c.Start,
		End:        c.End,
		Strand:     c.Strand.String(),
		Support:    c.Support,
		Repetitive: c.Repetitive,
	}
}

// ToAPILocus converts a decoded position to the wire schema.
func ToAPILocus(pos uint64, l coords.Locus) api.LocusV1 {
	return api.LocusV1{Position: pos, Contig: l.Contig, Start: l.Start, End: l.End, Strand: l.Strand.String()}
}

// WriteJSON writes a single JSON array of v1 candidates (pretty-indented).
func WriteJSON(w io.Writer, list []query.Candidate) error {
	out := make([]api.CandidateV1, 0, len(list))
	for _, c := range list {
		out = append(out, ToAPICandidate(c))
	}
	return EncodePretty(w, out)
}

// EncodePretty writes v as indented JSON to w.
func EncodePretty(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
