// internal/writers/jsonl.go
package writers

import (
	"encoding/json"
	"io"

	"gtile/core/query"
	"gtile/internal/jsonlutil"
	"gtile/internal/output"
)

// StartCandidateJSONLWriter streams each candidate as one JSON line (v1).
func StartCandidateJSONLWriter(out io.Writer, bufSize int) (chan<- query.Candidate, <-chan error) {
	return jsonlutil.Start[query.Candidate](out, bufSize,
		func(enc *json.Encoder, c query.Candidate) error {
			return enc.Encode(output.ToAPICandidate(c))
		},
		IsBrokenPipe,
	)
}
