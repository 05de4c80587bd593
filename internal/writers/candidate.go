package writers

import (
	"bufio"
	"io"

	"gtile/core/errs"
	"gtile/core/query"
	"gtile/internal/output"
)

// Formats accepted by StartCandidateWriter.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

// StartCandidateWriter spins up a writer goroutine for format. Text streams
// rows as they arrive; JSON buffers everything into one array.
func StartCandidateWriter(out io.Writer, format string, header bool, bufSize int) (chan<- query.Candidate, <-chan error, error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	switch format {
	case FormatJSONL:
		in, done := StartCandidateJSONLWriter(out, bufSize)
		return in, done, nil
	case FormatText, FormatJSON:
	default:
		return nil, nil, errs.Configf("unsupported output format %q (want text|json|jsonl)", format)
	}

	in := make(chan query.Candidate, bufSize)
	errCh := make(chan error, 1)
	go func() {
		bw := bufio.NewWriterSize(out, 64<<10)
		var err error
		if format == FormatJSON {
			var buf []query.Candidate
			for c := range in {
				buf = append(buf, c)
			}
			err = output.WriteJSON(bw, buf)
		} else {
			err = output.StreamText(bw, in, header)
		}
		if ferr := bw.Flush(); err == nil {
			err = ferr
		}
		if IsBrokenPipe(err) {
			err = nil
		}
		errCh <- err
	}()
	return in, errCh, nil
}
