// internal/output/text.go
package output

import (
	"fmt"
	"io"

	"gtile/core/query"
)

// FormatRowTSV returns one candidate as a TSV row (no trailing newline).
func FormatRowTSV(c query.Candidate) string {
	return fmt.Sprintf("%s\t%s\t%d\t%d\t%s\t%d\t%d",
		c.Query, c.Contig, c.Start, c.End, c.Strand, c.Support, c.Repetitive)
}

// WriteText prints one row per candidate, with an optional header.
func WriteText(w io.Writer, list []query.Candidate, header bool) error {
	if header {
		if _, err := fmt.Fprintln(w, TSVHeader); err != nil {
			return err
		}
	}
	for _, c := range list {
		if _, err := fmt.Fprintln(w, FormatRowTSV(c)); err != nil {
			return err
		}
	}
	return nil
}

// StreamText is WriteText over a channel. It drains in even after a write
// error so the sender never blocks.
func StreamText(w io.Writer, in <-chan query.Candidate, header bool) error {
	var err error
	if header {
		_, err = fmt.Fprintln(w, TSVHeader)
	}
	for c := range in {
		if err != nil {
			continue
		}
		_, err = fmt.Fprintln(w, FormatRowTSV(c))
	}
	return err
}
