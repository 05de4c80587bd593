// Package fasta streams FASTA records (plain or gzip) for the index builder
// and the query command.
package fasta

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
)

// Record is one parsed FASTA sequence. Seq is upper-cased.
type Record struct {
	ID  string
	Seq []byte
}

// Scan parses FASTA from r and calls emit once per record, in file order.
// Lines may be of any length; a chromosome on a single line is read in
// buffer-sized fragments. ctx is checked at the start of every line.
func Scan(ctx context.Context, r io.Reader, emit func(Record) error) error {
	br := bufio.NewReaderSize(r, readBufSize)

	var (
		id    string
		inRec bool
		seq   = make([]byte, 0, 1<<20)
		hdr   []byte
		kind  lineKind
	)
	flush := func() error {
		if !inRec {
			return nil
		}
		return emit(Record{ID: id, Seq: append([]byte(nil), seq...)})
	}

	atStart := true
	for {
		frag, err := br.ReadSlice('\n')
		if err != nil && err != bufio.ErrBufferFull && err != io.EOF {
			return fmt.Errorf("fasta scan: %w", err)
		}
		lineDone := err != bufio.ErrBufferFull
		if atStart && len(frag) > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			switch frag[0] {
			case '>':
				kind = headerLine
				hdr = hdr[:0]
			case ';':
				kind = commentLine
			default:
				kind = seqLine
			}
		}
		switch kind {
		case headerLine:
			hdr = append(hdr, frag...)
		case seqLine:
			seq = appendBases(seq, frag)
		}
		if lineDone && len(frag) > 0 && kind == headerLine {
			if err := flush(); err != nil {
				return err
			}
			seq = seq[:0]
			id = parseHeaderID(hdr[1:])
			inRec = true
		}
		atStart = lineDone
		if err == io.EOF {
			return flush()
		}
	}
}

const readBufSize = 1 << 20

type lineKind int

const (
	seqLine lineKind = iota
	headerLine
	commentLine
)

// appendBases appends the upper-cased bases of a sequence line fragment,
// dropping whitespace and line endings.
func appendBases(dst, frag []byte) []byte {
	for _, b := range frag {
		switch {
		case b == ' ', b == '\t', b == '\r', b == '\n', b == '\v', b == '\f':
			continue
		case b >= 'a' && b <= 'z':
			b -= 'a' - 'A'
		}
		dst = append(dst, b)
	}
	return dst
}

// ScanPath opens path (gzip or plain, "-" for stdin) and scans it.
func ScanPath(ctx context.Context, path string, emit func(Record) error) error {
	rc, err := Open(path)
	if err != nil {
		return err
	}
	defer rc.Close()
	return Scan(ctx, rc, emit)
}

// ReadAll returns every record in path.
func ReadAll(ctx context.Context, path string) ([]Record, error) {
	var out []Record
	err := ScanPath(ctx, path, func(r Record) error {
		out = append(out, r)
		return nil
	})
	return out, err
}

func parseHeaderID(hdr []byte) string {
	hdr = bytes.TrimSpace(hdr)
	if i := bytes.IndexAny(hdr, " \t"); i >= 0 {
		return string(hdr[:i])
	}
	return string(hdr)
}
