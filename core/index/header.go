// Package index defines the on-disk tile index: a gzip-compressed, sorted,
// tab-separated text file.
//
//	##gtile_version=0.3.0
//	##date=2026-10-19T12:00:00Z
//	##user=alice
//	##reference=/data/hg38.fa
//	##positions_cutoff=1000
//	##tile_length=13
//	##tile_count=67108864
//	##chr1:248956422:1
//	##chr2:242193529:248956423
//	#Tile	list of positions OR count (C12345)
//	AAAAAAAAAAAAA	C912345
//	AAAAAAAAAAAAC	17,20391,...
package index

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gtile/core/coords"
	"gtile/core/errs"
)

const (
	// HeaderPrefix starts every metadata and contig line.
	HeaderPrefix = "##"
	// ColumnsLine is the last header line before data.
	ColumnsLine = "#Tile\tlist of positions OR count (C12345)"
	// CountPrefix marks a count-only payload.
	CountPrefix = 'C'
)

const (
	keyVersion = "gtile_version"
	keyDate    = "date"
	keyUser    = "user"
	keyRef     = "reference"
	keyCutoff  = "positions_cutoff"
	keyTileLen = "tile_length"
	keyCount   = "tile_count"
)

// Header is everything above the data lines.
type Header struct {
	ToolVersion     string
	Date            string
	User            string
	Reference       string
	PositionsCutoff int
	TileLength      int
	TileCount       uint64
	Contigs         []coords.Range
	// Extra holds unrecognised key=value lines, kept for forward compatibility.
	Extra map[string]string
}

// CoordinateMap rebuilds the coordinate map from the recorded contig ranges.
func (h Header) CoordinateMap() (*coords.Map, error) {
	return coords.FromRanges(h.Contigs)
}

// WriteHeader writes h followed by the column line.
func WriteHeader(w io.Writer, h Header) error {
	bw := bufio.NewWriter(w)
	kv := func(k, v string) {
		fmt.Fprintf(bw, "%s%s=%s\n", HeaderPrefix, k, v)
	}
	kv(keyVersion, h.ToolVersion)
	kv(keyDate, h.Date)
	kv(keyUser, h.User)
	kv(keyRef, h.Reference)
	kv(keyCutoff, strconv.Itoa(h.PositionsCutoff))
	kv(keyTileLen, strconv.Itoa(h.TileLength))
	kv(keyCount, strconv.FormatUint(h.TileCount, 10))
	for _, c := range h.Contigs {
		fmt.Fprintf(bw, "%s%s:%d:%d\n", HeaderPrefix, c.Name, c.Length, c.Start)
	}
	fmt.Fprintln(bw, ColumnsLine)
	return bw.Flush()
}

// ReadHeader consumes header lines from r up to and including the column
// line. r is left positioned at the first data line.
func ReadHeader(r *bufio.Reader) (Header, error) {
	var h Header
	seen := make(map[string]bool)
	sawColumns := false
	for n := 1; ; n++ {
		peek, err := r.Peek(1)
		if err == io.EOF {
			break
		}
		if err != nil {
			return h, err
		}
		if peek[0] != '#' {
			break
		}
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return h, err
		}
		line = strings.TrimRight(line, "\r\n")
		if !strings.HasPrefix(line, HeaderPrefix) {
			if strings.HasPrefix(line, "#Tile") {
				sawColumns = true
				break
			}
			continue
		}
		if err := h.parseLine(line[len(HeaderPrefix):], seen); err != nil {
			return h, fmt.Errorf("header line %d: %w", n, err)
		}
	}
	if !sawColumns && len(h.Contigs) == 0 && h.TileLength == 0 {
		return h, errs.Dataf("missing index header")
	}
	if h.TileLength == 0 {
		return h, errs.Dataf("index header has no %s", keyTileLen)
	}
	return h, nil
}

// parseLine handles one "##" line. Metadata precedes the contig lines, so
// once contigs have started, or a metadata key repeats, a line that parses
// as "name:length:start" is a contig even if its name contains '='.
func (h *Header) parseLine(body string, seen map[string]bool) error {
	if k, v, ok := strings.Cut(body, "="); ok {
		if len(h.Contigs) > 0 || seen[k] {
			if c, err := parseContig(body); err == nil {
				h.Contigs = append(h.Contigs, c)
				return nil
			}
		}
		seen[k] = true
		switch k {
		case keyVersion:
			h.ToolVersion = v
		case keyDate:
			h.Date = v
		case keyUser:
			h.User = v
		case keyRef:
			h.Reference = v
		case keyCutoff:
			n, err := strconv.Atoi(v)
			if err != nil {
				return errs.Dataf("bad %s %q", k, v)
			}
			h.PositionsCutoff = n
		case keyTileLen:
			n, err := strconv.Atoi(v)
			if err != nil {
				return errs.Dataf("bad %s %q", k, v)
			}
			h.TileLength = n
		case keyCount:
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return errs.Dataf("bad %s %q", k, v)
			}
			h.TileCount = n
		default:
			if c, err := parseContig(body); err == nil {
				h.Contigs = append(h.Contigs, c)
				return nil
			}
			if h.Extra == nil {
				h.Extra = make(map[string]string)
			}
			h.Extra[k] = v
		}
		return nil
	}
	c, err := parseContig(body)
	if err != nil {
		return err
	}
	h.Contigs = append(h.Contigs, c)
	return nil
}

// parseContig reads "name:length:start"; the name may itself contain ':'.
func parseContig(body string) (coords.Range, error) {
	j := strings.LastIndexByte(body, ':')
	if j < 0 {
		return coords.Range{}, errs.Dataf("unrecognised header line %q", body)
	}
	i := strings.LastIndexByte(body[:j], ':')
	if i <= 0 {
		return coords.Range{}, errs.Dataf("unrecognised header line %q", body)
	}
	length, err := strconv.ParseUint(body[i+1:j], 10, 64)
	if err != nil {
		return coords.Range{}, errs.Dataf("bad contig length in %q", body)
	}
	start, err := strconv.ParseUint(body[j+1:], 10, 64)
	if err != nil {
		return coords.Range{}, errs.Dataf("bad contig start in %q", body)
	}
	return coords.Range{Name: body[:i], Length: length, Start: start}, nil
}
