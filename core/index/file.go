package index

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"gtile/core/errs"
)

// Suffix is required on index output paths.
const Suffix = ".gz"

// CheckOutputPath rejects index paths that are not gzip-named.
func CheckOutputPath(path string) error {
	if !strings.HasSuffix(path, Suffix) {
		return errs.Configf("index output %q must end in %s", path, Suffix)
	}
	return nil
}

type readCloser struct {
	*bufio.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var err error
	for _, c := range r.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Reader is an open index positioned at its first data line.
type Reader struct {
	Header Header
	*bufio.Reader
	io.Closer
}

// Open opens a gzip index file and parses its header.
func Open(path string) (*Reader, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errs.IO(err, "open", path)
	}
	gr, err := gzip.NewReader(fh)
	if err != nil {
		_ = fh.Close()
		return nil, errs.IO(err, "gunzip", path)
	}
	rc := &readCloser{Reader: bufio.NewReaderSize(gr, 1<<20), closers: []io.Closer{gr, fh}}
	h, err := ReadHeader(rc.Reader)
	if err != nil {
		_ = rc.Close()
		return nil, errors.Wrapf(err, "read header %s", path)
	}
	return &Reader{Header: h, Reader: rc.Reader, Closer: rc}, nil
}

// NewReader parses the header of an already decompressed index stream.
func NewReader(r io.Reader) (*Reader, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, 1<<20)
	}
	h, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}
	return &Reader{Header: h, Reader: br, Closer: io.NopCloser(nil)}, nil
}

// NewWriter wraps w in a gzip stream for index output.
func NewWriter(w io.Writer) (*gzip.Writer, error) {
	return gzip.NewWriterLevel(w, gzip.DefaultCompression)
}
