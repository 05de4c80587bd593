// Package errs holds the error taxonomy shared by the core packages.
//
// Configuration and I/O errors are fatal to a run. Data errors are recovered
// locally (counted and logged) and only surface when a caller asks for them.
package errs

import (
	"github.com/pkg/errors"
)

var (
	// ErrConfig marks bad parameters: cutoff, tile length, overlapping
	// contigs, an output path that is not gzip-named.
	ErrConfig = errors.New("configuration error")
	// ErrData marks unencodable tiles, malformed index lines and duplicates.
	ErrData = errors.New("data error")
	// ErrIO marks unreadable or unwritable files.
	ErrIO = errors.New("i/o error")
	// ErrNotFound is returned when a coordinate or contig has no range.
	ErrNotFound = errors.New("not found")
)

// Configf returns an ErrConfig carrying a formatted message.
func Configf(format string, args ...any) error {
	return errors.Wrapf(ErrConfig, format, args...)
}

// Dataf returns an ErrData carrying a formatted message.
func Dataf(format string, args ...any) error {
	return errors.Wrapf(ErrData, format, args...)
}

// IO wraps err as an ErrIO naming path. A nil err stays nil.
func IO(err error, op, path string) error {
	if err == nil {
		return nil
	}
	return &ioError{op: op, path: path, cause: err}
}

type ioError struct {
	op    string
	path  string
	cause error
}

func (e *ioError) Error() string {
	return e.op + " " + e.path + ": " + e.cause.Error()
}

func (e *ioError) Unwrap() []error { return []error{ErrIO, e.cause} }

// IsConfig reports whether err is a configuration error.
func IsConfig(err error) bool { return errors.Is(err, ErrConfig) }

// IsIO reports whether err is an I/O error.
func IsIO(err error) bool { return errors.Is(err, ErrIO) }

// NotFoundf returns an ErrNotFound carrying a formatted message.
func NotFoundf(format string, args ...any) error {
	return errors.Wrapf(ErrNotFound, format, args...)
}
