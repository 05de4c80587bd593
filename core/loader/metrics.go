package loader

import (
	"sync/atomic"
	"time"
)

// Skip reasons reported to MetricsObserver.OnSkip.
const (
	SkipInvalidTile = "invalid_tile"
	SkipMalformed   = "malformed"
	SkipDuplicate   = "duplicate"
)

// MetricsObserver receives load events.
type MetricsObserver interface {
	// OnLine is called for every data line the reader accepts.
	OnLine()
	// OnInsert is called for every entry stored in the table.
	OnInsert(countOnly bool)
	// OnSkip is called for every line that was not stored.
	OnSkip(reason string)
	// OnLoad is called once when a load finishes.
	OnLoad(d time.Duration, entries int, err error)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (NoopMetricsObserver) OnLine()                          {}
func (NoopMetricsObserver) OnInsert(bool)                    {}
func (NoopMetricsObserver) OnSkip(string)                    {}
func (NoopMetricsObserver) OnLoad(time.Duration, int, error) {}

// Stats are the totals of one load.
type Stats struct {
	Lines        uint64 // data lines read
	Forwarded    uint64 // lines handed to workers
	Inserted     uint64
	CountOnly    uint64 // inserted entries without positions
	InvalidTiles uint64 // forwarded tiles with bases outside {A,C,G,T} or of the wrong length
	Malformed    uint64
	Duplicates   uint64
}

// Anomalies is the number of lines that were skipped as bad data.
func (s Stats) Anomalies() uint64 { return s.InvalidTiles + s.Malformed + s.Duplicates }

type counters struct {
	lines, forwarded, inserted, countOnly atomic.Uint64
	invalid, malformed, duplicates        atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Lines:        c.lines.Load(),
		Forwarded:    c.forwarded.Load(),
		Inserted:     c.inserted.Load(),
		CountOnly:    c.countOnly.Load(),
		InvalidTiles: c.invalid.Load(),
		Malformed:    c.malformed.Load(),
		Duplicates:   c.duplicates.Load(),
	}
}
