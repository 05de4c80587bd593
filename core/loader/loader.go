// Package loader reads a tile index into memory.
//
// One reader goroutine scans data lines and sends them on a bounded channel;
// a pool of workers decodes tiles and payloads and inserts them into a
// sharded Table. The reader closes the channel when it is done, so a worker
// only exits once the reader has finished and the queue is drained.
//
// In selective mode (Options.Interest set) the reader forwards only lines
// whose tile is of interest, and stops as soon as every interesting tile has
// been seen.
package loader

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"gtile/core/coords"
	"gtile/core/errs"
	"gtile/core/index"
	"gtile/core/tile"
)

// Defaults.
const (
	DefaultWorkers   = 1
	DefaultQueueSize = 1024
)

// Options controls a load.
type Options struct {
	Workers   int       // worker goroutines (>=1)
	QueueSize int       // bounded queue between reader and workers
	Interest  *tile.Set // nil loads every tile
	Logger    *slog.Logger
	Metrics   MetricsObserver
}

func (o *Options) normalize() {
	if o.Workers < 1 {
		o.Workers = DefaultWorkers
	}
	if o.QueueSize < 1 {
		o.QueueSize = DefaultQueueSize
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Metrics == nil {
		o.Metrics = NoopMetricsObserver{}
	}
}

// Result is a loaded index.
type Result struct {
	Header index.Header
	Coords *coords.Map
	Table  *Table
	Stats  Stats
}

// Load reads the gzip index at path.
func Load(ctx context.Context, path string, opts Options) (*Result, error) {
	r, err := index.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	res, err := load(ctx, r, opts)
	if err != nil && ctx.Err() == nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return res, err
}

// LoadReader reads an uncompressed index stream.
func LoadReader(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	ir, err := index.NewReader(r)
	if err != nil {
		return nil, err
	}
	return load(ctx, ir, opts)
}

func load(ctx context.Context, r *index.Reader, opts Options) (*Result, error) {
	opts.normalize()
	log := opts.Logger
	began := time.Now()

	h := r.Header
	if err := tile.CheckLength(h.TileLength); err != nil {
		return nil, err
	}
	cm, err := h.CoordinateMap()
	if err != nil {
		return nil, err
	}
	cm = cm.WithLogger(log)

	res := &Result{Header: h, Coords: cm, Table: NewTable()}
	var c counters
	// One queue per worker. Lines are routed by tile key, so every copy of a
	// tile reaches the same worker in file order.
	queues := make([]chan string, opts.Workers)
	for w := range queues {
		queues[w] = make(chan string, max(1, opts.QueueSize/opts.Workers))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer func() {
			for _, q := range queues {
				close(q)
			}
		}()
		return readLines(gctx, r, h.TileLength, opts, &c, queues)
	})
	for _, q := range queues {
		g.Go(func() error {
			insertLines(gctx, h.TileLength, res.Table, opts, &c, q)
			return gctx.Err()
		})
	}
	err = g.Wait()
	if cerr := ctx.Err(); cerr != nil {
		err = cerr
	}
	res.Stats = c.snapshot()
	opts.Metrics.OnLoad(time.Since(began), res.Table.Len(), err)
	if err != nil {
		return nil, err
	}

	s := res.Stats
	log.Info("index loaded",
		"tiles", humanize.Comma(int64(s.Inserted)),
		"count_only", humanize.Comma(int64(s.CountOnly)),
		"lines", humanize.Comma(int64(s.Lines)),
		"selective", opts.Interest != nil,
		"elapsed", time.Since(began).Round(time.Millisecond))
	if s.Anomalies() > 0 {
		log.Warn("index anomalies",
			"invalid_tiles", s.InvalidTiles,
			"malformed", s.Malformed,
			"duplicates", s.Duplicates)
	}
	return res, nil
}

// readLines is the single reader. It returns when input is exhausted, when
// every interesting tile has been seen, or when ctx is done.
func readLines(ctx context.Context, r *index.Reader, k int, opts Options, c *counters, out []chan string) error {
	var seen *tile.Set
	want := 0
	if opts.Interest != nil {
		seen = tile.NewSet()
		want = opts.Interest.Len()
		if want == 0 {
			return nil
		}
	}
	for {
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return errs.IO(err, "read", "index")
		}
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			c.lines.Add(1)
			opts.Metrics.OnLine()
			var key tile.Key
			encoded := false
			if t, _, perr := index.ParseLine(line); perr == nil && len(t) == k {
				key, encoded = tile.EncodeString(t)
			}
			forward := true
			if seen != nil {
				forward = encoded && opts.Interest.Contains(key)
				if forward {
					seen.Add(key)
				}
			}
			if forward {
				c.forwarded.Add(1)
				// lines without a key are rejected by any worker
				q := out[0]
				if encoded {
					q = out[workerFor(key, len(out))]
				}
				select {
				case q <- line:
				case <-ctx.Done():
					return ctx.Err()
				}
				if seen != nil && seen.Len() == want {
					opts.Logger.Debug("all interest tiles seen", "tiles", want, "lines", c.lines.Load())
					return nil
				}
			}
		}
		if err == io.EOF {
			return nil
		}
	}
}

func workerFor(k tile.Key, n int) int {
	return int((uint64(k) * 0x9E3779B97F4A7C15 >> 32) % uint64(n))
}

func insertLines(ctx context.Context, k int, t *Table, opts Options, c *counters, in <-chan string) {
	log := opts.Logger
	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return
		case line, ok = <-in:
			if !ok {
				return
			}
		}
		name, payload, err := index.ParseLine(line)
		if err != nil {
			c.malformed.Add(1)
			opts.Metrics.OnSkip(SkipMalformed)
			log.Debug("skipping line", "err", err)
			continue
		}
		key, valid := tile.EncodeString(name)
		if !valid || len(name) != k {
			c.invalid.Add(1)
			opts.Metrics.OnSkip(SkipInvalidTile)
			log.Debug("skipping unencodable tile", "tile", name)
			continue
		}
		e, err := index.ParsePayload(payload)
		if err != nil {
			c.malformed.Add(1)
			opts.Metrics.OnSkip(SkipMalformed)
			log.Debug("skipping line", "tile", name, "err", err)
			continue
		}
		if !t.Insert(key, e) {
			c.duplicates.Add(1)
			opts.Metrics.OnSkip(SkipDuplicate)
			log.Warn("duplicate tile, keeping first entry", "tile", name)
			continue
		}
		c.inserted.Add(1)
		countOnly := index.IsCountOnly(e)
		if countOnly {
			c.countOnly.Add(1)
		}
		opts.Metrics.OnInsert(countOnly)
	}
}
