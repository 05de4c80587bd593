package builder

import (
	"context"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"

	"gtile/core/errs"
	"gtile/core/fasta"
	"gtile/core/index"
)

// BuildFile indexes the FASTA at refPath (plain or gzip, "-" for stdin) and
// writes the gzip index to outPath. The index is written to a temporary file
// next to outPath and renamed into place only when complete; an exclusive
// lock on outPath+".lock" keeps concurrent builds of the same output apart.
func BuildFile(ctx context.Context, cfg Config, refPath, outPath string) (Summary, error) {
	if err := index.CheckOutputPath(outPath); err != nil {
		return Summary{}, err
	}
	b, err := New(cfg)
	if err != nil {
		return Summary{}, err
	}
	log := b.log

	lock := flock.New(outPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return Summary{}, errs.IO(err, "lock", lock.Path())
	}
	if !locked {
		return Summary{}, errs.Configf("another build of %s is in progress (lock: %s)", outPath, lock.Path())
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	began := time.Now()
	log.Info("reading reference", "path", refPath, "tile_length", cfg.TileLength, "positions_cutoff", cfg.PositionsCutoff)
	err = fasta.ScanPath(ctx, refPath, func(rec fasta.Record) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return b.AddContig(ctx, rec.ID, rec.Seq)
	})
	if err != nil {
		return Summary{}, err
	}
	sum := b.Summary()
	log.Info("reference indexed",
		"contigs", sum.Contigs,
		"bases", humanize.Comma(int64(sum.Bases)),
		"tiles", humanize.Comma(int64(sum.Tiles)),
		"count_only", humanize.Comma(int64(sum.CountOnly)),
		"elapsed", time.Since(began).Round(time.Millisecond))
	if sum.AmbiguousTiles > 0 {
		log.Warn("tiles with ambiguous bases", "windows", humanize.Comma(int64(sum.AmbiguousTiles)))
	}

	tmp, err := os.CreateTemp(filepath.Dir(outPath), "."+filepath.Base(outPath)+".*.tmp")
	if err != nil {
		return Summary{}, errs.IO(err, "create", outPath)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	gw, err := index.NewWriter(tmp)
	if err != nil {
		return Summary{}, errs.IO(err, "gzip", tmp.Name())
	}
	if err := b.WriteTo(gw, headerFor(cfg, refPath)); err != nil {
		return Summary{}, errs.IO(err, "write", tmp.Name())
	}
	if err := gw.Close(); err != nil {
		return Summary{}, errs.IO(err, "write", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return Summary{}, errs.IO(err, "close", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), outPath); err != nil {
		return Summary{}, errs.IO(err, "rename", outPath)
	}
	committed = true

	var size string
	if st, err := os.Stat(outPath); err == nil {
		size = humanize.Bytes(uint64(st.Size()))
	}
	log.Info("index written", "path", outPath, "size", size, "elapsed", time.Since(began).Round(time.Millisecond))
	return sum, nil
}

func headerFor(cfg Config, refPath string) index.Header {
	name := os.Getenv("USER")
	if u, err := user.Current(); err == nil && u.Username != "" {
		name = u.Username
	}
	return index.Header{
		ToolVersion: cfg.ToolVersion,
		Date:        time.Now().UTC().Format(time.RFC3339),
		User:        name,
		Reference:   refPath,
	}
}
