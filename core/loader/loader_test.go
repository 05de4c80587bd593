package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gtile/core/builder"
	"gtile/core/errs"
	"gtile/core/index"
	"gtile/core/tile"
)

const header = "##gtile_version=test\n##positions_cutoff=3\n##tile_length=4\n##tile_count=6\n##c1:20:1\n##c2:10:21\n" + index.ColumnsLine + "\n"

const body = "AAAA\tC9\n" +
	"ACGT\t2,7,22\n" +
	"ACNT\t5\n" +
	"CCCC\t11\n" +
	"GGGG\t12,13\n" +
	"TTTT\t25\n"

func mustKey(t *testing.T, s string) tile.Key {
	t.Helper()
	k, ok := tile.EncodeString(s)
	require.True(t, ok, s)
	return k
}

func TestLoadReader_Full(t *testing.T) {
	for _, workers := range []int{1, 4} {
		res, err := LoadReader(context.Background(), strings.NewReader(header+body), Options{Workers: workers, QueueSize: 2})
		require.NoError(t, err)
		assert.Equal(t, 5, res.Table.Len())
		e, ok := res.Table.Lookup(mustKey(t, "ACGT"))
		require.True(t, ok)
		assert.Equal(t, index.Positions{2, 7, 22}, e)
		e, ok = res.Table.Lookup(mustKey(t, "AAAA"))
		require.True(t, ok)
		assert.Equal(t, index.CountOnly(9), e)

		assert.Equal(t, Stats{Lines: 6, Forwarded: 6, Inserted: 5, CountOnly: 1, InvalidTiles: 1}, res.Stats)
		assert.Equal(t, 2, res.Coords.Len())
		assert.Equal(t, 4, res.Header.TileLength)
	}
}

func TestLoadReader_SelectiveMatchesFull(t *testing.T) {
	full, err := LoadReader(context.Background(), strings.NewReader(header+body), Options{})
	require.NoError(t, err)

	interest := tile.NewSet()
	interest.Add(mustKey(t, "ACGT"))
	interest.Add(mustKey(t, "GGGG"))
	interest.Add(mustKey(t, "GATC")) // not in the index
	sel, err := LoadReader(context.Background(), strings.NewReader(header+body), Options{Interest: interest, Workers: 3})
	require.NoError(t, err)

	assert.Equal(t, 2, sel.Table.Len())
	for _, k := range interest.Keys() {
		want, wok := full.Table.Lookup(k)
		got, gok := sel.Table.Lookup(k)
		assert.Equal(t, wok, gok)
		assert.Equal(t, want, got)
	}
}

func TestLoadReader_SelectiveStopsEarly(t *testing.T) {
	interest := tile.NewSet()
	interest.Add(mustKey(t, "AAAA"))
	interest.Add(mustKey(t, "ACGT"))
	res, err := LoadReader(context.Background(), strings.NewReader(header+body), Options{Interest: interest})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.Stats.Lines)
	assert.Equal(t, 2, res.Table.Len())
}

func TestLoadReader_EmptyInterest(t *testing.T) {
	res, err := LoadReader(context.Background(), strings.NewReader(header+body), Options{Interest: tile.NewSet()})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Table.Len())
}

func TestLoadReader_Anomalies(t *testing.T) {
	in := header +
		"ACGT\t1\n" +
		"ACGT\t2\n" + // duplicate: first wins
		"garbage\n" +
		"CCC\t3\n" + // wrong length
		"GGGG\t1,x\n"
	res, err := LoadReader(context.Background(), strings.NewReader(in), Options{Workers: 1})
	require.NoError(t, err)
	e, _ := res.Table.Lookup(mustKey(t, "ACGT"))
	assert.Equal(t, index.Positions{1}, e)
	assert.Equal(t, uint64(1), res.Stats.Duplicates)
	assert.Equal(t, uint64(2), res.Stats.Malformed)
	assert.Equal(t, uint64(1), res.Stats.InvalidTiles)
	assert.Equal(t, uint64(4), res.Stats.Anomalies())
}

func TestLoadReader_DuplicatesKeepFileOrderAcrossWorkers(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(header)
	tiles := []string{"AAAA", "ACGT", "CCCC", "GGGG", "TTTT", "TGCA", "CATG", "GATC"}
	for n := 1; n <= 50; n++ {
		for i, name := range tiles {
			fmt.Fprintf(&sb, "%s\t%d\n", name, n*100+i)
		}
	}
	for _, workers := range []int{2, 4, 8} {
		res, err := LoadReader(context.Background(), strings.NewReader(sb.String()), Options{Workers: workers, QueueSize: 4})
		require.NoError(t, err)
		for i, name := range tiles {
			e, ok := res.Table.Lookup(mustKey(t, name))
			require.True(t, ok, name)
			assert.Equal(t, index.Positions{uint64(100 + i)}, e, "workers=%d tile=%s", workers, name)
		}
		assert.Equal(t, uint64(49*len(tiles)), res.Stats.Duplicates)
	}
}

func TestLoadReader_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LoadReader(ctx, strings.NewReader(header+body), Options{Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadReader_MissingHeader(t *testing.T) {
	_, err := LoadReader(context.Background(), strings.NewReader(body), Options{})
	assert.ErrorIs(t, err, errs.ErrData)
}

type recorder struct {
	mu      sync.Mutex
	lines   int
	inserts int
	skips   map[string]int
	loads   int
}

func (r *recorder) OnLine()       { r.mu.Lock(); r.lines++; r.mu.Unlock() }
func (r *recorder) OnInsert(bool) { r.mu.Lock(); r.inserts++; r.mu.Unlock() }
func (r *recorder) OnSkip(reason string) {
	r.mu.Lock()
	r.skips[reason]++
	r.mu.Unlock()
}
func (r *recorder) OnLoad(time.Duration, int, error) { r.mu.Lock(); r.loads++; r.mu.Unlock() }

func TestLoadReader_Metrics(t *testing.T) {
	rec := &recorder{skips: map[string]int{}}
	_, err := LoadReader(context.Background(), strings.NewReader(header+body), Options{Workers: 2, Metrics: rec})
	require.NoError(t, err)
	assert.Equal(t, 6, rec.lines)
	assert.Equal(t, 5, rec.inserts)
	assert.Equal(t, map[string]int{SkipInvalidTile: 1}, rec.skips)
	assert.Equal(t, 1, rec.loads)
}

func TestLoad_BuiltIndex(t *testing.T) {
	dir := t.TempDir()
	ref := filepath.Join(dir, "ref.fa")
	require.NoError(t, os.WriteFile(ref, []byte(">chr1\nAAAAAAAAAAAAAT\n>chr2\nGGGGGGGGGGGGGG\n"), 0o644))
	out := filepath.Join(dir, "idx.tsv.gz")
	cfg := builder.DefaultConfig()
	cfg.PositionsCutoff = 100
	_, err := builder.BuildFile(context.Background(), cfg, ref, out)
	require.NoError(t, err)

	res, err := Load(context.Background(), out, Options{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Table.Len())
	e, ok := res.Table.Lookup(mustKey(t, "GGGGGGGGGGGGG"))
	require.True(t, ok)
	assert.Equal(t, index.Positions{15, 16}, e)

	_, err = Load(context.Background(), filepath.Join(dir, "missing.gz"), Options{})
	assert.True(t, errs.IsIO(err))
}

func TestTable_FirstWriteWins(t *testing.T) {
	tb := NewTable()
	assert.True(t, tb.Insert(1, index.Positions{1}))
	assert.False(t, tb.Insert(1, index.Positions{2}))
	e, _ := tb.Lookup(1)
	assert.Equal(t, index.Positions{1}, e)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := tile.Key(0); k < 1000; k++ {
				tb.Insert(k, index.CountOnly(k))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, tb.Len())

	n := 0
	tb.Range(func(tile.Key, index.Entry) bool { n++; return n < 10 })
	assert.Equal(t, 10, n)
}
