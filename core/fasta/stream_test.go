package fasta

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gtile/core/errs"
)

const sample = ">chr1 first contig\nacgtACGT\nNNAC\n;comment\n\n>chr2\nGGGG\n"

func TestScan_Records(t *testing.T) {
	var got []Record
	err := Scan(context.Background(), strings.NewReader(sample), func(r Record) error {
		got = append(got, r)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Record{ID: "chr1", Seq: []byte("ACGTACGTNNAC")}, got[0])
	assert.Equal(t, Record{ID: "chr2", Seq: []byte("GGGG")}, got[1])
}

func TestScan_LinesLongerThanReadBuffer(t *testing.T) {
	long := strings.Repeat("acgtn", readBufSize+3)
	desc := strings.Repeat("x", 2*readBufSize)
	in := ">chr1 " + desc + "\r\n" + long + "\r\n;" + desc + "\n>chr2\n" + long[:7]
	var got []Record
	err := Scan(context.Background(), strings.NewReader(in), func(r Record) error {
		got = append(got, r)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "chr1", got[0].ID)
	assert.Equal(t, len(long), len(got[0].Seq))
	assert.True(t, bytes.Equal([]byte(strings.ToUpper(long)), got[0].Seq))
	assert.Equal(t, Record{ID: "chr2", Seq: []byte("ACGTNAC")}, got[1])
}

func TestScan_EmptySequenceRecord(t *testing.T) {
	var ids []string
	err := Scan(context.Background(), strings.NewReader(">a\n>b\nAC\n"), func(r Record) error {
		ids = append(ids, r.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestScan_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Scan(ctx, strings.NewReader(sample), func(Record) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanPath_Gzip(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	// no .gz suffix: detected by magic bytes
	path := filepath.Join(t.TempDir(), "ref.fa")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	recs, err := ReadAll(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "chr2", recs[1].ID)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.fa"))
	assert.True(t, errs.IsIO(err))
}
