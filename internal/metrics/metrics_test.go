package metrics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gtile/core/index"
	"gtile/core/loader"
)

func TestObserver_LoadCounters(t *testing.T) {
	in := "##tile_length=4\n##c1:20:1\n" + index.ColumnsLine + "\n" +
		"AAAA\tC9\nACGT\t2,7\nACNT\t5\nACGT\t3\n"
	o := NewPrometheusObserver()
	_, err := loader.LoadReader(context.Background(), strings.NewReader(in), loader.Options{Metrics: o})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "gtile.prom")
	require.NoError(t, o.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "gtile_index_lines_total 4")
	assert.Contains(t, out, `gtile_index_entries_total{kind="count_only"} 1`)
	assert.Contains(t, out, `gtile_index_entries_total{kind="positions"} 1`)
	assert.Contains(t, out, `gtile_index_skipped_total{reason="duplicate"} 1`)
	assert.Contains(t, out, `gtile_index_skipped_total{reason="invalid_tile"} 1`)
	assert.Contains(t, out, `gtile_index_loads_total{status="success"} 1`)
	assert.Contains(t, out, "gtile_table_entries 2")
}

func TestWriteTextfile_BadPath(t *testing.T) {
	o := NewPrometheusObserver()
	err := o.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	assert.Error(t, err)
}
