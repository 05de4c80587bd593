package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gtile/core/errs"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gtile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("positions_cutoff: 250\nthreads: 8\nbuffer_left: 5\noutput_format: jsonl\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.PositionsCutoff)
	assert.Equal(t, 8, cfg.Threads)
	assert.Equal(t, 13, cfg.TileLength)
	assert.Equal(t, "jsonl", cfg.OutputFormat)

	assert.Equal(t, 250, cfg.BuilderConfig().PositionsCutoff)
	assert.Equal(t, 8, cfg.LoaderOptions().Workers)
	q := cfg.QueryConfig()
	assert.Equal(t, uint64(5), q.Buffer.Left)
	assert.Equal(t, 0, q.TileLength)
}

func TestLoad_Rejects(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("threads: [1\n"), 0o644))
	_, err := Load(bad)
	assert.True(t, errs.IsConfig(err))

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("positions_cutoff: 0\n"), 0o644))
	_, err = Load(invalid)
	assert.True(t, errs.IsConfig(err))

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errs.IsIO(err))
}

func TestLoaderOptions_ZeroThreadsMeansAllCPUs(t *testing.T) {
	cfg := Default()
	cfg.Threads = 0
	require.NoError(t, cfg.Validate())
	assert.GreaterOrEqual(t, cfg.LoaderOptions().Workers, 1)
	cfg.Threads = -1
	assert.True(t, errs.IsConfig(cfg.Validate()))
}
