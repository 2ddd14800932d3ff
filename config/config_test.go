package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdok/osmgpkg/layer"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, ".", c.OutputDir)
	assert.True(t, c.UseTransactions)
	assert.Equal(t, layer.DefaultBatchSize, c.BatchSize)
	assert.Equal(t, layer.DefaultCacheSize, c.CacheSize)
	assert.Equal(t, "MEMORY", c.JournalMode)
	require.NoError(t, c.Validate())
	assert.Equal(t, layer.DefaultOptions(), c.LayerOptions())
}

func TestLoad(t *testing.T) {
	c, err := Load(afero.NewOsFs(), "testdata/osmgpkg.json")
	require.NoError(t, err)

	want := Default()
	want.OutputDir = "/data/out"
	want.Layers = []string{"points", "areas"}
	want.Overwrite = true
	want.BatchSize = 5000
	want.SpatialIndex = true
	assert.Equal(t, want, c)

	opts := c.LayerOptions()
	assert.Equal(t, 5000, opts.BatchSize)
	assert.True(t, opts.Overwrite)
	assert.True(t, opts.SpatialIndex)
	assert.True(t, opts.UseTransactions)
}

func TestLoad_invalid(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr string
	}{
		{name: "unknown key", json: `{"batch_size": 10, "colour": "red"}`, wantErr: "unknown key(s) batch_size, colour"},
		{name: "batch size", json: `{"batchSize": 0}`, wantErr: "BatchSize"},
		{name: "journal mode", json: `{"journalMode": "FAST"}`, wantErr: "JournalMode"},
		{name: "empty layer name", json: `{"layers": ["points", ""]}`, wantErr: "Layers[1]"},
		{name: "not json", json: `batchSize: 10`, wantErr: "could not parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "config.json", []byte(tt.json), 0o644))
			_, err := Load(fs, "config.json")
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoad_missing(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "nope.json")
	require.ErrorContains(t, err, "could not read config")
}
