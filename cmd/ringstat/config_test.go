package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
capacity: 32
from: 2024-01-01T00:00:00Z
sources:
  - sensor: boiler
    kind: binary
    path: data/boiler.bin
    capacity: 8
  - kind: duckdb
    path: data/readings.duckdb
    table: readings
`))
	require.NoError(t, err)

	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, 32, cfg.Capacity)
	assert.Equal(t, DefaultGapWindow, cfg.GapWindow)
	assert.True(t, cfg.From.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, DefaultTo, cfg.To)
	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, SourceConfig{Sensor: "boiler", Kind: SourceBinary, Path: "data/boiler.bin", Capacity: 8}, cfg.Sources[0])
	assert.Equal(t, "readings", cfg.Sources[1].Table)
}

func TestParseConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no sources", `capacity: 4`},
		{"negative capacity", "capacity: -1\nsources: [{sensor: a, kind: binary, path: a.bin}]"},
		{"unknown kind", `sources: [{sensor: a, kind: csv, path: a.csv}]`},
		{"binary without sensor", `sources: [{kind: binary, path: a.bin}]`},
		{"sql without table", `sources: [{kind: postgres, path: "host=localhost"}]`},
		{"missing path", `sources: [{sensor: a, kind: binary}]`},
		{"negative source capacity", `sources: [{sensor: a, kind: binary, path: a.bin, capacity: -3}]`},
		{"inverted range", "from: 2024-02-01T00:00:00Z\nto: 2024-01-01T00:00:00Z\nsources: [{sensor: a, kind: binary, path: a.bin}]"},
		{"unknown field", "capacty: 4\nsources: [{sensor: a, kind: binary, path: a.bin}]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ringstat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources: [{sensor: a, kind: binary, path: a.bin}]"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultCapacity, cfg.Capacity)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
