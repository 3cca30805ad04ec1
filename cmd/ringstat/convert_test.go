package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peter-kozarec/ringstat/pkg/data/mapper"
)

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "in.csv")
	outPath := filepath.Join(dir, "out.bin")

	require.NoError(t, os.WriteFile(csvPath, []byte(
		"timestamp,value\n"+
			"2024-01-01T00:00:00Z,1.5\n"+
			"2024-01-01 00:00:01.5+00:00,2.5\n"+
			"2024-01-01 00:00:03,-4\n"), 0o644))

	n, err := Convert(csvPath, outPath)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	r := mapper.NewReader[mapper.BinarySample](outPath)
	require.NoError(t, r.Open())
	defer r.Close()

	var got []mapper.BinarySample
	require.NoError(t, mapper.ForEach(context.Background(), r, func(b mapper.BinarySample) error {
		got = append(got, b)
		return nil
	}))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []mapper.BinarySample{
		{TimeStamp: base.UnixNano(), Value: 1.5},
		{TimeStamp: base.Add(1500 * time.Millisecond).UnixNano(), Value: 2.5},
		{TimeStamp: base.Add(3 * time.Second).UnixNano(), Value: -4},
	}, got)
}

func TestConvertInvalid(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"bad timestamp", "timestamp,value\nyesterday,1\n"},
		{"bad value", "timestamp,value\n2024-01-01T00:00:00Z,abc\n"},
		{"wrong field count", "timestamp,value\n2024-01-01T00:00:00Z,1,2\n"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			csvPath := filepath.Join(dir, "in.csv")
			require.NoError(t, os.WriteFile(csvPath, []byte(tt.csv), 0o644))

			_, err := Convert(csvPath, filepath.Join(dir, "out.bin"))
			assert.Error(t, err)
		})
	}
}
