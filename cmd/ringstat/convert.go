package main

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/peter-kozarec/ringstat/pkg/data/mapper"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// Convert turns a timestamp,value CSV with a header row into binary sample
// records and returns the number of records written.
func Convert(csvPath, outPath string) (int, error) {
	in, err := os.Open(csvPath)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to open %q", csvPath)
	}
	defer func(in *os.File) {
		_ = in.Close()
	}(in)

	reader := csv.NewReader(in)
	reader.FieldsPerRecord = 2

	// Skip header
	if _, err := reader.Read(); err != nil {
		return 0, errors.Wrap(err, "unable to read header")
	}

	out, err := mapper.Create[mapper.BinarySample](outPath)
	if err != nil {
		return 0, err
	}

	n := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			_ = out.Close()
			return n, errors.Wrapf(err, "line %d", n+2)
		}

		sample, err := parseRecord(record)
		if err != nil {
			_ = out.Close()
			return n, errors.Wrapf(err, "line %d", n+2)
		}
		if err := out.Write(sample); err != nil {
			_ = out.Close()
			return n, errors.Wrap(err, "unable to write record")
		}
		n++
	}
	return n, out.Close()
}

func parseRecord(record []string) (mapper.BinarySample, error) {
	ts, err := parseTime(record[0])
	if err != nil {
		return mapper.BinarySample{}, err
	}
	value, err := strconv.ParseFloat(record[1], 64)
	if err != nil {
		return mapper.BinarySample{}, errors.Wrapf(err, "invalid value %q", record[1])
	}
	return mapper.BinarySample{TimeStamp: ts.UnixNano(), Value: value}, nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, errors.Errorf("invalid timestamp %q", s)
}
