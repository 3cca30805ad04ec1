package sensor

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/types/known/structpb"
)

// Proto encodes the snapshot as a protobuf Struct keyed by the json field names.
func (s Snapshot) Proto() (*structpb.Struct, error) {
	st, err := structpb.NewStruct(map[string]any{
		"id":            s.ID.String(),
		"name":          s.Name,
		"count":         s.Count,
		"last":          s.Last,
		"min":           s.Min,
		"max":           s.Max,
		"average":       s.Average.String(),
		"window_size":   s.WindowSize,
		"window_mean":   s.WindowMean,
		"window_stddev": s.WindowStdDev,
		"window_min":    s.WindowMin,
		"window_max":    s.WindowMax,
		"numeric_error": s.NumericError,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "sensor %s: snapshot", s.Name)
	}
	return st, nil
}
