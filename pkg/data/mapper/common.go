package mapper

import (
	"time"

	"github.com/peter-kozarec/ringstat/pkg/common"
)

type BinarySample struct {
	TimeStamp int64
	Value     float64
}

func NewBinarySample(sample common.Sample) BinarySample {
	return BinarySample{
		TimeStamp: sample.TimeStamp.UnixNano(),
		Value:     sample.Value,
	}
}

func (b BinarySample) ToSample(sensor string) common.Sample {
	return common.Sample{
		Sensor:    sensor,
		Value:     b.Value,
		TimeStamp: time.Unix(0, b.TimeStamp),
	}
}
