package common

import (
	"time"

	"go.uber.org/zap/zapcore"
)

// Sample is a single sensor reading.
type Sample struct {
	Sensor    string    `json:"sensor" yaml:"sensor"`
	Value     float64   `json:"value" yaml:"value"`
	TimeStamp time.Time `json:"ts" yaml:"ts"`
}

func (s Sample) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("sensor", s.Sensor)
	enc.AddFloat64("value", s.Value)
	enc.AddTime("ts", s.TimeStamp)
	return nil
}
