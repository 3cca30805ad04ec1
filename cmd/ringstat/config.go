package main

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/peter-kozarec/ringstat/pkg/data/db"
)

const (
	DefaultConfigPath = "ringstat.yaml"
	DefaultListen     = ":9464"
	DefaultCapacity   = 64
	DefaultGapWindow  = 1024
)

const (
	SourceBinary   = "binary"
	SourceDuckDB   = db.DriverDuckDB
	SourcePostgres = db.DriverPostgres
)

var DefaultTo = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

type SourceConfig struct {
	Sensor   string `yaml:"sensor"`
	Kind     string `yaml:"kind"`
	Path     string `yaml:"path"`
	Table    string `yaml:"table"`
	Capacity int    `yaml:"capacity"`
}

type Config struct {
	Listen    string         `yaml:"listen"`
	Capacity  int            `yaml:"capacity"`
	GapWindow int            `yaml:"gap_window"`
	From      time.Time      `yaml:"from"`
	To        time.Time      `yaml:"to"`
	Sources   []SourceConfig `yaml:"sources"`
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to read config %q", path)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "unable to parse config")
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Capacity == 0 {
		c.Capacity = DefaultCapacity
	}
	if c.GapWindow == 0 {
		c.GapWindow = DefaultGapWindow
	}
	if c.To.IsZero() {
		c.To = DefaultTo
	}
}

func (c *Config) Validate() error {
	if c.Capacity < 0 {
		return errors.Errorf("capacity must be positive, got %d", c.Capacity)
	}
	if c.GapWindow < 0 {
		return errors.Errorf("gap_window must be positive, got %d", c.GapWindow)
	}
	if c.To.Before(c.From) {
		return errors.Errorf("to %s is before from %s", c.To, c.From)
	}
	if len(c.Sources) == 0 {
		return errors.New("no sources configured")
	}

	for i, src := range c.Sources {
		if src.Path == "" {
			return errors.Errorf("source %d: path is empty", i)
		}
		if src.Capacity < 0 {
			return errors.Errorf("source %d: capacity must be positive, got %d", i, src.Capacity)
		}
		switch src.Kind {
		case SourceBinary:
			if src.Sensor == "" {
				return errors.Errorf("source %d: binary source needs a sensor name", i)
			}
		case SourceDuckDB, SourcePostgres:
			if src.Table == "" {
				return errors.Errorf("source %d: %s source needs a table", i, src.Kind)
			}
		default:
			return errors.Errorf("source %d: unknown kind %q", i, src.Kind)
		}
	}
	return nil
}
