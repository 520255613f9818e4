package rowbase

import (
	"time"

	"dario.cat/mergo"
)

// Config consolidates the ambient settings of the engine (spec §10.3):
// table concurrency, writer thresholds, codec defaults, and logging.
type Config struct {
	Table   TableConfig   `json:"table"`
	Writer  WriterConfig  `json:"writer"`
	Codec   CodecConfig   `json:"codec"`
	Logging LoggingConfig `json:"logging"`
}

// TableConfig contains the ConcurrentMemoryTable's readers-writer tuning.
type TableConfig struct {
	MaxWriterWaitTime time.Duration `json:"maxWriterWaitTime"`
}

// WriterConfig mirrors the Writer option table of spec §4.4.
type WriterConfig struct {
	CacheFlushThreshold int           `json:"cacheFlushThreshold"`
	CacheFlushMinWait   time.Duration `json:"cacheFlushMinWait"`
	CacheFlushMaxWait   time.Duration `json:"cacheFlushMaxWait"`
	FlushCount          int           `json:"flushCount"`
	Flags               WriterFlags   `json:"flags"`
}

// CodecConfig contains textual/binary codec defaults.
type CodecConfig struct {
	Separator        rune            `json:"separator"`
	StringMarker     rune            `json:"stringMarker"`
	SaveDefaultValues bool           `json:"saveDefaultValues"`
	NoHeader         bool            `json:"noHeader"`
	Culture          string          `json:"culture"`
	Compression      CompressionKind `json:"compression"`
	DateTimeFormat   string          `json:"dateTimeFormat"`
}

// LoggingConfig controls the zap logger injected into background
// components (the Writer, LoadTable).
type LoggingConfig struct {
	Level            string `json:"level"`
	EnableStructured bool   `json:"enableStructured"`
	Development      bool   `json:"development"`
}

// DefaultConfig returns the engine's default configuration, matching the
// spec's documented defaults (§4.4's option table for Writer).
func DefaultConfig() *Config {
	return &Config{
		Table: TableConfig{
			MaxWriterWaitTime: 100 * time.Millisecond,
		},
		Writer: WriterConfig{
			CacheFlushThreshold: 1000,
			CacheFlushMinWait:   1000 * time.Millisecond,
			CacheFlushMaxWait:   60000 * time.Millisecond,
			FlushCount:          1000,
			Flags:               FlagAllowRequeue,
		},
		Codec: CodecConfig{
			Separator:         ',',
			StringMarker:      '"',
			SaveDefaultValues: true,
			NoHeader:          false,
			Culture:           "en-US",
			Compression:       CompressionNone,
			DateTimeFormat:    time.RFC3339Nano,
		},
		Logging: LoggingConfig{
			Level:            "info",
			EnableStructured: true,
		},
	}
}

// Merge layers override onto a copy of the receiver using mergo, so callers
// may supply a sparse Config without re-stating every default.
func (c *Config) Merge(override *Config) (*Config, error) {
	merged := *c
	if override == nil {
		return &merged, nil
	}
	if err := mergo.Merge(&merged, override, mergo.WithOverride); err != nil {
		return nil, NewIoError("merge config", err)
	}
	return &merged, nil
}

// Validate rejects non-positive thresholds the way the teacher's
// config.go does.
func (c *Config) Validate() error {
	if c.Writer.FlushCount <= 0 {
		return NewInvalidPropertiesError("writer.flushCount must be greater than 0")
	}
	if c.Writer.CacheFlushThreshold == 0 || c.Writer.CacheFlushThreshold < -1 {
		return NewInvalidPropertiesError("writer.cacheFlushThreshold must be positive or -1 to disable")
	}
	if c.Table.MaxWriterWaitTime <= 0 {
		return NewInvalidPropertiesError("table.maxWriterWaitTime must be greater than 0")
	}
	if c.Codec.Separator == c.Codec.StringMarker {
		return NewInvalidPropertiesError("codec.separator and codec.stringMarker must differ")
	}
	return nil
}
