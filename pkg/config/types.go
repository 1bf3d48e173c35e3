package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent quizpaper configuration stored as
// config.toml in the .quizpaper/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Provider    ProviderConfig    `toml:"provider"`
	Generate    GenerateConfig    `toml:"generate"`
	Reveal      RevealConfig      `toml:"reveal"`
	Storage     StorageConfig     `toml:"storage"`
	EventStream EventStreamConfig `toml:"eventstream"`
	API         APIConfig         `toml:"api"`
}

// ProviderConfig selects the model API papers are generated with.
type ProviderConfig struct {
	Name     string `toml:"name,omitempty"`
	Upstream string `toml:"upstream,omitempty"`
	Model    string `toml:"model,omitempty"`

	// APIKey is normally supplied through QUIZPAPER_PROVIDER_API_KEY rather
	// than written to disk.
	APIKey string `toml:"api_key,omitempty"`
}

// GenerateConfig holds defaults for generation parameters.
type GenerateConfig struct {
	Difficulty    string `toml:"difficulty,omitempty"`
	QuestionCount int    `toml:"question_count,omitempty"`
}

// RevealConfig tunes the paced preview.
type RevealConfig struct {
	BaseRate         float64 `toml:"base_rate,omitempty"`
	BacklogThreshold int     `toml:"backlog_threshold,omitempty"`
	MaxBoost         float64 `toml:"max_boost,omitempty"`

	// FrameInterval is a Go duration string, e.g. "16ms".
	FrameInterval string `toml:"frame_interval,omitempty"`
}

// StorageConfig selects where generated papers are persisted.
type StorageConfig struct {
	// Driver is one of sqlite, postgres or memory.
	Driver      string `toml:"driver,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// EventStreamConfig holds Kafka publishing settings. Empty brokers disable
// publishing.
type EventStreamConfig struct {
	KafkaBrokers string `toml:"kafka_brokers,omitempty"`
	KafkaTopic   string `toml:"kafka_topic,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error

	// secret values are masked by "config list".
	secret bool
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func intKey(name string, field func(c *Config) *int) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.Itoa(*field(c))
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid value for %s: %q is not a non-negative integer", name, v)
			}
			*field(c) = n
			return nil
		},
	}
}

func floatKey(name string, field func(c *Config) *float64) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatFloat(*field(c), 'g', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("invalid value for %s: %q is not a non-negative number", name, v)
			}
			*field(c) = f
			return nil
		},
	}
}

// keyOrder lists the keys of configKeys in TOML section order.
var keyOrder = []string{
	"provider.name",
	"provider.upstream",
	"provider.model",
	"provider.api_key",
	"generate.difficulty",
	"generate.question_count",
	"reveal.base_rate",
	"reveal.backlog_threshold",
	"reveal.max_boost",
	"reveal.frame_interval",
	"storage.driver",
	"storage.sqlite_path",
	"storage.postgres_dsn",
	"eventstream.kafka_brokers",
	"eventstream.kafka_topic",
	"api.listen",
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"provider.name":     stringKey(func(c *Config) *string { return &c.Provider.Name }),
	"provider.upstream": stringKey(func(c *Config) *string { return &c.Provider.Upstream }),
	"provider.model":    stringKey(func(c *Config) *string { return &c.Provider.Model }),
	"provider.api_key": {
		get:    func(c *Config) string { return c.Provider.APIKey },
		set:    func(c *Config, v string) error { c.Provider.APIKey = v; return nil },
		secret: true,
	},

	"generate.difficulty":     stringKey(func(c *Config) *string { return &c.Generate.Difficulty }),
	"generate.question_count": intKey("generate.question_count", func(c *Config) *int { return &c.Generate.QuestionCount }),

	"reveal.base_rate":         floatKey("reveal.base_rate", func(c *Config) *float64 { return &c.Reveal.BaseRate }),
	"reveal.backlog_threshold": intKey("reveal.backlog_threshold", func(c *Config) *int { return &c.Reveal.BacklogThreshold }),
	"reveal.max_boost":         floatKey("reveal.max_boost", func(c *Config) *float64 { return &c.Reveal.MaxBoost }),
	"reveal.frame_interval": {
		get: func(c *Config) string { return c.Reveal.FrameInterval },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				return fmt.Errorf("invalid value for reveal.frame_interval: %q is not a positive duration", v)
			}
			c.Reveal.FrameInterval = v
			return nil
		},
	},

	"storage.driver": {
		get: func(c *Config) string { return c.Storage.Driver },
		set: func(c *Config, v string) error {
			if !IsValidStorageDriver(v) {
				return fmt.Errorf("invalid value for storage.driver: %q (available: %s, %s, %s)",
					v, StorageSQLite, StoragePostgres, StorageMemory)
			}
			c.Storage.Driver = v
			return nil
		},
	},
	"storage.sqlite_path":  stringKey(func(c *Config) *string { return &c.Storage.SQLitePath }),
	"storage.postgres_dsn": {
		get:    func(c *Config) string { return c.Storage.PostgresDSN },
		set:    func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
		secret: true,
	},

	"eventstream.kafka_brokers": stringKey(func(c *Config) *string { return &c.EventStream.KafkaBrokers }),
	"eventstream.kafka_topic":   stringKey(func(c *Config) *string { return &c.EventStream.KafkaTopic }),

	"api.listen": stringKey(func(c *Config) *string { return &c.API.Listen }),
}
