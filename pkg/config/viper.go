package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/papercomputeco/quizpaper/pkg/dotdir"
	"github.com/papercomputeco/quizpaper/pkg/reveal"
)

// EnvPrefix prefixes every environment variable that overrides a config key.
const EnvPrefix = "QUIZPAPER"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the QUIZPAPER_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (QUIZPAPER_PROVIDER_NAME, QUIZPAPER_PROVIDER_API_KEY, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: QUIZPAPER_PROVIDER_MODEL, QUIZPAPER_STORAGE_DRIVER, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Provider
	v.SetDefault("provider.name", d.Provider.Name)
	v.SetDefault("provider.upstream", d.Provider.Upstream)
	v.SetDefault("provider.model", d.Provider.Model)
	v.SetDefault("provider.api_key", d.Provider.APIKey)

	// Generate
	v.SetDefault("generate.difficulty", d.Generate.Difficulty)
	v.SetDefault("generate.question_count", d.Generate.QuestionCount)

	// Reveal
	v.SetDefault("reveal.base_rate", d.Reveal.BaseRate)
	v.SetDefault("reveal.backlog_threshold", d.Reveal.BacklogThreshold)
	v.SetDefault("reveal.max_boost", d.Reveal.MaxBoost)
	v.SetDefault("reveal.frame_interval", d.Reveal.FrameInterval)

	// Storage
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)

	// Event stream
	v.SetDefault("eventstream.kafka_brokers", d.EventStream.KafkaBrokers)
	v.SetDefault("eventstream.kafka_topic", d.EventStream.KafkaTopic)

	// API
	v.SetDefault("api.listen", d.API.Listen)
}

// FromViper reads the effective configuration out of v, after flags, env and
// file have been merged.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Provider: ProviderConfig{
			Name:     v.GetString("provider.name"),
			Upstream: v.GetString("provider.upstream"),
			Model:    v.GetString("provider.model"),
			APIKey:   v.GetString("provider.api_key"),
		},
		Generate: GenerateConfig{
			Difficulty:    v.GetString("generate.difficulty"),
			QuestionCount: v.GetInt("generate.question_count"),
		},
		Reveal: RevealConfig{
			BaseRate:         v.GetFloat64("reveal.base_rate"),
			BacklogThreshold: v.GetInt("reveal.backlog_threshold"),
			MaxBoost:         v.GetFloat64("reveal.max_boost"),
			FrameInterval:    v.GetString("reveal.frame_interval"),
		},
		Storage: StorageConfig{
			Driver:      v.GetString("storage.driver"),
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
		},
		EventStream: EventStreamConfig{
			KafkaBrokers: v.GetString("eventstream.kafka_brokers"),
			KafkaTopic:   v.GetString("eventstream.kafka_topic"),
		},
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
	}
}

// RevealSettings converts the reveal section into a reveal.Config. Zero
// values fall back to the reveal package defaults.
func (c *Config) RevealSettings() (reveal.Config, error) {
	rc := reveal.Config{
		BaseRate:         c.Reveal.BaseRate,
		BacklogThreshold: c.Reveal.BacklogThreshold,
		MaxBoost:         c.Reveal.MaxBoost,
	}

	if c.Reveal.FrameInterval != "" {
		d, err := time.ParseDuration(c.Reveal.FrameInterval)
		if err != nil {
			return reveal.Config{}, fmt.Errorf("invalid reveal.frame_interval: %w", err)
		}
		rc.FrameInterval = d
	}

	return rc, nil
}
