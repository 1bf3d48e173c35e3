package config

import "github.com/papercomputeco/quizpaper/pkg/reveal"

// Storage driver names for storage.driver.
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

const (
	defaultProvider = "ollama"
	defaultUpstream = "http://localhost:11434"
	defaultModel    = "llama3.1"

	defaultDifficulty    = "intermediate"
	defaultQuestionCount = 20

	defaultFrameInterval = "16ms"

	defaultStorageDriver = StorageSQLite
	defaultKafkaTopic    = "quizpaper.papers"

	defaultAPIListen = ":8081"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Provider: ProviderConfig{
			Name:     defaultProvider,
			Upstream: defaultUpstream,
			Model:    defaultModel,
		},
		Generate: GenerateConfig{
			Difficulty:    defaultDifficulty,
			QuestionCount: defaultQuestionCount,
		},
		Reveal: RevealConfig{
			BaseRate:         reveal.DefaultBaseRate,
			BacklogThreshold: reveal.DefaultBacklogThreshold,
			MaxBoost:         reveal.DefaultMaxBoost,
			FrameInterval:    defaultFrameInterval,
		},
		Storage: StorageConfig{
			Driver: defaultStorageDriver,
		},
		EventStream: EventStreamConfig{
			KafkaTopic: defaultKafkaTopic,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
	}
}

// IsValidStorageDriver reports whether name is a supported storage.driver.
func IsValidStorageDriver(name string) bool {
	switch name {
	case StorageSQLite, StoragePostgres, StorageMemory:
		return true
	}
	return false
}
