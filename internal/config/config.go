// Package config loads runtime settings from the environment and an
// optional chapter-master.yaml in the project root. Settings cover the
// generation service and operation defaults — the story bible itself is
// not configuration and lives in internal/bible.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Operation defaults. Callers may override per invocation.
const (
	DefaultTargetWordCount  = 80000
	DefaultChapterWordCount = 3000
	DefaultSceneCount       = 3
)

// Settings holds everything the process reads from its environment.
type Settings struct {
	// APIKey authenticates against the generation service.
	// Empty means the service is not configured: factories fall back
	// to unenriched baselines.
	APIKey string

	// Model is the generation model identifier.
	Model string

	// MaxTokens caps each generation response.
	MaxTokens int64

	// RequestTimeout bounds a single generation call. There is no
	// cancellation path beyond this — a long call blocks the whole
	// tool invocation until it resolves or times out.
	RequestTimeout time.Duration
}

// Load reads settings with this precedence: environment variables
// (CHAPTER_MASTER_* and ANTHROPIC_API_KEY), then chapter-master.yaml
// in the working directory, then built-in defaults. A missing config
// file is not an error.
func Load() Settings {
	v := viper.New()
	v.SetConfigName("chapter-master")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CHAPTER_MASTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api-key", "ANTHROPIC_API_KEY")

	v.SetDefault("model", "claude-sonnet-4-5")
	v.SetDefault("max-tokens", 2048)
	v.SetDefault("request-timeout", "90s")

	_ = v.ReadInConfig() // optional file; env and defaults still apply

	return Settings{
		APIKey:         v.GetString("api-key"),
		Model:          v.GetString("model"),
		MaxTokens:      v.GetInt64("max-tokens"),
		RequestTimeout: v.GetDuration("request-timeout"),
	}
}
