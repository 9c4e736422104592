// internal/common/config/loader.go
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "intel-agent/internal/common/errors"
)

const (
	// DefaultConfigName is the base name searched for when no path is given.
	DefaultConfigName = "agent_config"
	envPrefix         = "INTEL_AGENT"

	// GatherIntelligenceTask is the workflow task type served by the worker.
	GatherIntelligenceTask = "gather-intelligence"
)

// Load reads configuration from path, or searches for agent_config.{json,yaml}
// in the working directory and ./configs when path is empty. A missing file
// yields the defaults and is never an error.
func Load(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return nil, apperrors.NewConfigInvalidError(err)
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.NewConfigInvalidError(err)
	}
	cfg.SourceFile = v.ConfigFileUsed()
	if cfg.SourceFile != "" {
		if _, err := os.Stat(cfg.SourceFile); err != nil {
			cfg.SourceFile = ""
		}
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	applyDefaults(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ai_provider", "mock")
	v.SetDefault("api_keys", map[string]string{})

	v.SetDefault("app.name", "intel-agent")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("sources.timeout", 10000)
	v.SetDefault("sources.preview_chars", 800)
	v.SetDefault("sources.max_emails", 5)
	v.SetDefault("sources.max_phones", 3)
	v.SetDefault("sources.user_agent", "Mozilla/5.0")
	v.SetDefault("sources.max_concurrent_fetches", 4)

	v.SetDefault("genai.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("genai.model", "openai/gpt-4o-mini")
	v.SetDefault("genai.timeout", 30000)
	v.SetDefault("genai.max_tokens", 500)
	v.SetDefault("genai.temperature", 0.3)

	v.SetDefault("cache.ttl", 900)

	v.SetDefault("camunda.broker_address", "localhost:26500")
	v.SetDefault("camunda.plaintext", true)
	v.SetDefault("camunda.request_timeout", 30000)

	v.SetDefault("workers."+GatherIntelligenceTask+".enabled", true)
	v.SetDefault("workers."+GatherIntelligenceTask+".max_jobs_active", 5)
	v.SetDefault("workers."+GatherIntelligenceTask+".timeout", 60000)

	v.SetDefault("metrics.address", ":8080")
}

// applyDefaults repairs values a config file explicitly zeroed out.
func applyDefaults(cfg *Config) {
	if cfg.ProviderName == "" {
		cfg.ProviderName = "mock"
	}
	cfg.ProviderName = strings.ToLower(strings.TrimSpace(cfg.ProviderName))
	if cfg.APIKeys == nil {
		cfg.APIKeys = map[string]string{}
	}
	if cfg.Sources.Timeout <= 0 {
		cfg.Sources.Timeout = 10000
	}
	if cfg.Sources.PreviewChars <= 0 {
		cfg.Sources.PreviewChars = 800
	}
	if cfg.Sources.MaxConcurrentFetches <= 0 {
		cfg.Sources.MaxConcurrentFetches = 1
	}
	if cfg.Workers == nil {
		cfg.Workers = map[string]WorkerConfig{}
	}
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	if stderrors.As(err, &notFound) {
		return true
	}
	return stderrors.Is(err, fs.ErrNotExist)
}

// loadEnvFile loads a .env from the working directory when present.
func loadEnvFile() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok || !strings.Contains(strVal, "$") {
			continue
		}
		if expanded := os.ExpandEnv(strVal); expanded != strVal {
			v.Set(key, expanded)
		}
	}
}
