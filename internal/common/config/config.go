// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct. ProviderName and
// APIKeys form the agent configuration proper; everything else tunes the
// surrounding infrastructure.
type Config struct {
	ProviderName string                  `mapstructure:"ai_provider"`
	APIKeys      map[string]string       `mapstructure:"api_keys"`
	App          AppConfig               `mapstructure:"app"`
	Logging      LoggingConfig           `mapstructure:"logging"`
	Sources      SourcesConfig           `mapstructure:"sources"`
	GenAI        GenAIConfig             `mapstructure:"genai"`
	Cache        CacheConfig             `mapstructure:"cache"`
	Camunda      CamundaConfig           `mapstructure:"camunda"`
	Workers      map[string]WorkerConfig `mapstructure:"workers"`
	Metrics      MetricsConfig           `mapstructure:"metrics"`
	RegistryPath string                  `mapstructure:"registry_path"`

	// SourceFile is the file the values were read from; empty when defaults were used.
	SourceFile string `mapstructure:"-"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SourcesConfig tunes the data-source providers.
type SourcesConfig struct {
	Timeout              int    `mapstructure:"timeout"` // milliseconds
	PreviewChars         int    `mapstructure:"preview_chars"`
	MaxEmails            int    `mapstructure:"max_emails"`
	MaxPhones            int    `mapstructure:"max_phones"`
	UserAgent            string `mapstructure:"user_agent"`
	MaxConcurrentFetches int    `mapstructure:"max_concurrent_fetches"`
}

// FetchTimeout returns the per-call provider timeout.
func (s SourcesConfig) FetchTimeout() time.Duration {
	return time.Duration(s.Timeout) * time.Millisecond
}

// GenAIConfig configures the network-backed summarizer.
type GenAIConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// RequestTimeout returns the completion call timeout.
func (g GenAIConfig) RequestTimeout() time.Duration {
	return time.Duration(g.Timeout) * time.Millisecond
}

type CacheConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
	TTL   int         `mapstructure:"ttl"` // seconds
}

// Enabled reports whether a cache backend is configured.
func (c CacheConfig) Enabled() bool {
	return c.Redis.Address != ""
}

// Expiration returns the cache entry lifetime.
func (c CacheConfig) Expiration() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	Plaintext      bool   `mapstructure:"plaintext"`
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the settings applicable to a workflow worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

// APIKey returns the credential registered for the configured provider.
func (c *Config) APIKey() string {
	if c.APIKeys == nil {
		return ""
	}
	return c.APIKeys[c.ProviderName]
}
