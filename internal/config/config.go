package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. REVIEWER_MAX_STEPS.
const EnvPrefix = "REVIEWER"

const (
	DefaultProvider        = "gemini"
	DefaultMaxSteps        = 15
	DefaultCallTimeout     = 2 * time.Minute
	DefaultMaxOutputTokens = 8192
	DefaultLogLevel        = "info"
)

// Config is the resolved runtime configuration for one review.
type Config struct {
	Provider        string        `mapstructure:"provider"`
	Model           string        `mapstructure:"model"`
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	MaxSteps        int           `mapstructure:"max_steps"`
	CallTimeout     time.Duration `mapstructure:"call_timeout"`
	MaxOutputTokens int           `mapstructure:"max_output_tokens"`
	DryRun          bool          `mapstructure:"dry_run"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFile         string        `mapstructure:"log_file"`
}

// flagKeys maps CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"provider":          "provider",
	"model":             "model",
	"api-key":           "api_key",
	"base-url":          "base_url",
	"max-steps":         "max_steps",
	"call-timeout":      "call_timeout",
	"max-output-tokens": "max_output_tokens",
	"dry-run":           "dry_run",
	"log-level":         "log_level",
	"log-file":          "log_file",
}

// New returns a viper instance with defaults and environment bindings applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("provider", DefaultProvider)
	v.SetDefault("model", "")
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", "")
	v.SetDefault("max_steps", DefaultMaxSteps)
	v.SetDefault("call_timeout", DefaultCallTimeout)
	v.SetDefault("max_output_tokens", DefaultMaxOutputTokens)
	v.SetDefault("dry_run", false)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds every known flag present in fs. Flags only override the file and
// environment when they were set explicitly.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// ReadFile loads the config file. An explicit path must exist; otherwise
// config.yaml is searched in the user config directory and skipped when absent.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "reviewer"))
		}
	}

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load unmarshals v and fills provider defaults and credentials.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))

	p, ok := LookupProvider(cfg.Provider)
	if !ok {
		return Config{}, fmt.Errorf("unknown provider: %s (supported: %s)", cfg.Provider, strings.Join(ProviderNames(), ", "))
	}
	if cfg.Model == "" {
		cfg.Model = p.DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = p.BaseURL
	}
	if cfg.APIKey == "" {
		cfg.APIKey = p.credentialFromEnv()
	}
	return cfg, nil
}

// Validate reports configuration that would make the first model call fail.
func (c Config) Validate() error {
	p, ok := LookupProvider(c.Provider)
	if !ok {
		return fmt.Errorf("unknown provider: %s", c.Provider)
	}
	if c.APIKey == "" && !p.Local {
		return fmt.Errorf("missing API key for provider %s: set %s or %s_API_KEY", c.Provider, strings.Join(p.KeyEnv, " or "), EnvPrefix)
	}
	if c.Model == "" {
		return errors.New("model is required")
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("max_steps must be positive, got %d", c.MaxSteps)
	}
	if c.CallTimeout <= 0 {
		return fmt.Errorf("call_timeout must be positive, got %s", c.CallTimeout)
	}
	return nil
}
