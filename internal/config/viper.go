package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads config.toml and binds
// environment variables with the MEDBOT_ prefix.
//
// When configFile is empty, config.toml is looked up in ./.medbot and
// $HOME/.medbot and may be absent. An explicit configFile must exist.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (MEDBOT_MODEL, MEDBOT_LOG_DEBUG, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configFile string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(DirName)
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, DirName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if configFile != "" || !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("MEDBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The SDK's conventional variable works as a fallback.
	_ = v.BindEnv("anthropic.api_key", "MEDBOT_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")

	return v, nil
}

// Load decodes the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.MaxAgentSteps < 1 {
		return nil, fmt.Errorf("max_agent_steps must be at least 1, got %d", cfg.MaxAgentSteps)
	}
	if cfg.MaxTokens < 1 {
		return nil, fmt.Errorf("max_tokens must be positive, got %d", cfg.MaxTokens)
	}
	if cfg.TokenBudget < 1 {
		return nil, fmt.Errorf("token_budget must be positive, got %d", cfg.TokenBudget)
	}
	return cfg, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation, keeping defaults.go the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("anthropic.api_key", d.Anthropic.APIKey)
	v.SetDefault("anthropic.base_url", d.Anthropic.BaseURL)

	v.SetDefault("model", d.Model)
	v.SetDefault("max_tokens", d.MaxTokens)
	v.SetDefault("token_budget", d.TokenBudget)
	v.SetDefault("max_agent_steps", d.MaxAgentSteps)
	v.SetDefault("prompts_file", d.PromptsFile)

	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.json", d.Log.JSON)

	v.SetDefault("telemetry.observe", d.Telemetry.Observe)
	v.SetDefault("telemetry.dir", d.Telemetry.Dir)
}
