// Package config loads medbot settings from defaults, an optional
// config.toml, MEDBOT_* environment variables and CLI flags.
package config

// Config is the full medbot configuration. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Anthropic     AnthropicConfig `toml:"anthropic" mapstructure:"anthropic"`
	Model         string          `toml:"model" mapstructure:"model"`
	MaxTokens     int64           `toml:"max_tokens" mapstructure:"max_tokens"`
	TokenBudget   int             `toml:"token_budget" mapstructure:"token_budget"`
	MaxAgentSteps int             `toml:"max_agent_steps" mapstructure:"max_agent_steps"`
	PromptsFile   string          `toml:"prompts_file,omitempty" mapstructure:"prompts_file"`
	Log           LogConfig       `toml:"log" mapstructure:"log"`
	Telemetry     TelemetryConfig `toml:"telemetry" mapstructure:"telemetry"`
}

// AnthropicConfig holds API access settings.
type AnthropicConfig struct {
	APIKey  string `toml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL string `toml:"base_url,omitempty" mapstructure:"base_url"`
}

type LogConfig struct {
	Debug bool `toml:"debug" mapstructure:"debug"`
	JSON  bool `toml:"json" mapstructure:"json"`
}

// TelemetryConfig controls the JSONL event stream.
type TelemetryConfig struct {
	Observe bool   `toml:"observe" mapstructure:"observe"`
	Dir     string `toml:"dir" mapstructure:"dir"`
}
