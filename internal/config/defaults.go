package config

import (
	"github.com/petasbytes/medbot/internal/provider"
	"github.com/petasbytes/medbot/internal/runner"
)

// DirName is the dot directory holding config.toml and telemetry artifacts.
const DirName = ".medbot"

// NewDefaultConfig returns the defaults every other source is layered over.
func NewDefaultConfig() *Config {
	return &Config{
		Model:         string(provider.DefaultModel),
		MaxTokens:     provider.DefaultMaxTokens,
		TokenBudget:   runner.DefaultBudget,
		MaxAgentSteps: runner.DefaultMaxSteps,
		Telemetry: TelemetryConfig{
			Dir: DirName,
		},
	}
}
