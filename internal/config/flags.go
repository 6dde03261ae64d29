package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
type Flag struct {
	// Name is the long flag name (e.g. "model").
	Name string

	// Shorthand is the one-letter short flag. Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "log.debug").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet maps registry keys to flag definitions.
type FlagSet map[string]Flag

// Flag registry keys.
const (
	FlagModel   = "model"
	FlagPrompts = "prompts"
	FlagDebug   = "debug"
	FlagJSON    = "json-logs"
	FlagObserve = "observe"
)

// Flags is the registry shared by every medbot command.
var Flags = FlagSet{
	FlagModel:   {Name: "model", Shorthand: "m", ViperKey: "model", Description: "Model used by the supervisor and every specialist"},
	FlagPrompts: {Name: "prompts", ViperKey: "prompts_file", Description: "YAML file overriding the built-in prompts"},
	FlagDebug:   {Name: "debug", Shorthand: "d", ViperKey: "log.debug", Description: "Enable debug logging"},
	FlagJSON:    {Name: "json-logs", ViperKey: "log.json", Description: "Write logs as JSON"},
	FlagObserve: {Name: "observe", ViperKey: "telemetry.observe", Description: "Append JSONL telemetry events to the artifacts directory"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The default comes from NewDefaultConfig.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}
	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	def, ok := fs[key]
	if !ok {
		return
	}
	defaultVal := defaultBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper. Call it after
// InitViper so flags sit on top of the precedence chain.
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}
		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}
		_ = v.BindPFlag(def.ViperKey, f)
	}
}

func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

func defaultBool(viperKey string) bool {
	v := viper.New()
	setViperDefaults(v)
	return v.GetBool(viperKey)
}
