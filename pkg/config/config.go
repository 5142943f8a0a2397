// Package config resolves CLI settings from flags, NEXTSTREAM_* environment
// variables and an optional YAML config file, in that order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. NEXTSTREAM_LOG_LEVEL.
const EnvPrefix = "NEXTSTREAM"

// Keys double as flag names and config file keys.
const (
	KeyRecipe           = "recipe"
	KeyContextFile      = "context-file"
	KeyCleanupOnFailure = "cleanup-on-failure"
	KeyVerbose          = "verbose"
	KeyLoggingType      = "logging-type"
	KeyLogLevel         = "log-level"
)

// Config holds the resolved settings for one invocation.
type Config struct {
	Recipe           string // recipe file; the built-in recipe when empty
	ContextFile      string
	CleanupOnFailure bool
	Verbose          bool
	LoggingType      string
	LogLevel         string
}

// Load resolves the settings. flags may be nil; configFile is skipped when
// empty, and an unreadable configFile is an error.
func Load(flags *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()
	v.SetDefault(KeyLoggingType, "tint")
	v.SetDefault(KeyLogLevel, "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	return &Config{
		Recipe:           v.GetString(KeyRecipe),
		ContextFile:      v.GetString(KeyContextFile),
		CleanupOnFailure: v.GetBool(KeyCleanupOnFailure),
		Verbose:          v.GetBool(KeyVerbose),
		LoggingType:      v.GetString(KeyLoggingType),
		LogLevel:         v.GetString(KeyLogLevel),
	}, nil
}
