// Package settings loads client settings from defaults, an optional YAML
// file and ALLSCREENSHOTS_* environment variables.
package settings

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix shared by every environment variable read here.
const EnvPrefix = "ALLSCREENSHOTS_"

// EnvAPIKey is the environment variable holding the API key.
const EnvAPIKey = EnvPrefix + "API_KEY"

// Settings is the flattened view of every configurable value. Zero values
// mean "not set"; callers apply their own defaults on top.
type Settings struct {
	APIKey     string        `koanf:"api_key"`
	BaseURL    string        `koanf:"base_url"`
	Timeout    time.Duration `koanf:"timeout"`
	MaxRetries *int          `koanf:"max_retries"`
	UserAgent  string        `koanf:"user_agent"`
	LogLevel   string        `koanf:"log_level"`
	LogPretty  bool          `koanf:"log_pretty"`
}

func defaults() map[string]any {
	return map[string]any{
		"log_level":  "info",
		"log_pretty": false,
	}
}

// Load reads settings with priority, highest first:
// 1. ALLSCREENSHOTS_* environment variables
// 2. the YAML file at path, if path is not empty
// 3. defaults
func Load(path string) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnv,
		EnvironFunc:   os.Environ,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return &s, nil
}

// transformEnv maps ALLSCREENSHOTS_BASE_URL to base_url. Empty values are
// dropped so an exported-but-empty variable counts as unset.
func transformEnv(key, value string) (string, any) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	return strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), value
}

// APIKeyFromEnv returns the API key from the environment, or "" if unset.
// Only ALLSCREENSHOTS_API_KEY is read, so a malformed unrelated variable
// cannot break credential resolution.
func APIKeyFromEnv() (string, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvAPIKey,
		TransformFunc: func(key, value string) (string, any) {
			if key != EnvAPIKey {
				return "", nil
			}
			return transformEnv(key, value)
		},
		EnvironFunc: os.Environ,
	}), nil); err != nil {
		return "", fmt.Errorf("failed to load %s: %w", EnvAPIKey, err)
	}
	return strings.TrimSpace(k.String("api_key")), nil
}
