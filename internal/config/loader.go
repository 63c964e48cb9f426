package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	envPrefix = "DOCSCOPE_"
)

// Load loads configuration from a YAML file, then overrides with
// environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (DOCSCOPE_STORE_PROVIDER, DOCSCOPE_LLM_API_KEY, ...)
//  2. YAML config file
//  3. Hardcoded defaults
//
// The configPath parameter specifies the YAML file to load. If empty, the
// default path ~/.config/docscope/config.yaml is used. A missing file is
// not an error; defaults and environment variables still apply.
//
// Environment variables are prefixed with DOCSCOPE_ and split on the first
// underscore after the prefix into section.field:
//
//	DOCSCOPE_STORE_PROVIDER    -> store.provider
//	DOCSCOPE_EMBEDDINGS_MODEL  -> embeddings.model
//	DOCSCOPE_LLM_API_KEY       -> llm.api_key
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "docscope", "config.yaml")
	}

	if info, err := os.Stat(configPath); err == nil {
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
		}
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		// DOCSCOPE_STORE_PROVIDER     -> store.provider
		// DOCSCOPE_LLM_API_KEY        -> llm.api_key
		// DOCSCOPE_STORE_CHROMEM_PATH -> store.chromem.path
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		rest := parts[1]
		for _, sub := range []string{"chromem_", "qdrant_"} {
			if strings.HasPrefix(rest, sub) {
				rest = strings.TrimSuffix(sub, "_") + "." + strings.TrimPrefix(rest, sub)
				break
			}
		}
		return parts[0] + "." + rest
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
