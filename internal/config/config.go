// Package config provides configuration loading for ragd.
//
// Precedence, highest first: environment variables (RAGD_ prefix), the
// YAML config file, hardcoded defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/fyrsmithlabs/ragd/internal/embeddings"
	"github.com/fyrsmithlabs/ragd/internal/ingest"
	"github.com/fyrsmithlabs/ragd/internal/llm"
	"github.com/fyrsmithlabs/ragd/internal/logging"
)

// envPrefix namespaces ragd environment variables, e.g.
// RAGD_EMBEDDINGS_BASE_URL -> embeddings.base_url.
const envPrefix = "RAGD_"

// Config is the full ragd configuration tree.
type Config struct {
	Logging    logging.Config    `koanf:"logging"`
	Embeddings embeddings.Config `koanf:"embeddings"`
	LLM        llm.Config        `koanf:"llm"`
	Ingest     ingest.Config     `koanf:"ingest"`
}

// ApplyDefaults sets default values on every section.
func (c *Config) ApplyDefaults() {
	c.Logging.ApplyDefaults()
	c.Embeddings.ApplyDefaults()
	c.LLM.ApplyDefaults()
	c.Ingest.ApplyDefaults()
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Embeddings.Validate(); err != nil {
		return fmt.Errorf("embeddings: %w", err)
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	return nil
}

// Load reads configuration from the YAML file at configPath (skipped
// when empty or absent), then overrides with RAGD_-prefixed environment
// variables, on top of defaults.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			raw, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
			}
			if err := k.Load(rawbytes.Provider(raw), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		// RAGD_EMBEDDINGS_BASE_URL -> embeddings.base_url: the first
		// underscore separates section from field.
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		return strings.Join(parts, ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{}
	cfg.ApplyDefaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}
