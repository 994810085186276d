// Package config loads run configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory
// when no --config flag is given.
const DefaultFile = "tgstatus.yaml"

// Config carries the tunables of a run. Nothing here is ambient
// state: the loaded value is passed into the orchestrator at
// construction.
type Config struct {
	// DelaySeconds is the mandatory pause before each platform call.
	DelaySeconds int `yaml:"delay_seconds"`
	// HistoryCap bounds the status history kept per record.
	HistoryCap int `yaml:"history_cap"`

	APIBaseURL string `yaml:"api_base_url"`
	SecretsDir string `yaml:"secrets_dir"`
	// User selects the account session: the token is read from
	// <secrets_dir>/<user>.token.
	User string `yaml:"user"`

	// Default filter sets, overridable per invocation.
	Types  []string `yaml:"types"`
	Skip   []string `yaml:"skip"`
	Ignore []string `yaml:"ignore"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DelaySeconds: 20,
		HistoryCap:   10,
		SecretsDir:   ".secret",
		User:         "default",
	}
}

// Load reads a YAML config file and overlays it on the defaults. A
// missing file at the default location is not an error; a missing
// file named explicitly is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.DelaySeconds < 0 {
		return cfg, fmt.Errorf("config %s: delay_seconds must not be negative", path)
	}
	return cfg, nil
}

// Delay returns the inter-call delay as a duration.
func (c Config) Delay() time.Duration {
	return time.Duration(c.DelaySeconds) * time.Second
}

// TokenPath returns the session token file for the configured user.
func (c Config) TokenPath() string {
	return filepath.Join(c.SecretsDir, c.User+".token")
}

// ReadToken loads the session token for the configured user.
func (c Config) ReadToken() (string, error) {
	data, err := os.ReadFile(c.TokenPath())
	if err != nil {
		return "", fmt.Errorf("read session token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
