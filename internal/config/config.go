package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultTimeoutSeconds bounds a single webhook call when the config does not say otherwise
const DefaultTimeoutSeconds = 90

// NoDefaultAgent is the default_agent value meaning "no fallback agent"
const NoDefaultAgent = "none"

// Config holds application configuration
type Config struct {
	N8N          N8NConfig `yaml:"n8n"`
	DefaultAgent string    `yaml:"default_agent,omitempty"`
}

// N8NConfig describes where the workflows live and which agents exist
type N8NConfig struct {
	BaseURL        string        `yaml:"base_url,omitempty" validate:"omitempty,url"`
	TimeoutSeconds int           `yaml:"timeout_seconds,omitempty" validate:"gte=0"`
	Groups         []AgentGroup  `yaml:"groups,omitempty" validate:"dive"`
	Agents         AgentRegistry `yaml:"agents,omitempty"`
}

// AgentGroup is a labelled display group; agents are listed in display order
type AgentGroup struct {
	Label  string   `yaml:"label" json:"label" validate:"required"`
	Agents []string `yaml:"agents" json:"agents" validate:"dive,required"`
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	return &Config{
		N8N: N8NConfig{
			BaseURL:        "http://localhost:5678",
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
	}
}

// Timeout returns the webhook timeout as a duration
func (c *Config) Timeout() time.Duration {
	if c.N8N.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.N8N.TimeoutSeconds) * time.Second
}

// FallbackAgent returns the configured default agent, or "" when the
// default is unset or the "none" sentinel.
func (c *Config) FallbackAgent() string {
	agent := strings.TrimSpace(c.DefaultAgent)
	if strings.EqualFold(agent, NoDefaultAgent) {
		return ""
	}
	return agent
}

// GroupOf returns the label of the group listing agentID and the group's index
func (c *Config) GroupOf(agentID string) (string, int, bool) {
	for i, g := range c.N8N.Groups {
		for _, id := range g.Agents {
			if id == agentID {
				return g.Label, i, true
			}
		}
	}
	return "", -1, false
}

// GetConfigPath returns the path to the configuration file.
// HIRING_AGENT_CONFIG wins, then ./config.yaml, then the user config directory
// (e.g. ~/.config/HiringAgent/config.yaml).
func GetConfigPath() (string, error) {
	if p := os.Getenv("HIRING_AGENT_CONFIG"); p != "" {
		return p, nil
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml", nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "HiringAgent", "config.yaml"), nil
}

// Load loads configuration from the default config path
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}

	return LoadFrom(configPath)
}

// LoadFrom loads configuration from a specific path.
//
// The returned config is never nil: a missing or unparsable file yields the
// defaults (with no agents) together with an error the caller should surface
// as a warning.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), fmt.Errorf("config file %s not found: %w", path, err)
		}
		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML config document
func Parse(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Marshal encodes the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	for _, agent := range c.N8N.Agents.All() {
		if err := validate.Struct(agent); err != nil {
			return fmt.Errorf("invalid agent %s: %w", agent.ID, err)
		}
	}

	for _, g := range c.N8N.Groups {
		for _, id := range g.Agents {
			if _, ok := c.N8N.Agents.Get(id); !ok {
				return fmt.Errorf("group %q lists unknown agent %s", g.Label, id)
			}
		}
	}

	return nil
}

// ApplyEnv overrides file values with N8N_BASE_URL and N8N_TIMEOUT_SECONDS
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("N8N_BASE_URL"); v != "" {
		c.N8N.BaseURL = v
	}
	if v := os.Getenv("N8N_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid N8N_TIMEOUT_SECONDS %q: %w", v, err)
		}
		c.N8N.TimeoutSeconds = secs
	}
	return nil
}
