// Package config loads the miro configuration file and applies environment
// overrides.
package config

import (
	"fmt"
	"os"

	"github.com/xyproto/env/v2"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/lemonberrylabs/miro/pkg/parser"
)

// MaxSourceSize is the largest configuration file accepted, in bytes.
const MaxSourceSize = 1 << 20

// Environment variables that override the file.
const (
	EnvConfig   = "MIRO_CONFIG"
	EnvHost     = "MIRO_HOST"
	EnvPort     = "MIRO_PORT"
	EnvGRPCPort = "MIRO_GRPC_PORT"
	EnvLogLevel = "MIRO_LOG_LEVEL"
)

// Config is the top level configuration.
type Config struct {
	Log       LogConfig    `yaml:"log"`
	Server    ServerConfig `yaml:"server"`
	Variables Variables    `yaml:"variables"`
}

// ServerConfig holds the listen addresses of miro serve.
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	GRPCPort int    `yaml:"grpc_port"`
}

// Variables are global definitions, kept in file order since later ones may
// refer to earlier ones.
type Variables []parser.Definition

// UnmarshalYAML reads a mapping of variable name to expression source.
func (v *Variables) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: variables must be a mapping", node.Line)
	}
	defs := make(Variables, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		nameNode := node.Content[i]
		valNode := node.Content[i+1]
		if valNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: variable %q must be a single expression", valNode.Line, nameNode.Value)
		}
		defs = append(defs, parser.Definition{Name: nameNode.Value, Source: valNode.Value})
	}
	*v = defs
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Server: ServerConfig{
			Host:     "0.0.0.0",
			Port:     8787,
			GRPCPort: 8788,
		},
	}
}

// Load reads the file at path on top of the defaults and applies the
// environment. An empty path falls back to $MIRO_CONFIG, and to the defaults
// when that is unset too.
func Load(path string) (*Config, error) {
	if path == "" {
		path = env.Str(EnvConfig)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if cfg, err = Parse(data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration on top of the defaults.
func Parse(data []byte) (*Config, error) {
	if len(data) > MaxSourceSize {
		return nil, fmt.Errorf("config size %d exceeds maximum %d bytes", len(data), MaxSourceSize)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv() {
	c.Server.Host = env.Str(EnvHost, c.Server.Host)
	c.Server.Port = env.Int(EnvPort, c.Server.Port)
	c.Server.GRPCPort = env.Int(EnvGRPCPort, c.Server.GRPCPort)
	c.Log.Level = env.Str(EnvLogLevel, c.Log.Level)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs error
	if _, ok := levels[c.Log.Level]; !ok {
		errs = multierr.Append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	for name, port := range map[string]int{"server.port": c.Server.Port, "server.grpc_port": c.Server.GRPCPort} {
		if port < 0 || port > 65535 {
			errs = multierr.Append(errs, fmt.Errorf("%s: %d is out of range", name, port))
		}
	}
	seen := make(map[string]bool, len(c.Variables))
	for _, def := range c.Variables {
		if seen[def.Name] {
			errs = multierr.Append(errs, fmt.Errorf("variables: %q is defined twice", def.Name))
		}
		seen[def.Name] = true
	}
	return errs
}
