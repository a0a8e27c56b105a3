// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/vitalvas/schemadoc/openapi"
	"github.com/vitalvas/schemadoc/typedesc"
	"gopkg.in/yaml.v3"
)

// StdoutPath is the output path that writes the document to standard output.
const StdoutPath = "-"

// Config is the root configuration structure.
type Config struct {
	Info       InfoConfig             `yaml:"info"`
	Servers    []ServerConfig         `yaml:"servers"`
	Tags       []TagConfig            `yaml:"tags"`
	Auth       AuthConfig             `yaml:"auth"`
	Resolver   ResolverConfig         `yaml:"resolver"`
	Output     OutputConfig           `yaml:"output"`
	Logging    LoggingConfig          `yaml:"logging"`
	Types      *typedesc.Declarations `yaml:"types"`
	Groups     []GroupConfig          `yaml:"groups"`
	Operations []OperationConfig      `yaml:"operations"`
}

// InfoConfig configures the document info object.
type InfoConfig struct {
	Title       string `yaml:"title"`
	Version     string `yaml:"version"`
	Description string `yaml:"description,omitempty"`
}

// ServerConfig describes one API server.
type ServerConfig struct {
	URL         string `yaml:"url"`
	Description string `yaml:"description,omitempty"`
}

// TagConfig documents a tag used by operations.
type TagConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// AuthConfig configures token authentication.
type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Name    string `yaml:"name"` // security scheme name (default: auth_token)
}

// ResolverConfig configures schema resolution.
type ResolverConfig struct {
	Required string `yaml:"required"` // "none" or "non-optional"
}

// OutputConfig configures where and how the document is written.
type OutputConfig struct {
	Format string `yaml:"format"` // "json" or "yaml"
	Path   string `yaml:"path"`   // file path, "-" for stdout
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// Permission maps an HTTP method to the scopes it requires.
type Permission map[string][]string

// GroupConfig shares tags, permissions and flags between operations.
type GroupConfig struct {
	Tags        []string          `yaml:"tags"`
	Permissions []Permission      `yaml:"permissions"`
	Public      bool              `yaml:"public"`
	Deprecated  bool              `yaml:"deprecated"`
	Operations  []OperationConfig `yaml:"operations"`
}

// OperationConfig documents one method on one path.
type OperationConfig struct {
	Method      string       `yaml:"method"`
	Path        string       `yaml:"path"`
	OperationID string       `yaml:"operation_id,omitempty"`
	Summary     string       `yaml:"summary,omitempty"`
	Description string       `yaml:"description,omitempty"`
	Tags        []string     `yaml:"tags,omitempty"`
	Permissions []Permission `yaml:"permissions,omitempty"`
	Public      bool         `yaml:"public,omitempty"`
	Deprecated  bool         `yaml:"deprecated,omitempty"`
	Status      int          `yaml:"status,omitempty"`   // default: 200
	Response    string       `yaml:"response,omitempty"` // type expression, empty for no content
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse builds a configuration from YAML bytes.
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// RequiredPolicy returns the parsed resolver policy.
func (c *Config) RequiredPolicy() openapi.RequiredPolicy {
	p, _ := openapi.ParseRequiredPolicy(c.Resolver.Required)
	return p
}

// OutputFormat returns the parsed output format.
func (c *Config) OutputFormat() openapi.Format {
	f, _ := openapi.ParseFormat(c.Output.Format)
	return f
}

// OperationCount returns the number of operations, grouped or not.
func (c *Config) OperationCount() int {
	n := len(c.Operations)
	for _, g := range c.Groups {
		n += len(g.Operations)
	}
	return n
}

// applyEnvOverrides applies SCHEMADOC_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SCHEMADOC_INFO_TITLE"); v != "" {
		cfg.Info.Title = v
	}
	if v := os.Getenv("SCHEMADOC_INFO_VERSION"); v != "" {
		cfg.Info.Version = v
	}

	if v := os.Getenv("SCHEMADOC_AUTH_ENABLED"); v != "" {
		cfg.Auth.Enabled = parseBool(v)
	}
	if v := os.Getenv("SCHEMADOC_AUTH_NAME"); v != "" {
		cfg.Auth.Name = v
	}

	if v := os.Getenv("SCHEMADOC_RESOLVER_REQUIRED"); v != "" {
		cfg.Resolver.Required = v
	}

	if v := os.Getenv("SCHEMADOC_OUTPUT_FORMAT"); v != "" {
		cfg.Output.Format = v
	}
	if v := os.Getenv("SCHEMADOC_OUTPUT_PATH"); v != "" {
		cfg.Output.Path = v
	}

	if v := os.Getenv("SCHEMADOC_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SCHEMADOC_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Info.Version == "" {
		cfg.Info.Version = "0.0.0"
	}

	if cfg.Auth.Name == "" {
		cfg.Auth.Name = openapi.DefaultTokenAuthName
	}

	if cfg.Resolver.Required == "" {
		cfg.Resolver.Required = openapi.RequiredNone.String()
	}

	if cfg.Output.Format == "" {
		cfg.Output.Format = string(openapi.FormatJSON)
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = StdoutPath
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	for i := range cfg.Operations {
		setOperationDefaults(&cfg.Operations[i])
	}
	for i := range cfg.Groups {
		for j := range cfg.Groups[i].Operations {
			setOperationDefaults(&cfg.Groups[i].Operations[j])
		}
	}
}

func setOperationDefaults(op *OperationConfig) {
	op.Method = strings.ToUpper(op.Method)
	if op.Status == 0 {
		op.Status = http.StatusOK
	}
}

var validMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodPut:     true,
	http.MethodPost:    true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
	http.MethodHead:    true,
	http.MethodPatch:   true,
	http.MethodTrace:   true,
}

func validate(cfg *Config) error {
	if cfg.Info.Title == "" {
		return fmt.Errorf("info.title is required")
	}

	if _, err := openapi.ParseRequiredPolicy(cfg.Resolver.Required); err != nil {
		return fmt.Errorf("resolver.required must be 'none' or 'non-optional', got %q", cfg.Resolver.Required)
	}

	if _, err := openapi.ParseFormat(cfg.Output.Format); err != nil {
		return fmt.Errorf("output.format must be 'json' or 'yaml', got %q", cfg.Output.Format)
	}

	if _, err := zerolog.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging.level is invalid: %q", cfg.Logging.Level)
	}
	validLogFormats := map[string]bool{"json": true, "console": true}
	if !validLogFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	for i, server := range cfg.Servers {
		if server.URL == "" {
			return fmt.Errorf("servers[%d].url is required", i)
		}
	}

	seen := make(map[string]bool)
	for i, op := range cfg.Operations {
		if err := validateOperation(cfg, op, seen); err != nil {
			return fmt.Errorf("operations[%d]: %w", i, err)
		}
	}
	for i, group := range cfg.Groups {
		for j, op := range group.Operations {
			if err := validateOperation(cfg, op, seen); err != nil {
				return fmt.Errorf("groups[%d].operations[%d]: %w", i, j, err)
			}
		}
	}

	return nil
}

func validateOperation(cfg *Config, op OperationConfig, seen map[string]bool) error {
	if !validMethods[op.Method] {
		return fmt.Errorf("method %q is not supported", op.Method)
	}
	if !strings.HasPrefix(op.Path, "/") {
		return fmt.Errorf("path must start with '/', got %q", op.Path)
	}

	key := op.Method + " " + op.Path
	if seen[key] {
		return fmt.Errorf("duplicate operation %s", key)
	}
	seen[key] = true

	if op.Status < 100 || op.Status > 599 {
		return fmt.Errorf("status %d is out of range", op.Status)
	}

	if op.Response != "" {
		if _, err := cfg.Types.Expr(op.Response); err != nil {
			return fmt.Errorf("response: %w", err)
		}
	}

	return nil
}
