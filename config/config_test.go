package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/schemadoc/config"
	"github.com/vitalvas/schemadoc/openapi"
	"github.com/vitalvas/schemadoc/typedesc"
)

func writeAndLoad(t *testing.T, content string) *config.Config {
	t.Helper()

	path := filepath.Join(t.TempDir(), "schemadoc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func TestLoadValidConfig(t *testing.T) {
	cfg := writeAndLoad(t, `
info:
  title: Projects API
  version: 2.1.0
servers:
  - url: https://api.example.com
auth:
  enabled: true
resolver:
  required: non-optional
output:
  format: yaml
  path: openapi.yaml
logging:
  level: debug
  format: console
types:
  Project:
    id: string
    tags: "[]string"
    slug?: string
groups:
  - tags: [projects]
    permissions:
      - GET: [project:read]
    operations:
      - method: get
        path: /projects/{project_id}/
        response: Project
operations:
  - method: post
    path: /projects/
    status: 201
    response: Project
`)

	assert.Equal(t, "Projects API", cfg.Info.Title)
	assert.Equal(t, "2.1.0", cfg.Info.Version)
	require.Len(t, cfg.Servers, 1)
	assert.Equal(t, "https://api.example.com", cfg.Servers[0].URL)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, openapi.DefaultTokenAuthName, cfg.Auth.Name)
	assert.Equal(t, openapi.RequiredNonOptional, cfg.RequiredPolicy())
	assert.Equal(t, openapi.FormatYAML, cfg.OutputFormat())
	assert.Equal(t, "openapi.yaml", cfg.Output.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)

	assert.Equal(t, []string{"Project"}, cfg.Types.Names())
	project, ok := cfg.Types.Lookup("Project")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "tags", "slug"}, project.(typedesc.Record).FieldNames())

	require.Len(t, cfg.Groups, 1)
	group := cfg.Groups[0]
	assert.Equal(t, []string{"projects"}, group.Tags)
	assert.Equal(t, []config.Permission{{"GET": {"project:read"}}}, group.Permissions)
	require.Len(t, group.Operations, 1)
	assert.Equal(t, "GET", group.Operations[0].Method)
	assert.Equal(t, 200, group.Operations[0].Status)

	require.Len(t, cfg.Operations, 1)
	assert.Equal(t, "POST", cfg.Operations[0].Method)
	assert.Equal(t, 201, cfg.Operations[0].Status)

	assert.Equal(t, 2, cfg.OperationCount())
}

func TestLoadDefaults(t *testing.T) {
	cfg := writeAndLoad(t, `
info:
  title: Minimal
`)

	assert.Equal(t, "0.0.0", cfg.Info.Version)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, "auth_token", cfg.Auth.Name)
	assert.Equal(t, "none", cfg.Resolver.Required)
	assert.Equal(t, openapi.RequiredNone, cfg.RequiredPolicy())
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, config.StdoutPath, cfg.Output.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Nil(t, cfg.Types)
	assert.Equal(t, 0, cfg.OperationCount())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestParseEnvExpansion(t *testing.T) {
	t.Setenv("API_TITLE", "Expanded")

	cfg, err := config.Parse([]byte("info:\n  title: ${API_TITLE}\n"))
	require.NoError(t, err)
	assert.Equal(t, "Expanded", cfg.Info.Title)
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("SCHEMADOC_INFO_TITLE", "From Env")
	t.Setenv("SCHEMADOC_INFO_VERSION", "9.9.9")
	t.Setenv("SCHEMADOC_AUTH_ENABLED", "yes")
	t.Setenv("SCHEMADOC_AUTH_NAME", "api_key")
	t.Setenv("SCHEMADOC_RESOLVER_REQUIRED", "non-optional")
	t.Setenv("SCHEMADOC_OUTPUT_FORMAT", "yml")
	t.Setenv("SCHEMADOC_OUTPUT_PATH", "/tmp/out.yaml")
	t.Setenv("SCHEMADOC_LOG_LEVEL", "warn")
	t.Setenv("SCHEMADOC_LOG_FORMAT", "console")

	cfg, err := config.Parse([]byte(`
info:
  title: From File
  version: 1.0.0
auth:
  enabled: false
output:
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, "From Env", cfg.Info.Title)
	assert.Equal(t, "9.9.9", cfg.Info.Version)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "api_key", cfg.Auth.Name)
	assert.Equal(t, openapi.RequiredNonOptional, cfg.RequiredPolicy())
	assert.Equal(t, openapi.FormatYAML, cfg.OutputFormat())
	assert.Equal(t, "/tmp/out.yaml", cfg.Output.Path)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestParseBoolValues(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"1", true},
		{"ON", true},
		{" yes ", true},
		{"false", false},
		{"0", false},
		{"nope", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("SCHEMADOC_AUTH_ENABLED", tt.value)
			cfg, err := config.Parse([]byte("info:\n  title: x\nauth:\n  enabled: true\n"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Auth.Enabled)
		})
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "missing title",
			content: "info:\n  version: 1.0.0\n",
			errMsg:  "info.title is required",
		},
		{
			name:    "bad required policy",
			content: "info: {title: x}\nresolver: {required: all}\n",
			errMsg:  "resolver.required",
		},
		{
			name:    "bad output format",
			content: "info: {title: x}\noutput: {format: xml}\n",
			errMsg:  "output.format",
		},
		{
			name:    "bad log level",
			content: "info: {title: x}\nlogging: {level: loud}\n",
			errMsg:  "logging.level",
		},
		{
			name:    "bad log format",
			content: "info: {title: x}\nlogging: {format: xml}\n",
			errMsg:  "logging.format",
		},
		{
			name:    "server without url",
			content: "info: {title: x}\nservers: [{description: prod}]\n",
			errMsg:  "servers[0].url is required",
		},
		{
			name:    "unsupported method",
			content: "info: {title: x}\noperations: [{method: connect, path: /x}]\n",
			errMsg:  `operations[0]: method "CONNECT" is not supported`,
		},
		{
			name:    "relative path",
			content: "info: {title: x}\noperations: [{method: get, path: x}]\n",
			errMsg:  "path must start with '/'",
		},
		{
			name:    "duplicate operation",
			content: "info: {title: x}\noperations: [{method: get, path: /x}]\ngroups: [{operations: [{method: GET, path: /x}]}]\n",
			errMsg:  "groups[0].operations[0]: duplicate operation GET /x",
		},
		{
			name:    "status out of range",
			content: "info: {title: x}\noperations: [{method: get, path: /x, status: 42}]\n",
			errMsg:  "status 42 is out of range",
		},
		{
			name:    "empty response element",
			content: "info: {title: x}\noperations: [{method: get, path: /x, response: \"[]\"}]\n",
			errMsg:  "response:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validate config")
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParseInvalidTypes(t *testing.T) {
	_, err := config.Parse([]byte(`
info:
  title: x
types:
  A:
    b: B
  B:
    a: A
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, typedesc.ErrCyclicDeclaration)
	assert.Contains(t, err.Error(), "parse config")
}
