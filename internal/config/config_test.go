package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wxbridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultBackendURL, cfg.BackendURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultProbeTimeout, cfg.ProbeTimeout)
	assert.False(t, cfg.Verbose)
}

func TestLoad_File(t *testing.T) {
	path := writeConfigFile(t, `
backend_url: http://weather.internal:9000
timeout: 30s
probe_timeout: 500ms
verbose: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://weather.internal:9000", cfg.BackendURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.ProbeTimeout)
	assert.True(t, cfg.Verbose)
}

func TestLoad_FilePartial(t *testing.T) {
	path := writeConfigFile(t, `backend_url: http://weather.internal:9000`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://weather.internal:9000", cfg.BackendURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
backend_url: http://from-file:9000
timeout: 30s
`)
	t.Setenv(EnvBackendURL, "http://from-env:3000")
	t.Setenv(EnvTimeout, "5s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:3000", cfg.BackendURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not YAML", content: "{not yaml: ["},
		{name: "bad duration", content: "timeout: soon"},
		{name: "bad scheme", content: "backend_url: ftp://weather:3000"},
		{name: "no host", content: "backend_url: http://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Timeout = 0
	assert.Error(t, cfg.Validate())
}
