package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	var (
		origin  = "https://api.example.com/v1"
		gateway = "wss://gateway.example.com/ws"
		token   = "some-token"
	)

	tcases := []struct {
		name    string
		origin  string
		gateway string
		token   string
		err     bool
	}{
		{
			name:    "valid config",
			origin:  origin,
			gateway: gateway,
			token:   token,
			err:     false,
		},
		{
			name:    "empty api origin",
			origin:  "",
			gateway: gateway,
			token:   token,
			err:     true,
		},
		{
			name:    "empty gateway url",
			origin:  origin,
			gateway: "",
			token:   token,
			err:     true,
		},
		{
			name:    "empty access token",
			origin:  origin,
			gateway: gateway,
			token:   "",
			err:     true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			config, err := NewConfig(tc.origin, tc.gateway, tc.token, "", "")
			if tc.err {
				assert.Error(t, err, "expected error for config: %s", tc.name)
				return
			}
			assert.NoError(t, err, "expected no error for config: %s", tc.name)

			assert.Equal(t, tc.origin, config.APIOrigin, "expected api origin to match")
			assert.Equal(t, tc.gateway, config.GatewayURL, "expected gateway url to match")
			assert.Equal(t, tc.token, config.AccessToken, "expected access token to match")
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "shades.yaml")
	content := "api_origin: https://api.example.com/v1\n" +
		"gateway_url: wss://gateway.example.com/ws\n" +
		"access_token: file-token\n" +
		"debug_addr: localhost:9090\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	config, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/v1", config.APIOrigin)
	assert.Equal(t, "wss://gateway.example.com/ws", config.GatewayURL)
	assert.Equal(t, "file-token", config.AccessToken)
	assert.Equal(t, "localhost:9090", config.DebugAddr)
	assert.Equal(t, ".shades-cache", config.KVPath, "expected default kv path")
}

func TestLoad_missingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
