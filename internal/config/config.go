package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	// APIOrigin is the REST endpoint, e.g. https://api.example.com/v1.
	APIOrigin string
	// GatewayURL is the push gateway websocket endpoint.
	GatewayURL string
	// AccessToken is the viewer's bearer token.
	AccessToken string
	// DebugAddr serves metrics and debug endpoints when non-empty.
	DebugAddr string
	// KVPath is the local preference-cache directory.
	KVPath string
}

func NewConfig(apiOrigin, gatewayURL, accessToken, debugAddr, kvPath string) (*Config, error) {
	if apiOrigin == "" {
		return nil, fmt.Errorf("api origin cannot be empty")
	}
	if gatewayURL == "" {
		return nil, fmt.Errorf("gateway url cannot be empty")
	}
	if accessToken == "" {
		return nil, fmt.Errorf("access token cannot be empty")
	}

	return &Config{
		APIOrigin:   apiOrigin,
		GatewayURL:  gatewayURL,
		AccessToken: accessToken,
		DebugAddr:   debugAddr,
		KVPath:      kvPath,
	}, nil
}

// Load reads configuration from an optional file plus SHADES_-prefixed
// environment variables, env winning over file.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SHADES")
	v.AutomaticEnv()

	v.SetDefault("debug_addr", "")
	v.SetDefault("kv_path", ".shades-cache")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return NewConfig(
		v.GetString("api_origin"),
		v.GetString("gateway_url"),
		v.GetString("access_token"),
		v.GetString("debug_addr"),
		v.GetString("kv_path"),
	)
}
