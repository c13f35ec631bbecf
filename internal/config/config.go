package config

import "time"

// Config is the full configuration surface for the chatbot client.
type Config interface {
	EnvConfig
	HTTPConfig
	StoreConfig
}

type EnvConfig interface {
	GetAPIURL() string
	GetEnvironment() string
	GetUseProxy() bool
	GetDebug() bool
	GetLogLevel() string
	GetHotReload() bool
}

type HTTPConfig interface {
	GetRequestTimeout() time.Duration
	GetRetryAttempts() int
}

type StoreConfig interface {
	GetStoreBackend() string
	GetStateFile() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisPrefix() string
}

type mainConfig struct {
	EnvVars
}

// New returns a configuration resolved from environment variables with
// environment-sensitive defaults (development vs production).
func New() Config {
	return mainConfig{}
}

// NewFromFile overlays a YAML file underneath the environment variables:
// env vars win, then file values, then defaults.
func NewFromFile(path string) (Config, error) {
	f, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return mainConfig{EnvVars{file: f}}, nil
}
