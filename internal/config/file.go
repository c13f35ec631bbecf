package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// File is the optional YAML configuration file. Every field is optional;
// unset fields fall through to the environment-sensitive defaults.
type File struct {
	APIURL        string `yaml:"api_url"`
	Environment   string `yaml:"environment"`
	UseProxy      *bool  `yaml:"use_proxy"`
	Debug         *bool  `yaml:"debug"`
	LogLevel      string `yaml:"log_level"`
	HotReload     *bool  `yaml:"hot_reload"`
	TimeoutMS     int    `yaml:"timeout_ms"`
	RetryAttempts int    `yaml:"retry_attempts"`

	Store struct {
		Backend string `yaml:"backend"`
		File    string `yaml:"file"`
	} `yaml:"store"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
}

// LoadFile reads and parses a YAML configuration file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "[LoadFile] read config file")
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "[LoadFile] parse config file")
	}
	return &f, nil
}
