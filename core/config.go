package core

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultHost          = "127.0.0.1"
	DefaultPort          = 5000
	DefaultIndexTemplate = "first_app.html"
	DefaultConfigPath    = "firstapp.config.yml"
)

// Config is the file-backed configuration. Debug is not read from the file:
// the command that starts the server decides it.
type Config struct {
	Host          string `yaml:"host" json:"host"`
	Port          int    `yaml:"port" json:"port"`
	Debug         bool   `yaml:"-" json:"-"`
	TemplatesDir  string `yaml:"templatesDir" json:"templatesDir"`
	IndexTemplate string `yaml:"indexTemplate" json:"indexTemplate"`
	Minify        bool   `yaml:"minify" json:"minify"`
	CacheEnabled  bool   `yaml:"cache" json:"cache"`
	DebugHeaders  bool   `yaml:"debugHeaders" json:"debugHeaders"`
	DebugLogs     bool   `yaml:"debugLogs" json:"debugLogs"`
}

func DefaultConfig() *Config {
	return &Config{
		Host:          DefaultHost,
		Port:          DefaultPort,
		IndexTemplate: DefaultIndexTemplate,
		CacheEnabled:  true,
	}
}

// LoadConfig reads path on top of DefaultConfig. A missing file is not an
// error; a malformed one is.
var LoadConfig = func(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.IndexTemplate == "" {
		cfg.IndexTemplate = DefaultIndexTemplate
	}

	return cfg, nil
}

const starterConfig = `host: 127.0.0.1
port: 5000
templatesDir: templates
indexTemplate: first_app.html
minify: false
cache: true
debugHeaders: false
debugLogs: false
`

// StarterConfig is the config file written by `firstapp init`.
func StarterConfig() []byte {
	return []byte(starterConfig)
}
