// Package config loads the YAML settings shared by the necdeck binaries.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values
const (
	DefaultPort           = 8080
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultMaxRequestSize = 10 * 1024 * 1024 // 10MB
	DefaultDebounce       = 100 * time.Millisecond
	DefaultCommentMarker  = "*"
)

// Config is the root of a necdeck configuration file.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Parser ParserConfig `yaml:"parser"`
	Store  StoreConfig  `yaml:"store"`
	Server ServerConfig `yaml:"server"`
	Watch  WatchConfig  `yaml:"watch"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	JSON      bool   `yaml:"json"`
	File      string `yaml:"file"`
	AddSource bool   `yaml:"add_source"`
}

// ParserConfig controls deck parsing and scoring.
type ParserConfig struct {
	// CommentMarker prefixes skipped lines; an empty string disables skipping.
	CommentMarker string `yaml:"comment_marker"`
	Normalize     bool   `yaml:"normalize"`
	AutoJunk      bool   `yaml:"auto_junk"`
	// Cards registers field specs for additional card tags.
	Cards map[string][]FieldConfig `yaml:"cards"`
}

// FieldConfig describes one field of a registered card.
type FieldConfig struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Required bool   `yaml:"required"`
}

// StoreConfig locates the report database. An empty path disables persistence.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig tunes the HTTP server.
type ServerConfig struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxRequestSize int           `yaml:"max_request_size"`
}

// WatchConfig tunes deck watching.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Parser: ParserConfig{
			CommentMarker: DefaultCommentMarker,
			Normalize:     true,
			AutoJunk:      true,
		},
		Server: ServerConfig{
			Port:           DefaultPort,
			ReadTimeout:    DefaultReadTimeout,
			WriteTimeout:   DefaultWriteTimeout,
			MaxRequestSize: DefaultMaxRequestSize,
		},
		Watch: WatchConfig{Debounce: DefaultDebounce},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return errors.New("server timeouts must not be negative")
	}
	if c.Server.MaxRequestSize <= 0 {
		return errors.New("server.max_request_size must be positive")
	}
	if c.Watch.Debounce < 0 {
		return errors.New("watch.debounce must not be negative")
	}
	for tag, fields := range c.Parser.Cards {
		if len(fields) == 0 {
			return fmt.Errorf("parser.cards.%s has no fields", tag)
		}
		for i, f := range fields {
			switch strings.ToLower(f.Kind) {
			case "int", "float":
			default:
				return fmt.Errorf("parser.cards.%s[%d]: unknown kind %q", tag, i, f.Kind)
			}
		}
	}
	return nil
}
