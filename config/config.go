// Package config provides configuration loading for the storefront
// service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete service configuration.
type Config struct {
	HTTP  HTTPConfig  `yaml:"http"`
	DB    DBConfig    `yaml:"db"`
	NATS  NATSConfig  `yaml:"nats"`
	State StateConfig `yaml:"state"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// DBConfig configures the Postgres connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// NATSConfig configures the order-event subscription. An empty URL
// disables the ingester.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// StateConfig configures the snapshot store for device carts and
// favorites.
type StateConfig struct {
	Dir string `yaml:"dir"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		DB: DBConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "storefront",
			Name:    "storefront",
			SSLMode: "disable",
		},
		State: StateConfig{
			Dir: "./state",
		},
	}
}

// LoadFromFile reads a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// SaveToFile writes the config as YAML, creating parent directories.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Merge overlays non-zero fields from other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.HTTP.Addr != "" {
		c.HTTP.Addr = other.HTTP.Addr
	}
	if other.HTTP.ReadTimeout != 0 {
		c.HTTP.ReadTimeout = other.HTTP.ReadTimeout
	}
	if other.HTTP.WriteTimeout != 0 {
		c.HTTP.WriteTimeout = other.HTTP.WriteTimeout
	}
	if other.HTTP.IdleTimeout != 0 {
		c.HTTP.IdleTimeout = other.HTTP.IdleTimeout
	}
	if other.DB.Host != "" {
		c.DB.Host = other.DB.Host
	}
	if other.DB.Port != 0 {
		c.DB.Port = other.DB.Port
	}
	if other.DB.User != "" {
		c.DB.User = other.DB.User
	}
	if other.DB.Password != "" {
		c.DB.Password = other.DB.Password
	}
	if other.DB.Name != "" {
		c.DB.Name = other.DB.Name
	}
	if other.DB.SSLMode != "" {
		c.DB.SSLMode = other.DB.SSLMode
	}
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.State.Dir != "" {
		c.State.Dir = other.State.Dir
	}
}

// Validate checks the final configuration.
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	if c.DB.Host == "" {
		return fmt.Errorf("db.host is required")
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		return fmt.Errorf("db.port %d out of range", c.DB.Port)
	}
	if c.DB.Name == "" {
		return fmt.Errorf("db.name is required")
	}
	if c.State.Dir == "" {
		return fmt.Errorf("state.dir is required")
	}
	return nil
}
