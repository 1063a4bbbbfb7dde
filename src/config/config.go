package config

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config describes a buffer pool and the database file behind it.
type Config struct {
	// DBFile is the path of the page file. It is created if missing.
	DBFile string `yaml:"db_file"`
	// PoolSize is the number of in-memory frames.
	PoolSize int `yaml:"pool_size"`
	// LogLevel is any level understood by logrus.ParseLevel.
	LogLevel string `yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		DBFile:   "bufpool.db",
		PoolSize: 64,
		LogLevel: "info",
	}
}

// Load reads a YAML file. Keys missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	cfg := Default()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	if cfg.DBFile == "" {
		return errors.New("db_file must not be empty")
	}
	if cfg.PoolSize <= 0 {
		return fmt.Errorf("pool_size must be positive, got %d", cfg.PoolSize)
	}
	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// ConfigureLogging applies LogLevel to the standard logrus logger.
func (cfg *Config) ConfigureLogging() error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	return nil
}
