package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/goccy/go-yaml"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
	Env  string `yaml:"env"` // "development" or "production"

	// Minecraft server settings
	ServerJarPath       string `yaml:"server_jar_path"`
	MaxMemoryBufferSize int    `yaml:"max_memory_buffer_size"` // -Xmx budget in MB
	WorldDirPath        string `yaml:"world_dir_path"`
	JavaBin             string `yaml:"java_bin"`

	// Backup settings
	BackupSchedule string `yaml:"backup_schedule"` // cron expression, empty disables

	// Database
	DatabasePath string `yaml:"database_path"`
}

var (
	cfg  *Config
	once sync.Once
)

// Get returns the global configuration (singleton).
// The config file path comes from MC_WRAPPER_CONFIG (default "config.yaml");
// a missing file is not an error, defaults and env overrides still apply.
func Get() *Config {
	once.Do(func() {
		c, err := Load(getEnv("MC_WRAPPER_CONFIG", "config.yaml"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = c
	})
	return cfg
}

// Load reads configuration from the given YAML file, then applies
// environment-variable overrides and defaults.
func Load(path string) (*Config, error) {
	c := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// No config file; env + defaults only.
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	c.applyEnv()
	c.applyDefaults()
	return c, nil
}

func (c *Config) applyEnv() {
	if v := getEnv("PORT", ""); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			c.Port = i
		}
	}
	if v := getEnv("HOST", ""); v != "" {
		c.Host = v
	}
	if v := getEnv("ENV", ""); v != "" {
		c.Env = v
	}
	if v := getEnv("MC_SERVER_JAR_PATH", ""); v != "" {
		c.ServerJarPath = v
	}
	if v := getEnv("MC_MAX_MEMORY_MB", ""); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			c.MaxMemoryBufferSize = i
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 6969
	}
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Env == "" {
		c.Env = "development"
	}
	if c.MaxMemoryBufferSize == 0 {
		c.MaxMemoryBufferSize = 1024
	}
	if c.JavaBin == "" {
		c.JavaBin = "java"
	}
	if c.WorldDirPath == "" && c.ServerJarPath != "" {
		c.WorldDirPath = filepath.Join(filepath.Dir(c.ServerJarPath), "world")
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "wrapper.sqlite"
	}
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.ServerJarPath == "" {
		return fmt.Errorf("server_jar_path is required")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
