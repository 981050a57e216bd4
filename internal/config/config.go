package config

import (
	"os"
	"strconv"

	"battwatch/internal/errors"

	"gopkg.in/yaml.v3"
)

const configFileEnv = "BATTWATCH_CONFIG"

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Paths    PathConfig     `yaml:"paths"`
	Database DatabaseConfig `yaml:"database"`
	Monitor  MonitorConfig  `yaml:"monitor"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `yaml:"port"`
	APIPort string `yaml:"api_port"`
}

// PathConfig holds file system paths for persisted artifacts
type PathConfig struct {
	DataDir string `yaml:"data_dir"`
}

// DatabaseConfig holds upload-registry database settings.
// Driver is "sqlite3" (default, file under DataDir) or "postgres"
// (taken when DATABASE_URL is set).
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
}

// MonitorConfig holds live monitoring feed settings
type MonitorConfig struct {
	TickMillis int `yaml:"tick_millis"`
}

// Load reads configuration from an optional YAML file (BATTWATCH_CONFIG)
// with environment variables taking precedence, then validates it.
func Load() (*Config, error) {
	config := &Config{}

	if path := os.Getenv(configFileEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	applyEnv(config)
	applyDefaults(config)

	if err := validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func applyEnv(c *Config) {
	c.Server.Port = getEnvOrDefault("PORT", c.Server.Port)
	c.Server.APIPort = getEnvOrDefault("API_PORT", c.Server.APIPort)
	c.Paths.DataDir = getEnvOrDefault("DATA_DIR", c.Paths.DataDir)
	c.Database.URL = getEnvOrDefault("DATABASE_URL", c.Database.URL)
	c.Database.Driver = getEnvOrDefault("DB_DRIVER", c.Database.Driver)
	c.Monitor.TickMillis = getEnvIntOrDefault("MONITOR_TICK_MS", c.Monitor.TickMillis)
}

func applyDefaults(c *Config) {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.APIPort == "" {
		c.Server.APIPort = "8081"
	}
	if c.Paths.DataDir == "" {
		c.Paths.DataDir = "."
	}
	if c.Database.Driver == "" {
		if c.Database.URL != "" {
			c.Database.Driver = "postgres"
		} else {
			c.Database.Driver = "sqlite3"
		}
	}
	if c.Monitor.TickMillis <= 0 {
		c.Monitor.TickMillis = 2000
	}
}

func validate(c *Config) error {
	if c.Database.Driver != "sqlite3" && c.Database.Driver != "postgres" {
		return errors.ConfigInvalid("DB_DRIVER must be sqlite3 or postgres")
	}
	if c.Database.Driver == "postgres" && c.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required for the postgres driver")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
