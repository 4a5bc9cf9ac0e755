package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	DB           DBConfig           `yaml:"db"`
	Redis        RedisConfig        `yaml:"redis"`
	Log          LogConfig          `yaml:"log"`
	Brainwriting BrainwritingConfig `yaml:"brainwriting"`
	Assist       AssistConfig       `yaml:"assist"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// BrainwritingConfig carries the tunables of the collaborative session
// protocol. Capacity bounds session membership, RowBudget is the number of
// rows a broadcast sheet accepts before the session is considered done, and
// LockTTL is how long an idle holder keeps a sheet before the lock becomes
// reclaimable.
type BrainwritingConfig struct {
	Capacity  int      `yaml:"capacity"`
	RowBudget int      `yaml:"row_budget"`
	Columns   int      `yaml:"columns"`
	LockTTL   Duration `yaml:"lock_ttl"`
}

// Duration wraps time.Duration so YAML values like "5m" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type AssistConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "idealab.db",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Log: LogConfig{
			Level: "info",
		},
		Brainwriting: BrainwritingConfig{
			Capacity:  6,
			RowBudget: 6,
			Columns:   3,
			LockTTL:   Duration(5 * time.Minute),
		},
		Assist: AssistConfig{
			Model: "claude-sonnet-4-20250514",
		},
	}

	if path := os.Getenv("IDEALAB_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("IDEALAB_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("IDEALAB_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid IDEALAB_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("IDEALAB_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if addr := os.Getenv("IDEALAB_REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("IDEALAB_REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if level := os.Getenv("IDEALAB_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if ttlStr := os.Getenv("IDEALAB_LOCK_TTL"); ttlStr != "" {
		ttl, err := time.ParseDuration(ttlStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid IDEALAB_LOCK_TTL: %w", err)
		}
		cfg.Brainwriting.LockTTL = Duration(ttl)
	}
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		cfg.Assist.APIKey = apiKey
	}
	if model := os.Getenv("IDEALAB_ASSIST_MODEL"); model != "" {
		cfg.Assist.Model = model
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
