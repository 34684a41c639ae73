// Package config loads okato settings from config.yaml, a .env file and the
// environment, in that order of increasing precedence.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every setting of the okato binary.
type Config struct {
	Input            string `yaml:"input"`
	Encoding         string `yaml:"encoding"`
	DatabaseURL      string `yaml:"database_url"`
	DatabaseLogin    string `yaml:"database_login"`
	DatabasePassword string `yaml:"database_password"`
	MaxOpenConns     int    `yaml:"max_open_conns"`

	// ProgressEvery is the record interval between progress reports.
	ProgressEvery int64 `yaml:"progress_every"`
	// Progress is "log" or "bar".
	Progress string `yaml:"progress"`

	Addr string `yaml:"addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Input:            "data.csv",
		Encoding:         "windows-1251",
		DatabaseURL:      "postgres://localhost:5432/realestate_db",
		DatabaseLogin:    "realestate_user",
		DatabasePassword: "realestate_pwd",
		MaxOpenConns:     20,
		ProgressEvery:    200,
		Progress:         "log",
		Addr:             ":8421",
	}
}

// Load reads path (missing file means defaults), then .env and OKATO_*
// environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	// .env is optional.
	_ = godotenv.Load()

	cfg.Input = getEnv("OKATO_INPUT", cfg.Input)
	cfg.Encoding = getEnv("OKATO_ENCODING", cfg.Encoding)
	cfg.DatabaseURL = getEnv("OKATO_DATABASE_URL", cfg.DatabaseURL)
	cfg.DatabaseLogin = getEnv("OKATO_DATABASE_LOGIN", cfg.DatabaseLogin)
	cfg.DatabasePassword = getEnv("OKATO_DATABASE_PASSWORD", cfg.DatabasePassword)
	cfg.MaxOpenConns = getEnvAsInt("OKATO_MAX_OPEN_CONNS", cfg.MaxOpenConns)
	cfg.ProgressEvery = int64(getEnvAsInt("OKATO_PROGRESS_EVERY", int(cfg.ProgressEvery)))
	cfg.Progress = getEnv("OKATO_PROGRESS", cfg.Progress)
	cfg.Addr = getEnv("OKATO_ADDR", cfg.Addr)

	return cfg, nil
}

// ApplyArgs overrides the input path, database URL, login and password with
// positional arguments, in that order. Missing arguments keep the current
// value.
func (c *Config) ApplyArgs(args []string) {
	targets := []*string{&c.Input, &c.DatabaseURL, &c.DatabaseLogin, &c.DatabasePassword}
	for i, arg := range args {
		if i >= len(targets) {
			break
		}
		*targets[i] = arg
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
