// Package config loads the server and generator settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreMemory    = "memory"
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"
)

// Generator providers.
const (
	ProviderMock   = "mock"
	ProviderGemini = "gemini"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Store struct {
		Backend          string        `yaml:"backend"`
		SQLitePath       string        `yaml:"sqlite_path"`
		FirestoreProject string        `yaml:"firestore_project"`
		FlushInterval    time.Duration `yaml:"flush_interval"`
	} `yaml:"store"`
	Generator struct {
		Provider string        `yaml:"provider"`
		Model    string        `yaml:"model"`
		APIKey   string        `yaml:"api_key"`
		Delay    time.Duration `yaml:"delay"`
	} `yaml:"generator"`
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Server.Addr = ":8080"
	cfg.Store.Backend = StoreMemory
	cfg.Store.SQLitePath = "docify.db"
	cfg.Store.FlushInterval = 5 * time.Second
	cfg.Generator.Provider = ProviderMock
	cfg.Generator.Delay = 2 * time.Second
	cfg.Log.Level = "info"
	return &cfg
}

// Load reads the YAML file at path over the defaults and applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	// 3. Override with Environment Variables if present
	if v := os.Getenv("DOCIFY_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DOCIFY_STORE"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("DOCIFY_GENERATOR"); v != "" {
		cfg.Generator.Provider = v
	}
	if v := os.Getenv("DOCIFY_API_KEY"); v != "" {
		cfg.Generator.APIKey = v
	}
	if v := os.Getenv("FIRESTORE_PROJECT"); v != "" {
		cfg.Store.FirestoreProject = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreSQLite:
	case StoreFirestore:
		if c.Store.FirestoreProject == "" {
			return errors.New("store: firestore backend needs a project")
		}
	default:
		return fmt.Errorf("store: unknown backend %q", c.Store.Backend)
	}
	switch c.Generator.Provider {
	case ProviderMock:
	case ProviderGemini:
		if c.Generator.APIKey == "" {
			return errors.New("generator: gemini needs an API key")
		}
	default:
		return fmt.Errorf("generator: unknown provider %q", c.Generator.Provider)
	}
	if c.Store.FlushInterval <= 0 {
		return errors.New("store: flush interval must be positive")
	}
	return nil
}
