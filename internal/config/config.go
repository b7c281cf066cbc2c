package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	RemoteURL     string `mapstructure:"REMOTE_URL"`
	RemoteAnonKey string `mapstructure:"REMOTE_ANON_KEY"`
	Environment   string `mapstructure:"ENV"`
	ListenAddr    string `mapstructure:"LISTEN_ADDR"`
	StateDir      string `mapstructure:"STATE_DIR"`
}

func Load() (*Config, error) {
	// .env is optional, plain environment variables win anyway
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	cfg := &Config{
		RemoteURL:     os.Getenv("REMOTE_URL"),
		RemoteAnonKey: os.Getenv("REMOTE_ANON_KEY"),
		Environment:   os.Getenv("ENV"),
		ListenAddr:    os.Getenv("LISTEN_ADDR"),
		StateDir:      os.Getenv("STATE_DIR"),
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.StateDir == "" {
		cfg.StateDir = ".state"
	}

	if cfg.RemoteURL == "" {
		return nil, fmt.Errorf("REMOTE_URL is required but not set")
	}
	if cfg.RemoteAnonKey == "" {
		return nil, fmt.Errorf("REMOTE_ANON_KEY is required but not set")
	}

	log.Printf("Config loaded\n")

	return cfg, nil
}
