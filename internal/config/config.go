package config

import (
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingSecrets — нет CODE_PEPPER/TOKEN_SECRET вне development-режима.
var ErrMissingSecrets = errors.New("config: CODE_PEPPER and TOKEN_SECRET must be set")

const (
	devPepper      = "dev-pepper-not-for-production"
	devTokenSecret = "dev-token-secret-not-for-production"
)

type SecurityConfig struct {
	// CodePepper — серверный pepper для digest-индекса кодов (из ENV, не из yaml).
	CodePepper string `yaml:"-"`
	// TokenSecret — ключ подписи verification-токенов (из ENV).
	TokenSecret string `yaml:"-"`
}

type Config struct {
	Env    string `yaml:"env"` // development | production
	Server struct {
		Port    int    `yaml:"port"`
		BaseURL string `yaml:"base_url"` // для ссылок в письмах
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	Security SecurityConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	f, err := os.Open("config/config.yaml")
	if err != nil {
		return nil, errors.New("failed to open config.yaml: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, errors.New("failed to parse config.yaml: " + err.Error())
	}

	// .env опционален: в бою секреты приходят из окружения напрямую
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] no .env file loaded: %v", err)
	}

	cfg.Security.CodePepper = os.Getenv("CODE_PEPPER")
	cfg.Security.TokenSecret = os.Getenv("TOKEN_SECRET")
	if env := os.Getenv("APP_ENV"); env != "" {
		cfg.Env = env
	}
	if cfg.Env == "" {
		cfg.Env = "production"
	}

	if cfg.Security.CodePepper == "" || cfg.Security.TokenSecret == "" {
		if cfg.Env != "development" {
			return nil, ErrMissingSecrets
		}
		log.Printf("[config] WARNING: using built-in development secrets, never run this in production")
		if cfg.Security.CodePepper == "" {
			cfg.Security.CodePepper = devPepper
		}
		if cfg.Security.TokenSecret == "" {
			cfg.Security.TokenSecret = devTokenSecret
		}
	}

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:8080"
	}
	return &cfg, nil
}
