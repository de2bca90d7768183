package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Auth struct {
		JWTSecret    string `yaml:"jwt_secret"`
		TokenTTL     string `yaml:"token_ttl"`
		PasswordCost int    `yaml:"password_cost"`
	} `yaml:"auth"`
	Storage struct {
		Driver      string `yaml:"driver"` // file | memory | postgres | sqlite
		DataDir     string `yaml:"data_dir"`
		PostgresURL string `yaml:"postgres_url"`
		SQLitePath  string `yaml:"sqlite_path"`
	} `yaml:"storage"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		LockTTL  string `yaml:"lock_ttl"`
	} `yaml:"redis"`
	Telegram struct {
		Token       string `yaml:"token"`
		PollTimeout string `yaml:"poll_timeout"`
	} `yaml:"telegram"`
	Verification struct {
		CodeTTL string `yaml:"code_ttl"`
	} `yaml:"verification"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

// DefaultJWTSecret is public; tokens signed with it can be forged by anyone.
const DefaultJWTSecret = "change-me"

// Default is used for every field the file and environment leave empty.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "3000"
	cfg.Auth.JWTSecret = DefaultJWTSecret
	cfg.Auth.TokenTTL = "24h"
	cfg.Storage.Driver = "file"
	cfg.Storage.DataDir = "data"
	cfg.Storage.SQLitePath = "data/quiz.db"
	cfg.Redis.LockTTL = "10s"
	cfg.Telegram.PollTimeout = "10s"
	cfg.Verification.CodeTTL = "5m"
	cfg.CORS.AllowedOrigins = []string{"*"}
	return cfg
}

// Load reads .env (if any), then the YAML config at path (a missing file keeps defaults),
// then applies environment overrides.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	override := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	override(&cfg.Server.Port, "PORT")
	override(&cfg.Auth.JWTSecret, "JWT_SECRET")
	override(&cfg.Telegram.Token, "TELEGRAM_BOT_TOKEN")
	override(&cfg.Storage.DataDir, "DATA_DIR")
	override(&cfg.Storage.Driver, "STORAGE_DRIVER")
	override(&cfg.Storage.PostgresURL, "POSTGRES_URL")
	override(&cfg.Redis.Addr, "REDIS_ADDR")
}

// InsecureSecret reports whether tokens would be signed with an empty or the default secret.
func (c Config) InsecureSecret() bool {
	secret := strings.TrimSpace(c.Auth.JWTSecret)
	return secret == "" || secret == DefaultJWTSecret
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
