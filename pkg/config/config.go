package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv    string `yaml:"app_env"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	GRPCPort int `yaml:"grpc_port"`
	HTTPPort int `yaml:"http_port"`

	// RecordServiceURL is the base URL of the remote cart/product/auth store.
	RecordServiceURL string        `yaml:"record_service_url"`
	RemoteTimeout    time.Duration `yaml:"remote_timeout"`
	ClearConcurrency int           `yaml:"clear_concurrency"`

	// CartServiceAddr is where the gateway dials the storefront gRPC server.
	CartServiceAddr string `yaml:"cart_service_addr"`

	MergeOnLogin bool   `yaml:"merge_on_login"`
	Currency     string `yaml:"currency"`

	// RecordSeedFile preloads the in-memory record service.
	RecordSeedFile string `yaml:"record_seed_file"`
}

func defaults() Config {
	return Config{
		AppEnv:           "dev",
		LogLevel:         "info",
		LogFormat:        "json",
		HTTPPort:         8080,
		GRPCPort:         8081,
		RecordServiceURL: "http://localhost:3001",
		RemoteTimeout:    5 * time.Second,
		ClearConcurrency: 8,
		CartServiceAddr:  "localhost:8081",
		Currency:         "USD",
	}
}

// Load builds the config from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.HTTPPort = getEnvInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = getEnvInt("GRPC_PORT", cfg.GRPCPort)
	cfg.RecordServiceURL = getEnv("RECORD_SERVICE_URL", cfg.RecordServiceURL)
	cfg.RemoteTimeout = getEnvDuration("REMOTE_TIMEOUT", cfg.RemoteTimeout)
	cfg.ClearConcurrency = getEnvInt("CLEAR_CONCURRENCY", cfg.ClearConcurrency)
	cfg.CartServiceAddr = getEnv("CART_SERVICE_ADDR", cfg.CartServiceAddr)
	cfg.MergeOnLogin = getEnvBool("MERGE_ON_LOGIN", cfg.MergeOnLogin)
	cfg.Currency = getEnv("CURRENCY", cfg.Currency)
	cfg.RecordSeedFile = getEnv("RECORD_SEED_FILE", cfg.RecordSeedFile)

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
