package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	BackendBaseURL string
	PaymentBaseURL string
	AuthToken      string
	RedisAddr      string
	AppPort        string
	AppEnv         string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		BackendBaseURL: os.Getenv("BACKEND_BASE_URL"),
		PaymentBaseURL: os.Getenv("PAYMENT_BASE_URL"),
		AuthToken:      os.Getenv("BACKEND_AUTH_TOKEN"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		AppPort:        os.Getenv("APP_PORT"),
		AppEnv:         os.Getenv("APP_ENV"),
	}

	if cfg.BackendBaseURL == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	// Payment calls go through the same backend unless split out.
	if cfg.PaymentBaseURL == "" {
		cfg.PaymentBaseURL = cfg.BackendBaseURL
	}
	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}

	return cfg
}
