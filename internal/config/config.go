// /internal/config/config.go
package config

import (
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

// Config holds the proxy's runtime settings, read from the environment.
type Config struct {
	HistoryPath  string  `env:"HISTORY_PATH" envDefault:"history.json"`
	Workers      int     `env:"COMMAND_WORKERS" envDefault:"4"`
	EventBufSize int     `env:"EVENT_BUFFER_SIZE" envDefault:"16"`
	RateLimit    float64 `env:"COMMAND_RATE_LIMIT" envDefault:"10"`
	RateBurst    int     `env:"COMMAND_RATE_BURST" envDefault:"20"`
}

// New parses the environment into a Config.
func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("[ERROR] Failed to parse config: %v", err)
	}
	return cfg
}
