package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MySQLDSN      string
	MongoURI      string
	MongoDatabase string
	Port          string
	Env           string

	// LLM synthesis call budget. One call plus at most one repair attempt.
	LLMTimeout time.Duration
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		MySQLDSN:      os.Getenv("MYSQL_DSN"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: os.Getenv("MONGO_DATABASE"),
		Port:          os.Getenv("PORT"),
		Env:           os.Getenv("ENV"),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.MongoURI == "" {
		cfg.MongoURI = "mongodb://localhost:27017"
	}
	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = "luda"
	}

	cfg.LLMTimeout = 20 * time.Second
	if raw := os.Getenv("LLM_TIMEOUT_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			cfg.LLMTimeout = time.Duration(secs) * time.Second
		}
	}

	return cfg
}
