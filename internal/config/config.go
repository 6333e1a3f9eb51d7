package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI   string
	MongoDB    string
	RedisURL   string
	JWTSecret  string
	ServerPort string
}

func LoadConfig() (*Config, error) {
	// .env is optional in containerized deployments
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:   os.Getenv("MONGO_URI"),
		MongoDB:    os.Getenv("MONGO_DB"),
		RedisURL:   os.Getenv("REDIS_URL"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		ServerPort: os.Getenv("SERVER_PORT"),
	}

	if cfg.MongoDB == "" {
		cfg.MongoDB = "petsitter_service"
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = ":8080"
	}

	return cfg, nil
}
