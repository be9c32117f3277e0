package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	LineChannelSecret string
	LineChannelToken  string

	SessionTTL time.Duration
	ListLimit  int

	VaultDir string

	APIJWTSecret    string
	APIPasswordHash string
}

func Load() *Config {

	port, err := strconv.Atoi(os.Getenv("DB_PORT"))
	if err != nil {
		port = 5432 // fallback
	}

	ttlMin, err := strconv.Atoi(os.Getenv("SESSION_TTL_MIN"))
	if err != nil || ttlMin <= 0 {
		ttlMin = 10 // numbered references stay valid this long
	}

	listLimit, err := strconv.Atoi(os.Getenv("LIST_LIMIT"))
	if err != nil || listLimit <= 0 {
		listLimit = 9
	}

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     port,
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		LineChannelSecret: os.Getenv("LINE_CHANNEL_SECRET"),
		LineChannelToken:  os.Getenv("LINE_CHANNEL_TOKEN"),

		SessionTTL: time.Duration(ttlMin) * time.Minute,
		ListLimit:  listLimit,

		VaultDir: os.Getenv("VAULT_DIR"),

		APIJWTSecret:    os.Getenv("API_JWT_SECRET"),
		APIPasswordHash: os.Getenv("API_PASSWORD_HASH"),
	}
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}
