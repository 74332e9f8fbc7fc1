package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	StorageType string
	HTTP        HTTPConfig
	Mongo       MongoConfig
	Postgres    PostgresConfig
	Auth        AuthConfig
	Upload      UploadConfig
}

type HTTPConfig struct {
	Port string
}

type MongoConfig struct {
	URI      string
	Database string
}

type PostgresConfig struct {
	User     string
	Password string
	DB       string
	Host     string
	Port     int
	SSLMode  string
}

func (pc PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pc.User,
		pc.Password,
		pc.Host,
		pc.Port,
		pc.DB,
		pc.SSLMode,
	)
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type UploadConfig struct {
	Dir string
}

// Load reads configuration from the environment. Storage credentials for the
// selected backend are required; everything else falls back to sane defaults.
func Load() Config {
	storageType := getEnv("STORAGE_TYPE", "mongo")

	cfg := Config{
		StorageType: storageType,
		HTTP: HTTPConfig{
			Port: getEnv("HTTP_PORT", "8080"),
		},
		Auth: AuthConfig{
			JWTSecret: mustGetEnv("JWT_SECRET"),
			TokenTTL:  getDuration("TOKEN_TTL", 24*time.Hour),
		},
		Upload: UploadConfig{
			Dir: getEnv("UPLOAD_DIR", "uploads"),
		},
	}

	switch storageType {
	case "mongo":
		cfg.Mongo = MongoConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "inkwell"),
		}
	case "postgres":
		cfg.Postgres = PostgresConfig{
			User:     mustGetEnv("POSTGRES_USER"),
			Password: mustGetEnv("POSTGRES_PASSWORD"),
			DB:       mustGetEnv("POSTGRES_DB"),
			Host:     mustGetEnv("POSTGRES_HOST"),
			Port:     mustGetInt("POSTGRES_PORT"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		panic("invalid duration for env var " + key + ": " + val)
	}
	return d
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("missing required env var: " + key)
	}
	return val
}

func mustGetInt(key string) int {
	val := mustGetEnv(key)
	i, err := strconv.Atoi(val)
	if err != nil {
		panic("invalid int for env var " + key + ": " + val)
	}
	return i
}
