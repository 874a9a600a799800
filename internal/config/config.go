package config

import (
	"errors"
	"os"
	"strconv"
)

type Config struct {
	Port         string
	DatabaseDSN  string
	JWTSecret    string
	Env          string
	ClientOrigin string
	TokenTTLDays int

	// Object storage for image attachments and avatars.
	S3Region        string
	S3Bucket        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
}

const defaultSecret = "dev-secret-change-me"

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func Load() Config {
	return Config{
		Port:         getenv("APP_PORT", "8080"),
		DatabaseDSN:  getenv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=chatapp port=5432 sslmode=disable TimeZone=UTC"),
		JWTSecret:    getenv("JWT_SECRET", defaultSecret),
		Env:          getenv("APP_ENV", "dev"),
		ClientOrigin: getenv("CLIENT_ORIGIN", "http://localhost:5173"),
		TokenTTLDays: getenvInt("TOKEN_TTL_DAYS", 7),

		S3Region:        getenv("S3_REGION", "us-east-1"),
		S3Bucket:        getenv("S3_BUCKET", "chat-app"),
		S3Endpoint:      getenv("S3_ENDPOINT", "http://localhost:9000"),
		S3AccessKey:     getenv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:     getenv("S3_SECRET_KEY", "minioadmin"),
		S3PublicBaseURL: getenv("S3_PUBLIC_BASE_URL", "http://localhost:9000/chat-app"),
	}
}

// Validate rejects configurations that cannot safely serve traffic.
// The default JWT secret is only tolerated in dev.
func Validate(cfg Config) error {
	if cfg.Port == "" {
		return errors.New("config: port must not be empty")
	}
	if cfg.DatabaseDSN == "" {
		return errors.New("config: database dsn must not be empty")
	}
	if cfg.JWTSecret == "" {
		return errors.New("config: jwt secret must not be empty")
	}
	if cfg.Env != "dev" && cfg.JWTSecret == defaultSecret {
		return errors.New("config: default jwt secret is not allowed outside dev")
	}
	if cfg.TokenTTLDays <= 0 {
		return errors.New("config: token ttl must be positive")
	}
	return nil
}
