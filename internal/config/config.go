package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr     string
	DBPath         string
	UploadDir      string
	BaseURL        string
	SecretKey      string
	MaxUploadBytes int64
	PollInterval   time.Duration
	AllowedOrigins []string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first; real environment variables win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenAddr:     getEnv("KEEPSAKE_LISTEN_ADDR", ":5005"),
		DBPath:         getEnv("KEEPSAKE_DB_PATH", "keepsake.db"),
		UploadDir:      getEnv("KEEPSAKE_UPLOAD_DIR", "uploads"),
		BaseURL:        getEnv("KEEPSAKE_BASE_URL", "http://localhost:5005/"),
		SecretKey:      getEnv("KEEPSAKE_SECRET_KEY", ""),
		MaxUploadBytes: getEnvInt64("KEEPSAKE_MAX_UPLOAD_BYTES", 32<<20),
		PollInterval:   getEnvDuration("KEEPSAKE_POLL_INTERVAL", 15*time.Second),
		AllowedOrigins: []string{getEnv("KEEPSAKE_ALLOWED_ORIGIN", "*")},
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
