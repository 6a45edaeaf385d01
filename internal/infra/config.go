package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	DBMaxConns  int

	JWTSecret string
	TokenTTL  time.Duration

	CaptchaSecret    string
	CaptchaVerifyURL string

	S3Bucket        string
	S3Region        string
	S3PublicBaseURL string
	StorageBasePath string
	StorageBaseURL  string

	StaticDir string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	AuthRatePerMin   int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8000"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DBMaxConns:       getEnvInt("DB_MAX_CONNS", 10),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		TokenTTL:         24 * time.Hour * time.Duration(getEnvInt("TOKEN_TTL_DAYS", 30)),
		CaptchaSecret:    os.Getenv("CAPTCHA_SECRET"),
		CaptchaVerifyURL: getEnv("CAPTCHA_VERIFY_URL", "https://www.google.com/recaptcha/api/siteverify"),
		S3Bucket:         os.Getenv("S3_BUCKET"),
		S3Region:         getEnv("S3_REGION", "ap-south-1"),
		S3PublicBaseURL:  os.Getenv("S3_PUBLIC_BASE_URL"),
		StorageBasePath:  getEnv("STORAGE_BASE_PATH", "uploads"),
		StorageBaseURL:   getEnv("STORAGE_BASE_URL", "http://localhost:8000/static"),
		StaticDir:        getEnv("STATIC_DIR", "client/dist"),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		AuthRatePerMin:   getEnvInt("AUTH_RATE_LIMIT_PER_MINUTE", 20),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
