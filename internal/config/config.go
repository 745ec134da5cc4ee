package config

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// insecure fallback for local/test profiles only. Load refuses to start a prod
// process without an explicit secret.
const devJWTSecret = "insecure-dev-secret-do-not-use"

type Config struct {
	Env  string
	Port int

	DBURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	JWTTTL    time.Duration

	AllowedEmailDomain string
	ExposeResetTokens  bool
	AppBaseURL         string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	AdminEmail    string
	AdminPassword string
	AdminName     string

	OTLPEndpoint string

	CORSAllowedOrigins []string

	WorkerPort int
}

func Load() (Config, error) {
	env := getEnv("APP_ENV", "dev")

	cfg := Config{
		Env:   env,
		Port:  getEnvInt("PORT", 8080),
		DBURL: buildDBURL(),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 168)) * time.Hour,

		AllowedEmailDomain: strings.ToLower(getEnv("ALLOWED_EMAIL_DOMAIN", "")),
		ExposeResetTokens:  getEnvBool("EXPOSE_RESET_TOKENS", false),
		AppBaseURL:         getEnv("APP_BASE_URL", "http://localhost:8080"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", ""),

		AdminEmail:    strings.ToLower(getEnv("ADMIN_EMAIL", "")),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Administrator"),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),

		WorkerPort: getEnvInt("WORKER_PORT", 8081),
	}

	if cfg.JWTSecret == "" {
		if cfg.Env == "prod" {
			return Config{}, errors.New("JWT_SECRET is required when APP_ENV=prod")
		}

		cfg.JWTSecret = devJWTSecret
	}

	// the token echo on /auth/forgot is a test convenience and must never
	// survive into a prod build, whatever the flag says
	if cfg.Env == "prod" {
		cfg.ExposeResetTokens = false
	}

	return cfg, nil
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "campushub")
	pass := getEnv("DB_PASSWORD", "campushub")
	name := getEnv("DB_NAME", "campushub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)

		if err != nil {
			return fallback
		}

		return b
	}
	return fallback
}

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
