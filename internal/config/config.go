package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is built once at process start and injected into every component.
type Config struct {
	Env                string
	AppPort            string
	CorsAllowedOrigins string
	LogFilePath        string
	FrontendURL        string

	DatabaseURL string

	SecretKey                string
	AccessTokenExpireMinutes int

	EmailVerificationRequired         bool
	EmailVerificationTokenExpireHours int
	PasswordResetTokenExpireHours     int

	SmtpHost       string
	SmtpPort       int
	SmtpUser       string
	SmtpPassword   string
	SmtpFromEmail  string
	SmtpSenderName string

	NatsURL string

	LLMProvider   string
	LLMModel      string
	OllamaBaseURL string

	OtlpEndpoint string
}

// Load reads .env (if present) and builds the config from the environment.
func Load() (*Config, error) {
	// .env is a dev convenience; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Env:                getEnv("ENV", "development"),
		AppPort:            getEnv("APP_PORT", "8000"),
		// Wildcard is rejected by the CORS middleware when credentials are
		// allowed, so default to the local frontend.
		CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		SecretKey:                os.Getenv("SECRET_KEY"),
		AccessTokenExpireMinutes: getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30),

		EmailVerificationRequired:         getEnvAsBool("EMAIL_VERIFICATION_REQUIRED", true),
		EmailVerificationTokenExpireHours: getEnvAsInt("EMAIL_VERIFICATION_TOKEN_EXPIRE_HOURS", 24),
		PasswordResetTokenExpireHours:     getEnvAsInt("PASSWORD_RESET_TOKEN_EXPIRE_HOURS", 1),

		SmtpHost:       os.Getenv("SMTP_HOST"),
		SmtpPort:       getEnvAsInt("SMTP_PORT", 587),
		SmtpUser:       os.Getenv("SMTP_USER"),
		SmtpPassword:   os.Getenv("SMTP_PASSWORD"),
		SmtpFromEmail:  getEnv("SMTP_FROM_EMAIL", "noreply@localhost"),
		SmtpSenderName: getEnv("SMTP_SENDER_NAME", "Agent Chat"),

		NatsURL: os.Getenv("NATS_URL"),

		LLMProvider:   getEnv("LLM_PROVIDER", "ollama"),
		LLMModel:      getEnv("LLM_MODEL", "llama3.1"),
		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),

		OtlpEndpoint: os.Getenv("OTLP_ENDPOINT"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY is required")
	}

	return cfg, nil
}

func (c *Config) IsProd() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvAsBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
