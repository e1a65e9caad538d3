package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Port       string
	AppURL     string
	APIURL     string
	DSN        string
	JWTSecret  string
	JWTExpires time.Duration
	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	MailFrom   string
	Env        string
}

// Load reads the environment once at startup. Missing mandatory variables
// are fatal; the process never runs half-configured.
func Load() *Config {
	_ = godotenv.Load()

	ttl, err := time.ParseDuration(getEnv("JWT_EXPIRES", "15m"))
	if err != nil {
		log.Fatalf("invalid JWT_EXPIRES: %v", err)
	}
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		log.Fatalf("invalid SMTP_PORT: %v", err)
	}

	c := &Config{
		Port:       getEnv("PORT", "4000"),
		AppURL:     mustEnv("APP_URL"),
		APIURL:     getEnv("API_URL", "http://localhost:4000"),
		DSN:        mustEnv("DB_DSN"),
		JWTSecret:  mustEnv("JWT_SECRET"),
		JWTExpires: ttl,
		SMTPHost:   mustEnv("SMTP_HOST"),
		SMTPPort:   smtpPort,
		SMTPUser:   mustEnv("SMTP_USER"),
		SMTPPass:   mustEnv("SMTP_PASS"),
		MailFrom:   mustEnv("MAIL_FROM"),
		Env:        getEnv("ENV", "dev"),
	}
	log.Infof("config loaded: env=%s port=%s", c.Env, c.Port)
	return c
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing env: %s", k)
	}
	return v
}
