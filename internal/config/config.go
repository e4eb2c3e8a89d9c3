package config

import (
	"os"
)

type Config struct {
	ProjectID   string
	LogLevel    string
	Port        string
	TemplateDir string
	AdminClaim  string
}

func New() *Config {
	return &Config{
		ProjectID:   os.Getenv("PROJECTID"),
		LogLevel:    os.Getenv("LOGLEVEL"),
		Port:        getEnv("PORT", "8080"),
		TemplateDir: os.Getenv("TEMPLATEDIR"),
		AdminClaim:  getEnv("ADMINCLAIM", "admin"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
