// Package config loads application configuration from an optional YAML
// file merged with environment variables. Environment variables win.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration
type Config struct {
	Port     string `koanf:"port"`
	LogLevel string `koanf:"log_level"`

	// Authentication
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`

	// User directory and assets
	UsersFile    string `koanf:"users_file"`
	ResourcesDir string `koanf:"resources_dir"`
	ImageDir     string `koanf:"image_dir"`
	AltImageDir  string `koanf:"alt_image_dir"`

	// Transaction logging
	LogDir string `koanf:"log_dir"`

	// Optional SOAP profile backend; empty disables it
	SOAPAuthURL string `koanf:"soap_auth_url"`

	// Optional SMTP alerting; empty host disables it
	SMTPHost     string `koanf:"smtp_host"`
	SMTPPort     string `koanf:"smtp_port"`
	SMTPUsername string `koanf:"smtp_username"`
	SMTPPassword string `koanf:"smtp_password"`
	SenderEmail  string `koanf:"sender_email"`
	AlertEmail   string `koanf:"alert_email"`
}

// DefaultTokenTTL is the token lifetime when TOKEN_TTL is unset.
const DefaultTokenTTL = time.Hour

// NewConfig loads configuration from configFile (may be empty) and the
// environment.
func NewConfig(configFile string) (*Config, error) {
	k := koanf.New(".")
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configFile, err)
		}
	}

	ttl, err := durationValue("TOKEN_TTL", k, "token_ttl", DefaultTokenTTL)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:         stringValue("PORT", k, "port", "8080"),
		LogLevel:     stringValue("LOG_LEVEL", k, "log_level", "INFO"),
		JWTSecret:    stringValue("JWT_SECRET", k, "jwt_secret", "secret"),
		TokenTTL:     ttl,
		UsersFile:    stringValue("USERS_FILE", k, "users_file", "resources/properties/users.json"),
		ResourcesDir: stringValue("RESOURCES_DIR", k, "resources_dir", "resources"),
		ImageDir:     stringValue("IMAGE_DIR", k, "image_dir", "resources/images"),
		AltImageDir:  stringValue("ALT_IMAGE_DIR", k, "alt_image_dir", "static/images"),
		LogDir:       stringValue("LOG_DIR", k, "log_dir", "logs"),
		SOAPAuthURL:  stringValue("SOAP_AUTH_URL", k, "soap_auth_url", ""),
		SMTPHost:     stringValue("SMTP_HOST", k, "smtp_host", ""),
		SMTPPort:     stringValue("SMTP_PORT", k, "smtp_port", "587"),
		SMTPUsername: stringValue("SMTP_USERNAME", k, "smtp_username", ""),
		SMTPPassword: stringValue("SMTP_PASSWORD", k, "smtp_password", ""),
		SenderEmail:  stringValue("SENDER_EMAIL", k, "sender_email", ""),
		AlertEmail:   stringValue("ALERT_EMAIL", k, "alert_email", ""),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.UsersFile == "" {
		return nil, fmt.Errorf("USERS_FILE is required")
	}

	return cfg, nil
}

// stringValue resolves env var, then config file key, then default.
func stringValue(envKey string, k *koanf.Koanf, key, defaultVal string) string {
	if value, exists := os.LookupEnv(envKey); exists {
		return value
	}
	if v := k.String(key); v != "" {
		return v
	}
	return defaultVal
}

func durationValue(envKey string, k *koanf.Koanf, key string, defaultVal time.Duration) (time.Duration, error) {
	raw := stringValue(envKey, k, key, "")
	if raw == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", envKey, err)
	}
	return d, nil
}
