package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func init() {
	// Auto-load .env file if present (don't override existing env vars)
	loadDotEnv(".env")
}

func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		// Remove surrounding quotes
		if len(val) >= 2 && ((val[0] == '"' && val[len(val)-1] == '"') || (val[0] == '\'' && val[len(val)-1] == '\'')) {
			val = val[1 : len(val)-1]
		}
		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}
}

const (
	defaultPort                 = "4000"
	defaultEnvironment          = "development"
	defaultSessionTTL           = 7 * 24 * time.Hour
	defaultRecordingMaxDuration = 3 * time.Minute
	defaultDefaultLanguage      = "en"
	defaultCommentPageSize      = 200
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port            string
	DatabaseURL     string
	Environment     string
	AllowedOrigins  []string
	DefaultLanguage string
	CommentPageSize int
	Session         SessionConfig
	Recording       RecordingConfig
}

type SessionConfig struct {
	TTL time.Duration
}

type RecordingConfig struct {
	MaxDuration time.Duration
}

func Load() (Config, error) {
	cfg := Config{
		Port:        firstNonEmpty(strings.TrimSpace(os.Getenv("PORT")), defaultPort),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		Environment: resolveEnvironment(),
		DefaultLanguage: firstNonEmpty(
			strings.TrimSpace(os.Getenv("DEFAULT_LANGUAGE")),
			defaultDefaultLanguage,
		),
		AllowedOrigins: splitOrigins(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}

	sessionTTL, err := parseDuration("SESSION_TTL", defaultSessionTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.Session.TTL = sessionTTL

	recordingMax, err := parseDuration("RECORDING_MAX_DURATION", defaultRecordingMaxDuration)
	if err != nil {
		return Config{}, err
	}
	cfg.Recording.MaxDuration = recordingMax

	commentPageSize, err := parseInt("COMMENT_PAGE_SIZE", defaultCommentPageSize)
	if err != nil {
		return Config{}, err
	}
	cfg.CommentPageSize = commentPageSize

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be greater than zero")
	}

	if c.Recording.MaxDuration <= 0 {
		return fmt.Errorf("RECORDING_MAX_DURATION must be greater than zero")
	}

	if c.CommentPageSize <= 0 {
		return fmt.Errorf("COMMENT_PAGE_SIZE must be greater than zero")
	}

	if !isNonDevelopment(c.Environment) {
		return nil
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required in non-development environments")
	}

	return nil
}

func resolveEnvironment() string {
	return strings.ToLower(firstNonEmpty(
		strings.TrimSpace(os.Getenv("APP_ENV")),
		strings.TrimSpace(os.Getenv("ENVIRONMENT")),
		strings.TrimSpace(os.Getenv("GO_ENV")),
		defaultEnvironment,
	))
}

func isNonDevelopment(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "", "dev", "development", "local", "test":
		return false
	default:
		return true
	}
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			origins = append(origins, part)
		}
	}
	return origins
}

func parseDuration(name string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return defaultValue, nil
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", name, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than zero", name)
	}

	return parsed, nil
}

func parseInt(name string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", name, err)
	}
	return parsed, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
