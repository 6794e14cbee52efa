package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerHost         string
	ServerPort         string
	CORSAllowedOrigins []string
	LogMode            string

	// OpenAI configuration
	OpenAIAPIKey  string
	OpenAIBaseURL string
	ChatModel     string
	ImageModel    string
	ImageSize     string
	ImageQuality  string
	OpenAITimeout time.Duration
	ImagesEnabled bool

	// Vocabulary configuration
	VocabularyPolicy string
	VocabularyFile   string

	// Image storage configuration
	S3BucketName string
	AWSRegion    string
	S3URLTTL     time.Duration

	// Redis configuration
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Tracing configuration
	OtelEnabled     bool
	OtelEndpoint    string
	OtelHeaders     string
	OtelInsecure    bool
	OtelSampleRatio float64
}

// CacheEnabled reports whether validated responses should be cached in Redis
func (c *Config) CacheEnabled() bool {
	return c.CacheTTL > 0 && (c.RedisURL != "" || c.RedisHost != "")
}

// LoadConfig reads an optional .env file and then the environment, applies
// defaults and validates the result.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg, err := loadFromEnv()
	if err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadFromEnv() (*Config, error) {
	r := &envReader{}
	cfg := &Config{
		Environment: GetEnvironment(),

		ServerHost:         os.Getenv("SERVER_HOST"),
		ServerPort:         getEnv("SERVER_PORT", "8000"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogMode:            getEnv("LOG_MODE", "development"),

		OpenAIBaseURL: strings.TrimRight(getEnv("OPENAI_BASE_URL", "https://api.openai.com"), "/"),
		ChatModel:     getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		ImageModel:    getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),
		ImageSize:     getEnv("OPENAI_IMAGE_SIZE", "1024x1024"),
		ImageQuality:  getEnv("OPENAI_IMAGE_QUALITY", "standard"),
		OpenAITimeout: r.seconds("OPENAI_TIMEOUT_SECONDS", 0),
		ImagesEnabled: r.boolean("IMAGES_ENABLED", true),

		VocabularyPolicy: getEnv("VOCABULARY_POLICY", "pass"),
		VocabularyFile:   os.Getenv("VOCABULARY_FILE"),

		S3BucketName: os.Getenv("S3_BUCKET_NAME"),
		AWSRegion:    os.Getenv("AWS_REGION"),
		S3URLTTL:     r.seconds("S3_URL_TTL_SECONDS", 0),

		RedisURL:      os.Getenv("REDIS_URL"),
		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       r.integer("REDIS_DB", 0),
		CacheTTL:      r.seconds("CACHE_TTL_SECONDS", 0),

		OtelEnabled:     r.boolean("OTEL_ENABLED", false),
		OtelEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelHeaders:     os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"),
		OtelInsecure:    r.boolean("OTEL_EXPORTER_OTLP_INSECURE", false),
		OtelSampleRatio: r.float("OTEL_SAMPLER_RATIO", 0.1),
	}

	apiKey, err := loadAPIKey()
	if err != nil {
		return nil, err
	}
	cfg.OpenAIAPIKey = apiKey

	if len(r.errs) > 0 {
		return nil, errors.Join(r.errs...)
	}
	return cfg, nil
}

// loadAPIKey reads OPENAI_API_KEY, then OPENAI_API_KEY_FILE, then the
// openai_api_key Docker secret. An absent key is not an error.
func loadAPIKey() (string, error) {
	if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" {
		return key, nil
	}
	if path := os.Getenv("OPENAI_API_KEY_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read API key file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return readSecret("openai_api_key"), nil
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// envReader parses typed values and collects every failure so a bad
// environment is reported in one go.
type envReader struct {
	errs []error
}

func (r *envReader) fail(key, raw, want string) {
	r.errs = append(r.errs, ValidationError{Field: key, Message: fmt.Sprintf("%q is not %s", raw, want)})
}

func (r *envReader) integer(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		r.fail(key, raw, "an integer")
		return fallback
	}
	return n
}

func (r *envReader) seconds(key string, fallback int) time.Duration {
	return time.Duration(r.integer(key, fallback)) * time.Second
}

func (r *envReader) float(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.fail(key, raw, "a number")
		return fallback
	}
	return f
}

func (r *envReader) boolean(key string, fallback bool) bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch raw {
	case "":
		return fallback
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		r.fail(key, raw, "a boolean")
		return fallback
	}
}
