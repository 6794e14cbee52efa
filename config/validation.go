package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/Rol3ert99/CookbookAPP-backend/internal/recipe"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var imageSizePattern = regexp.MustCompile(`^[1-9][0-9]*x[1-9][0-9]*$`)

// ValidateConfig checks values that would otherwise only fail on the first
// request. The OpenAI API key is intentionally not required here.
func ValidateConfig(cfg *Config) error {
	var errs []error
	fail := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port < 1 || port > 65535 {
		fail("SERVER_PORT", "%q is not a valid port", cfg.ServerPort)
	}
	if u, err := url.Parse(cfg.OpenAIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		fail("OPENAI_BASE_URL", "%q is not an absolute URL", cfg.OpenAIBaseURL)
	}
	if !imageSizePattern.MatchString(cfg.ImageSize) {
		fail("OPENAI_IMAGE_SIZE", "%q must look like 1024x1024", cfg.ImageSize)
	}
	if _, err := recipe.ParsePolicy(cfg.VocabularyPolicy); err != nil {
		fail("VOCABULARY_POLICY", "%v", err)
	}
	if cfg.OpenAITimeout < 0 {
		fail("OPENAI_TIMEOUT_SECONDS", "must not be negative")
	}
	if cfg.CacheTTL < 0 {
		fail("CACHE_TTL_SECONDS", "must not be negative")
	}
	if cfg.S3URLTTL < 0 {
		fail("S3_URL_TTL_SECONDS", "must not be negative")
	}
	if cfg.RedisDB < 0 {
		fail("REDIS_DB", "must not be negative")
	}
	if cfg.OtelSampleRatio < 0 || cfg.OtelSampleRatio > 1 {
		fail("OTEL_SAMPLER_RATIO", "must be between 0 and 1")
	}

	return errors.Join(errs...)
}
