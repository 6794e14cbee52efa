package config

import (
	"os"
	"strings"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment determines the current environment
func GetEnvironment() Environment {
	// CI environment is automatically detected
	if os.Getenv("CI") == "true" {
		return CI
	}

	switch env := Environment(strings.ToLower(os.Getenv("ENV"))); env {
	case Production, Test:
		return env
	default:
		return Development
	}
}

// IsProduction returns true if the current environment is production
func (e Environment) IsProduction() bool {
	return e == Production
}
