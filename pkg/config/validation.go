package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// Log level normalization is handled in ApplyDefaults, not here.
// Validation accepts both uppercase and lowercase log levels.
//
// Returns an error describing validation failures.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	if !cfg.Adapters.HTTP.Enabled {
		return fmt.Errorf("adapters: at least one adapter must be enabled")
	}

	switch cfg.Database.Type {
	case "mysql":
		opts, err := decodeMySQLOptions(cfg.Database.MySQL)
		if err != nil {
			return fmt.Errorf("database.mysql: %w", err)
		}
		if opts.User == "" {
			return fmt.Errorf("database.mysql: user is required")
		}
		if opts.Name == "" {
			return fmt.Errorf("database.mysql: name is required")
		}
	case "sqlite":
		opts, err := decodeSQLiteOptions(cfg.Database.SQLite)
		if err != nil {
			return fmt.Errorf("database.sqlite: %w", err)
		}
		if opts.Path == "" {
			return fmt.Errorf("database.sqlite: path is required")
		}
	}

	if cfg.Server.Metrics.Enabled && cfg.Server.Metrics.Port == cfg.Adapters.HTTP.Port {
		return fmt.Errorf("server.metrics: port %d conflicts with adapters.http.port", cfg.Server.Metrics.Port)
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		// Return the first validation error with context
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
