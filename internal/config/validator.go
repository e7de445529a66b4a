package config

import (
	"fmt"
	"strings"

	"github.com/VasilisMylonas/libreflect/internal/constants"
	"github.com/VasilisMylonas/libreflect/internal/logging"
	"github.com/VasilisMylonas/libreflect/pkg/serialize"
)

// Validator is the interface for validating configuration.
type Validator interface {
	Validate() error
}

// ValidationError represents a single validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MultiValidationError represents multiple validation errors.
type MultiValidationError struct {
	Errors []ValidationError
}

// Error implements the error interface.
func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("validation failed with %d errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		builder.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return builder.String()
}

// Validate validates Config.
func (c *Config) Validate() error {
	var errors []ValidationError

	if c.Version == "" {
		errors = append(errors, ValidationError{
			Field:   "version",
			Message: "version is required",
		})
	}

	if _, err := serialize.FormatByName(c.Format); err != nil {
		errors = append(errors, ValidationError{
			Field:   "format",
			Message: fmt.Sprintf("format must be one of %s", strings.Join(serialize.FormatNames(), ", ")),
		})
	}

	if c.MaxDepth < 1 || c.MaxDepth > constants.MaxDepthLimit {
		errors = append(errors, ValidationError{
			Field:   "max_depth",
			Message: fmt.Sprintf("max depth must be between 1 and %d", constants.MaxDepthLimit),
		})
	}

	if c.CacheSize < 0 || c.CacheSize > constants.MaxCacheSize {
		errors = append(errors, ValidationError{
			Field:   "cache_size",
			Message: fmt.Sprintf("cache size must be between 0 and %d", constants.MaxCacheSize),
		})
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errors = append(errors, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("log level must be one of %s", strings.Join(logging.Levels, ", ")),
		})
	}

	if len(errors) > 0 {
		return &MultiValidationError{Errors: errors}
	}
	return nil
}
