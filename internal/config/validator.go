package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors collects every problem found in one pass
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, e := range ve {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// ValidateSettings returns every problem with s.
func ValidateSettings(s Settings) []ValidationError {
	var errors []ValidationError

	if s.BaseURL == "" {
		errors = append(errors, ValidationError{
			Path:    "baseUrl",
			Message: "baseUrl is required",
		})
	} else if u, err := url.Parse(s.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, ValidationError{
			Path:    "baseUrl",
			Message: fmt.Sprintf("invalid URL: %s", s.BaseURL),
		})
	}

	if s.Threads < 1 {
		errors = append(errors, ValidationError{
			Path:    "threads",
			Message: "threads must be at least 1",
		})
	}

	if s.TotalExperiments < 0 {
		errors = append(errors, ValidationError{
			Path:    "totalExperiments",
			Message: "totalExperiments cannot be negative",
		})
	}

	if s.InputDir == "" {
		errors = append(errors, ValidationError{
			Path:    "inputDir",
			Message: "inputDir is required",
		})
	}

	if d, err := s.RequestTimeout(); err != nil {
		errors = append(errors, ValidationError{
			Path:    "timeout",
			Message: fmt.Sprintf("invalid duration '%s': %v", s.Timeout, err),
		})
	} else if d < 0 {
		errors = append(errors, ValidationError{
			Path:    "timeout",
			Message: "timeout cannot be negative",
		})
	}

	if s.LogLevel != "" {
		if _, err := logrus.ParseLevel(s.LogLevel); err != nil {
			errors = append(errors, ValidationError{
				Path:    "logLevel",
				Message: err.Error(),
			})
		}
	}

	return errors
}

// Validate returns nil or a ValidationErrors describing s.
func (s Settings) Validate() error {
	if errs := ValidateSettings(s); len(errs) > 0 {
		return ValidationErrors(errs)
	}
	return nil
}
