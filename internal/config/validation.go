package config

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// addIf appends err when it is a ValidationError.
func (ve *ValidationErrors) addIf(err error) {
	if err == nil {
		return
	}
	if v, ok := err.(ValidationError); ok {
		*ve = append(*ve, v)
		return
	}
	ve.Add("", err.Error())
}

// ValidateRequired checks if a required string field is not empty
func ValidateRequired(field, value, entityType string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf("is required for %s", entityType),
		}
	}
	return nil
}

// ValidateOneOf checks if a value is in a list of allowed values
func ValidateOneOf(field, value string, allowed []string) error {
	for _, allowedValue := range allowed {
		if value == allowedValue {
			return nil
		}
	}
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// ValidatePositiveDuration checks that a timeout is strictly positive
func ValidatePositiveDuration(field string, value time.Duration) error {
	if value <= 0 {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: "must be a positive duration",
		}
	}
	return nil
}

// ValidateRunLevelName validates that a run-level name is usable as a tag
func ValidateRunLevelName(field, name string) error {
	if err := ValidateRequired(field, name, "run-level"); err != nil {
		return err
	}
	if strings.ContainsAny(name, " \t/") {
		return ValidationError{
			Field:   field,
			Value:   name,
			Message: "cannot contain spaces or slashes",
		}
	}
	return nil
}

// Validate checks the whole configuration and reports every problem at once.
func (c InitConfig) Validate() error {
	var errs ValidationErrors

	errs.addIf(ValidateRunLevelName("defaultRunlevel", c.DefaultRunlevel))
	for i, level := range c.BootSequence {
		errs.addIf(ValidateRunLevelName(fmt.Sprintf("bootSequence[%d]", i), level))
	}
	errs.addIf(ValidatePositiveDuration("startupTimeout", c.StartupTimeout))
	errs.addIf(ValidatePositiveDuration("stopTimeout", c.StopTimeout))
	errs.addIf(ValidateRequired("servicesFile", c.ServicesFile, "config"))
	errs.addIf(ValidateRequired("statusFile", c.StatusFile, "config"))
	errs.addIf(ValidateOneOf("virtualConflict", c.VirtualConflict, []string{"lastWriteWins", "reject"}))
	errs.addIf(ValidateOneOf("logging.level", c.Logging.Level, []string{"debug", "info", "warn", "error"}))
	errs.addIf(ValidateOneOf("logging.format", c.Logging.Format, []string{"text", "json"}))
	if c.Metrics.Enabled {
		errs.addIf(ValidateRequired("metrics.address", c.Metrics.Address, "metrics"))
	}
	errs.addIf(ValidateRequired("executor.shell", c.Executor.Shell, "executor"))

	if errs.HasErrors() {
		return errs
	}
	return nil
}
