// Package config provides configuration management for the edge engine.
package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Register custom validation functions
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("riskprofile", validateRiskProfile)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	env := fl.Field().String()
	switch env {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	level := fl.Field().String()
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateRiskProfile validates the risk profile field
func validateRiskProfile(fl validator.FieldLevel) bool {
	profile := fl.Field().String()
	switch profile {
	case "conservative", "moderate", "aggressive":
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	// Quorum cannot exceed the number of configured base models
	if cfg.Ensemble.Quorum > len(cfg.Ensemble.Models) {
		return fmt.Errorf("ensemble quorum %d exceeds configured model count %d",
			cfg.Ensemble.Quorum, len(cfg.Ensemble.Models))
	}

	// Model names must be unique; weights must sum to 1
	seen := make(map[string]bool, len(cfg.Ensemble.Models))
	weightSum := 0.0
	for _, m := range cfg.Ensemble.Models {
		if seen[m.Name] {
			return fmt.Errorf("duplicate base model name %q", m.Name)
		}
		seen[m.Name] = true
		weightSum += m.Weight
	}
	if math.Abs(weightSum-1.0) > 1e-6 {
		return fmt.Errorf("base model weights sum to %v, expected 1", weightSum)
	}

	// The refit window must be able to satisfy the minimum sample requirement
	if cfg.Calibration.MinSamples > cfg.Calibration.WindowSize {
		return fmt.Errorf("calibration min_samples %d exceeds window_size %d",
			cfg.Calibration.MinSamples, cfg.Calibration.WindowSize)
	}

	return nil
}

// formatValidationErrors converts validator errors into a readable message
func formatValidationErrors(errs validator.ValidationErrors) error {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, fmt.Sprintf("%s failed on '%s'", e.Namespace(), e.Tag()))
	}
	return fmt.Errorf("configuration validation failed: %s", strings.Join(messages, "; "))
}
