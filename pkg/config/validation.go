package config

import (
	"fmt"

	"github.com/fus-server/fus/pkg/access"
	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// This function uses go-playground/validator for declarative validation
// via struct tags, with additional custom validation for rules that cannot
// be expressed in tags (credential exclusivity, TLS material pairing,
// reserved names).
//
// Cross-references between sections (rules naming unknown groups or users)
// are not checked here; BuildSnapshot validates them against the assembled
// access components, where the error taxonomy lives.
//
// Returns an error describing the first validation failure.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	// HTTPS needs both TLS files.
	if cfg.Global.HTTPSPort != 0 {
		if cfg.Global.Certfile == "" || cfg.Global.Keyfile == "" {
			return fmt.Errorf("global: https_port is set but certfile/keyfile are incomplete")
		}
	}

	// Each user needs exactly one credential source, and the anonymous
	// name is reserved for the built-in credential-less principal.
	for name, user := range cfg.Users {
		if name == access.AnonymousName {
			return fmt.Errorf("user:%s: name is reserved for the anonymous principal", name)
		}
		if _, err := user.credential(); err != nil {
			return fmt.Errorf("user:%s: %w", name, err)
		}
	}

	// Group sections must carry a member list key, even if empty.
	for name, group := range cfg.Groups {
		if group.User == nil {
			return fmt.Errorf("group:%s: missing user list", name)
		}
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
