package config

import "strings"

// ApplyDefaults sets default values for any unspecified configuration
// fields.
//
// Default Strategy:
//   - Zero values ("", 0, false) are replaced with defaults
//   - Explicit values are preserved
//   - Access rule sections have no defaults: an absent grant stays absent
//     (deny by inheritance), never defaulted to anything permissive
func ApplyDefaults(cfg *Config) {
	applyGlobalDefaults(&cfg.Global)
	applyLoggingDefaults(&cfg.Logging)
}

// applyGlobalDefaults sets daemon-wide defaults.
func applyGlobalDefaults(cfg *GlobalConfig) {
	if cfg.Basedir == "" {
		cfg.Basedir = "/srv/fus"
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}
