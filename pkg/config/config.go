package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	iniCodec "github.com/go-viper/encoding/ini"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// Config represents the complete fus configuration.
//
// The configuration file uses the classic fus INI layout: one [global]
// section for daemon-wide settings, one [logging] section, and then one
// section per user, group, and access-controlled directory:
//
//	[user:<name>]   credential material (b64_password or password)
//	[group:<name>]  comma-separated member list
//	[dir:<path>]    per-operation grants (<op>_groups / <op>_user)
//
// Sections and fields beyond these are owned by the transport components
// (port binding, TLS handshake, FTP command handling) and are carried in
// Global untouched; this package only validates them.
//
// Configuration sources (in order of precedence):
//  1. Configuration file
//  2. Default values
type Config struct {
	// Global contains daemon-wide settings consumed by the transport layer.
	Global GlobalConfig

	// Logging controls log output behavior.
	Logging LoggingConfig

	// Users maps user name to credential section ([user:<name>]).
	Users map[string]UserSection

	// Groups maps group name to membership section ([group:<name>]).
	Groups map[string]GroupSection

	// Dirs maps directory path to access rule section ([dir:<path>]).
	// The empty path denotes the storage root.
	Dirs map[string]DirSection
}

// GlobalConfig contains daemon-wide settings from the [global] section.
//
// The access core only validates these values; serving them (port binding,
// TLS, GDPR banner) is the transport layer's concern.
type GlobalConfig struct {
	// Basedir is the root of the shared storage tree.
	Basedir string `mapstructure:"basedir" validate:"required"`

	// Host is the listen address handed to the protocol servers.
	Host string `mapstructure:"host"`

	// HTTPPort is the plain HTTP listen port (0 disables).
	HTTPPort int `mapstructure:"http_port" validate:"min=0,max=65535"`

	// HTTPSPort is the TLS listen port (0 disables).
	HTTPSPort int `mapstructure:"https_port" validate:"min=0,max=65535"`

	// FTPPort is the FTP listen port (0 disables).
	FTPPort int `mapstructure:"ftp_port" validate:"min=0,max=65535"`

	// Certfile is the TLS certificate path, required when HTTPSPort is set.
	Certfile string `mapstructure:"certfile"`

	// Keyfile is the TLS key path, required when HTTPSPort is set.
	Keyfile string `mapstructure:"keyfile"`

	// GDPRMsg is the privacy banner text shown by the HTTP front end.
	GDPRMsg string `mapstructure:"gdprmsg"`

	// Debug enables verbose transport-layer diagnostics.
	Debug bool `mapstructure:"debug"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required"`
}

// Load loads configuration from file and defaults.
//
// The daemon sections ([global], [logging]) go through viper; the
// identity-bearing sections ([user:...], [group:...], [dir:...]) are read
// straight from the INI file, because viper's settings map both
// case-folds keys and splits them on dots, and user names and directory
// paths must survive byte-for-byte (a dotted directory name losing its
// grants would serve with wrong permissions).
//
// A missing configuration file is not an error: defaults apply and the
// resulting access snapshot denies everything (no users, no grants), which
// is the fail-closed baseline.
//
// Parameters:
//   - configPath: Path to the INI config file (e.g. /etc/fus.conf)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v, err := newViper(configPath)
	if err != nil {
		return nil, err
	}

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		Users:  make(map[string]UserSection),
		Groups: make(map[string]GroupSection),
		Dirs:   make(map[string]DirSection),
	}

	if err := decodeDaemonSettings(v.AllSettings(), cfg); err != nil {
		return nil, err
	}
	if err := readEntitySections(configPath, cfg); err != nil {
		return nil, err
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// newViper builds a viper instance with INI decoding.
func newViper(configPath string) (*viper.Viper, error) {
	// Viper dropped its built-in INI codec; register the external one.
	registry := viper.NewCodecRegistry()
	if err := registry.RegisterCodec("ini", iniCodec.Codec{}); err != nil {
		return nil, fmt.Errorf("failed to register ini codec: %w", err)
	}

	v := viper.NewWithOptions(viper.WithCodecRegistry(registry))
	v.SetConfigFile(configPath)
	v.SetConfigType("ini")
	return v, nil
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		// The file backend reports a missing explicit file as a plain
		// *PathError, not ConfigFileNotFoundError.
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// decodeDaemonSettings fills Global and Logging from viper's settings map.
//
// Only these two sections are taken from viper: their key set is fixed and
// all lowercase, so viper's case folding cannot corrupt them. Everything
// else in the settings map is either an entity section (handled by
// readEntitySections) or belongs to excluded transport components.
func decodeDaemonSettings(settings map[string]any, cfg *Config) error {
	if body, ok := settings["global"].(map[string]any); ok {
		if err := decodeSection(body, &cfg.Global); err != nil {
			return fmt.Errorf("section [global]: %w", err)
		}
	}
	if body, ok := settings["logging"].(map[string]any); ok {
		if err := decodeSection(body, &cfg.Logging); err != nil {
			return fmt.Errorf("section [logging]: %w", err)
		}
	}
	return nil
}

// readEntitySections parses the [user:...], [group:...], and [dir:...]
// sections straight from the INI file with section names preserved
// byte-for-byte: user names stay case-sensitive and directory paths may
// contain dots. Unrecognized sections are ignored (they belong to excluded
// transport components).
func readEntitySections(configPath string, cfg *Config) error {
	file, err := ini.Load(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	for _, section := range file.Sections() {
		name := section.Name()

		switch {
		case strings.HasPrefix(name, "user:"):
			var user UserSection
			if err := decodeSection(sectionBody(section), &user); err != nil {
				return fmt.Errorf("section [%s]: %w", name, err)
			}
			cfg.Users[strings.TrimPrefix(name, "user:")] = user
		case strings.HasPrefix(name, "group:"):
			var group GroupSection
			if err := decodeSection(sectionBody(section), &group); err != nil {
				return fmt.Errorf("section [%s]: %w", name, err)
			}
			cfg.Groups[strings.TrimPrefix(name, "group:")] = group
		case strings.HasPrefix(name, "dir:"):
			var dir DirSection
			if err := decodeSection(sectionBody(section), &dir); err != nil {
				return fmt.Errorf("section [%s]: %w", name, err)
			}
			cfg.Dirs[strings.TrimPrefix(name, "dir:")] = dir
		}
	}

	return nil
}

// sectionBody converts an INI section into the map shape decodeSection
// expects. Only keys that are present in the file appear in the map, so
// the absent-vs-empty distinction survives.
func sectionBody(section *ini.Section) map[string]any {
	body := make(map[string]any, len(section.Keys()))
	for _, key := range section.Keys() {
		body[key.Name()] = key.Value()
	}
	return body
}

// decodeSection decodes a raw section map into a typed section struct.
//
// Pointer fields distinguish "key absent" (nil) from "key present but
// empty" (pointer to ""); an empty grant list means "explicitly nobody"
// while an absent one inherits. INI values are strings, so weakly typed
// decoding converts ports and booleans.
func decodeSection(input map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build section decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("failed to decode section: %w", err)
	}
	return nil
}
