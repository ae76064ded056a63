package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "SUBWATCH"

// Sentinel errors returned (wrapped) by Load.
var (
	ErrConfigFileNotFound = stderrors.New("config file not found")
	ErrConfigParseError   = stderrors.New("config file could not be parsed")
	ErrConfigValidation   = stderrors.New("config validation failed")
)

// DefaultSearchPaths are tried in order when no explicit file is given.
// The first one that exists is read; when none exists the built-in defaults
// are used.
func DefaultSearchPaths() []string {
	paths := []string{"subwatch.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".subwatch", "config.yaml"))
	}
	return append(paths, "/etc/subwatch/config.yaml")
}

type loadOptions struct {
	path        string
	searchPaths []string
}

// LoadOption tunes Load.
type LoadOption func(*loadOptions)

// WithConfigPath reads exactly path; a missing file is an error.
func WithConfigPath(path string) LoadOption {
	return func(o *loadOptions) { o.path = path }
}

// WithSearchPaths replaces DefaultSearchPaths.
func WithSearchPaths(paths ...string) LoadOption {
	return func(o *loadOptions) { o.searchPaths = paths }
}

// newViper builds a pre-configured Viper instance: YAML file type,
// SUBWATCH_ env prefix, automatic env binding, and a key replacer that maps
// "." → "_" so that nested keys like "paths.output" resolve to
// "SUBWATCH_PATHS_OUTPUT".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindScalars(v)
	return v
}

// bindScalars registers the scalar keys so that environment overrides reach
// Unmarshal even when no config file mentions them.
func bindScalars(v *viper.Viper) {
	for _, key := range []string{
		"log.level", "log.format",
		"paths.sources", "paths.treated", "paths.output",
		"clean.workers",
		"metrics.textfile",
		"output.format", "output.sheet", "output.table",
		"policy.prohibited_category", "policy.exclude_ncs",
	} {
		_ = v.BindEnv(key)
	}
}

// Load resolves the config file (explicit path or search paths), merges any
// SUBWATCH_* environment overrides, applies defaults for unset fields, and
// validates the result.  It returns the Config and the file actually read,
// which is empty when running on defaults alone.
func Load(opts ...LoadOption) (*Config, string, error) {
	o := loadOptions{searchPaths: DefaultSearchPaths()}
	for _, opt := range opts {
		opt(&o)
	}

	v := newViper()
	path := o.path
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, "", fmt.Errorf("config: %q: %w", path, ErrConfigFileNotFound)
		}
	} else {
		for _, candidate := range o.searchPaths {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, path, fmt.Errorf("config: failed to read %q: %w: %v", path, ErrConfigParseError, err)
		}
	}

	cfg, err := unmarshalAndFinalize(v)
	return cfg, path, err
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w: %v", ErrConfigParseError, err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}
	return cfg, nil
}

//Personal.AI order the ending
