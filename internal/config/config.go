// Package config defines the configuration of a SubstanceWatch run: where
// the tables live, how each raw source is cleaned, which update passes run
// in which order, and how the report is rendered.  Loading lives in
// loader.go and built-in values in defaults.go.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/turtacn/SubstanceWatch/internal/application/cleaning"
	"github.com/turtacn/SubstanceWatch/internal/domain/substance"
	"github.com/turtacn/SubstanceWatch/internal/infrastructure/tabular"
	"github.com/turtacn/SubstanceWatch/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "console" | "json"
	OutputPaths []string `mapstructure:"output_paths"`
}

// PathsConfig locates the working directories.  Relative source and pass
// files resolve against Sources and Treated respectively.
type PathsConfig struct {
	Sources string `mapstructure:"sources"`
	Treated string `mapstructure:"treated"`
	Output  string `mapstructure:"output"`
}

// CleanConfig tunes the cleaning stage.
type CleanConfig struct {
	// Workers is how many sources are cleaned concurrently.
	Workers int `mapstructure:"workers"`
}

// MetricsConfig controls the end-of-run metrics export.
type MetricsConfig struct {
	// Textfile, when set, receives the run metrics in Prometheus text format.
	Textfile string `mapstructure:"textfile"`
}

// OutputConfig selects how the compiled report is rendered.
type OutputConfig struct {
	Format string `mapstructure:"format"` // "csv" | "xlsx" | "sqlite"; empty infers from the path
	Sheet  string `mapstructure:"sheet"`
	Table  string `mapstructure:"table"`
}

// PolicyConfig holds the inclusion rules applied at emit time.
type PolicyConfig struct {
	ExcludedCAS        []string `mapstructure:"excluded_cas"`
	ProhibitedCategory string   `mapstructure:"prohibited_category"`
	ExcludeNCS         bool     `mapstructure:"exclude_ncs"`
}

// ReadConfig describes the physical layout of a delimited file.
type ReadConfig struct {
	Delimiter string `mapstructure:"delimiter"` // one character; "tab" and "\t" mean TAB
	FromLine  int    `mapstructure:"from_line"`
	Encoding  string `mapstructure:"encoding"`
}

// AllowedValuesConfig lists the values a raw column may hold.
type AllowedValuesConfig struct {
	Column int      `mapstructure:"column"`
	Values []string `mapstructure:"values"`
}

// SourceConfig describes one raw regulatory table and how to clean it.
type SourceConfig struct {
	Name       string     `mapstructure:"name"`
	File       string     `mapstructure:"file"`
	Read       ReadConfig `mapstructure:"read"`
	NameColumn int        `mapstructure:"name_column"`
	CASColumn  int        `mapstructure:"cas_column"`
	ECColumn   *int       `mapstructure:"ec_column"`
	Dialect    string     `mapstructure:"dialect"`
	ECDialect  string     `mapstructure:"ec_dialect"`
	Headers    []string   `mapstructure:"headers"`
	// ExtraColumns are copied between the CAS and EC columns of the
	// normalized row.
	ExtraColumns      []int                 `mapstructure:"extra_columns"`
	AllowedValues     []AllowedValuesConfig `mapstructure:"allowed_values"`
	TrackUnidentified bool                  `mapstructure:"track_unidentified"`
	CarryForward      bool                  `mapstructure:"carry_forward"`
}

// BaseConfig describes the canonical substance list.
type BaseConfig struct {
	File       string     `mapstructure:"file"`
	Read       ReadConfig `mapstructure:"read"`
	CASColumn  int        `mapstructure:"cas_column"`
	NameColumn int        `mapstructure:"name_column"`
	NCSColumn  *int       `mapstructure:"ncs_column"`
}

// PredicateConfig is a row filter on one column of a pass table.
type PredicateConfig struct {
	Column  int    `mapstructure:"column"`
	Pattern string `mapstructure:"pattern"`
	Mode    string `mapstructure:"mode"` // "require" | "skip"
}

// PassConfig describes one update pass over a normalized table.
type PassConfig struct {
	Name         string           `mapstructure:"name"`
	File         string           `mapstructure:"file"`
	Read         ReadConfig       `mapstructure:"read"`
	NameColumn   int              `mapstructure:"name_column"`
	CASColumn    int              `mapstructure:"cas_column"`
	ECColumn     *int             `mapstructure:"ec_column"`
	Attribute    string           `mapstructure:"attribute"`
	ValueColumns []int            `mapstructure:"value_columns"`
	Predicate    *PredicateConfig `mapstructure:"predicate"`
	RequireValue bool             `mapstructure:"require_value"`
	AddNames     bool             `mapstructure:"add_names"`
	InsertOnMiss bool             `mapstructure:"insert_on_miss"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration of a run.
type Config struct {
	Log     LogConfig      `mapstructure:"log"`
	Paths   PathsConfig    `mapstructure:"paths"`
	Clean   CleanConfig    `mapstructure:"clean"`
	Metrics MetricsConfig  `mapstructure:"metrics"`
	Output  OutputConfig   `mapstructure:"output"`
	Policy  PolicyConfig   `mapstructure:"policy"`
	Sources []SourceConfig `mapstructure:"sources"`
	Base    BaseConfig     `mapstructure:"base"`
	Passes  []PassConfig   `mapstructure:"passes"`
}

// Source returns the source named name.
func (c *Config) Source(name string) (SourceConfig, bool) {
	for _, s := range c.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return SourceConfig{}, false
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config and
// returns the first problem found as a CFG_001 error.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return invalid("log.format %q is invalid; expected console|json", c.Log.Format)
	}
	if c.Clean.Workers < 1 {
		return invalid("clean.workers must be at least 1, got %d", c.Clean.Workers)
	}
	if _, err := tabular.ParseFormat(c.Output.Format); err != nil {
		return invalid("output.format %q is invalid; expected csv|xlsx|sqlite", c.Output.Format)
	}
	for _, raw := range c.Policy.ExcludedCAS {
		if _, err := substance.ParseCAS(strings.TrimSpace(raw)); err != nil {
			return invalid("policy.excluded_cas %q is not a valid CAS number", raw)
		}
	}

	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		key := fmt.Sprintf("sources[%d]", i)
		if s.Name == "" {
			return invalid("%s.name is required", key)
		}
		if seen[s.Name] {
			return invalid("%s.name %q is duplicated", key, s.Name)
		}
		seen[s.Name] = true
		if err := validateFile(key, s.File, s.Read); err != nil {
			return err
		}
		if err := nonNegative(key, "name_column", s.NameColumn, "cas_column", s.CASColumn); err != nil {
			return err
		}
		if s.ECColumn != nil && *s.ECColumn < 0 {
			return invalid("%s.ec_column must not be negative", key)
		}
		if _, ok := cleaning.LookupDialect(s.Dialect); !ok {
			return invalid("%s.dialect %q is unknown; expected one of %s", key, s.Dialect, strings.Join(cleaning.DialectNames(), "|"))
		}
		if s.ECDialect != "" {
			if _, ok := cleaning.LookupDialect(s.ECDialect); !ok {
				return invalid("%s.ec_dialect %q is unknown", key, s.ECDialect)
			}
		}
		for _, col := range s.ExtraColumns {
			if col < 0 {
				return invalid("%s.extra_columns must not hold negative indices", key)
			}
		}
		for _, a := range s.AllowedValues {
			if a.Column < 0 {
				return invalid("%s.allowed_values column must not be negative", key)
			}
		}
	}

	if err := validateFile("base", c.Base.File, c.Base.Read); err != nil {
		return err
	}
	if err := nonNegative("base", "cas_column", c.Base.CASColumn, "name_column", c.Base.NameColumn); err != nil {
		return err
	}

	for i, p := range c.Passes {
		key := fmt.Sprintf("passes[%d]", i)
		if p.Name == "" {
			return invalid("%s.name is required", key)
		}
		if err := validateFile(key, p.File, p.Read); err != nil {
			return err
		}
		if err := nonNegative(key, "name_column", p.NameColumn, "cas_column", p.CASColumn); err != nil {
			return err
		}
		if p.ECColumn != nil && *p.ECColumn < 0 {
			return invalid("%s.ec_column must not be negative", key)
		}
		if _, err := substance.ParseAttribute(p.Attribute); err != nil {
			return invalid("%s.attribute %q is unknown; expected one of %s", key, p.Attribute, strings.Join(substance.KnownAttributes(), "|"))
		}
		for _, col := range p.ValueColumns {
			if col < 0 {
				return invalid("%s.value_columns must not hold negative indices", key)
			}
		}
		if p.RequireValue && len(p.ValueColumns) == 0 {
			return invalid("%s.require_value needs at least one value column", key)
		}
		if pr := p.Predicate; pr != nil {
			if pr.Column < 0 {
				return invalid("%s.predicate.column must not be negative", key)
			}
			if pr.Mode != "require" && pr.Mode != "skip" {
				return invalid("%s.predicate.mode %q is invalid; expected require|skip", key, pr.Mode)
			}
			if _, err := regexp.Compile(pr.Pattern); err != nil {
				return invalid("%s.predicate.pattern %q does not compile", key, pr.Pattern)
			}
		}
	}
	return nil
}

func validateFile(key, file string, read ReadConfig) error {
	if strings.TrimSpace(file) == "" {
		return invalid("%s.file is required", key)
	}
	if _, err := ParseDelimiter(read.Delimiter); err != nil {
		return invalid("%s.read.delimiter %q must be a single character", key, read.Delimiter)
	}
	if read.FromLine < 0 {
		return invalid("%s.read.from_line must not be negative", key)
	}
	if !tabular.ValidEncoding(read.Encoding) {
		return invalid("%s.read.encoding %q is unknown; expected one of %s", key, read.Encoding, strings.Join(tabular.KnownEncodings(), "|"))
	}
	return nil
}

func nonNegative(key, nameA string, a int, nameB string, b int) error {
	if a < 0 {
		return invalid("%s.%s must not be negative", key, nameA)
	}
	if b < 0 {
		return invalid("%s.%s must not be negative", key, nameB)
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return errors.InvalidConfig("config: " + fmt.Sprintf(format, args...))
}

// ParseDelimiter turns a configured delimiter into a rune.  The empty string
// is ','.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return ',', nil
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, errors.InvalidConfig("delimiter must be a single character").WithDetail(s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

//Personal.AI order the ending
