package config

import (
	"github.com/turtacn/SubstanceWatch/internal/application/cleaning"
	"github.com/turtacn/SubstanceWatch/internal/domain/substance"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	DefaultSourcesDir = "sources"
	DefaultTreatedDir = "treated"
	DefaultOutputPath = "compiled.csv"

	DefaultCleanWorkers = 1

	DefaultSheet = "Report"
	DefaultTable = "report"

	DefaultBaseFile = "ifra.csv"
)

const (
	predicateRequire = "require"
	predicateSkip    = "skip"
)

// ApplyDefaults fills every zero-value field in cfg with the built-in
// default.  Fields that have already been set are left unchanged so that
// explicit configuration always wins.  An empty source or pass list is
// replaced by the whole built-in table.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if len(cfg.Log.OutputPaths) == 0 {
		cfg.Log.OutputPaths = []string{"stderr"}
	}

	// ── Paths ─────────────────────────────────────────────────────────────────
	if cfg.Paths.Sources == "" {
		cfg.Paths.Sources = DefaultSourcesDir
	}
	if cfg.Paths.Treated == "" {
		cfg.Paths.Treated = DefaultTreatedDir
	}
	if cfg.Paths.Output == "" {
		cfg.Paths.Output = DefaultOutputPath
	}

	// ── Clean ─────────────────────────────────────────────────────────────────
	if cfg.Clean.Workers == 0 {
		cfg.Clean.Workers = DefaultCleanWorkers
	}

	// ── Output ────────────────────────────────────────────────────────────────
	if cfg.Output.Sheet == "" {
		cfg.Output.Sheet = DefaultSheet
	}
	if cfg.Output.Table == "" {
		cfg.Output.Table = DefaultTable
	}

	// ── Policy ────────────────────────────────────────────────────────────────
	if cfg.Policy.ExcludedCAS == nil {
		cfg.Policy.ExcludedCAS = append([]string(nil), substance.DefaultExcludedCAS...)
	}
	if cfg.Policy.ProhibitedCategory == "" {
		cfg.Policy.ProhibitedCategory = substance.DefaultProhibitedCategory
	}

	// ── Tables ────────────────────────────────────────────────────────────────
	if len(cfg.Sources) == 0 {
		cfg.Sources = DefaultSources()
	}
	if cfg.Base.File == "" {
		cfg.Base = DefaultBase()
	}
	if len(cfg.Passes) == 0 {
		cfg.Passes = DefaultPasses()
	}
}

// Default returns a fully defaulted Config.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func col(i int) *int { return &i }

func tsv(from int) ReadConfig { return ReadConfig{Delimiter: "tab", FromLine: from} }
func csv(from int) ReadConfig { return ReadConfig{Delimiter: ",", FromLine: from} }

// DefaultSources returns the built-in cleaning table, one entry per
// regulatory export.
func DefaultSources() []SourceConfig {
	sources := []SourceConfig{
		{
			Name: "eu-annex-ii", File: "eu-annex-ii.csv", Read: tsv(12),
			NameColumn: 0, CASColumn: 2, ECColumn: col(1),
			Dialect: cleaning.DialectECHA,
			Headers: []string{"Name", "CAS", "EC"},
		},
		{
			Name: "clp", File: "clp.csv", Read: csv(9),
			NameColumn: 1, CASColumn: 3, ECColumn: col(2),
			Dialect: cleaning.DialectECHA, ECDialect: cleaning.DialectECHAEC,
			Headers:           []string{"Name", "CAS", "Classification", "EC"},
			ExtraColumns:      []int{4},
			TrackUnidentified: true,
		},
		{
			Name: "circ", File: "circ.csv", Read: csv(2),
			NameColumn: 1, CASColumn: 0,
			Dialect:           cleaning.DialectCIRC,
			Headers:           []string{"Name", "CAS", "Standard"},
			ExtraColumns:      []int{2},
			AllowedValues:     []AllowedValuesConfig{{Column: 2, Values: []string{"1", "2A", "2B", "3", ""}}},
			TrackUnidentified: true,
		},
		{
			Name: "restricted-ifra", File: "restricted-ifra.csv", Read: csv(2),
			NameColumn: 1, CASColumn: 0,
			Dialect:      cleaning.DialectIFRARestricted,
			Headers:      []string{"Name", "CAS", "Type", "Amendment"},
			ExtraColumns: []int{2, 4},
		},
		{
			Name: "reach-corap", File: "reach-corap.csv", Read: tsv(15),
			NameColumn: 0, CASColumn: 3, ECColumn: col(2),
			Dialect:           cleaning.DialectECHA,
			Headers:           []string{"Name", "CAS", "Concern", "Status", "EC"},
			ExtraColumns:      []int{7, 8},
			TrackUnidentified: true,
		},
		{
			Name: "reach-svhc-intentions", File: "reach-svhc-intentions-until-outcome.csv", Read: tsv(27),
			NameColumn: 0, CASColumn: 3, ECColumn: col(2),
			Dialect:           cleaning.DialectECHA,
			Headers:           []string{"Name", "CAS", "Concern", "Status", "EC"},
			ExtraColumns:      []int{13, 6},
			TrackUnidentified: true,
		},
		{
			Name: "endocrine-disruptor-eu", File: "endocrine-disruptor-eu.csv", Read: tsv(20),
			NameColumn: 0, CASColumn: 3, ECColumn: col(2),
			Dialect:           cleaning.DialectECHA,
			Headers:           []string{"Name", "CAS", "Conclusion", "EC"},
			ExtraColumns:      []int{6},
			TrackUnidentified: true,
		},
	}
	for _, n := range []string{"2", "3", "4"} {
		sources = append(sources, SourceConfig{
			Name: "endocrine-disruptor-eu-" + n, File: "endocrine-disruptor-eu-" + n + ".csv", Read: csv(2),
			NameColumn: 0, CASColumn: 1, ECColumn: col(2),
			Dialect:           cleaning.DialectEDList,
			Headers:           []string{"Name", "CAS", "Health effect", "Environmental effect", "EC"},
			ExtraColumns:      []int{3, 4},
			TrackUnidentified: true,
		})
	}
	return append(sources,
		SourceConfig{
			Name: "endocrine-disruptor-deduct", File: "endocrine-disruptor-deduct.csv", Read: csv(2),
			NameColumn: 3, CASColumn: 1,
			Dialect:           cleaning.DialectRaw,
			Headers:           []string{"Name", "CAS"},
			TrackUnidentified: true,
		},
		SourceConfig{
			Name: "ifra-iofi-lm", File: "ifra-iofi-lm.csv", Read: csv(2),
			NameColumn: 1, CASColumn: 4,
			Dialect:           cleaning.DialectRaw,
			Headers:           []string{"Name", "CAS"},
			TrackUnidentified: true,
		},
	)
}

// DefaultBase returns the canonical IFRA list layout: CAS, name, NCS marker.
func DefaultBase() BaseConfig {
	return BaseConfig{File: DefaultBaseFile, Read: csv(2), CASColumn: 0, NameColumn: 1, NCSColumn: col(2)}
}

// treated names the normalized table cleaned from the raw file.
func treated(file string) string {
	return cleaning.TreatedPath("", file)
}

// DefaultPasses returns the built-in update passes in their fixed order.
// Every pass reads the normalized [name, cas, extra..., ec] layout.
func DefaultPasses() []PassConfig {
	passes := []PassConfig{
		{
			Name: "restricted-ifra", File: treated("restricted-ifra.csv"), Read: csv(2),
			NameColumn: 0, CASColumn: 1,
			Attribute:    string(substance.AttrIFRARestriction),
			ValueColumns: []int{2, 3},
			AddNames:     true,
			InsertOnMiss: true,
		},
		{
			Name: "eu-annex-ii", File: treated("eu-annex-ii.csv"), Read: csv(2),
			NameColumn: 0, CASColumn: 1, ECColumn: col(2),
			Attribute: string(substance.AttrForbiddenInEU),
		},
		{
			Name: "clp", File: treated("clp.csv"), Read: csv(2),
			NameColumn: 0, CASColumn: 1, ECColumn: col(3),
			Attribute:    string(substance.AttrCLPClassification),
			ValueColumns: []int{2},
			AddNames:     true,
		},
		{
			Name: "circ", File: treated("circ.csv"), Read: csv(2),
			NameColumn: 0, CASColumn: 1,
			Attribute:    string(substance.AttrCIRCStandard),
			ValueColumns: []int{2},
			RequireValue: true,
			AddNames:     true,
		},
		{
			Name: "endocrine-disruptor-eu", File: treated("endocrine-disruptor-eu.csv"), Read: csv(2),
			NameColumn: 0, CASColumn: 1, ECColumn: col(3),
			Attribute: string(substance.AttrEndocrineDisruptor),
			Predicate: &PredicateConfig{Column: 2, Pattern: "development|inconclusive|ED HH|postponed", Mode: predicateRequire},
		},
	}
	for _, n := range []string{"2", "3", "4"} {
		passes = append(passes, PassConfig{
			Name: "endocrine-disruptor-eu-" + n, File: treated("endocrine-disruptor-eu-" + n + ".csv"), Read: csv(2),
			NameColumn: 0, CASColumn: 1, ECColumn: col(4),
			Attribute: string(substance.AttrEndocrineDisruptor),
			Predicate: &PredicateConfig{Column: 2, Pattern: "^yes$", Mode: predicateRequire},
		})
	}
	return append(passes,
		PassConfig{
			Name: "endocrine-disruptor-deduct", File: treated("endocrine-disruptor-deduct.csv"), Read: csv(2),
			NameColumn: 0, CASColumn: 1,
			Attribute: string(substance.AttrDeductedEndocrineDisruptor),
		},
		PassConfig{
			Name: "reach-corap", File: treated("reach-corap.csv"), Read: csv(2),
			NameColumn: 0, CASColumn: 1, ECColumn: col(4),
			Attribute:    string(substance.AttrCoRAPConcern),
			ValueColumns: []int{2},
			Predicate:    &PredicateConfig{Column: 3, Pattern: "concluded|withdrawn", Mode: predicateSkip},
		},
		PassConfig{
			Name: "reach-svhc-intentions", File: treated("reach-svhc-intentions-until-outcome.csv"), Read: csv(2),
			NameColumn: 0, CASColumn: 1, ECColumn: col(4),
			Attribute:    string(substance.AttrReachIntentionConcern),
			ValueColumns: []int{2},
			Predicate:    &PredicateConfig{Column: 3, Pattern: "not identified|withdrawn", Mode: predicateSkip},
		},
		PassConfig{
			Name: "ifra-iofi-lm", File: treated("ifra-iofi-lm.csv"), Read: csv(2),
			NameColumn: 0, CASColumn: 1,
			Attribute: string(substance.AttrSelfClassified),
		},
	)
}

//Personal.AI order the ending
