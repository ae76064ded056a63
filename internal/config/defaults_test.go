package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, []string{"stderr"}, cfg.Log.OutputPaths)
	assert.Equal(t, DefaultSourcesDir, cfg.Paths.Sources)
	assert.Equal(t, DefaultTreatedDir, cfg.Paths.Treated)
	assert.Equal(t, DefaultOutputPath, cfg.Paths.Output)
	assert.Equal(t, DefaultCleanWorkers, cfg.Clean.Workers)
	assert.Equal(t, []string{"64-17-5"}, cfg.Policy.ExcludedCAS)
	assert.Equal(t, "P", cfg.Policy.ProhibitedCategory)
	assert.False(t, cfg.Policy.ExcludeNCS)
	assert.Equal(t, DefaultBase(), cfg.Base)
	assert.Len(t, cfg.Sources, 12)
	assert.Len(t, cfg.Passes, 12)
}

func TestApplyDefaults_PreserveExistingValues(t *testing.T) {
	cfg := &Config{}
	cfg.Log.Level = "debug"
	cfg.Paths.Output = "out/report.xlsx"
	cfg.Policy.ExcludedCAS = []string{}
	cfg.Passes = []PassConfig{{Name: "only", File: "x.csv", Attribute: "self_classified"}}
	ApplyDefaults(cfg)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "out/report.xlsx", cfg.Paths.Output)
	assert.Empty(t, cfg.Policy.ExcludedCAS)
	require.Len(t, cfg.Passes, 1)
	assert.Equal(t, "only", cfg.Passes[0].Name)
}

func TestApplyDefaults_Nil(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

func TestDefaultPasses_Order(t *testing.T) {
	var names []string
	for _, p := range DefaultPasses() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{
		"restricted-ifra",
		"eu-annex-ii",
		"clp",
		"circ",
		"endocrine-disruptor-eu",
		"endocrine-disruptor-eu-2",
		"endocrine-disruptor-eu-3",
		"endocrine-disruptor-eu-4",
		"endocrine-disruptor-deduct",
		"reach-corap",
		"reach-svhc-intentions",
		"ifra-iofi-lm",
	}, names)
}

func TestDefaultPasses_ReadTreatedTables(t *testing.T) {
	sources := map[string]SourceConfig{}
	for _, s := range DefaultSources() {
		sources[s.Name] = s
	}
	for _, p := range DefaultPasses() {
		src, ok := sources[p.Name]
		require.True(t, ok, p.Name)
		assert.Equal(t, treated(src.File), p.File, p.Name)
		assert.Equal(t, 2, p.Read.FromLine, p.Name)

		// the EC column is last in the normalized layout
		if p.ECColumn != nil {
			require.NotNil(t, src.ECColumn, p.Name)
			assert.Equal(t, 2+len(src.ExtraColumns), *p.ECColumn, p.Name)
		}
		for _, c := range p.ValueColumns {
			assert.Less(t, c, len(src.Headers), p.Name)
		}
	}
}

func TestDefaultSources_HeadersMatchLayout(t *testing.T) {
	for _, s := range DefaultSources() {
		want := 2 + len(s.ExtraColumns)
		if s.ECColumn != nil {
			want++
		}
		assert.Len(t, s.Headers, want, s.Name)
	}
}

func TestDefaults_AreFreshCopies(t *testing.T) {
	a := DefaultPasses()
	a[0].ValueColumns[0] = 99
	a[4].Predicate.Pattern = "x"
	b := DefaultPasses()
	assert.Equal(t, 2, b[0].ValueColumns[0])
	assert.NotEqual(t, "x", b[4].Predicate.Pattern)
}

//Personal.AI order the ending
