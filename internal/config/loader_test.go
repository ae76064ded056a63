package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
log:
  level: debug
  format: json
paths:
  sources: ./raw
  treated: ./clean
  output: ./out/compiled.xlsx
metrics:
  textfile: ./out/subwatch.prom
policy:
  excluded_cas: ["64-17-5", "7732-18-5"]
  exclude_ncs: true
base:
  file: base.tsv
  read:
    delimiter: tab
    from_line: 3
    encoding: windows-1252
  cas_column: 1
  name_column: 0
passes:
  - name: clp
    file: clp-treated.csv
    read:
      from_line: 2
    cas_column: 1
    ec_column: 3
    attribute: clp_classification
    value_columns: [2]
    add_names: true
  - name: corap
    file: corap-treated.csv
    cas_column: 1
    attribute: corap_concern
    value_columns: [2]
    predicate:
      column: 3
      pattern: concluded|withdrawn
      mode: skip
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	cfg, used, err := Load(WithConfigPath(path))
	require.NoError(t, err)
	assert.Equal(t, path, used)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "./raw", cfg.Paths.Sources)
	assert.Equal(t, "./out/compiled.xlsx", cfg.Paths.Output)
	assert.Equal(t, "./out/subwatch.prom", cfg.Metrics.Textfile)
	assert.Equal(t, []string{"64-17-5", "7732-18-5"}, cfg.Policy.ExcludedCAS)
	assert.True(t, cfg.Policy.ExcludeNCS)

	assert.Equal(t, "base.tsv", cfg.Base.File)
	assert.Equal(t, "tab", cfg.Base.Read.Delimiter)
	assert.Equal(t, 3, cfg.Base.Read.FromLine)
	assert.Equal(t, "windows-1252", cfg.Base.Read.Encoding)
	assert.Nil(t, cfg.Base.NCSColumn)

	require.Len(t, cfg.Passes, 2)
	clp := cfg.Passes[0]
	require.NotNil(t, clp.ECColumn)
	assert.Equal(t, 3, *clp.ECColumn)
	assert.Equal(t, []int{2}, clp.ValueColumns)
	assert.True(t, clp.AddNames)
	require.NotNil(t, cfg.Passes[1].Predicate)
	assert.Equal(t, "skip", cfg.Passes[1].Predicate.Mode)

	// untouched sections fall back to the built-in tables
	assert.Len(t, cfg.Sources, len(DefaultSources()))
}

func TestLoad_FromFile_FileNotFound(t *testing.T) {
	_, _, err := Load(WithConfigPath("non_existent_config.yaml"))
	assert.ErrorIs(t, err, ErrConfigFileNotFound)
}

func TestLoad_FromFile_InvalidYAML(t *testing.T) {
	path := createTempConfigFile(t, "invalid_yaml: [")
	_, _, err := Load(WithConfigPath(path))
	assert.ErrorIs(t, err, ErrConfigParseError)
}

func TestLoad_FromFile_ValidationFailure(t *testing.T) {
	path := createTempConfigFile(t, "output:\n  format: pdf\n")
	_, _, err := Load(WithConfigPath(path))
	assert.ErrorIs(t, err, ErrConfigValidation)
	assert.Contains(t, err.Error(), "output.format")
}

func TestLoad_EnvOverride(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	t.Setenv("SUBWATCH_LOG_LEVEL", "warn")
	t.Setenv("SUBWATCH_PATHS_TREATED", "/tmp/treated")

	cfg, _, err := Load(WithConfigPath(path))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/tmp/treated", cfg.Paths.Treated)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("SUBWATCH_OUTPUT_FORMAT", "sqlite")
	t.Setenv("SUBWATCH_POLICY_EXCLUDE_NCS", "true")
	t.Setenv("SUBWATCH_CLEAN_WORKERS", "2")

	cfg, used, err := Load(WithSearchPaths(filepath.Join(t.TempDir(), "missing.yaml")))
	require.NoError(t, err)
	assert.Empty(t, used)
	assert.Equal(t, 2, cfg.Clean.Workers)
	assert.Equal(t, "sqlite", cfg.Output.Format)
	assert.True(t, cfg.Policy.ExcludeNCS)
	assert.Equal(t, DefaultOutputPath, cfg.Paths.Output)
}

func TestLoad_SearchPaths(t *testing.T) {
	dir := t.TempDir()
	second := filepath.Join(dir, "second.yaml")
	require.NoError(t, os.WriteFile(second, []byte("log:\n  level: error\n"), 0644))

	cfg, used, err := Load(WithSearchPaths(filepath.Join(dir, "missing.yaml"), second))
	require.NoError(t, err)
	assert.Equal(t, second, used)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, used, err := Load(WithSearchPaths(filepath.Join(t.TempDir(), "missing.yaml")))
	require.NoError(t, err)
	assert.Empty(t, used)
	assert.Equal(t, Default(), cfg)
}

func TestDefaultSearchPaths(t *testing.T) {
	paths := DefaultSearchPaths()
	assert.Equal(t, "subwatch.yaml", paths[0])
	assert.Equal(t, "/etc/subwatch/config.yaml", paths[len(paths)-1])
}

//Personal.AI order the ending
