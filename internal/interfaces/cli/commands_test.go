package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/SubstanceWatch/pkg/errors"
)

const rawCLP = "Index,Name,EC,CAS,Classification\n" +
	"603-002-00-5,Ethanol,200-578-6,64-17-5,Flam. Liq. 2\n" +
	"605-001-00-5,Formaldehyde,200-001-8,50-00-0,Carc. 1B\n" +
	"999-999-99-9,Nothing,-,-,Muta. 2\n"

const configTemplate = `
log:
  level: error
paths:
  sources: %[1]s/sources
  treated: %[1]s/treated
  output: %[1]s/out/compiled.csv
clean:
  workers: 2
metrics:
  textfile: %[1]s/out/subwatch.prom
sources:
  - name: clp
    file: clp.csv
    read:
      from_line: 2
    name_column: 1
    cas_column: 3
    ec_column: 2
    dialect: echa
    ec_dialect: echa-ec
    headers: [Name, CAS, Classification, EC]
    extra_columns: [4]
    track_unidentified: true
passes:
  - name: clp
    file: clp-treated.csv
    read:
      from_line: 2
    name_column: 0
    cas_column: 1
    ec_column: 3
    attribute: clp_classification
    value_columns: [2]
    add_names: true
`

// workspace lays out a run directory and returns it with the config path.
func workspace(t *testing.T, base string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sources"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sources", "ifra.csv"), []byte(base), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sources", "clp.csv"), []byte(rawCLP), 0o644))
	path := filepath.Join(dir, "subwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(configTemplate, dir)), 0o644))
	return dir, path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const ifraBase = "CAS,Name,NCS\n50-00-0,Formaldehyde,\n64-17-5,Ethanol,\n"

func TestRun_EndToEnd(t *testing.T) {
	dir, cfg := workspace(t, ifraBase)

	out, err := execute(t, "--config", cfg, "run")
	require.NoError(t, err, out)

	treated, err := os.ReadFile(filepath.Join(dir, "treated", "clp-treated.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Name,CAS,Classification,EC\n"+
		"Ethanol,64-17-5,Flam. Liq. 2,200-578-6\n"+
		"Formaldehyde,50-00-0,Carc. 1B,200-001-8\n", string(treated))

	report, err := os.ReadFile(filepath.Join(dir, "out", "compiled.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Name,Other names,CAS,CMR,PE\nFormaldehyde,,50-00-0,yes,\n", string(report))

	assert.Contains(t, out, "Unidentified substances (1):")
	assert.Contains(t, out, "  Nothing")
	assert.Contains(t, out, "OK: wrote 1 substances to")

	prom, err := os.ReadFile(filepath.Join(dir, "out", "subwatch.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), "subwatch_report_rows 1")
	assert.Contains(t, string(prom), `subwatch_pass_matches_total{pass="clp"} 2`)
}

func TestCleanThenCompile_Formats(t *testing.T) {
	dir, cfg := workspace(t, ifraBase)

	_, err := execute(t, "--config", cfg, "clean", "--source", "clp", "--workers", "1")
	require.NoError(t, err)

	xlsx := filepath.Join(dir, "out", "report.xlsx")
	_, err = execute(t, "--config", cfg, "compile", "-o", xlsx)
	require.NoError(t, err)
	assert.FileExists(t, xlsx)

	db := filepath.Join(dir, "out", "report.bin")
	_, err = execute(t, "--config", cfg, "compile", "-o", db, "--format", "sqlite")
	require.NoError(t, err)
	assert.FileExists(t, db)

	_, err = execute(t, "--config", cfg, "compile", "--format", "pdf")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidConfig))
}

func TestCompile_WithoutTreatedTables(t *testing.T) {
	_, cfg := workspace(t, ifraBase)
	_, err := execute(t, "--config", cfg, "compile")
	assert.True(t, errors.IsCode(err, errors.ErrCodeSourceReadFailure))
	assert.Equal(t, ExitFatal, ExitCode(err))
}

func TestClean_UnknownSource(t *testing.T) {
	_, cfg := workspace(t, ifraBase)
	_, err := execute(t, "--config", cfg, "clean", "--source", "nope")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidConfig))
}

func TestCheck(t *testing.T) {
	_, cfg := workspace(t, ifraBase+"50-00-1,Typo,\n")

	out, err := execute(t, "--config", cfg, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Typo")
	assert.Contains(t, out, "SUB_002")
	assert.Contains(t, out, "1 of 3 rows")

	_, err = execute(t, "--config", cfg, "check", "--strict")
	assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedIdentifier))
	assert.Equal(t, ExitFindings, ExitCode(err))
}

func TestCheck_CleanBase(t *testing.T) {
	_, cfg := workspace(t, ifraBase)
	out, err := execute(t, "--config", cfg, "check", "--strict")
	require.NoError(t, err)
	assert.Contains(t, out, "0 of 2 rows")
}

//Personal.AI order the ending
