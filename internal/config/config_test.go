package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("Inter")
	cfg.InitialLoadPath = "work/checkpoint_20240101_000000.csv"
	cfg.CSV.Delimiter = ";"

	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default("Inter")

	assert.Equal(t, "Inter", cfg.Institution)
	assert.Equal(t, "work", cfg.WorkDir)
	assert.Equal(t, "import", cfg.ImportDir)
	assert.Equal(t, []rune{',', ';'}, cfg.Delimiters())
	assert.Equal(t, rune(0), cfg.Delimiter())
	assert.Len(t, cfg.CSV.Noise, 1)
	assert.Equal(t, "Investimento", cfg.Ledger.InvestmentCategory)
	assert.Equal(t, "monthly", cfg.Report.Period)
	assert.Equal(t, 10, cfg.Report.Top)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.InitialLoadPath)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default("Inter")
	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "institution: Inter")
	assert.Contains(t, contents, "work_dir: work")
	assert.Contains(t, contents, "investment_category: Investimento")
	assert.NotContains(t, contents, "initial_load_path")
}

func TestDelimiters_SkipsInvalid(t *testing.T) {
	cfg := Default("")
	cfg.CSV.Delimiters = []string{";", "", "||", "\t"}
	cfg.CSV.Delimiter = "||"
	assert.Equal(t, []rune{';', '\t'}, cfg.Delimiters())
	assert.Equal(t, rune(0), cfg.Delimiter())
}

func TestLoadEnv_File(t *testing.T) {
	// Empty process values do not mask the file.
	t.Setenv(EnvInitialLoadPath, "")
	t.Setenv(EnvInstitution, "")
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, EnvFileName),
		[]byte("INITIAL_LOAD_PATH=work/checkpoint.csv\nPFO_INSTITUTION=Nubank\n"), 0o644))

	cfg := Default("Inter")
	require.NoError(t, cfg.LoadEnv(root))
	assert.Equal(t, "Nubank", cfg.Institution)
	assert.Equal(t, "work/checkpoint.csv", cfg.InitialLoadPath)
}

func TestLoadEnv_ProcessWins(t *testing.T) {
	t.Setenv(EnvInstitution, "XP")
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, EnvFileName), []byte("PFO_INSTITUTION=Nubank\n"), 0o644))

	cfg := Default("Inter")
	require.NoError(t, cfg.LoadEnv(root))
	assert.Equal(t, "XP", cfg.Institution)
}

func TestLoadEnv_MissingFile(t *testing.T) {
	t.Setenv(EnvInstitution, "")
	cfg := Default("Inter")
	require.NoError(t, cfg.LoadEnv(t.TempDir()))
	assert.Equal(t, "Inter", cfg.Institution)
}

func TestSaveInitialLoadPath(t *testing.T) {
	t.Setenv(EnvInitialLoadPath, "")
	t.Setenv(EnvInstitution, "")
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, EnvFileName), []byte("PFO_INSTITUTION=Nubank\n"), 0o644))

	require.NoError(t, SaveInitialLoadPath(root, "work/checkpoint_1.csv"))
	require.NoError(t, SaveInitialLoadPath(root, "work/checkpoint_2.csv"))

	cfg := Default("")
	require.NoError(t, cfg.LoadEnv(root))
	assert.Equal(t, "work/checkpoint_2.csv", cfg.InitialLoadPath)
	assert.Equal(t, "Nubank", cfg.Institution, "other keys are kept")
}

func TestSaveInitialLoadPath_NewFile(t *testing.T) {
	t.Setenv(EnvInitialLoadPath, "")
	root := t.TempDir()
	require.NoError(t, SaveInitialLoadPath(root, "a.csv"))

	cfg := Default("")
	require.NoError(t, cfg.LoadEnv(root))
	assert.Equal(t, "a.csv", cfg.InitialLoadPath)
}

func TestResolve(t *testing.T) {
	assert.Equal(t, filepath.Join("root", "work"), Resolve("root", "work"))
	assert.Equal(t, "/abs/work", Resolve("root", "/abs/work"))
	assert.Equal(t, "", Resolve("root", ""))
}
