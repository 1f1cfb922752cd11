package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfo-dev/pfo/internal/config"
	"github.com/pfo-dev/pfo/internal/history"
	"github.com/pfo-dev/pfo/internal/ledger"
)

func copyFixture(t *testing.T, name, dstDir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dstDir, 0o755))
	dst := filepath.Join(dstDir, name)
	require.NoError(t, os.WriteFile(dst, data, 0o644))
	return dst
}

func initialLoadPath(t *testing.T, dir string) string {
	t.Helper()
	env, err := godotenv.Read(filepath.Join(dir, config.EnvFileName))
	require.NoError(t, err)
	return env[config.EnvInitialLoadPath]
}

func ledgerLines(t *testing.T, dir string) []string {
	t.Helper()
	out, err := runPfo(t, "list", "--dir", dir)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(out, "\n"), "\n")
}

func TestIngest_EndToEnd(t *testing.T) {
	dir := newProject(t)
	src := copyFixture(t, "simple.csv", t.TempDir())

	out, err := runPfo(t, "ingest", src, "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Ledger has 2 rows")

	cp := initialLoadPath(t, dir)
	require.NotEmpty(t, cp)
	assert.True(t, strings.HasPrefix(filepath.Base(cp), ledger.CheckpointPrefix))

	data, err := os.ReadFile(filepath.Join(dir, cp))
	require.NoError(t, err)
	assert.Equal(t, ledger.Header+"\n"+
		"2024-01-01;Salario;1000.00;1000.00;Salario;Inter\n"+
		"2024-01-05;Aluguel;-300.00;700.00;Aluguel;Inter\n", string(data))

	lines := ledgerLines(t, dir)
	require.Len(t, lines, 4)
	assert.Contains(t, lines[2], "1000.00")
	assert.Contains(t, lines[3], "700.00")

	entries, err := history.Read(filepath.Join(dir, "work"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, history.ActionIngest, entries[0].Action)
	assert.Equal(t, 2, entries[0].Rows)
	assert.Equal(t, cp, entries[0].Checkpoint)

	tmps, err := filepath.Glob(filepath.Join(dir, "work", "tmp_*"))
	require.NoError(t, err)
	assert.Empty(t, tmps, "repair temp files are removed")
}

func TestIngest_AppendsToRestoredLedger(t *testing.T) {
	dir := newProject(t)
	src := t.TempDir()

	_, err := runPfo(t, "ingest", copyFixture(t, "simple.csv", src), "--dir", dir)
	require.NoError(t, err)
	out, err := runPfo(t, "ingest", copyFixture(t, "fatura.csv", src), "--dir", dir, "--institution", "Cartao")
	require.NoError(t, err)
	assert.Contains(t, out, "Ledger has 5 rows")

	lines := ledgerLines(t, dir)
	require.Len(t, lines, 7)
	// 1000 - 300 - 1234.56 - 200 - 55.90
	assert.Contains(t, lines[6], "-790.46")
	assert.Contains(t, lines[6], "Cartao")
}

func TestIngest_Replace(t *testing.T) {
	dir := newProject(t)
	src := t.TempDir()

	_, err := runPfo(t, "ingest", copyFixture(t, "simple.csv", src), "--dir", dir)
	require.NoError(t, err)
	out, err := runPfo(t, "ingest", copyFixture(t, "checkpoint.csv", src), "--dir", dir, "--replace")
	require.NoError(t, err)
	assert.Contains(t, out, "Ledger has 3 rows")
}

func TestIngest_AllOrNothing(t *testing.T) {
	dir := newProject(t)
	src := t.TempDir()
	good := copyFixture(t, "simple.csv", src)
	bad := filepath.Join(src, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("Data|Descrição\n2024-01-01|x\n"), 0o644))

	_, err := runPfo(t, "ingest", good, bad, "--dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.csv")

	_, err = os.Stat(filepath.Join(dir, config.EnvFileName))
	assert.True(t, os.IsNotExist(err), "no checkpoint recorded")
	assert.Len(t, ledgerLines(t, dir), 2, "ledger is still empty")
}

func TestIngest_ConfiguredDelimiterDoesNotApplyToCheckpoint(t *testing.T) {
	dir := newProject(t)
	cfgPath := filepath.Join(dir, config.FileName)
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	cfg.CSV.Delimiter = ","
	require.NoError(t, config.Save(cfgPath, cfg))

	bank := filepath.Join(t.TempDir(), "bank.csv")
	require.NoError(t, os.WriteFile(bank, []byte("Data,Descrição,Valor\n2024-01-01,Salario,1000.00\n2024-01-02,Mercado,-50.00\n"), 0o644))
	_, err = runPfo(t, "ingest", bank, "--dir", dir)
	require.NoError(t, err)

	lines := ledgerLines(t, dir)
	require.Len(t, lines, 4)
	assert.Contains(t, lines[3], "950.00")

	_, err = runPfo(t, "ingest", bank, "--dir", dir)
	require.NoError(t, err)
	assert.Len(t, ledgerLines(t, dir), 6)
}

func TestRestore_KeepsRowsMatchingNoise(t *testing.T) {
	dir := newProject(t)
	_, err := runPfo(t, "ingest", copyFixture(t, "simple.csv", t.TempDir()), "--dir", dir)
	require.NoError(t, err)

	noise := `Pagamento efetuado: "Debito Automatico Fatura Cartao Inter"`
	_, err = runPfo(t, "edit", "1", "--dir", dir, "--description", noise)
	require.NoError(t, err)

	lines := ledgerLines(t, dir)
	require.Len(t, lines, 4, "edited row survives the next restore")
	assert.Contains(t, lines[3], "Pagamento efetuado")
	assert.Contains(t, lines[3], "700.00")
}

func TestIngest_DeclaredDelimiter(t *testing.T) {
	dir := newProject(t)
	src := copyFixture(t, "checkpoint.csv", t.TempDir())

	_, err := runPfo(t, "ingest", src, "--dir", dir, "--delimiter", "ab")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single character")

	out, err := runPfo(t, "ingest", src, "--dir", dir, "--delimiter", ";")
	require.NoError(t, err)
	assert.Contains(t, out, "Ledger has 3 rows")
}

func TestImport(t *testing.T) {
	dir := newProject(t)
	importDir := filepath.Join(dir, "import")
	copyFixture(t, "extrato_inter.csv", importDir)
	copyFixture(t, "fatura.csv", importDir)

	out, err := runPfo(t, "import", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "extrato_inter.csv")
	assert.Contains(t, out, "Ledger has 6 rows")

	for _, name := range []string{"extrato_inter.csv", "fatura.csv"} {
		_, err := os.Stat(filepath.Join(importDir, "processed", name))
		assert.NoError(t, err, "%s moved to processed", name)
	}

	entries, err := history.Read(filepath.Join(dir, "work"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, history.ActionImport, entries[0].Action)
	assert.Equal(t, "extrato_inter.csv", entries[0].Source)
	assert.Equal(t, 3, entries[0].Rows)

	out, err = runPfo(t, "import", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No CSV files")
}

func TestAdd(t *testing.T) {
	dir := newProject(t)
	_, err := runPfo(t, "ingest", copyFixture(t, "simple.csv", t.TempDir()), "--dir", dir)
	require.NoError(t, err)

	out, err := runPfo(t, "add", "--dir", dir,
		"--date", "03/01/2024", "--description", "Farmacia", "--operation", "saida", "--amount", "30,00")
	require.NoError(t, err)
	assert.Contains(t, out, "ledger has 3 rows")

	lines := ledgerLines(t, dir)
	require.Len(t, lines, 5)
	assert.Contains(t, lines[3], "Farmacia")
	assert.Contains(t, lines[3], "-30.00")
	assert.Contains(t, lines[3], "970.00")
	assert.Contains(t, lines[3], "Manually added!")
	assert.Contains(t, lines[4], "670.00")
}

func TestAdd_Invalid(t *testing.T) {
	dir := newProject(t)

	_, err := runPfo(t, "add", "--dir", dir, "--date", "2024-01-03", "--description", "x", "--amount", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid manual entry")

	_, err = runPfo(t, "add", "--dir", dir, "--date", "2024-01-03", "--description", "x", "--amount", "1.999")
	require.Error(t, err)

	_, err = runPfo(t, "add", "--dir", dir, "--date", "2024-01-03", "--description", "x", "--amount", "1", "--operation", "sideways")
	require.Error(t, err)

	_, err = runPfo(t, "add", "--dir", dir, "--description", "x", "--amount", "1")
	require.Error(t, err, "date is required")
}

func TestEdit(t *testing.T) {
	dir := newProject(t)
	_, err := runPfo(t, "ingest", copyFixture(t, "simple.csv", t.TempDir()), "--dir", dir)
	require.NoError(t, err)

	_, err = runPfo(t, "edit", "1", "--dir", dir, "--amount=-500.00", "--category", "Moradia")
	require.NoError(t, err)

	lines := ledgerLines(t, dir)
	assert.Contains(t, lines[3], "-500.00")
	assert.Contains(t, lines[3], "500.00")
	assert.Contains(t, lines[3], "Moradia")

	_, err = runPfo(t, "edit", "7", "--dir", dir, "--amount", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row index out of range")
}

func TestRemove(t *testing.T) {
	dir := newProject(t)
	_, err := runPfo(t, "ingest", copyFixture(t, "simple.csv", t.TempDir()), "--dir", dir)
	require.NoError(t, err)
	before := initialLoadPath(t, dir)

	_, err = runPfo(t, "remove", "5", "--dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row index out of range")
	assert.Equal(t, before, initialLoadPath(t, dir), "failed remove writes nothing")

	out, err := runPfo(t, "remove", "0", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed row 0 (Salario)")

	lines := ledgerLines(t, dir)
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], "Aluguel")
	assert.Contains(t, lines[2], "-300.00")

	_, err = runPfo(t, "remove", "x", "--dir", dir)
	require.Error(t, err)
}

func TestReport(t *testing.T) {
	dir := newProject(t)
	_, err := runPfo(t, "ingest", copyFixture(t, "checkpoint.csv", t.TempDir()), "--dir", dir)
	require.NoError(t, err)

	out, err := runPfo(t, "report", "top", "--dir", dir, "--limit", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[2], "Salario")
	assert.Contains(t, lines[3], "Investimento")

	out, err = runPfo(t, "report", "totals", "--dir", dir, "--period", "monthly")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-01")
	assert.Contains(t, out, "Pix enviado: Maria")

	out, err = runPfo(t, "report", "balances", "--dir", dir, "--period", "yearly")
	require.NoError(t, err)
	assert.Contains(t, out, "2850.00")

	out, err = runPfo(t, "report", "institutions", "--dir", dir)
	require.NoError(t, err)
	lines = strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	// Both total 4850.00: Inter by balance alone, XP as 2000 invested plus
	// a 2850 balance. Ties are ordered by name.
	assert.Contains(t, lines[2], "Inter")
	assert.Contains(t, lines[2], "4850.00")
	assert.Contains(t, lines[3], "XP")
	assert.Contains(t, lines[3], "2000.00")

	_, err = runPfo(t, "report", "totals", "--dir", dir, "--period", "hourly")
	require.Error(t, err)
}
