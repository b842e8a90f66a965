package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rpattn/salesingest/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command against an isolated SQLite store.
func runCLI(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SALESINGEST_DATABASE_DRIVER", "sqlite")
	t.Setenv("SALESINGEST_DATABASE_PATH", dbPath)
	t.Setenv("SALESINGEST_LOG_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetArgs(append([]string{"--config", t.TempDir()}, args...))
	err := root.Execute()
	return stdout.String(), err
}

func writeSalesCSV(t *testing.T, dir string, rows int, mutate func(col schema.Column, row int) string) string {
	t.Helper()
	path := filepath.Join(dir, "sales.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	require.NoError(t, w.Write(schema.Names(schema.Columns)))
	for i := 0; i < rows; i++ {
		row := make([]string, len(schema.Columns))
		for j, col := range schema.Columns {
			row[j] = mutate(col, i)
		}
		require.NoError(t, w.Write(row))
	}
	w.Flush()
	require.NoError(t, w.Error())
	return path
}

func plainValue(col schema.Column, row int) string {
	switch col.Kind {
	case schema.Number, schema.Integer:
		return "7"
	case schema.Date:
		return "01/02/2024"
	default:
		return "North"
	}
}

func TestIngestCommand_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "store.sqlite")
	src := writeSalesCSV(t, dir, 4, func(col schema.Column, row int) string {
		if col.Name == "Taxable" && row == 2 {
			return "n/a"
		}
		return plainValue(col, row)
	})

	out, err := runCLI(t, dbPath, "ingest", src, "-o", "json")
	require.NoError(t, err)

	var res ingestResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "success", string(res.Status))
	assert.Equal(t, 4, res.RowsProcessed)
	assert.Equal(t, int64(4), res.TotalStored)
	assert.Equal(t, "sales.csv", res.FileName)
	require.Len(t, res.InvalidValues, 1)
	assert.Equal(t, "Taxable", res.InvalidValues[0].Column)
	assert.Equal(t, 1, res.InvalidValues[0].Count)

	runs, err := runCLI(t, dbPath, "runs")
	require.NoError(t, err)
	assert.Contains(t, runs, "sales.csv")
	assert.Contains(t, runs, "success")
}

func TestIngestCommand_MissingColumnsFails(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(src, []byte("Voucher Type,ID\nSales,1\n"), 0o644))

	out, err := runCLI(t, filepath.Join(dir, "store.sqlite"), "ingest", src)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Missing required columns: state_name, Zone"))
	assert.Contains(t, out, "validation-error")
}

func TestIngestCommand_Args(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "store.sqlite")

	_, err := runCLI(t, dbPath, "ingest")
	assert.Error(t, err)

	_, err = runCLI(t, dbPath, "ingest", "a.csv", "--ftp", "/drop/a.csv")
	assert.Error(t, err)
}

func TestMigrateCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "store.sqlite")
	out, err := runCLI(t, dbPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite schema is up to date")

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestRootCommand_RejectsUnknownOutput(t *testing.T) {
	_, err := runCLI(t, filepath.Join(t.TempDir(), "store.sqlite"), "runs", "-o", "yaml")
	assert.ErrorContains(t, err, "unsupported output format")
}
