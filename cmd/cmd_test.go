package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command. Flag values persist on the package-level
// commands between runs, so callers pass every flag they depend on.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_StudyFlow(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	db := filepath.Join(dir, "data", "cardwise.db")

	for i, id := range []string{"q1", "q2", "q3"} {
		out, err := run(t, "--db", db, "item", "add", id,
			"--deck", "capitals", "--order", strconv.Itoa(i+1), "--prompt", "p", "--answer", "a")
		require.NoError(t, err)
		assert.Contains(t, out, "Saved "+id+" in deck capitals")
	}

	out, err := run(t, "--db", db, "item", "list", "--deck", "")
	require.NoError(t, err)
	assert.Contains(t, out, "capitals")
	assert.Contains(t, out, "1 decks")

	out, err = run(t, "--db", db, "answer", "q1", "--user", "ana", "--correct=true", "--ms", "1500")
	require.NoError(t, err)
	assert.Contains(t, out, "interval")
	assert.Contains(t, out, "remembered for")

	out, err = run(t, "--db", db, "queue", "--user", "ana", "--deck", "capitals", "--size", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "q2")
	assert.Contains(t, out, "q3")

	out, err = run(t, "--db", db, "forecast", "q1", "--user", "ana")
	require.NoError(t, err)
	assert.Contains(t, out, "forgotten in")

	out, err = run(t, "--db", db, "stats", "--user", "ana", "--deck", "capitals")
	require.NoError(t, err)
	assert.Contains(t, out, "Stats for ana in capitals")

	exportPath := filepath.Join(dir, "ana.json")
	_, err = run(t, "--db", db, "export", "--user", "ana", "--out", exportPath)
	require.NoError(t, err)
	raw, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	var exp struct {
		UserID   string            `json:"user_id"`
		Attempts []json.RawMessage `json:"attempts"`
	}
	require.NoError(t, json.Unmarshal(raw, &exp))
	assert.Equal(t, "ana", exp.UserID)
	assert.Len(t, exp.Attempts, 1)

	_, err = run(t, "--db", db, "reset", "--user", "ana", "--yes=false")
	assert.Error(t, err)
	out, err = run(t, "--db", db, "reset", "--user", "ana", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted all data of ana")

	out, err = run(t, "--db", db, "item", "rm-deck", "capitals")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 3 items")
}

func TestCLI_RequiresUser(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", dir)

	_, err := run(t, "--db", filepath.Join(dir, "x.db"), "stats", "--user", "")
	assert.ErrorContains(t, err, "--user is required")
}
