package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/position"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()), out.String())
	return out.String()
}

func TestParseFields(t *testing.T) {
	t.Parallel()

	got, err := parseFields([]string{"thesis=Breakout above the base", "lessons=a=b"})
	require.NoError(t, err)
	assert.Equal(t, []position.JournalField{
		{Name: "thesis", Prompt: prompts["thesis"], Response: "Breakout above the base"},
		{Name: "lessons", Prompt: prompts["lessons"], Response: "a=b"},
	}, got)

	for _, bad := range []string{"noequals", "=response"} {
		_, err := parseFields([]string{bad})
		assert.Error(t, err, bad)
	}
}

// The commands share package-level flag state, so this runs as one
// sequential session against a SQLite file.
func TestSession(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADEJOURNAL_STORE", "sqlite")
	t.Setenv("TRADEJOURNAL_DB", filepath.Join(dir, "journal.db"))
	t.Setenv("LOG_LEVEL", "error")

	out := run(t, "position", "create", "--symbol", "aapl", "--entry", "150", "--qty", "100",
		"--target", "180", "--stop", "140", "--thesis", "Services growth re-rates the multiple")
	first := strings.SplitN(out, "\n", 2)[0]
	require.True(t, strings.HasPrefix(first, "Created position "), out)
	id := strings.TrimPrefix(first, "Created position ")
	assert.Contains(t, out, "R:R 3.00")

	out = run(t, "trade", "add", id, "--type", "buy", "--qty", "100", "--price", "150",
		"--time", "2025-01-10T14:30:00Z", "--journal-field", "execution_notes=Limit at the plan")
	assert.Contains(t, out, "Recorded buy 100 AAPL @ 150.00")
	assert.Contains(t, out, "is open")

	out = run(t, "pnl", id)
	assert.Contains(t, out, "n/a")

	run(t, "price", "set", "aapl", "165")
	out = run(t, "price", "get", "AAPL", "MSFT")
	assert.Contains(t, out, "165.0000")
	assert.Regexp(t, `MSFT\s+no data`, out)

	out = run(t, "pnl", id)
	assert.Contains(t, out, "1500.00")

	out = run(t, "position", "list")
	assert.Contains(t, out, id)
	assert.Contains(t, out, "open")

	out = run(t, "journal", "list", id)
	assert.Contains(t, out, "execution_notes: Limit at the plan")

	out = run(t, "export", "csv", "--kind", "trades")
	assert.Contains(t, out, ","+id+",AAPL,buy,100,150.00,")

	out = run(t, "position", "show", id)
	assert.True(t, strings.HasPrefix(out, "* OPEN AAPL long_stock"), out)

	out = run(t, "position", "delete", id)
	assert.Contains(t, out, "Deleted position "+id)
	out = run(t, "journal", "list")
	assert.Contains(t, out, "No journal entries")
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tj.yaml")

	out := run(t, "config", "init", "-o", path)
	assert.Contains(t, out, "Created default configuration")

	out = run(t, "config", "validate", "-f", path)
	assert.Contains(t, out, "Store: sqlite (json codec)")
}

func TestVersion(t *testing.T) {
	assert.Contains(t, run(t, "version"), "tradejournal version "+version)
}
