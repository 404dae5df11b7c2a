package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_nec_fidelity/pkg/deck"
)

const testDeck = "CM dipole\nCE\nSY L=5\nGW 1 21 0 0 -L 0 0 L 0.001\nGE 0\nEX 0 1 11 0 1.0 0\nFR 0 1 0 0 14.2 0\nEN\n"

// run executes the root command with fresh flag state.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, storePath, verbose, jsonOutput = "", "", false, false
	analyzeSave, analyzeFidelity = false, false

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeDeck(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return path
}

func TestAnalyzeCommand(t *testing.T) {
	path := writeDeck(t, t.TempDir(), "dipole.nec", testDeck)

	out, err := run(t, "analyze", path)
	require.NoError(t, err)
	assert.Contains(t, out, "dipole.nec  8 cards / 8 lines  fidelity 1.0000")
	assert.Contains(t, out, "1 segments")
	assert.Contains(t, out, "feed segments: 1")
}

func TestAnalyzeCommandReportsErrors(t *testing.T) {
	path := writeDeck(t, t.TempDir(), "bad.nec", "GE 0\nFR 0 1 0 0 14.0\nEN\n")

	out, err := run(t, "analyze", path)
	assert.Error(t, err)
	assert.Contains(t, out, "Line 2: Expected 6-6 params, got 5")
}

func TestAnalyzeCommandJSON(t *testing.T) {
	path := writeDeck(t, t.TempDir(), "dipole.nec", testDeck)

	out, err := run(t, "analyze", "--json", path)
	require.NoError(t, err)

	var report deck.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "dipole.nec", report.Name)
	assert.Equal(t, 8, report.CardCount)
	assert.Equal(t, 5.0, report.Symbols["L"])
}

func TestConvertSymbolsGeometryCommands(t *testing.T) {
	path := writeDeck(t, t.TempDir(), "dipole.nec", "* header\r\nSY L=5\r\nSY H=L/2\r\nGW 1 21 0 0 -H 0 0 H 0.001\r\nEN\r\n")

	out, err := run(t, "convert", path)
	require.NoError(t, err)
	assert.Equal(t, "SY L=5\nSY H=L/2\nGW 1 21 0 0 -H 0 0 H 0.001\nEN\n", out)

	out, err = run(t, "symbols", path)
	require.NoError(t, err)
	assert.Equal(t, "H = 2.5\nL = 5.0\n", out)

	out, err = run(t, "geometry", path)
	require.NoError(t, err)
	assert.Contains(t, out, "(0.0, 0.0, -2.5)")
	assert.Contains(t, out, "(0.0, 0.0, 2.5)")
}

func TestHistoryCommands(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "db", "reports.db")
	path := writeDeck(t, dir, "dipole.nec", testDeck)

	_, err := run(t, "history", "rm", "--store", filepath.Join(dir, "none.db"), "abc")
	assert.Error(t, err)

	_, err = run(t, "analyze", "--save", "--store", store, path)
	require.NoError(t, err)

	out, err := run(t, "history", "--store", store)
	require.NoError(t, err)
	id := deck.DeckID(testDeck)
	assert.Contains(t, out, id[:12])
	assert.Contains(t, out, "dipole.nec")

	out, err = run(t, "history", "show", "--store", store, id[:8])
	require.NoError(t, err)
	assert.Contains(t, out, "dipole.nec  8 cards")

	out, err = run(t, "history", "rm", "--store", store, id[:8])
	require.NoError(t, err)
	assert.Equal(t, "removed "+id[:12]+"\n", out)

	out, err = run(t, "history", "--store", store)
	require.NoError(t, err)
	assert.Equal(t, "no stored reports\n", out)
}

func TestAnalyzeSaveWithoutStore(t *testing.T) {
	path := writeDeck(t, t.TempDir(), "dipole.nec", testDeck)
	_, err := run(t, "analyze", "--save", path)
	assert.Error(t, err)
}

func TestMatchID(t *testing.T) {
	summaries := []deck.ReportSummary{{DeckID: "abc123"}, {DeckID: "abd456"}, {DeckID: "ff"}}

	id, err := matchID(summaries, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)

	id, err = matchID(summaries, "ff")
	require.NoError(t, err)
	assert.Equal(t, "ff", id)

	_, err = matchID(summaries, "ab")
	assert.Error(t, err)
	_, err = matchID(summaries, "zz")
	assert.Error(t, err)
}

func TestFormatReport(t *testing.T) {
	report := &deck.Report{
		DeckID:         strings.Repeat("a", 64),
		LineCount:      3,
		CardCount:      2,
		Errors:         []string{"Line 2: Expected 6-6 params, got 5"},
		GeometryErrors: []string{"GW insufficient params on line 1: [1]"},
		Fidelity:       deck.FidelityReport{Mean: 0.5, StdDev: 0.25},
		AnalyzedAt:     time.Now(),
	}
	assert.Equal(t,
		"aaaaaaaaaaaa  2 cards / 3 lines  fidelity 0.5000 ±0.2500  0 segments\n"+
			"  Line 2: Expected 6-6 params, got 5\n"+
			"  GW insufficient params on line 1: [1]\n",
		formatReport(report))
}
