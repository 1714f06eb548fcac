package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"inmatesearch-backend/lib/booking"

	"github.com/stretchr/testify/require"
)

const testdata = "../../../lib/booking/testdata/"

func run(t *testing.T, args ...string) string {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestParseCommand(t *testing.T) {
	out := run(t, "parse", testdata+"detail.html", "--soid", "000123456")

	var inmate booking.Inmate
	require.NoError(t, json.Unmarshal([]byte(out), &inmate))
	require.Equal(t, "000123456", inmate.Soid)
	require.Equal(t, "DOE JOHN", inmate.Name)
	require.Len(t, inmate.Charges, 2)

	out = run(t, "parse", testdata+"detail.html", "--table")
	require.Contains(t, out, "THEFT BY TAKING")
	require.Contains(t, out, "PUBLIC DEFENDER")
}

func TestResultsCommand(t *testing.T) {
	out := run(t, "results", testdata+"results.html", "--json")

	var summaries []booking.InmateSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summaries))
	require.Len(t, summaries, 2)

	resultsJson = false
	out = run(t, "results", testdata+"results.html")
	require.Contains(t, out, "000654321")
	require.Contains(t, out, "DOE JANE")
}

func TestParseCommandMissingFile(t *testing.T) {
	rootCmd.SetArgs([]string{"parse", "does-not-exist.html"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	require.Error(t, rootCmd.ExecuteContext(context.Background()))
}
