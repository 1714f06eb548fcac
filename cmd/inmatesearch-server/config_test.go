package main

import (
	"os"
	"path/filepath"
	"testing"

	"inmatesearch-backend/lib/booking"
	"inmatesearch-backend/lib/scrapers/sheriff"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "config.json5")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestReadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ACCESS_TOKEN", "")

	cfg, err := ReadConfig(writeConfig(t, `{
		// everything else is defaulted
		modes: ["Inquiry", "In Custody"],
	}`))
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Port)
	require.Equal(t, "http", cfg.Driver)
	require.Equal(t, sheriff.DefaultBaseUrl, cfg.BaseUrl)
	require.Equal(t, 60, cfg.TimeoutSeconds)
	require.Equal(t, "Inquiry", cfg.DefaultMode)
	require.Nil(t, cfg.ResultsLayout)
	require.Equal(t, booking.DefaultResultsLayout, cfg.ServiceOptions().ResultsLayout)
	require.Equal(t, []string{"Inquiry", "In Custody"}, cfg.ServiceOptions().Modes)
}

func TestReadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ACCESS_TOKEN", "from-env")

	cfg, err := ReadConfig(writeConfig(t, `{
		port: 8080,
		access_token: "from-file",
		driver: "chrome",
		timeout_seconds: 5,
		results_layout: {name: 0, dob: 1, race: 2, sex: 3, location: 4, soid: 5, days_in_custody: -1},
	}`))
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, "from-env", cfg.AccessToken)
	layout := cfg.ServiceOptions().ResultsLayout
	require.Equal(t, 0, layout.Name)
	require.Equal(t, -1, layout.DaysInCustody)

	opts, err := cfg.SessionOptions()
	require.NoError(t, err)
	require.Equal(t, sheriff.ChromeDriver, opts.Driver)
	require.Equal(t, "5s", opts.Timeout.String())
	require.Nil(t, opts.Dump)
}

func TestReadConfigPartialResultsLayout(t *testing.T) {
	cfg, err := ReadConfig(writeConfig(t, `{
		results_layout: {soid: 8, days_in_custody: -1},
	}`))
	require.NoError(t, err)

	expected := booking.DefaultResultsLayout
	expected.Soid = 8
	expected.DaysInCustody = -1
	require.Equal(t, expected, cfg.ServiceOptions().ResultsLayout)
	require.Equal(t, 1, cfg.ServiceOptions().ResultsLayout.Name)
}

func TestReadConfigInvalid(t *testing.T) {
	_, err := ReadConfig(writeConfig(t, `{driver: "lynx"}`))
	require.ErrorContains(t, err, "unknown driver")

	_, err = ReadConfig(writeConfig(t, `{max_details: -2}`))
	require.ErrorContains(t, err, "max_details")
}
