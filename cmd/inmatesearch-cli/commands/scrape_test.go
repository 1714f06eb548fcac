package commands

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"inmatesearch-backend/services/inmatesearch"

	"github.com/stretchr/testify/require"
)

const sheriffTestdata = "../../../lib/scrapers/sheriff/testdata/"

func serveFixture(t *testing.T, mux *http.ServeMux, pattern, name string) {
	page, err := os.ReadFile(sheriffTestdata + name)
	require.NoError(t, err)
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Write(page)
	})
}

func newFakeSheriff(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	serveFixture(t, mux, "GET /enter_name.shtm", "search.html")
	serveFixture(t, mux, "POST /inquiry.asp", "results.html")
	serveFixture(t, mux, "POST /InmDetails.asp", "detail.html")
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestScrapeCommand(t *testing.T) {
	server := newFakeSheriff(t)
	dumpDir := filepath.Join(t.TempDir(), "dump")
	t.Cleanup(func() {
		scrapeJson = false
		scrapeDump = ""
	})

	out := run(t, "scrape", "DOE", "--base-url", server.URL, "--json", "--dump", dumpDir)

	var res inmatesearch.Response
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	require.True(t, res.Found)
	require.Equal(t, 2, res.Count)
	require.Empty(t, res.Error)
	require.Equal(t, "000123456", res.Inmates[0].Soid)
	require.Equal(t, "000654321", res.Inmates[1].Soid)
	require.NotEmpty(t, res.Inmates[1].Charges)

	search, err := os.ReadFile(filepath.Join(dumpDir, "sheriff-0002.txt"))
	require.NoError(t, err)
	require.Contains(t, string(search), "inmate_name=%5Bredacted%5D")
}

func TestScrapeCommandTable(t *testing.T) {
	server := newFakeSheriff(t)
	t.Cleanup(func() { scrapeLimit = 0 })

	out := run(t, "scrape", "DOE JOHN", "--base-url", server.URL, "--limit", "1")
	require.NotContains(t, out, "no inmates found")
	require.Contains(t, out, "000123456")
	require.NotContains(t, out, "000654321")
}
