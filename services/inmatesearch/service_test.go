package inmatesearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inmatesearch-backend/lib/booking"
	"inmatesearch-backend/lib/scrapers/sheriff"
	"inmatesearch-backend/lib/serviceutil"
	"inmatesearch-backend/lib/testutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	_ "embed"
)

//go:embed testdata/results.html
var resultsPage string

//go:embed testdata/empty_results.html
var emptyResultsPage string

//go:embed testdata/detail.html
var detailPage string

type fakeSession struct {
	results    string
	searchErr  error
	detailErrs map[string]error

	searches []string
	details  []string
	closed   bool
}

func document(page string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(page))
}

func (f *fakeSession) Search(ctx context.Context, name, mode string) (*goquery.Document, error) {
	f.searches = append(f.searches, name+"|"+mode)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return document(f.results)
}

func (f *fakeSession) Detail(ctx context.Context, soid string) (*goquery.Document, error) {
	f.details = append(f.details, soid)
	if err := f.detailErrs[soid]; err != nil {
		return nil, err
	}
	return document(detailPage)
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func newTestService(t testing.TB, session *fakeSession, opts Options) Service {
	service, err := NewService(func(ctx context.Context) (sheriff.Session, error) {
		return session, nil
	}, opts)
	require.NoError(t, err)
	return service
}

func post(t testing.TB, handler http.Handler, body string, header http.Header) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodPost, "/scrape", strings.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	return rec, decoded
}

func TestScrapeValidation(t *testing.T) {
	session := &fakeSession{results: resultsPage}
	handler := newTestService(t, session, Options{Modes: []string{"Inquiry", "In Custody"}}).Handler()

	cases := []struct {
		body     string
		expected string
	}{
		{body: `{}`, expected: "name required"},
		{body: ``, expected: "name required"},
		{body: `{"name": ""}`, expected: "name required"},
		{body: `{"name": "= "}`, expected: "name required"},
		{body: `{"name": 42}`, expected: "name required"},
		{body: `{"name": ["DOE"]}`, expected: "name required"},
		{body: `{"name": "DOE", "mode": "Everything"}`, expected: `unknown mode "Everything"`},
		{body: `{"name": "DOE", "limit": -1}`, expected: "limit must not be negative"},
		{body: `{"name": "DOE"`, expected: "invalid request body"},
	}

	for _, test := range cases {
		rec, decoded := post(t, handler, test.body, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, test.body)
		require.Equal(t, test.expected, decoded["error"], test.body)
	}
	require.Empty(t, session.searches)
}

func TestScrapeFound(t *testing.T) {
	testutil.SetupTelemetry(t, "services/inmatesearch")

	session := &fakeSession{results: resultsPage}
	handler := newTestService(t, session, Options{}).Handler()

	rec, decoded := post(t, handler, `{"name": "=DOE "}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, rec.Header().Get(serviceutil.RequestIdHeader), 8)

	require.Equal(t, []string{"DOE|Inquiry"}, session.searches)
	require.Equal(t, []string{"000123456", "000654321"}, session.details)
	require.True(t, session.closed)

	require.Equal(t, true, decoded["found"])
	require.Equal(t, float64(2), decoded["count"])
	require.NotContains(t, decoded, "error")

	inmates := decoded["inmates"].([]any)
	require.Len(t, inmates, 2)
	jane := inmates[1].(map[string]any)
	require.Equal(t, "DOE JANE", jane["name"])
	require.Equal(t, "000654321", jane["soid"])
	require.Equal(t, "GA0330000", jane["agencyId"])
	require.Len(t, jane["charges"], 2)
	require.NotContains(t, jane, "details")
}

func TestScrapeNoMatches(t *testing.T) {
	session := &fakeSession{results: emptyResultsPage}
	service := newTestService(t, session, Options{ResultsLayout: booking.DefaultResultsLayout})

	res := service.Scrape(context.Background(), Request{Name: "NOBODY", Mode: "Inquiry"})

	diff := cmp.Diff(Response{Found: false, Inmates: []booking.Inmate{}}, res)
	if diff != "" {
		t.Fatal(diff)
	}
	require.Empty(t, session.details)
	require.True(t, session.closed)
}

func TestScrapeDefaultsResultsLayout(t *testing.T) {
	explicit := &fakeSession{results: resultsPage}
	res := newTestService(t, explicit, Options{ResultsLayout: booking.DefaultResultsLayout}).
		Scrape(context.Background(), Request{Name: "DOE", Mode: "Inquiry"})
	require.True(t, res.Found)
	require.Equal(t, 2, res.Count)
	require.Equal(t, []string{"000123456", "000654321"}, explicit.details)

	zero := &fakeSession{results: resultsPage}
	defaulted := newTestService(t, zero, Options{}).
		Scrape(context.Background(), Request{Name: "DOE", Mode: "Inquiry"})
	require.Equal(t, explicit.details, zero.details)

	diff := cmp.Diff(res, defaulted)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestScrapeSearchFailure(t *testing.T) {
	session := &fakeSession{searchErr: sheriff.ErrNoSearchForm}
	handler := newTestService(t, session, Options{}).Handler()

	rec, decoded := post(t, handler, `{"name": "DOE", "mode": "In Custody"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, decoded["found"])
	require.Equal(t, []any{}, decoded["inmates"])
	require.Equal(t, "failed to search: "+sheriff.ErrNoSearchForm.Error(), decoded["error"])
	require.Equal(t, []string{"DOE|In Custody"}, session.searches)
	require.True(t, session.closed)
}

func TestScrapeSessionFailure(t *testing.T) {
	service, err := NewService(func(ctx context.Context) (sheriff.Session, error) {
		return nil, errors.New("chrome not found")
	}, Options{})
	require.NoError(t, err)

	res := service.Scrape(context.Background(), Request{Name: "DOE", Mode: "Inquiry"})
	require.False(t, res.Found)
	require.Equal(t, "failed to start scrape session: chrome not found", res.Error)
	require.NotNil(t, res.Inmates)
}

func TestScrapeDetailFailure(t *testing.T) {
	session := &fakeSession{
		results: resultsPage,
		detailErrs: map[string]error{
			"000123456": fmt.Errorf("%w: soid 000123456", sheriff.ErrDetailNotFound),
		},
	}
	service := newTestService(t, session, Options{})

	res := service.Scrape(context.Background(), Request{Name: "DOE", Mode: "Inquiry"})
	require.True(t, res.Found)
	require.Equal(t, 2, res.Count)
	require.Contains(t, res.Error, "soid 000123456")

	john := res.Inmates[0]
	require.Equal(t, "DOE JOHN", john.Name)
	require.Equal(t, "", john.AgencyId)
	require.NotNil(t, john.Charges)
	require.Equal(t, "GA0330000", res.Inmates[1].AgencyId)
}

func TestScrapeLimit(t *testing.T) {
	session := &fakeSession{results: resultsPage}
	service := newTestService(t, session, Options{MaxDetails: 5})

	req, err := service.Normalize(Request{Name: "DOE JANE", Limit: 1})
	require.NoError(t, err)
	res := service.Scrape(context.Background(), req)

	require.Equal(t, []string{"000654321"}, session.details)
	require.Equal(t, 1, res.Count)
	require.Equal(t, "DOE JANE", res.Inmates[0].Name)

	req, err = service.Normalize(Request{Name: "DOE"})
	require.NoError(t, err)
	require.Equal(t, 5, req.Limit)
	require.Equal(t, DefaultMode, req.Mode)
}

func TestScrapeIncludeText(t *testing.T) {
	session := &fakeSession{results: resultsPage}
	service := newTestService(t, session, Options{})

	res := service.Scrape(context.Background(), Request{Name: "DOE", Mode: "Inquiry", IncludeText: true})
	require.Len(t, res.Inmates, 2)
	require.True(t, strings.HasPrefix(res.Inmates[0].Details, "Name DOB Race Sex SOID DOE JOHN"))
	require.NotContains(t, res.Inmates[0].Details, "  ")
}

func TestPageTextTruncates(t *testing.T) {
	doc, err := document("<body><p>" + strings.Repeat("é", 9000) + "</p></body>")
	require.NoError(t, err)
	require.Len(t, []rune(pageText(doc)), 8000)
}

func TestAccessToken(t *testing.T) {
	session := &fakeSession{results: emptyResultsPage}
	handler := newTestService(t, session, Options{AccessToken: "secret"}).Handler()

	rec, decoded := post(t, handler, `{"name": "DOE"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Unauthorized", decoded["error"])

	rec, decoded = post(t, handler, `{"name": "DOE"}`, http.Header{
		"Authorization": {"Bearer secret"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, decoded["found"])

	health := httptest.NewRecorder()
	handler.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, health.Code)
	require.JSONEq(t, `{"status":"ok"}`, health.Body.String())
}
