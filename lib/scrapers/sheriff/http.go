package sheriff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"inmatesearch-backend/lib/htmlutil"
	"inmatesearch-backend/lib/restyutil"
	"inmatesearch-backend/lib/telemetry"
	"inmatesearch-backend/lib/textutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/avast/retry-go/v4"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var retryDelay = 500 * time.Millisecond

type statusError struct {
	method string
	link   string
	status int
}

func (e statusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.method, e.link, e.status)
}

// HttpSession submits the site's forms directly without a browser.
type HttpSession struct {
	searchUrl *url.URL
	http      *resty.Client
	attempts  uint

	results    *goquery.Document
	resultsUrl *url.URL
}

func NewHttpSession(ctx context.Context, opts Options) (*HttpSession, error) {
	searchUrl, err := opts.searchUrl()
	if err != nil {
		return nil, err
	}

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", UserAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(searchUrl.Hostname()))
	client.SetTimeout(opts.timeout())

	telemetry.InstrumentResty(client, "inmatesearch.lib.scrapers.sheriff/http")
	restyutil.DumpExchanges(client, "sheriff", opts.Dump, "inmate_name")

	slog.DebugContext(ctx, "created http scrape session", "search_url", searchUrl.String())

	return &HttpSession{
		searchUrl: searchUrl,
		http:      client,
		attempts:  opts.attempts(),
	}, nil
}

func (s *HttpSession) fetch(ctx context.Context, req *resty.Request, method, link string) (*goquery.Document, *url.URL, error) {
	res, err := req.SetContext(ctx).Execute(method, link)
	if err != nil {
		return nil, nil, err
	}
	if res.IsError() {
		return nil, nil, statusError{method: method, link: link, status: res.StatusCode()}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, nil, err
	}

	location, err := url.Parse(link)
	if err != nil {
		return nil, nil, err
	}
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		location = res.RawResponse.Request.URL
	}
	return doc, location, nil
}

func (s *HttpSession) submit(ctx context.Context, form htmlutil.Form) (*goquery.Document, *url.URL, error) {
	req := s.http.R()
	if form.Method == "POST" {
		req.SetFormDataFromValues(form.Values)
	} else {
		req.SetQueryParamsFromValues(form.Values)
	}
	return s.fetch(ctx, req, form.Method, form.Action)
}

func findSearchForm(doc *goquery.Document) *goquery.Selection {
	return doc.Find("form").FilterFunction(func(_ int, form *goquery.Selection) bool {
		return form.Find("input[name=inmate_name]").Length() > 0
	}).First()
}

func (s *HttpSession) Search(ctx context.Context, name, mode string) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "http:Search")
	defer span.End()

	span.SetAttributes(attribute.String("mode", mode))

	var doc *goquery.Document
	var location *url.URL
	err := retry.Do(
		func() error {
			var err error
			doc, location, err = s.fetch(ctx, s.http.R(), "GET", s.searchUrl.String())
			return err
		},
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var status statusError
			if errors.As(err, &status) {
				return status.status >= 500
			}
			return true
		}),
		retry.OnRetry(func(n uint, err error) {
			slog.DebugContext(ctx, "retrying search page", "attempt", n+1, "err", err)
		}),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch search page")
		return nil, err
	}

	formSel := findSearchForm(doc)
	if formSel.Length() == 0 {
		span.SetStatus(codes.Error, ErrNoSearchForm.Error())
		return nil, ErrNoSearchForm
	}

	form := htmlutil.ReadForm(location, formSel)
	submitButton := formSel.Find("input[type=submit], button[type=submit]").First()
	if submitButton.Length() > 0 {
		form = form.WithButton(submitButton)
	}
	form.Values.Set("inmate_name", name)
	form.Values.Set("qry", mode)

	results, resultsUrl, err := s.submit(ctx, form)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit search form")
		return nil, err
	}

	s.results = results
	s.resultsUrl = resultsUrl
	return results, nil
}

// findResultRow returns the results row that has a cell reading exactly soid.
func findResultRow(doc *goquery.Document, soid string) *goquery.Selection {
	return doc.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		found := false
		tr.ChildrenFiltered("td").EachWithBreak(func(_ int, td *goquery.Selection) bool {
			found = htmlutil.CollapsedText(td) == soid
			return !found
		})
		return found
	}).First()
}

func (s *HttpSession) detailForm(row *goquery.Selection) (htmlutil.Form, bool) {
	button := row.Find(fmt.Sprintf("input[value='%s'], button", detailButton)).FilterFunction(func(_ int, b *goquery.Selection) bool {
		if goquery.NodeName(b) == "button" {
			return textutil.Collapse(b.Text()) == detailButton
		}
		return true
	}).First()
	if button.Length() == 0 {
		return htmlutil.Form{}, false
	}

	formSel := button.Closest("form")
	if formSel.Length() == 0 {
		formSel = row.Find("form").First()
	}
	if formSel.Length() == 0 {
		return htmlutil.Form{}, false
	}
	return htmlutil.ReadForm(s.resultsUrl, formSel).WithButton(button), true
}

func (s *HttpSession) detailAnchor(ctx context.Context, row *goquery.Selection, soid string) (string, bool) {
	anchors := htmlutil.GetAnchors(ctx, s.resultsUrl, row.Find("a"))
	anchors = append(anchors, htmlutil.GetAnchors(ctx, s.resultsUrl, s.results.Find("a"))...)
	for _, a := range anchors {
		if strings.Contains(a.Href, soid) {
			return a.Href, true
		}
	}
	return "", false
}

func (s *HttpSession) Detail(ctx context.Context, soid string) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "http:Detail")
	defer span.End()

	span.SetAttributes(attribute.String("soid", soid))

	if s.results == nil {
		span.SetStatus(codes.Error, ErrNoResults.Error())
		return nil, ErrNoResults
	}

	row := findResultRow(s.results, soid)

	var doc *goquery.Document
	var err error
	if form, ok := s.detailForm(row); ok {
		doc, _, err = s.submit(ctx, form)
	} else if link, ok := s.detailAnchor(ctx, row, soid); ok {
		doc, _, err = s.fetch(ctx, s.http.R(), "GET", link)
	} else {
		err = fmt.Errorf("%w: soid %s", ErrDetailNotFound, soid)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch detail page")
		return nil, err
	}
	return doc, nil
}

func (s *HttpSession) Close() error {
	s.results = nil
	s.resultsUrl = nil
	s.http.GetClient().CloseIdleConnections()
	return nil
}
