package sheriff

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	nameInput  = `input[name="inmate_name"]`
	modeSelect = `select[name="qry"]`
)

// ChromeSession drives a headless chrome through the same pages a visitor
// would click through.
type ChromeSession struct {
	searchUrl string
	timeout   time.Duration

	browser       context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	searched      bool
}

func NewChromeSession(ctx context.Context, opts Options) (*ChromeSession, error) {
	searchUrl, err := opts.searchUrl()
	if err != nil {
		return nil, err
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(UserAgent),
	)
	if opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromePath))
	}

	// the browser outlives the ctx passed here, it is torn down by Close
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	browser, cancelBrowser := chromedp.NewContext(
		allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			slog.Debug(fmt.Sprintf(format, args...))
		}),
	)

	// starts the browser
	err = chromedp.Run(browser)
	if err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, err
	}

	return &ChromeSession{
		searchUrl:     searchUrl.String(),
		timeout:       opts.timeout(),
		browser:       browser,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
	}, nil
}

// run executes actions on the browser tab, bounded by the session timeout
// and by ctx.
func (s *ChromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.browser, s.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (s *ChromeSession) navigate(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.browser, s.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	res, err := chromedp.RunResponse(runCtx, actions...)
	if err != nil {
		return err
	}
	if res != nil && res.Status >= 400 {
		return fmt.Errorf("navigation to %s: unexpected status %d", res.URL, res.Status)
	}
	return nil
}

func (s *ChromeSession) capture(ctx context.Context) (*goquery.Document, error) {
	var html string
	err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (s *ChromeSession) Search(ctx context.Context, name, mode string) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "chrome:Search")
	defer span.End()

	span.SetAttributes(attribute.String("mode", mode))

	err := s.navigate(ctx, chromedp.Navigate(s.searchUrl))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open search page")
		return nil, err
	}

	var inputs []*cdp.Node
	err = s.run(ctx, chromedp.Nodes(nameInput, &inputs, chromedp.ByQuery, chromedp.AtLeast(0)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query search form")
		return nil, err
	}
	if len(inputs) == 0 {
		span.SetStatus(codes.Error, ErrNoSearchForm.Error())
		return nil, ErrNoSearchForm
	}

	err = s.run(ctx,
		chromedp.SetValue(nameInput, name, chromedp.ByQuery),
		chromedp.SetValue(modeSelect, mode, chromedp.ByQuery),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fill search form")
		return nil, err
	}
	err = s.navigate(ctx, chromedp.Submit(nameInput, chromedp.ByQuery))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit search form")
		return nil, err
	}

	doc, err := s.capture(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to capture results page")
		return nil, err
	}
	s.searched = true
	return doc, nil
}

func detailButtonXPath(soid string) string {
	return fmt.Sprintf(
		`//tr[td[normalize-space()='%s']]//*[(self::input and @value='%s') or (self::button and normalize-space()='%s')]`,
		soid, detailButton, detailButton,
	)
}

func (s *ChromeSession) Detail(ctx context.Context, soid string) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "chrome:Detail")
	defer span.End()

	span.SetAttributes(attribute.String("soid", soid))

	if !s.searched {
		span.SetStatus(codes.Error, ErrNoResults.Error())
		return nil, ErrNoResults
	}
	if strings.ContainsAny(soid, `'"`) {
		return nil, fmt.Errorf("%w: soid %s", ErrDetailNotFound, soid)
	}

	xpath := detailButtonXPath(soid)
	var buttons []*cdp.Node
	err := s.run(ctx, chromedp.Nodes(xpath, &buttons, chromedp.BySearch, chromedp.AtLeast(0)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query results page")
		return nil, err
	}
	if len(buttons) == 0 {
		err := fmt.Errorf("%w: soid %s", ErrDetailNotFound, soid)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	err = s.navigate(ctx, chromedp.Click(xpath, chromedp.BySearch, chromedp.NodeVisible))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open detail page")
		return nil, err
	}

	doc, err := s.capture(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to capture detail page")
		return nil, err
	}

	// back to the results for the next detail
	err = s.run(ctx, chromedp.NavigateBack())
	if err != nil {
		slog.WarnContext(ctx, "failed to navigate back to results", "err", err)
		s.searched = false
	}
	return doc, nil
}

func (s *ChromeSession) Close() error {
	s.cancelBrowser()
	s.cancelAlloc()
	return nil
}
