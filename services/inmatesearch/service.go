package inmatesearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"inmatesearch-backend/lib/booking"
	"inmatesearch-backend/lib/htmlutil"
	"inmatesearch-backend/lib/scrapers/sheriff"
	"inmatesearch-backend/lib/serviceutil"
	"inmatesearch-backend/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var tracer = telemetry.Tracer("inmatesearch.services.inmatesearch")
var meter = telemetry.Meter("inmatesearch.services.inmatesearch")

const (
	DefaultMode  = "Inquiry"
	maxTextRunes = 8000
)

var (
	ErrNameRequired = errors.New("name required")
	ErrUnknownMode  = errors.New("unknown mode")
	ErrBadLimit     = errors.New("limit must not be negative")
)

type SessionFactory func(ctx context.Context) (sheriff.Session, error)

type Options struct {
	DefaultMode string
	// Modes restricts the accepted search modes, empty accepts any mode.
	Modes         []string
	MaxDetails    int
	ResultsLayout booking.ResultsLayout
	AccessToken   string
}

type Request struct {
	Name        string
	Mode        string
	Limit       int
	IncludeText bool
}

type Response struct {
	Found   bool             `json:"found"`
	Count   int              `json:"count"`
	Inmates []booking.Inmate `json:"inmates"`
	Error   string           `json:"error,omitempty"`
}

type Service struct {
	opts       Options
	newSession SessionFactory

	requests metric.Int64Counter
	charges  metric.Int64Histogram
}

func NewService(newSession SessionFactory, opts Options) (Service, error) {
	if opts.DefaultMode == "" {
		opts.DefaultMode = DefaultMode
	}
	if opts.ResultsLayout == (booking.ResultsLayout{}) {
		opts.ResultsLayout = booking.DefaultResultsLayout
	}

	requests, err := meter.Int64Counter(
		"scrape_requests",
		metric.WithDescription("Scrape requests by outcome."),
	)
	if err != nil {
		return Service{}, err
	}
	charges, err := meter.Int64Histogram(
		"charges_extracted",
		metric.WithDescription("Charges extracted from one detail page."),
	)
	if err != nil {
		return Service{}, err
	}

	return Service{
		opts:       opts,
		newSession: newSession,
		requests:   requests,
		charges:    charges,
	}, nil
}

// Normalize cleans the name, fills in the default mode and validates the
// request.
func (s Service) Normalize(req Request) (Request, error) {
	req.Name = sheriff.CleanName(req.Name)
	if req.Name == "" {
		return req, ErrNameRequired
	}
	if req.Mode == "" {
		req.Mode = s.opts.DefaultMode
	}
	if len(s.opts.Modes) > 0 && !slices.Contains(s.opts.Modes, req.Mode) {
		return req, fmt.Errorf("%w %q", ErrUnknownMode, req.Mode)
	}
	if req.Limit < 0 {
		return req, ErrBadLimit
	}
	if req.Limit == 0 {
		req.Limit = s.opts.MaxDetails
	}
	return req, nil
}

func pageText(doc *goquery.Document) string {
	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	text := []rune(htmlutil.CollapsedText(body))
	if len(text) > maxTextRunes {
		text = text[:maxTextRunes]
	}
	return string(text)
}

func (s Service) failed(ctx context.Context, message string, err error) Response {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, message)
	slog.ErrorContext(ctx, message, "err", err, "request_id", serviceutil.RequestId(ctx))
	s.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "error")))

	return Response{
		Found:   false,
		Inmates: []booking.Inmate{},
		Error:   fmt.Errorf("%s: %w", message, err).Error(),
	}
}

// Scrape searches for req.Name and extracts the booking record of every
// matching inmate, one detail page at a time. req should already be
// normalized. Collaborator failures are reported in Response.Error instead
// of being returned.
func (s Service) Scrape(ctx context.Context, req Request) Response {
	ctx, span := tracer.Start(ctx, "Scrape")
	defer span.End()

	span.SetAttributes(
		attribute.String("mode", req.Mode),
		attribute.Int("limit", req.Limit),
	)

	session, err := s.newSession(ctx)
	if err != nil {
		return s.failed(ctx, "failed to start scrape session", err)
	}
	defer func() {
		err := session.Close()
		if err != nil {
			slog.WarnContext(ctx, "failed to close scrape session", "err", err)
		}
	}()

	results, err := session.Search(ctx, req.Name, req.Mode)
	if err != nil {
		return s.failed(ctx, "failed to search", err)
	}

	summaries := booking.ParseSummaries(booking.ParseRows(results.Selection), s.opts.ResultsLayout)
	slog.DebugContext(
		ctx, "parsed search results",
		"matches", len(summaries),
		"request_id", serviceutil.RequestId(ctx),
	)
	if len(summaries) == 0 {
		s.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "not_found")))
		return Response{Found: false, Inmates: []booking.Inmate{}}
	}

	selected := SelectSummaries(summaries, req.Name, req.Limit)
	span.SetAttributes(
		attribute.Int("matches", len(summaries)),
		attribute.Int("selected", len(selected)),
	)

	var detailErrs []error
	inmates := make([]booking.Inmate, 0, len(selected))
	for _, summary := range selected {
		inmate, err := s.extractDetail(ctx, session, summary, req.IncludeText)
		if err != nil {
			detailErrs = append(detailErrs, fmt.Errorf("soid %s: %w", summary.Soid, err))
		}
		inmates = append(inmates, inmate)
	}

	res := Response{
		Found:   true,
		Count:   len(inmates),
		Inmates: inmates,
	}
	outcome := "found"
	if len(detailErrs) > 0 {
		err := errors.Join(detailErrs...)
		span.RecordError(err)
		slog.WarnContext(
			ctx, "failed to fetch some detail pages",
			"err", err,
			"request_id", serviceutil.RequestId(ctx),
		)
		res.Error = fmt.Errorf("failed to fetch detail page: %w", detailErrs[0]).Error()
		outcome = "partial"
	}
	s.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	return res
}

// extractDetail always returns a usable inmate, a failed detail page leaves
// only the summary filled in.
func (s Service) extractDetail(ctx context.Context, session sheriff.Session, summary booking.InmateSummary, includeText bool) (booking.Inmate, error) {
	ctx, span := tracer.Start(ctx, "extractDetail")
	defer span.End()

	span.SetAttributes(attribute.String("soid", summary.Soid))

	doc, err := session.Detail(ctx, summary.Soid)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch detail page")
		return booking.Assemble(booking.NewFieldMap(), nil, summary), err
	}

	inmate := booking.Extract(booking.ParseRows(doc.Selection), summary)
	if includeText {
		inmate.Details = pageText(doc)
	}
	s.charges.Record(ctx, int64(len(inmate.Charges)))
	return inmate, nil
}
