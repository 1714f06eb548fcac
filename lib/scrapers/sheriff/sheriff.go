package sheriff

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"inmatesearch-backend/lib/restyutil"
	"inmatesearch-backend/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
)

var tracer = telemetry.Tracer("inmatesearch.lib.scrapers.sheriff")

const (
	DefaultBaseUrl = "http://inmate-search.cobbsheriff.org"
	SearchPage     = "enter_name.shtm"
	UserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/121 Safari/537.36"
	DefaultTimeout = 60 * time.Second

	detailButton = "Last Known Booking"
)

var (
	ErrNoSearchForm   = errors.New("could not find the inmate search form")
	ErrNoResults      = errors.New("detail requested before a search")
	ErrDetailNotFound = errors.New("could not find a booking detail link")
)

// Session drives one search against the sheriff's inmate search site. A
// session is not safe for concurrent use, Detail navigates from the results
// of the last Search.
type Session interface {
	Search(ctx context.Context, name, mode string) (*goquery.Document, error)
	Detail(ctx context.Context, soid string) (*goquery.Document, error)
	Close() error
}

type Driver string

const (
	HttpDriver   Driver = "http"
	ChromeDriver Driver = "chrome"
)

type Options struct {
	BaseUrl    string
	Driver     Driver
	Timeout    time.Duration
	ChromePath string
	// Attempts bounds how often the search page is fetched before giving
	// up, 0 means 3.
	Attempts uint
	// Dump receives every http exchange of the http driver, it may be nil.
	Dump restyutil.InstrumentOutput
}

func (o Options) searchUrl() (*url.URL, error) {
	base := o.BaseUrl
	if base == "" {
		base = DefaultBaseUrl
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	baseUrl, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	if baseUrl.Scheme == "" || baseUrl.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", o.BaseUrl)
	}
	return baseUrl.JoinPath(SearchPage), nil
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

func (o Options) attempts() uint {
	if o.Attempts == 0 {
		return 3
	}
	return o.Attempts
}

func NewSession(ctx context.Context, opts Options) (Session, error) {
	switch opts.Driver {
	case HttpDriver, "":
		return NewHttpSession(ctx, opts)
	case ChromeDriver:
		return NewChromeSession(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown scrape driver %q", opts.Driver)
	}
}

// CleanName strips the spreadsheet formula prefix some callers send ("=DOE")
// and surrounding whitespace.
func CleanName(name string) string {
	return strings.TrimSpace(strings.TrimPrefix(name, "="))
}
