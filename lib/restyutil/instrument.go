package restyutil

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

const redacted = "[redacted]"

type InstrumentOutput interface {
	Write(id string, contents string)
}

// DumpExchanges writes every request/response pair the client makes to
// output. `output` can be nil, if it is, then the function is a no-op.
//
// Values of the form and query fields named in redact are replaced before
// the exchange is written, so searched names never land on disk.
func DumpExchanges(client *resty.Client, prefix string, output InstrumentOutput, redact ...string) {
	if output == nil {
		return
	}

	var idcounter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := fmt.Sprintf("%s-%04d", prefix, atomic.AddUint64(&idcounter, 1))
		output.Write(id, formatExchange(res, redact))
		slog.DebugContext(
			res.Request.Context(), "dumped http exchange",
			"method", res.Request.Method,
			"url", redactUrl(res.Request.URL, redact),
			"status", res.StatusCode(),
			"message_id", id,
		)
		return nil
	})
}

func redactValues(values url.Values, fields []string) url.Values {
	for _, field := range fields {
		if _, ok := values[field]; ok {
			values.Set(field, redacted)
		}
	}
	return values
}

func redactUrl(raw string, fields []string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.RawQuery == "" || len(fields) == 0 {
		return raw
	}
	parsed.RawQuery = redactValues(parsed.Query(), fields).Encode()
	return parsed.String()
}

func requestBody(req *http.Request, fields []string) string {
	if req == nil || req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("failed to get request body: %s", err.Error())
	}
	read, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("failed to read request body: %s", err.Error())
	}
	if len(fields) == 0 || !strings.HasPrefix(req.Header.Get("content-type"), "application/x-www-form-urlencoded") {
		return string(read)
	}
	form, err := url.ParseQuery(string(read))
	if err != nil {
		return redacted
	}
	return redactValues(form, fields).Encode()
}

// writeHeaders writes headers sorted by name, one per line, each line
// starting with marker.
func writeHeaders(out *strings.Builder, marker string, headers http.Header) {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		for _, v := range headers[name] {
			fmt.Fprintf(out, "%s %s: %s\n", marker, name, v)
		}
	}
}

// formatExchange renders an exchange like curl -v: request lines start with
// ">", response lines with "<", and each body follows its headers.
func formatExchange(res *resty.Response, redact []string) string {
	var out strings.Builder

	fmt.Fprintf(&out, "> %s %s\n", res.Request.Method, redactUrl(res.Request.URL, redact))
	raw := res.Request.RawRequest
	if raw != nil {
		writeHeaders(&out, ">", raw.Header)
	}
	if body := requestBody(raw, redact); body != "" {
		out.WriteString(">\n")
		out.WriteString(body)
		out.WriteString("\n")
	}
	out.WriteString("\n")

	responseUrl := res.Request.URL
	if res.RawResponse != nil {
		if location, err := res.RawResponse.Location(); err == nil {
			responseUrl = location.String()
		}
	}
	fmt.Fprintf(&out, "< %d %s\n", res.StatusCode(), redactUrl(responseUrl, redact))
	writeHeaders(&out, "<", res.Header())
	out.WriteString("<\n")
	out.WriteString(res.String())

	return out.String()
}
