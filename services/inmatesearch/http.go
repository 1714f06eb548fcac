package inmatesearch

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"inmatesearch-backend/lib/serviceutil"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type scrapeBody struct {
	Name        any    `json:"name"`
	Mode        string `json:"mode"`
	Limit       int    `json:"limit"`
	IncludeText bool   `json:"include_text"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Handler serves POST /scrape and GET /health.
func (s Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /scrape", otelhttp.WithRouteTag("/scrape", http.HandlerFunc(s.handleScrape)))
	mux.Handle("GET /health", otelhttp.WithRouteTag("/health", http.HandlerFunc(handleHealth)))

	var handler http.Handler = mux
	handler = serviceutil.VerifyAccessToken(s.opts.AccessToken, []string{"/health"}, handler)
	handler = serviceutil.WithRequestId(handler)
	return otelhttp.NewHandler(handler, "inmatesearch")
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	serviceutil.WriteJson(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s Service) handleScrape(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body scrapeBody
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil && !errors.Is(err, io.EOF) {
		serviceutil.WriteJson(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	name, _ := body.Name.(string)
	req, err := s.Normalize(Request{
		Name:        name,
		Mode:        body.Mode,
		Limit:       body.Limit,
		IncludeText: body.IncludeText,
	})
	if err != nil {
		serviceutil.WriteJson(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	slog.InfoContext(
		ctx, "scrape request",
		"mode", req.Mode,
		"limit", req.Limit,
		"request_id", serviceutil.RequestId(ctx),
	)

	res := s.Scrape(ctx, req)
	serviceutil.WriteJson(w, http.StatusOK, res)
}
