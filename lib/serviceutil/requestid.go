package serviceutil

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mazen160/go-random"
)

type requestIdKey struct{}

const RequestIdHeader = "X-Request-Id"

// WithRequestId tags every request with a random id, echoed back in the
// X-Request-Id header.
func WithRequestId(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := random.String(8)
		if err != nil {
			slog.WarnContext(r.Context(), "failed to generate request id", "err", err)
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set(RequestIdHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIdKey{}, id)))
	})
}

// RequestId returns the id WithRequestId attached to ctx, or "".
func RequestId(ctx context.Context) string {
	id, _ := ctx.Value(requestIdKey{}).(string)
	return id
}
