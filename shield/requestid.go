package shield

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hazyhaar/folio/idgen"
	"github.com/hazyhaar/folio/kit"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

var defaultRequestID = idgen.Prefixed("req_", idgen.NanoID(12))

// RequestID tags each request with an id, taken from a well-formed
// X-Request-ID header or generated by gen (nil: "req_" + 12 base-36 chars).
// The id is stored with kit.WithRequestID, echoed in the response header and
// attached to a per-request logger stored under LoggerKey.
func RequestID(gen idgen.Generator) func(http.Handler) http.Handler {
	if gen == nil {
		gen = defaultRequestID
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if !validRequestID(id) {
				id = gen()
			}
			w.Header().Set(RequestIDHeader, id)

			ctx := kit.WithRequestID(r.Context(), id)
			ctx = kit.WithTransport(ctx, kit.TransportHTTP)
			logger := slog.Default().With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)
			ctx = context.WithValue(ctx, LoggerKey, logger)
			logger.Debug("request")

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
