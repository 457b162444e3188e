package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/helixml/gitsearch/internal/log"
)

// CorrelationHeader carries the correlation ID in requests and responses.
const CorrelationHeader = "X-Correlation-ID"

// CorrelationID returns a middleware that stores the correlation ID and
// chi's request ID in the request context for logging. The correlation ID is
// taken from the request header or falls back to the request ID.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())

		correlationID := r.Header.Get(CorrelationHeader)
		if correlationID == "" {
			correlationID = requestID
		}
		if correlationID != "" {
			w.Header().Set(CorrelationHeader, correlationID)
		}

		ctx := log.WithCorrelationID(r.Context(), correlationID)
		ctx = log.WithRequestID(ctx, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
