package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ecopoints-io/ecopoints-backend/pkg/logger"
)

// RequestIDHeader carries the correlation id echoed on every response.
const RequestIDHeader = "X-Request-Id"

const maxRequestIDLen = 64

// RequestID tags each request with a correlation id. A well-formed id sent
// by the client is kept so callers can trace retries; anything else is
// replaced with a fresh UUID.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := sanitizeRequestID(r.Header.Get(RequestIDHeader))
			if reqID == "" {
				reqID = uuid.NewString()
			}

			w.Header().Set(RequestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sanitizeRequestID rejects ids that could garble structured log lines.
func sanitizeRequestID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > maxRequestIDLen {
		return ""
	}
	for _, c := range id {
		if c < 0x21 || c > 0x7e {
			return ""
		}
	}
	return id
}
