package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"kycgate/pkg/requestcontext"
)

// RequestID assigns a correlation ID to every request. Inbound X-Request-ID
// headers are honored so upstream proxies can trace through.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), id)
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
