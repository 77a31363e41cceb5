package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

type requestIDContextKey struct{}

// maxRequestIDLen bounds caller supplied ids before they reach logs.
const maxRequestIDLen = 128

// RequestID keeps a well-formed inbound X-Request-ID or mints a uuid. The id
// is echoed on the response and stored on the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDContextKey{}, rid)
		w.Header().Set(requestIDHeader, rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validRequestID accepts printable ASCII without spaces.
func validRequestID(rid string) bool {
	if rid == "" || len(rid) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(rid); i++ {
		if c := rid[i]; c <= ' ' || c > '~' {
			return false
		}
	}
	return true
}

func RequestIDFromContext(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDContextKey{}).(string)
	return rid
}
