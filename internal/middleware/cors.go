package middleware

import (
	"net/http"
	"strings"
)

var (
	corsAllowHeaders  = strings.Join([]string{"Authorization", "Content-Type", "Accept-Language", "X-Content-Language", requestIDHeader}, ", ")
	corsAllowMethods  = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}, ",")
	corsExposeHeaders = strings.Join([]string{requestIDHeader, "Content-Disposition", "Content-Language", "Retry-After"}, ", ")
)

// corsPolicy decides which browser origins may call the API.
type corsPolicy struct {
	origins   map[string]bool
	anyOrigin bool
}

func newCORSPolicy(origins []string) corsPolicy {
	p := corsPolicy{origins: make(map[string]bool, len(origins))}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			p.anyOrigin = true
		default:
			p.origins[strings.ToLower(o)] = true
		}
	}
	return p
}

func (p corsPolicy) allows(origin string) bool {
	return origin != "" && (p.anyOrigin || p.origins[strings.ToLower(origin)])
}

// CORS answers preflight requests and decorates responses for allowed
// origins. A "*" entry allows any origin; credentials are still allowed
// because the origin is echoed rather than wildcarded.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	policy := newCORSPolicy(allowedOrigins)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()
			h.Add("Vary", "Origin")
			if policy.allows(origin) {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
			}
			if r.Method != http.MethodOptions || r.Header.Get("Access-Control-Request-Method") == "" {
				next.ServeHTTP(w, r)
				return
			}
			if policy.allows(origin) {
				h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
				h.Set("Access-Control-Allow-Methods", corsAllowMethods)
				h.Set("Access-Control-Max-Age", "600")
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
