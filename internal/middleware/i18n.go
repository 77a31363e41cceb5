package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"catalogstudio/internal/domain"
)

type languageContextKey struct{}

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

var contentTags = func() []language.Tag {
	tags := make([]language.Tag, 0, len(domain.SupportedLanguages))
	for _, code := range domain.SupportedLanguages {
		tags = append(tags, language.Make(strings.ToLower(code)))
	}
	return tags
}()

var contentMatcher = language.NewMatcher(contentTags)

// ContentLanguage negotiates the catalog content language and the caller
// country. The language comes from X-Content-Language, then Accept-Language,
// then fallback. The country is attached with domain.WithCountry.
func ContentLanguage(fallback string, lookup CountryLookup) func(http.Handler) http.Handler {
	fallback = NormalizeLanguage(fallback, domain.DefaultLanguage)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := negotiateLanguage(r, fallback)
			ctx := context.WithValue(r.Context(), languageContextKey{}, lang)
			if country := ResolveCountry(r, lookup); country != "" {
				ctx = domain.WithCountry(ctx, country)
			}
			w.Header().Set("Content-Language", strings.ToLower(lang))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func negotiateLanguage(r *http.Request, fallback string) string {
	if v := strings.TrimSpace(r.Header.Get("X-Content-Language")); v != "" {
		return NormalizeLanguage(v, fallback)
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		tags, _, err := language.ParseAcceptLanguage(accept)
		if err == nil && len(tags) > 0 {
			_, idx, conf := contentMatcher.Match(tags...)
			if conf != language.No {
				return domain.SupportedLanguages[idx]
			}
		}
	}
	return fallback
}

// NormalizeLanguage maps a BCP 47 tag or a code like "de" to one of the
// supported content languages, or returns fallback.
func NormalizeLanguage(raw, fallback string) string {
	tag, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	base, _ := tag.Base()
	code := strings.ToUpper(base.String())
	for _, supported := range domain.SupportedLanguages {
		if supported == code {
			return supported
		}
	}
	return fallback
}

// LanguageFromContext returns the negotiated content language or EN.
func LanguageFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(languageContextKey{}).(string); ok {
		return v
	}
	return domain.DefaultLanguage
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			if ip := strings.TrimSpace(part); net.ParseIP(ip) != nil {
				return ip
			}
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// countryHeaders are set by proxies and CDNs in front of the API, most
// specific first.
var countryHeaders = []string{"X-Country-Code", "X-IP-Country", "CF-IPCountry", "X-Appengine-Country"}

// ResolveCountry returns an ISO 3166 alpha-2 code for the caller: proxy
// headers first, then the IP lookup, then the Accept-Language region.
// Placeholder codes such as Cloudflare's "XX" and "T1" are ignored.
func ResolveCountry(r *http.Request, lookup CountryLookup) string {
	if r == nil {
		return ""
	}
	for _, key := range countryHeaders {
		if code, ok := countryCode(r.Header.Get(key)); ok {
			return code
		}
	}
	if lookup != nil {
		if ip := ClientIP(r); ip != "" {
			if country, err := lookup(ip); err == nil {
				if code, ok := countryCode(country); ok {
					return code
				}
			}
		}
	}
	return localeRegion(r.Header.Get("Accept-Language"))
}

func countryCode(raw string) (string, bool) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != 2 || code == "XX" || code == "T1" {
		return "", false
	}
	region, err := language.ParseRegion(code)
	if err != nil || !region.IsCountry() {
		return "", false
	}
	return code, true
}

func localeRegion(accept string) string {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return ""
	}
	region, conf := tags[0].Region()
	if conf != language.Exact {
		return ""
	}
	return region.String()
}
