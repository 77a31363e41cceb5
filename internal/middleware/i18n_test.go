package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"catalogstudio/internal/domain"
)

func requestWith(headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.4:80"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestNegotiateLanguage(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		fallback string
		want     string
	}{
		{"explicit header wins", map[string]string{"X-Content-Language": "fr", "Accept-Language": "de-DE"}, "EN", "FR"},
		{"accept-language matched", map[string]string{"Accept-Language": "de-AT,en;q=0.5"}, "EN", "DE"},
		{"unsupported explicit header falls back", map[string]string{"X-Content-Language": "ja"}, "DE", "DE"},
		{"no headers", nil, "FR", "FR"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, negotiateLanguage(requestWith(tc.headers), tc.fallback))
		})
	}
}

func TestNormalizeLanguage(t *testing.T) {
	for in, want := range map[string]string{
		"de":          "DE",
		"EN":          "EN",
		"fr-CH":       "FR",
		"":            "EN",
		"xx-invalid-": "EN",
		"es":          "EN",
	} {
		assert.Equal(t, want, NormalizeLanguage(in, "EN"), "input %q", in)
	}
}

func TestResolveCountry(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		lookup  CountryLookup
		want    string
	}{
		{
			name:    "most specific header wins",
			headers: map[string]string{"X-Country-Code": "us", "CF-IPCountry": "de"},
			want:    "US",
		},
		{
			name:    "placeholder header skipped",
			headers: map[string]string{"CF-IPCountry": "XX", "X-Appengine-Country": "nl"},
			want:    "NL",
		},
		{
			name:    "lookup before locale",
			headers: map[string]string{"Accept-Language": "en-GB"},
			lookup: func(ip string) (string, error) {
				if ip != "203.0.113.4" {
					return "", errors.New("unexpected ip " + ip)
				}
				return "ch", nil
			},
			want: "CH",
		},
		{
			name:    "accept-language region",
			headers: map[string]string{"Accept-Language": "en-GB,en;q=0.9"},
			want:    "GB",
		},
		{
			name:   "lookup error and no hints",
			lookup: func(string) (string, error) { return "", errors.New("boom") },
			want:   "",
		},
		{
			name:    "malformed header ignored",
			headers: map[string]string{"X-Country-Code": "germany"},
			want:    "",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveCountry(requestWith(tc.headers), tc.lookup))
		})
	}
}

func TestContentLanguageMiddleware(t *testing.T) {
	var lang, country string
	h := ContentLanguage("de", nil)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		lang = LanguageFromContext(r.Context())
		country = domain.CountryFrom(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestWith(map[string]string{"CF-IPCountry": "at"}))

	assert.Equal(t, "DE", lang)
	assert.Equal(t, "AT", country)
	assert.Equal(t, "de", rec.Header().Get("Content-Language"))
	assert.Equal(t, domain.DefaultLanguage, LanguageFromContext(context.Background()))
}
