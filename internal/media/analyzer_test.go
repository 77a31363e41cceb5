package media

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func newAssetServer(t *testing.T) *httptest.Server {
	t.Helper()
	img := pngBytes(t, 1600, 900)
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(img)))
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(img)
	})
	mux.HandleFunc("/sheet.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "204800")
	})
	mux.HandleFunc("/broken.pdf", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	mux.HandleFunc("/missing.jpg", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAnalyzeImage(t *testing.T) {
	srv := newAssetServer(t)
	a := NewAnalyzer(Options{HTTPClient: srv.Client()})

	got := a.Analyze(context.Background(), srv.URL+"/ok.png")
	require.NotNil(t, got.Dimensions)
	assert.Equal(t, Dimensions{Width: 1600, Height: 900}, *got.Dimensions)
	assert.Equal(t, "16:9", got.AspectRatio)
	assert.Positive(t, got.FileSize)
	assert.Empty(t, got.Error)
}

func TestAnalyzePDF(t *testing.T) {
	srv := newAssetServer(t)
	a := NewAnalyzer(Options{HTTPClient: srv.Client()})

	got := a.Analyze(context.Background(), srv.URL+"/SHEET.PDF")
	assert.Equal(t, Analysis{Error: errPDFUnavailable}, got, "404 on upper-case path")

	got = a.Analyze(context.Background(), srv.URL+"/sheet.pdf")
	assert.Nil(t, got.Dimensions)
	assert.Equal(t, int64(204800), got.FileSize)
	assert.Equal(t, "N/A (PDF)", got.AspectRatio)

	got = a.Analyze(context.Background(), srv.URL+"/broken.pdf")
	assert.Equal(t, "Unable to analyze PDF file", got.Error)
}

func TestAnalyzeUnreachable(t *testing.T) {
	srv := newAssetServer(t)
	a := NewAnalyzer(Options{HTTPClient: srv.Client()})

	got := a.Analyze(context.Background(), srv.URL+"/missing.jpg")
	assert.Nil(t, got.Dimensions)
	assert.Equal(t, "Unknown", got.AspectRatio)
	assert.Equal(t, "CORS restriction or network error prevented analysis", got.Error)
}

func TestAnalyzeAllKeepsOrder(t *testing.T) {
	srv := newAssetServer(t)
	a := NewAnalyzer(Options{HTTPClient: srv.Client(), FanOut: 2})

	urls := []string{srv.URL + "/missing.jpg", srv.URL + "/ok.png", srv.URL + "/sheet.pdf"}
	got := a.AnalyzeAll(context.Background(), urls)
	require.Len(t, got, 3)
	assert.NotEmpty(t, got[0].Error)
	assert.Equal(t, "16:9", got[1].AspectRatio)
	assert.Equal(t, "N/A (PDF)", got[2].AspectRatio)
}
