package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	// Decoders registered for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	_ "golang.org/x/image/webp"
)

const (
	defaultProbeTimeout = 5 * time.Second
	defaultFanOut       = 8

	aspectRatioPDF     = "N/A (PDF)"
	aspectRatioUnknown = "Unknown"

	errPDFUnavailable = "Unable to analyze PDF file"
	errNoData         = "CORS restriction or network error prevented analysis"
)

// Dimensions is the natural pixel size of an image.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Analysis is the best-effort outcome of probing one media URL. A non-empty
// Error means nothing could be learned; it never means the asset is invalid.
type Analysis struct {
	Dimensions  *Dimensions `json:"dimensions,omitempty"`
	FileSize    int64       `json:"fileSize,omitempty"`
	AspectRatio string      `json:"aspectRatio,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// Options configures an Analyzer.
type Options struct {
	HTTPClient   *http.Client
	ProbeTimeout time.Duration
	FanOut       int
	Logger       *zerolog.Logger
}

// Analyzer probes media URLs for size and dimensions.
type Analyzer struct {
	client       *http.Client
	probeTimeout time.Duration
	fanOut       int
	logger       zerolog.Logger
}

// NewAnalyzer builds an Analyzer with defaults for unset options.
func NewAnalyzer(opts Options) *Analyzer {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	timeout := opts.ProbeTimeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	fanOut := opts.FanOut
	if fanOut <= 0 {
		fanOut = defaultFanOut
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Analyzer{client: client, probeTimeout: timeout, fanOut: fanOut, logger: logger}
}

// Analyze probes a single URL. PDFs only get a size probe; images get the
// dimension and size probes concurrently, each allowed to fail on its own.
func (a *Analyzer) Analyze(ctx context.Context, url string) Analysis {
	if strings.HasSuffix(strings.ToLower(url), ".pdf") {
		size, err := a.fileSize(ctx, url)
		if err != nil {
			a.logger.Debug().Err(err).Str("url", url).Msg("media: pdf size probe failed")
			return Analysis{Error: errPDFUnavailable}
		}
		return Analysis{FileSize: size, AspectRatio: aspectRatioPDF}
	}

	var (
		wg      sync.WaitGroup
		dims    *Dimensions
		size    int64
		dimErr  error
		sizeErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		dims, dimErr = a.imageDimensions(ctx, url)
	}()
	go func() {
		defer wg.Done()
		size, sizeErr = a.fileSize(ctx, url)
	}()
	wg.Wait()

	if dimErr != nil {
		a.logger.Debug().Err(dimErr).Str("url", url).Msg("media: dimension probe failed")
	}
	if sizeErr != nil {
		a.logger.Debug().Err(sizeErr).Str("url", url).Msg("media: size probe failed")
	}

	out := Analysis{Dimensions: dims, FileSize: size, AspectRatio: aspectRatioUnknown}
	if dims != nil {
		out.AspectRatio = AspectRatio(dims.Width, dims.Height)
	}
	if dims == nil && size <= 0 {
		out.Error = errNoData
	}
	return out
}

// AnalyzeAll probes every URL with bounded concurrency. Results keep the
// order of the input and one failing probe never affects the others.
func (a *Analyzer) AnalyzeAll(ctx context.Context, urls []string) []Analysis {
	results := make([]Analysis, len(urls))
	var g errgroup.Group
	g.SetLimit(a.fanOut)
	for i, url := range urls {
		g.Go(func() error {
			results[i] = a.Analyze(ctx, url)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (a *Analyzer) imageDimensions(ctx context.Context, url string) (*Dimensions, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("empty url")
	}
	ctx, cancel := context.WithTimeout(ctx, a.probeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image failed to load: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("image failed to load: status %d", resp.StatusCode)
	}
	cfg, _, err := image.DecodeConfig(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.New("image has no dimensions")
	}
	return &Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

// fileSize returns the declared Content-Length, or 0 when the server does
// not declare one.
func (a *Analyzer) fileSize(ctx context.Context, url string) (int64, error) {
	if strings.TrimSpace(url) == "" {
		return 0, errors.New("empty url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("file size analysis blocked: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return 0, fmt.Errorf("file size analysis failed: status %d", resp.StatusCode)
	}
	if resp.ContentLength > 0 {
		return resp.ContentLength, nil
	}
	raw := strings.TrimSpace(resp.Header.Get("Content-Length"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse content-length %q: %w", raw, err)
	}
	return n, nil
}
