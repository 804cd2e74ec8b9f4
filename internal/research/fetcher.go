package research

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/schoolscope/internal/cache"
	"github.com/ppiankov/schoolscope/internal/extract"
	"github.com/ppiankov/schoolscope/internal/model"
	"github.com/ppiankov/schoolscope/internal/util"
	"github.com/ppiankov/schoolscope/internal/worker"
	"go.uber.org/zap"
)

var (
	ErrDisallowed         = errors.New("disallowed by robots.txt")
	ErrUnsupportedContent = errors.New("unsupported content type")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Status)
}

const (
	maxFetchAttempts = 3
	maxRedirects     = 3
	retryBaseDelay   = 500 * time.Millisecond
)

// fetchSleepFunc is replaced in tests to skip backoff.
var fetchSleepFunc = time.Sleep

// Fetcher retrieves pages for research: robots.txt is honoured, requests are
// rate limited per domain and extracted text is cached.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	pageChars  int
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	cache      cache.Cache
	logger     *zap.Logger
}

// FetcherDeps are the optional collaborators of a Fetcher. A nil robots
// checker skips robots.txt, a nil limiter never waits and a nil cache
// stores nothing.
type FetcherDeps struct {
	Robots  *util.RobotsChecker
	Limiter *worker.Limiter
	Cache   cache.Cache
	Logger  *zap.Logger
}

// NewFetcher creates a Fetcher. pageChars bounds the extracted text.
func NewFetcher(cfg model.HTTPConfig, pageChars int, deps FetcherDeps) *Fetcher {
	if deps.Cache == nil {
		deps.Cache = cache.Noop{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}

	return &Fetcher{
		httpClient: util.NewHTTPClient(cfg, maxRedirects),
		userAgent:  cfg.UserAgent,
		maxBytes:   maxBytes,
		pageChars:  pageChars,
		robots:     deps.Robots,
		limiter:    deps.Limiter,
		cache:      deps.Cache,
		logger:     deps.Logger,
	}
}

// FetchResult contains a fetched body and its metadata
type FetchResult struct {
	Body        string
	ContentType string
	StatusCode  int
	FinalURL    string
}

// Fetch performs a single GET request.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &FetchResult{
		Body:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// FetchWithRetry retries transient failures (429, 5xx, network errors) with
// exponential backoff.
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var lastErr error
	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		if attempt > 0 {
			fetchSleepFunc(retryBaseDelay << (attempt - 1))
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isRetryableFetchError(err) {
			return nil, err
		}
		f.logger.Debug("Retrying fetch", zap.String("url", rawURL), zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return nil, lastErr
}

func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}

	return strings.HasPrefix(err.Error(), "fetch: ")
}

// PageText returns the readable text of a page, at most pageChars runes.
func (f *Fetcher) PageText(ctx context.Context, rawURL string) (string, error) {
	key := cache.Key("page", rawURL)
	if cached, ok := f.cache.Get(key); ok {
		return string(cached), nil
	}

	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return "", err
		}
		if !allowed {
			return "", fmt.Errorf("%w: %s", ErrDisallowed, rawURL)
		}
		if f.limiter != nil {
			f.limiter.ApplyCrawlDelay(rawURL, delay)
		}
	}
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return "", err
		}
	}

	result, err := f.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return "", err
	}

	text, err := f.toText(result)
	if err != nil {
		return "", err
	}

	if err := f.cache.Set(key, []byte(text), 0); err != nil {
		f.logger.Debug("Page cache write failed", zap.String("url", rawURL), zap.Error(err))
	}
	return text, nil
}

func (f *Fetcher) toText(result *FetchResult) (string, error) {
	mediaType := "text/html"
	if result.ContentType != "" {
		if mt, _, err := mime.ParseMediaType(result.ContentType); err == nil {
			mediaType = mt
		}
	}

	switch {
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		return extract.VisibleText(result.Body, f.pageChars)
	case mediaType == "text/plain":
		return extract.Truncate(strings.Join(strings.Fields(result.Body), " "), f.pageChars), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContent, mediaType)
	}
}
