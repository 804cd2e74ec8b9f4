package research

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ppiankov/schoolscope/internal/cache"
	"github.com/ppiankov/schoolscope/internal/worker"
	"golang.org/x/net/html"
)

// SearchResult is one organic web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Searcher runs a web search and returns at most max results.
type Searcher interface {
	Search(ctx context.Context, query string, max int) ([]SearchResult, error)
}

// DuckDuckGo searches through the DuckDuckGo HTML endpoint.
type DuckDuckGo struct {
	endpoint   string
	httpClient *http.Client
	userAgent  string
	limiter    *worker.Limiter
	cache      cache.Cache
}

// NewDuckDuckGo creates a searcher against endpoint
// (https://html.duckduckgo.com/html/ in production). limiter and c may be nil.
func NewDuckDuckGo(endpoint string, client *http.Client, userAgent string, limiter *worker.Limiter, c cache.Cache) *DuckDuckGo {
	if c == nil {
		c = cache.Noop{}
	}
	return &DuckDuckGo{
		endpoint:   endpoint,
		httpClient: client,
		userAgent:  userAgent,
		limiter:    limiter,
		cache:      c,
	}
}

// Search runs query and returns up to max results. Results are cached by
// query and max.
func (d *DuckDuckGo) Search(ctx context.Context, query string, max int) ([]SearchResult, error) {
	key := cache.Key("search", fmt.Sprintf("%d|%s", max, query))
	if cached, ok := d.cache.Get(key); ok {
		var results []SearchResult
		if err := json.Unmarshal(cached, &results); err == nil {
			return results, nil
		}
	}

	u, err := url.Parse(d.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse search endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx, u.String()); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	results, err := ParseResults(io.LimitReader(resp.Body, 4<<20), max)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(results); err == nil {
		_ = d.cache.Set(key, data, 0)
	}
	return results, nil
}

// ParseResults reads a DuckDuckGo HTML results page. Each "result__a" link
// starts a result; the next "result__snippet" element supplies its snippet.
// Ads and links without a resolvable target are skipped.
func ParseResults(r io.Reader, max int) ([]SearchResult, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}

	var results []SearchResult
	var current *SearchResult

	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result__a"):
				if max > 0 && len(results) >= max {
					return false
				}
				current = nil
				if target := resolveResultURL(attr(n, "href")); target != "" {
					results = append(results, SearchResult{
						Title: collapse(textOf(n)),
						URL:   target,
					})
					current = &results[len(results)-1]
				}
				return true
			case hasClass(n, "result__snippet"):
				if current != nil && current.Snippet == "" {
					current.Snippet = collapse(textOf(n))
				}
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(doc)

	for i := range results {
		if results[i].Title == "" {
			results[i].Title = results[i].URL
		}
	}
	return results, nil
}

// resolveResultURL unwraps DuckDuckGo redirect links
// (//duckduckgo.com/l/?uddg=<target>) and drops internal links such as ads.
func resolveResultURL(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	if strings.HasSuffix(u.Hostname(), "duckduckgo.com") {
		target := u.Query().Get("uddg")
		if target == "" {
			return ""
		}
		return resolveResultURL(target)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
