package research

import (
	"fmt"
	"strings"

	"github.com/ppiankov/schoolscope/internal/extract"
)

// Source is one search hit with the page text fetched for it.
type Source struct {
	Title       string
	URL         string
	Snippet     string
	Content     string
	Query       string
	Reliability int
	RetrievedAt string // YYYY-MM-DD, UTC
}

// FormatSources renders sources as numbered blocks for the research prompt.
// Each extract is cut to extractChars runes.
func FormatSources(sources []Source, extractChars int) string {
	blocks := make([]string, 0, len(sources))
	for i, s := range sources {
		lines := []string{
			fmt.Sprintf("[Source %d] reliability=%d accessed=%s", i+1, s.Reliability, s.RetrievedAt),
			"Title: " + s.Title,
			"URL: " + s.URL,
			"Query: " + s.Query,
		}
		if s.Snippet != "" {
			lines = append(lines, "Snippet: "+s.Snippet)
		}
		lines = append(lines, "Extract:\n"+extract.Truncate(s.Content, extractChars))
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

// URLs lists the sources' URLs in order.
func URLs(sources []Source) []string {
	urls := make([]string, len(sources))
	for i, s := range sources {
		urls[i] = s.URL
	}
	return urls
}
