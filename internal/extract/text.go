// Package extract pulls structured pieces out of free text and HTML:
// citation lines from research output and readable text from fetched pages.
package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// VisibleText parses an HTML page and returns its readable text with
// whitespace collapsed, truncated to maxChars runes (0 means no limit).
func VisibleText(htmlContent string, maxChars int) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	text := strings.Join(strings.Fields(visibleText(doc)), " ")
	return Truncate(text, maxChars), nil
}

// visibleText collects text nodes, skipping scripts, styles and embeds
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "template":
				return
			}
		}

		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}

// Truncate returns at most max runes of s; max <= 0 means no limit.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
