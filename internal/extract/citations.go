package extract

import (
	"regexp"
	"sort"
	"strings"
)

// citationPattern matches "- Source: <rest>" within a single line.
var citationPattern = regexp.MustCompile(`-[ \t]*Source:[ \t]*(.*)`)

// Citations scans text for "- Source: ..." lines and returns the unique
// citations in ascending lexicographic order. The result depends only on the
// set of citations present, not on where they appear.
func Citations(text string) []string {
	seen := make(map[string]bool)
	var citations []string

	for _, match := range citationPattern.FindAllStringSubmatch(text, -1) {
		citation := strings.TrimSpace(match[1])
		if citation == "" || seen[citation] {
			continue
		}
		seen[citation] = true
		citations = append(citations, citation)
	}

	sort.Strings(citations)
	return citations
}

// CitationLines renders citations as Markdown list items, one per line.
func CitationLines(citations []string) string {
	lines := make([]string, len(citations))
	for i, c := range citations {
		lines[i] = "- " + c
	}
	return strings.Join(lines, "\n")
}
