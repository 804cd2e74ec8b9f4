package research

import (
	"regexp"
	"strings"
)

var focusSeparator = regexp.MustCompile(`(?i),|/|;|\band\b`)

// extraTerms are searched for every dimension after the focus terms.
var extraTerms = []string{
	"inspection report",
	"results 11+",
	"parent reviews",
	"notable achievements",
}

// BuildQueries turns a dimension's focus text into search queries of the
// form "<school> <dimension> <term>". Terms are split on commas, slashes,
// semicolons and the word "and", deduplicated case-insensitively, and
// followed by the fixed extra terms. At most max queries are returned.
func BuildQueries(school, dimension, focus string, max int) []string {
	var queries []string
	seen := make(map[string]bool)

	add := func(term string) {
		term = strings.TrimSpace(term)
		key := strings.ToLower(term)
		if term == "" || seen[key] {
			return
		}
		seen[key] = true
		queries = append(queries, school+" "+dimension+" "+term)
	}

	for _, term := range focusSeparator.Split(focus, -1) {
		add(term)
	}
	for _, term := range extraTerms {
		add(term)
	}

	if max < 0 {
		max = 0
	}
	if len(queries) > max {
		queries = queries[:max]
	}
	return queries
}
