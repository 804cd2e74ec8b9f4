package ledger

import (
	"fmt"
	"strings"

	"github.com/ppiankov/schoolscope/internal/markdoc"
	"github.com/ppiankov/schoolscope/internal/model"
)

// Template renders a new, empty ledger document. Metadata and categories
// are written once here and never touched again.
func Template(school model.School, dimensions []string, created string) string {
	categories := make([]string, len(dimensions))
	for i, d := range dimensions {
		categories[i] = "- " + d
	}

	phase := school.Phase
	if phase == "" {
		phase = "n/a"
	}

	return fmt.Sprintf(`# %s — Raw Facts

## metadata
- slug: %s
- phase: %s
- created: %s

## source-log
%s
%s

## categories
%s

## quoted-excerpts
%s
%s

## fact-records
%s
%s
`,
		school.Name,
		school.Slug, phase, created,
		markdoc.SourceLog.Start, markdoc.SourceLog.End,
		strings.Join(categories, "\n"),
		markdoc.Quotes.Start, markdoc.Quotes.End,
		markdoc.Facts.Start, markdoc.Facts.End,
	)
}
