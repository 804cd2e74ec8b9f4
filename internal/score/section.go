package score

import (
	"math"
	"regexp"
	"strings"
)

// SectionScore is the transparent result for one section: the score and
// every input that produced it.
type SectionScore struct {
	Section     string  `json:"section"`
	Score       float64 `json:"score"`
	Empty       bool    `json:"empty"`
	Bullets     int     `json:"bullets"`
	Positives   int     `json:"positives"`
	Negatives   int     `json:"negatives"`
	DetailBonus float64 `json:"detail_bonus"`
}

// ExtractSection returns the trimmed body of the first "## <section>"
// heading (case-insensitive) up to the next "## " heading or the end of the
// document. A missing section yields "".
func ExtractSection(text, section string) string {
	heading := regexp.MustCompile(`(?i)##\s+` + regexp.QuoteMeta(section))
	loc := heading.FindStringIndex(text)
	if loc == nil {
		return ""
	}

	rest := text[loc[1]:]
	if next := strings.Index(rest, "\n## "); next >= 0 {
		rest = rest[:next]
	}
	return strings.TrimSpace(rest)
}

// ScoreSection maps a section body to a score in [MinScore, MaxScore].
//
// An empty section scores EmptyScore. Otherwise the score starts at Baseline,
// gains BulletWeight per "-" bullet line up to BulletCap, and moves by
// KeywordWeight for each positive or negative keyword occurrence. Keywords
// are counted as case-insensitive substrings.
func (c Config) ScoreSection(section, text string) SectionScore {
	result := SectionScore{Section: section}
	if strings.TrimSpace(text) == "" {
		result.Empty = true
		result.Score = c.EmptyScore
		return result
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "-") {
			result.Bullets++
		}
	}
	result.DetailBonus = math.Min(c.BulletCap, c.BulletWeight*float64(result.Bullets))

	lower := strings.ToLower(text)
	result.Positives = countKeywords(lower, c.PositiveKeywords)
	result.Negatives = countKeywords(lower, c.NegativeKeywords)

	raw := c.Baseline +
		c.KeywordWeight*float64(result.Positives) -
		c.KeywordWeight*float64(result.Negatives) +
		result.DetailBonus
	result.Score = math.Max(c.MinScore, math.Min(c.MaxScore, raw))
	return result
}

func countKeywords(lower string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		n += strings.Count(lower, k)
	}
	return n
}

// titleSeparator splits the display name from the rest of the title line.
const titleSeparator = " — "

// ParseTitle returns the text before the em-dash separator on the first "#"
// heading line, or "" when the document has no heading.
func ParseTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimLeft(line, "#"))
		name, _, _ := strings.Cut(line, titleSeparator)
		return strings.TrimSpace(name)
	}
	return ""
}
