// Package prompts builds the instruction text sent to the research and
// synthesis models.
package prompts

import (
	"fmt"
	"strings"
	"time"
)

// FactRecordTemplate is the atomic fact shape requested from research runs.
// Its "- Source:" line is what the ledger's source log is rebuilt from.
const FactRecordTemplate = `### Fact ID: <dimension>-<increment>
- Category: <category>
- Tags: [tag1, tag2]
- Fact: <single factual statement>
- Quote: "<optional quote ≤ 25 words>"
- Source: <publication + URL>
- Accessed: YYYY-MM-DD
- Reliability: 1|2|3
- Notes: <optional context>
`

// System prompts for the three kinds of model call.
const (
	ResearchSystem = "You are a meticulous research analyst tasked with emitting structured raw fact records. " +
		"Follow the templates precisely and ground every statement in the supplied sources."
	InstructionOnlySystem = "You are an autonomous research analyst. Return only the requested " +
		"Markdown structure, citing verifiable sources you know."
	SynthesisSystem = "You are a careful research editor. Output Markdown that follows instructions exactly."
)

// ReliabilityHint explains the reliability codes attached to each source.
const ReliabilityHint = "Reliability codes: 3=official/inspection/government, 2=news or vetted publications, " +
	"1=community/forum/social."

// Guardrails restricts the model to the supplied sources and fixes the
// citation line format.
const Guardrails = "Use ONLY the provided sources. When you cite, reference their Source number and include " +
	`a line like "- Source: <title> (<url>) — Accessed: <date> — Reliability: <code>". ` +
	"Do not invent sources or facts."

// RawFacts builds the research instruction for one school and dimension.
func RawFacts(school, dimension, focus string, today time.Time) string {
	return fmt.Sprintf(`
You are performing deep desk research on **%s** (secondary school in/near London).

DIMENSION: **%s**
FOCUS: %s

TASK:
- Collect ONLY verifiable facts published on or before %s.
- Use the atomic fact format EXACTLY for every fact:

%s
RULES:
- Cite the original source with publication name + URL and include accessed dates.
- Each quote ≤ 25 words.
- No opinions, no recommendations.
- Summarise only when multiple sources align and cite all sources used.
- Include enough metadata to relocate every source.
`, school, strings.ToUpper(dimension), focus, today.UTC().Format("2006-01-02"), FactRecordTemplate)
}

// Evidence builds the synthesis instruction turning a ledger into an
// evidence document with one section per dimension.
func Evidence(school string, dimensions []string, rawText string) string {
	var sections strings.Builder
	for _, d := range dimensions {
		sections.WriteString("## " + d + "\n")
	}

	return fmt.Sprintf(`
You are synthesising the RAW FACTS for **%s** into structured evidence.

RULES:
- Follow the template exactly:

# %s — Evidence

%s
- Each section: 5–15 factual bullet points derived strictly from the raw facts.
- Include short quotes ≤25 words with source + accessed date when helpful.
- No scoring, no recommendations, no speculation.
- Preserve explicit references to sources/dates.

RAW FACTS BELOW (do not quote verbatim unless in a short quote):

"""%s"""
`, school, school, sections.String(), rawText)
}

// WithSources appends the guardrails and the formatted source block to an
// instruction.
func WithSources(instruction, sourceBlock string) string {
	return instruction + "\n\n" + Guardrails + "\n" + ReliabilityHint + "\n\nSOURCES:\n" + sourceBlock
}
