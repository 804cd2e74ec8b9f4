// Package synth turns a school's raw-facts ledger into its curated evidence
// document, one section per dimension.
package synth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/schoolscope/internal/llm"
	"github.com/ppiankov/schoolscope/internal/model"
	"github.com/ppiankov/schoolscope/internal/prompts"
	"github.com/ppiankov/schoolscope/internal/workspace"
	"go.uber.org/zap"
)

var (
	ErrLedgerMissing = errors.New("raw file missing")
	ErrNoProvider    = errors.New("no LLM provider configured")
)

// Builder writes evidence documents from ledgers.
type Builder struct {
	layout     workspace.Layout
	dimensions []string
	provider   llm.Provider
	model      string
	logger     *zap.Logger
}

// NewBuilder creates a Builder. model may be empty to use the provider's
// configured model.
func NewBuilder(layout workspace.Layout, dimensions []string, provider llm.Provider, model string, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		layout:     layout,
		dimensions: dimensions,
		provider:   provider,
		model:      model,
		logger:     logger,
	}
}

// BuildSchool synthesises and overwrites one school's evidence document and
// returns the text written.
func (b *Builder) BuildSchool(ctx context.Context, school model.School) (string, error) {
	rawPath := b.layout.RawFile(school.Slug)
	raw, err := os.ReadFile(rawPath)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w for %s: %s", ErrLedgerMissing, school.Name, rawPath)
	}
	if err != nil {
		return "", fmt.Errorf("read ledger: %w", err)
	}
	if b.provider == nil {
		return "", ErrNoProvider
	}

	b.logger.Info("Building evidence", zap.String("school", school.Name))
	resp, err := b.provider.Complete(ctx, llm.CompletionRequest{
		System: prompts.SynthesisSystem,
		Prompt: prompts.Evidence(school.Name, b.dimensions, string(raw)),
		Model:  b.model,
	})
	if err != nil {
		return "", fmt.Errorf("synthesise %s: %w", school.Slug, err)
	}

	text := Normalize(school.Name, b.dimensions, resp.Text)

	if err := b.layout.EnsureDirs(); err != nil {
		return "", err
	}
	path := b.layout.EvidenceFile(school.Slug)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("write evidence: %w", err)
	}

	b.logger.Info("Wrote evidence file", zap.String("school", school.Name), zap.String("path", path))
	return text, nil
}

// BuildAll builds every school's evidence in order. Failures are logged and
// the remaining schools still run.
func (b *Builder) BuildAll(ctx context.Context, schools []model.School) []model.Outcome {
	outcomes := make([]model.Outcome, 0, len(schools))
	for _, school := range schools {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, model.Outcome{School: school.Slug, Unit: "evidence", Err: err})
			continue
		}

		_, err := b.BuildSchool(ctx, school)
		if err != nil {
			b.logger.Warn("Skipping evidence build", zap.String("school", school.Name), zap.Error(err))
		}
		outcomes = append(outcomes, model.Outcome{School: school.Slug, Unit: "evidence", Err: err})
	}
	return outcomes
}

// Normalize makes a model answer a well-formed evidence document: a title
// heading is prepended when the text does not start with one, and every
// dimension lacking a "## <dimension>" heading line gets an empty section
// appended. Headings already present are matched case-insensitively and
// never duplicated. The result ends in exactly one newline.
func Normalize(name string, dimensions []string, text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "#") {
		text = "# " + name + " — Evidence\n\n" + text
	}

	present := headings(text)
	for _, d := range dimensions {
		if !present[strings.ToLower(d)] {
			text += "\n\n## " + d + "\n"
		}
	}
	return strings.TrimSpace(text) + "\n"
}

// headings returns the lower-cased titles of the "## " heading lines in text.
func headings(text string) map[string]bool {
	found := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "## ") {
			continue
		}
		found[strings.ToLower(strings.TrimSpace(line[3:]))] = true
	}
	return found
}
