// Package ledger maintains the per-school raw-facts documents: it creates
// them from a template, appends each research run to the fact records and
// rebuilds the source log from every citation in the document.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/schoolscope/internal/catalog"
	"github.com/ppiankov/schoolscope/internal/extract"
	"github.com/ppiankov/schoolscope/internal/markdoc"
	"github.com/ppiankov/schoolscope/internal/model"
	"github.com/ppiankov/schoolscope/internal/prompts"
	"github.com/ppiankov/schoolscope/internal/workspace"
	"go.uber.org/zap"
)

// ErrEmptyResearch is returned when the research provider answers with no text.
var ErrEmptyResearch = errors.New("research provider returned no text")

// Researcher produces research text for one school and dimension. The text
// may embed "- Source: ..." citation lines.
type Researcher interface {
	Research(ctx context.Context, req model.ResearchRequest) (string, error)
}

// Pipeline updates ledger documents. A Pipeline must be the only writer of
// a given school's ledger at any time; it does no locking of its own.
type Pipeline struct {
	layout     workspace.Layout
	dimensions []model.Dimension
	researcher Researcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewPipeline creates a ledger pipeline over the given dimension catalog.
func NewPipeline(layout workspace.Layout, dimensions []model.Dimension, researcher Researcher, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		layout:     layout,
		dimensions: dimensions,
		researcher: researcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Run performs one research pass for a school and dimension and records it
// in the school's ledger.
func (p *Pipeline) Run(ctx context.Context, school model.School, dimension string) error {
	dimension = strings.ToLower(strings.TrimSpace(dimension))
	dim, ok := model.FindDimension(p.dimensions, dimension)
	if !ok {
		return fmt.Errorf("%w: %s", catalog.ErrUnknownDimension, dimension)
	}

	path, err := p.ensureLedger(school)
	if err != nil {
		return err
	}

	p.logger.Info("Running research",
		zap.String("school", school.Name),
		zap.String("dimension", dim.Name))

	text, err := p.researcher.Research(ctx, model.ResearchRequest{
		Topic:       school.Name + " — " + dim.Name,
		Instruction: prompts.RawFacts(school.Name, dim.Name, dim.Focus, p.now()),
		School:      school.Name,
		Dimension:   dim.Name,
		Focus:       dim.Focus,
	})
	if err != nil {
		return fmt.Errorf("research %s/%s: %w", school.Slug, dim.Name, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("research %s/%s: %w", school.Slug, dim.Name, ErrEmptyResearch)
	}

	block := fmt.Sprintf("### Dimension Run: %s — %s\n\n%s\n", dim.Name, p.timestamp(), text)
	if err := markdoc.AppendFile(path, markdoc.Facts, block); err != nil {
		return fmt.Errorf("append facts: %w", err)
	}

	if err := RefreshSourceLog(path); err != nil {
		return err
	}

	p.logger.Info("Updated raw facts",
		zap.String("school", school.Name),
		zap.String("dimension", dim.Name),
		zap.String("path", path))
	return nil
}

// RunSchool runs every listed dimension for one school in order. A failed
// dimension is logged and the remaining ones still run. Once ctx is done the
// rest are recorded as cancelled without being attempted.
func (p *Pipeline) RunSchool(ctx context.Context, school model.School, dimensions []string) []model.Outcome {
	outcomes := make([]model.Outcome, 0, len(dimensions))
	for _, dimension := range dimensions {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, model.Outcome{School: school.Slug, Unit: dimension, Err: err})
			continue
		}

		err := p.Run(ctx, school, dimension)
		if err != nil {
			p.logger.Warn("Research unit failed",
				zap.String("school", school.Name),
				zap.String("dimension", dimension),
				zap.Error(err))
		}
		outcomes = append(outcomes, model.Outcome{School: school.Slug, Unit: dimension, Err: err})
	}
	return outcomes
}

// RunAll runs RunSchool for each school in order.
func (p *Pipeline) RunAll(ctx context.Context, schools []model.School, dimensions []string) []model.Outcome {
	var outcomes []model.Outcome
	for _, school := range schools {
		outcomes = append(outcomes, p.RunSchool(ctx, school, dimensions)...)
	}
	return outcomes
}

// RefreshSourceLog rebuilds the source-log region of a ledger from every
// citation currently present in the document.
func RefreshSourceLog(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}

	body := extract.CitationLines(extract.Citations(string(data)))
	if err := markdoc.ReplaceFile(path, markdoc.SourceLog, body); err != nil {
		return fmt.Errorf("refresh source log: %w", err)
	}
	return nil
}

// ensureLedger creates the school's ledger from the template unless it
// already exists, and returns its path. The template is written to a
// temporary file and linked into place, so the ledger never exists without
// its markers.
func (p *Pipeline) ensureLedger(school model.School) (string, error) {
	if err := p.layout.EnsureDirs(); err != nil {
		return "", err
	}

	path := p.layout.RawFile(school.Slug)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".raw-*.md")
	if err != nil {
		return "", fmt.Errorf("create ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	doc := Template(school, model.DimensionNames(p.dimensions), p.timestamp())
	if _, err := tmp.WriteString(doc); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write ledger template: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("chmod ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close ledger: %w", err)
	}

	if err := os.Link(tmp.Name(), path); err != nil {
		if errors.Is(err, os.ErrExist) {
			return path, nil
		}
		return "", fmt.Errorf("create ledger: %w", err)
	}

	p.logger.Info("Created raw template", zap.String("school", school.Name), zap.String("path", path))
	return path, nil
}

func (p *Pipeline) timestamp() string {
	return p.now().UTC().Format(time.RFC3339)
}
