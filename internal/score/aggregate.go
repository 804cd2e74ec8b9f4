// Package score turns curated evidence documents into per-dimension scores
// and a ranked, weighted table.
package score

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/ppiankov/schoolscope/internal/model"
	"github.com/ppiankov/schoolscope/internal/table"
	"github.com/ppiankov/schoolscope/internal/workspace"
	"go.uber.org/zap"
)

// ErrEvidenceMissing is returned when a school has no evidence document.
var ErrEvidenceMissing = errors.New("evidence file missing")

// Aggregator scores schools from their evidence documents.
type Aggregator struct {
	cfg    Config
	layout workspace.Layout
	logger *zap.Logger
}

// NewAggregator validates cfg and returns an Aggregator over it.
func NewAggregator(cfg Config, layout workspace.Layout, logger *zap.Logger) (*Aggregator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{cfg: cfg, layout: layout, logger: logger}, nil
}

// Breakdown is a scored row together with its per-section details.
type Breakdown struct {
	Row      model.ScoreRow
	Sections []SectionScore
}

// ScoreText scores an evidence document's text for a school. The row's
// display name comes from the document title, falling back to the
// configured name.
func (a *Aggregator) ScoreText(school model.School, text string) Breakdown {
	name := ParseTitle(text)
	if name == "" {
		name = school.Name
	}

	row := model.ScoreRow{
		School: name,
		Slug:   school.Slug,
		Scores: make(map[string]float64, len(a.cfg.Dimensions)),
	}
	sections := make([]SectionScore, 0, len(a.cfg.Dimensions))

	overall := 0.0
	for _, d := range a.cfg.Dimensions {
		s := a.cfg.ScoreSection(d.Name, ExtractSection(text, d.Name))
		sections = append(sections, s)
		row.Scores[d.Name] = s.Score
		overall += float64(d.Weight * s.Score) // no fused multiply-add
	}
	row.Overall = round2(overall)

	return Breakdown{Row: row, Sections: sections}
}

// ScoreSchool reads and scores one school's evidence document.
func (a *Aggregator) ScoreSchool(school model.School) (Breakdown, error) {
	path := a.layout.EvidenceFile(school.Slug)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Breakdown{}, fmt.Errorf("%w for %s: %s", ErrEvidenceMissing, school.Name, path)
	}
	if err != nil {
		return Breakdown{}, fmt.Errorf("read evidence: %w", err)
	}
	return a.ScoreText(school, string(data)), nil
}

// Rank scores every school and sorts the rows by Overall, highest first.
// Schools that cannot be scored are logged and left out. The sort is stable:
// equal Overall values keep the order in which schools were given.
func (a *Aggregator) Rank(schools []model.School) ([]model.ScoreRow, []model.Outcome) {
	rows := make([]model.ScoreRow, 0, len(schools))
	outcomes := make([]model.Outcome, 0, len(schools))

	for _, school := range schools {
		b, err := a.ScoreSchool(school)
		outcomes = append(outcomes, model.Outcome{School: school.Slug, Unit: "score", Err: err})
		if err != nil {
			a.logger.Warn("Skipping school", zap.String("school", school.Name), zap.Error(err))
			continue
		}
		a.logger.Info("Scored school",
			zap.String("school", school.Name),
			zap.Float64("overall", b.Row.Overall))
		rows = append(rows, b.Row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Overall > rows[j].Overall
	})
	return rows, outcomes
}

// ScoreAll ranks the schools and rewrites the table file. When no school
// could be scored the table is left untouched and no rows are returned.
func (a *Aggregator) ScoreAll(schools []model.School) ([]model.ScoreRow, []model.Outcome, error) {
	rows, outcomes := a.Rank(schools)
	if len(rows) == 0 {
		a.logger.Warn("No evidence files found; skipping table generation",
			zap.String("path", a.layout.TableFile))
		return nil, outcomes, nil
	}

	if err := a.layout.EnsureDirs(); err != nil {
		return nil, outcomes, err
	}
	if err := table.Write(a.layout.TableFile, a.cfg.Dimensions, rows); err != nil {
		return nil, outcomes, err
	}

	a.logger.Info("Wrote score table", zap.String("path", a.layout.TableFile), zap.Int("rows", len(rows)))
	return rows, outcomes, nil
}

// round2 rounds the exact binary value of v to two decimals. Scaling by 100
// first would turn 3.92499999... into 3.93.
func round2(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}
