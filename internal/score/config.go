package score

import (
	"errors"
	"fmt"
	"math"

	"github.com/ppiankov/schoolscope/internal/model"
)

// Config holds every constant of the scoring heuristic. Scores are only
// comparable with earlier runs when these values are unchanged.
type Config struct {
	Dimensions []model.Dimension

	PositiveKeywords []string
	NegativeKeywords []string

	Baseline      float64 // starting score for a non-empty section
	EmptyScore    float64 // score of a missing or empty section
	MinScore      float64
	MaxScore      float64
	KeywordWeight float64 // per positive (+) or negative (-) keyword hit
	BulletWeight  float64 // per bullet line
	BulletCap     float64 // upper bound of the bullet bonus
}

// DefaultConfig returns the calibrated heuristic over the built-in catalog.
func DefaultConfig() Config {
	return Config{
		Dimensions: model.DefaultDimensions(),
		PositiveKeywords: []string{
			"excellent", "strong", "outstanding", "award", "scholar", "improved",
			"improving", "leading", "top", "high", "notable",
		},
		NegativeKeywords: []string{
			"concern", "weak", "decline", "issue", "warning", "limited",
			"below", "poor", "criticism", "challenge",
		},
		Baseline:      3.0,
		EmptyScore:    1.0,
		MinScore:      1.0,
		MaxScore:      5.0,
		KeywordWeight: 0.25,
		BulletWeight:  0.05,
		BulletCap:     0.5,
	}
}

// WithDimensions returns a copy of c scoring the given catalog.
func (c Config) WithDimensions(dims []model.Dimension) Config {
	c.Dimensions = append([]model.Dimension(nil), dims...)
	return c
}

const weightTolerance = 1e-9

// Validate checks that the catalog is usable: at least one dimension, no
// negative weights, weights summing to 1.0, and a sane score range.
func (c Config) Validate() error {
	if len(c.Dimensions) == 0 {
		return errors.New("scoring config has no dimensions")
	}
	if c.MinScore > c.MaxScore {
		return fmt.Errorf("score range inverted: [%v, %v]", c.MinScore, c.MaxScore)
	}

	sum := 0.0
	for _, d := range c.Dimensions {
		if d.Weight < 0 {
			return fmt.Errorf("dimension %s has negative weight %v", d.Name, d.Weight)
		}
		sum += d.Weight
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("dimension weights sum to %v, want 1.0", sum)
	}
	return nil
}
