package worker

import (
	"context"

	"github.com/ppiankov/schoolscope/internal/model"
)

// SchoolRunner processes every requested dimension of one school.
type SchoolRunner interface {
	RunSchool(ctx context.Context, school model.School, dimensions []string) []model.Outcome
}

// SchoolJob runs one school. A school is never split across jobs and callers
// pass each school once, so no two workers write the same school's documents.
type SchoolJob struct {
	Index      int
	School     model.School
	Dimensions []string
	Runner     SchoolRunner
}

// Execute executes the school job
func (j *SchoolJob) Execute(ctx context.Context) Result {
	return &SchoolResult{
		Index:    j.Index,
		School:   j.School,
		Outcomes: j.Runner.RunSchool(ctx, j.School, j.Dimensions),
	}
}

// SchoolResult is the outcome list of one school job
type SchoolResult struct {
	Index    int
	School   model.School
	Outcomes []model.Outcome
}

// GetError returns the first failed unit's error, if any
func (r *SchoolResult) GetError() error {
	for _, o := range r.Outcomes {
		if o.Err != nil {
			return o.Err
		}
	}
	return nil
}

// BatchProcessor runs schools concurrently
type BatchProcessor struct {
	runner      SchoolRunner
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(runner SchoolRunner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
	}
}

// Process runs every school through the runner and returns all outcomes,
// grouped by school in input order.
func (b *BatchProcessor) Process(ctx context.Context, schools []model.School, dimensions []string) []model.Outcome {
	if len(schools) == 0 {
		return []model.Outcome{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, school := range schools {
		pool.Submit(&SchoolJob{
			Index:      i,
			School:     school,
			Dimensions: dimensions,
			Runner:     b.runner,
		})
	}

	byIndex := make([][]model.Outcome, len(schools))
	for _, r := range pool.Wait() {
		res := r.(*SchoolResult)
		byIndex[res.Index] = res.Outcomes
	}

	var outcomes []model.Outcome
	for i, school := range schools {
		if byIndex[i] == nil {
			// Dropped before it ran: the context was cancelled.
			byIndex[i] = cancelledOutcomes(ctx, school, dimensions)
		}
		outcomes = append(outcomes, byIndex[i]...)
	}
	return outcomes
}

func cancelledOutcomes(ctx context.Context, school model.School, dimensions []string) []model.Outcome {
	err := ctx.Err()
	if err == nil {
		err = context.Canceled
	}
	out := make([]model.Outcome, len(dimensions))
	for i, d := range dimensions {
		out[i] = model.Outcome{School: school.Slug, Unit: d, Err: err}
	}
	return out
}
