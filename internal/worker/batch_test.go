package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/schoolscope/internal/model"
)

// MockRunner records which schools ran and fails the ones listed.
type MockRunner struct {
	mu      sync.Mutex
	ran     []string
	failing map[string]bool
}

func (m *MockRunner) RunSchool(ctx context.Context, school model.School, dims []string) []model.Outcome {
	// Later schools finish first so completion order differs from input order.
	time.Sleep(time.Duration(10-len(m.snapshot())) * time.Millisecond)

	m.mu.Lock()
	m.ran = append(m.ran, school.Slug)
	m.mu.Unlock()

	out := make([]model.Outcome, len(dims))
	for i, d := range dims {
		var err error
		if m.failing[school.Slug] {
			err = errors.New("provider down")
		}
		out[i] = model.Outcome{School: school.Slug, Unit: d, Err: err}
	}
	return out
}

func (m *MockRunner) snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ran...)
}

func schools(slugs ...string) []model.School {
	out := make([]model.School, len(slugs))
	for i, s := range slugs {
		out[i] = model.School{Name: s, Slug: s}
	}
	return out
}

func TestBatchProcessor_Process(t *testing.T) {
	runner := &MockRunner{failing: map[string]bool{"b": true}}
	processor := NewBatchProcessor(runner, 3)

	outcomes := processor.Process(context.Background(), schools("a", "b", "c", "d"), []string{"academics", "fit"})

	if len(outcomes) != 8 {
		t.Fatalf("expected 8 outcomes, got %d", len(outcomes))
	}
	want := []string{"a", "a", "b", "b", "c", "c", "d", "d"}
	for i, o := range outcomes {
		if o.School != want[i] {
			t.Errorf("outcome %d: school %s, want %s", i, o.School, want[i])
		}
	}
	if n := model.CountFailures(outcomes); n != 2 {
		t.Errorf("expected 2 failures, got %d", n)
	}
	if len(runner.snapshot()) != 4 {
		t.Errorf("every school should run once, got %v", runner.snapshot())
	}
}

func TestBatchProcessor_Process_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockRunner{}, 2)
	if outcomes := processor.Process(context.Background(), nil, []string{"fit"}); len(outcomes) != 0 {
		t.Errorf("expected no outcomes, got %d", len(outcomes))
	}
}

func TestBatchProcessor_Process_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewBatchProcessor(&MockRunner{}, 1)
	outcomes := processor.Process(ctx, schools("a", "b", "c"), []string{"arts"})

	if len(outcomes) != 3 {
		t.Fatalf("every school needs an outcome, got %d", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Err != nil && !errors.Is(o.Err, context.Canceled) {
			t.Errorf("unexpected error %v", o.Err)
		}
	}
}

func TestSchoolResult_GetError(t *testing.T) {
	boom := errors.New("boom")
	r := &SchoolResult{Outcomes: []model.Outcome{{Unit: "arts"}, {Unit: "fit", Err: boom}}}
	if !errors.Is(r.GetError(), boom) {
		t.Errorf("expected first failure, got %v", r.GetError())
	}
	if (&SchoolResult{}).GetError() != nil {
		t.Error("empty result should have no error")
	}
}
