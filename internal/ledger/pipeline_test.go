package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ppiankov/schoolscope/internal/catalog"
	"github.com/ppiankov/schoolscope/internal/markdoc"
	"github.com/ppiankov/schoolscope/internal/model"
	"github.com/ppiankov/schoolscope/internal/workspace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// MockResearcher returns canned text per dimension and records requests.
type MockResearcher struct {
	responses map[string]string
	errs      map[string]error
	requests  []model.ResearchRequest
}

func (m *MockResearcher) Research(ctx context.Context, req model.ResearchRequest) (string, error) {
	m.requests = append(m.requests, req)
	if err := m.errs[req.Dimension]; err != nil {
		return "", err
	}
	return m.responses[req.Dimension], nil
}

var fixedNow = time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)

func newTestPipeline(t *testing.T, r Researcher, logger *zap.Logger) (*Pipeline, workspace.Layout) {
	t.Helper()
	cfg := model.DefaultConfig().Workspace
	cfg.Root = t.TempDir()
	layout := workspace.NewLayout(cfg)

	p := NewPipeline(layout, model.DefaultDimensions(), r, logger)
	p.now = func() time.Time { return fixedNow }
	return p, layout
}

var example = model.School{Name: "Example School", Slug: "example-school", Phase: "secondary"}

func TestRun_CreatesLedgerOnFirstUse(t *testing.T) {
	r := &MockResearcher{responses: map[string]string{
		"academics": "### Fact ID: academics-1\n- Fact: Outstanding inspection.\n- Source: Ofsted report (https://ofsted.gov.uk/x)\n- Source: Ofsted report (https://ofsted.gov.uk/x)\n",
	}}
	p, layout := newTestPipeline(t, r, nil)

	if err := p.Run(context.Background(), example, "Academics"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(layout.RawFile("example-school"))
	if err != nil {
		t.Fatalf("ledger not written: %v", err)
	}
	doc := string(data)

	for _, want := range []string{
		"# Example School — Raw Facts",
		"- slug: example-school",
		"- phase: secondary",
		"- created: 2025-01-15T09:30:00Z",
		"## categories\n- academics\n- arts\n- facilities\n- pastoral\n- commute\n- reputation\n- fit\n",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("ledger missing %q", want)
		}
	}

	facts, err := markdoc.Body(doc, markdoc.Facts)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(facts, "### Dimension Run:") != 1 {
		t.Errorf("expected one fact block, got:\n%s", facts)
	}
	if !strings.HasPrefix(facts, "### Dimension Run: academics — 2025-01-15T09:30:00Z\n\n### Fact ID: academics-1") {
		t.Errorf("unexpected fact block:\n%s", facts)
	}

	sources, err := markdoc.Body(doc, markdoc.SourceLog)
	if err != nil {
		t.Fatal(err)
	}
	if sources != "- Ofsted report (https://ofsted.gov.uk/x)" {
		t.Errorf("unexpected source log %q", sources)
	}

	if len(r.requests) != 1 {
		t.Fatalf("expected one research request, got %d", len(r.requests))
	}
	req := r.requests[0]
	if req.Topic != "Example School — academics" || req.School != "Example School" || req.Dimension != "academics" {
		t.Errorf("unexpected request %+v", req)
	}
	if !strings.Contains(req.Instruction, "DIMENSION: **ACADEMICS**") {
		t.Error("instruction should name the dimension")
	}
}

func TestRun_AppendsAndResyncsSources(t *testing.T) {
	r := &MockResearcher{responses: map[string]string{
		"academics": "- Source: Zeta (z.com)\n",
		"arts":      "- Source: Alpha (a.com)\n- Source: Zeta (z.com)\n",
	}}
	p, layout := newTestPipeline(t, r, nil)
	ctx := context.Background()

	for _, d := range []string{"academics", "arts"} {
		if err := p.Run(ctx, example, d); err != nil {
			t.Fatalf("Run(%s) failed: %v", d, err)
		}
	}

	path := layout.RawFile(example.Slug)
	data, _ := os.ReadFile(path)
	doc := string(data)

	facts, _ := markdoc.Body(doc, markdoc.Facts)
	blocks := strings.Split(facts, "\n\n### Dimension Run: ")
	if len(blocks) != 2 {
		t.Fatalf("expected 2 fact blocks, got %d:\n%s", len(blocks), facts)
	}
	if !strings.HasPrefix(blocks[1], "arts") {
		t.Errorf("second block should be arts, got %q", blocks[1])
	}

	sources, _ := markdoc.Body(doc, markdoc.SourceLog)
	if diff := cmp.Diff("- Alpha (a.com)\n- Zeta (z.com)", sources); diff != "" {
		t.Errorf("source log mismatch (-want +got):\n%s", diff)
	}

	// A second refresh over unchanged text leaves the document as it is.
	if err := RefreshSourceLog(path); err != nil {
		t.Fatal(err)
	}
	again, _ := os.ReadFile(path)
	if string(again) != doc {
		t.Error("RefreshSourceLog is not idempotent")
	}
}

func TestRun_NeverOverwritesExistingLedger(t *testing.T) {
	r := &MockResearcher{responses: map[string]string{"fit": "note"}}
	p, layout := newTestPipeline(t, r, nil)
	if err := layout.EnsureDirs(); err != nil {
		t.Fatal(err)
	}

	existing := Template(example, []string{"academics"}, "2020-01-01T00:00:00Z")
	path := layout.RawFile(example.Slug)
	if err := os.WriteFile(path, []byte(existing), 0644); err != nil {
		t.Fatal(err)
	}

	if err := p.Run(context.Background(), example, "fit"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	doc := string(data)
	if !strings.Contains(doc, "- created: 2020-01-01T00:00:00Z") {
		t.Error("metadata was rewritten")
	}
	if !strings.Contains(doc, "## categories\n- academics\n\n") {
		t.Error("categories were resynced")
	}
}

func TestEnsureLedger_ConcurrentCreatesCompleteTemplate(t *testing.T) {
	p, layout := newTestPipeline(t, &MockResearcher{}, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			path, err := p.ensureLedger(example)
			if err != nil {
				errs <- err
				return
			}
			// Every caller sees a ledger with its markers in place.
			if _, err := markdoc.Body(readFile(t, path), markdoc.Facts); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("ensureLedger: %v", err)
	}

	path := layout.RawFile(example.Slug)
	want := Template(example, model.DimensionNames(model.DefaultDimensions()), fixedNow.Format(time.RFC3339))
	if got := readFile(t, path); got != want {
		t.Errorf("ledger differs from template:\n%s", cmp.Diff(want, got))
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o644 {
		t.Errorf("ledger mode = %o, want 644", perm)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".raw-") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("read %s: %v", path, err)
	}
	return string(data)
}

func TestRun_UnknownDimensionFailsBeforeIO(t *testing.T) {
	r := &MockResearcher{}
	p, layout := newTestPipeline(t, r, nil)

	err := p.Run(context.Background(), example, "sport")
	if !errors.Is(err, catalog.ErrUnknownDimension) {
		t.Fatalf("expected ErrUnknownDimension, got %v", err)
	}
	if workspace.Exists(layout.RawFile(example.Slug)) {
		t.Error("ledger must not be created for an unknown dimension")
	}
	if _, err := os.Stat(layout.RawDir); !os.IsNotExist(err) {
		t.Error("no directories should be created for an unknown dimension")
	}
	if len(r.requests) != 0 {
		t.Error("research must not be requested")
	}
}

func TestRun_ProviderErrors(t *testing.T) {
	boom := errors.New("provider down")
	r := &MockResearcher{
		responses: map[string]string{"arts": "  \n "},
		errs:      map[string]error{"academics": boom},
	}
	p, layout := newTestPipeline(t, r, nil)
	ctx := context.Background()

	if err := p.Run(ctx, example, "academics"); !errors.Is(err, boom) {
		t.Errorf("expected provider error, got %v", err)
	}
	if err := p.Run(ctx, example, "arts"); !errors.Is(err, ErrEmptyResearch) {
		t.Errorf("expected ErrEmptyResearch, got %v", err)
	}

	data, _ := os.ReadFile(layout.RawFile(example.Slug))
	facts, _ := markdoc.Body(string(data), markdoc.Facts)
	if facts != "" {
		t.Errorf("failed runs must not append facts, got %q", facts)
	}
}

func TestRunAll_ContinuesPastFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := &MockResearcher{
		responses: map[string]string{"academics": "- Source: A (a.com)", "fit": "- Source: F (f.com)"},
		errs:      map[string]error{"arts": errors.New("timeout")},
	}
	p, layout := newTestPipeline(t, r, zap.New(core))

	other := model.School{Name: "Other Academy", Slug: "other-academy"}
	outcomes := p.RunAll(context.Background(), []model.School{example, other}, []string{"academics", "arts", "fit"})

	if len(outcomes) != 6 {
		t.Fatalf("expected 6 outcomes, got %d", len(outcomes))
	}
	if n := model.CountFailures(outcomes); n != 2 {
		t.Errorf("expected 2 failures, got %d", n)
	}
	for _, o := range outcomes {
		if (o.Unit == "arts") != o.Failed() {
			t.Errorf("unexpected outcome %+v", o)
		}
	}

	warnings := logs.FilterMessage("Research unit failed").All()
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(warnings))
	}
	fields := warnings[0].ContextMap()
	if fields["school"] != "Example School" || fields["dimension"] != "arts" {
		t.Errorf("warning should identify the unit, got %v", fields)
	}

	for _, s := range []model.School{example, other} {
		data, err := os.ReadFile(layout.RawFile(s.Slug))
		if err != nil {
			t.Fatalf("ledger for %s missing: %v", s.Slug, err)
		}
		sources, _ := markdoc.Body(string(data), markdoc.SourceLog)
		if sources != "- A (a.com)\n- F (f.com)" {
			t.Errorf("%s: unexpected source log %q", s.Slug, sources)
		}
	}
}

func TestRunSchool_StopsOnCancel(t *testing.T) {
	r := &MockResearcher{responses: map[string]string{"academics": "x", "arts": "y"}}
	p, _ := newTestPipeline(t, r, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := p.RunSchool(ctx, example, []string{"academics", "arts"})
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	for _, o := range outcomes {
		if !errors.Is(o.Err, context.Canceled) {
			t.Errorf("expected cancellation, got %v", o.Err)
		}
	}
	if len(r.requests) != 0 {
		t.Error("no research should run after cancellation")
	}
}

func TestTemplate_HasEachRegionOnce(t *testing.T) {
	doc := Template(example, []string{"academics"}, "now")
	for _, r := range []markdoc.Region{markdoc.SourceLog, markdoc.Quotes, markdoc.Facts} {
		if body, err := markdoc.Body(doc, r); err != nil || body != "" {
			t.Errorf("region %s: body=%q err=%v", r.Start, body, err)
		}
	}
	if !strings.Contains(Template(model.School{Name: "X", Slug: "x"}, nil, "now"), "- phase: n/a") {
		t.Error("missing phase should render as n/a")
	}
}
