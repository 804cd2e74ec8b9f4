package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/schoolscope/internal/model"
)

func TestNewLayout_ResolvesAgainstRoot(t *testing.T) {
	cfg := model.DefaultConfig().Workspace
	cfg.Root = "/srv/schools"
	cfg.GridFile = "/abs/grid.md"

	l := NewLayout(cfg)

	if got := l.RawFile("example-school"); got != "/srv/schools/raw/example-school-raw.md" {
		t.Errorf("RawFile = %s", got)
	}
	if got := l.EvidenceFile("example-school"); got != "/srv/schools/evidence/example-school.md" {
		t.Errorf("EvidenceFile = %s", got)
	}
	if l.TableFile != "/srv/schools/data/schools.csv" {
		t.Errorf("TableFile = %s", l.TableFile)
	}
	if l.GridFile != "/abs/grid.md" {
		t.Errorf("GridFile = %s", l.GridFile)
	}
}

func TestEnsureDirs(t *testing.T) {
	cfg := model.DefaultConfig().Workspace
	cfg.Root = t.TempDir()
	l := NewLayout(cfg)

	if err := l.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}

	for _, dir := range []string{l.RawDir, l.EvidenceDir, filepath.Dir(l.TableFile), filepath.Dir(l.GridFile)} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %s", dir)
		}
	}
	if Exists(l.GridFile) {
		t.Error("grid document must not be created")
	}
	if Exists(l.RawDir) {
		t.Error("Exists should be false for directories")
	}
}
