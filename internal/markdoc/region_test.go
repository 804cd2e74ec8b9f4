package markdoc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const gridDoc = `# Scoring grid

Intro paragraph that must survive.

| School | Overall |
|---|---|
<!-- GRID:BEGIN -->
| old | row |
<!-- GRID:END -->

Footer text.
`

func TestReplace_PreservesOutsideContent(t *testing.T) {
	got, err := Replace(gridDoc, Grid, "| new | row |\n| second | row |")
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	prefix := gridDoc[:strings.Index(gridDoc, Grid.Start)]
	suffix := gridDoc[strings.Index(gridDoc, Grid.End)+len(Grid.End):]

	if !strings.HasPrefix(got, prefix) {
		t.Errorf("content before the start marker changed:\n%s", got)
	}
	if !strings.HasSuffix(got, suffix) {
		t.Errorf("content after the end marker changed:\n%s", got)
	}

	want := prefix + "<!-- GRID:BEGIN -->\n| new | row |\n| second | row |\n<!-- GRID:END -->" + suffix
	if got != want {
		t.Errorf("unexpected document:\n%s\nwant:\n%s", got, want)
	}
}

func TestReplace_EmptyBody(t *testing.T) {
	got, err := Replace("a\n<!-- GRID:BEGIN -->\nx\n<!-- GRID:END -->\nb", Grid, "   \n ")
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	want := "a\n<!-- GRID:BEGIN -->\n\n<!-- GRID:END -->\nb"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReplace_Idempotent(t *testing.T) {
	once, err := Replace(gridDoc, Grid, "| a |")
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	twice, err := Replace(once, Grid, "| a |")
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if once != twice {
		t.Errorf("second Replace changed the document:\n%s\n---\n%s", once, twice)
	}
}

func TestAppend_AccumulatesInOrder(t *testing.T) {
	doc := "head\n<!-- FACTS:BEGIN -->\n<!-- FACTS:END -->\ntail\n"

	var err error
	for i := 1; i <= 4; i++ {
		doc, err = Append(doc, Facts, fmt.Sprintf("  block %d\nline  \n", i))
		if err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	body, err := Body(doc, Facts)
	if err != nil {
		t.Fatalf("Body failed: %v", err)
	}
	want := "block 1\nline\n\nblock 2\nline\n\nblock 3\nline\n\nblock 4\nline"
	if body != want {
		t.Errorf("region body = %q, want %q", body, want)
	}
	if !strings.HasPrefix(doc, "head\n") || !strings.HasSuffix(doc, "\ntail\n") {
		t.Errorf("outside content changed: %q", doc)
	}
}

func TestAppend_EmptyRegionHasNoLeadingBlankLine(t *testing.T) {
	got, err := Append("<!-- FACTS:BEGIN -->\n\n\n<!-- FACTS:END -->", Facts, "first")
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if got != "<!-- FACTS:BEGIN -->\nfirst\n<!-- FACTS:END -->" {
		t.Errorf("unexpected document %q", got)
	}
}

func TestMarkers_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing both", "nothing here"},
		{"missing end", "<!-- GRID:BEGIN -->\nx"},
		{"missing start", "x\n<!-- GRID:END -->"},
		{"reversed", "<!-- GRID:END -->\nx\n<!-- GRID:BEGIN -->"},
		{"duplicate start", "<!-- GRID:BEGIN -->\n<!-- GRID:BEGIN -->\n<!-- GRID:END -->"},
		{"duplicate pair", "<!-- GRID:BEGIN -->\n<!-- GRID:END -->\n<!-- GRID:BEGIN -->\n<!-- GRID:END -->"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Replace(tt.doc, Grid, "body"); !errors.Is(err, ErrMarkers) {
				t.Errorf("Replace: expected ErrMarkers, got %v", err)
			}
			if _, err := Append(tt.doc, Grid, "body"); !errors.Is(err, ErrMarkers) {
				t.Errorf("Append: expected ErrMarkers, got %v", err)
			}
			var merr *MarkerError
			if _, err := Body(tt.doc, Grid); !errors.As(err, &merr) {
				t.Errorf("Body: expected *MarkerError, got %v", err)
			}
		})
	}
}

func TestEdit_RejectsMarkerText(t *testing.T) {
	ledger := "<!-- SOURCE-LOG:BEGIN -->\n<!-- SOURCE-LOG:END -->\n\n<!-- FACTS:BEGIN -->\n<!-- FACTS:END -->\n"

	tests := []struct {
		name string
		edit func() (string, error)
	}{
		{"append other region end", func() (string, error) {
			return Append(ledger, Facts, "- fact\n<!-- SOURCE-LOG:END -->\n- more")
		}},
		{"replace own end", func() (string, error) {
			return Replace(ledger, Facts, Facts.End+"\nx")
		}},
		{"append own start", func() (string, error) {
			return Append(ledger, Facts, "x "+Facts.Start)
		}},
		{"replace unrelated region marker", func() (string, error) {
			return Replace(ledger, SourceLog, Grid.Start)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.edit()
			var merr *MarkerError
			if !errors.As(err, &merr) {
				t.Fatalf("expected *MarkerError, got %v (doc %q)", err, got)
			}
			if got != "" {
				t.Errorf("expected no document on error, got %q", got)
			}
		})
	}

	// The ledger stays editable after a rejected append.
	if _, err := Replace(ledger, SourceLog, "- a"); err != nil {
		t.Errorf("Replace after rejected edit: %v", err)
	}
}

func TestAppendFile_NoWriteOnMarkerText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.md")
	original := "<!-- SOURCE-LOG:BEGIN -->\n<!-- SOURCE-LOG:END -->\n<!-- FACTS:BEGIN -->\n<!-- FACTS:END -->\n"
	if err := os.WriteFile(path, []byte(original), 0644); err != nil {
		t.Fatal(err)
	}

	if err := AppendFile(path, Facts, "see <!-- SOURCE-LOG:END -->"); !errors.Is(err, ErrMarkers) {
		t.Fatalf("expected ErrMarkers, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != original {
		t.Errorf("file was modified: %q", data)
	}
}

func TestReplaceFile_NoWriteOnMarkerError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	original := "no markers at all\n"
	if err := os.WriteFile(path, []byte(original), 0644); err != nil {
		t.Fatal(err)
	}

	if err := ReplaceFile(path, Grid, "body"); !errors.Is(err, ErrMarkers) {
		t.Fatalf("expected ErrMarkers, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != original {
		t.Errorf("file was modified: %q", data)
	}
}

func TestAppendFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.md")
	doc := "# Ledger\n\n<!-- FACTS:BEGIN -->\n<!-- FACTS:END -->\n"
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatal(err)
	}

	if err := AppendFile(path, Facts, "one"); err != nil {
		t.Fatalf("AppendFile failed: %v", err)
	}
	if err := AppendFile(path, Facts, "two"); err != nil {
		t.Fatalf("AppendFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "# Ledger\n\n<!-- FACTS:BEGIN -->\none\n\ntwo\n<!-- FACTS:END -->\n"
	if string(data) != want {
		t.Errorf("got %q, want %q", data, want)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("file mode changed to %v", info.Mode().Perm())
	}
}

func TestReplaceFile_MissingFile(t *testing.T) {
	err := ReplaceFile(filepath.Join(t.TempDir(), "missing.md"), Grid, "x")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}
