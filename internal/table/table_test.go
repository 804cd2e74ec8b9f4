package table

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ppiankov/schoolscope/internal/model"
)

func TestFormatScore(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{4, "4.0"},
		{3.75, "3.75"},
		{3.4, "3.4"},
		{1, "1.0"},
		{2.55, "2.55"},
	}
	for _, tt := range tests {
		if got := FormatScore(tt.in); got != tt.want {
			t.Errorf("FormatScore(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteRead(t *testing.T) {
	dims := []model.Dimension{
		{Name: "academics", Header: "Academics", Weight: 0.5},
		{Name: "fit", Header: "Fit", Weight: 0.5},
	}
	rows := []model.ScoreRow{
		{School: "Hill, School", Overall: 4, Scores: map[string]float64{"academics": 4.5, "fit": 3.5}},
		{School: "Vale", Overall: 2.75, Scores: map[string]float64{"academics": 3, "fit": 2.5}},
	}

	path := filepath.Join(t.TempDir(), "schools.csv")
	if err := Write(path, dims, rows); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o644 {
		t.Errorf("table mode = %o, want 644", perm)
	}

	data, _ := os.ReadFile(path)
	want := "School,Overall,Academics,Fit\n\"Hill, School\",4.0,4.5,3.5\nVale,2.75,3.0,2.5\n"
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}

	header, got, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if diff := cmp.Diff([]string{"School", "Overall", "Academics", "Fit"}, header); diff != "" {
		t.Errorf("header mismatch:\n%s", diff)
	}
	if got[0]["School"] != "Hill, School" || got[1]["Fit"] != "2.5" {
		t.Errorf("unexpected rows %v", got)
	}
}

func TestRead_ShortRowsAndErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.csv")
	os.WriteFile(path, []byte("School,Overall,Arts\nSolo,3.0\n"), 0644)

	_, rows, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := rows[0]["Arts"]; ok {
		t.Error("missing column should be absent from the row map")
	}

	empty := filepath.Join(dir, "empty.csv")
	os.WriteFile(empty, nil, 0644)
	if _, _, err := Read(empty); err == nil {
		t.Error("expected error for empty table")
	}
	if _, _, err := Read(filepath.Join(dir, "nope.csv")); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
