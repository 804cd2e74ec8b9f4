// Package workspace maps schools to the documents that belong to them.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/schoolscope/internal/model"
)

// Layout resolves document paths under a workspace root.
type Layout struct {
	Root        string
	RawDir      string
	EvidenceDir string
	TableFile   string
	GridFile    string
}

// NewLayout builds a Layout from configuration. Relative paths are joined
// to cfg.Root; absolute paths are used as given.
func NewLayout(cfg model.WorkspaceConfig) Layout {
	root := cfg.Root
	if root == "" {
		root = "."
	}
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(root, p)
	}

	return Layout{
		Root:        root,
		RawDir:      resolve(cfg.RawDir),
		EvidenceDir: resolve(cfg.EvidenceDir),
		TableFile:   resolve(cfg.TableFile),
		GridFile:    resolve(cfg.GridFile),
	}
}

// RawFile is the ledger document for a school.
func (l Layout) RawFile(slug string) string {
	return filepath.Join(l.RawDir, slug+"-raw.md")
}

// EvidenceFile is the curated evidence document for a school.
func (l Layout) EvidenceFile(slug string) string {
	return filepath.Join(l.EvidenceDir, slug+".md")
}

// EnsureDirs creates the directories that hold generated documents. The grid
// document itself is never created here.
func (l Layout) EnsureDirs() error {
	for _, dir := range []string{l.RawDir, l.EvidenceDir, filepath.Dir(l.TableFile), filepath.Dir(l.GridFile)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Exists reports whether path names an existing file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
