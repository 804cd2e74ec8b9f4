// Package grid projects the score table into the marked region of the
// human-facing scoring grid document.
package grid

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ppiankov/schoolscope/internal/markdoc"
	"github.com/ppiankov/schoolscope/internal/model"
	"github.com/ppiankov/schoolscope/internal/slug"
	"github.com/ppiankov/schoolscope/internal/table"
	"go.uber.org/zap"
)

var (
	ErrTableMissing = errors.New("score table missing")
	ErrGridMissing  = errors.New("scoring grid file missing")
)

const missingValue = "-"

// Projector renders table rows as linked grid lines.
type Projector struct {
	dims     []model.Dimension
	linkBase string
	logger   *zap.Logger
}

// NewProjector returns a Projector whose links point below linkBase
// (for example "/evidence").
func NewProjector(dims []model.Dimension, linkBase string, logger *zap.Logger) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{
		dims:     dims,
		linkBase: strings.TrimRight(linkBase, "/"),
		logger:   logger,
	}
}

// FormatValue renders a numeric table cell with the given number of decimals
// and, when decimals > 0, strips trailing zeros and a dangling point. Values
// that are not numbers render as "-".
func FormatValue(value string, decimals int) string {
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return missingValue
	}
	s := strconv.FormatFloat(n, 'f', decimals, 64)
	if decimals > 0 {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}

// Row renders one table record as a grid line.
func (p *Projector) Row(record map[string]string) string {
	name, ok := record[table.ColumnSchool]
	if !ok {
		name = "Unknown"
	}
	link := p.linkBase + "/" + slug.Normalize(name)

	cells := []string{
		fmt.Sprintf("[%s](%s)", name, link),
		fmt.Sprintf("[%s](%s)", FormatValue(cellOrMissing(record, table.ColumnOverall), 2), link),
	}
	for _, d := range p.dims {
		score := FormatValue(cellOrMissing(record, d.Header), 1)
		cells = append(cells, fmt.Sprintf("[%s](%s#%s)", score, link, d.Name))
	}
	return "| " + strings.Join(cells, " | ") + " |"
}

func cellOrMissing(record map[string]string, col string) string {
	if v, ok := record[col]; ok {
		return v
	}
	return missingValue
}

// Rows renders every record, in table order.
func (p *Projector) Rows(records []map[string]string) []string {
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, p.Row(r))
	}
	return lines
}

// Update reads the table and replaces the grid region of the grid document
// with one line per row. Both files must exist and the grid markers must
// appear exactly once; otherwise nothing is written.
func (p *Projector) Update(tablePath, gridPath string) (int, error) {
	_, records, err := table.Read(tablePath)
	if errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("%w: %s", ErrTableMissing, tablePath)
	}
	if err != nil {
		return 0, err
	}

	if !fileExists(gridPath) {
		return 0, fmt.Errorf("%w: %s", ErrGridMissing, gridPath)
	}

	lines := p.Rows(records)
	if err := markdoc.ReplaceFile(gridPath, markdoc.Grid, strings.Join(lines, "\n")); err != nil {
		return 0, err
	}

	p.logger.Info("Updated scoring grid", zap.String("path", gridPath), zap.Int("rows", len(lines)))
	return len(lines), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
