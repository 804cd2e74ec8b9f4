// Package markdoc edits regions of Markdown documents that are delimited by a
// pair of HTML comment markers. Everything outside the markers is preserved
// byte for byte.
package markdoc

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrMarkers is returned when a region's markers are absent, duplicated or
// out of order.
var ErrMarkers = errors.New("markers not found or malformed")

// Region names a start/end marker pair.
type Region struct {
	Start string
	End   string
}

// Regions owned by the pipelines.
var (
	SourceLog = Region{Start: "<!-- SOURCE-LOG:BEGIN -->", End: "<!-- SOURCE-LOG:END -->"}
	Facts     = Region{Start: "<!-- FACTS:BEGIN -->", End: "<!-- FACTS:END -->"}
	Quotes    = Region{Start: "<!-- QUOTES:BEGIN -->", End: "<!-- QUOTES:END -->"}
	Grid      = Region{Start: "<!-- GRID:BEGIN -->", End: "<!-- GRID:END -->"}
)

var knownRegions = []Region{SourceLog, Facts, Quotes, Grid}

// MarkerError describes why a region could not be located.
type MarkerError struct {
	Region Region
	Reason string
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("markers %s / %s: %s", e.Region.Start, e.Region.End, e.Reason)
}

func (e *MarkerError) Unwrap() error {
	return ErrMarkers
}

// span is the byte range of a located region: start is the index of the start
// marker, end the index just past the end marker, body the text in between.
type span struct {
	start int
	end   int
	body  string
}

func locate(doc string, r Region) (span, error) {
	if r.Start == "" || r.End == "" {
		return span{}, &MarkerError{Region: r, Reason: "empty marker"}
	}

	switch n := strings.Count(doc, r.Start); {
	case n == 0:
		return span{}, &MarkerError{Region: r, Reason: "start marker not found"}
	case n > 1:
		return span{}, &MarkerError{Region: r, Reason: fmt.Sprintf("start marker appears %d times", n)}
	}
	switch n := strings.Count(doc, r.End); {
	case n == 0:
		return span{}, &MarkerError{Region: r, Reason: "end marker not found"}
	case n > 1:
		return span{}, &MarkerError{Region: r, Reason: fmt.Sprintf("end marker appears %d times", n)}
	}

	startIdx := strings.Index(doc, r.Start)
	endIdx := strings.Index(doc, r.End)
	bodyStart := startIdx + len(r.Start)
	if endIdx < bodyStart {
		return span{}, &MarkerError{Region: r, Reason: "end marker precedes start marker"}
	}

	return span{
		start: startIdx,
		end:   endIdx + len(r.End),
		body:  doc[bodyStart:endIdx],
	}, nil
}

func (r Region) render(body string) string {
	return r.Start + "\n" + body + "\n" + r.End
}

// Body returns the trimmed text between the region's markers.
func Body(doc string, r Region) (string, error) {
	s, err := locate(doc, r)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s.body), nil
}

// Replace swaps the region's content for body. The markers are kept and the
// trimmed body is placed on its own lines between them.
func Replace(doc string, r Region, body string) (string, error) {
	s, err := locate(doc, r)
	if err != nil {
		return "", err
	}
	return splice(doc, s, r, strings.TrimSpace(body))
}

// Append adds addition after the region's existing content, separated by a
// blank line when the region is not empty.
func Append(doc string, r Region, addition string) (string, error) {
	s, err := locate(doc, r)
	if err != nil {
		return "", err
	}

	existing := strings.TrimSpace(s.body)
	addition = strings.TrimSpace(addition)
	combined := addition
	if existing != "" {
		combined = existing + "\n\n" + addition
	}
	return splice(doc, s, r, combined)
}

// splice writes body into the located region and rejects the result when the
// body carried marker text of its own.
func splice(doc string, s span, r Region, body string) (string, error) {
	for _, m := range markersOf(r) {
		if strings.Contains(body, m) {
			return "", &MarkerError{Region: r, Reason: fmt.Sprintf("new content contains marker %s", m)}
		}
	}

	out := doc[:s.start] + r.render(body) + doc[s.end:]
	for _, m := range markersOf(r) {
		if before, after := strings.Count(doc, m), strings.Count(out, m); before != after {
			return "", &MarkerError{
				Region: r,
				Reason: fmt.Sprintf("edit changes count of %s from %d to %d", m, before, after),
			}
		}
	}
	return out, nil
}

// markersOf lists r's markers followed by those of every known region.
func markersOf(r Region) []string {
	markers := []string{r.Start, r.End}
	for _, k := range knownRegions {
		if k != r {
			markers = append(markers, k.Start, k.End)
		}
	}
	return markers
}

// ReplaceFile applies Replace to the file at path. The file is only written
// when the edit succeeds.
func ReplaceFile(path string, r Region, body string) error {
	return editFile(path, func(doc string) (string, error) {
		return Replace(doc, r, body)
	})
}

// AppendFile applies Append to the file at path. The file is only written
// when the edit succeeds.
func AppendFile(path string, r Region, addition string) error {
	return editFile(path, func(doc string) (string, error) {
		return Append(doc, r, addition)
	})
}

// editFile reads the whole document, computes the new text in memory and
// writes the whole document back. Concurrent edits of one path race; callers
// must keep a single writer per document.
func editFile(path string, edit func(string) (string, error)) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	updated, err := edit(string(data))
	if err != nil {
		return fmt.Errorf("edit %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
