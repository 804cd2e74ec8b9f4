// Package catalog loads the school list and dimension catalog from YAML and
// resolves user-supplied identifiers against them.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/schoolscope/internal/model"
	"github.com/ppiankov/schoolscope/internal/slug"
	"gopkg.in/yaml.v3"
)

var (
	// ErrSchoolNotFound is returned when an identifier matches no school.
	ErrSchoolNotFound = errors.New("school not found")

	// ErrUnknownDimension is returned for a dimension outside the catalog.
	ErrUnknownDimension = errors.New("unknown dimension")
)

type schoolsFile struct {
	Schools []model.School `yaml:"schools"`
}

type dimensionsFile struct {
	Dimensions []dimensionEntry `yaml:"dimensions"`
}

// dimensionEntry accepts either a bare name or a mapping with overrides.
type dimensionEntry struct {
	model.Dimension
}

func (d *dimensionEntry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		d.Name = value.Value
		return nil
	}
	return value.Decode(&d.Dimension)
}

// LoadSchools reads schools.yml. Entries without a slug get one derived from
// the name; duplicate slugs are rejected.
func LoadSchools(path string) ([]model.School, error) {
	var file schoolsFile
	if err := readYAML(path, &file); err != nil {
		return nil, err
	}

	seen := make(map[string]string)
	schools := make([]model.School, 0, len(file.Schools))
	for i, s := range file.Schools {
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			return nil, fmt.Errorf("%s: school %d has no name", path, i+1)
		}
		if s.Slug == "" {
			s.Slug = slug.Normalize(s.Name)
		}
		if prev, dup := seen[s.Slug]; dup {
			return nil, fmt.Errorf("%s: schools %q and %q share slug %q", path, prev, s.Name, s.Slug)
		}
		seen[s.Slug] = s.Name
		schools = append(schools, s)
	}
	return schools, nil
}

// LoadDimensions reads dimensions.yml. An empty path returns the built-in
// catalog. Names found in the built-in catalog inherit its header, weight
// and focus unless the entry overrides them.
func LoadDimensions(path string) ([]model.Dimension, error) {
	defaults := model.DefaultDimensions()
	if path == "" {
		return defaults, nil
	}

	var file dimensionsFile
	if err := readYAML(path, &file); err != nil {
		return nil, err
	}
	if len(file.Dimensions) == 0 {
		return nil, fmt.Errorf("%s: no dimensions listed", path)
	}

	dims := make([]model.Dimension, 0, len(file.Dimensions))
	seen := make(map[string]bool)
	for _, entry := range file.Dimensions {
		d := entry.Dimension
		d.Name = strings.ToLower(strings.TrimSpace(d.Name))
		if d.Name == "" {
			return nil, fmt.Errorf("%s: dimension without a name", path)
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("%s: dimension %q listed twice", path, d.Name)
		}
		seen[d.Name] = true

		if base, ok := model.FindDimension(defaults, d.Name); ok {
			if d.Header == "" {
				d.Header = base.Header
			}
			if d.Weight == 0 {
				d.Weight = base.Weight
			}
			if d.Focus == "" {
				d.Focus = base.Focus
			}
		}
		if d.Header == "" {
			d.Header = strings.ToUpper(d.Name[:1]) + d.Name[1:]
		}
		dims = append(dims, d)
	}
	return dims, nil
}

// ResolveSchool finds a school by slug or case-insensitive name.
func ResolveSchool(schools []model.School, identifier string) (model.School, error) {
	key := slug.Normalize(identifier)
	for _, s := range schools {
		if s.Slug == key || strings.EqualFold(s.Name, identifier) {
			return s, nil
		}
	}
	return model.School{}, fmt.Errorf("%w: %s", ErrSchoolNotFound, identifier)
}

// ResolveDimensions lower-cases the requested names and checks each against
// the catalog. No names selects the whole catalog.
func ResolveDimensions(catalog []model.Dimension, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return model.DimensionNames(catalog), nil
	}

	names := make([]string, 0, len(requested))
	for _, r := range requested {
		name := strings.ToLower(strings.TrimSpace(r))
		if _, ok := model.FindDimension(catalog, name); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDimension, r)
		}
		names = append(names, name)
	}
	return names, nil
}

func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
