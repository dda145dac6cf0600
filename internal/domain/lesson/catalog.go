// Package lesson selects a day's lesson sequence from a static catalog,
// ranked against a student's learning-style vector.
package lesson

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/edlane/primer/internal/domain/model"
)

// Item is one catalog lesson.
type Item struct {
	ID          string         `json:"id"`
	Subject     string         `json:"subject"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Modality    model.Modality `json:"modality"`
	// Difficulty is an ordinal index within the grade; lower is easier.
	Difficulty int `json:"difficulty"`
}

// Catalog maps grade label (K, 1, 2, ...) to that grade's lessons.
type Catalog struct {
	grades map[string][]Item
}

// NewCatalog builds a catalog from a grade map. Modality tags are
// normalized; lessons with unknown tags are rejected.
func NewCatalog(grades map[string][]Item) (*Catalog, error) {
	out := make(map[string][]Item, len(grades))
	for grade, items := range grades {
		normalized := make([]Item, 0, len(items))
		for _, it := range items {
			m, ok := model.ParseModality(string(it.Modality))
			if !ok {
				return nil, fmt.Errorf("%w: lesson %s has modality %q", ErrBadCatalog, it.ID, it.Modality)
			}
			it.Modality = m
			normalized = append(normalized, it)
		}
		out[grade] = normalized
	}
	return &Catalog{grades: out}, nil
}

// LoadCatalog reads a catalog JSON file keyed by grade.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCatalog, err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes catalog JSON.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var grades map[string][]Item
	if err := json.Unmarshal(raw, &grades); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCatalog, err)
	}
	return NewCatalog(grades)
}

// DefaultCatalog returns the embedded starter catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		// The embedded file is validated by tests.
		panic(fmt.Sprintf("embedded catalog invalid: %v", err))
	}
	return c
}

// Grades returns the grade labels present in the catalog.
func (c *Catalog) Grades() []string {
	out := make([]string, 0, len(c.grades))
	for g := range c.grades {
		out = append(out, g)
	}
	return out
}

// ForGrade returns the lessons for a grade.
func (c *Catalog) ForGrade(grade string) ([]Item, bool) {
	items, ok := c.grades[grade]
	return items, ok
}
