package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads and validates a catalog from a JSON file.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a catalog from JSON and validates its structure.
func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks structural invariants: section ids unique across the
// catalog, question ids unique within their section, choice-style questions
// carrying options. Question ids are NOT required to be globally unique.
func (c *Catalog) Validate() error {
	secSeen := map[string]bool{}
	for i := range c.Sections {
		s := &c.Sections[i]
		if s.ID == "" {
			return fmt.Errorf("section %d: empty id", i)
		}
		if secSeen[s.ID] {
			return fmt.Errorf("duplicate section id %q", s.ID)
		}
		secSeen[s.ID] = true

		qSeen := map[string]bool{}
		for j := range s.Questions {
			q := &s.Questions[j]
			if q.ID == "" {
				return fmt.Errorf("section %q question %d: empty id", s.ID, j)
			}
			if qSeen[q.ID] {
				return fmt.Errorf("section %q: duplicate question id %q", s.ID, q.ID)
			}
			qSeen[q.ID] = true

			switch q.Type {
			case TypeSingleChoice, TypeMultiChoice, TypeDropdown:
				if len(q.Options) == 0 {
					return fmt.Errorf("section %q question %q: %s question has no options", s.ID, q.ID, q.Type)
				}
			case TypeShortText, TypeLongText:
				// free text; no options
			default:
				return fmt.Errorf("section %q question %q: unknown type %q", s.ID, q.ID, q.Type)
			}
		}
	}
	return nil
}
