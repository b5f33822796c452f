package catalog

// Question types mirror the questionnaire form controls. Everything is
// string-encoded; there are no numeric or boolean answer types.
const (
	TypeSingleChoice = "single-choice"
	TypeMultiChoice  = "multi-choice"
	TypeDropdown     = "dropdown"
	TypeShortText    = "short-text"
	TypeLongText     = "long-text"
)

type Question struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Type     string   `json:"type"`
	Options  []string `json:"options,omitempty"`
	Required bool     `json:"required"`
}

// Section is an ordered group of questions. Order is significant: it drives
// sequential navigation in the questionnaire.
type Section struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Weight        float64    `json:"weight"`
	EstimatedTime string     `json:"estimated_time,omitempty"`
	Questions     []Question `json:"questions"`
}

// Catalog is the full ordered question catalog, loaded once at startup and
// immutable afterwards.
type Catalog struct {
	Sections []Section `json:"sections"`
}

// Len returns the number of sections.
func (c *Catalog) Len() int { return len(c.Sections) }

// Section returns the section at index, or nil when out of range.
func (c *Catalog) Section(i int) *Section {
	if i < 0 || i >= len(c.Sections) {
		return nil
	}
	return &c.Sections[i]
}

// SectionByID returns the section with the given id, or nil.
func (c *Catalog) SectionByID(id string) *Section {
	for i := range c.Sections {
		if c.Sections[i].ID == id {
			return &c.Sections[i]
		}
	}
	return nil
}

// TotalQuestions counts every question in the catalog, required or not.
func (c *Catalog) TotalQuestions() int {
	n := 0
	for i := range c.Sections {
		n += len(c.Sections[i].Questions)
	}
	return n
}

// RequiredQuestions counts only the required questions.
func (c *Catalog) RequiredQuestions() int {
	n := 0
	for i := range c.Sections {
		for j := range c.Sections[i].Questions {
			if c.Sections[i].Questions[j].Required {
				n++
			}
		}
	}
	return n
}

// IsMulti reports whether a question type carries a list answer.
func IsMulti(qtype string) bool { return qtype == TypeMultiChoice }
