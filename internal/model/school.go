package model

// School is a tracked entity. Slug is its canonical key everywhere
// downstream: file names, anchors and table rows.
type School struct {
	Name  string `json:"name" yaml:"name"`
	Slug  string `json:"slug" yaml:"slug"`
	Phase string `json:"phase,omitempty" yaml:"phase,omitempty"`
	Notes string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Dimension is one facet of evaluation from the ordered catalog.
type Dimension struct {
	Name   string  `json:"name" yaml:"name"`     // catalog key and section heading, e.g. "academics"
	Header string  `json:"header" yaml:"header"` // table column, e.g. "Academics"
	Weight float64 `json:"weight" yaml:"weight"` // share of the overall score
	Focus  string  `json:"focus" yaml:"focus"`   // research topic hint
}

// DefaultDimensions returns the built-in catalog in table column order.
// Weights sum to 1.0.
func DefaultDimensions() []Dimension {
	return []Dimension{
		{
			Name: "academics", Header: "Academics", Weight: 0.25,
			Focus: "curriculum, exam outcomes, value-add, inspections, destinations, selection " +
				"policies, SEN/stretch provision, notable academic awards",
		},
		{
			Name: "arts", Header: "Arts", Weight: 0.15,
			Focus: "music, drama, dance, fine art, performance facilities, notable productions, " +
				"competitions, scholarships, visiting practitioners",
		},
		{
			Name: "facilities", Header: "Facilities", Weight: 0.05,
			Focus: "campus, buildings, labs, sports venues, music/drama spaces, recent refurbishments, " +
				"shared/leased spaces, capacity constraints, capital projects",
		},
		{
			Name: "pastoral", Header: "Pastoral", Weight: 0.10,
			Focus: "safeguarding, wellbeing, tutor systems, counselling, diversity & inclusion, " +
				"behaviour, anti-bullying outcomes, partnerships, culture indicators",
		},
		{
			Name: "commute", Header: "Commute", Weight: 0.15,
			Focus: "travel routes from Chiswick W4, public transport, school buses, journey times, " +
				"safe cycling/walking, before/after-school logistics",
		},
		{
			Name: "reputation", Header: "Reputation", Weight: 0.10,
			Focus: "press coverage, awards, inspection accolades, parent/community sentiment, " +
				"university destinations, league table positions",
		},
		{
			Name: "fit", Header: "Fit", Weight: 0.20,
			Focus: "culture, ethos, student profile, co/extra-curricular breadth, scale, " +
				"house/mentor structures, alignment with the family's priorities",
		},
	}
}

// DimensionNames returns the catalog keys in order.
func DimensionNames(dims []Dimension) []string {
	names := make([]string, len(dims))
	for i, d := range dims {
		names[i] = d.Name
	}
	return names
}

// FindDimension looks a dimension up by its catalog key.
func FindDimension(dims []Dimension, name string) (Dimension, bool) {
	for _, d := range dims {
		if d.Name == name {
			return d, true
		}
	}
	return Dimension{}, false
}

// ResearchRequest is what a research provider receives for one school and
// dimension. Instruction is the full prompt; Topic is a short label.
type ResearchRequest struct {
	Topic       string
	Instruction string
	School      string
	Dimension   string
	Focus       string
}
