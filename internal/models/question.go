package models

// Question types as they appear in provider responses and stored sessions.
const (
	TypeMCQ      = "MCQ"
	TypeLikert   = "LIKERT"
	TypeScenario = "SCENARIO"
)

// Assessment sections. Section numbers are fixed, not configurable.
const (
	SectionAptitude   = 1
	SectionBehavioral = 2
	SectionDomain     = 3
)

type Question struct {
	ID                 string   `bson:"id" json:"id"`
	SectionNumber      int      `bson:"section_number" json:"section_number"`
	Category           string   `bson:"category" json:"category"`
	Type               string   `bson:"type" json:"type"`
	Prompt             string   `bson:"prompt" json:"prompt"`
	Options            []string `bson:"options" json:"options"`
	Scenario           string   `bson:"scenario,omitempty" json:"scenario,omitempty"`
	CorrectOptionIndex *int     `bson:"correct_option_index,omitempty" json:"correct_option_index,omitempty"`
	TraitImpactScores  []int    `bson:"trait_impact_scores,omitempty" json:"trait_impact_scores,omitempty"`
	Rationales         []string `bson:"rationales,omitempty" json:"rationales,omitempty"`
}

// IsBehavioral reports whether the question belongs to the trait-scored section.
func (q *Question) IsBehavioral() bool {
	return q.SectionNumber == SectionBehavioral
}

// DeriveCorrectIndex sets CorrectOptionIndex for behavioral items from their
// trait impact scores: the option with the highest impact wins, first
// occurrence on ties. Items without impact scores are left untouched.
func (q *Question) DeriveCorrectIndex() {
	if len(q.TraitImpactScores) == 0 {
		return
	}
	best := 0
	for i, score := range q.TraitImpactScores {
		if score > q.TraitImpactScores[best] {
			best = i
		}
	}
	q.CorrectOptionIndex = &best
}

// ImpactForOption returns the trait impact score of the given option index.
// Legacy Likert items carry no impact array; for those the option position
// maps linearly onto the 0-100 scale (index * 25 on a five-point scale).
func (q *Question) ImpactForOption(idx int) int {
	if idx < 0 {
		return 0
	}
	if len(q.TraitImpactScores) == 0 {
		return idx * 25
	}
	if idx >= len(q.TraitImpactScores) {
		return 0
	}
	return q.TraitImpactScores[idx]
}

// IntPtr is a convenience for building optional index fields.
func IntPtr(v int) *int {
	return &v
}
