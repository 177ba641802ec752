package models

import "time"

// Performance buckets over the aggregate score.
const (
	BucketBest    = "BEST"
	BucketGood    = "GOOD"
	BucketAverage = "AVERAGE"
	BucketPoor    = "POOR"
)

// Big Five trait names used as keys in TraitScores.
const (
	TraitOpenness          = "openness"
	TraitConscientiousness = "conscientiousness"
	TraitExtraversion      = "extraversion"
	TraitAgreeableness     = "agreeableness"
	TraitNeuroticism       = "neuroticism"
)

// TraitNames lists the five traits in canonical order.
var TraitNames = []string{
	TraitOpenness,
	TraitConscientiousness,
	TraitExtraversion,
	TraitAgreeableness,
	TraitNeuroticism,
}

type SectionScore struct {
	SectionNumber int     `bson:"section_number" json:"section_number"`
	Total         int     `bson:"total" json:"total"`
	Attempted     int     `bson:"attempted" json:"attempted"`
	Correct       int     `bson:"correct" json:"correct"`
	Score         float64 `bson:"score" json:"score"`
}

type AssessmentReport struct {
	ID                string                  `bson:"_id,omitempty" json:"id"`
	SessionID         string                  `bson:"session_id" json:"session_id"`
	UserID            string                  `bson:"user_id" json:"user_id"`
	TraitScores       map[string]float64      `bson:"trait_scores" json:"trait_scores"`
	SectionScores     map[string]SectionScore `bson:"section_scores" json:"section_scores"`
	AggregateScore    float64                 `bson:"aggregate_score" json:"aggregate_score"`
	PerformanceBucket string                  `bson:"performance_bucket" json:"performance_bucket"`
	CreatedAt         time.Time               `bson:"created_at" json:"created_at"`
}

// SectionKey names a section for report breakdowns.
func SectionKey(section int) string {
	switch section {
	case SectionAptitude:
		return "aptitude"
	case SectionBehavioral:
		return "behavioral"
	case SectionDomain:
		return "domain"
	}
	return "unknown"
}
