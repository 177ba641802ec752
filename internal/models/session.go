package models

import "time"

// Session lifecycle statuses.
const (
	StatusCreated      = "CREATED"
	StatusGenerating   = "GENERATING"
	StatusPartialReady = "PARTIAL_READY"
	StatusReady        = "READY"
	StatusCompleted    = "COMPLETED"
	StatusFailed       = "FAILED"
)

// UserProfile is the immutable candidate input to question generation.
// Skills and interests are pre-validated tags decided upstream, never
// free text the core has to interpret.
type UserProfile struct {
	Skills     []string `bson:"skills" json:"skills"`
	Interests  []string `bson:"interests" json:"interests"`
	Degree     string   `bson:"degree" json:"degree"`
	CareerGoal string   `bson:"career_goal" json:"career_goal"`
}

// SectionReady tracks per-section availability. Flags are monotonic:
// once a section is ready it never flips back.
type SectionReady struct {
	Aptitude   bool `bson:"aptitude" json:"aptitude"`
	Behavioral bool `bson:"behavioral" json:"behavioral"`
	Domain     bool `bson:"domain" json:"domain"`
}

func (r *SectionReady) Mark(section int) {
	switch section {
	case SectionAptitude:
		r.Aptitude = true
	case SectionBehavioral:
		r.Behavioral = true
	case SectionDomain:
		r.Domain = true
	}
}

func (r SectionReady) ForSection(section int) bool {
	switch section {
	case SectionAptitude:
		return r.Aptitude
	case SectionBehavioral:
		return r.Behavioral
	case SectionDomain:
		return r.Domain
	}
	return false
}

func (r SectionReady) All() bool {
	return r.Aptitude && r.Behavioral && r.Domain
}

type Answer struct {
	QuestionID          string `bson:"question_id" json:"question_id"`
	SelectedOptionIndex *int   `bson:"selected_option_index" json:"selected_option_index"`
}

// TestResults is the submission-time counter snapshot. When present it is
// authoritative for the aggregate score so the report always matches what
// the candidate was shown at submission.
type TestResults struct {
	TotalQuestions int `bson:"total_questions" json:"total_questions"`
	Attempted      int `bson:"attempted" json:"attempted"`
	Correct        int `bson:"correct" json:"correct"`
	Wrong          int `bson:"wrong" json:"wrong"`
}

type AssessmentSession struct {
	ID           string       `bson:"_id,omitempty" json:"id"`
	UserID       string       `bson:"user_id" json:"user_id"`
	UserProfile  UserProfile  `bson:"user_profile" json:"user_profile"`
	Status       string       `bson:"status" json:"status"`
	SectionReady SectionReady `bson:"section_ready" json:"section_ready"`
	Questions    []Question   `bson:"questions" json:"questions"`
	Answers      []Answer     `bson:"answers,omitempty" json:"answers,omitempty"`
	TestResults  *TestResults `bson:"test_results,omitempty" json:"test_results,omitempty"`
	CreatedAt    time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `bson:"updated_at" json:"updated_at"`
}

// QuestionsForSection filters stored questions by section number. Cross-section
// interleaving in Questions is unspecified, so readers must filter, never index
// by position.
func (s *AssessmentSession) QuestionsForSection(section int) []Question {
	var out []Question
	for _, q := range s.Questions {
		if q.SectionNumber == section {
			out = append(out, q)
		}
	}
	return out
}

// AnswerMap indexes answers by question id. A session holds at most one
// answer per question.
func (s *AssessmentSession) AnswerMap() map[string]Answer {
	out := make(map[string]Answer, len(s.Answers))
	for _, a := range s.Answers {
		if _, ok := out[a.QuestionID]; !ok {
			out[a.QuestionID] = a
		}
	}
	return out
}
