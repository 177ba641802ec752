package scoring

import (
	"strings"
	"time"

	"assessment-service/internal/models"
)

// traitByCategory maps behavioral question categories onto Big Five traits.
// The mapping is an explicit table; the engine never infers traits from free
// text.
var traitByCategory = map[string]string{
	models.TraitOpenness:          models.TraitOpenness,
	models.TraitConscientiousness: models.TraitConscientiousness,
	models.TraitExtraversion:      models.TraitExtraversion,
	models.TraitAgreeableness:     models.TraitAgreeableness,
	models.TraitNeuroticism:       models.TraitNeuroticism,

	"adaptability":        models.TraitOpenness,
	"attention to detail": models.TraitConscientiousness,
	"leadership":          models.TraitExtraversion,
	"conflict resolution": models.TraitAgreeableness,
	"emotional stability": models.TraitNeuroticism,
}

// TraitForCategory resolves a behavioral category to its Big Five trait,
// returning "" for categories outside the mapping.
func TraitForCategory(category string) string {
	return traitByCategory[strings.ToLower(strings.TrimSpace(category))]
}

// TraitScores computes the Big Five profile from answered behavioral
// questions. Each trait is the arithmetic mean of the selected options'
// impact scores, clamped to [0,100]; traits with no matching answers default
// to 50.
func TraitScores(questions []models.Question, answers map[string]models.Answer) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, q := range questions {
		if !q.IsBehavioral() {
			continue
		}
		trait := TraitForCategory(q.Category)
		if trait == "" {
			continue
		}
		ans, ok := answers[q.ID]
		if !ok || ans.SelectedOptionIndex == nil {
			continue
		}
		sums[trait] += float64(q.ImpactForOption(*ans.SelectedOptionIndex))
		counts[trait]++
	}

	out := make(map[string]float64, len(models.TraitNames))
	for _, trait := range models.TraitNames {
		if counts[trait] == 0 {
			out[trait] = 50
			continue
		}
		out[trait] = clamp(sums[trait]/float64(counts[trait]), 0, 100)
	}
	return out
}

// SectionScores computes one score per section. Objective sections (1 and 3)
// score correct answers as a percentage of all questions in the section; the
// behavioral section scores the mean selected impact over answered items.
func SectionScores(questions []models.Question, answers map[string]models.Answer) map[string]models.SectionScore {
	out := make(map[string]models.SectionScore, 3)
	for _, section := range []int{models.SectionAptitude, models.SectionBehavioral, models.SectionDomain} {
		out[models.SectionKey(section)] = scoreSection(section, questions, answers)
	}
	return out
}

func scoreSection(section int, questions []models.Question, answers map[string]models.Answer) models.SectionScore {
	score := models.SectionScore{SectionNumber: section}
	var impactSum float64

	for _, q := range questions {
		if q.SectionNumber != section {
			continue
		}
		score.Total++
		ans, ok := answers[q.ID]
		if !ok || ans.SelectedOptionIndex == nil {
			continue
		}
		score.Attempted++
		if section == models.SectionBehavioral {
			impactSum += float64(q.ImpactForOption(*ans.SelectedOptionIndex))
			continue
		}
		if q.CorrectOptionIndex != nil && *ans.SelectedOptionIndex == *q.CorrectOptionIndex {
			score.Correct++
		}
	}

	switch {
	case section == models.SectionBehavioral:
		if score.Attempted > 0 {
			score.Score = clamp(impactSum/float64(score.Attempted), 0, 100)
		}
	case score.Total > 0:
		score.Score = float64(score.Correct) / float64(score.Total) * 100
	}
	return score
}

// AggregateScore prefers the submission-time snapshot so the report matches
// what the candidate saw. Without one it recomputes over the objective
// sections only; behavioral answers have no correct/incorrect semantics.
func AggregateScore(questions []models.Question, answers map[string]models.Answer, snapshot *models.TestResults) float64 {
	if snapshot != nil && snapshot.TotalQuestions > 0 {
		return float64(snapshot.Correct) / float64(snapshot.TotalQuestions) * 100
	}

	total, correct := 0, 0
	for _, q := range questions {
		if q.IsBehavioral() {
			continue
		}
		total++
		ans, ok := answers[q.ID]
		if !ok || ans.SelectedOptionIndex == nil {
			continue
		}
		if q.CorrectOptionIndex != nil && *ans.SelectedOptionIndex == *q.CorrectOptionIndex {
			correct++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// PerformanceBucket maps an aggregate score onto its performance level.
func PerformanceBucket(score float64) string {
	switch {
	case score >= 85:
		return models.BucketBest
	case score >= 70:
		return models.BucketGood
	case score >= 50:
		return models.BucketAverage
	default:
		return models.BucketPoor
	}
}

// BuildReport scores a session. Pure over the session's questions, answers
// and snapshot; calling it twice yields identical scores.
func BuildReport(session *models.AssessmentSession) *models.AssessmentReport {
	answers := session.AnswerMap()
	aggregate := AggregateScore(session.Questions, answers, session.TestResults)
	return &models.AssessmentReport{
		SessionID:         session.ID,
		UserID:            session.UserID,
		TraitScores:       TraitScores(session.Questions, answers),
		SectionScores:     SectionScores(session.Questions, answers),
		AggregateScore:    aggregate,
		PerformanceBucket: PerformanceBucket(aggregate),
		CreatedAt:         time.Now(),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
