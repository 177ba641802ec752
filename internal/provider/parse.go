package provider

import (
	"encoding/json"
	"fmt"
	"strings"

	"assessment-service/internal/models"

	"github.com/google/uuid"
)

type rawOption struct {
	Text        string `json:"text"`
	ImpactScore *int   `json:"impactScore"`
}

type rawItem struct {
	Question           string      `json:"question"`
	Scenario           string      `json:"scenario"`
	Category           string      `json:"category"`
	Options            []rawOption `json:"options"`
	CorrectOptionIndex *int        `json:"correctOptionIndex"`
	Rationales         []string    `json:"rationales"`
}

// ParseItems converts a provider completion into validated questions.
// A payload that cannot be located or decoded fails the whole batch, which
// consumers treat the same as a transport failure. Individual items that are
// unusable (fewer than two options) are dropped; the generation engine's
// backfill covers the shortfall.
func ParseItems(content string, sectionNumber int, itemType string, categories []string) ([]models.Question, error) {
	payload, err := extractJSONArray(content)
	if err != nil {
		return nil, err
	}
	var raw []rawItem
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("decode items: %v", err)
	}

	var items []models.Question
	for i, r := range raw {
		if r.Question == "" || len(r.Options) < 2 {
			continue
		}
		q := models.Question{
			ID:            uuid.NewString(),
			SectionNumber: sectionNumber,
			Category:      itemCategory(r.Category, categories, i),
			Type:          itemType,
			Prompt:        r.Question,
			Scenario:      r.Scenario,
			Options:       optionTexts(r.Options),
		}
		if len(r.Rationales) == len(r.Options) {
			q.Rationales = r.Rationales
		}
		if sectionNumber == models.SectionBehavioral {
			q.TraitImpactScores = impactScores(r.Options)
			q.DeriveCorrectIndex()
		} else {
			q.CorrectOptionIndex = correctIndex(r.CorrectOptionIndex, len(r.Options), itemType)
		}
		items = append(items, q)
	}
	return items, nil
}

// extractJSONArray locates the JSON array in a completion, tolerating markdown
// code fences and surrounding prose.
func extractJSONArray(content string) (string, error) {
	s := content
	if idx := strings.Index(s, "```json"); idx >= 0 {
		s = s[idx+len("```json"):]
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	} else if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+3:]
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	}
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON array in provider response")
	}
	return s[start : end+1], nil
}

func itemCategory(provided string, categories []string, idx int) string {
	if provided != "" {
		return provided
	}
	if len(categories) == 0 {
		return ""
	}
	return categories[idx%len(categories)]
}

func optionTexts(options []rawOption) []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = o.Text
	}
	return out
}

// impactScores defaults a missing per-option score to 50 and clamps the rest
// into the 0-100 range.
func impactScores(options []rawOption) []int {
	out := make([]int, len(options))
	for i, o := range options {
		score := 50
		if o.ImpactScore != nil {
			score = *o.ImpactScore
		}
		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}
		out[i] = score
	}
	return out
}

// correctIndex validates a provided index for objective sections. Out-of-range
// or missing indices default to 0 for MCQ items and nil otherwise.
func correctIndex(provided *int, optionCount int, itemType string) *int {
	if provided != nil && *provided >= 0 && *provided < optionCount {
		return provided
	}
	if itemType == models.TypeMCQ {
		return models.IntPtr(0)
	}
	return nil
}
