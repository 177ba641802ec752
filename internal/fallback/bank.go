package fallback

import (
	"fmt"

	"assessment-service/internal/models"

	"github.com/google/uuid"
)

// Behavioral trait categories covered by the curated bank.
const (
	CategoryConflictResolution = "conflict resolution"
	CategoryAttentionToDetail  = "attention to detail"
	CategoryLeadership         = "leadership"
	CategoryAdaptability       = "adaptability"
	CategoryEmotionalStability = "emotional stability"
)

// template is a curated behavioral item. Unlike placeholders, templates carry
// internally consistent impact scores and rationales, which the scoring
// engine depends on for the behavioral section.
type template struct {
	category   string
	prompt     string
	scenario   string
	options    []string
	impacts    []int
	rationales []string
}

// Bank holds the curated behavioral question templates. Draw never returns
// more items than the bank holds; callers cover any remaining shortfall with
// placeholders.
type Bank struct {
	templates []template
}

func NewBank() *Bank {
	return &Bank{templates: curatedTemplates}
}

// Size reports how many curated templates the bank holds.
func (b *Bank) Size() int {
	return len(b.templates)
}

// Draw returns up to n fresh copies of curated items, preferring templates
// whose category appears in the requested list. Each copy gets a new id.
func (b *Bank) Draw(n int, categories []string) []models.Question {
	if n <= 0 {
		return nil
	}
	wanted := make(map[string]bool, len(categories))
	for _, c := range categories {
		wanted[c] = true
	}

	ordered := make([]template, 0, len(b.templates))
	var rest []template
	for _, t := range b.templates {
		if wanted[t.category] {
			ordered = append(ordered, t)
		} else {
			rest = append(rest, t)
		}
	}
	ordered = append(ordered, rest...)

	if n > len(ordered) {
		n = len(ordered)
	}
	out := make([]models.Question, 0, n)
	for _, t := range ordered[:n] {
		out = append(out, t.instantiate())
	}
	return out
}

func (t template) instantiate() models.Question {
	q := models.Question{
		ID:                uuid.NewString(),
		SectionNumber:     models.SectionBehavioral,
		Category:          t.category,
		Type:              models.TypeScenario,
		Prompt:            t.prompt,
		Scenario:          t.scenario,
		Options:           append([]string(nil), t.options...),
		TraitImpactScores: append([]int(nil), t.impacts...),
		Rationales:        append([]string(nil), t.rationales...),
	}
	q.DeriveCorrectIndex()
	return q
}

// placeholderImpacts is the fixed ascending distribution used for synthetic
// behavioral items: later options always score higher.
var placeholderImpacts = []int{25, 50, 75, 100}

// Placeholders generates n synthetic questions for a section, spreading
// categories round-robin. Objective sections get MCQ-style items with the
// first option correct; behavioral items get the fixed ascending impact
// distribution.
func Placeholders(sectionNumber int, itemType string, categories []string, n int) []models.Question {
	if n <= 0 {
		return nil
	}
	out := make([]models.Question, 0, n)
	for i := 0; i < n; i++ {
		category := ""
		if len(categories) > 0 {
			category = categories[i%len(categories)]
		}
		q := models.Question{
			ID:            uuid.NewString(),
			SectionNumber: sectionNumber,
			Category:      category,
			Type:          itemType,
			Prompt:        fmt.Sprintf("Practice question %d on %s: which of the following applies?", i+1, category),
			Options: []string{
				"Option A",
				"Option B",
				"Option C",
				"Option D",
			},
		}
		if sectionNumber == models.SectionBehavioral {
			q.TraitImpactScores = append([]int(nil), placeholderImpacts...)
			q.DeriveCorrectIndex()
		} else {
			q.CorrectOptionIndex = models.IntPtr(0)
		}
		out = append(out, q)
	}
	return out
}

var curatedTemplates = []template{
	{
		category: CategoryConflictResolution,
		prompt:   "How do you respond?",
		scenario: "Two teammates disagree loudly in a planning meeting about the approach to a deadline-critical task, and the discussion is going in circles.",
		options: []string{
			"Let them argue it out; the stronger case will win eventually.",
			"Side with the more senior teammate to end the discussion quickly.",
			"Ask each to summarize the other's position, then steer the group toward criteria for deciding.",
			"Suggest postponing the decision so tempers can cool.",
		},
		impacts: []int{20, 35, 95, 55},
		rationales: []string{
			"Avoiding the conflict lets it escalate and wastes the meeting.",
			"Deferring to seniority resolves nothing and sidelines the better argument.",
			"Restating positions defuses tension and moves the group to an objective decision.",
			"Postponing can help, but the deadline makes delay costly.",
		},
	},
	{
		category: CategoryAttentionToDetail,
		prompt:   "What do you do?",
		scenario: "Minutes before a client report is due, you notice one table's totals do not match the summary paragraph.",
		options: []string{
			"Send the report on time; a small mismatch is unlikely to be noticed.",
			"Hold the report, reconcile the numbers, and notify the stakeholder of a short delay.",
			"Delete the table so the inconsistency disappears.",
			"Send it and plan to issue a correction if anyone asks.",
		},
		impacts: []int{10, 95, 25, 30},
		rationales: []string{
			"Shipping known-bad numbers risks the client's trust.",
			"A brief, communicated delay to verify data is the professional choice.",
			"Removing evidence hides the problem instead of fixing it.",
			"Reactive correction puts the burden on the reader to find your error.",
		},
	},
	{
		category: CategoryLeadership,
		prompt:   "How do you handle it?",
		scenario: "Your team missed a sprint goal and morale is low. The root cause was an estimate you approved.",
		options: []string{
			"Point out which tasks individual members delivered late.",
			"Own the estimation miss publicly, then run a short retrospective on what to change.",
			"Say nothing and quietly pad the next sprint's estimates.",
			"Escalate to management that the team needs more resources.",
		},
		impacts: []int{15, 95, 40, 35},
		rationales: []string{
			"Assigning blame for your own call destroys trust.",
			"Owning the miss and fixing the process is what the team needs to recover.",
			"Silent padding may help once but leaves the team without answers.",
			"Escalating first skips the learning the team can do itself.",
		},
	},
	{
		category: CategoryAdaptability,
		prompt:   "What is your next step?",
		scenario: "Halfway through a project, the client changes a core requirement that invalidates much of your current design.",
		options: []string{
			"Push back and insist the original agreement be honored.",
			"Quietly keep building the original design and hope the change is reversed.",
			"Assess what survives the change, re-plan with the team, and present the revised timeline.",
			"Start over from scratch immediately to show responsiveness.",
		},
		impacts: []int{30, 10, 95, 45},
		rationales: []string{
			"Rigid resistance strains the relationship without addressing the new need.",
			"Ignoring the change guarantees wasted work.",
			"Salvaging what fits and re-planning openly adapts without panic.",
			"A full restart discards work the change did not invalidate.",
		},
	},
	{
		category: CategoryEmotionalStability,
		prompt:   "How do you react?",
		scenario: "In a review, a stakeholder sharply criticizes your work in front of the whole team, some of it unfairly.",
		options: []string{
			"Respond in kind so the criticism does not go unanswered.",
			"Acknowledge the fair points calmly and offer to go through the rest one-on-one afterwards.",
			"Stay silent, then vent to teammates after the meeting.",
			"Apologize for everything to end the moment quickly.",
		},
		impacts: []int{10, 95, 35, 30},
		rationales: []string{
			"Escalating in public turns feedback into a standoff.",
			"Composure plus a structured follow-up separates signal from heat.",
			"Bottling it up and venting later changes nothing.",
			"Blanket apology concedes points that were not valid.",
		},
	},
}
