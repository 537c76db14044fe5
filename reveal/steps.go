package reveal

import (
	"slices"
	"strings"

	"github.com/poiesic/askit/core"
)

// StepPlanner builds the reasoning-step sequence shown while an answer is
// generated. Implementations must return a non-empty list whose last
// element is the completion step.
type StepPlanner interface {
	Plan(query string) []core.ReasoningStep
}

// StepRule maps topic keywords to the steps shown for queries about that
// topic. Rules are evaluated in order; the first keyword hit wins.
type StepRule struct {
	Keywords []string
	Steps    []core.ReasoningStep
}

// Planner is the default rule-table StepPlanner. Its content is display
// copy, not algorithm: swap the rules to retheme the assistant.
type Planner struct {
	rules      []StepRule
	fallback   []core.ReasoningStep
	completion core.ReasoningStep
}

// NewPlanner returns a planner with the standard portfolio-assistant rules.
func NewPlanner() *Planner {
	return &Planner{
		rules: []StepRule{
			{
				Keywords: []string{"project", "portfolio", "built", "build", "app"},
				Steps: []core.ReasoningStep{
					{Icon: "search", Text: "Scanning project history..."},
					{Icon: "rank", Text: "Picking the most relevant projects..."},
				},
			},
			{
				Keywords: []string{"skill", "technolog", "stack", "tool", "framework"},
				Steps: []core.ReasoningStep{
					{Icon: "search", Text: "Looking up technical skills..."},
					{Icon: "match", Text: "Matching skills to your question..."},
				},
			},
			{
				Keywords: []string{"experience", "job", "career", "company", "role", "work"},
				Steps: []core.ReasoningStep{
					{Icon: "search", Text: "Reviewing work experience..."},
					{Icon: "rank", Text: "Ordering roles by relevance..."},
				},
			},
			{
				Keywords: []string{"education", "degree", "study", "studied", "university", "school"},
				Steps: []core.ReasoningStep{
					{Icon: "search", Text: "Checking education records..."},
				},
			},
			{
				Keywords: []string{"contact", "email", "reach", "hire", "available"},
				Steps: []core.ReasoningStep{
					{Icon: "search", Text: "Finding contact details..."},
				},
			},
		},
		fallback: []core.ReasoningStep{
			{Icon: "search", Text: "Searching the knowledge base..."},
			{Icon: "think", Text: "Connecting the relevant pieces..."},
		},
		completion: core.ReasoningStep{Icon: "done", Text: "Preparing the answer..."},
	}
}

// NewPlannerWithRules returns a planner with a custom rule table. The
// completion step is always appended last.
func NewPlannerWithRules(rules []StepRule, fallback []core.ReasoningStep, completion core.ReasoningStep) *Planner {
	return &Planner{
		rules:      rules,
		fallback:   fallback,
		completion: completion,
	}
}

// Plan returns the step sequence for a query. The result always ends with
// the completion step, so it is never empty.
func (p *Planner) Plan(query string) []core.ReasoningStep {
	lowered := strings.ToLower(query)
	for _, rule := range p.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lowered, keyword) {
				return append(slices.Clone(rule.Steps), p.completion)
			}
		}
	}
	return append(slices.Clone(p.fallback), p.completion)
}
