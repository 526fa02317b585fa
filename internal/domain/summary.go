package domain

import "strings"

// Priority ranks an action item.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// ParsePriority matches a priority case-insensitively.
func ParsePriority(value string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "high":
		return PriorityHigh, true
	case "medium":
		return PriorityMedium, true
	case "low":
		return PriorityLow, true
	default:
		return "", false
	}
}

// PriorityFilter selects which action items are shown.
type PriorityFilter string

const (
	FilterAll    PriorityFilter = "All"
	FilterHigh   PriorityFilter = PriorityFilter(PriorityHigh)
	FilterMedium PriorityFilter = PriorityFilter(PriorityMedium)
	FilterLow    PriorityFilter = PriorityFilter(PriorityLow)
)

// ParseFilter returns FilterAll for anything it does not recognise.
func ParseFilter(value string) PriorityFilter {
	if p, ok := ParsePriority(value); ok {
		return PriorityFilter(p)
	}
	return FilterAll
}

// ActionItem is a task extracted from a transcript. It has no identity beyond its position.
type ActionItem struct {
	Task     string   `json:"task"`
	Assignee string   `json:"assignee"`
	Priority Priority `json:"priority"`
	DueDate  string   `json:"dueDate"`
}

// DiscussionPoint groups the key points raised by one speaker.
type DiscussionPoint struct {
	Speaker string   `json:"speaker"`
	Points  []string `json:"points"`
}

// SummaryResult is the structured output of a summarization. It is produced whole and
// replaced whole.
type SummaryResult struct {
	Title               string            `json:"title"`
	ShortSummary        string            `json:"shortSummary"`
	DetailedSummary     []string          `json:"detailedSummary"`
	ActionItems         []ActionItem      `json:"actionItems"`
	DiscussionBreakdown []DiscussionPoint `json:"discussionBreakdown"`
}

// Clone returns a deep copy so callers can never mutate a rendered result.
func (r SummaryResult) Clone() SummaryResult {
	out := r
	out.DetailedSummary = append([]string(nil), r.DetailedSummary...)
	out.ActionItems = append([]ActionItem(nil), r.ActionItems...)
	out.DiscussionBreakdown = make([]DiscussionPoint, len(r.DiscussionBreakdown))
	for i, point := range r.DiscussionBreakdown {
		out.DiscussionBreakdown[i] = DiscussionPoint{
			Speaker: point.Speaker,
			Points:  append([]string(nil), point.Points...),
		}
	}
	return out
}
