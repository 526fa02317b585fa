package render

import (
	"fmt"
	"strings"

	"meetscribe/internal/domain"
)

const fallbackFilename = "meeting_summary"

// FilterActionItems returns the items matching filter in their original order.
// The input slice is never modified; FilterAll returns it unchanged.
func FilterActionItems(items []domain.ActionItem, filter domain.PriorityFilter) []domain.ActionItem {
	if filter == domain.FilterAll || filter == "" {
		return items
	}
	out := make([]domain.ActionItem, 0, len(items))
	for _, item := range items {
		if domain.PriorityFilter(item.Priority) == filter {
			out = append(out, item)
		}
	}
	return out
}

// Markdown renders a summary with a fixed section order: title, short summary,
// detailed summary, discussion breakdown, then action items as checkbox lines.
func Markdown(result domain.SummaryResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", Heading(result.Title))

	b.WriteString("## Summary\n\n")
	b.WriteString(strings.TrimSpace(result.ShortSummary))
	b.WriteString("\n\n")

	b.WriteString("## Detailed Summary\n\n")
	for _, point := range result.DetailedSummary {
		fmt.Fprintf(&b, "- %s\n", strings.TrimSpace(point))
	}
	b.WriteString("\n")

	b.WriteString("## Discussion Breakdown\n\n")
	for _, speaker := range result.DiscussionBreakdown {
		fmt.Fprintf(&b, "### %s\n\n", strings.TrimSpace(speaker.Speaker))
		for _, point := range speaker.Points {
			fmt.Fprintf(&b, "- %s\n", strings.TrimSpace(point))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Action Items\n\n")
	for _, item := range result.ActionItems {
		fmt.Fprintf(&b, "- [ ] %s\n", ActionItemLine(item))
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// ActionItemLine formats one action item without the checkbox prefix.
func ActionItemLine(item domain.ActionItem) string {
	line := fmt.Sprintf("%s (Assignee: %s, Priority: %s", strings.TrimSpace(item.Task), assigneeText(item.Assignee), item.Priority)
	if item.DueDate != "" {
		line += ", Due: " + item.DueDate
	}
	return line + ")"
}

// ExportFilename derives a download name from the title: lowercased, with every
// non-alphanumeric character replaced by an underscore.
func ExportFilename(title string, ext string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	name := b.String()
	if strings.Trim(name, "_") == "" {
		name = fallbackFilename
	}
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return name
	}
	return name + "." + ext
}

// Heading returns the document title, falling back to "Meeting Summary".
func Heading(title string) string {
	if title = strings.TrimSpace(title); title != "" {
		return title
	}
	return "Meeting Summary"
}

func assigneeText(assignee string) string {
	if assignee = strings.TrimSpace(assignee); assignee != "" {
		return assignee
	}
	return "Unassigned"
}

// SpeechText is the text read aloud for a summary: the title followed by the
// short summary.
func SpeechText(result domain.SummaryResult) string {
	summary := strings.TrimSpace(result.ShortSummary)
	title := strings.TrimSpace(result.Title)
	switch {
	case title == "":
		return summary
	case summary == "":
		return title
	default:
		return strings.TrimRight(title, ".") + ". " + summary
	}
}
