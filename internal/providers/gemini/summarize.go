package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"google.golang.org/genai"

	"meetscribe/internal/domain"
)

const dueDateLayout = "2006-01-02"

const summaryInstruction = `You are an assistant that summarizes meeting transcripts.
Read the transcript below and produce:
- title: a concise meeting title%s
- shortSummary: two or three sentences covering the outcome of the meeting
- detailedSummary: a bulleted list of the key topics, one string per bullet
- discussionBreakdown: for each speaker, the key points they raised
- actionItems: every task that was agreed, with the task, the person it is assigned to
  ("Unassigned" if nobody took it), a priority of High, Medium or Low, and a due date
  formatted YYYY-MM-DD when one was stated, otherwise an empty string

Respond with JSON only.

Transcript:
---
%s
---`

// Summarize asks the model for a SummaryResult. Anything short of a schema-complete
// response is reported as domain.ErrSummarization.
func (p *Provider) Summarize(ctx context.Context, transcript string, titleHint string) (domain.SummaryResult, error) {
	if strings.TrimSpace(transcript) == "" {
		return domain.SummaryResult{}, domain.ErrEmptyInput
	}

	resp, err := p.generate(ctx, p.cfg.SummaryModel,
		[]*genai.Part{genai.NewPartFromText(buildSummaryPrompt(transcript, titleHint))},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   summarySchema(),
		},
	)
	if err != nil {
		return domain.SummaryResult{}, fmt.Errorf("%w: %w", domain.ErrSummarization, err)
	}

	result, err := decodeSummary(responseText(resp))
	if err != nil {
		return domain.SummaryResult{}, fmt.Errorf("%w: %w", domain.ErrSummarization, err)
	}
	return result, nil
}

func buildSummaryPrompt(transcript string, titleHint string) string {
	hint := ""
	if titleHint = strings.TrimSpace(titleHint); titleHint != "" {
		hint = fmt.Sprintf(" (the user suggested %q)", titleHint)
	}
	return fmt.Sprintf(summaryInstruction, hint, strings.TrimSpace(transcript))
}

func summarySchema() *genai.Schema {
	stringList := &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":           {Type: genai.TypeString},
			"shortSummary":    {Type: genai.TypeString},
			"detailedSummary": stringList,
			"discussionBreakdown": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"speaker": {Type: genai.TypeString},
						"points":  stringList,
					},
					Required: []string{"speaker", "points"},
				},
			},
			"actionItems": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"task":     {Type: genai.TypeString},
						"assignee": {Type: genai.TypeString},
						"priority": {
							Type: genai.TypeString,
							Enum: []string{string(domain.PriorityHigh), string(domain.PriorityMedium), string(domain.PriorityLow)},
						},
						"dueDate": {Type: genai.TypeString, Description: "YYYY-MM-DD or empty"},
					},
					Required: []string{"task", "assignee", "priority"},
				},
			},
		},
		Required: []string{"title", "shortSummary", "detailedSummary", "actionItems"},
	}
}

// Pointer fields distinguish a missing value from an empty one.
type wireSummary struct {
	Title               *string           `json:"title"`
	ShortSummary        *string           `json:"shortSummary"`
	DetailedSummary     *[]string         `json:"detailedSummary"`
	ActionItems         *[]wireActionItem `json:"actionItems"`
	DiscussionBreakdown *[]wireDiscussion `json:"discussionBreakdown"`
}

type wireActionItem struct {
	Task     *string `json:"task"`
	Assignee *string `json:"assignee"`
	Priority *string `json:"priority"`
	DueDate  *string `json:"dueDate"`
}

type wireDiscussion struct {
	Speaker *string   `json:"speaker"`
	Points  *[]string `json:"points"`
}

// decodeSummary is a strict decode of the model's JSON. Only three defaults are
// filled: priority (Medium), dueDate (empty) and discussionBreakdown (empty list).
func decodeSummary(payload string) (domain.SummaryResult, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return domain.SummaryResult{}, errors.New("empty response")
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.DisallowUnknownFields()
	var wire wireSummary
	if err := dec.Decode(&wire); err != nil {
		return domain.SummaryResult{}, fmt.Errorf("malformed summary json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return domain.SummaryResult{}, errors.New("trailing data after summary json")
	}

	switch {
	case wire.Title == nil:
		return domain.SummaryResult{}, errors.New("missing title")
	case wire.ShortSummary == nil:
		return domain.SummaryResult{}, errors.New("missing shortSummary")
	case wire.DetailedSummary == nil:
		return domain.SummaryResult{}, errors.New("missing detailedSummary")
	case wire.ActionItems == nil:
		return domain.SummaryResult{}, errors.New("missing actionItems")
	}

	result := domain.SummaryResult{
		Title:               *wire.Title,
		ShortSummary:        *wire.ShortSummary,
		DetailedSummary:     append([]string{}, *wire.DetailedSummary...),
		ActionItems:         make([]domain.ActionItem, 0, len(*wire.ActionItems)),
		DiscussionBreakdown: []domain.DiscussionPoint{},
	}

	for i, item := range *wire.ActionItems {
		decoded, err := decodeActionItem(item)
		if err != nil {
			return domain.SummaryResult{}, fmt.Errorf("actionItems[%d]: %w", i, err)
		}
		result.ActionItems = append(result.ActionItems, decoded)
	}

	if wire.DiscussionBreakdown != nil {
		for i, point := range *wire.DiscussionBreakdown {
			if point.Speaker == nil {
				return domain.SummaryResult{}, fmt.Errorf("discussionBreakdown[%d]: missing speaker", i)
			}
			if point.Points == nil {
				return domain.SummaryResult{}, fmt.Errorf("discussionBreakdown[%d]: missing points", i)
			}
			points := append([]string{}, *point.Points...)
			result.DiscussionBreakdown = append(result.DiscussionBreakdown, domain.DiscussionPoint{
				Speaker: *point.Speaker,
				Points:  points,
			})
		}
	}

	return result, nil
}

func decodeActionItem(item wireActionItem) (domain.ActionItem, error) {
	if item.Task == nil || strings.TrimSpace(*item.Task) == "" {
		return domain.ActionItem{}, errors.New("missing task")
	}
	if item.Assignee == nil {
		return domain.ActionItem{}, errors.New("missing assignee")
	}

	decoded := domain.ActionItem{
		Task:     *item.Task,
		Assignee: *item.Assignee,
		Priority: domain.PriorityMedium,
	}

	if item.Priority != nil && strings.TrimSpace(*item.Priority) != "" {
		priority, ok := domain.ParsePriority(*item.Priority)
		if !ok {
			return domain.ActionItem{}, fmt.Errorf("invalid priority %q", *item.Priority)
		}
		decoded.Priority = priority
	}

	if item.DueDate != nil {
		due := strings.TrimSpace(*item.DueDate)
		if due != "" {
			if _, err := time.Parse(dueDateLayout, due); err != nil {
				return domain.ActionItem{}, fmt.Errorf("invalid dueDate %q", due)
			}
		}
		decoded.DueDate = due
	}

	return decoded, nil
}
