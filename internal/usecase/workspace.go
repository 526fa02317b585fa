package usecase

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"sync"

	"meetscribe/internal/domain"
	"meetscribe/internal/ports"
	"meetscribe/internal/render"
)

// Workspace is the application state machine: transcript acquisition, the
// summarization trigger, the tagged result state and tab/filter UI state.
type Workspace struct {
	summarizer ports.Summarizer
	events     ports.EventSink

	mu         sync.Mutex
	transcript string
	filename   string
	titleHint  string
	tab        domain.Tab
	filter     domain.PriorityFilter
	result     domain.ResultState
	generation uint64
}

func NewWorkspace(summarizer ports.Summarizer, events ports.EventSink) *Workspace {
	if events == nil {
		events = NopEventSink{}
	}
	return &Workspace{
		summarizer: summarizer,
		events:     events,
		tab:        domain.TabText,
		filter:     domain.FilterAll,
		result:     domain.SummaryIdle{},
	}
}

// SetTranscript replaces the transcript with pasted or edited text.
func (w *Workspace) SetTranscript(text string) {
	w.mu.Lock()
	w.transcript = text
	w.mu.Unlock()
	w.publish()
}

// UploadTranscript accepts plain text or .vtt captions. Anything else is rejected
// with the workspace unchanged.
func (w *Workspace) UploadTranscript(name string, mimeType string, data []byte) error {
	if !IsTranscriptFile(name, mimeType) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, name)
	}

	w.mu.Lock()
	w.transcript = string(data)
	w.filename = name
	w.resetResultLocked()
	w.mu.Unlock()
	w.publish()
	return nil
}

// AcceptTranscription installs a completed transcription and switches to the
// text tab.
func (w *Workspace) AcceptTranscription(text string, _ string) {
	w.mu.Lock()
	w.transcript = text
	w.tab = domain.TabText
	w.resetResultLocked()
	w.mu.Unlock()
	w.publish()
}

func (w *Workspace) SetTitleHint(hint string) {
	w.mu.Lock()
	w.titleHint = hint
	w.mu.Unlock()
	w.publish()
}

func (w *Workspace) SetTab(tab domain.Tab) error {
	if tab != domain.TabText && tab != domain.TabAudio {
		return fmt.Errorf("%w: unknown tab %q", domain.ErrInvalidInput, tab)
	}
	w.mu.Lock()
	w.tab = tab
	w.mu.Unlock()
	w.publish()
	return nil
}

func (w *Workspace) SetFilter(filter string) {
	w.mu.Lock()
	w.filter = domain.ParseFilter(filter)
	w.mu.Unlock()
	w.publish()
}

// Summarize sends the transcript to the summarizer. At most one summarization runs
// at a time; a failure keeps the previous result visible next to the error.
func (w *Workspace) Summarize(ctx context.Context) (domain.SummaryResult, error) {
	w.mu.Lock()
	if w.result.Phase() == domain.SummaryPhaseLoading {
		w.mu.Unlock()
		return domain.SummaryResult{}, domain.ErrSummaryInFlight
	}
	previous := domain.VisibleResult(w.result)
	if strings.TrimSpace(w.transcript) == "" {
		w.result = domain.SummaryFailed{Message: domain.UserMessage(domain.ErrEmptyInput), Previous: previous}
		w.mu.Unlock()
		w.publish()
		return domain.SummaryResult{}, domain.ErrEmptyInput
	}

	w.generation++
	generation := w.generation
	transcript := w.transcript
	hint := w.titleHint
	w.result = domain.SummaryLoading{Previous: previous}
	w.mu.Unlock()
	w.publish()

	result, err := w.summarizer.Summarize(ctx, transcript, hint)
	if err != nil && !errors.Is(err, domain.ErrSummarization) {
		err = fmt.Errorf("%w: %w", domain.ErrSummarization, err)
	}

	w.mu.Lock()
	if w.generation != generation {
		// Cleared or replaced while in flight.
		w.mu.Unlock()
		return result, err
	}
	if err != nil {
		w.result = domain.SummaryFailed{Message: domain.UserMessage(err), Previous: previous}
	} else {
		w.result = domain.SummaryReady{Result: result.Clone()}
	}
	w.mu.Unlock()
	w.publish()
	return result, err
}

// Clear resets transcript, result, error, filename and title hint together. A
// summarization still in flight is discarded when it returns.
func (w *Workspace) Clear() {
	w.mu.Lock()
	w.transcript = ""
	w.filename = ""
	w.titleHint = ""
	w.resetResultLocked()
	w.mu.Unlock()
	w.publish()
}

// Result returns a copy of the visible summary, if any.
func (w *Workspace) Result() (domain.SummaryResult, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	visible := domain.VisibleResult(w.result)
	if visible == nil {
		return domain.SummaryResult{}, false
	}
	return visible.Clone(), true
}

// Snapshot returns an immutable view for rendering.
func (w *Workspace) Snapshot() domain.WorkspaceSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Workspace) snapshotLocked() domain.WorkspaceSnapshot {
	loading := w.result.Phase() == domain.SummaryPhaseLoading
	snapshot := domain.WorkspaceSnapshot{
		Transcript:   w.transcript,
		Filename:     w.filename,
		TitleHint:    w.titleHint,
		Tab:          w.tab,
		Filter:       w.filter,
		Phase:        w.result.Phase(),
		Error:        domain.ErrorMessage(w.result),
		ActionItems:  []domain.ActionItem{},
		Summarizing:  loading,
		CanSummarize: !loading && strings.TrimSpace(w.transcript) != "",
	}
	if visible := domain.VisibleResult(w.result); visible != nil {
		result := visible.Clone()
		snapshot.Result = &result
		snapshot.ActionItems = render.FilterActionItems(result.ActionItems, w.filter)
	}
	return snapshot
}

func (w *Workspace) resetResultLocked() {
	w.result = domain.SummaryIdle{}
	w.generation++
}

func (w *Workspace) publish() {
	w.mu.Lock()
	snapshot := w.snapshotLocked()
	w.mu.Unlock()
	w.events.WorkspaceChanged(snapshot)
}

// IsTranscriptFile reports whether an upload is plain text or .vtt captions.
func IsTranscriptFile(name string, mimeType string) bool {
	if strings.EqualFold(filepath.Ext(strings.TrimSpace(name)), ".vtt") {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return false
	}
	return mediaType == "text/plain"
}
