package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"meetscribe/internal/domain"
)

func TestWorkspaceUploadSupportedTypes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		mime string
	}{
		{"notes.txt", "text/plain"},
		{"notes.txt", "text/plain; charset=utf-8"},
		{"meeting.vtt", "text/vtt"},
		{"MEETING.VTT", ""},
	}
	for _, tc := range cases {
		w := NewWorkspace(&fakeSummarizer{result: sampleSummary()}, &fakeEventSink{})
		w.SetTranscript("old")
		if _, err := w.Summarize(context.Background()); err != nil {
			t.Fatalf("seed summarize failed: %v", err)
		}

		if err := w.UploadTranscript(tc.name, tc.mime, []byte("Speaker 1: hi")); err != nil {
			t.Fatalf("%s (%s): upload failed: %v", tc.name, tc.mime, err)
		}
		snap := w.Snapshot()
		if snap.Transcript != "Speaker 1: hi" || snap.Filename != tc.name {
			t.Fatalf("%s: unexpected snapshot: %+v", tc.name, snap)
		}
		if snap.Result != nil || snap.Error != "" || snap.Phase != domain.SummaryPhaseIdle {
			t.Fatalf("%s: expected result and error to be cleared: %+v", tc.name, snap)
		}
	}
}

func TestWorkspaceUploadRejectsUnsupportedTypes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		mime string
	}{
		{"slides.pdf", "application/pdf"},
		{"call.mp3", "audio/mpeg"},
		{"notes.md", "text/markdown"},
		{"captions.srt", "application/x-subrip"},
	}
	for _, tc := range cases {
		events := &fakeEventSink{}
		w := NewWorkspace(&fakeSummarizer{}, events)
		w.SetTranscript("keep me")
		w.SetTitleHint("hint")
		before := w.Snapshot()
		published := len(events.snapshotWorkspace())

		err := w.UploadTranscript(tc.name, tc.mime, []byte("data"))
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", tc.name, err)
		}
		after := w.Snapshot()
		if after.Transcript != before.Transcript || after.Filename != before.Filename || after.TitleHint != before.TitleHint {
			t.Fatalf("%s: state changed on rejected upload: %+v", tc.name, after)
		}
		if len(events.snapshotWorkspace()) != published {
			t.Fatalf("%s: rejected upload must not publish", tc.name)
		}
	}
}

func TestWorkspaceSummarizeBlankNeverCallsGateway(t *testing.T) {
	t.Parallel()

	for _, transcript := range []string{"", "   ", "\n\t  \n"} {
		summarizer := &fakeSummarizer{result: sampleSummary()}
		w := NewWorkspace(summarizer, &fakeEventSink{})
		w.SetTranscript(transcript)

		_, err := w.Summarize(context.Background())
		if !errors.Is(err, domain.ErrEmptyInput) {
			t.Fatalf("expected empty input, got %v", err)
		}
		if summarizer.callCount() != 0 {
			t.Fatalf("gateway must not be called for %q", transcript)
		}
		if snap := w.Snapshot(); snap.Error == "" || snap.Summarizing {
			t.Fatalf("expected an error message and no loading: %+v", snap)
		}
	}
}

func TestWorkspaceSummarizeSuccess(t *testing.T) {
	t.Parallel()

	summarizer := &fakeSummarizer{result: sampleSummary()}
	events := &fakeEventSink{}
	w := NewWorkspace(summarizer, events)
	w.SetTranscript("Speaker 1: We ship Friday. John will write the report.")
	w.SetTitleHint("Release")

	result, err := w.Summarize(context.Background())
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if result.Title != "Release Planning" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if summarizer.lastHint() != "Release" {
		t.Fatalf("expected title hint to be forwarded, got %q", summarizer.lastHint())
	}

	snap := w.Snapshot()
	if snap.Phase != domain.SummaryPhaseReady || snap.Result == nil || snap.Error != "" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	phases := []domain.SummaryPhase{}
	for _, s := range events.snapshotWorkspace() {
		phases = append(phases, s.Phase)
	}
	if phases[len(phases)-2] != domain.SummaryPhaseLoading || phases[len(phases)-1] != domain.SummaryPhaseReady {
		t.Fatalf("expected loading then ready, got %v", phases)
	}
}

func TestWorkspaceSummarizeFailureKeepsPreviousResult(t *testing.T) {
	t.Parallel()

	summarizer := &fakeSummarizer{result: sampleSummary()}
	w := NewWorkspace(summarizer, &fakeEventSink{})
	w.SetTranscript("first meeting")
	if _, err := w.Summarize(context.Background()); err != nil {
		t.Fatalf("first summarize failed: %v", err)
	}

	summarizer.setErr(errors.New("network down"))
	_, err := w.Summarize(context.Background())
	if !errors.Is(err, domain.ErrSummarization) {
		t.Fatalf("expected summarization error, got %v", err)
	}

	snap := w.Snapshot()
	if snap.Phase != domain.SummaryPhaseFailed || snap.Error == "" {
		t.Fatalf("expected failed phase with message: %+v", snap)
	}
	if snap.Result == nil || snap.Result.Title != "Release Planning" {
		t.Fatalf("previous result must be left untouched: %+v", snap.Result)
	}
	if snap.Summarizing {
		t.Fatalf("must not remain summarizing after failure")
	}
}

func TestWorkspaceRejectsConcurrentSummarize(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	summarizer := &fakeSummarizer{result: sampleSummary(), block: release}
	w := NewWorkspace(summarizer, &fakeEventSink{})
	w.SetTranscript("text")

	done := make(chan error, 1)
	go func() {
		_, err := w.Summarize(context.Background())
		done <- err
	}()
	waitFor(t, func() bool { return summarizer.callCount() == 1 })

	snap := w.Snapshot()
	if !snap.Summarizing || snap.CanSummarize {
		t.Fatalf("expected summarizing snapshot: %+v", snap)
	}
	if _, err := w.Summarize(context.Background()); !errors.Is(err, domain.ErrSummaryInFlight) {
		t.Fatalf("expected in-flight error, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if summarizer.callCount() != 1 {
		t.Fatalf("expected one gateway call, got %d", summarizer.callCount())
	}
}

func TestWorkspaceClearResetsEverythingTogether(t *testing.T) {
	t.Parallel()

	w := NewWorkspace(&fakeSummarizer{result: sampleSummary()}, &fakeEventSink{})
	if err := w.UploadTranscript("notes.txt", "text/plain", []byte("hello")); err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	w.SetTitleHint("Weekly")
	if _, err := w.Summarize(context.Background()); err != nil {
		t.Fatalf("summarize failed: %v", err)
	}

	w.Clear()
	snap := w.Snapshot()
	if snap.Transcript != "" || snap.Filename != "" || snap.TitleHint != "" || snap.Error != "" || snap.Result != nil {
		t.Fatalf("expected everything cleared: %+v", snap)
	}
	if snap.Phase != domain.SummaryPhaseIdle || len(snap.ActionItems) != 0 {
		t.Fatalf("unexpected phase after clear: %+v", snap)
	}
}

func TestWorkspaceClearDiscardsInFlightSummary(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	summarizer := &fakeSummarizer{result: sampleSummary(), block: release}
	events := &fakeEventSink{}
	w := NewWorkspace(summarizer, events)
	w.SetTranscript("text")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = w.Summarize(context.Background())
	}()
	waitFor(t, func() bool { return summarizer.callCount() == 1 })

	w.Clear()
	close(release)
	<-done

	snap := w.Snapshot()
	if snap.Result != nil || snap.Phase != domain.SummaryPhaseIdle || snap.Transcript != "" {
		t.Fatalf("stale summary surfaced after clear: %+v", snap)
	}
	published := events.snapshotWorkspace()
	if last := published[len(published)-1]; last.Result != nil {
		t.Fatalf("stale summary published after clear: %+v", last)
	}
}

func TestWorkspaceAcceptTranscriptionSwitchesTab(t *testing.T) {
	t.Parallel()

	w := NewWorkspace(&fakeSummarizer{result: sampleSummary()}, &fakeEventSink{})
	w.SetTranscript("old")
	_, _ = w.Summarize(context.Background())
	if err := w.SetTab(domain.TabAudio); err != nil {
		t.Fatalf("set tab failed: %v", err)
	}

	w.AcceptTranscription("new transcript", SourceRecording)
	snap := w.Snapshot()
	if snap.Tab != domain.TabText || snap.Transcript != "new transcript" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Result != nil || snap.Error != "" {
		t.Fatalf("expected result cleared: %+v", snap)
	}
}

func TestWorkspaceFilterAppliesToSnapshot(t *testing.T) {
	t.Parallel()

	w := NewWorkspace(&fakeSummarizer{result: sampleSummary()}, &fakeEventSink{})
	w.SetTranscript("text")
	if _, err := w.Summarize(context.Background()); err != nil {
		t.Fatalf("summarize failed: %v", err)
	}

	w.SetFilter("high")
	snap := w.Snapshot()
	if snap.Filter != domain.FilterHigh || len(snap.ActionItems) != 1 || snap.ActionItems[0].Assignee != "John" {
		t.Fatalf("unexpected filtered items: %+v", snap.ActionItems)
	}
	if len(snap.Result.ActionItems) != 2 {
		t.Fatalf("filter must not modify the result")
	}

	w.SetFilter("bogus")
	if snap := w.Snapshot(); snap.Filter != domain.FilterAll || len(snap.ActionItems) != 2 {
		t.Fatalf("unknown filter must fall back to All: %+v", snap)
	}
}

func TestWorkspaceSetTabRejectsUnknown(t *testing.T) {
	t.Parallel()

	w := NewWorkspace(&fakeSummarizer{}, nil)
	if err := w.SetTab("video"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestWorkspaceSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	w := NewWorkspace(&fakeSummarizer{result: sampleSummary()}, nil)
	w.SetTranscript("text")
	_, _ = w.Summarize(context.Background())

	snap := w.Snapshot()
	snap.Result.ActionItems[0].Task = "mutated"
	if again := w.Snapshot(); strings.Contains(again.Result.ActionItems[0].Task, "mutated") {
		t.Fatalf("snapshot mutation leaked into workspace")
	}
}

func sampleSummary() domain.SummaryResult {
	return domain.SummaryResult{
		Title:           "Release Planning",
		ShortSummary:    "The team will ship on Friday.",
		DetailedSummary: []string{"Ship Friday"},
		ActionItems: []domain.ActionItem{
			{Task: "Write the report", Assignee: "John", Priority: domain.PriorityHigh},
			{Task: "Update changelog", Assignee: "Ana", Priority: domain.PriorityLow},
		},
		DiscussionBreakdown: []domain.DiscussionPoint{},
	}
}

type fakeSummarizer struct {
	mu     sync.Mutex
	result domain.SummaryResult
	err    error
	block  chan struct{}
	calls  int
	hint   string
}

func (f *fakeSummarizer) Summarize(ctx context.Context, _ string, titleHint string) (domain.SummaryResult, error) {
	f.mu.Lock()
	f.calls++
	f.hint = titleHint
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return domain.SummaryResult{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.SummaryResult{}, f.err
	}
	return f.result.Clone(), nil
}

func (f *fakeSummarizer) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeSummarizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeSummarizer) lastHint() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hint
}
