package watcher

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"meetscribe/internal/domain"
	"meetscribe/internal/logger"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := map[string]Kind{
		"/in/notes.txt":      KindTranscript,
		"/in/call.VTT":       KindTranscript,
		"/in/standup.wav":    KindAudio,
		"/in/standup.m4a":    KindAudio,
		"/in/summary.md":     KindIgnored,
		"/in/summary.docx":   KindIgnored,
		"/in/.notes.txt.swp": KindIgnored,
		"/in/.hidden.txt":    KindIgnored,
		"/in/noext":          KindIgnored,
	}
	for path, want := range cases {
		if got := Classify(path); got != want {
			t.Fatalf("Classify(%q) = %v, want %v", path, got, want)
		}
	}

	if got := MIMEType("/in/call.mp3"); got != "audio/mpeg" {
		t.Fatalf("unexpected mime: %q", got)
	}
	if got := MIMEType("/in/notes.txt"); got != "text/plain" {
		t.Fatalf("unexpected mime: %q", got)
	}
}

func TestProcessorTranscriptWritesOutputs(t *testing.T) {
	t.Parallel()

	inbox := t.TempDir()
	outbox := filepath.Join(t.TempDir(), "out")
	path := filepath.Join(inbox, "weekly-sync.txt")
	writeFile(t, path, "Speaker 1: We ship Friday. John will write the report.")

	summarizer := &stubSummarizer{}
	notifier := &stubNotifier{}
	p := &Processor{Summarizer: summarizer, Notifier: notifier, Outbox: outbox, Docx: true}

	if err := p.Handle(context.Background(), path); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	md, err := os.ReadFile(filepath.Join(outbox, "weekly-sync.md"))
	if err != nil {
		t.Fatalf("expected markdown output: %v", err)
	}
	if !strings.Contains(string(md), "- [ ] Write the report (Assignee: John") {
		t.Fatalf("unexpected markdown: %q", md)
	}
	if _, err := os.Stat(filepath.Join(outbox, "weekly-sync.docx")); err != nil {
		t.Fatalf("expected docx output: %v", err)
	}

	if summarizer.hint != "weekly-sync" || !strings.Contains(summarizer.transcript, "John") {
		t.Fatalf("unexpected summarizer input: %+v", summarizer)
	}
	if len(notifier.titles) != 1 || notifier.titles[0] != "Release Planning" {
		t.Fatalf("unexpected notifications: %+v", notifier.titles)
	}
}

func TestProcessorAudioTranscribesFirst(t *testing.T) {
	t.Parallel()

	inbox := t.TempDir()
	outbox := t.TempDir()
	path := filepath.Join(inbox, "call.wav")
	writeFile(t, path, "RIFF....")

	transcriber := &stubTranscriber{text: "Speaker 1: John will write the report."}
	summarizer := &stubSummarizer{}
	p := &Processor{Summarizer: summarizer, Transcriber: transcriber, Outbox: outbox}

	if err := p.Handle(context.Background(), path); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if transcriber.mimeType != "audio/wav" || string(transcriber.audio) != "RIFF...." {
		t.Fatalf("unexpected transcriber input: %+v", transcriber)
	}
	if summarizer.transcript != transcriber.text {
		t.Fatalf("expected transcription to be summarized, got %q", summarizer.transcript)
	}
	if _, err := os.Stat(filepath.Join(outbox, "call.md")); err != nil {
		t.Fatalf("expected markdown output: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outbox, "call.docx")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("docx should not be written when disabled: %v", err)
	}
}

func TestProcessorPropagatesFailures(t *testing.T) {
	t.Parallel()

	inbox := t.TempDir()
	outbox := t.TempDir()

	empty := filepath.Join(inbox, "empty.txt")
	writeFile(t, empty, "   \n")
	p := &Processor{Summarizer: &stubSummarizer{}, Outbox: outbox}
	if err := p.Handle(context.Background(), empty); !errors.Is(err, domain.ErrEmptyInput) {
		t.Fatalf("expected empty input, got %v", err)
	}

	audio := filepath.Join(inbox, "call.mp3")
	writeFile(t, audio, "ID3")
	p.Transcriber = &stubTranscriber{err: domain.ErrTranscription}
	if err := p.Handle(context.Background(), audio); !errors.Is(err, domain.ErrTranscription) {
		t.Fatalf("expected transcription error, got %v", err)
	}

	failing := filepath.Join(inbox, "notes.txt")
	writeFile(t, failing, "hello")
	p.Summarizer = &stubSummarizer{err: errors.New("quota")}
	if err := p.Handle(context.Background(), failing); !errors.Is(err, domain.ErrSummarization) {
		t.Fatalf("expected summarization error, got %v", err)
	}

	entries, err := os.ReadDir(outbox)
	if err != nil {
		t.Fatalf("read outbox: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("failed files must not produce outputs, got %d", len(entries))
	}
}

func TestProcessorLogsThroughContextLogger(t *testing.T) {
	t.Parallel()

	inbox := t.TempDir()
	path := filepath.Join(inbox, "standup.txt")
	writeFile(t, path, "Speaker 1: John will write the report.")

	var out bytes.Buffer
	ctx := logger.WithContext(context.Background(), logger.New(logger.Config{Output: &out}).With("path", path))
	p := &Processor{Summarizer: &stubSummarizer{}, Outbox: t.TempDir()}
	if err := p.Handle(ctx, path); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if !strings.Contains(out.String(), "summary written") || !strings.Contains(out.String(), "path="+path) {
		t.Fatalf("expected summary log tagged with the inbox path, got %q", out.String())
	}
}

func TestWatcherProcessesCreatedFiles(t *testing.T) {
	t.Parallel()

	inbox := t.TempDir()
	handled := make(chan string, 4)
	w, err := New(inbox, func(_ context.Context, path string) error {
		handled <- filepath.Base(path)
		return nil
	}, nil, 1)
	if err != nil {
		t.Fatalf("new watcher failed: %v", err)
	}
	defer w.Close()
	w.settle = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	writeFile(t, filepath.Join(inbox, "ignored.md"), "# nope")
	writeFile(t, filepath.Join(inbox, "notes.txt"), "hello")

	select {
	case name := <-handled:
		if name != "notes.txt" {
			t.Fatalf("unexpected handled file: %q", name)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for watcher")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	select {
	case name := <-handled:
		t.Fatalf("unexpected extra file handled: %q", name)
	default:
	}
}

func TestNewRequiresInbox(t *testing.T) {
	t.Parallel()

	if _, err := New(" ", nil, nil, 1); err == nil {
		t.Fatalf("expected missing inbox error")
	}
	if _, err := New(filepath.Join(t.TempDir(), "missing"), nil, nil, 1); err == nil {
		t.Fatalf("expected missing directory error")
	}
}

func writeFile(t *testing.T, path string, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

type stubSummarizer struct {
	mu         sync.Mutex
	err        error
	transcript string
	hint       string
}

func (s *stubSummarizer) Summarize(_ context.Context, transcript string, titleHint string) (domain.SummaryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = transcript
	s.hint = titleHint
	if s.err != nil {
		return domain.SummaryResult{}, s.err
	}
	return domain.SummaryResult{
		Title:           "Release Planning",
		ShortSummary:    "Shipping Friday.",
		DetailedSummary: []string{"Ship Friday"},
		ActionItems: []domain.ActionItem{
			{Task: "Write the report", Assignee: "John", Priority: domain.PriorityHigh},
		},
		DiscussionBreakdown: []domain.DiscussionPoint{},
	}, nil
}

type stubTranscriber struct {
	text     string
	err      error
	audio    []byte
	mimeType string
}

func (s *stubTranscriber) Transcribe(_ context.Context, audio []byte, mimeType string) (string, error) {
	s.audio = audio
	s.mimeType = mimeType
	return s.text, s.err
}

type stubNotifier struct {
	titles []string
}

func (s *stubNotifier) Notify(title string, _ string) error {
	s.titles = append(s.titles, title)
	return nil
}
