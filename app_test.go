package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"meetscribe/internal/bootstrap"
	"meetscribe/internal/domain"
	"meetscribe/internal/usecase"
)

func TestCaptureReasonMessage(t *testing.T) {
	t.Parallel()

	cases := map[domain.CaptureReason]string{
		domain.CaptureReasonReady:               "Ready to record",
		domain.CaptureReasonRecordingStarted:    "Recording started",
		domain.CaptureReasonRecordingRestarted:  "Recording restarted; previous capture discarded",
		domain.CaptureReasonTranscribing:        "Recording stopped. Transcribing...",
		domain.CaptureReasonTranscribingFile:    "Transcribing audio file...",
		domain.CaptureReasonTranscriptReady:     "Transcript ready",
		domain.CaptureReasonRecordingDiscarded:  "Recording discarded",
		domain.CaptureReasonPermissionDenied:    "Microphone unavailable",
		domain.CaptureReasonNoAudio:             "No audio captured",
		domain.CaptureReasonTranscriptionFailed: "Transcription failed",
	}

	for reason, want := range cases {
		reason := reason
		want := want
		t.Run(string(reason), func(t *testing.T) {
			t.Parallel()
			if got := captureReasonMessage(reason); got != want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}

	if got := captureReasonMessage("unknown"); got != "" {
		t.Fatalf("expected empty unknown reason message, got %q", got)
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	cases := map[domain.ErrorCode]string{
		domain.ErrorCodeStartup:       "Startup failed",
		domain.ErrorCodePermission:    "Microphone access denied",
		domain.ErrorCodeInvalidInput:  "Unsupported file",
		domain.ErrorCodeEmptyInput:    "Nothing to summarize",
		domain.ErrorCodeAudioStop:     "Audio stop issue",
		domain.ErrorCodeAudioStream:   "Audio streaming issue",
		domain.ErrorCodeAudioBusy:     "Audio device busy",
		domain.ErrorCodeTranscription: "Transcription error",
		domain.ErrorCodeSummarization: "Summarization error",
		domain.ErrorCodeSpeech:        "Speech synthesis error",
		domain.ErrorCodePlayback:      "Playback error",
		domain.ErrorCodeClipboard:     "Clipboard write failed",
		domain.ErrorCodeExport:        "Export failed",
	}
	for code, want := range cases {
		code := code
		want := want
		t.Run(string(code), func(t *testing.T) {
			t.Parallel()
			if got := errorMessage(code, "ignored"); got != want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}

	if got := errorMessage("unknown", "detail"); got != "detail" {
		t.Fatalf("expected detail fallback, got %q", got)
	}
	if got := errorMessage("unknown", ""); got != "Unknown error" {
		t.Fatalf("expected unknown fallback, got %q", got)
	}
}

func TestRequireReady(t *testing.T) {
	t.Parallel()

	app := &App{}
	if err := app.requireReady(); err == nil {
		t.Fatalf("expected uninitialized error")
	}

	bootErr := errors.New("boot")
	app.bootErr = bootErr
	if err := app.requireReady(); !errors.Is(err, bootErr) {
		t.Fatalf("expected boot error, got %v", err)
	}
}

func TestStatusWhenNotInitialized(t *testing.T) {
	t.Parallel()

	app := &App{}
	if status := app.GetCaptureStatus(); status.State != domain.CaptureStateIdle || status.Active {
		t.Fatalf("unexpected status: %+v", status)
	}
	if state := app.GetPlaybackState(); state != domain.PlaybackStateIdle {
		t.Fatalf("unexpected playback state: %q", state)
	}
	if _, err := app.Summarize(); err == nil {
		t.Fatalf("expected summarize to require initialization")
	}

	app.bootErr = errors.New("boot")
	if info := app.GetRuntimeInfo(); info["error"] != "boot" {
		t.Fatalf("unexpected runtime info: %+v", info)
	}
}

func TestEventsAreDroppedBeforeStartup(t *testing.T) {
	t.Parallel()

	app := &App{}
	app.CaptureStateChanged(domain.CaptureStateRecording, domain.CaptureReasonRecordingStarted)
	app.RecordingElapsed(3)
	app.PlaybackStateChanged(domain.PlaybackStatePlaying)
	app.WorkspaceChanged(domain.WorkspaceSnapshot{})
	app.TranscriptReady("text", "recording")
	app.Error(domain.ErrorCodeStartup, "boom")
	app.handleFileDrop(0, 0, []string{"/tmp/notes.txt"})
}

func TestFileDropLoadsTranscriptAndSummarizes(t *testing.T) {
	t.Parallel()

	app := readyApp(&stubSummarizer{result: domain.SummaryResult{Title: "Retro", ShortSummary: "Went well."}})

	dir := t.TempDir()
	transcript := filepath.Join(dir, "retro.txt")
	if err := os.WriteFile(transcript, []byte("Ana: it went well"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ignored := filepath.Join(dir, "slides.pdf")
	if err := os.WriteFile(ignored, []byte("%PDF"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	app.handleFileDrop(0, 0, []string{ignored, transcript})

	snapshot, err := app.GetWorkspace()
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	if snapshot.Transcript != "Ana: it went well" || snapshot.Filename != "retro.txt" {
		t.Fatalf("expected dropped transcript to load, got %+v", snapshot)
	}

	snapshot, err = app.Summarize()
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if snapshot.Result == nil || snapshot.Result.Title != "Retro" {
		t.Fatalf("expected ready result, got %+v", snapshot)
	}
}

func TestSetTabRejectsUnknownTab(t *testing.T) {
	t.Parallel()

	app := readyApp(&stubSummarizer{})
	if err := app.SetTab("video"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if err := app.SetTab("audio"); err != nil {
		t.Fatalf("set tab: %v", err)
	}
}

func readyApp(summarizer *stubSummarizer) *App {
	events := usecase.NopEventSink{}
	return &App{services: bootstrap.Services{
		Capture:   usecase.NewCaptureController(nil, nil, nil, nil, nil, events, usecase.CaptureConfig{}),
		Workspace: usecase.NewWorkspace(summarizer, events),
	}}
}

type stubSummarizer struct {
	result domain.SummaryResult
}

func (s *stubSummarizer) Summarize(context.Context, string, string) (domain.SummaryResult, error) {
	return s.result, nil
}
