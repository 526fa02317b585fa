package bootstrap

import (
	"context"
	"os"
	"strings"
	"testing"

	"meetscribe/internal/config"
	"meetscribe/internal/domain"
	"meetscribe/internal/providers/deepgram"
	"meetscribe/internal/providers/gemini"
)

func TestBuildSuccess(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	unsetenv(t, "MEETSCRIBE_CONFIG", "API_KEY", "MEETSCRIBE_TRANSCRIPTION_PROVIDER", "MEETSCRIBE_LOG_FILE")
	t.Setenv("GEMINI_API_KEY", "test-key")

	services, err := Build(context.Background(), noopEventSink{}, noopClipboard{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer services.Close()

	if services.Capture == nil || services.Playback == nil || services.Workspace == nil {
		t.Fatalf("expected state machines to be wired: %+v", services)
	}
	if _, ok := services.Transcriber.(*gemini.Provider); !ok {
		t.Fatalf("expected gemini transcriber by default, got %T", services.Transcriber)
	}
	if services.Log == nil || services.Clipboard == nil {
		t.Fatalf("expected logger and clipboard")
	}
}

func TestBuildFailsWithoutGeminiKey(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	unsetenv(t, "MEETSCRIBE_CONFIG", "GEMINI_API_KEY", "API_KEY")

	_, err := Build(context.Background(), noopEventSink{}, noopClipboard{})
	if err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Fatalf("expected missing credential error, got %v", err)
	}
}

func TestBuildWithDeepgramTranscriber(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		Gemini:        config.GeminiConfig{APIKey: "gemini-key"},
		Transcription: config.TranscriptionConfig{Provider: config.ProviderDeepgram},
		Deepgram:      config.DeepgramConfig{APIKey: "dg-key"},
	}
	services, err := BuildWith(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer services.Close()

	if _, ok := services.Transcriber.(*deepgram.Provider); !ok {
		t.Fatalf("expected deepgram transcriber, got %T", services.Transcriber)
	}
	if services.Gemini == nil {
		t.Fatalf("summaries still need gemini")
	}
}

func TestServicesCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	services, err := BuildWith(context.Background(), config.Config{Gemini: config.GeminiConfig{APIKey: "k"}}, nil, nil)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if err := services.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := services.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
}

func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

type noopEventSink struct{}

func (noopEventSink) CaptureStateChanged(domain.CaptureState, domain.CaptureReason) {}
func (noopEventSink) RecordingElapsed(int)                                          {}
func (noopEventSink) PlaybackStateChanged(domain.PlaybackState)                     {}
func (noopEventSink) WorkspaceChanged(domain.WorkspaceSnapshot)                     {}
func (noopEventSink) TranscriptReady(string, string)                                {}
func (noopEventSink) Error(domain.ErrorCode, string)                                {}

type noopClipboard struct{}

func (noopClipboard) SetText(_ context.Context, _ string) error { return nil }
