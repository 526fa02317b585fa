package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"meetscribe/internal/bootstrap"
	"meetscribe/internal/domain"
	"meetscribe/internal/render"
	"meetscribe/internal/usecase"
	"meetscribe/internal/watcher"
)

const (
	eventCapture    = "meetscribe:capture"
	eventElapsed    = "meetscribe:elapsed"
	eventPlayback   = "meetscribe:playback"
	eventWorkspace  = "meetscribe:workspace"
	eventTranscript = "meetscribe:transcript"
	eventError      = "meetscribe:error"
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	services bootstrap.Services
	bootErr  error
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(ctx, a, &wailsClipboard{})
	if err != nil {
		a.bootErr = err
		a.Error(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.services = services
	runtime.OnFileDrop(ctx, a.handleFileDrop)
	a.CaptureStateChanged(domain.CaptureStateIdle, domain.CaptureReasonReady)
	a.WorkspaceChanged(services.Workspace.Snapshot())
}

func (a *App) shutdown(_ context.Context) {
	if a.services.Capture == nil {
		return
	}
	if err := a.services.Close(); err != nil {
		a.services.Log.Warn("shutdown", "error", err)
	}
}

// StartRecording acquires the microphone and starts recording.
func (a *App) StartRecording() (domain.CaptureStatus, error) {
	if err := a.requireReady(); err != nil {
		return domain.CaptureStatus{}, err
	}
	if err := a.services.Capture.Start(a.ctx); err != nil {
		a.reportError(err, domain.ErrorCodeTranscription)
		return a.services.Capture.Status(), err
	}
	return a.services.Capture.Status(), nil
}

// StopRecording stops recording and returns the transcript, which also lands in
// the workspace.
func (a *App) StopRecording() (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	text, err := a.services.Capture.Stop(a.ctx)
	if err != nil {
		if errors.Is(err, usecase.ErrNoActiveSession) {
			return "", nil
		}
		a.reportError(err, domain.ErrorCodeTranscription)
		return "", err
	}
	return text, nil
}

// AbortRecording discards an in-progress recording.
func (a *App) AbortRecording() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.services.Capture.Abort(); err != nil {
		if errors.Is(err, usecase.ErrNoActiveSession) {
			return nil
		}
		a.reportError(err, domain.ErrorCodeTranscription)
		return err
	}
	return nil
}

// GetCaptureStatus returns the current capture status.
func (a *App) GetCaptureStatus() domain.CaptureStatus {
	if a.services.Capture == nil {
		return domain.CaptureStatus{State: domain.CaptureStateIdle}
	}
	return a.services.Capture.Status()
}

// TranscribeAudioFile transcribes an uploaded recording into the workspace.
func (a *App) TranscribeAudioFile(name string, mimeType string, data []byte) (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	text, err := a.services.Capture.TranscribeFile(a.ctx, name, mimeType, data)
	if err != nil {
		a.reportError(err, domain.ErrorCodeTranscription)
		return "", err
	}
	return text, nil
}

// GetWorkspace returns the workspace snapshot.
func (a *App) GetWorkspace() (domain.WorkspaceSnapshot, error) {
	if err := a.requireReady(); err != nil {
		return domain.WorkspaceSnapshot{}, err
	}
	return a.services.Workspace.Snapshot(), nil
}

func (a *App) SetTranscript(text string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.services.Workspace.SetTranscript(text)
	return nil
}

// UploadTranscript accepts a .txt or .vtt transcript.
func (a *App) UploadTranscript(name string, mimeType string, data []byte) (domain.WorkspaceSnapshot, error) {
	if err := a.requireReady(); err != nil {
		return domain.WorkspaceSnapshot{}, err
	}
	if err := a.services.Workspace.UploadTranscript(name, mimeType, data); err != nil {
		a.reportError(err, domain.ErrorCodeInvalidInput)
		return a.services.Workspace.Snapshot(), err
	}
	return a.services.Workspace.Snapshot(), nil
}

func (a *App) SetTitleHint(hint string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.services.Workspace.SetTitleHint(hint)
	return nil
}

func (a *App) SetTab(tab string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Workspace.SetTab(domain.Tab(tab))
}

func (a *App) SetFilter(filter string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.services.Workspace.SetFilter(filter)
	return nil
}

// Summarize summarizes the current transcript. Failures are already reflected
// in the workspace snapshot.
func (a *App) Summarize() (domain.WorkspaceSnapshot, error) {
	if err := a.requireReady(); err != nil {
		return domain.WorkspaceSnapshot{}, err
	}
	if _, err := a.services.Workspace.Summarize(a.ctx); err != nil {
		a.reportError(err, domain.ErrorCodeSummarization)
		return a.services.Workspace.Snapshot(), err
	}
	return a.services.Workspace.Snapshot(), nil
}

func (a *App) Clear() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.services.Workspace.Clear()
	return nil
}

// TogglePlayback reads the current summary aloud, or stops it.
func (a *App) TogglePlayback() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	var text string
	if result, ok := a.services.Workspace.Result(); ok {
		text = render.SpeechText(result)
	}
	if err := a.services.Playback.Toggle(a.ctx, text); err != nil {
		a.reportError(err, domain.ErrorCodeSpeech)
		return err
	}
	return nil
}

func (a *App) GetPlaybackState() domain.PlaybackState {
	if a.services.Playback == nil {
		return domain.PlaybackStateIdle
	}
	return a.services.Playback.State()
}

// CopyNotification renders the team notification and copies it to the
// clipboard. A clipboard failure is reported but the text is still returned.
func (a *App) CopyNotification() (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	result, ok := a.services.Workspace.Result()
	if !ok {
		return "", errors.New("no summary to share yet")
	}
	text, err := render.NotificationText(result)
	if err != nil {
		return "", err
	}
	if err := a.services.Clipboard.SetText(a.ctx, text); err != nil {
		a.Error(domain.ErrorCodeClipboard, err.Error())
	}
	return text, nil
}

// ExportMarkdown asks for a destination and writes the summary as markdown.
func (a *App) ExportMarkdown() (string, error) {
	return a.export("md", "Markdown", func(result domain.SummaryResult, path string) error {
		return os.WriteFile(path, []byte(render.Markdown(result)), 0o644)
	})
}

// ExportDocx asks for a destination and writes the summary as a Word document.
func (a *App) ExportDocx() (string, error) {
	return a.export("docx", "Word document", render.WriteDocx)
}

func (a *App) export(ext string, label string, write func(domain.SummaryResult, string) error) (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	result, ok := a.services.Workspace.Result()
	if !ok {
		return "", errors.New("no summary to export yet")
	}

	path, err := runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		Title:           "Export summary",
		DefaultFilename: render.ExportFilename(result.Title, ext),
		Filters:         []runtime.FileFilter{{DisplayName: label, Pattern: "*." + ext}},
	})
	if err != nil || path == "" {
		return "", err
	}
	if err := write(result, path); err != nil {
		a.Error(domain.ErrorCodeExport, err.Error())
		return "", err
	}
	return path, nil
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	cfg := a.services.Config
	return map[string]string{
		"summaryModel":          cfg.Gemini.SummaryModel,
		"speechModel":           cfg.Gemini.SpeechModel,
		"voice":                 cfg.Gemini.Voice,
		"transcriptionProvider": cfg.Transcription.Provider,
		"audioInput":            cfg.Audio.InputDevice,
		"audioInputFormat":      cfg.Audio.InputFormat,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.services.Capture == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// handleFileDrop routes dropped transcripts into the workspace and dropped
// recordings to the transcriber.
func (a *App) handleFileDrop(_ int, _ int, paths []string) {
	if a.requireReady() != nil {
		return
	}
	for _, path := range paths {
		kind := watcher.Classify(path)
		if kind == watcher.KindIgnored {
			a.reportError(fmt.Errorf("%w: %s", domain.ErrInvalidInput, filepath.Base(path)), domain.ErrorCodeInvalidInput)
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			a.Error(domain.ErrorCodeInvalidInput, err.Error())
			continue
		}

		name := filepath.Base(path)
		mimeType := watcher.MIMEType(path)
		if kind == watcher.KindTranscript {
			_, _ = a.UploadTranscript(name, mimeType, data)
			continue
		}
		go func() {
			_, _ = a.TranscribeAudioFile(name, mimeType, data)
		}()
	}
}

func (a *App) reportError(err error, fallback domain.ErrorCode) {
	code := domain.CodeOf(err)
	if code == "" {
		code = fallback
	}
	a.Error(code, domain.UserMessage(err))
}

// CaptureStateChanged emits recording lifecycle updates to the frontend.
func (a *App) CaptureStateChanged(state domain.CaptureState, reason domain.CaptureReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventCapture, map[string]string{
		"state":   string(state),
		"reason":  string(reason),
		"message": captureReasonMessage(reason),
	})
}

func (a *App) RecordingElapsed(seconds int) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventElapsed, map[string]int{"seconds": seconds})
}

func (a *App) PlaybackStateChanged(state domain.PlaybackState) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventPlayback, map[string]string{"state": string(state)})
}

func (a *App) WorkspaceChanged(snapshot domain.WorkspaceSnapshot) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventWorkspace, snapshot)
}

func (a *App) TranscriptReady(text string, source string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventTranscript, map[string]string{"text": text, "source": source})
}

// Error emits backend errors to the UI.
func (a *App) Error(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func captureReasonMessage(reason domain.CaptureReason) string {
	switch reason {
	case domain.CaptureReasonReady:
		return "Ready to record"
	case domain.CaptureReasonRecordingStarted:
		return "Recording started"
	case domain.CaptureReasonRecordingRestarted:
		return "Recording restarted; previous capture discarded"
	case domain.CaptureReasonTranscribing:
		return "Recording stopped. Transcribing..."
	case domain.CaptureReasonTranscribingFile:
		return "Transcribing audio file..."
	case domain.CaptureReasonTranscriptReady:
		return "Transcript ready"
	case domain.CaptureReasonRecordingDiscarded:
		return "Recording discarded"
	case domain.CaptureReasonPermissionDenied:
		return "Microphone unavailable"
	case domain.CaptureReasonNoAudio:
		return "No audio captured"
	case domain.CaptureReasonTranscriptionFailed:
		return "Transcription failed"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodePermission:
		return "Microphone access denied"
	case domain.ErrorCodeInvalidInput:
		return "Unsupported file"
	case domain.ErrorCodeEmptyInput:
		return "Nothing to summarize"
	case domain.ErrorCodeAudioStop:
		return "Audio stop issue"
	case domain.ErrorCodeAudioStream:
		return "Audio streaming issue"
	case domain.ErrorCodeAudioBusy:
		return "Audio device busy"
	case domain.ErrorCodeTranscription:
		return "Transcription error"
	case domain.ErrorCodeSummarization:
		return "Summarization error"
	case domain.ErrorCodeSpeech:
		return "Speech synthesis error"
	case domain.ErrorCodePlayback:
		return "Playback error"
	case domain.ErrorCodeClipboard:
		return "Clipboard write failed"
	case domain.ErrorCodeExport:
		return "Export failed"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}

type wailsClipboard struct{}

func (c *wailsClipboard) SetText(ctx context.Context, text string) error {
	return runtime.ClipboardSetText(ctx, text)
}
