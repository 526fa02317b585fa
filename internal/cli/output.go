package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"meetscribe/internal/domain"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Check(name string, ok bool, detail string) {
	if ok {
		fmt.Fprintf(f.w, "  ✅ %s: %s\n", name, detail)
	} else {
		fmt.Fprintf(f.w, "  ❌ %s: %s\n", name, detail)
	}
}

func (f *Formatter) Elapsed(seconds int) {
	fmt.Fprintf(f.w, "\r⏺️  Recording %s ", formatDuration(time.Duration(seconds)*time.Second))
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// terminalEvents renders pipeline events on a terminal. Playback transitions are
// forwarded so a command can wait for speech to finish.
type terminalEvents struct {
	out      *Formatter
	log      *slog.Logger
	playback chan domain.PlaybackState
}

func newTerminalEvents(w io.Writer, log *slog.Logger) *terminalEvents {
	return &terminalEvents{
		out:      NewFormatter(w),
		log:      log,
		playback: make(chan domain.PlaybackState, 8),
	}
}

func (e *terminalEvents) CaptureStateChanged(state domain.CaptureState, reason domain.CaptureReason) {
	e.log.Debug("capture state", "state", state, "reason", reason)
	switch reason {
	case domain.CaptureReasonRecordingStarted:
		e.out.Info("Recording started. Press Ctrl+C to stop.")
	case domain.CaptureReasonTranscribing, domain.CaptureReasonTranscribingFile:
		fmt.Fprintln(e.out.w)
		e.out.Info("Transcribing...")
	}
}

func (e *terminalEvents) RecordingElapsed(seconds int) {
	e.out.Elapsed(seconds)
}

func (e *terminalEvents) PlaybackStateChanged(state domain.PlaybackState) {
	e.log.Debug("playback state", "state", state)
	select {
	case e.playback <- state:
	default:
	}
}

func (e *terminalEvents) WorkspaceChanged(snapshot domain.WorkspaceSnapshot) {
	e.log.Debug("workspace changed", "phase", snapshot.Phase)
}

func (e *terminalEvents) TranscriptReady(text string, source string) {
	e.log.Debug("transcript ready", "source", source, "chars", len(text))
}

func (e *terminalEvents) Error(code domain.ErrorCode, detail string) {
	e.log.Warn("pipeline error", "code", code, "detail", detail)
}
