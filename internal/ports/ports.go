package ports

import (
	"context"
	"io"

	"github.com/go-audio/audio"

	"meetscribe/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session. Stop releases the device and is idempotent.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture acquires the microphone.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// AudioEncoder packs captured s16le PCM into a blob a transcriber accepts.
type AudioEncoder interface {
	Encode(pcm []byte, cfg AudioConfig) (domain.AudioBlob, error)
}

// Summarizer turns a transcript into a structured summary.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string, titleHint string) (domain.SummaryResult, error)
}

// Transcriber turns recorded audio into verbatim text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// SpeechSynthesizer turns text into a raw PCM speech payload.
type SpeechSynthesizer interface {
	SynthesizeSpeech(ctx context.Context, text string) (domain.SpeechAudio, error)
}

// PlaybackHandle is one active playback. Done is closed when playback ends, whether
// naturally or through Stop. Stop is idempotent.
type PlaybackHandle interface {
	Stop() error
	Done() <-chan struct{}
}

// AudioOutput is the audio output context owned by the playback engine.
type AudioOutput interface {
	Play(ctx context.Context, buf *audio.Float32Buffer) (PlaybackHandle, error)
	Close() error
}

// Clipboard writes text into the system clipboard.
type Clipboard interface {
	SetText(ctx context.Context, text string) error
}

// EventSink emits backend state/events to the UI.
type EventSink interface {
	CaptureStateChanged(state domain.CaptureState, reason domain.CaptureReason)
	RecordingElapsed(seconds int)
	PlaybackStateChanged(state domain.PlaybackState)
	WorkspaceChanged(snapshot domain.WorkspaceSnapshot)
	TranscriptReady(text string, source string)
	Error(code domain.ErrorCode, detail string)
}

// SpeechDecoder turns a synthesized payload into float samples for playback.
type SpeechDecoder interface {
	Decode(speech domain.SpeechAudio) (*audio.Float32Buffer, error)
}
