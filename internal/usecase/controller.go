package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"meetscribe/internal/domain"
	"meetscribe/internal/ports"
)

var ErrNoActiveSession = domain.ErrNoActiveSession

// CaptureConfig controls recording behavior. TickInterval is how often one
// elapsed second is reported; it is always a second outside tests.
type CaptureConfig struct {
	Audio        ports.AudioConfig
	ChunkSize    int
	TickInterval time.Duration
}

// CaptureController owns the microphone: recording lifecycle, chunk buffering,
// the elapsed counter and handing finished audio to the transcriber.
type CaptureController struct {
	audio       ports.AudioCapture
	encoder     ports.AudioEncoder
	transcriber ports.Transcriber
	arbiter     *AudioArbiter
	events      ports.EventSink
	finalizer   transcriptFinalizer
	cfg         CaptureConfig

	mu           sync.Mutex
	current      *activeRecording
	starting     bool
	transcribing bool
	closed       bool
}

func NewCaptureController(
	audio ports.AudioCapture,
	encoder ports.AudioEncoder,
	transcriber ports.Transcriber,
	arbiter *AudioArbiter,
	consumer TranscriptConsumer,
	events ports.EventSink,
	cfg CaptureConfig,
) *CaptureController {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if arbiter == nil {
		arbiter = NewAudioArbiter()
	}
	return &CaptureController{
		audio:       audio,
		encoder:     encoder,
		transcriber: transcriber,
		arbiter:     arbiter,
		events:      events,
		finalizer:   newTranscriptFinalizer(consumer, events),
		cfg:         cfg,
	}
}

// Start acquires the microphone and begins recording. Starting while already
// recording discards the previous capture. Only one Start runs at a time, and a
// Close that lands while the device is being opened wins.
func (c *CaptureController) Start(ctx context.Context) error {
	var previous *activeRecording

	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return domain.ErrClosed
	case c.transcribing, c.starting:
		c.mu.Unlock()
		return domain.ErrCaptureBusy
	}
	c.starting = true
	previous = c.current
	c.current = nil
	c.mu.Unlock()

	if previous != nil {
		c.stopRecording(previous)
	}

	if err := c.arbiter.Acquire(OwnerCapture); err != nil {
		c.endStart()
		if previous != nil {
			c.events.CaptureStateChanged(domain.CaptureStateIdle, domain.CaptureReasonRecordingDiscarded)
		}
		return err
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	audioSession, err := c.audio.Start(sessionCtx, c.cfg.Audio)
	if err != nil {
		cancel()
		c.arbiter.Release(OwnerCapture)
		c.endStart()
		if !errors.Is(err, domain.ErrPermission) && !errors.Is(err, context.Canceled) {
			err = fmt.Errorf("%w: %w", domain.ErrPermission, err)
		}
		c.events.CaptureStateChanged(domain.CaptureStateIdle, domain.CaptureReasonPermissionDenied)
		return err
	}

	active := &activeRecording{
		cancel:     cancel,
		audio:      audioSession,
		chunks:     &chunkBuffer{},
		pumpDone:   make(chan struct{}),
		tickerDone: make(chan struct{}),
	}

	c.mu.Lock()
	c.starting = false
	if c.closed {
		c.mu.Unlock()
		_ = audioSession.Stop()
		cancel()
		c.arbiter.Release(OwnerCapture)
		return domain.ErrClosed
	}
	c.current = active
	c.mu.Unlock()

	go pumpAudioChunks(active.audio, active.chunks, c.cfg.ChunkSize, c.events, active.pumpDone)
	go runElapsedTicker(active, c.cfg.TickInterval, c.events, sessionCtx.Done(), active.tickerDone)

	reason := domain.CaptureReasonRecordingStarted
	if previous != nil {
		reason = domain.CaptureReasonRecordingRestarted
	}
	c.events.CaptureStateChanged(domain.CaptureStateRecording, reason)
	return nil
}

// Stop finalizes the recording into one blob, releases the microphone and
// transcribes it. On failure no partial transcript is delivered.
func (c *CaptureController) Stop(ctx context.Context) (string, error) {
	c.mu.Lock()
	active := c.current
	if active == nil {
		c.mu.Unlock()
		return "", ErrNoActiveSession
	}
	c.current = nil
	c.transcribing = true
	c.mu.Unlock()

	c.events.CaptureStateChanged(domain.CaptureStateTranscribing, domain.CaptureReasonTranscribing)

	if err := c.stopRecording(active); err != nil {
		c.events.Error(domain.ErrorCodeAudioStop, "failed to stop audio capture cleanly")
	}

	if active.chunks.Chunks() == 0 {
		c.finish(domain.CaptureReasonNoAudio)
		return "", fmt.Errorf("%w: no audio captured", domain.ErrTranscription)
	}
	pcm := active.chunks.Bytes()

	blob, err := c.encoder.Encode(pcm, c.cfg.Audio)
	if err != nil {
		c.finish(domain.CaptureReasonTranscriptionFailed)
		return "", fmt.Errorf("%w: %w", domain.ErrTranscription, err)
	}

	return c.transcribe(ctx, blob, SourceRecording)
}

// Abort discards an active recording without transcription.
func (c *CaptureController) Abort() error {
	c.mu.Lock()
	active := c.current
	c.current = nil
	c.mu.Unlock()
	if active == nil {
		return ErrNoActiveSession
	}

	c.stopRecording(active)
	c.events.CaptureStateChanged(domain.CaptureStateIdle, domain.CaptureReasonRecordingDiscarded)
	return nil
}

// TranscribeFile transcribes a pre-recorded file in lieu of live capture.
func (c *CaptureController) TranscribeFile(ctx context.Context, name string, mimeType string, data []byte) (string, error) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "audio/") {
		return "", fmt.Errorf("%w: %s (%s)", domain.ErrInvalidInput, name, mimeType)
	}

	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return "", domain.ErrClosed
	case c.transcribing, c.starting, c.current != nil:
		c.mu.Unlock()
		return "", domain.ErrCaptureBusy
	}
	c.transcribing = true
	c.mu.Unlock()

	c.events.CaptureStateChanged(domain.CaptureStateTranscribing, domain.CaptureReasonTranscribingFile)
	return c.transcribe(ctx, domain.AudioBlob{Data: data, MIMEType: mimeType}, SourceFile)
}

// Close releases the microphone and ticker, including mid-recording.
func (c *CaptureController) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	active := c.current
	c.current = nil
	c.mu.Unlock()

	if active == nil {
		return nil
	}
	return c.stopRecording(active)
}

// Status returns the capture state for the UI.
func (c *CaptureController) Status() domain.CaptureStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.current != nil:
		return domain.CaptureStatus{
			State:          domain.CaptureStateRecording,
			Active:         true,
			ElapsedSeconds: c.current.elapsedSeconds(),
		}
	case c.transcribing:
		return domain.CaptureStatus{State: domain.CaptureStateTranscribing, Active: true}
	default:
		return domain.CaptureStatus{State: domain.CaptureStateIdle}
	}
}

func (c *CaptureController) transcribe(ctx context.Context, blob domain.AudioBlob, source string) (string, error) {
	raw, err := c.transcriber.Transcribe(ctx, blob.Data, blob.MIMEType)
	if err != nil {
		c.finish(domain.CaptureReasonTranscriptionFailed)
		if !errors.Is(err, domain.ErrTranscription) && !errors.Is(err, domain.ErrInvalidInput) {
			err = fmt.Errorf("%w: %w", domain.ErrTranscription, err)
		}
		return "", err
	}

	text, reason, err := c.finalizer.Finalize(raw, source)
	c.finish(reason)
	if err != nil {
		return "", err
	}
	return text, nil
}

// stopRecording stops the device, the pump and the ticker, then frees the
// hardware for playback.
func (c *CaptureController) stopRecording(active *activeRecording) error {
	err := active.audio.Stop()
	active.cancel()
	<-active.pumpDone
	<-active.tickerDone
	c.arbiter.Release(OwnerCapture)
	return err
}

func (c *CaptureController) endStart() {
	c.mu.Lock()
	c.starting = false
	c.mu.Unlock()
}

func (c *CaptureController) finish(reason domain.CaptureReason) {
	c.mu.Lock()
	c.transcribing = false
	c.mu.Unlock()
	c.events.CaptureStateChanged(domain.CaptureStateIdle, reason)
}
