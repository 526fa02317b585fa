package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"meetscribe/internal/domain"
	"meetscribe/internal/ports"
)

// PlaybackEngine drives idle -> loading -> playing -> idle for spoken summaries.
// At most one playback handle is alive at a time.
type PlaybackEngine struct {
	synth   ports.SpeechSynthesizer
	decoder ports.SpeechDecoder
	output  ports.AudioOutput
	arbiter *AudioArbiter
	events  ports.EventSink

	mu         sync.Mutex
	state      domain.PlaybackState
	generation uint64
	handle     ports.PlaybackHandle
	closed     bool
}

func NewPlaybackEngine(
	synth ports.SpeechSynthesizer,
	decoder ports.SpeechDecoder,
	output ports.AudioOutput,
	arbiter *AudioArbiter,
	events ports.EventSink,
) *PlaybackEngine {
	if arbiter == nil {
		arbiter = NewAudioArbiter()
	}
	return &PlaybackEngine{
		synth:   synth,
		decoder: decoder,
		output:  output,
		arbiter: arbiter,
		events:  events,
		state:   domain.PlaybackStateIdle,
	}
}

// Toggle starts speaking text from idle, stops from playing and is ignored
// while loading. It returns once playback has started or failed.
func (e *PlaybackEngine) Toggle(ctx context.Context, text string) error {
	e.mu.Lock()
	switch e.state {
	case domain.PlaybackStateLoading:
		e.mu.Unlock()
		return nil
	case domain.PlaybackStatePlaying:
		handle := e.handle
		e.handle = nil
		e.state = domain.PlaybackStateIdle
		e.generation++
		e.mu.Unlock()

		err := handle.Stop()
		e.arbiter.Release(OwnerPlayback)
		e.events.PlaybackStateChanged(domain.PlaybackStateIdle)
		return err
	}

	if e.closed {
		e.mu.Unlock()
		return domain.ErrClosed
	}
	if strings.TrimSpace(text) == "" {
		e.mu.Unlock()
		return domain.ErrEmptyInput
	}
	if err := e.arbiter.Acquire(OwnerPlayback); err != nil {
		e.mu.Unlock()
		return err
	}
	e.state = domain.PlaybackStateLoading
	e.generation++
	generation := e.generation
	e.mu.Unlock()

	e.events.PlaybackStateChanged(domain.PlaybackStateLoading)

	speech, err := e.synth.SynthesizeSpeech(ctx, text)
	if err != nil {
		if !errors.Is(err, domain.ErrSpeechSynthesis) {
			err = fmt.Errorf("%w: %w", domain.ErrSpeechSynthesis, err)
		}
		return e.fail(generation, err)
	}

	buf, err := e.decoder.Decode(speech)
	if err != nil {
		return e.fail(generation, fmt.Errorf("%w: decode speech: %w", domain.ErrSpeechSynthesis, err))
	}

	// Playback outlives the request that started it; Stop and Close end it.
	handle, err := e.output.Play(context.Background(), buf)
	if err != nil {
		return e.fail(generation, fmt.Errorf("%w: start playback: %w", domain.ErrSpeechSynthesis, err))
	}

	e.mu.Lock()
	if e.generation != generation {
		e.mu.Unlock()
		_ = handle.Stop()
		return nil
	}
	e.state = domain.PlaybackStatePlaying
	e.handle = handle
	e.mu.Unlock()

	e.events.PlaybackStateChanged(domain.PlaybackStatePlaying)
	go e.watch(generation, handle)
	return nil
}

// State returns the current playback state.
func (e *PlaybackEngine) State() domain.PlaybackState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Close stops any playback and releases the output context.
func (e *PlaybackEngine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.generation++
	handle := e.handle
	e.handle = nil
	wasIdle := e.state == domain.PlaybackStateIdle
	e.state = domain.PlaybackStateIdle
	e.mu.Unlock()

	if handle != nil {
		_ = handle.Stop()
	}
	e.arbiter.Release(OwnerPlayback)
	if !wasIdle {
		e.events.PlaybackStateChanged(domain.PlaybackStateIdle)
	}
	return e.output.Close()
}

// watch returns the engine to idle when playback ends on its own.
func (e *PlaybackEngine) watch(generation uint64, handle ports.PlaybackHandle) {
	<-handle.Done()

	e.mu.Lock()
	if e.generation != generation || e.state != domain.PlaybackStatePlaying {
		e.mu.Unlock()
		return
	}
	e.state = domain.PlaybackStateIdle
	e.handle = nil
	e.mu.Unlock()

	e.arbiter.Release(OwnerPlayback)
	e.events.PlaybackStateChanged(domain.PlaybackStateIdle)
}

func (e *PlaybackEngine) fail(generation uint64, err error) error {
	e.mu.Lock()
	current := e.generation == generation
	if current {
		e.state = domain.PlaybackStateIdle
	}
	e.mu.Unlock()

	if current {
		e.arbiter.Release(OwnerPlayback)
		e.events.PlaybackStateChanged(domain.PlaybackStateIdle)
	}
	return err
}
