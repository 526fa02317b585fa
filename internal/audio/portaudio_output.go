package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	goaudio "github.com/go-audio/audio"
	"github.com/gordonklaus/portaudio"

	"meetscribe/internal/domain"
	"meetscribe/internal/ports"
)

const outputFramesPerBuffer = 1024

// PortAudioOutput plays float sample buffers on the default output device. The
// PortAudio host is initialized on first use and terminated by Close.
type PortAudioOutput struct {
	mu          sync.Mutex
	initialized bool
	closed      bool
}

func NewPortAudioOutput() *PortAudioOutput {
	return &PortAudioOutput{}
}

func (o *PortAudioOutput) Play(ctx context.Context, buf *goaudio.Float32Buffer) (ports.PlaybackHandle, error) {
	if buf == nil || buf.Format == nil {
		return nil, errors.New("playback buffer has no format")
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil, domain.ErrClosed
	}
	if !o.initialized {
		if err := portaudio.Initialize(); err != nil {
			o.mu.Unlock()
			return nil, fmt.Errorf("initialize audio output: %w", err)
		}
		o.initialized = true
	}
	o.mu.Unlock()

	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}
	out := make([]float32, outputFramesPerBuffer*channels)
	stream, err := portaudio.OpenDefaultStream(0, channels, float64(buf.Format.SampleRate), outputFramesPerBuffer, out)
	if err != nil {
		return nil, fmt.Errorf("open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("start output stream: %w", err)
	}

	handle := &portAudioPlayback{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go handle.run(ctx, stream, out, buf.Data)
	return handle, nil
}

// Close stops the PortAudio host. Handles still playing end with a write error.
func (o *PortAudioOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	if !o.initialized {
		return nil
	}
	o.initialized = false
	return portaudio.Terminate()
}

type portAudioPlayback struct {
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func (p *portAudioPlayback) run(ctx context.Context, stream *portaudio.Stream, out []float32, samples []float32) {
	defer close(p.done)
	defer func() {
		_ = stream.Stop()
		_ = stream.Close()
	}()

	offset := 0
	for offset < len(samples) {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		default:
		}
		offset += fillFrames(out, samples, offset)
		if err := stream.Write(); err != nil {
			return
		}
	}
}

func (p *portAudioPlayback) Stop() error {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
	<-p.done
	return nil
}

func (p *portAudioPlayback) Done() <-chan struct{} {
	return p.done
}

// fillFrames copies the next block of samples into dst, zero padding the tail, and
// returns how many samples were consumed.
func fillFrames(dst []float32, samples []float32, offset int) int {
	n := copy(dst, samples[offset:])
	clear(dst[n:])
	return n
}
