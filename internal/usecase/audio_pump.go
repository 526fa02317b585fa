package usecase

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"meetscribe/internal/domain"
	"meetscribe/internal/ports"
)

func pumpAudioChunks(
	audio ports.AudioSession,
	chunks *chunkBuffer,
	chunkSize int,
	events ports.EventSink,
	done chan struct{},
) {
	defer close(done)

	if chunkSize < 256 {
		chunkSize = 4096
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := audio.Read(buf)
		if n > 0 {
			chunks.Append(buf[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				events.Error(domain.ErrorCodeAudioStream, fmt.Sprintf("audio capture error: %v", err))
			}
			return
		}
	}
}

// runElapsedTicker reports whole recorded seconds until stop is closed.
func runElapsedTicker(
	recording *activeRecording,
	interval time.Duration,
	events ports.EventSink,
	stop <-chan struct{},
	done chan struct{},
) {
	defer close(done)

	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			events.RecordingElapsed(recording.tick())
		}
	}
}
