package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"meetscribe/internal/logger"
)

const defaultSettleDelay = 500 * time.Millisecond

// Handler processes one file dropped into the inbox.
type Handler func(ctx context.Context, path string) error

// Watcher monitors an inbox directory and hands new transcripts and recordings to
// a Handler, at most maxConcurrent at a time.
type Watcher struct {
	inbox     string
	handler   Handler
	log       *slog.Logger
	fs        *fsnotify.Watcher
	settle    time.Duration
	semaphore chan struct{}
	wg        sync.WaitGroup
}

func New(inbox string, handler Handler, log *slog.Logger, maxConcurrent int) (*Watcher, error) {
	if strings.TrimSpace(inbox) == "" {
		return nil, errors.New("watch inbox is not configured")
	}
	if log == nil {
		log = slog.Default()
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fs.Add(inbox); err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}

	return &Watcher{
		inbox:     inbox,
		handler:   handler,
		log:       log,
		fs:        fs,
		settle:    defaultSettleDelay,
		semaphore: make(chan struct{}, maxConcurrent),
	}, nil
}

// Run blocks until ctx is cancelled, then waits for in-flight files to finish.
func (w *Watcher) Run(ctx context.Context) error {
	ctx = logger.WithContext(ctx, w.log)
	w.log.Info("watching inbox", "dir", w.inbox, "max_concurrent", cap(w.semaphore))

	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			w.log.Info("inbox watcher stopped")
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				w.wg.Wait()
				return errors.New("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if Classify(event.Name) == KindIgnored {
				logger.Debug(ctx, "ignoring file", "path", event.Name)
				continue
			}

			w.log.Info("new file detected", "path", event.Name)

			// Give the writer a moment to finish.
			select {
			case <-time.After(w.settle):
			case <-ctx.Done():
				continue
			}

			select {
			case w.semaphore <- struct{}{}:
				w.wg.Add(1)
				go func(path string) {
					defer w.wg.Done()
					defer func() { <-w.semaphore }()

					fileCtx := logger.WithContext(ctx, logger.With(ctx, "path", path))
					if err := w.handler(fileCtx, path); err != nil {
						logger.ErrorErr(fileCtx, "failed to process file", err)
					}
				}(event.Name)
			case <-ctx.Done():
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				w.wg.Wait()
				return errors.New("watcher errors channel closed")
			}
			w.log.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) Close() error {
	return w.fs.Close()
}

// Kind classifies an inbox file.
type Kind int

const (
	KindIgnored Kind = iota
	KindTranscript
	KindAudio
)

var transcriptTypes = map[string]string{
	".txt": "text/plain",
	".vtt": "text/vtt",
}

var audioTypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/opus",
	".flac": "audio/flac",
	".aac":  "audio/aac",
	".webm": "audio/webm",
}

func Classify(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	if strings.HasPrefix(filepath.Base(path), ".") {
		return KindIgnored
	}
	if _, ok := transcriptTypes[ext]; ok {
		return KindTranscript
	}
	if _, ok := audioTypes[ext]; ok {
		return KindAudio
	}
	return KindIgnored
}

// MIMEType returns the content type used for an inbox file.
func MIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if mimeType, ok := transcriptTypes[ext]; ok {
		return mimeType
	}
	return audioTypes[ext]
}
