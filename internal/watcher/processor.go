package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/beeep"

	"meetscribe/internal/domain"
	"meetscribe/internal/logger"
	"meetscribe/internal/ports"
	"meetscribe/internal/render"
	"meetscribe/internal/usecase"
)

// Notifier shows a desktop notification.
type Notifier interface {
	Notify(title string, message string) error
}

// DesktopNotifier sends notifications through the OS notification service.
type DesktopNotifier struct{}

func (DesktopNotifier) Notify(title string, message string) error {
	return beeep.Notify(title, message, "")
}

// Processor turns an inbox file into a summary written to the outbox.
type Processor struct {
	Summarizer  ports.Summarizer
	Transcriber ports.Transcriber
	Notifier    Notifier
	Outbox      string
	Docx        bool
	Log         *slog.Logger
}

// Handle is a Handler. Each file gets its own workspace so concurrent files never
// share state.
func (p *Processor) Handle(ctx context.Context, path string) error {
	log := p.Log
	if log == nil {
		log = logger.FromContext(ctx)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	mimeType := MIMEType(path)

	ws := usecase.NewWorkspace(p.Summarizer, nil)
	ws.SetTitleHint(stem)

	switch Classify(path) {
	case KindTranscript:
		if err := ws.UploadTranscript(name, mimeType, data); err != nil {
			return err
		}
	case KindAudio:
		if p.Transcriber == nil {
			return fmt.Errorf("%w: no transcriber configured", domain.ErrTranscription)
		}
		log.Info("transcribing", "file", name)
		text, err := p.Transcriber.Transcribe(ctx, data, mimeType)
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("%w: empty transcript for %s", domain.ErrTranscription, name)
		}
		ws.AcceptTranscription(text, usecase.SourceFile)
	default:
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, name)
	}

	result, err := ws.Summarize(ctx)
	if err != nil {
		return err
	}

	outputs, err := p.write(stem, result)
	if err != nil {
		return err
	}
	log.Info("summary written", "file", name, "outputs", outputs)

	if p.Notifier != nil {
		message := result.ShortSummary
		if text, err := render.NotificationText(result); err == nil {
			message = text
		}
		if err := p.Notifier.Notify(render.Heading(result.Title), message); err != nil {
			log.Warn("notification failed", "error", err)
		}
	}
	return nil
}

func (p *Processor) write(stem string, result domain.SummaryResult) ([]string, error) {
	if err := os.MkdirAll(p.Outbox, 0o755); err != nil {
		return nil, fmt.Errorf("create outbox: %w", err)
	}

	mdPath := filepath.Join(p.Outbox, stem+".md")
	if err := os.WriteFile(mdPath, []byte(render.Markdown(result)), 0o644); err != nil {
		return nil, fmt.Errorf("write markdown: %w", err)
	}
	outputs := []string{mdPath}

	if p.Docx {
		docxPath := filepath.Join(p.Outbox, stem+".docx")
		if err := render.WriteDocx(result, docxPath); err != nil {
			return outputs, fmt.Errorf("write docx: %w", err)
		}
		outputs = append(outputs, docxPath)
	}
	return outputs, nil
}
