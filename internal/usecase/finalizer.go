package usecase

import (
	"strings"

	"meetscribe/internal/domain"
	"meetscribe/internal/ports"
)

// TranscriptConsumer receives completed transcriptions.
type TranscriptConsumer interface {
	AcceptTranscription(text string, source string)
}

const (
	SourceRecording = "recording"
	SourceFile      = "file"
)

type transcriptFinalizer struct {
	consumer TranscriptConsumer
	events   ports.EventSink
}

func newTranscriptFinalizer(consumer TranscriptConsumer, events ports.EventSink) transcriptFinalizer {
	return transcriptFinalizer{consumer: consumer, events: events}
}

// Finalize hands a non-empty transcript to the consumer and announces it.
func (f transcriptFinalizer) Finalize(raw string, source string) (string, domain.CaptureReason, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", domain.CaptureReasonTranscriptionFailed, domain.ErrTranscription
	}

	if f.consumer != nil {
		f.consumer.AcceptTranscription(text, source)
	}
	f.events.TranscriptReady(text, source)
	return text, domain.CaptureReasonTranscriptReady, nil
}
