package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"meetscribe/internal/domain"
)

const transcriptionInstruction = "Transcribe this audio verbatim. Return only the spoken words as plain text, " +
	"without speaker labels, timestamps or any commentary."

func (p *Provider) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: empty audio", domain.ErrTranscription)
	}
	if !strings.HasPrefix(strings.ToLower(mimeType), "audio/") {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidInput, mimeType)
	}

	resp, err := p.generate(ctx, p.cfg.TranscriptionModel, []*genai.Part{
		genai.NewPartFromBytes(audio, baseMIMEType(mimeType)),
		genai.NewPartFromText(transcriptionInstruction),
	}, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTranscription, err)
	}

	text := strings.TrimSpace(responseText(resp))
	if text == "" {
		return "", fmt.Errorf("%w: %w", domain.ErrTranscription, errors.New("empty transcription"))
	}
	return text, nil
}

// baseMIMEType drops parameters such as "codecs=opus" which the API rejects.
func baseMIMEType(mimeType string) string {
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.TrimSpace(mimeType)
}
