package gemini

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/genai"

	"meetscribe/internal/domain"
)

const defaultSpeechSampleRate = 24000

func (p *Provider) SynthesizeSpeech(ctx context.Context, text string) (domain.SpeechAudio, error) {
	if strings.TrimSpace(text) == "" {
		return domain.SpeechAudio{}, domain.ErrEmptyInput
	}

	resp, err := p.generate(ctx, p.cfg.SpeechModel,
		[]*genai.Part{genai.NewPartFromText(text)},
		&genai.GenerateContentConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &genai.SpeechConfig{
				VoiceConfig: &genai.VoiceConfig{
					PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: p.cfg.Voice},
				},
			},
		},
	)
	if err != nil {
		return domain.SpeechAudio{}, fmt.Errorf("%w: %w", domain.ErrSpeechSynthesis, err)
	}

	for _, part := range responseParts(resp) {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		return domain.SpeechAudio{
			PCM:        part.InlineData.Data,
			SampleRate: sampleRateFromMIME(part.InlineData.MIMEType),
			Channels:   1,
			MIMEType:   part.InlineData.MIMEType,
		}, nil
	}
	return domain.SpeechAudio{}, fmt.Errorf("%w: %w", domain.ErrSpeechSynthesis, errors.New("response has no audio payload"))
}

// sampleRateFromMIME reads the rate parameter of e.g. "audio/L16;codec=pcm;rate=24000".
func sampleRateFromMIME(mimeType string) int {
	for _, param := range strings.Split(mimeType, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "rate") {
			continue
		}
		if rate, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && rate > 0 {
			return rate
		}
	}
	return defaultSpeechSampleRate
}
