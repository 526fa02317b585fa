package deepgram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"meetscribe/internal/domain"
)

const (
	defaultAPIBase = "https://api.deepgram.com/v1"
	defaultModel   = "nova-2"
	sendChunkSize  = 8192
)

type Config struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	Language    string
	SmartFormat bool
}

// Provider implements ports.Transcriber on Deepgram's /listen websocket.
type Provider struct {
	cfg Config
}

func NewProvider(cfg Config) *Provider {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBase
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return &Provider{cfg: cfg}
}

// Transcribe streams a finished recording through the live endpoint and joins the
// final transcripts.
func (p *Provider) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if !strings.HasPrefix(strings.ToLower(mimeType), "audio/") {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidInput, mimeType)
	}
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: empty audio", domain.ErrTranscription)
	}

	conn, err := p.dial(ctx, streamOptionsFor(mimeType))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTranscription, err)
	}
	defer conn.Close()

	aggregator := newTranscriptAggregator()
	if err := streamBlob(ctx, conn, audio, sendChunkSize, aggregator.Add); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTranscription, err)
	}

	text := aggregator.Text()
	if text == "" {
		return "", fmt.Errorf("%w: %w", domain.ErrTranscription, errors.New("no speech detected"))
	}
	return text, nil
}

// streamOptionsFor maps raw PCM MIME types onto linear16 parameters. Anything else
// is assumed to be a container Deepgram can sniff.
func streamOptionsFor(mimeType string) streamOptions {
	parts := strings.Split(mimeType, ";")
	base := strings.ToLower(strings.TrimSpace(parts[0]))
	if base != "audio/l16" && base != "audio/pcm" {
		return streamOptions{}
	}

	opts := streamOptions{Encoding: "linear16"}
	for _, param := range parts[1:] {
		key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			continue
		}
		switch strings.ToLower(key) {
		case "rate":
			opts.SampleRate = n
		case "channels":
			opts.Channels = n
		}
	}
	return opts
}
