package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	DefaultSummaryModel       = "gemini-2.5-flash"
	DefaultTranscriptionModel = "gemini-2.5-flash"
	DefaultSpeechModel        = "gemini-2.5-flash-preview-tts"
	DefaultVoice              = "Kore"
)

// Config controls the Gemini client and the models used per operation.
type Config struct {
	APIKey             string
	BaseURL            string
	SummaryModel       string
	TranscriptionModel string
	SpeechModel        string
	Voice              string
	Timeout            time.Duration
}

// Provider implements ports.Summarizer, ports.Transcriber and ports.SpeechSynthesizer
// on top of the Gemini API. Calls are independent and never retried.
type Provider struct {
	cfg    Config
	client *genai.Client
}

func New(ctx context.Context, cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("GEMINI_API_KEY is not configured")
	}
	if cfg.SummaryModel == "" {
		cfg.SummaryModel = DefaultSummaryModel
	}
	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = DefaultTranscriptionModel
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = DefaultSpeechModel
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Provider{cfg: cfg, client: client}, nil
}

func (p *Provider) generate(ctx context.Context, model string, parts []*genai.Part, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := p.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	return resp, nil
}

// responseParts returns the parts of the first candidate, or nil.
func responseParts(resp *genai.GenerateContentResponse) []*genai.Part {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	return resp.Candidates[0].Content.Parts
}

func responseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, part := range responseParts(resp) {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
