package bootstrap

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"meetscribe/internal/audio"
	"meetscribe/internal/config"
	"meetscribe/internal/logger"
	"meetscribe/internal/ports"
	"meetscribe/internal/providers/deepgram"
	"meetscribe/internal/providers/gemini"
	"meetscribe/internal/usecase"
)

// Providers are the remote AI services, shared by every front end.
type Providers struct {
	Gemini      *gemini.Provider
	Transcriber ports.Transcriber
}

// Services is the assembled runtime graph for an interactive front end.
type Services struct {
	Providers
	Capture   *usecase.CaptureController
	Playback  *usecase.PlaybackEngine
	Workspace *usecase.Workspace
	Clipboard ports.Clipboard
	Config    config.Config
	Log       *slog.Logger

	logCloser io.Closer
}

// LoadConfig loads and validates configuration.
func LoadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// NewLogger builds the process logger from the logging section.
func NewLogger(cfg config.Config) (*slog.Logger, io.Closer) {
	return logger.FromOptions(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
}

// NewProviders creates the Gemini client and the configured transcriber.
func NewProviders(ctx context.Context, cfg config.Config) (Providers, error) {
	provider, err := gemini.New(ctx, gemini.Config{
		APIKey:             cfg.Gemini.APIKey,
		BaseURL:            cfg.Gemini.BaseURL,
		SummaryModel:       cfg.Gemini.SummaryModel,
		TranscriptionModel: cfg.Gemini.TranscriptionModel,
		SpeechModel:        cfg.Gemini.SpeechModel,
		Voice:              cfg.Gemini.Voice,
		Timeout:            cfg.Gemini.Timeout,
	})
	if err != nil {
		return Providers{}, err
	}

	var transcriber ports.Transcriber = provider
	if cfg.Transcription.Provider == config.ProviderDeepgram {
		transcriber = deepgram.NewProvider(deepgram.Config{
			APIKey:      cfg.Deepgram.APIKey,
			APIBaseURL:  cfg.Deepgram.APIBaseURL,
			Model:       cfg.Deepgram.Model,
			Language:    cfg.Deepgram.Language,
			SmartFormat: cfg.Deepgram.SmartFormat,
		})
	}

	return Providers{Gemini: provider, Transcriber: transcriber}, nil
}

// Build wires all backend dependencies for the current runtime.
func Build(ctx context.Context, eventSink ports.EventSink, clipboard ports.Clipboard) (Services, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return Services{}, err
	}
	return BuildWith(ctx, cfg, eventSink, clipboard)
}

// BuildWith wires the runtime graph for an already loaded config. Capture and
// playback share one audio arbiter, and finished transcriptions land in the
// workspace.
func BuildWith(ctx context.Context, cfg config.Config, eventSink ports.EventSink, clipboard ports.Clipboard) (Services, error) {
	if eventSink == nil {
		eventSink = usecase.NopEventSink{}
	}

	providers, err := NewProviders(ctx, cfg)
	if err != nil {
		return Services{}, err
	}

	log, logCloser := NewLogger(cfg)
	arbiter := usecase.NewAudioArbiter()
	workspace := usecase.NewWorkspace(providers.Gemini, eventSink)

	capture := usecase.NewCaptureController(
		audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand),
		audio.WAVEncoder{},
		providers.Transcriber,
		arbiter,
		workspace,
		eventSink,
		usecase.CaptureConfig{
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			ChunkSize: cfg.Capture.ChunkSize,
		},
	)

	playback := usecase.NewPlaybackEngine(
		providers.Gemini,
		audio.PCMDecoder{},
		audio.NewPortAudioOutput(),
		arbiter,
		eventSink,
	)

	log.Debug("services wired",
		"transcription_provider", cfg.Transcription.Provider,
		"summary_model", cfg.Gemini.SummaryModel,
	)

	return Services{
		Providers: providers,
		Capture:   capture,
		Playback:  playback,
		Workspace: workspace,
		Clipboard: clipboard,
		Config:    cfg,
		Log:       log,
		logCloser: logCloser,
	}, nil
}

// Close releases the microphone, the audio output and the log file.
func (s Services) Close() error {
	var errs []error
	if s.Capture != nil {
		errs = append(errs, s.Capture.Close())
	}
	if s.Playback != nil {
		errs = append(errs, s.Playback.Close())
	}
	if s.logCloser != nil {
		errs = append(errs, s.logCloser.Close())
	}
	return errors.Join(errs...)
}
