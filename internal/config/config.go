package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	ProviderGemini   = "gemini"
	ProviderDeepgram = "deepgram"
)

// Config stores runtime configuration. Values come from an optional YAML file and
// are then overridden by environment variables.
type Config struct {
	Gemini        GeminiConfig        `yaml:"gemini"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Deepgram      DeepgramConfig      `yaml:"deepgram"`
	Audio         AudioConfig         `yaml:"audio"`
	Capture       CaptureConfig       `yaml:"capture"`
	Server        ServerConfig        `yaml:"server"`
	Watch         WatchConfig         `yaml:"watch"`
	Logging       LoggingConfig       `yaml:"logging"`
}

type GeminiConfig struct {
	APIKey             string        `yaml:"api_key" env:"GEMINI_API_KEY,API_KEY" env-description:"Gemini API key"`
	BaseURL            string        `yaml:"base_url" env:"GEMINI_BASE_URL" env-description:"override the Gemini API endpoint"`
	SummaryModel       string        `yaml:"summary_model" env:"GEMINI_SUMMARY_MODEL" env-default:"gemini-2.5-flash"`
	TranscriptionModel string        `yaml:"transcription_model" env:"GEMINI_TRANSCRIPTION_MODEL" env-default:"gemini-2.5-flash"`
	SpeechModel        string        `yaml:"speech_model" env:"GEMINI_SPEECH_MODEL" env-default:"gemini-2.5-flash-preview-tts"`
	Voice              string        `yaml:"voice" env:"GEMINI_VOICE" env-default:"Kore"`
	Timeout            time.Duration `yaml:"timeout" env:"GEMINI_TIMEOUT" env-default:"2m" env-description:"per-request timeout, 0 disables"`
}

type TranscriptionConfig struct {
	Provider string `yaml:"provider" env:"MEETSCRIBE_TRANSCRIPTION_PROVIDER" env-default:"gemini" env-description:"gemini or deepgram"`
}

type DeepgramConfig struct {
	APIKey      string `yaml:"api_key" env:"DEEPGRAM_API_KEY"`
	APIBaseURL  string `yaml:"api_base" env:"DEEPGRAM_API_BASE" env-default:"https://api.deepgram.com/v1"`
	Model       string `yaml:"model" env:"DEEPGRAM_MODEL" env-default:"nova-2"`
	Language    string `yaml:"language" env:"DEEPGRAM_LANGUAGE"`
	SmartFormat bool   `yaml:"smart_format" env:"DEEPGRAM_SMART_FORMAT"`
}

type AudioConfig struct {
	RecorderCommand string `yaml:"recorder_command" env:"MEETSCRIBE_FFMPEG_COMMAND" env-default:"ffmpeg"`
	InputFormat     string `yaml:"input_format" env:"MEETSCRIBE_AUDIO_INPUT_FORMAT" env-default:"pulse"`
	InputDevice     string `yaml:"input_device" env:"MEETSCRIBE_AUDIO_INPUT_DEVICE,DEEPGRAM_PULSE_SOURCE" env-default:"default"`
	SampleRate      int    `yaml:"sample_rate" env:"MEETSCRIBE_SAMPLE_RATE" env-default:"16000"`
	Channels        int    `yaml:"channels" env:"MEETSCRIBE_CHANNELS" env-default:"1"`
}

type CaptureConfig struct {
	ChunkSize int `yaml:"chunk_size" env:"MEETSCRIBE_AUDIO_CHUNK_SIZE" env-default:"4096"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr" env:"MEETSCRIBE_SERVER_ADDR" env-default:"127.0.0.1:8787"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"MEETSCRIBE_ALLOWED_ORIGINS" env-default:"*"`
}

type WatchConfig struct {
	Inbox         string `yaml:"inbox" env:"MEETSCRIBE_WATCH_INBOX"`
	Outbox        string `yaml:"outbox" env:"MEETSCRIBE_WATCH_OUTBOX"`
	MaxConcurrent int    `yaml:"max_concurrent" env:"MEETSCRIBE_WATCH_MAX_CONCURRENT" env-default:"2"`
	Docx          bool   `yaml:"docx" env:"MEETSCRIBE_WATCH_DOCX"`
	Notify        bool   `yaml:"notify" env:"MEETSCRIBE_WATCH_NOTIFY"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"MEETSCRIBE_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"MEETSCRIBE_LOG_FORMAT" env-default:"text"`
	File   string `yaml:"file" env:"MEETSCRIBE_LOG_FILE"`
}

// Load resolves configuration from the config file, environment variables and
// defaults, in increasing order of precedence for the first two.
func Load() (Config, error) {
	path, explicit, err := configPath()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Deepgram: DeepgramConfig{SmartFormat: true},
		Watch:    WatchConfig{Notify: true},
	}

	if _, statErr := os.Stat(path); statErr == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		if explicit {
			return Config{}, fmt.Errorf("config file %s: %w", path, statErr)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.normalize()
	return cfg, nil
}

// Path returns the config file location Load reads from.
func Path() string {
	path, _, _ := configPath()
	return path
}

func configPath() (string, bool, error) {
	if path := strings.TrimSpace(os.Getenv("MEETSCRIBE_CONFIG")); path != "" {
		return path, true, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, errors.New("could not determine home directory")
	}
	return filepath.Join(home, ".config", "meetscribe", "config.yaml"), false, nil
}

func (c *Config) normalize() {
	c.Transcription.Provider = strings.ToLower(strings.TrimSpace(c.Transcription.Provider))
	if c.Transcription.Provider != ProviderDeepgram {
		c.Transcription.Provider = ProviderGemini
	}

	c.Gemini.APIKey = strings.TrimSpace(c.Gemini.APIKey)
	c.Deepgram.APIKey = strings.TrimSpace(c.Deepgram.APIKey)
	if c.Gemini.Timeout < 0 {
		c.Gemini.Timeout = 0
	}

	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.Channels <= 0 {
		c.Audio.Channels = 1
	}
	if c.Capture.ChunkSize < 256 {
		c.Capture.ChunkSize = 4096
	}
	if c.Watch.MaxConcurrent <= 0 {
		c.Watch.MaxConcurrent = 2
	}
	if c.Watch.Inbox != "" && c.Watch.Outbox == "" {
		c.Watch.Outbox = c.Watch.Inbox
	}

	origins := c.Server.AllowedOrigins[:0]
	for _, origin := range c.Server.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.Server.AllowedOrigins = origins
}

// Validate reports missing credentials. Gemini is always required; Deepgram only
// when it is the selected transcription provider.
func (c Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return errors.New("GEMINI_API_KEY is not configured")
	}
	if c.Transcription.Provider == ProviderDeepgram && c.Deepgram.APIKey == "" {
		return errors.New("DEEPGRAM_API_KEY is not configured")
	}
	return nil
}

// Masked returns a copy safe to print.
func (c Config) Masked() Config {
	c.Gemini.APIKey = mask(c.Gemini.APIKey)
	c.Deepgram.APIKey = mask(c.Deepgram.APIKey)
	c.Server.AllowedOrigins = append([]string(nil), c.Server.AllowedOrigins...)
	return c
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "****"
}

// Usage writes the supported environment variables.
func Usage(w io.Writer) {
	var cfg Config
	cleanenv.FUsage(w, &cfg, nil)()
}
