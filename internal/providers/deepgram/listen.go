package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
)

var closeStreamMessage = []byte(`{"type":"CloseStream"}`)

// streamOptions describes the audio sent over the socket. A zero Encoding lets
// Deepgram detect a containerized format (wav, webm, ogg) on its own.
type streamOptions struct {
	Encoding   string
	SampleRate int
	Channels   int
}

type transcriptEvent struct {
	Text  string
	Final bool
}

func (p *Provider) dial(ctx context.Context, opts streamOptions) (*websocket.Conn, error) {
	if strings.TrimSpace(p.cfg.APIKey) == "" {
		return nil, errors.New("DEEPGRAM_API_KEY is not configured")
	}

	listenURL, err := buildListenURL(p.cfg, opts)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+p.cfg.APIKey)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, listenURL, headers)
	if err != nil {
		return nil, fmt.Errorf("connect to deepgram: %w", err)
	}
	return conn, nil
}

// streamBlob writes audio in chunks, asks Deepgram to finalize, and hands every
// transcript message to add until the server closes the socket. The socket is
// closed when ctx ends.
func streamBlob(ctx context.Context, conn *websocket.Conn, audio []byte, chunkSize int, add func(transcriptEvent)) error {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	readDone := make(chan error, 1)
	go func() { readDone <- readResults(conn, add) }()

	writeErr := writeBlob(conn, audio, chunkSize)
	if writeErr != nil {
		_ = conn.Close()
	}
	readErr := <-readDone

	if err := ctx.Err(); err != nil {
		return err
	}
	if readErr != nil {
		return readErr
	}
	return writeErr
}

func writeBlob(conn *websocket.Conn, audio []byte, chunkSize int) error {
	for offset := 0; offset < len(audio); offset += chunkSize {
		end := min(offset+chunkSize, len(audio))
		if err := conn.WriteMessage(websocket.BinaryMessage, audio[offset:end]); err != nil {
			return fmt.Errorf("send audio: %w", err)
		}
	}
	if err := conn.WriteMessage(websocket.TextMessage, closeStreamMessage); err != nil {
		return fmt.Errorf("close stream: %w", err)
	}
	return nil
}

// readResults returns nil on a normal close and the provider's message on an
// Error frame.
func readResults(conn *websocket.Conn, add func(transcriptEvent)) error {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				return nil
			}
			return fmt.Errorf("read result: %w", err)
		}

		var msg listenMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		if strings.EqualFold(msg.Type, "Error") {
			_ = conn.Close()
			return msg.err()
		}
		if text := msg.transcript(); text != "" {
			add(transcriptEvent{Text: text, Final: msg.IsFinal || msg.SpeechFinal})
		}
	}
}

type alternative struct {
	Transcript string `json:"transcript"`
}

type listenMessage struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	Description string `json:"description"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`

	Channel struct {
		Alternatives []alternative `json:"alternatives"`
	} `json:"channel"`

	Results struct {
		Channels []struct {
			Alternatives []alternative `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

func (m listenMessage) transcript() string {
	if len(m.Channel.Alternatives) > 0 {
		if text := strings.TrimSpace(m.Channel.Alternatives[0].Transcript); text != "" {
			return text
		}
	}
	if len(m.Results.Channels) > 0 && len(m.Results.Channels[0].Alternatives) > 0 {
		return strings.TrimSpace(m.Results.Channels[0].Alternatives[0].Transcript)
	}
	return ""
}

func (m listenMessage) err() error {
	for _, text := range []string{m.Message, m.Description} {
		if text = strings.TrimSpace(text); text != "" {
			return errors.New(text)
		}
	}
	return errors.New("deepgram returned an unknown error")
}

// buildListenURL turns the REST base into the websocket /listen endpoint.
func buildListenURL(cfg Config, opts streamOptions) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if base == "" {
		base = defaultAPIBase
	}
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}

	listenURL, err := url.Parse(base + "/listen")
	if err != nil {
		return "", fmt.Errorf("invalid deepgram base url: %w", err)
	}

	query := url.Values{}
	query.Set("model", cfg.Model)
	if opts.Encoding != "" {
		query.Set("encoding", opts.Encoding)
		query.Set("sample_rate", strconv.Itoa(positiveOr(opts.SampleRate, 16000)))
		query.Set("channels", strconv.Itoa(positiveOr(opts.Channels, 1)))
	}
	query.Set("interim_results", "false")
	query.Set("smart_format", strconv.FormatBool(cfg.SmartFormat))
	if cfg.Language != "" {
		query.Set("language", cfg.Language)
	}
	listenURL.RawQuery = query.Encode()
	return listenURL.String(), nil
}

func positiveOr(n int, fallback int) int {
	if n > 0 {
		return n
	}
	return fallback
}
