package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestNewProviderDefaults(t *testing.T) {
	t.Parallel()

	p := NewProvider(Config{})
	if p.cfg.APIBaseURL != defaultAPIBase || p.cfg.Model != defaultModel {
		t.Fatalf("unexpected defaults: %+v", p.cfg)
	}
}

func TestDialRequiresAPIKey(t *testing.T) {
	t.Parallel()

	_, err := NewProvider(Config{APIKey: "  "}).dial(context.Background(), streamOptions{})
	if err == nil || !strings.Contains(err.Error(), "DEEPGRAM_API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestBuildListenURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		cfg     Config
		opts    streamOptions
		want    []string
		notWant []string
	}{
		{
			name:    "container audio leaves encoding to the server",
			cfg:     Config{APIBaseURL: "https://api.deepgram.com/v1/", Model: "nova-2"},
			want:    []string{"wss://api.deepgram.com/v1/listen?", "model=nova-2", "interim_results=false", "smart_format=false"},
			notWant: []string{"encoding=", "sample_rate=", "language="},
		},
		{
			name: "raw pcm falls back to mono 16k",
			cfg:  Config{APIBaseURL: "https://api.deepgram.com/v1", Model: "nova-2"},
			opts: streamOptions{Encoding: "linear16"},
			want: []string{"encoding=linear16", "sample_rate=16000", "channels=1"},
		},
		{
			name: "plain http base with language and smart format",
			cfg:  Config{APIBaseURL: "http://localhost:8080/v1", Model: "m", Language: "en-US", SmartFormat: true},
			opts: streamOptions{Encoding: "linear16", SampleRate: 8000, Channels: 2},
			want: []string{"ws://localhost:8080/v1/listen?", "language=en-US", "smart_format=true", "sample_rate=8000", "channels=2"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := buildListenURL(tc.cfg, tc.opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, part := range tc.want {
				if !strings.Contains(got, part) {
					t.Fatalf("expected %q in %s", part, got)
				}
			}
			for _, part := range tc.notWant {
				if strings.Contains(got, part) {
					t.Fatalf("did not expect %q in %s", part, got)
				}
			}
		})
	}
}

func TestBuildListenURLInvalidBase(t *testing.T) {
	t.Parallel()

	if _, err := buildListenURL(Config{APIBaseURL: ":// bad"}, streamOptions{}); err == nil {
		t.Fatalf("expected invalid base url error")
	}
}

func TestListenMessageTranscript(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		`{"channel":{"alternatives":[{"transcript":" channel "}]}}`:              "channel",
		`{"results":{"channels":[{"alternatives":[{"transcript":"results"}]}]}}`: "results",
		`{"type":"Metadata"}`: "",
	}
	for payload, want := range cases {
		var msg listenMessage
		if err := json.Unmarshal([]byte(payload), &msg); err != nil {
			t.Fatalf("decode %s: %v", payload, err)
		}
		if got := msg.transcript(); got != want {
			t.Fatalf("transcript(%s) = %q, want %q", payload, got, want)
		}
	}
}

func TestListenMessageErr(t *testing.T) {
	t.Parallel()

	if got := (listenMessage{Description: "bad request"}).err().Error(); got != "bad request" {
		t.Fatalf("unexpected error text %q", got)
	}
	if got := (listenMessage{}).err().Error(); !strings.Contains(got, "unknown") {
		t.Fatalf("unexpected fallback error %q", got)
	}
}

func TestStreamBlobStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	// The server never answers, so only cancellation can end the stream.
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)

	p := NewProvider(Config{APIKey: "k", APIBaseURL: server.URL})
	conn, err := p.dial(context.Background(), streamOptions{})
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- streamBlob(ctx, conn, []byte{1, 2, 3, 4}, 2, func(transcriptEvent) {})
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("stream did not stop after cancellation")
	}
}
