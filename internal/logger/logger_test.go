package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewJSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Output: &buf, JSONFormat: true})
	l.Info("summary ready", "title", "Weekly")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "summary ready" || entry["title"] != "Weekly" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestNewRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Output: &buf})
	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestFromOptionsWritesRotatedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "meetscribe.log")
	l, closer := FromOptions(Options{Level: "debug", Format: "json", File: path})
	l.Debug("file entry", "n", 1)
	if err := closer.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log failed: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"file entry"`) {
		t.Fatalf("unexpected log file: %q", data)
	}
}

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Output: &buf})
	ctx := WithContext(context.Background(), l)

	if FromContext(ctx) != l {
		t.Fatalf("expected stored logger")
	}
	if FromContext(context.Background()) != slog.Default() {
		t.Fatalf("expected default logger fallback")
	}

	Info(ctx, "hello", "k", "v")
	With(ctx, "session", "abc").Debug("scoped")
	if out := buf.String(); !strings.Contains(out, "hello") || !strings.Contains(out, "session=abc") {
		t.Fatalf("unexpected output: %q", out)
	}
}
