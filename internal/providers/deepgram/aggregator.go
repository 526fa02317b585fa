package deepgram

import (
	"strings"
	"sync"
)

type transcriptAggregator struct {
	mu         sync.Mutex
	finals     []string
	lastSpoken string
}

func newTranscriptAggregator() *transcriptAggregator {
	return &transcriptAggregator{}
}

func (a *transcriptAggregator) Add(event transcriptEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	text := strings.TrimSpace(event.Text)
	if text == "" {
		return
	}
	a.lastSpoken = text
	if event.Final {
		a.finals = append(a.finals, text)
	}
}

// Text joins the finals, falling back to the last interim result when the stream
// ended before anything was finalized.
func (a *transcriptAggregator) Text() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	joined := strings.TrimSpace(strings.Join(a.finals, " "))
	if joined == "" {
		return a.lastSpoken
	}

	if a.lastSpoken == "" {
		return joined
	}

	if strings.HasSuffix(joined, a.lastSpoken) {
		return joined
	}

	if len(a.lastSpoken) > len(joined) {
		return strings.TrimSpace(joined + " " + a.lastSpoken)
	}

	return joined
}
