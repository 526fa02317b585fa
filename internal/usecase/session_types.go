package usecase

import (
	"bytes"
	"sync"

	"meetscribe/internal/ports"
)

type activeRecording struct {
	cancel func()
	audio  ports.AudioSession
	chunks *chunkBuffer

	elapsedMu sync.Mutex
	elapsed   int

	pumpDone   chan struct{}
	tickerDone chan struct{}
}

func (r *activeRecording) tick() int {
	r.elapsedMu.Lock()
	defer r.elapsedMu.Unlock()
	r.elapsed++
	return r.elapsed
}

func (r *activeRecording) elapsedSeconds() int {
	r.elapsedMu.Lock()
	defer r.elapsedMu.Unlock()
	return r.elapsed
}

// chunkBuffer accumulates captured chunks until the recording is finalized.
type chunkBuffer struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	chunks int
}

func (b *chunkBuffer) Append(chunk []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Write(chunk)
	b.chunks++
}

func (b *chunkBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}

func (b *chunkBuffer) Chunks() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chunks
}
