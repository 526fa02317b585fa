package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"meetscribe/internal/domain"
	"meetscribe/internal/ports"
)

// WAVMIMEType is the MIME type of blobs produced by EncodeWAV.
const WAVMIMEType = "audio/wav"

// EncodeWAV wraps raw s16le PCM in a RIFF/WAVE container.
func EncodeWAV(pcm []byte, sampleRate int, channels int) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if channels <= 0 {
		channels = 1
	}

	out := &memWriteSeeker{}
	enc := wav.NewEncoder(out, sampleRate, 16, channels, 1)
	if len(pcm) > 1 {
		if err := enc.Write(PCM16ToInts(pcm[:len(pcm)&^1], sampleRate, channels)); err != nil {
			return nil, fmt.Errorf("encode wav: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finalize wav: %w", err)
	}
	return out.buf, nil
}

// memWriteSeeker is an in-memory io.WriteSeeker; the wav encoder seeks back to patch
// the RIFF header sizes on Close.
type memWriteSeeker struct {
	buf []byte
	pos int
}

func (m *memWriteSeeker) Write(p []byte) (int, error) {
	end := m.pos + len(p)
	if end > len(m.buf) {
		if end > cap(m.buf) {
			grown := make([]byte, end, 2*end)
			copy(grown, m.buf)
			m.buf = grown
		} else {
			m.buf = m.buf[:end]
		}
	}
	copy(m.buf[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(m.pos)
	case io.SeekEnd:
		base = int64(len(m.buf))
	default:
		return 0, errors.New("invalid whence")
	}
	next := base + offset
	if next < 0 {
		return 0, errors.New("negative seek position")
	}
	m.pos = int(next)
	return next, nil
}

// WAVEncoder implements ports.AudioEncoder.
type WAVEncoder struct{}

func (WAVEncoder) Encode(pcm []byte, cfg ports.AudioConfig) (domain.AudioBlob, error) {
	cfg = withCaptureDefaults(cfg)
	data, err := EncodeWAV(pcm, cfg.SampleRate, cfg.Channels)
	if err != nil {
		return domain.AudioBlob{}, err
	}
	return domain.AudioBlob{Data: data, MIMEType: WAVMIMEType}, nil
}
