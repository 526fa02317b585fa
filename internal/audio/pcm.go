package audio

import (
	"encoding/binary"
	"fmt"

	goaudio "github.com/go-audio/audio"

	"meetscribe/internal/domain"
)

const pcm16Scale = 32768

// DecodePCM16 converts little-endian signed 16-bit PCM into float samples in [-1, 1].
func DecodePCM16(data []byte, sampleRate int, channels int) (*goaudio.Float32Buffer, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("pcm payload has odd length %d", len(data))
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if channels <= 0 {
		channels = 1
	}

	samples := make([]float32, len(data)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(v) / pcm16Scale
	}

	return &goaudio.Float32Buffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}, nil
}

// PCM16ToInts widens raw s16le bytes into an IntBuffer for encoding.
func PCM16ToInts(data []byte, sampleRate int, channels int) *goaudio.IntBuffer {
	if channels <= 0 {
		channels = 1
	}
	samples := make([]int, len(data)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(data[i*2:])))
	}
	return &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}
}

// PCMDecoder implements ports.SpeechDecoder for raw s16le speech payloads.
type PCMDecoder struct{}

func (PCMDecoder) Decode(speech domain.SpeechAudio) (*goaudio.Float32Buffer, error) {
	return DecodePCM16(speech.PCM, speech.SampleRate, speech.Channels)
}
