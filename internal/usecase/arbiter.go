package usecase

import (
	"fmt"
	"sync"

	"meetscribe/internal/domain"
)

// AudioOwner names a component holding the audio hardware.
type AudioOwner string

const (
	OwnerCapture  AudioOwner = "capture"
	OwnerPlayback AudioOwner = "playback"
)

// AudioArbiter makes recording and playback mutually exclusive. An owner may
// re-acquire what it already holds.
type AudioArbiter struct {
	mu    sync.Mutex
	owner AudioOwner
}

func NewAudioArbiter() *AudioArbiter {
	return &AudioArbiter{}
}

func (a *AudioArbiter) Acquire(owner AudioOwner) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.owner != "" && a.owner != owner {
		return fmt.Errorf("%w: held by %s", domain.ErrAudioBusy, a.owner)
	}
	a.owner = owner
	return nil
}

// Release is a no-op unless owner holds the hardware.
func (a *AudioArbiter) Release(owner AudioOwner) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.owner == owner {
		a.owner = ""
	}
}

func (a *AudioArbiter) Owner() AudioOwner {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.owner
}
