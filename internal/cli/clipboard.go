package cli

import (
	"context"

	"github.com/atotto/clipboard"
)

// SystemClipboard writes through the OS clipboard utilities (xclip, pbcopy, ...).
type SystemClipboard struct{}

func (SystemClipboard) SetText(_ context.Context, text string) error {
	return clipboard.WriteAll(text)
}
