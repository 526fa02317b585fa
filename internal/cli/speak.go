package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"meetscribe/internal/audio"
	"meetscribe/internal/domain"
	"meetscribe/internal/usecase"
)

func NewSpeakCmd(deps *Dependencies) *cobra.Command {
	var wavPath string

	cmd := &cobra.Command{
		Use:   "speak [text|-]",
		Short: "Read text aloud with the speech model",
		Long:  "Synthesize speech for the given text (or standard input) and play it, or save it as a WAV file with --out.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := speechInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return domain.ErrEmptyInput
			}

			backend, err := deps.NewBackend(cmd.Context())
			if err != nil {
				return err
			}

			if wavPath != "" {
				speech, err := backend.Speech.SynthesizeSpeech(cmd.Context(), text)
				if err != nil {
					return err
				}
				wav, err := audio.EncodeWAV(speech.PCM, speech.SampleRate, speech.Channels)
				if err != nil {
					return err
				}
				if err := os.WriteFile(wavPath, wav, 0o644); err != nil {
					return fmt.Errorf("writing audio: %w", err)
				}
				NewFormatter(cmd.ErrOrStderr()).Success("Audio saved: " + wavPath)
				return nil
			}

			events := newTerminalEvents(cmd.ErrOrStderr(), deps.logger())
			engine := usecase.NewPlaybackEngine(backend.Speech, audio.PCMDecoder{}, audio.NewPortAudioOutput(), nil, events)
			defer engine.Close()

			if err := engine.Toggle(cmd.Context(), text); err != nil {
				return err
			}

			waitCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			for engine.State() != domain.PlaybackStateIdle {
				select {
				case <-events.playback:
				case <-waitCtx.Done():
					return nil
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&wavPath, "out", "o", "", "Save the speech as a WAV file instead of playing it")
	return cmd
}

func speechInput(args []string, stdin io.Reader) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}
