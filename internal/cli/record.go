package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"meetscribe/internal/audio"
	"meetscribe/internal/ports"
	"meetscribe/internal/usecase"
)

func NewRecordCmd(deps *Dependencies) *cobra.Command {
	var maxDuration time.Duration
	var summarize bool
	var opts summarizeOptions

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record from the microphone, then transcribe",
		Long:  "Record from the microphone until Ctrl+C (or --duration), then transcribe the recording and optionally summarize it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend, err := deps.NewBackend(cmd.Context())
			if err != nil {
				return err
			}

			cfg := deps.Config
			events := newTerminalEvents(cmd.ErrOrStderr(), deps.logger())
			ws := usecase.NewWorkspace(backend.Summarizer, events)
			capture := usecase.NewCaptureController(
				audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand),
				audio.WAVEncoder{},
				backend.Transcriber,
				nil,
				ws,
				events,
				usecase.CaptureConfig{
					Audio: ports.AudioConfig{
						SampleRate:  cfg.Audio.SampleRate,
						Channels:    cfg.Audio.Channels,
						InputFormat: cfg.Audio.InputFormat,
						InputDevice: cfg.Audio.InputDevice,
					},
					ChunkSize: cfg.Capture.ChunkSize,
				},
			)
			defer capture.Close()

			if err := capture.Start(cmd.Context()); err != nil {
				return err
			}

			waitCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			var limit <-chan time.Time
			if maxDuration > 0 {
				timer := time.NewTimer(maxDuration)
				defer timer.Stop()
				limit = timer.C
			}
			select {
			case <-waitCtx.Done():
			case <-limit:
			}
			stop()

			text, err := capture.Stop(cmd.Context())
			if err != nil {
				return err
			}

			if !summarize {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(text))
				return err
			}

			ws.SetTitleHint(opts.title)
			result, err := ws.Summarize(cmd.Context())
			if err != nil {
				return err
			}
			return writeSummary(cmd, deps, result, opts)
		},
	}

	cmd.Flags().DurationVarP(&maxDuration, "duration", "d", 0, "Stop automatically after this long")
	cmd.Flags().BoolVarP(&summarize, "summarize", "s", false, "Summarize the transcript instead of printing it")
	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "Title hint for the summary")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "md", "Summary format: md or json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the summary to a file instead of stdout")
	cmd.Flags().StringVar(&opts.docx, "docx", "", "Also write a Word document to this path")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "Copy a team notification to the clipboard")
	opts.filter = "All"

	return cmd
}
