package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"meetscribe/internal/domain"
	"meetscribe/internal/usecase"
	"meetscribe/internal/watcher"
)

func NewTranscribeCmd(deps *Dependencies) *cobra.Command {
	var summarize bool
	var opts summarizeOptions

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe a meeting recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			mimeType := audioMIMEType(path)
			if !strings.HasPrefix(mimeType, "audio/") {
				return fmt.Errorf("%w: %s", domain.ErrInvalidInput, filepath.Base(path))
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading audio: %w", err)
			}

			backend, err := deps.NewBackend(cmd.Context())
			if err != nil {
				return err
			}

			NewFormatter(cmd.ErrOrStderr()).Info("Transcribing " + filepath.Base(path) + "...")
			text, err := backend.Transcriber.Transcribe(cmd.Context(), data, mimeType)
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return domain.ErrTranscription
			}

			if !summarize {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(text))
				return err
			}

			ws := usecase.NewWorkspace(backend.Summarizer, nil)
			ws.AcceptTranscription(text, usecase.SourceFile)
			ws.SetTitleHint(opts.title)
			result, err := ws.Summarize(cmd.Context())
			if err != nil {
				return err
			}
			return writeSummary(cmd, deps, result, opts)
		},
	}

	cmd.Flags().BoolVarP(&summarize, "summarize", "s", false, "Summarize the transcript instead of printing it")
	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "Title hint for the summary")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "md", "Summary format: md or json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the summary to a file instead of stdout")
	cmd.Flags().StringVar(&opts.docx, "docx", "", "Also write a Word document to this path")
	opts.filter = "All"

	return cmd
}

func audioMIMEType(path string) string {
	if watcher.Classify(path) == watcher.KindAudio {
		return watcher.MIMEType(path)
	}
	return mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
}
