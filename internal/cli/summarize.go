package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"meetscribe/internal/domain"
	"meetscribe/internal/render"
	"meetscribe/internal/usecase"
	"meetscribe/internal/watcher"
)

type summarizeOptions struct {
	title  string
	format string
	output string
	docx   string
	filter string
	copy   bool
}

func NewSummarizeCmd(deps *Dependencies) *cobra.Command {
	var opts summarizeOptions

	cmd := &cobra.Command{
		Use:   "summarize [transcript.txt|transcript.vtt|-]",
		Short: "Summarize a meeting transcript",
		Long:  "Summarize a .txt or .vtt transcript (or standard input) into a title, summary, discussion breakdown and action items.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}

			backend, err := deps.NewBackend(cmd.Context())
			if err != nil {
				return err
			}

			ws := usecase.NewWorkspace(backend.Summarizer, nil)
			if err := loadTranscript(ws, path, cmd.InOrStdin()); err != nil {
				return err
			}
			if opts.title != "" {
				ws.SetTitleHint(opts.title)
			}

			deps.logger().Info("summarizing", "source", path)
			result, err := ws.Summarize(cmd.Context())
			if err != nil {
				return err
			}

			return writeSummary(cmd, deps, result, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "Title hint for the summary")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "md", "Output format: md or json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the summary to a file instead of stdout")
	cmd.Flags().StringVar(&opts.docx, "docx", "", "Also write a Word document to this path")
	cmd.Flags().StringVar(&opts.filter, "filter", "All", "Only list action items of this priority: All, High, Medium or Low")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "Copy a team notification to the clipboard")

	return cmd
}

func loadTranscript(ws *usecase.Workspace, path string, stdin io.Reader) error {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		ws.SetTranscript(string(data))
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading transcript: %w", err)
	}
	name := filepath.Base(path)
	return ws.UploadTranscript(name, watcher.MIMEType(path), data)
}

func writeSummary(cmd *cobra.Command, deps *Dependencies, result domain.SummaryResult, opts summarizeOptions) error {
	filtered := result.Clone()
	filtered.ActionItems = render.FilterActionItems(filtered.ActionItems, domain.ParseFilter(opts.filter))

	var body []byte
	switch strings.ToLower(opts.format) {
	case "json":
		encoded, err := json.MarshalIndent(filtered, "", "  ")
		if err != nil {
			return err
		}
		body = append(encoded, '\n')
	case "md", "markdown":
		body = []byte(render.Markdown(filtered))
	default:
		return fmt.Errorf("%w: unknown format %q", domain.ErrInvalidInput, opts.format)
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, body, 0o644); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
		NewFormatter(cmd.ErrOrStderr()).Success("Summary saved: " + opts.output)
	} else if _, err := cmd.OutOrStdout().Write(body); err != nil {
		return err
	}

	if opts.docx != "" {
		if err := render.WriteDocx(result, opts.docx); err != nil {
			return err
		}
		NewFormatter(cmd.ErrOrStderr()).Success("Document saved: " + opts.docx)
	}

	if opts.copy && deps.Clipboard != nil {
		text, err := render.NotificationText(result)
		if err != nil {
			return err
		}
		if err := deps.Clipboard.SetText(cmd.Context(), text); err != nil {
			NewFormatter(cmd.ErrOrStderr()).Warning("Clipboard write failed: " + err.Error())
		} else {
			NewFormatter(cmd.ErrOrStderr()).Success("Notification copied to clipboard")
		}
	}
	return nil
}
