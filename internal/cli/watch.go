package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"meetscribe/internal/watcher"
)

func NewWatchCmd(deps *Dependencies) *cobra.Command {
	var inbox, outbox string
	var docx, notify bool
	var maxConcurrent int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Summarize every transcript or recording dropped into a folder",
		Long:  "Watch an inbox folder. Each new .txt/.vtt transcript or audio file is summarized into <name>.md (and optionally <name>.docx) in the outbox.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := deps.Config.Watch
			if cmd.Flags().Changed("inbox") {
				cfg.Inbox = inbox
			}
			if cmd.Flags().Changed("outbox") {
				cfg.Outbox = outbox
			}
			if cmd.Flags().Changed("docx") {
				cfg.Docx = docx
			}
			if cmd.Flags().Changed("notify") {
				cfg.Notify = notify
			}
			if cmd.Flags().Changed("max-concurrent") {
				cfg.MaxConcurrent = maxConcurrent
			}
			if cfg.Inbox == "" {
				return errors.New("no inbox configured: pass --inbox or set MEETSCRIBE_WATCH_INBOX")
			}
			if cfg.Outbox == "" {
				cfg.Outbox = cfg.Inbox
			}
			if err := os.MkdirAll(cfg.Outbox, 0o755); err != nil {
				return fmt.Errorf("creating outbox: %w", err)
			}

			backend, err := deps.NewBackend(cmd.Context())
			if err != nil {
				return err
			}

			processor := &watcher.Processor{
				Summarizer:  backend.Summarizer,
				Transcriber: backend.Transcriber,
				Outbox:      cfg.Outbox,
				Docx:        cfg.Docx,
			}
			if cfg.Notify {
				processor.Notifier = watcher.DesktopNotifier{}
			}

			w, err := watcher.New(cfg.Inbox, processor.Handle, deps.logger(), cfg.MaxConcurrent)
			if err != nil {
				return err
			}
			defer w.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			NewFormatter(cmd.ErrOrStderr()).Info(fmt.Sprintf("Watching %s (outputs in %s). Press Ctrl+C to stop.", cfg.Inbox, cfg.Outbox))
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inbox, "inbox", "i", "", "Folder to watch")
	cmd.Flags().StringVarP(&outbox, "outbox", "o", "", "Folder for summaries (defaults to the inbox)")
	cmd.Flags().BoolVar(&docx, "docx", false, "Also write a Word document for each summary")
	cmd.Flags().BoolVar(&notify, "notify", true, "Show a desktop notification when a summary is ready")
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 2, "Files processed at the same time")

	return cmd
}
