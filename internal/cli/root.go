package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"meetscribe/internal/config"
	"meetscribe/internal/logger"
	"meetscribe/internal/ports"
	"meetscribe/internal/version"
)

// Backend is the set of remote services a command may need.
type Backend struct {
	Summarizer  ports.Summarizer
	Transcriber ports.Transcriber
	Speech      ports.SpeechSynthesizer
}

type Dependencies struct {
	Config    config.Config
	Log       *slog.Logger
	Clipboard ports.Clipboard

	// NewBackend connects to the AI services. It is only called by commands that
	// need them, so config and doctor work without credentials.
	NewBackend func(ctx context.Context) (Backend, error)
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "meetscribe",
		Short:         "Transcribe and summarize meetings",
		Long:          "Summarize meeting transcripts into action items, record and transcribe meetings, read summaries aloud, and process a drop folder.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	rootCmd.AddCommand(NewSummarizeCmd(deps))
	rootCmd.AddCommand(NewTranscribeCmd(deps))
	rootCmd.AddCommand(NewRecordCmd(deps))
	rootCmd.AddCommand(NewSpeakCmd(deps))
	rootCmd.AddCommand(NewWatchCmd(deps))
	rootCmd.AddCommand(NewServeCmd(deps))
	rootCmd.AddCommand(NewConfigCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(version.Full())
		},
	}
}

func (d *Dependencies) logger() *slog.Logger {
	if d.Log == nil {
		return logger.Default()
	}
	return d.Log
}
