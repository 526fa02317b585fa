package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"meetscribe/internal/audio"
	"meetscribe/internal/config"
)

type check struct {
	name   string
	ok     bool
	detail string
}

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that meetscribe is ready to run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := NewFormatter(cmd.OutOrStdout())
			out.Info("Checking setup...")

			checks := runChecks(deps.Config, audio.NewFFMPEGCapture(deps.Config.Audio.RecorderCommand).Locate)
			failed := 0
			for _, c := range checks {
				out.Check(c.name, c.ok, c.detail)
				if !c.ok {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			out.Success("All checks passed")
			return nil
		},
	}
}

func runChecks(cfg config.Config, locate func() (string, error)) []check {
	var checks []check

	if path, err := locate(); err != nil {
		checks = append(checks, check{"recorder", false, err.Error()})
	} else {
		checks = append(checks, check{"recorder", true, path})
	}

	if cfg.Gemini.APIKey == "" {
		checks = append(checks, check{"gemini", false, "GEMINI_API_KEY is not set"})
	} else {
		checks = append(checks, check{"gemini", true, "key " + cfg.Masked().Gemini.APIKey})
	}

	if cfg.Transcription.Provider == config.ProviderDeepgram {
		if cfg.Deepgram.APIKey == "" {
			checks = append(checks, check{"deepgram", false, "DEEPGRAM_API_KEY is not set"})
		} else {
			checks = append(checks, check{"deepgram", true, "model " + cfg.Deepgram.Model})
		}
	}

	path := config.Path()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		checks = append(checks, check{"config file", true, "none, using environment (" + path + ")"})
	} else if err != nil {
		checks = append(checks, check{"config file", false, err.Error()})
	} else {
		checks = append(checks, check{"config file", true, path})
	}

	if cfg.Watch.Inbox != "" {
		if info, err := os.Stat(cfg.Watch.Inbox); err != nil || !info.IsDir() {
			checks = append(checks, check{"inbox", false, cfg.Watch.Inbox + " is not a directory"})
		} else {
			checks = append(checks, check{"inbox", true, cfg.Watch.Inbox})
		}
	}

	return checks
}
