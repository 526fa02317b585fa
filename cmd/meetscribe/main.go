package main

import (
	"context"
	"os"

	"meetscribe/internal/bootstrap"
	"meetscribe/internal/cli"
	"meetscribe/internal/config"
)

func main() {
	stderr := cli.NewFormatter(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		stderr.Error(err.Error())
		os.Exit(1)
	}

	log, closer := bootstrap.NewLogger(cfg)
	defer closer.Close()

	deps := &cli.Dependencies{
		Config:    cfg,
		Log:       log,
		Clipboard: cli.SystemClipboard{},
		NewBackend: func(ctx context.Context) (cli.Backend, error) {
			if err := cfg.Validate(); err != nil {
				return cli.Backend{}, err
			}
			providers, err := bootstrap.NewProviders(ctx, cfg)
			if err != nil {
				return cli.Backend{}, err
			}
			return cli.Backend{
				Summarizer:  providers.Gemini,
				Transcriber: providers.Transcriber,
				Speech:      providers.Gemini,
			}, nil
		},
	}

	if err := cli.NewRootCmd(deps).Execute(); err != nil {
		stderr.Error(err.Error())
		closer.Close()
		os.Exit(1)
	}
}
