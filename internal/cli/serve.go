package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"meetscribe/internal/server"
)

func NewServeCmd(deps *Dependencies) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		Long:  "Serve the workspace operations over HTTP under /api/v1 so a browser front end can summarize, transcribe and speak without the desktop shell.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = deps.Config.Server.Addr
			}

			backend, err := deps.NewBackend(cmd.Context())
			if err != nil {
				return err
			}

			srv := server.New(server.Deps{
				Summarizer:  backend.Summarizer,
				Transcriber: backend.Transcriber,
				Speech:      backend.Speech,
				Log:         deps.logger(),
			}, deps.Config.Server.AllowedOrigins)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "127.0.0.1:8787", "Listen address")
	return cmd
}
