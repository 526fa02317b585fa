package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"meetscribe/internal/config"
)

func NewConfigCmd(deps *Dependencies) *cobra.Command {
	var showEnv, showPath bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long:  "Print the effective configuration as YAML with credentials masked. Use --env to list the supported environment variables.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			switch {
			case showPath:
				_, err := fmt.Fprintln(out, config.Path())
				return err
			case showEnv:
				config.Usage(out)
				return nil
			}

			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(deps.Config.Masked()); err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			return enc.Close()
		},
	}

	cmd.Flags().BoolVar(&showEnv, "env", false, "List supported environment variables")
	cmd.Flags().BoolVar(&showPath, "path", false, "Print the config file location")
	return cmd
}
