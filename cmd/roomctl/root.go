package main

import (
	"github.com/phrazzld/studyrooms-api/internal/config"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "roomctl",
		Short:        "Operator tool for the study rooms API",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "Path to a YAML config file (defaults to ./config.yaml when present)")

	root.AddCommand(newTokenCmd())
	root.AddCommand(newClassifyCmd())
	root.AddCommand(newGenerateCmd())
	return root
}

// readConfig resolves configuration for a subcommand. Each subcommand
// validates only the sections it uses.
func readConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Read(path)
}
