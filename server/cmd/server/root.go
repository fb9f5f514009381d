package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/obsidianstack/pokedex/server/internal/config"
)

// newRootCommand builds the pokedex-server command tree. Errors, including
// cobra's own flag and argument errors, are printed to the command's stderr.
func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "pokedex-server",
		Short:        "In-memory pokemon collection served over HTTP/JSON",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to config file; empty uses defaults plus POKEDEX_* environment overrides")

	cmd.AddCommand(newValidateCommand(&configPath))
	return cmd
}

// newValidateCommand loads and validates the config, then prints the
// effective settings as YAML.
func newValidateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
