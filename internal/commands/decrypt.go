package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/goseal/internal/config"
	"github.com/idelchi/goseal/internal/logic"
)

// NewDecryptCommand creates a new cobra command for the decrypt subcommand.
func NewDecryptCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "decrypt [flags] [paths/patterns...]",
		Aliases: []string{"dec", "open"},
		Short:   "Decrypt sealed files",
		Args:    cobra.ArbitraryArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.Decrypt = true

			return preRun(cfg)(cmd, args)
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return logic.Run(cfg)
		},
	}

	cmd.Flags().BoolP("delete", "d", false, "Delete the original file after successful decryption")

	return cmd
}
