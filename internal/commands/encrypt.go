package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/goseal/internal/config"
	"github.com/idelchi/goseal/internal/logic"
)

// NewEncryptCommand creates a new cobra command for the encrypt subcommand.
func NewEncryptCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "encrypt [flags] [paths/patterns...]",
		Aliases: []string{"enc", "seal"},
		Short:   "Encrypt files for one or more recipients",
		Args:    cobra.ArbitraryArgs,
		PreRunE: preRun(cfg),
		RunE: func(_ *cobra.Command, _ []string) error {
			return logic.Run(cfg)
		},
	}

	cmd.Flags().BoolP("delete", "d", false, "Delete the original file after successful encryption")

	return cmd
}
