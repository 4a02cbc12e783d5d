package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/goseal/internal/config"
	"github.com/idelchi/goseal/internal/logic"
)

// NewSignCommand creates a new cobra command for the sign subcommand.
func NewSignCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "sign [flags] [paths/patterns...]",
		Short:   "Write a detached signature next to each file",
		Args:    cobra.ArbitraryArgs,
		PreRunE: preRun(cfg),
		RunE: func(_ *cobra.Command, _ []string) error {
			return logic.RunSign(cfg)
		},
	}
}

// NewVerifyCommand creates a new cobra command for the verify subcommand.
func NewVerifyCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "verify [flags] [paths/patterns...]",
		Short:   "Verify files against their detached signatures",
		Args:    cobra.ArbitraryArgs,
		PreRunE: preRun(cfg),
		RunE: func(_ *cobra.Command, _ []string) error {
			return logic.RunVerify(cfg)
		},
	}
}
