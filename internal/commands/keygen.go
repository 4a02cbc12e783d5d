package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idelchi/goseal/internal/config"
	"github.com/idelchi/goseal/internal/keyfile"
	"github.com/idelchi/goseal/internal/provider"
)

// NewKeygenCommand creates a new cobra command for the keygen subcommand.
// The private key is written to the output path and the public key next
// to it with a ".pub" suffix.
func NewKeygenCommand(_ *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "keygen [flags]",
		Aliases: []string{"gen"},
		Short:   "Generate a new key pair",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			algorithm, err := cmd.Flags().GetString("algorithm")
			if err != nil {
				return fmt.Errorf("reading algorithm flag: %w", err)
			}

			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return fmt.Errorf("reading out flag: %w", err)
			}

			prov, err := provider.NewRegistry().Lookup(provider.Algorithm(algorithm))
			if err != nil {
				return err
			}

			pair, err := prov.GenerateKeyPair()
			if err != nil {
				return fmt.Errorf("generating key pair: %w", err)
			}

			if err := keyfile.SavePrivate(out, pair.Private); err != nil {
				return err
			}

			if err := keyfile.SavePublic(out+".pub", pair.Public); err != nil {
				return err
			}

			quiet, _ := cmd.Flags().GetBool("quiet")
			if !quiet {
				fmt.Printf("Wrote %q and %q\n", out, out+".pub") //nolint:forbidigo
			}

			return nil
		},
	}

	cmd.Flags().StringP("out", "o", "goseal.key", "Output path for the private key")

	return cmd
}
