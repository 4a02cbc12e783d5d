package commands

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/idelchi/goseal/internal/config"
)

// NewRootCommand creates the root command with common configuration.
// It sets up environment variable binding and flag handling.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	root := cobraext.NewDefaultRootCommand(version)

	root.Use = "goseal [flags] command [flags]"
	root.Short = "Hybrid file encryption and signing utility"
	root.Long = `A file encryption utility built on hybrid public-key cryptography.
Files are sealed for one or more recipients in fixed-size chunks, so
arbitrarily large inputs are processed in constant memory. Supports a
classic X25519/Ed25519 suite and a post-quantum ML-KEM-768/ML-DSA-65 suite.
Provides commands for key generation, encryption, decryption, signing
and verification.`

	root.PersistentFlags().StringP("algorithm", "a", "x25519", "Key algorithm (x25519 or mlkem768)")
	root.PersistentFlags().String("chunk-size", "1 MiB", "Chunk size for streaming, accepts human units (max 63 MiB)")
	root.PersistentFlags().String("temp-dir", "", "Directory for temporary output files, defaults beside the output")
	root.PersistentFlags().IntP("parallel", "j", runtime.NumCPU(), "Number of parallel workers, defaults to number of CPUs")
	root.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-error output")
	root.PersistentFlags().Bool("stats", false, "Print processing statistics to stderr")
	root.PersistentFlags().Bool("dry", false, "Preview the files that would be processed")
	root.PersistentFlags().Bool("preserve-timestamps", false, "Carry the input's modification time over to the output")

	root.PersistentFlags().StringP("key", "k", "", "Path to the private key file")
	root.PersistentFlags().StringArrayP("recipient", "r", nil, "Path to a recipient public key file (repeatable)")
	root.PersistentFlags().StringP("pub", "p", "", "Path to the public key file for verification")

	root.PersistentFlags().String("encrypt-ext", ".gsl", "Suffix to append to encrypted files")
	root.PersistentFlags().
		String("decrypt-ext", "", "Suffix to append to decrypted files, after stripping the encrypted suffix")
	root.PersistentFlags().String("sig-ext", ".sig", "Suffix for detached signature files")

	root.PersistentFlags().StringArray("include", nil, "Glob pattern for files to include (repeatable)")
	root.PersistentFlags().StringArray("exclude", nil, "Glob pattern for files to exclude (repeatable)")
	root.PersistentFlags().String("include-from", "", "JSONC file with include patterns")
	root.PersistentFlags().String("exclude-from", "", "JSONC file with exclude patterns")

	root.AddCommand(
		NewKeygenCommand(cfg),
		NewEncryptCommand(cfg),
		NewDecryptCommand(cfg),
		NewSignCommand(cfg),
		NewVerifyCommand(cfg),
	)

	return root
}
